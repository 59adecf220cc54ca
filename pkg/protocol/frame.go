// Package protocol implements the two binary wire formats spoken by the
// hand firmware, plus a streaming resynchronizer for byte links that
// fragment frames arbitrarily (BLE notifications, serial reads).
package protocol

import "fmt"

// Profile selects one of the two incompatible framing schemes used by the
// hardware. A device session speaks exactly one profile, chosen at
// construction from the device's capability.
type Profile int

const (
	// ProfileA is the fixed checksum frame:
	// [0xAA 0x77][function][length][payload...][checksum].
	ProfileA Profile = iota

	// ProfileB is the time-coded multi-servo frame:
	// [0x55 0x55][byteCount][function][payload...], no checksum.
	ProfileB
)

// String returns "A" or "B".
func (p Profile) String() string {
	if p == ProfileA {
		return "A"
	}
	return "B"
}

// ParseProfile maps a user-facing profile name ("a" or "b", any case) to
// its Profile.
func ParseProfile(name string) (Profile, error) {
	switch name {
	case "a", "A":
		return ProfileA, nil
	case "b", "B":
		return ProfileB, nil
	}
	return 0, fmt.Errorf("unknown protocol profile %q (want a or b)", name)
}

// Header returns the profile's two-byte frame header.
func (p Profile) Header() [2]byte {
	if p == ProfileA {
		return [2]byte{0xAA, 0x77}
	}
	return [2]byte{0x55, 0x55}
}

// Profile A function codes.
const (
	FuncServoSet   = 0x01
	FuncBuzzer     = 0x02
	FuncRGB        = 0x03
	FuncReadAngles = 0x11
)

// Profile B function codes.
const (
	FuncMultiServo  = 0x03
	FuncStreamStart = 0x11
	FuncStreamStop  = 0x12
)

// FuncTelemetry carries streamed IMU data and is valid under both profiles.
const FuncTelemetry = 0x13

// knownFunctions lists the valid function codes per profile, both
// directions of the link.
var knownFunctions = map[Profile]map[byte]bool{
	ProfileA: {FuncServoSet: true, FuncBuzzer: true, FuncRGB: true, FuncReadAngles: true, FuncTelemetry: true},
	ProfileB: {FuncMultiServo: true, FuncStreamStart: true, FuncStreamStop: true, FuncTelemetry: true},
}

// Frame is one complete, delimited wire message under either profile.
type Frame struct {
	Profile  Profile
	Function byte
	Payload  []byte

	// Checksum is the declared trailer byte. Profile A only; zero for B.
	Checksum byte
}

// Checksum computes the Profile A trailer: the one's complement of the sum
// of function, length, and payload bytes, masked to 8 bits.
func Checksum(function byte, payload []byte) byte {
	sum := int(function) + len(payload)
	for _, b := range payload {
		sum += int(b)
	}
	return byte(^sum)
}

// Bytes re-encodes the frame into its wire representation.
func (f Frame) Bytes() []byte {
	header := f.Profile.Header()
	if f.Profile == ProfileA {
		out := make([]byte, 0, 5+len(f.Payload))
		out = append(out, header[0], header[1], f.Function, byte(len(f.Payload)))
		out = append(out, f.Payload...)
		return append(out, Checksum(f.Function, f.Payload))
	}
	out := make([]byte, 0, 4+len(f.Payload))
	out = append(out, header[0], header[1], byte(1+len(f.Payload)), f.Function)
	return append(out, f.Payload...)
}

// frameA builds a checksummed Profile A frame.
func frameA(function byte, payload []byte) Frame {
	return Frame{Profile: ProfileA, Function: function, Payload: payload, Checksum: Checksum(function, payload)}
}

// frameB builds a Profile B frame.
func frameB(function byte, payload []byte) Frame {
	return Frame{Profile: ProfileB, Function: function, Payload: payload}
}

// ParseFrame parses exactly one frame from the start of raw. It returns the
// frame and the number of bytes consumed. Structural errors are ErrBadHeader
// and ErrTruncated; semantic validation (function code, checksum) is the
// codec's job.
func ParseFrame(profile Profile, raw []byte) (Frame, int, error) {
	header := profile.Header()
	if len(raw) < 2 || raw[0] != header[0] || raw[1] != header[1] {
		return Frame{}, 0, decodeErr(ErrBadHeader, raw)
	}

	if profile == ProfileA {
		if len(raw) < 4 {
			return Frame{}, 0, decodeErr(ErrTruncated, raw)
		}
		payloadLen := int(raw[3])
		total := 5 + payloadLen
		if len(raw) < total {
			return Frame{}, 0, decodeErr(ErrTruncated, raw)
		}
		payload := make([]byte, payloadLen)
		copy(payload, raw[4:4+payloadLen])
		return Frame{
			Profile:  ProfileA,
			Function: raw[2],
			Payload:  payload,
			Checksum: raw[total-1],
		}, total, nil
	}

	if len(raw) < 3 {
		return Frame{}, 0, decodeErr(ErrTruncated, raw)
	}
	byteCount := int(raw[2])
	if byteCount < 1 {
		return Frame{}, 0, decodeErr(ErrTruncated, raw)
	}
	total := 3 + byteCount
	if len(raw) < total {
		return Frame{}, 0, decodeErr(ErrTruncated, raw)
	}
	payload := make([]byte, byteCount-1)
	copy(payload, raw[4:total])
	return Frame{
		Profile:  ProfileB,
		Function: raw[3],
		Payload:  payload,
	}, total, nil
}
