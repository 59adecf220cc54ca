package protocol

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/akshayakula/myogen/pkg/hand"
)

// Profile B maps 0-180 degrees onto the device position range 1100-1950.
const (
	posBase  = 1100
	posSpan  = 850
	angleMax = 180
)

// AngleToPosition converts a servo angle in degrees to the Profile B
// device position: round(1100 + angle/180*850).
func AngleToPosition(angle int) uint16 {
	return uint16(math.Round(posBase + float64(angle)/angleMax*posSpan))
}

// PositionToAngle is the inverse mapping: round((pos-1100)/850*180).
// Sub-degree precision is lost through the integer position range, so a
// round trip is only exact to within one degree.
func PositionToAngle(pos uint16) int {
	return int(math.Round(float64(int(pos)-posBase) / posSpan * angleMax))
}

// Codec encodes joint-angle vectors into one wire profile and validates and
// decodes inbound frames. Encoding is total: a well-formed Pose always
// produces a frame, with angles clamped through the limits table first.
type Codec struct {
	profile Profile
	limits  *hand.Limits
}

// NewCodec creates a codec for the given profile and joint limits.
func NewCodec(profile Profile, limits *hand.Limits) *Codec {
	return &Codec{profile: profile, limits: limits}
}

// Profile returns the codec's wire profile.
func (c *Codec) Profile() Profile {
	return c.profile
}

// EncodePose encodes a full pose as one frame. moveTime is the servo travel
// time carried by Profile B frames; Profile A has no time field and
// ignores it.
func (c *Codec) EncodePose(p hand.Pose, moveTime time.Duration) []byte {
	if c.profile == ProfileA {
		payload := make([]byte, hand.NumJoints)
		for i, angle := range p {
			payload[i] = byte(c.limits.WireValue(i, angle))
		}
		return frameA(FuncServoSet, payload).Bytes()
	}

	timeMs := uint16(moveTime / time.Millisecond)
	payload := make([]byte, 0, 3+3*hand.NumJoints)
	payload = append(payload, hand.NumJoints)
	payload = binary.LittleEndian.AppendUint16(payload, timeMs)
	for i, angle := range p {
		pos := AngleToPosition(c.limits.WireValue(i, angle))
		payload = append(payload, byte(i+1)) // servo IDs are 1-based
		payload = binary.LittleEndian.AppendUint16(payload, pos)
	}
	return frameB(FuncMultiServo, payload).Bytes()
}

// EncodeBuzzer encodes a buzzer command (Profile A only).
func (c *Codec) EncodeBuzzer(freqHz, durationMs uint16) ([]byte, error) {
	if c.profile != ProfileA {
		return nil, fmt.Errorf("%w: buzzer requires profile A", ErrUnknownFunction)
	}
	payload := make([]byte, 4)
	binary.LittleEndian.PutUint16(payload[0:], freqHz)
	binary.LittleEndian.PutUint16(payload[2:], durationMs)
	return frameA(FuncBuzzer, payload).Bytes(), nil
}

// EncodeRGB encodes an RGB LED command (Profile A only).
func (c *Codec) EncodeRGB(r, g, b byte) ([]byte, error) {
	if c.profile != ProfileA {
		return nil, fmt.Errorf("%w: RGB requires profile A", ErrUnknownFunction)
	}
	return frameA(FuncRGB, []byte{r, g, b}).Bytes(), nil
}

// EncodeReadAngles encodes an angle readback request (Profile A only).
func (c *Codec) EncodeReadAngles() ([]byte, error) {
	if c.profile != ProfileA {
		return nil, fmt.Errorf("%w: angle readback requires profile A", ErrUnknownFunction)
	}
	return frameA(FuncReadAngles, nil).Bytes(), nil
}

// EncodeStreamStart builds the telemetry stream start command. The IMU
// streaming commands are framed under Profile B by every firmware
// generation, regardless of the servo profile in use.
func EncodeStreamStart() []byte {
	return frameB(FuncStreamStart, nil).Bytes()
}

// EncodeStreamStop builds the telemetry stream stop command.
func EncodeStreamStop() []byte {
	return frameB(FuncStreamStop, nil).Bytes()
}

// Verify checks a structurally-parsed frame semantically: profile match,
// known function code, and (Profile A) checksum.
func (c *Codec) Verify(f Frame) error {
	if f.Profile != c.profile {
		return ErrWrongProfile
	}
	if !knownFunctions[c.profile][f.Function] {
		return decodeErr(ErrUnknownFunction, []byte{f.Function})
	}
	if c.profile == ProfileA {
		if want := Checksum(f.Function, f.Payload); f.Checksum != want {
			return decodeErr(ErrChecksumMismatch, f.Bytes())
		}
	}
	return nil
}

// DecodeTelemetry validates a frame and extracts its IMU sample. Frames
// carrying any other function code return ErrUnknownFunction; the caller
// drops them and moves on.
func (c *Codec) DecodeTelemetry(f Frame) (TelemetryFrame, error) {
	if err := c.Verify(f); err != nil {
		return TelemetryFrame{}, err
	}
	if f.Function != FuncTelemetry {
		return TelemetryFrame{}, decodeErr(ErrUnknownFunction, []byte{f.Function})
	}
	t, ok := parseTelemetry(f.Payload)
	if !ok {
		return TelemetryFrame{}, decodeErr(ErrTruncated, f.Payload)
	}
	return t, nil
}

// Decode parses and validates a complete raw frame and extracts its
// telemetry. Malformed input always comes back as an error variant, never
// a panic.
func (c *Codec) Decode(raw []byte) (TelemetryFrame, error) {
	f, _, err := ParseFrame(c.profile, raw)
	if err != nil {
		return TelemetryFrame{}, err
	}
	return c.DecodeTelemetry(f)
}

// DecodeAngles validates a Profile A angle-readback response and converts
// the wire values back to logical angles.
func (c *Codec) DecodeAngles(f Frame) (hand.Pose, error) {
	var p hand.Pose
	if err := c.Verify(f); err != nil {
		return p, err
	}
	if f.Function != FuncReadAngles {
		return p, decodeErr(ErrUnknownFunction, []byte{f.Function})
	}
	if len(f.Payload) != hand.NumJoints {
		return p, decodeErr(ErrTruncated, f.Payload)
	}
	for i, wire := range f.Payload {
		p[i] = c.limits.FromWire(i, int(wire))
	}
	return p, nil
}
