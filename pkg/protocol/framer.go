package protocol

import (
	"github.com/akshayakula/myogen/internal/log"
)

// FramerState is where the framer is in its resynchronization cycle.
type FramerState int

const (
	// Seeking means no frame header has been found yet.
	Seeking FramerState = iota
	// HaveHeader means a header was found but the length byte has not
	// arrived.
	HaveHeader
	// HaveLength means the length is known and the framer is waiting for
	// the rest of the frame.
	HaveLength
)

// Framer reassembles complete frames from a byte stream that may be
// fragmented or fused arbitrarily by the transport. It holds partial data
// across calls and runs for the life of the connection; there is no
// terminal state.
//
// When no header pair is present the buffer is discarded, except for a
// trailing byte matching the header's first byte: a chunk boundary can
// fall between the two header bytes, and a clean stream must survive any
// split. The source stream can otherwise be chatty and losing partial
// noise is accepted.
type Framer struct {
	profile Profile
	buf     []byte
	state   FramerState

	dropped uint64
}

// NewFramer creates a framer for one wire profile.
func NewFramer(profile Profile) *Framer {
	return &Framer{profile: profile}
}

// State reports the framer's current position in the resync cycle.
func (f *Framer) State() FramerState {
	return f.state
}

// Buffered returns how many bytes are retained awaiting a complete frame.
func (f *Framer) Buffered() int {
	return len(f.buf)
}

// Dropped returns the total count of bytes discarded during resync.
func (f *Framer) Dropped() uint64 {
	return f.dropped
}

// Feed appends data and extracts every complete frame now available.
// Frames are returned in arrival order, never reordered or duplicated.
func (f *Framer) Feed(data []byte) []Frame {
	f.buf = append(f.buf, data...)

	var frames []Frame
	header := f.profile.Header()
	for {
		// Scan for the first header pair.
		pos := -1
		for i := 0; i+1 < len(f.buf); i++ {
			if f.buf[i] == header[0] && f.buf[i+1] == header[1] {
				pos = i
				break
			}
		}
		if pos == -1 {
			// The chunk may end exactly between the two header bytes; keep
			// a trailing first-header byte so the pair can complete on the
			// next call.
			keep := 0
			if n := len(f.buf); n > 0 && f.buf[n-1] == header[0] {
				keep = 1
			}
			if drop := len(f.buf) - keep; drop > 0 {
				f.dropped += uint64(drop)
				log.Debug("framer: no header in buffer, clearing", "bytes", drop)
				f.buf = f.buf[drop:]
			}
			f.state = Seeking
			return frames
		}
		if pos > 0 {
			f.dropped += uint64(pos)
			f.buf = f.buf[pos:]
		}

		total, known := f.frameLength()
		if !known {
			f.state = HaveHeader
			return frames
		}
		if len(f.buf) < total {
			f.state = HaveLength
			return frames
		}

		frame, n, err := ParseFrame(f.profile, f.buf[:total])
		if err != nil {
			// Cannot happen with a complete, header-aligned slice, but a
			// framer must never panic on wire data: skip the header pair
			// and resync.
			f.dropped += 2
			f.buf = f.buf[2:]
			continue
		}
		frames = append(frames, frame)
		f.buf = f.buf[n:]
		f.state = Seeking
	}
}

// frameLength returns the full frame size declared by the buffered bytes,
// or false when the length field has not arrived yet.
func (f *Framer) frameLength() (int, bool) {
	if f.profile == ProfileA {
		if len(f.buf) < 4 {
			return 0, false
		}
		return 5 + int(f.buf[3]), true
	}
	if len(f.buf) < 3 {
		return 0, false
	}
	return 3 + int(f.buf[2]), true
}
