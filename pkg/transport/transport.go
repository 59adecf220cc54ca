// Package transport abstracts the unreliable byte link to the hand: write
// bytes out, receive byte chunks in. Chunks may be partial frames or
// several frames fused together; reassembly is the protocol framer's job,
// not the transport's.
package transport

import "errors"

// Sentinel transport errors.
var (
	// ErrNotConnected is returned when writing to a closed or lost link.
	ErrNotConnected = errors.New("transport: not connected")

	// ErrWriteFailed wraps an underlying link write failure. The control
	// loop retries on its next tick rather than dropping the pose.
	ErrWriteFailed = errors.New("transport: write failed")
)

// Port is an already-open, already-identified byte link. Implementations
// must make Write safe to call concurrently with the receive callback;
// device discovery and characteristic negotiation happen before a Port
// exists.
type Port interface {
	// Write sends raw bytes. One call carries at most one frame so the
	// link never interleaves partial frames from concurrent writers.
	Write(p []byte) error

	// OnData registers the receive callback. Chunks arrive in order but
	// with arbitrary fragmentation. Only one callback is active at a
	// time; registering replaces the previous one.
	OnData(fn func(data []byte))

	// Connected reports whether the link is currently usable.
	Connected() bool

	// Close releases the link.
	Close() error
}
