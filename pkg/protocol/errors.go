package protocol

import (
	"errors"
	"fmt"
)

// Sentinel decode errors. Malformed bytes are an expected operating
// condition on a noisy link: callers log, drop the frame, and continue.
var (
	// ErrBadHeader is returned when the frame does not start with the
	// profile's two header bytes.
	ErrBadHeader = errors.New("protocol: bad frame header")

	// ErrUnknownFunction is returned for a function code the profile
	// does not define.
	ErrUnknownFunction = errors.New("protocol: unknown function code")

	// ErrChecksumMismatch is returned when a Profile A checksum does not
	// match the frame contents.
	ErrChecksumMismatch = errors.New("protocol: checksum mismatch")

	// ErrTruncated is returned when the buffer ends before the declared
	// frame length.
	ErrTruncated = errors.New("protocol: truncated frame")

	// ErrWrongProfile is returned when a frame is decoded with a codec
	// configured for the other profile.
	ErrWrongProfile = errors.New("protocol: frame profile does not match codec")
)

// DecodeError wraps a sentinel with the offending bytes for diagnostics.
type DecodeError struct {
	Err   error
	Bytes []byte
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("%v (% X)", e.Err, e.Bytes)
}

// Unwrap returns the underlying sentinel.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

func decodeErr(err error, raw []byte) error {
	b := raw
	if len(b) > 24 {
		b = b[:24]
	}
	return &DecodeError{Err: err, Bytes: b}
}
