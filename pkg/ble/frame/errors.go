package frame

import (
	"errors"
	"fmt"
)

var (
	// ErrBadTag indicates the frame doesn't start with the "!G" tag.
	ErrBadTag = errors.New("bad tag")
	// ErrBadChecksum indicates the checksum byte doesn't match the frame content.
	ErrBadChecksum = errors.New("bad checksum")
)

// RejectError wraps the reason a frame was rejected together with the frame.
type RejectError struct {
	Frame Frame
	Err   error
}

// Error implements error.
func (e *RejectError) Error() string {
	return fmt.Sprintf("frame rejected: %v [% X]", e.Err, e.Frame[:])
}

// Unwrap returns the underlying reason.
func (e *RejectError) Unwrap() error {
	return e.Err
}
