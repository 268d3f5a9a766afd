package audio

import (
	"errors"
	"fmt"
)

// ErrNoInput is returned when a run has nothing to concatenate
var ErrNoInput = errors.New("no input files")

// ErrDelayTooLong is returned when the silence between clips cannot be
// represented at the output sample rate or exceeds MaxDelay
var ErrDelayTooLong = errors.New("delay too long")

// DecodeError reports an input file that could not be read as audio
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports a failure writing the combined output
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("failed to encode %s: %v", e.Path, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }
