package bowl

import (
	"errors"
	"fmt"
)

// Domain errors for pipeline operations.
var (
	// ErrNoAdapter indicates no capable rendering adapter or device was found.
	ErrNoAdapter = errors.New("fishbowl: no capable rendering adapter")

	// ErrReadback indicates a frame could not be copied back to host memory.
	ErrReadback = errors.New("fishbowl: frame readback failed")

	// ErrInvalidImage indicates the input image could not be decoded or is empty.
	ErrInvalidImage = errors.New("fishbowl: invalid input image")

	// ErrParameterBounds indicates a configuration value is outside its valid range.
	ErrParameterBounds = errors.New("fishbowl: parameter out of valid bounds")

	// ErrUnknownBackend indicates an unrecognised render backend name.
	ErrUnknownBackend = errors.New("fishbowl: unknown render backend")
)

// FrameError wraps a render failure with the frame it belongs to.
type FrameError struct {
	Frame   int
	Clock   int
	Wrapped error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d (clock=%d): %v", e.Frame, e.Clock, e.Wrapped)
}

func (e *FrameError) Unwrap() error {
	return e.Wrapped
}
