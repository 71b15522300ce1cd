package imagegen

import (
	"errors"
	"fmt"
)

// ErrInvalidImage marks a source image that is not a base64 image data URL.
// It is a caller error: the pipeline rejects it before any model call.
var ErrInvalidImage = errors.New("invalid source image")

// GenerationError reports a failure after the input passed validation: the
// model call failed for good, or the model answered without an image. Reason
// is display text; Err carries the upstream cause when one exists.
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	switch {
	case e.Err != nil && e.Reason != "":
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Reason
	}
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
