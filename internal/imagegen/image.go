package imagegen

import (
	"fmt"
	"regexp"
)

var dataURLPattern = regexp.MustCompile(`^data:(image/\w+);base64,(.*)$`)

// EncodedImage is a parsed base64 image data URL. The payload stays base64
// text end to end; nothing in the pipeline decodes or re-encodes it.
type EncodedImage struct {
	MIMEType string
	Data     string
}

// ParseImageDataURL splits a data:image/...;base64 string into its MIME type
// and payload. Anything that does not match the pattern is rejected with
// ErrInvalidImage.
func ParseImageDataURL(raw string) (EncodedImage, error) {
	m := dataURLPattern.FindStringSubmatch(raw)
	if m == nil {
		return EncodedImage{}, fmt.Errorf("%w: expected a data:image/<type>;base64 payload", ErrInvalidImage)
	}
	return EncodedImage{MIMEType: m[1], Data: m[2]}, nil
}

// DataURL reassembles the image into data URL form.
func (img EncodedImage) DataURL() string {
	return "data:" + img.MIMEType + ";base64," + img.Data
}
