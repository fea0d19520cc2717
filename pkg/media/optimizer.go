package media

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
)

const jpegQuality = 85

// Downscale shrinks images whose larger side exceeds maxDim, keeping the
// aspect ratio, and re-encodes them as JPEG. It reports false when the image
// can't be decoded or is already small enough; the caller then uploads the
// original bytes.
func Downscale(data []byte, maxDim int) ([]byte, bool) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, false
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= maxDim && height <= maxDim {
		return nil, false
	}

	var resized image.Image
	if width >= height {
		resized = imaging.Resize(img, maxDim, 0, imaging.Lanczos)
	} else {
		resized = imaging.Resize(img, 0, maxDim, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, false
	}
	return buf.Bytes(), true
}
