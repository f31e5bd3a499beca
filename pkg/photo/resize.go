package photo

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// ErrInvalidSize is returned for a non-positive resize target.
var ErrInvalidSize = errors.New("target size must be positive")

// ResizeExact scales img to exactly width×height with a Lanczos filter. The aspect
// ratio is not preserved.
func ResizeExact(img image.Image, width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrInvalidSize, "unable to resize to %dx%d", width, height)
	}

	return imaging.Resize(img, width, height, imaging.Lanczos), nil
}
