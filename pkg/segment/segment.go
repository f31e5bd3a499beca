// Package segment isolates the subject of a portrait from its background.
//
// Background removal is the one genuinely hard vision problem of the passport-photo
// pipeline, so it sits behind the narrow Segmenter contract: raw encoded image bytes in,
// encoded image bytes with per-pixel transparency out.
package segment

import (
	"bytes"
	"context"
	"image"
	"image/color"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder

	"github.com/pkg/errors"
	_ "golang.org/x/image/tiff" // register decoder
	_ "golang.org/x/image/webp" // register decoder

	"github.com/autopassphoto/passphoto/pkg/faults"
)

// Segmenter removes the background of an encoded image.
type Segmenter interface {
	// Segment returns an encoded image whose background pixels are transparent.
	Segment(ctx context.Context, input []byte) ([]byte, error)
}

// Func adapts a function to the Segmenter interface.
type Func func(ctx context.Context, input []byte) ([]byte, error)

// Segment calls f.
func (f Func) Segment(ctx context.Context, input []byte) ([]byte, error) {
	return f(ctx, input)
}

// Passthrough returns its input untouched. Use it for photos that were already cut out
// and saved with transparency.
type Passthrough struct{}

// Segment returns input.
func (Passthrough) Segment(_ context.Context, input []byte) ([]byte, error) {
	if len(input) == 0 {
		return nil, faults.Wrap(faults.ErrSegmentationFailure, nil, "empty input")
	}

	return input, nil
}

// Decode runs seg on input and decodes the result. Any failure of the segmenter or
// undecodable output is a faults.ErrSegmentationFailure; output encoded without an
// alpha channel is a faults.ErrInvalidInputFormat.
func Decode(ctx context.Context, seg Segmenter, input []byte) (image.Image, error) {
	output, err := seg.Segment(ctx, input)
	if err != nil {
		if errors.Is(err, faults.ErrSegmentationFailure) {
			return nil, err
		}

		return nil, faults.Wrap(faults.ErrSegmentationFailure, err, "unable to remove background")
	}
	if len(output) == 0 {
		return nil, faults.Wrap(faults.ErrSegmentationFailure, nil, "background removal returned no data")
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(output))
	if err != nil {
		return nil, faults.Wrap(faults.ErrSegmentationFailure, err, "unable to decode segmented image")
	}
	if !alphaModel(format, cfg.ColorModel) {
		return nil, faults.Wrapf(faults.ErrInvalidInputFormat, nil, "segmented %s image has no alpha channel", format)
	}

	img, _, err := image.Decode(bytes.NewReader(output))
	if err != nil {
		return nil, faults.Wrap(faults.ErrSegmentationFailure, err, "unable to decode segmented image")
	}

	return img, nil
}

// alphaModel reports whether an image of format stored with colour model m can carry
// transparency.
func alphaModel(format string, m color.Model) bool {
	// transparency of a palette lives in a chunk DecodeConfig does not read
	if _, ok := m.(color.Palette); ok {
		return true
	}

	switch m {
	case color.NRGBAModel, color.NRGBA64Model, color.AlphaModel, color.Alpha16Model:
		return true
	case color.RGBAModel, color.RGBA64Model:
		// png reports these for truecolour without alpha
		return format != "png"
	}

	return false
}

var (
	_ Segmenter = Func(nil)
	_ Segmenter = Passthrough{}
)
