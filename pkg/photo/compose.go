// Package photo holds the per-photo raster operations: placing a cut-out subject on a
// solid background, enhancing it and resizing it to the print size.
package photo

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/autopassphoto/passphoto/pkg/faults"
)

// HasAlpha reports whether img carries a transparency channel.
func HasAlpha(img image.Image) bool {
	switch img.(type) {
	case *image.NRGBA, *image.NRGBA64, *image.RGBA, *image.RGBA64, *image.Alpha, *image.Alpha16, *image.Paletted:
		return true
	}

	switch img.ColorModel() {
	case color.NRGBAModel, color.NRGBA64Model, color.RGBAModel, color.RGBA64Model, color.AlphaModel, color.Alpha16Model:
		return true
	}

	return false
}

// PlaceOnOpaque blends fg over a solid bg of the same size, weighting by fg's alpha.
// The result is fully opaque. It fails with faults.ErrInvalidInputFormat when fg has
// no alpha channel to blend with.
func PlaceOnOpaque(fg image.Image, bg color.Color) (*image.NRGBA, error) {
	if fg == nil || fg.Bounds().Empty() {
		return nil, faults.Wrap(faults.ErrInvalidInputFormat, nil, "unable to place empty image")
	}
	if !HasAlpha(fg) {
		return nil, faults.Wrap(faults.ErrInvalidInputFormat, nil, "image has no alpha channel")
	}

	opaque := color.NRGBAModel.Convert(bg).(color.NRGBA)
	opaque.A = 0xff

	size := fg.Bounds().Size()
	canvas := imaging.New(size.X, size.Y, opaque)

	return imaging.Overlay(canvas, fg, image.Point{}, 1), nil
}
