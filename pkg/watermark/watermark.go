// Package watermark stamps translucent text in the bottom-left corner of a sheet.
package watermark

import (
	"image"
	"image/color"
	"log"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"

	"github.com/autopassphoto/passphoto/pkg/faults"
)

// DefaultColor is black at alpha 120/255.
var DefaultColor = color.NRGBA{R: 0, G: 0, B: 0, A: 120}

// Options configures Apply.
type Options struct {
	Text       string
	FontPath   string
	FontSizePx float64
	Color      color.NRGBA
	// MarginPx insets the text from the left and bottom edges.
	MarginPx int
	Logger   *log.Logger
}

// Info describes where the text landed.
type Info struct {
	// Bounds is the ink bounding box of the text on the sheet.
	Bounds image.Rectangle
	// Fallback is true when the configured font could not be used.
	Fallback bool
}

// Measure returns the ink bounding box of text relative to the drawing origin.
func Measure(face font.Face, text string) image.Rectangle {
	bounds, _ := font.BoundString(face, text)

	return image.Rect(
		bounds.Min.X.Floor(), bounds.Min.Y.Floor(),
		bounds.Max.X.Ceil(), bounds.Max.Y.Ceil(),
	)
}

// Render draws text onto a transparent overlay of the given size so that the top row
// of its ink sits at y = size.Y - textHeight - margin and its origin at x = margin.
func Render(size image.Point, face font.Face, text string, c color.NRGBA, margin int) (*image.NRGBA, image.Rectangle) {
	overlay := image.NewNRGBA(image.Rectangle{Max: size})
	ink := Measure(face, text)
	if ink.Empty() {
		return overlay, image.Rectangle{}
	}

	top := size.Y - ink.Dy() - margin
	origin := image.Pt(margin, top-ink.Min.Y)

	drawer := &font.Drawer{
		Dst:  overlay,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(origin.X, origin.Y),
	}
	drawer.DrawString(text)

	return overlay, ink.Add(origin)
}

// Apply renders the watermark and composites it over a copy of sheet.
func Apply(sheet image.Image, opts Options) (*image.NRGBA, Info, error) {
	if sheet == nil || sheet.Bounds().Empty() {
		return nil, Info{}, faults.Wrap(faults.ErrInvalidInputFormat, nil, "unable to watermark empty sheet")
	}

	face, fallback := LoadFace(opts.FontPath, opts.FontSizePx, opts.Logger)
	defer face.Close()

	text := norm.NFC.String(opts.Text)
	if text == "" {
		return imaging.Clone(sheet), Info{Fallback: fallback}, nil
	}

	overlay, bounds := Render(sheet.Bounds().Size(), face, text, opts.Color, opts.MarginPx)
	out := imaging.Overlay(sheet, overlay, sheet.Bounds().Min, 1)

	return out, Info{Bounds: bounds, Fallback: fallback}, nil
}
