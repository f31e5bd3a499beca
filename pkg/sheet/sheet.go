package sheet

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
)

// DefaultBorderColor is the outline drawn around every tile.
var DefaultBorderColor = color.NRGBA{R: 150, G: 150, B: 150, A: 255}

// DefaultBorderWidth is the outline thickness in pixels.
const DefaultBorderWidth = 2

// Options configures Build.
type Options struct {
	Size        image.Point
	Margin      image.Point
	Gap         int
	Background  color.Color
	BorderColor color.Color
	BorderWidth int
}

// Build tiles photo over a fresh sheet and outlines every tile. It returns the sheet
// together with the grid it used. Background and border are drawn opaque.
func Build(photo image.Image, opts Options) (*image.NRGBA, Grid) {
	bg := opaque(opts.Background, color.White)
	border := opaque(opts.BorderColor, DefaultBorderColor)

	bounds := photo.Bounds()
	grid := Layout(Params{
		Photo:  bounds.Size(),
		Sheet:  opts.Size,
		Margin: opts.Margin,
		Gap:    opts.Gap,
	})

	out := imaging.New(opts.Size.X, opts.Size.Y, bg)
	for _, pt := range grid.Placements {
		tile := image.Rectangle{Min: pt, Max: pt.Add(bounds.Size())}
		draw.Draw(out, tile, photo, bounds.Min, draw.Src)
		Outline(out, tile, border, opts.BorderWidth)
	}

	return out, grid
}

func opaque(c, fallback color.Color) color.NRGBA {
	if c == nil {
		c = fallback
	}

	out := color.NRGBAModel.Convert(c).(color.NRGBA)
	out.A = 255

	return out
}

// Outline draws a frame of the given width just inside r, covering r's edge pixels.
func Outline(dst draw.Image, r image.Rectangle, c color.Color, width int) {
	if width <= 0 || r.Empty() {
		return
	}

	src := image.NewUniform(c)
	if 2*width >= r.Dx() || 2*width >= r.Dy() {
		draw.Draw(dst, r, src, image.Point{}, draw.Src)

		return
	}

	for _, edge := range []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width),
		image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y+width, r.Min.X+width, r.Max.Y-width),
		image.Rect(r.Max.X-width, r.Min.Y+width, r.Max.X, r.Max.Y-width),
	} {
		draw.Draw(dst, edge, src, image.Point{}, draw.Src)
	}
}
