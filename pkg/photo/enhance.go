package photo

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/stat"
)

// EnhanceParams tunes the enhancement chain.
type EnhanceParams struct {
	// SharpenRadius is the blur sigma of the unsharp mask, in pixels.
	SharpenRadius float64 `yaml:"sharpen_radius"`
	// SharpenPercent is the strength of the unsharp mask.
	SharpenPercent float64 `yaml:"sharpen_percent"`
	// SharpenThreshold is the smallest difference the unsharp mask amplifies.
	SharpenThreshold int     `yaml:"sharpen_threshold"`
	Brightness       float64 `yaml:"brightness"`
	Contrast         float64 `yaml:"contrast"`
	Saturation       float64 `yaml:"saturation"`
}

// DefaultEnhance returns the passport-photo enhancement settings.
func DefaultEnhance() EnhanceParams {
	return EnhanceParams{
		SharpenRadius:    2,
		SharpenPercent:   150,
		SharpenThreshold: 3,
		Brightness:       1.05,
		Contrast:         1.15,
		Saturation:       1.10,
	}
}

// Enhance runs unsharp mask, brightness, contrast and saturation, in that order.
func Enhance(img image.Image, p EnhanceParams) *image.NRGBA {
	out := UnsharpMask(img, p.SharpenRadius, p.SharpenPercent, p.SharpenThreshold)
	out = Brightness(out, p.Brightness)
	out = Contrast(out, p.Contrast)

	return Saturation(out, p.Saturation)
}

// UnsharpMask amplifies the difference between img and its Gaussian blur wherever
// that difference reaches threshold.
func UnsharpMask(img image.Image, radius, percent float64, threshold int) *image.NRGBA {
	src := imaging.Clone(img)
	if radius <= 0 || percent == 0 {
		return src
	}

	blurred := imaging.Blur(src, radius)
	dst := imaging.New(src.Rect.Dx(), src.Rect.Dy(), color.NRGBA{})
	amount := percent / 100

	for i := 0; i < len(src.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			orig := int(src.Pix[i+c])
			diff := orig - int(blurred.Pix[i+c])
			if abs(diff) < threshold {
				dst.Pix[i+c] = uint8(orig)

				continue
			}
			dst.Pix[i+c] = clamp(float64(orig) + float64(diff)*amount)
		}
		dst.Pix[i+3] = src.Pix[i+3]
	}

	return dst
}

// Brightness scales every channel by factor.
func Brightness(img image.Image, factor float64) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: clamp(float64(c.R) * factor),
			G: clamp(float64(c.G) * factor),
			B: clamp(float64(c.B) * factor),
			A: c.A,
		}
	})
}

// Contrast pushes every channel away from the image's mean luma by factor.
func Contrast(img image.Image, factor float64) *image.NRGBA {
	mean := math.Floor(MeanLuma(img) + 0.5)

	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: clamp(mean + (float64(c.R)-mean)*factor),
			G: clamp(mean + (float64(c.G)-mean)*factor),
			B: clamp(mean + (float64(c.B)-mean)*factor),
			A: c.A,
		}
	})
}

// Saturation pushes every channel away from the pixel's own luma by factor.
func Saturation(img image.Image, factor float64) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		l := float64(luma(c.R, c.G, c.B))

		return color.NRGBA{
			R: clamp(l + (float64(c.R)-l)*factor),
			G: clamp(l + (float64(c.G)-l)*factor),
			B: clamp(l + (float64(c.B)-l)*factor),
			A: c.A,
		}
	})
}

// MeanLuma returns the average ITU-R 601 luma of img.
func MeanLuma(img image.Image) float64 {
	src := imaging.Clone(img)
	if len(src.Pix) == 0 {
		return 0
	}

	values := make([]float64, 0, len(src.Pix)/4)
	for i := 0; i < len(src.Pix); i += 4 {
		values = append(values, float64(luma(src.Pix[i], src.Pix[i+1], src.Pix[i+2])))
	}

	return stat.Mean(values, nil)
}

// luma uses the 16-bit fixed point weights 0.299, 0.587 and 0.114.
func luma(r, g, b uint8) uint8 {
	return uint8((uint32(r)*19595 + uint32(g)*38470 + uint32(b)*7471 + 0x8000) >> 16)
}

func clamp(v float64) uint8 {
	v = math.Round(v)
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}

	return uint8(v)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}

	return v
}
