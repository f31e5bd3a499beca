package photo_test

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopassphoto/passphoto/pkg/faults"
	"github.com/autopassphoto/passphoto/pkg/photo"
)

func filledNRGBA(t *testing.T, w, h int, c color.NRGBA) *image.NRGBA {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}

	return img
}

func gradientNRGBA(t *testing.T, w, h int, alpha uint8) *image.NRGBA {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 7), G: uint8(y * 11), B: uint8(x*y + 3), A: alpha})
		}
	}

	return img
}

func TestPlaceOnOpaqueFullyOpaqueKeepsForeground(t *testing.T) {
	t.Parallel()

	fg := gradientNRGBA(t, 20, 15, 255)
	got, err := photo.PlaceOnOpaque(fg, color.RGBA{R: 10, G: 200, B: 30, A: 255})
	require.NoError(t, err)
	require.Equal(t, fg.Bounds(), got.Bounds())
	assert.Equal(t, fg.Pix, got.Pix)
}

func TestPlaceOnOpaqueFullyTransparentKeepsBackground(t *testing.T) {
	t.Parallel()

	fg := gradientNRGBA(t, 20, 15, 0)
	bg := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	got, err := photo.PlaceOnOpaque(fg, bg)
	require.NoError(t, err)

	assert.Equal(t, filledNRGBA(t, 20, 15, bg).Pix, got.Pix)
}

func TestPlaceOnOpaqueBlendsHalfAlpha(t *testing.T) {
	t.Parallel()

	fg := filledNRGBA(t, 4, 4, color.NRGBA{R: 0, G: 0, B: 0, A: 128})
	got, err := photo.PlaceOnOpaque(fg, color.White)
	require.NoError(t, err)

	px := got.NRGBAAt(1, 1)
	assert.InDelta(t, 127, int(px.R), 1)
	assert.Equal(t, px.R, px.G)
	assert.Equal(t, px.R, px.B)
	assert.Equal(t, uint8(255), px.A)
}

func TestPlaceOnOpaqueOffsetBounds(t *testing.T) {
	t.Parallel()

	fg := gradientNRGBA(t, 10, 10, 255).SubImage(image.Rect(2, 3, 8, 9))
	got, err := photo.PlaceOnOpaque(fg, color.White)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 6, 6), got.Bounds())
}

func TestPlaceOnOpaqueInvalidInput(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		fg image.Image
	}{
		"gray":  {fg: image.NewGray(image.Rect(0, 0, 4, 4))},
		"ycbcr": {fg: image.NewYCbCr(image.Rect(0, 0, 4, 4), image.YCbCrSubsampleRatio420)},
		"cmyk":  {fg: image.NewCMYK(image.Rect(0, 0, 4, 4))},
		"empty": {fg: image.NewNRGBA(image.Rect(0, 0, 0, 0))},
		"nil":   {fg: nil},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := photo.PlaceOnOpaque(tc.fg, color.White)
			require.Error(t, err)
			assert.ErrorIs(t, err, faults.ErrInvalidInputFormat)
		})
	}
}

func TestHasAlpha(t *testing.T) {
	t.Parallel()

	assert.True(t, photo.HasAlpha(image.NewNRGBA(image.Rect(0, 0, 1, 1))))
	assert.True(t, photo.HasAlpha(image.NewRGBA(image.Rect(0, 0, 1, 1))))
	assert.True(t, photo.HasAlpha(image.NewPaletted(image.Rect(0, 0, 1, 1), color.Palette{color.Transparent})))
	assert.False(t, photo.HasAlpha(image.NewGray16(image.Rect(0, 0, 1, 1))))
}

func TestEnhanceUniformImages(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		in       color.NRGBA
		expected color.NRGBA
	}{
		"white stays white": {
			in:       color.NRGBA{R: 255, G: 255, B: 255, A: 255},
			expected: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		},
		"gray is brightened": {
			in:       color.NRGBA{R: 100, G: 100, B: 100, A: 255},
			expected: color.NRGBA{R: 105, G: 105, B: 105, A: 255},
		},
		"black stays black": {
			in:       color.NRGBA{R: 0, G: 0, B: 0, A: 255},
			expected: color.NRGBA{R: 0, G: 0, B: 0, A: 255},
		},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := photo.Enhance(filledNRGBA(t, 16, 16, tc.in), photo.DefaultEnhance())
			require.Equal(t, image.Rect(0, 0, 16, 16), got.Bounds())
			assert.Equal(t, filledNRGBA(t, 16, 16, tc.expected).Pix, got.Pix)
		})
	}
}

func TestBrightnessClamps(t *testing.T) {
	t.Parallel()

	got := photo.Brightness(filledNRGBA(t, 2, 2, color.NRGBA{R: 250, G: 100, B: 0, A: 255}), 1.05)
	assert.Equal(t, color.NRGBA{R: 255, G: 105, B: 0, A: 255}, got.NRGBAAt(0, 0))
}

func TestContrastUsesMeanLuma(t *testing.T) {
	t.Parallel()

	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 100, G: 100, B: 100, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
	assert.InDelta(t, 150, photo.MeanLuma(img), 0.001)

	got := photo.Contrast(img, 1.2)
	assert.Equal(t, uint8(90), got.NRGBAAt(0, 0).R)
	assert.Equal(t, uint8(210), got.NRGBAAt(1, 0).R)
}

func TestSaturationKeepsGray(t *testing.T) {
	t.Parallel()

	gray := filledNRGBA(t, 3, 3, color.NRGBA{R: 77, G: 77, B: 77, A: 255})
	assert.Equal(t, gray.Pix, photo.Saturation(gray, 1.1).Pix)

	red := filledNRGBA(t, 1, 1, color.NRGBA{R: 200, G: 100, B: 100, A: 255})
	got := photo.Saturation(red, 1.1).NRGBAAt(0, 0)
	assert.Greater(t, got.R, uint8(200))
	assert.Less(t, got.G, uint8(100))
}

func TestUnsharpMaskSharpensEdge(t *testing.T) {
	t.Parallel()

	img := image.NewNRGBA(image.Rect(0, 0, 20, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 20; x++ {
			v := uint8(60)
			if x >= 10 {
				v = 180
			}
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}

	got := photo.UnsharpMask(img, 2, 150, 3)
	assert.Less(t, got.NRGBAAt(9, 1).R, uint8(60), "dark side of the edge gets darker")
	assert.Greater(t, got.NRGBAAt(10, 1).R, uint8(180), "bright side of the edge gets brighter")
	assert.Equal(t, uint8(60), got.NRGBAAt(0, 1).R, "flat area below threshold is untouched")
}

func TestResizeExact(t *testing.T) {
	t.Parallel()

	src := gradientNRGBA(t, 100, 50, 255)
	got, err := photo.ResizeExact(src, 354, 472)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 354, 472), got.Bounds())

	_, err = photo.ResizeExact(src, 0, 472)
	assert.ErrorIs(t, err, photo.ErrInvalidSize)
}
