package watermark

import (
	"io"
	"log"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
)

// LoadFace opens the TrueType/OpenType font at path at sizePx pixels. When the font
// cannot be read or parsed the built-in Go Mono face is used instead, and the second
// result is true. A missing font never fails the caller.
func LoadFace(path string, sizePx float64, logger *log.Logger) (font.Face, bool) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	face, err := openFace(path, sizePx)
	if err == nil {
		return face, false
	}
	logger.Printf("watermark: %v, falling back to built-in font", err)

	face, err = parseFace(gomono.TTF, sizePx)
	if err != nil {
		logger.Printf("watermark: %v, falling back to bitmap font", err)

		return basicfont.Face7x13, true
	}

	return face, true
}

func openFace(path string, sizePx float64) (font.Face, error) {
	if path == "" {
		return nil, errors.New("no font configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read font %s", path)
	}

	face, err := parseFace(data, sizePx)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to load font %s", path)
	}

	return face, nil
}

func parseFace(data []byte, sizePx float64) (font.Face, error) {
	fnt, err := opentype.Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse font")
	}

	// At 72 DPI one point is one pixel.
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    sizePx,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to create font face")
	}

	return face, nil
}
