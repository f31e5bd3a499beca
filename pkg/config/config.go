// Package config holds the physical dimensions and print settings of a passport sheet.
//
// A Config is a plain value: build it with Default or Load and pass it by value.
package config

import (
	"bytes"
	"image"
	"image/color"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1"
	"gopkg.in/yaml.v3"

	"github.com/autopassphoto/passphoto/pkg/faults"
	"github.com/autopassphoto/passphoto/pkg/photo"
	"github.com/autopassphoto/passphoto/pkg/units"
)

var (
	// ErrInvalidConfig is returned by Validate.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrInvalidColor is returned when a colour string cannot be parsed.
	ErrInvalidColor = errors.New("invalid color")
)

// Config describes one passport-photo product.
type Config struct {
	DPI        int                 `yaml:"dpi"`
	Photo      Size                `yaml:"photo"`
	Sheet      Size                `yaml:"sheet"`
	MarginCm   float64             `yaml:"margin_cm"`
	GapCm      float64             `yaml:"gap_cm"`
	Border     Border              `yaml:"border"`
	Background string              `yaml:"background"`
	Enhance    photo.EnhanceParams `yaml:"enhance"`
	Watermark  Watermark           `yaml:"watermark"`
	Output     Output              `yaml:"output"`
}

// Size is a physical width and height in centimeters.
type Size struct {
	WidthCm  float64 `yaml:"width_cm"`
	HeightCm float64 `yaml:"height_cm"`
}

// Border is the outline drawn around every tile of the sheet.
type Border struct {
	Color   string `yaml:"color"`
	WidthPx int    `yaml:"width_px"`
}

// Watermark is the caption stamped in the bottom-left corner of the sheet.
type Watermark struct {
	Text       string  `yaml:"text"`
	Font       string  `yaml:"font"`
	FontSizeCm float64 `yaml:"font_size_cm"`
	MarginCm   float64 `yaml:"margin_cm"`
	Color      string  `yaml:"color"`
}

// Output names the produced files.
type Output struct {
	Dir      string `yaml:"dir"`
	Photo    string `yaml:"photo"`
	Sheet    string `yaml:"sheet"`
	PDF      string `yaml:"pdf"`
	WritePDF bool   `yaml:"write_pdf"`
	Quality  int    `yaml:"quality"`
}

// Default returns the 3×4 cm photo on a 13×18 cm sheet at 300 DPI.
func Default() Config {
	return Config{
		DPI:      300,
		Photo:    Size{WidthCm: 3, HeightCm: 4},
		Sheet:    Size{WidthCm: 13, HeightCm: 18},
		MarginCm: 0.5,
		GapCm:    0.1,
		Border: Border{
			Color:   "#969696",
			WidthPx: 2,
		},
		Background: "#ffffff",
		Enhance:    photo.DefaultEnhance(),
		Watermark: Watermark{
			Text:       "Create BY : github.com/vahidzahani",
			Font:       "cour.ttf",
			FontSizeCm: 0.3,
			MarginCm:   0.3,
			Color:      "rgba(0,0,0,0.47)",
		},
		Output: Output{
			Dir:     ".",
			Photo:   "photo_3x4.jpg",
			Sheet:   "photo_13x18.jpg",
			PDF:     "photo_13x18.pdf",
			Quality: 95,
		},
	}
}

// Load reads a YAML file and overlays it on Default. Keys absent from the file keep
// their default value.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, faults.Wrapf(faults.ErrResourceUnavailable, err, "unable to read config %s", path)
	}

	return Parse(data)
}

// Parse overlays YAML data on Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	err := dec.Decode(&cfg)
	if err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrap(err, "unable to parse config")
	}

	err = cfg.Validate()
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate reports the first setting that cannot produce a sheet.
func (c Config) Validate() error {
	switch {
	case c.DPI <= 0:
		return errors.Wrapf(ErrInvalidConfig, "dpi must be positive, got %d", c.DPI)
	case c.Photo.WidthCm <= 0 || c.Photo.HeightCm <= 0:
		return errors.Wrap(ErrInvalidConfig, "photo size must be positive")
	case c.Sheet.WidthCm <= 0 || c.Sheet.HeightCm <= 0:
		return errors.Wrap(ErrInvalidConfig, "sheet size must be positive")
	case c.MarginCm < 0 || c.GapCm < 0 || c.Watermark.MarginCm < 0:
		return errors.Wrap(ErrInvalidConfig, "margins and gap must not be negative")
	case c.Border.WidthPx < 0:
		return errors.Wrap(ErrInvalidConfig, "border width must not be negative")
	case c.Output.Quality < 1 || c.Output.Quality > 100:
		return errors.Wrapf(ErrInvalidConfig, "quality must be within 1..100, got %d", c.Output.Quality)
	case c.Output.Photo == "" || c.Output.Sheet == "":
		return errors.Wrap(ErrInvalidConfig, "output file names must be set")
	case c.Output.WritePDF && c.Output.PDF == "":
		return errors.Wrap(ErrInvalidConfig, "pdf file name must be set")
	}

	for name, value := range map[string]string{
		"background":      c.Background,
		"border.color":    c.Border.Color,
		"watermark.color": c.Watermark.Color,
	} {
		if _, err := ParseColor(value); err != nil {
			return errors.Wrapf(ErrInvalidConfig, "%s: %v", name, err)
		}
	}

	return nil
}

// PhotoPx is the size of a single photo in pixels.
func (c Config) PhotoPx() image.Point {
	return units.Size(c.Photo.WidthCm, c.Photo.HeightCm, c.DPI)
}

// SheetPx is the size of the sheet in pixels.
func (c Config) SheetPx() image.Point {
	return units.Size(c.Sheet.WidthCm, c.Sheet.HeightCm, c.DPI)
}

// MarginPx is the sheet margin, the same on both axes.
func (c Config) MarginPx() image.Point {
	m := units.CmToPx(c.MarginCm, c.DPI)

	return image.Point{X: m, Y: m}
}

func (c Config) GapPx() int {
	return units.CmToPx(c.GapCm, c.DPI)
}

func (c Config) TextMarginPx() int {
	return units.CmToPx(c.Watermark.MarginCm, c.DPI)
}

func (c Config) FontPx() int {
	return units.CmToPx(c.Watermark.FontSizeCm, c.DPI)
}

// BackgroundColor is the parsed Background, forced opaque.
func (c Config) BackgroundColor() color.NRGBA {
	bg := MustParseColor(c.Background)
	bg.A = 255

	return bg
}

// BorderColor is the parsed border colour, forced opaque so the sheet stays opaque.
func (c Config) BorderColor() color.NRGBA {
	border := MustParseColor(c.Border.Color)
	border.A = 255

	return border
}

func (c Config) WatermarkColor() color.NRGBA {
	return MustParseColor(c.Watermark.Color)
}

// ParseColor accepts #rgb, #rrggbb, rgb(r,g,b) and rgba(r,g,b,a) with a in [0,1].
func ParseColor(s string) (color.NRGBA, error) {
	parsed, err := colors.Parse(s)
	if err != nil {
		return color.NRGBA{}, errors.Wrapf(ErrInvalidColor, "%q: %v", s, err)
	}

	rgba := parsed.ToRGBA()

	return color.NRGBA{
		R: rgba.R,
		G: rgba.G,
		B: rgba.B,
		A: uint8(math.Round(math.Max(0, math.Min(1, rgba.A)) * 255)),
	}, nil
}

// MustParseColor is ParseColor for values already checked by Validate. It panics on a
// malformed colour.
func MustParseColor(s string) color.NRGBA {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}

	return c
}
