// Package units converts physical print lengths into pixel counts.
package units

import (
	"image"
	"math"
)

// CentimetersPerInch is the exact length of one inch.
const CentimetersPerInch = 2.54

// CmToPx converts a length in centimeters to whole pixels at the given resolution.
// The result is truncated, never rounded: a tile that is a fraction of a pixel too
// large for the sheet must not be counted as fitting.
func CmToPx(lengthCm float64, dpi int) int {
	if lengthCm <= 0 || dpi <= 0 {
		return 0
	}

	return int(math.Floor(lengthCm / CentimetersPerInch * float64(dpi)))
}

// Size converts a width and height in centimeters to a pixel size.
func Size(widthCm, heightCm float64, dpi int) image.Point {
	return image.Pt(CmToPx(widthCm, dpi), CmToPx(heightCm, dpi))
}
