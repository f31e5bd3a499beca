package units_test

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/autopassphoto/passphoto/pkg/units"
)

func TestCmToPx(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		cm       float64
		dpi      int
		expected int
	}{
		"zero":          {cm: 0, dpi: 300, expected: 0},
		"zero low dpi":  {cm: 0, dpi: 1, expected: 0},
		"one inch":      {cm: 2.54, dpi: 300, expected: 300},
		"photo width":   {cm: 3, dpi: 300, expected: 354},
		"photo height":  {cm: 4, dpi: 300, expected: 472},
		"sheet width":   {cm: 13, dpi: 300, expected: 1535},
		"sheet height":  {cm: 18, dpi: 300, expected: 2125},
		"margin":        {cm: 0.5, dpi: 300, expected: 59},
		"gap":           {cm: 0.1, dpi: 300, expected: 11},
		"text margin":   {cm: 0.3, dpi: 300, expected: 35},
		"negative":      {cm: -1, dpi: 300, expected: 0},
		"invalid dpi":   {cm: 3, dpi: 0, expected: 0},
		"sub pixel":     {cm: 0.001, dpi: 300, expected: 0},
		"one inch 72":   {cm: 2.54, dpi: 72, expected: 72},
		"two inches 96": {cm: 5.08, dpi: 96, expected: 192},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, units.CmToPx(tc.cm, tc.dpi))
		})
	}
}

func TestCmToPxMonotonic(t *testing.T) {
	t.Parallel()

	for _, dpi := range []int{72, 150, 300, 600} {
		prev := 0
		for i := 0; i <= 2000; i++ {
			got := units.CmToPx(float64(i)*0.01, dpi)
			assert.GreaterOrEqual(t, got, prev, "dpi %d at %d", dpi, i)
			prev = got
		}
	}
}

func TestSize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, image.Pt(354, 472), units.Size(3, 4, 300))
	assert.Equal(t, image.Pt(1535, 2125), units.Size(13, 18, 300))
}
