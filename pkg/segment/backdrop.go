//go:build gocv

package segment

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"

	"github.com/autopassphoto/passphoto/pkg/faults"
)

// Backdrop removes a flat studio backdrop with OpenCV. The backdrop colour is sampled
// from the image border; every pixel within Tolerance of it is background, and the
// largest remaining region is kept as the subject.
type Backdrop struct {
	// Tolerance is the per-channel distance from the backdrop colour, default 40.
	Tolerance int
	// Kernel is the size of the morphological clean-up kernel, default 7.
	Kernel int
}

// Segment returns a PNG of the subject with a transparent background.
func (b Backdrop) Segment(ctx context.Context, input []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, faults.Wrap(faults.ErrSegmentationFailure, err, "backdrop removal cancelled")
	}

	src, _, err := image.Decode(bytes.NewReader(input))
	if err != nil {
		return nil, faults.Wrap(faults.ErrSegmentationFailure, err, "unable to decode photo")
	}
	img := imaging.Clone(src)
	width, height := img.Rect.Dx(), img.Rect.Dy()
	if width < 3 || height < 3 {
		return nil, faults.Wrap(faults.ErrSegmentationFailure, nil, "photo too small")
	}

	mat, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC4, img.Pix)
	if err != nil {
		return nil, faults.Wrap(faults.ErrSegmentationFailure, err, "unable to load photo")
	}
	defer mat.Close()

	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(mat, &bgr, gocv.ColorRGBAToBGR)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(bgr, &blurred, image.Point{5, 5}, 0, 0, gocv.BorderDefault)

	tol := b.Tolerance
	if tol <= 0 {
		tol = 40
	}
	backdrop := borderColor(img)
	background := gocv.NewMat()
	defer background.Close()
	gocv.InRangeWithScalar(blurred,
		gocv.NewScalar(float64(int(backdrop.B)-tol), float64(int(backdrop.G)-tol), float64(int(backdrop.R)-tol), 0),
		gocv.NewScalar(float64(int(backdrop.B)+tol), float64(int(backdrop.G)+tol), float64(int(backdrop.R)+tol), 0),
		&background)

	subject := gocv.NewMat()
	defer subject.Close()
	gocv.BitwiseNot(background, &subject)

	size := b.Kernel
	if size <= 0 {
		size = 7
	}
	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{size, size})
	defer kernel.Close()
	gocv.MorphologyEx(subject, &subject, gocv.MorphOpen, kernel)
	gocv.MorphologyEx(subject, &subject, gocv.MorphClose, kernel)

	mask, err := largestRegion(subject)
	if err != nil {
		return nil, err
	}
	defer mask.Close()

	soft := gocv.NewMat()
	defer soft.Close()
	gocv.GaussianBlur(mask, &soft, image.Point{5, 5}, 0, 0, gocv.BorderDefault)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Pix[y*img.Stride+x*4+3] = soft.GetUCharAt(y, x)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, faults.Wrap(faults.ErrSegmentationFailure, err, "unable to encode cut-out")
	}

	return buf.Bytes(), nil
}

func largestRegion(subject gocv.Mat) (gocv.Mat, error) {
	contours := gocv.FindContours(subject, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	best, bestArea := -1, 0.0
	for i := 0; i < contours.Size(); i++ {
		area := gocv.ContourArea(contours.At(i))
		if area > bestArea {
			best, bestArea = i, area
		}
	}
	if best < 0 {
		return gocv.Mat{}, faults.Wrap(faults.ErrSegmentationFailure, nil, "no subject found in front of the backdrop")
	}

	mask := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), subject.Rows(), subject.Cols(), gocv.MatTypeCV8U)
	gocv.DrawContours(&mask, contours, best, color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)

	return mask, nil
}

// borderColor averages the outermost ring of pixels.
func borderColor(img *image.NRGBA) color.NRGBA {
	var r, g, b, n int

	add := func(x, y int) {
		c := img.NRGBAAt(x, y)
		r, g, b = r+int(c.R), g+int(c.G), b+int(c.B)
		n++
	}

	bounds := img.Rect
	for x := bounds.Min.X; x < bounds.Max.X; x++ {
		add(x, bounds.Min.Y)
		add(x, bounds.Max.Y-1)
	}
	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		add(bounds.Min.X, y)
		add(bounds.Max.X-1, y)
	}

	return color.NRGBA{R: uint8(r / n), G: uint8(g / n), B: uint8(b / n), A: 255}
}

var _ Segmenter = Backdrop{}
