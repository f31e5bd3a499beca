package export

import (
	"bytes"
	"io"

	"github.com/jung-kurt/gofpdf/v2"

	"github.com/autopassphoto/passphoto/pkg/faults"
)

const sheetImageName = "sheet"

// PDF writes a single-page PDF of exactly widthCm×heightCm whose page is filled by the
// JPEG in jpegData, so the sheet prints at its physical size.
func PDF(w io.Writer, jpegData []byte, widthCm, heightCm float64) error {
	widthMm, heightMm := widthCm*10, heightCm*10

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: widthMm, Ht: heightMm},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "JPG"}
	pdf.RegisterImageOptionsReader(sheetImageName, opts, bytes.NewReader(jpegData))
	pdf.ImageOptions(sheetImageName, 0, 0, widthMm, heightMm, false, opts, 0, "")

	err := pdf.Output(w)
	if err != nil {
		return faults.Wrap(faults.ErrIOFailure, err, "unable to render pdf")
	}

	return nil
}

// WritePDF writes the PDF produced by PDF to path.
func WritePDF(path string, jpegData []byte, widthCm, heightCm float64) error {
	var buf bytes.Buffer

	err := PDF(&buf, jpegData, widthCm, heightCm)
	if err != nil {
		return faults.Wrapf(faults.ErrIOFailure, err, "unable to export %s", path)
	}

	return WriteFile(path, buf.Bytes())
}
