// Package export writes finished rasters to disk at a given print resolution.
package export

import (
	"bytes"
	"encoding/binary"
	"image"
	"io"
	"os"

	"github.com/disintegration/imaging"
	"github.com/garyhouston/jpegsegs"
	"github.com/pkg/errors"

	"github.com/autopassphoto/passphoto/pkg/faults"
)

const densityUnitsDPI = 1

var jfifID = []byte("JFIF\x00")

var (
	// ErrNotJPEG is returned when a stream does not start with a JPEG SOI marker.
	ErrNotJPEG = errors.New("not a jpeg stream")
	// ErrNoDensity is returned when a JPEG carries no JFIF density.
	ErrNoDensity = errors.New("no jfif density")
)

// Density is the pixel density recorded in a JFIF header.
type Density struct {
	// Units is 0 for an aspect ratio only, 1 for dots per inch and 2 for dots per cm.
	Units uint8
	X, Y  uint16
}

// EncodeJPEG returns img encoded at quality with a JFIF header recording dpi.
func EncodeJPEG(img image.Image, dpi, quality int) ([]byte, error) {
	var buf bytes.Buffer

	err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality))
	if err != nil {
		return nil, errors.Wrap(err, "unable to encode jpeg")
	}

	return withDensity(buf.Bytes(), dpi)
}

// JPEG writes img to w, see EncodeJPEG.
func JPEG(w io.Writer, img image.Image, dpi, quality int) error {
	data, err := EncodeJPEG(img, dpi, quality)
	if err != nil {
		return err
	}

	_, err = w.Write(data)
	if err != nil {
		return faults.Wrap(faults.ErrIOFailure, err, "unable to write jpeg")
	}

	return nil
}

// WriteJPEG writes img as a JPEG file at path. Every failure is a faults.ErrIOFailure.
func WriteJPEG(path string, img image.Image, dpi, quality int) error {
	data, err := EncodeJPEG(img, dpi, quality)
	if err != nil {
		return faults.Wrapf(faults.ErrIOFailure, err, "unable to export %s", path)
	}

	return WriteFile(path, data)
}

// WriteFile writes data to path, closing the file on every path.
func WriteFile(path string, data []byte) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return faults.Wrapf(faults.ErrIOFailure, err, "unable to create %s", path)
	}
	defer func() {
		cErr := file.Close()
		if cErr != nil && err == nil {
			err = faults.Wrapf(faults.ErrIOFailure, cErr, "unable to close %s", path)
		}
	}()

	_, err = file.Write(data)
	if err != nil {
		return faults.Wrapf(faults.ErrIOFailure, err, "unable to write %s", path)
	}

	return nil
}

// withDensity rewrites the segments of data with a JFIF APP0 segment recording dpi
// right after SOI, dropping any JFIF segment already present.
func withDensity(data []byte, dpi int) ([]byte, error) {
	if dpi <= 0 || dpi > 0xffff {
		return nil, errors.Errorf("unable to record density %d", dpi)
	}

	scanner, err := jpegsegs.NewScanner(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(ErrNotJPEG, err.Error())
	}

	out := &writeBuffer{}
	dumper, err := jpegsegs.NewDumper(out)
	if err != nil {
		return nil, errors.Wrap(err, "unable to start jpeg output")
	}

	err = dumper.Dump(jpegsegs.APP0, jfif(dpi))
	if err != nil {
		return nil, errors.Wrap(err, "unable to write jfif segment")
	}

	for {
		marker, buf, err := scanner.Scan()
		if err != nil {
			return nil, errors.Wrap(err, "unable to scan jpeg segments")
		}

		if marker == jpegsegs.APP0 && isJFIF(buf) {
			continue
		}

		err = dumper.Dump(marker, buf)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to write segment %#x", uint8(marker))
		}

		if marker == jpegsegs.SOS {
			err = dumper.Copy(scanner)
			if err != nil {
				return nil, errors.Wrap(err, "unable to copy image data")
			}

			return out.data, nil
		}
	}
}

// jfif is the payload of a version 1.01 JFIF APP0 segment without thumbnail.
func jfif(dpi int) []byte {
	payload := make([]byte, 0, 14)
	payload = append(payload, jfifID...)
	payload = append(payload, 1, 1, densityUnitsDPI)
	payload = binary.BigEndian.AppendUint16(payload, uint16(dpi))
	payload = binary.BigEndian.AppendUint16(payload, uint16(dpi))

	return append(payload, 0, 0)
}

func isJFIF(payload []byte) bool {
	return len(payload) >= 12 && bytes.HasPrefix(payload, jfifID)
}

// ReadDensity returns the JFIF density of the JPEG stream in r.
func ReadDensity(r io.Reader) (Density, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return Density{}, errors.Wrap(err, "unable to read jpeg")
		}
		rs = bytes.NewReader(data)
	}

	scanner, err := jpegsegs.NewScanner(rs)
	if err != nil {
		return Density{}, errors.Wrap(ErrNotJPEG, err.Error())
	}

	for {
		marker, buf, err := scanner.Scan()
		if err != nil {
			return Density{}, errors.Wrap(err, "unable to scan jpeg segments")
		}

		switch {
		case marker == jpegsegs.SOS, marker == jpegsegs.EOI:
			return Density{}, ErrNoDensity
		case marker == jpegsegs.APP0 && isJFIF(buf):
			return Density{
				Units: buf[7],
				X:     binary.BigEndian.Uint16(buf[8:10]),
				Y:     binary.BigEndian.Uint16(buf[10:12]),
			}, nil
		}
	}
}

// writeBuffer is an in-memory io.WriteSeeker for the segment dumper.
type writeBuffer struct {
	data []byte
	pos  int
}

func (b *writeBuffer) Write(p []byte) (int, error) {
	if grow := b.pos + len(p) - len(b.data); grow > 0 {
		b.data = append(b.data, make([]byte, grow)...)
	}
	copy(b.data[b.pos:], p)
	b.pos += len(p)

	return len(p), nil
}

func (b *writeBuffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64

	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(b.pos) + offset
	case io.SeekEnd:
		abs = int64(len(b.data)) + offset
	default:
		return 0, errors.Errorf("invalid whence %d", whence)
	}

	if abs < 0 {
		return 0, errors.New("negative position")
	}
	b.pos = int(abs)

	return abs, nil
}
