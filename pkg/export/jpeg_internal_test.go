package export

import (
	"bytes"
	"image"
	"image/jpeg"
	"io"
	"testing"

	"github.com/garyhouston/jpegsegs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func app0Count(t *testing.T, data []byte) int {
	t.Helper()

	scanner, err := jpegsegs.NewScanner(bytes.NewReader(data))
	require.NoError(t, err)

	count := 0
	for {
		marker, buf, err := scanner.Scan()
		require.NoError(t, err)

		if marker == jpegsegs.SOS {
			return count
		}
		if marker == jpegsegs.APP0 && isJFIF(buf) {
			count++
		}
	}
}

func TestWithDensityReplacesJFIF(t *testing.T) {
	t.Parallel()

	var plain bytes.Buffer
	require.NoError(t, jpeg.Encode(&plain, image.NewGray(image.Rect(0, 0, 8, 8)), nil))

	first, err := withDensity(plain.Bytes(), 72)
	require.NoError(t, err)
	assert.Equal(t, 1, app0Count(t, first))

	second, err := withDensity(first, 300)
	require.NoError(t, err)
	assert.Equal(t, 1, app0Count(t, second))

	density, err := ReadDensity(bytes.NewReader(second))
	require.NoError(t, err)
	assert.Equal(t, Density{Units: densityUnitsDPI, X: 300, Y: 300}, density)

	img, err := jpeg.Decode(bytes.NewReader(second))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 8), img.Bounds())
}

func TestWithDensityErrors(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		data []byte
		dpi  int
	}{
		"not a jpeg":      {data: []byte("GIF89a"), dpi: 300},
		"density too big": {data: []byte{0xff, 0xd8}, dpi: 70000},
		"zero density":    {data: []byte{0xff, 0xd8}, dpi: 0},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := withDensity(tc.data, tc.dpi)
			assert.Error(t, err)
		})
	}
}

func TestJFIFPayload(t *testing.T) {
	t.Parallel()

	payload := jfif(300)
	assert.Equal(t, []byte{'J', 'F', 'I', 'F', 0, 1, 1, 1, 0x01, 0x2c, 0x01, 0x2c, 0, 0}, payload)
	assert.True(t, isJFIF(payload))
	assert.False(t, isJFIF([]byte("Exif\x00\x00")))
}

func TestWriteBuffer(t *testing.T) {
	t.Parallel()

	buf := &writeBuffer{}
	_, err := buf.Write([]byte("abcdef"))
	require.NoError(t, err)

	pos, err := buf.Seek(2, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pos)

	_, err = buf.Write([]byte("XY"))
	require.NoError(t, err)
	assert.Equal(t, []byte("abXYef"), buf.data)

	_, err = buf.Seek(-1, io.SeekEnd)
	require.NoError(t, err)
	_, err = buf.Write([]byte("ZZ"))
	require.NoError(t, err)
	assert.Equal(t, []byte("abXYeZZ"), buf.data)

	_, err = buf.Seek(-100, io.SeekCurrent)
	assert.Error(t, err)
}
