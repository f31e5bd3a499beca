package segment_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os/exec"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopassphoto/passphoto/pkg/faults"
	"github.com/autopassphoto/passphoto/pkg/segment"
)

func cutout(t *testing.T) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 4, 6))
	img.SetNRGBA(1, 1, color.NRGBA{R: 200, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	t.Parallel()

	cut := cutout(t)

	var jpg bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpg, image.NewGray(image.Rect(0, 0, 3, 3)), nil))

	opaque := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := 3; i < len(opaque.Pix); i += 4 {
		opaque.Pix[i] = 0xff
	}
	var rgb bytes.Buffer
	require.NoError(t, png.Encode(&rgb, opaque))
	require.Equal(t, byte(2), rgb.Bytes()[25], "truecolour png without alpha")

	paletted := image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.Transparent, color.White})
	var pal bytes.Buffer
	require.NoError(t, png.Encode(&pal, paletted))

	errBoom := errors.New("boom")

	tcs := map[string]struct {
		seg       segment.Segmenter
		expectErr bool
		kind      error
		bounds    image.Rectangle
	}{
		"png cut-out": {
			seg:    segment.Func(func(context.Context, []byte) ([]byte, error) { return cut, nil }),
			bounds: image.Rect(0, 0, 4, 6),
		},
		"paletted png with a transparent entry": {
			seg:    segment.Func(func(context.Context, []byte) ([]byte, error) { return pal.Bytes(), nil }),
			bounds: image.Rect(0, 0, 2, 2),
		},
		"jpeg output has no alpha": {
			seg:       segment.Func(func(context.Context, []byte) ([]byte, error) { return jpg.Bytes(), nil }),
			expectErr: true,
			kind:      faults.ErrInvalidInputFormat,
		},
		"rgb png has no alpha": {
			seg:       segment.Func(func(context.Context, []byte) ([]byte, error) { return rgb.Bytes(), nil }),
			expectErr: true,
			kind:      faults.ErrInvalidInputFormat,
		},
		"segmenter error": {
			seg:       segment.Func(func(context.Context, []byte) ([]byte, error) { return nil, errBoom }),
			expectErr: true,
		},
		"empty output": {
			seg:       segment.Func(func(context.Context, []byte) ([]byte, error) { return nil, nil }),
			expectErr: true,
		},
		"garbage output": {
			seg:       segment.Func(func(context.Context, []byte) ([]byte, error) { return []byte("nope"), nil }),
			expectErr: true,
		},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			img, err := segment.Decode(context.Background(), tc.seg, []byte("photo"))
			if tc.expectErr {
				require.Error(t, err)

				kind := tc.kind
				if kind == nil {
					kind = faults.ErrSegmentationFailure
				}
				assert.ErrorIs(t, err, kind)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.bounds, img.Bounds())
		})
	}
}

func TestDecodeKeepsCause(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")
	seg := segment.Func(func(context.Context, []byte) ([]byte, error) { return nil, errBoom })

	_, err := segment.Decode(context.Background(), seg, []byte("photo"))
	assert.ErrorIs(t, err, errBoom)
	assert.ErrorIs(t, err, faults.ErrSegmentationFailure)
}

func TestPassthrough(t *testing.T) {
	t.Parallel()

	input := cutout(t)
	img, err := segment.Decode(context.Background(), segment.Passthrough{}, input)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 200, A: 255}, color.NRGBAModel.Convert(img.At(1, 1)))

	_, err = segment.Passthrough{}.Segment(context.Background(), nil)
	assert.ErrorIs(t, err, faults.ErrSegmentationFailure)
}

func TestCommand(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}

	input := cutout(t)
	output, err := segment.Command{Args: []string{"cat"}}.Segment(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, input, output)
}

func TestCommandMissingBinary(t *testing.T) {
	t.Parallel()

	_, err := segment.Command{Args: []string{"passphoto-no-such-segmenter"}}.Segment(context.Background(), []byte("photo"))
	require.Error(t, err)
	assert.ErrorIs(t, err, faults.ErrSegmentationFailure)
}

func TestCommandStderrMessage(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	_, err := segment.Command{Args: []string{"sh", "-c", "echo model missing >&2; exit 3"}}.
		Segment(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, faults.ErrSegmentationFailure)
	assert.Contains(t, err.Error(), "model missing")
}

func TestCommandCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := segment.Command{Args: []string{"cat"}}.Segment(ctx, []byte("photo"))
	assert.ErrorIs(t, err, faults.ErrSegmentationFailure)
}
