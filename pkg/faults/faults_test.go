package faults_test

import (
	"io/fs"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/autopassphoto/passphoto/pkg/faults"
)

func TestWrapMatchesKindAndCause(t *testing.T) {
	t.Parallel()

	err := faults.Wrap(faults.ErrResourceUnavailable, fs.ErrNotExist, "unable to open input.jpg")
	assert.ErrorIs(t, err, faults.ErrResourceUnavailable)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.NotErrorIs(t, err, faults.ErrIOFailure)
	assert.Equal(t, "unable to open input.jpg: file does not exist", err.Error())
}

func TestWrapNilCause(t *testing.T) {
	t.Parallel()

	err := faults.Wrap(faults.ErrInvalidInputFormat, nil, "image has no alpha channel")
	assert.ErrorIs(t, err, faults.ErrInvalidInputFormat)
	assert.Equal(t, "image has no alpha channel: invalid input format", err.Error())
}

func TestWrapf(t *testing.T) {
	t.Parallel()

	err := faults.Wrapf(faults.ErrIOFailure, assert.AnError, "unable to write %s", "sheet.jpg")
	assert.ErrorIs(t, err, faults.ErrIOFailure)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "unable to write sheet.jpg")

	err = faults.Wrapf(faults.ErrInvalidInputFormat, nil, "%d%% of %q", 50, "tile")
	assert.Equal(t, `50% of "tile": invalid input format`, err.Error())
}

func TestKind(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		err      error
		expected error
	}{
		"nil":          {err: nil, expected: nil},
		"unclassified": {err: assert.AnError, expected: nil},
		"segmentation": {err: faults.Wrap(faults.ErrSegmentationFailure, assert.AnError, "segment"), expected: faults.ErrSegmentationFailure},
		"wrapped again": {
			err:      errors.Wrap(faults.Wrap(faults.ErrIOFailure, assert.AnError, "write"), "export"),
			expected: faults.ErrIOFailure,
		},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, faults.Kind(tc.err))
		})
	}
}
