// Package faults defines the kinds of failure a passport-photo run can end with.
//
// Every error that aborts a run is classified with one of the sentinel kinds below so
// callers can branch with errors.Is while still seeing the underlying cause.
package faults

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidInputFormat reports a raster that lacks a required channel.
	ErrInvalidInputFormat = errors.New("invalid input format")
	// ErrResourceUnavailable reports a missing input file or other resource.
	ErrResourceUnavailable = errors.New("resource unavailable")
	// ErrIOFailure reports a failed read or write.
	ErrIOFailure = errors.New("io failure")
	// ErrSegmentationFailure reports a failing or unusable background removal.
	ErrSegmentationFailure = errors.New("segmentation failure")
)

type kindError struct {
	kind  error
	cause error
	msg   string
}

func (e *kindError) Error() string {
	if e.cause == nil {
		return e.msg + ": " + e.kind.Error()
	}

	return e.msg + ": " + e.cause.Error()
}

func (e *kindError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}

	return []error{e.kind, e.cause}
}

// Wrap classifies cause as kind. The returned error matches both kind and cause with
// errors.Is. A nil cause yields an error carrying only the kind.
func Wrap(kind, cause error, msg string) error {
	return &kindError{kind: kind, cause: cause, msg: msg}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(kind, cause error, format string, args ...interface{}) error {
	return &kindError{kind: kind, cause: cause, msg: fmt.Sprintf(format, args...)}
}

// Kind returns the first taxonomy kind err matches, or nil.
func Kind(err error) error {
	for _, kind := range []error{ErrInvalidInputFormat, ErrResourceUnavailable, ErrIOFailure, ErrSegmentationFailure} {
		if errors.Is(err, kind) {
			return kind
		}
	}

	return nil
}
