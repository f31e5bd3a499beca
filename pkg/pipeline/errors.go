package pipeline

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrPipelineMustBeSet  = errors.New("pipeline must be set")
	ErrSegmenterMustBeSet = errors.New("segmenter must be set")
	ErrInputMustBeSet     = errors.New("input must be set")
)

type errorChans struct {
	mu   sync.Mutex
	list []*errorChan
}

func (ec *errorChans) add(errChan *errorChan) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.list = append(ec.list, errChan)
}

type errorChan struct {
	c    <-chan error
	name string
}

func newErrorChan(name string, c <-chan error) *errorChan {
	return &errorChan{
		c:    c,
		name: name,
	}
}

// mergeErrors merges multiple channels of errors.
// Based on https://blog.golang.org/pipelines.
func mergeErrors(cs ...*errorChan) <-chan error {
	var wg sync.WaitGroup
	// One slot per input channel: each channel carries at most one error.
	out := make(chan error, len(cs))

	output := func(c *errorChan) {
		defer wg.Done()
		if c.c == nil {
			return
		}
		for n := range c.c {
			out <- errors.Wrap(n, c.name)
		}
	}
	wg.Add(len(cs))
	for _, c := range cs {
		go output(c)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// waitForBatch waits until every error channel is closed and returns the first error.
// The first error cancels the batch so the remaining steps unwind.
func waitForBatch(cancel context.CancelFunc, errs ...*errorChan) error {
	var first error

	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil && first == nil {
			first = err
			cancel()
		}
	}

	return first
}
