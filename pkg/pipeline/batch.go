package pipeline

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/autopassphoto/passphoto/pkg/pipeline/model"
)

// step is one link of the batch engine: a named channel fed by a goroutine.
type step[O any] struct {
	name       string
	output     chan O
	concurrent int
}

type indexed[T any] struct {
	idx   int
	value T
}

// RunBatch processes every input, at most concurrency at a time, and finishes the
// options once all are done. The i-th Result belongs to inputs[i] and has its Input
// field set. Outputs of each input are prefixed with the input's base name, so
// "a/me.png" produces "me_photo_3x4.jpg".
func (p *Pipeline) RunBatch(ctx context.Context, inputs []string, concurrency int) []Result {
	if p == nil {
		return nil
	}

	results := make([]Result, len(inputs))
	if concurrency < 1 {
		concurrency = 1
	}

	dCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errcList := &errorChans{}

	jobs := addRootStep(dCtx, errcList, "inputs", func(ctx context.Context, out chan<- indexed[*job]) error {
		for i, input := range inputs {
			j := &job{input: input, prefix: stem(input) + "_"}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case out <- indexed[*job]{idx: i, value: j}:
			}
		}

		return nil
	})

	done := addStep(dCtx, errcList, "photos", jobs, concurrency, func(ctx context.Context, in indexed[*job]) (indexed[Result], error) {
		res := p.runJob(ctx, in.value)
		res.Input = in.value.input

		return indexed[Result]{idx: in.idx, value: res}, nil
	})

	addSink(dCtx, errcList, "results", done, func(_ context.Context, in indexed[Result]) error {
		results[in.idx] = in.value

		return nil
	})

	err := waitForBatch(cancel, errcList.list...)
	if err == nil {
		err = ctx.Err()
	}

	for i, res := range results {
		if res.Status != "" {
			continue
		}

		cause := err
		if cause == nil {
			cause = errors.New("input was not processed")
		}

		results[i] = Failure(model.StartStage.Name, errors.Wrap(cause, "pipeline cancelled"))
		results[i].Input = inputs[i]
	}

	err = p.finishRun()
	if err != nil {
		p.logger.Printf("batch: %v", err)

		for i := range results {
			if results[i].OK() {
				input := results[i].Input
				results[i] = Failure(model.EndStage.Name, err)
				results[i].Input = input
			}
		}
	}

	return results
}

func stem(path string) string {
	base := filepath.Base(path)

	return strings.TrimSuffix(base, filepath.Ext(base))
}

func addRootStep[O any](ctx context.Context, errcList *errorChans, name string, stepFn func(ctx context.Context, rootChan chan<- O) error) *step[O] {
	errC := make(chan error, 1)
	output := make(chan O)
	errcList.add(newErrorChan(name, errC))

	go func() {
		defer func() {
			close(output)
			close(errC)
		}()

		err := stepFn(ctx, output)
		if err != nil {
			errC <- err
		}
	}()

	return &step[O]{name: name, output: output, concurrent: 1}
}

func addStep[I, O any](ctx context.Context, errcList *errorChans, name string, input *step[I], concurrent int, oneToOneFn func(context.Context, I) (O, error)) *step[O] {
	errC := make(chan error, 1)
	output := &step[O]{name: name, output: make(chan O), concurrent: concurrent}
	errcList.add(newErrorChan(name, errC))

	go func() {
		defer func() {
			close(output.output)
			close(errC)
		}()

		err := oneToOne(ctx, input, output, oneToOneFn)
		if err != nil {
			errC <- err
		}
	}()

	return output
}

func addSink[I any](ctx context.Context, errcList *errorChans, name string, input *step[I], sinkFn func(context.Context, I) error) {
	errC := make(chan error, 1)
	errcList.add(newErrorChan(name, errC))

	go func() {
		defer close(errC)

		for {
			select {
			case <-ctx.Done():
				errC <- ctx.Err()

				return
			case in, ok := <-input.output:
				if !ok {
					return
				}

				err := sinkFn(ctx, in)
				if err != nil {
					errC <- err

					return
				}
			}
		}
	}()
}

func sequentialOneToOneFn[I, O any](ctx context.Context, goIdx int, input *step[I], output *step[O], oneToOneFn func(context.Context, I) (O, error)) error {
	for {
		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "go routine %d", goIdx)
		case in, ok := <-input.output:
			if !ok {
				return nil
			}

			out, err := oneToOneFn(ctx, in)
			if err != nil {
				return errors.Wrapf(err, "go routine %d", goIdx)
			}

			// check the context again so no routine pushes new elements once cancelled
			select {
			case <-ctx.Done():
				return errors.Wrapf(ctx.Err(), "go routine %d", goIdx)
			case output.output <- out:
			}
		}
	}
}

func oneToOne[I, O any](ctx context.Context, input *step[I], output *step[O], oneToOneFn func(context.Context, I) (O, error)) error {
	if output.concurrent <= 1 {
		return sequentialOneToOneFn(ctx, 0, input, output, oneToOneFn)
	}

	errGrp, dCtx := errgroup.WithContext(ctx)
	errGrp.SetLimit(output.concurrent)

	for goIdx := 0; goIdx < output.concurrent; goIdx++ {
		errGrp.Go(func() error {
			return sequentialOneToOneFn(dCtx, goIdx, input, output, oneToOneFn)
		})
	}

	return errGrp.Wait()
}
