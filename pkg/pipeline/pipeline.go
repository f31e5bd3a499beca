package pipeline

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/pkg/errors"

	"github.com/autopassphoto/passphoto/pkg/config"
	"github.com/autopassphoto/passphoto/pkg/pipeline/model"
	"github.com/autopassphoto/passphoto/pkg/segment"
)

// Pipeline runs photos through the passport-photo stages.
type Pipeline struct {
	cfg    config.Config
	seg    segment.Segmenter
	opts   []model.PipelineOption
	stages []stage
	logger *log.Logger
}

// New creates a new pipeline. cfg is validated and every option is initialised and
// told about every stage, start and end included.
func New(cfg config.Config, seg segment.Segmenter, opts ...model.PipelineOption) (*Pipeline, error) {
	if seg == nil {
		return nil, ErrSegmenterMustBeSet
	}

	err := cfg.Validate()
	if err != nil {
		return nil, errors.Wrap(err, "unable to create pipeline")
	}

	pipe := &Pipeline{
		cfg:    cfg,
		seg:    seg,
		opts:   opts,
		logger: log.New(io.Discard, "", 0),
	}
	pipe.stages = pipe.buildStages()

	for _, opt := range opts {
		if l, ok := opt.(interface{ Logger() *log.Logger }); ok && l.Logger() != nil {
			pipe.logger = l.Logger()
		}

		err := opt.New()
		if err != nil {
			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}

		parent := model.StartStage
		for _, st := range pipe.stages {
			err = opt.PrepareStage(parent, st.info)
			if err != nil {
				return nil, errors.Wrapf(err, "unable to prepare stage %s", st.info.Name)
			}
			parent = st.info
		}

		err = opt.PrepareStage(parent, model.EndStage)
		if err != nil {
			return nil, errors.Wrap(err, "unable to prepare end stage")
		}
	}

	return pipe, nil
}

// Config returns the configuration the pipeline was built with.
func (p *Pipeline) Config() config.Config {
	return p.cfg
}

// Run processes the photo at input and finishes the options. It never returns a Go
// error: failures are described by the Result.
func (p *Pipeline) Run(ctx context.Context, input string) Result {
	if p == nil {
		return Failure(model.StartStage.Name, ErrPipelineMustBeSet)
	}

	res := p.runJob(ctx, &job{input: input})

	err := p.finishRun()
	if err != nil && res.OK() {
		return Failure(model.EndStage.Name, err)
	}

	return res
}

func (p *Pipeline) runJob(ctx context.Context, j *job) Result {
	if j.input == "" {
		return Failure(model.StartStage.Name, ErrInputMustBeSet)
	}

	start := time.Now()
	parent := model.StartStage

	for _, st := range p.stages {
		if err := ctx.Err(); err != nil {
			return p.fail(j, st.info, errors.Wrap(err, "pipeline cancelled"))
		}

		begin := time.Now()

		err := runStage(ctx, st, j)
		if err != nil {
			return p.fail(j, st.info, err)
		}

		elapsed := time.Since(begin)
		for _, opt := range p.opts {
			err = opt.OnStageOutput(parent, st.info, j.input, elapsed)
			if err != nil {
				return p.fail(j, st.info, errors.Wrap(err, "unable to run stage output option"))
			}
		}

		parent = st.info
	}

	for _, opt := range p.opts {
		err := opt.AfterRun(j.input, time.Since(start))
		if err != nil {
			return Failure(model.EndStage.Name, errors.Wrap(err, "unable to run after run option"))
		}
	}

	return Success(j.outputs)
}

// runStage runs one stage, turning a panic into an error.
func runStage(ctx context.Context, st stage, j *job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("stage %s panicked: %v", st.info.Name, r)
		}
	}()

	return st.run(ctx, j)
}

func (p *Pipeline) fail(j *job, info *model.StageInfo, err error) Result {
	for _, opt := range p.opts {
		optErr := opt.OnStageFailure(info, j.input, err)
		if optErr != nil {
			p.logger.Printf("%s: unable to run stage failure option: %v", j.input, optErr)
		}
	}

	return Failure(info.Name, err)
}

func (p *Pipeline) finishRun() error {
	for _, opt := range p.opts {
		err := opt.Finish()
		if err != nil {
			return errors.Wrap(err, "unable to finish pipeline option")
		}
	}

	return nil
}
