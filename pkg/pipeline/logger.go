package pipeline

import (
	"io"
	"log"
	"time"

	"github.com/autopassphoto/passphoto/pkg/pipeline/model"
)

type pipelineLogger struct {
	logger *log.Logger
}

func (pl *pipelineLogger) New() error {
	return nil
}

func (pl *pipelineLogger) PrepareStage(_, _ *model.StageInfo) error {
	return nil
}

func (pl *pipelineLogger) OnStageOutput(_, stage *model.StageInfo, input string, elapsed time.Duration) error {
	pl.logger.Printf("%s: %s done in %s", input, stage.Name, elapsed.Round(time.Microsecond))

	return nil
}

func (pl *pipelineLogger) OnStageFailure(stage *model.StageInfo, input string, err error) error {
	pl.logger.Printf("%s: %s failed: %v", input, stage.Name, err)

	return nil
}

func (pl *pipelineLogger) AfterRun(input string, totalDuration time.Duration) error {
	pl.logger.Printf("%s: completed in %s", input, totalDuration.Round(time.Millisecond))

	return nil
}

func (pl *pipelineLogger) Finish() error {
	return nil
}

// Logger lets the pipeline route its own messages, such as font fallbacks, to the same
// logger.
func (pl *pipelineLogger) Logger() *log.Logger {
	return pl.logger
}

// PipelineLogger writes one line per stage to logger. A nil logger discards them.
func PipelineLogger(logger *log.Logger) model.PipelineOption {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &pipelineLogger{logger: logger}
}
