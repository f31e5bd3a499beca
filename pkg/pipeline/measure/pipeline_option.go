package measure

import (
	"time"

	"github.com/autopassphoto/passphoto/pkg/pipeline/model"
)

type pipelineMeasure struct {
	Measure
}

func (pm *pipelineMeasure) New() error {
	pm.AddMetric(model.StartStage.Name)
	pm.AddMetric(model.EndStage.Name)

	return nil
}

func (pm *pipelineMeasure) PrepareStage(_, stage *model.StageInfo) error {
	pm.AddMetric(stage.Name)

	return nil
}

func (pm *pipelineMeasure) OnStageOutput(_, stage *model.StageInfo, _ string, elapsed time.Duration) error {
	pm.AddMetric(stage.Name).AddDuration(elapsed)

	return nil
}

func (pm *pipelineMeasure) OnStageFailure(stage *model.StageInfo, _ string, _ error) error {
	pm.AddMetric(stage.Name).AddFailure()

	return nil
}

func (pm *pipelineMeasure) AfterRun(_ string, totalDuration time.Duration) error {
	pm.AddMetric(model.EndStage.Name).AddDuration(totalDuration)

	return nil
}

func (pm *pipelineMeasure) Finish() error {
	return nil
}

// PipelineMeasure records the duration of every stage into measure. The end stage
// holds the total duration of each successful run.
func PipelineMeasure(measure Measure) model.PipelineOption {
	return &pipelineMeasure{measure}
}
