package drawer

import (
	"time"

	"github.com/pkg/errors"

	"github.com/autopassphoto/passphoto/pkg/pipeline/measure"
	"github.com/autopassphoto/passphoto/pkg/pipeline/model"
)

type pipelineDrawer struct {
	Drawer
	m         measure.Measure
	startTime time.Time
}

func (pd *pipelineDrawer) New() error {
	err := pd.AddStage(model.StartStage.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add start stage to drawer")
	}
	err = pd.AddStage(model.EndStage.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add end stage to drawer")
	}

	return nil
}

func (pd *pipelineDrawer) PrepareStage(parentStage, stage *model.StageInfo) error {
	err := pd.AddStage(stage.Name)
	if err != nil {
		return err
	}

	return pd.AddLink(parentStage.Name, stage.Name)
}

func (pd *pipelineDrawer) Finish() error {
	if pd.m != nil {
		err := pd.AddMeasure(pd.m)
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	}

	err := pd.SetTotalTime(model.EndStage.Name, pd.startTime)
	if err != nil {
		return errors.Wrap(err, "unable to set total time")
	}

	err = pd.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw pipeline")
	}

	return nil
}

func (pd *pipelineDrawer) OnStageOutput(_, _ *model.StageInfo, _ string, _ time.Duration) error {
	return nil
}

func (pd *pipelineDrawer) OnStageFailure(_ *model.StageInfo, _ string, _ error) error {
	return nil
}

func (pd *pipelineDrawer) AfterRun(_ string, _ time.Duration) error {
	return nil
}

// PipelineDrawer draws the stage graph when the pipeline finishes. When measure is
// set, stages are annotated with the durations it recorded; pass the same measure to
// measure.PipelineMeasure.
func PipelineDrawer(drawer Drawer, measure measure.Measure) model.PipelineOption {
	return &pipelineDrawer{drawer, measure, time.Now()}
}
