package model

import "time"

// PipelineOption defines the interface for pipeline observers.
//
// A pipeline running a batch calls the stage hooks from several goroutines at once, so
// implementations must be safe for concurrent use.
type PipelineOption interface {
	// New initialises the pipeline option.
	New() error
	// PrepareStage runs once per stage when the pipeline is built, parent first.
	PrepareStage(parentStage, stage *StageInfo) error

	pipelineRunOption

	// Finish runs after the pipeline is finished.
	Finish() error
}

// pipelineRunOption defines the hooks called while a photo goes through the stages.
type pipelineRunOption interface {
	// OnStageOutput runs every time a stage completes for an input.
	OnStageOutput(parentStage, stage *StageInfo, input string, elapsed time.Duration) error
	// OnStageFailure runs when a stage fails for an input. The run stops right after.
	OnStageFailure(stage *StageInfo, input string, err error) error
	// AfterRun runs once every stage completed for an input.
	AfterRun(input string, totalDuration time.Duration) error
}
