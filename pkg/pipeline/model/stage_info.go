package model

// StageInfo describes one stage of the pipeline.
type StageInfo struct {
	Name string
	// Index is the position of the stage, 0 for start.
	Index int
}

var (
	StartStage = &StageInfo{Name: "start"}
	EndStage   = &StageInfo{Name: "end"}
)
