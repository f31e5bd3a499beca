package drawer

import (
	"time"

	"github.com/autopassphoto/passphoto/pkg/pipeline/measure"
)

// Drawer is an interface that defines the methods for drawing a pipeline.
type Drawer interface {
	// AddStage adds a stage to the pipeline drawer.
	AddStage(name string) error
	// AddLink adds a link between a parent and a child stage.
	AddLink(parentName, childName string) error
	// Draw creates a file with the pipeline graph.
	Draw() error
	// SetTotalTime labels the stage with the time elapsed since start.
	SetTotalTime(stageName string, start time.Time) error
	// AddMeasure annotates stages and links with the recorded durations.
	AddMeasure(measure measure.Measure) error
}
