package pipeline

import "github.com/autopassphoto/passphoto/pkg/faults"

const (
	StatusSuccess = "success"
	StatusError   = "error"

	// SuccessMessage is the message of every successful Result.
	SuccessMessage = "Processing completed."
)

// Result is the outcome of one photo, printed as JSON by the command line.
type Result struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Outputs []string `json:"outputs,omitempty"`
	// Input is only set by RunBatch.
	Input string `json:"input,omitempty"`

	// Stage is the name of the failing stage.
	Stage string `json:"-"`
	Err   error  `json:"-"`
}

// Success builds the result of a completed run.
func Success(outputs []string) Result {
	return Result{
		Status:  StatusSuccess,
		Message: SuccessMessage,
		Outputs: outputs,
	}
}

// Failure builds the result of a run stopped by err during stage.
func Failure(stage string, err error) Result {
	return Result{
		Status:  StatusError,
		Message: err.Error(),
		Stage:   stage,
		Err:     err,
	}
}

// OK reports whether the run completed.
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

// Kind returns the fault category of a failed result, nil when it has none.
func (r Result) Kind() error {
	return faults.Kind(r.Err)
}
