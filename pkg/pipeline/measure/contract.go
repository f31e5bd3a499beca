package measure

import "time"

// Measure holds one Metric per stage.
type Measure interface {
	AddMetric(name string) Metric
	GetMetric(name string) Metric
	AllMetrics() map[string]Metric
}

// Metric accumulates the durations of one stage over every input it processed.
type Metric interface {
	AddDuration(elapsed time.Duration)
	AddFailure()
	AVGDuration() time.Duration
	TotalDuration() time.Duration
	Count() int64
	Failures() int64
}
