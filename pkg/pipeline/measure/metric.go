package measure

import (
	"sync"
	"time"
)

type DefaultMetric struct {
	mu       sync.Mutex
	elapsed  time.Duration
	total    int64
	failures int64
}

func (mt *DefaultMetric) AddDuration(elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.total++
	mt.elapsed += elapsed
}

func (mt *DefaultMetric) AddFailure() {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.failures++
}

func (mt *DefaultMetric) AVGDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if mt.total == 0 {
		return time.Duration(0)
	}

	return round(time.Duration(float64(mt.elapsed) / float64(mt.total)))
}

func (mt *DefaultMetric) TotalDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.elapsed
}

func (mt *DefaultMetric) Count() int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.total
}

func (mt *DefaultMetric) Failures() int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.failures
}

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Hour:
		d = d.Round(time.Minute)
	case d > time.Minute:
		d = d.Round(time.Second)
	case d > time.Second:
		d = d.Round(time.Millisecond)
	case d > time.Millisecond:
		d = d.Round(time.Microsecond)
	}

	return d
}

var _ Metric = (*DefaultMetric)(nil)
