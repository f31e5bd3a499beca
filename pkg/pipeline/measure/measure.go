package measure

import (
	"sync"
)

type DefaultMeasure struct {
	mu     sync.RWMutex
	stages map[string]Metric
}

func NewDefaultMeasure() *DefaultMeasure {
	return &DefaultMeasure{
		stages: make(map[string]Metric),
	}
}

// AddMetric returns the metric of the stage, creating it on first use.
func (m *DefaultMeasure) AddMetric(name string) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	if mt, ok := m.stages[name]; ok {
		return mt
	}

	mt := &DefaultMetric{}
	m.stages[name] = mt

	return mt
}

// GetMetric returns nil for an unknown stage.
func (m *DefaultMeasure) GetMetric(name string) Metric {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.stages[name]
}

func (m *DefaultMeasure) AllMetrics() map[string]Metric {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make(map[string]Metric, len(m.stages))
	for name, mt := range m.stages {
		all[name] = mt
	}

	return all
}

var _ Measure = (*DefaultMeasure)(nil)
