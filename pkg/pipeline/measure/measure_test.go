package measure_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopassphoto/passphoto/pkg/pipeline/measure"
	"github.com/autopassphoto/passphoto/pkg/pipeline/model"
)

func TestDefaultMeasureAddMetric(t *testing.T) {
	t.Parallel()

	m := measure.NewDefaultMeasure()
	first := m.AddMetric("resize")
	second := m.AddMetric("resize")

	assert.Same(t, first, second)
	assert.Same(t, first, m.GetMetric("resize"))
	assert.Nil(t, m.GetMetric("missing"))
	assert.Len(t, m.AllMetrics(), 1)
}

func TestDefaultMetric(t *testing.T) {
	t.Parallel()

	mt := &measure.DefaultMetric{}
	assert.Equal(t, time.Duration(0), mt.AVGDuration())

	mt.AddDuration(10 * time.Millisecond)
	mt.AddDuration(30 * time.Millisecond)
	mt.AddFailure()

	assert.Equal(t, 20*time.Millisecond, mt.AVGDuration())
	assert.Equal(t, 40*time.Millisecond, mt.TotalDuration())
	assert.Equal(t, int64(2), mt.Count())
	assert.Equal(t, int64(1), mt.Failures())
}

func TestDefaultMetricConcurrent(t *testing.T) {
	t.Parallel()

	m := measure.NewDefaultMeasure()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.AddMetric("enhance").AddDuration(time.Millisecond)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), m.GetMetric("enhance").Count())
}

func TestPipelineMeasure(t *testing.T) {
	t.Parallel()

	m := measure.NewDefaultMeasure()
	opt := measure.PipelineMeasure(m)

	resize := &model.StageInfo{Name: "resize", Index: 1}

	require.NoError(t, opt.New())
	require.NoError(t, opt.PrepareStage(model.StartStage, resize))
	require.NoError(t, opt.OnStageOutput(model.StartStage, resize, "a.jpg", 4*time.Millisecond))
	require.NoError(t, opt.OnStageFailure(resize, "b.jpg", assert.AnError))
	require.NoError(t, opt.AfterRun("a.jpg", 9*time.Millisecond))
	require.NoError(t, opt.Finish())

	all := m.AllMetrics()
	assert.Len(t, all, 3)
	assert.Equal(t, 4*time.Millisecond, all["resize"].AVGDuration())
	assert.Equal(t, int64(1), all["resize"].Failures())
	assert.Equal(t, 9*time.Millisecond, all["end"].AVGDuration())
	assert.Equal(t, int64(0), all["start"].Count())
}
