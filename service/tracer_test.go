package service

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-workout/domain"
)

func TestLogrusTracer_OnlyEnabledMetrics(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	tracer := NewLogrusTracer(log, []string{" per_diem ", ""})

	tracer.Trace(KeyPerDiem, logrus.Fields{"value": 33.33})
	tracer.Trace(KeyAPY, logrus.Fields{"value": 1.2})

	require.Len(t, hook.AllEntries(), 1)
	entry := hook.LastEntry()
	assert.Equal(t, "metric recomputed", entry.Message)
	assert.Equal(t, "per_diem", entry.Data["metric"])
	assert.Equal(t, 33.33, entry.Data["value"])
}

func TestLogrusTracer_Wildcard(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	e := readyEngine(t, WithTracer(NewLogrusTracer(log, []string{"*"})))

	assert.Len(t, hook.AllEntries(), len(e.Order()))
	hook.Reset()

	e.Edit(func(in *domain.EditableInputs) { in.PastWorkout = 10 })
	assert.Empty(t, hook.AllEntries())
}
