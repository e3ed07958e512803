package service

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Tracer receives a record every time the engine recomputes a metric.
type Tracer interface {
	Trace(metric Key, fields logrus.Fields)
}

type NopTracer struct{}

func (NopTracer) Trace(Key, logrus.Fields) {}

// LogrusTracer logs recomputations at debug level for the metrics it was
// asked to follow.
type LogrusTracer struct {
	log     *logrus.Logger
	all     bool
	enabled map[Key]bool
}

// NewLogrusTracer follows the named metrics; "*" follows all of them.
func NewLogrusTracer(log *logrus.Logger, metrics []string) *LogrusTracer {
	t := &LogrusTracer{log: log, enabled: make(map[Key]bool)}
	for _, m := range metrics {
		m = strings.TrimSpace(m)
		switch m {
		case "":
		case "*":
			t.all = true
		default:
			t.enabled[Key(m)] = true
		}
	}
	return t
}

func (t *LogrusTracer) Trace(metric Key, fields logrus.Fields) {
	if !t.all && !t.enabled[metric] {
		return
	}
	t.log.WithField("metric", string(metric)).WithFields(fields).Debug("metric recomputed")
}
