package telemetry

import (
	"context"

	"github.com/sirupsen/logrus"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// LogProcessor writes every finished span to the logger at debug level
type LogProcessor struct {
	logger *logrus.Logger
}

// NewLogProcessor creates a span processor backed by logger
func NewLogProcessor(logger *logrus.Logger) *LogProcessor {
	return &LogProcessor{logger: logger}
}

func (p *LogProcessor) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (p *LogProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	fields := logrus.Fields{
		"span":        s.Name(),
		"trace_id":    s.SpanContext().TraceID().String(),
		"duration_ms": s.EndTime().Sub(s.StartTime()).Milliseconds(),
		"status":      s.Status().Code.String(),
	}
	for _, kv := range s.Attributes() {
		fields[string(kv.Key)] = kv.Value.Emit()
	}
	p.logger.WithFields(fields).Debug("Span finished")
}

func (p *LogProcessor) Shutdown(context.Context) error   { return nil }
func (p *LogProcessor) ForceFlush(context.Context) error { return nil }
