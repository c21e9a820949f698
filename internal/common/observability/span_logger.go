package observability

import (
	"context"

	"subscription-manager/internal/common/logger"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// loggingProcessor writes every finished span to the logger at debug level.
type loggingProcessor struct {
	log logger.Logger
}

func newLoggingProcessor(log logger.Logger) sdktrace.SpanProcessor {
	return &loggingProcessor{log: log}
}

func (p *loggingProcessor) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (p *loggingProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	fields := map[string]interface{}{
		"span":       s.Name(),
		"traceId":    s.SpanContext().TraceID().String(),
		"durationMs": s.EndTime().Sub(s.StartTime()).Milliseconds(),
		"status":     s.Status().Code.String(),
	}
	for _, kv := range s.Attributes() {
		fields[string(kv.Key)] = kv.Value.Emit()
	}
	p.log.Debug("span finished", fields)
}

func (p *loggingProcessor) Shutdown(context.Context) error { return nil }

func (p *loggingProcessor) ForceFlush(context.Context) error { return nil }
