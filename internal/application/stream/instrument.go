package stream

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"xhs-content-ai-api/pkg/logger"
	"xhs-content-ai-api/pkg/metrics"
)

// Instrument 透传事件，在终止事件处记录生成指标并结束 span
func Instrument(ctx context.Context, kind string, span trace.Span, in <-chan Event) <-chan Event {
	out := make(chan Event, cap(in))
	start := time.Now()
	metrics.ActiveStreams.Inc()

	go func() {
		defer close(out)
		defer metrics.ActiveStreams.Dec()

		status := "cancelled"
		defer func() {
			metrics.GenerationTotal.WithLabelValues(kind, status).Inc()
			metrics.GenerationDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
			if span != nil {
				if status == "error" {
					span.SetStatus(codes.Error, "generation failed")
				}
				span.End()
			}
		}()

		for e := range in {
			switch e.Name {
			case EventComplete:
				status = "success"
				logger.Info(ctx, "generation completed", "kind", kind, "duration_ms", time.Since(start).Milliseconds())
			case EventError:
				status = "error"
				if f, ok := e.Data.(Failure); ok {
					logger.Warn(ctx, "generation failed", "kind", kind, "error", f.Error)
				}
			}
			if !send(ctx, out, e) {
				return
			}
		}
	}()
	return out
}
