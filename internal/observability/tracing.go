package observability

import (
	"context"
	"fmt"
	"io"

	"github.com/danmuck/shaderctl/internal/protocol/session"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/danmuck/shaderctl/session"

// TracingHook opens one client span per worker command.
type TracingHook struct {
	tracer trace.Tracer
}

var _ session.Hook = (*TracingHook)(nil)

// NewTracingHook uses tp, or the global provider when tp is nil.
func NewTracingHook(tp trace.TracerProvider) *TracingHook {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &TracingHook{tracer: tp.Tracer(instrumentationName)}
}

func (h *TracingHook) OnCommandStart(ctx context.Context, info session.CommandInfo) (context.Context, session.HookToken) {
	ctx, span := h.tracer.Start(ctx, "shaderctl/"+info.Command,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("shaderctl.command", info.Command),
			attribute.String("shaderctl.session", info.SessionID),
		),
	)
	return ctx, span
}

func (h *TracingHook) OnCommandEnd(_ context.Context, token session.HookToken, _ session.CommandInfo, stats *session.CommandStats, err error) {
	span, ok := token.(trace.Span)
	if !ok {
		return
	}
	defer span.End()
	if !span.IsRecording() {
		return
	}
	if stats != nil {
		span.SetAttributes(
			attribute.Int64("shaderctl.lines_out", stats.LinesWritten),
			attribute.Int64("shaderctl.lines_in", stats.LinesRead),
			attribute.Int64("shaderctl.bytes_out", stats.BytesWritten),
			attribute.Int64("shaderctl.bytes_in", stats.BytesRead),
			attribute.Int64("shaderctl.dropped", stats.Dropped),
		)
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		span.SetAttributes(attribute.String("shaderctl.error_type", fmt.Sprintf("%T", err)))
		return
	}
	span.SetStatus(codes.Ok, "")
}

// NewStdoutTracerProvider exports finished spans as JSON to w.
// Callers must Shutdown the provider to flush.
func NewStdoutTracerProvider(w io.Writer) (*sdktrace.TracerProvider, error) {
	exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("observability: stdout trace exporter: %w", err)
	}
	return sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp)), nil
}
