package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/danmuck/shaderctl/internal/protocol"
	"github.com/danmuck/shaderctl/internal/protocol/session"
	"github.com/danmuck/shaderctl/internal/testutil/linetest"
	"github.com/danmuck/shaderctl/internal/testutil/testlog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func spanAttr(span sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracingHookSpansSessionCommands(t *testing.T) {
	testlog.Start(t)
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	conn := linetest.NewConn("-3085", "0", "0", "1", "0", "2", "8", "1", "1", "2", "10", "0", "0", "shader: 1")
	s := session.New(conn, nil, session.Config{ID: "trace-test", Hooks: []session.Hook{NewTracingHook(tp)}})
	if _, err := s.GetPlatforms(context.Background()); err != nil {
		t.Fatalf("get platforms: %v", err)
	}
	if _, err := s.CompileSnippet(context.Background(), session.CompileRequest{}); err == nil {
		t.Fatalf("expected truncated compile reply")
	}

	spans := sr.Ended()
	if len(spans) != 2 {
		t.Fatalf("spans=%d", len(spans))
	}
	if spans[0].Name() != "shaderctl/"+protocol.CommandGetPlatforms || spans[0].Status().Code != codes.Ok {
		t.Fatalf("first span=%s status=%v", spans[0].Name(), spans[0].Status())
	}
	if v, ok := spanAttr(spans[0], "shaderctl.lines_in"); !ok || v.AsInt64() != 13 {
		t.Fatalf("lines_in=%v ok=%v", v, ok)
	}
	if v, ok := spanAttr(spans[0], "shaderctl.session"); !ok || v.AsString() != "trace-test" {
		t.Fatalf("session attr=%v", v)
	}
	if spans[1].Status().Code != codes.Error || len(spans[1].Events()) == 0 {
		t.Fatalf("second span status=%v events=%d", spans[1].Status(), len(spans[1].Events()))
	}
}

func TestStdoutTracerProviderWritesSpans(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	tp, err := NewStdoutTracerProvider(&buf)
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	hook := NewTracingHook(tp)
	info := session.CommandInfo{Command: protocol.CommandPreprocess, SessionID: "stdout"}
	ctx, token := hook.OnCommandStart(context.Background(), info)
	hook.OnCommandEnd(ctx, token, info, nil, errors.New("worker went away"))
	if err := tp.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if !strings.Contains(buf.String(), "shaderctl/"+protocol.CommandPreprocess) {
		t.Fatalf("exported=%q", buf.String())
	}
}
