package main

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/danmuck/shaderctl/internal/protocol"
	"github.com/danmuck/shaderctl/internal/protocol/binding"
	"github.com/danmuck/shaderctl/internal/protocol/session"
	"github.com/danmuck/shaderctl/internal/testutil/testlog"
	"github.com/vmihailenco/msgpack/v5"
)

func withFormat(t *testing.T, format string) {
	t.Helper()
	prevFormat, prevColor := flagFormat, flagColor
	flagFormat, flagColor = format, "off"
	t.Cleanup(func() { flagFormat, flagColor = prevFormat, prevColor })
}

var sampleResult = session.CompileResult{
	OK:       true,
	Bindings: []binding.Binding{binding.Input{VariableSlot: 1, SemanticSlot: 1, Variable: "vertex", Semantic: "Vertex"}},
	Errors:   []protocol.Error{{Level: protocol.LevelWarning, Line: 3, File: "a.shader", Message: "careful"}},
	Shader:   "vs_4_0",
}

func TestEmitText(t *testing.T) {
	testlog.Start(t)
	withFormat(t, "text")
	var buf bytes.Buffer
	if err := emit(&buf, sampleResult, func(w io.Writer) error {
		writeCompile(w, sampleResult)
		return nil
	}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "careful") || !strings.Contains(out, "Bind \"vertex\" Vertex\n") || !strings.HasSuffix(out, "vs_4_0\n") {
		t.Fatalf("text=%q", out)
	}
}

func TestEmitJSONAndMsgpack(t *testing.T) {
	testlog.Start(t)
	withFormat(t, "json")
	var buf bytes.Buffer
	if err := emit(&buf, sampleResult, nil); err != nil {
		t.Fatalf("emit json: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if decoded["shader"] != "vs_4_0" || decoded["ok"] != true {
		t.Fatalf("json=%v", decoded)
	}

	withFormat(t, "msgpack")
	buf.Reset()
	if err := emit(&buf, versionPayload{Tool: "shaderctl", Version: "1"}, nil); err != nil {
		t.Fatalf("emit msgpack: %v", err)
	}
	var mp map[string]any
	if err := msgpack.Unmarshal(buf.Bytes(), &mp); err != nil {
		t.Fatalf("decode msgpack: %v", err)
	}
	if mp["tool"] != "shaderctl" {
		t.Fatalf("msgpack=%v", mp)
	}
}

func TestEmitRejectsUnknownFormat(t *testing.T) {
	testlog.Start(t)
	withFormat(t, "yaml")
	if err := emit(io.Discard, nil, nil); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLocationFor(t *testing.T) {
	testlog.Start(t)
	if got := locationFor("-", ""); got != "." {
		t.Fatalf("stdin location=%q", got)
	}
	if got := locationFor("Assets/Shaders/a.shader", ""); got != "Assets/Shaders" {
		t.Fatalf("location=%q", got)
	}
	if got := locationFor("a.shader", "Custom"); got != "Custom" {
		t.Fatalf("explicit location=%q", got)
	}
}
