package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danmuck/shaderctl/internal/protocol/session"
	"github.com/danmuck/shaderctl/internal/testutil/linetest"
	"github.com/danmuck/shaderctl/internal/testutil/testlog"
	"github.com/gin-gonic/gin"
)

func newTestServer(t *testing.T, reply ...string) (*Server, *session.Session, *linetest.Conn) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	conn := linetest.NewConn(reply...)
	s := session.New(conn, nil, session.Config{ID: t.Name()})
	return New("shaderctl-test", ":0", s, nil), s, conn
}

func do(t *testing.T, srv *Server, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.HTTPRouter().ServeHTTP(rr, req)

	var out map[string]any
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode %s %s: %v body=%s", method, path, err, rr.Body.String())
		}
	}
	return rr, out
}

func TestHealthAndReady(t *testing.T) {
	testlog.Start(t)
	srv, s, _ := newTestServer(t)
	rr, body := do(t, srv, http.MethodGet, "/health", nil)
	if rr.Code != http.StatusOK || body["status"] != "ok" || body["service"] != "shaderctl-test" {
		t.Fatalf("health: %d %v", rr.Code, body)
	}
	if rr, _ := do(t, srv, http.MethodGet, "/ready", nil); rr.Code != http.StatusOK {
		t.Fatalf("ready before close: %d", rr.Code)
	}
	_ = s.Close()
	rr, body = do(t, srv, http.MethodGet, "/ready", nil)
	if rr.Code != http.StatusServiceUnavailable || body["ready"] != false {
		t.Fatalf("ready after close: %d %v", rr.Code, body)
	}
}

func TestPlatformsRoute(t *testing.T) {
	testlog.Start(t)
	srv, _, conn := newTestServer(t, "-3085", "0", "0", "1", "0", "2", "8", "1", "1", "2", "10", "0", "0")
	rr, body := do(t, srv, http.MethodGet, "/platforms", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("platforms: %d %s", rr.Code, rr.Body.String())
	}
	values, ok := body["values"].([]any)
	if !ok || len(values) != 13 || values[0] != float64(-3085) {
		t.Fatalf("values=%v", body["values"])
	}
	if conn.Written() != "c:getPlatforms\n" {
		t.Fatalf("written=%q", conn.Written())
	}
}

func TestCompileRouteReturnsBindingsAndRenderedText(t *testing.T) {
	testlog.Start(t)
	srv, _, conn := newTestServer(t,
		"input: 1 1 0",
		"stats: 3 0 1",
		"shader: 1",
		`vs_4_0\nmov o0, v0`,
	)
	rr, body := do(t, srv, http.MethodPost, "/compile", compileBody{
		Source:   "float4 vert() {}",
		Location: "Assets",
		Keywords: []string{"FOG_LINEAR"},
		Stage:    "vertex",
		Platform: "d3d11",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("compile: %d %s", rr.Code, rr.Body.String())
	}
	if body["ok"] != true || body["shader"] != "vs_4_0\nmov o0, v0" {
		t.Fatalf("body=%v", body)
	}
	bindings, ok := body["bindings"].([]any)
	if !ok || len(bindings) != 2 {
		t.Fatalf("bindings=%v", body["bindings"])
	}
	first, _ := bindings[0].(map[string]any)
	if first["tag"] != "input:" {
		t.Fatalf("first binding=%v", first)
	}
	if body["rendered"] != "Bind \"vertex\" Vertex\n// Stats: 3 math, 1 branches\n" {
		t.Fatalf("rendered=%q", body["rendered"])
	}
	lines := conn.WrittenLines()
	if len(lines) != 9 || lines[len(lines)-1] != "4" || lines[5] != "FOG_LINEAR" {
		t.Fatalf("written=%q", lines)
	}
}

func TestCompileRouteRejectsBadInput(t *testing.T) {
	testlog.Start(t)
	srv, _, conn := newTestServer(t)
	if rr, _ := do(t, srv, http.MethodPost, "/compile", compileBody{Platform: "dreamcast"}); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad platform: %d", rr.Code)
	}
	if rr, _ := do(t, srv, http.MethodPost, "/compile", compileBody{Platform: "gles", Stage: "geometry"}); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad stage: %d", rr.Code)
	}
	if conn.Written() != "" {
		t.Fatalf("rejected requests reached the worker: %q", conn.Written())
	}
}

func TestDisposedSessionReturnsServiceUnavailable(t *testing.T) {
	testlog.Start(t)
	srv, s, _ := newTestServer(t)
	_ = s.Close()
	rr, body := do(t, srv, http.MethodPost, "/compile", compileBody{Platform: "opengl"})
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d body=%v", rr.Code, body)
	}
	if rr, _ := do(t, srv, http.MethodGet, "/platforms", nil); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("platforms status=%d", rr.Code)
	}
}

func TestProtocolViolationIsBadGateway(t *testing.T) {
	testlog.Start(t)
	srv, _, _ := newTestServer(t, "snip: 1 2 3")
	rr, _ := do(t, srv, http.MethodPost, "/preprocess", preprocessBody{Source: "x"})
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCompileAllRoute(t *testing.T) {
	testlog.Start(t)
	srv, _, _ := newTestServer(t,
		"snip: 7 0 3 0 0 1 2 3 0",
		"float4 frag() {}",
		"keywords: 1 7 A",
		"keywordsEnd: 7",
		"shader: 1",
		"Shader {}",
		"shader: 1",
		"ps_4_0",
	)
	rr, body := do(t, srv, http.MethodPost, "/compile-all", compileAllBody{Source: "Shader {}", Platform: "4"})
	if rr.Code != http.StatusOK {
		t.Fatalf("compile-all: %d %s", rr.Code, rr.Body.String())
	}
	programs, ok := body["programs"].([]any)
	if !ok || len(programs) != 1 {
		t.Fatalf("programs=%v", body["programs"])
	}
	prog, _ := programs[0].(map[string]any)
	result, _ := prog["result"].(map[string]any)
	if prog["program_id"] != float64(7) || result["shader"] != "ps_4_0" {
		t.Fatalf("program=%v", prog)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	testlog.Start(t)
	srv, _, _ := newTestServer(t)
	do(t, srv, http.MethodGet, "/health", nil)
	rr, _ := do(t, srv, http.MethodGet, "/metrics", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "shaderctl_http_requests_total") {
		t.Fatalf("metrics: %d", rr.Code)
	}
}

func TestFailedCommandClosesSession(t *testing.T) {
	testlog.Start(t)
	srv, s, conn := newTestServer(t,
		"const: _C x 1 1 0",
		"shader: 1",
		"STALE",
	)
	body := compileBody{Source: "float4 vert() {}", Location: "Assets", Platform: "gles"}
	if rr, _ := do(t, srv, http.MethodPost, "/compile", body); rr.Code != http.StatusBadGateway {
		t.Fatalf("first compile: %d %s", rr.Code, rr.Body.String())
	}
	if !s.Disposed() {
		t.Fatalf("session still open after a failed reply")
	}
	written := conn.Written()
	if !strings.HasSuffix(written, "\n\n") {
		t.Fatalf("shutdown line not sent: %q", written)
	}
	rr, out := do(t, srv, http.MethodPost, "/compile", body)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("second compile: %d %v", rr.Code, out)
	}
	if out["shader"] == "STALE" {
		t.Fatalf("second request read the first reply")
	}
	if rr, _ := do(t, srv, http.MethodGet, "/ready", nil); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("ready: %d", rr.Code)
	}
	if conn.Written() != written {
		t.Fatalf("closed session touched the channel")
	}
}

func TestUnframeableRequestIsBadRequest(t *testing.T) {
	testlog.Start(t)
	srv, s, conn := newTestServer(t, "shader: 1", "ps_4_0")
	rr, _ := do(t, srv, http.MethodPost, "/compile", compileBody{
		Source:   "x",
		Keywords: []string{"A\nB"},
		Platform: "gles",
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if conn.Written() != "" || s.Disposed() {
		t.Fatalf("written=%q disposed=%v", conn.Written(), s.Disposed())
	}
	rr, out := do(t, srv, http.MethodPost, "/compile", compileBody{Source: "x", Platform: "gles"})
	if rr.Code != http.StatusOK || out["shader"] != "ps_4_0" {
		t.Fatalf("follow-up: %d %v", rr.Code, out)
	}
}
