package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/autoagent/internal/ports"
	rest "github.com/Gunvolt24/autoagent/internal/transport/http"
	"github.com/Gunvolt24/autoagent/internal/transport/mcp"
	"github.com/Gunvolt24/autoagent/pkg/ctxmeta"
	"github.com/Gunvolt24/autoagent/pkg/httpx"
)

type noopLogger struct{}

func (noopLogger) Infof(context.Context, string, ...any)  {}
func (noopLogger) Warnf(context.Context, string, ...any)  {}
func (noopLogger) Errorf(context.Context, string, ...any) {}

// fakeRPC — запоминает тело и IP клиента из контекста.
type fakeRPC struct {
	calls int
	body  string
	ip    string
}

func (f *fakeRPC) HandleBody(ctx context.Context, body []byte) mcp.Response {
	f.calls++
	f.body = string(body)
	f.ip, _ = ctxmeta.ClientIPFromContext(ctx)
	return mcp.NewResult(json.RawMessage(`1`), map[string]string{"ok": "yes"})
}

var agents = []string{"openai-mcp", "ChatGPT", "curl", "test"}

func newRouter(rpc rest.RPCHandler, opts rest.Options) *gin.Engine {
	gin.SetMode(gin.TestMode)
	if opts.AllowedAgents == nil {
		opts.AllowedAgents = agents
	}
	return rest.NewRouter(rest.NewHandler(rpc, noopLogger{}, opts), "")
}

func postMCP(r http.Handler, body, ua string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v body=%s", err, w.Body.String())
	}
	return out
}

func TestMCP_Post_DispatchesWithClientIP(t *testing.T) {
	rpc := &fakeRPC{}
	r := newRouter(rpc, rest.Options{})

	w := postMCP(r, `{"jsonrpc":"2.0","id":1,"method":"ping"}`, "openai-mcp/1.0")

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d body=%s", w.Code, w.Body.String())
	}
	if rpc.calls != 1 || !strings.Contains(rpc.body, `"method":"ping"`) {
		t.Fatalf("rpc not called with body: calls=%d body=%q", rpc.calls, rpc.body)
	}
	if rpc.ip == "" {
		t.Fatalf("client ip must be in context")
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("CORS header missing")
	}
	if w.Header().Get("Content-Security-Policy") != httpx.ChatGPTFrameCSP {
		t.Fatalf("CSP header missing")
	}
	if w.Header().Get(httpx.HeaderRequestID) == "" {
		t.Fatalf("request id header missing")
	}
}

func TestMCP_UnauthorizedUserAgent(t *testing.T) {
	rpc := &fakeRPC{}
	r := newRouter(rpc, rest.Options{})

	w := postMCP(r, `{"jsonrpc":"2.0","id":7,"method":"ping"}`, "Mozilla/5.0")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", w.Code)
	}
	out := decode(t, w)
	e := out["error"].(map[string]any)
	if e["code"].(float64) != mcp.CodeUnauthorized || e["data"] != "Only OpenAI MCP clients are allowed" {
		t.Fatalf("error=%v", e)
	}
	if out["id"].(float64) != 7 {
		t.Fatalf("id must be taken from body, got %v", out["id"])
	}
	if rpc.calls != 0 {
		t.Fatalf("rpc must not be called")
	}
}

func TestMCP_RateLimited(t *testing.T) {
	rpc := &fakeRPC{}
	r := newRouter(rpc, rest.Options{Limiter: httpx.NewIPLimiter(2, time.Minute)})

	for i := 0; i < 2; i++ {
		if w := postMCP(r, `{"jsonrpc":"2.0","id":1,"method":"ping"}`, "curl/8"); w.Code != http.StatusOK {
			t.Fatalf("request #%d: code=%d", i, w.Code)
		}
	}
	w := postMCP(r, `{"jsonrpc":"2.0","id":3,"method":"ping"}`, "curl/8")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("want 429, got %d", w.Code)
	}
	e := decode(t, w)["error"].(map[string]any)
	if e["code"].(float64) != mcp.CodeRateLimited || e["message"] != "Rate limit exceeded" {
		t.Fatalf("error=%v", e)
	}
	if w.Header().Get("X-RateLimit-Limit") != "2" || w.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("rate limit headers: %v", w.Header())
	}
	if rpc.calls != 2 {
		t.Fatalf("rpc calls=%d want 2", rpc.calls)
	}
}

func TestMCP_HeadOptionsAndMethodNotAllowed(t *testing.T) {
	r := newRouter(&fakeRPC{}, rest.Options{})

	for _, m := range []string{http.MethodHead, http.MethodOptions} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(m, "/mcp", http.NoBody))
		if w.Code != http.StatusOK {
			t.Fatalf("%s /mcp: want 200, got %d", m, w.Code)
		}
		if w.Header().Get("Access-Control-Allow-Methods") != "POST, OPTIONS" {
			t.Fatalf("%s /mcp: CORS methods missing", m)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/mcp", http.NoBody))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET /mcp: want 405, got %d", w.Code)
	}
	if decode(t, w)["error"] != "Method not allowed" {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestMCP_RealServer_PingUI(t *testing.T) {
	srv := mcp.NewServer(nil, nil, mcp.WidgetLinks{Host: "http://localhost:8787"}, noopLogger{}, mcp.Options{
		NewRunID: func() string { return "rid-1" },
	})
	r := newRouter(srv, rest.Options{})

	w := postMCP(r, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"ping-ui"}}`, "test-agent")
	if w.Code != http.StatusOK {
		t.Fatalf("code=%d", w.Code)
	}
	res := decode(t, w)["result"].(map[string]any)
	url := res["components"].([]any)[0].(map[string]any)["url"]
	if url != "http://localhost:8787/widget/ping?rid=rid-1&diag=1" {
		t.Fatalf("url=%v", url)
	}

	// тот же URL отдаёт HTML виджета
	wg := httptest.NewRecorder()
	r.ServeHTTP(wg, httptest.NewRequest(http.MethodGet, "/widget/ping?rid=rid-1&diag=1", http.NoBody))
	if wg.Code != http.StatusOK || !strings.Contains(wg.Body.String(), "<!DOCTYPE html>") {
		t.Fatalf("widget: code=%d", wg.Code)
	}
}

func TestWidget_HeadersAndNoCache(t *testing.T) {
	r := newRouter(&fakeRPC{}, rest.Options{})

	for _, name := range []string{"ping", "micro", "vehicle-results"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/widget/"+name+"?rid=abc", http.NoBody))

		if w.Code != http.StatusOK {
			t.Fatalf("%s: code=%d", name, w.Code)
		}
		if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Fatalf("%s: content-type=%q", name, ct)
		}
		if w.Header().Get("Cache-Control") != "no-cache, no-store, must-revalidate" {
			t.Fatalf("%s: cache-control=%q", name, w.Header().Get("Cache-Control"))
		}
		if w.Header().Get("x-aa-run-id") != "abc" || w.Header().Get("x-aa-diag") != "0" {
			t.Fatalf("%s: diag headers=%v", name, w.Header())
		}
		if w.Header().Get("X-Frame-Options") != "" {
			t.Fatalf("%s: X-Frame-Options must not be set", name)
		}
	}
}

func TestWidget_CustomFSAndMissingFile(t *testing.T) {
	fsys := fstest.MapFS{"ping.html": {Data: []byte("<p>custom</p>")}}
	r := newRouter(&fakeRPC{}, rest.Options{Widgets: fsys})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/widget/ping?diag=1", http.NoBody))
	if w.Body.String() != "<p>custom</p>" || w.Header().Get("x-aa-run-id") != "none" || w.Header().Get("x-aa-diag") != "1" {
		t.Fatalf("custom widget: body=%q headers=%v", w.Body.String(), w.Header())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/widget/micro", http.NoBody))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("missing widget: want 500, got %d", w.Code)
	}
}

func TestBeaconAndConsole(t *testing.T) {
	r := newRouter(&fakeRPC{}, rest.Options{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/widget/beacon", http.NoBody))
	if w.Code != http.StatusOK || decode(t, w)["ok"] != true {
		t.Fatalf("GET beacon: %d %s", w.Code, w.Body.String())
	}

	for _, path := range []string{"/widget/beacon", "/widget/console?rid=r1"} {
		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"rid":"r1","tag":"ui:ready"}`)))
		if w.Code != http.StatusOK || decode(t, w)["ok"] != true {
			t.Fatalf("POST %s: %d %s", path, w.Code, w.Body.String())
		}
	}
}

func TestServiceEndpoints(t *testing.T) {
	r := newRouter(&fakeRPC{}, rest.Options{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	if decode(t, w)["service"] != "AutoAgent MCP Server" {
		t.Fatalf("root: %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", http.NoBody))
	if decode(t, w)["pong"] != "pong" {
		t.Fatalf("ping: %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	h := decode(t, w)
	if w.Code != http.StatusOK || h["status"] != "healthy" || h["ok"] != true || h["service"] != rest.ServiceName {
		t.Fatalf("health: %d %v", w.Code, h)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	if w.Code != http.StatusOK {
		t.Fatalf("metrics: %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/no/such/route", http.NoBody))
	if w.Code != http.StatusNotFound || decode(t, w)["error"] != "Not found" {
		t.Fatalf("404: %d %s", w.Code, w.Body.String())
	}
}

func TestHealth_DegradedWhenCheckFails(t *testing.T) {
	checks := []ports.HealthChecker{
		ports.HealthFunc{CheckName: "leads", Fn: func(context.Context) error { return nil }},
		ports.HealthFunc{CheckName: "kafka", Fn: func(context.Context) error { return errors.New("broker down") }},
	}
	r := newRouter(&fakeRPC{}, rest.Options{Health: checks})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("want 503, got %d", w.Code)
	}
	h := decode(t, w)
	got := h["checks"].(map[string]any)
	if h["status"] != "degraded" || got["leads"] != "ok" || got["kafka"] != "broker down" {
		t.Fatalf("health=%v", h)
	}
}
