package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Gunvolt24/autoagent/internal/domain"
	"github.com/Gunvolt24/autoagent/pkg/ctxmeta"
)

type noopLogger struct{}

func (noopLogger) Infof(context.Context, string, ...any)  {}
func (noopLogger) Warnf(context.Context, string, ...any)  {}
func (noopLogger) Errorf(context.Context, string, ...any) {}

type fakeSearch struct {
	out  domain.SearchOutcome
	err  error
	args json.RawMessage
}

func (f *fakeSearch) SearchFromArgs(_ context.Context, raw json.RawMessage) (domain.SearchParams, domain.SearchOutcome, error) {
	f.args = raw
	if f.err != nil {
		return domain.SearchParams{}, domain.SearchOutcome{}, f.err
	}
	return domain.SearchParams{Location: "Seattle, WA", Condition: domain.ConditionUsed}, f.out, nil
}

type fakeLeads struct {
	gotIP string
	err   error
}

func (f *fakeLeads) SubmitFromArgs(_ context.Context, _ json.RawMessage, ip string) (domain.LeadReceipt, error) {
	f.gotIP = ip
	if f.err != nil {
		return domain.LeadReceipt{}, f.err
	}
	return domain.LeadReceipt{LeadID: "lead-1", VehicleID: "v1", VIN: "1HGCM82633A004352"}, nil
}

type fakeLevels struct{ got string }

func (f *fakeLevels) SetLevel(name string) error {
	if name == "bogus" {
		return fmt.Errorf("unknown log level %q", name)
	}
	f.got = name
	return nil
}

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestServer(search *fakeSearch, leads *fakeLeads, levels LevelSetter) *Server {
	now := t0
	return NewServer(search, leads, WidgetLinks{Host: "https://widgets.example.com/"}, noopLogger{}, Options{
		Levels:   levels,
		Now:      func() time.Time { now = now.Add(time.Second); return now },
		NewRunID: func() string { return "run-1" },
	})
}

func call(t *testing.T, s *Server, ctx context.Context, body string) map[string]any {
	t.Helper()
	resp := s.HandleBody(ctx, []byte(body))
	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	return out
}

func errorOf(t *testing.T, out map[string]any) (code int, data string) {
	t.Helper()
	e, ok := out["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error, got %v", out)
	}
	data, _ = e["data"].(string)
	return int(e["code"].(float64)), data
}

func TestInitialize_EchoesProtocolVersion(t *testing.T) {
	s := newTestServer(&fakeSearch{}, &fakeLeads{}, nil)

	out := call(t, s, context.Background(), `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26"}}`)
	res := out["result"].(map[string]any)

	if res["protocolVersion"] != "2025-03-26" {
		t.Fatalf("protocolVersion=%v", res["protocolVersion"])
	}
	info := res["serverInfo"].(map[string]any)
	if info["name"] != ServerName || info["version"] != ServerVersion {
		t.Fatalf("serverInfo=%v", info)
	}
	caps := res["capabilities"].(map[string]any)
	for _, k := range []string{"tools", "resources", "prompts", "logging"} {
		if _, ok := caps[k]; !ok {
			t.Fatalf("capability %q missing: %v", k, caps)
		}
	}
	if out["id"].(float64) != 1 {
		t.Fatalf("id must be echoed, got %v", out["id"])
	}
}

func TestInitialize_DefaultVersionWithoutParams(t *testing.T) {
	s := newTestServer(&fakeSearch{}, &fakeLeads{}, nil)
	out := call(t, s, context.Background(), `{"jsonrpc":"2.0","id":"a","method":"initialize"}`)
	if out["result"].(map[string]any)["protocolVersion"] != DefaultProtocolVersion {
		t.Fatalf("unexpected result: %v", out)
	}
	if out["id"] != "a" {
		t.Fatalf("string id must be echoed, got %v", out["id"])
	}
}

func TestToolsList_DeclaresAllTools(t *testing.T) {
	s := newTestServer(&fakeSearch{}, &fakeLeads{}, nil)
	out := call(t, s, context.Background(), `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)

	tools := out["result"].(map[string]any)["tools"].([]any)
	names := map[string]map[string]any{}
	for _, raw := range tools {
		tool := raw.(map[string]any)
		names[tool["name"].(string)] = tool
	}
	for _, n := range []string{ToolSearchVehicles, ToolSubmitLead, ToolPingUI, ToolPingMicroUI} {
		if _, ok := names[n]; !ok {
			t.Fatalf("tool %q missing", n)
		}
	}
	schema := names[ToolSearchVehicles]["inputSchema"].(map[string]any)
	req := schema["required"].([]any)
	if len(req) != 2 || req[0] != "location" || req[1] != "condition" {
		t.Fatalf("search-vehicles required=%v", req)
	}
	vin := names[ToolSubmitLead]["inputSchema"].(map[string]any)["properties"].(map[string]any)["vin"].(map[string]any)
	if vin["pattern"] != "^[A-HJ-NPR-Z0-9]{11,17}$" {
		t.Fatalf("vin pattern=%v", vin["pattern"])
	}
}

func TestSearchVehicles_ResultShape(t *testing.T) {
	search := &fakeSearch{out: domain.SearchOutcome{
		Result: domain.SearchResult{Vehicles: []domain.Vehicle{{ID: "v1", Make: "Toyota", Model: "Camry"}}, TotalCount: 1},
		Source: domain.SourceUpstream,
	}}
	s := newTestServer(search, &fakeLeads{}, nil)

	out := call(t, s, context.Background(),
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"search-vehicles","arguments":{"location":"Seattle, WA","condition":"used"}}}`)
	res := out["result"].(map[string]any)

	text := res["content"].([]any)[0].(map[string]any)["text"]
	if text != "Found 1 vehicles (run run-1)" {
		t.Fatalf("text=%v", text)
	}
	comp := res["components"].([]any)[0].(map[string]any)
	if comp["type"] != "iframe" || comp["url"] != "https://widgets.example.com/widget/vehicle-results?rid=run-1" {
		t.Fatalf("component=%v", comp)
	}
	results := res["structuredContent"].(map[string]any)["results"].(map[string]any)
	if results["totalCount"].(float64) != 1 || len(results["vehicles"].([]any)) != 1 {
		t.Fatalf("structuredContent=%v", results)
	}
	if results["searchParams"].(map[string]any)["location"] != "Seattle, WA" {
		t.Fatalf("searchParams=%v", results["searchParams"])
	}
	if !strings.Contains(string(search.args), `"condition":"used"`) {
		t.Fatalf("arguments not passed through: %s", search.args)
	}
}

func TestSearchVehicles_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantData string
	}{
		{"invalid", fmt.Errorf("%w: location is required", domain.ErrInvalidSearch), CodeInvalidParams, "location is required"},
		{"not_configured", domain.ErrNotConfigured, CodeInternalError, "MarketCheck API key not configured."},
		{"timeout", domain.ErrUpstreamTimeout, CodeInternalError, "MarketCheck API error: upstream request timed out"},
		{"http", &domain.UpstreamHTTPError{Status: 503, StatusText: "Service Unavailable"}, CodeInternalError, "MarketCheck API error: HTTP 503: Service Unavailable"},
		{"other", errors.New("boom"), CodeInternalError, "Unexpected error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&fakeSearch{err: tt.err}, &fakeLeads{}, nil)
			out := call(t, s, context.Background(),
				`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"search-vehicles","arguments":{}}}`)
			code, data := errorOf(t, out)
			if code != tt.wantCode || !strings.Contains(data, tt.wantData) {
				t.Fatalf("got code=%d data=%q, want %d %q", code, data, tt.wantCode, tt.wantData)
			}
		})
	}
}

func TestSubmitLead_PassesClientIP(t *testing.T) {
	leads := &fakeLeads{}
	s := newTestServer(&fakeSearch{}, leads, nil)
	ctx := ctxmeta.WithClientIP(context.Background(), "203.0.113.7")

	out := call(t, s, ctx, `{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"submit-lead","arguments":{}}}`)
	res := out["result"].(map[string]any)

	if leads.gotIP != "203.0.113.7" {
		t.Fatalf("ip=%q", leads.gotIP)
	}
	if res["content"].([]any)[0].(map[string]any)["text"] != "Lead submitted. We'll confirm with the dealer." {
		t.Fatalf("content=%v", res["content"])
	}
	if res["structuredContent"].(map[string]any)["leadId"] != "lead-1" {
		t.Fatalf("receipt=%v", res["structuredContent"])
	}
	if _, ok := res["components"]; ok {
		t.Fatalf("submit-lead has no widget")
	}
}

func TestSubmitLead_RateLimitedMessage(t *testing.T) {
	s := newTestServer(&fakeSearch{}, &fakeLeads{err: domain.ErrRateLimited}, nil)
	out := call(t, s, context.Background(), `{"jsonrpc":"2.0","id":6,"method":"tools/call","params":{"name":"submit-lead","arguments":{}}}`)

	code, data := errorOf(t, out)
	if code != CodeInternalError || data != "Rate limit exceeded. Maximum 5 leads per IP per 24 hours." {
		t.Fatalf("code=%d data=%q", code, data)
	}
}

func TestPingTools_ForceDiag(t *testing.T) {
	s := newTestServer(&fakeSearch{}, &fakeLeads{}, nil)

	tests := []struct{ tool, text, url string }{
		{ToolPingUI, "Pinging UI (run run-1)", "https://widgets.example.com/widget/ping?rid=run-1&diag=1"},
		{ToolPingMicroUI, "Pinging MICRO UI (run run-1)", "https://widgets.example.com/widget/micro?rid=run-1&diag=1"},
	}
	for _, tt := range tests {
		out := call(t, s, context.Background(), `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"`+tt.tool+`"}}`)
		res := out["result"].(map[string]any)
		if res["content"].([]any)[0].(map[string]any)["text"] != tt.text {
			t.Fatalf("%s text=%v", tt.tool, res["content"])
		}
		if res["components"].([]any)[0].(map[string]any)["url"] != tt.url {
			t.Fatalf("%s url=%v", tt.tool, res["components"])
		}
	}
}

func TestToolsCallStream_SameResult(t *testing.T) {
	s := newTestServer(&fakeSearch{}, &fakeLeads{}, nil)
	out := call(t, s, context.Background(), `{"jsonrpc":"2.0","id":8,"method":"tools/call/stream","params":{"name":"ping-ui"}}`)
	if _, ok := out["result"].(map[string]any)["components"]; !ok {
		t.Fatalf("stream call must return tool result, got %v", out)
	}
}

func TestToolsCall_MissingAndUnknownTool(t *testing.T) {
	s := newTestServer(&fakeSearch{}, &fakeLeads{}, nil)

	code, data := errorOf(t, call(t, s, context.Background(), `{"jsonrpc":"2.0","id":9,"method":"tools/call","params":{}}`))
	if code != CodeInvalidParams || data != "Missing tool name" {
		t.Fatalf("missing name: code=%d data=%q", code, data)
	}
	code, data = errorOf(t, call(t, s, context.Background(), `{"jsonrpc":"2.0","id":10,"method":"tools/call","params":{"name":"fetch"}}`))
	if code != CodeInvalidParams || data != "Unknown tool: fetch" {
		t.Fatalf("unknown tool: code=%d data=%q", code, data)
	}
}

func TestServiceMethods(t *testing.T) {
	s := newTestServer(&fakeSearch{}, &fakeLeads{}, nil)
	ctx := context.Background()

	for _, m := range []string{"initialized", "notifications/initialized", "notifications/cancelled", "logging/setLogger", "logging/setLevel"} {
		out := call(t, s, ctx, `{"jsonrpc":"2.0","id":1,"method":"`+m+`"}`)
		if res, ok := out["result"].(map[string]any); !ok || len(res) != 0 {
			t.Fatalf("%s: want empty result, got %v", m, out)
		}
	}

	out := call(t, s, ctx, `{"jsonrpc":"2.0","id":1,"method":"resources/list"}`)
	if res := out["result"].(map[string]any)["resources"].([]any); len(res) != 0 {
		t.Fatalf("resources must be empty: %v", res)
	}
	code, data := errorOf(t, call(t, s, ctx, `{"jsonrpc":"2.0","id":1,"method":"resources/read","params":{"uri":"x"}}`))
	if code != CodeInvalidParams || data != "Resource not found" {
		t.Fatalf("resources/read: %d %q", code, data)
	}

	out = call(t, s, ctx, `{"jsonrpc":"2.0","id":1,"method":"ping"}`)
	ping := out["result"].(map[string]any)
	if ping["pong"] != "pong" || ping["server"] != ServerName || ping["uptime"].(float64) <= 0 {
		t.Fatalf("ping=%v", ping)
	}
	out = call(t, s, ctx, `{"jsonrpc":"2.0","id":1,"method":"heartbeat"}`)
	if out["result"].(map[string]any)["status"] != "alive" {
		t.Fatalf("heartbeat=%v", out)
	}
}

func TestUnknownMethod_NullID(t *testing.T) {
	s := newTestServer(&fakeSearch{}, &fakeLeads{}, nil)
	out := call(t, s, context.Background(), `{"jsonrpc":"2.0","method":"prompts/list"}`)

	code, data := errorOf(t, out)
	if code != CodeMethodNotFound || data != "Unknown method: prompts/list" {
		t.Fatalf("code=%d data=%q", code, data)
	}
	if id, present := out["id"]; !present || id != nil {
		t.Fatalf("id must be null, got %v (present=%v)", id, present)
	}
}

func TestHandleBody_ParseAndInvalidRequest(t *testing.T) {
	s := newTestServer(&fakeSearch{}, &fakeLeads{}, nil)

	code, _ := errorOf(t, call(t, s, context.Background(), `{not json`))
	if code != CodeParseError {
		t.Fatalf("want parse error, got %d", code)
	}
	code, _ = errorOf(t, call(t, s, context.Background(), `{"jsonrpc":"2.0","id":1}`))
	if code != CodeInvalidRequest {
		t.Fatalf("want invalid request, got %d", code)
	}
}

func TestLoggingSetLevel_ChangesLevel(t *testing.T) {
	levels := &fakeLevels{}
	s := newTestServer(&fakeSearch{}, &fakeLeads{}, levels)

	out := call(t, s, context.Background(), `{"jsonrpc":"2.0","id":1,"method":"logging/setLevel","params":{"level":"debug"}}`)
	if _, ok := out["result"]; !ok || levels.got != "debug" {
		t.Fatalf("setLevel: out=%v got=%q", out, levels.got)
	}

	code, _ := errorOf(t, call(t, s, context.Background(), `{"jsonrpc":"2.0","id":2,"method":"logging/setLevel","params":{"level":"bogus"}}`))
	if code != CodeInvalidParams {
		t.Fatalf("invalid level must be -32602, got %d", code)
	}
}
