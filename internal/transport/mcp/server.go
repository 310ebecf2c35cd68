package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Gunvolt24/autoagent/internal/domain"
	"github.com/Gunvolt24/autoagent/internal/ports"
	"github.com/Gunvolt24/autoagent/pkg/ctxmeta"
	"github.com/Gunvolt24/autoagent/pkg/metrics"
)

const (
	ServerName    = "autoagent-mcp-server"
	ServerVersion = "1.0.0"

	// DefaultProtocolVersion — если клиент не прислал свою версию.
	DefaultProtocolVersion = "2024-11-05"
)

// VehicleSearch — поиск по аргументам инструмента.
type VehicleSearch interface {
	SearchFromArgs(ctx context.Context, raw json.RawMessage) (domain.SearchParams, domain.SearchOutcome, error)
}

// LeadSubmitter — приём заявки по аргументам инструмента.
type LeadSubmitter interface {
	SubmitFromArgs(ctx context.Context, raw json.RawMessage, ip string) (domain.LeadReceipt, error)
}

// LevelSetter — смена уровня логирования через logging/setLevel.
type LevelSetter interface {
	SetLevel(name string) error
}

// Options — необязательные зависимости сервера.
type Options struct {
	Levels     LevelSetter
	LeadLimit  int
	LeadWindow time.Duration
	Now        func() time.Time
	NewRunID   func() string
}

// Server — диспетчер методов MCP.
type Server struct {
	search  VehicleSearch
	leads   LeadSubmitter
	widgets WidgetLinks
	log     ports.Logger

	levels     LevelSetter
	leadLimit  int
	leadWindow time.Duration
	now        func() time.Time
	newRunID   func() string
	started    time.Time
}

func NewServer(search VehicleSearch, leads LeadSubmitter, widgets WidgetLinks, log ports.Logger, opts Options) *Server {
	s := &Server{
		search:     search,
		leads:      leads,
		widgets:    widgets,
		log:        log,
		levels:     opts.Levels,
		leadLimit:  opts.LeadLimit,
		leadWindow: opts.LeadWindow,
		now:        opts.Now,
		newRunID:   opts.NewRunID,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newRunID == nil {
		s.newRunID = uuid.NewString
	}
	if s.leadLimit <= 0 {
		s.leadLimit = 5
	}
	if s.leadWindow <= 0 {
		s.leadWindow = 24 * time.Hour
	}
	s.started = s.now()
	return s
}

// HandleBody — разобрать тело и обработать запрос.
func (s *Server) HandleBody(ctx context.Context, body []byte) Response {
	req, bad := ParseRequest(body)
	if bad != nil {
		s.log.Warnf(ctx, "mcp bad request code=%d", bad.Error.Code)
		return *bad
	}
	return s.Handle(ctx, req)
}

// Handle — обработать разобранный запрос. Уведомления тоже получают ответ.
func (s *Server) Handle(ctx context.Context, req Request) Response {
	switch req.Method {
	case "initialize":
		return NewResult(req.ID, s.initialize(req.Params))
	case "initialized", "notifications/initialized", "notifications/cancelled":
		return NewResult(req.ID, struct{}{})
	case "tools/list":
		return NewResult(req.ID, map[string]any{"tools": Tools()})
	case "resources/list":
		return NewResult(req.ID, map[string]any{"resources": []any{}})
	case "resources/read":
		return NewError(req.ID, CodeInvalidParams, "Invalid params", "Resource not found")
	case "tools/call", "tools/call/stream":
		return s.callTool(ctx, req)
	case "ping":
		return NewResult(req.ID, map[string]any{
			"pong":      "pong",
			"timestamp": s.timestamp(),
			"server":    ServerName,
			"uptime":    s.uptime(),
		})
	case "heartbeat":
		return NewResult(req.ID, map[string]any{
			"status":    "alive",
			"timestamp": s.timestamp(),
			"server":    ServerName,
			"uptime":    s.uptime(),
		})
	case "logging/setLevel":
		return s.setLevel(ctx, req)
	case "logging/setLogger":
		return NewResult(req.ID, struct{}{})
	default:
		return NewError(req.ID, CodeMethodNotFound, "Method not found", "Unknown method: "+req.Method)
	}
}

type initializeParams struct {
	ProtocolVersion string `json:"protocolVersion"`
}

func (s *Server) initialize(raw json.RawMessage) map[string]any {
	var p initializeParams
	_ = json.Unmarshal(raw, &p)
	if p.ProtocolVersion == "" {
		p.ProtocolVersion = DefaultProtocolVersion
	}
	return map[string]any{
		"protocolVersion": p.ProtocolVersion,
		"capabilities": map[string]any{
			"tools":     map[string]bool{"listChanged": true},
			"resources": map[string]bool{"subscribe": true, "listChanged": true},
			"prompts":   map[string]bool{"listChanged": true},
			"logging":   struct{}{},
		},
		"serverInfo": map[string]string{
			"name":    ServerName,
			"version": ServerVersion,
		},
	}
}

type callParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

func (s *Server) callTool(ctx context.Context, req Request) Response {
	var p callParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return NewError(req.ID, CodeInvalidParams, "Invalid params", err.Error())
		}
	}
	if p.Name == "" {
		return NewError(req.ID, CodeInvalidParams, "Invalid params", "Missing tool name")
	}

	start := time.Now()
	result, rpcErr := s.dispatch(ctx, p.Name, p.Arguments)

	label := p.Name
	if !isKnownTool(label) {
		label = "unknown"
	}
	if rpcErr != nil {
		metrics.ToolCalls.WithLabelValues(label, "error").Inc()
		s.log.Warnf(ctx, "mcp tool failed tool=%s code=%d took=%s", p.Name, rpcErr.Code, time.Since(start))
		return Response{JSONRPC: jsonRPCVersion, ID: normalizeID(req.ID), Error: rpcErr}
	}
	metrics.ToolCalls.WithLabelValues(label, "ok").Inc()
	s.log.Infof(ctx, "mcp tool ok tool=%s took=%s", p.Name, time.Since(start))
	return NewResult(req.ID, result)
}

func isKnownTool(name string) bool {
	switch name {
	case ToolSearchVehicles, ToolSubmitLead, ToolPingUI, ToolPingMicroUI:
		return true
	}
	return false
}

func (s *Server) dispatch(ctx context.Context, name string, args json.RawMessage) (ToolResult, *RPCError) {
	var (
		result            ToolResult
		err               error
		requireComponents = true
	)
	switch name {
	case ToolSearchVehicles:
		result, err = s.searchVehicles(ctx, args)
	case ToolSubmitLead:
		requireComponents = false
		result, err = s.submitLead(ctx, args)
	case ToolPingUI:
		result = s.ping(WidgetPing, "Pinging UI")
	case ToolPingMicroUI:
		result = s.ping(WidgetMicro, "Pinging MICRO UI")
	default:
		return ToolResult{}, &RPCError{Code: CodeInvalidParams, Message: "Invalid params", Data: "Unknown tool: " + name}
	}
	if err != nil {
		return ToolResult{}, s.toolError(err)
	}
	if err := ValidateToolResult(result, requireComponents); err != nil {
		return ToolResult{}, &RPCError{Code: CodeInternalError, Message: "Internal error", Data: err.Error()}
	}
	return result, nil
}

func (s *Server) searchVehicles(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	params, out, err := s.search.SearchFromArgs(ctx, args)
	if err != nil {
		return ToolResult{}, err
	}
	rid := s.newRunID()
	return ToolResult{
		Content: textContent(fmt.Sprintf("Found %d vehicles (run %s)", out.Result.TotalCount, rid)),
		StructuredContent: map[string]any{
			"results": map[string]any{
				"vehicles":     out.Result.Vehicles,
				"totalCount":   out.Result.TotalCount,
				"searchParams": params,
				"source":       out.Source,
			},
		},
		Components: iframe(s.widgets.URL(WidgetVehicleResults, rid, false)),
	}, nil
}

func (s *Server) submitLead(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	ip, _ := ctxmeta.ClientIPFromContext(ctx)
	receipt, err := s.leads.SubmitFromArgs(ctx, args, ip)
	if err != nil {
		return ToolResult{}, err
	}
	return ToolResult{
		Content:           textContent("Lead submitted. We'll confirm with the dealer."),
		StructuredContent: receipt,
	}, nil
}

func (s *Server) ping(widget, label string) ToolResult {
	rid := s.newRunID()
	return ToolResult{
		Content:    textContent(fmt.Sprintf("%s (run %s)", label, rid)),
		Components: iframe(s.widgets.URL(widget, rid, true)),
	}
}

// toolError — перевод доменной ошибки в ошибку JSON-RPC с сообщением для пользователя.
func (s *Server) toolError(err error) *RPCError {
	var httpErr *domain.UpstreamHTTPError
	switch {
	case errors.Is(err, domain.ErrInvalidSearch), errors.Is(err, domain.ErrInvalidLead):
		return &RPCError{Code: CodeInvalidParams, Message: "Invalid params", Data: err.Error()}
	case errors.Is(err, domain.ErrRateLimited):
		return &RPCError{Code: CodeInternalError, Message: "Internal error", Data: fmt.Sprintf(
			"Rate limit exceeded. Maximum %d leads per IP per %s.", s.leadLimit, describeWindow(s.leadWindow))}
	case errors.Is(err, domain.ErrNotConfigured):
		return &RPCError{Code: CodeInternalError, Message: "Internal error", Data: "MarketCheck API key not configured."}
	case errors.Is(err, domain.ErrUpstreamTimeout),
		errors.Is(err, domain.ErrUpstreamProtocol),
		errors.As(err, &httpErr):
		return &RPCError{Code: CodeInternalError, Message: "Internal error", Data: "MarketCheck API error: " + err.Error()}
	default:
		return &RPCError{Code: CodeInternalError, Message: "Internal error", Data: "Unexpected error"}
	}
}

func describeWindow(d time.Duration) string {
	if d%time.Hour == 0 {
		h := int(d / time.Hour)
		if h == 1 {
			return "hour"
		}
		return fmt.Sprintf("%d hours", h)
	}
	return d.String()
}

type setLevelParams struct {
	Level string `json:"level"`
}

func (s *Server) setLevel(ctx context.Context, req Request) Response {
	if s.levels == nil {
		return NewResult(req.ID, struct{}{})
	}
	var p setLevelParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return NewError(req.ID, CodeInvalidParams, "Invalid params", err.Error())
		}
	}
	if err := s.levels.SetLevel(p.Level); err != nil {
		return NewError(req.ID, CodeInvalidParams, "Invalid params", err.Error())
	}
	s.log.Infof(ctx, "log level changed level=%s", p.Level)
	return NewResult(req.ID, struct{}{})
}

func (s *Server) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func (s *Server) uptime() float64 {
	return s.now().Sub(s.started).Seconds()
}
