package rest

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Gunvolt24/autoagent/internal/ports"
	"github.com/Gunvolt24/autoagent/internal/transport/mcp"
	"github.com/Gunvolt24/autoagent/pkg/httpx"
)

const (
	ServiceName    = "autoagent-mcp-server"
	ServiceVersion = "1.0.0"

	maxBodyBytes = 10 << 20
)

//go:embed widgets/*.html
var embeddedWidgets embed.FS

// Widgets — встроенные HTML-виджеты.
func Widgets() fs.FS {
	sub, _ := fs.Sub(embeddedWidgets, "widgets")
	return sub
}

// RPCHandler — обработчик тела JSON-RPC.
type RPCHandler interface {
	HandleBody(ctx context.Context, body []byte) mcp.Response
}

// Options — настройки HTTP-слоя MCP-сервера.
type Options struct {
	AllowedAgents []string         // подстроки User-Agent; пусто — пускать всех
	Limiter       *httpx.IPLimiter // nil — без ограничения
	Widgets       fs.FS            // nil — встроенные
	Health        []ports.HealthChecker
	Now           func() time.Time
}

type Handler struct {
	rpc     RPCHandler
	log     ports.Logger
	agents  []string
	limiter *httpx.IPLimiter
	widgets fs.FS
	health  []ports.HealthChecker
	now     func() time.Time
}

func NewHandler(rpc RPCHandler, log ports.Logger, opts Options) *Handler {
	h := &Handler{
		rpc:     rpc,
		log:     log,
		agents:  opts.AllowedAgents,
		limiter: opts.Limiter,
		widgets: opts.Widgets,
		health:  opts.Health,
		now:     opts.Now,
	}
	if h.widgets == nil {
		h.widgets = Widgets()
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

// NewRouter — маршруты MCP-сервера. otelServiceName != "" включает otelgin.
func NewRouter(h *Handler, otelServiceName string) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	if otelServiceName != "" {
		r.Use(otelgin.Middleware(otelServiceName))
	}
	r.Use(gin.Recovery())
	r.Use(httpx.RequestIDMiddleware())
	r.Use(httpx.RequestLogger(h.log))
	r.Use(httpx.SecurityHeaders(httpx.ChatGPTFrameCSP))

	r.GET("/", h.root)
	r.GET("/health", h.healthz)
	r.GET("/ping", h.ping)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	mcpGroup := r.Group("/mcp", httpx.CORS("POST, OPTIONS", "Content-Type, Authorization"))
	mcpGroup.POST("", h.mcp)
	mcpGroup.HEAD("", func(c *gin.Context) { c.Status(http.StatusOK) })
	mcpGroup.OPTIONS("", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, name := range []string{mcp.WidgetPing, mcp.WidgetMicro, mcp.WidgetVehicleResults} {
		r.GET("/widget/"+name, h.widget(name))
	}
	r.GET("/widget/beacon", h.beaconInfo)
	r.POST("/widget/beacon", h.beacon)
	r.POST("/widget/console", h.console)

	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not found",
			"message": "Route " + c.Request.Method + " " + c.Request.URL.Path + " not found",
		})
	})
	return r
}

func (h *Handler) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "AutoAgent MCP Server",
		"version": ServiceVersion,
		"status":  "running",
		"endpoints": gin.H{
			"health": "/health",
			"ping":   "/ping",
			"mcp":    "/mcp",
			"widget": "/widget/vehicle-results",
		},
		"tools": []string{mcp.ToolSearchVehicles, mcp.ToolSubmitLead, mcp.ToolPingUI, mcp.ToolPingMicroUI},
	})
}

func (h *Handler) ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"pong":      "pong",
		"timestamp": h.now().UTC().Format(time.RFC3339Nano),
		"server":    ServiceName,
		"version":   ServiceVersion,
	})
}

func (h *Handler) healthz(c *gin.Context) {
	status, body := HealthReport(c.Request.Context(), h.log, ServiceName, ServiceVersion, h.now(), h.health)
	c.JSON(status, body)
}

// HealthReport — тело /health: 200 и "healthy", если все проверки прошли,
// иначе 503 и "degraded" с текстом ошибок по именам.
func HealthReport(ctx context.Context, log ports.Logger, service, version string, now time.Time, checks []ports.HealthChecker) (int, gin.H) {
	body := gin.H{
		"ok":        true,
		"ts":        now.UnixMilli(),
		"status":    "healthy",
		"timestamp": now.UTC().Format(time.RFC3339Nano),
		"service":   service,
		"version":   version,
	}
	if len(checks) == 0 {
		return http.StatusOK, body
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	results := gin.H{}
	healthy := true
	for _, hc := range checks {
		if err := hc.Check(ctx); err != nil {
			healthy = false
			results[hc.Name()] = err.Error()
			log.Warnf(ctx, "health check failed name=%s err=%v", hc.Name(), err)
			continue
		}
		results[hc.Name()] = "ok"
	}
	body["checks"] = results
	if !healthy {
		body["ok"] = false
		body["status"] = "degraded"
		return http.StatusServiceUnavailable, body
	}
	return http.StatusOK, body
}

func (h *Handler) mcp(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, mcp.NewError(nil, mcp.CodeInvalidRequest, "Invalid Request", "Request body too large"))
			return
		}
		c.JSON(http.StatusBadRequest, mcp.NewError(nil, mcp.CodeParseError, "Parse error", err.Error()))
		return
	}
	id := peekID(body)
	ctx := c.Request.Context()

	if ua := c.Request.UserAgent(); !httpx.UserAgentAllowed(ua, h.agents) {
		h.log.Warnf(ctx, "mcp unauthorized client ua=%q ip=%s", ua, c.ClientIP())
		c.JSON(http.StatusUnauthorized, mcp.NewError(id, mcp.CodeUnauthorized, "Unauthorized", "Only OpenAI MCP clients are allowed"))
		return
	}

	if h.limiter != nil {
		allowed, remaining, reset := h.limiter.Allow(c.ClientIP())
		httpx.SetRateLimitHeaders(c, h.limiter.Limit(), remaining, reset)
		if !allowed {
			h.log.Warnf(ctx, "mcp rate limit exceeded ip=%s", c.ClientIP())
			c.JSON(http.StatusTooManyRequests, mcp.NewError(id, mcp.CodeRateLimited, "Rate limit exceeded", "Too many requests"))
			return
		}
	}

	c.JSON(http.StatusOK, h.rpc.HandleBody(ctx, body))
}

// peekID — id запроса для ответов, сформированных до разбора JSON-RPC.
func peekID(body []byte) json.RawMessage {
	var probe struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil
	}
	return probe.ID
}

func (h *Handler) widget(name string) gin.HandlerFunc {
	file := name + ".html"
	return func(c *gin.Context) {
		start := time.Now()
		rid := c.DefaultQuery("rid", "none")
		diag := c.Query("diag") == "1"

		c.Header("x-aa-run-id", rid)
		if diag {
			c.Header("x-aa-diag", "1")
		} else {
			c.Header("x-aa-diag", "0")
		}

		html, err := fs.ReadFile(h.widgets, file)
		if err != nil {
			h.log.Errorf(c.Request.Context(), "widget read failed name=%s err=%v", name, err)
			c.String(http.StatusInternalServerError, "Error loading widget")
			return
		}
		httpx.NoCache(c)
		c.Data(http.StatusOK, "text/html; charset=utf-8", html)
		h.log.Infof(c.Request.Context(), "widget served name=%s rid=%s diag=%t took=%s", name, rid, diag, time.Since(start))
	}
}

func (h *Handler) beaconInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"message": "Widget beacon endpoint ready. Use POST for ui:ready events.",
		"usage":   "POST /widget/beacon with {rid, tag, payload} for widget readiness tracking",
	})
}

type beaconBody struct {
	RID     string          `json:"rid"`
	Tag     string          `json:"tag"`
	Payload json.RawMessage `json:"payload"`
}

// beacon и console только пишут диагностику в лог; ошибки разбора не важны.
func (h *Handler) beacon(c *gin.Context) {
	var b beaconBody
	_ = c.ShouldBindJSON(&b)
	h.log.Infof(c.Request.Context(), "widget beacon rid=%s tag=%s payload=%s", b.RID, b.Tag, truncate(string(b.Payload), 512))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) console(c *gin.Context) {
	raw, _ := io.ReadAll(io.LimitReader(c.Request.Body, 64<<10))
	h.log.Infof(c.Request.Context(), "widget console rid=%s lines=%s", c.Query("rid"), truncate(string(raw), 2048))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
