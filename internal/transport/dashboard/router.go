// Package dashboard — HTTP-слой дилерского дашборда: приём заявок и их выдача.
package dashboard

import (
	"context"
	"crypto/subtle"
	"embed"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Gunvolt24/autoagent/internal/domain"
	"github.com/Gunvolt24/autoagent/internal/ports"
	rest "github.com/Gunvolt24/autoagent/internal/transport/http"
	"github.com/Gunvolt24/autoagent/pkg/httpx"
)

const (
	ServiceName    = "dealer-dashboard"
	ServiceVersion = "1.0.0"

	defaultLeadsLimit = 100
	maxLeadsLimit     = 500
)

//go:embed static/index.html
var static embed.FS

// Leads — приём и выдача заявок.
type Leads interface {
	Ingest(ctx context.Context, lead domain.ForwardedLead) error
	RecentLeads(ctx context.Context, limit, offset int) ([]domain.DashboardLead, error)
}

// Options — настройки дашборда.
type Options struct {
	IngestToken string           // пусто — приём по HTTP не настроен
	Limiter     *httpx.IPLimiter // nil — без ограничения на /api/ingest/lead
	CanDecrypt  bool
	Health      []ports.HealthChecker
	Now         func() time.Time
}

type Handler struct {
	log  ports.Logger
	svc  Leads
	opts Options
}

func NewHandler(svc Leads, log ports.Logger, opts Options) *Handler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Handler{svc: svc, log: log, opts: opts}
}

// NewRouter — маршруты дашборда. otelServiceName != "" включает otelgin.
func NewRouter(h *Handler, otelServiceName string) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	if otelServiceName != "" {
		r.Use(otelgin.Middleware(otelServiceName))
	}
	r.Use(gin.Recovery())
	r.Use(httpx.RequestIDMiddleware())
	r.Use(httpx.RequestLogger(h.log))

	r.GET("/", h.index)
	r.GET("/leads", h.index)
	r.GET("/health", h.healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/leads", h.listLeads)
	if h.opts.Limiter != nil {
		api.POST("/ingest/lead", httpx.RateLimit(h.opts.Limiter, tooManyRequests), h.ingest)
	} else {
		api.POST("/ingest/lead", h.ingest)
	}

	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
	return r
}

func tooManyRequests(c *gin.Context) {
	c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
}

func (h *Handler) index(c *gin.Context) {
	page, err := static.ReadFile("static/index.html")
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading page")
		return
	}
	httpx.NoCache(c)
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (h *Handler) healthz(c *gin.Context) {
	status, body := rest.HealthReport(c.Request.Context(), h.log, ServiceName, ServiceVersion, h.opts.Now(), h.opts.Health)
	c.JSON(status, body)
}

func (h *Handler) ingest(c *gin.Context) {
	ctx := c.Request.Context()

	if h.opts.IngestToken == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Dashboard ingest not configured"})
		return
	}
	token := httpx.BearerToken(c.Request)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid authorization header"})
		return
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.opts.IngestToken)) != 1 {
		h.log.Warnf(ctx, "ingest rejected: invalid token ip=%s", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	var lead domain.ForwardedLead
	if err := c.ShouldBindJSON(&lead); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON", "message": err.Error()})
		return
	}

	if err := h.svc.Ingest(ctx, lead); err != nil {
		if errors.Is(err, domain.ErrInvalidLead) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: leadId, vehicleId, createdAt, encPayload"})
			return
		}
		h.log.Errorf(ctx, "lead ingest failed lead_id=%s err=%v", lead.LeadID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) listLeads(c *gin.Context) {
	page := httpx.ParsePage(c, defaultLeadsLimit, maxLeadsLimit)

	items, err := h.svc.RecentLeads(c.Request.Context(), page.Limit, page.Offset)
	if err != nil {
		h.log.Errorf(c.Request.Context(), "list leads failed err=%v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	httpx.NoCache(c)
	c.JSON(http.StatusOK, gin.H{
		"leads":      items,
		"limit":      page.Limit,
		"offset":     page.Offset,
		"canDecrypt": h.opts.CanDecrypt,
	})
}
