package app

import (
	"context"
	"errors"

	"github.com/Gunvolt24/autoagent/config"
	cachemem "github.com/Gunvolt24/autoagent/internal/cache/memory"
	"github.com/Gunvolt24/autoagent/internal/catalog"
	"github.com/Gunvolt24/autoagent/internal/crypto"
	"github.com/Gunvolt24/autoagent/internal/domain"
	"github.com/Gunvolt24/autoagent/internal/marketcheck"
	"github.com/Gunvolt24/autoagent/internal/ports"
	rest "github.com/Gunvolt24/autoagent/internal/transport/http"
	"github.com/Gunvolt24/autoagent/internal/transport/mcp"
	"github.com/Gunvolt24/autoagent/internal/usecase"
	"github.com/Gunvolt24/autoagent/pkg/httpx"
	"github.com/Gunvolt24/autoagent/pkg/validate"
)

// Bootstrap — собирает MCP-сервер и возвращает приложение, функцию очистки и ошибку.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, Cleanup, error) {
	b, err := newBase(ctx, cfg)
	if err != nil {
		return nil, func() {}, err
	}
	logg := b.log

	fail := func(err error, closers ...func()) (*App, Cleanup, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
		b.close(ctx)
		return nil, func() {}, err
	}

	// Хранилище заявок и ключ шифрования.
	store, err := openLeadStore(ctx, cfg, logg)
	if err != nil {
		return fail(err)
	}
	sealer, err := crypto.Load(ctx, cfg.Leads.EncKey, cfg.Logger.IsProd, logg)
	if err != nil {
		return fail(err, store.close)
	}
	forwarder, closeForwarder, err := newForwarder(ctx, cfg, logg)
	if err != nil {
		return fail(err, store.close)
	}

	// Поиск: апстрим (если есть ключ) → кэш → встроенный каталог по политике.
	var searcher ports.VehicleSearcher
	client, err := marketcheck.NewFromConfig(marketcheck.Config{
		APIKey:  cfg.MarketCheck.APIKey,
		BaseURL: cfg.MarketCheck.BaseURL,
		Timeout: cfg.MarketCheck.HTTPTimeout,
	}, logg)
	switch {
	case errors.Is(err, domain.ErrNotConfigured):
		logg.Warnf(ctx, "MARKETCHECK_API_KEY not set, search-vehicles uses fallback policy=%s", cfg.Search.Fallback)
	case err != nil:
		return fail(err, store.close)
	default:
		searcher = client
	}

	searchService := usecase.NewSearchService(
		searcher,
		cachemem.NewSearchCache(cfg.Cache.Capacity, cfg.Cache.TTL),
		validate.NewSearchValidator(),
		logg,
		usecase.SearchOptions{
			Timeout:  cfg.MarketCheck.SearchTimeout,
			Fallback: usecase.FallbackPolicy(cfg.Search.Fallback),
			Catalog:  catalog.Search,
		},
	)
	leadService := usecase.NewLeadService(store, validate.NewLeadValidator(), sealer, forwarder, logg, usecase.LeadOptions{
		MaxPerIP:       cfg.Leads.MaxPerIP,
		Window:         cfg.Leads.Window,
		ForwardTimeout: cfg.Dashboard.Timeout,
	})

	mcpServer := mcp.NewServer(searchService, leadService,
		mcp.WidgetLinks{Host: cfg.Widget.Host, Diag: cfg.Widget.Diag},
		logg,
		mcp.Options{
			Levels:     logg,
			LeadLimit:  cfg.Leads.MaxPerIP,
			LeadWindow: cfg.Leads.Window,
		},
	)

	httpHandler := rest.NewHandler(mcpServer, logg, rest.Options{
		AllowedAgents: cfg.MCP.AllowedAgents,
		Limiter:       httpx.NewIPLimiter(cfg.MCP.RateLimit, cfg.MCP.RateWindow),
		Widgets:       widgetFS(cfg.Widget.Dir),
		Health:        []ports.HealthChecker{ports.HealthFunc{CheckName: "leads", Fn: store.Ping}},
	})
	router := rest.NewRouter(httpHandler, b.otelService)

	app := &App{
		Logger:          logg,
		HTTPServer:      newHTTPServer(cfg.HTTP, router),
		gracefulTimeout: cfg.HTTP.GracefulTimeout,
	}

	// Очистка ресурсов (в обратном порядке): дождаться пересылок, закрыть producer и хранилище.
	cleanup := func() {
		leadService.Wait()
		if err := closeForwarder(); err != nil {
			logg.Warnf(ctx, "close forwarder: %v", err)
		}
		store.close()
		b.close(ctx)
	}

	logg.Infof(ctx, "mcp server ready addr=%s widgets=%s transport=%s", cfg.HTTP.Addr, cfg.Widget.Host, cfg.Dashboard.Transport)
	return app, cleanup, nil
}
