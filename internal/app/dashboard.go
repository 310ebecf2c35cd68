package app

import (
	"context"
	"strings"

	"github.com/Gunvolt24/autoagent/config"
	"github.com/Gunvolt24/autoagent/internal/crypto"
	"github.com/Gunvolt24/autoagent/internal/kafka"
	"github.com/Gunvolt24/autoagent/internal/ports"
	"github.com/Gunvolt24/autoagent/internal/transport/dashboard"
	"github.com/Gunvolt24/autoagent/internal/usecase"
	"github.com/Gunvolt24/autoagent/pkg/httpx"
)

// BootstrapDashboard — собирает дашборд дилера: HTTP-приём и выдачу заявок,
// а при DASHBOARD_TRANSPORT=kafka ещё и консьюмер топика заявок.
func BootstrapDashboard(ctx context.Context, cfg *config.Config) (*App, Cleanup, error) {
	b, err := newBase(ctx, cfg)
	if err != nil {
		return nil, func() {}, err
	}
	logg := b.log

	store, err := openLeadStore(ctx, cfg, logg)
	if err != nil {
		b.close(ctx)
		return nil, func() {}, err
	}

	// Без ключа дашборд показывает только открытые поля заявок.
	var sealer ports.PayloadSealer
	if cfg.Leads.EncKey != "" {
		key, kErr := crypto.ParseKey(cfg.Leads.EncKey)
		if kErr != nil {
			store.close()
			b.close(ctx)
			return nil, func() {}, kErr
		}
		sealer = crypto.NewSealer(key)
	} else {
		logg.Warnf(ctx, "LEADS_ENC_KEY not set, lead details will stay encrypted")
	}

	ingest := usecase.NewIngestService(store, sealer, logg)

	h := dashboard.NewHandler(ingest, logg, dashboard.Options{
		IngestToken: cfg.Dashboard.IngestToken,
		Limiter:     httpx.NewIPLimiter(cfg.MCP.RateLimit, cfg.MCP.RateWindow),
		CanDecrypt:  sealer != nil,
		Health:      []ports.HealthChecker{ports.HealthFunc{CheckName: "leads", Fn: store.Ping}},
	})
	router := dashboard.NewRouter(h, b.otelService)

	app := &App{
		Logger:          logg,
		HTTPServer:      newHTTPServer(cfg.HTTP, router),
		gracefulTimeout: cfg.HTTP.GracefulTimeout,
	}

	if strings.EqualFold(strings.TrimSpace(cfg.Dashboard.Transport), "kafka") {
		app.KafkaConsumer = kafka.NewConsumer(&kafka.ConsumerConfig{
			Brokers:        cfg.Kafka.Brokers,
			GroupID:        cfg.Kafka.GroupID,
			Topic:          cfg.Kafka.Topic,
			StartOffset:    cfg.Kafka.StartOffset,
			ProcessTimeout: cfg.Kafka.ProcessTimeout,
			RetryInitial:   cfg.Kafka.RetryInitial,
			RetryMax:       cfg.Kafka.RetryMax,
		}, ingest, logg)
		logg.Infof(ctx, "dashboard kafka intake topic=%s group=%s", cfg.Kafka.Topic, cfg.Kafka.GroupID)
	}

	cleanup := func() {
		if app.KafkaConsumer != nil {
			if err := app.KafkaConsumer.Close(); err != nil {
				logg.Warnf(ctx, "kafka consumer close error: %v", err)
			}
		}
		store.close()
		b.close(ctx)
	}

	logg.Infof(ctx, "dashboard ready addr=%s", cfg.HTTP.Addr)
	return app, cleanup, nil
}
