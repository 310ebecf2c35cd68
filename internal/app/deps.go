package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/Gunvolt24/autoagent/config"
	"github.com/Gunvolt24/autoagent/internal/forward"
	"github.com/Gunvolt24/autoagent/internal/kafka"
	"github.com/Gunvolt24/autoagent/internal/ports"
	"github.com/Gunvolt24/autoagent/internal/repo/postgres"
	"github.com/Gunvolt24/autoagent/internal/repo/sqlite"
	"github.com/Gunvolt24/autoagent/pkg/logger"
	"github.com/Gunvolt24/autoagent/pkg/metrics"
	"github.com/Gunvolt24/autoagent/pkg/telemetry"
)

const serviceVersion = "1.0.0"

// ErrUnknownDriver — неизвестное значение LEADS_DRIVER.
var ErrUnknownDriver = errors.New("unknown leads driver")

// ErrUnknownTransport — неизвестное значение DASHBOARD_TRANSPORT.
var ErrUnknownTransport = errors.New("unknown dashboard transport")

// base — общая для обоих бинарников инфраструктура: логгер, метрики, трейсинг.
type base struct {
	log           *logger.ZapLogger
	cleanupLogger func() error
	shutdownTrace func(context.Context) error
	otelService   string // пусто — otelgin не подключается
}

func newBase(ctx context.Context, cfg *config.Config) (*base, error) {
	logg, cleanupLogger, err := logger.NewZapLogger(cfg.Logger.IsProd)
	if err != nil {
		return nil, err
	}

	metrics.MustRegister()

	b := &base{
		log:           logg,
		cleanupLogger: cleanupLogger,
		shutdownTrace: func(context.Context) error { return nil },
	}

	// Ошибка трейсинга не мешает запуску.
	shutdown, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: serviceVersion,
		Endpoint:       cfg.Tracing.Endpoint,
		SampleRatio:    cfg.Tracing.SampleRatio,
	})
	switch {
	case err != nil:
		logg.Warnf(ctx, "failed to setup tracing: %v", err)
	case cfg.Tracing.Enabled:
		logg.Infof(ctx, "otel tracing enabled service=%s endpoint=%s sample=%.2f",
			cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
		b.shutdownTrace = shutdown
		b.otelService = cfg.Tracing.ServiceName
	}

	applyGinMode(ctx, cfg.HTTP.GinMode, logg)
	return b, nil
}

func (b *base) close(ctx context.Context) {
	if err := b.shutdownTrace(context.Background()); err != nil {
		b.log.Warnf(ctx, "shutdown tracing: %v", err)
	}
	if err := b.cleanupLogger(); err != nil {
		b.log.Warnf(ctx, "cleanup logger: %v", err)
	}
}

// leadStore — хранилище заявок с функцией закрытия.
type leadStore struct {
	ports.LeadRepository
	close func()
}

// openLeadStore — хранилище по LEADS_DRIVER: sqlite (файл) или postgres (пул + goose).
func openLeadStore(ctx context.Context, cfg *config.Config, log ports.Logger) (*leadStore, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Leads.Driver)) {
	case "", "sqlite":
		repo, err := sqlite.Open(cfg.Leads.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Infof(ctx, "lead store: sqlite path=%s", cfg.Leads.SQLitePath)
		return &leadStore{LeadRepository: repo, close: func() {
			if err := repo.Close(); err != nil {
				log.Warnf(ctx, "sqlite close: %v", err)
			}
		}}, nil
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Infof(ctx, "lead store: postgres max_conns=%d", cfg.Postgres.MaxConns)
		return &leadStore{LeadRepository: postgres.NewLeadRepository(pool), close: pool.Close}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Leads.Driver)
	}
}

// newForwarder — доставка заявок в дашборд по DASHBOARD_TRANSPORT.
// Возвращаемая функция закрывает producer Kafka.
func newForwarder(ctx context.Context, cfg *config.Config, log ports.Logger) (ports.LeadForwarder, func() error, error) {
	noClose := func() error { return nil }

	switch strings.ToLower(strings.TrimSpace(cfg.Dashboard.Transport)) {
	case "":
		log.Warnf(ctx, "dashboard transport disabled, leads stay local")
		return forward.NoopForwarder{Log: log}, noClose, nil
	case "http":
		if cfg.Dashboard.IngestToken == "" {
			log.Warnf(ctx, "DASHBOARD_INGEST_TOKEN not set, dashboard will reject forwarded leads")
		}
		f, err := forward.NewHTTPForwarder(cfg.Dashboard.IngestURL, cfg.Dashboard.IngestToken, cfg.Dashboard.Timeout)
		if err != nil {
			return nil, nil, err
		}
		return f, noClose, nil
	case "kafka":
		p := kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			WriteTimeout: cfg.Dashboard.Timeout,
		})
		return p, p.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownTransport, cfg.Dashboard.Transport)
	}
}

// widgetFS — каталог с виджетами, если он задан и существует; иначе nil (встроенные).
func widgetFS(dir string) fs.FS {
	if dir == "" {
		return nil
	}
	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		return nil
	}
	return os.DirFS(dir)
}
