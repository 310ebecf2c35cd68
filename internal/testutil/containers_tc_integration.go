//go:build integration

package testutil

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/modules/redpanda"
	"github.com/testcontainers/testcontainers-go/wait"

	pgrepo "github.com/Gunvolt24/autoagent/internal/repo/postgres"
)

const (
	postgresImage = "postgres:16-alpine"
	redpandaImage = "docker.redpanda.com/redpandadata/redpanda:v23.3.8"

	leadsDB       = "leads"
	leadsUser     = "app"
	leadsPassword = "app"
)

var tcLog = log.New(os.Stdout, "[tc] ", log.LstdFlags|log.Lmsgprefix)

// lifecycle — пишет в лог запуск и остановку контейнера с коротким id.
func lifecycle(kind string) tc.ContainerLifecycleHooks {
	id := func(c tc.Container) string {
		s := c.GetContainerID()
		return s[:min(12, len(s))]
	}
	return tc.ContainerLifecycleHooks{
		PostReadies: []tc.ContainerHook{func(_ context.Context, c tc.Container) error {
			tcLog.Printf("%s ready id=%s", kind, id(c))
			return nil
		}},
		PostTerminates: []tc.ContainerHook{func(_ context.Context, c tc.Container) error {
			tcLog.Printf("%s terminated id=%s", kind, id(c))
			return nil
		}},
	}
}

// PGContainer — Postgres для заявок и пул к нему.
type PGContainer struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	DSN       string
}

// StartPostgresTC — поднимает пустую базу leads; схему применяет ApplyMigrationsGoose.
func StartPostgresTC(ctx context.Context) (*PGContainer, func(context.Context) error, error) {
	pg, err := postgres.Run(ctx, postgresImage,
		tc.WithLifecycleHooks(lifecycle("postgres")),
		postgres.WithDatabase(leadsDB),
		postgres.WithUsername(leadsUser),
		postgres.WithPassword(leadsPassword),
		tc.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("run postgres: %w", err)
	}

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = tc.TerminateContainer(pg)
		return nil, nil, fmt.Errorf("postgres dsn: %w", err)
	}

	// Тот же конструктор пула, что и в приложении.
	pool, err := pgrepo.NewPool(ctx, dsn, 5)
	if err != nil {
		_ = tc.TerminateContainer(pg)
		return nil, nil, err
	}

	stop := func(context.Context) error {
		pool.Close()
		return tc.TerminateContainer(pg)
	}
	return &PGContainer{Container: pg, Pool: pool, DSN: dsn}, stop, nil
}

// KafkaEnv — брокер Redpanda и базовое имя топиков теста.
type KafkaEnv struct {
	Container *redpanda.Container
	Brokers   []string
	BaseTopic string
}

func StartKafkaTC(ctx context.Context, baseTopic string) (*KafkaEnv, func(context.Context) error, error) {
	rp, err := redpanda.Run(ctx, redpandaImage,
		tc.WithLifecycleHooks(lifecycle("redpanda")),
		redpanda.WithAutoCreateTopics(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("run redpanda: %w", err)
	}

	seed, err := rp.KafkaSeedBroker(ctx)
	if err != nil {
		_ = tc.TerminateContainer(rp)
		return nil, nil, fmt.Errorf("redpanda seed broker: %w", err)
	}

	stop := func(context.Context) error { return tc.TerminateContainer(rp) }
	return &KafkaEnv{Container: rp, Brokers: []string{seed}, BaseTopic: baseTopic}, stop, nil
}
