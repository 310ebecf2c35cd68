package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/Gunvolt24/autoagent/config"
	"github.com/Gunvolt24/autoagent/internal/ports"
)

// App — собранный сервис: HTTP-сервер и, для дашборда с Kafka, консьюмер заявок.
type App struct {
	Logger          ports.Logger
	HTTPServer      *http.Server
	KafkaConsumer   ports.MessageConsumer // nil — транспорт не Kafka
	gracefulTimeout time.Duration
}

// Cleanup — функция освобождения ресурсов.
type Cleanup func()

var ginModes = map[string]string{
	"":        gin.DebugMode,
	"debug":   gin.DebugMode,
	"release": gin.ReleaseMode,
	"test":    gin.TestMode,
}

// applyGinMode — режим gin по строке конфигурации; неизвестное значение даёт debug.
func applyGinMode(ctx context.Context, mode string, log ports.Logger) {
	m, ok := ginModes[strings.ToLower(strings.TrimSpace(mode))]
	if !ok {
		m = gin.DebugMode
		log.Warnf(ctx, "unknown GIN_MODE=%q, using %s", mode, m)
	}
	gin.SetMode(m)
}

// Run — HTTP-сервер и консьюмер (если есть) до отмены ctx или первой ошибки.
// Остановка компонента из-за отмены ошибкой не считается.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	if a.KafkaConsumer != nil {
		g.Go(func() error {
			a.Logger.Infof(ctx, "lead consumer starting")
			if err := a.KafkaConsumer.Run(gctx); err != nil && gctx.Err() == nil {
				a.Logger.Errorf(ctx, "lead consumer stopped: %v", err)
				return fmt.Errorf("consumer: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		a.Logger.Infof(ctx, "http server listening addr=%s", a.HTTPServer.Addr)
		if err := a.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Errorf(ctx, "http server failed: %v", err)
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.stop(ctx)
		return nil
	})

	err := g.Wait()
	a.Logger.Infof(ctx, "service stopped")
	return err
}

// stop — остановить HTTP за gracefulTimeout (по умолчанию 5s) и закрыть консьюмер.
func (a *App) stop(ctx context.Context) {
	timeout := a.gracefulTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := a.HTTPServer.Shutdown(shutdownCtx); err != nil {
		a.Logger.Warnf(ctx, "http server shutdown: %v", err)
	}
	if a.KafkaConsumer != nil {
		if err := a.KafkaConsumer.Close(); err != nil {
			a.Logger.Warnf(ctx, "lead consumer close: %v", err)
		}
	}
}

// newHTTPServer — http.Server с таймаутами из конфигурации.
func newHTTPServer(cfg config.HTTP, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}
