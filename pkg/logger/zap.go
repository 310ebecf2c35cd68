// Package logger — реализация ports.Logger на zap.
package logger

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Gunvolt24/autoagent/pkg/ctxmeta"
)

type ZapLogger struct {
	base   *zap.Logger
	sugar  *zap.SugaredLogger
	level  zap.AtomicLevel
	isProd bool
}

// NewZapLogger — production (JSON, info) или development (консоль, debug) конфигурация.
func NewZapLogger(isProd bool) (*ZapLogger, func() error, error) {
	var cfg zap.Config
	if isProd {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, nil, err
	}

	z := newFromCore(logger, cfg.Level)
	z.isProd = isProd

	cleanup := func() error { return z.base.Sync() }
	return z, cleanup, nil
}

// NewFromZap — обёртка над готовым *zap.Logger (тесты, встраивание).
func NewFromZap(l *zap.Logger, level zap.AtomicLevel) *ZapLogger {
	return newFromCore(l, level)
}

func newFromCore(l *zap.Logger, level zap.AtomicLevel) *ZapLogger {
	return &ZapLogger{base: l, sugar: l.Sugar(), level: level}
}

func (z *ZapLogger) Infof(ctx context.Context, format string, args ...any) {
	z.sugar.Info(render(ctx, format, args))
}
func (z *ZapLogger) Warnf(ctx context.Context, format string, args ...any) {
	z.sugar.Warn(render(ctx, format, args))
}
func (z *ZapLogger) Errorf(ctx context.Context, format string, args ...any) {
	z.sugar.Error(render(ctx, format, args))
}

// SetLevel — сменить уровень на лету. Понимает уровни zap и syslog-имена MCP
// (notice, warning, critical, alert, emergency).
func (z *ZapLogger) SetLevel(name string) error {
	lvl, err := ParseLevel(name)
	if err != nil {
		return err
	}
	z.level.SetLevel(lvl)
	return nil
}

// Level — текущий уровень.
func (z *ZapLogger) Level() zapcore.Level { return z.level.Level() }

func (z *ZapLogger) Base() *zap.Logger           { return z.base }
func (z *ZapLogger) Sugared() *zap.SugaredLogger { return z.sugar }

// ParseLevel — имя уровня в zapcore.Level.
func ParseLevel(name string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info", "notice":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	case "critical", "alert", "emergency":
		return zapcore.DPanicLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", name)
	}
}

// render форматирует сообщение и дописывает request_id и trace_id из контекста.
func render(ctx context.Context, format string, args []any) string {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	if rid, ok := ctxmeta.RequestIDFromContext(ctx); ok {
		msg += " request_id=" + rid
	}
	if tid, ok := ctxmeta.TraceIDFromContext(ctx); ok {
		msg += " trace_id=" + tid
	}
	return msg
}
