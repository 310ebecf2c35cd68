package ports

import "context"

// HealthChecker — проверка одной зависимости для /health.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// HealthFunc — HealthChecker из имени и функции проверки.
type HealthFunc struct {
	CheckName string
	Fn        func(ctx context.Context) error
}

func (h HealthFunc) Name() string                    { return h.CheckName }
func (h HealthFunc) Check(ctx context.Context) error { return h.Fn(ctx) }
