package ports

import (
	"context"
	"time"

	"github.com/Gunvolt24/autoagent/internal/domain"
)

// LeadRepository — хранилище заявок.
type LeadRepository interface {
	// Save — вставка или обновление по ID.
	Save(ctx context.Context, lead domain.LeadRecord) error
	// CountByIPSince — сколько заявок пришло с адреса начиная с момента since.
	CountByIPSince(ctx context.Context, ip string, since time.Time) (int, error)
	// ListRecent — свежие заявки, новые первыми.
	ListRecent(ctx context.Context, limit, offset int) ([]domain.LeadRecord, error)
	Ping(ctx context.Context) error
}

type LeadValidator interface {
	Validate(ctx context.Context, req domain.LeadRequest) error
}

// LeadForwarder — доставка заявки в дашборд.
type LeadForwarder interface {
	Forward(ctx context.Context, lead domain.ForwardedLead) error
}

// PayloadSealer — шифрование полезной нагрузки заявки.
type PayloadSealer interface {
	Seal(v any) (string, error)
	Open(sealed string, v any) error
}
