//go:build integration

package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/Gunvolt24/autoagent/internal/domain"
)

// LeadOpt — модификатор тестовой заявки.
type LeadOpt func(*domain.LeadRecord)

// WithIP — адрес отправителя.
func WithIP(ip string) LeadOpt { return func(l *domain.LeadRecord) { l.IPAddress = ip } }

// WithCreatedAt — момент создания.
func WithCreatedAt(t time.Time) LeadOpt {
	return func(l *domain.LeadRecord) { l.CreatedAt = t.UnixMilli() }
}

// MakeLead — валидная уникальная заявка.
func MakeLead(opts ...LeadOpt) domain.LeadRecord {
	l := domain.LeadRecord{
		ID:         uuid.NewString(),
		DealerID:   "dealer-1",
		VehicleID:  "mc-" + uuid.NewString()[:8],
		VIN:        "1HGCM82633A004352",
		EncPayload: "c2VhbGVk",
		Consent:    true,
		CreatedAt:  time.Now().UnixMilli(),
		IPAddress:  "203.0.113.7",
	}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}
