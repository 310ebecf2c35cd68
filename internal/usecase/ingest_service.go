package usecase

import (
	"context"
	"fmt"

	"github.com/Gunvolt24/autoagent/internal/domain"
	"github.com/Gunvolt24/autoagent/internal/ports"
	"github.com/Gunvolt24/autoagent/pkg/metrics"
	"github.com/Gunvolt24/autoagent/pkg/validate"
)

// IngestService — приём пересланных заявок на стороне дашборда и их выдача.
type IngestService struct {
	repo   ports.LeadRepository
	sealer ports.PayloadSealer // nil — контакты в выдаче не расшифровываются
	log    ports.Logger
}

func NewIngestService(repo ports.LeadRepository, sealer ports.PayloadSealer, log ports.Logger) *IngestService {
	return &IngestService{repo: repo, sealer: sealer, log: log}
}

// SaveFromMessage — разобрать сообщение из Kafka и сохранить заявку.
// Битый JSON и неполные заявки возвращают ошибку, оборачивающую domain.ErrInvalidLead.
func (s *IngestService) SaveFromMessage(ctx context.Context, raw []byte) error {
	var lead domain.ForwardedLead
	if err := validate.DecodeStrict(raw, &lead); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidLead, err)
	}
	return s.Ingest(ctx, lead)
}

// Ingest — проверить обязательные поля и сохранить (upsert по leadId).
func (s *IngestService) Ingest(ctx context.Context, lead domain.ForwardedLead) error {
	if err := checkForwarded(lead); err != nil {
		metrics.Leads.WithLabelValues("invalid").Inc()
		return err
	}
	if err := s.repo.Save(ctx, lead.Record()); err != nil {
		return fmt.Errorf("save ingested lead: %w", err)
	}
	metrics.Leads.WithLabelValues("ingested").Inc()
	s.log.Infof(ctx, "lead ingested lead_id=%s vehicle_id=%s", lead.LeadID, lead.VehicleID)
	return nil
}

// RecentLeads — свежие заявки для дашборда, с контактами, если payload удалось открыть.
func (s *IngestService) RecentLeads(ctx context.Context, limit, offset int) ([]domain.DashboardLead, error) {
	records, err := s.repo.ListRecent(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]domain.DashboardLead, 0, len(records))
	for _, r := range records {
		item := domain.DashboardLead{
			ID:        r.ID,
			DealerID:  r.DealerID,
			VehicleID: r.VehicleID,
			VIN:       r.VIN,
			CreatedAt: r.CreatedAt,
		}
		if s.sealer != nil {
			var payload domain.LeadPayload
			if err := s.sealer.Open(r.EncPayload, &payload); err == nil {
				user := payload.User
				item.User = &user
			} else {
				s.log.Warnf(ctx, "lead payload not readable lead_id=%s err=%v", r.ID, err)
			}
		}
		out = append(out, item)
	}
	return out, nil
}

func checkForwarded(l domain.ForwardedLead) error {
	var missing []string
	if l.LeadID == "" {
		missing = append(missing, "leadId")
	}
	if l.VehicleID == "" {
		missing = append(missing, "vehicleId")
	}
	if l.CreatedAt <= 0 {
		missing = append(missing, "createdAt")
	}
	if l.EncPayload == "" {
		missing = append(missing, "encPayload")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing fields %v", domain.ErrInvalidLead, missing)
	}
	return nil
}
