package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Gunvolt24/autoagent/internal/domain"
	"github.com/Gunvolt24/autoagent/internal/ports"
	"github.com/Gunvolt24/autoagent/pkg/metrics"
)

const (
	DefaultMaxLeadsPerIP  = 5
	DefaultLeadWindow     = 24 * time.Hour
	DefaultForwardTimeout = 5 * time.Second
)

// LeadOptions — лимиты и таймауты приёма заявок.
type LeadOptions struct {
	MaxPerIP       int
	Window         time.Duration
	ForwardTimeout time.Duration
	Now            func() time.Time
}

// LeadService — приём заявки: проверка → лимит по IP → шифрование → сохранение → пересылка дилеру.
type LeadService struct {
	repo      ports.LeadRepository
	validator ports.LeadValidator
	sealer    ports.PayloadSealer
	forwarder ports.LeadForwarder // nil — пересылка выключена
	log       ports.Logger

	maxPerIP       int
	window         time.Duration
	forwardTimeout time.Duration
	now            func() time.Time

	inflight sync.WaitGroup
	perIP    ipLocks
}

// NewLeadService — DI-конструктор.
func NewLeadService(
	repo ports.LeadRepository,
	validator ports.LeadValidator,
	sealer ports.PayloadSealer,
	forwarder ports.LeadForwarder,
	log ports.Logger,
	opts LeadOptions,
) *LeadService {
	s := &LeadService{
		repo:           repo,
		validator:      validator,
		sealer:         sealer,
		forwarder:      forwarder,
		log:            log,
		maxPerIP:       opts.MaxPerIP,
		window:         opts.Window,
		forwardTimeout: opts.ForwardTimeout,
		now:            opts.Now,
	}
	if s.maxPerIP <= 0 {
		s.maxPerIP = DefaultMaxLeadsPerIP
	}
	if s.window <= 0 {
		s.window = DefaultLeadWindow
	}
	if s.forwardTimeout <= 0 {
		s.forwardTimeout = DefaultForwardTimeout
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// SubmitFromArgs — разобрать аргументы инструмента submit-lead и принять заявку.
func (s *LeadService) SubmitFromArgs(ctx context.Context, raw json.RawMessage, ip string) (domain.LeadReceipt, error) {
	var req domain.LeadRequest
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		metrics.Leads.WithLabelValues("invalid").Inc()
		return domain.LeadReceipt{}, fmt.Errorf("%w: %v", domain.ErrInvalidLead, err)
	}
	return s.Submit(ctx, req, ip)
}

// Submit — принять заявку. ip может быть пустым: тогда лимит по адресу не применяется.
// Подсчёт и сохранение для одного адреса идут под общим мьютексом процесса.
func (s *LeadService) Submit(ctx context.Context, req domain.LeadRequest, ip string) (domain.LeadReceipt, error) {
	if err := s.validator.Validate(ctx, req); err != nil {
		metrics.Leads.WithLabelValues("invalid").Inc()
		s.log.Warnf(ctx, "lead rejected vehicle_id=%s err=%v", req.VehicleID, err)
		return domain.LeadReceipt{}, err
	}

	if ip != "" {
		unlock := s.perIP.lock(ip)
		defer unlock()
	}

	now := s.now()
	if ip != "" {
		n, err := s.repo.CountByIPSince(ctx, ip, now.Add(-s.window))
		if err != nil {
			metrics.Leads.WithLabelValues("failed").Inc()
			return domain.LeadReceipt{}, fmt.Errorf("count leads: %w", err)
		}
		if n >= s.maxPerIP {
			metrics.Leads.WithLabelValues("rate_limited").Inc()
			s.log.Warnf(ctx, "lead rate limited ip=%s count=%d", ip, n)
			return domain.LeadReceipt{}, domain.ErrRateLimited
		}
	}

	sealed, err := s.sealer.Seal(domain.LeadPayload{
		User:      req.User,
		VehicleID: req.VehicleID,
		DealerID:  req.DealerID,
		VIN:       req.VIN,
	})
	if err != nil {
		metrics.Leads.WithLabelValues("failed").Inc()
		return domain.LeadReceipt{}, fmt.Errorf("seal lead: %w", err)
	}

	record := domain.LeadRecord{
		ID:         uuid.NewString(),
		DealerID:   req.DealerID,
		VehicleID:  req.VehicleID,
		VIN:        req.VIN,
		EncPayload: sealed,
		Consent:    req.Consent,
		CreatedAt:  now.UnixMilli(),
		IPAddress:  ip,
	}
	if err := s.repo.Save(ctx, record); err != nil {
		metrics.Leads.WithLabelValues("failed").Inc()
		return domain.LeadReceipt{}, fmt.Errorf("save lead: %w", err)
	}

	metrics.Leads.WithLabelValues("created").Inc()
	s.log.Infof(ctx, "lead created lead_id=%s vehicle_id=%s", record.ID, record.VehicleID)

	s.forwardAsync(ctx, domain.ForwardedLead{
		LeadID:     record.ID,
		DealerID:   record.DealerID,
		VehicleID:  record.VehicleID,
		VIN:        record.VIN,
		CreatedAt:  record.CreatedAt,
		EncPayload: record.EncPayload,
	})

	return domain.LeadReceipt{
		LeadID:    record.ID,
		VehicleID: record.VehicleID,
		DealerID:  record.DealerID,
		VIN:       record.VIN,
	}, nil
}

// Wait — дождаться завершения фоновых пересылок (остановка, тесты).
func (s *LeadService) Wait() { s.inflight.Wait() }

// forwardAsync — пересылка не влияет на ответ клиенту; ошибки только логируются.
func (s *LeadService) forwardAsync(ctx context.Context, lead domain.ForwardedLead) {
	if s.forwarder == nil {
		return
	}
	detached := context.WithoutCancel(ctx)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		fctx, cancel := context.WithTimeout(detached, s.forwardTimeout)
		defer cancel()

		if err := s.forwarder.Forward(fctx, lead); err != nil {
			metrics.Leads.WithLabelValues("forward_failed").Inc()
			s.log.Errorf(fctx, "lead forward failed lead_id=%s err=%v", lead.LeadID, err)
			return
		}
		s.log.Infof(fctx, "lead forwarded lead_id=%s", lead.LeadID)
	}()
}
