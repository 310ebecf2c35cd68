package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Gunvolt24/autoagent/internal/domain"
	"github.com/Gunvolt24/autoagent/internal/ports"
)

// Проверка, что LeadRepository удовлетворяет интерфейсу LeadRepository.
var _ ports.LeadRepository = (*LeadRepository)(nil)

// LeadRepository — хранилище заявок на Postgres (pgxpool).
type LeadRepository struct {
	pool *pgxpool.Pool
}

// NewLeadRepository — конструктор LeadRepository.
func NewLeadRepository(pool *pgxpool.Pool) *LeadRepository { return &LeadRepository{pool: pool} }

// Save — идемпотентный upsert заявки по id.
func (r *LeadRepository) Save(ctx context.Context, lead domain.LeadRecord) error {
	if lead.ID == "" {
		return errors.New("lead id is required")
	}
	if _, err := r.pool.Exec(ctx, `
		INSERT INTO leads (id, dealer_id, vehicle_id, vin, enc_payload, consent, created_at, ip_address)
		VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, ''), $5, $6, $7, NULLIF($8, ''))
		ON CONFLICT (id) DO UPDATE SET
			dealer_id = EXCLUDED.dealer_id,
			vehicle_id = EXCLUDED.vehicle_id,
			vin = EXCLUDED.vin,
			enc_payload = EXCLUDED.enc_payload,
			consent = EXCLUDED.consent,
			created_at = EXCLUDED.created_at
	`,
		lead.ID, lead.DealerID, lead.VehicleID, lead.VIN, lead.EncPayload, lead.Consent, lead.CreatedAt, lead.IPAddress,
	); err != nil {
		return fmt.Errorf("upsert lead: %w", err)
	}
	return nil
}

// CountByIPSince — число заявок с адреса ip, созданных не раньше since.
func (r *LeadRepository) CountByIPSince(ctx context.Context, ip string, since time.Time) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM leads WHERE ip_address = $1 AND created_at >= $2
	`, ip, since.UnixMilli()).Scan(&n); err != nil {
		return 0, fmt.Errorf("count leads by ip: %w", err)
	}
	return n, nil
}

// ListRecent — страница заявок, новые первыми.
func (r *LeadRepository) ListRecent(ctx context.Context, limit, offset int) ([]domain.LeadRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, COALESCE(dealer_id, ''), vehicle_id, COALESCE(vin, ''), enc_payload, consent,
			created_at, COALESCE(ip_address, '')
		FROM leads
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("select leads: %w", err)
	}
	defer rows.Close()

	leads := make([]domain.LeadRecord, 0, limit)
	for rows.Next() {
		var l domain.LeadRecord
		if err := rows.Scan(&l.ID, &l.DealerID, &l.VehicleID, &l.VIN, &l.EncPayload, &l.Consent, &l.CreatedAt, &l.IPAddress); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads rows: %w", err)
	}
	return leads, nil
}

func (r *LeadRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
