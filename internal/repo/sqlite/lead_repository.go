// Package sqlite — хранилище заявок на SQLite (gorm + чистый Go драйвер).
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/Gunvolt24/autoagent/internal/domain"
	"github.com/Gunvolt24/autoagent/internal/ports"
)

var _ ports.LeadRepository = (*LeadRepository)(nil)

// leadRow — строка таблицы leads.
type leadRow struct {
	ID         string `gorm:"primaryKey"`
	DealerID   string `gorm:"column:dealer_id"`
	VehicleID  string `gorm:"column:vehicle_id;not null"`
	VIN        string `gorm:"column:vin"`
	EncPayload string `gorm:"column:enc_payload;not null"`
	Consent    bool   `gorm:"column:consent;not null;default:true"`
	CreatedAt  int64  `gorm:"column:created_at;autoCreateTime:false;not null;index:idx_leads_created_at;index:idx_leads_ip_created_at,priority:2"`
	IPAddress  string `gorm:"column:ip_address;index:idx_leads_ip_created_at,priority:1"`
}

func (leadRow) TableName() string { return "leads" }

// LeadRepository — реализация ports.LeadRepository на gorm.
type LeadRepository struct {
	db *gorm.DB
}

// Open — открыть (или создать) файл базы и применить схему.
// path ":memory:" — база в памяти, живёт до закрытия.
func Open(path string) (*LeadRepository, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite пишет в один поток; одно соединение заодно сохраняет базу в памяти.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&leadRow{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &LeadRepository{db: db}, nil
}

// Save — вставка или обновление по id; адрес отправителя при обновлении не трогаем.
func (r *LeadRepository) Save(ctx context.Context, lead domain.LeadRecord) error {
	if lead.ID == "" {
		return errors.New("lead id is required")
	}
	row := leadRow{
		ID:         lead.ID,
		DealerID:   lead.DealerID,
		VehicleID:  lead.VehicleID,
		VIN:        lead.VIN,
		EncPayload: lead.EncPayload,
		Consent:    lead.Consent,
		CreatedAt:  lead.CreatedAt,
		IPAddress:  lead.IPAddress,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"dealer_id", "vehicle_id", "vin", "enc_payload", "consent", "created_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) CountByIPSince(ctx context.Context, ip string, since time.Time) (int, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&leadRow{}).
		Where("ip_address = ? AND created_at >= ?", ip, since.UnixMilli()).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count leads by ip: %w", err)
	}
	return int(n), nil
}

func (r *LeadRepository) ListRecent(ctx context.Context, limit, offset int) ([]domain.LeadRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var rows []leadRow
	err := r.db.WithContext(ctx).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("select leads: %w", err)
	}

	out := make([]domain.LeadRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.LeadRecord{
			ID:         row.ID,
			DealerID:   row.DealerID,
			VehicleID:  row.VehicleID,
			VIN:        row.VIN,
			EncPayload: row.EncPayload,
			Consent:    row.Consent,
			CreatedAt:  row.CreatedAt,
			IPAddress:  row.IPAddress,
		})
	}
	return out, nil
}

func (r *LeadRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close — закрыть соединение с базой.
func (r *LeadRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
