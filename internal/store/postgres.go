package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"certverify/internal/models"
	"certverify/internal/normalize"
)

// Postgres is the gorm-backed record store.
type Postgres struct {
	db *gorm.DB
}

// NewPostgres connects to dsn and migrates the schema.
func NewPostgres(dsn string) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap sql.DB: %w", err)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.CertificateRecord{}, &models.AuditEvent{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) FindByCertificateID(ctx context.Context, id string) (*models.CertificateRecord, error) {
	lower := normalize.ID(id)
	if lower == "" {
		return nil, ErrNotFound
	}
	var rec models.CertificateRecord
	err := p.db.WithContext(ctx).Where("certificate_id_lower = ?", lower).Order("id").First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, unavailable(err)
	}
	return &rec, nil
}

func (p *Postgres) FindByNormalizedFields(ctx context.Context, name, rollNumber, course string) ([]models.CertificateRecord, error) {
	q := p.db.WithContext(ctx).Model(&models.CertificateRecord{})
	if name != "" {
		q = q.Where("name_normalized = ?", name)
	}
	if rollNumber != "" {
		q = q.Where("roll_number_normalized = ?", rollNumber)
	}
	if course != "" {
		q = q.Where("course_normalized = ?", course)
	}
	var recs []models.CertificateRecord
	if err := q.Order("id").Find(&recs).Error; err != nil {
		return nil, unavailable(err)
	}
	return recs, nil
}

func (p *Postgres) Upsert(ctx context.Context, rec *models.CertificateRecord) (bool, error) {
	lower := normalize.ID(rec.CertificateID)
	if lower != "" {
		var existing models.CertificateRecord
		err := p.db.WithContext(ctx).Where("certificate_id_lower = ?", lower).Order("id").First(&existing).Error
		switch {
		case err == nil:
			mergeRecord(&existing, rec)
			existing.DeriveNormalized()
			if err := p.db.WithContext(ctx).Save(&existing).Error; err != nil {
				return false, unavailable(err)
			}
			*rec = existing
			return false, nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return false, unavailable(err)
		}
	}
	rec.DeriveNormalized()
	if err := p.db.WithContext(ctx).Create(rec).Error; err != nil {
		return false, unavailable(err)
	}
	return true, nil
}

func (p *Postgres) List(ctx context.Context, limit, offset int) ([]models.CertificateRecord, int64, error) {
	var total int64
	if err := p.db.WithContext(ctx).Model(&models.CertificateRecord{}).Count(&total).Error; err != nil {
		return nil, 0, unavailable(err)
	}
	var recs []models.CertificateRecord
	err := p.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&recs).Error
	if err != nil {
		return nil, 0, unavailable(err)
	}
	return recs, total, nil
}

func (p *Postgres) Stats(ctx context.Context) (Stats, error) {
	s := Stats{Backend: "postgres"}
	db := p.db.WithContext(ctx)
	if err := db.Model(&models.CertificateRecord{}).Count(&s.Certificates).Error; err != nil {
		return Stats{}, unavailable(err)
	}
	if err := db.Model(&models.AuditEvent{}).Count(&s.Events).Error; err != nil {
		return Stats{}, unavailable(err)
	}
	if err := db.Model(&models.CertificateRecord{}).Where("issuer <> ''").Distinct("issuer").Count(&s.Issuers).Error; err != nil {
		return Stats{}, unavailable(err)
	}
	return s, nil
}

func (p *Postgres) LogEvent(ctx context.Context, ev *models.AuditEvent) error {
	if err := p.db.WithContext(ctx).Create(ev).Error; err != nil {
		return unavailable(err)
	}
	return nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
