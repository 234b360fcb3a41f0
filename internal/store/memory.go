package store

import (
	"context"
	"sync"

	"certverify/internal/models"
	"certverify/internal/normalize"
)

// Memory is an in-process Store used in tests and as a dev fallback when no
// database is configured. Records are kept in insertion order so repeated
// queries against the same contents return identical results.
type Memory struct {
	mu      sync.RWMutex
	seq     uint
	records []models.CertificateRecord
	events  []models.AuditEvent
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) FindByCertificateID(ctx context.Context, id string) (*models.CertificateRecord, error) {
	lower := normalize.ID(id)
	if lower == "" {
		return nil, ErrNotFound
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.records {
		if m.records[i].CertificateIDLower == lower {
			rec := m.records[i]
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) FindByNormalizedFields(ctx context.Context, name, rollNumber, course string) ([]models.CertificateRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.CertificateRecord
	for i := range m.records {
		r := &m.records[i]
		if name != "" && r.NameNormalized != name {
			continue
		}
		if rollNumber != "" && r.RollNumberNormalized != rollNumber {
			continue
		}
		if course != "" && r.CourseNormalized != course {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (m *Memory) Upsert(ctx context.Context, rec *models.CertificateRecord) (bool, error) {
	lower := normalize.ID(rec.CertificateID)
	m.mu.Lock()
	defer m.mu.Unlock()
	if lower != "" {
		for i := range m.records {
			if m.records[i].CertificateIDLower == lower {
				merged := m.records[i]
				mergeRecord(&merged, rec)
				merged.DeriveNormalized()
				m.records[i] = merged
				*rec = merged
				return false, nil
			}
		}
	}
	m.seq++
	rec.ID = m.seq
	rec.DeriveNormalized()
	m.records = append(m.records, *rec)
	return true, nil
}

func (m *Memory) List(ctx context.Context, limit, offset int) ([]models.CertificateRecord, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := int64(len(m.records))
	// Newest first, to match the Postgres ordering.
	var out []models.CertificateRecord
	for i := len(m.records) - 1; i >= 0; i-- {
		out = append(out, m.records[i])
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(out) {
		return nil, total, nil
	}
	out = out[offset:]
	if limit >= 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

func (m *Memory) Stats(ctx context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	issuers := map[string]struct{}{}
	for i := range m.records {
		if m.records[i].Issuer != "" {
			issuers[m.records[i].Issuer] = struct{}{}
		}
	}
	return Stats{
		Certificates: int64(len(m.records)),
		Events:       int64(len(m.events)),
		Issuers:      int64(len(issuers)),
		Backend:      "memory",
	}, nil
}

func (m *Memory) LogEvent(ctx context.Context, ev *models.AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *ev)
	return nil
}
