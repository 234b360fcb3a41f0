// Package store is the persistence boundary for certificate records and audit
// events. Implementations must be safe for concurrent readers; the verification
// path only ever reads.
package store

import (
	"context"
	"errors"

	"certverify/internal/models"
)

var (
	// ErrNotFound signals a lookup miss.
	ErrNotFound = errors.New("store: record not found")

	// ErrUnavailable signals the store could not be reached or answered with an
	// infrastructure failure. Callers must never collapse it into "record does
	// not exist".
	ErrUnavailable = errors.New("store: unavailable")
)

// Store is implemented by the Postgres store, the in-memory store and the
// Redis cache decorator.
type Store interface {
	// FindByCertificateID performs a case-insensitive exact lookup.
	FindByCertificateID(ctx context.Context, id string) (*models.CertificateRecord, error)

	// FindByNormalizedFields returns every record whose normalized twin columns
	// match all supplied values; empty arguments are wildcards. The caller
	// applies the zero/one/many policy. Results are in a deterministic order.
	FindByNormalizedFields(ctx context.Context, name, rollNumber, course string) ([]models.CertificateRecord, error)

	// Upsert inserts rec, or merges it into an existing record with the same
	// certificate id (case-insensitive). Reports whether a new row was created.
	Upsert(ctx context.Context, rec *models.CertificateRecord) (inserted bool, err error)

	// List returns a page of records, newest first, plus the total count.
	List(ctx context.Context, limit, offset int) ([]models.CertificateRecord, int64, error)

	Stats(ctx context.Context) (Stats, error)

	LogEvent(ctx context.Context, ev *models.AuditEvent) error
}

// Stats summarizes store contents for the admin dashboard.
type Stats struct {
	Certificates int64  `json:"certificates"`
	Events       int64  `json:"logs"`
	Issuers      int64  `json:"issuers"`
	Backend      string `json:"database_type"`
}

// mergeRecord folds non-empty fields of src onto dst, preserving anything src
// leaves blank. Normalized twins are not touched; callers re-derive them.
func mergeRecord(dst, src *models.CertificateRecord) {
	if src.CertificateID != "" {
		dst.CertificateID = src.CertificateID
	}
	if src.Name != "" {
		dst.Name = src.Name
	}
	if src.RollNumber != "" {
		dst.RollNumber = src.RollNumber
	}
	if src.Course != "" {
		dst.Course = src.Course
	}
	if src.IssueDate != "" {
		dst.IssueDate = src.IssueDate
	}
	if src.Issuer != "" {
		dst.Issuer = src.Issuer
	}
	if src.FileHash != "" {
		dst.FileHash = src.FileHash
	}
	if src.FileName != "" {
		dst.FileName = src.FileName
	}
	if src.FileExt != "" {
		dst.FileExt = src.FileExt
	}
	if src.IssuerID != "" {
		dst.IssuerID = src.IssuerID
	}
}
