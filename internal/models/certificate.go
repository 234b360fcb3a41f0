package models

import (
	"time"

	"certverify/internal/normalize"
)

// CertificateRecord is the canonical stored certificate entity. The *_normalized
// and CertificateIDLower columns are derived twins of their source fields; they
// exist only for case/whitespace-insensitive matching and are recomputed on
// every write, never authored directly.
type CertificateRecord struct {
	ID uint `gorm:"primaryKey" json:"-"`

	CertificateID      string `json:"certificate_id"`
	CertificateIDLower string `gorm:"index" json:"-"`

	Name                 string `json:"name,omitempty"`
	NameNormalized       string `gorm:"index" json:"-"`
	RollNumber           string `json:"roll_number,omitempty"`
	RollNumberNormalized string `gorm:"index" json:"-"`
	Course               string `json:"course,omitempty"`
	CourseNormalized     string `gorm:"index" json:"-"`
	IssueDate            string `json:"issue_date,omitempty"`
	IssueDateNormalized  string `json:"-"`
	Issuer               string `json:"issuer,omitempty"`
	IssuerNormalized     string `json:"-"`

	// FileHash is the sha256 hex digest of the registered artifact. Empty for
	// records imported without a document.
	FileHash string `gorm:"index" json:"file_hash,omitempty"`
	FileName string `json:"file_name,omitempty"`
	FileExt  string `json:"file_ext,omitempty"`

	// IssuerID scopes the record to the admin key that registered it.
	IssuerID string `json:"issuer_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeriveNormalized recomputes the derived twin columns from their source
// fields. Must be called before every write.
func (r *CertificateRecord) DeriveNormalized() {
	r.CertificateIDLower = normalize.ID(r.CertificateID)
	r.NameNormalized = normalize.Field(r.Name)
	r.RollNumberNormalized = normalize.Field(r.RollNumber)
	r.CourseNormalized = normalize.Field(r.Course)
	r.IssueDateNormalized = normalize.Field(r.IssueDate)
	r.IssuerNormalized = normalize.Field(r.Issuer)
}

// AuditEvent records an administrative action against the record store
// (registration, import). The verification path never writes events.
type AuditEvent struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	Type          string    `json:"type"`
	CertificateID string    `json:"certificate_id,omitempty"`
	FileHash      string    `json:"file_hash,omitempty"`
	IssuerID      string    `json:"issuer_id,omitempty"`
	AdminRole     string    `json:"admin_role,omitempty"`
	Inserted      bool      `json:"inserted"`
	CreatedAt     time.Time `json:"created_at"`
}
