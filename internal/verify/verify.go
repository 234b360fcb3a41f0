// Package verify is the verification decision engine: it turns candidate
// identifiers, an observed content digest and an optional QR claim into a
// verdict with supporting evidence. It reads the record store but never writes.
package verify

import (
	"errors"
	"fmt"
	"strings"

	"certverify/internal/models"
)

// ErrMalformedRequest marks structurally invalid requests, rejected before any
// store access.
var ErrMalformedRequest = errors.New("verify: malformed request")

// Verdict is the primary existence outcome. It is deliberately independent of
// the integrity and QR signals; a caller that wants tamper detection must
// inspect those too.
type Verdict string

const (
	VerdictValid    Verdict = "valid"
	VerdictNotFound Verdict = "not_found"
)

// MatchedBy reports which signal located the record.
type MatchedBy string

const (
	MatchedByQR            MatchedBy = "qr"
	MatchedByCertificateID MatchedBy = "certificate_id"
	MatchedByFields        MatchedBy = "fields"
	MatchedByNone          MatchedBy = ""
)

// Integrity classifies the observed content digest against the stored one.
type Integrity string

const (
	IntegrityMatch    Integrity = "match"
	IntegrityMismatch Integrity = "mismatch"
	IntegrityUnknown  Integrity = "unknown"
)

// ArtifactInput is the by-artifact request shape. The raw document never
// reaches this package: the digest, the extracted fields and the QR payload are
// produced by collaborators (hasher, OCR, caller hints) before Verify runs.
type ArtifactInput struct {
	ObservedHash string
	CandidateID  string
	Name         string
	RollNumber   string
	Course       string
	QRPayload    string
}

// FieldsInput is the by-fields request shape. At least one identity field must
// be non-empty. FileHash is an optional caller-asserted digest.
type FieldsInput struct {
	CertificateID string
	Name          string
	RollNumber    string
	Course        string
	FileHash      string
}

// Request is a single verification attempt. Exactly one shape must be set.
type Request struct {
	Artifact *ArtifactInput
	Fields   *FieldsInput
}

func (r Request) validate() error {
	switch {
	case r.Artifact == nil && r.Fields == nil:
		return fmt.Errorf("%w: neither artifact nor fields supplied", ErrMalformedRequest)
	case r.Artifact != nil && r.Fields != nil:
		return fmt.Errorf("%w: artifact and fields are mutually exclusive", ErrMalformedRequest)
	}
	if f := r.Fields; f != nil {
		if strings.TrimSpace(f.CertificateID) == "" &&
			strings.TrimSpace(f.Name) == "" &&
			strings.TrimSpace(f.RollNumber) == "" &&
			strings.TrimSpace(f.Course) == "" {
			return fmt.Errorf("%w: at least one non-empty field is required", ErrMalformedRequest)
		}
	}
	return nil
}

// Result is the complete outcome of one verification. Record is set iff the
// verdict is valid.
type Result struct {
	Verdict      Verdict                   `json:"verdict"`
	MatchedBy    MatchedBy                 `json:"matched_by,omitempty"`
	Integrity    Integrity                 `json:"integrity"`
	QRVerified   bool                      `json:"qr_verified"`
	Ambiguous    bool                      `json:"ambiguous,omitempty"`
	Record       *models.CertificateRecord `json:"record,omitempty"`
	ObservedHash string                    `json:"observed_file_hash,omitempty"`
}
