package handlers

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"certverify/internal/extract"
	"certverify/internal/hash"
	"certverify/internal/middleware"
	"certverify/internal/models"
)

// RegisterCertificate handles POST /api/v1/register (admin).
//
// Multipart form: "file" plus certificate_id, name, roll_number, course,
// issue_date, issuer, issuer_id and auto_ocr=1 to fill missing fields from the
// document text. Computes the sha256 content digest and upserts the record.
// The uploaded bytes are hashed and discarded, never persisted.
func (h *Handler) RegisterCertificate(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.AdminFrom(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.Cfg.MaxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errResp("failed to parse form or file too large"))
		return
	}
	file, hdr, err := formFile(r, "file", "certificate")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errResp("no file provided"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil || len(data) == 0 {
		writeJSON(w, http.StatusBadRequest, errResp("failed to read uploaded file"))
		return
	}
	fileHash := hash.SHA256Hex(data)

	rec := &models.CertificateRecord{
		CertificateID: strings.TrimSpace(r.FormValue("certificate_id")),
		Name:          r.FormValue("name"),
		RollNumber:    r.FormValue("roll_number"),
		Course:        r.FormValue("course"),
		IssueDate:     r.FormValue("issue_date"),
		Issuer:        r.FormValue("issuer"),
		IssuerID:      r.FormValue("issuer_id"),
		FileHash:      fileHash,
		FileName:      hdr.Filename,
		FileExt:       strings.ToLower(strings.TrimPrefix(filepath.Ext(hdr.Filename), ".")),
	}
	if rec.IssuerID == "" && admin.IssuerID != "*" {
		rec.IssuerID = admin.IssuerID
	}
	if r.FormValue("auto_ocr") == "1" {
		fillMissing(rec, h.extractFields(r.Context(), data))
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Cfg.StoreTimeout)
	defer cancel()
	inserted, err := h.Store.Upsert(ctx, rec)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	h.logEvent(ctx, "registration", admin, rec.CertificateID, fileHash, inserted)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"inserted": inserted,
		"record":   rec,
	})
}

// fillMissing copies extracted fields into rec where registration metadata was
// not supplied; explicit form values always win over OCR.
func fillMissing(rec *models.CertificateRecord, f extract.Fields) {
	if rec.CertificateID == "" {
		rec.CertificateID = f.CertificateID
	}
	if rec.Name == "" {
		rec.Name = f.Name
	}
	if rec.RollNumber == "" {
		rec.RollNumber = f.RollNumber
	}
	if rec.Course == "" {
		rec.Course = f.Course
	}
	if rec.Issuer == "" {
		rec.Issuer = f.Issuer
	}
}

// logEvent records an administrative action. Best effort: a failed audit write
// is logged but does not fail the request.
func (h *Handler) logEvent(ctx context.Context, typ string, admin middleware.Admin, certID, fileHash string, inserted bool) {
	ev := &models.AuditEvent{
		ID:            uuid.NewString(),
		Type:          typ,
		CertificateID: certID,
		FileHash:      fileHash,
		IssuerID:      admin.IssuerID,
		AdminRole:     admin.Role,
		Inserted:      inserted,
		CreatedAt:     time.Now().UTC(),
	}
	if err := h.Store.LogEvent(ctx, ev); err != nil {
		h.Log.Printf("audit log failed: %v", err)
	}
}
