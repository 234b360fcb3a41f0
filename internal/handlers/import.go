package handlers

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"certverify/internal/middleware"
	"certverify/internal/models"
)

const importTimeout = 60 * time.Second

type importRecord struct {
	CertificateID string `json:"certificate_id"`
	Name          string `json:"name"`
	RollNumber    string `json:"roll_number"`
	Course        string `json:"course"`
	IssueDate     string `json:"issue_date"`
	Issuer        string `json:"issuer"`
	FileHash      string `json:"file_hash"`
	IssuerID      string `json:"issuer_id"`
}

func (in importRecord) toModel() *models.CertificateRecord {
	return &models.CertificateRecord{
		CertificateID: strings.TrimSpace(in.CertificateID),
		Name:          in.Name,
		RollNumber:    in.RollNumber,
		Course:        in.Course,
		IssueDate:     in.IssueDate,
		Issuer:        in.Issuer,
		FileHash:      in.FileHash,
		IssuerID:      in.IssuerID,
	}
}

// ImportRecords handles POST /api/v1/import (admin).
// Body: {"records": [{certificate_id, name, roll_number, course, issue_date,
// issuer, file_hash?, issuer_id?}, ...]}. Records from a scoped key are
// stamped with that key's issuer_id.
func (h *Handler) ImportRecords(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.AdminFrom(r.Context())

	var body struct {
		Records []importRecord `json:"records"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errResp("records must be a list"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), importTimeout)
	defer cancel()

	var inserted, updated int
	for _, in := range body.Records {
		rec := in.toModel()
		if rec.IssuerID == "" && admin.IssuerID != "*" {
			rec.IssuerID = admin.IssuerID
		}
		ins, err := h.Store.Upsert(ctx, rec)
		if err != nil {
			h.writeStoreError(w, err)
			return
		}
		if ins {
			inserted++
		} else {
			updated++
		}
	}
	h.logEvent(ctx, "import", admin, "", "", inserted > 0)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"summary": map[string]int{
			"inserted": inserted,
			"updated":  updated,
			"total":    len(body.Records),
		},
	})
}

var csvHeaders = []string{"certificate_id", "name", "roll_number", "course", "issue_date", "issuer"}

// ImportCSV handles POST /api/v1/import-csv (admin): bulk upload from a CSV
// file with the template header.
func (h *Handler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.AdminFrom(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 50<<20)
	if err := r.ParseMultipartForm(50 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, errResp("failed to parse form"))
		return
	}
	file, hdr, err := formFile(r, "records_csv", "csv", "file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errResp("records_csv file is required"))
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // validated per row below

	headers, err := reader.Read()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errResp("unable to read CSV header"))
		return
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(strings.ToLower(headers[i]))
	}
	if !equalStringSlices(headers, csvHeaders) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success":  false,
			"error":    "invalid CSV format, please use the provided template",
			"expected": csvHeaders,
			"got":      headers,
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), importTimeout)
	defer cancel()

	var inserted, updated, total int
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errResp("failed to read CSV rows"))
			return
		}
		if len(row) != len(csvHeaders) {
			writeJSON(w, http.StatusBadRequest, errResp("row does not match header length"))
			return
		}
		rec := &models.CertificateRecord{
			CertificateID: strings.TrimSpace(row[0]),
			Name:          strings.TrimSpace(row[1]),
			RollNumber:    strings.TrimSpace(row[2]),
			Course:        strings.TrimSpace(row[3]),
			IssueDate:     strings.TrimSpace(row[4]),
			Issuer:        strings.TrimSpace(row[5]),
		}
		if admin.IssuerID != "*" {
			rec.IssuerID = admin.IssuerID
		}
		ins, err := h.Store.Upsert(ctx, rec)
		if err != nil {
			h.writeStoreError(w, err)
			return
		}
		if ins {
			inserted++
		} else {
			updated++
		}
		total++
	}
	h.logEvent(ctx, "import", admin, "", "", inserted > 0)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  fmt.Sprintf("Imported %d records (%d new, %d updated).", total, inserted, updated),
		"inserted": inserted,
		"updated":  updated,
		"file":     hdr.Filename,
	})
}

func equalStringSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
