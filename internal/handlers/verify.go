package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"certverify/internal/extract"
	"certverify/internal/hash"
	"certverify/internal/verify"
)

type verifyResponse struct {
	Success bool `json:"success"`
	verify.Result
	// IssuerSimilarity is an advisory Jaro-Winkler score between the issuer
	// name seen on the document and the matched record's issuer. It never
	// affects the verdict.
	IssuerSimilarity *float64 `json:"issuer_similarity,omitempty"`
}

// VerifyCertificate handles POST /api/v1/verify.
//
// Accepts either multipart/form-data with the artifact under "file" plus
// optional "certificate_id" and "qr_payload" hints, or a JSON body
// {certificate_id?, name?, roll_number?, course?, file_hash?}.
func (h *Handler) VerifyCertificate(w http.ResponseWriter, r *http.Request) {
	var (
		req       verify.Request
		extracted extract.Fields
	)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		art, fields, ok := h.artifactFromUpload(w, r)
		if !ok {
			return
		}
		req.Artifact = art
		extracted = fields
	} else {
		var body struct {
			CertificateID string `json:"certificate_id"`
			Name          string `json:"name"`
			RollNumber    string `json:"roll_number"`
			Course        string `json:"course"`
			FileHash      string `json:"file_hash"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, errResp("invalid JSON body"))
			return
		}
		req.Fields = &verify.FieldsInput{
			CertificateID: body.CertificateID,
			Name:          body.Name,
			RollNumber:    body.RollNumber,
			Course:        body.Course,
			FileHash:      body.FileHash,
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Cfg.StoreTimeout)
	defer cancel()
	res, err := h.Verifier.Verify(ctx, req)
	if err != nil {
		if errors.Is(err, verify.ErrMalformedRequest) {
			writeJSON(w, http.StatusBadRequest, errResp(err.Error()))
			return
		}
		h.writeStoreError(w, err)
		return
	}

	out := verifyResponse{Success: true, Result: res}
	if extracted.Issuer != "" && res.Record != nil && res.Record.Issuer != "" {
		sim := strutil.Similarity(
			strings.ToLower(extracted.Issuer),
			strings.ToLower(res.Record.Issuer),
			metrics.NewJaroWinkler(),
		)
		out.IssuerSimilarity = &sim
	}
	writeJSON(w, http.StatusOK, out)
}

// artifactFromUpload reads the uploaded document, computes its digest and
// gathers identifier hints (form values, then OCR). On failure the response is
// already written and ok is false.
func (h *Handler) artifactFromUpload(w http.ResponseWriter, r *http.Request) (*verify.ArtifactInput, extract.Fields, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.Cfg.MaxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errResp("failed to parse form or file too large"))
		return nil, extract.Fields{}, false
	}
	file, _, err := formFile(r, "file", "certificate", "document")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errResp("missing file field 'file'"))
		return nil, extract.Fields{}, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil || len(data) == 0 {
		writeJSON(w, http.StatusBadRequest, errResp("failed to read uploaded file"))
		return nil, extract.Fields{}, false
	}

	art := &verify.ArtifactInput{
		ObservedHash: hash.SHA256Hex(data),
		CandidateID:  strings.TrimSpace(r.FormValue("certificate_id")),
		QRPayload:    r.FormValue("qr_payload"),
	}
	fields := h.extractFields(r.Context(), data)
	if art.CandidateID == "" {
		art.CandidateID = fields.CertificateID
	}
	art.Name = fields.Name
	art.RollNumber = fields.RollNumber
	art.Course = fields.Course
	return art, fields, true
}

// extractFields OCRs the document when Vision is configured, falling back to
// Gemini when regexes recognize nothing. Extraction failures are logged and
// ignored; verification proceeds on whatever hints exist.
func (h *Handler) extractFields(ctx context.Context, data []byte) extract.Fields {
	if h.OCR == nil {
		return extract.Fields{}
	}
	octx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	text, err := h.OCR.Text(octx, data)
	if err != nil {
		h.Log.Printf("verify: ocr skipped: %v", err)
		return extract.Fields{}
	}
	return h.fieldsFromText(octx, text)
}

func (h *Handler) fieldsFromText(ctx context.Context, text string) extract.Fields {
	fields := extract.FromText(text)
	if fields.Empty() && h.Cfg.GeminiAPIKey != "" {
		g, gerr := extract.WithGemini(ctx, h.Cfg.GeminiAPIKey, text)
		if gerr != nil {
			h.Log.Printf("gemini fallback failed: %v", gerr)
		} else {
			fields = g
		}
	}
	return fields
}
