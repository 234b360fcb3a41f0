// Package handlers wires the HTTP surface to the verification engine and the
// record store.
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"mime/multipart"
	"net/http"

	"certverify/internal/config"
	"certverify/internal/ocr"
	"certverify/internal/store"
	"certverify/internal/verify"
)

// Handler carries the dependencies shared by all endpoints. Constructed once
// in main; no package-level state.
type Handler struct {
	Store    store.Store
	Verifier *verify.Verifier
	OCR      *ocr.Client // nil when Vision is not configured
	Cfg      config.Config
	Log      *log.Logger
}

// Health handles GET /.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"message": "certificate verification API is running",
		"version": "1.0.0",
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func errResp(msg string) map[string]any {
	return map[string]any{"success": false, "error": msg}
}

// writeStoreError maps a store failure onto the HTTP surface. An unavailable
// store is reported as such, never as a missing record.
func (h *Handler) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrUnavailable) {
		h.Log.Printf("store unavailable: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, errResp("record store unavailable"))
		return
	}
	h.Log.Printf("store error: %v", err)
	writeJSON(w, http.StatusInternalServerError, errResp("internal server error"))
}

// formFile is a tolerant multipart lookup: preferred field names first, then
// whatever file field the client actually sent.
func formFile(r *http.Request, names ...string) (multipart.File, *multipart.FileHeader, error) {
	for _, n := range names {
		if f, hdr, err := r.FormFile(n); err == nil {
			return f, hdr, nil
		}
	}
	if r.MultipartForm != nil {
		for k := range r.MultipartForm.File {
			if f, hdr, err := r.FormFile(k); err == nil {
				return f, hdr, nil
			}
		}
	}
	return nil, nil, errors.New("no file field in form")
}
