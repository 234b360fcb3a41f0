package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"

	"certverify/internal/store"
)

// CertificateQRCode handles GET /api/v1/certificates/{id}/qrcode.
// The PNG encodes the stored claim as JSON so that scanning it and feeding the
// payload back to /api/v1/verify corroborates the certificate.
func (h *Handler) CertificateQRCode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errResp("missing certificate id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Cfg.StoreTimeout)
	defer cancel()
	rec, err := h.Store.FindByCertificateID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errResp("certificate not found"))
		return
	}
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	payload, err := json.Marshal(struct {
		CertificateID string `json:"certificate_id"`
		FileHash      string `json:"file_hash,omitempty"`
	}{rec.CertificateID, rec.FileHash})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errResp("failed to build QR payload"))
		return
	}
	png, err := qrcode.Encode(string(payload), qrcode.Medium, 256)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errResp("failed to generate QR code"))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
