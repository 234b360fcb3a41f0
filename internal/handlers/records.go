package handlers

import (
	"context"
	"net/http"
	"strconv"

	"certverify/internal/models"
)

// ListRecords handles GET /api/v1/records?limit=&offset= (admin).
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	if limit < 1 || limit > 500 {
		limit = 50
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Cfg.StoreTimeout)
	defer cancel()
	recs, total, err := h.Store.List(ctx, limit, offset)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	if recs == nil {
		recs = []models.CertificateRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"items":   recs,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// StoreStats handles GET /api/v1/stats (admin).
func (h *Handler) StoreStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Cfg.StoreTimeout)
	defer cancel()
	stats, err := h.Store.Stats(ctx)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "stats": stats})
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
