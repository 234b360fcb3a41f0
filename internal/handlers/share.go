package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"certverify/internal/store"
)

type shareClaims struct {
	CertificateID string `json:"certificate_id"`
	jwt.RegisteredClaims
}

// GenerateShareLink handles POST /api/v1/certificates/generate-share-link
// (admin). Issues a short-lived signed URL that exposes a single certificate
// record without an API key.
func (h *Handler) GenerateShareLink(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CertificateID  string `json:"certificate_id"`
		ExpiresInHours int    `json:"expires_in_hours"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errResp("invalid JSON body"))
		return
	}
	body.CertificateID = strings.TrimSpace(body.CertificateID)
	if body.CertificateID == "" {
		writeJSON(w, http.StatusBadRequest, errResp("certificate_id is required"))
		return
	}
	// 1..168 hours, to avoid immediately-expired tokens
	if body.ExpiresInHours < 1 || body.ExpiresInHours > 168 {
		writeJSON(w, http.StatusBadRequest, errResp("expires_in_hours must be between 1 and 168"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Cfg.StoreTimeout)
	defer cancel()
	rec, err := h.Store.FindByCertificateID(ctx, body.CertificateID)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errResp("certificate not found"))
		return
	}
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	if h.Cfg.ShareTokenSecret == "" {
		writeJSON(w, http.StatusInternalServerError, errResp("server misconfigured"))
		return
	}
	exp := time.Now().Add(time.Duration(body.ExpiresInHours) * time.Hour)
	claims := shareClaims{
		CertificateID: rec.CertificateID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.Cfg.ShareTokenSecret))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errResp("failed to sign share token"))
		return
	}

	base := strings.TrimRight(h.Cfg.FrontendBaseURL, "/")
	link := fmt.Sprintf("%s/verify/%s?token=%s", base, url.PathEscape(rec.CertificateID), signed)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"shareable_url": link,
		"valid_until":   exp,
	})
}

// CertificateInfo handles GET /api/v1/certificate-info/{id}?token=...
// Public, but only reachable with a valid share token for that id.
func (h *Handler) CertificateInfo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errResp("missing certificate id"))
		return
	}
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		writeJSON(w, http.StatusUnauthorized, errResp("this verification link is invalid or has expired"))
		return
	}
	if h.Cfg.ShareTokenSecret == "" {
		writeJSON(w, http.StatusInternalServerError, errResp("server misconfigured"))
		return
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &shareClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(h.Cfg.ShareTokenSecret), nil
	})
	if err != nil || !parsed.Valid {
		writeJSON(w, http.StatusUnauthorized, errResp("this verification link is invalid or has expired"))
		return
	}
	claims, ok := parsed.Claims.(*shareClaims)
	if !ok || claims.CertificateID == "" || claims.ExpiresAt == nil || time.Now().After(claims.ExpiresAt.Time) {
		writeJSON(w, http.StatusUnauthorized, errResp("this verification link is invalid or has expired"))
		return
	}
	if !strings.EqualFold(claims.CertificateID, id) {
		writeJSON(w, http.StatusForbidden, errResp("token does not match certificate id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Cfg.StoreTimeout)
	defer cancel()
	rec, err := h.Store.FindByCertificateID(ctx, claims.CertificateID)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errResp("certificate not found"))
		return
	}
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"record":      rec,
		"valid_until": claims.ExpiresAt.Time,
	})
}
