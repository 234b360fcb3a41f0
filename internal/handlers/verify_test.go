package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"certverify/internal/config"
	"certverify/internal/handlers"
	"certverify/internal/models"
	"certverify/internal/router"
	"certverify/internal/store"
	"certverify/internal/verify"
)

const testAPIKey = "test-admin-key"

func newTestServer(t *testing.T, st store.Store) http.Handler {
	t.Helper()
	cfg := config.Config{
		MaxUploadBytes:   10 << 20,
		StoreTimeout:     5 * time.Second,
		ShareTokenSecret: "test-secret",
		FrontendBaseURL:  "http://localhost:3000",
		AdminKeys:        []config.AdminKey{{Key: testAPIKey, Role: "superadmin", IssuerID: "*"}},
	}
	h := &handlers.Handler{
		Store:    st,
		Verifier: verify.New(st),
		Cfg:      cfg,
		Log:      log.New(io.Discard, "", 0),
	}
	return router.New(h, cfg, h.Log)
}

func seedRecord(t *testing.T, st store.Store, rec *models.CertificateRecord) {
	t.Helper()
	_, err := st.Upsert(context.Background(), rec)
	require.NoError(t, err)
}

func postJSON(t *testing.T, srv http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestVerifyEndpointByFields(t *testing.T) {
	st := store.NewMemory()
	seedRecord(t, st, &models.CertificateRecord{
		CertificateID: "JH-UNI-2022-0001",
		Name:          "Amit Kumar",
		FileHash:      "abc123",
	})
	srv := newTestServer(t, st)

	w := postJSON(t, srv, "/api/v1/verify", map[string]string{"certificate_id": "jh-uni-2022-0001"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success   bool   `json:"success"`
		Verdict   string `json:"verdict"`
		MatchedBy string `json:"matched_by"`
		Integrity string `json:"integrity"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, "valid", resp.Verdict)
	require.Equal(t, "certificate_id", resp.MatchedBy)
	require.Equal(t, "unknown", resp.Integrity)
}

func TestVerifyEndpointAssertedHash(t *testing.T) {
	st := store.NewMemory()
	seedRecord(t, st, &models.CertificateRecord{CertificateID: "C-9", FileHash: "abc123"})
	srv := newTestServer(t, st)

	w := postJSON(t, srv, "/api/v1/verify", map[string]string{
		"certificate_id": "C-9",
		"file_hash":      "ABC123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Integrity string `json:"integrity"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "match", resp.Integrity)
}

func TestVerifyEndpointMalformed(t *testing.T) {
	srv := newTestServer(t, store.NewMemory())

	w := postJSON(t, srv, "/api/v1/verify", map[string]string{})
	require.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/verify", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

type downStore struct{ store.Store }

func (downStore) FindByCertificateID(context.Context, string) (*models.CertificateRecord, error) {
	return nil, store.ErrUnavailable
}

func TestVerifyEndpointStoreDown(t *testing.T) {
	srv := newTestServer(t, downStore{store.NewMemory()})

	w := postJSON(t, srv, "/api/v1/verify", map[string]string{"certificate_id": "X"})
	require.Equal(t, http.StatusServiceUnavailable, w.Code, "an outage must not read as not_found")
}

func TestAdminEndpointsRequireAPIKey(t *testing.T) {
	srv := newTestServer(t, store.NewMemory())

	w := postJSON(t, srv, "/api/v1/import", map[string]any{"records": []any{}})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestImportThenVerify(t *testing.T) {
	st := store.NewMemory()
	srv := newTestServer(t, st)

	b, _ := json.Marshal(map[string]any{
		"records": []map[string]string{
			{"certificate_id": "IMP-1", "name": "Amit Kumar", "course": "B.Tech CSE", "file_hash": "abc123"},
			{"certificate_id": "IMP-2", "name": "Binita Rao"},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/import", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testAPIKey)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var imp struct {
		Summary map[string]int `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &imp))
	require.Equal(t, 2, imp.Summary["inserted"])

	vw := postJSON(t, srv, "/api/v1/verify", map[string]string{"name": "Amit Kumar", "course": "b.tech CSE"})
	require.Equal(t, http.StatusOK, vw.Code)
	var resp struct {
		Verdict   string `json:"verdict"`
		MatchedBy string `json:"matched_by"`
	}
	require.NoError(t, json.Unmarshal(vw.Body.Bytes(), &resp))
	require.Equal(t, "valid", resp.Verdict)
	require.Equal(t, "fields", resp.MatchedBy)
}

func TestCertificateQRCodeEndpoint(t *testing.T) {
	st := store.NewMemory()
	seedRecord(t, st, &models.CertificateRecord{CertificateID: "QR-1", FileHash: "abc123"})
	srv := newTestServer(t, st)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/certificates/QR-1/qrcode", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "image/png", w.Header().Get("Content-Type"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/certificates/GHOST/qrcode", nil)
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestShareLinkRoundTrip(t *testing.T) {
	st := store.NewMemory()
	seedRecord(t, st, &models.CertificateRecord{CertificateID: "SH-1", Name: "Amit Kumar"})
	srv := newTestServer(t, st)

	b, _ := json.Marshal(map[string]any{"certificate_id": "SH-1", "expires_in_hours": 24})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/certificates/generate-share-link", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testAPIKey)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var link struct {
		ShareableURL string `json:"shareable_url"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &link))
	u, err := url.Parse(link.ShareableURL)
	require.NoError(t, err)
	token := u.Query().Get("token")
	require.NotEmpty(t, token)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/certificate-info/SH-1?token="+token, nil)
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/certificate-info/SH-1?token=garbage", nil)
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
