package router

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"certverify/internal/config"
	"certverify/internal/handlers"
	"certverify/internal/middleware"
)

func New(h *handlers.Handler, cfg config.Config, logger *log.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS)
	r.Use(middleware.Logging(logger))

	r.Get("/", h.Health)

	// Public verification surface
	r.Post("/api/v1/verify", h.VerifyCertificate)
	r.Post("/api/v1/ocr", h.ExtractDocument)
	r.Get("/api/v1/certificates/{id}/qrcode", h.CertificateQRCode)
	r.Get("/api/v1/certificate-info/{id}", h.CertificateInfo)

	// Admin surface (X-API-Key)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAPIKey(cfg.AdminKeys))
		r.Post("/api/v1/register", h.RegisterCertificate)
		r.Post("/api/v1/import", h.ImportRecords)
		r.Post("/api/v1/import-csv", h.ImportCSV)
		r.Get("/api/v1/records", h.ListRecords)
		r.Get("/api/v1/stats", h.StoreStats)
		r.Post("/api/v1/certificates/generate-share-link", h.GenerateShareLink)
	})

	return r
}
