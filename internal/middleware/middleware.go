// Package middleware carries the HTTP cross-cutting concerns: CORS, request
// logging and the X-API-Key admin pre-check.
package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"certverify/internal/config"
)

type ctxKey string

const adminKey ctxKey = "admin"

// Admin is the authenticated API-key principal. IssuerID "*" means unscoped.
type Admin struct {
	Role     string
	IssuerID string
}

// AdminFrom returns the Admin attached by RequireAPIKey.
func AdminFrom(ctx context.Context) (Admin, bool) {
	a, ok := ctx.Value(adminKey).(Admin)
	return a, ok
}

// CORS allows the admin frontend to call with the X-API-Key header.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Logging logs one line per request with status and duration.
func Logging(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			logger.Printf("%s %s -> %d (%s)", r.Method, r.URL.Path, sw.status, time.Since(start))
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// RequireAPIKey guards admin endpoints. Authentication here is a pre-check
// only; key management beyond the static list is out of scope.
func RequireAPIKey(keys []config.AdminKey) func(http.Handler) http.Handler {
	byKey := make(map[string]Admin, len(keys))
	for _, k := range keys {
		byKey[k.Key] = Admin{Role: k.Role, IssuerID: k.IssuerID}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				unauthorized(w, "missing X-API-Key")
				return
			}
			admin, ok := byKey[key]
			if !ok {
				unauthorized(w, "invalid API key")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), adminKey, admin)))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": msg})
}
