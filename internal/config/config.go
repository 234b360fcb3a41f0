// Package config builds process configuration from the environment so main
// stays lean. Everything downstream receives config by value; there is no
// process-wide singleton.
package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AdminKey is one entry of the ADMIN_KEYS list. IssuerID "*" means unscoped.
type AdminKey struct {
	Key      string `json:"key"`
	Role     string `json:"role"`
	IssuerID string `json:"issuer_id"`
}

type Config struct {
	Addr        string
	DatabaseURL string
	RedisAddr   string
	CacheTTL    time.Duration

	MaxUploadBytes int64
	StoreTimeout   time.Duration

	AdminKeys        []AdminKey
	ShareTokenSecret string
	FrontendBaseURL  string

	GoogleCredentials string
	GeminiAPIKey      string
}

// Load reads .env (if present) and assembles a Config with dev-friendly
// defaults.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Addr:              getenv("ADDR", ":8080"),
		DatabaseURL:       firstenv("DB_URL", "DATABASE_URL"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		CacheTTL:          5 * time.Minute,
		MaxUploadBytes:    int64(getenvInt("MAX_UPLOAD_MB", 10)) << 20,
		StoreTimeout:      time.Duration(getenvInt("STORE_TIMEOUT_SECONDS", 5)) * time.Second,
		AdminKeys:         loadAdminKeys(),
		ShareTokenSecret:  firstenv("SHARE_TOKEN_SECRET", "JWT_SECRET"),
		FrontendBaseURL:   getenv("FRONTEND_BASE_URL", "http://localhost:3000"),
		GoogleCredentials: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
	}
	return cfg
}

// loadAdminKeys parses ADMIN_KEYS, a JSON array like
// [{"key":"demo-admin-key","role":"superadmin","issuer_id":"*"}].
// Falls back to a demo key for local development.
func loadAdminKeys() []AdminKey {
	if raw := os.Getenv("ADMIN_KEYS"); raw != "" {
		var keys []AdminKey
		if err := json.Unmarshal([]byte(raw), &keys); err == nil && len(keys) > 0 {
			for i := range keys {
				if keys[i].Role == "" {
					keys[i].Role = "admin"
				}
				if keys[i].IssuerID == "" {
					keys[i].IssuerID = "*"
				}
			}
			return keys
		}
		log.Println("config: ADMIN_KEYS is not valid JSON, using demo key")
	}
	return []AdminKey{{Key: "demo-admin-key", Role: "superadmin", IssuerID: "*"}}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func firstenv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
