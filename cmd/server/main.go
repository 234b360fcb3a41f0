package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"certverify/internal/config"
	"certverify/internal/handlers"
	"certverify/internal/ocr"
	"certverify/internal/router"
	"certverify/internal/store"
	"certverify/internal/verify"
)

func main() {
	cfg := config.Load()
	logger := log.New(os.Stdout, "", log.LstdFlags)
	ctx := context.Background()

	var st store.Store
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("connection to db failed: ", err)
		}
		logger.Println("connected to database")
		st = pg
	} else {
		logger.Println("DB_URL not set, using in-memory store (data will not persist)")
		st = store.NewMemory()
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Printf("redis unavailable, lookup caching disabled: %v", err)
		} else {
			st = store.NewCache(st, rdb, cfg.CacheTTL)
			logger.Println("redis lookup cache enabled")
		}
	}

	var ocrClient *ocr.Client
	if cfg.GoogleCredentials != "" {
		c, err := ocr.New(ctx, cfg.GoogleCredentials)
		if err != nil {
			logger.Printf("OCR disabled: %v", err)
		} else {
			ocrClient = c
			defer ocrClient.Close()
		}
	}

	h := &handlers.Handler{
		Store:    st,
		Verifier: verify.New(st),
		OCR:      ocrClient,
		Cfg:      cfg,
		Log:      logger,
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router.New(h, cfg, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Printf("listening on %s", cfg.Addr)
	logger.Fatal(srv.ListenAndServe())
}
