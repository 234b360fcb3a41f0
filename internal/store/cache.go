package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"certverify/internal/models"
	"certverify/internal/normalize"
)

// Cache is a read-through Redis decorator over a Store. Only exact certificate
// id lookups are cached; field queries always hit the backing store. Cache
// failures degrade to the backing store, never to an error.
type Cache struct {
	Store
	rdb *redis.Client
	ttl time.Duration
}

func NewCache(next Store, rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{Store: next, rdb: rdb, ttl: ttl}
}

func cacheKey(id string) string {
	return "cert:" + normalize.ID(id)
}

func (c *Cache) FindByCertificateID(ctx context.Context, id string) (*models.CertificateRecord, error) {
	key := cacheKey(id)
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var rec models.CertificateRecord
		if json.Unmarshal(b, &rec) == nil {
			// Twins are json:"-" and do not survive the round trip.
			rec.DeriveNormalized()
			return &rec, nil
		}
	}
	rec, err := c.Store.FindByCertificateID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(rec); err == nil {
		c.rdb.Set(ctx, key, b, c.ttl)
	}
	return rec, nil
}

func (c *Cache) Upsert(ctx context.Context, rec *models.CertificateRecord) (bool, error) {
	inserted, err := c.Store.Upsert(ctx, rec)
	if err == nil && rec.CertificateID != "" {
		c.rdb.Del(ctx, cacheKey(rec.CertificateID))
	}
	return inserted, err
}
