// Package cache adds a Redis read-through layer in front of the alert
// store. Every dashboard load asks for active alerts while alerts change
// rarely, so reads are served from Redis until the next upsert.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andres10976/webspider/backend/internal/model"
)

const (
	// GenerationKey is bumped on every upsert. Cached entries embed the
	// generation they were built for, so one INCR retires all of them,
	// which a broadcast alert requires.
	GenerationKey = "alerts:generation"

	DefaultTTL = 30 * time.Second
)

type alertSource interface {
	Upsert(ctx context.Context, targetEmail, message string, isActive bool) error
	ListActiveFor(ctx context.Context, userEmail string) ([]model.Alert, error)
}

type AlertStore struct {
	next   alertSource
	client *redis.Client
	ttl    time.Duration
}

func NewAlertStore(next alertSource, client *redis.Client, ttl time.Duration) *AlertStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &AlertStore{next: next, client: client, ttl: ttl}
}

// Upsert writes through to the store and then invalidates cached reads.
// A failed invalidation is logged; stale entries expire after the TTL.
func (s *AlertStore) Upsert(ctx context.Context, targetEmail, message string, isActive bool) error {
	if err := s.next.Upsert(ctx, targetEmail, message, isActive); err != nil {
		return err
	}
	if err := s.client.Incr(ctx, GenerationKey).Err(); err != nil {
		slog.Warn("failed to invalidate alert cache", "error", err, "ttl", s.ttl)
	}
	return nil
}

// ListActiveFor serves from Redis when possible and falls back to the
// store on a miss or any Redis error.
func (s *AlertStore) ListActiveFor(ctx context.Context, userEmail string) ([]model.Alert, error) {
	gen, err := s.client.Get(ctx, GenerationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		slog.Warn("alert cache unavailable, reading from store", "error", err)
		return s.next.ListActiveFor(ctx, userEmail)
	}
	key := entryKey(gen, userEmail)

	data, err := s.client.Get(ctx, key).Bytes()
	if err == nil {
		var alerts []model.Alert
		if err := json.Unmarshal(data, &alerts); err == nil {
			return alerts, nil
		}
		slog.Warn("discarding malformed alert cache entry", "key", key)
	} else if !errors.Is(err, redis.Nil) {
		slog.Warn("alert cache read failed, reading from store", "error", err)
		return s.next.ListActiveFor(ctx, userEmail)
	}

	alerts, err := s.next.ListActiveFor(ctx, userEmail)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(alerts); err == nil {
		if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
			slog.Warn("alert cache write failed", "error", err)
		}
	}
	return alerts, nil
}

func entryKey(gen int64, userEmail string) string {
	return fmt.Sprintf("alerts:%d:%s", gen, userEmail)
}
