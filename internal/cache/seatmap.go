// Package cache provides a Redis-backed snapshot cache for flight
// seat maps. The seat map is the hottest read in the system during a
// sale; serving it from Redis keeps browse traffic off MySQL while
// booking writes go straight to the database. Entries are
// short-lived and invalidated on every booking state change, so a
// stale map can only survive for the TTL and never affects
// correctness: holds are still arbitrated by conditional updates.
package cache

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    "github.com/redis/go-redis/v9"

    "github.com/avialta/airline-reservation/internal/model"
)

// DefaultSeatMapTTL bounds staleness of a cached seat map.
const DefaultSeatMapTTL = 15 * time.Second

// SeatMapCache caches the full seat list of a flight as one JSON
// value. A nil client disables the cache: Get always misses and Put
// and Invalidate are no-ops.
type SeatMapCache struct {
    rdb *redis.Client
    ttl time.Duration
}

// NewSeatMapCache constructs a SeatMapCache. Pass a nil client to run
// without Redis.
func NewSeatMapCache(rdb *redis.Client, ttl time.Duration) *SeatMapCache {
    if ttl <= 0 {
        ttl = DefaultSeatMapTTL
    }
    return &SeatMapCache{rdb: rdb, ttl: ttl}
}

func seatMapKey(flightID uint64) string {
    return fmt.Sprintf("seatmap:%d", flightID)
}

// Get returns the cached seat map and true on a hit. Redis errors and
// undecodable payloads count as misses; the caller falls through to
// the database either way.
func (c *SeatMapCache) Get(ctx context.Context, flightID uint64) ([]model.Seat, bool) {
    if c.rdb == nil {
        return nil, false
    }
    raw, err := c.rdb.Get(ctx, seatMapKey(flightID)).Bytes()
    if err != nil {
        return nil, false
    }
    var seats []model.Seat
    if err := json.Unmarshal(raw, &seats); err != nil {
        return nil, false
    }
    return seats, true
}

// Put stores the seat map under the configured TTL. Failures are
// swallowed; the cache is advisory.
func (c *SeatMapCache) Put(ctx context.Context, flightID uint64, seats []model.Seat) {
    if c.rdb == nil {
        return
    }
    raw, err := json.Marshal(seats)
    if err != nil {
        return
    }
    _ = c.rdb.Set(ctx, seatMapKey(flightID), raw, c.ttl).Err()
}

// Invalidate drops the cached seat map after any booking state change
// so the next read reflects the new seat statuses immediately instead
// of after the TTL.
func (c *SeatMapCache) Invalidate(ctx context.Context, flightID uint64) {
    if c.rdb == nil {
        return
    }
    _ = c.rdb.Del(ctx, seatMapKey(flightID)).Err()
}
