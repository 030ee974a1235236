package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	config "github.com/glamweave/dyebudget/configs"
	"github.com/glamweave/dyebudget/internal/core/domain/market"
	"github.com/glamweave/dyebudget/internal/core/ports"
	"github.com/sirupsen/logrus"
)

// cacheKeySchema versions the stored payload layout. Bump it when the
// CachedPrice shape changes so old entries read as misses instead of
// unmarshal garbage.
const cacheKeySchema = "v1"

// batchConcurrency bounds the per-key goroutines used by GetMany/SetMany.
const batchConcurrency = 16

// PriceCacheService is TTL-aware storage for price snapshots on top of a
// byte KV store. Every operation fails open: a storage error or a malformed
// payload is a miss on read and a no-op on write, never an error to the
// caller. Freshness is a pure function of (world, itemID, now); the only
// state is the injected store and clock.
type PriceCacheService struct {
	cache          ports.Cache
	ttl            time.Duration
	staleThreshold time.Duration
	expiryBuffer   time.Duration
	logger         *logrus.Logger
	now            func() time.Time
}

func NewPriceCacheService(cache ports.Cache, cfg *config.CacheConfig, logger *logrus.Logger) ports.PriceCache {
	return &PriceCacheService{
		cache:          cache,
		ttl:            cfg.TTL,
		staleThreshold: cfg.StaleThreshold,
		expiryBuffer:   cfg.ExpiryBuffer,
		logger:         logger,
		now:            time.Now,
	}
}

// priceKey builds the composite cache key. World matching is
// case-insensitive: "Crystal" and "crystal" resolve to the same entry.
func priceKey(world string, itemID int) string {
	return fmt.Sprintf("%s:prices:%s:%d", cacheKeySchema, strings.ToLower(world), itemID)
}

// read loads and decodes one entry. ok=false on miss, storage error or
// malformed payload.
func (s *PriceCacheService) read(ctx context.Context, world string, itemID int) (market.CachedPrice, bool) {
	var entry market.CachedPrice
	b, ok, err := s.cache.Get(ctx, priceKey(world, itemID))
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"world": world, "item_id": itemID}).WithError(err).Debug("price cache read failed, treating as miss")
		}
		return entry, false
	}
	if !ok {
		return entry, false
	}
	if err := json.Unmarshal(b, &entry); err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"world": world, "item_id": itemID}).WithError(err).Debug("price cache entry malformed, treating as miss")
		}
		return market.CachedPrice{}, false
	}
	return entry, true
}

// Get returns the snapshot only while it is fresh (age <= TTL).
func (s *PriceCacheService) Get(ctx context.Context, world string, itemID int) (*market.PriceSnapshot, bool) {
	entry, ok := s.read(ctx, world, itemID)
	if !ok {
		cacheReadsTotal.WithLabelValues("miss").Inc()
		return nil, false
	}
	if s.now().Sub(entry.CachedAt) > s.ttl {
		cacheReadsTotal.WithLabelValues("miss").Inc()
		return nil, false
	}
	cacheReadsTotal.WithLabelValues("hit").Inc()
	snap := entry.Data
	return &snap, true
}

// GetWithStale returns the snapshot while it is within the stale-tolerance
// window, flagging it stale once past the TTL. Beyond the window the entry
// is treated as absent.
func (s *PriceCacheService) GetWithStale(ctx context.Context, world string, itemID int) (ports.StalePrice, bool) {
	entry, ok := s.read(ctx, world, itemID)
	if !ok {
		cacheReadsTotal.WithLabelValues("miss").Inc()
		return ports.StalePrice{}, false
	}
	age := s.now().Sub(entry.CachedAt)
	if age > s.staleThreshold {
		cacheReadsTotal.WithLabelValues("miss").Inc()
		return ports.StalePrice{}, false
	}
	snap := entry.Data
	if age > s.ttl {
		cacheReadsTotal.WithLabelValues("stale").Inc()
		return ports.StalePrice{Snapshot: &snap, IsStale: true}, true
	}
	cacheReadsTotal.WithLabelValues("hit").Inc()
	return ports.StalePrice{Snapshot: &snap}, true
}

// Set stores the snapshot with cachedAt=now. The store-level expiry carries
// a buffer past the stale threshold so a stale read stays possible even if
// the backing store evicts on its own schedule. Write failures are
// non-fatal: cache unavailability must never fail the caller.
func (s *PriceCacheService) Set(ctx context.Context, world string, snapshot *market.PriceSnapshot) {
	if snapshot == nil {
		return
	}
	entry := market.CachedPrice{Data: *snapshot, CachedAt: s.now()}
	b, err := json.Marshal(entry)
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"world": world, "item_id": snapshot.ItemID}).WithError(err).Warn("price cache write failed")
		}
		return
	}
	expiry := s.staleThreshold + s.expiryBuffer
	if err := s.cache.Set(ctx, priceKey(world, snapshot.ItemID), b, expiry); err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"world": world, "item_id": snapshot.ItemID}).WithError(err).Warn("price cache write failed")
		}
	}
}

// Invalidate deletes one entry. Manual correction only, not part of the
// normal flow.
func (s *PriceCacheService) Invalidate(ctx context.Context, world string, itemID int) error {
	return s.cache.Delete(ctx, priceKey(world, itemID))
}

// GetMany resolves a batch with independent per-key reads running
// concurrently. Only the ids that were present (and fresh) appear in the
// returned map.
func (s *PriceCacheService) GetMany(ctx context.Context, world string, itemIDs []int) map[int]*market.PriceSnapshot {
	found := make(map[int]*market.PriceSnapshot, len(itemIDs))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, batchConcurrency)
	for _, id := range itemIDs {
		wg.Add(1)
		sem <- struct{}{}
		go func(id int) {
			defer wg.Done()
			defer func() { <-sem }()
			if snap, ok := s.Get(ctx, world, id); ok {
				mu.Lock()
				found[id] = snap
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()
	return found
}

// SetMany writes a batch with independent per-key writes running
// concurrently. There is no multi-key atomicity; last writer wins per key,
// which the TTL/stale model tolerates.
func (s *PriceCacheService) SetMany(ctx context.Context, world string, snapshots map[int]*market.PriceSnapshot) {
	var wg sync.WaitGroup
	sem := make(chan struct{}, batchConcurrency)
	for _, snap := range snapshots {
		wg.Add(1)
		sem <- struct{}{}
		go func(snap *market.PriceSnapshot) {
			defer wg.Done()
			defer func() { <-sem }()
			s.Set(ctx, world, snap)
		}(snap)
	}
	wg.Wait()
}

var _ ports.PriceCache = (*PriceCacheService)(nil)
