package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/glamweave/dyebudget/internal/core/domain/market"
	"github.com/glamweave/dyebudget/internal/core/ports"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// PriceService bridges the price cache and the remote price source. It is
// the only component that talks to both: the cache never calls the client
// and the client never touches the cache.
type PriceService struct {
	cache  ports.PriceCache
	source ports.PriceSource
	logger *logrus.Logger
	sf     singleflight.Group
}

func NewPriceService(cache ports.PriceCache, source ports.PriceSource, logger *logrus.Logger) ports.PriceService {
	return &PriceService{cache: cache, source: source, logger: logger}
}

// GetPrices serves what it can from cache and fetches only the gap. All
// cache reads for the batch run concurrently and complete before the single
// remote fetch for the misses is issued; fetched snapshots are written back
// to cache before the merged map is returned.
func (s *PriceService) GetPrices(ctx context.Context, world string, itemIDs []int) (*market.PriceResult, error) {
	cached := s.cache.GetMany(ctx, world, itemIDs)

	missing := make([]int, 0, len(itemIDs))
	for _, id := range itemIDs {
		if _, ok := cached[id]; !ok {
			missing = append(missing, id)
		}
	}

	if len(missing) == 0 {
		upstreamItemsTotal.WithLabelValues("cache").Add(float64(len(cached)))
		return &market.PriceResult{Prices: cached, FromCache: len(cached)}, nil
	}

	fetched, err := s.fetchCoalesced(ctx, world, missing)
	if err != nil {
		return nil, err
	}

	// Awaited so a caller never observes a merged result whose cache
	// writeback is still pending; write failures are swallowed inside the
	// cache layer.
	s.cache.SetMany(ctx, world, fetched)

	merged := make(map[int]*market.PriceSnapshot, len(cached)+len(fetched))
	for id, snap := range cached {
		merged[id] = snap
	}
	for id, snap := range fetched {
		merged[id] = snap
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"world":      world,
			"requested":  len(itemIDs),
			"from_cache": len(cached),
			"from_api":   len(fetched),
		}).Debug("batch price lookup resolved")
	}
	upstreamItemsTotal.WithLabelValues("cache").Add(float64(len(cached)))
	upstreamItemsTotal.WithLabelValues("api").Add(float64(len(fetched)))

	return &market.PriceResult{Prices: merged, FromCache: len(cached), FromAPI: len(fetched)}, nil
}

// fetchCoalesced collapses concurrent fetches for the same world+id-set
// into one upstream call.
func (s *PriceService) fetchCoalesced(ctx context.Context, world string, itemIDs []int) (map[int]*market.PriceSnapshot, error) {
	key := fetchKey(world, itemIDs)
	res, err, _ := s.sf.Do(key, func() (any, error) {
		return s.source.FetchPricesBatched(ctx, world, itemIDs)
	})
	if err != nil {
		return nil, err
	}
	fetched, ok := res.(map[int]*market.PriceSnapshot)
	if !ok {
		return nil, fmt.Errorf("unexpected type from singleflight result")
	}
	return fetched, nil
}

func fetchKey(world string, itemIDs []int) string {
	ids := make([]int, len(itemIDs))
	copy(ids, itemIDs)
	sort.Ints(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.ToLower(world) + ":" + strings.Join(parts, ",")
}

var _ ports.PriceService = (*PriceService)(nil)
