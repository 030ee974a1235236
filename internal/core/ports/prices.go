package ports

import (
	"context"

	"github.com/glamweave/dyebudget/internal/core/domain/budget"
	"github.com/glamweave/dyebudget/internal/core/domain/market"
)

// PriceSource fetches authoritative price snapshots from the remote pricing
// service. Implementations normalize every failure into market.APIError
// values; items without active listings are simply absent from result maps.
type PriceSource interface {
	// FetchPrices issues one request for the whole batch. Fails with
	// market.ErrTooManyItems before any network call when len(itemIDs)
	// exceeds the configured ceiling.
	FetchPrices(ctx context.Context, world string, itemIDs []int) (map[int]*market.PriceSnapshot, error)
	// FetchPricesBatched splits an arbitrarily large id list into
	// ceiling-sized chunks and merges the results. Any chunk failure fails
	// the whole call.
	FetchPricesBatched(ctx context.Context, world string, itemIDs []int) (map[int]*market.PriceSnapshot, error)
	FetchWorlds(ctx context.Context) ([]market.World, error)
	FetchDataCenters(ctx context.Context) ([]market.DataCenter, error)
	// ValidateWorld resolves a user-supplied world name case-insensitively
	// against the authoritative list. ok=false when the world does not
	// exist; an error only on transport failure.
	ValidateWorld(ctx context.Context, world string) (canonical string, ok bool, err error)
}

// StalePrice is a cache read that may be past its freshness TTL but still
// within the stale-tolerance window.
type StalePrice struct {
	Snapshot *market.PriceSnapshot
	IsStale  bool
}

// PriceCache is TTL-aware storage for price snapshots. Every operation
// fails open: storage errors surface as misses, never as errors.
type PriceCache interface {
	Get(ctx context.Context, world string, itemID int) (*market.PriceSnapshot, bool)
	GetWithStale(ctx context.Context, world string, itemID int) (StalePrice, bool)
	Set(ctx context.Context, world string, snapshot *market.PriceSnapshot)
	Invalidate(ctx context.Context, world string, itemID int) error
	GetMany(ctx context.Context, world string, itemIDs []int) map[int]*market.PriceSnapshot
	SetMany(ctx context.Context, world string, snapshots map[int]*market.PriceSnapshot)
}

// PriceService is the cache-aware orchestrator: serves what it can from the
// price cache and fetches only the gap from the price source.
type PriceService interface {
	GetPrices(ctx context.Context, world string, itemIDs []int) (*market.PriceResult, error)
}

// BudgetService ranks cheaper alternatives for one target dye.
type BudgetService interface {
	FindAlternatives(ctx context.Context, world string, targetID int, opts budget.SearchOptions) (*budget.Result, error)
}
