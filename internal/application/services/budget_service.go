package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/glamweave/dyebudget/internal/core/domain/budget"
	"github.com/glamweave/dyebudget/internal/core/domain/market"
	"github.com/glamweave/dyebudget/internal/core/ports"
	"github.com/sirupsen/logrus"
)

// BudgetService turns raw price data into ranked cheaper-alternative
// suggestions for one target dye.
type BudgetService struct {
	catalog ports.DyeCatalog
	prices  ports.PriceService
	logger  *logrus.Logger
	now     func() time.Time
}

func NewBudgetService(catalog ports.DyeCatalog, prices ports.PriceService, logger *logrus.Logger) ports.BudgetService {
	return &BudgetService{catalog: catalog, prices: prices, logger: logger, now: time.Now}
}

// FindAlternatives ranks every catalog dye that is strictly cheaper than
// the target and within the color-distance ceiling. Price source failures
// propagate unchanged; an empty result is not an error.
func (s *BudgetService) FindAlternatives(ctx context.Context, world string, targetID int, opts budget.SearchOptions) (*budget.Result, error) {
	opts = opts.Normalize()

	target, ok := s.catalog.GetByID(targetID)
	if !ok {
		return nil, fmt.Errorf("%w: id %d", market.ErrTargetNotFound, targetID)
	}

	all := s.catalog.GetAll()
	itemIDs := make([]int, 0, len(all))
	for _, d := range all {
		itemIDs = append(itemIDs, d.ItemID)
	}

	res, err := s.prices.GetPrices(ctx, world, itemIDs)
	if err != nil {
		return nil, err
	}

	targetPrice := res.Prices[target.ItemID]
	targetKnown := targetPrice != nil

	candidates := make([]*budget.Candidate, 0, len(all))
	for _, d := range all {
		if d.ID == target.ID {
			continue
		}
		price := res.Prices[d.ItemID]
		if price == nil {
			continue
		}
		// An equal-priced dye is not a savings, so >= rather than >.
		if targetKnown && price.MinPrice >= targetPrice.MinPrice {
			continue
		}
		if opts.MaxPrice > 0 && price.MinPrice > opts.MaxPrice {
			continue
		}
		dist := s.catalog.ColorDistance(target.Hex, d.Hex)
		if dist > opts.MaxDistance {
			continue
		}

		savings := 0
		savingsPercent := 0.0
		if targetKnown {
			savings = targetPrice.MinPrice - price.MinPrice
			if targetPrice.MinPrice > 0 {
				savingsPercent = float64(savings) / float64(targetPrice.MinPrice) * 100
			}
		}

		candidates = append(candidates, &budget.Candidate{
			Dye:            d,
			Price:          price,
			ColorDistance:  dist,
			Savings:        savings,
			SavingsPercent: savingsPercent,
			ValueScore:     dist*2 + float64(price.MinPrice)/1000,
		})
	}

	sortCandidates(candidates, opts.SortBy)
	if len(candidates) > opts.Limit {
		candidates = candidates[:opts.Limit]
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"world":      world,
			"target_id":  targetID,
			"candidates": len(candidates),
			"from_cache": res.FromCache,
			"from_api":   res.FromAPI,
		}).Debug("alternatives computed")
	}

	return &budget.Result{
		Target:           target,
		TargetPrice:      targetPrice,
		TargetPriceKnown: targetKnown,
		Alternatives:     candidates,
		World:            world,
		PricesAsOf:       s.pricesAsOf(res.Prices),
		FromCache:        res.FromCache,
		FromAPI:          res.FromAPI,
	}, nil
}

func sortCandidates(cs []*budget.Candidate, mode budget.SortMode) {
	switch mode {
	case budget.SortByPrice:
		sort.SliceStable(cs, func(i, j int) bool {
			return candidatePrice(cs[i]) < candidatePrice(cs[j])
		})
	case budget.SortByColorMatch:
		sort.SliceStable(cs, func(i, j int) bool {
			return cs[i].ColorDistance < cs[j].ColorDistance
		})
	default:
		sort.SliceStable(cs, func(i, j int) bool {
			return cs[i].ValueScore < cs[j].ValueScore
		})
	}
}

// candidatePrice treats a missing snapshot as infinitely expensive. The
// filter step already requires a price, so this is belt-and-braces for the
// sort comparator.
func candidatePrice(c *budget.Candidate) float64 {
	if c.Price == nil {
		return math.Inf(1)
	}
	return float64(c.Price.MinPrice)
}

// pricesAsOf reports data freshness as the oldest fetch time across the
// snapshots that informed this result, falling back to now when no price
// data exists at all.
func (s *BudgetService) pricesAsOf(prices map[int]*market.PriceSnapshot) time.Time {
	var oldest time.Time
	for _, snap := range prices {
		if snap == nil {
			continue
		}
		if oldest.IsZero() || snap.FetchedAt.Before(oldest) {
			oldest = snap.FetchedAt
		}
	}
	if oldest.IsZero() {
		return s.now()
	}
	return oldest
}

var _ ports.BudgetService = (*BudgetService)(nil)
