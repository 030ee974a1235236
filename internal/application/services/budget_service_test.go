package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glamweave/dyebudget/internal/application/services"
	"github.com/glamweave/dyebudget/internal/core/domain/budget"
	"github.com/glamweave/dyebudget/internal/core/domain/dye"
	"github.com/glamweave/dyebudget/internal/core/domain/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCatalog serves a fixed dye list with a table-driven distance metric
// keyed by hex pair.
type fakeCatalog struct {
	dyes []*dye.Dye
	dist map[[2]string]float64
}

func (f *fakeCatalog) GetByID(id int) (*dye.Dye, bool) {
	for _, d := range f.dyes {
		if d.ID == id {
			return d, true
		}
	}
	return nil, false
}

func (f *fakeCatalog) GetByItemID(itemID int) (*dye.Dye, bool) {
	for _, d := range f.dyes {
		if d.ItemID == itemID {
			return d, true
		}
	}
	return nil, false
}

func (f *fakeCatalog) GetAll() []*dye.Dye { return f.dyes }

func (f *fakeCatalog) ColorDistance(hexA, hexB string) float64 {
	if d, ok := f.dist[[2]string{hexA, hexB}]; ok {
		return d
	}
	if d, ok := f.dist[[2]string{hexB, hexA}]; ok {
		return d
	}
	return 0
}

// fakePriceService returns a canned result.
type fakePriceService struct {
	result *market.PriceResult
	err    error
}

func (f *fakePriceService) GetPrices(ctx context.Context, world string, itemIDs []int) (*market.PriceResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func pricedSnapshot(itemID, minPrice int, fetchedAt time.Time) *market.PriceSnapshot {
	return &market.PriceSnapshot{
		ItemID:       itemID,
		MinPrice:     minPrice,
		AveragePrice: minPrice,
		MaxPrice:     minPrice * 2,
		ListingCount: 5,
		World:        "Crystal",
		FetchedAt:    fetchedAt,
	}
}

// testFixture: target dye 1 plus three alternatives.
func fixture() (*fakeCatalog, *fakePriceService) {
	catalog := &fakeCatalog{
		dyes: []*dye.Dye{
			{ID: 1, ItemID: 101, Name: "Target", Hex: "t"},
			{ID: 2, ItemID: 102, Name: "Close Cheap", Hex: "a"},
			{ID: 3, ItemID: 103, Name: "Far Cheap", Hex: "b"},
			{ID: 4, ItemID: 104, Name: "Pricey", Hex: "c"},
		},
		dist: map[[2]string]float64{
			{"t", "a"}: 10,
			{"t", "b"}: 30,
			{"t", "c"}: 5,
		},
	}
	now := time.Now()
	prices := &fakePriceService{result: &market.PriceResult{
		Prices: map[int]*market.PriceSnapshot{
			101: pricedSnapshot(101, 75000, now),
			102: pricedSnapshot(102, 50000, now),
			103: pricedSnapshot(103, 20000, now),
			104: pricedSnapshot(104, 90000, now),
		},
		FromCache: 2,
		FromAPI:   2,
	}}
	return catalog, prices
}

func TestFindAlternatives_ScoresAndSavings(t *testing.T) {
	catalog, prices := fixture()
	svc := services.NewBudgetService(catalog, prices, nil)

	res, err := svc.FindAlternatives(context.Background(), "Crystal", 1, budget.SearchOptions{})
	require.NoError(t, err)
	require.True(t, res.TargetPriceKnown)
	require.Len(t, res.Alternatives, 2)

	var closeCheap *budget.Candidate
	for _, c := range res.Alternatives {
		if c.Dye.ID == 2 {
			closeCheap = c
		}
	}
	require.NotNil(t, closeCheap, "dye 2 should survive all filters")

	// distance 10, price 50000 against a 75000 target
	assert.InDelta(t, 70.0, closeCheap.ValueScore, 1e-9)
	assert.Equal(t, 25000, closeCheap.Savings)
	assert.InDelta(t, 33.33, closeCheap.SavingsPercent, 0.01)
}

func TestFindAlternatives_FilterSemantics(t *testing.T) {
	catalog, prices := fixture()
	svc := services.NewBudgetService(catalog, prices, nil)
	ctx := context.Background()

	res, err := svc.FindAlternatives(ctx, "Crystal", 1, budget.SearchOptions{})
	require.NoError(t, err)
	for _, c := range res.Alternatives {
		assert.NotEqual(t, 1, c.Dye.ID, "target must never suggest itself")
		assert.Less(t, c.Price.MinPrice, 75000, "never at or above the target price")
		assert.LessOrEqual(t, c.ColorDistance, budget.DefaultMaxDistance)
	}

	// a price ceiling excludes the 50000 alternative even though it passes
	// the distance filter
	res, err = svc.FindAlternatives(ctx, "Crystal", 1, budget.SearchOptions{MaxPrice: 40000})
	require.NoError(t, err)
	for _, c := range res.Alternatives {
		assert.NotEqual(t, 2, c.Dye.ID)
	}

	// tightening the distance ceiling drops the far match
	res, err = svc.FindAlternatives(ctx, "Crystal", 1, budget.SearchOptions{MaxDistance: 15})
	require.NoError(t, err)
	require.Len(t, res.Alternatives, 1)
	assert.Equal(t, 2, res.Alternatives[0].Dye.ID)
}

func TestFindAlternatives_SortOrders(t *testing.T) {
	catalog, prices := fixture()
	svc := services.NewBudgetService(catalog, prices, nil)
	ctx := context.Background()

	res, err := svc.FindAlternatives(ctx, "Crystal", 1, budget.SearchOptions{SortBy: budget.SortByValueScore})
	require.NoError(t, err)
	for i := 1; i < len(res.Alternatives); i++ {
		assert.LessOrEqual(t, res.Alternatives[i-1].ValueScore, res.Alternatives[i].ValueScore)
	}

	res, err = svc.FindAlternatives(ctx, "Crystal", 1, budget.SearchOptions{SortBy: budget.SortByPrice})
	require.NoError(t, err)
	for i := 1; i < len(res.Alternatives); i++ {
		assert.LessOrEqual(t, res.Alternatives[i-1].Price.MinPrice, res.Alternatives[i].Price.MinPrice)
	}

	res, err = svc.FindAlternatives(ctx, "Crystal", 1, budget.SearchOptions{SortBy: budget.SortByColorMatch})
	require.NoError(t, err)
	for i := 1; i < len(res.Alternatives); i++ {
		assert.LessOrEqual(t, res.Alternatives[i-1].ColorDistance, res.Alternatives[i].ColorDistance)
	}
}

func TestFindAlternatives_Limit(t *testing.T) {
	catalog, prices := fixture()
	svc := services.NewBudgetService(catalog, prices, nil)

	res, err := svc.FindAlternatives(context.Background(), "Crystal", 1, budget.SearchOptions{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, res.Alternatives, 1)
}

func TestFindAlternatives_UnknownTarget(t *testing.T) {
	catalog, prices := fixture()
	svc := services.NewBudgetService(catalog, prices, nil)

	_, err := svc.FindAlternatives(context.Background(), "Crystal", 999, budget.SearchOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, market.ErrTargetNotFound)
}

func TestFindAlternatives_UnknownTargetPrice(t *testing.T) {
	catalog, prices := fixture()
	// drop the target's own price
	delete(prices.result.Prices, 101)
	svc := services.NewBudgetService(catalog, prices, nil)

	res, err := svc.FindAlternatives(context.Background(), "Crystal", 1, budget.SearchOptions{})
	require.NoError(t, err)
	assert.False(t, res.TargetPriceKnown)
	require.NotEmpty(t, res.Alternatives)
	for _, c := range res.Alternatives {
		assert.Equal(t, 0, c.Savings, "savings default to zero without a target price")
		assert.Equal(t, 0.0, c.SavingsPercent)
	}
}

func TestFindAlternatives_PriceServiceErrorPropagates(t *testing.T) {
	catalog, _ := fixture()
	prices := &fakePriceService{err: errors.New("upstream down")}
	svc := services.NewBudgetService(catalog, prices, nil)

	_, err := svc.FindAlternatives(context.Background(), "Crystal", 1, budget.SearchOptions{})
	require.Error(t, err)
}

func TestFindAlternatives_EmptyPriceMap(t *testing.T) {
	catalog, _ := fixture()
	prices := &fakePriceService{result: &market.PriceResult{Prices: map[int]*market.PriceSnapshot{}}}
	svc := services.NewBudgetService(catalog, prices, nil)

	res, err := svc.FindAlternatives(context.Background(), "Crystal", 1, budget.SearchOptions{})
	require.NoError(t, err, "no price data is an empty result, not an error")
	assert.Empty(t, res.Alternatives)
	assert.False(t, res.PricesAsOf.IsZero())
}
