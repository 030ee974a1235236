package budget

import (
	"time"

	"github.com/glamweave/dyebudget/internal/core/domain/dye"
	"github.com/glamweave/dyebudget/internal/core/domain/market"
)

// SortMode selects the ranking criterion for alternatives.
type SortMode string

const (
	SortByPrice      SortMode = "price"
	SortByColorMatch SortMode = "color_match"
	SortByValueScore SortMode = "value_score"
)

// Valid reports whether the mode is one of the supported criteria.
func (m SortMode) Valid() bool {
	switch m {
	case SortByPrice, SortByColorMatch, SortByValueScore:
		return true
	}
	return false
}

const (
	DefaultMaxDistance = 50.0
	DefaultLimit       = 5
)

// SearchOptions constrain and order an alternatives query.
// MaxPrice <= 0 means no price ceiling.
type SearchOptions struct {
	MaxPrice    int      `json:"max_price"`
	MaxDistance float64  `json:"max_distance"`
	SortBy      SortMode `json:"sort_by"`
	Limit       int      `json:"limit"`
}

// Normalize fills unset fields with their defaults.
func (o SearchOptions) Normalize() SearchOptions {
	if o.MaxDistance <= 0 {
		o.MaxDistance = DefaultMaxDistance
	}
	if !o.SortBy.Valid() {
		o.SortBy = SortByValueScore
	}
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	return o
}

// Candidate is one ranked cheaper-alternative suggestion. Recomputed per
// query, never persisted.
type Candidate struct {
	Dye            *dye.Dye              `json:"dye"`
	Price          *market.PriceSnapshot `json:"price"`
	ColorDistance  float64               `json:"color_distance"`
	Savings        int                   `json:"savings"`
	SavingsPercent float64               `json:"savings_percent"`
	ValueScore     float64               `json:"value_score"` // lower is better
}

// Result is a full alternatives response for one target dye.
type Result struct {
	Target           *dye.Dye              `json:"target"`
	TargetPrice      *market.PriceSnapshot `json:"target_price,omitempty"`
	TargetPriceKnown bool                  `json:"target_price_known"`
	Alternatives     []*Candidate          `json:"alternatives"`
	World            string                `json:"world"`
	PricesAsOf       time.Time             `json:"prices_as_of"`
	FromCache        int                   `json:"from_cache"`
	FromAPI          int                   `json:"from_api"`
}
