package market

import "time"

// PriceSnapshot is one fetched price observation for an item on a world.
// Immutable once constructed; one snapshot per (world, item) per fetch.
type PriceSnapshot struct {
	ItemID       int       `json:"item_id"`
	MinPrice     int       `json:"min_price"`
	AveragePrice int       `json:"average_price"`
	MaxPrice     int       `json:"max_price"`
	ListingCount int       `json:"listing_count"`
	LastUpdate   time.Time `json:"last_update"` // upload time reported by the source
	World        string    `json:"world"`
	FetchedAt    time.Time `json:"fetched_at"` // when this process fetched it
}

// CachedPrice wraps a snapshot with the time it entered the cache.
// Owned by the cache layer; callers only ever see the unwrapped snapshot.
type CachedPrice struct {
	Data     PriceSnapshot `json:"data"`
	CachedAt time.Time     `json:"cached_at"`
}

// PriceResult is the merged outcome of a cache-aware batch lookup.
type PriceResult struct {
	Prices    map[int]*PriceSnapshot `json:"prices"`
	FromCache int                    `json:"from_cache"`
	FromAPI   int                    `json:"from_api"`
}

// World is one named market partition reported by the pricing source.
type World struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// DataCenter groups worlds by region as reported by the pricing source.
type DataCenter struct {
	Name   string `json:"name"`
	Region string `json:"region"`
	Worlds []int  `json:"worlds"`
}
