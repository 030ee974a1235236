package services

import "github.com/prometheus/client_golang/prometheus"

var (
	cacheReadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "price_cache_reads_total",
			Help: "Price cache reads by outcome (hit, stale, miss)",
		},
		[]string{"outcome"},
	)

	upstreamItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "price_upstream_items_total",
			Help: "Items resolved per source during batch lookups (cache, api)",
		},
		[]string{"source"},
	)
)

func init() {
	prometheus.MustRegister(cacheReadsTotal)
	prometheus.MustRegister(upstreamItemsTotal)
}
