package universalis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	config "github.com/glamweave/dyebudget/configs"
	"github.com/glamweave/dyebudget/internal/core/domain/market"
	"github.com/glamweave/dyebudget/internal/core/ports"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// inProcessBaseURL is the placeholder host used when requests are
// dispatched through an injected RoundTripper instead of over the network.
const inProcessBaseURL = "http://universalis.internal"

// Options selects the transport path. An injected Transport (in-process
// dispatch) is preferred when present; otherwise requests go to BaseURL
// over plain HTTP. With neither configured every call fails immediately
// with market.ErrNoTransport and no network attempt is made.
type Options struct {
	BaseURL        string
	Transport      http.RoundTripper
	RequestTimeout time.Duration
	MaxBatchSize   int
}

// Client fetches authoritative price snapshots from a Universalis-style
// API, normalizing transport behavior and errors into market.APIError
// values.
type Client struct {
	http         *resty.Client
	timeout      time.Duration
	maxBatchSize int
	configured   bool
	logger       *logrus.Logger

	worldsMu sync.Mutex
	worlds   []market.World // lazy, for ValidateWorld
}

// NewClient builds a client from service configuration (URL transport).
func NewClient(cfg *config.UniversalisConfig, logger *logrus.Logger) *Client {
	return NewClientWithOptions(Options{
		BaseURL:        cfg.BaseURL,
		RequestTimeout: cfg.RequestTimeout,
		MaxBatchSize:   cfg.MaxBatchSize,
	}, logger)
}

// NewClientWithOptions builds a client with an explicit transport choice.
func NewClientWithOptions(opts Options, logger *logrus.Logger) *Client {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 5 * time.Second
	}
	if opts.MaxBatchSize <= 0 {
		opts.MaxBatchSize = 100
	}

	c := &Client{
		timeout:      opts.RequestTimeout,
		maxBatchSize: opts.MaxBatchSize,
		logger:       logger,
	}

	r := resty.New()
	switch {
	case opts.Transport != nil:
		r.SetTransport(opts.Transport)
		base := opts.BaseURL
		if base == "" {
			base = inProcessBaseURL
		}
		r.SetBaseURL(base)
		c.configured = true
	case opts.BaseURL != "":
		r.SetBaseURL(opts.BaseURL)
		c.configured = true
	}
	r.SetHeader("Accept", "application/json")
	c.http = r

	return c
}

// FetchPrices issues one aggregated request for the whole batch. Items
// without active listings are omitted from the result map.
func (c *Client) FetchPrices(ctx context.Context, world string, itemIDs []int) (map[int]*market.PriceSnapshot, error) {
	if !c.configured {
		return nil, market.ErrNoTransport
	}
	if len(itemIDs) > c.maxBatchSize {
		return nil, fmt.Errorf("%w: %d items, ceiling is %d", market.ErrTooManyItems, len(itemIDs), c.maxBatchSize)
	}
	if len(itemIDs) == 0 {
		return map[int]*market.PriceSnapshot{}, nil
	}

	ids := make([]string, len(itemIDs))
	for i, id := range itemIDs {
		ids[i] = strconv.Itoa(id)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var out aggregatedResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get(fmt.Sprintf("/api/v2/aggregated/%s/%s", url.PathEscape(world), strings.Join(ids, ",")))
	if err != nil {
		return nil, c.normalizeTransportError(err)
	}
	if !resp.IsSuccess() {
		return nil, remoteError(resp)
	}

	fetchedAt := time.Now()
	prices := make(map[int]*market.PriceSnapshot, len(out.Results))
	for key, item := range out.Results {
		itemID, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		if len(item.NQ.Listings) == 0 {
			// no active listings, omit rather than report a zero price
			continue
		}
		prices[itemID] = &market.PriceSnapshot{
			ItemID:       itemID,
			MinPrice:     item.NQ.MinPrice,
			AveragePrice: weightedAverage(item.NQ.Listings, item.NQ.MinPrice),
			MaxPrice:     item.NQ.MaxPrice,
			ListingCount: len(item.NQ.Listings),
			LastUpdate:   time.UnixMilli(item.LastUploadTime),
			World:        world,
			FetchedAt:    fetchedAt,
		}
	}

	if c.logger != nil {
		c.logger.WithFields(logrus.Fields{"world": world, "requested": len(itemIDs), "listed": len(prices)}).Debug("fetched aggregated prices")
	}
	return prices, nil
}

// FetchPricesBatched splits an arbitrarily large id list into ceiling-sized
// chunks fetched concurrently and merges the results. A failure in any
// chunk fails the whole call; partial tolerance is the orchestrator's job.
func (c *Client) FetchPricesBatched(ctx context.Context, world string, itemIDs []int) (map[int]*market.PriceSnapshot, error) {
	if len(itemIDs) <= c.maxBatchSize {
		return c.FetchPrices(ctx, world, itemIDs)
	}

	merged := make(map[int]*market.PriceSnapshot, len(itemIDs))
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < len(itemIDs); start += c.maxBatchSize {
		end := start + c.maxBatchSize
		if end > len(itemIDs) {
			end = len(itemIDs)
		}
		chunk := itemIDs[start:end]
		g.Go(func() error {
			prices, err := c.FetchPrices(ctx, world, chunk)
			if err != nil {
				return err
			}
			mu.Lock()
			for id, snap := range prices {
				merged[id] = snap
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return merged, nil
}

// FetchWorlds returns the authoritative world list.
func (c *Client) FetchWorlds(ctx context.Context) ([]market.World, error) {
	var out []worldEntry
	if err := c.getJSON(ctx, "/api/v2/worlds", &out); err != nil {
		return nil, err
	}
	worlds := make([]market.World, len(out))
	for i, w := range out {
		worlds[i] = market.World{ID: w.ID, Name: w.Name}
	}
	return worlds, nil
}

// FetchDataCenters returns the authoritative data center list.
func (c *Client) FetchDataCenters(ctx context.Context) ([]market.DataCenter, error) {
	var out []dataCenterEntry
	if err := c.getJSON(ctx, "/api/v2/data-centers", &out); err != nil {
		return nil, err
	}
	dcs := make([]market.DataCenter, len(out))
	for i, dc := range out {
		dcs[i] = market.DataCenter{Name: dc.Name, Region: dc.Region, Worlds: dc.Worlds}
	}
	return dcs, nil
}

// ValidateWorld resolves a user-supplied world name against the
// authoritative list, case-insensitively. ok=false for an unknown world;
// errors only on transport failure.
func (c *Client) ValidateWorld(ctx context.Context, world string) (string, bool, error) {
	c.worldsMu.Lock()
	cached := c.worlds
	c.worldsMu.Unlock()

	if cached == nil {
		worlds, err := c.FetchWorlds(ctx)
		if err != nil {
			return "", false, err
		}
		c.worldsMu.Lock()
		c.worlds = worlds
		c.worldsMu.Unlock()
		cached = worlds
	}

	for _, w := range cached {
		if strings.EqualFold(w.Name, world) {
			return w.Name, true, nil
		}
	}
	return "", false, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	if !c.configured {
		return market.ErrNoTransport
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.http.R().SetContext(ctx).SetResult(out).Get(path)
	if err != nil {
		return c.normalizeTransportError(err)
	}
	if !resp.IsSuccess() {
		return remoteError(resp)
	}
	return nil
}

func (c *Client) normalizeTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return market.NewTimeoutError("price request aborted: " + err.Error())
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return market.NewTimeoutError("price request timed out: " + err.Error())
	}
	return market.NewTransportError("price request failed: " + err.Error())
}

// remoteError extracts a best-effort message from a non-2xx response body.
func remoteError(resp *resty.Response) error {
	msg := ""
	var body errorBody
	if json.Unmarshal(resp.Body(), &body) == nil {
		if body.Message != "" {
			msg = body.Message
		} else if body.Error != "" {
			msg = body.Error
		}
	}
	if msg == "" {
		raw := strings.TrimSpace(string(resp.Body()))
		if len(raw) > 200 {
			raw = raw[:200]
		}
		msg = raw
	}
	return market.NewRemoteError(resp.StatusCode(), msg)
}

// weightedAverage is the quantity-weighted mean of listing prices, rounded
// to the nearest integer. Falls back to minPrice when total quantity is
// zero.
func weightedAverage(listings []listing, minPrice int) int {
	var total, qty int
	for _, l := range listings {
		total += l.PricePerUnit * l.Quantity
		qty += l.Quantity
	}
	if qty == 0 {
		return minPrice
	}
	return int(math.Round(float64(total) / float64(qty)))
}

var _ ports.PriceSource = (*Client)(nil)
