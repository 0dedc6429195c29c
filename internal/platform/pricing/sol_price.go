// Package pricing looks up the SOL/USD rate used to quote investments in SOL.
package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Source tells where a quoted price came from
type Source string

const (
	SourceLive     Source = "live"
	SourceCache    Source = "cache"
	SourceFallback Source = "fallback"
)

var ErrMalformedQuote = errors.New("price response has no solana/usd quote")

// Quote is a SOL price in USD
type Quote struct {
	Price     decimal.Decimal
	Source    Source
	FetchedAt time.Time
}

// PriceProvider returns the current SOL/USD rate. It always yields a usable quote.
type PriceProvider interface {
	SolPrice(ctx context.Context) Quote
}

// coinGeckoResponse is the body of /simple/price?ids=solana&vs_currencies=usd
type coinGeckoResponse struct {
	Solana struct {
		USD *json.Number `json:"usd"`
	} `json:"solana"`
}

// CoinGeckoClient fetches the SOL price and keeps the last good value for CacheTTL.
// When the upstream fails it serves the last good value, or the fallback if there is none.
type CoinGeckoClient struct {
	url      string
	fallback decimal.Decimal
	cacheTTL time.Duration
	client   *http.Client
	logger   *slog.Logger
	now      func() time.Time

	mu   sync.Mutex
	last *Quote
}

// NewCoinGeckoClient creates a price client for url
func NewCoinGeckoClient(logger *slog.Logger, url string, fallback decimal.Decimal, timeout, cacheTTL time.Duration) *CoinGeckoClient {
	return &CoinGeckoClient{
		url:      url,
		fallback: fallback,
		cacheTTL: cacheTTL,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
		now:      time.Now,
	}
}

func (c *CoinGeckoClient) SolPrice(ctx context.Context) Quote {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.last != nil && now.Sub(c.last.FetchedAt) < c.cacheTTL {
		return Quote{Price: c.last.Price, Source: SourceCache, FetchedAt: c.last.FetchedAt}
	}

	price, err := c.fetch(ctx)
	if err != nil {
		if c.last != nil {
			c.logger.Warn("SOL price lookup failed, serving last known price", "error", err, "fetched_at", c.last.FetchedAt)
			return Quote{Price: c.last.Price, Source: SourceCache, FetchedAt: c.last.FetchedAt}
		}
		c.logger.Warn("SOL price lookup failed, serving fallback price", "error", err, "fallback", c.fallback.String())
		return Quote{Price: c.fallback, Source: SourceFallback, FetchedAt: now}
	}

	c.last = &Quote{Price: price, Source: SourceLive, FetchedAt: now}
	return *c.last
}

func (c *CoinGeckoClient) fetch(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return decimal.Zero, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var body coinGeckoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode response: %w", err)
	}
	if body.Solana.USD == nil {
		return decimal.Zero, ErrMalformedQuote
	}

	price, err := decimal.NewFromString(body.Solana.USD.String())
	if err != nil || !price.IsPositive() {
		return decimal.Zero, ErrMalformedQuote
	}
	return price, nil
}
