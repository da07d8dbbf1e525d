// Package pricesource fetches gold prices from the remote price endpoint.
package pricesource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "kumbara/internal/errors"
)

// DefaultTimeout bounds a single fetch.
const DefaultTimeout = 10 * time.Second

// Fetcher returns the latest price for every category the source knows.
type Fetcher interface {
	FetchPrices(ctx context.Context) (map[string]decimal.Decimal, error)
}

// quote is one record of the vendor response. Alis is the buying price.
type quote struct {
	Name string `json:"name"`
	Alis string `json:"alis"`
}

// Client talks to the gold price endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient creates a new gold price client. A zero timeout uses DefaultTimeout.
func NewClient(baseURL, apiKey string, timeout time.Duration, httpClient *http.Client) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		timeout:    timeout,
		httpClient: httpClient,
	}
}

// FetchPrices performs one GET and returns category name → price. Every
// failure, including a response without a single usable entry, is an
// ErrFetchFailed.
func (c *Client) FetchPrices(ctx context.Context) (map[string]decimal.Decimal, error) {
	prices, err := c.fetch(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrFetchFailed, err)
	}
	return prices, nil
}

func (c *Client) fetch(ctx context.Context) (map[string]decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("fetching gold prices: timed out after %s", c.timeout)
		}
		return nil, fmt.Errorf("fetching gold prices: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching gold prices: unexpected status %d", resp.StatusCode)
	}

	var quotes []quote
	if err := json.NewDecoder(resp.Body).Decode(&quotes); err != nil {
		return nil, fmt.Errorf("decoding gold prices response: %w", err)
	}

	prices := make(map[string]decimal.Decimal, len(Categories))
	for _, q := range quotes {
		name, ok := CategoryName(q.Name)
		if !ok || q.Alis == "" {
			continue
		}
		price, err := ParseLocalizedDecimal(q.Alis)
		if err != nil || !price.IsPositive() {
			continue
		}
		prices[name] = price
	}

	if len(prices) == 0 {
		return nil, fmt.Errorf("no usable gold prices in response (%d records)", len(quotes))
	}
	return prices, nil
}
