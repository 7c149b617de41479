package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/0xanrelins/strategy-demystify/Internal/types"
)

// SnapshotClient fetches binary-market snapshot history from a
// PolyBackTest-style provider. Prices arrive as decimal strings on the
// wire.
type SnapshotClient struct {
	BaseURL string
	APIKey  string

	httpClient *http.Client
}

func NewSnapshotClient(baseURL, apiKey string) *SnapshotClient {
	return &SnapshotClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// MapMarketType translates a human timeframe string into the provider's
// market-type vocabulary. Unknown values fall back to the 15m markets.
func MapMarketType(timeframe string) string {
	switch timeframe {
	case "15m":
		return "15m"
	case "1h":
		return "1hr"
	case "4h":
		return "4hr"
	}
	return "15m"
}

type marketListing struct {
	Markets []struct {
		MarketID   string `json:"market_id"`
		Slug       string `json:"slug"`
		MarketType string `json:"market_type"`
	} `json:"markets"`
	Total int `json:"total"`
}

type snapshotListing struct {
	Snapshots []struct {
		Timestamp       int64  `json:"timestamp"`
		YesPrice        string `json:"yes_price"`
		NoPrice         string `json:"no_price"`
		UnderlyingPrice string `json:"underlying_price"`
		MarketID        string `json:"market_id"`
	} `json:"snapshots"`
}

// FetchSnapshots lists recent markets of the requested type and returns
// the concatenated snapshot history, newest market first as the provider
// serves them. limit bounds snapshots per market.
func (c *SnapshotClient) FetchSnapshots(ctx context.Context, timeframe string, marketLimit, limit int) ([]types.MarketSnapshot, error) {
	listURL := fmt.Sprintf("%s/markets?market_type=%s&limit=%d",
		c.BaseURL, url.QueryEscape(MapMarketType(timeframe)), marketLimit)

	var listing marketListing
	if err := c.getJSON(ctx, listURL, &listing); err != nil {
		return nil, fmt.Errorf("failed to list markets: %w", err)
	}

	var snapshots []types.MarketSnapshot
	for _, m := range listing.Markets {
		snapURL := fmt.Sprintf("%s/markets/%s/snapshots?limit=%d", c.BaseURL, url.PathEscape(m.MarketID), limit)

		var page snapshotListing
		if err := c.getJSON(ctx, snapURL, &page); err != nil {
			return nil, fmt.Errorf("failed to fetch snapshots for %s: %w", m.MarketID, err)
		}

		for _, s := range page.Snapshots {
			snap := types.MarketSnapshot{
				Timestamp: s.Timestamp,
				MarketID:  s.MarketID,
			}
			if snap.MarketID == "" {
				snap.MarketID = m.MarketID
			}
			var err error
			if snap.YesPrice, err = parsePrice(s.YesPrice); err != nil {
				return nil, fmt.Errorf("bad yes_price in %s: %w", m.MarketID, err)
			}
			if snap.NoPrice, err = parsePrice(s.NoPrice); err != nil {
				return nil, fmt.Errorf("bad no_price in %s: %w", m.MarketID, err)
			}
			if snap.UnderlyingPrice, err = parsePrice(s.UnderlyingPrice); err != nil {
				return nil, fmt.Errorf("bad underlying_price in %s: %w", m.MarketID, err)
			}
			snapshots = append(snapshots, snap)
		}
	}

	return snapshots, nil
}

func (c *SnapshotClient) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-API-Key", c.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// parsePrice decodes a decimal-string price. Empty strings are valid and
// mean the provider had no quote; they decode to zero.
func parsePrice(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}
