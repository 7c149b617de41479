package marketdata

import (
	"context"
	"fmt"
	"time"

	md "github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"github.com/0xanrelins/strategy-demystify/Internal/types"
)

// CandleClient fetches historical OHLCV bars from the Alpaca market data
// API. Credentials come in through the constructor; nothing here reads the
// environment.
type CandleClient struct {
	client *md.Client
}

func NewCandleClient(apiKey, apiSecret string) *CandleClient {
	return &CandleClient{
		client: md.NewClient(md.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
		}),
	}
}

// FetchCryptoBars returns up to periodDays of history for a crypto pair
// such as "BTC/USD" at the given human timeframe ("5m", "1h", "1d", ...).
func (c *CandleClient) FetchCryptoBars(ctx context.Context, symbol, timeframe string, periodDays int) ([]types.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tf, err := ParseTimeframe(timeframe)
	if err != nil {
		return nil, err
	}

	end := time.Now()
	start := end.AddDate(0, 0, -periodDays)

	cryptoBars, err := c.client.GetCryptoBars(symbol, md.GetCryptoBarsRequest{
		TimeFrame: tf,
		Start:     start,
		End:       end,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bars for %s: %w", symbol, err)
	}

	bars := make([]types.Bar, len(cryptoBars))
	for i, b := range cryptoBars {
		bars[i] = types.Bar{
			Timestamp: b.Timestamp.Unix(),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		}
	}
	return bars, nil
}

// ParseTimeframe maps the human timeframe vocabulary onto Alpaca bar sizes.
func ParseTimeframe(timeframe string) (md.TimeFrame, error) {
	switch timeframe {
	case "5m":
		return md.NewTimeFrame(5, md.Min), nil
	case "15m":
		return md.NewTimeFrame(15, md.Min), nil
	case "1h":
		return md.OneHour, nil
	case "4h":
		return md.NewTimeFrame(4, md.Hour), nil
	case "24h", "1d":
		return md.OneDay, nil
	}
	return md.TimeFrame{}, fmt.Errorf("unsupported timeframe %q", timeframe)
}
