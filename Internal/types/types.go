package types

// Bar is one unit of historical OHLCV data. Timestamps are unix seconds.
type Bar struct {
	Timestamp int64   `json:"t"`
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Close     float64 `json:"c"`
	Volume    float64 `json:"v"`
}

// MarketSnapshot is one observation of a binary (yes/no) market. The
// underlying price is the reference asset the market resolves against.
type MarketSnapshot struct {
	Timestamp       int64   `json:"t"`
	YesPrice        float64 `json:"yes_price"`
	NoPrice         float64 `json:"no_price"`
	UnderlyingPrice float64 `json:"underlying_price"`
	MarketID        string  `json:"market_id"`
}

type TradeSide string

const (
	SideLong TradeSide = "long"
	SideYes  TradeSide = "yes"
	SideNo   TradeSide = "no"
)

// Trade is one simulated round trip. Trades are append-only within a
// backtest run and never mutated after creation.
type Trade struct {
	EntryTime  int64     `json:"entry_time"`
	ExitTime   int64     `json:"exit_time"`
	EntryPrice float64   `json:"entry_price"`
	ExitPrice  float64   `json:"exit_price"`
	Side       TradeSide `json:"side"`
	ExitReason string    `json:"exit_reason"`
	PnL        float64   `json:"pnl"`         // absolute, in capital units
	ReturnFrac float64   `json:"return_frac"` // fraction of the position stake
	Win        bool      `json:"win"`
}

// MetricValues are the five aggregate metrics the scorer consumes.
type MetricValues struct {
	ProfitFactor float64 `json:"profit_factor"`
	MaxDrawdown  float64 `json:"max_drawdown"`
	SharpeRatio  float64 `json:"sharpe_ratio"`
	CAGR         float64 `json:"cagr"`
	WinRate      float64 `json:"win_rate"`
}

// BacktestResult aggregates one simulation run. All fields are derived by
// the simulator; callers never set them independently.
type BacktestResult struct {
	TotalTrades    int     `json:"total_trades"`
	WinningTrades  int     `json:"winning_trades"`
	LosingTrades   int     `json:"losing_trades"`
	ProfitFactor   float64 `json:"profit_factor"`
	MaxDrawdown    float64 `json:"max_drawdown"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
	CAGR           float64 `json:"cagr"`
	WinRate        float64 `json:"win_rate"`
	InitialCapital float64 `json:"initial_capital"`
	FinalCapital   float64 `json:"final_capital"`
	TotalReturn    float64 `json:"total_return"` // percent
	StartDate      int64   `json:"start_date"`
	EndDate        int64   `json:"end_date"`
}

// Metrics extracts the scorer's view of a backtest result.
func (r BacktestResult) Metrics() MetricValues {
	return MetricValues{
		ProfitFactor: r.ProfitFactor,
		MaxDrawdown:  r.MaxDrawdown,
		SharpeRatio:  r.SharpeRatio,
		CAGR:         r.CAGR,
		WinRate:      r.WinRate,
	}
}
