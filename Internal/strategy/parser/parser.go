package parser

import (
	"regexp"
	"strconv"
	"strings"
)

type IndicatorType string

const (
	IndicatorRSI       IndicatorType = "RSI"
	IndicatorMA        IndicatorType = "MA"
	IndicatorMACD      IndicatorType = "MACD"
	IndicatorBollinger IndicatorType = "BollingerBands"
)

// Indicator is one indicator requested by the strategy text. Period is 0
// for indicators that carry their own canonical periods (MACD, Bollinger).
type Indicator struct {
	Type   IndicatorType `json:"type"`
	Period int           `json:"period,omitempty"`
}

// ConditionKind is the closed set of entry/exit condition variants. The
// simulator selects its path by switching on these, never on raw strings.
type ConditionKind string

const (
	CondRSIThreshold   ConditionKind = "RSI_THRESHOLD"
	CondMACross        ConditionKind = "MA_CROSS"
	CondMACDCross      ConditionKind = "MACD_CROSS"
	CondBollingerTouch ConditionKind = "BOLLINGER_TOUCH"
	CondBreakout       ConditionKind = "BREAKOUT"
	CondTimeWindow     ConditionKind = "TIME_WINDOW"
	CondPriceThreshold ConditionKind = "PRICE_THRESHOLD"
	CondSideSelect     ConditionKind = "SIDE_SELECT"
)

// Condition is a single entry or exit rule. Value is the RSI threshold for
// RSI_THRESHOLD, seconds for TIME_WINDOW and a [0,1] fraction for
// PRICE_THRESHOLD; it is unused for the cross/touch variants.
type Condition struct {
	Kind       ConditionKind `json:"kind"`
	Comparator string        `json:"comparator,omitempty"`
	Value      float64       `json:"value,omitempty"`
}

type SideMode string

const (
	SideWhichever SideMode = "whichever"
	SideUpOnly    SideMode = "up_only"
	SideDownOnly  SideMode = "down_only"
)

// BinaryParams holds the binary-market sub-parameters when the description
// targets a yes/no prediction market.
type BinaryParams struct {
	Underlying        string   `json:"underlying,omitempty"`
	TimeWindowSeconds int      `json:"time_window_seconds,omitempty"`
	PriceThreshold    float64  `json:"price_threshold,omitempty"`
	Side              SideMode `json:"side,omitempty"`
}

// UnrecognizedPattern names a strategy class we detected but cannot
// faithfully simulate from OHLCV-style data.
type UnrecognizedPattern struct {
	Pattern    string  `json:"pattern"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"` // 0-100
}

// StrategyParams is the structured output of parsing. Empty condition lists
// are valid and push the simulator onto its generic fallback path.
type StrategyParams struct {
	Indicators         []Indicator           `json:"indicators"`
	EntryConditions    []Condition           `json:"entry_conditions"`
	ExitConditions     []Condition           `json:"exit_conditions"`
	StopLoss           *float64              `json:"stop_loss,omitempty"`   // percent
	TakeProfit         *float64              `json:"take_profit,omitempty"` // percent
	RecognizedPatterns []string              `json:"recognized_patterns"`
	Unrecognized       []UnrecognizedPattern `json:"unrecognized_patterns"`
	IsBinaryMarket     bool                  `json:"is_binary_market"`
	Binary             *BinaryParams         `json:"binary,omitempty"`
	Timeframe          string                `json:"timeframe,omitempty"`
}

// HasIndicator reports whether an indicator of the given type was parsed.
func (p StrategyParams) HasIndicator(t IndicatorType) bool {
	for _, ind := range p.Indicators {
		if ind.Type == t {
			return true
		}
	}
	return false
}

// HasEntryCondition reports whether an entry condition of the given kind
// was parsed.
func (p StrategyParams) HasEntryCondition(kind ConditionKind) bool {
	for _, c := range p.EntryConditions {
		if c.Kind == kind {
			return true
		}
	}
	return false
}

// EntryValue returns the value of the first entry condition of the given
// kind, or the fallback when none was parsed.
func (p StrategyParams) EntryValue(kind ConditionKind, fallback float64) float64 {
	for _, c := range p.EntryConditions {
		if c.Kind == kind {
			return c.Value
		}
	}
	return fallback
}

// ExitValue is EntryValue for the exit condition list.
func (p StrategyParams) ExitValue(kind ConditionKind, fallback float64) float64 {
	for _, c := range p.ExitConditions {
		if c.Kind == kind {
			return c.Value
		}
	}
	return fallback
}

var (
	orderFlowRe = regexp.MustCompile(`order\s*flow|orderflow|scalping|\d{1,2}c\b|last\s*\d+\s*(?:sec|second)`)

	binaryKeywordRe = regexp.MustCompile(`polymarket|15m|binary|yes/no|up\s*side|down\s*side|long/short`)
	timeWindowRe    = regexp.MustCompile(`last\s*(\d+)\s*(?:seconds|second|sec)\b`)
	centsRe         = regexp.MustCompile(`(\d{1,2})\s*(?:¢|c\b|cents?\b)`)
	decimalRe       = regexp.MustCompile(`\b0\.(\d{1,2})\b`)
	whicheverRe     = regexp.MustCompile(`whichever(?:\s+side)?`)
	upSideRe        = regexp.MustCompile(`\bup\b|\blong\b|\byes\b`)
	downSideRe      = regexp.MustCompile(`\bdown\b|\bshort\b|\bno\b`)
	underlyingRe    = regexp.MustCompile(`\b(btc|bitcoin|eth|ethereum|sol|solana)\b`)

	rsiRe       = regexp.MustCompile(`rsi\s*(\d+)\D*?(\d+)`)
	maRe        = regexp.MustCompile(`(\d+)\s*(?:günlük|gün|day|period)`)
	macdRe      = regexp.MustCompile(`macd`)
	bollingerRe = regexp.MustCompile(`bollinger|\bbb\b|bands`)
	breakoutRe  = regexp.MustCompile(`breakout|break\s*out`)
	supportRe   = regexp.MustCompile(`support|resistance|\bsr\b`)
	stopLossRe  = regexp.MustCompile(`(\d+)%?\s*stop\s*loss`)
	takeProfRe  = regexp.MustCompile(`(\d+)%?\s*take\s*profit`)
	timeframeRe = regexp.MustCompile(`(\d+)([smh])\s*(?:market|timeframe|tf)`)
)

// ParseStrategy converts a free-text strategy description into structured
// parameters. It never fails: unmatched text yields empty condition lists
// and the caller falls back to a generic mean-reversion simulation.
//
// Binary-market detection runs first. When a binary keyword matches and a
// time-window or price-threshold sub-pattern is also present, parsing
// returns immediately without running the traditional detectors: a binary
// strategy is never additionally read as an indicator strategy.
func ParseStrategy(description string) StrategyParams {
	lower := strings.ToLower(description)
	params := StrategyParams{
		Indicators:         []Indicator{},
		EntryConditions:    []Condition{},
		ExitConditions:     []Condition{},
		RecognizedPatterns: []string{},
		Unrecognized:       []UnrecognizedPattern{},
	}

	detectOrderFlow(lower, &params)

	if detectBinaryMarket(lower, &params) {
		return params
	}

	detectRSI(lower, &params)
	detectMovingAverage(lower, &params)
	detectMACD(lower, &params)
	detectBollinger(lower, &params)
	detectBreakout(lower, &params)
	detectSupportResistance(lower, &params)
	detectStopLoss(lower, &params)
	detectTakeProfit(lower, &params)
	detectTimeframe(lower, &params)

	return params
}

// detectOrderFlow flags order-book-level strategy classes. The flag is kept
// even when sub-components (time window, price threshold) parse on their
// own: downstream needs the warning that OHLCV data cannot reproduce them.
func detectOrderFlow(text string, params *StrategyParams) {
	if !orderFlowRe.MatchString(text) {
		return
	}
	params.Unrecognized = append(params.Unrecognized, UnrecognizedPattern{
		Pattern:    "Order_Flow_Scalping",
		Reason:     "Advanced order flow strategies require CVD/order book data not available in standard OHLCV",
		Confidence: 70,
	})
}

// detectBinaryMarket returns true when parsing should short-circuit: a
// binary keyword matched AND at least one of the time-window /
// price-threshold sub-patterns was found.
func detectBinaryMarket(text string, params *StrategyParams) bool {
	if !binaryKeywordRe.MatchString(text) {
		return false
	}
	params.IsBinaryMarket = true

	binary := &BinaryParams{}
	found := false

	if m := underlyingRe.FindStringSubmatch(text); m != nil {
		binary.Underlying = normalizeUnderlying(m[1])
	}

	if m := timeWindowRe.FindStringSubmatch(text); m != nil {
		seconds, _ := strconv.Atoi(m[1])
		binary.TimeWindowSeconds = seconds
		params.EntryConditions = append(params.EntryConditions, Condition{
			Kind:       CondTimeWindow,
			Comparator: "within_last",
			Value:      float64(seconds),
		})
		params.RecognizedPatterns = append(params.RecognizedPatterns, "Time_Window")
		found = true
	}

	if threshold, ok := parsePriceThreshold(text); ok {
		binary.PriceThreshold = threshold
		params.EntryConditions = append(params.EntryConditions, Condition{
			Kind:       CondPriceThreshold,
			Comparator: ">=",
			Value:      threshold,
		})
		params.RecognizedPatterns = append(params.RecognizedPatterns, "Price_Threshold")
		found = true
	}

	if side, ok := parseSideSelection(text); ok {
		binary.Side = side
		params.EntryConditions = append(params.EntryConditions, Condition{
			Kind:       CondSideSelect,
			Comparator: string(side),
		})
		params.RecognizedPatterns = append(params.RecognizedPatterns, "Side_Selection")
	}

	if !found {
		// Binary keyword with no usable sub-pattern: the flag stays set but
		// the traditional detectors still run and simulation falls back to
		// the generic path.
		params.Binary = nil
		return false
	}

	params.Binary = binary
	return true
}

// parsePriceThreshold extracts a [0,1] entry price. A 1-2 digit number
// suffixed c/cent/¢ is a cents quote; a bare 0.NN decimal is already a
// fraction. Anything above 1 is assumed to be cents and divided by 100.
func parsePriceThreshold(text string) (float64, bool) {
	if m := centsRe.FindStringSubmatch(text); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		if v > 1 {
			v /= 100
		}
		return v, true
	}
	if m := decimalRe.FindStringSubmatch(text); m != nil {
		v, _ := strconv.ParseFloat("0."+m[1], 64)
		return v, true
	}
	return 0, false
}

// parseSideSelection resolves the traded side. "whichever" beats the
// directional keywords. When both directional groups match without
// "whichever" the input is ambiguous and no side condition is emitted.
func parseSideSelection(text string) (SideMode, bool) {
	if whicheverRe.MatchString(text) {
		return SideWhichever, true
	}
	up := upSideRe.MatchString(text)
	down := downSideRe.MatchString(text)
	switch {
	case up && !down:
		return SideUpOnly, true
	case down && !up:
		return SideDownOnly, true
	}
	return "", false
}

func normalizeUnderlying(s string) string {
	switch s {
	case "bitcoin":
		return "BTC"
	case "ethereum":
		return "ETH"
	case "solana":
		return "SOL"
	}
	return strings.ToUpper(s)
}

// detectRSI matches threshold pairs like "RSI 30'da al, 70'te sat".
func detectRSI(text string, params *StrategyParams) {
	m := rsiRe.FindStringSubmatch(text)
	if m == nil {
		return
	}
	entry, _ := strconv.ParseFloat(m[1], 64)
	exit, _ := strconv.ParseFloat(m[2], 64)

	params.Indicators = append(params.Indicators, Indicator{Type: IndicatorRSI, Period: 14})
	params.EntryConditions = append(params.EntryConditions, Condition{Kind: CondRSIThreshold, Comparator: "<", Value: entry})
	params.ExitConditions = append(params.ExitConditions, Condition{Kind: CondRSIThreshold, Comparator: ">", Value: exit})
	params.RecognizedPatterns = append(params.RecognizedPatterns, "RSI_Mean_Reversion")
}

func detectMovingAverage(text string, params *StrategyParams) {
	m := maRe.FindStringSubmatch(text)
	if m == nil {
		return
	}
	period, _ := strconv.Atoi(m[1])

	params.Indicators = append(params.Indicators, Indicator{Type: IndicatorMA, Period: period})
	params.EntryConditions = append(params.EntryConditions, Condition{Kind: CondMACross, Comparator: "cross_above"})
	params.ExitConditions = append(params.ExitConditions, Condition{Kind: CondMACross, Comparator: "cross_below"})
	params.RecognizedPatterns = append(params.RecognizedPatterns, "MA_Crossover")
}

func detectMACD(text string, params *StrategyParams) {
	if !macdRe.MatchString(text) {
		return
	}
	params.Indicators = append(params.Indicators, Indicator{Type: IndicatorMACD})
	params.EntryConditions = append(params.EntryConditions, Condition{Kind: CondMACDCross, Comparator: "bullish_cross"})
	params.ExitConditions = append(params.ExitConditions, Condition{Kind: CondMACDCross, Comparator: "bearish_cross"})
	params.RecognizedPatterns = append(params.RecognizedPatterns, "MACD")
}

func detectBollinger(text string, params *StrategyParams) {
	if !bollingerRe.MatchString(text) {
		return
	}
	params.Indicators = append(params.Indicators, Indicator{Type: IndicatorBollinger})
	params.EntryConditions = append(params.EntryConditions, Condition{Kind: CondBollingerTouch, Comparator: "touch_lower"})
	params.ExitConditions = append(params.ExitConditions, Condition{Kind: CondBollingerTouch, Comparator: "touch_upper"})
	params.RecognizedPatterns = append(params.RecognizedPatterns, "Bollinger_Bands")
}

func detectBreakout(text string, params *StrategyParams) {
	if !breakoutRe.MatchString(text) {
		return
	}
	params.EntryConditions = append(params.EntryConditions, Condition{Kind: CondBreakout, Comparator: "breakout_above"})
	params.RecognizedPatterns = append(params.RecognizedPatterns, "Breakout")
}

func detectSupportResistance(text string, params *StrategyParams) {
	if !supportRe.MatchString(text) {
		return
	}
	// Tag only. Support/resistance mentions carry no simulatable condition.
	params.RecognizedPatterns = append(params.RecognizedPatterns, "Support_Resistance")
}

func detectStopLoss(text string, params *StrategyParams) {
	m := stopLossRe.FindStringSubmatch(text)
	if m == nil {
		return
	}
	v, _ := strconv.ParseFloat(m[1], 64)
	params.StopLoss = &v
	params.RecognizedPatterns = append(params.RecognizedPatterns, "Stop_Loss")
}

func detectTakeProfit(text string, params *StrategyParams) {
	m := takeProfRe.FindStringSubmatch(text)
	if m == nil {
		return
	}
	v, _ := strconv.ParseFloat(m[1], 64)
	params.TakeProfit = &v
	params.RecognizedPatterns = append(params.RecognizedPatterns, "Take_Profit")
}

func detectTimeframe(text string, params *StrategyParams) {
	m := timeframeRe.FindStringSubmatch(text)
	if m == nil {
		return
	}
	params.Timeframe = m[1] + m[2]
	params.RecognizedPatterns = append(params.RecognizedPatterns, "Timeframe_Specification")
}
