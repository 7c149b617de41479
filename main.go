package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/0xanrelins/strategy-demystify/Internal/marketdata"
	"github.com/0xanrelins/strategy-demystify/Internal/strategy/backtest"
	"github.com/0xanrelins/strategy-demystify/Internal/strategy/parser"
	"github.com/0xanrelins/strategy-demystify/Internal/types"
	"github.com/0xanrelins/strategy-demystify/Internal/utils/analyzer"
	"github.com/0xanrelins/strategy-demystify/Internal/utils/config"
	"github.com/0xanrelins/strategy-demystify/Internal/utils/formatting"
	"github.com/0xanrelins/strategy-demystify/Internal/utils/scanner"
	"github.com/0xanrelins/strategy-demystify/Internal/utils/scoring"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	market := flag.String("market", cfg.Defaults.Market, "market symbol for historical data")
	timeframe := flag.String("timeframe", cfg.Defaults.Timeframe, "bar timeframe (5m/15m/1h/4h/1d)")
	period := flag.Int("period", cfg.Defaults.PeriodDays, "days of history to backtest")
	start := flag.String("start", "", "backtest start date (overrides -period, e.g. 2026-01-15)")
	scanList := flag.String("scan", "", "comma-separated markets to rank against each other")
	demo := flag.Bool("demo", false, "backtest against deterministic synthetic data, no API keys needed")
	configure := flag.Bool("configure", false, "interactively edit and save the configuration")
	flag.Parse()

	if *configure {
		if err := config.ConfigureInteractive(cfg); err != nil {
			log.Fatalf("Configuration failed: %v", err)
		}
		return
	}

	description := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if description == "" {
		fmt.Println("Usage: strategy-demystify [flags] <strategy description>")
		fmt.Println(`Example: strategy-demystify "RSI 30'da al, 70'te sat, 2% stop loss"`)
		os.Exit(1)
	}

	periodDays := *period
	if *start != "" {
		startDate := formatting.ParseDate(*start)
		if startDate.IsZero() {
			log.Fatalf("Unrecognized start date %q", *start)
		}
		periodDays = int(time.Since(startDate).Hours() / 24)
		if periodDays < 1 {
			log.Fatalf("Start date %q is not in the past", *start)
		}
	}

	params := parser.ParseStrategy(description)

	ctx := context.Background()

	if *scanList != "" {
		runScan(ctx, strings.Split(*scanList, ","), description, *timeframe, periodDays)
		return
	}

	var result backtest.Result

	if *demo {
		if backtest.UseBinaryPath(params) {
			log.Fatal("Demo data covers candle backtests only; binary-market strategies need live snapshots")
		}
		result = backtest.Run(syntheticBars(periodDays*24), params)
	} else if backtest.UseBinaryPath(params) {
		apiKey := os.Getenv("POLYBACKTEST_API_KEY")
		if apiKey == "" {
			log.Fatal("POLYBACKTEST_API_KEY not set; binary-market backtests need snapshot data")
		}
		client := marketdata.NewSnapshotClient(cfg.Providers.PolymarketURL, apiKey)
		snapshots, err := client.FetchSnapshots(ctx, *timeframe, 10, 500)
		if err != nil {
			log.Fatalf("Failed to fetch market snapshots: %v", err)
		}
		result = backtest.RunBinary(snapshots, params)
	} else {
		client := newCandleClient()
		bars, err := client.FetchCryptoBars(ctx, *market, *timeframe, periodDays)
		if err != nil {
			log.Fatalf("Failed to fetch historical data: %v", err)
		}
		result = backtest.Run(bars, params)
	}

	metrics := result.Metrics.Metrics()
	score := scoring.CalculateTotalScore(metrics, result.Metrics.TotalTrades)

	printReport(description, params, result, metrics, score)
}

// syntheticBars generates a reproducible hourly series: a slow uptrend with
// a cyclical swing wide enough to trip the RSI and breakout paths.
func syntheticBars(count int) []types.Bar {
	if count < 60 {
		count = 60
	}
	now := time.Now().Truncate(time.Hour)
	start := now.Add(-time.Duration(count) * time.Hour)

	bars := make([]types.Bar, count)
	for i := range bars {
		price := 100 + 8*math.Sin(float64(i)/12) + float64(i)*0.01
		bars[i] = types.Bar{
			Timestamp: start.Add(time.Duration(i) * time.Hour).Unix(),
			Open:      price,
			High:      price + 1,
			Low:       price - 1,
			Close:     price,
			Volume:    1000 + 100*math.Abs(math.Sin(float64(i)/5)),
		}
	}
	return bars
}

func newCandleClient() *marketdata.CandleClient {
	apiKey := os.Getenv("ALPACA_API_KEY")
	apiSecret := os.Getenv("ALPACA_API_SECRET")
	if apiKey == "" || apiSecret == "" {
		log.Fatal("ALPACA_API_KEY / ALPACA_API_SECRET not set; cannot fetch historical bars")
	}
	return marketdata.NewCandleClient(apiKey, apiSecret)
}

func runScan(ctx context.Context, markets []string, description, timeframe string, periodDays int) {
	for i := range markets {
		markets[i] = strings.TrimSpace(markets[i])
	}

	s := scanner.NewScanner(newCandleClient())
	results, err := s.ScanMarkets(ctx, markets, description, timeframe, periodDays)
	if err != nil {
		log.Fatalf("Scan failed: %v", err)
	}

	sep := formatting.Separator(60)
	fmt.Println(sep)
	fmt.Println("🔍 Market Scan")
	fmt.Println(sep)
	fmt.Printf("Strategy: %s\n\n", description)

	for i, r := range results {
		fmt.Printf("%2d. %-10s %5.0f/100 %s %s  (trades: %d, return: %s)\n",
			i+1, r.Market, r.Score, r.Category.Symbol, r.Category.Label,
			r.Metrics.TotalTrades, formatting.Percent(r.Metrics.TotalReturn))
	}
	fmt.Println(sep)
}

func printReport(description string, params parser.StrategyParams, result backtest.Result, metrics types.MetricValues, score scoring.ScoreResult) {
	sep := formatting.Separator(60)

	fmt.Println(sep)
	fmt.Println("📋 Strategy Analysis")
	fmt.Println(sep)
	fmt.Printf("Strategy: %s\n\n", description)

	if len(params.RecognizedPatterns) > 0 {
		fmt.Printf("Recognized patterns: %s\n", strings.Join(params.RecognizedPatterns, ", "))
	}
	for _, u := range params.Unrecognized {
		fmt.Printf("⚠️  Limited support: %s (%s)\n", u.Pattern, u.Reason)
	}

	fmt.Println()
	fmt.Println("📊 Backtest Results")
	fmt.Printf("   Period: %s -> %s\n", formatting.UnixDate(result.Metrics.StartDate), formatting.UnixDate(result.Metrics.EndDate))
	fmt.Printf("   Trades: %d (W: %d / L: %d)\n", result.Metrics.TotalTrades, result.Metrics.WinningTrades, result.Metrics.LosingTrades)
	fmt.Printf("   Capital: %.2f -> %.2f (%s)\n", result.Metrics.InitialCapital, result.Metrics.FinalCapital, formatting.Percent(result.Metrics.TotalReturn))
	fmt.Printf("   Profit Factor: %.2f | Max Drawdown: %.1f%% | Sharpe: %.2f\n", metrics.ProfitFactor, metrics.MaxDrawdown, metrics.SharpeRatio)
	fmt.Printf("   CAGR: %.1f%% | Win Rate: %.1f%%\n", metrics.CAGR, metrics.WinRate)

	if stats := analyzer.AnalyzeTrades(result.Trades); result.Metrics.TotalTrades > 0 {
		fmt.Println()
		fmt.Println("🔬 Trade Log")
		fmt.Printf("   Avg return: %s (win %s / loss %s)\n",
			formatting.Percent(stats.AvgReturnPct), formatting.Percent(stats.AvgWinPct), formatting.Percent(stats.AvgLossPct))
		fmt.Printf("   Best: %s | Worst: %s | Avg hold: %s\n",
			formatting.Percent(stats.BestTradePct), formatting.Percent(stats.WorstTradePct), formatting.Duration(stats.AvgHoldSeconds))
		fmt.Printf("   Consistency: %s\n", analyzer.ConsistencyLabel(stats))
	}

	fmt.Println()
	fmt.Println("🏅 Score Breakdown (0-100)")
	fmt.Printf("   Profit Factor: %5.1f/20\n", score.Breakdown.ProfitFactor)
	fmt.Printf("   Max Drawdown:  %5.1f/20\n", score.Breakdown.MaxDrawdown)
	fmt.Printf("   Sharpe Ratio:  %5.1f/20\n", score.Breakdown.SharpeRatio)
	fmt.Printf("   CAGR:          %5.1f/20\n", score.Breakdown.CAGR)
	fmt.Printf("   Win Rate:      %5.1f/20\n", score.Breakdown.WinRate)
	fmt.Printf("   Bonus: +%.0f | Penalty: -%.0f\n", score.Breakdown.Bonus, score.Breakdown.Penalty)
	fmt.Printf("   TOTAL: %.0f/100  %s %s\n", score.Breakdown.Total, score.Rating.Symbol, score.Rating.Label)
	fmt.Printf("   Recommendation: %s\n", score.Recommendation)

	if len(score.RedFlags) > 0 {
		fmt.Println()
		fmt.Println("🚨 Red Flags")
		for _, f := range score.RedFlags {
			fmt.Printf("   [%s] %s\n", f.Severity, f.Message)
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Println()
		fmt.Println("⚠️  Warnings")
		for _, warning := range result.Warnings {
			fmt.Printf("   - %s\n", warning)
		}
	}
	fmt.Println(sep)
}
