package internal

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	datafeed "github.com/0xanrelins/strategy-demystify/Internal/database"
	"github.com/0xanrelins/strategy-demystify/Internal/marketdata"
	"github.com/0xanrelins/strategy-demystify/Internal/strategy/backtest"
	"github.com/0xanrelins/strategy-demystify/Internal/strategy/parser"
	"github.com/0xanrelins/strategy-demystify/Internal/utils/analyzer"
	"github.com/0xanrelins/strategy-demystify/Internal/utils/config"
	"github.com/0xanrelins/strategy-demystify/Internal/utils/scanner"
	"github.com/0xanrelins/strategy-demystify/Internal/utils/scoring"
)

type API struct {
	Candles    *marketdata.CandleClient
	Snapshots  *marketdata.SnapshotClient
	Store      *datafeed.Store
	Config     *config.Config
	JWTManager *JWTManager
}

type backtestRequest struct {
	Strategy  string `json:"strategy"`
	Market    string `json:"market"`
	Timeframe string `json:"timeframe"`
	Period    int    `json:"period"`
}

// HandleBacktest runs the full pipeline: parse the description, fetch the
// matching historical series, simulate and score.
func (api *API) HandleBacktest(w http.ResponseWriter, r *http.Request) {
	var req backtestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Strategy == "" {
		WriteError(w, http.StatusBadRequest, "Strategy description is required")
		return
	}
	if req.Market == "" {
		req.Market = api.Config.Defaults.Market
	}
	if req.Timeframe == "" {
		req.Timeframe = api.Config.Defaults.Timeframe
	}
	if req.Period <= 0 {
		req.Period = api.Config.Defaults.PeriodDays
	}

	params := parser.ParseStrategy(req.Strategy)

	var result backtest.Result
	if backtest.UseBinaryPath(params) {
		if api.Snapshots == nil {
			WriteError(w, http.StatusInternalServerError, "Snapshot provider not configured")
			return
		}
		snapshots, err := api.Snapshots.FetchSnapshots(r.Context(), req.Timeframe, 10, 500)
		if err != nil {
			log.Printf("Snapshot fetch failed: %v", err)
			WriteError(w, http.StatusBadGateway, "Failed to fetch market snapshots")
			return
		}
		result = backtest.RunBinary(snapshots, params)
	} else {
		if api.Candles == nil {
			WriteError(w, http.StatusInternalServerError, "Candle provider not configured")
			return
		}
		bars, err := api.Candles.FetchCryptoBars(r.Context(), req.Market, req.Timeframe, req.Period)
		if err != nil {
			log.Printf("Candle fetch failed: %v", err)
			WriteError(w, http.StatusBadGateway, "Failed to fetch historical data")
			return
		}
		result = backtest.Run(bars, params)
	}

	metrics := result.Metrics.Metrics()
	score := scoring.CalculateTotalScore(metrics, result.Metrics.TotalTrades)

	if api.Store != nil {
		_, err := api.Store.SaveAnalysis(r.Context(), datafeed.AnalysisRecord{
			Strategy:    req.Strategy,
			Market:      req.Market,
			Timeframe:   req.Timeframe,
			TotalTrades: result.Metrics.TotalTrades,
			TotalScore:  score.Breakdown.Total,
			Category:    string(score.Category),
		})
		if err != nil {
			log.Printf("Failed to save analysis history: %v", err)
		}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"strategy": map[string]interface{}{
			"description":           req.Strategy,
			"parsed":                params,
			"recognized_patterns":   params.RecognizedPatterns,
			"unrecognized_patterns": params.Unrecognized,
		},
		"backtest": map[string]interface{}{
			"market":          req.Market,
			"timeframe":       req.Timeframe,
			"period":          req.Period,
			"trades":          result.Metrics.TotalTrades,
			"trade_log":       result.Trades,
			"start_date":      result.Metrics.StartDate,
			"end_date":        result.Metrics.EndDate,
			"initial_capital": result.Metrics.InitialCapital,
			"final_capital":   result.Metrics.FinalCapital,
			"total_return":    result.Metrics.TotalReturn,
		},
		"metrics":     metrics,
		"trade_stats": analyzer.Summary(analyzer.AnalyzeTrades(result.Trades)),
		"score":       score,
		"warnings":    result.Warnings,
		"timestamp":   time.Now().Unix(),
	})
}

type scanRequest struct {
	Strategy  string   `json:"strategy"`
	Markets   []string `json:"markets"`
	Timeframe string   `json:"timeframe"`
	Period    int      `json:"period"`
}

// HandleScan ranks one strategy description across several candle markets.
func (api *API) HandleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Strategy == "" {
		WriteError(w, http.StatusBadRequest, "Strategy description is required")
		return
	}
	if len(req.Markets) == 0 {
		WriteError(w, http.StatusBadRequest, "At least one market is required")
		return
	}
	if req.Timeframe == "" {
		req.Timeframe = api.Config.Defaults.Timeframe
	}
	if req.Period <= 0 {
		req.Period = api.Config.Defaults.PeriodDays
	}
	if api.Candles == nil {
		WriteError(w, http.StatusInternalServerError, "Candle provider not configured")
		return
	}

	s := scanner.NewScanner(api.Candles)
	results, err := s.ScanMarkets(r.Context(), req.Markets, req.Strategy, req.Timeframe, req.Period)
	if err != nil {
		log.Printf("Scan failed: %v", err)
		WriteError(w, http.StatusBadGateway, "Scan failed")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"strategy":  req.Strategy,
		"timeframe": req.Timeframe,
		"period":    req.Period,
		"results":   results,
		"timestamp": time.Now().Unix(),
	})
}

func (api *API) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if api.Store == nil {
		WriteError(w, http.StatusServiceUnavailable, "History store not configured")
		return
	}

	limit := api.Config.History.Limit
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	records, err := api.Store.ListHistory(r.Context(), limit)
	if err != nil {
		log.Printf("Error fetching history: %v", err)
		WriteError(w, http.StatusInternalServerError, "Failed to fetch history")
		return
	}

	if claims := ClaimsFromContext(r.Context()); claims != nil {
		log.Printf("History requested by %s (%d records)", claims.UserID, len(records))
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"history": records,
		"count":   len(records),
	})
}

func (api *API) HandleGenerateToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
		Email  string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	token, err := api.JWTManager.GenerateToken(req.UserID, req.Email, 24)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
	})
}
