package scoring

import (
	"fmt"
	"math"

	"github.com/0xanrelins/strategy-demystify/Internal/types"
)

// ScoreBreakdown holds the five 0-20 sub-scores plus adjustments. Total is
// clamped to [0,100]. The breakdown is immutable once computed.
type ScoreBreakdown struct {
	ProfitFactor float64 `json:"profit_factor"`
	MaxDrawdown  float64 `json:"max_drawdown"`
	SharpeRatio  float64 `json:"sharpe_ratio"`
	CAGR         float64 `json:"cagr"`
	WinRate      float64 `json:"win_rate"`
	Bonus        float64 `json:"bonus"`
	Penalty      float64 `json:"penalty"`
	Total        float64 `json:"total"`
}

type RedFlagType string

const (
	FlagOverfitting   RedFlagType = "overfitting"
	FlagExcessiveRisk RedFlagType = "excessive_risk"
	FlagPoorReturns   RedFlagType = "poor_returns"
	FlagSmallSample   RedFlagType = "small_sample"
	FlagHighVariance  RedFlagType = "high_variance"
)

type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// RedFlag is an automated heuristic warning that a metric combination
// suggests overfitting, excessive risk or an unreliable sample.
type RedFlag struct {
	Type      RedFlagType `json:"type"`
	Severity  Severity    `json:"severity"`
	Message   string      `json:"message"`
	Metric    string      `json:"metric"`
	Value     float64     `json:"value"`
	Threshold float64     `json:"threshold"`
}

// ScoreResult is the complete scoring verdict for one backtest.
type ScoreResult struct {
	Breakdown      ScoreBreakdown `json:"breakdown"`
	Category       ScoreCategory  `json:"category"`
	Rating         ScoreRating    `json:"rating"`
	Recommendation string         `json:"recommendation"`
	RedFlags       []RedFlag      `json:"red_flags"`
}

// Individual metric scoring curves, 0-20 points each. The breakpoints are
// fixed: the distribution of the total score depends on these exact
// thresholds.

func CalculatePFScore(profitFactor float64) float64 {
	if profitFactor >= 2.5 {
		return 20
	}
	if profitFactor >= 2.0 {
		return 16
	}
	if profitFactor >= 1.5 {
		return 12
	}
	if profitFactor >= 1.2 {
		return 8
	}
	return math.Max(0, (profitFactor-1.0)*20) // linear 1.0 -> 1.2
}

// CalculateMDDScore is inverted: lower drawdown scores higher.
func CalculateMDDScore(maxDrawdown float64) float64 {
	if maxDrawdown <= 5 {
		return 20
	}
	if maxDrawdown <= 10 {
		return 16
	}
	if maxDrawdown <= 15 {
		return 12
	}
	if maxDrawdown <= 25 {
		return 8
	}
	if maxDrawdown <= 35 {
		return 4
	}
	// tail continues down from the 35% breakpoint so a deeper drawdown
	// can never out-score a shallower one
	return math.Max(0, 4-(maxDrawdown-35)*0.5)
}

func CalculateSharpeScore(sharpeRatio float64) float64 {
	if sharpeRatio >= 2.0 {
		return 20
	}
	if sharpeRatio >= 1.5 {
		return 16
	}
	if sharpeRatio >= 1.0 {
		return 12
	}
	if sharpeRatio >= 0.5 {
		return 8
	}
	return math.Max(0, sharpeRatio*16) // linear 0 -> 0.5
}

func CalculateCAGRScore(cagr float64) float64 {
	if cagr >= 50 {
		return 20
	}
	if cagr >= 30 {
		return 18
	}
	if cagr >= 25 {
		return 16
	}
	if cagr >= 20 {
		return 14
	}
	if cagr >= 15 {
		return 12
	}
	if cagr >= 10 {
		return 8
	}
	if cagr >= 5 {
		return 4
	}
	return math.Max(0, cagr*0.8)
}

func CalculateWinRateScore(winRate float64) float64 {
	if winRate >= 65 {
		return 20
	}
	if winRate >= 60 {
		return 16
	}
	if winRate >= 55 {
		return 12
	}
	if winRate >= 50 {
		return 8
	}
	if winRate >= 45 {
		return 4
	}
	return math.Max(0, winRate*0.09)
}

// DetectRedFlags runs the detection rules in their fixed order. Flags are
// informational: they do not move the score beyond what bonus/penalty
// already capture.
func DetectRedFlags(metrics types.MetricValues, totalTrades int) []RedFlag {
	flags := []RedFlag{}

	if totalTrades < 30 {
		flags = append(flags, RedFlag{
			Type:      FlagSmallSample,
			Severity:  SeverityWarning,
			Message:   fmt.Sprintf("Only %d trades - insufficient data for reliable analysis", totalTrades),
			Metric:    "totalTrades",
			Value:     float64(totalTrades),
			Threshold: 30,
		})
	}

	if metrics.WinRate > 75 {
		flags = append(flags, RedFlag{
			Type:      FlagOverfitting,
			Severity:  SeverityWarning,
			Message:   "Win rate >75% suggests potential overfitting",
			Metric:    "winRate",
			Value:     metrics.WinRate,
			Threshold: 75,
		})
	}

	if metrics.ProfitFactor > 3.5 {
		flags = append(flags, RedFlag{
			Type:      FlagOverfitting,
			Severity:  SeverityWarning,
			Message:   "Profit Factor >3.5 may indicate overfitting",
			Metric:    "profitFactor",
			Value:     metrics.ProfitFactor,
			Threshold: 3.5,
		})
	}

	if metrics.MaxDrawdown > 30 {
		flags = append(flags, RedFlag{
			Type:      FlagExcessiveRisk,
			Severity:  SeverityCritical,
			Message:   "Max drawdown >30% indicates excessive risk exposure",
			Metric:    "maxDrawdown",
			Value:     metrics.MaxDrawdown,
			Threshold: 30,
		})
	}

	if metrics.SharpeRatio < 0.5 {
		flags = append(flags, RedFlag{
			Type:      FlagExcessiveRisk,
			Severity:  SeverityCritical,
			Message:   "Sharpe ratio <0.5 suggests poor risk-adjusted returns",
			Metric:    "sharpeRatio",
			Value:     metrics.SharpeRatio,
			Threshold: 0.5,
		})
	}

	if metrics.CAGR < 10 && metrics.MaxDrawdown > 20 {
		flags = append(flags, RedFlag{
			Type:      FlagPoorReturns,
			Severity:  SeverityCritical,
			Message:   "CAGR <10% with MDD >20% indicates poor risk/reward",
			Metric:    "cagr",
			Value:     metrics.CAGR,
			Threshold: 10,
		})
	}

	if metrics.WinRate < 45 && metrics.ProfitFactor > 2.0 {
		flags = append(flags, RedFlag{
			Type:      FlagHighVariance,
			Severity:  SeverityWarning,
			Message:   "Low win rate with high profit factor suggests inconsistent performance",
			Metric:    "winRate",
			Value:     metrics.WinRate,
			Threshold: 45,
		})
	}

	return flags
}

// CalculateBonus sums the three independent bonus rules, capped at 10.
func CalculateBonus(metrics types.MetricValues) float64 {
	bonus := 0.0

	// Low risk + high return
	if metrics.MaxDrawdown < 10 && metrics.CAGR > 25 {
		bonus += 5
	}

	// Consistent excellence across every sub-score
	allMetricsGood := CalculatePFScore(metrics.ProfitFactor) >= 14 &&
		CalculateMDDScore(metrics.MaxDrawdown) >= 14 &&
		CalculateSharpeScore(metrics.SharpeRatio) >= 14 &&
		CalculateCAGRScore(metrics.CAGR) >= 14 &&
		CalculateWinRateScore(metrics.WinRate) >= 14
	if allMetricsGood {
		bonus += 5
	}

	// Risk management
	if metrics.SharpeRatio > 2.0 && metrics.MaxDrawdown < 15 {
		bonus += 3
	}

	return math.Min(10, bonus)
}

// CalculatePenalty sums the three independent penalty rules, capped at 10.
func CalculatePenalty(metrics types.MetricValues) float64 {
	penalty := 0.0

	// Overfitting suspicion
	if metrics.WinRate > 75 || metrics.ProfitFactor > 3.5 {
		penalty += 5
	}

	// Excessive risk
	if metrics.MaxDrawdown > 30 || metrics.SharpeRatio < 0.5 {
		penalty += 5
	}

	// Poor risk/reward
	if metrics.CAGR < 10 && metrics.MaxDrawdown > 20 {
		penalty += 3
	}

	return math.Min(10, penalty)
}

// CalculateTotalScore maps backtest metrics to the 0-100 composite verdict.
func CalculateTotalScore(metrics types.MetricValues, totalTrades int) ScoreResult {
	pfScore := CalculatePFScore(metrics.ProfitFactor)
	mddScore := CalculateMDDScore(metrics.MaxDrawdown)
	sharpeScore := CalculateSharpeScore(metrics.SharpeRatio)
	cagrScore := CalculateCAGRScore(metrics.CAGR)
	winRateScore := CalculateWinRateScore(metrics.WinRate)

	baseTotal := pfScore + mddScore + sharpeScore + cagrScore + winRateScore

	bonus := CalculateBonus(metrics)
	penalty := CalculatePenalty(metrics)

	total := math.Min(100, math.Max(0, baseTotal+bonus-penalty))

	rating := GetScoreCategory(total)

	return ScoreResult{
		Breakdown: ScoreBreakdown{
			ProfitFactor: pfScore,
			MaxDrawdown:  mddScore,
			SharpeRatio:  sharpeScore,
			CAGR:         cagrScore,
			WinRate:      winRateScore,
			Bonus:        bonus,
			Penalty:      penalty,
			Total:        total,
		},
		Category:       rating.Category,
		Rating:         rating,
		Recommendation: GetRecommendation(rating.Category),
		RedFlags:       DetectRedFlags(metrics, totalTrades),
	}
}
