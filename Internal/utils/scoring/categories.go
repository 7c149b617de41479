package scoring

type ScoreCategory string

const (
	CategoryExceptional ScoreCategory = "exceptional" // 90-100
	CategoryExcellent   ScoreCategory = "excellent"   // 75-89
	CategoryGood        ScoreCategory = "good"        // 60-74
	CategoryFair        ScoreCategory = "fair"        // 40-59
	CategoryPoor        ScoreCategory = "poor"        // 0-39
)

type ScoreRating struct {
	Category ScoreCategory `json:"category"`
	Label    string        `json:"label"`
	Symbol   string        `json:"symbol"`
	MinScore float64       `json:"min_score"`
	MaxScore float64       `json:"max_score"`
}

var ScoreCategories = map[ScoreCategory]ScoreRating{
	CategoryExceptional: {CategoryExceptional, "Exceptional", "🌟", 90, 100},
	CategoryExcellent:   {CategoryExcellent, "Excellent", "🏆", 75, 89},
	CategoryGood:        {CategoryGood, "Good", "✓", 60, 74},
	CategoryFair:        {CategoryFair, "Fair", "⚠", 40, 59},
	CategoryPoor:        {CategoryPoor, "Poor", "✕", 0, 39},
}

// GetScoreCategory maps a total score onto its fixed band. The boundaries
// drive the user-visible verdict and must not drift.
func GetScoreCategory(totalScore float64) ScoreRating {
	switch {
	case totalScore >= 90:
		return ScoreCategories[CategoryExceptional]
	case totalScore >= 75:
		return ScoreCategories[CategoryExcellent]
	case totalScore >= 60:
		return ScoreCategories[CategoryGood]
	case totalScore >= 40:
		return ScoreCategories[CategoryFair]
	}
	return ScoreCategories[CategoryPoor]
}

func GetRecommendation(category ScoreCategory) string {
	switch category {
	case CategoryExceptional:
		return "Deploy with confidence after validation"
	case CategoryExcellent:
		return "Deploy after thorough validation"
	case CategoryGood:
		return "Deploy with caution and proper risk management"
	case CategoryFair:
		return "Do NOT deploy - requires significant revision"
	case CategoryPoor:
		return "Reject - strategy is fundamentally flawed"
	}
	return "Unknown category"
}
