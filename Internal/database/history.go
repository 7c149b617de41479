package datafeed

import (
	"context"
	"time"
)

// AnalysisRecord is one stored evaluation: the strategy text and its
// scored verdict.
type AnalysisRecord struct {
	ID          int64     `json:"id"`
	Strategy    string    `json:"strategy"`
	Market      string    `json:"market"`
	Timeframe   string    `json:"timeframe"`
	TotalTrades int       `json:"total_trades"`
	TotalScore  float64   `json:"total_score"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *Store) SaveAnalysis(ctx context.Context, rec AnalysisRecord) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO analysis_history (strategy, market, timeframe, total_trades, total_score, category)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		rec.Strategy, rec.Market, rec.Timeframe, rec.TotalTrades, rec.TotalScore, rec.Category,
	).Scan(&id)
	return id, err
}

// ListHistory returns the most recent analyses, newest first.
func (s *Store) ListHistory(ctx context.Context, limit int) ([]AnalysisRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, strategy, market, timeframe, total_trades, total_score, category, created_at
		 FROM analysis_history ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []AnalysisRecord
	for rows.Next() {
		var rec AnalysisRecord
		if err := rows.Scan(&rec.ID, &rec.Strategy, &rec.Market, &rec.Timeframe,
			&rec.TotalTrades, &rec.TotalScore, &rec.Category, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
