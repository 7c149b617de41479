package datafeed

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Store persists analysis history. The evaluation core never touches it;
// retention is purely an orchestration concern.
type Store struct {
	db *sql.DB
}

func OpenStore(config DatabaseConfig) (*Store, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initializeSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// initializeSchema creates the history table if it doesn't exist
func (s *Store) initializeSchema() error {
	schemaSQL := `
	CREATE TABLE IF NOT EXISTS analysis_history (
		id SERIAL PRIMARY KEY,
		strategy TEXT NOT NULL,
		market TEXT NOT NULL,
		timeframe TEXT NOT NULL,
		total_trades INTEGER NOT NULL,
		total_score REAL NOT NULL,
		category TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_analysis_history_created ON analysis_history(created_at);
	`

	_, err := s.db.Exec(schemaSQL)
	return err
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
