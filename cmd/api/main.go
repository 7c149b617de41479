package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	datafeed "github.com/0xanrelins/strategy-demystify/Internal/database"
	"github.com/0xanrelins/strategy-demystify/Internal/marketdata"
	"github.com/0xanrelins/strategy-demystify/Internal/utils/config"
	"github.com/0xanrelins/strategy-demystify/cmd/api/internal"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../../.env")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// All environment access happens here; the evaluation core and the
	// data clients only see explicit values.
	alpacaKey := os.Getenv("ALPACA_API_KEY")
	alpacaSecret := os.Getenv("ALPACA_API_SECRET")
	polymarketKey := os.Getenv("POLYBACKTEST_API_KEY")
	jwtSecret := os.Getenv("JWT_SECRET_KEY")

	var candles *marketdata.CandleClient
	if alpacaKey != "" && alpacaSecret != "" {
		candles = marketdata.NewCandleClient(alpacaKey, alpacaSecret)
	} else {
		log.Println("Warning: Alpaca API keys not configured. Traditional backtests will be unavailable.")
	}

	var snapshots *marketdata.SnapshotClient
	if polymarketKey != "" {
		snapshots = marketdata.NewSnapshotClient(cfg.Providers.PolymarketURL, polymarketKey)
	} else {
		log.Println("Warning: PolyBackTest API key not configured. Binary-market backtests will be unavailable.")
	}

	var store *datafeed.Store
	switch {
	case !cfg.History.Enabled:
		log.Println("Analysis history disabled in config. Results will not be persisted.")
	case os.Getenv("DB_PASSWORD") != "":
		store, err = datafeed.OpenStore(datafeed.DatabaseConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   getEnvOrDefault("DB_NAME", "strategydemystify"),
			SSLMode:  getEnvOrDefault("DB_SSLMODE", "disable"),
		})
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer store.Close()
		log.Println("Analysis history store connected")
	default:
		log.Println("Warning: DB_PASSWORD not set. Analysis history will not be persisted.")
	}

	jwtManager := internal.NewJWTManager(jwtSecret)

	apiServer := &internal.API{
		Candles:    candles,
		Snapshots:  snapshots,
		Store:      store,
		Config:     cfg,
		JWTManager: jwtManager,
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(internal.CorsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    "healthy",
		})
	})

	// Public routes
	r.Post("/api/token", apiServer.HandleGenerateToken)
	r.Post("/api/backtest", apiServer.HandleBacktest)
	r.Post("/api/scan", apiServer.HandleScan)

	// History requires a token
	r.Group(func(r chi.Router) {
		r.Use(internal.JWTAuthMiddleware(jwtManager))
		r.Get("/api/history", apiServer.HandleHistory)
	})

	log.Printf("Starting API server on %s", cfg.Server.Addr)
	if err := http.ListenAndServe(cfg.Server.Addr, r); err != nil {
		log.Fatal(err)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
