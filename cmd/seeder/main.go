// cmd/seeder/main.go
//
// Seeds the database with stores and an opening central stock ledger.
// By default a small built-in demo dataset is used; pass -data to load
// a JSON file with the same shape instead. Safe to re-run: stores and
// stock lines are upserted, and re-seeding the same data is a no-op
// for quantities in replace mode.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// SeedStore is one store to register.
type SeedStore struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Active bool      `json:"active"`
}

// SeedStockLine is one central stock line.
type SeedStockLine struct {
	Brand     string          `json:"brand"`
	Rating    string          `json:"rating"`
	Quantity  int             `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// SeedData is the full seed file shape.
type SeedData struct {
	Stores       []SeedStore     `json:"stores"`
	CentralStock []SeedStockLine `json:"central_stock"`
}

func demoData() SeedData {
	money := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	return SeedData{
		Stores: []SeedStore{
			{ID: uuid.MustParse("5f8f1f70-0000-4000-8000-000000000001"), Name: "Downtown", Active: true},
			{ID: uuid.MustParse("5f8f1f70-0000-4000-8000-000000000002"), Name: "Industrial Park", Active: true},
			{ID: uuid.MustParse("5f8f1f70-0000-4000-8000-000000000003"), Name: "Riverside", Active: false},
		},
		CentralStock: []SeedStockLine{
			{Brand: "Exide", Rating: "35Ah", Quantity: 120, UnitCost: money("2450.00"), UnitPrice: money("3200.00")},
			{Brand: "Exide", Rating: "150Ah", Quantity: 60, UnitCost: money("9800.00"), UnitPrice: money("12500.00")},
			{Brand: "Amaron", Rating: "35Ah", Quantity: 90, UnitCost: money("2600.00"), UnitPrice: money("3350.00")},
			{Brand: "Amaron", Rating: "100Ah", Quantity: 45, UnitCost: money("7200.00"), UnitPrice: money("9100.00")},
			{Brand: "Luminous", Rating: "150Ah", Quantity: 30, UnitCost: money("10400.00"), UnitPrice: money("13200.00")},
		},
	}
}

func main() {
	var (
		dataFile = flag.String("data", "", "JSON seed file (default: built-in demo data)")
		logLevel = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		dryRun   = flag.Bool("dry-run", false, "Preview changes without modifying database")
	)
	flag.Parse()

	var slogLevel slog.Level
	switch *logLevel {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel}))
	slog.SetDefault(logger)

	data := demoData()
	if *dataFile != "" {
		b, err := os.ReadFile(*dataFile)
		if err != nil {
			logger.Error("failed to read seed file", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := json.Unmarshal(b, &data); err != nil {
			logger.Error("failed to parse seed file", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("seed data loaded",
		slog.Int("stores", len(data.Stores)),
		slog.Int("central_lines", len(data.CentralStock)))

	if *dryRun {
		for _, s := range data.Stores {
			logger.Info("would seed store", slog.String("id", s.ID.String()), slog.String("name", s.Name))
		}
		for _, l := range data.CentralStock {
			logger.Info("would seed central stock",
				slog.String("brand", l.Brand),
				slog.String("rating", l.Rating),
				slog.Int("quantity", l.Quantity))
		}
		return
	}

	dbURL := fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		getEnv("DB_USER", "voltdepot"),
		getEnv("DB_PASSWORD", "voltdepot_dev_2026"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "battery_stock"),
		getEnv("DB_SSL_MODE", "disable"),
	)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := seed(ctx, pool, data, logger); err != nil {
		logger.Error("seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("seeding complete")
}

func seed(ctx context.Context, pool *pgxpool.Pool, data SeedData, logger *slog.Logger) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, s := range data.Stores {
		_, err := tx.Exec(ctx, `
			INSERT INTO stores (id, name, active)
			VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, active = EXCLUDED.active`,
			s.ID, s.Name, s.Active)
		if err != nil {
			return fmt.Errorf("failed to seed store %s: %w", s.Name, err)
		}
		logger.Debug("store seeded", slog.String("name", s.Name))
	}

	for _, l := range data.CentralStock {
		_, err := tx.Exec(ctx, `
			INSERT INTO stock_lines (store_id, brand, rating, quantity, unit_cost, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (store_id, brand, rating) DO UPDATE SET
				quantity   = EXCLUDED.quantity,
				unit_cost  = EXCLUDED.unit_cost,
				unit_price = EXCLUDED.unit_price`,
			uuid.Nil, l.Brand, l.Rating, l.Quantity, l.UnitCost, l.UnitPrice)
		if err != nil {
			return fmt.Errorf("failed to seed stock line %s %s: %w", l.Brand, l.Rating, err)
		}
		logger.Debug("central stock line seeded",
			slog.String("brand", l.Brand),
			slog.String("rating", l.Rating))
	}

	return tx.Commit(ctx)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
