package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"stationreports/internal/config"
	"stationreports/internal/db"
	"stationreports/internal/excel"
	"stationreports/internal/logger"
	"stationreports/internal/repository"

	"go.uber.org/zap"
)

type options struct {
	pricePath string
	dryRun    bool
	strict    bool
}

type importStats struct {
	Rows        int
	Inserted    int
	Duplicates  int
	UnknownFuel int
}

func main() {
	opts := parseFlags()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logg, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logg.Sync() }()

	rows, err := readPriceRows(opts.pricePath, cfg)
	if err != nil {
		logg.Fatal("read price file", zap.String("path", opts.pricePath), zap.Error(err))
	}
	if opts.dryRun {
		for _, row := range rows {
			logg.Info("price row",
				zap.Int("row", row.Row),
				zap.String("fuel", row.FuelName),
				zap.String("selling_price", row.SellingPrice.String()),
				zap.String("purchase_price", row.PurchasePrice.String()),
				zap.Time("effective_date", row.EffectiveDate),
			)
		}
		logg.Info("dry run complete", zap.Int("rows", len(rows)))
		return
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.Database.URL, db.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		logg.Fatal("database error", zap.Error(err))
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, logg); err != nil {
		logg.Fatal("migration error", zap.Error(err))
	}

	stats, err := importPrices(ctx, repository.New(pool), rows, opts.strict, logg)
	if err != nil {
		logg.Fatal("import failed", zap.Error(err))
	}
	logg.Info("import complete",
		zap.Int("rows", stats.Rows),
		zap.Int("inserted", stats.Inserted),
		zap.Int("duplicates", stats.Duplicates),
		zap.Int("unknown_fuel", stats.UnknownFuel),
	)
}

func parseFlags() options {
	var opts options
	flag.StringVar(
		&opts.pricePath,
		"prices",
		"",
		"path to a fuel price sheet (.xlsx or .csv) with Fuel, Selling Price, Purchase Price and Effective Date columns",
	)
	flag.BoolVar(
		&opts.dryRun,
		"dry-run",
		false,
		"parse and print rows without touching the database",
	)
	flag.BoolVar(
		&opts.strict,
		"strict",
		false,
		"fail on rows whose fuel type does not exist instead of skipping them",
	)
	flag.Parse()
	if strings.TrimSpace(opts.pricePath) == "" {
		log.Fatal("--prices is required")
	}
	return opts
}

func readPriceRows(path string, cfg *config.Config) ([]excel.FuelPriceRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	rows, err := excel.ParseFuelPriceRows(path, file, cfg.Location())
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return rows, nil
}

type priceWriter interface {
	FuelTypeIDByName(ctx context.Context, name string) (int64, error)
	InsertFuelPrice(ctx context.Context, input repository.FuelPriceInput) (bool, error)
}

func importPrices(ctx context.Context, repo priceWriter, rows []excel.FuelPriceRow, strict bool, logg *zap.Logger) (importStats, error) {
	stats := importStats{Rows: len(rows)}
	fuelIDs := make(map[string]int64)
	for _, row := range rows {
		key := strings.ToLower(row.FuelName)
		fuelID, ok := fuelIDs[key]
		if !ok {
			id, err := repo.FuelTypeIDByName(ctx, row.FuelName)
			if errors.Is(err, repository.ErrNotFound) {
				if strict {
					return stats, fmt.Errorf("row %d: unknown fuel type %q", row.Row, row.FuelName)
				}
				stats.UnknownFuel++
				logg.Warn("skipping row with unknown fuel type", zap.Int("row", row.Row), zap.String("fuel", row.FuelName))
				continue
			}
			if err != nil {
				return stats, fmt.Errorf("row %d: %w", row.Row, err)
			}
			fuelID = id
			fuelIDs[key] = id
		}

		inserted, err := repo.InsertFuelPrice(ctx, repository.FuelPriceInput{
			FuelTypeID:    fuelID,
			SellingPrice:  row.SellingPrice,
			PurchasePrice: row.PurchasePrice,
			EffectiveDate: row.EffectiveDate,
		})
		if err != nil {
			return stats, fmt.Errorf("row %d: %w", row.Row, err)
		}
		if inserted {
			stats.Inserted++
		} else {
			stats.Duplicates++
		}
	}
	return stats, nil
}
