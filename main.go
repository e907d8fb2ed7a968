package main

import (
	"fmt"
	"os"
	"path/filepath"

	"lithos-pipeline/config"
	"lithos-pipeline/models"
	"lithos-pipeline/scraper/worthpoint"
	"lithos-pipeline/services"
	"lithos-pipeline/storage"
	"lithos-pipeline/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()

	logger.Info("=== Lithos Price Pipeline starting ===")
	logger.Info("Config: data dir: %s | merged: %s | concurrency: %d | rate: %dms",
		cfg.DataDir, cfg.MergedCSVPath, cfg.MaxConcurrency, cfg.RateLimitMs)

	rulesets, err := config.LoadRulesets(cfg.MaterialsPath)
	if err != nil {
		logger.Error("Failed to load material rulesets: %v", err)
		os.Exit(1)
	}

	classifier, err := services.NewClassifier(rulesets)
	if err != nil {
		logger.Error("Invalid ruleset table: %v", err)
		os.Exit(1)
	}

	// Acquisition runs only when a session is configured; otherwise the
	// pipeline works off whatever CSVs are already in the data dir.
	if cfg.SessionCookie != "" {
		wpScraper := worthpoint.New(cfg, logger, rulesets)
		batches, err := wpScraper.Scrape()
		if err != nil {
			logger.Error("WorthPoint scrape failed: %v", err)
		}
		for _, batch := range batches {
			if err := storage.WriteMaterialCSV(cfg.DataDir, batch.Source, batch.Listings); err != nil {
				logger.Error("Failed to save %s: %v", batch.Source, err)
			}
		}
	} else {
		logger.Info("No WORTHPOINT_SESSION set, processing existing CSVs only")
	}

	batches, err := storage.ReadRawBatches(cfg.DataDir, filepath.Base(cfg.MergedCSVPath))
	if err != nil {
		logger.Error("Failed to read raw CSVs: %v", err)
		os.Exit(1)
	}
	if len(batches) == 0 {
		logger.Error("No raw listing CSVs found in %s. Exiting.", cfg.DataDir)
		os.Exit(1)
	}
	logger.Info("Read %d raw batches from %s", len(batches), cfg.DataDir)

	normalizer := services.NewNormalizer(classifier, services.NewDeduplicator(), logger)
	sales, stats := normalizer.NormalizeAll(batches)

	if len(sales) == 0 {
		logger.Error("All listings were dropped during normalization. Exiting.")
		os.Exit(1)
	}

	csvWriter, err := storage.NewCSVWriter(cfg.MergedCSVPath)
	if err != nil {
		logger.Error("Failed to create merged CSV: %v", err)
		os.Exit(1)
	}
	if err := csvWriter.Write(sales); err != nil {
		logger.Error("Merged CSV write failed: %v", err)
	} else {
		logger.Info("Canonical sales saved to %s", cfg.MergedCSVPath)
	}
	if err := csvWriter.Close(); err != nil {
		logger.Error("Merged CSV close failed: %v", err)
	}

	insightSvc := services.NewInsightService(logger)
	report := insightSvc.Generate(sales, stats)
	insightSvc.Print(report)

	aggregator := services.NewAggregator(logger)
	monthly := aggregator.Monthly(sales)
	if len(monthly) == 0 {
		logger.Warn("No monthly aggregates produced, nothing to import")
		return
	}

	pgWriter, err := storage.NewPostgresWriter(cfg.DSN())
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		os.Exit(1)
	}
	defer pgWriter.Close()

	if err := pgWriter.Write(monthly); err != nil {
		logger.Error("PostgreSQL import failed: %v", err)
	} else {
		logger.Info("Imported %d monthly data points (table: lithos_prices)", len(monthly))
	}

	var aggregated []*models.MonthlyAggregate
	aggregated, err = pgWriter.FetchAll()
	if err != nil {
		logger.Warn("Post-import verification failed: %v", err)
	} else {
		logger.Info("Verified %d WorthPoint rows in lithos_prices", len(aggregated))
	}

	fmt.Printf("  Done. Canonical sales → %s | Monthly medians → PostgreSQL (lithos_prices)\n\n",
		cfg.MergedCSVPath)
}
