package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"sheet-enricher/config"
	"sheet-enricher/models"
	"sheet-enricher/scraper/cbr"
	"sheet-enricher/services"
	"sheet-enricher/storage"
	"sheet-enricher/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLoggerWithLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("=== Workbook enricher starting ===")
	logger.Info("Config: source %s | output %s | concurrency %d | match policy %s",
		cfg.SourcePath, cfg.OutputPath, cfg.MaxConcurrency, cfg.MatchPolicy)

	rules, err := config.LoadRules(cfg.RulesPath)
	if err != nil {
		logger.Error("Failed to load rules: %v", err)
		os.Exit(1)
	}
	policy, err := services.ParseMatchPolicy(cfg.MatchPolicy)
	if err != nil {
		logger.Error("Invalid TAG_MATCH_POLICY: %v", err)
		os.Exit(1)
	}

	// Stage 1: fetch the source workbook and the rate table, merge them into one workbook.
	if !cfg.SkipDownload {
		retry := &utils.RetryConfig{MaxAttempts: cfg.MaxRetries, BaseDelay: 2 * time.Second, Logger: logger}
		downloader := storage.NewDownloader(time.Duration(cfg.HTTPTimeoutSec)*time.Second, retry, logger)
		if err := downloader.Download(ctx, cfg.SourceURL, cfg.SourcePath); err != nil {
			logger.Error("Workbook download failed: %v", err)
			os.Exit(1)
		}
	}

	src, err := storage.OpenWorkbook(cfg.SourcePath)
	if err != nil {
		logger.Error("Failed to open source workbook: %v", err)
		os.Exit(1)
	}
	loader := services.NewLoader(cbr.New(cfg, logger), logger, cfg.MaxConcurrency)
	wb, err := loader.Load(ctx, src)
	_ = src.Close()
	if err != nil {
		logger.Error("Load failed: %v", err)
		os.Exit(1)
	}

	if err := storage.SaveWorkbook(cfg.OutputPath, wb); err != nil {
		logger.Error("Failed to save merged workbook: %v", err)
		os.Exit(1)
	}
	logger.Info("Merged workbook saved to %s (%d sheets)", cfg.OutputPath, len(wb.Names()))

	// Stage 2: tag, price and aggregate, then replace the sheets in place.
	pipeline := services.NewPipeline(logger, services.PipelineOptions{
		BrandAliases:       rules.BrandAliases,
		DomainReplacements: replacements(rules),
		Policy:             policy,
		MaxWorkers:         cfg.MaxConcurrency,
	})
	result, err := pipeline.Run(ctx, wb)
	if err != nil {
		logger.Error("Transformation failed: %v", err)
		os.Exit(1)
	}

	if err := storage.ReplaceSheets(cfg.OutputPath, result.Catalog, result.Marketing, result.TouchChains); err != nil {
		logger.Error("Failed to write result sheets: %v", err)
		os.Exit(1)
	}
	logger.Info("Sheets %q, %q and %q written to %s",
		models.SheetCatalog, models.SheetMarketing, models.SheetTouchChains, cfg.OutputPath)

	chains := writeSinks(cfg, logger, wb, result.Chains)

	insightSvc := services.NewInsightService(logger)
	insightSvc.Log(insightSvc.Generate(chains))

	logger.Info("Done.")
}

// writeSinks exports chains to the optional CSV and PostgreSQL sinks. It returns the
// chains the report should use: the stored copy when PostgreSQL is enabled.
func writeSinks(cfg *config.Config, logger *utils.Logger, wb *models.Workbook, chains []models.TouchChain) []models.TouchChain {
	var sinks []storage.ChainWriter
	var pgWriter *storage.PostgresWriter

	if cfg.CSVOutputPath != "" {
		csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
		if err != nil {
			logger.Error("Failed to create CSV writer: %v", err)
		} else {
			sinks = append(sinks, csvWriter)
		}
	}
	if cfg.PostgresEnabled {
		w, err := storage.NewPostgresWriter(cfg.DSN())
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
		} else {
			pgWriter = w
			sinks = append(sinks, w)
		}
	}

	var entries []models.RateEntry
	if rates, ok := wb.Sheet(models.SheetRates); ok {
		var err error
		if entries, err = services.RatesFromSheet(rates); err != nil {
			logger.Warn("Rates sheet not exported: %v", err)
		}
	}

	stored := true
	for _, sink := range sinks {
		if err := sink.WriteChains(chains); err != nil {
			logger.Error("Touch chain export failed (%T): %v", sink, err)
			stored = false
			continue
		}
		if rw, ok := sink.(storage.RateWriter); ok && len(entries) > 0 {
			if err := rw.WriteRates(entries); err != nil {
				logger.Error("Rate export failed (%T): %v", sink, err)
			}
		}
	}
	logger.Info("Touch chains exported to %d sink(s)", len(sinks))

	result := chains
	if pgWriter != nil && stored {
		fetched, err := pgWriter.FetchAll()
		if err != nil {
			logger.Error("Failed to fetch chains from DB for insights: %v", err)
		} else {
			result = fetched
		}
	}

	for _, sink := range sinks {
		if err := sink.Close(); err != nil {
			logger.Warn("Closing %T: %v", sink, err)
		}
	}
	return result
}

func replacements(r *config.Rules) []services.Replacement {
	out := make([]services.Replacement, 0, len(r.DomainReplacements))
	for _, rep := range r.DomainReplacements {
		out = append(out, services.Replacement{From: rep.From, To: rep.To})
	}
	return out
}
