package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"hrpulse/internal/attribution"
	"hrpulse/internal/config"
	"hrpulse/internal/exporter"
	"hrpulse/internal/hrdata"
	"hrpulse/internal/infrastructure"
	"hrpulse/internal/model"
	"hrpulse/internal/pipeline"
)

func main() {
	dataDir := flag.String("data", "", "input directory for HR CSV files (defaults to the configured data dir)")
	outDir := flag.String("out", "", "output directory for the report workbook (defaults to the configured output dir)")
	asOf := flag.String("asof", "", "reference date for ages, tenures and windows (YYYY-MM-DD, defaults to today)")
	topN := flag.Int("top", 15, "number of top attrition drivers to print")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}

	if *dataDir == "" {
		*dataDir = cfg.GetDataDir()
	}
	if *outDir == "" {
		*outDir = cfg.GetOutputDir()
	}

	engineParams, err := cfg.EngineParams()
	if err != nil {
		logger.Error("Invalid pipeline configuration", "error", err)
		os.Exit(1)
	}
	if *asOf != "" {
		parsed, err := time.Parse("2006-01-02", *asOf)
		if err != nil {
			logger.Error("Invalid -asof date", "value", *asOf, "error", err)
			os.Exit(1)
		}
		engineParams.AsOf = parsed
	}

	if err := run(context.Background(), cfg, engineParams, *dataDir, *outDir, *topN, logger); err != nil {
		logger.Error("Processing failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, engineParams pipeline.Params, dataDir, outDir string, topN int, logger *slog.Logger) error {
	start := time.Now()

	loader := hrdata.NewLoader(dataDir, logger)
	ds, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load HR data: %w", err)
	}

	engine := pipeline.NewEngine(engineParams, logger)
	result, err := engine.Build(ctx, ds)
	if err != nil {
		return fmt.Errorf("feature pipeline failed: %w", err)
	}

	gbt, err := model.Train(ctx, result.Table, cfg.TrainingParams(), logger)
	if err != nil {
		return fmt.Errorf("model training failed: %w", err)
	}

	explainerCfg := cfg.ExplainerConfig()
	explainer, err := attribution.NewExplainer(ctx, gbt, result.Table, explainerCfg, logger)
	if err != nil {
		return fmt.Errorf("failed to build explainer: %w", err)
	}

	global := explainer.ExplainGlobal(ctx, result.Table, explainerCfg.GlobalSampleSize, explainerCfg.Seed)
	ranking := explainer.RankActive(result.Table)

	csvWriter := exporter.NewCSVWriter(outDir)
	if err := csvWriter.WriteFeatureTable(ctx, result.Table, "feature_table.csv"); err != nil {
		return fmt.Errorf("failed to export feature table: %w", err)
	}

	writer := exporter.NewReportWriter(outDir, logger)
	path, err := writer.Write(ctx, &exporter.Report{
		Profiles: result.Profiles,
		Ranking:  ranking,
		Drivers:  global.Features,
		Base:     global.Base,
	})
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	printSummary(result, global, ranking, topN, path)

	logger.InfoContext(ctx, "processing complete",
		slog.Int("employees", len(result.Table.EmployeeIDs)),
		slog.Int("ranked", len(ranking)),
		slog.String("report", path),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

func printSummary(result *pipeline.Result, global *attribution.GlobalAttribution, ranking []attribution.RiskEntry, topN int, reportPath string) {
	fmt.Printf("Employees analyzed: %d (%d active)\n", len(result.Table.EmployeeIDs), len(ranking))
	fmt.Printf("Base attrition risk: %.2f%%\n\n", global.Base)

	fmt.Printf("Top attrition drivers:\n")
	for i, d := range global.TopFeatures(topN) {
		fmt.Printf("  %2d. %-40s %6.3f\n", i+1, d.Feature, d.Value)
	}

	fmt.Printf("\nHighest risk employees:\n")
	limit := topN
	if limit > len(ranking) {
		limit = len(ranking)
	}
	for i := 0; i < limit; i++ {
		fmt.Printf("  %2d. %-12s %6.2f%%\n", i+1, ranking[i].EmployeeID, ranking[i].Risk)
	}

	fmt.Printf("\nReport written to %s\n", reportPath)
}
