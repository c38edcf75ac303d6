// Command ordgen generates ordinals collection metadata from a trait catalog.
//
// First run: point it at a traits directory and it scaffolds traits_info.xlsx
// for you to fill in (rarities, inscription ids, avoid/require lists). Second
// run: it loads the sheet, generates -n unique items, validates the result and
// writes metadata.json, traits.json and trait_usage_statistics.json.
package main

import (
	"errors"
	"flag"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/appengine-ltd/ordgen/internal/audit"
	"github.com/appengine-ltd/ordgen/internal/catalog"
	"github.com/appengine-ltd/ordgen/internal/config"
	"github.com/appengine-ltd/ordgen/internal/engine"
	"github.com/appengine-ltd/ordgen/internal/output"
	"github.com/appengine-ltd/ordgen/internal/sheet"
	"github.com/appengine-ltd/ordgen/internal/traitdir"
)

func main() {
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	var n int
	flag.IntVar(&n, "n", 0, "number of items to generate")
	flag.StringVar(&cfg.TraitsDir, "traits", cfg.TraitsDir, "trait art directory")
	flag.StringVar(&cfg.SheetPath, "sheet", cfg.SheetPath, "traits workbook path")
	flag.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "output directory")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed (0 = from clock)")
	flag.BoolVar(&cfg.Balanced, "balanced", cfg.Balanced, "steer draws toward rarity targets")
	flag.Parse()

	if _, err := os.Stat(cfg.SheetPath); errors.Is(err, os.ErrNotExist) {
		scaffold(logger, cfg)
		return
	}

	if n <= 0 {
		logger.Fatal("pass -n with a positive collection size")
	}

	specs, err := sheet.Load(cfg.SheetPath)
	if err != nil {
		var rowErrs *sheet.RowErrors
		if errors.As(err, &rowErrs) {
			for _, problem := range rowErrs.Problems {
				logger.Error("sheet problem", zap.String("problem", problem))
			}
			logger.Fatal("correct the spreadsheet and try again",
				zap.String("sheet", cfg.SheetPath),
				zap.Int("problems", len(rowErrs.Problems)))
		}
		logger.Fatal("load sheet", zap.Error(err))
	}

	cat, err := catalog.Load(specs)
	if err != nil {
		var cfgErr *catalog.ConfigError
		if errors.As(err, &cfgErr) {
			for _, problem := range cfgErr.Problems {
				logger.Error("catalog problem", zap.String("problem", problem))
			}
			logger.Fatal("catalog rejected", zap.Int("problems", len(cfgErr.Problems)))
		}
		logger.Fatal("load catalog", zap.Error(err))
	}

	opts := engine.Options{
		Seed:            cfg.Seed,
		BacktrackBudget: cfg.BacktrackBudget,
		RestartBudget:   cfg.RestartBudget,
	}
	if cfg.Balanced {
		opts.Weighting = engine.QuotaWeighting(cat, n)
		opts.Shuffle = true
	}

	result := engine.New(cat, opts).Generate(n)
	logger.Info("generation finished",
		zap.String("status", result.Status.String()),
		zap.Int("items", len(result.Items)),
		zap.Int("requested", n),
		zap.Int("backtracks", result.Stats.Backtracks),
		zap.Int("restarts", result.Stats.Restarts),
		zap.Int("duplicate_rejections", result.Stats.Duplicates))
	if result.Status == engine.PartiallyCompleted {
		logger.Warn("collection is incomplete", zap.String("reason", result.Reason))
	}

	violations := audit.Validate(result.Items, cat)
	for _, violation := range violations {
		logger.Error("violation", zap.String("detail", violation.String()))
	}

	report := audit.Summarize(result.Items, cat)
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		logger.Fatal("output dir", zap.Error(err))
	}
	metadataPath := filepath.Join(cfg.OutputDir, "metadata.json")
	if err := output.WriteCollection(metadataPath, result.Items, cat); err != nil {
		logger.Fatal("write metadata", zap.Error(err))
	}
	if err := output.WriteTraitMap(filepath.Join(cfg.OutputDir, "traits.json"), result.Items, cat); err != nil {
		logger.Fatal("write trait map", zap.Error(err))
	}
	if err := output.WriteStats(filepath.Join(cfg.OutputDir, "trait_usage_statistics.json"), report, result); err != nil {
		logger.Fatal("write statistics", zap.Error(err))
	}

	logger.Info("outputs written", zap.String("dir", cfg.OutputDir))
	if len(violations) > 0 {
		// The files are still written so the discrepancy stays inspectable.
		logger.Fatal("collection failed validation", zap.Int("violations", len(violations)))
	}
}

// scaffold writes a fresh traits_info.xlsx from the trait art directory.
func scaffold(logger *zap.Logger, cfg *config.Config) {
	categories, err := traitdir.Scan(cfg.TraitsDir)
	if err != nil {
		logger.Fatal("scan traits dir", zap.Error(err))
	}
	if err := sheet.Scaffold(cfg.SheetPath, categories); err != nil {
		logger.Fatal("scaffold sheet", zap.Error(err))
	}
	logger.Info("spreadsheet created; fill in rarities, inscription ids and avoid/require lists, then rerun",
		zap.String("sheet", cfg.SheetPath),
		zap.Int("categories", len(categories)))
}
