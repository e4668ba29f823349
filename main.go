package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/seolens/seolens-engine/pkg/classifier"
	"github.com/seolens/seolens-engine/pkg/config"
	"github.com/seolens/seolens-engine/pkg/database"
	"github.com/seolens/seolens-engine/pkg/dataset"
	"github.com/seolens/seolens-engine/pkg/llm"
	"github.com/seolens/seolens-engine/pkg/logging"
	"github.com/seolens/seolens-engine/pkg/models"
	"github.com/seolens/seolens-engine/pkg/repositories"
	"github.com/seolens/seolens-engine/pkg/schema"
	"github.com/seolens/seolens-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

type edit struct {
	keyword string
	intent  models.Intent
}

func main() {
	var (
		inputPath   = flag.String("input", "", "path to the Search Console CSV export (required)")
		outputPath  = flag.String("output", "", "path for the analyzed CSV export (default stdout)")
		runClassify = flag.Bool("classify", false, "classify keywords without a stored intent")
		showAll     = flag.Bool("all", false, "export all rows, not only those needing optimization")
		sortBy      = flag.String("sort", "default", "sort order: default, impressions_last, ctr_drop_pct, click_loss, ctr_gap")
	)
	var edits []edit
	flag.Func("set", "manual intent edit as 'keyword=Intent' (repeatable)", func(v string) error {
		keyword, label, found := strings.Cut(v, "=")
		if !found || strings.TrimSpace(keyword) == "" {
			return fmt.Errorf("want 'keyword=Intent', got %q", v)
		}
		intent := models.ParseIntent(label)
		if !intent.Known() {
			return fmt.Errorf("unknown intent %q (want Informational, Commercial, Navigational or Transactional)", label)
		}
		edits = append(edits, edit{keyword: strings.TrimSpace(keyword), intent: intent})
		return nil
	})
	flag.Parse()

	if *inputPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(Version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Env)
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger, *inputPath, *outputPath, *runClassify, *showAll, services.SortOption(*sortBy), edits); err != nil {
		logger.Fatal("run failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger, inputPath, outputPath string, runClassify, showAll bool, sortBy services.SortOption, edits []edit) error {
	ctx := context.Background()

	repo := openStore(ctx, cfg, logger)

	gen, err := newTextGenerator(cfg, logger)
	if err != nil {
		return err
	}

	pipeline := services.NewPipeline(
		dataset.NewLoader(schema.NewNormalizer(logger), logger),
		repo,
		classifier.New(gen, classifier.Options{
			BatchSize:      cfg.Classifier.BatchSize,
			PacingDelay:    time.Duration(cfg.Classifier.PacingDelaySeconds) * time.Second,
			RequestTimeout: time.Duration(cfg.Classifier.RequestTimeoutSeconds) * time.Second,
		}, logger),
		logger,
	)

	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	session, err := pipeline.LoadSession(ctx, f)
	if err != nil {
		return err
	}
	logger.Info("keywords without intent", zap.Int("count", session.UnknownCount()))

	if runClassify {
		result, err := pipeline.ClassifyUnknown(ctx, session)
		var batchErr *classifier.BatchError
		if errors.As(err, &batchErr) {
			logger.Warn("classification stopped early, earlier batches kept",
				zap.Int("failed_batch", batchErr.Batch),
				zap.Int("batches_completed", result.BatchesCompleted),
				zap.Error(batchErr))
		} else if err != nil {
			return err
		}
	}

	for _, e := range edits {
		if session.ApplyEdit(e.keyword, e.intent) {
			logger.Info("intent edited", zap.String("keyword", e.keyword), zap.String("intent", string(e.intent)))
		}
	}
	if written, err := pipeline.Flush(ctx, session); err != nil {
		logger.Warn("failed to flush intents", zap.String("error", logging.SanitizeError(err)))
	} else if written > 0 {
		logger.Info("saved intents", zap.Int("rows", written))
	}

	out := os.Stdout
	if outputPath != "" {
		out, err = os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer out.Close()
	}

	return pipeline.Export(out, session, services.ViewOptions{
		OnlyNeedsOptimization: !showAll,
		SortBy:                sortBy,
	})
}

// openStore connects to Postgres and runs migrations. A store outage is
// not fatal: the session continues with all-Unknown intents and flushes
// fail with a warning.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) repositories.IntentRepository {
	connStr := cfg.Database.ConnectionString()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            connStr,
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Warn("intent store unavailable, continuing without stored intents",
			zap.String("error", logging.SanitizeError(err)))
		return repositories.NewUnavailableIntentRepository(err)
	}

	if err := database.MigrateIntentStore(connStr, cfg.MigrationsPath, logger); err != nil {
		logger.Warn("migrations failed", zap.String("error", logging.SanitizeError(err)))
	}

	return repositories.NewIntentRepository(db)
}

func newTextGenerator(cfg *config.Config, logger *zap.Logger) (llm.TextGenerator, error) {
	llmCfg := &llm.Config{
		Endpoint: cfg.AI.Endpoint,
		Model:    cfg.AI.Model,
		APIKey:   cfg.AI.APIKey,
	}
	if cfg.AI.Provider == "anthropic" {
		return llm.NewAnthropicClient(llmCfg, logger)
	}
	return llm.NewClient(llmCfg, logger)
}

func newLogger(env string) *zap.Logger {
	if env == "local" {
		logger, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		return logger
	}
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	return logger
}
