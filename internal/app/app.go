package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"NewsTriage/internal/config"
	"NewsTriage/internal/infrastructure/feed"
	"NewsTriage/internal/infrastructure/llm"
	"NewsTriage/internal/infrastructure/scheduler"
	"NewsTriage/internal/infrastructure/storage"
	"NewsTriage/internal/infrastructure/telegram"
	"NewsTriage/internal/logging"
	"NewsTriage/internal/ports"
	"NewsTriage/internal/scanner"
	"NewsTriage/internal/state"
	"NewsTriage/internal/triage"
	"NewsTriage/internal/usecase"
)

// Application wires configuration to the pipeline and lifecycle
// orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	driver   ports.Scheduler
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	scoring, err := config.LoadScoring(cfg.Triage.ScoringPath)
	if err != nil {
		baseLogger.Warn("scoring config missing or invalid, using default thresholds",
			"error", err,
			"baseline", scoring.Baseline,
			"high_threshold", scoring.HighThreshold,
			"medium_threshold", scoring.MediumThreshold)
	}
	if err := scoring.Validate(); err != nil {
		baseLogger.Warn("scoring thresholds misordered, bands overlap", "error", err)
	}

	themes, err := config.LoadThemes(cfg.Triage.ThemesPath)
	if err != nil {
		baseLogger.Warn("themes config missing or invalid, scoring without theme boosts", "error", err)
	} else if len(themes) > 0 {
		names := make([]string, 0, len(themes))
		for _, t := range themes {
			names = append(names, t.Name)
		}
		baseLogger.Info("active themes loaded", "themes", names)
	}

	registry := scanner.NewRegistry()
	registry.Register(feed.NewRSSScanner(nil, baseLogger.With("component", "scanner.rss")))

	source := feed.NewStrategySource(registry, cfg.Sources, cfg.Triage.MaxEntriesPerFeed,
		baseLogger.With("component", "source"))

	var archive ports.RecordArchive
	if cfg.Database.DSN != "" {
		db, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			baseLogger.Warn("archive database unavailable", "error", err)
		} else {
			archive = storage.NewPostgresArchive(db)
		}
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" && cfg.Notifications.Telegram.ChatID != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram)
	}

	var analysis ports.AnalysisClient
	if cfg.Downstream.APIKey != "" {
		analysis = llm.NewAnalysisClient(cfg.Downstream)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:        source,
		State:         state.NewStore(cfg.State.FirstSeenPath, cfg.State.RunStatePath),
		Classifier:    triage.NewClassifier(scoring, themes),
		Gate:          triage.NewRecencyGate(cfg.Triage.CategoryWindowHours, cfg.Triage.DefaultWindowHours),
		Archive:       archive,
		Notifier:      notifier,
		Analysis:      analysis,
		Logger:        baseLogger.With("component", "pipeline"),
		RetentionDays: cfg.Triage.RetentionDays,
		EvergreenDays: cfg.Triage.EvergreenDays,
	})

	driver := scheduler.NewIntervalScheduler(time.Duration(cfg.Scheduler.IntervalHours) * time.Hour)

	return &Application{cfg: cfg, logger: baseLogger, pipeline: pipeline, driver: driver}
}

// Run performs a single triage pass and exports the emitted records.
func (a *Application) Run(ctx context.Context) error {
	records, err := a.pipeline.Run(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("triage run: %w", err)
	}

	if err := state.WriteJSONAtomic(a.cfg.Output.RecordsPath, records); err != nil {
		return fmt.Errorf("export records: %w", err)
	}

	a.logger.Info("records exported", "path", a.cfg.Output.RecordsPath, "count", len(records))
	return nil
}

// Serve repeats the run on the configured interval until the context ends.
func (a *Application) Serve(ctx context.Context) error {
	job := func(t time.Time) {
		if err := a.Run(ctx); err != nil {
			a.logger.Error("scheduled run failed", "error", err)
		}
	}

	if err := a.driver.Start(ctx, job); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()
	return a.driver.Stop(context.Background())
}
