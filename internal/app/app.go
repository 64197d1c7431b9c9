package app

import (
	"context"
	"log/slog"
	"time"

	"ReadwiseDigest/internal/config"
	"ReadwiseDigest/internal/infrastructure/github"
	"ReadwiseDigest/internal/infrastructure/markdown"
	"ReadwiseDigest/internal/infrastructure/readwise"
	"ReadwiseDigest/internal/infrastructure/scheduler"
	"ReadwiseDigest/internal/logging"
	"ReadwiseDigest/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	client := readwise.NewClient(cfg.Readwise, baseLogger.With("component", "readwise"))
	publisher := github.NewPublisher(cfg.GitHub, baseLogger.With("component", "github"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Documents:  client,
		Highlights: client,
		Auth:       client,
		Renderer:   markdown.NewRenderer(),
		Publisher:  publisher,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, logger: baseLogger, pipeline: pipeline}
}

// Run executes the pipeline once, or keeps it on a cron loop when the
// scheduler is enabled; in that mode it blocks until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if !a.cfg.Scheduler.Enabled {
		return a.pipeline.Run(ctx, time.Now())
	}

	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, a.cfg.Scheduler.Location())
	runner := usecase.NewScheduler(driver, a.pipeline, a.logger.With("component", "scheduler"))

	if err := runner.Start(ctx); err != nil {
		return err
	}
	a.logger.Info("scheduler started", "cron", a.cfg.Scheduler.CronExpression, "timezone", a.cfg.Scheduler.Timezone)

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return runner.Stop(stopCtx)
}
