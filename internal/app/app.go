package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"trigger-alerts/internal/alerting"
	"trigger-alerts/internal/classifier"
	"trigger-alerts/internal/config"
	"trigger-alerts/internal/fetcher"
	"trigger-alerts/internal/matcher"
	"trigger-alerts/internal/scheduler"
	"trigger-alerts/internal/service"
	"trigger-alerts/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

// newClassifier wires the resilient classifier: Gemini primary when an API
// key is configured, deterministic keyword fallback always.
func (a *App) newClassifier(ctx context.Context) classifier.Classifier {
	var primary classifier.Classifier
	if a.Config.LLM.APIKey != "" {
		gemini, err := classifier.NewGemini(ctx, classifier.GeminiOptions{
			APIKey:  a.Config.LLM.APIKey,
			Model:   a.Config.LLM.Model,
			Timeout: a.Config.LLM.RequestTimeout,
		}, a.Logger)
		if err != nil {
			a.Logger.Warn().Err(err).Msg("gemini classifier unavailable; running fallback-only")
		} else {
			primary = gemini
		}
	} else {
		a.Logger.Warn().Msg("llm.api_key not configured; running fallback-only classification")
	}

	return classifier.NewResilient(primary, a.Logger)
}

func (a *App) newFetcher() fetcher.EventFetcher {
	return fetcher.NewNews(fetcher.NewsOptions{
		FeedURLs:  a.Config.Feeds.URLs,
		MaxEvents: a.Config.Feeds.MaxEventsPerPoll,
		Timeout:   a.Config.Feeds.RequestTimeout,
		UserAgent: a.Config.Feeds.UserAgent,
	}, a.Logger)
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

// Run executes the long-running monitoring service.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database.dsn not configured; the monitoring service requires trigger storage")
	}
	if closeStore != nil {
		defer closeStore()
	}

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Scheduler.Interval,
		AlignToStart: a.Config.Scheduler.AlignToBucket,
		StartupDelay: a.Config.Scheduler.StartupDelay,
	}, a.Logger)

	cls := a.newClassifier(ctx)
	events := a.newFetcher()
	notifier := a.newNotifier()
	m := matcher.New(store, store, a.Logger)

	svc := service.New(a.Config, sched, events, cls, m, store, store, notifier, a.Logger)

	a.Logger.Info().Msg("starting trigger intelligence service")
	err = svc.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("service terminated with error")
		return err
	}

	a.Logger.Info().Msg("trigger intelligence service stopped")
	return nil
}

// ExportOptions hold parameters for exporting historical alerts.
type ExportOptions struct {
	From      *time.Time
	To        *time.Time
	PNGPath   string
	CSVPath   string
	MaxPoints int
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Limit int
}

// SimulateOptions configure a synthetic event run.
type SimulateOptions struct {
	OrganizationID int64
	Source         string
	Title          string
	Content        string
}

// PurgeOptions configure alert retention cleanup.
type PurgeOptions struct {
	OlderThan time.Time
}
