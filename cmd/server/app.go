package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/job"
	"github.com/phrazzld/taskboard-api/internal/notify"
	"github.com/phrazzld/taskboard-api/internal/platform/fcm"
	"github.com/phrazzld/taskboard-api/internal/platform/postgres"
	"github.com/phrazzld/taskboard-api/internal/platform/telegram"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// application holds the shared dependencies of the server and releases
// them on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	backend *backend

	jwtService          auth.JWTService
	taskService         service.TaskService
	notificationService service.NotificationService

	// set in async notify mode only
	jobRunner *job.Runner
}

// newApplication opens the configured store and wires the services on top of it.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	app := &application{
		config:  cfg,
		logger:  logger,
		backend: b,
	}

	if err := app.wire(ctx); err != nil {
		app.cleanup()
		return nil, err
	}

	logger.Info("application initialized",
		"database_driver", cfg.Database.Driver,
		"notify_mode", cfg.Notify.Mode)
	return app, nil
}

// wire builds the services over app.backend.
func (app *application) wire(ctx context.Context) error {
	cfg := app.config
	st := app.backend.store

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	delivery, err := buildDeliveryNotifier(ctx, cfg.Notify, cfg.Database.ProjectID, st, app.logger)
	if err != nil {
		return err
	}

	notifier := notify.Notifier(delivery)
	if cfg.Notify.Mode == config.NotifyModeAsync {
		notifier, err = app.setupAsyncNotifications(st, delivery)
		if err != nil {
			return err
		}
	}

	app.taskService, err = service.NewTaskService(st, notifier, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create task service: %w", err)
	}

	app.notificationService, err = service.NewNotificationService(st.Notifications(), app.logger)
	if err != nil {
		return fmt.Errorf("failed to create notification service: %w", err)
	}

	return nil
}

// buildDeliveryNotifier combines the inbox with every configured push channel.
func buildDeliveryNotifier(
	ctx context.Context,
	cfg config.NotifyConfig,
	projectID string,
	st store.Store,
	logger *slog.Logger,
) (notify.MultiNotifier, error) {
	notifiers := notify.MultiNotifier{notify.NewInboxNotifier(st.Notifications(), logger)}

	if cfg.Telegram.BotToken != "" {
		bot, err := telegram.NewBot(cfg.Telegram.BotToken)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize telegram bot: %w", err)
		}
		notifiers = append(notifiers, telegram.New(bot, st.Users(), logger))
		logger.Info("telegram notifications enabled")
	}

	if cfg.FCM.Enabled {
		client, err := fcm.NewClient(ctx, projectID, cfg.FCM.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize FCM client: %w", err)
		}
		notifiers = append(notifiers, fcm.New(client, logger))
		logger.Info("FCM notifications enabled")
	}

	return notifiers, nil
}

// setupAsyncNotifications starts the job runner and returns a notifier that
// hands deliveries to it through a task.assigned event.
func (app *application) setupAsyncNotifications(st store.Store, delivery notify.Notifier) (notify.Notifier, error) {
	factory, err := job.NewNotificationJobFactory(st.Tasks(), delivery, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification job factory: %w", err)
	}

	registry := job.NewRegistry()
	registry.Register(job.TypeNotificationDelivery, factory.Rebuild)

	runner := job.NewRunner(app.jobStore(), registry, job.ConfigFrom(app.config.Job), app.logger)
	if err := runner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start job runner: %w", err)
	}
	app.jobRunner = runner

	emitter := events.NewInMemoryEventEmitter(app.logger)
	emitter.Subscribe(events.TypeTaskAssigned, job.NewTaskAssignedHandler(factory, runner, app.logger))

	return notify.NewAsyncDispatcher(emitter, app.logger), nil
}

// jobStore persists jobs in PostgreSQL when available so they survive restarts.
func (app *application) jobStore() job.Store {
	if app.config.Database.Driver == config.DriverPostgres && app.backend.db != nil {
		return postgres.NewJobStore(app.backend.db)
	}
	return job.NewMemoryStore()
}

// Run serves the API until ctx is canceled.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup stops the job runner and closes the store.
func (app *application) cleanup() {
	if app.jobRunner != nil {
		app.jobRunner.Stop()
	}

	if app.backend != nil && app.backend.store != nil {
		if err := app.backend.store.Close(); err != nil {
			app.logger.Error("error closing store", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
