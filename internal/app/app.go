package app

import (
	"context"
	"errors"
	"fmt"

	devicerepo "todo-backend/internal/device/repository"
	"todo-backend/internal/notification"
	taskrepo "todo-backend/internal/task/repository"
	"todo-backend/internal/task/scheduler"
	"todo-backend/internal/task/usecase"
	"todo-backend/pkg/clock"
	"todo-backend/pkg/config"
	"todo-backend/pkg/fcm"
	"todo-backend/pkg/kvstore"
	"todo-backend/pkg/logger"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"
)

// App is the wired object graph shared by the server and the CLI
type App struct {
	Config      *config.Config
	Logger      zerolog.Logger
	Clock       clock.Clock
	Store       kvstore.Store
	Tasks       usecase.TaskUsecase
	Devices     devicerepo.DeviceRepository
	Center      *notification.Center
	Reminders   *scheduler.ReminderScheduler
	PushEnabled bool

	lock *flock.Flock
}

// New opens storage, builds every component and loads the task collection
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	lock, err := acquireLock(cfg)
	if err != nil {
		return nil, err
	}

	store, err := OpenStore(cfg)
	if err != nil {
		releaseLock(lock)
		return nil, err
	}

	clk := clock.Real{Location: loc}
	devices := devicerepo.NewSlotDeviceRepository(store, cfg.DevicesSlot, clk)

	senders := []notification.Sender{notification.NewLogSender(logger.Component(log, "alert_center"))}
	pushEnabled := false
	if cfg.FirebaseCredentials != "" {
		client, err := fcm.NewClient(ctx, cfg.FirebaseCredentials, logger.Component(log, "fcm"))
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize FCM client, push notifications disabled")
		} else {
			senders = append(senders, notification.NewFCMSender(client, devices, logger.Component(log, "fcm")))
			pushEnabled = true
		}
	}

	center := notification.NewCenter(clk, logger.Component(log, "alert_center"), notification.Options{
		CheckInterval: cfg.ReminderCheckInterval,
		Workers:       cfg.ReminderWorkers,
		QueueSize:     cfg.ReminderQueueSize,
	}, senders...)

	reminders := scheduler.NewReminderScheduler(center, clk, logger.Component(log, "reminder_scheduler"))
	tasks := usecase.NewTaskUsecase(
		taskrepo.NewSlotTaskRepository(store, cfg.TasksSlot),
		reminders,
		clk,
		logger.Component(log, "task_store"),
		cfg.DayLabelFormat,
	)
	if err := tasks.Load(); err != nil {
		store.Close()
		releaseLock(lock)
		return nil, err
	}

	return &App{
		Config:      cfg,
		Logger:      log,
		Clock:       clk,
		Store:       store,
		Tasks:       tasks,
		Devices:     devices,
		Center:      center,
		Reminders:   reminders,
		PushEnabled: pushEnabled,
		lock:        lock,
	}, nil
}

// OpenStore picks the key-value backend named by STORAGE_DRIVER
func OpenStore(cfg *config.Config) (kvstore.Store, error) {
	switch cfg.StorageDriver {
	case "memory":
		return kvstore.NewMemory(), nil
	case "file":
		return kvstore.NewFile(cfg.DataDir)
	case "sqlite", "":
		return kvstore.NewSQLite(cfg.SQLitePath)
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
		db, err := kvstore.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return kvstore.NewGorm(db)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// Close stops the alert center, releases storage and then the data lock
func (a *App) Close() error {
	a.Center.Stop()
	err := a.Store.Close()
	return errors.Join(err, releaseLock(a.lock))
}
