// Package app wires configuration, storage and services into the scheduling engine
// shared by the bot and the HTTP API.
package app

import (
	"context"
	"errors"
	"fmt"

	"hotel-shift-bot/internal/config"
	"hotel-shift-bot/internal/notify"
	"hotel-shift-bot/internal/repository"
	"hotel-shift-bot/internal/selection"
	"hotel-shift-bot/internal/service"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Logger *logrus.Logger
	DB     *gorm.DB

	ShiftRepo *repository.GormShiftScheduleRepository
	Staff     *service.StaffService
	Holidays  *service.NonWorkingDayService
	Engine    *service.SchedulingService

	closers []func() error
}

// New opens storage and builds the services. Extra notifiers receive every event next
// to the log and, when RABBITMQ_DSN is set, the event queue.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger, extra ...notify.Notifier) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	clock := service.SystemClock{Location: loc}

	db, err := repository.Open(cfg.DatabaseDriver, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}
	a.DB = db
	a.onClose(func() error { return repository.Close(db) })

	shiftRepo, err := repository.NewGormShiftScheduleRepository(db, logger)
	if err != nil {
		return nil, a.fail(fmt.Errorf("failed to create shift repository: %w", err))
	}
	absenceRepo, err := repository.NewGormAbsenceRequestRepository(db, logger)
	if err != nil {
		return nil, a.fail(fmt.Errorf("failed to create absence repository: %w", err))
	}
	staffRepo, err := repository.NewGormStaffRepository(db)
	if err != nil {
		return nil, a.fail(fmt.Errorf("failed to create staff repository: %w", err))
	}
	dayRepo, err := repository.NewGormNonWorkingDayRepository(db)
	if err != nil {
		return nil, a.fail(fmt.Errorf("failed to create non-working day repository: %w", err))
	}

	a.ShiftRepo = shiftRepo
	a.Staff = service.NewStaffService(staffRepo, cfg.DefaultHotelID, logger)
	a.Holidays = service.NewNonWorkingDayService(dayRepo, logger)

	if cfg.HolidaysFile != "" {
		if n, err := a.Holidays.LoadFromJSON(ctx, cfg.HolidaysFile); err != nil {
			logger.WithError(err).WithField("file", cfg.HolidaysFile).Warn("Failed to load non-working days")
		} else {
			logger.WithField("days", n).Info("Non-working days loaded")
		}
	}

	selections, err := a.selectionStore(ctx)
	if err != nil {
		return nil, a.fail(err)
	}

	notifiers := notify.Multi{notify.Log{Logger: logger}}
	notifiers = append(notifiers, extra...)
	if cfg.RabbitMQ.DSN != "" {
		queue, err := a.eventQueue()
		if err != nil {
			return nil, a.fail(err)
		}
		notifiers = append(notifiers, queue)
	}

	// Registered last so pending events drain before the queue connection closes.
	events := notify.NewAsync(notifiers, cfg.OperationTimeout, logger)
	a.onClose(events.Close)

	a.Engine = service.NewSchedulingService(
		service.NewShiftService(shiftRepo, clock, logger),
		service.NewAbsenceService(absenceRepo, clock, logger),
		a.Holidays,
		selections,
		events,
		clock,
		logger,
	)

	return a, nil
}

func (a *App) selectionStore(ctx context.Context) (selection.Store, error) {
	if a.Config.Redis.Addr == "" {
		return selection.NewMemory(a.Config.SelectionTTL), nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     a.Config.Redis.Addr,
		Password: a.Config.Redis.Password,
		DB:       a.Config.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	a.onClose(rdb.Close)

	a.Logger.WithField("addr", a.Config.Redis.Addr).Info("Range selections stored in redis")
	return selection.NewRedis(rdb, a.Config.SelectionTTL), nil
}

func (a *App) eventQueue() (*notify.Queue, error) {
	conn, err := amqp.Dial(a.Config.RabbitMQ.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	a.onClose(conn.Close)

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}
	a.onClose(ch.Close)

	if err := notify.DeclareQueue(ch, a.Config.RabbitMQ.Queue); err != nil {
		return nil, fmt.Errorf("failed to declare queue %q: %w", a.Config.RabbitMQ.Queue, err)
	}

	a.Logger.WithField("queue", a.Config.RabbitMQ.Queue).Info("Events published to rabbitmq")
	return notify.NewQueue(ch, a.Config.RabbitMQ.Queue, a.Config.RabbitMQ.PublishTimeout), nil
}

func (a *App) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

func (a *App) fail(err error) error {
	if cerr := a.Close(); cerr != nil {
		a.Logger.WithError(cerr).Warn("Cleanup after failed start")
	}
	return err
}

// Close releases connections in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
