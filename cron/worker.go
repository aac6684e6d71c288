package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"tuwi/models"
	"tuwi/services/tasks"
)

// EventPublisher forwards booking events to the realtime channel.
type EventPublisher interface {
	Publish(ctx context.Context, evt models.BookingEvent) error
}

// BookingWorker consumes booking tasks from the queue.
type BookingWorker struct {
	srv       *asynq.Server
	mux       *asynq.ServeMux
	publisher EventPublisher
	logger    *zap.Logger
}

func NewBookingWorker(redisOpt asynq.RedisClientOpt, publisher EventPublisher, logger *zap.Logger) *BookingWorker {
	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			Logger: logger.Sugar(),
		},
	)

	w := &BookingWorker{srv: srv, mux: asynq.NewServeMux(), publisher: publisher, logger: logger}
	w.mux.HandleFunc(tasks.TypeBookingCreated, w.handleBookingEvent(models.EventBookingCreated))
	w.mux.HandleFunc(tasks.TypeBookingReminder, w.handleBookingEvent(models.EventBookingReminder))
	return w
}

// Start launches the worker in the background, retrying startup with backoff.
func (w *BookingWorker) Start() {
	go func() {
		w.logger.Info("Starting booking worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := w.srv.Start(w.mux)
			if err == nil {
				return
			}
			w.logger.Error("Booking worker failed to start",
				zap.Int("attempt", attempts),
				zap.Int("maxAttempts", maxAttempts),
				zap.Error(err))
			if attempts == maxAttempts {
				w.logger.Error("Booking worker gave up, queued notifications will wait for the next start")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
}

// Shutdown waits for in-flight tasks and stops the worker.
func (w *BookingWorker) Shutdown() {
	w.srv.Shutdown()
}

func (w *BookingWorker) handleBookingEvent(eventType string) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		evt, err := tasks.ParseBookingEvent(task)
		if err != nil {
			w.logger.Error("Invalid booking task payload", zap.String("type", task.Type()), zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		evt.Type = eventType

		if err := w.publisher.Publish(ctx, evt); err != nil {
			w.logger.Warn("Failed to publish booking event",
				zap.String("type", eventType),
				zap.String("bookingId", evt.BookingID.String()),
				zap.Error(err))
			return err
		}
		w.logger.Info("Booking event published",
			zap.String("type", eventType),
			zap.String("bookingId", evt.BookingID.String()))
		return nil
	}
}
