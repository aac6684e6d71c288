package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"tuwi/models"
	"tuwi/services/tasks"
)

// QueueNotifier hands booking events to the asynq worker and schedules the
// appointment reminder.
type QueueNotifier struct {
	client       *asynq.Client
	reminderLead time.Duration
	loc          *time.Location
	now          func() time.Time
}

func NewQueueNotifier(client *asynq.Client, reminderLead time.Duration, loc *time.Location) *QueueNotifier {
	if loc == nil {
		loc = time.UTC
	}
	return &QueueNotifier{client: client, reminderLead: reminderLead, loc: loc, now: time.Now}
}

func (q *QueueNotifier) BookingCreated(ctx context.Context, b models.Booking) error {
	task, opts, err := tasks.NewBookingCreatedTask(NewBookingEvent(models.EventBookingCreated, b))
	if err != nil {
		return err
	}
	if err := q.enqueue(ctx, task, opts); err != nil {
		return err
	}

	fireAt, ok := reminderAt(b, q.reminderLead, q.loc, q.now())
	if !ok {
		return nil
	}
	task, opts, err = tasks.NewBookingReminderTask(NewBookingEvent(models.EventBookingReminder, b), fireAt)
	if err != nil {
		return err
	}
	return q.enqueue(ctx, task, opts)
}

func (q *QueueNotifier) enqueue(ctx context.Context, task *asynq.Task, opts []asynq.Option) error {
	if _, err := q.client.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}
	return nil
}

// reminderAt is lead before the appointment, or false when that moment has
// already passed or the reminder is disabled.
func reminderAt(b models.Booking, lead time.Duration, loc *time.Location, now time.Time) (time.Time, bool) {
	if lead <= 0 {
		return time.Time{}, false
	}
	start, err := b.ScheduledAt(loc)
	if err != nil {
		return time.Time{}, false
	}
	fireAt := start.Add(-lead)
	if !fireAt.After(now) {
		return time.Time{}, false
	}
	return fireAt, true
}
