package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"tuwi/models"
)

const (
	TypeBookingCreated  = "booking:created"
	TypeBookingReminder = "booking:reminder"
)

// NewBookingCreatedTask wraps a created-booking event. The task id is derived
// from the booking so a replayed request cannot enqueue it twice.
func NewBookingCreatedTask(evt models.BookingEvent) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(evt)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingCreated, b)
	opts := []asynq.Option{
		asynq.TaskID(fmt.Sprintf("%s:%s", TypeBookingCreated, evt.BookingID)),
		asynq.MaxRetry(5),
	}
	return task, opts, nil
}

// NewBookingReminderTask schedules a reminder event for fireAt.
func NewBookingReminderTask(evt models.BookingEvent, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(evt)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID(fmt.Sprintf("%s:%s", TypeBookingReminder, evt.BookingID)),
		asynq.MaxRetry(3),
	}
	return task, opts, nil
}

// ParseBookingEvent decodes the payload of either booking task.
func ParseBookingEvent(t *asynq.Task) (models.BookingEvent, error) {
	var evt models.BookingEvent
	if err := json.Unmarshal(t.Payload(), &evt); err != nil {
		return evt, fmt.Errorf("decode %s payload: %w", t.Type(), err)
	}
	return evt, nil
}
