package tasks

import (
	"testing"
	"time"

	"tuwi/models"
)

func TestBookingTasksRoundTrip(t *testing.T) {
	evt := models.BookingEvent{
		Type:        models.EventBookingCreated,
		BookingID:   "b-1",
		BraiderID:   "braider-1",
		Date:        "2025-03-10",
		Time:        "10:00",
		TotalAmount: 45,
	}

	created, opts, err := NewBookingCreatedTask(evt)
	if err != nil {
		t.Fatalf("created task: %v", err)
	}
	if created.Type() != TypeBookingCreated || len(opts) == 0 {
		t.Fatalf("unexpected task %s with %d options", created.Type(), len(opts))
	}

	reminder, _, err := NewBookingReminderTask(evt, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("reminder task: %v", err)
	}
	got, err := ParseBookingEvent(reminder)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != evt {
		t.Fatalf("got %+v, want %+v", got, evt)
	}
}
