package notification

import (
	"context"

	"tuwi/models"
)

// Notifier announces committed bookings. Implementations may fail; callers
// treat every error as non-fatal.
type Notifier interface {
	BookingCreated(ctx context.Context, b models.Booking) error
}

// NewBookingEvent builds the event published for b.
func NewBookingEvent(eventType string, b models.Booking) models.BookingEvent {
	return models.BookingEvent{
		Type:        eventType,
		BookingID:   b.ID,
		Reference:   b.Reference,
		BraiderID:   b.BraiderID,
		ServiceID:   b.ServiceID,
		Date:        b.Date,
		Time:        b.Time,
		ClientName:  b.ClientName,
		BookingType: string(b.BookingType),
		TotalAmount: b.TotalAmount,
	}
}

// Noop drops every notification.
type Noop struct{}

func (Noop) BookingCreated(context.Context, models.Booking) error { return nil }
