package booking

import (
	"context"

	"tuwi/models"
)

// ReservationService commits bookings.
type ReservationService interface {
	// Reserve runs the atomic reservation for a validated request. Business
	// outcomes come back as *ReservationError; anything else is internal.
	Reserve(ctx context.Context, req *models.BookingRequest) (*Outcome, error)
}

// CatalogService serves the read side and the provider-managed catalogue.
type CatalogService interface {
	GetBooking(ctx context.Context, id models.BookingID) (*models.Booking, error)
	GetAvailability(ctx context.Context, id models.AvailabilityID) (*models.AvailabilitySlot, error)
	ListAvailability(ctx context.Context, braiderID models.BraiderID, date string) ([]models.AvailabilitySlot, error)
	OpenSlots(ctx context.Context, braiderID models.BraiderID, req models.OpenSlotsRequest) ([]models.AvailabilitySlot, error)
	CreateService(ctx context.Context, braiderID models.BraiderID, req models.CreateServiceRequest) (*models.Service, error)
	ListServices(ctx context.Context, braiderID models.BraiderID) ([]models.Service, error)
}

// Outcome is a committed booking. Replayed marks an idempotent retry that
// returned an earlier booking.
type Outcome struct {
	Booking  models.Booking
	Replayed bool
}

// Reservation is the public part of the outcome.
func (o *Outcome) Reservation() models.Reservation {
	return models.Reservation{
		BookingID:   o.Booking.ID,
		Reference:   o.Booking.Reference,
		TotalAmount: o.Booking.TotalAmount,
		Replayed:    o.Replayed,
	}
}
