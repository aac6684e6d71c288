// File: database/repository/reservation/interface.go
package reservationRepo

import (
	"context"
	"errors"

	"tuwi/models"
)

var (
	ErrServiceNotFound   = errors.New("service not found")
	ErrAvailabilityTaken = errors.New("availability slot already booked")
	ErrBookingConflict   = errors.New("braider already has a booking at that date and time")
	ErrNotFound          = errors.New("record not found")
)

// PriceFunc computes the amount owed for a booking of svc. It runs inside the
// reservation's unit of work, against the service row read there.
type PriceFunc func(svc models.Service, bookingType models.BookingType) float64

// ReserveCommand carries a fully built booking (everything except TotalAmount).
type ReserveCommand struct {
	Booking models.Booking
	Price   PriceFunc
}

// ReserveResult is the committed booking. Replayed is set when an earlier
// booking with the same idempotency key was returned instead of a new insert.
type ReserveResult struct {
	Booking  models.Booking
	Replayed bool
}

// ReservationRepository is the only write path for bookings and the only code
// allowed to flip AvailabilitySlot.IsBooked.
type ReservationRepository interface {
	// Reserve performs lookup, conflict check, insert and slot consumption as one
	// indivisible unit of work. Callers must never split it into check + write.
	Reserve(ctx context.Context, cmd ReserveCommand) (*ReserveResult, error)

	GetBooking(ctx context.Context, id models.BookingID) (*models.Booking, error)
	GetAvailability(ctx context.Context, id models.AvailabilityID) (*models.AvailabilitySlot, error)
	ListAvailability(ctx context.Context, braiderID models.BraiderID, date string) ([]models.AvailabilitySlot, error)
	OpenSlots(ctx context.Context, slots []models.AvailabilitySlot) error

	CreateService(ctx context.Context, svc *models.Service) error
	ListServices(ctx context.Context, braiderID models.BraiderID) ([]models.Service, error)

	EnsureSchema(ctx context.Context) error
	Ping(ctx context.Context) error
}

// slotMatches reports whether slot can serve the requested booking.
func slotMatches(slot models.AvailabilitySlot, b models.Booking) bool {
	return slot.BraiderID == b.BraiderID && slot.Date == b.Date && slot.StartTime == b.Time
}
