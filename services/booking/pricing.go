package booking

import (
	"math"

	"tuwi/models"
)

// Pricer computes a booking's total from the service row read inside the
// reservation.
type Pricer struct {
	// DefaultHomeServiceFee applies to home visits when the service has no fee of its own.
	DefaultHomeServiceFee float64
}

// Total is the service price plus the home service fee for domicilio bookings,
// rounded to cents.
func (p Pricer) Total(svc models.Service, bookingType models.BookingType) float64 {
	total := svc.Price
	if bookingType == models.BookingTypeDomicilio {
		fee := p.DefaultHomeServiceFee
		if svc.HomeServiceFee != nil {
			fee = *svc.HomeServiceFee
		}
		total += fee
	}
	return roundCents(total)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
