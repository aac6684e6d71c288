package models

import "time"

// CreateBookingPayload mirrors the JSON body of POST /bookings before validation.
// Every field is a plain string so type mismatches surface as validation errors.
type CreateBookingPayload struct {
	BraiderID      string `json:"braiderId" validate:"required"`
	ServiceID      string `json:"serviceId" validate:"required"`
	ClientName     string `json:"clientName" validate:"required"`
	ClientEmail    string `json:"clientEmail" validate:"required,email"`
	ClientPhone    string `json:"clientPhone" validate:"required,phone"`
	Date           string `json:"date" validate:"required,datetime=2006-01-02"`
	Time           string `json:"time" validate:"required,timeofday"`
	BookingType    string `json:"bookingType" validate:"required,oneof=domicilio trancista"`
	ClientAddress  string `json:"clientAddress" validate:"required_if=BookingType domicilio"`
	Notes          string `json:"notes" validate:"notesmax"`
	AvailabilityID string `json:"availabilityId"`
}

// BookingRequest is the canonical, validated form of a booking request.
type BookingRequest struct {
	BraiderID      BraiderID
	ServiceID      ServiceID
	ClientName     string
	ClientEmail    string
	ClientPhone    string
	Date           time.Time // midnight UTC of the calendar date
	Time           string    // HH:MM
	BookingType    BookingType
	ClientAddress  *string
	Notes          *string
	AvailabilityID *AvailabilityID
	ClientUserID   *string
	IdempotencyKey *string
}

// DateString formats Date as stored.
func (r BookingRequest) DateString() string {
	return r.Date.Format("2006-01-02")
}

// Reservation is what the atomic reservation hands back.
type Reservation struct {
	BookingID   BookingID `json:"bookingId"`
	Reference   string    `json:"reference"`
	TotalAmount float64   `json:"totalAmount"`
	Replayed    bool      `json:"-"` // an earlier booking with the same idempotency key was returned
}
