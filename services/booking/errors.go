package booking

import (
	"errors"
	"fmt"
)

// Reservation outcome codes returned to clients.
const (
	CodeServiceNotFound   = "SERVICE_NOT_FOUND"
	CodeAvailabilityTaken = "AVAILABILITY_TAKEN"
	CodeBookingConflict   = "BOOKING_CONFLICT"
)

const (
	msgServiceNotFound   = "Serviço não encontrado"
	msgAvailabilityTaken = "Este horário já está ocupado. Escolha outro horário."
	msgBookingConflict   = "Este horário já está ocupado. Já existe uma reserva para esta trancista neste horário."
)

var ErrNotFound = errors.New("not found")

// ReservationError is an expected business outcome of a reservation attempt.
type ReservationError struct {
	Code    string
	Message string
}

func (e *ReservationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newReservationError(code, msg string) error {
	return &ReservationError{Code: code, Message: msg}
}

// ValidationError names the first field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
