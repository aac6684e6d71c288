package handlers

import (
	"errors"
	"net/http"

	"tuwi/services/booking"
	"tuwi/services/ratelimit"
	"tuwi/utils"
)

const (
	msgInvalidRequest    = "Pedido inválido"
	msgTooManyAttempts   = "Demasiadas tentativas de reserva. Tente novamente mais tarde."
	msgNotFound          = "Não encontrado"
	msgInvalidIdempotent = "Cabeçalho Idempotency-Key inválido"
)

// statusForError is the single place where errors become HTTP statuses.
// Anything unrecognised is a 500 with a generic message.
func statusForError(err error) (int, string) {
	var verr *booking.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, verr.Message
	}

	var rerr *booking.ReservationError
	if errors.As(err, &rerr) {
		switch rerr.Code {
		case booking.CodeServiceNotFound:
			return http.StatusNotFound, rerr.Message
		case booking.CodeAvailabilityTaken, booking.CodeBookingConflict:
			return http.StatusConflict, rerr.Message
		}
	}

	switch {
	case errors.Is(err, ratelimit.ErrLimitExceeded):
		return http.StatusTooManyRequests, msgTooManyAttempts
	case errors.Is(err, booking.ErrNotFound):
		return http.StatusNotFound, msgNotFound
	}
	return http.StatusInternalServerError, utils.MsgInternal
}
