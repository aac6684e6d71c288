package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	JWTSecret         []byte
	MaxRequestsPerMin int
	CORSOrigins       []string

	// Booking endpoints
	CreateBookingHandler gin.HandlerFunc
	GetBookingHandler    gin.HandlerFunc

	// Availability endpoints
	ListAvailabilityHandler gin.HandlerFunc
	GetAvailabilityHandler  gin.HandlerFunc
	OpenSlotsHandler        gin.HandlerFunc

	// Service catalogue endpoints
	CreateServiceHandler gin.HandlerFunc
	ListServicesHandler  gin.HandlerFunc

	HealthHandler gin.HandlerFunc
}

func NewHandlerBundle(h *BookingHandler, jwtSecret []byte, maxRequestsPerMin int, corsOrigins []string) *HandlerBundle {
	return &HandlerBundle{
		JWTSecret:         jwtSecret,
		MaxRequestsPerMin: maxRequestsPerMin,
		CORSOrigins:       corsOrigins,

		CreateBookingHandler: h.CreateBookingHandler,
		GetBookingHandler:    h.GetBookingHandler,

		ListAvailabilityHandler: h.ListAvailabilityHandler,
		GetAvailabilityHandler:  h.GetAvailabilityHandler,
		OpenSlotsHandler:        h.OpenSlotsHandler,

		CreateServiceHandler: h.CreateServiceHandler,
		ListServicesHandler:  h.ListServicesHandler,

		HealthHandler: HealthHandler,
	}
}
