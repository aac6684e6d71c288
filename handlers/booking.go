package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tuwi/middleware"
	"tuwi/models"
	"tuwi/services/booking"
	"tuwi/services/ratelimit"
	"tuwi/utils"
)

const (
	idempotencyHeader       = "Idempotency-Key"
	maxIdempotencyKeyLength = 128
)

// BookingDispatcher hands a committed booking to the notifier without waiting.
type BookingDispatcher interface {
	Dispatch(b models.Booking)
}

// BookingHandler serves the booking workflow and its read endpoints.
type BookingHandler struct {
	Limiter     ratelimit.Limiter
	Validator   *booking.Validator
	Reservation booking.ReservationService
	Catalog     booking.CatalogService
	Notifier    BookingDispatcher
}

// CreateBookingResponse is the body of a successful POST /bookings.
type CreateBookingResponse struct {
	Success     bool             `json:"success"`
	BookingID   models.BookingID `json:"bookingId"`
	TotalAmount float64          `json:"totalAmount"`
	Reference   string           `json:"reference"`
}

// CreateBookingHandler runs rate limiting, validation, the atomic reservation
// and the detached notification, in that order.
func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	logger := getLogger(c)
	ctx := c.Request.Context()

	// Every attempt counts, valid or not.
	ip := middleware.ClientIP(c)
	decision, err := ratelimit.Enforce(ctx, h.Limiter, ip, ratelimit.ActionCreateBooking)
	if err != nil {
		if errors.Is(err, ratelimit.ErrLimitExceeded) {
			logger.Warn("Booking rate limit exceeded", zap.String("ip", ip), zap.Int("count", decision.Count))
			if decision.RetryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(decision.RetryAfter.Seconds()))))
			}
		} else {
			logger.Error("Rate limit check failed", zap.String("ip", ip), zap.Error(err))
		}
		h.fail(c, err)
		return
	}

	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil || raw == nil {
		logger.Info("Invalid booking payload", zap.Error(err))
		utils.JSONError(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	req, err := h.Validator.ValidateMap(raw)
	if err != nil {
		logger.Info("Booking validation failed", zap.Error(err))
		h.fail(c, err)
		return
	}

	if key := strings.TrimSpace(c.GetHeader(idempotencyHeader)); key != "" {
		if len(key) > maxIdempotencyKeyLength {
			utils.JSONError(c, http.StatusBadRequest, msgInvalidIdempotent)
			return
		}
		req.IdempotencyKey = &key
	}
	if userID := c.GetString(middleware.ClientUserIDKey); userID != "" {
		req.ClientUserID = &userID
	}

	outcome, err := h.Reservation.Reserve(ctx, req)
	if err != nil {
		var rerr *booking.ReservationError
		if errors.As(err, &rerr) {
			logger.Info("Booking rejected",
				zap.String("code", rerr.Code),
				zap.String("braiderId", req.BraiderID.String()),
				zap.String("date", req.DateString()),
				zap.String("time", req.Time))
		} else {
			logger.Error("Reservation failed", zap.String("braiderId", req.BraiderID.String()), zap.Error(err))
		}
		h.fail(c, err)
		return
	}

	status := http.StatusCreated
	if outcome.Replayed {
		status = http.StatusOK
	} else {
		h.Notifier.Dispatch(outcome.Booking)
	}

	res := outcome.Reservation()
	logger.Info("Booking created",
		zap.String("bookingId", res.BookingID.String()),
		zap.String("reference", res.Reference),
		zap.Bool("replayed", res.Replayed))
	c.JSON(status, CreateBookingResponse{
		Success:     true,
		BookingID:   res.BookingID,
		TotalAmount: res.TotalAmount,
		Reference:   res.Reference,
	})
}

func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	b, err := h.Catalog.GetBooking(c.Request.Context(), models.BookingID(c.Param("id")))
	if err != nil {
		if !errors.Is(err, booking.ErrNotFound) {
			getLogger(c).Error("Failed to load booking", zap.String("bookingId", c.Param("id")), zap.Error(err))
		}
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "booking": b})
}

func (h *BookingHandler) fail(c *gin.Context, err error) {
	status, msg := statusForError(err)
	utils.JSONError(c, status, msg)
}
