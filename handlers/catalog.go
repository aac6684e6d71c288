package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tuwi/models"
	"tuwi/services/booking"
	"tuwi/utils"
)

func (h *BookingHandler) ListAvailabilityHandler(c *gin.Context) {
	braiderID := models.BraiderID(c.Param("id"))
	slots, err := h.Catalog.ListAvailability(c.Request.Context(), braiderID, c.Query("date"))
	if err != nil {
		h.logUnexpected(c, "Failed to list availability", err)
		h.fail(c, err)
		return
	}
	if slots == nil {
		slots = []models.AvailabilitySlot{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "availability": slots})
}

func (h *BookingHandler) GetAvailabilityHandler(c *gin.Context) {
	slot, err := h.Catalog.GetAvailability(c.Request.Context(), models.AvailabilityID(c.Param("id")))
	if err != nil {
		h.logUnexpected(c, "Failed to load availability slot", err)
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "availability": slot})
}

// OpenSlotsHandler publishes new slots for the authenticated braider.
func (h *BookingHandler) OpenSlotsHandler(c *gin.Context) {
	var req models.OpenSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		getLogger(c).Info("Invalid open slots payload", zap.Error(err))
		utils.JSONError(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	slots, err := h.Catalog.OpenSlots(c.Request.Context(), models.BraiderID(c.Param("id")), req)
	if err != nil {
		h.logUnexpected(c, "Failed to open slots", err)
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "availability": slots})
}

func (h *BookingHandler) CreateServiceHandler(c *gin.Context) {
	var req models.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		getLogger(c).Info("Invalid service payload", zap.Error(err))
		utils.JSONError(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	svc, err := h.Catalog.CreateService(c.Request.Context(), models.BraiderID(c.Param("id")), req)
	if err != nil {
		h.logUnexpected(c, "Failed to create service", err)
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "service": svc})
}

func (h *BookingHandler) ListServicesHandler(c *gin.Context) {
	services, err := h.Catalog.ListServices(c.Request.Context(), models.BraiderID(c.Param("id")))
	if err != nil {
		h.logUnexpected(c, "Failed to list services", err)
		h.fail(c, err)
		return
	}
	if services == nil {
		services = []models.Service{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "services": services})
}

// logUnexpected logs infrastructure failures; client errors are not logged here.
func (h *BookingHandler) logUnexpected(c *gin.Context, msg string, err error) {
	var verr *booking.ValidationError
	if errors.As(err, &verr) || errors.Is(err, booking.ErrNotFound) {
		return
	}
	getLogger(c).Error(msg, zap.String("id", c.Param("id")), zap.Error(err))
}
