package booking

import (
	"net/http"

	"museumvisit/internal/pkg/response"
	"museumvisit/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.CreateBooking)
	rg.GET("/bookings/:id", h.GetBooking)
	rg.POST("/bookings/:id/approve", h.ApproveBooking)
	rg.POST("/bookings/:id/cancel", h.CancelBooking)
	rg.GET("/slots/availability", h.SlotAvailability)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid request body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation, "missing required fields", details)
		return
	}

	result, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		switch err {
		case ErrValidation:
			response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid booking request")
		case ErrCapacityExceeded:
			response.Error(c, http.StatusConflict, response.CodeCapacityExceeded, "slot capacity exceeded for the selected date and window")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to create booking")
		}
		return
	}

	response.Success(c, http.StatusCreated, result)
}

func (h *Handler) GetBooking(c *gin.Context) {
	b, err := h.service.GetDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch err {
		case ErrNotFound:
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "booking not found")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to load booking")
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) ApproveBooking(c *gin.Context) {
	b, err := h.service.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch err {
		case ErrNotFound:
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "booking not found")
		case ErrInvalidStatusTransition:
			response.Error(c, http.StatusConflict, response.CodeInvalidTransition, "booking cannot be approved from its current status")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to approve booking")
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking_id": b.ID, "status": b.Status})
}

func (h *Handler) CancelBooking(c *gin.Context) {
	// reason body is optional; "reject" flows send one
	var req CancelRequest
	_ = c.ShouldBindJSON(&req)

	b, err := h.service.Cancel(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		switch err {
		case ErrNotFound:
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "booking not found")
		case ErrInvalidStatusTransition:
			response.Error(c, http.StatusConflict, response.CodeInvalidTransition, "booking cannot be cancelled from its current status")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to cancel booking")
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking_id": b.ID, "status": b.Status})
}

func (h *Handler) SlotAvailability(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "date query parameter is required")
		return
	}

	avail, err := h.service.Availability(c.Request.Context(), date)
	if err != nil {
		switch err {
		case ErrValidation:
			response.Error(c, http.StatusBadRequest, response.CodeValidation, "date must be formatted YYYY-MM-DD")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to compute availability")
		}
		return
	}
	response.Success(c, http.StatusOK, avail)
}
