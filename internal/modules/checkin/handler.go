package checkin

import (
	"net/http"

	"museumvisit/internal/modules/qr"
	"museumvisit/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/checkin", h.CheckIn)
}

func (h *Handler) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "payload is required")
		return
	}

	summary, err := h.service.CheckIn(c.Request.Context(), req.Payload)
	if err != nil {
		switch err {
		case qr.ErrNotFound:
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "QR payload does not match any visitor")
		case qr.ErrBookingCancelled:
			response.Error(c, http.StatusConflict, response.CodeBookingCancelled, "the visitor's booking was cancelled")
		case qr.ErrAlreadyUsed:
			response.Error(c, http.StatusConflict, response.CodeAlreadyUsed, "this QR code was already used")
		case qr.ErrAlreadyCheckedIn:
			response.Error(c, http.StatusConflict, response.CodeAlreadyCheckedIn, "this visitor already checked in")
		case qr.ErrNotApproved:
			response.Error(c, http.StatusConflict, response.CodeValidation, "this visitor is not approved for check-in yet")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to process check-in")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"visitor": summary})
}
