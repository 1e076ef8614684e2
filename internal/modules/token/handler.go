package token

import (
	"net/http"

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
	rg.GET("/tokens/:tokenID", h.FetchToken)
	rg.PUT("/tokens/:tokenID", h.CompleteToken)
}

func (h *Handler) FetchToken(c *gin.Context) {
	result, err := h.service.Fetch(c.Request.Context(), c.Param("tokenID"))
	if err != nil {
		switch err {
		case ErrNotFound:
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "registration link not found")
		case ErrBookingCancelled:
			response.Error(c, http.StatusConflict, response.CodeBookingCancelled, "the booking behind this link was cancelled")
		case ErrLinkExpired:
			response.Error(c, http.StatusGone, response.CodeLinkExpired, "this registration link has expired")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to load registration link")
		}
		return
	}
	response.Success(c, http.StatusOK, result)
}

func (h *Handler) CompleteToken(c *gin.Context) {
	var req CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid request body")
		return
	}

	result, err := h.service.Complete(c.Request.Context(), c.Param("tokenID"), req)
	if err != nil {
		switch err {
		case ErrNotFound:
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "registration link not found")
		case ErrValidation:
			response.Error(c, http.StatusBadRequest, response.CodeValidation, "missing required fields")
		case ErrBookingCancelled:
			response.Error(c, http.StatusConflict, response.CodeBookingCancelled, "the booking behind this link was cancelled")
		case ErrLinkExpired:
			response.Error(c, http.StatusGone, response.CodeLinkExpired, "this registration link has expired")
		case ErrAlreadySubmitted:
			response.Error(c, http.StatusConflict, response.CodeAlreadySubmitted, "this registration was already submitted")
		case ErrPrimaryVisitorMissing:
			response.Error(c, http.StatusConflict, response.CodePrimaryVisitorMissing, "the booking's primary visitor has not registered yet")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to complete registration")
		}
		return
	}
	response.Success(c, http.StatusOK, result)
}
