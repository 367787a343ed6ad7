// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"petcare/internal/modules/holiday"
	"petcare/internal/modules/pricing"
	"petcare/internal/modules/reservation"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// isValidID accepts the uuid ids the services generate and the short seed ids.
func isValidID(v string) bool {
	if v == "" || len(v) > 64 {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '-' || c == '_' {
			continue
		}
		return false
	}
	return true
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writePricingError maps caller faults to 400 with the message verbatim and an
// unavailable service to 404.
func writePricingError(c *gin.Context, err error) {
	var ve *pricing.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(c, http.StatusBadRequest, errorResponse{Error: ve.Message, Field: ve.Field})
	case errors.Is(err, pricing.ErrNotFound):
		writeError(c, http.StatusNotFound, "service unavailable")
	default:
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeReservationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, reservation.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, reservation.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, reservation.ErrInvalidState), errors.Is(err, reservation.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writePricingError(c, err)
	}
}

func writeHolidayError(c *gin.Context, err error) {
	if errors.Is(err, holiday.ErrBadRequest) {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	_ = c.Error(err)
	writeError(c, http.StatusInternalServerError, "internal error")
}
