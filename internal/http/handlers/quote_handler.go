// README: Quote handler: live price preview for a booking selection.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"petcare/internal/modules/pricing"
)

type Quoter interface {
	Estimate(ctx context.Context, req pricing.PricingRequest) (pricing.Quote, error)
}

type QuoteHandler struct {
	pricing Quoter
}

func NewQuoteHandler(svc Quoter) *QuoteHandler {
	return &QuoteHandler{pricing: svc}
}

// Create prices the selection. Incomplete selections return an empty quote with 200.
func (h *QuoteHandler) Create(c *gin.Context) {
	var req pricing.PricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	q, err := h.pricing.Estimate(c.Request.Context(), req)
	if err != nil {
		writePricingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, q)
}
