// README: Rate card handlers: list versions and publish a new one (admin).
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"petcare/internal/modules/pricing"
	"petcare/internal/types"
)

type RateCardService interface {
	RateCards(ctx context.Context) ([]pricing.RateCard, error)
	PublishRateCard(ctx context.Context, card pricing.RateCard) (pricing.RateCard, error)
}

type RateCardHandler struct {
	svc RateCardService
	loc *time.Location
}

// NewRateCardHandler interprets date-only effective_from values in loc.
func NewRateCardHandler(svc RateCardService, loc *time.Location) *RateCardHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &RateCardHandler{svc: svc, loc: loc}
}

type publishRateCardReq struct {
	Service           string      `json:"service"`
	EffectiveFrom     string      `json:"effective_from"`
	Active            *bool       `json:"active"`
	Currency          string      `json:"currency"`
	BasePrice         types.Money `json:"base_price"`
	AdditionalPet     types.Money `json:"additional_pet"`
	SpecialDayPrice   types.Money `json:"special_day_price"`
	TimeSurcharge     types.Money `json:"time_surcharge"`
	DistanceRatePerKm types.Money `json:"distance_rate_per_km"`
	FreeRadiusKm      float64     `json:"free_radius_km"`
}

func (h *RateCardHandler) List(c *gin.Context) {
	cards, err := h.svc.RateCards(c.Request.Context())
	if err != nil {
		writePricingError(c, err)
		return
	}
	if cards == nil {
		cards = []pricing.RateCard{}
	}
	writeJSON(c, http.StatusOK, gin.H{"rate_cards": cards})
}

func (h *RateCardHandler) Publish(c *gin.Context) {
	var req publishRateCardReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	from, err := h.parseEffectiveFrom(req.EffectiveFrom)
	if err != nil {
		writeJSON(c, http.StatusBadRequest, errorResponse{Error: "must be RFC3339 or YYYY-MM-DD", Field: "effective_from"})
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	card, err := h.svc.PublishRateCard(c.Request.Context(), pricing.RateCard{
		Service:           pricing.ServiceKind(req.Service),
		EffectiveFrom:     from,
		Active:            active,
		Currency:          req.Currency,
		BasePrice:         req.BasePrice,
		AdditionalPet:     req.AdditionalPet,
		SpecialDayPrice:   req.SpecialDayPrice,
		TimeSurcharge:     req.TimeSurcharge,
		DistanceRatePerKm: req.DistanceRatePerKm,
		FreeRadiusKm:      req.FreeRadiusKm,
	})
	if err != nil {
		writePricingError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, card)
}

func (h *RateCardHandler) parseEffectiveFrom(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, h.loc)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
