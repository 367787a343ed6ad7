package pricing

import (
	"github.com/shopspring/decimal"

	"petcare/internal/types"
)

// DistanceSurcharge charges every visit for each km beyond the card's free radius.
func DistanceSurcharge(card RateCard, distanceKm float64, visits int) types.Money {
	excess := excessKm(card, distanceKm)
	if !excess.IsPositive() || visits <= 0 {
		return types.Money{}
	}
	return card.DistanceRatePerKm.Mul(excess.Mul(decimal.NewFromInt(int64(visits))))
}

func excessKm(card RateCard, distanceKm float64) decimal.Decimal {
	return decimal.NewFromFloat(distanceKm).Sub(decimal.NewFromFloat(card.FreeRadiusKm))
}
