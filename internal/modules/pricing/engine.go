// README: Cost engine: turns a request and a rate card into an itemized quote.
package pricing

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"petcare/internal/types"
)

// additionalPetSpecialFactor is the premium on additional pets for per-visit
// services on special days. The first pet's premium is already in SpecialDayPrice.
var additionalPetSpecialFactor = decimal.RequireFromString("1.2")

// Calculate prices req with card. It is pure: the same input always yields the
// same quote, with line items in a fixed order.
//
// A request with no pets or no dates yields an empty quote, not an error.
func Calculate(req PricingRequest, card RateCard, holidays HolidaySet) (Quote, error) {
	if req.IsEmpty() {
		return EmptyQuote(req.Service), nil
	}
	if !req.Service.Valid() {
		return Quote{}, &NotFoundError{Service: req.Service}
	}
	if card.Service != req.Service {
		return Quote{}, invalid("service", "rate card %s prices %s, not %s", card.ID, card.Service, req.Service)
	}
	for i, p := range req.Pets {
		if p.Species != SpeciesDog && p.Species != SpeciesCat {
			return Quote{}, invalid(fmt.Sprintf("pets[%d].species", i), "must be DOG or CAT")
		}
	}

	var (
		items []LineItem
		err   error
	)
	if req.Service == ServiceOvernight {
		items, err = overnightItems(req, card, holidays)
	} else {
		items, err = visitItems(req, card, holidays)
	}
	if err != nil {
		return Quote{}, err
	}
	if items == nil {
		items = []LineItem{}
	}

	q := Quote{
		Service:    req.Service,
		Currency:   card.Currency,
		RateCardID: card.ID,
		LineItems:  items,
	}
	for _, li := range items {
		q.Total = q.Total.Add(li.Amount)
	}
	if req.DistanceKm != nil {
		km := *req.DistanceKm
		q.DistanceKm = &km
	}
	return q, nil
}

func overnightItems(req PricingRequest, card RateCard, holidays HolidaySet) ([]LineItem, error) {
	stay := req.Stay
	checkIn, err := parseDate(stay.CheckIn)
	if err != nil {
		return nil, invalid("stay.check_in", "%q is not a YYYY-MM-DD date", stay.CheckIn)
	}
	checkOut, err := parseDate(stay.CheckOut)
	if err != nil {
		return nil, invalid("stay.check_out", "%q is not a YYYY-MM-DD date", stay.CheckOut)
	}
	nights := daysBetween(checkIn, checkOut)
	if nights <= 0 {
		return nil, invalid("stay.check_out", "must be after check-in")
	}

	special := 0
	for i := 0; i < nights; i++ {
		if IsSpecialDay(checkIn.AddDate(0, 0, i), holidays) {
			special++
		}
	}
	regular := nights - special
	label := req.Service.Label()

	var items []LineItem
	items = appendItem(items, fmt.Sprintf("%s, regular nights: %d × %s", label, regular, card.BasePrice),
		card.BasePrice.MulInt(int64(regular)))
	items = appendItem(items, fmt.Sprintf("%s, weekend/holiday nights: %d × %s", label, special, card.SpecialDayPrice),
		card.SpecialDayPrice.MulInt(int64(special)))

	if extra := req.PetCount() - 1; extra > 0 {
		items = appendItem(items, fmt.Sprintf("Additional pets: %d nights × %d pets × %s", nights, extra, card.AdditionalPet),
			card.AdditionalPet.MulInt(int64(nights*extra)))
	}

	if stay.DropOffTime != "" {
		outside, err := IsOutsideNormalHours(stay.DropOffTime)
		if err != nil {
			return nil, invalid("stay.drop_off_time", "%q is not a valid HH:MM time", stay.DropOffTime)
		}
		if outside {
			items = appendItem(items, fmt.Sprintf("Drop-off outside normal hours (%s)", stay.DropOffTime), card.TimeSurcharge)
		}
	}
	if stay.PickUpTime != "" {
		outside, err := IsOutsideNormalHours(stay.PickUpTime)
		if err != nil {
			return nil, invalid("stay.pick_up_time", "%q is not a valid HH:MM time", stay.PickUpTime)
		}
		if outside {
			items = appendItem(items, fmt.Sprintf("Pick-up outside normal hours (%s)", stay.PickUpTime), card.TimeSurcharge)
		}
	}
	return items, nil
}

func visitItems(req PricingRequest, card RateCard, holidays HolidaySet) ([]LineItem, error) {
	var regularUnits, specialUnits, outsideSlots, visits int
	for i, day := range req.Visits {
		if len(day.Slots) == 0 {
			continue
		}
		date, err := parseDate(day.Date)
		if err != nil {
			return nil, invalid(fmt.Sprintf("visits[%d].date", i), "%q is not a YYYY-MM-DD date", day.Date)
		}
		special := IsSpecialDay(date, holidays)
		for j, slot := range day.Slots {
			units, err := ResolveDuration(slot.Duration)
			if err != nil {
				return nil, invalid(fmt.Sprintf("visits[%d].slots[%d].duration", i, j), "%s", validationMessage(err))
			}
			outside, err := IsOutsideNormalHours(slot.Time)
			if err != nil {
				return nil, invalid(fmt.Sprintf("visits[%d].slots[%d].time", i, j), "%q is not a valid HH:MM time", slot.Time)
			}
			if special {
				specialUnits += units
			} else {
				regularUnits += units
			}
			if outside {
				outsideSlots++
			}
			visits++
		}
	}

	label := req.Service.Label()
	extra := req.PetCount() - 1
	specialAdditional := card.AdditionalPet.Decimal().Mul(additionalPetSpecialFactor)

	var items []LineItem
	items = appendItem(items, fmt.Sprintf("%s, regular days: %d × %s", label, regularUnits, card.BasePrice),
		card.BasePrice.MulInt(int64(regularUnits)))
	items = appendItem(items, fmt.Sprintf("%s, weekend/holiday: %d × %s", label, specialUnits, card.SpecialDayPrice),
		card.SpecialDayPrice.MulInt(int64(specialUnits)))
	if extra > 0 {
		items = appendItem(items, fmt.Sprintf("Additional pets, regular days: %d × %s", regularUnits*extra, card.AdditionalPet),
			card.AdditionalPet.MulInt(int64(regularUnits*extra)))
		items = appendItem(items, fmt.Sprintf("Additional pets, weekend/holiday: %d × %s", specialUnits*extra, specialAdditional.StringFixed(types.MoneyScale)),
			types.NewMoney(specialAdditional.Mul(decimal.NewFromInt(int64(specialUnits*extra)))))
	}
	items = appendItem(items, fmt.Sprintf("Outside normal hours: %d × %s", outsideSlots, card.TimeSurcharge),
		card.TimeSurcharge.MulInt(int64(outsideSlots)))

	if req.DistanceKm != nil {
		km := *req.DistanceKm
		if math.IsNaN(km) || math.IsInf(km, 0) {
			return nil, invalid("distance_km", "must be a finite number")
		}
		if km < 0 {
			return nil, invalid("distance_km", "must not be negative")
		}
		items = appendItem(items,
			fmt.Sprintf("Distance surcharge: %s km × %s × %d visits", excessKm(card, km).StringFixed(2), card.DistanceRatePerKm, visits),
			DistanceSurcharge(card, km, visits))
	}
	return items, nil
}

// appendItem drops zero amounts so every emitted line item is positive.
func appendItem(items []LineItem, description string, amount types.Money) []LineItem {
	if !amount.IsPositive() {
		return items
	}
	return append(items, LineItem{Description: description, Amount: amount})
}

func validationMessage(err error) string {
	if ve, ok := err.(*ValidationError); ok {
		return ve.Message
	}
	return err.Error()
}
