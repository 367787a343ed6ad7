// README: Pricing data model: service kinds, rate cards, requests and quotes.
package pricing

import (
	"math"
	"strings"
	"time"

	"petcare/internal/types"
)

type ServiceKind string

const (
	ServiceOvernight ServiceKind = "OVERNIGHT"
	ServiceWalk      ServiceKind = "WALK"
	ServiceHomeVisit ServiceKind = "HOME_VISIT"
)

// ServiceKinds lists every known kind in a stable order.
var ServiceKinds = []ServiceKind{ServiceOvernight, ServiceWalk, ServiceHomeVisit}

func (k ServiceKind) Valid() bool {
	switch k {
	case ServiceOvernight, ServiceWalk, ServiceHomeVisit:
		return true
	}
	return false
}

// PerVisit reports whether the service is priced per date+slot rather than per night.
func (k ServiceKind) PerVisit() bool {
	return k == ServiceWalk || k == ServiceHomeVisit
}

func (k ServiceKind) Label() string {
	switch k {
	case ServiceOvernight:
		return "Overnight stay"
	case ServiceWalk:
		return "Walk"
	case ServiceHomeVisit:
		return "Home visit"
	}
	return string(k)
}

type Species string

const (
	SpeciesDog Species = "DOG"
	SpeciesCat Species = "CAT"
)

type Pet struct {
	Species Species `json:"species"`
	Name    string  `json:"name,omitempty"`
}

// RateCard is one version of the monetary constants for a service kind.
// Cards are never edited; a price change is a new card with a later EffectiveFrom.
type RateCard struct {
	ID                types.ID    `json:"id"`
	Service           ServiceKind `json:"service"`
	EffectiveFrom     time.Time   `json:"effective_from"`
	Active            bool        `json:"active"`
	Currency          string      `json:"currency"`
	BasePrice         types.Money `json:"base_price"`
	AdditionalPet     types.Money `json:"additional_pet"`
	SpecialDayPrice   types.Money `json:"special_day_price"`
	TimeSurcharge     types.Money `json:"time_surcharge"`
	DistanceRatePerKm types.Money `json:"distance_rate_per_km"`
	FreeRadiusKm      float64     `json:"free_radius_km"`
}

func (c RateCard) Validate() error {
	if !c.Service.Valid() {
		return invalid("service", "unknown service %q", string(c.Service))
	}
	if len(c.Currency) != 3 {
		return invalid("currency", "must be a 3-letter code")
	}
	amounts := []struct {
		field string
		value types.Money
	}{
		{"base_price", c.BasePrice},
		{"additional_pet", c.AdditionalPet},
		{"special_day_price", c.SpecialDayPrice},
		{"time_surcharge", c.TimeSurcharge},
		{"distance_rate_per_km", c.DistanceRatePerKm},
	}
	for _, a := range amounts {
		if a.value.IsNegative() {
			return invalid(a.field, "must not be negative")
		}
	}
	if math.IsNaN(c.FreeRadiusKm) || math.IsInf(c.FreeRadiusKm, 0) || c.FreeRadiusKm < 0 {
		return invalid("free_radius_km", "must not be negative")
	}
	return nil
}

// Stay is the OVERNIGHT date selection. Dates are YYYY-MM-DD, times HH:MM.
type Stay struct {
	CheckIn     string `json:"check_in"`
	CheckOut    string `json:"check_out"`
	DropOffTime string `json:"drop_off_time,omitempty"`
	PickUpTime  string `json:"pick_up_time,omitempty"`
}

type Slot struct {
	Time     string           `json:"time"`
	Duration DurationSelector `json:"duration"`
}

// VisitDay is one date of a WALK or HOME_VISIT selection with its time slots.
type VisitDay struct {
	Date  string `json:"date"`
	Slots []Slot `json:"slots"`
}

type PricingRequest struct {
	Service ServiceKind `json:"service"`
	Pets    []Pet       `json:"pets"`
	Stay    *Stay       `json:"stay,omitempty"`
	Visits  []VisitDay  `json:"visits,omitempty"`
	// DistanceKm wins over Route when both are set.
	DistanceKm *float64     `json:"distance_km,omitempty"`
	Route      *types.Route `json:"route,omitempty"`
}

func (r PricingRequest) PetCount() int {
	return len(r.Pets)
}

// IsEmpty reports the "nothing selected yet" state: no pets or no dates.
func (r PricingRequest) IsEmpty() bool {
	if r.PetCount() == 0 {
		return true
	}
	switch {
	case r.Service == ServiceOvernight:
		return !r.hasStay()
	case r.Service.PerVisit():
		return r.slotCount() == 0
	default:
		return !r.hasStay() && r.slotCount() == 0
	}
}

func (r PricingRequest) hasStay() bool {
	return r.Stay != nil && strings.TrimSpace(r.Stay.CheckIn) != "" && strings.TrimSpace(r.Stay.CheckOut) != ""
}

func (r PricingRequest) slotCount() int {
	n := 0
	for _, d := range r.Visits {
		n += len(d.Slots)
	}
	return n
}

// Years returns every calendar year from the earliest to the latest selected date,
// skipping unparsable dates.
func (r PricingRequest) Years() []int {
	first, last := 0, 0
	add := func(s string) {
		d, err := parseDate(s)
		if err != nil {
			return
		}
		y := d.Year()
		if first == 0 || y < first {
			first = y
		}
		if y > last {
			last = y
		}
	}
	if r.Stay != nil {
		add(r.Stay.CheckIn)
		add(r.Stay.CheckOut)
	}
	for _, v := range r.Visits {
		add(v.Date)
	}
	if first == 0 {
		return nil
	}
	years := make([]int, 0, last-first+1)
	for y := first; y <= last; y++ {
		years = append(years, y)
	}
	return years
}

type LineItem struct {
	Description string      `json:"description"`
	Amount      types.Money `json:"amount"`
}

// Quote is the itemized price of a request. Total always equals the sum of LineItems.
type Quote struct {
	Service           ServiceKind `json:"service"`
	Currency          string      `json:"currency,omitempty"`
	RateCardID        types.ID    `json:"rate_card_id,omitempty"`
	LineItems         []LineItem  `json:"line_items"`
	Total             types.Money `json:"total"`
	DistanceKm        *float64    `json:"distance_km,omitempty"`
	DistanceEstimated bool        `json:"distance_estimated,omitempty"`
}

func EmptyQuote(service ServiceKind) Quote {
	return Quote{Service: service, LineItems: []LineItem{}}
}

// Balanced checks the total against the line items.
func (q Quote) Balanced() bool {
	total := types.Money{}
	for _, li := range q.LineItems {
		total = total.Add(li.Amount)
	}
	return total.Equal(q.Total)
}
