// README: Reservation aggregate, status definitions and the confirmed quote snapshot.
package reservation

import (
	"time"

	"petcare/internal/modules/pricing"
	"petcare/internal/types"
)

type Status string

const (
	StatusNone      Status = "none"
	StatusDraft     Status = "draft"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

type Reservation struct {
	ID            types.ID               `json:"id"`
	CustomerID    types.ID               `json:"customer_id"`
	Service       pricing.ServiceKind    `json:"service"`
	Status        Status                 `json:"status"`
	StatusVersion int                    `json:"status_version"`
	Request       pricing.PricingRequest `json:"request"`
	PreviewTotal  types.Money            `json:"preview_total"`
	Currency      string                 `json:"currency"`
	CreatedAt     time.Time              `json:"created_at"`
	ConfirmedAt   *time.Time             `json:"confirmed_at,omitempty"`
	CancelledAt   *time.Time             `json:"cancelled_at,omitempty"`
	CancelReason  *string                `json:"cancel_reason,omitempty"`
	// Snapshot is set once the reservation is confirmed.
	Snapshot *Snapshot `json:"snapshot,omitempty"`
}

// Snapshot freezes the card, holidays and quote a reservation was confirmed with.
type Snapshot struct {
	ReservationID types.ID         `json:"reservation_id"`
	RateCard      pricing.RateCard `json:"rate_card"`
	// Holidays are the YYYY-MM-DD holidays of every year the request touched.
	Holidays  []string      `json:"holidays"`
	Quote     pricing.Quote `json:"quote"`
	CreatedAt time.Time     `json:"created_at"`
}

// Basis rebuilds the pricing inputs the snapshot was taken with.
func (s Snapshot) Basis() pricing.Basis {
	return pricing.Basis{RateCard: s.RateCard, Holidays: pricing.NewHolidaySet(s.Holidays...)}
}

type Event struct {
	ID            int64
	ReservationID types.ID
	FromStatus    Status
	ToStatus      Status
	ActorType     string
	ActorID       *types.ID
	CreatedAt     time.Time
}

// AllowedTransitions represents the reservation state flow as code.
var AllowedTransitions = map[Status][]Status{
	StatusDraft:     {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// Drift compares a stored confirmed total with a fresh re-price of the same snapshot.
type Drift struct {
	ReservationID types.ID    `json:"reservation_id"`
	Stored        types.Money `json:"stored"`
	Recomputed    types.Money `json:"recomputed"`
}

func (d Drift) Match() bool {
	return d.Stored.Equal(d.Recomputed)
}
