// README: Reservation service implements state transitions, quote snapshots and reconciliation.
package reservation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"petcare/internal/modules/pricing"
	"petcare/internal/types"
)

var (
	ErrInvalidState = errors.New("invalid state transition")
	ErrNotFound     = errors.New("reservation not found")
	ErrConflict     = errors.New("reservation state conflict")
	ErrBadRequest   = errors.New("bad request")
)

// TopicConfirmed is the default topic for reservation.confirmed events.
const TopicConfirmed = "reservation.confirmed"

type Repository interface {
	Create(ctx context.Context, r *Reservation) error
	Get(ctx context.Context, id types.ID) (*Reservation, error)
	UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, reason *string) (bool, error)
	Confirm(ctx context.Context, id types.ID, version int, snap Snapshot) (bool, error)
	GetSnapshot(ctx context.Context, id types.ID) (*Snapshot, error)
	AppendEvent(ctx context.Context, e *Event) error
	ListConfirmed(ctx context.Context, limit int) ([]Reservation, error)
}

type Pricing interface {
	Estimate(ctx context.Context, req pricing.PricingRequest) (pricing.Quote, error)
	EstimateWithBasis(ctx context.Context, req pricing.PricingRequest) (pricing.Quote, pricing.Basis, error)
	QuoteWithBasis(ctx context.Context, req pricing.PricingRequest, basis pricing.Basis) (pricing.Quote, error)
}

// Publisher delivers domain events; infra.KafkaPublisher in production.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload []byte, headers map[string]string) error
}

type Service struct {
	store     Repository
	pricing   Pricing
	publisher Publisher
	topic     string
	log       *zap.Logger
	now       func() time.Time
}

// NewService wires the reservation service. publisher may be nil, in which case
// confirmations are not announced.
func NewService(store Repository, pricer Pricing, publisher Publisher, topic string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if topic == "" {
		topic = TopicConfirmed
	}
	return &Service{
		store:     store,
		pricing:   pricer,
		publisher: publisher,
		topic:     topic,
		log:       log.Named("reservation"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type CreateCommand struct {
	CustomerID types.ID
	Request    pricing.PricingRequest
}

type ConfirmCommand struct {
	ReservationID types.ID
	ActorID       types.ID
}

type CancelCommand struct {
	ReservationID types.ID
	ActorType     string
	ActorID       types.ID
	Reason        string
}

// Create stores a draft priced against the live catalog. Pricing errors are returned
// unchanged so callers can tell caller input from configuration faults.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Reservation, error) {
	if cmd.CustomerID == "" {
		return nil, fmt.Errorf("%w: customer is required", ErrBadRequest)
	}
	if cmd.Request.IsEmpty() {
		return nil, fmt.Errorf("%w: select pets and dates before booking", ErrBadRequest)
	}
	preview, err := s.pricing.Estimate(ctx, cmd.Request)
	if err != nil {
		return nil, err
	}

	now := s.now()
	r := &Reservation{
		ID:            types.NewID(),
		CustomerID:    cmd.CustomerID,
		Service:       cmd.Request.Service,
		Status:        StatusDraft,
		StatusVersion: 0,
		Request:       cmd.Request,
		PreviewTotal:  preview.Total,
		Currency:      preview.Currency,
		CreatedAt:     now,
	}
	// Distance resolved for the preview is pinned so confirmation prices the same route.
	if r.Request.DistanceKm == nil && preview.DistanceKm != nil {
		km := *preview.DistanceKm
		r.Request.DistanceKm = &km
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}
	s.appendEvent(ctx, &Event{
		ReservationID: r.ID,
		FromStatus:    StatusNone,
		ToStatus:      StatusDraft,
		ActorType:     "customer",
		ActorID:       &cmd.CustomerID,
		CreatedAt:     now,
	})
	return r, nil
}

// Confirm prices the draft with the card and holidays in force now and freezes them
// with the quote.
func (s *Service) Confirm(ctx context.Context, cmd ConfirmCommand) (*Reservation, error) {
	r, err := s.store.Get(ctx, cmd.ReservationID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(r.Status, StatusConfirmed) {
		return nil, ErrInvalidState
	}
	quote, basis, err := s.pricing.EstimateWithBasis(ctx, r.Request)
	if err != nil {
		return nil, err
	}
	card := basis.RateCard
	if card.ID == "" {
		return nil, fmt.Errorf("%w: nothing to confirm", ErrBadRequest)
	}

	now := s.now()
	snap := Snapshot{
		ReservationID: r.ID,
		RateCard:      card,
		Holidays:      basis.Holidays.Dates(),
		Quote:         quote,
		CreatedAt:     now,
	}
	ok, err := s.store.Confirm(ctx, r.ID, r.StatusVersion, snap)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}

	actor := cmd.ActorID
	if actor == "" {
		actor = r.CustomerID
	}
	s.appendEvent(ctx, &Event{
		ReservationID: r.ID,
		FromStatus:    r.Status,
		ToStatus:      StatusConfirmed,
		ActorType:     "customer",
		ActorID:       &actor,
		CreatedAt:     now,
	})

	r.Status = StatusConfirmed
	r.StatusVersion++
	r.PreviewTotal = quote.Total
	r.Currency = quote.Currency
	r.ConfirmedAt = &now
	r.Snapshot = &snap
	s.publishConfirmed(ctx, r)
	s.log.Info("reservation confirmed",
		zap.String("id", string(r.ID)),
		zap.String("rate_card", string(card.ID)),
		zap.String("total", quote.Total.String()),
	)
	return r, nil
}

func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) error {
	r, err := s.store.Get(ctx, cmd.ReservationID)
	if err != nil {
		return err
	}
	if !CanTransition(r.Status, StatusCancelled) {
		return ErrInvalidState
	}
	var reason *string
	if cmd.Reason != "" {
		reason = &cmd.Reason
	}
	ok, err := s.store.UpdateStatus(ctx, r.ID, r.Status, StatusCancelled, r.StatusVersion, reason)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	actorType := cmd.ActorType
	if actorType == "" {
		actorType = "customer"
	}
	var actorID *types.ID
	if cmd.ActorID != "" {
		actorID = &cmd.ActorID
	}
	s.appendEvent(ctx, &Event{
		ReservationID: r.ID,
		FromStatus:    r.Status,
		ToStatus:      StatusCancelled,
		ActorType:     actorType,
		ActorID:       actorID,
		CreatedAt:     s.now(),
	})
	return nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Reservation, error) {
	return s.store.Get(ctx, id)
}

// Requote re-prices a confirmed reservation with its snapshotted card, holidays and
// distance.
func (s *Service) Requote(ctx context.Context, id types.ID) (Drift, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return Drift{}, err
	}
	if r.Status != StatusConfirmed {
		return Drift{}, ErrInvalidState
	}
	snap := r.Snapshot
	if snap == nil {
		if snap, err = s.store.GetSnapshot(ctx, id); err != nil {
			return Drift{}, err
		}
	}
	req := r.Request
	if snap.Quote.DistanceKm != nil {
		km := *snap.Quote.DistanceKm
		req.DistanceKm = &km
	}
	q, err := s.pricing.QuoteWithBasis(ctx, req, snap.Basis())
	if err != nil {
		return Drift{}, err
	}
	return Drift{ReservationID: id, Stored: snap.Quote.Total, Recomputed: q.Total}, nil
}

func (s *Service) ListConfirmed(ctx context.Context, limit int) ([]Reservation, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.store.ListConfirmed(ctx, limit)
}

func (s *Service) appendEvent(ctx context.Context, e *Event) {
	if err := s.store.AppendEvent(ctx, e); err != nil {
		s.log.Warn("append reservation event failed",
			zap.String("id", string(e.ReservationID)),
			zap.String("to", string(e.ToStatus)),
			zap.Error(err),
		)
	}
}

// ConfirmedEvent is the reservation.confirmed payload.
type ConfirmedEvent struct {
	ReservationID types.ID            `json:"reservation_id"`
	CustomerID    types.ID            `json:"customer_id"`
	Service       pricing.ServiceKind `json:"service"`
	RateCardID    types.ID            `json:"rate_card_id"`
	Total         types.Money         `json:"total"`
	Currency      string              `json:"currency"`
	ConfirmedAt   time.Time           `json:"confirmed_at"`
}

// publishConfirmed is best effort: the confirmation is already committed.
func (s *Service) publishConfirmed(ctx context.Context, r *Reservation) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(ConfirmedEvent{
		ReservationID: r.ID,
		CustomerID:    r.CustomerID,
		Service:       r.Service,
		RateCardID:    r.Snapshot.RateCard.ID,
		Total:         r.Snapshot.Quote.Total,
		Currency:      r.Snapshot.Quote.Currency,
		ConfirmedAt:   *r.ConfirmedAt,
	})
	if err != nil {
		s.log.Error("encode confirmed event", zap.Error(err))
		return
	}
	headers := map[string]string{"event_type": TopicConfirmed}
	if err := s.publisher.Publish(ctx, s.topic, string(r.ID), payload, headers); err != nil {
		s.log.Warn("publish confirmed event failed", zap.String("id", string(r.ID)), zap.Error(err))
	}
}
