// README: Pricing service resolves the rate card, holidays and distance, then runs the cost engine.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"petcare/internal/types"
)

type RateCardStore interface {
	ListRateCards(ctx context.Context) ([]RateCard, error)
	InsertRateCard(ctx context.Context, c RateCard) error
}

// DistanceResolver turns an address pair into km. Implementations fall back to an
// estimate on provider failure; an error means the route itself is unusable.
type DistanceResolver interface {
	Resolve(ctx context.Context, route types.Route, catalogVersion string) (types.Distance, error)
}

// ErrBadRoute marks a route the distance resolver rejected as malformed.
var ErrBadRoute = errors.New("bad route")

type Service struct {
	store    RateCardStore
	holidays HolidayProvider
	distance DistanceResolver
	currency string
	log      *zap.Logger
	now      func() time.Time
}

// NewService wires the pricing service. holidays and distance may be nil: weekends
// alone are special days and routes are ignored.
func NewService(store RateCardStore, holidays HolidayProvider, distance DistanceResolver, currency string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:    store,
		holidays: holidays,
		distance: distance,
		currency: currency,
		log:      log.Named("pricing"),
		now:      time.Now,
	}
}

// Catalog loads the current catalog from the store.
func (s *Service) Catalog(ctx context.Context) (*Catalog, error) {
	cards, err := s.store.ListRateCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rate cards: %w", err)
	}
	return NewCatalog(cards...), nil
}

// Estimate prices req against the rate card in force now.
func (s *Service) Estimate(ctx context.Context, req PricingRequest) (Quote, error) {
	q, _, err := s.EstimateWithBasis(ctx, req)
	return q, err
}

// Basis is what a quote was computed from. Re-pricing with the same basis
// reproduces the quote regardless of later catalog or holiday changes.
type Basis struct {
	RateCard RateCard
	// Holidays covers every year the request touches.
	Holidays HolidaySet
}

// EstimateWithBasis is Estimate that also returns the card and holidays used, for
// snapshotting. The basis is zero for an empty request.
func (s *Service) EstimateWithBasis(ctx context.Context, req PricingRequest) (Quote, Basis, error) {
	if req.IsEmpty() {
		return EmptyQuote(req.Service), Basis{}, nil
	}
	cat, err := s.Catalog(ctx)
	if err != nil {
		return Quote{}, Basis{}, err
	}
	card, err := cat.Get(req.Service, s.now())
	if err != nil {
		return Quote{}, Basis{}, err
	}
	holidays, err := s.loadHolidays(ctx, req)
	if err != nil {
		return Quote{}, Basis{}, err
	}
	q, err := s.quote(ctx, req, card, holidays, cat.Version())
	if err != nil {
		return Quote{}, Basis{}, err
	}
	return q, Basis{RateCard: card, Holidays: holidays}, nil
}

// QuoteWithCard prices req against a given card and the current holidays.
func (s *Service) QuoteWithCard(ctx context.Context, req PricingRequest, card RateCard) (Quote, error) {
	if req.IsEmpty() {
		return EmptyQuote(req.Service), nil
	}
	holidays, err := s.loadHolidays(ctx, req)
	if err != nil {
		return Quote{}, err
	}
	return s.quote(ctx, req, card, holidays, "card-"+string(card.ID))
}

// QuoteWithBasis re-prices req exactly as it was priced at booking time.
func (s *Service) QuoteWithBasis(ctx context.Context, req PricingRequest, basis Basis) (Quote, error) {
	if req.IsEmpty() {
		return EmptyQuote(req.Service), nil
	}
	return s.quote(ctx, req, basis.RateCard, basis.Holidays, "card-"+string(basis.RateCard.ID))
}

func (s *Service) loadHolidays(ctx context.Context, req PricingRequest) (HolidaySet, error) {
	if s.holidays == nil {
		return HolidaySet{}, nil
	}
	set, err := s.holidays.Holidays(ctx, req.Years()...)
	if err != nil {
		return nil, fmt.Errorf("load holidays: %w", err)
	}
	if set == nil {
		set = HolidaySet{}
	}
	return set, nil
}

func (s *Service) quote(ctx context.Context, req PricingRequest, card RateCard, holidays HolidaySet, catalogVersion string) (Quote, error) {
	estimated := false
	if req.DistanceKm == nil && req.Route != nil && req.Service.PerVisit() && s.distance != nil {
		d, err := s.distance.Resolve(ctx, *req.Route, catalogVersion)
		if errors.Is(err, ErrBadRoute) {
			return Quote{}, invalid("route", "%s", err.Error())
		}
		if err != nil {
			return Quote{}, fmt.Errorf("resolve distance: %w", err)
		}
		km := d.Km
		req.DistanceKm = &km
		estimated = d.Estimated
	}

	q, err := Calculate(req, card, holidays)
	if err != nil {
		return Quote{}, err
	}
	q.DistanceEstimated = estimated
	s.log.Debug("quote computed",
		zap.String("service", string(req.Service)),
		zap.String("rate_card", string(card.ID)),
		zap.Int("pets", req.PetCount()),
		zap.Int("line_items", len(q.LineItems)),
		zap.String("total", q.Total.String()),
		zap.Bool("distance_estimated", estimated),
	)
	return q, nil
}

func (s *Service) RateCards(ctx context.Context) ([]RateCard, error) {
	cat, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return cat.Cards(), nil
}

// PublishRateCard stores a new card version. Existing versions are never modified,
// so quotes already confirmed keep the card they were priced with.
func (s *Service) PublishRateCard(ctx context.Context, card RateCard) (RateCard, error) {
	if card.ID == "" {
		card.ID = types.NewID()
	}
	if card.EffectiveFrom.IsZero() {
		card.EffectiveFrom = s.now().UTC()
	}
	if card.Currency == "" {
		card.Currency = s.currency
	}
	if err := card.Validate(); err != nil {
		return RateCard{}, err
	}
	if err := s.store.InsertRateCard(ctx, card); err != nil {
		return RateCard{}, fmt.Errorf("insert rate card: %w", err)
	}
	s.log.Info("rate card published",
		zap.String("id", string(card.ID)),
		zap.String("service", string(card.Service)),
		zap.Time("effective_from", card.EffectiveFrom),
		zap.Bool("active", card.Active),
	)
	return card, nil
}
