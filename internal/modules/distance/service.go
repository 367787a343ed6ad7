package distance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"petcare/internal/types"
)

// Provider returns the road distance between two addresses.
type Provider interface {
	DistanceKm(ctx context.Context, origin, destination string) (float64, error)
}

type Service struct {
	provider Provider
	cache    Cache
	cfg      Config
	log      *zap.Logger
}

// NewService builds the resolver. provider and cache may be nil; without a provider
// every lookup is an estimate.
func NewService(provider Provider, cache Cache, cfg Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.RoadFactor <= 0 {
		cfg.RoadFactor = DefaultConfig().RoadFactor
	}
	return &Service{provider: provider, cache: cache, cfg: cfg, log: log.Named("distance")}
}

// Resolve returns the distance for q. Cache and provider failures degrade to an
// estimate flagged Estimated; only a malformed query is an error.
func (s *Service) Resolve(ctx context.Context, q Query, catalogVersion string) (Result, error) {
	origin := strings.TrimSpace(q.Origin)
	dest := strings.TrimSpace(q.Destination)
	if origin == "" || dest == "" {
		return Result{}, ErrBadRequest
	}
	for _, p := range []*types.Point{q.OriginPoint, q.DestinationPoint} {
		if p != nil && !p.Valid() {
			return Result{}, ErrBadPoint
		}
	}

	key := CacheKey(catalogVersion, origin, dest)
	if s.cache != nil {
		km, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.log.Warn("distance cache read failed", zap.Error(err))
		} else if ok {
			return Result{Km: km, Source: SourceCache}, nil
		}
	}

	if s.provider != nil {
		km, err := s.provider.DistanceKm(ctx, origin, dest)
		if err == nil && km < 0 {
			err = fmt.Errorf("provider returned %.3f km", km)
		}
		if err == nil {
			if s.cache != nil {
				if err := s.cache.Set(ctx, key, km, s.cfg.CacheTTL); err != nil {
					s.log.Warn("distance cache write failed", zap.Error(err))
				}
			}
			return Result{Km: km, Source: SourceProvider}, nil
		}
		if errors.Is(err, context.Canceled) {
			return Result{}, err
		}
		s.log.Warn("distance provider failed, using estimate",
			zap.String("origin", origin),
			zap.String("destination", dest),
			zap.Error(err),
		)
	}
	return s.estimate(q), nil
}

func (s *Service) estimate(q Query) Result {
	if q.OriginPoint != nil && q.DestinationPoint != nil {
		km := haversineKm(q.OriginPoint.Lat, q.OriginPoint.Lng, q.DestinationPoint.Lat, q.DestinationPoint.Lng)
		return Result{Km: roundKm(km * s.cfg.RoadFactor), Estimated: true, Source: SourceGeo}
	}
	return Result{Km: s.cfg.FallbackKm, Estimated: true, Source: SourceFallback}
}
