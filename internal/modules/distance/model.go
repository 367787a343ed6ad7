// README: Distance module resolves address pairs to road kilometres with a memo cache and estimates.
package distance

import (
	"errors"
	"fmt"
	"time"

	"petcare/internal/modules/pricing"
	"petcare/internal/types"
)

var (
	// ErrBadRequest matches pricing.ErrBadRoute so pricing can report it as caller input.
	ErrBadRequest = fmt.Errorf("%w: origin and destination are required", pricing.ErrBadRoute)
	ErrBadPoint   = fmt.Errorf("%w: coordinates out of range", pricing.ErrBadRoute)
	ErrNoRoute    = errors.New("no route found")
)

// Query and Result are the pricing-facing route types.
type (
	Query  = types.Route
	Result = types.Distance
)

const (
	SourceProvider = "maps"
	SourceCache    = "cache"
	SourceGeo      = "haversine"
	SourceFallback = "fallback"
)

type Config struct {
	// CacheTTL of zero keeps entries until the catalog version changes the key.
	CacheTTL time.Duration
	// FallbackKm is used when the provider fails and no coordinates are known.
	FallbackKm float64
	// RoadFactor scales straight-line distance to an approximate road distance.
	RoadFactor float64
}

func DefaultConfig() Config {
	return Config{FallbackKm: 0, RoadFactor: 1.3}
}
