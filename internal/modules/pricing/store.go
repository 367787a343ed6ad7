// README: Rate card store backed by PostgreSQL.
package pricing

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"petcare/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// ListRateCards returns every card version. Money columns are read as text to keep
// exact decimals.
func (s *Store) ListRateCards(ctx context.Context) ([]RateCard, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, service, effective_from, active, currency,
               base_price::text, additional_pet::text, special_day_price::text,
               time_surcharge::text, distance_rate_per_km::text, free_radius_km
        FROM rate_cards
        ORDER BY service, effective_from`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []RateCard
	for rows.Next() {
		var (
			c                                    RateCard
			id, service                          string
			base, additional, special, surcharge string
			perKm                                string
		)
		if err := rows.Scan(&id, &service, &c.EffectiveFrom, &c.Active, &c.Currency,
			&base, &additional, &special, &surcharge, &perKm, &c.FreeRadiusKm); err != nil {
			return nil, err
		}
		c.ID = types.ID(id)
		c.Service = ServiceKind(service)
		for _, f := range []struct {
			dst *types.Money
			src string
		}{
			{&c.BasePrice, base},
			{&c.AdditionalPet, additional},
			{&c.SpecialDayPrice, special},
			{&c.TimeSurcharge, surcharge},
			{&c.DistanceRatePerKm, perKm},
		} {
			m, err := types.ParseMoney(f.src)
			if err != nil {
				return nil, fmt.Errorf("rate card %s: %w", id, err)
			}
			*f.dst = m
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func (s *Store) InsertRateCard(ctx context.Context, c RateCard) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO rate_cards (
            id, service, effective_from, active, currency,
            base_price, additional_pet, special_day_price,
            time_surcharge, distance_rate_per_km, free_radius_km
        ) VALUES (
            $1, $2, $3, $4, $5,
            $6::numeric, $7::numeric, $8::numeric,
            $9::numeric, $10::numeric, $11
        )`,
		string(c.ID), string(c.Service), c.EffectiveFrom, c.Active, c.Currency,
		c.BasePrice.String(), c.AdditionalPet.String(), c.SpecialDayPrice.String(),
		c.TimeSurcharge.String(), c.DistanceRatePerKm.String(), c.FreeRadiusKm,
	)
	return err
}
