package pricing

import (
	"context"
	"testing"
	"time"

	"petcare/internal/testutil"
	"petcare/internal/types"
)

func TestStore_RateCardRoundTrip(t *testing.T) {
	db := testutil.OpenDB(t, "rate_cards")
	store := NewStore(db)
	ctx := context.Background()

	card := testCard(ServiceWalk)
	card.ID = types.NewID()
	card.EffectiveFrom = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	card.DistanceRatePerKm = types.MustMoney("1.25")
	card.FreeRadiusKm = 2.5
	if err := store.InsertRateCard(ctx, card); err != nil {
		t.Fatalf("insert: %v", err)
	}

	cards, err := store.ListRateCards(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("cards = %d, want 1", len(cards))
	}
	got := cards[0]
	if got.ID != card.ID || got.Service != ServiceWalk || !got.EffectiveFrom.Equal(card.EffectiveFrom) {
		t.Errorf("identity mismatch: %+v", got)
	}
	if got.DistanceRatePerKm.String() != "1.25" || got.BasePrice.String() != "41.00" || got.FreeRadiusKm != 2.5 {
		t.Errorf("amounts mismatch: %+v", got)
	}
}
