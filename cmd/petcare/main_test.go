// README: CLI tests (offline quote, reconcile summary).
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"petcare/internal/modules/pricing"
	"petcare/internal/modules/reservation"
	"petcare/internal/types"
)

const walkCard = `{
  "service": "WALK",
  "active": true,
  "base_price": "41",
  "additional_pet": "21",
  "special_day_price": "51",
  "time_surcharge": "10",
  "distance_rate_per_km": "1.5",
  "free_radius_km": 5
}`

const saturdayWalk = `{
  "service": "WALK",
  "pets": [{"species": "DOG"}],
  "visits": [{"date": "2026-03-07", "slots": [{"time": "10:00", "duration": "1 hour"}]}],
  "distance_km": 7.5
}`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestQuoteCommand_OfflineJSON(t *testing.T) {
	card := writeFile(t, "card.json", walkCard)
	req := writeFile(t, "req.json", saturdayWalk)

	out, err := runCLI(t, "quote", "--file", req, "--rate-card", card, "--output", "json")
	if err != nil {
		t.Fatalf("quote: %v\n%s", err, out)
	}
	var q pricing.Quote
	if err := json.Unmarshal([]byte(out), &q); err != nil {
		t.Fatalf("decode quote: %v\n%s", err, out)
	}
	// Saturday: 2 units at 51, plus 2.5 km beyond the radius at 1.5 for one visit.
	if !q.Total.Equal(types.MustMoney("105.75")) {
		t.Fatalf("total = %s, want 105.75", q.Total)
	}
	if len(q.LineItems) != 2 {
		t.Fatalf("line items = %d, want 2", len(q.LineItems))
	}
	if q.Currency != "PLN" {
		t.Fatalf("currency = %q, want PLN from config", q.Currency)
	}
}

func TestQuoteCommand_HolidayFlag(t *testing.T) {
	card := writeFile(t, "card.json", walkCard)
	monday := strings.Replace(saturdayWalk, "2026-03-07", "2026-03-02", 1)
	req := writeFile(t, "req.json", monday)

	cases := []struct {
		name     string
		holidays string
		want     string
	}{
		{"regular day", "", "85.75"},
		{"holiday", "2026-03-02", "105.75"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := runCLI(t, "quote", "-f", req, "--rate-card", card, "--holidays", tc.holidays, "-o", "json")
			if err != nil {
				t.Fatalf("quote: %v\n%s", err, out)
			}
			var q pricing.Quote
			if err := json.Unmarshal([]byte(out), &q); err != nil {
				t.Fatalf("decode quote: %v", err)
			}
			if !q.Total.Equal(types.MustMoney(tc.want)) {
				t.Fatalf("total = %s, want %s", q.Total, tc.want)
			}
		})
	}
}

func TestQuoteCommand_InvalidCard(t *testing.T) {
	card := writeFile(t, "card.json", `{"service": "WALK", "base_price": "-1"}`)
	req := writeFile(t, "req.json", saturdayWalk)

	_, err := runCLI(t, "quote", "--file", req, "--rate-card", card)
	if !errors.Is(err, pricing.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestWriteQuote_Table(t *testing.T) {
	q := pricing.Quote{
		Service:  pricing.ServiceWalk,
		Currency: "PLN",
		LineItems: []pricing.LineItem{
			{Description: "Walk, regular days: 2 × 41.00", Amount: types.MustMoney("82")},
		},
		Total:             types.MustMoney("82"),
		DistanceEstimated: true,
	}
	var buf bytes.Buffer
	if err := writeQuote(&buf, q, "table"); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Walk, regular days", "82.00", "Total", "PLN", "estimate"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestParseHolidays(t *testing.T) {
	set := parseHolidays(" 2026-05-01, ,2026-05-03 ")
	if len(set) != 2 {
		t.Fatalf("holidays = %v, want 2 entries", set)
	}
	if len(parseHolidays("")) != 0 {
		t.Fatal("empty list should yield no holidays")
	}
}

type fakeReconciler struct {
	list   []reservation.Reservation
	drifts map[types.ID]reservation.Drift
	errs   map[types.ID]error
}

func (f *fakeReconciler) ListConfirmed(ctx context.Context, limit int) ([]reservation.Reservation, error) {
	if limit < len(f.list) {
		return f.list[:limit], nil
	}
	return f.list, nil
}

func (f *fakeReconciler) Requote(ctx context.Context, id types.ID) (reservation.Drift, error) {
	if err := f.errs[id]; err != nil {
		return reservation.Drift{}, err
	}
	return f.drifts[id], nil
}

func TestRunReconcile(t *testing.T) {
	match := reservation.Drift{ReservationID: "r1", Stored: types.MustMoney("124"), Recomputed: types.MustMoney("124")}
	drift := reservation.Drift{ReservationID: "r2", Stored: types.MustMoney("124"), Recomputed: types.MustMoney("130")}

	t.Run("all pass", func(t *testing.T) {
		f := &fakeReconciler{
			list:   []reservation.Reservation{{ID: "r1"}},
			drifts: map[types.ID]reservation.Drift{"r1": match},
		}
		var buf bytes.Buffer
		if err := runReconcile(context.Background(), f, 10, &buf, zap.NewNop()); err != nil {
			t.Fatalf("reconcile: %v", err)
		}
		if !strings.Contains(buf.String(), "PASS=1 FAIL=0 ERROR=0") {
			t.Fatalf("unexpected summary:\n%s", buf.String())
		}
	})

	t.Run("drift and errors fail", func(t *testing.T) {
		f := &fakeReconciler{
			list:   []reservation.Reservation{{ID: "r1"}, {ID: "r2"}, {ID: "r3"}},
			drifts: map[types.ID]reservation.Drift{"r1": match, "r2": drift},
			errs:   map[types.ID]error{"r3": reservation.ErrNotFound},
		}
		var buf bytes.Buffer
		err := runReconcile(context.Background(), f, 10, &buf, zap.NewNop())
		if !errors.Is(err, errDrift) {
			t.Fatalf("expected errDrift, got %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, "FAIL  r2 stored=124.00 recomputed=130.00") {
			t.Fatalf("missing FAIL line:\n%s", out)
		}
		if !strings.Contains(out, "PASS=1 FAIL=1 ERROR=1") {
			t.Fatalf("unexpected summary:\n%s", out)
		}
	})

	t.Run("limit", func(t *testing.T) {
		f := &fakeReconciler{
			list:   []reservation.Reservation{{ID: "r1"}, {ID: "r2"}},
			drifts: map[types.ID]reservation.Drift{"r1": match, "r2": drift},
		}
		var buf bytes.Buffer
		if err := runReconcile(context.Background(), f, 1, &buf, zap.NewNop()); err != nil {
			t.Fatalf("reconcile: %v", err)
		}
	})
}
