// README: Handler tests for quoting, rate cards, holidays and reservation authorization.
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"petcare/internal/http/handlers"
	httpmiddleware "petcare/internal/http/middleware"
	"petcare/internal/infra"
	"petcare/internal/modules/holiday"
	"petcare/internal/modules/pricing"
	"petcare/internal/modules/reservation"
	"petcare/internal/types"
)

// stubTokenVerifier is a test double for infra.TokenVerifier.
type stubTokenVerifier struct {
	token *infra.Caller
	err   error
}

func (s *stubTokenVerifier) VerifyIDToken(_ context.Context, _ string) (*infra.Caller, error) {
	return s.token, s.err
}

func makeVerifier(uid, role string) *stubTokenVerifier {
	return &stubTokenVerifier{token: &infra.Caller{UID: uid, Role: role}}
}

func doRequest(r *gin.Engine, method, path string, body interface{}, authHeader string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type memCards struct {
	cards []pricing.RateCard
}

func (m *memCards) ListRateCards(ctx context.Context) ([]pricing.RateCard, error) {
	return m.cards, nil
}

func (m *memCards) InsertRateCard(ctx context.Context, c pricing.RateCard) error {
	m.cards = append(m.cards, c)
	return nil
}

func newPricing() (*pricing.Service, *memCards) {
	store := &memCards{cards: []pricing.RateCard{{
		ID:                "seed-walk",
		Service:           pricing.ServiceWalk,
		EffectiveFrom:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Active:            true,
		Currency:          "PLN",
		BasePrice:         types.MustMoney("41"),
		AdditionalPet:     types.MustMoney("21"),
		SpecialDayPrice:   types.MustMoney("51"),
		TimeSurcharge:     types.MustMoney("10"),
		DistanceRatePerKm: types.MustMoney("1.5"),
		FreeRadiusKm:      5,
	}}}
	return pricing.NewService(store, nil, nil, "PLN", nil), store
}

func quoteRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc, _ := newPricing()
	r := gin.New()
	r.POST("/api/quotes", handlers.NewQuoteHandler(svc).Create)
	return r
}

func TestQuote_ScenarioC(t *testing.T) {
	w := doRequest(quoteRouter(), http.MethodPost, "/api/quotes", map[string]any{
		"service": "WALK",
		"pets":    []map[string]string{{"species": "DOG"}, {"species": "CAT"}},
		"visits": []map[string]any{{
			"date":  "2026-03-03",
			"slots": []map[string]any{{"time": "10:00", "duration": "1 hour"}},
		}},
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var q struct {
		Total     json.Number `json:"total"`
		LineItems []struct {
			Amount json.Number `json:"amount"`
		} `json:"line_items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &q); err != nil {
		t.Fatal(err)
	}
	if q.Total.String() != "124.00" || len(q.LineItems) != 2 {
		t.Errorf("quote = %s", w.Body.String())
	}
}

func TestQuote_EmptySelection(t *testing.T) {
	w := doRequest(quoteRouter(), http.MethodPost, "/api/quotes", map[string]any{"service": "WALK"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"line_items":[]`) || !strings.Contains(w.Body.String(), `"total":0.00`) {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestQuote_Errors(t *testing.T) {
	visit := []map[string]any{{"date": "2026-03-03", "slots": []map[string]any{{"time": "10:00", "duration": "1 hour"}}}}
	tests := []struct {
		name     string
		body     any
		wantCode int
		wantBody string
	}{
		{"bad json", "not an object", http.StatusBadRequest, "invalid json"},
		{"validation", map[string]any{
			"service": "WALK",
			"pets":    []map[string]string{{"species": "DOG"}},
			"visits":  []map[string]any{{"date": "2026-03-03", "slots": []map[string]any{{"time": "10:00", "duration": "3 days"}}}},
		}, http.StatusBadRequest, "unknown duration"},
		{"inactive service", map[string]any{
			"service": "HOME_VISIT",
			"pets":    []map[string]string{{"species": "DOG"}},
			"visits":  visit,
		}, http.StatusNotFound, "service unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(quoteRouter(), http.MethodPost, "/api/quotes", tt.body, "")
			if w.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("body %s does not contain %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRateCard_PublishDateOnlyUsesLocation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, store := newPricing()
	warsaw, err := time.LoadLocation("Europe/Warsaw")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	h := handlers.NewRateCardHandler(svc, warsaw)
	r := gin.New()
	r.POST("/api/rate-cards", h.Publish)
	r.GET("/api/rate-cards", h.List)

	w := doRequest(r, http.MethodPost, "/api/rate-cards", map[string]any{
		"service":              "WALK",
		"effective_from":       "2026-06-01",
		"base_price":           45,
		"additional_pet":       "22.50",
		"special_day_price":    55,
		"time_surcharge":       10,
		"distance_rate_per_km": 1.5,
		"free_radius_km":       5,
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if len(store.cards) != 2 {
		t.Fatalf("cards = %d, want 2", len(store.cards))
	}
	got := store.cards[1]
	want := time.Date(2026, 5, 31, 22, 0, 0, 0, time.UTC)
	if !got.EffectiveFrom.Equal(want) || got.Currency != "PLN" || got.AdditionalPet.String() != "22.50" || !got.Active {
		t.Errorf("stored card = %+v", got)
	}

	w = doRequest(r, http.MethodPost, "/api/rate-cards", map[string]any{"service": "WALK", "base_price": -1}, "")
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "base_price") {
		t.Errorf("negative price: %d %s", w.Code, w.Body.String())
	}
	w = doRequest(r, http.MethodPost, "/api/rate-cards", map[string]any{"service": "WALK", "effective_from": "June"}, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad date: expected 400, got %d", w.Code)
	}

	w = doRequest(r, http.MethodGet, "/api/rate-cards", nil, "")
	if w.Code != http.StatusOK || strings.Count(w.Body.String(), `"service":"WALK"`) != 2 {
		t.Errorf("list: %d %s", w.Code, w.Body.String())
	}
}

type memHolidayRepo struct {
	years map[int][]holiday.Holiday
}

func (m *memHolidayRepo) ListYear(ctx context.Context, year int) ([]holiday.Holiday, error) {
	return m.years[year], nil
}

func (m *memHolidayRepo) ReplaceYear(ctx context.Context, year int, days []holiday.Holiday) error {
	m.years[year] = days
	return nil
}

func TestHolidays_PutThenGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := handlers.NewHolidayHandler(holiday.NewService(&memHolidayRepo{years: map[int][]holiday.Holiday{}}, nil))
	r := gin.New()
	r.GET("/api/holidays/:year", h.Get)
	r.PUT("/api/holidays/:year", h.Put)

	w := doRequest(r, http.MethodPut, "/api/holidays/2026", map[string]any{
		"holidays": []map[string]string{{"date": "2026-11-11", "name": "Independence Day"}},
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("put: %d %s", w.Code, w.Body.String())
	}
	w = doRequest(r, http.MethodGet, "/api/holidays/2026", nil, "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"date":"2026-11-11"`) {
		t.Errorf("get: %d %s", w.Code, w.Body.String())
	}

	w = doRequest(r, http.MethodPut, "/api/holidays/2026", map[string]any{
		"holidays": []map[string]string{{"date": "2027-01-01"}},
	}, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("wrong year: expected 400, got %d", w.Code)
	}
	w = doRequest(r, http.MethodGet, "/api/holidays/next", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad year param: expected 400, got %d", w.Code)
	}
}

type stubReservations struct {
	byID      map[types.ID]*reservation.Reservation
	confirmed []types.ID
	cancelled []reservation.CancelCommand
	created   []reservation.CreateCommand
	confirmErr error
}

func (s *stubReservations) Create(ctx context.Context, cmd reservation.CreateCommand) (*reservation.Reservation, error) {
	s.created = append(s.created, cmd)
	return &reservation.Reservation{ID: "r-new", CustomerID: cmd.CustomerID, Status: reservation.StatusDraft}, nil
}

func (s *stubReservations) Get(ctx context.Context, id types.ID) (*reservation.Reservation, error) {
	r, ok := s.byID[id]
	if !ok {
		return nil, reservation.ErrNotFound
	}
	return r, nil
}

func (s *stubReservations) Confirm(ctx context.Context, cmd reservation.ConfirmCommand) (*reservation.Reservation, error) {
	if s.confirmErr != nil {
		return nil, s.confirmErr
	}
	s.confirmed = append(s.confirmed, cmd.ReservationID)
	r := *s.byID[cmd.ReservationID]
	r.Status = reservation.StatusConfirmed
	return &r, nil
}

func (s *stubReservations) Cancel(ctx context.Context, cmd reservation.CancelCommand) error {
	s.cancelled = append(s.cancelled, cmd)
	return nil
}

func reservationRouter(verifier infra.TokenVerifier, svc handlers.ReservationService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(httpmiddleware.Auth(verifier))
	h := handlers.NewReservationHandler(svc)
	r.POST("/api/reservations", h.Create)
	r.GET("/api/reservations/:id", h.Get)
	r.POST("/api/reservations/:id/confirm", h.Confirm)
	r.POST("/api/reservations/:id/cancel", h.Cancel)
	return r
}

func newStubReservations() *stubReservations {
	return &stubReservations{byID: map[types.ID]*reservation.Reservation{
		"r-1": {ID: "r-1", CustomerID: "alice", Status: reservation.StatusDraft},
	}}
}

// TestReservation_Unauthenticated verifies that requests without a valid token are rejected.
func TestReservation_Unauthenticated(t *testing.T) {
	r := reservationRouter(&stubTokenVerifier{err: errors.New("no token")}, newStubReservations())
	w := doRequest(r, http.MethodGet, "/api/reservations/r-1", nil, "Bearer badtoken")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

// TestReservation_OtherCustomerIsHidden checks that a customer cannot see or act on another customer's reservation.
func TestReservation_OtherCustomerIsHidden(t *testing.T) {
	svc := newStubReservations()
	r := reservationRouter(makeVerifier("bob", ""), svc)
	for _, path := range []string{"/api/reservations/r-1", "/api/reservations/r-1/confirm", "/api/reservations/r-1/cancel"} {
		method := http.MethodPost
		if !strings.Contains(path, "/confirm") && !strings.Contains(path, "/cancel") {
			method = http.MethodGet
		}
		w := doRequest(r, method, path, nil, "Bearer sometoken")
		if w.Code != http.StatusNotFound {
			t.Errorf("%s %s: expected 404, got %d", method, path, w.Code)
		}
	}
	if len(svc.confirmed) != 0 || len(svc.cancelled) != 0 {
		t.Errorf("service was called for a foreign reservation")
	}
}

func TestReservation_OwnerAndAdmin(t *testing.T) {
	svc := newStubReservations()

	w := doRequest(reservationRouter(makeVerifier("alice", ""), svc), http.MethodPost, "/api/reservations/r-1/confirm", nil, "Bearer t")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"confirmed"`) {
		t.Errorf("owner confirm: %d %s", w.Code, w.Body.String())
	}

	w = doRequest(reservationRouter(makeVerifier("ops", "admin"), svc), http.MethodPost, "/api/reservations/r-1/cancel",
		map[string]string{"reason": "sitter ill"}, "Bearer t")
	if w.Code != http.StatusOK {
		t.Fatalf("admin cancel: %d %s", w.Code, w.Body.String())
	}
	if len(svc.cancelled) != 1 || svc.cancelled[0].ActorType != "admin" || svc.cancelled[0].Reason != "sitter ill" {
		t.Errorf("cancel command = %+v", svc.cancelled)
	}
}

func TestReservation_ConfirmConflict(t *testing.T) {
	svc := newStubReservations()
	svc.confirmErr = reservation.ErrConflict
	w := doRequest(reservationRouter(makeVerifier("alice", ""), svc), http.MethodPost, "/api/reservations/r-1/confirm", nil, "Bearer t")
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestReservation_CreateForAnotherCustomer(t *testing.T) {
	svc := newStubReservations()
	body := map[string]any{"customer_id": "carol", "request": map[string]any{"service": "WALK"}}

	w := doRequest(reservationRouter(makeVerifier("bob", ""), svc), http.MethodPost, "/api/reservations", body, "Bearer t")
	if w.Code != http.StatusForbidden {
		t.Errorf("customer: expected 403, got %d", w.Code)
	}

	w = doRequest(reservationRouter(makeVerifier("ops", "admin"), svc), http.MethodPost, "/api/reservations", body, "Bearer t")
	if w.Code != http.StatusCreated {
		t.Fatalf("admin: expected 201, got %d", w.Code)
	}
	if svc.created[0].CustomerID != "carol" {
		t.Errorf("created for %s, want carol", svc.created[0].CustomerID)
	}
}

func TestReservation_InvalidID(t *testing.T) {
	r := reservationRouter(makeVerifier("alice", ""), newStubReservations())
	w := doRequest(r, http.MethodGet, "/api/reservations/bad%20id", nil, "Bearer t")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}
