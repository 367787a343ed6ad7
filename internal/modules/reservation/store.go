// README: Reservation store backed by PostgreSQL.
package reservation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"petcare/internal/modules/pricing"
	"petcare/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, r *Reservation) error {
	req, err := json.Marshal(r.Request)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	_, err = s.db.Exec(ctx, `
        INSERT INTO reservations (
            id, customer_id, service, status, status_version,
            request, preview_total, currency, created_at
        ) VALUES (
            $1, $2, $3, $4, $5,
            $6, $7::numeric, $8, $9
        )`,
		string(r.ID),
		string(r.CustomerID),
		string(r.Service),
		string(r.Status),
		r.StatusVersion,
		req,
		r.PreviewTotal.String(),
		r.Currency,
		r.CreatedAt,
	)
	return err
}

const selectReservation = `
        SELECT id, customer_id, service, status, status_version,
               request, preview_total::text, currency,
               created_at, confirmed_at, cancelled_at, cancel_reason
        FROM reservations`

func scanReservation(row pgx.Row) (*Reservation, error) {
	var (
		r       Reservation
		id      string
		cust    string
		service string
		status  string
		req     []byte
		preview string
	)
	err := row.Scan(
		&id, &cust, &service, &status, &r.StatusVersion,
		&req, &preview, &r.Currency,
		&r.CreatedAt, &r.ConfirmedAt, &r.CancelledAt, &r.CancelReason,
	)
	if err != nil {
		return nil, err
	}
	r.ID = types.ID(id)
	r.CustomerID = types.ID(cust)
	r.Service = pricing.ServiceKind(service)
	r.Status = Status(status)
	if err := json.Unmarshal(req, &r.Request); err != nil {
		return nil, fmt.Errorf("decode request of %s: %w", id, err)
	}
	if r.PreviewTotal, err = types.ParseMoney(preview); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Reservation, error) {
	r, err := scanReservation(s.db.QueryRow(ctx, selectReservation+` WHERE id = $1`, string(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if r.Status == StatusConfirmed || r.ConfirmedAt != nil {
		snap, err := s.GetSnapshot(ctx, id)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		r.Snapshot = snap
	}
	return r, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, reason *string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
        UPDATE reservations
        SET status = $1,
            status_version = status_version + 1,
            cancelled_at = CASE WHEN $1 = 'cancelled' THEN NOW() ELSE cancelled_at END,
            cancel_reason = COALESCE($2, cancel_reason)
        WHERE id = $3 AND status = $4 AND status_version = $5`,
		string(to),
		reason,
		string(id),
		string(from),
		version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Confirm moves a draft to confirmed and writes its snapshot in one transaction.
// It reports false when the row changed since it was read.
func (s *Store) Confirm(ctx context.Context, id types.ID, version int, snap Snapshot) (bool, error) {
	card, err := json.Marshal(snap.RateCard)
	if err != nil {
		return false, fmt.Errorf("encode rate card: %w", err)
	}
	quote, err := json.Marshal(snap.Quote)
	if err != nil {
		return false, fmt.Errorf("encode quote: %w", err)
	}
	holidays := snap.Holidays
	if holidays == nil {
		holidays = []string{}
	}
	days, err := json.Marshal(holidays)
	if err != nil {
		return false, fmt.Errorf("encode holidays: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
        UPDATE reservations
        SET status = 'confirmed',
            status_version = status_version + 1,
            confirmed_at = $1,
            preview_total = $2::numeric,
            currency = $3
        WHERE id = $4 AND status = 'draft' AND status_version = $5`,
		snap.CreatedAt,
		snap.Quote.Total.String(),
		snap.Quote.Currency,
		string(id),
		version,
	)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() != 1 {
		return false, nil
	}
	if _, err := tx.Exec(ctx, `
        INSERT INTO reservation_quotes (reservation_id, rate_card, holidays, quote, total, created_at)
        VALUES ($1, $2, $3, $4, $5::numeric, $6)`,
		string(id), card, days, quote, snap.Quote.Total.String(), snap.CreatedAt,
	); err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

func (s *Store) GetSnapshot(ctx context.Context, id types.ID) (*Snapshot, error) {
	var (
		card, days, quote []byte
		snap              = Snapshot{ReservationID: id}
	)
	err := s.db.QueryRow(ctx, `
        SELECT rate_card, holidays, quote, created_at
        FROM reservation_quotes
        WHERE reservation_id = $1`, string(id),
	).Scan(&card, &days, &quote, &snap.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(card, &snap.RateCard); err != nil {
		return nil, fmt.Errorf("decode rate card of %s: %w", id, err)
	}
	if err := json.Unmarshal(days, &snap.Holidays); err != nil {
		return nil, fmt.Errorf("decode holidays of %s: %w", id, err)
	}
	if err := json.Unmarshal(quote, &snap.Quote); err != nil {
		return nil, fmt.Errorf("decode quote of %s: %w", id, err)
	}
	return &snap, nil
}

func (s *Store) AppendEvent(ctx context.Context, e *Event) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO reservation_events (
            reservation_id, from_status, to_status, actor_type, actor_id, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6)`,
		string(e.ReservationID),
		string(e.FromStatus),
		string(e.ToStatus),
		e.ActorType,
		toStringPtr(e.ActorID),
		e.CreatedAt,
	)
	return err
}

// ListConfirmed returns confirmed reservations, oldest confirmation first.
func (s *Store) ListConfirmed(ctx context.Context, limit int) ([]Reservation, error) {
	rows, err := s.db.Query(ctx, selectReservation+`
        WHERE status = 'confirmed'
        ORDER BY confirmed_at, id
        LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func toStringPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
