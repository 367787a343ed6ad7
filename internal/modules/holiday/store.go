// README: Holiday store backed by PostgreSQL.
package holiday

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func yearBounds(year int) (time.Time, time.Time) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(1, 0, 0)
}

func (s *Store) ListYear(ctx context.Context, year int) ([]Holiday, error) {
	from, to := yearBounds(year)
	rows, err := s.db.Query(ctx, `
        SELECT day, name
        FROM holidays
        WHERE day >= $1 AND day < $2
        ORDER BY day`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Holiday
	for rows.Next() {
		var h Holiday
		if err := rows.Scan(&h.Date, &h.Name); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// ReplaceYear swaps the whole year in one transaction.
func (s *Store) ReplaceYear(ctx context.Context, year int, days []Holiday) error {
	from, to := yearBounds(year)
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM holidays WHERE day >= $1 AND day < $2`, from, to); err != nil {
		return fmt.Errorf("clear %d: %w", year, err)
	}
	for _, h := range days {
		if _, err := tx.Exec(ctx, `INSERT INTO holidays (day, name) VALUES ($1, $2)`, h.Date, h.Name); err != nil {
			return fmt.Errorf("insert %s: %w", h.Day(), err)
		}
	}
	return tx.Commit(ctx)
}
