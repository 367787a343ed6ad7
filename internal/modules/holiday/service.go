package holiday

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"petcare/internal/modules/pricing"
)

type Repository interface {
	ListYear(ctx context.Context, year int) ([]Holiday, error)
	ReplaceYear(ctx context.Context, year int, days []Holiday) error
}

// Service serves holiday sets with an in-process per-year memo.
type Service struct {
	repo Repository
	log  *zap.Logger

	mu    sync.RWMutex
	years map[int]pricing.HolidaySet
}

func NewService(repo Repository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, log: log.Named("holiday"), years: make(map[int]pricing.HolidaySet)}
}

// Holidays returns the merged set for years, loading any year not yet memoized.
// Years outside the storable range have no holidays and are not looked up.
func (s *Service) Holidays(ctx context.Context, years ...int) (pricing.HolidaySet, error) {
	out := pricing.HolidaySet{}
	for _, y := range years {
		if !validYear(y) {
			continue
		}
		set, err := s.year(ctx, y)
		if err != nil {
			return nil, err
		}
		out = out.Merge(set)
	}
	return out, nil
}

func (s *Service) year(ctx context.Context, year int) (pricing.HolidaySet, error) {
	s.mu.RLock()
	set, ok := s.years[year]
	s.mu.RUnlock()
	if ok {
		return set, nil
	}
	return s.Refresh(ctx, year)
}

// Refresh reloads one year from the store.
func (s *Service) Refresh(ctx context.Context, year int) (pricing.HolidaySet, error) {
	days, err := s.repo.ListYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("load holidays %d: %w", year, err)
	}
	set := make(pricing.HolidaySet, len(days))
	for _, h := range days {
		set[h.Day()] = struct{}{}
	}
	s.mu.Lock()
	s.years[year] = set
	s.mu.Unlock()
	return set, nil
}

// List returns the stored holidays of one year ordered by date.
func (s *Service) List(ctx context.Context, year int) ([]Holiday, error) {
	if !validYear(year) {
		return nil, fmt.Errorf("%w: year %d out of range", ErrBadRequest, year)
	}
	return s.repo.ListYear(ctx, year)
}

// DayInput is one YYYY-MM-DD date with an optional display name.
type DayInput struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// Replace rewrites the holidays of year. Every date must belong to year; duplicates
// are collapsed.
func (s *Service) Replace(ctx context.Context, year int, input []DayInput) ([]Holiday, error) {
	if !validYear(year) {
		return nil, fmt.Errorf("%w: year %d out of range", ErrBadRequest, year)
	}
	seen := make(map[string]bool, len(input))
	days := make([]Holiday, 0, len(input))
	for _, in := range input {
		d, err := time.Parse(dateLayout, in.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrBadRequest, in.Date)
		}
		if d.Year() != year {
			return nil, fmt.Errorf("%w: %s is not in %d", ErrBadRequest, in.Date, year)
		}
		if seen[in.Date] {
			continue
		}
		seen[in.Date] = true
		days = append(days, Holiday{Date: d, Name: in.Name})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })

	if err := s.repo.ReplaceYear(ctx, year, days); err != nil {
		return nil, fmt.Errorf("replace holidays %d: %w", year, err)
	}
	if _, err := s.Refresh(ctx, year); err != nil {
		// The write succeeded; drop the memo so the next read retries.
		s.mu.Lock()
		delete(s.years, year)
		s.mu.Unlock()
		s.log.Warn("holiday refresh after replace failed", zap.Int("year", year), zap.Error(err))
	}
	s.log.Info("holidays replaced", zap.Int("year", year), zap.Int("count", len(days)))
	return days, nil
}
