package pricing

import (
	"context"
	"sort"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// HolidaySet holds public holidays keyed by YYYY-MM-DD.
type HolidaySet map[string]struct{}

func NewHolidaySet(dates ...string) HolidaySet {
	s := make(HolidaySet, len(dates))
	for _, d := range dates {
		s[strings.TrimSpace(d)] = struct{}{}
	}
	return s
}

func (s HolidaySet) Contains(date time.Time) bool {
	_, ok := s[date.Format(dateLayout)]
	return ok
}

// Merge returns a new set with the union of s and other.
func (s HolidaySet) Merge(other HolidaySet) HolidaySet {
	out := make(HolidaySet, len(s)+len(other))
	for k := range s {
		out[k] = struct{}{}
	}
	for k := range other {
		out[k] = struct{}{}
	}
	return out
}

// Dates returns the set's dates in ascending order.
func (s HolidaySet) Dates() []string {
	out := make([]string, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// HolidayProvider supplies holiday dates for the given years.
type HolidayProvider interface {
	Holidays(ctx context.Context, years ...int) (HolidaySet, error)
}

// Holidays lets a fixed set serve as a HolidayProvider, e.g. for offline quoting.
func (s HolidaySet) Holidays(ctx context.Context, years ...int) (HolidaySet, error) {
	return s, nil
}

// IsSpecialDay reports whether date is a weekend day or a listed holiday.
// A nil set means weekends only.
func IsSpecialDay(date time.Time, holidays HolidaySet) bool {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return true
	}
	return holidays.Contains(date)
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, strings.TrimSpace(s))
}

// daysBetween counts calendar days; both times are UTC midnights from parseDate.
// Unix seconds are used because time.Duration saturates after about 292 years.
func daysBetween(from, to time.Time) int {
	return int((to.Unix() - from.Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60
