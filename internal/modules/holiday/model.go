// README: Holiday calendar: dated public holidays loaded per year from Postgres.
package holiday

import (
	"errors"
	"time"
)

var ErrBadRequest = errors.New("bad request")

const dateLayout = "2006-01-02"

type Holiday struct {
	Date time.Time `json:"-"`
	Name string    `json:"name"`
}

// Day renders Date as YYYY-MM-DD.
func (h Holiday) Day() string {
	return h.Date.Format(dateLayout)
}

const (
	minYear = 2000
	maxYear = 2100
)

func validYear(year int) bool {
	return year >= minYear && year <= maxYear
}
