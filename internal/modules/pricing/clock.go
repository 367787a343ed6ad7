package pricing

import (
	"strconv"
	"strings"
)

// Normal hours are [08:00, 20:00) in minutes after midnight.
const (
	normalHoursStart = 8 * 60
	normalHoursEnd   = 20 * 60
)

// IsOutsideNormalHours reports whether an HH:MM time falls outside [08:00, 20:00).
func IsOutsideNormalHours(hhmm string) (bool, error) {
	minutes, err := parseClock(hhmm)
	if err != nil {
		return false, err
	}
	return minutes < normalHoursStart || minutes >= normalHoursEnd, nil
}

// parseClock converts a strict 24-hour HH:MM string to minutes after midnight.
func parseClock(hhmm string) (int, error) {
	s := strings.TrimSpace(hhmm)
	if len(s) != 5 || s[2] != ':' || !isDigits(s[:2]) || !isDigits(s[3:]) {
		return 0, invalid("time", "%q is not a valid HH:MM time", hhmm)
	}
	h, _ := strconv.Atoi(s[:2])
	m, _ := strconv.Atoi(s[3:])
	if h > 23 || m > 59 {
		return 0, invalid("time", "%q is not a valid HH:MM time", hhmm)
	}
	return h*60 + m, nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}
