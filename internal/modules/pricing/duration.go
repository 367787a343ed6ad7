package pricing

import (
	"bytes"
	"encoding/json"
	"strings"
)

// BillingUnitMinutes is the length of one billing unit.
const BillingUnitMinutes = 30

const maxCustomMinutes = 24 * 60

type DurationPreset string

const (
	Duration30Minutes DurationPreset = "30 minutes"
	Duration1Hour     DurationPreset = "1 hour"
	Duration2Hours    DurationPreset = "2 hours"
	Duration4Hours    DurationPreset = "4 hours"
	Duration8Hours    DurationPreset = "8 hours"
	DurationCustom    DurationPreset = "custom"
)

var presetUnits = map[DurationPreset]int{
	"30 minutes": 1,
	"1 hour":     2,
	"1.5 hours":  3,
	"2 hours":    4,
	"2.5 hours":  5,
	"3 hours":    6,
	"3.5 hours":  7,
	"4 hours":    8,
	"4.5 hours":  9,
	"5 hours":    10,
	"5.5 hours":  11,
	"6 hours":    12,
	"6.5 hours":  13,
	"7 hours":    14,
	"7.5 hours":  15,
	"8 hours":    16,
}

// DurationSelector is either a preset or DurationCustom with CustomMinutes.
type DurationSelector struct {
	Preset        DurationPreset `json:"preset"`
	CustomMinutes int            `json:"custom_minutes,omitempty"`
}

func Preset(p DurationPreset) DurationSelector {
	return DurationSelector{Preset: p}
}

func CustomMinutes(minutes int) DurationSelector {
	return DurationSelector{Preset: DurationCustom, CustomMinutes: minutes}
}

// UnmarshalJSON accepts "1 hour" as well as {"preset":"custom","custom_minutes":90}.
func (d *DurationSelector) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = DurationSelector{Preset: DurationPreset(s)}
		return nil
	}
	type plain DurationSelector
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*d = DurationSelector(p)
	return nil
}

// ResolveDuration returns the number of 30-minute billing units for a selector.
// Custom minutes are truncated to whole units.
func ResolveDuration(sel DurationSelector) (int, error) {
	preset := DurationPreset(strings.TrimSpace(string(sel.Preset)))
	if preset == DurationCustom {
		if sel.CustomMinutes < BillingUnitMinutes || sel.CustomMinutes > maxCustomMinutes {
			return 0, invalid("duration", "custom duration must be between %d and %d minutes", BillingUnitMinutes, maxCustomMinutes)
		}
		return sel.CustomMinutes / BillingUnitMinutes, nil
	}
	units, ok := presetUnits[preset]
	if !ok {
		return 0, invalid("duration", "unknown duration %q", string(sel.Preset))
	}
	return units, nil
}
