package assignment

import (
	"encoding/json"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Enabled is either a plain switch or an inclusive date window.
type Enabled struct {
	Value bool
	From  *time.Time
	To    *time.Time
}

func AlwaysEnabled() Enabled {
	return Enabled{Value: true}
}

// At reports whether the assignment is active on the day of now.
func (e Enabled) At(now time.Time) bool {
	if e.From == nil && e.To == nil {
		return e.Value
	}
	day := truncateDay(now)
	if e.From != nil && day.Before(truncateDay(*e.From)) {
		return false
	}
	if e.To != nil && day.After(truncateDay(*e.To)) {
		return false
	}
	return true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type enabledWindow struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

func (e *Enabled) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*e = Enabled{Value: b}
		return nil
	}

	var w enabledWindow
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("enabled must be a boolean or a {from, to} window: %w", err)
	}

	out := Enabled{Value: true}
	if w.From != "" {
		from, err := parseDate(w.From)
		if err != nil {
			return fmt.Errorf("invalid enabled.from %q: %w", w.From, err)
		}
		out.From = &from
	}
	if w.To != "" {
		to, err := parseDate(w.To)
		if err != nil {
			return fmt.Errorf("invalid enabled.to %q: %w", w.To, err)
		}
		out.To = &to
	}
	*e = out
	return nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(dateLayout, raw)
}
