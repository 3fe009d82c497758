package journal

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrValidation marks caller mistakes (malformed dates, unknown enum values).
// These are surfaced as-is and never retried.
var ErrValidation = errors.New("validation failed")

// TradeFilter narrows a user's trade set. Date bounds apply to entry_time and
// are inclusive on both ends; a bare YYYY-MM-DD parses to midnight UTC, so an
// end date without a time component behaves like the raw string comparison it
// replaces.
type TradeFilter struct {
	StartDate string      `form:"start_date" json:"start_date,omitempty"`
	EndDate   string      `form:"end_date" json:"end_date,omitempty"`
	Symbol    string      `form:"symbol" json:"symbol,omitempty"`
	Side      TradeSide   `form:"side" json:"side,omitempty"`
	Status    TradeStatus `form:"status" json:"status,omitempty"`

	start *time.Time
	end   *time.Time
}

var filterTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseFilterTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range filterTimeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable date %q", ErrValidation, raw)
}

// Normalize validates the filter in place: uppercases the symbol, checks enum
// values and parses date bounds. Must be called before the filter is handed to
// the store.
func (f *TradeFilter) Normalize() error {
	if f == nil {
		return nil
	}
	f.Symbol = strings.ToUpper(strings.TrimSpace(f.Symbol))
	if f.Side != "" && !f.Side.Valid() {
		return fmt.Errorf("%w: unknown side %q", ErrValidation, f.Side)
	}
	if f.Status != "" && !f.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, f.Status)
	}
	f.start, f.end = nil, nil
	if strings.TrimSpace(f.StartDate) != "" {
		ts, err := parseFilterTime(f.StartDate)
		if err != nil {
			return err
		}
		f.start = &ts
	}
	if strings.TrimSpace(f.EndDate) != "" {
		ts, err := parseFilterTime(f.EndDate)
		if err != nil {
			return err
		}
		f.end = &ts
	}
	return nil
}

// StartTime returns the parsed lower bound, nil when unset.
func (f *TradeFilter) StartTime() *time.Time {
	if f == nil {
		return nil
	}
	return f.start
}

// EndTime returns the parsed upper bound, nil when unset.
func (f *TradeFilter) EndTime() *time.Time {
	if f == nil {
		return nil
	}
	return f.end
}
