package contract

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var (
	ErrInvalidDate  = errors.New("contract dates must be YYYY-MM-DD")
	ErrInvertedTerm = errors.New("contract ends_on precedes starts_on")
)

// Contract is a yearly agreement attached to an account. Dates are optional.
type Contract struct {
	ID        string
	AccountID string
	Year      int
	StartsOn  *time.Time
	EndsOn    *time.Time
	CreatedAt time.Time
}

// FromColumns builds a contract from raw column values keyed by
// "year", "starts_on" and "ends_on". Blank values are treated as absent.
// The year is read from its leading digits, so "2024abc" is 2024 and a value
// with no leading digits is 0.
func FromColumns(cols map[string]string) (Contract, error) {
	c := Contract{Year: leadingInt(cols["year"])}

	var err error
	if c.StartsOn, err = parseDate(cols["starts_on"]); err != nil {
		return Contract{}, err
	}
	if c.EndsOn, err = parseDate(cols["ends_on"]); err != nil {
		return Contract{}, err
	}
	return c, c.Validate()
}

// Validate checks the term is not inverted.
func (c Contract) Validate() error {
	if c.StartsOn != nil && c.EndsOn != nil && c.EndsOn.Before(*c.StartsOn) {
		return ErrInvertedTerm
	}
	return nil
}

// Covers reports whether day falls within the contract term. Open ends are unbounded.
func (c Contract) Covers(day time.Time) bool {
	d := truncateDay(day)
	if c.StartsOn != nil && d.Before(*c.StartsOn) {
		return false
	}
	if c.EndsOn != nil && d.After(*c.EndsOn) {
		return false
	}
	return true
}

// leadingInt parses an optional sign followed by the longest run of digits.
// Anything else yields 0.
func leadingInt(raw string) int {
	raw = strings.TrimSpace(raw)
	end := 0
	if end < len(raw) && (raw[end] == '+' || raw[end] == '-') {
		end++
	}
	start := end
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	if end == start {
		return 0
	}
	n, err := strconv.Atoi(raw[:end])
	if err != nil {
		return 0
	}
	return n
}

// parseDate accepts a plain date or an RFC 3339 timestamp, keeping only the day.
func parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		d := truncateDay(t)
		return &d, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
