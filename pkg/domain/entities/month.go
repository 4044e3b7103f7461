package entities

import (
	"fmt"
	"strings"
	"time"
)

var monthLayouts = []string{
	"2006-01",
	"01-2006",
	"2006/01",
	"01/2006",
	"2006-01-02",
	"Jan 2006",
	"January 2006",
	"Jan-2006",
	"200601",
}

// Month is a calendar month
type Month struct {
	Year  int
	Month time.Month
}

// NewMonth creates a Month, normalizing overflowing month numbers
func NewMonth(year int, month time.Month) Month {
	return MonthOf(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
}

// MonthOf returns the calendar month containing t
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses a month-year period in any of the accepted layouts
func ParseMonth(s string) (Month, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Month{}, fmt.Errorf("%w: empty period", ErrInvalidMonth)
	}
	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return MonthOf(t), nil
		}
	}
	return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
}

// IsZero reports whether m is the zero Month
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// Time returns the first instant of the month in UTC
func (m Month) Time() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Index returns a strictly increasing ordinal for calendar arithmetic
func (m Month) Index() int {
	return m.Year*12 + int(m.Month) - 1
}

// MonthsSince returns the number of calendar months from other to m
func (m Month) MonthsSince(other Month) int {
	return m.Index() - other.Index()
}

// AddMonths returns m shifted by n calendar months
func (m Month) AddMonths(n int) Month {
	return NewMonth(m.Year, m.Month+time.Month(n))
}

// Before reports whether m is earlier than other
func (m Month) Before(other Month) bool {
	return m.Index() < other.Index()
}

// After reports whether m is later than other
func (m Month) After(other Month) bool {
	return m.Index() > other.Index()
}

// String formats the month as YYYY-MM
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// MarshalText implements encoding.TextMarshaler
func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}
