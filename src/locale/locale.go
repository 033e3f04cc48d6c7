// Package locale holds the fixed regional presentation contract used for every displayed
// timestamp and number: day.month.year dates and space-grouped digits (ru-RU conventions).
package locale

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// TimeLayout mirrors the ru-RU short date-time rendering, e.g. "18.10.2026, 14:03:05".
const TimeLayout = "02.01.2006, 15:04:05"

// maxFractionDigits matches the default number rendering of the dashboard (up to 3 decimals).
const maxFractionDigits = 3

// Formatter renders times and numbers. The zero value is not usable; use New or Default.
type Formatter struct {
	loc     *time.Location
	printer *message.Printer
}

// New returns a Formatter rendering times in loc (nil means time.Local).
func New(loc *time.Location) Formatter {
	if loc == nil {
		loc = time.Local
	}
	return Formatter{loc: loc, printer: message.NewPrinter(language.Russian)}
}

// Default renders times in the process-local zone.
func Default() Formatter { return New(time.Local) }

// LoadLocation resolves a configured zone name; "", "Local" and "UTC" are accepted besides IANA names.
func LoadLocation(name string) (*time.Location, error) {
	switch strings.TrimSpace(name) {
	case "", "Local", "local":
		return time.Local, nil
	case "UTC", "utc":
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

// Location returns the zone used for time labels.
func (f Formatter) Location() *time.Location {
	if f.loc == nil {
		return time.Local
	}
	return f.loc
}

// UnixTime converts seconds since the epoch into the formatter's zone (ms precision).
func (f Formatter) UnixTime(sec int64) time.Time {
	return time.UnixMilli(sec * 1000).In(f.Location())
}

// Time formats t as a display label.
func (f Formatter) Time(t time.Time) string {
	return t.In(f.Location()).Format(TimeLayout)
}

// Number formats v with digit grouping and at most three fraction digits.
func (f Formatter) Number(v float64) string {
	p := f.printer
	if p == nil {
		p = message.NewPrinter(language.Russian)
	}
	return p.Sprint(number.Decimal(v, number.MaxFractionDigits(maxFractionDigits)))
}
