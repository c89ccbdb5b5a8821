package reftext

import (
	"fmt"
	"strconv"
	"time"
)

// maxDateMillis is the largest distance from the Unix epoch, in milliseconds,
// of a representable instant.
const maxDateMillis = 8_640_000_000_000_000

const isoLayout = "2006-01-02T15:04:05.000Z"

// Date is a calendar instant that may be invalid. It exists for values built
// from text that might not name a real point in time; serializing an invalid
// Date fails with an INVALID_DATE error. Plain time.Time values are accepted
// directly and are valid when they fall inside the representable range.
type Date struct {
	t     time.Time
	valid bool
}

// DateOf wraps t. The result is invalid when t lies outside the
// representable range of ±8.64e15 milliseconds around the Unix epoch.
func DateOf(t time.Time) Date {
	return Date{t: t, valid: inDateRange(t)}
}

// ParseDate parses an ISO-8601 instant ("2024-01-01T00:00:00.000Z",
// "+275760-09-13T00:00:00.000Z", "2024-01-01"). Unparseable input yields an
// invalid Date rather than an error.
func ParseDate(s string) Date {
	t, err := parseISO(s)
	if err != nil {
		return Date{}
	}
	return DateOf(t)
}

// Valid reports whether d names a real instant.
func (d Date) Valid() bool { return d.valid }

// Time returns the instant. It is the zero time for an invalid Date.
func (d Date) Time() time.Time {
	if !d.valid {
		return time.Time{}
	}
	return d.t
}

// String returns the ISO-8601 form, or "Invalid Date".
func (d Date) String() string {
	if !d.valid {
		return "Invalid Date"
	}
	return formatISO(d.t)
}

func inDateRange(t time.Time) bool {
	ms := t.UnixMilli()
	return ms >= -maxDateMillis && ms <= maxDateMillis
}

// dateValue extracts the instant from a time.Time or Date.
func dateValue(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, inDateRange(x)
	case Date:
		return x.t, x.valid
	}
	return time.Time{}, false
}

// formatISO renders t in UTC with millisecond precision. Years outside
// 0..9999 use the expanded six digit form with an explicit sign.
func formatISO(t time.Time) string {
	t = time.UnixMilli(t.UnixMilli()).UTC()
	year := t.Year()
	if year >= 0 && year <= 9999 {
		return t.Format(isoLayout)
	}
	sign := '+'
	if year < 0 {
		sign = '-'
		year = -year
	}
	return fmt.Sprintf("%c%06d%s", sign, year, t.Format("-01-02T15:04:05.000Z"))
}

// parseISO is the inverse of formatISO. It also accepts any RFC 3339
// timestamp and a bare calendar date, which is taken as UTC midnight.
func parseISO(s string) (time.Time, error) {
	if len(s) >= 8 && (s[0] == '+' || s[0] == '-') && s[7] == '-' {
		return parseExpandedISO(s)
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return checkDateRange(t)
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("not an ISO-8601 instant: %q", s)
	}
	return checkDateRange(t)
}

func parseExpandedISO(s string) (time.Time, error) {
	digits := s[1:7]
	for i := 0; i < len(digits); i++ {
		if !isDigit(digits[i]) {
			return time.Time{}, fmt.Errorf("invalid expanded year in %q", s)
		}
	}
	year, err := strconv.Atoi(digits)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid expanded year in %q: %w", s, err)
	}
	if s[0] == '-' {
		year = -year
	}

	// Parse the remainder against a leap year so February 29 survives, then
	// reject it explicitly when the real year has no such day.
	const anchor = 2000
	t, err := time.Parse(time.RFC3339Nano, strconv.Itoa(anchor)+s[7:])
	if err != nil {
		return time.Time{}, fmt.Errorf("not an ISO-8601 instant: %q", s)
	}
	if t.Month() == time.February && t.Day() == 29 && !isLeapYear(year) {
		return time.Time{}, fmt.Errorf("day out of range in %q", s)
	}
	return checkDateRange(t.AddDate(year-anchor, 0, 0))
}

func checkDateRange(t time.Time) (time.Time, error) {
	if !inDateRange(t) {
		return time.Time{}, fmt.Errorf("instant %s is outside the representable range", t.Format(time.RFC3339))
	}
	return time.UnixMilli(t.UnixMilli()).UTC(), nil
}

func isLeapYear(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}
