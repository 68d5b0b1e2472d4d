package model

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// DateLayout is the wire and storage format of every business date.
const DateLayout = "2006-01-02"

// Date is a calendar day ("YYYY-MM-DD"). It is stored as a SQL date and compared
// lexicographically, which matches chronological order for this layout.
type Date string

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// ParseDate validates s against DateLayout.
func ParseDate(s string) (Date, error) {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", fmt.Errorf("invalid date %q, use YYYY-MM-DD", s)
	}
	return Date(s), nil
}

func (d Date) String() string { return string(d) }

// Time returns midnight of d in loc.
func (d Date) Time(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, string(d), loc)
}

// AddDays shifts the date by n days (n may be negative).
func (d Date) AddDays(n int) Date {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return d
	}
	return DateOf(t.AddDate(0, 0, n))
}

func (d Date) Value() (driver.Value, error) {
	if d == "" {
		return nil, nil
	}
	return string(d), nil
}

// Scan accepts text (postgres simple protocol, sqlite) and time values (pgx date).
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = ""
	case time.Time:
		*d = DateOf(v)
	case string:
		*d = Date(trimDate(v))
	case []byte:
		*d = Date(trimDate(string(v)))
	default:
		return fmt.Errorf("model.Date: cannot scan %T", src)
	}
	return nil
}

func trimDate(s string) string {
	if len(s) > len(DateLayout) {
		return s[:len(DateLayout)]
	}
	return s
}
