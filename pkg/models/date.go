package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// dateLayout is the ISO calendar date format used on the wire and in DATE
// columns. Lexicographic order on this layout equals calendar order.
const dateLayout = "2006-01-02"

// Date is an ISO calendar date (no time component). It binds to DATE
// columns under both PostgreSQL and SQLite and serializes as "YYYY-MM-DD".
type Date string

// ParseDate validates an ISO calendar date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return Date(t.Format(dateLayout)), nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if d == "" {
		return nil, nil
	}
	if _, err := time.Parse(dateLayout, string(d)); err != nil {
		return nil, err
	}
	return string(d), nil
}

// Scan implements sql.Scanner. PostgreSQL drivers hand back time.Time for
// DATE columns; SQLite hands back the stored text.
func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*d = ""
	case time.Time:
		*d = Date(v.Format(dateLayout))
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("failed to scan date: unsupported type %T", value)
	}
	return nil
}

func (d *Date) scanString(s string) error {
	if len(s) >= len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) String() string {
	return string(d)
}
