// Package lending holds the pure domain logic for the borrow lifecycle:
// naive wall-clock values, borrow durations, the return-deadline
// calculator and the request status transition table.  Nothing in this
// package touches the database or the network, which keeps the rules
// testable without infrastructure.
package lending

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Wire layouts for naive local values.  Deadlines are stored and
// exchanged without a zone suffix on purpose: the obligation "return by
// 16:30" means 16:30 on the wall clock where the handoff happens, and
// round-tripping through UTC would shift it.
const (
	dateTimeLayout = "2006-01-02T15:04:05"
	dateLayout     = "2006-01-02"
	clockLayout    = "15:04:05"
	sqlLayout      = "2006-01-02 15:04:05"
)

// LocalDateTime is a zone-agnostic wall-clock instant.  Internally it
// carries a time.Time pinned to UTC, but the location is meaningless;
// only the clock fields (year..second) are significant.  Comparisons and
// arithmetic therefore behave as plain calendar math.
type LocalDateTime struct {
	t time.Time
}

// NewLocalDateTime builds a LocalDateTime from explicit clock fields.
func NewLocalDateTime(year int, month time.Month, day, hour, min, sec int) LocalDateTime {
	return LocalDateTime{t: time.Date(year, month, day, hour, min, sec, 0, time.UTC)}
}

// FromTime strips the zone from t and keeps only its wall-clock fields.
// Passing time.Now() yields "now" as the server's local clock reads it.
func FromTime(t time.Time) LocalDateTime {
	y, m, d := t.Date()
	return NewLocalDateTime(y, m, d, t.Hour(), t.Minute(), t.Second())
}

// ParseLocalDateTime parses the YYYY-MM-DDTHH:mm:ss boundary format.
// A trailing fraction or zone suffix is rejected; naive values only.
func ParseLocalDateTime(s string) (LocalDateTime, error) {
	t, err := time.ParseInLocation(dateTimeLayout, s, time.UTC)
	if err != nil {
		return LocalDateTime{}, fmt.Errorf("invalid local datetime %q: expected YYYY-MM-DDTHH:mm:ss", s)
	}
	return LocalDateTime{t: t}, nil
}

// Time exposes the underlying time.Time.  Callers must treat the
// location as meaningless.
func (l LocalDateTime) Time() time.Time { return l.t }

// IsZero reports whether the value is unset.
func (l LocalDateTime) IsZero() bool { return l.t.IsZero() }

// Before reports whether l is earlier than other on the wall clock.
func (l LocalDateTime) Before(other LocalDateTime) bool { return l.t.Before(other.t) }

// After reports whether l is later than other on the wall clock.
func (l LocalDateTime) After(other LocalDateTime) bool { return l.t.After(other.t) }

// Equal reports wall-clock equality.
func (l LocalDateTime) Equal(other LocalDateTime) bool { return l.t.Equal(other.t) }

// String renders the boundary wire format.
func (l LocalDateTime) String() string { return l.t.Format(dateTimeLayout) }

// Date returns the calendar date portion.
func (l LocalDateTime) Date() LocalDate {
	y, m, d := l.t.Date()
	return LocalDate{Year: y, Month: m, Day: d}
}

// MarshalJSON renders the value as a quoted naive datetime string.
func (l LocalDateTime) MarshalJSON() ([]byte, error) {
	if l.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + l.String() + `"`), nil
}

// UnmarshalJSON accepts a quoted naive datetime string or null.
func (l *LocalDateTime) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		*l = LocalDateTime{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid local datetime JSON: %s", s)
	}
	v, err := ParseLocalDateTime(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Value implements driver.Valuer so the value lands in a DATETIME column
// exactly as its clock fields read, with no zone conversion.
func (l LocalDateTime) Value() (driver.Value, error) {
	if l.IsZero() {
		return nil, nil
	}
	return l.t.Format(sqlLayout), nil
}

// Scan accepts DATETIME columns surfaced as time.Time (parseTime=true),
// []byte or string.  Any location attached by the driver is discarded.
func (l *LocalDateTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = LocalDateTime{}
		return nil
	case time.Time:
		*l = FromTime(v)
		return nil
	case []byte:
		return l.scanString(string(v))
	case string:
		return l.scanString(v)
	}
	return fmt.Errorf("cannot scan %T into LocalDateTime", src)
}

func (l *LocalDateTime) scanString(s string) error {
	t, err := time.ParseInLocation(sqlLayout, s, time.UTC)
	if err != nil {
		t, err = time.ParseInLocation(dateTimeLayout, s, time.UTC)
	}
	if err != nil {
		return fmt.Errorf("cannot scan %q into LocalDateTime", s)
	}
	*l = LocalDateTime{t: t}
	return nil
}

// LocalDate is a calendar date with no time-of-day component.
type LocalDate struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseLocalDate parses the YYYY-MM-DD boundary format.
func ParseLocalDate(s string) (LocalDate, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return LocalDate{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	y, m, d := t.Date()
	return LocalDate{Year: y, Month: m, Day: d}, nil
}

// IsZero reports whether the date is unset.
func (d LocalDate) IsZero() bool { return d.Year == 0 && d.Day == 0 }

// At combines the date with a time of day into a LocalDateTime.
func (d LocalDate) At(t TimeOfDay) LocalDateTime {
	return NewLocalDateTime(d.Year, d.Month, d.Day, t.Hour, t.Minute, t.Second)
}

// Midnight returns the first instant of the date.
func (d LocalDate) Midnight() LocalDateTime {
	return NewLocalDateTime(d.Year, d.Month, d.Day, 0, 0, 0)
}

// EndOfDay returns 23:59:59 on the date, the absolute deadline fallback.
func (d LocalDate) EndOfDay() LocalDateTime {
	return NewLocalDateTime(d.Year, d.Month, d.Day, 23, 59, 59)
}

// Before reports whether d is an earlier date than other.
func (d LocalDate) Before(other LocalDate) bool {
	return d.Midnight().Before(other.Midnight())
}

// String renders YYYY-MM-DD.
func (d LocalDate) String() string {
	return d.Midnight().Time().Format(dateLayout)
}

// MarshalJSON renders the date as a quoted YYYY-MM-DD string.
func (d LocalDate) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts a quoted YYYY-MM-DD string or null.
func (d *LocalDate) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		*d = LocalDate{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date JSON: %s", s)
	}
	v, err := ParseLocalDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Value stores the date as YYYY-MM-DD for DATE columns.
func (d LocalDate) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan accepts DATE columns surfaced as time.Time, []byte or string.
func (d *LocalDate) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = LocalDate{}
		return nil
	case time.Time:
		y, m, day := v.Date()
		*d = LocalDate{Year: y, Month: m, Day: day}
		return nil
	case []byte:
		p, err := ParseLocalDate(string(v))
		if err != nil {
			return err
		}
		*d = p
		return nil
	case string:
		p, err := ParseLocalDate(v)
		if err != nil {
			return err
		}
		*d = p
		return nil
	}
	return fmt.Errorf("cannot scan %T into LocalDate", src)
}

// TimeOfDay is a clock reading within a day.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay accepts HH:MM or HH:MM:SS.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	layout := clockLayout
	if len(s) == 5 {
		layout = "15:04"
	}
	t, err := time.ParseInLocation(layout, s, time.UTC)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time %q: expected HH:MM or HH:MM:SS", s)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
}

// String renders HH:MM:SS.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// Value stores the clock reading for TIME columns.
func (t TimeOfDay) Value() (driver.Value, error) { return t.String(), nil }

// Scan accepts TIME columns surfaced as []byte or string.
func (t *TimeOfDay) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = TimeOfDay{}
		return nil
	case []byte:
		p, err := ParseTimeOfDay(string(v))
		if err != nil {
			return err
		}
		*t = p
		return nil
	case string:
		p, err := ParseTimeOfDay(v)
		if err != nil {
			return err
		}
		*t = p
		return nil
	}
	return fmt.Errorf("cannot scan %T into TimeOfDay", src)
}
