package lending

import (
	"testing"
	"time"
)

func TestParseLocalDateTime(t *testing.T) {
	got, err := ParseLocalDateTime("2025-03-10T16:30:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := NewLocalDateTime(2025, time.March, 10, 16, 30, 0)
	if !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}
	if got.String() != "2025-03-10T16:30:00" {
		t.Fatalf("round trip produced %s", got)
	}
}

func TestParseLocalDateTimeRejectsZoneSuffix(t *testing.T) {
	if _, err := ParseLocalDateTime("2025-03-10T16:30:00Z"); err == nil {
		t.Fatal("zone suffix must be rejected")
	}
	if _, err := ParseLocalDateTime("2025-03-10 16:30:00"); err == nil {
		t.Fatal("space separator must be rejected")
	}
}

func TestFromTimeStripsZone(t *testing.T) {
	loc := time.FixedZone("somewhere", 3*3600)
	src := time.Date(2025, time.March, 10, 16, 30, 0, 0, loc)
	got := FromTime(src)
	want := NewLocalDateTime(2025, time.March, 10, 16, 30, 0)
	if !got.Equal(want) {
		t.Fatalf("got %s, want %s: wall clock must survive unchanged", got, want)
	}
}

func TestLocalDateEndOfDay(t *testing.T) {
	d, err := ParseLocalDate("2025-03-12")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := NewLocalDateTime(2025, time.March, 12, 23, 59, 59)
	if !d.EndOfDay().Equal(want) {
		t.Fatalf("got %s, want %s", d.EndOfDay(), want)
	}
}

func TestParseTimeOfDayAcceptsBothForms(t *testing.T) {
	short, err := ParseTimeOfDay("14:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	long, err := ParseTimeOfDay("14:00:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if short != long {
		t.Fatalf("HH:MM and HH:MM:SS must agree: %v vs %v", short, long)
	}
	if _, err := ParseTimeOfDay("25:00"); err == nil {
		t.Fatal("hour 25 must be rejected")
	}
}

func TestLocalDateTimeSQLValue(t *testing.T) {
	v, err := NewLocalDateTime(2025, time.March, 10, 16, 30, 0).Value()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "2025-03-10 16:30:00" {
		t.Fatalf("got %v, want DATETIME literal", v)
	}
	var zero LocalDateTime
	if v, _ := zero.Value(); v != nil {
		t.Fatalf("zero value must store NULL, got %v", v)
	}
}

func TestLocalDateTimeScanDiscardsDriverLocation(t *testing.T) {
	var l LocalDateTime
	src := time.Date(2025, time.March, 10, 16, 30, 0, 0, time.FixedZone("db", -5*3600))
	if err := l.Scan(src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !l.Equal(NewLocalDateTime(2025, time.March, 10, 16, 30, 0)) {
		t.Fatalf("scan shifted the wall clock: %s", l)
	}
}
