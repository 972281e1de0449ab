package lending

import (
	"testing"
	"time"
)

func TestAddToAppliesComponentsInOrder(t *testing.T) {
	base := NewLocalDateTime(2025, time.March, 10, 14, 0, 0)
	got := Duration{Hours: 2, Minutes: 30}.AddTo(base)
	want := NewLocalDateTime(2025, time.March, 10, 16, 30, 0)
	if !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestAddToMinuteOverflowRollsDay(t *testing.T) {
	base := NewLocalDateTime(2025, time.March, 10, 23, 30, 0)
	got := Duration{Minutes: 45}.AddTo(base)
	want := NewLocalDateTime(2025, time.March, 11, 0, 15, 0)
	if !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestAddToDaysCrossMonthBoundary(t *testing.T) {
	base := NewLocalDateTime(2025, time.January, 30, 9, 0, 0)
	got := Duration{Days: 3}.AddTo(base)
	want := NewLocalDateTime(2025, time.February, 2, 9, 0, 0)
	if !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestAddToMonthClampsToShorterMonth(t *testing.T) {
	// Jan 31 + 1 month lands on the last day of February, and the
	// remaining 90 minutes then roll into March 1st.
	base := NewLocalDateTime(2024, time.January, 31, 23, 0, 0)
	got := Duration{Months: 1, Minutes: 90}.AddTo(base)
	want := NewLocalDateTime(2024, time.March, 1, 0, 30, 0)
	if !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestAddToMonthClampNonLeapYear(t *testing.T) {
	base := NewLocalDateTime(2025, time.January, 31, 12, 0, 0)
	got := Duration{Months: 1}.AddTo(base)
	want := NewLocalDateTime(2025, time.February, 28, 12, 0, 0)
	if !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestAddToMonthsAcrossYear(t *testing.T) {
	base := NewLocalDateTime(2024, time.October, 31, 8, 0, 0)
	got := Duration{Months: 4}.AddTo(base)
	want := NewLocalDateTime(2025, time.February, 28, 8, 0, 0)
	if !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestAddToCombinedComponents(t *testing.T) {
	base := NewLocalDateTime(2025, time.March, 1, 10, 0, 0)
	got := Duration{Months: 1, Days: 2, Hours: 3, Minutes: 15}.AddTo(base)
	want := NewLocalDateTime(2025, time.April, 3, 13, 15, 0)
	if !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestIsZero(t *testing.T) {
	if !(Duration{}).IsZero() {
		t.Fatal("empty duration should be zero")
	}
	if (Duration{Minutes: 1}).IsZero() {
		t.Fatal("1 minute should not be zero")
	}
}
