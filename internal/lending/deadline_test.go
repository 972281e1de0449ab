package lending

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) LocalDate { return LocalDate{Year: y, Month: m, Day: d} }

func TestResolveProvisionalFromStartAndDuration(t *testing.T) {
	start, _ := ParseTimeOfDay("14:00")
	got := ResolveReturnDeadline(DeadlineInput{
		StartDate:   date(2025, time.March, 10),
		StartTime:   &start,
		EndDate:     date(2025, time.March, 12),
		Duration:    Duration{Hours: 2, Minutes: 30},
		HasDuration: true,
	})
	want := NewLocalDateTime(2025, time.March, 10, 16, 30, 0)
	if got == nil || !got.Equal(want) {
		t.Fatalf("got %v, want %s", got, want)
	}
}

func TestResolveProvisionalDefaultsToMidnight(t *testing.T) {
	got := ResolveReturnDeadline(DeadlineInput{
		StartDate:   date(2025, time.March, 10),
		EndDate:     date(2025, time.March, 12),
		Duration:    Duration{Days: 1},
		HasDuration: true,
	})
	want := NewLocalDateTime(2025, time.March, 11, 0, 0, 0)
	if got == nil || !got.Equal(want) {
		t.Fatalf("got %v, want %s", got, want)
	}
}

func TestResolveFallsBackToEndOfDay(t *testing.T) {
	got := ResolveReturnDeadline(DeadlineInput{
		StartDate: date(2025, time.March, 10),
		EndDate:   date(2025, time.March, 12),
	})
	want := NewLocalDateTime(2025, time.March, 12, 23, 59, 59)
	if got == nil || !got.Equal(want) {
		t.Fatalf("got %v, want %s", got, want)
	}
}

func TestResolveStoredDeadlineWinsAfterPickup(t *testing.T) {
	// Once picked up, the stored deadline is authoritative even though
	// the request's start date and duration would compute differently.
	pickedUp := NewLocalDateTime(2025, time.March, 11, 9, 0, 0)
	stored := NewLocalDateTime(2025, time.March, 11, 11, 30, 0)
	start, _ := ParseTimeOfDay("14:00")
	got := ResolveReturnDeadline(DeadlineInput{
		PickedUpAt:     &pickedUp,
		StoredDeadline: &stored,
		StartDate:      date(2025, time.March, 10),
		StartTime:      &start,
		EndDate:        date(2025, time.March, 12),
		Duration:       Duration{Hours: 2, Minutes: 30},
		HasDuration:    true,
	})
	if got == nil || !got.Equal(stored) {
		t.Fatalf("got %v, want %s", got, stored)
	}
}

func TestResolvePickedUpWithoutStoredRecomputes(t *testing.T) {
	// Legacy rows may carry a pickup timestamp without a stored
	// deadline; the deadline then derives from the pickup instant.
	pickedUp := NewLocalDateTime(2025, time.March, 11, 9, 0, 0)
	got := ResolveReturnDeadline(DeadlineInput{
		PickedUpAt:  &pickedUp,
		StartDate:   date(2025, time.March, 10),
		EndDate:     date(2025, time.March, 12),
		Duration:    Duration{Hours: 2, Minutes: 30},
		HasDuration: true,
	})
	want := NewLocalDateTime(2025, time.March, 11, 11, 30, 0)
	if got == nil || !got.Equal(want) {
		t.Fatalf("got %v, want %s", got, want)
	}
}

func TestResolvePickedUpNoDurationUsesEndOfDay(t *testing.T) {
	pickedUp := NewLocalDateTime(2025, time.March, 11, 9, 0, 0)
	got := ResolveReturnDeadline(DeadlineInput{
		PickedUpAt: &pickedUp,
		EndDate:    date(2025, time.March, 12),
	})
	want := NewLocalDateTime(2025, time.March, 12, 23, 59, 59)
	if got == nil || !got.Equal(want) {
		t.Fatalf("got %v, want %s", got, want)
	}
}

func TestResolveNothingToResolve(t *testing.T) {
	if got := ResolveReturnDeadline(DeadlineInput{}); got != nil {
		t.Fatalf("expected nil deadline, got %s", got)
	}
}

func TestPickupDeadlineFromDuration(t *testing.T) {
	pickedUp := NewLocalDateTime(2025, time.March, 11, 9, 0, 0)
	got := PickupDeadline(pickedUp, Duration{Hours: 2, Minutes: 30}, true, date(2025, time.March, 12))
	want := NewLocalDateTime(2025, time.March, 11, 11, 30, 0)
	if !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestPickupDeadlineFallsBackToEndDate(t *testing.T) {
	pickedUp := NewLocalDateTime(2025, time.March, 11, 9, 0, 0)
	got := PickupDeadline(pickedUp, Duration{}, false, date(2025, time.March, 12))
	want := NewLocalDateTime(2025, time.March, 12, 23, 59, 59)
	if !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}
