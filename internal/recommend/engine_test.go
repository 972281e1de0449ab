package recommend

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestCurrentPeriod(t *testing.T) {
	cases := []struct {
		date time.Time
		want Period
	}{
		{day(2025, time.July, 4), PeriodSummer},
		{day(2025, time.August, 10), PeriodSummer},
		{day(2025, time.August, 20), PeriodSemesterStart},
		{day(2025, time.September, 5), PeriodSemesterStart},
		{day(2025, time.January, 20), PeriodSemesterStart},
		{day(2025, time.February, 10), PeriodSemesterStart},
		{day(2025, time.October, 15), PeriodMidterms},
		{day(2025, time.November, 10), PeriodMidterms},
		{day(2025, time.March, 20), PeriodMidterms},
		{day(2025, time.April, 10), PeriodMidterms},
		{day(2025, time.November, 20), PeriodFinals},
		{day(2025, time.December, 10), PeriodFinals},
		{day(2025, time.April, 25), PeriodFinals},
		{day(2025, time.May, 5), PeriodFinals},
		{day(2025, time.December, 20), PeriodWinterBreak},
		{day(2025, time.January, 10), PeriodWinterBreak},
	}
	for _, tc := range cases {
		if got := CurrentPeriod(tc.date); got != tc.want {
			t.Errorf("CurrentPeriod(%s) = %s, want %s", tc.date.Format("2006-01-02"), got, tc.want)
		}
	}
}

func TestScoreWeighting(t *testing.T) {
	// "calculator" in the title scores 10, a matching category 15.
	c := Candidate{Title: "TI-84 Calculator", Category: "Electronics"}
	if got := Score(c, PeriodMidterms); got != 25 {
		t.Fatalf("got %d, want 25", got)
	}
	// Keyword only in the description scores 5.
	c = Candidate{Title: "TI-84", Description: "graphing calculator"}
	if got := Score(c, PeriodMidterms); got != 5 {
		t.Fatalf("got %d, want 5", got)
	}
	// Unrelated item scores nothing.
	c = Candidate{Title: "Kayak", Category: "Outdoor"}
	if got := Score(c, PeriodMidterms); got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
	if got := Score(c, PeriodGeneral); got != 0 {
		t.Fatalf("general period has no rule, got %d", got)
	}
}

func TestClampLimit(t *testing.T) {
	if got := ClampLimit(0, false); got != 3 {
		t.Fatalf("default should be 3, got %d", got)
	}
	if got := ClampLimit(0, true); got != 1 {
		t.Fatalf("lower clamp should be 1, got %d", got)
	}
	if got := ClampLimit(99, true); got != 5 {
		t.Fatalf("upper clamp should be 5, got %d", got)
	}
	if got := ClampLimit(4, true); got != 4 {
		t.Fatalf("in-range value should pass through, got %d", got)
	}
}

func TestPickOrdersByScoreThenFills(t *testing.T) {
	candidates := []Candidate{
		{ID: 1, Title: "Kayak"},
		{ID: 2, Title: "Reading Lamp"},
		{ID: 3, Title: "Screwdriver Set", Category: "Tools"},
		{ID: 4, Title: "Winter Coat", Category: "Clothing"},
	}
	got := Pick(candidates, PeriodSemesterStart, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 picks, got %d", len(got))
	}
	if got[0] != 3 {
		t.Fatalf("highest scorer should come first, got %v", got)
	}
	if got[1] != 2 {
		t.Fatalf("second scorer should follow, got %v", got)
	}
	// The remainder fills from input order (newest first by convention).
	if got[2] != 1 {
		t.Fatalf("fill should preserve input order, got %v", got)
	}
}

func TestPickRespectsLimit(t *testing.T) {
	candidates := []Candidate{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}}
	if got := Pick(candidates, PeriodGeneral, 1); len(got) != 1 || got[0] != 1 {
		t.Fatalf("got %v", got)
	}
	if got := Pick(candidates, PeriodGeneral, 5); len(got) != 2 {
		t.Fatalf("cannot pick more than exist, got %v", got)
	}
}

func TestExplanation(t *testing.T) {
	if Explanation(PeriodFinals) != "Everything you need to ace your finals!" {
		t.Fatal("finals explanation mismatch")
	}
	if Explanation(PeriodGeneral) != "Recommended items for you!" {
		t.Fatal("general explanation mismatch")
	}
}
