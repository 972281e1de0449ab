package lending

import "time"

// Duration is a calendar-aware borrow length.  Months and days follow
// calendar arithmetic, hours and minutes are exact.  All components
// default to zero.
type Duration struct {
	Months  int `json:"months"`
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// IsZero reports whether every component is zero.
func (d Duration) IsZero() bool {
	return d.Months == 0 && d.Days == 0 && d.Hours == 0 && d.Minutes == 0
}

// AddTo applies the duration to base in the fixed order
// months -> days -> hours -> minutes.  The order is load-bearing: the
// month step establishes the day-of-month baseline before days are
// added, and hour/minute overflow then rolls the day forward.
// Month addition clamps to the last day of the target month, so
// 2024-01-31 plus one month lands on 2024-02-29, not in March.
func (d Duration) AddTo(base LocalDateTime) LocalDateTime {
	t := base.Time()
	if d.Months > 0 {
		t = addMonthsClamped(t, d.Months)
	}
	if d.Days > 0 {
		t = t.AddDate(0, 0, d.Days)
	}
	t = t.Add(time.Duration(d.Hours)*time.Hour + time.Duration(d.Minutes)*time.Minute)
	return LocalDateTime{t: t}
}

// addMonthsClamped advances t by n months, clamping the day of month to
// the length of the target month.  time.Time.AddDate would instead
// normalize Feb 31 into early March, which silently extends a borrow.
func addMonthsClamped(t time.Time, n int) time.Time {
	y, m, day := t.Date()
	total := int(m) - 1 + n
	ty := y + total/12
	tm := time.Month(total%12 + 1)
	if last := daysInMonth(ty, tm); day > last {
		day = last
	}
	return time.Date(ty, tm, day, t.Hour(), t.Minute(), t.Second(), 0, t.Location())
}

// daysInMonth returns the number of days in the given month.
func daysInMonth(year int, month time.Month) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
