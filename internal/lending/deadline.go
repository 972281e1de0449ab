package lending

// DeadlineInput gathers every candidate source of a return deadline for
// one borrow request.  HasDuration distinguishes "all components absent"
// from an explicit zero-length duration.
type DeadlineInput struct {
	PickedUpAt     *LocalDateTime // when the physical handoff happened, nil before pickup
	StoredDeadline *LocalDateTime // return_deadline_datetime as persisted, nil if unset
	StartDate      LocalDate      // requested borrow start date
	StartTime      *TimeOfDay     // requested start time, nil means midnight
	EndDate        LocalDate      // requested borrow end date
	Duration       Duration       // borrow length components
	HasDuration    bool           // whether any duration component was supplied
}

// ResolveReturnDeadline produces the single authoritative return
// deadline, or nil when no candidate source exists.  Precedence, highest
// first:
//
//  1. picked up and a stored deadline exists: trust the stored value
//     verbatim; it was derived from the pickup instant and must not be
//     recomputed from stale inputs.
//  2. picked up but nothing stored (legacy rows): pickup + duration.
//  3. not picked up: provisional estimate from the requested start
//     date/time + duration.  Advisory only; superseded at pickup.
//  4. no duration at all: 23:59:59 on the requested end date.
//
// The clock starts at pickup, not at the requested start time: the
// requested start is a scheduling convenience, the obligation period
// begins at the handoff.
func ResolveReturnDeadline(in DeadlineInput) *LocalDateTime {
	if in.PickedUpAt != nil && !in.PickedUpAt.IsZero() {
		if in.StoredDeadline != nil && !in.StoredDeadline.IsZero() {
			d := *in.StoredDeadline
			return &d
		}
		if in.HasDuration {
			d := in.Duration.AddTo(*in.PickedUpAt)
			return &d
		}
		if !in.EndDate.IsZero() {
			d := in.EndDate.EndOfDay()
			return &d
		}
		return nil
	}

	if in.HasDuration && !in.StartDate.IsZero() {
		start := in.StartDate.Midnight()
		if in.StartTime != nil {
			start = in.StartDate.At(*in.StartTime)
		}
		d := in.Duration.AddTo(start)
		return &d
	}

	if !in.EndDate.IsZero() {
		d := in.EndDate.EndOfDay()
		return &d
	}
	return nil
}

// PickupDeadline computes the value written at the pickup transition:
// pickup + duration, falling back to end-of-day on the end date when no
// duration was supplied.  Whatever provisional value was stored before
// is overwritten, never merged.
func PickupDeadline(pickedUpAt LocalDateTime, dur Duration, hasDur bool, endDate LocalDate) LocalDateTime {
	if hasDur {
		return dur.AddTo(pickedUpAt)
	}
	if !endDate.IsZero() {
		return endDate.EndOfDay()
	}
	return pickedUpAt
}
