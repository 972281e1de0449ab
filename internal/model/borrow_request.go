package model

import (
	"time"

	"github.com/iliyamo/campus-lending/internal/lending"
)

// BorrowRequest represents a row in the `borrow_requests` table.  It is
// created pending by a borrower, decided by the owner, and tracks the
// physical handoff: PickedUpAt anchors the authoritative return
// deadline, which is recomputed exactly once at the pickup transition.
//
// OwnerID is denormalized from the item at creation time and never
// changes afterwards.  ReturnDeadline may hold a provisional value
// before pickup; pickup always overwrites it.
//
// Duration components are nullable so that "no duration supplied" is
// distinguishable from an explicit zero; the deadline calculator falls
// back to end-of-day on EndDate only when all four are absent.
//
// Fields:
//  ID              – primary key identifier.
//  ItemID          – item being requested.
//  BorrowerID      – user asking to borrow.
//  OwnerID         – item owner at creation time (denormalized).
//  Status          – pending | approved | rejected | returned.
//  StartDate       – requested borrow start date.
//  EndDate         – requested borrow end date.
//  StartTime       – requested start time of day (nullable).
//  DurationMonths  – borrow length, months component (nullable).
//  DurationDays    – borrow length, days component (nullable).
//  DurationHours   – borrow length, hours component (nullable).
//  DurationMinutes – borrow length, minutes component (nullable).
//  ReturnDeadline  – stored return deadline, naive local time (nullable).
//  PickedUpAt      – when the handoff happened, naive local time (nullable).
//  RequestDate     – when the request was created.
type BorrowRequest struct {
	ID              uint64                 // borrow_requests.id
	ItemID          uint64                 // borrow_requests.item_id
	BorrowerID      uint64                 // borrow_requests.borrower_id
	OwnerID         uint64                 // borrow_requests.owner_id
	Status          string                 // borrow_requests.status
	StartDate       lending.LocalDate      // borrow_requests.borrow_start_date
	EndDate         lending.LocalDate      // borrow_requests.borrow_end_date
	StartTime       *lending.TimeOfDay     // borrow_requests.borrow_start_time (nullable)
	DurationMonths  *int                   // borrow_requests.duration_months (nullable)
	DurationDays    *int                   // borrow_requests.duration_days (nullable)
	DurationHours   *int                   // borrow_requests.duration_hours (nullable)
	DurationMinutes *int                   // borrow_requests.duration_minutes (nullable)
	ReturnDeadline  *lending.LocalDateTime // borrow_requests.return_deadline_datetime (nullable)
	PickedUpAt      *lending.LocalDateTime // borrow_requests.picked_up_at (nullable)
	RequestDate     time.Time              // borrow_requests.request_date
}

// Duration assembles the borrow length from the nullable components.
// The second result reports whether any component was supplied at all.
func (r *BorrowRequest) Duration() (lending.Duration, bool) {
	var d lending.Duration
	has := false
	if r.DurationMonths != nil {
		d.Months = *r.DurationMonths
		has = true
	}
	if r.DurationDays != nil {
		d.Days = *r.DurationDays
		has = true
	}
	if r.DurationHours != nil {
		d.Hours = *r.DurationHours
		has = true
	}
	if r.DurationMinutes != nil {
		d.Minutes = *r.DurationMinutes
		has = true
	}
	return d, has
}

// DeadlineInput packs the request's deadline sources for the resolver.
func (r *BorrowRequest) DeadlineInput() lending.DeadlineInput {
	dur, has := r.Duration()
	return lending.DeadlineInput{
		PickedUpAt:     r.PickedUpAt,
		StoredDeadline: r.ReturnDeadline,
		StartDate:      r.StartDate,
		StartTime:      r.StartTime,
		EndDate:        r.EndDate,
		Duration:       dur,
		HasDuration:    has,
	}
}
