// Package service coordinates the borrow lifecycle across repositories:
// admission checks for new requests, owner decisions, the pickup and
// return handoffs, and the lifecycle events published after commit.
// All multi-row steps run inside a transaction with the item or request
// row locked, so concurrent actors serialize instead of racing.
package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/campus-lending/internal/lending"
	"github.com/iliyamo/campus-lending/internal/model"
	"github.com/iliyamo/campus-lending/internal/queue"
	"github.com/iliyamo/campus-lending/internal/repository"
)

// ItemStore is the slice of the item repository the lifecycle needs.
type ItemStore interface {
	DB() *sql.DB
	GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Item, error)
	SetAvailabilityTx(ctx context.Context, tx *sql.Tx, itemID uint64, available bool) error
}

// BorrowStore is the slice of the borrow repository the lifecycle needs.
type BorrowStore interface {
	DB() *sql.DB
	CreateTx(ctx context.Context, tx *sql.Tx, req *model.BorrowRequest) error
	GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.BorrowRequest, error)
	ExistsPendingTx(ctx context.Context, tx *sql.Tx, itemID, borrowerID uint64) (bool, error)
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, from, to string) error
	MarkPickedUpTx(ctx context.Context, tx *sql.Tx, id uint64, at, deadline lending.LocalDateTime) error
	DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error
	GetDetailByID(ctx context.Context, id uint64) (*repository.BorrowRequestDetail, error)
	ListByBorrower(ctx context.Context, borrowerID uint64, status string) ([]repository.BorrowRequestDetail, error)
	ListByOwner(ctx context.Context, ownerID uint64, status string) ([]repository.BorrowRequestDetail, error)
}

// BorrowService owns the borrow request lifecycle.
type BorrowService struct {
	items   ItemStore
	borrows BorrowStore
	publish func(context.Context, queue.BorrowEvent) error
}

// NewBorrowService wires the service to its stores.
func NewBorrowService(items ItemStore, borrows BorrowStore) *BorrowService {
	return &BorrowService{items: items, borrows: borrows, publish: PublishBorrowEvent}
}

// CreateBorrowInput carries a validated borrow request submission.
type CreateBorrowInput struct {
	ItemID      uint64
	BorrowerID  uint64
	StartDate   lending.LocalDate
	EndDate     lending.LocalDate
	StartTime   *lending.TimeOfDay
	Duration    *lending.Duration
	ExactReturn *lending.LocalDateTime // caller-supplied exact deadline, optional
}

func (in CreateBorrowInput) validate() error {
	if in.StartDate.IsZero() {
		return lending.NewValidationError("borrow_start_date", "required")
	}
	if in.EndDate.IsZero() {
		return lending.NewValidationError("borrow_end_date", "required")
	}
	if in.EndDate.Before(in.StartDate) {
		return lending.NewValidationError("borrow_end_date", "must not precede borrow_start_date")
	}
	if d := in.Duration; d != nil {
		if d.Months < 0 || d.Days < 0 || d.Hours < 0 || d.Minutes < 0 {
			return lending.NewValidationError("duration", "components must be non-negative")
		}
	}
	return nil
}

// Create admits a new borrow request. The item row is locked for the
// duration of the checks so two borrowers racing for the same item see
// each other's outcome:
//
//   - the item must exist and be available,
//   - the borrower must not be the owner,
//   - the borrower must not already have a pending request for it.
//
// The request is stored pending. The deadline column stays empty unless
// the caller supplied an exact return datetime; provisional deadlines
// are resolved at read time and the authoritative one is written at
// pickup.
func (s *BorrowService) Create(ctx context.Context, in CreateBorrowInput) (*model.BorrowRequest, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	tx, err := s.items.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	item, err := s.items.GetByIDForUpdateTx(ctx, tx, in.ItemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID == in.BorrowerID {
		return nil, lending.ErrSelfBorrow
	}
	if !item.Available {
		return nil, lending.ErrItemUnavailable
	}
	exists, err := s.borrows.ExistsPendingTx(ctx, tx, in.ItemID, in.BorrowerID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, lending.ErrDuplicatePending
	}

	req := &model.BorrowRequest{
		ItemID:     in.ItemID,
		BorrowerID: in.BorrowerID,
		OwnerID:    item.OwnerID,
		Status:     lending.StatusPending,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		StartTime:  in.StartTime,
	}
	if d := in.Duration; d != nil {
		req.DurationMonths = &d.Months
		req.DurationDays = &d.Days
		req.DurationHours = &d.Hours
		req.DurationMinutes = &d.Minutes
	}
	if in.ExactReturn != nil && !in.ExactReturn.IsZero() {
		v := *in.ExactReturn
		req.ReturnDeadline = &v
	}
	if err := s.borrows.CreateTx(ctx, tx, req); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	s.emit(queue.EventRequested, req, item.Title)
	return req, nil
}

// Approve moves a pending request to approved and takes the item off
// the market. Only the item owner may approve, and only while the item
// is still available; a second approval on the same item conflicts.
func (s *BorrowService) Approve(ctx context.Context, requestID, actorID uint64) (*model.BorrowRequest, error) {
	return s.decide(ctx, requestID, actorID, lending.StatusApproved, "approve", queue.EventApproved)
}

// Reject moves a pending request to rejected. The item's availability
// is untouched.
func (s *BorrowService) Reject(ctx context.Context, requestID, actorID uint64) (*model.BorrowRequest, error) {
	return s.decide(ctx, requestID, actorID, lending.StatusRejected, "reject", queue.EventRejected)
}

func (s *BorrowService) decide(ctx context.Context, requestID, actorID uint64, to, verb, event string) (*model.BorrowRequest, error) {
	tx, err := s.borrows.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	req, err := s.borrows.GetByIDForUpdateTx(ctx, tx, requestID)
	if err != nil {
		return nil, err
	}
	if req.OwnerID != actorID {
		return nil, lending.ErrForbidden
	}
	if !lending.CanTransition(req.Status, to) {
		return nil, lending.NewInvalidTransition(req.Status, verb)
	}
	var itemTitle string
	if to == lending.StatusApproved {
		item, err := s.items.GetByIDForUpdateTx(ctx, tx, req.ItemID)
		if err != nil {
			return nil, err
		}
		if !item.Available {
			return nil, lending.ErrItemUnavailable
		}
		itemTitle = item.Title
		if err := s.items.SetAvailabilityTx(ctx, tx, req.ItemID, false); err != nil {
			return nil, err
		}
	}
	if err := s.borrows.UpdateStatusTx(ctx, tx, req.ID, req.Status, to); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	req.Status = to
	s.emit(event, req, itemTitle)
	return req, nil
}

// Cancel deletes a pending request. Only the borrower may cancel, and
// only while the request is still pending; a decided request keeps its
// row as history.
func (s *BorrowService) Cancel(ctx context.Context, requestID, actorID uint64) error {
	tx, err := s.borrows.DB().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	req, err := s.borrows.GetByIDForUpdateTx(ctx, tx, requestID)
	if err != nil {
		return err
	}
	if req.BorrowerID != actorID {
		return lending.ErrForbidden
	}
	if req.Status != lending.StatusPending {
		return lending.NewInvalidTransition(req.Status, "cancel")
	}
	if err := s.borrows.DeleteTx(ctx, tx, req.ID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	s.emit(queue.EventCancelled, req, "")
	return nil
}

// MarkPickedUp records the physical handoff. The owner confirms the
// borrower collected the item; the request stays approved, picked_up_at
// is stamped with the server clock, and the return deadline is
// recomputed from that instant. This write happens exactly once: a
// second attempt fails the transition guard, it never recomputes the
// deadline from a later clock.
func (s *BorrowService) MarkPickedUp(ctx context.Context, requestID, actorID uint64, now time.Time) (*model.BorrowRequest, error) {
	tx, err := s.borrows.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	req, err := s.borrows.GetByIDForUpdateTx(ctx, tx, requestID)
	if err != nil {
		return nil, err
	}
	if req.OwnerID != actorID {
		return nil, lending.ErrForbidden
	}
	if req.Status != lending.StatusApproved {
		return nil, lending.NewInvalidTransition(req.Status, "mark as picked up")
	}
	if req.PickedUpAt != nil {
		return nil, lending.NewInvalidTransition(req.Status+" (picked up)", "mark as picked up")
	}

	at := lending.FromTime(now)
	dur, has := req.Duration()
	deadline := lending.PickupDeadline(at, dur, has, req.EndDate)
	if err := s.borrows.MarkPickedUpTx(ctx, tx, req.ID, at, deadline); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, lending.NewInvalidTransition(req.Status+" (picked up)", "mark as picked up")
		}
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	req.PickedUpAt = &at
	req.ReturnDeadline = &deadline
	s.emit(queue.EventPickedUp, req, "")
	return req, nil
}

// MarkReturned closes the loan: approved becomes returned and the item
// goes back on the market. Only the owner confirms the return.
func (s *BorrowService) MarkReturned(ctx context.Context, requestID, actorID uint64) (*model.BorrowRequest, error) {
	tx, err := s.borrows.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	req, err := s.borrows.GetByIDForUpdateTx(ctx, tx, requestID)
	if err != nil {
		return nil, err
	}
	if req.OwnerID != actorID {
		return nil, lending.ErrForbidden
	}
	if !lending.CanTransition(req.Status, lending.StatusReturned) {
		return nil, lending.NewInvalidTransition(req.Status, "mark as returned")
	}
	if err := s.borrows.UpdateStatusTx(ctx, tx, req.ID, req.Status, lending.StatusReturned); err != nil {
		return nil, err
	}
	if err := s.items.SetAvailabilityTx(ctx, tx, req.ItemID, true); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	req.Status = lending.StatusReturned
	s.emit(queue.EventReturned, req, "")
	return req, nil
}

// GetForViewer loads one request with joined names for a party to it.
// Anyone else gets ErrForbidden. The display deadline is resolved
// before returning.
func (s *BorrowService) GetForViewer(ctx context.Context, requestID, viewerID uint64) (*repository.BorrowRequestDetail, error) {
	d, err := s.borrows.GetDetailByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if d.BorrowerID != viewerID && d.OwnerID != viewerID {
		return nil, lending.ErrForbidden
	}
	resolveDetail(d)
	return d, nil
}

// ListOutgoing returns the user's own requests, deadlines resolved.
// Status narrows the list when non-empty.
func (s *BorrowService) ListOutgoing(ctx context.Context, userID uint64, status string) ([]repository.BorrowRequestDetail, error) {
	if status != "" && !lending.ValidStatus(status) {
		return nil, lending.NewValidationError("status", "unknown status")
	}
	list, err := s.borrows.ListByBorrower(ctx, userID, status)
	if err != nil {
		return nil, err
	}
	for i := range list {
		resolveDetail(&list[i])
	}
	return list, nil
}

// ListIncoming returns requests for the user's items, deadlines resolved.
// Status narrows the list when non-empty.
func (s *BorrowService) ListIncoming(ctx context.Context, userID uint64, status string) ([]repository.BorrowRequestDetail, error) {
	if status != "" && !lending.ValidStatus(status) {
		return nil, lending.NewValidationError("status", "unknown status")
	}
	list, err := s.borrows.ListByOwner(ctx, userID, status)
	if err != nil {
		return nil, err
	}
	for i := range list {
		resolveDetail(&list[i])
	}
	return list, nil
}

// resolveDetail overlays the display deadline: stored values win after
// pickup, otherwise a provisional estimate or the end-of-day fallback.
func resolveDetail(d *repository.BorrowRequestDetail) {
	in := lending.DeadlineInput{
		PickedUpAt:     d.PickedUpAt,
		StoredDeadline: d.ReturnDeadline,
		StartDate:      d.StartDate,
		StartTime:      d.StartTime,
		EndDate:        d.EndDate,
	}
	if d.Duration != nil {
		in.Duration = *d.Duration
		in.HasDuration = true
	}
	d.ReturnDeadline = lending.ResolveReturnDeadline(in)
}

// emit sends a lifecycle event without blocking the request path.
// Publish failures are logged by the publisher and otherwise ignored.
func (s *BorrowService) emit(kind string, req *model.BorrowRequest, itemTitle string) {
	ev := queue.BorrowEvent{
		Kind:       kind,
		RequestID:  req.ID,
		ItemID:     req.ItemID,
		ItemTitle:  itemTitle,
		BorrowerID: req.BorrowerID,
		OwnerID:    req.OwnerID,
		Status:     req.Status,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	if req.ReturnDeadline != nil {
		ev.ReturnDeadline = req.ReturnDeadline.String()
	}
	if req.PickedUpAt != nil {
		ev.PickedUpAt = req.PickedUpAt.String()
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.publish(ctx, ev)
	}()
}
