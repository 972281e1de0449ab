package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/campus-lending/internal/lending"
	"github.com/iliyamo/campus-lending/internal/model"
	"github.com/iliyamo/campus-lending/internal/queue"
	"github.com/iliyamo/campus-lending/internal/repository"
)

// The lifecycle only uses the *sql.DB for transaction begin/commit/
// rollback; all reads and writes go through the stores.  A driver that
// hands out no-op connections lets the guard logic run against the
// in-memory fakes below.

type nopDriver struct{}

func (nopDriver) Open(string) (driver.Conn, error) { return nopConn{}, nil }

type nopConn struct{}

func (nopConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("no statements") }
func (nopConn) Close() error                        { return nil }
func (nopConn) Begin() (driver.Tx, error)           { return nopTx{}, nil }

type nopTx struct{}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

var testDB *sql.DB

func init() {
	sql.Register("lifecycle", nopDriver{})
	testDB, _ = sql.Open("lifecycle", "")
}

type fakeItems struct {
	byID map[uint64]*model.Item
}

func (f *fakeItems) DB() *sql.DB { return testDB }

func (f *fakeItems) GetByIDForUpdateTx(_ context.Context, _ *sql.Tx, id uint64) (*model.Item, error) {
	it, ok := f.byID[id]
	if !ok {
		return nil, lending.ErrItemNotFound
	}
	cp := *it
	return &cp, nil
}

func (f *fakeItems) SetAvailabilityTx(_ context.Context, _ *sql.Tx, id uint64, available bool) error {
	it, ok := f.byID[id]
	if !ok {
		return lending.ErrItemNotFound
	}
	it.Available = available
	return nil
}

type fakeBorrows struct {
	byID   map[uint64]*model.BorrowRequest
	nextID uint64
}

func (f *fakeBorrows) DB() *sql.DB { return testDB }

func (f *fakeBorrows) CreateTx(_ context.Context, _ *sql.Tx, req *model.BorrowRequest) error {
	for _, r := range f.byID {
		if r.ItemID == req.ItemID && r.BorrowerID == req.BorrowerID && r.Status == lending.StatusPending {
			return lending.ErrDuplicatePending
		}
	}
	f.nextID++
	req.ID = f.nextID
	req.RequestDate = time.Now()
	cp := *req
	f.byID[req.ID] = &cp
	return nil
}

func (f *fakeBorrows) GetByIDForUpdateTx(_ context.Context, _ *sql.Tx, id uint64) (*model.BorrowRequest, error) {
	r, ok := f.byID[id]
	if !ok {
		return nil, lending.ErrRequestNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeBorrows) ExistsPendingTx(_ context.Context, _ *sql.Tx, itemID, borrowerID uint64) (bool, error) {
	for _, r := range f.byID {
		if r.ItemID == itemID && r.BorrowerID == borrowerID && r.Status == lending.StatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBorrows) UpdateStatusTx(_ context.Context, _ *sql.Tx, id uint64, from, to string) error {
	r, ok := f.byID[id]
	if !ok || r.Status != from {
		return repository.ErrConflict
	}
	r.Status = to
	return nil
}

func (f *fakeBorrows) MarkPickedUpTx(_ context.Context, _ *sql.Tx, id uint64, at, deadline lending.LocalDateTime) error {
	r, ok := f.byID[id]
	if !ok || r.Status != lending.StatusApproved || r.PickedUpAt != nil {
		return repository.ErrConflict
	}
	a, d := at, deadline
	r.PickedUpAt, r.ReturnDeadline = &a, &d
	return nil
}

func (f *fakeBorrows) DeleteTx(_ context.Context, _ *sql.Tx, id uint64) error {
	if _, ok := f.byID[id]; !ok {
		return repository.ErrConflict
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeBorrows) detail(r *model.BorrowRequest) repository.BorrowRequestDetail {
	d := repository.BorrowRequestDetail{
		ID: r.ID, ItemID: r.ItemID, BorrowerID: r.BorrowerID, OwnerID: r.OwnerID,
		Status: r.Status, StartDate: r.StartDate, EndDate: r.EndDate,
		StartTime: r.StartTime, ReturnDeadline: r.ReturnDeadline,
		PickedUpAt: r.PickedUpAt, RequestDate: r.RequestDate,
	}
	if dur, has := r.Duration(); has {
		dd := dur
		d.Duration = &dd
	}
	return d
}

func (f *fakeBorrows) GetDetailByID(_ context.Context, id uint64) (*repository.BorrowRequestDetail, error) {
	r, ok := f.byID[id]
	if !ok {
		return nil, lending.ErrRequestNotFound
	}
	d := f.detail(r)
	return &d, nil
}

func (f *fakeBorrows) ListByBorrower(_ context.Context, borrowerID uint64, status string) ([]repository.BorrowRequestDetail, error) {
	out := make([]repository.BorrowRequestDetail, 0)
	for _, r := range f.byID {
		if r.BorrowerID == borrowerID && (status == "" || r.Status == status) {
			out = append(out, f.detail(r))
		}
	}
	return out, nil
}

func (f *fakeBorrows) ListByOwner(_ context.Context, ownerID uint64, status string) ([]repository.BorrowRequestDetail, error) {
	out := make([]repository.BorrowRequestDetail, 0)
	for _, r := range f.byID {
		if r.OwnerID == ownerID && (status == "" || r.Status == status) {
			out = append(out, f.detail(r))
		}
	}
	return out, nil
}

const (
	ownerID    = uint64(10)
	borrowerID = uint64(20)
)

func newLifecycle() (*BorrowService, *fakeItems, *fakeBorrows) {
	items := &fakeItems{byID: map[uint64]*model.Item{
		1: {ID: 1, OwnerID: ownerID, Title: "Cordless Drill", Available: true},
	}}
	borrows := &fakeBorrows{byID: map[uint64]*model.BorrowRequest{}}
	svc := NewBorrowService(items, borrows)
	svc.publish = func(context.Context, queue.BorrowEvent) error { return nil }
	return svc, items, borrows
}

func createInput(itemID, borrower uint64) CreateBorrowInput {
	return CreateBorrowInput{
		ItemID:     itemID,
		BorrowerID: borrower,
		StartDate:  lending.LocalDate{Year: 2025, Month: time.March, Day: 10},
		EndDate:    lending.LocalDate{Year: 2025, Month: time.March, Day: 12},
		Duration:   &lending.Duration{Hours: 2, Minutes: 30},
	}
}

func TestCreateRejectsSelfBorrow(t *testing.T) {
	svc, _, _ := newLifecycle()
	if _, err := svc.Create(context.Background(), createInput(1, ownerID)); !errors.Is(err, lending.ErrSelfBorrow) {
		t.Fatalf("expected ErrSelfBorrow, got %v", err)
	}
}

func TestCreateRejectsUnavailableItem(t *testing.T) {
	svc, items, _ := newLifecycle()
	items.byID[1].Available = false
	if _, err := svc.Create(context.Background(), createInput(1, borrowerID)); !errors.Is(err, lending.ErrItemUnavailable) {
		t.Fatalf("expected ErrItemUnavailable, got %v", err)
	}
}

func TestCreateRejectsMissingItem(t *testing.T) {
	svc, _, _ := newLifecycle()
	if _, err := svc.Create(context.Background(), createInput(99, borrowerID)); !errors.Is(err, lending.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestCreateDuplicatePendingThenRetryAfterReject(t *testing.T) {
	svc, _, _ := newLifecycle()
	ctx := context.Background()
	first, err := svc.Create(ctx, createInput(1, borrowerID))
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := svc.Create(ctx, createInput(1, borrowerID)); !errors.Is(err, lending.ErrDuplicatePending) {
		t.Fatalf("expected ErrDuplicatePending, got %v", err)
	}
	if _, err := svc.Reject(ctx, first.ID, ownerID); err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if _, err := svc.Create(ctx, createInput(1, borrowerID)); err != nil {
		t.Fatalf("retry after reject should succeed, got %v", err)
	}
}

func TestApproveRequiresOwner(t *testing.T) {
	svc, _, _ := newLifecycle()
	ctx := context.Background()
	req, err := svc.Create(ctx, createInput(1, borrowerID))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Approve(ctx, req.ID, borrowerID); !errors.Is(err, lending.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestApproveTakesItemOffMarketExactlyOnce(t *testing.T) {
	svc, items, _ := newLifecycle()
	ctx := context.Background()
	req, err := svc.Create(ctx, createInput(1, borrowerID))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	got, err := svc.Approve(ctx, req.ID, ownerID)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if got.Status != lending.StatusApproved {
		t.Fatalf("status = %q, want approved", got.Status)
	}
	if items.byID[1].Available {
		t.Fatal("approve must set the item unavailable")
	}
	if _, err := svc.Approve(ctx, req.ID, ownerID); !lending.IsInvalidTransition(err) {
		t.Fatalf("second approve should fail the guard, got %v", err)
	}
	if items.byID[1].Available {
		t.Fatal("failed approve must not touch availability")
	}
}

func TestMarkPickedUpAnchorsDeadlineAtPickup(t *testing.T) {
	svc, _, _ := newLifecycle()
	ctx := context.Background()
	in := createInput(1, borrowerID)
	st, _ := lending.ParseTimeOfDay("14:00")
	in.StartTime = &st
	req, err := svc.Create(ctx, in)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Approve(ctx, req.ID, ownerID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	now := time.Date(2025, time.March, 11, 9, 0, 0, 0, time.UTC)
	got, err := svc.MarkPickedUp(ctx, req.ID, ownerID, now)
	if err != nil {
		t.Fatalf("mark picked up failed: %v", err)
	}
	want := lending.NewLocalDateTime(2025, time.March, 11, 11, 30, 0)
	if got.ReturnDeadline == nil || !got.ReturnDeadline.Equal(want) {
		t.Fatalf("deadline = %v, want %s (anchored at pickup, not requested start)", got.ReturnDeadline, want)
	}
}

func TestMarkPickedUpOnlyOnce(t *testing.T) {
	svc, _, _ := newLifecycle()
	ctx := context.Background()
	req, err := svc.Create(ctx, createInput(1, borrowerID))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Approve(ctx, req.ID, ownerID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	first := time.Date(2025, time.March, 11, 9, 0, 0, 0, time.UTC)
	got, err := svc.MarkPickedUp(ctx, req.ID, ownerID, first)
	if err != nil {
		t.Fatalf("mark picked up failed: %v", err)
	}
	deadline := *got.ReturnDeadline
	// A repeat from a later clock must fail the transition guard, not
	// recompute the deadline.
	later := first.Add(3 * time.Hour)
	if _, err := svc.MarkPickedUp(ctx, req.ID, ownerID, later); !lending.IsInvalidTransition(err) {
		t.Fatalf("expected invalid-transition error, got %v", err)
	}
	after, err := svc.GetForViewer(ctx, req.ID, ownerID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if after.ReturnDeadline == nil || !after.ReturnDeadline.Equal(deadline) {
		t.Fatalf("deadline changed after failed repeat: %v, want %s", after.ReturnDeadline, deadline)
	}
}

func TestMarkReturnedPutsItemBackOnMarket(t *testing.T) {
	svc, items, _ := newLifecycle()
	ctx := context.Background()
	req, err := svc.Create(ctx, createInput(1, borrowerID))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Approve(ctx, req.ID, ownerID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	got, err := svc.MarkReturned(ctx, req.ID, ownerID)
	if err != nil {
		t.Fatalf("mark returned failed: %v", err)
	}
	if got.Status != lending.StatusReturned {
		t.Fatalf("status = %q, want returned", got.Status)
	}
	if !items.byID[1].Available {
		t.Fatal("return must restore availability")
	}
	if _, err := svc.MarkReturned(ctx, req.ID, ownerID); !lending.IsInvalidTransition(err) {
		t.Fatalf("second return should fail the guard, got %v", err)
	}
}

func TestCancelIsBorrowerOnlyAndPendingOnly(t *testing.T) {
	svc, _, borrows := newLifecycle()
	ctx := context.Background()
	req, err := svc.Create(ctx, createInput(1, borrowerID))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	second, err := svc.Create(ctx, createInput(1, uint64(30)))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.Cancel(ctx, req.ID, ownerID); !errors.Is(err, lending.ErrForbidden) {
		t.Fatalf("owner cancel should be forbidden, got %v", err)
	}
	if _, err := svc.Approve(ctx, req.ID, ownerID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if err := svc.Cancel(ctx, req.ID, borrowerID); !lending.IsInvalidTransition(err) {
		t.Fatalf("cancel after approval should fail the guard, got %v", err)
	}
	if err := svc.Cancel(ctx, second.ID, uint64(30)); err != nil {
		t.Fatalf("cancel of own pending request failed: %v", err)
	}
	if _, ok := borrows.byID[second.ID]; ok {
		t.Fatal("cancel must delete the pending row")
	}
}

func TestGetForViewerIsPartyOnly(t *testing.T) {
	svc, _, _ := newLifecycle()
	ctx := context.Background()
	req, err := svc.Create(ctx, createInput(1, borrowerID))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.GetForViewer(ctx, req.ID, uint64(99)); !errors.Is(err, lending.ErrForbidden) {
		t.Fatalf("stranger access should be forbidden, got %v", err)
	}
	if _, err := svc.GetForViewer(ctx, req.ID, borrowerID); err != nil {
		t.Fatalf("borrower access failed: %v", err)
	}
}
