// This file manages persistence for borrow requests. Rows move through
// the pending/approved/rejected/returned lifecycle; status writes are
// guarded with the expected current status in the WHERE clause so a
// stale actor can never clobber a concurrent decision.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/campus-lending/internal/lending"
	"github.com/iliyamo/campus-lending/internal/model"
)

// BorrowRepo manages persistence for borrow requests.
type BorrowRepo struct {
	db *sql.DB
}

// NewBorrowRepo constructs a BorrowRepo with the given DB handle.
func NewBorrowRepo(db *sql.DB) *BorrowRepo { return &BorrowRepo{db: db} }

// DB exposes the underlying sql.DB for transaction control.
func (r *BorrowRepo) DB() *sql.DB { return r.db }

const borrowColumns = `id, item_id, borrower_id, owner_id, status,
       borrow_start_date, borrow_end_date, borrow_start_time,
       duration_months, duration_days, duration_hours, duration_minutes,
       return_deadline_datetime, picked_up_at, request_date`

func scanBorrow(row interface{ Scan(...any) error }) (*model.BorrowRequest, error) {
	var req model.BorrowRequest
	var startTime sql.NullString
	var durM, durD, durH, durMin sql.NullInt64
	var deadline, pickedUp sql.NullTime
	err := row.Scan(&req.ID, &req.ItemID, &req.BorrowerID, &req.OwnerID, &req.Status,
		&req.StartDate, &req.EndDate, &startTime,
		&durM, &durD, &durH, &durMin,
		&deadline, &pickedUp, &req.RequestDate)
	if err != nil {
		return nil, err
	}
	if startTime.Valid {
		t, err := lending.ParseTimeOfDay(startTime.String)
		if err != nil {
			return nil, err
		}
		req.StartTime = &t
	}
	req.DurationMonths = nullableInt(durM)
	req.DurationDays = nullableInt(durD)
	req.DurationHours = nullableInt(durH)
	req.DurationMinutes = nullableInt(durMin)
	if deadline.Valid {
		v := lending.FromTime(deadline.Time)
		req.ReturnDeadline = &v
	}
	if pickedUp.Valid {
		v := lending.FromTime(pickedUp.Time)
		req.PickedUpAt = &v
	}
	return &req, nil
}

func nullableInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullableIntArg(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

// CreateTx inserts a new borrow request within the scope of an existing
// transaction and populates the generated ID and DB defaults on the
// provided record.  The caller must commit or roll back.  A unique
// index on (item_id, borrower_id) for pending rows backs up the
// duplicate check; a 1062 from it surfaces as ErrDuplicatePending.
func (r *BorrowRepo) CreateTx(ctx context.Context, tx *sql.Tx, req *model.BorrowRequest) error {
	const q = `INSERT INTO borrow_requests
               (item_id, borrower_id, owner_id, status,
                borrow_start_date, borrow_end_date, borrow_start_time,
                duration_months, duration_days, duration_hours, duration_minutes,
                return_deadline_datetime)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var startTime any
	if req.StartTime != nil {
		startTime = req.StartTime.String()
	}
	var deadline any
	if req.ReturnDeadline != nil {
		deadline, _ = req.ReturnDeadline.Value()
	}
	res, err := tx.ExecContext(ctx, q,
		req.ItemID, req.BorrowerID, req.OwnerID, req.Status,
		req.StartDate, req.EndDate, startTime,
		nullableIntArg(req.DurationMonths), nullableIntArg(req.DurationDays),
		nullableIntArg(req.DurationHours), nullableIntArg(req.DurationMinutes),
		deadline)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return lending.ErrDuplicatePending
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	req.ID = uint64(id)
	// Query back the full row to populate request_date and defaults
	got, err := scanBorrow(tx.QueryRowContext(ctx,
		`SELECT `+borrowColumns+` FROM borrow_requests WHERE id = ?`, req.ID))
	if err != nil {
		return err
	}
	*req = *got
	return nil
}

// GetByID retrieves a borrow request by its ID.  It returns
// lending.ErrRequestNotFound when no matching row exists.
func (r *BorrowRepo) GetByID(ctx context.Context, id uint64) (*model.BorrowRequest, error) {
	req, err := scanBorrow(r.db.QueryRowContext(ctx,
		`SELECT `+borrowColumns+` FROM borrow_requests WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, lending.ErrRequestNotFound
	}
	return req, err
}

// GetByIDForUpdateTx loads a borrow request inside a transaction holding
// a row lock, so a decision and a concurrent cancel serialize.
func (r *BorrowRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.BorrowRequest, error) {
	req, err := scanBorrow(tx.QueryRowContext(ctx,
		`SELECT `+borrowColumns+` FROM borrow_requests WHERE id = ? FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, lending.ErrRequestNotFound
	}
	return req, err
}

// ExistsPendingTx reports whether the borrower already has a pending
// request for the item.  Runs inside the creation transaction, after the
// item row lock is held.
func (r *BorrowRepo) ExistsPendingTx(ctx context.Context, tx *sql.Tx, itemID, borrowerID uint64) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM borrow_requests WHERE item_id = ? AND borrower_id = ? AND status = ? LIMIT 1`,
		itemID, borrowerID, lending.StatusPending).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpdateStatusTx moves a request from one status to another.  The
// expected current status is part of the WHERE clause; when no row
// matches, the request was changed underneath the caller and
// ErrConflict is returned.
func (r *BorrowRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, from, to string) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE borrow_requests SET status = ? WHERE id = ? AND status = ?`,
		to, id, from)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}
	return nil
}

// MarkPickedUpTx records the physical handoff: picked_up_at and the
// recomputed return deadline are written in one statement so the
// anchor and the deadline can never disagree.  The guard on status and
// picked_up_at IS NULL means a second attempt returns ErrConflict.
func (r *BorrowRepo) MarkPickedUpTx(ctx context.Context, tx *sql.Tx, id uint64, at, deadline lending.LocalDateTime) error {
	atV, _ := at.Value()
	dlV, _ := deadline.Value()
	res, err := tx.ExecContext(ctx,
		`UPDATE borrow_requests SET picked_up_at = ?, return_deadline_datetime = ?
         WHERE id = ? AND status = ? AND picked_up_at IS NULL`,
		atV, dlV, id, lending.StatusApproved)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}
	return nil
}

// DeleteTx removes a borrow request row.  Used by cancellation, which is
// a hard delete of a pending request rather than a status.
func (r *BorrowRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM borrow_requests WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}
	return nil
}

// BorrowRequestDetail is a borrow request joined with its item title and
// the display names of both parties, for list and detail endpoints.
// ReturnDeadline holds the stored column value; handlers overlay the
// resolved display deadline before responding.
type BorrowRequestDetail struct {
	ID             uint64                 `json:"id"`
	ItemID         uint64                 `json:"item_id"`
	ItemTitle      string                 `json:"item_title"`
	BorrowerID     uint64                 `json:"borrower_id"`
	BorrowerName   string                 `json:"borrower_name"`
	OwnerID        uint64                 `json:"owner_id"`
	OwnerName      string                 `json:"owner_name"`
	Status         string                 `json:"status"`
	StartDate      lending.LocalDate      `json:"borrow_start_date"`
	EndDate        lending.LocalDate      `json:"borrow_end_date"`
	StartTime      *lending.TimeOfDay     `json:"-"`
	StartTimeStr   *string                `json:"borrow_start_time,omitempty"`
	Duration       *lending.Duration      `json:"duration,omitempty"`
	ReturnDeadline *lending.LocalDateTime `json:"return_deadline_datetime,omitempty"`
	PickedUpAt     *lending.LocalDateTime `json:"picked_up_at,omitempty"`
	RequestDate    time.Time              `json:"request_date"`
}

const borrowDetailQuery = `SELECT r.id, r.item_id, i.title, r.borrower_id, b.name, r.owner_id, o.name,
              r.status, r.borrow_start_date, r.borrow_end_date, r.borrow_start_time,
              r.duration_months, r.duration_days, r.duration_hours, r.duration_minutes,
              r.return_deadline_datetime, r.picked_up_at, r.request_date
       FROM borrow_requests r
       JOIN items i ON i.id = r.item_id
       JOIN users b ON b.id = r.borrower_id
       JOIN users o ON o.id = r.owner_id`

func scanBorrowDetail(row interface{ Scan(...any) error }) (*BorrowRequestDetail, error) {
	var d BorrowRequestDetail
	var startTime sql.NullString
	var durM, durD, durH, durMin sql.NullInt64
	var deadline, pickedUp sql.NullTime
	err := row.Scan(&d.ID, &d.ItemID, &d.ItemTitle, &d.BorrowerID, &d.BorrowerName,
		&d.OwnerID, &d.OwnerName, &d.Status, &d.StartDate, &d.EndDate, &startTime,
		&durM, &durD, &durH, &durMin,
		&deadline, &pickedUp, &d.RequestDate)
	if err != nil {
		return nil, err
	}
	if startTime.Valid {
		t, err := lending.ParseTimeOfDay(startTime.String)
		if err != nil {
			return nil, err
		}
		d.StartTime = &t
		s := t.String()
		d.StartTimeStr = &s
	}
	if durM.Valid || durD.Valid || durH.Valid || durMin.Valid {
		dur := lending.Duration{}
		if durM.Valid {
			dur.Months = int(durM.Int64)
		}
		if durD.Valid {
			dur.Days = int(durD.Int64)
		}
		if durH.Valid {
			dur.Hours = int(durH.Int64)
		}
		if durMin.Valid {
			dur.Minutes = int(durMin.Int64)
		}
		d.Duration = &dur
	}
	if deadline.Valid {
		v := lending.FromTime(deadline.Time)
		d.ReturnDeadline = &v
	}
	if pickedUp.Valid {
		v := lending.FromTime(pickedUp.Time)
		d.PickedUpAt = &v
	}
	return &d, nil
}

// GetDetailByID loads a single request with joined names.  Callers
// enforce that the viewer is a party to the request.
func (r *BorrowRepo) GetDetailByID(ctx context.Context, id uint64) (*BorrowRequestDetail, error) {
	d, err := scanBorrowDetail(r.db.QueryRowContext(ctx, borrowDetailQuery+` WHERE r.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, lending.ErrRequestNotFound
	}
	return d, err
}

// ListByBorrower returns the user's outgoing requests, newest first.
// An empty status means all statuses.
func (r *BorrowRepo) ListByBorrower(ctx context.Context, borrowerID uint64, status string) ([]BorrowRequestDetail, error) {
	q := borrowDetailQuery + ` WHERE r.borrower_id = ?`
	args := []any{borrowerID}
	if status != "" {
		q += ` AND r.status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY r.request_date DESC, r.id DESC`
	return r.listDetails(ctx, q, args...)
}

// ListByOwner returns requests targeting the user's items, newest
// first.  An empty status means all statuses.
func (r *BorrowRepo) ListByOwner(ctx context.Context, ownerID uint64, status string) ([]BorrowRequestDetail, error) {
	q := borrowDetailQuery + ` WHERE r.owner_id = ?`
	args := []any{ownerID}
	if status != "" {
		q += ` AND r.status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY r.request_date DESC, r.id DESC`
	return r.listDetails(ctx, q, args...)
}

func (r *BorrowRepo) listDetails(ctx context.Context, q string, args ...any) ([]BorrowRequestDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]BorrowRequestDetail, 0)
	for rows.Next() {
		d, err := scanBorrowDetail(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
