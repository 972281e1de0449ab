// Package repository contains data access logic for the lending domain.
// This file manages persistence for items. An Item is a listing a user
// offers for borrowing; its `available` column is the admission gate
// for new borrow requests and is flipped only by approve/return.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/campus-lending/internal/lending"
	"github.com/iliyamo/campus-lending/internal/model"
)

// ItemRepo manages persistence for items.
type ItemRepo struct {
	db *sql.DB
}

// NewItemRepo constructs an ItemRepo with the given DB handle.
func NewItemRepo(db *sql.DB) *ItemRepo { return &ItemRepo{db: db} }

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.
func (r *ItemRepo) DB() *sql.DB { return r.db }

const itemColumns = `id, owner_id, title, description, category, item_condition, image_url, location, available, created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }) (*model.Item, error) {
	var it model.Item
	var desc, cat, cond, img, loc sql.NullString
	err := row.Scan(&it.ID, &it.OwnerID, &it.Title, &desc, &cat, &cond, &img, &loc,
		&it.Available, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	it.Description = desc.String
	it.Category = cat.String
	it.Condition = cond.String
	it.ImageURL = img.String
	it.Location = loc.String
	return &it, nil
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

// Create inserts a new item and assigns the generated ID back to the
// struct.  Optional fields are stored as NULL when empty.  The row is
// queried back so DB defaults (available, timestamps) are populated.
func (r *ItemRepo) Create(ctx context.Context, it *model.Item) error {
	const q = `INSERT INTO items (owner_id, title, description, category, item_condition, image_url, location) VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, it.OwnerID, it.Title,
		nullIfEmpty(it.Description), nullIfEmpty(it.Category), nullIfEmpty(it.Condition),
		nullIfEmpty(it.ImageURL), nullIfEmpty(it.Location))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	it.ID = uint64(id)
	got, err := r.GetByID(ctx, it.ID)
	if err != nil {
		return err
	}
	*it = *got
	return nil
}

// GetByID retrieves an item by its ID.  It returns
// lending.ErrItemNotFound when no matching row exists.
func (r *ItemRepo) GetByID(ctx context.Context, id uint64) (*model.Item, error) {
	it, err := scanItem(r.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, lending.ErrItemNotFound
	}
	return it, err
}

// GetByIDForUpdateTx loads an item inside a transaction holding a row
// lock.  Concurrent borrow-request creation for the same item serializes
// on this lock, so the availability and duplicate checks that follow see
// a settled row.
func (r *ItemRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Item, error) {
	it, err := scanItem(tx.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ? FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, lending.ErrItemNotFound
	}
	return it, err
}

// ItemFilter narrows List results.  Zero values mean "no constraint".
type ItemFilter struct {
	Category  string
	Search    string // matched against title and description
	Available *bool
	OwnerID   uint64
}

// List returns items matching the filter, newest first.  When no items
// match it returns an empty slice and nil error.
func (r *ItemRepo) List(ctx context.Context, f ItemFilter) ([]model.Item, error) {
	q := `SELECT ` + itemColumns + ` FROM items WHERE 1=1`
	args := make([]any, 0, 4)
	if f.Category != "" {
		q += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.Search != "" {
		q += ` AND (title LIKE ? OR description LIKE ?)`
		pat := "%" + f.Search + "%"
		args = append(args, pat, pat)
	}
	if f.Available != nil {
		q += ` AND available = ?`
		args = append(args, *f.Available)
	}
	if f.OwnerID != 0 {
		q += ` AND owner_id = ?`
		args = append(args, f.OwnerID)
	}
	q += ` ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateByIDAndOwner updates an item's listing fields if it belongs to
// the given owner.  Availability is not touched here; the lifecycle
// owns that column.  Returns lending.ErrItemNotFound when the row does
// not exist and ErrForbidden when it belongs to someone else.
func (r *ItemRepo) UpdateByIDAndOwner(ctx context.Context, it *model.Item, ownerID uint64) error {
	var dbOwnerID uint64
	err := r.db.QueryRowContext(ctx, `SELECT owner_id FROM items WHERE id = ?`, it.ID).Scan(&dbOwnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return lending.ErrItemNotFound
		}
		return err
	}
	if dbOwnerID != ownerID {
		return ErrForbidden
	}
	const q = `UPDATE items
               SET title = ?, description = ?, category = ?, item_condition = ?, image_url = ?, location = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ? AND owner_id = ?`
	_, err = r.db.ExecContext(ctx, q, it.Title,
		nullIfEmpty(it.Description), nullIfEmpty(it.Category), nullIfEmpty(it.Condition),
		nullIfEmpty(it.ImageURL), nullIfEmpty(it.Location),
		it.ID, ownerID)
	return err
}

// DeleteByIDAndOwner removes an item and its dependent records provided
// it belongs to the given owner.  The deletion occurs within a
// transaction so no partial cleanup occurs.  It returns
// lending.ErrItemNotFound when the item does not exist, ErrForbidden
// when another user owns it, and lending.ErrItemOnLoan when an approved
// borrow request still references it.  Pending requests and message
// threads are swept away with the listing.
func (r *ItemRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var dbOwnerID uint64
	if err := tx.QueryRowContext(ctx, `SELECT owner_id FROM items WHERE id = ? FOR UPDATE`, id).Scan(&dbOwnerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return lending.ErrItemNotFound
		}
		return err
	}
	if dbOwnerID != ownerID {
		return ErrForbidden
	}
	var approved int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM borrow_requests WHERE item_id = ? AND status = ?`,
		id, lending.StatusApproved).Scan(&approved); err != nil {
		return err
	}
	if approved > 0 {
		return lending.ErrItemOnLoan
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE item_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM borrow_requests WHERE item_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// SetAvailabilityTx flips the availability gate inside a transaction.
// Only approve (false) and return (true) call this.
func (r *ItemRepo) SetAvailabilityTx(ctx context.Context, tx *sql.Tx, itemID uint64, available bool) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE items SET available = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		available, itemID)
	return err
}
