// This file manages persistence for item-scoped message threads. A
// thread is the pair (item, borrower, owner) and contains every message
// either party sent about that item, regardless of direction.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/campus-lending/internal/model"
)

// MessageRepo manages persistence for messages.
type MessageRepo struct {
	db *sql.DB
}

// NewMessageRepo constructs a MessageRepo with the given DB handle.
func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{db: db} }

// Create inserts a message and populates the generated ID and creation
// timestamp on the provided record.
func (r *MessageRepo) Create(ctx context.Context, m *model.Message) error {
	const q = `INSERT INTO messages (item_id, sender_id, participant_id, text) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, m.ItemID, m.SenderID, m.ParticipantID, m.Text)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		`SELECT created_at FROM messages WHERE id = ?`, m.ID).Scan(&m.CreatedAt)
}

// ListThread returns every message between two users about an item,
// oldest first.  Direction does not matter: both halves of the
// conversation are part of the same thread.
func (r *MessageRepo) ListThread(ctx context.Context, itemID, userA, userB uint64) ([]model.Message, error) {
	const q = `SELECT id, item_id, sender_id, participant_id, text, created_at
               FROM messages
               WHERE item_id = ?
                 AND ((sender_id = ? AND participant_id = ?) OR (sender_id = ? AND participant_id = ?))
               ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, itemID, userA, userB, userB, userA)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Message, 0)
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.ItemID, &m.SenderID, &m.ParticipantID, &m.Text, &m.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// LatestCounterpartyForItem returns the other party in the most recently
// active thread on an item that involves the given user.  Owners replying
// without naming a recipient fall back to this thread.  Returns
// sql.ErrNoRows when the item has no messages involving the user.
func (r *MessageRepo) LatestCounterpartyForItem(ctx context.Context, itemID, userID uint64) (uint64, error) {
	const q = `SELECT IF(sender_id = ?, participant_id, sender_id)
               FROM messages
               WHERE item_id = ? AND (sender_id = ? OR participant_id = ?)
               ORDER BY created_at DESC, id DESC
               LIMIT 1`
	var other uint64
	err := r.db.QueryRowContext(ctx, q, userID, itemID, userID, userID).Scan(&other)
	return other, err
}

// ListConversationsForUser returns one summary row per thread the user
// participates in, most recently active first.  MAX(id) stands in for
// the latest message since IDs are monotonic.
func (r *MessageRepo) ListConversationsForUser(ctx context.Context, userID uint64) ([]model.Conversation, error) {
	const q = `SELECT t.item_id, t.other_id, u.name, last.text, last.sender_id, last.created_at, t.cnt
               FROM (
                   SELECT item_id,
                          IF(sender_id = ?, participant_id, sender_id) AS other_id,
                          MAX(id) AS last_id,
                          COUNT(*) AS cnt
                   FROM messages
                   WHERE sender_id = ? OR participant_id = ?
                   GROUP BY item_id, other_id
               ) t
               JOIN messages last ON last.id = t.last_id
               JOIN users u ON u.id = t.other_id
               ORDER BY last.created_at DESC, last.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Conversation, 0)
	for rows.Next() {
		var c model.Conversation
		if err := rows.Scan(&c.ItemID, &c.ParticipantID, &c.ParticipantName,
			&c.LastText, &c.LastSenderID, &c.LastCreatedAt, &c.MessageCount); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// IsNoRows reports whether err is the driver's empty-result sentinel.
func IsNoRows(err error) bool { return errors.Is(err, sql.ErrNoRows) }
