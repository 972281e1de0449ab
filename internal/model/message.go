package model

import "time"

// Message represents a row in the `messages` table.  Messages form a
// private two-person thread scoped to a single item: a borrower's
// conversation with an owner is addressed by (item, borrower, owner)
// regardless of who sent a given message.  ParticipantID is always the
// counterparty of the sender.  Messages are immutable once created.
//
// Fields:
//  ID            – primary key identifier.
//  ItemID        – item the thread is about.
//  SenderID      – user who wrote the message.
//  ParticipantID – the other party in the thread.
//  Text          – message body.
//  CreatedAt     – creation timestamp.
type Message struct {
	ID            uint64    // messages.id
	ItemID        uint64    // messages.item_id
	SenderID      uint64    // messages.sender_id
	ParticipantID uint64    // messages.participant_id
	Text          string    // messages.text
	CreatedAt     time.Time // messages.created_at
}

// Conversation summarizes one borrower's thread on an item for the
// owner's conversation list.
//
// Fields:
//  ItemID          – item the thread is about.
//  ParticipantID   – the borrower in the thread.
//  ParticipantName – borrower display name.
//  LastText        – most recent message body.
//  LastSenderID    – who sent the most recent message.
//  LastCreatedAt   – when the most recent message was sent.
//  MessageCount    – total messages in the thread.
type Conversation struct {
	ItemID          uint64    // messages.item_id
	ParticipantID   uint64    // counterparty user id
	ParticipantName string    // users.name of the counterparty
	LastText        string    // latest messages.text
	LastSenderID    uint64    // latest messages.sender_id
	LastCreatedAt   time.Time // latest messages.created_at
	MessageCount    int       // number of messages in the thread
}
