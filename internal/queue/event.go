// Package queue defines message payloads exchanged over the message broker.
package queue

// BorrowEventQueue is the durable queue carrying lifecycle events.
const BorrowEventQueue = "lending.events"

// Event kinds published as a borrow request moves through its lifecycle.
const (
	EventRequested = "borrow.requested"
	EventApproved  = "borrow.approved"
	EventRejected  = "borrow.rejected"
	EventCancelled = "borrow.cancelled"
	EventPickedUp  = "borrow.picked_up"
	EventReturned  = "borrow.returned"
)

// BorrowEvent is published on every lifecycle transition. It carries
// enough information for downstream consumers to log, notify, or
// trigger analytics without querying the primary database. Deadline
// fields use the naive YYYY-MM-DDTHH:mm:ss wall-clock format.
type BorrowEvent struct {
	Kind           string `json:"kind"`
	RequestID      uint64 `json:"request_id"`
	ItemID         uint64 `json:"item_id"`
	ItemTitle      string `json:"item_title"`
	BorrowerID     uint64 `json:"borrower_id"`
	OwnerID        uint64 `json:"owner_id"`
	Status         string `json:"status"`
	ReturnDeadline string `json:"return_deadline,omitempty"`
	PickedUpAt     string `json:"picked_up_at,omitempty"`
	OccurredAt     string `json:"occurred_at"`
}
