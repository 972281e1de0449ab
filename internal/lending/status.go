package lending

// Status values a borrow request moves through.  Cancellation is a hard
// delete of a pending row, not a status.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusReturned = "returned"
)

var transitions = map[string]map[string]struct{}{
	StatusPending:  {StatusApproved: {}, StatusRejected: {}},
	StatusApproved: {StatusReturned: {}},
	StatusRejected: {},
	StatusReturned: {},
}

// CanTransition reports whether a request may move from one status to
// another.  Pickup is not listed: it is a side transition that keeps the
// request in approved while setting picked_up_at.
func CanTransition(from, to string) bool {
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// ValidStatus reports whether s is a known request status.
func ValidStatus(s string) bool {
	_, ok := transitions[s]
	return ok
}
