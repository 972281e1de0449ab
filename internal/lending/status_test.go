package lending

import "testing"

func TestCanTransition(t *testing.T) {
	if !CanTransition(StatusPending, StatusApproved) {
		t.Fatal("expected pending -> approved to be allowed")
	}
	if !CanTransition(StatusPending, StatusRejected) {
		t.Fatal("expected pending -> rejected to be allowed")
	}
	if !CanTransition(StatusApproved, StatusReturned) {
		t.Fatal("expected approved -> returned to be allowed")
	}
	if CanTransition(StatusPending, StatusReturned) {
		t.Fatal("pending -> returned must not skip approval")
	}
	if CanTransition(StatusRejected, StatusApproved) {
		t.Fatal("rejected is terminal")
	}
	if CanTransition(StatusReturned, StatusApproved) {
		t.Fatal("returned is terminal")
	}
	if CanTransition("bogus", StatusApproved) {
		t.Fatal("unknown status must not transition")
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusPending, StatusApproved, StatusRejected, StatusReturned} {
		if !ValidStatus(s) {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	if ValidStatus("cancelled") {
		t.Fatal("cancelled is a delete, not a status")
	}
}

func TestInvalidTransitionError(t *testing.T) {
	err := NewInvalidTransition(StatusRejected, "approve")
	if !IsInvalidTransition(err) {
		t.Fatal("expected IsInvalidTransition to match")
	}
	if IsInvalidTransition(ErrForbidden) {
		t.Fatal("sentinel must not match transition error")
	}
}
