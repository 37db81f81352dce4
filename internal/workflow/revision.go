package workflow

import "estimate-backend/internal/storage"

type RevisionState string

const (
	RevisionOpen     RevisionState = "open"
	RevisionLocked   RevisionState = "locked"
	RevisionAccepted RevisionState = "accepted"
)

func RevisionStateOf(r storage.Revision) RevisionState {
	switch {
	case r.Accepted:
		return RevisionAccepted
	case r.Locked:
		return RevisionLocked
	default:
		return RevisionOpen
	}
}

// RevisionMachine covers lock, unlock and accept. Clearing an acceptance is
// not a revision action: it only happens when the project reverts from
// execution to offering.
var RevisionMachine = NewMachine[RevisionState, struct{}]("revision",
	Transition[RevisionState, struct{}]{From: RevisionOpen, To: RevisionLocked},
	Transition[RevisionState, struct{}]{From: RevisionLocked, To: RevisionOpen},
	Transition[RevisionState, struct{}]{From: RevisionLocked, To: RevisionAccepted},
)

// CheckEditable rejects edits of lines that belong to a locked revision.
func CheckEditable(r storage.Revision) error {
	if state := RevisionStateOf(r); state != RevisionOpen {
		return storage.InvalidTransition("revision", string(state), "edit", "revision is locked")
	}
	return nil
}
