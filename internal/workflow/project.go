package workflow

import (
	"errors"

	"estimate-backend/internal/storage"
)

// ProjectContext is what the project guards look at.
type ProjectContext struct {
	Revisions  []storage.Revision
	RevisionID *int64
}

var ProjectMachine = NewMachine[storage.ProjectStatus, ProjectContext]("project",
	Transition[storage.ProjectStatus, ProjectContext]{From: storage.ProjectDraft, To: storage.ProjectOffering, Guard: hasLockedRevision},
	Transition[storage.ProjectStatus, ProjectContext]{From: storage.ProjectOffering, To: storage.ProjectExecution, Guard: acceptableRevision},
	Transition[storage.ProjectStatus, ProjectContext]{From: storage.ProjectOffering, To: storage.ProjectRejected},
	Transition[storage.ProjectStatus, ProjectContext]{From: storage.ProjectOffering, To: storage.ProjectDraft},
	Transition[storage.ProjectStatus, ProjectContext]{From: storage.ProjectExecution, To: storage.ProjectClosed},
	Transition[storage.ProjectStatus, ProjectContext]{From: storage.ProjectExecution, To: storage.ProjectOffering},
	Transition[storage.ProjectStatus, ProjectContext]{From: storage.ProjectRejected, To: storage.ProjectOffering},
)

func hasLockedRevision(c ProjectContext) error {
	for _, r := range c.Revisions {
		if r.Locked {
			return nil
		}
	}
	return errors.New("no locked revision")
}

func acceptableRevision(c ProjectContext) error {
	if c.RevisionID == nil {
		return errors.New("revision id is required")
	}
	for _, r := range c.Revisions {
		if r.ID != *c.RevisionID {
			continue
		}
		switch RevisionStateOf(r) {
		case RevisionLocked:
			return nil
		case RevisionAccepted:
			return errors.New("revision is already accepted")
		default:
			return errors.New("revision is not locked")
		}
	}
	return errors.New("revision does not belong to the project")
}
