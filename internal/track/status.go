package track

import (
	"fmt"

	"rigtrack/internal/model"
)

// PartView couples a part with its derived status. Status is a pure function
// of current store state, recomputed on every call.
type PartView struct {
	Part              *model.Part
	Status            model.Status
	ActiveConnections int
	RigName           string // current rig name overlay, when the part is in a rig
}

// projectStatus derives a part's status from its records: the deleted flag
// wins, then any open connection at the relevant endpoint makes it active,
// otherwise it sits in the bin.
func projectStatus(part *model.Part, openConnections int) model.Status {
	switch {
	case part.Deleted:
		return model.StatusDeleted
	case openConnections > 0:
		return model.StatusActive
	default:
		return model.StatusBin
	}
}

// openConnectionsFor returns the part's open connections at its relevant
// endpoint: hosted connections for a motherboard, its own connection
// otherwise.
func (s *Service) openConnectionsFor(part *model.Part) ([]*model.Connection, error) {
	if part.IsMotherboard() {
		return s.database.FindOpenConnectionsForMotherboard(part.ID)
	}
	return s.database.FindOpenConnectionsForPart(part.ID)
}

// PartStatus returns the derived view of a single part: status, open
// connection count, and the rig name currently covering it (the overlay name
// with no end, resolved through the motherboard's active lifecycle).
func (s *Service) PartStatus(partID int64) (*PartView, error) {
	part, err := s.database.FindPartByID(partID)
	if err != nil {
		return nil, fmt.Errorf("loading part: %w", err)
	}
	if part == nil {
		return nil, &NotFoundError{Kind: "part", ID: partID}
	}

	open, err := s.openConnectionsFor(part)
	if err != nil {
		return nil, fmt.Errorf("loading open connections: %w", err)
	}

	view := &PartView{
		Part:              part,
		Status:            projectStatus(part, len(open)),
		ActiveConnections: len(open),
	}

	if view.Status == model.StatusActive {
		mbID := part.ID
		if !part.IsMotherboard() {
			mbID = open[0].MotherboardID
		}
		name, err := s.currentRigName(mbID)
		if err != nil {
			return nil, err
		}
		view.RigName = name
	}

	return view, nil
}

// currentRigName resolves the name of the motherboard's active lifecycle,
// or "" when no lifecycle is active or none is named.
func (s *Service) currentRigName(motherboardID int64) (string, error) {
	lifecycles, err := s.ComputeLifecycles(motherboardID)
	if err != nil {
		return "", err
	}
	if len(lifecycles) == 0 {
		return "", nil
	}
	last := lifecycles[len(lifecycles)-1]
	if !last.Active {
		return "", nil
	}
	return s.ResolveRigName(motherboardID, last)
}
