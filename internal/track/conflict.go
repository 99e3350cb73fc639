package track

import (
	"fmt"

	"rigtrack/internal/model"
)

// Conflict is an active connection occupying the same type slot that a
// candidate part wants on a target motherboard.
type Conflict struct {
	Connection *model.Connection
	Part       *model.Part
}

// findConflicts returns the open connections on the motherboard whose part
// has the candidate's type, excluding the candidate itself. Whether the
// conflicts are displaced or kept is the caller's decision; detection has
// no side effects.
func (s *Service) findConflicts(motherboardID int64, candidateType model.PartType, candidateID int64) ([]*Conflict, error) {
	open, err := s.database.FindOpenConnectionsForMotherboard(motherboardID)
	if err != nil {
		return nil, fmt.Errorf("loading open connections: %w", err)
	}

	var conflicts []*Conflict
	for _, conn := range open {
		if conn.PartID == candidateID {
			continue
		}
		part, err := s.database.FindPartByID(conn.PartID)
		if err != nil {
			return nil, fmt.Errorf("loading connected part: %w", err)
		}
		if part == nil || part.Type != candidateType {
			continue
		}
		conflicts = append(conflicts, &Conflict{Connection: conn, Part: part})
	}
	return conflicts, nil
}
