package track

import (
	"fmt"

	"rigtrack/internal/model"
)

// Rig is a motherboard together with its currently connected parts and the
// name of its active lifecycle.
type Rig struct {
	Motherboard *model.Part
	Name        string
	Parts       []*model.Part
}

// NamedLifecycle pairs a computed lifecycle with its resolved name overlay.
type NamedLifecycle struct {
	Lifecycle *Lifecycle
	Name      string
}

// RigHistory is a motherboard's completed assembly periods.
type RigHistory struct {
	Motherboard *model.Part
	Lifecycles  []*NamedLifecycle
}

// GetActiveRigs returns every undisposed motherboard currently hosting at
// least one part, with its connected parts and resolved current name.
func (s *Service) GetActiveRigs() ([]*Rig, error) {
	parts, err := s.database.ListParts()
	if err != nil {
		return nil, fmt.Errorf("loading parts: %w", err)
	}

	var rigs []*Rig
	for _, part := range parts {
		if !part.IsMotherboard() || part.Deleted {
			continue
		}
		open, err := s.database.FindOpenConnectionsForMotherboard(part.ID)
		if err != nil {
			return nil, fmt.Errorf("loading open connections: %w", err)
		}
		if len(open) == 0 {
			continue
		}

		rig := &Rig{Motherboard: part}
		for _, conn := range open {
			hosted, err := s.database.FindPartByID(conn.PartID)
			if err != nil {
				return nil, fmt.Errorf("loading connected part: %w", err)
			}
			if hosted != nil {
				rig.Parts = append(rig.Parts, hosted)
			}
		}

		name, err := s.currentRigName(part.ID)
		if err != nil {
			return nil, err
		}
		rig.Name = name

		rigs = append(rigs, rig)
	}
	return rigs, nil
}

// GetHistoricalRigs returns, for every motherboard with at least one
// completed lifecycle, those closed periods with their resolved names.
// Disposed motherboards are included: their history is the point.
func (s *Service) GetHistoricalRigs() ([]*RigHistory, error) {
	parts, err := s.database.ListParts()
	if err != nil {
		return nil, fmt.Errorf("loading parts: %w", err)
	}

	var histories []*RigHistory
	for _, part := range parts {
		if !part.IsMotherboard() {
			continue
		}
		lifecycles, err := s.ComputeLifecycles(part.ID)
		if err != nil {
			return nil, err
		}

		var closed []*NamedLifecycle
		for _, lc := range lifecycles {
			if lc.Active {
				continue
			}
			name, err := s.ResolveRigName(part.ID, lc)
			if err != nil {
				return nil, err
			}
			closed = append(closed, &NamedLifecycle{Lifecycle: lc, Name: name})
		}
		if len(closed) == 0 {
			continue
		}

		histories = append(histories, &RigHistory{Motherboard: part, Lifecycles: closed})
	}
	return histories, nil
}
