package track

import (
	"fmt"
	"sort"

	"rigtrack/internal/model"
)

// Lifecycle is one contiguous period during which a motherboard had at least
// one connected component. Lifecycles are never stored: they are recomputed
// on demand from the connection log, and their start dates are the join key
// for the rig name overlay.
type Lifecycle struct {
	Sequence int
	Start    model.Date
	End      model.Date // absent while the lifecycle is still active
	Active   bool
}

// connEvent is a point event derived from one end of a connection interval.
type connEvent struct {
	date         model.Date
	connectionID int64
	disconnect   bool
}

// ComputeLifecycles reconstructs the motherboard's assembly-active intervals
// from its full connect/disconnect history.
//
// Every connection contributes a connect event and, if closed, a disconnect
// event. Processing them in chronological order while counting open
// connections, the 0->1 transition starts a lifecycle and the 1->0 transition
// ends it; intermediate churn while the count stays positive is invisible.
func (s *Service) ComputeLifecycles(motherboardID int64) ([]*Lifecycle, error) {
	mb, err := s.database.FindPartByID(motherboardID)
	if err != nil {
		return nil, fmt.Errorf("loading motherboard: %w", err)
	}
	if mb == nil {
		return nil, &NotFoundError{Kind: "motherboard", ID: motherboardID}
	}
	if !mb.IsMotherboard() {
		return nil, validationf("part %d is a %s, not a motherboard", motherboardID, mb.Type)
	}

	conns, err := s.database.FindConnectionsForMotherboard(motherboardID)
	if err != nil {
		return nil, fmt.Errorf("loading connections: %w", err)
	}
	if len(conns) == 0 {
		return []*Lifecycle{}, nil
	}

	events := make([]connEvent, 0, 2*len(conns))
	for _, c := range conns {
		events = append(events, connEvent{date: c.ConnectedAt, connectionID: c.ID})
		if !c.Open() {
			events = append(events, connEvent{date: c.DisconnectedAt, connectionID: c.ID, disconnect: true})
		}
	}

	// Chronological order; ties broken stably by originating connection id,
	// connects before disconnects on the same date and connection.
	sort.Slice(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.date.String() != b.date.String() {
			return a.date.String() < b.date.String()
		}
		if a.connectionID != b.connectionID {
			return a.connectionID < b.connectionID
		}
		return !a.disconnect && b.disconnect
	})

	var lifecycles []*Lifecycle
	var current *Lifecycle
	open := 0

	for _, ev := range events {
		if ev.disconnect {
			open--
			if open == 0 && current != nil {
				current.End = ev.date
				current.Active = false
				current = nil
			}
			continue
		}
		open++
		if open == 1 {
			current = &Lifecycle{
				Sequence: len(lifecycles) + 1,
				Start:    ev.date,
				Active:   true,
			}
			lifecycles = append(lifecycles, current)
		}
	}

	return lifecycles, nil
}

// lifecycleContaining returns the lifecycle whose interval contains the given
// date, or nil. An active lifecycle's interval extends to now.
func lifecycleContaining(lifecycles []*Lifecycle, date model.Date) *Lifecycle {
	for _, lc := range lifecycles {
		if date.Before(lc.Start) {
			continue
		}
		if lc.Active || !lc.End.Before(date) {
			return lc
		}
	}
	return nil
}
