package track

import (
	"fmt"
	"sort"

	"rigtrack/internal/model"
)

// TimelineEventKind classifies one entry in a part's timeline.
type TimelineEventKind string

const (
	EventAcquisition  TimelineEventKind = "acquisition"
	EventConnected    TimelineEventKind = "connected"
	EventDisconnected TimelineEventKind = "disconnected"
	EventDisposed     TimelineEventKind = "disposed"
)

// TimelineEvent is one entry in a part's chronological narrative. Events are
// a projection of the underlying records, never stored: removing one means
// mutating or deleting its source record, and the timeline can be rebuilt
// from scratch at any time.
type TimelineEvent struct {
	Date    model.Date
	Kind    TimelineEventKind
	Title   string
	Content string
	Notes   string
}

// BuildTimeline merges a part's acquisition, connection, disconnection and
// disposal events into a single list, sorted ascending by normalized date
// string (absent dates first).
func (s *Service) BuildTimeline(partID int64) ([]*TimelineEvent, error) {
	part, err := s.database.FindPartByID(partID)
	if err != nil {
		return nil, fmt.Errorf("loading part: %w", err)
	}
	if part == nil {
		return nil, &NotFoundError{Kind: "part", ID: partID}
	}

	var events []*TimelineEvent

	if !part.AcquiredAt.IsZero() {
		events = append(events, &TimelineEvent{
			Date:  part.AcquiredAt,
			Kind:  EventAcquisition,
			Title: fmt.Sprintf("Acquired %s %s", part.Brand, part.Model),
		})
	}

	conns, counterparts, err := s.connectionHistory(part)
	if err != nil {
		return nil, err
	}

	// Lifecycles are recomputed at most once per motherboard in this call.
	lifecyclesByMB := make(map[int64][]*Lifecycle)

	for i, conn := range conns {
		counterpart := counterparts[i]
		label := "unknown part"
		if counterpart != nil {
			label = fmt.Sprintf("%s %s", counterpart.Brand, counterpart.Model)
		}

		rigName, err := s.rigNameAt(conn.MotherboardID, conn.ConnectedAt, lifecyclesByMB)
		if err != nil {
			return nil, err
		}
		content := ""
		if rigName != "" {
			content = fmt.Sprintf("Rig: %s", rigName)
		}

		connectedTitle := fmt.Sprintf("Connected to %s", label)
		disconnectedTitle := fmt.Sprintf("Disconnected from %s", label)
		if part.IsMotherboard() {
			connectedTitle = fmt.Sprintf("%s connected", label)
			disconnectedTitle = fmt.Sprintf("%s disconnected", label)
		}

		events = append(events, &TimelineEvent{
			Date:    conn.ConnectedAt,
			Kind:    EventConnected,
			Title:   connectedTitle,
			Content: content,
			Notes:   conn.Notes,
		})

		if !conn.Open() {
			rigName, err := s.rigNameAt(conn.MotherboardID, conn.DisconnectedAt, lifecyclesByMB)
			if err != nil {
				return nil, err
			}
			content := ""
			if rigName != "" {
				content = fmt.Sprintf("Rig: %s", rigName)
			}
			events = append(events, &TimelineEvent{
				Date:    conn.DisconnectedAt,
				Kind:    EventDisconnected,
				Title:   disconnectedTitle,
				Content: content,
			})
		}
	}

	disposals, err := s.database.FindDisposalsForPart(partID)
	if err != nil {
		return nil, fmt.Errorf("loading disposals: %w", err)
	}
	for _, d := range disposals {
		events = append(events, &TimelineEvent{
			Date:    d.DisposedAt,
			Kind:    EventDisposed,
			Title:   fmt.Sprintf("Disposed (%s)", d.Reason),
			Content: d.Notes,
		})
	}

	// Normalized date strings are zero-padded, so lexicographic order equals
	// chronological order; absent dates render as "" and sort first.
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.String() < events[j].Date.String()
	})

	return events, nil
}

// connectionHistory returns the connections involving the part at its
// relevant endpoint, paired with the counterpart part of each (the host
// motherboard for ordinary parts, the hosted part for motherboards).
func (s *Service) connectionHistory(part *model.Part) ([]*model.Connection, []*model.Part, error) {
	var conns []*model.Connection
	var err error
	if part.IsMotherboard() {
		conns, err = s.database.FindConnectionsForMotherboard(part.ID)
	} else {
		conns, err = s.database.FindConnectionsForPart(part.ID)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("loading connections: %w", err)
	}

	counterparts := make([]*model.Part, len(conns))
	for i, conn := range conns {
		counterpartID := conn.MotherboardID
		if part.IsMotherboard() {
			counterpartID = conn.PartID
		}
		counterpart, err := s.database.FindPartByID(counterpartID)
		if err != nil {
			return nil, nil, fmt.Errorf("loading counterpart part: %w", err)
		}
		counterparts[i] = counterpart
	}
	return conns, counterparts, nil
}

// rigNameAt resolves the rig name covering the motherboard at a given date,
// caching computed lifecycles per motherboard across calls.
func (s *Service) rigNameAt(motherboardID int64, date model.Date, cache map[int64][]*Lifecycle) (string, error) {
	lifecycles, ok := cache[motherboardID]
	if !ok {
		var err error
		lifecycles, err = s.ComputeLifecycles(motherboardID)
		if err != nil {
			return "", err
		}
		cache[motherboardID] = lifecycles
	}

	lc := lifecycleContaining(lifecycles, date)
	if lc == nil {
		return "", nil
	}
	return s.ResolveRigName(motherboardID, lc)
}
