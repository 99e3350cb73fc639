package track

import (
	"fmt"

	"rigtrack/internal/model"
)

// ConnectParams describes a connect request. Date may be absent, in which
// case the part's own acquisition date (with its stored precision) is used.
type ConnectParams struct {
	PartID        int64
	MotherboardID int64
	Date          model.Date
	Notes         string
	KeepExisting  bool // leave same-slot occupants connected
}

// ConnectResult reports what a connect did. Conflicts are data, not errors:
// Displaced lists the connections closed to make room, Kept lists same-slot
// occupants left in place because KeepExisting was requested — an unusual
// configuration the system permits but flags.
type ConnectResult struct {
	Connection *model.Connection
	Displaced  []*Conflict
	Kept       []*Conflict
}

// ConnectPart attaches a part to a motherboard. Same-slot conflicts are
// displaced (closed with the new connection's date and a tagged note) unless
// KeepExisting is set. The conflict closures and the insert commit as one
// transaction.
func (s *Service) ConnectPart(params ConnectParams) (*ConnectResult, error) {
	part, err := s.database.FindPartByID(params.PartID)
	if err != nil {
		return nil, fmt.Errorf("loading part: %w", err)
	}
	if part == nil {
		return nil, &NotFoundError{Kind: "part", ID: params.PartID}
	}
	if part.IsMotherboard() {
		return nil, validationf("part %d is a motherboard and cannot be connected to another motherboard", part.ID)
	}

	mb, err := s.database.FindPartByID(params.MotherboardID)
	if err != nil {
		return nil, fmt.Errorf("loading motherboard: %w", err)
	}
	if mb == nil {
		return nil, &NotFoundError{Kind: "motherboard", ID: params.MotherboardID}
	}
	if !mb.IsMotherboard() {
		return nil, validationf("part %d is a %s, not a motherboard", mb.ID, mb.Type)
	}

	date := params.Date
	if date.IsZero() {
		// Fall back to the part's acquisition date at its stored precision.
		date = part.AcquiredAt
	}
	if date.IsZero() {
		return nil, validationf("no connection date supplied and part %d has no acquisition date", part.ID)
	}

	open, err := s.database.FindOpenConnectionsForPart(part.ID)
	if err != nil {
		return nil, fmt.Errorf("loading open connections: %w", err)
	}
	if len(open) > 0 {
		return nil, validationf("part %d is already connected to motherboard %d", part.ID, open[0].MotherboardID)
	}

	conflicts, err := s.findConflicts(mb.ID, part.Type, part.ID)
	if err != nil {
		return nil, err
	}

	result := &ConnectResult{}
	var displaceIDs []int64
	if params.KeepExisting {
		result.Kept = conflicts
	} else {
		result.Displaced = conflicts
		for _, c := range conflicts {
			displaceIDs = append(displaceIDs, c.Connection.ID)
		}
	}

	conn := &model.Connection{
		PartID:        part.ID,
		MotherboardID: mb.ID,
		ConnectedAt:   date,
		Notes:         params.Notes,
	}
	created, err := s.database.ConnectPart(conn, displaceIDs, NoteDisplacedByConnect)
	if err != nil {
		return nil, fmt.Errorf("connecting part: %w", err)
	}
	result.Connection = created

	s.logger.Info("part connected",
		"part", part.ID, "motherboard", mb.ID,
		"date", date.String(), "displaced", len(displaceIDs), "kept", len(result.Kept))
	return result, nil
}

// DisconnectConnection closes one connection. A year is required: unlike
// connecting, disconnection has no natural default date.
func (s *Service) DisconnectConnection(connectionID int64, date model.Date, notes string) error {
	if date.IsZero() {
		return validationf("a disconnection year is required")
	}

	conn, err := s.database.FindConnectionByID(connectionID)
	if err != nil {
		return fmt.Errorf("loading connection: %w", err)
	}
	if conn == nil {
		return &NotFoundError{Kind: "connection", ID: connectionID}
	}
	if !conn.Open() {
		return validationf("connection %d is already disconnected", connectionID)
	}

	if err := s.database.CloseConnection(connectionID, date, notes); err != nil {
		return fmt.Errorf("closing connection: %w", err)
	}

	s.logger.Info("connection closed", "connection", connectionID, "date", date.String())
	return nil
}

// DisconnectPart closes all of the part's open connections. Normally exactly
// one exists, but the operation is safe against data anomalies with more.
// Returns the number of connections closed.
func (s *Service) DisconnectPart(partID int64, date model.Date, notes string) (int, error) {
	if date.IsZero() {
		return 0, validationf("a disconnection year is required")
	}

	part, err := s.database.FindPartByID(partID)
	if err != nil {
		return 0, fmt.Errorf("loading part: %w", err)
	}
	if part == nil {
		return 0, &NotFoundError{Kind: "part", ID: partID}
	}

	closed, err := s.database.CloseOpenConnectionsForPart(partID, date, notes)
	if err != nil {
		return 0, fmt.Errorf("closing connections: %w", err)
	}
	if closed == 0 {
		return 0, validationf("part %d is not connected", partID)
	}

	s.logger.Info("part disconnected", "part", partID, "closed", closed, "date", date.String())
	return closed, nil
}

// GetConnectionsForPart returns the part's full connection history.
func (s *Service) GetConnectionsForPart(partID int64) ([]*model.Connection, error) {
	return s.database.FindConnectionsForPart(partID)
}

// GetConnectionsForMotherboard returns the motherboard's full hosted history.
func (s *Service) GetConnectionsForMotherboard(motherboardID int64) ([]*model.Connection, error) {
	return s.database.FindConnectionsForMotherboard(motherboardID)
}

// GetActiveConnectionsForPart returns the part's open connections.
func (s *Service) GetActiveConnectionsForPart(partID int64) ([]*model.Connection, error) {
	return s.database.FindOpenConnectionsForPart(partID)
}

// GetActiveConnectionsForMotherboard returns the open connections hosted on
// the motherboard.
func (s *Service) GetActiveConnectionsForMotherboard(motherboardID int64) ([]*model.Connection, error) {
	return s.database.FindOpenConnectionsForMotherboard(motherboardID)
}
