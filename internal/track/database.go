package track

import "rigtrack/internal/model"

// Database provides an interface for record storage. Every multi-step write
// method must be implemented as a single transaction: a failure partway
// through leaves the store unchanged for that call. Read methods are not
// transactional; they observe current state only. Find* methods return
// (nil, nil) when no record matches.
type Database interface {
	// Part operations

	// CreatePart inserts a new part and returns it with its assigned id.
	CreatePart(part *model.Part) (*model.Part, error)

	// UpdatePart rewrites a part's editable fields (brand, model, type,
	// acquisition date, notes) by id.
	UpdatePart(part *model.Part) error

	// FindPartByID returns a part by id.
	FindPartByID(id int64) (*model.Part, error)

	// ListParts returns all parts, including soft-deleted ones.
	ListParts() ([]*model.Part, error)

	// ListBrands returns the distinct brands across all parts, sorted.
	ListBrands() ([]string, error)

	// Connection operations

	// FindConnectionByID returns a connection by id.
	FindConnectionByID(id int64) (*model.Connection, error)

	// FindConnectionsForPart returns every connection where the part is the
	// hosted endpoint, ordered by connection date.
	FindConnectionsForPart(partID int64) ([]*model.Connection, error)

	// FindConnectionsForMotherboard returns every connection hosted on the
	// motherboard, ordered by connection date.
	FindConnectionsForMotherboard(motherboardID int64) ([]*model.Connection, error)

	// FindOpenConnectionsForPart returns the part's open connections.
	// The at-most-one invariant makes more than one a data anomaly, but
	// callers must handle it.
	FindOpenConnectionsForPart(partID int64) ([]*model.Connection, error)

	// FindOpenConnectionsForMotherboard returns the open connections hosted
	// on the motherboard.
	FindOpenConnectionsForMotherboard(motherboardID int64) ([]*model.Connection, error)

	// FindOpenConnections returns every open connection in the store.
	FindOpenConnections() ([]*model.Connection, error)

	// ConnectPart atomically closes the listed conflicting connections using
	// the new connection's date and the given note, then inserts the new
	// connection. The part's no-open-connection invariant is re-checked
	// inside the transaction.
	ConnectPart(conn *model.Connection, displaceIDs []int64, displaceNote string) (*model.Connection, error)

	// CloseConnection sets the disconnection date on one open connection,
	// appending notes (newline-joined) to any existing notes.
	CloseConnection(id int64, at model.Date, notes string) error

	// CloseOpenConnectionsForPart closes every open connection where the
	// part is the hosted endpoint. Returns the number closed.
	CloseOpenConnectionsForPart(partID int64, at model.Date, notes string) (int, error)

	// Disposal operations

	// DisposePart atomically closes the part's open connections (both as
	// host and as hosted endpoint, with the appropriate notes), inserts the
	// disposal record, and soft-deletes the part.
	DisposePart(disposal *model.Disposal, motherboard bool) (*model.Disposal, error)

	// RestorePart atomically deletes all of the part's disposal records and
	// clears its deleted flag. Connections closed by the disposal stay closed.
	RestorePart(partID int64) error

	// HardDeletePart atomically deletes every connection referencing the
	// part (either endpoint), its rig name and identity records, its
	// disposal records, and finally the part itself. Irreversible.
	HardDeletePart(partID int64) error

	// FindDisposalsForPart returns the part's disposal records, oldest first.
	FindDisposalsForPart(partID int64) ([]*model.Disposal, error)

	// Rig name overlay (start-date keyed, preferred for new data)

	// UpsertRigName sets the name for the lifecycle starting at the given
	// date, replacing any existing name for that (motherboard, start) pair.
	UpsertRigName(motherboardID int64, start model.Date, name string) error

	// FindRigName returns the name keyed to the exact lifecycle start date.
	FindRigName(motherboardID int64, start model.Date) (*model.RigName, error)

	// FindRigNamesForMotherboard returns all names recorded for a motherboard.
	FindRigNamesForMotherboard(motherboardID int64) ([]*model.RigName, error)

	// DeleteAllRigNames removes every rig name record.
	DeleteAllRigNames() error

	// Rig identity overlay (legacy interval form)

	// FindRigIdentitiesForMotherboard returns the motherboard's identity
	// intervals, ordered by active_from.
	FindRigIdentitiesForMotherboard(motherboardID int64) ([]*model.RigIdentity, error)

	// SetRigIdentity atomically closes the motherboard's current identity
	// (if any) at the new identity's start date and inserts the new one.
	SetRigIdentity(motherboardID int64, name string, from model.Date) (*model.RigIdentity, error)

	// Operation audit

	// CreateOperation records the start of a mutating command.
	CreateOperation(name, parameters string) (*model.Operation, error)

	// FinishOperation stamps the operation's finish time and status.
	FinishOperation(id int64, status string) error

	// ListOperations returns the most recent operations, newest first.
	ListOperations(limit int) ([]*model.Operation, error)

	// MaxOperationID returns the highest operation id (0 when none exist).
	MaxOperationID() (int64, error)

	// Maintenance

	// CheckMigrations verifies the schema is up to date.
	CheckMigrations() error

	// BackupTo writes a complete copy of the store to destPath.
	BackupTo(destPath string) error

	// Close closes the store.
	Close() error
}
