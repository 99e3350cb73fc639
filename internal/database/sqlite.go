package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rigtrack/internal/database/migrations"
	"rigtrack/internal/model"
	"rigtrack/internal/track"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase implements the track.Database interface using SQLite.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
}

// NewSQLiteDatabase creates a new SQLite database connection.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	return &SQLiteDatabase{db: db, path: path}, nil
}

// NewSQLiteDatabaseFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteDatabaseFromDB(db *sql.DB) *SQLiteDatabase {
	return &SQLiteDatabase{db: db}
}

// OpenConnection opens and configures a SQLite connection with appropriate
// PRAGMAs. Exported for tools and tests that need a raw configured handle.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// Date column helpers. Absent dates are stored as NULL in both the value and
// precision columns; present dates as the normalized "YYYY-MM-DD" string plus
// the precision tag.

func dateToNull(d model.Date) (value, precision sql.NullString) {
	if d.IsZero() {
		return sql.NullString{}, sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true},
		sql.NullString{String: string(d.Precision), Valid: true}
}

func dateFromNull(value, precision sql.NullString) (model.Date, error) {
	if !value.Valid {
		return model.Date{Precision: model.PrecisionNone}, nil
	}
	p, err := model.ParsePrecision(precision.String)
	if err != nil {
		return model.Date{}, err
	}
	return model.ParseDate(value.String, p)
}

type scanner interface {
	Scan(dest ...any) error
}

// Part operations

const partColumns = "id, brand, model, type, acquired_at, acquired_precision, notes, is_deleted"

func scanPart(s scanner) (*model.Part, error) {
	var p model.Part
	var ptype string
	var acquiredAt, acquiredPrecision sql.NullString
	if err := s.Scan(&p.ID, &p.Brand, &p.Model, &ptype, &acquiredAt, &acquiredPrecision, &p.Notes, &p.Deleted); err != nil {
		return nil, err
	}

	t, err := model.ParsePartType(ptype)
	if err != nil {
		return nil, err
	}
	p.Type = t

	p.AcquiredAt, err = dateFromNull(acquiredAt, acquiredPrecision)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SQLiteDatabase) CreatePart(part *model.Part) (*model.Part, error) {
	at, prec := dateToNull(part.AcquiredAt)
	res, err := s.db.Exec(
		`INSERT INTO parts (brand, model, type, acquired_at, acquired_precision, notes, is_deleted)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		part.Brand, part.Model, string(part.Type), at, prec, part.Notes, part.Deleted,
	)
	if err != nil {
		return nil, fmt.Errorf("creating part: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("creating part: %w", err)
	}
	created := *part
	created.ID = id
	return &created, nil
}

func (s *SQLiteDatabase) UpdatePart(part *model.Part) error {
	at, prec := dateToNull(part.AcquiredAt)
	_, err := s.db.Exec(
		`UPDATE parts SET brand = ?, model = ?, type = ?, acquired_at = ?, acquired_precision = ?, notes = ?
		 WHERE id = ?`,
		part.Brand, part.Model, string(part.Type), at, prec, part.Notes, part.ID,
	)
	if err != nil {
		return fmt.Errorf("updating part: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) FindPartByID(id int64) (*model.Part, error) {
	row := s.db.QueryRow("SELECT "+partColumns+" FROM parts WHERE id = ?", id)
	part, err := scanPart(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding part by id: %w", err)
	}
	return part, nil
}

func (s *SQLiteDatabase) ListParts() ([]*model.Part, error) {
	rows, err := s.db.Query("SELECT " + partColumns + " FROM parts ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing parts: %w", err)
	}
	defer rows.Close()

	var parts []*model.Part
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, fmt.Errorf("listing parts: %w", err)
		}
		parts = append(parts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing parts: %w", err)
	}
	return parts, nil
}

func (s *SQLiteDatabase) ListBrands() ([]string, error) {
	rows, err := s.db.Query("SELECT DISTINCT brand FROM parts ORDER BY brand")
	if err != nil {
		return nil, fmt.Errorf("listing brands: %w", err)
	}
	defer rows.Close()

	var brands []string
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, fmt.Errorf("listing brands: %w", err)
		}
		brands = append(brands, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing brands: %w", err)
	}
	return brands, nil
}

// Connection operations

const connectionColumns = "id, part_id, motherboard_id, connected_at, connected_precision, disconnected_at, disconnected_precision, notes"

func scanConnection(s scanner) (*model.Connection, error) {
	var c model.Connection
	var connectedAt, connectedPrecision, disconnectedAt, disconnectedPrecision sql.NullString
	if err := s.Scan(&c.ID, &c.PartID, &c.MotherboardID,
		&connectedAt, &connectedPrecision, &disconnectedAt, &disconnectedPrecision, &c.Notes); err != nil {
		return nil, err
	}

	var err error
	c.ConnectedAt, err = dateFromNull(connectedAt, connectedPrecision)
	if err != nil {
		return nil, err
	}
	c.DisconnectedAt, err = dateFromNull(disconnectedAt, disconnectedPrecision)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *SQLiteDatabase) queryConnections(query string, args ...any) ([]*model.Connection, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conns []*model.Connection
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, err
		}
		conns = append(conns, c)
	}
	return conns, rows.Err()
}

func (s *SQLiteDatabase) FindConnectionByID(id int64) (*model.Connection, error) {
	row := s.db.QueryRow("SELECT "+connectionColumns+" FROM connections WHERE id = ?", id)
	conn, err := scanConnection(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding connection by id: %w", err)
	}
	return conn, nil
}

func (s *SQLiteDatabase) FindConnectionsForPart(partID int64) ([]*model.Connection, error) {
	conns, err := s.queryConnections(
		"SELECT "+connectionColumns+" FROM connections WHERE part_id = ? ORDER BY connected_at, id", partID)
	if err != nil {
		return nil, fmt.Errorf("finding connections for part: %w", err)
	}
	return conns, nil
}

func (s *SQLiteDatabase) FindConnectionsForMotherboard(motherboardID int64) ([]*model.Connection, error) {
	conns, err := s.queryConnections(
		"SELECT "+connectionColumns+" FROM connections WHERE motherboard_id = ? ORDER BY connected_at, id", motherboardID)
	if err != nil {
		return nil, fmt.Errorf("finding connections for motherboard: %w", err)
	}
	return conns, nil
}

func (s *SQLiteDatabase) FindOpenConnectionsForPart(partID int64) ([]*model.Connection, error) {
	conns, err := s.queryConnections(
		"SELECT "+connectionColumns+" FROM connections WHERE part_id = ? AND disconnected_at IS NULL ORDER BY id", partID)
	if err != nil {
		return nil, fmt.Errorf("finding open connections for part: %w", err)
	}
	return conns, nil
}

func (s *SQLiteDatabase) FindOpenConnectionsForMotherboard(motherboardID int64) ([]*model.Connection, error) {
	conns, err := s.queryConnections(
		"SELECT "+connectionColumns+" FROM connections WHERE motherboard_id = ? AND disconnected_at IS NULL ORDER BY id", motherboardID)
	if err != nil {
		return nil, fmt.Errorf("finding open connections for motherboard: %w", err)
	}
	return conns, nil
}

func (s *SQLiteDatabase) FindOpenConnections() ([]*model.Connection, error) {
	conns, err := s.queryConnections(
		"SELECT " + connectionColumns + " FROM connections WHERE disconnected_at IS NULL ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("finding open connections: %w", err)
	}
	return conns, nil
}

// closeConnectionTx closes one open connection inside a transaction,
// appending notes newline-joined to whatever notes the row already carries.
func closeConnectionTx(tx *sql.Tx, id int64, at model.Date, notes string) error {
	atVal, atPrec := dateToNull(at)
	res, err := tx.Exec(
		`UPDATE connections
		 SET disconnected_at = ?, disconnected_precision = ?,
		     notes = CASE WHEN ? = '' THEN notes
		                  WHEN notes = '' THEN ?
		                  ELSE notes || char(10) || ? END
		 WHERE id = ? AND disconnected_at IS NULL`,
		atVal, atPrec, notes, notes, notes, id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("connection %d is not open", id)
	}
	return nil
}

// closeOpenConnectionsTx closes every open connection matching the endpoint
// column inside a transaction. Returns the number of rows closed.
func closeOpenConnectionsTx(tx *sql.Tx, column string, id int64, at model.Date, notes string) (int, error) {
	atVal, atPrec := dateToNull(at)
	res, err := tx.Exec(
		`UPDATE connections
		 SET disconnected_at = ?, disconnected_precision = ?,
		     notes = CASE WHEN ? = '' THEN notes
		                  WHEN notes = '' THEN ?
		                  ELSE notes || char(10) || ? END
		 WHERE `+column+` = ? AND disconnected_at IS NULL`,
		atVal, atPrec, notes, notes, notes, id,
	)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// ConnectPart atomically closes the listed conflicting connections using the
// new connection's date and note, then inserts the new connection. The
// no-open-connection invariant for the part is re-checked inside the
// transaction so a failure rolls everything back.
func (s *SQLiteDatabase) ConnectPart(conn *model.Connection, displaceIDs []int64, displaceNote string) (*model.Connection, error) {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	var open int
	err = tx.QueryRow(
		"SELECT COUNT(*) FROM connections WHERE part_id = ? AND disconnected_at IS NULL", conn.PartID,
	).Scan(&open)
	if err != nil {
		return nil, fmt.Errorf("checking open connections: %w", err)
	}
	if open > 0 {
		return nil, &track.ValidationError{Message: fmt.Sprintf("part %d is already connected", conn.PartID)}
	}

	for _, id := range displaceIDs {
		if err := closeConnectionTx(tx, id, conn.ConnectedAt, displaceNote); err != nil {
			return nil, fmt.Errorf("displacing connection %d: %w", id, err)
		}
	}

	atVal, atPrec := dateToNull(conn.ConnectedAt)
	res, err := tx.Exec(
		`INSERT INTO connections (part_id, motherboard_id, connected_at, connected_precision, notes)
		 VALUES (?, ?, ?, ?, ?)`,
		conn.PartID, conn.MotherboardID, atVal, atPrec, conn.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting connection: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("inserting connection: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	created := *conn
	created.ID = id
	return &created, nil
}

func (s *SQLiteDatabase) CloseConnection(id int64, at model.Date, notes string) error {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := closeConnectionTx(tx, id, at, notes); err != nil {
		return fmt.Errorf("closing connection: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) CloseOpenConnectionsForPart(partID int64, at model.Date, notes string) (int, error) {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	n, err := closeOpenConnectionsTx(tx, "part_id", partID, at, notes)
	if err != nil {
		return 0, fmt.Errorf("closing connections: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return n, nil
}

// Disposal operations

// DisposePart atomically closes the part's open connections at both
// endpoints, inserts the disposal record, and soft-deletes the part.
func (s *SQLiteDatabase) DisposePart(disposal *model.Disposal, motherboard bool) (*model.Disposal, error) {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if motherboard {
		if _, err := closeOpenConnectionsTx(tx, "motherboard_id", disposal.PartID, disposal.DisposedAt, track.NoteMotherboardDisposed); err != nil {
			return nil, fmt.Errorf("closing hosted connections: %w", err)
		}
	}
	if _, err := closeOpenConnectionsTx(tx, "part_id", disposal.PartID, disposal.DisposedAt, track.NotePartDisposed); err != nil {
		return nil, fmt.Errorf("closing part connections: %w", err)
	}

	atVal, atPrec := dateToNull(disposal.DisposedAt)
	res, err := tx.Exec(
		`INSERT INTO disposals (part_id, disposed_at, disposed_precision, reason, notes)
		 VALUES (?, ?, ?, ?, ?)`,
		disposal.PartID, atVal, atPrec, disposal.Reason, disposal.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting disposal: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("inserting disposal: %w", err)
	}

	if _, err := tx.Exec("UPDATE parts SET is_deleted = 1 WHERE id = ?", disposal.PartID); err != nil {
		return nil, fmt.Errorf("soft-deleting part: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	created := *disposal
	created.ID = id
	return &created, nil
}

func (s *SQLiteDatabase) RestorePart(partID int64) error {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM disposals WHERE part_id = ?", partID); err != nil {
		return fmt.Errorf("deleting disposals: %w", err)
	}
	if _, err := tx.Exec("UPDATE parts SET is_deleted = 0 WHERE id = ?", partID); err != nil {
		return fmt.Errorf("clearing deleted flag: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) HardDeletePart(partID int64) error {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM connections WHERE part_id = ? OR motherboard_id = ?", partID, partID); err != nil {
		return fmt.Errorf("deleting connections: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM rig_names WHERE motherboard_id = ?", partID); err != nil {
		return fmt.Errorf("deleting rig names: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM rig_identities WHERE motherboard_id = ?", partID); err != nil {
		return fmt.Errorf("deleting rig identities: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM disposals WHERE part_id = ?", partID); err != nil {
		return fmt.Errorf("deleting disposals: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM parts WHERE id = ?", partID); err != nil {
		return fmt.Errorf("deleting part: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

const disposalColumns = "id, part_id, disposed_at, disposed_precision, reason, notes"

func (s *SQLiteDatabase) FindDisposalsForPart(partID int64) ([]*model.Disposal, error) {
	rows, err := s.db.Query(
		"SELECT "+disposalColumns+" FROM disposals WHERE part_id = ? ORDER BY id", partID)
	if err != nil {
		return nil, fmt.Errorf("finding disposals: %w", err)
	}
	defer rows.Close()

	var disposals []*model.Disposal
	for rows.Next() {
		var d model.Disposal
		var at, prec sql.NullString
		if err := rows.Scan(&d.ID, &d.PartID, &at, &prec, &d.Reason, &d.Notes); err != nil {
			return nil, fmt.Errorf("finding disposals: %w", err)
		}
		d.DisposedAt, err = dateFromNull(at, prec)
		if err != nil {
			return nil, fmt.Errorf("finding disposals: %w", err)
		}
		disposals = append(disposals, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("finding disposals: %w", err)
	}
	return disposals, nil
}

// Rig name overlay (start-date keyed)

func scanRigName(s scanner) (*model.RigName, error) {
	var rn model.RigName
	var start, prec sql.NullString
	if err := s.Scan(&rn.ID, &rn.MotherboardID, &start, &prec, &rn.Name); err != nil {
		return nil, err
	}
	var err error
	rn.StartDate, err = dateFromNull(start, prec)
	if err != nil {
		return nil, err
	}
	return &rn, nil
}

func (s *SQLiteDatabase) UpsertRigName(motherboardID int64, start model.Date, name string) error {
	startVal, startPrec := dateToNull(start)
	_, err := s.db.Exec(
		`INSERT INTO rig_names (motherboard_id, start_date, start_precision, name)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (motherboard_id, start_date)
		 DO UPDATE SET name = excluded.name, start_precision = excluded.start_precision`,
		motherboardID, startVal, startPrec, name,
	)
	if err != nil {
		return fmt.Errorf("upserting rig name: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) FindRigName(motherboardID int64, start model.Date) (*model.RigName, error) {
	row := s.db.QueryRow(
		"SELECT id, motherboard_id, start_date, start_precision, name FROM rig_names WHERE motherboard_id = ? AND start_date = ?",
		motherboardID, start.String(),
	)
	rn, err := scanRigName(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding rig name: %w", err)
	}
	return rn, nil
}

func (s *SQLiteDatabase) FindRigNamesForMotherboard(motherboardID int64) ([]*model.RigName, error) {
	rows, err := s.db.Query(
		"SELECT id, motherboard_id, start_date, start_precision, name FROM rig_names WHERE motherboard_id = ? ORDER BY start_date",
		motherboardID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding rig names: %w", err)
	}
	defer rows.Close()

	var names []*model.RigName
	for rows.Next() {
		rn, err := scanRigName(rows)
		if err != nil {
			return nil, fmt.Errorf("finding rig names: %w", err)
		}
		names = append(names, rn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("finding rig names: %w", err)
	}
	return names, nil
}

func (s *SQLiteDatabase) DeleteAllRigNames() error {
	if _, err := s.db.Exec("DELETE FROM rig_names"); err != nil {
		return fmt.Errorf("deleting rig names: %w", err)
	}
	return nil
}

// Rig identity overlay (legacy interval form)

func (s *SQLiteDatabase) FindRigIdentitiesForMotherboard(motherboardID int64) ([]*model.RigIdentity, error) {
	rows, err := s.db.Query(
		`SELECT id, motherboard_id, name, active_from, active_from_precision, active_until, active_until_precision
		 FROM rig_identities WHERE motherboard_id = ? ORDER BY active_from, id`,
		motherboardID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding rig identities: %w", err)
	}
	defer rows.Close()

	var identities []*model.RigIdentity
	for rows.Next() {
		var ri model.RigIdentity
		var from, fromPrec, until, untilPrec sql.NullString
		if err := rows.Scan(&ri.ID, &ri.MotherboardID, &ri.Name, &from, &fromPrec, &until, &untilPrec); err != nil {
			return nil, fmt.Errorf("finding rig identities: %w", err)
		}
		ri.ActiveFrom, err = dateFromNull(from, fromPrec)
		if err != nil {
			return nil, fmt.Errorf("finding rig identities: %w", err)
		}
		ri.ActiveUntil, err = dateFromNull(until, untilPrec)
		if err != nil {
			return nil, fmt.Errorf("finding rig identities: %w", err)
		}
		identities = append(identities, &ri)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("finding rig identities: %w", err)
	}
	return identities, nil
}

// SetRigIdentity atomically closes the motherboard's current identity (if
// any) at the new identity's start date and inserts the new one, keeping at
// most one identity per motherboard without an end date.
func (s *SQLiteDatabase) SetRigIdentity(motherboardID int64, name string, from model.Date) (*model.RigIdentity, error) {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	fromVal, fromPrec := dateToNull(from)

	_, err = tx.Exec(
		`UPDATE rig_identities SET active_until = ?, active_until_precision = ?
		 WHERE motherboard_id = ? AND active_until IS NULL`,
		fromVal, fromPrec, motherboardID,
	)
	if err != nil {
		return nil, fmt.Errorf("closing current identity: %w", err)
	}

	res, err := tx.Exec(
		`INSERT INTO rig_identities (motherboard_id, name, active_from, active_from_precision)
		 VALUES (?, ?, ?, ?)`,
		motherboardID, name, fromVal, fromPrec,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting identity: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("inserting identity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return &model.RigIdentity{
		ID:            id,
		MotherboardID: motherboardID,
		Name:          name,
		ActiveFrom:    from,
	}, nil
}

// Operation audit

func (s *SQLiteDatabase) CreateOperation(name, parameters string) (*model.Operation, error) {
	startedAt := time.Now()
	res, err := s.db.Exec(
		"INSERT INTO operations (operation, parameters, started_at) VALUES (?, ?, ?)",
		name, parameters, startedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating operation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("creating operation: %w", err)
	}
	return &model.Operation{ID: id, Name: name, Parameters: parameters, StartedAt: startedAt}, nil
}

func (s *SQLiteDatabase) FinishOperation(id int64, status string) error {
	_, err := s.db.Exec(
		"UPDATE operations SET finished_at = ?, status = ? WHERE id = ?",
		time.Now(), status, id,
	)
	if err != nil {
		return fmt.Errorf("finishing operation: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) ListOperations(limit int) ([]*model.Operation, error) {
	rows, err := s.db.Query(
		"SELECT id, operation, parameters, started_at, finished_at, status FROM operations ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	defer rows.Close()

	var ops []*model.Operation
	for rows.Next() {
		var op model.Operation
		var finished sql.NullTime
		if err := rows.Scan(&op.ID, &op.Name, &op.Parameters, &op.StartedAt, &finished, &op.Status); err != nil {
			return nil, fmt.Errorf("listing operations: %w", err)
		}
		if finished.Valid {
			t := finished.Time
			op.FinishedAt = &t
		}
		ops = append(ops, &op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return ops, nil
}

func (s *SQLiteDatabase) MaxOperationID() (int64, error) {
	var id int64
	err := s.db.QueryRow("SELECT COALESCE(MAX(id), 0) FROM operations").Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("getting max operation id: %w", err)
	}
	return id, nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// MigrateUp applies all pending migrations.
func (s *SQLiteDatabase) MigrateUp() error {
	return migrations.MigrateUp(s.db)
}

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	_, err := s.db.Exec("VACUUM INTO ?", destPath)
	if err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteDatabase implements track.Database
var _ track.Database = (*SQLiteDatabase)(nil)
