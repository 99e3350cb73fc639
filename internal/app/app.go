package app

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"rigtrack/internal/archive"
	"rigtrack/internal/config"
	"rigtrack/internal/database"
	"rigtrack/internal/encryption"
	"rigtrack/internal/model"
	"rigtrack/internal/track"
)

// App is the application layer between the CLI and the track service.
// It constructs all dependencies from config, wraps mutating operations with
// the audit record, and manages the DB snapshot lifecycle on Close.
type App struct {
	cfg       *config.Config
	db        track.Database
	archive   archive.Archive
	encryptor encryption.Encryptor
	service   *track.Service
	op        *Operation
	logFile   *os.File
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "AddPart", "Connect").
// The caller must call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	arc, err := archive.NewArchiveFromConfig(cfg.Archive)
	if err != nil {
		return nil, fmt.Errorf("creating archive: %w", err)
	}

	db, err := database.NewDatabaseFromConfig(cfg.Database, cfg.StoreID)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	if err := db.CheckMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}

	// Check local DB version against the archived snapshot version.
	remoteVersion, err := arc.GetSnapshotVersion(cfg.StoreID)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("checking archived snapshot version: %w", err)
	}

	localMax, err := db.MaxOperationID()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("checking local database version: %w", err)
	}

	if remoteVersion > localMax {
		db.Close()
		return nil, fmt.Errorf("local database is behind archive (local=%d, archived=%d): restore the snapshot or re-initialize", localMax, remoteVersion)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	svc := track.NewService(db, &slogAdapter{l: logger}, track.RealClock{})
	op := NewOperation(operation, "")

	return &App{
		cfg:       cfg,
		db:        db,
		archive:   arc,
		encryptor: enc,
		service:   svc,
		op:        op,
		logFile:   logFile,
	}, nil
}

// Service exposes the track service for read-only queries. Mutating commands
// go through the App wrappers so the operation audit record is written.
func (a *App) Service() *track.Service {
	return a.service
}

// MarkFailed records that the running command ended in error.
func (a *App) MarkFailed() {
	a.op.Status = "error"
}

// persistOperation saves the operation to the database, giving it an
// auto-increment ID. This should only be called for DB-mutating commands.
func (a *App) persistOperation(parameters string) error {
	if a.op.Persisted() {
		return nil // already persisted
	}
	a.op.Parameters = parameters
	dbOp, err := a.db.CreateOperation(a.op.Name, a.op.Parameters)
	if err != nil {
		return fmt.Errorf("persisting operation: %w", err)
	}
	a.op.ID = dbOp.ID
	return nil
}

// AddPart registers a new part.
func (a *App) AddPart(params track.PartParams) (*model.Part, error) {
	if err := a.persistOperation(fmt.Sprintf("brand=%s model=%s type=%s", params.Brand, params.Model, params.Type)); err != nil {
		return nil, err
	}
	return a.service.AddPart(params)
}

// UpdatePart rewrites a part's editable fields.
func (a *App) UpdatePart(partID int64, params track.PartParams) (*model.Part, error) {
	if err := a.persistOperation(fmt.Sprintf("part=%d", partID)); err != nil {
		return nil, err
	}
	return a.service.UpdatePart(partID, params)
}

// DeletePart soft-deletes a part via a disposal dated today.
func (a *App) DeletePart(partID int64) error {
	if err := a.persistOperation(fmt.Sprintf("part=%d", partID)); err != nil {
		return err
	}
	return a.service.DeletePart(partID)
}

// RestorePart undoes a part's disposal.
func (a *App) RestorePart(partID int64) error {
	if err := a.persistOperation(fmt.Sprintf("part=%d", partID)); err != nil {
		return err
	}
	return a.service.RestoreDisposedPart(partID)
}

// HardDeletePart irreversibly removes a part and everything referencing it.
func (a *App) HardDeletePart(partID int64) error {
	if err := a.persistOperation(fmt.Sprintf("part=%d", partID)); err != nil {
		return err
	}
	return a.service.HardDeletePart(partID)
}

// Connect attaches a part to a motherboard.
func (a *App) Connect(params track.ConnectParams) (*track.ConnectResult, error) {
	if err := a.persistOperation(fmt.Sprintf("part=%d motherboard=%d", params.PartID, params.MotherboardID)); err != nil {
		return nil, err
	}
	return a.service.ConnectPart(params)
}

// BulkConnect attaches several parts to one motherboard.
func (a *App) BulkConnect(partIDs []int64, motherboardID int64, date model.Date, notes string, keepExisting bool) (*track.BulkResult, error) {
	if err := a.persistOperation(fmt.Sprintf("parts=%v motherboard=%d", partIDs, motherboardID)); err != nil {
		return nil, err
	}
	return a.service.BulkConnect(partIDs, motherboardID, date, notes, keepExisting), nil
}

// DisconnectPart closes all of a part's open connections.
func (a *App) DisconnectPart(partID int64, date model.Date, notes string) (int, error) {
	if err := a.persistOperation(fmt.Sprintf("part=%d", partID)); err != nil {
		return 0, err
	}
	return a.service.DisconnectPart(partID, date, notes)
}

// DisconnectConnection closes one connection by id.
func (a *App) DisconnectConnection(connectionID int64, date model.Date, notes string) error {
	if err := a.persistOperation(fmt.Sprintf("connection=%d", connectionID)); err != nil {
		return err
	}
	return a.service.DisconnectConnection(connectionID, date, notes)
}

// BulkDisconnect disconnects several parts under a shared date.
func (a *App) BulkDisconnect(partIDs []int64, date model.Date, notes string) (*track.BulkResult, error) {
	if err := a.persistOperation(fmt.Sprintf("parts=%v", partIDs)); err != nil {
		return nil, err
	}
	return a.service.BulkDisconnect(partIDs, date, notes), nil
}

// Dispose records that a part left active use.
func (a *App) Dispose(partID int64, date model.Date, reason, notes string) (*model.Disposal, error) {
	if err := a.persistOperation(fmt.Sprintf("part=%d reason=%s", partID, reason)); err != nil {
		return nil, err
	}
	return a.service.DisposePart(partID, date, reason, notes)
}

// BulkDispose disposes several parts under a shared date and reason.
func (a *App) BulkDispose(partIDs []int64, date model.Date, reason, notes string) (*track.BulkResult, error) {
	if err := a.persistOperation(fmt.Sprintf("parts=%v reason=%s", partIDs, reason)); err != nil {
		return nil, err
	}
	return a.service.BulkDispose(partIDs, date, reason, notes), nil
}

// SetRigName names the lifecycle starting at the given date.
func (a *App) SetRigName(motherboardID int64, start model.Date, name string) error {
	if err := a.persistOperation(fmt.Sprintf("motherboard=%d name=%s", motherboardID, name)); err != nil {
		return err
	}
	return a.service.SetRigName(motherboardID, start, name)
}

// SetRigIdentity records a legacy interval-form identity.
func (a *App) SetRigIdentity(motherboardID int64, name string, from model.Date) (*model.RigIdentity, error) {
	if err := a.persistOperation(fmt.Sprintf("motherboard=%d name=%s", motherboardID, name)); err != nil {
		return nil, err
	}
	return a.service.SetRigIdentity(motherboardID, name, from)
}

// ClearRigNames removes every rig name record.
func (a *App) ClearRigNames() error {
	if err := a.persistOperation(""); err != nil {
		return err
	}
	return a.service.DeleteAllRigNames()
}

// Snapshot marks the command as persisting so Close uploads a fresh snapshot
// to the archive even though no record changed.
func (a *App) Snapshot() error {
	return a.persistOperation("")
}

// GetHistory returns the most recent operations.
func (a *App) GetHistory(limit int) ([]*model.Operation, error) {
	return a.db.ListOperations(limit)
}

// Close finalizes the operation and closes all resources.
// For persisted operations: finishes the operation record, snapshots the DB,
// and uploads the encrypted snapshot to the archive.
// For non-persisted operations: just closes the database.
func (a *App) Close() error {
	var firstErr error

	_, nop := a.archive.(archive.NopArchive)

	if a.op.Persisted() {
		// Finalize the operation record
		if err := a.db.FinishOperation(a.op.ID, a.op.Status); err != nil {
			firstErr = fmt.Errorf("finishing operation: %w", err)
		}

		var tmpPath string
		if !nop {
			// Snapshot the DB to a temp file
			tmpFile, err := os.CreateTemp("", "rigtrack-snapshot-*.db")
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("creating temp file for snapshot: %w", err)
				}
			}

			if tmpFile != nil {
				tmpPath = tmpFile.Name()
				tmpFile.Close()

				if err := a.db.BackupTo(tmpPath); err != nil {
					if firstErr == nil {
						firstErr = fmt.Errorf("snapshotting database: %w", err)
					}
					tmpPath = "" // skip archive upload
				}
			}
		}

		// Close the database
		if err := a.db.Close(); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("closing database: %w", err)
			}
		}

		// Upload encrypted snapshot to the archive with version = operation ID
		if tmpPath != "" {
			if err := a.uploadSnapshot(tmpPath, a.op.ID); err != nil {
				if firstErr == nil {
					firstErr = err
				}
			}
			os.Remove(tmpPath)
		}
	} else {
		// Non-mutating operation: just close the database, no upload
		if err := a.db.Close(); err != nil {
			firstErr = fmt.Errorf("closing database: %w", err)
		}
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}

// uploadSnapshot encrypts the snapshot file and uploads it to the archive.
func (a *App) uploadSnapshot(path string, version int64) error {
	if !a.encryptor.IsConfigured() {
		return fmt.Errorf("encryption keys not configured: run `rigtrack config keys init` before using an archive")
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening snapshot for upload: %w", err)
	}
	defer f.Close()

	var encrypted bytes.Buffer
	if err := a.encryptor.Encrypt(f, &encrypted); err != nil {
		return fmt.Errorf("encrypting snapshot: %w", err)
	}

	size := int64(encrypted.Len())
	if err := a.archive.PutSnapshot(a.cfg.StoreID, &encrypted, size, version); err != nil {
		return fmt.Errorf("uploading snapshot to archive: %w", err)
	}

	return nil
}

// RestoreSnapshot downloads the archived snapshot, decrypts it with the
// passphrase, and writes it to the configured database path. Refuses to
// overwrite an existing database file. Returns the restored path.
func RestoreSnapshot(cfg *config.Config, passphrase string) (string, error) {
	if cfg.Database.Type != "sqlite" || cfg.Database.DataDir == "" {
		return "", fmt.Errorf("snapshot restore requires a sqlite database with data_dir set")
	}

	destPath := filepath.Join(cfg.Database.DataDir, cfg.StoreID+".db")
	if _, err := os.Stat(destPath); err == nil {
		return "", fmt.Errorf("local database already exists at %s: remove it before restoring", destPath)
	}

	arc, err := archive.NewArchiveFromConfig(cfg.Archive)
	if err != nil {
		return "", fmt.Errorf("creating archive: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return "", fmt.Errorf("creating encryptor: %w", err)
	}

	dctx, err := enc.Unlock(passphrase)
	if err != nil {
		return "", fmt.Errorf("unlocking private key: %w", err)
	}

	var encrypted bytes.Buffer
	if err := arc.GetSnapshot(cfg.StoreID, &encrypted); err != nil {
		return "", fmt.Errorf("downloading snapshot: %w", err)
	}

	if err := os.MkdirAll(cfg.Database.DataDir, 0755); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(cfg.Database.DataDir, ".restore-*.db")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if err := dctx.Decrypt(&encrypted, tmpFile); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("decrypting snapshot: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("moving restored database into place: %w", err)
	}

	return destPath, nil
}
