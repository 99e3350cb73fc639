package model

import (
	"fmt"
	"time"
)

// PartType classifies a trackable hardware component. Motherboard is the
// distinguished type: it acts as the host other parts connect to.
type PartType string

const (
	TypeMotherboard PartType = "motherboard"
	TypeCPU         PartType = "cpu"
	TypeGPU         PartType = "gpu"
	TypeRAM         PartType = "ram"
	TypeStorage     PartType = "storage"
	TypePSU         PartType = "psu"
	TypeCase        PartType = "case"
	TypeCooling     PartType = "cooling"
	TypeMonitor     PartType = "monitor"
	TypePeripheral  PartType = "peripheral"
	TypeOther       PartType = "other"
)

// PartTypes lists all valid part types in display order.
var PartTypes = []PartType{
	TypeMotherboard, TypeCPU, TypeGPU, TypeRAM, TypeStorage,
	TypePSU, TypeCase, TypeCooling, TypeMonitor, TypePeripheral, TypeOther,
}

// ParsePartType validates a part type string from storage or user input.
func ParsePartType(s string) (PartType, error) {
	for _, t := range PartTypes {
		if PartType(s) == t {
			return t, nil
		}
	}
	return "", fmt.Errorf("invalid part type: %q", s)
}

// Status is the derived lifecycle state of a part. It is never stored;
// the status projector recomputes it from connection and disposal records.
type Status string

const (
	StatusActive  Status = "active"  // has an open connection
	StatusBin     Status = "bin"     // owned but not connected anywhere
	StatusDeleted Status = "deleted" // disposed of (soft-deleted)
)

// ParseStatus validates a status string from user input (filters).
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusActive, StatusBin, StatusDeleted:
		return Status(s), nil
	}
	return "", fmt.Errorf("invalid status: %q", s)
}

// Part is a single trackable hardware component.
type Part struct {
	ID         int64
	Brand      string
	Model      string
	Type       PartType
	AcquiredAt Date // absent when the acquisition date is unknown
	Notes      string
	Deleted    bool // set by disposal, cleared by restore
}

// IsMotherboard reports whether the part can host connections.
func (p *Part) IsMotherboard() bool {
	return p.Type == TypeMotherboard
}

// Connection records the interval during which a part was attached to a
// motherboard. DisconnectedAt is absent while the connection is open.
// Invariant: a part has at most one open connection at any time.
type Connection struct {
	ID             int64
	PartID         int64
	MotherboardID  int64
	ConnectedAt    Date
	DisconnectedAt Date
	Notes          string
}

// Open reports whether the connection is still active.
func (c *Connection) Open() bool {
	return c.DisconnectedAt.IsZero()
}

// Disposal records the removal of a part from active use. Creating one
// soft-deletes the part and closes its open connections; restoring the
// part deletes its disposal rows again.
type Disposal struct {
	ID         int64
	PartID     int64
	DisposedAt Date
	Reason     string
	Notes      string
}

// RigName labels one computed lifecycle of a motherboard. It is keyed by
// the exact start date of the lifecycle it describes: lifecycle boundaries
// are recomputed deterministically from the connection log, so the start
// date is stable across recomputation.
type RigName struct {
	ID            int64
	MotherboardID int64
	StartDate     Date
	Name          string
}

// RigIdentity is the legacy interval form of the rig name overlay: an
// explicit [ActiveFrom, ActiveUntil) period during which the label applied.
// ActiveUntil is absent while the identity is current. At most one identity
// per motherboard may be current.
type RigIdentity struct {
	ID            int64
	MotherboardID int64
	Name          string
	ActiveFrom    Date
	ActiveUntil   Date
}

// Current reports whether the identity has no end date.
func (r *RigIdentity) Current() bool {
	return r.ActiveUntil.IsZero()
}

// Operation is an audit record of a mutating CLI command.
type Operation struct {
	ID         int64
	Name       string
	Parameters string
	StartedAt  time.Time
	FinishedAt *time.Time
	Status     string // "success" or "error"
}
