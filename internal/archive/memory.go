package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
)

var errNoSnapshot = errors.New("no snapshot stored")

// MemoryArchive is an in-memory implementation of the Archive interface.
// It stores snapshots in memory, making it useful for testing.
// This implementation is safe for concurrent use.
type MemoryArchive struct {
	name      string
	snapshots map[string][]byte // storeID -> snapshot
	versions  map[string]int64  // storeID -> version
	mu        sync.RWMutex
}

// NewMemoryArchive creates a new in-memory archive with the given name.
func NewMemoryArchive(name string) *MemoryArchive {
	return &MemoryArchive{
		name:      name,
		snapshots: make(map[string][]byte),
		versions:  make(map[string]int64),
	}
}

// PutSnapshot stores a snapshot for a store, replacing any previous one.
func (m *MemoryArchive) PutSnapshot(storeID string, r io.Reader, size int64, version int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.snapshots[storeID] = data
	m.versions[storeID] = version
	return nil
}

// GetSnapshot retrieves the latest snapshot for a store and writes it to w.
func (m *MemoryArchive) GetSnapshot(storeID string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.snapshots[storeID]
	if !ok {
		return fmt.Errorf("%w for store: %s", errNoSnapshot, storeID)
	}

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	return nil
}

// GetSnapshotVersion returns the snapshot version for a store.
// Returns 0 if no snapshot has been stored.
func (m *MemoryArchive) GetSnapshotVersion(storeID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.versions[storeID], nil
}

// ValidateSetup always succeeds for the in-memory archive.
func (m *MemoryArchive) ValidateSetup() error {
	return nil
}

// Compile-time check that MemoryArchive implements the Archive interface
var _ Archive = (*MemoryArchive)(nil)
