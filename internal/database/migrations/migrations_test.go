package migrations

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestMigrateUp_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Migrate up
	err := MigrateUp(db)
	if err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	// Verify tables were created
	tables := []string{"parts", "connections", "disposals", "rig_names", "rig_identities", "operations", "schema_migrations"}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s was not created: %v", table, err)
		}
	}
}

func TestCheckDBMigrationStatus_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Fresh database should need migration
	err := CheckDBMigrationStatus(db)
	if err == nil {
		t.Error("CheckDBMigrationStatus() expected error for fresh database, got nil")
	}

	// Error should mention needing migration
	if err.Error() != "database has no schema version (needs migration)" {
		t.Errorf("CheckDBMigrationStatus() error = %q, want error about needing migration", err.Error())
	}
}

func TestCheckDBMigrationStatus_AfterMigration(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Migrate up
	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	// Status should be OK now
	err := CheckDBMigrationStatus(db)
	if err != nil {
		t.Errorf("CheckDBMigrationStatus() after migration returned error: %v", err)
	}
}

func TestMigrateUp_Idempotent(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Run migration twice
	if err := MigrateUp(db); err != nil {
		t.Fatalf("First MigrateUp() failed: %v", err)
	}

	if err := MigrateUp(db); err != nil {
		t.Errorf("Second MigrateUp() failed: %v (should be idempotent)", err)
	}

	// Status should still be OK
	if err := CheckDBMigrationStatus(db); err != nil {
		t.Errorf("CheckDBMigrationStatus() after double migration returned error: %v", err)
	}
}

func TestForeignKeyConstraints(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Migrate
	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	// Try to insert a connection referencing non-existent parts (should fail due to FK constraint)
	_, err := db.Exec(`
		INSERT INTO connections (part_id, motherboard_id, connected_at, connected_precision)
		VALUES (999, 998, '2024-01-01', 'day')
	`)

	if err == nil {
		t.Error("Expected foreign key constraint violation, but insert succeeded")
	}
}

func TestSchema_Parts(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	// Test inserting a part record
	res, err := db.Exec(`
		INSERT INTO parts (brand, model, type, acquired_at, acquired_precision)
		VALUES ('ASUS', 'ROG Strix B550-F', 'motherboard', '2023-06-01', 'day')
	`)
	if err != nil {
		t.Fatalf("Failed to insert part: %v", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to get insert id: %v", err)
	}

	// Verify it was inserted with defaults applied
	var brand, notes string
	var deleted int
	err = db.QueryRow("SELECT brand, notes, is_deleted FROM parts WHERE id = ?", id).Scan(&brand, &notes, &deleted)
	if err != nil {
		t.Errorf("Failed to retrieve part: %v", err)
	}

	if brand != "ASUS" {
		t.Errorf("Retrieved part brand = %q, want %q", brand, "ASUS")
	}
	if notes != "" {
		t.Errorf("Retrieved part notes = %q, want empty default", notes)
	}
	if deleted != 0 {
		t.Errorf("Retrieved part is_deleted = %d, want 0", deleted)
	}
}

func TestSchema_RigNameStartDateUnique(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	_, err := db.Exec("INSERT INTO parts (brand, model, type) VALUES ('ASUS', 'B550', 'motherboard')")
	if err != nil {
		t.Fatalf("Failed to insert motherboard: %v", err)
	}

	// Insert first rig name
	_, err = db.Exec("INSERT INTO rig_names (motherboard_id, start_date, start_precision, name) VALUES (1, '2024-01-01', 'day', 'Apollo')")
	if err != nil {
		t.Fatalf("Failed to insert first rig name: %v", err)
	}

	// Try to insert duplicate (motherboard_id, start_date) (should fail due to UNIQUE constraint)
	_, err = db.Exec("INSERT INTO rig_names (motherboard_id, start_date, start_precision, name) VALUES (1, '2024-01-01', 'day', 'Artemis')")
	if err == nil {
		t.Error("Expected unique constraint violation for duplicate start date, but insert succeeded")
	}
}

// openTestDB opens an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	return db
}
