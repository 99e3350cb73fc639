package archive

import (
	"testing"

	"rigtrack/internal/config"
)

func TestNewArchiveFromConfig(t *testing.T) {
	t.Run("none archive", func(t *testing.T) {
		got, err := NewArchiveFromConfig(config.ArchiveConfig{Type: "none"})
		if err != nil {
			t.Fatalf("NewArchiveFromConfig() error = %v", err)
		}
		if _, ok := got.(NopArchive); !ok {
			t.Errorf("NewArchiveFromConfig() = %T, want NopArchive", got)
		}
	})

	t.Run("empty type defaults to none", func(t *testing.T) {
		got, err := NewArchiveFromConfig(config.ArchiveConfig{})
		if err != nil {
			t.Fatalf("NewArchiveFromConfig() error = %v", err)
		}
		if _, ok := got.(NopArchive); !ok {
			t.Errorf("NewArchiveFromConfig() = %T, want NopArchive", got)
		}
	})

	t.Run("memory archive", func(t *testing.T) {
		got, err := NewArchiveFromConfig(config.ArchiveConfig{Type: "memory", Name: "m"})
		if err != nil {
			t.Fatalf("NewArchiveFromConfig() error = %v", err)
		}
		if _, ok := got.(*MemoryArchive); !ok {
			t.Errorf("NewArchiveFromConfig() = %T, want *MemoryArchive", got)
		}
	})

	t.Run("filesystem archive", func(t *testing.T) {
		got, err := NewArchiveFromConfig(config.ArchiveConfig{
			Type:   "filesystem",
			Name:   "fs",
			FSRoot: t.TempDir(),
		})
		if err != nil {
			t.Fatalf("NewArchiveFromConfig() error = %v", err)
		}
		if _, ok := got.(*FileSystemArchive); !ok {
			t.Errorf("NewArchiveFromConfig() = %T, want *FileSystemArchive", got)
		}
	})

	t.Run("filesystem archive without root", func(t *testing.T) {
		_, err := NewArchiveFromConfig(config.ArchiveConfig{Type: "filesystem"})
		if err == nil {
			t.Error("NewArchiveFromConfig() expected error for missing fs_root, got nil")
		}
	})

	t.Run("s3 archive without bucket", func(t *testing.T) {
		_, err := NewArchiveFromConfig(config.ArchiveConfig{Type: "s3"})
		if err == nil {
			t.Error("NewArchiveFromConfig() expected error for missing s3_bucket, got nil")
		}
	})

	t.Run("unknown archive type", func(t *testing.T) {
		_, err := NewArchiveFromConfig(config.ArchiveConfig{Type: "ftp"})
		if err == nil {
			t.Error("NewArchiveFromConfig() expected error for unknown type, got nil")
		}
	})
}
