package track_test

import (
	"testing"

	"rigtrack/internal/model"
	"rigtrack/internal/track"
)

func TestConnectPart(t *testing.T) {
	t.Run("creates an open connection", func(t *testing.T) {
		s := newTestService(t)
		mb := addPart(t, s, "ASUS", "B550-F", model.TypeMotherboard)
		cpu := addPart(t, s, "AMD", "Ryzen 7 5800X", model.TypeCPU)

		result := connect(t, s, cpu.ID, mb.ID, mustDate(t, 2023, 5, 12))

		if result.Connection == nil || !result.Connection.Open() {
			t.Fatal("expected an open connection")
		}
		if got := result.Connection.ConnectedAt.String(); got != "2023-05-12" {
			t.Errorf("ConnectedAt = %q, want %q", got, "2023-05-12")
		}
		if len(result.Displaced) != 0 || len(result.Kept) != 0 {
			t.Errorf("unexpected conflicts: displaced=%d kept=%d", len(result.Displaced), len(result.Kept))
		}
	})

	t.Run("falls back to the acquisition date", func(t *testing.T) {
		s := newTestService(t)
		mb := addPart(t, s, "ASUS", "B550-F", model.TypeMotherboard)
		cpu, err := s.AddPart(track.PartParams{
			Brand:      "AMD",
			Model:      "Ryzen 7 5800X",
			Type:       model.TypeCPU,
			AcquiredAt: mustDate(t, 2021, 11, 0),
		})
		if err != nil {
			t.Fatalf("AddPart() error = %v", err)
		}

		result, err := s.ConnectPart(track.ConnectParams{PartID: cpu.ID, MotherboardID: mb.ID})
		if err != nil {
			t.Fatalf("ConnectPart() error = %v", err)
		}
		if got := result.Connection.ConnectedAt; got.String() != "2021-11-01" || got.Precision != model.PrecisionMonth {
			t.Errorf("ConnectedAt = %q (%v), want 2021-11 at month precision", got.String(), got.Precision)
		}
	})

	t.Run("no date and no acquisition date", func(t *testing.T) {
		s := newTestService(t)
		mb := addPart(t, s, "ASUS", "B550-F", model.TypeMotherboard)
		cpu := addPart(t, s, "AMD", "Ryzen 7 5800X", model.TypeCPU)

		_, err := s.ConnectPart(track.ConnectParams{PartID: cpu.ID, MotherboardID: mb.ID})
		if !track.IsValidation(err) {
			t.Errorf("ConnectPart() error = %v, want validation error", err)
		}
	})

	t.Run("unknown part", func(t *testing.T) {
		s := newTestService(t)
		mb := addPart(t, s, "ASUS", "B550-F", model.TypeMotherboard)

		_, err := s.ConnectPart(track.ConnectParams{PartID: 999, MotherboardID: mb.ID, Date: mustDate(t, 2023, 0, 0)})
		if !track.IsNotFound(err) {
			t.Errorf("ConnectPart() error = %v, want not-found error", err)
		}
	})

	t.Run("motherboards cannot be connected", func(t *testing.T) {
		s := newTestService(t)
		mb1 := addPart(t, s, "ASUS", "B550-F", model.TypeMotherboard)
		mb2 := addPart(t, s, "MSI", "B450 Tomahawk", model.TypeMotherboard)

		_, err := s.ConnectPart(track.ConnectParams{PartID: mb2.ID, MotherboardID: mb1.ID, Date: mustDate(t, 2023, 0, 0)})
		if !track.IsValidation(err) {
			t.Errorf("ConnectPart() error = %v, want validation error", err)
		}
	})

	t.Run("target must be a motherboard", func(t *testing.T) {
		s := newTestService(t)
		cpu := addPart(t, s, "AMD", "Ryzen 7 5800X", model.TypeCPU)
		gpu := addPart(t, s, "Nvidia", "RTX 3080", model.TypeGPU)

		_, err := s.ConnectPart(track.ConnectParams{PartID: gpu.ID, MotherboardID: cpu.ID, Date: mustDate(t, 2023, 0, 0)})
		if !track.IsValidation(err) {
			t.Errorf("ConnectPart() error = %v, want validation error", err)
		}
	})

	t.Run("already connected", func(t *testing.T) {
		s := newTestService(t)
		mb1 := addPart(t, s, "ASUS", "B550-F", model.TypeMotherboard)
		mb2 := addPart(t, s, "MSI", "B450 Tomahawk", model.TypeMotherboard)
		cpu := addPart(t, s, "AMD", "Ryzen 7 5800X", model.TypeCPU)
		connect(t, s, cpu.ID, mb1.ID, mustDate(t, 2023, 1, 0))

		_, err := s.ConnectPart(track.ConnectParams{PartID: cpu.ID, MotherboardID: mb2.ID, Date: mustDate(t, 2023, 6, 0)})
		if !track.IsValidation(err) {
			t.Errorf("ConnectPart() error = %v, want validation error", err)
		}
	})
}

func TestConnectPart_Displacement(t *testing.T) {
	t.Run("same-slot occupant is displaced", func(t *testing.T) {
		s := newTestService(t)
		mb := addPart(t, s, "ASUS", "B550-F", model.TypeMotherboard)
		oldCPU := addPart(t, s, "AMD", "Ryzen 5 3600", model.TypeCPU)
		newCPU := addPart(t, s, "AMD", "Ryzen 7 5800X", model.TypeCPU)
		connect(t, s, oldCPU.ID, mb.ID, mustDate(t, 2021, 3, 0))

		result := connect(t, s, newCPU.ID, mb.ID, mustDate(t, 2023, 8, 14))

		if len(result.Displaced) != 1 {
			t.Fatalf("len(Displaced) = %d, want 1", len(result.Displaced))
		}
		if result.Displaced[0].Part.ID != oldCPU.ID {
			t.Errorf("displaced part = %d, want %d", result.Displaced[0].Part.ID, oldCPU.ID)
		}

		// The displaced connection closes at the new connection's date with
		// a tagged note.
		conns, err := s.GetConnectionsForPart(oldCPU.ID)
		if err != nil {
			t.Fatalf("GetConnectionsForPart() error = %v", err)
		}
		if len(conns) != 1 {
			t.Fatalf("len(conns) = %d, want 1", len(conns))
		}
		closed := conns[0]
		if closed.Open() {
			t.Fatal("displaced connection still open")
		}
		if got := closed.DisconnectedAt.String(); got != "2023-08-14" {
			t.Errorf("DisconnectedAt = %q, want %q", got, "2023-08-14")
		}
		if closed.Notes != track.NoteDisplacedByConnect {
			t.Errorf("Notes = %q, want displacement note", closed.Notes)
		}
	})

	t.Run("different types coexist", func(t *testing.T) {
		s := newTestService(t)
		mb := addPart(t, s, "ASUS", "B550-F", model.TypeMotherboard)
		cpu := addPart(t, s, "AMD", "Ryzen 7 5800X", model.TypeCPU)
		gpu := addPart(t, s, "Nvidia", "RTX 3080", model.TypeGPU)
		connect(t, s, cpu.ID, mb.ID, mustDate(t, 2023, 1, 0))

		result := connect(t, s, gpu.ID, mb.ID, mustDate(t, 2023, 2, 0))
		if len(result.Displaced) != 0 {
			t.Errorf("len(Displaced) = %d, want 0", len(result.Displaced))
		}

		open, err := s.GetActiveConnectionsForMotherboard(mb.ID)
		if err != nil {
			t.Fatalf("GetActiveConnectionsForMotherboard() error = %v", err)
		}
		if len(open) != 2 {
			t.Errorf("len(open) = %d, want 2", len(open))
		}
	})

	t.Run("keep existing leaves the occupant connected", func(t *testing.T) {
		s := newTestService(t)
		mb := addPart(t, s, "ASUS", "B550-F", model.TypeMotherboard)
		ram1 := addPart(t, s, "Kingston", "Fury 16GB", model.TypeRAM)
		ram2 := addPart(t, s, "Kingston", "Fury 32GB", model.TypeRAM)
		connect(t, s, ram1.ID, mb.ID, mustDate(t, 2022, 0, 0))

		result, err := s.ConnectPart(track.ConnectParams{
			PartID:        ram2.ID,
			MotherboardID: mb.ID,
			Date:          mustDate(t, 2023, 0, 0),
			KeepExisting:  true,
		})
		if err != nil {
			t.Fatalf("ConnectPart() error = %v", err)
		}
		if len(result.Kept) != 1 || result.Kept[0].Part.ID != ram1.ID {
			t.Fatalf("Kept = %v, want the first ram stick", result.Kept)
		}

		open, err := s.GetActiveConnectionsForMotherboard(mb.ID)
		if err != nil {
			t.Fatalf("GetActiveConnectionsForMotherboard() error = %v", err)
		}
		if len(open) != 2 {
			t.Errorf("len(open) = %d, want 2", len(open))
		}
	})
}

func TestDisconnectPart(t *testing.T) {
	t.Run("closes the open connection", func(t *testing.T) {
		s := newTestService(t)
		mb := addPart(t, s, "ASUS", "B550-F", model.TypeMotherboard)
		cpu := addPart(t, s, "AMD", "Ryzen 7 5800X", model.TypeCPU)
		connect(t, s, cpu.ID, mb.ID, mustDate(t, 2023, 1, 0))

		closed, err := s.DisconnectPart(cpu.ID, mustDate(t, 2024, 2, 0), "upgrading")
		if err != nil {
			t.Fatalf("DisconnectPart() error = %v", err)
		}
		if closed != 1 {
			t.Errorf("closed = %d, want 1", closed)
		}

		open, err := s.GetActiveConnectionsForPart(cpu.ID)
		if err != nil {
			t.Fatalf("GetActiveConnectionsForPart() error = %v", err)
		}
		if len(open) != 0 {
			t.Errorf("len(open) = %d, want 0", len(open))
		}
	})

	t.Run("requires a date", func(t *testing.T) {
		s := newTestService(t)
		cpu := addPart(t, s, "AMD", "Ryzen 7 5800X", model.TypeCPU)

		_, err := s.DisconnectPart(cpu.ID, model.Date{}, "")
		if !track.IsValidation(err) {
			t.Errorf("DisconnectPart() error = %v, want validation error", err)
		}
	})

	t.Run("not connected", func(t *testing.T) {
		s := newTestService(t)
		cpu := addPart(t, s, "AMD", "Ryzen 7 5800X", model.TypeCPU)

		_, err := s.DisconnectPart(cpu.ID, mustDate(t, 2024, 0, 0), "")
		if !track.IsValidation(err) {
			t.Errorf("DisconnectPart() error = %v, want validation error", err)
		}
	})
}

func TestDisconnectConnection(t *testing.T) {
	s := newTestService(t)
	mb := addPart(t, s, "ASUS", "B550-F", model.TypeMotherboard)
	cpu := addPart(t, s, "AMD", "Ryzen 7 5800X", model.TypeCPU)
	result := connect(t, s, cpu.ID, mb.ID, mustDate(t, 2023, 1, 0))

	if err := s.DisconnectConnection(result.Connection.ID, mustDate(t, 2024, 1, 0), ""); err != nil {
		t.Fatalf("DisconnectConnection() error = %v", err)
	}

	// Closing an already-closed connection is a validation error.
	err := s.DisconnectConnection(result.Connection.ID, mustDate(t, 2024, 2, 0), "")
	if !track.IsValidation(err) {
		t.Errorf("DisconnectConnection() error = %v, want validation error", err)
	}

	// So is an unknown connection id.
	if err := s.DisconnectConnection(999, mustDate(t, 2024, 1, 0), ""); !track.IsNotFound(err) {
		t.Errorf("DisconnectConnection(999) error = %v, want not-found error", err)
	}
}
