package track_test

import (
	"testing"

	"rigtrack/internal/model"
	"rigtrack/internal/track"
)

func TestDisposePart(t *testing.T) {
	t.Run("closes the part's own connection", func(t *testing.T) {
		s := newTestService(t)
		mb := addPart(t, s, "ASUS", "B550-F", model.TypeMotherboard)
		gpu := addPart(t, s, "Nvidia", "RTX 3080", model.TypeGPU)
		connect(t, s, gpu.ID, mb.ID, mustDate(t, 2022, 5, 0))

		disposal, err := s.DisposePart(gpu.ID, mustDate(t, 2024, 3, 10), "sold", "to a friend")
		if err != nil {
			t.Fatalf("DisposePart() error = %v", err)
		}
		if disposal.ID == 0 {
			t.Error("disposal not persisted")
		}

		conns, err := s.GetConnectionsForPart(gpu.ID)
		if err != nil {
			t.Fatalf("GetConnectionsForPart() error = %v", err)
		}
		if len(conns) != 1 || conns[0].Open() {
			t.Fatal("expected the connection to be closed")
		}
		if got := conns[0].DisconnectedAt.String(); got != "2024-03-10" {
			t.Errorf("DisconnectedAt = %q, want %q", got, "2024-03-10")
		}
		if conns[0].Notes != track.NotePartDisposed {
			t.Errorf("Notes = %q, want disposal note", conns[0].Notes)
		}

		view, err := s.PartStatus(gpu.ID)
		if err != nil {
			t.Fatalf("PartStatus() error = %v", err)
		}
		if view.Status != model.StatusDeleted {
			t.Errorf("Status = %v, want deleted", view.Status)
		}
	})

	t.Run("motherboard disposal cascades to hosted parts", func(t *testing.T) {
		s := newTestService(t)
		mb := addPart(t, s, "ASUS", "B550-F", model.TypeMotherboard)
		cpu := addPart(t, s, "AMD", "Ryzen 7 5800X", model.TypeCPU)
		gpu := addPart(t, s, "Nvidia", "RTX 3080", model.TypeGPU)
		connect(t, s, cpu.ID, mb.ID, mustDate(t, 2022, 1, 0))
		connect(t, s, gpu.ID, mb.ID, mustDate(t, 2022, 2, 0))

		if _, err := s.DisposePart(mb.ID, mustDate(t, 2024, 4, 0), "recycled", ""); err != nil {
			t.Fatalf("DisposePart() error = %v", err)
		}

		for _, partID := range []int64{cpu.ID, gpu.ID} {
			conns, err := s.GetConnectionsForPart(partID)
			if err != nil {
				t.Fatalf("GetConnectionsForPart(%d) error = %v", partID, err)
			}
			if len(conns) != 1 || conns[0].Open() {
				t.Fatalf("part %d connection not closed by cascade", partID)
			}
			if conns[0].Notes != track.NoteMotherboardDisposed {
				t.Errorf("part %d Notes = %q, want motherboard disposal note", partID, conns[0].Notes)
			}
		}

		// Hosted parts themselves stay owned: they land in the bin.
		view, err := s.PartStatus(cpu.ID)
		if err != nil {
			t.Fatalf("PartStatus() error = %v", err)
		}
		if view.Status != model.StatusBin {
			t.Errorf("cpu status = %v, want bin", view.Status)
		}
	})

	t.Run("already disposed", func(t *testing.T) {
		s := newTestService(t)
		psu := addPart(t, s, "Corsair", "RM750x", model.TypePSU)

		if _, err := s.DisposePart(psu.ID, mustDate(t, 2024, 0, 0), "dead", ""); err != nil {
			t.Fatalf("DisposePart() error = %v", err)
		}
		_, err := s.DisposePart(psu.ID, mustDate(t, 2024, 0, 0), "dead", "")
		if !track.IsValidation(err) {
			t.Errorf("second DisposePart() error = %v, want validation error", err)
		}
	})

	t.Run("requires a date", func(t *testing.T) {
		s := newTestService(t)
		psu := addPart(t, s, "Corsair", "RM750x", model.TypePSU)

		_, err := s.DisposePart(psu.ID, model.Date{}, "dead", "")
		if !track.IsValidation(err) {
			t.Errorf("DisposePart() error = %v, want validation error", err)
		}
	})
}

func TestRestoreDisposedPart(t *testing.T) {
	t.Run("clears the deleted flag and the disposal record", func(t *testing.T) {
		s := newTestService(t)
		gpu := addPart(t, s, "Nvidia", "RTX 3080", model.TypeGPU)
		if _, err := s.DisposePart(gpu.ID, mustDate(t, 2024, 1, 0), "sold", ""); err != nil {
			t.Fatalf("DisposePart() error = %v", err)
		}

		if err := s.RestoreDisposedPart(gpu.ID); err != nil {
			t.Fatalf("RestoreDisposedPart() error = %v", err)
		}

		view, err := s.PartStatus(gpu.ID)
		if err != nil {
			t.Fatalf("PartStatus() error = %v", err)
		}
		if view.Status != model.StatusBin {
			t.Errorf("Status = %v, want bin", view.Status)
		}

		disposal, err := s.GetDisposalForPart(gpu.ID)
		if err != nil {
			t.Fatalf("GetDisposalForPart() error = %v", err)
		}
		if disposal != nil {
			t.Errorf("disposal record survived restore: %+v", disposal)
		}
	})

	t.Run("auto-closed connections stay closed", func(t *testing.T) {
		s := newTestService(t)
		mb := addPart(t, s, "ASUS", "B550-F", model.TypeMotherboard)
		gpu := addPart(t, s, "Nvidia", "RTX 3080", model.TypeGPU)
		connect(t, s, gpu.ID, mb.ID, mustDate(t, 2022, 0, 0))
		if _, err := s.DisposePart(gpu.ID, mustDate(t, 2024, 0, 0), "sold", ""); err != nil {
			t.Fatalf("DisposePart() error = %v", err)
		}

		if err := s.RestoreDisposedPart(gpu.ID); err != nil {
			t.Fatalf("RestoreDisposedPart() error = %v", err)
		}

		open, err := s.GetActiveConnectionsForPart(gpu.ID)
		if err != nil {
			t.Fatalf("GetActiveConnectionsForPart() error = %v", err)
		}
		if len(open) != 0 {
			t.Errorf("restore reopened %d connection(s)", len(open))
		}
	})

	t.Run("restoring an undisposed part is a no-op", func(t *testing.T) {
		s := newTestService(t)
		gpu := addPart(t, s, "Nvidia", "RTX 3080", model.TypeGPU)

		if err := s.RestoreDisposedPart(gpu.ID); err != nil {
			t.Errorf("RestoreDisposedPart() error = %v, want nil", err)
		}
	})
}

func TestHardDeletePart(t *testing.T) {
	s := newTestService(t)
	mb := addPart(t, s, "ASUS", "B550-F", model.TypeMotherboard)
	cpu := addPart(t, s, "AMD", "Ryzen 7 5800X", model.TypeCPU)
	connect(t, s, cpu.ID, mb.ID, mustDate(t, 2022, 0, 0))
	if err := s.SetRigName(mb.ID, mustDate(t, 2022, 0, 0), "workhorse"); err != nil {
		t.Fatalf("SetRigName() error = %v", err)
	}

	if err := s.HardDeletePart(mb.ID); err != nil {
		t.Fatalf("HardDeletePart() error = %v", err)
	}

	if _, err := s.GetPartByID(mb.ID); !track.IsNotFound(err) {
		t.Errorf("GetPartByID() error = %v, want not-found error", err)
	}

	// Connections at the other endpoint are gone too.
	conns, err := s.GetConnectionsForPart(cpu.ID)
	if err != nil {
		t.Fatalf("GetConnectionsForPart() error = %v", err)
	}
	if len(conns) != 0 {
		t.Errorf("len(conns) = %d, want 0", len(conns))
	}

	if err := s.HardDeletePart(mb.ID); !track.IsNotFound(err) {
		t.Errorf("second HardDeletePart() error = %v, want not-found error", err)
	}
}
