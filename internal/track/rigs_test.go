package track_test

import (
	"testing"

	"rigtrack/internal/model"
)

func TestGetActiveRigs(t *testing.T) {
	s := newTestService(t)
	mb := addPart(t, s, "ASUS", "B550-F", model.TypeMotherboard)
	cpu := addPart(t, s, "AMD", "Ryzen 7 5800X", model.TypeCPU)
	gpu := addPart(t, s, "Nvidia", "RTX 3080", model.TypeGPU)
	start := mustDate(t, 2023, 1, 0)
	connect(t, s, cpu.ID, mb.ID, start)
	connect(t, s, gpu.ID, mb.ID, mustDate(t, 2023, 2, 0))
	if err := s.SetRigName(mb.ID, start, "daily driver"); err != nil {
		t.Fatalf("SetRigName() error = %v", err)
	}

	// A motherboard hosting nothing is not a rig.
	addPart(t, s, "MSI", "B450 Tomahawk", model.TypeMotherboard)

	rigs, err := s.GetActiveRigs()
	if err != nil {
		t.Fatalf("GetActiveRigs() error = %v", err)
	}
	if len(rigs) != 1 {
		t.Fatalf("len(rigs) = %d, want 1", len(rigs))
	}
	rig := rigs[0]
	if rig.Motherboard.ID != mb.ID {
		t.Errorf("rig motherboard = %d, want %d", rig.Motherboard.ID, mb.ID)
	}
	if rig.Name != "daily driver" {
		t.Errorf("rig name = %q, want %q", rig.Name, "daily driver")
	}
	if len(rig.Parts) != 2 {
		t.Errorf("len(rig.Parts) = %d, want 2", len(rig.Parts))
	}
}

func TestGetActiveRigs_DisposedMotherboardExcluded(t *testing.T) {
	s := newTestService(t)
	mb := addPart(t, s, "ASUS", "B550-F", model.TypeMotherboard)
	cpu := addPart(t, s, "AMD", "Ryzen 7 5800X", model.TypeCPU)
	connect(t, s, cpu.ID, mb.ID, mustDate(t, 2023, 1, 0))

	if _, err := s.DisposePart(mb.ID, mustDate(t, 2024, 1, 0), "recycled", ""); err != nil {
		t.Fatalf("DisposePart() error = %v", err)
	}

	rigs, err := s.GetActiveRigs()
	if err != nil {
		t.Fatalf("GetActiveRigs() error = %v", err)
	}
	if len(rigs) != 0 {
		t.Errorf("len(rigs) = %d, want 0", len(rigs))
	}
}

func TestGetHistoricalRigs(t *testing.T) {
	s := newTestService(t)
	mb := addPart(t, s, "ASUS", "B550-F", model.TypeMotherboard)
	cpu := addPart(t, s, "AMD", "Ryzen 5 3600", model.TypeCPU)
	ram := addPart(t, s, "Kingston", "Fury 16GB", model.TypeRAM)

	// First, completed lifecycle.
	firstStart := mustDate(t, 2020, 1, 0)
	connect(t, s, cpu.ID, mb.ID, firstStart)
	if _, err := s.DisconnectPart(cpu.ID, mustDate(t, 2021, 6, 0), ""); err != nil {
		t.Fatalf("DisconnectPart() error = %v", err)
	}
	if err := s.SetRigName(mb.ID, firstStart, "first build"); err != nil {
		t.Fatalf("SetRigName() error = %v", err)
	}

	// Second lifecycle, still active: not part of history.
	connect(t, s, ram.ID, mb.ID, mustDate(t, 2022, 5, 0))

	// A motherboard with only an active lifecycle has no history.
	mb2 := addPart(t, s, "MSI", "B450 Tomahawk", model.TypeMotherboard)
	gpu := addPart(t, s, "Nvidia", "RTX 3080", model.TypeGPU)
	connect(t, s, gpu.ID, mb2.ID, mustDate(t, 2023, 1, 0))

	histories, err := s.GetHistoricalRigs()
	if err != nil {
		t.Fatalf("GetHistoricalRigs() error = %v", err)
	}
	if len(histories) != 1 {
		t.Fatalf("len(histories) = %d, want 1", len(histories))
	}
	h := histories[0]
	if h.Motherboard.ID != mb.ID {
		t.Errorf("history motherboard = %d, want %d", h.Motherboard.ID, mb.ID)
	}
	if len(h.Lifecycles) != 1 {
		t.Fatalf("len(h.Lifecycles) = %d, want 1", len(h.Lifecycles))
	}
	if h.Lifecycles[0].Name != "first build" {
		t.Errorf("lifecycle name = %q, want %q", h.Lifecycles[0].Name, "first build")
	}
	if h.Lifecycles[0].Lifecycle.Active {
		t.Error("historical lifecycle marked active")
	}
}

func TestPartStatus(t *testing.T) {
	t.Run("unconnected part sits in the bin", func(t *testing.T) {
		s := newTestService(t)
		cpu := addPart(t, s, "AMD", "Ryzen 7 5800X", model.TypeCPU)

		view, err := s.PartStatus(cpu.ID)
		if err != nil {
			t.Fatalf("PartStatus() error = %v", err)
		}
		if view.Status != model.StatusBin {
			t.Errorf("Status = %v, want bin", view.Status)
		}
		if view.ActiveConnections != 0 {
			t.Errorf("ActiveConnections = %d, want 0", view.ActiveConnections)
		}
	})

	t.Run("connected part carries the current rig name", func(t *testing.T) {
		s := newTestService(t)
		mb := addPart(t, s, "ASUS", "B550-F", model.TypeMotherboard)
		cpu := addPart(t, s, "AMD", "Ryzen 7 5800X", model.TypeCPU)
		start := mustDate(t, 2023, 1, 0)
		connect(t, s, cpu.ID, mb.ID, start)
		if err := s.SetRigName(mb.ID, start, "daily driver"); err != nil {
			t.Fatalf("SetRigName() error = %v", err)
		}

		view, err := s.PartStatus(cpu.ID)
		if err != nil {
			t.Fatalf("PartStatus() error = %v", err)
		}
		if view.Status != model.StatusActive {
			t.Errorf("Status = %v, want active", view.Status)
		}
		if view.RigName != "daily driver" {
			t.Errorf("RigName = %q, want %q", view.RigName, "daily driver")
		}
	})

	t.Run("motherboard counts hosted connections", func(t *testing.T) {
		s := newTestService(t)
		mb := addPart(t, s, "ASUS", "B550-F", model.TypeMotherboard)
		cpu := addPart(t, s, "AMD", "Ryzen 7 5800X", model.TypeCPU)
		gpu := addPart(t, s, "Nvidia", "RTX 3080", model.TypeGPU)
		connect(t, s, cpu.ID, mb.ID, mustDate(t, 2023, 1, 0))
		connect(t, s, gpu.ID, mb.ID, mustDate(t, 2023, 2, 0))

		view, err := s.PartStatus(mb.ID)
		if err != nil {
			t.Fatalf("PartStatus() error = %v", err)
		}
		if view.ActiveConnections != 2 {
			t.Errorf("ActiveConnections = %d, want 2", view.ActiveConnections)
		}
		if view.Status != model.StatusActive {
			t.Errorf("Status = %v, want active", view.Status)
		}
	})
}
