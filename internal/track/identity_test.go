package track_test

import (
	"testing"

	"rigtrack/internal/model"
	"rigtrack/internal/track"
)

func TestSetRigName(t *testing.T) {
	t.Run("validations", func(t *testing.T) {
		s := newTestService(t)
		mb := addPart(t, s, "ASUS", "B550-F", model.TypeMotherboard)
		cpu := addPart(t, s, "AMD", "Ryzen 7 5800X", model.TypeCPU)

		if err := s.SetRigName(mb.ID, mustDate(t, 2022, 0, 0), ""); !track.IsValidation(err) {
			t.Errorf("empty name: error = %v, want validation error", err)
		}
		if err := s.SetRigName(mb.ID, model.Date{}, "workhorse"); !track.IsValidation(err) {
			t.Errorf("absent start: error = %v, want validation error", err)
		}
		if err := s.SetRigName(cpu.ID, mustDate(t, 2022, 0, 0), "workhorse"); !track.IsValidation(err) {
			t.Errorf("non-motherboard: error = %v, want validation error", err)
		}
		if err := s.SetRigName(999, mustDate(t, 2022, 0, 0), "workhorse"); !track.IsNotFound(err) {
			t.Errorf("unknown motherboard: error = %v, want not-found error", err)
		}
	})

	t.Run("replaces the name for the same start date", func(t *testing.T) {
		s := newTestService(t)
		mb := addPart(t, s, "ASUS", "B550-F", model.TypeMotherboard)
		start := mustDate(t, 2022, 3, 0)

		if err := s.SetRigName(mb.ID, start, "first name"); err != nil {
			t.Fatalf("SetRigName() error = %v", err)
		}
		if err := s.SetRigName(mb.ID, start, "second name"); err != nil {
			t.Fatalf("SetRigName() error = %v", err)
		}

		name, err := s.GetRigName(mb.ID, start)
		if err != nil {
			t.Fatalf("GetRigName() error = %v", err)
		}
		if name == nil || name.Name != "second name" {
			t.Errorf("GetRigName() = %+v, want second name", name)
		}
	})
}

func TestResolveRigName(t *testing.T) {
	t.Run("start-date-keyed name", func(t *testing.T) {
		s := newTestService(t)
		mb := addPart(t, s, "ASUS", "B550-F", model.TypeMotherboard)
		cpu := addPart(t, s, "AMD", "Ryzen 7 5800X", model.TypeCPU)
		connect(t, s, cpu.ID, mb.ID, mustDate(t, 2023, 4, 2))

		lifecycles, err := s.ComputeLifecycles(mb.ID)
		if err != nil {
			t.Fatalf("ComputeLifecycles() error = %v", err)
		}
		if err := s.SetRigName(mb.ID, lifecycles[0].Start, "daily driver"); err != nil {
			t.Fatalf("SetRigName() error = %v", err)
		}

		name, err := s.ResolveRigName(mb.ID, lifecycles[0])
		if err != nil {
			t.Fatalf("ResolveRigName() error = %v", err)
		}
		if name != "daily driver" {
			t.Errorf("name = %q, want %q", name, "daily driver")
		}
	})

	t.Run("falls back to an interval identity", func(t *testing.T) {
		s := newTestService(t)
		mb := addPart(t, s, "ASUS", "B550-F", model.TypeMotherboard)
		cpu := addPart(t, s, "AMD", "Ryzen 7 5800X", model.TypeCPU)
		connect(t, s, cpu.ID, mb.ID, mustDate(t, 2023, 4, 0))

		// Open-ended identity starting before the lifecycle.
		if _, err := s.SetRigIdentity(mb.ID, "legacy name", mustDate(t, 2022, 0, 0)); err != nil {
			t.Fatalf("SetRigIdentity() error = %v", err)
		}

		lifecycles, err := s.ComputeLifecycles(mb.ID)
		if err != nil {
			t.Fatalf("ComputeLifecycles() error = %v", err)
		}
		name, err := s.ResolveRigName(mb.ID, lifecycles[0])
		if err != nil {
			t.Fatalf("ResolveRigName() error = %v", err)
		}
		if name != "legacy name" {
			t.Errorf("name = %q, want %q", name, "legacy name")
		}
	})

	t.Run("keyed name wins over interval identity", func(t *testing.T) {
		s := newTestService(t)
		mb := addPart(t, s, "ASUS", "B550-F", model.TypeMotherboard)
		cpu := addPart(t, s, "AMD", "Ryzen 7 5800X", model.TypeCPU)
		connect(t, s, cpu.ID, mb.ID, mustDate(t, 2023, 4, 0))

		if _, err := s.SetRigIdentity(mb.ID, "legacy name", mustDate(t, 2022, 0, 0)); err != nil {
			t.Fatalf("SetRigIdentity() error = %v", err)
		}
		lifecycles, err := s.ComputeLifecycles(mb.ID)
		if err != nil {
			t.Fatalf("ComputeLifecycles() error = %v", err)
		}
		if err := s.SetRigName(mb.ID, lifecycles[0].Start, "keyed name"); err != nil {
			t.Fatalf("SetRigName() error = %v", err)
		}

		name, err := s.ResolveRigName(mb.ID, lifecycles[0])
		if err != nil {
			t.Fatalf("ResolveRigName() error = %v", err)
		}
		if name != "keyed name" {
			t.Errorf("name = %q, want %q", name, "keyed name")
		}
	})

	t.Run("identity ending before the lifecycle does not apply", func(t *testing.T) {
		s := newTestService(t)
		mb := addPart(t, s, "ASUS", "B550-F", model.TypeMotherboard)
		cpu := addPart(t, s, "AMD", "Ryzen 7 5800X", model.TypeCPU)
		connect(t, s, cpu.ID, mb.ID, mustDate(t, 2023, 4, 0))

		// Handing over closes the first identity at the second's start date,
		// which still precedes the lifecycle.
		if _, err := s.SetRigIdentity(mb.ID, "old era", mustDate(t, 2019, 0, 0)); err != nil {
			t.Fatalf("SetRigIdentity() error = %v", err)
		}
		if _, err := s.SetRigIdentity(mb.ID, "new era", mustDate(t, 2021, 0, 0)); err != nil {
			t.Fatalf("SetRigIdentity() error = %v", err)
		}

		lifecycles, err := s.ComputeLifecycles(mb.ID)
		if err != nil {
			t.Fatalf("ComputeLifecycles() error = %v", err)
		}
		name, err := s.ResolveRigName(mb.ID, lifecycles[0])
		if err != nil {
			t.Fatalf("ResolveRigName() error = %v", err)
		}
		if name != "new era" {
			t.Errorf("name = %q, want %q", name, "new era")
		}
	})

	t.Run("no overlay yields the empty name", func(t *testing.T) {
		s := newTestService(t)
		mb := addPart(t, s, "ASUS", "B550-F", model.TypeMotherboard)
		cpu := addPart(t, s, "AMD", "Ryzen 7 5800X", model.TypeCPU)
		connect(t, s, cpu.ID, mb.ID, mustDate(t, 2023, 4, 0))

		lifecycles, err := s.ComputeLifecycles(mb.ID)
		if err != nil {
			t.Fatalf("ComputeLifecycles() error = %v", err)
		}
		name, err := s.ResolveRigName(mb.ID, lifecycles[0])
		if err != nil {
			t.Fatalf("ResolveRigName() error = %v", err)
		}
		if name != "" {
			t.Errorf("name = %q, want empty", name)
		}
	})
}

func TestSetRigIdentity(t *testing.T) {
	t.Run("validations", func(t *testing.T) {
		s := newTestService(t)
		mb := addPart(t, s, "ASUS", "B550-F", model.TypeMotherboard)

		if _, err := s.SetRigIdentity(mb.ID, "", mustDate(t, 2022, 0, 0)); !track.IsValidation(err) {
			t.Errorf("empty name: error = %v, want validation error", err)
		}
		if _, err := s.SetRigIdentity(mb.ID, "name", model.Date{}); !track.IsValidation(err) {
			t.Errorf("absent start: error = %v, want validation error", err)
		}
	})

	t.Run("returns the persisted current identity", func(t *testing.T) {
		s := newTestService(t)
		mb := addPart(t, s, "ASUS", "B550-F", model.TypeMotherboard)

		identity, err := s.SetRigIdentity(mb.ID, "workhorse", mustDate(t, 2022, 6, 0))
		if err != nil {
			t.Fatalf("SetRigIdentity() error = %v", err)
		}
		if identity.ID == 0 {
			t.Error("identity not persisted")
		}
		if !identity.Current() {
			t.Error("new identity should be current")
		}
	})
}

func TestDeleteAllRigNames(t *testing.T) {
	s := newTestService(t)
	mb := addPart(t, s, "ASUS", "B550-F", model.TypeMotherboard)
	start := mustDate(t, 2022, 0, 0)
	if err := s.SetRigName(mb.ID, start, "workhorse"); err != nil {
		t.Fatalf("SetRigName() error = %v", err)
	}

	if err := s.DeleteAllRigNames(); err != nil {
		t.Fatalf("DeleteAllRigNames() error = %v", err)
	}

	name, err := s.GetRigName(mb.ID, start)
	if err != nil {
		t.Fatalf("GetRigName() error = %v", err)
	}
	if name != nil {
		t.Errorf("GetRigName() = %+v, want nil", name)
	}
}
