package track_test

import (
	"testing"

	"rigtrack/internal/model"
	"rigtrack/internal/testutil"
	"rigtrack/internal/track"
)

// newTestService wires a Service against a fresh in-memory database and a
// clock fixed at 2024-06-15.
func newTestService(t *testing.T) *track.Service {
	t.Helper()
	db := testutil.NewTestDatabase(t)
	return track.NewService(db, track.NewNopLogger(), testutil.FixedClock())
}

func mustDate(t *testing.T, year, month, day int) model.Date {
	t.Helper()
	d, err := model.NewDate(year, month, day)
	if err != nil {
		t.Fatalf("NewDate(%d, %d, %d) error = %v", year, month, day, err)
	}
	return d
}

func addPart(t *testing.T, s *track.Service, brand, mdl string, ptype model.PartType) *model.Part {
	t.Helper()
	part, err := s.AddPart(track.PartParams{Brand: brand, Model: mdl, Type: ptype})
	if err != nil {
		t.Fatalf("AddPart(%s %s) error = %v", brand, mdl, err)
	}
	return part
}

func connect(t *testing.T, s *track.Service, partID, mbID int64, date model.Date) *track.ConnectResult {
	t.Helper()
	result, err := s.ConnectPart(track.ConnectParams{PartID: partID, MotherboardID: mbID, Date: date})
	if err != nil {
		t.Fatalf("ConnectPart(%d -> %d) error = %v", partID, mbID, err)
	}
	return result
}
