package track

import (
	"fmt"

	"rigtrack/internal/model"
)

// DisposePart records that a part left active use. In one transaction: any
// open connections hosted on the part (when it is a motherboard) and any
// open connection it occupies are closed with the disposal date and a tagged
// note, the disposal record is inserted, and the part is soft-deleted.
func (s *Service) DisposePart(partID int64, date model.Date, reason, notes string) (*model.Disposal, error) {
	if date.IsZero() {
		return nil, validationf("a disposal year is required")
	}

	part, err := s.database.FindPartByID(partID)
	if err != nil {
		return nil, fmt.Errorf("loading part: %w", err)
	}
	if part == nil {
		return nil, &NotFoundError{Kind: "part", ID: partID}
	}
	if part.Deleted {
		return nil, validationf("part %d is already disposed", partID)
	}

	disposal := &model.Disposal{
		PartID:     partID,
		DisposedAt: date,
		Reason:     reason,
		Notes:      notes,
	}
	created, err := s.database.DisposePart(disposal, part.IsMotherboard())
	if err != nil {
		return nil, fmt.Errorf("disposing part: %w", err)
	}

	s.logger.Info("part disposed", "part", partID, "date", date.String(), "reason", reason)
	return created, nil
}

// RestoreDisposedPart deletes the part's disposal records and clears its
// deleted flag. Restoring a part with no disposal records is a no-op, not an
// error. Connections auto-closed by the disposal stay closed: reconnection
// must be re-recorded explicitly.
func (s *Service) RestoreDisposedPart(partID int64) error {
	part, err := s.database.FindPartByID(partID)
	if err != nil {
		return fmt.Errorf("loading part: %w", err)
	}
	if part == nil {
		return &NotFoundError{Kind: "part", ID: partID}
	}

	if err := s.database.RestorePart(partID); err != nil {
		return fmt.Errorf("restoring part: %w", err)
	}

	s.logger.Info("part restored", "part", partID)
	return nil
}

// HardDeletePart irreversibly removes the part and everything referencing
// it: connections at either endpoint, rig names and identities when it is a
// motherboard, and disposal records.
func (s *Service) HardDeletePart(partID int64) error {
	part, err := s.database.FindPartByID(partID)
	if err != nil {
		return fmt.Errorf("loading part: %w", err)
	}
	if part == nil {
		return &NotFoundError{Kind: "part", ID: partID}
	}

	if err := s.database.HardDeletePart(partID); err != nil {
		return fmt.Errorf("hard-deleting part: %w", err)
	}

	s.logger.Warn("part hard-deleted", "part", partID, "type", part.Type)
	return nil
}

// GetDisposalForPart returns the part's most recent disposal record, or nil.
func (s *Service) GetDisposalForPart(partID int64) (*model.Disposal, error) {
	disposals, err := s.database.FindDisposalsForPart(partID)
	if err != nil {
		return nil, fmt.Errorf("loading disposals: %w", err)
	}
	if len(disposals) == 0 {
		return nil, nil
	}
	return disposals[len(disposals)-1], nil
}
