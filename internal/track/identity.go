package track

import (
	"fmt"

	"rigtrack/internal/model"
)

// IdentityResolver resolves which user-assigned name applies to a computed
// lifecycle. Two concrete strategies exist for the two overlay schemas that
// coexist in the store: the start-date-keyed rig name form (preferred for
// new data) and the legacy interval form.
type IdentityResolver interface {
	// Resolve returns the name applying to the lifecycle, or "" when the
	// overlay has no record for it.
	Resolve(motherboardID int64, lifecycle *Lifecycle) (string, error)
}

// startDateResolver matches a name by the exact start date of the lifecycle
// it describes. Lifecycle boundaries are recomputed deterministically from
// the same connection log every time, so start-date matching is stable
// across recomputation.
type startDateResolver struct {
	database Database
}

func (r *startDateResolver) Resolve(motherboardID int64, lifecycle *Lifecycle) (string, error) {
	name, err := r.database.FindRigName(motherboardID, lifecycle.Start)
	if err != nil {
		return "", fmt.Errorf("finding rig name: %w", err)
	}
	if name == nil {
		return "", nil
	}
	return name.Name, nil
}

// intervalResolver matches a legacy identity record by overlap: an identity
// applies to a lifecycle if its active period intersects the lifecycle's
// interval (an open end extends to now).
type intervalResolver struct {
	database Database
	clock    Clock
}

func (r *intervalResolver) Resolve(motherboardID int64, lifecycle *Lifecycle) (string, error) {
	identities, err := r.database.FindRigIdentitiesForMotherboard(motherboardID)
	if err != nil {
		return "", fmt.Errorf("finding rig identities: %w", err)
	}

	end := lifecycle.End
	if lifecycle.Active || end.IsZero() {
		end = today(r.clock)
	}

	for _, id := range identities {
		// identity.active_from <= lifecycle end
		if end.Before(id.ActiveFrom) {
			continue
		}
		// identity.active_until absent, or >= lifecycle start
		if !id.ActiveUntil.IsZero() && id.ActiveUntil.Before(lifecycle.Start) {
			continue
		}
		return id.Name, nil
	}
	return "", nil
}

// ResolveRigName returns the name applying to the lifecycle, preferring the
// start-date-keyed overlay and falling back to the legacy interval records
// when no keyed name exists.
func (s *Service) ResolveRigName(motherboardID int64, lifecycle *Lifecycle) (string, error) {
	resolvers := []IdentityResolver{
		&startDateResolver{database: s.database},
		&intervalResolver{database: s.database, clock: s.clock},
	}
	for _, r := range resolvers {
		name, err := r.Resolve(motherboardID, lifecycle)
		if err != nil {
			return "", err
		}
		if name != "" {
			return name, nil
		}
	}
	return "", nil
}

// GetRigName returns the name record keyed to the exact lifecycle start
// date, or nil when none exists.
func (s *Service) GetRigName(motherboardID int64, start model.Date) (*model.RigName, error) {
	return s.database.FindRigName(motherboardID, start)
}

// SetRigName names the lifecycle starting at the given date, replacing any
// existing name for that (motherboard, start date) pair.
func (s *Service) SetRigName(motherboardID int64, start model.Date, name string) error {
	if name == "" {
		return validationf("rig name must not be empty")
	}
	if start.IsZero() {
		return validationf("lifecycle start date is required")
	}
	mb, err := s.database.FindPartByID(motherboardID)
	if err != nil {
		return fmt.Errorf("loading motherboard: %w", err)
	}
	if mb == nil {
		return &NotFoundError{Kind: "motherboard", ID: motherboardID}
	}
	if !mb.IsMotherboard() {
		return validationf("part %d is a %s, not a motherboard", motherboardID, mb.Type)
	}

	if err := s.database.UpsertRigName(motherboardID, start, name); err != nil {
		return fmt.Errorf("saving rig name: %w", err)
	}
	s.logger.Info("rig name set", "motherboard", motherboardID, "start", start.String(), "name", name)
	return nil
}

// SetRigIdentity records a legacy interval identity: the motherboard's
// current identity (if any) is closed at the new identity's start date and
// the new one becomes current.
func (s *Service) SetRigIdentity(motherboardID int64, name string, from model.Date) (*model.RigIdentity, error) {
	if name == "" {
		return nil, validationf("rig name must not be empty")
	}
	if from.IsZero() {
		return nil, validationf("identity start date is required")
	}
	mb, err := s.database.FindPartByID(motherboardID)
	if err != nil {
		return nil, fmt.Errorf("loading motherboard: %w", err)
	}
	if mb == nil {
		return nil, &NotFoundError{Kind: "motherboard", ID: motherboardID}
	}
	if !mb.IsMotherboard() {
		return nil, validationf("part %d is a %s, not a motherboard", motherboardID, mb.Type)
	}

	identity, err := s.database.SetRigIdentity(motherboardID, name, from)
	if err != nil {
		return nil, fmt.Errorf("saving rig identity: %w", err)
	}
	s.logger.Info("rig identity set", "motherboard", motherboardID, "name", name)
	return identity, nil
}

// DeleteAllRigNames removes every start-date-keyed name record.
func (s *Service) DeleteAllRigNames() error {
	if err := s.database.DeleteAllRigNames(); err != nil {
		return fmt.Errorf("deleting rig names: %w", err)
	}
	s.logger.Info("all rig names deleted")
	return nil
}
