package track

import (
	"fmt"

	"rigtrack/internal/model"
)

// BulkResult tallies a bulk operation. Bulk operations are not atomic across
// items: each item's own multi-step effect commits or rolls back alone, and
// a failure on one item never undoes successes already committed for others.
type BulkResult struct {
	Succeeded int
	Failed    int
	Errors    []error
}

func (r *BulkResult) record(id int64, what string, err error) {
	if err != nil {
		r.Failed++
		r.Errors = append(r.Errors, fmt.Errorf("%s %d: %w", what, id, err))
		return
	}
	r.Succeeded++
}

// BulkConnect connects each part to the motherboard under a shared date and
// notes, continuing past per-item failures.
func (s *Service) BulkConnect(partIDs []int64, motherboardID int64, date model.Date, notes string, keepExisting bool) *BulkResult {
	result := &BulkResult{}
	for _, id := range partIDs {
		_, err := s.ConnectPart(ConnectParams{
			PartID:        id,
			MotherboardID: motherboardID,
			Date:          date,
			Notes:         notes,
			KeepExisting:  keepExisting,
		})
		result.record(id, "part", err)
	}
	s.logger.Info("bulk connect finished", "succeeded", result.Succeeded, "failed", result.Failed)
	return result
}

// BulkDisconnect disconnects each part under a shared date and notes,
// continuing past per-item failures.
func (s *Service) BulkDisconnect(partIDs []int64, date model.Date, notes string) *BulkResult {
	result := &BulkResult{}
	for _, id := range partIDs {
		_, err := s.DisconnectPart(id, date, notes)
		result.record(id, "part", err)
	}
	s.logger.Info("bulk disconnect finished", "succeeded", result.Succeeded, "failed", result.Failed)
	return result
}

// BulkDispose disposes each part under a shared date, reason and notes,
// continuing past per-item failures.
func (s *Service) BulkDispose(partIDs []int64, date model.Date, reason, notes string) *BulkResult {
	result := &BulkResult{}
	for _, id := range partIDs {
		_, err := s.DisposePart(id, date, reason, notes)
		result.record(id, "part", err)
	}
	s.logger.Info("bulk dispose finished", "succeeded", result.Succeeded, "failed", result.Failed)
	return result
}
