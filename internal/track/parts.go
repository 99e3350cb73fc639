package track

import (
	"fmt"
	"sort"
	"strings"

	"rigtrack/internal/model"
)

// PartParams carries the user-editable fields of a part.
type PartParams struct {
	Brand      string
	Model      string
	Type       model.PartType
	AcquiredAt model.Date
	Notes      string
}

func (p PartParams) validate() error {
	if p.Brand == "" {
		return validationf("brand is required")
	}
	if p.Model == "" {
		return validationf("model is required")
	}
	if _, err := model.ParsePartType(string(p.Type)); err != nil {
		return validationf("invalid part type: %q", p.Type)
	}
	return nil
}

// AddPart creates a new part and returns it with its assigned id.
func (s *Service) AddPart(params PartParams) (*model.Part, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	part, err := s.database.CreatePart(&model.Part{
		Brand:      params.Brand,
		Model:      params.Model,
		Type:       params.Type,
		AcquiredAt: params.AcquiredAt,
		Notes:      params.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("creating part: %w", err)
	}

	s.logger.Info("part added", "part", part.ID, "brand", part.Brand, "model", part.Model, "type", part.Type)
	return part, nil
}

// UpdatePart rewrites a part's editable fields.
func (s *Service) UpdatePart(partID int64, params PartParams) (*model.Part, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	part, err := s.database.FindPartByID(partID)
	if err != nil {
		return nil, fmt.Errorf("loading part: %w", err)
	}
	if part == nil {
		return nil, &NotFoundError{Kind: "part", ID: partID}
	}

	part.Brand = params.Brand
	part.Model = params.Model
	part.Type = params.Type
	part.AcquiredAt = params.AcquiredAt
	part.Notes = params.Notes

	if err := s.database.UpdatePart(part); err != nil {
		return nil, fmt.Errorf("updating part: %w", err)
	}

	s.logger.Info("part updated", "part", part.ID)
	return part, nil
}

// DeletePart soft-deletes a part by recording a disposal dated today with
// reason "deleted". Routing through the disposal path keeps the deleted flag
// and the disposal records consistent, so the part stays restorable.
func (s *Service) DeletePart(partID int64) error {
	_, err := s.DisposePart(partID, today(s.clock), "deleted", "")
	return err
}

// GetPartByID returns a single part.
func (s *Service) GetPartByID(partID int64) (*model.Part, error) {
	part, err := s.database.FindPartByID(partID)
	if err != nil {
		return nil, fmt.Errorf("loading part: %w", err)
	}
	if part == nil {
		return nil, &NotFoundError{Kind: "part", ID: partID}
	}
	return part, nil
}

// PartFilter narrows GetAllParts. Zero values mean "all"; Search matches
// brand, model or notes case-insensitively by substring.
type PartFilter struct {
	Type   model.PartType
	Status model.Status
	Search string
}

// SortColumn selects the primary sort key for GetAllParts.
type SortColumn string

const (
	SortByBrand    SortColumn = "brand"
	SortByModel    SortColumn = "model"
	SortByType     SortColumn = "type"
	SortByAcquired SortColumn = "acquired"
	SortByStatus   SortColumn = "status"
)

// SortDirection selects ascending or descending order.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// GetAllParts returns the projected view of every part matching the filter,
// sorted by the given column with a deterministic (brand, model) secondary
// sort for stability.
func (s *Service) GetAllParts(filter PartFilter, column SortColumn, direction SortDirection) ([]*PartView, error) {
	parts, err := s.database.ListParts()
	if err != nil {
		return nil, fmt.Errorf("loading parts: %w", err)
	}

	open, err := s.database.FindOpenConnections()
	if err != nil {
		return nil, fmt.Errorf("loading open connections: %w", err)
	}

	// One pass over the open connections feeds every part's projection.
	openByPart := make(map[int64]int)
	openByMB := make(map[int64]int)
	hostOf := make(map[int64]int64)
	for _, c := range open {
		openByPart[c.PartID]++
		openByMB[c.MotherboardID]++
		hostOf[c.PartID] = c.MotherboardID
	}

	rigNames := make(map[int64]string) // motherboard id -> current name

	var views []*PartView
	for _, part := range parts {
		count := openByPart[part.ID]
		if part.IsMotherboard() {
			count = openByMB[part.ID]
		}
		view := &PartView{
			Part:              part,
			Status:            projectStatus(part, count),
			ActiveConnections: count,
		}

		if !matchesFilter(view, filter) {
			continue
		}

		if view.Status == model.StatusActive {
			mbID := part.ID
			if !part.IsMotherboard() {
				mbID = hostOf[part.ID]
			}
			name, ok := rigNames[mbID]
			if !ok {
				name, err = s.currentRigName(mbID)
				if err != nil {
					return nil, err
				}
				rigNames[mbID] = name
			}
			view.RigName = name
		}

		views = append(views, view)
	}

	sortViews(views, column, direction)
	return views, nil
}

func matchesFilter(view *PartView, filter PartFilter) bool {
	if filter.Type != "" && view.Part.Type != filter.Type {
		return false
	}
	if filter.Status != "" && view.Status != filter.Status {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		haystack := strings.ToLower(view.Part.Brand + "\n" + view.Part.Model + "\n" + view.Part.Notes)
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}

func sortViews(views []*PartView, column SortColumn, direction SortDirection) {
	key := func(v *PartView) string {
		switch column {
		case SortByModel:
			return v.Part.Model
		case SortByType:
			return string(v.Part.Type)
		case SortByAcquired:
			return v.Part.AcquiredAt.String()
		case SortByStatus:
			return string(v.Status)
		default:
			return v.Part.Brand
		}
	}

	sort.SliceStable(views, func(i, j int) bool {
		a, b := key(views[i]), key(views[j])
		if a != b {
			if direction == SortDesc {
				return a > b
			}
			return a < b
		}
		// Secondary sort is always ascending (brand, then model) so equal
		// primary keys order deterministically in either direction.
		if views[i].Part.Brand != views[j].Part.Brand {
			return views[i].Part.Brand < views[j].Part.Brand
		}
		return views[i].Part.Model < views[j].Part.Model
	})
}

// GetPartsInBin returns unconnected, undisposed parts, optionally narrowed
// to one type.
func (s *Service) GetPartsInBin(typeFilter model.PartType) ([]*PartView, error) {
	return s.GetAllParts(PartFilter{Type: typeFilter, Status: model.StatusBin}, SortByBrand, SortAsc)
}

// GetUniqueBrands returns the distinct brands across all parts, sorted.
func (s *Service) GetUniqueBrands() ([]string, error) {
	brands, err := s.database.ListBrands()
	if err != nil {
		return nil, fmt.Errorf("loading brands: %w", err)
	}
	return brands, nil
}
