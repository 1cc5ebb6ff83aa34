package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/vietcart/logistics/internal/domain/dispatch"
	"github.com/vietcart/logistics/internal/domain/shared"
)

// PostOfficeRepositoryGORM implements dispatch.PostOfficeRepository using GORM
type PostOfficeRepositoryGORM struct {
	db *gorm.DB
}

// NewPostOfficeRepository creates a new GORM-based post office repository
func NewPostOfficeRepository(db *gorm.DB) *PostOfficeRepositoryGORM {
	return &PostOfficeRepositoryGORM{db: db}
}

// FindByID retrieves a post office by id
func (r *PostOfficeRepositoryGORM) FindByID(ctx context.Context, id string) (*dispatch.PostOffice, error) {
	var model PostOfficeModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound("post office", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post office: %w", err)
	}
	return postOfficeToDomain(&model), nil
}

// ListLocal returns every local (non-hub) office. The network is small
// enough that nearest-office selection loads the full list.
func (r *PostOfficeRepositoryGORM) ListLocal(ctx context.Context) ([]*dispatch.PostOffice, error) {
	var models []PostOfficeModel
	err := r.db.WithContext(ctx).Where("type = ?", string(dispatch.OfficeLocal)).Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list local post offices: %w", err)
	}

	offices := make([]*dispatch.PostOffice, 0, len(models))
	for i := range models {
		offices = append(offices, postOfficeToDomain(&models[i]))
	}
	return offices, nil
}

// FindRegionalHub returns the regional transit hub of a region
func (r *PostOfficeRepositoryGORM) FindRegionalHub(ctx context.Context, region string) (*dispatch.PostOffice, error) {
	var model PostOfficeModel
	err := r.db.WithContext(ctx).
		Where("type = ? AND region = ?", string(dispatch.OfficeRegional), region).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound("regional hub", region)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find regional hub for %s: %w", region, err)
	}
	return postOfficeToDomain(&model), nil
}

func postOfficeToDomain(m *PostOfficeModel) *dispatch.PostOffice {
	return &dispatch.PostOffice{
		ID:       m.ID,
		Code:     m.Code,
		Type:     dispatch.OfficeType(m.Type),
		City:     m.City,
		District: m.District,
		Region:   shared.Region(m.Region),
		Lat:      m.Lat,
		Lng:      m.Lng,
		ParentID: m.ParentID,
	}
}
