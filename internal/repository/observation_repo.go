package repository

import (
	"context"

	"standardops/internal/model"
	"standardops/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ObservationRepository interface {
	Create(ctx context.Context, obs *model.Observation) error
	GetByID(ctx context.Context, tc *tenant.TenantContext, id uuid.UUID) (*model.Observation, error)
	List(ctx context.Context, tc *tenant.TenantContext, page, limit int) ([]model.Observation, int64, error)
}

type observationRepository struct {
	db *gorm.DB
}

func NewObservationRepository(db *gorm.DB) ObservationRepository {
	return &observationRepository{db: db}
}

func (r *observationRepository) Create(ctx context.Context, obs *model.Observation) error {
	return GetDB(ctx, r.db).Create(obs).Error
}

// GetByID fetches an observation the tenant may see. Observations hang off a
// facility, so the restriction goes through facilities.organization_id.
func (r *observationRepository) GetByID(ctx context.Context, tc *tenant.TenantContext, id uuid.UUID) (*model.Observation, error) {
	var obs model.Observation
	err := GetDB(ctx, r.db).
		Scopes(tenant.FacilityScope(tc, "observations")).
		Preload("Entries").
		First(&obs, "observations.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &obs, nil
}

func (r *observationRepository) List(ctx context.Context, tc *tenant.TenantContext, page, limit int) ([]model.Observation, int64, error) {
	var observations []model.Observation
	var total int64

	base := GetDB(ctx, r.db).Model(&model.Observation{}).Scopes(tenant.FacilityScope(tc, "observations"))
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := GetDB(ctx, r.db).
		Scopes(tenant.FacilityScope(tc, "observations")).
		Preload("Entries").
		Order("observations.observed_at desc").
		Offset(offset).Limit(limit).
		Find(&observations).Error
	if err != nil {
		return nil, 0, err
	}

	return observations, total, nil
}
