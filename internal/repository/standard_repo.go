package repository

import (
	"context"

	"standardops/internal/model"
	"standardops/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StandardRepository interface {
	Create(ctx context.Context, std *model.Standard) error
	GetByID(ctx context.Context, tc *tenant.TenantContext, id uuid.UUID) (*model.Standard, error)
	ExistsByNameAndArea(ctx context.Context, name string, areaID uuid.UUID) (bool, error)
	List(ctx context.Context, tc *tenant.TenantContext, page, limit int) ([]model.Standard, int64, error)
}

type standardRepository struct {
	db *gorm.DB
}

func NewStandardRepository(db *gorm.DB) StandardRepository {
	return &standardRepository{db: db}
}

// Create persists the standard and its nested UOM entries in one insert chain
func (r *standardRepository) Create(ctx context.Context, std *model.Standard) error {
	return GetDB(ctx, r.db).Create(std).Error
}

// GetByID fetches a standard visible to the tenant context. A cross-tenant id
// behaves exactly like a missing one: gorm.ErrRecordNotFound.
func (r *standardRepository) GetByID(ctx context.Context, tc *tenant.TenantContext, id uuid.UUID) (*model.Standard, error) {
	var std model.Standard
	err := GetDB(ctx, r.db).
		Scopes(tenant.Scope(tc)).
		Preload("UomEntries").
		First(&std, "standards.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &std, nil
}

// ExistsByNameAndArea is the importer's conflict probe: standards are
// create-only, never upserted.
func (r *standardRepository) ExistsByNameAndArea(ctx context.Context, name string, areaID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).
		Model(&model.Standard{}).
		Where("name = ? AND area_id = ?", name, areaID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *standardRepository) List(ctx context.Context, tc *tenant.TenantContext, page, limit int) ([]model.Standard, int64, error) {
	var standards []model.Standard
	var total int64

	base := GetDB(ctx, r.db).Model(&model.Standard{}).Scopes(tenant.Scope(tc))
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := GetDB(ctx, r.db).
		Scopes(tenant.Scope(tc)).
		Preload("UomEntries").
		Order("created_at desc").
		Offset(offset).Limit(limit).
		Find(&standards).Error
	if err != nil {
		return nil, 0, err
	}

	return standards, total, nil
}
