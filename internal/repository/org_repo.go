package repository

import (
	"context"
	"errors"

	"standardops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrganizationRepository handles the tenant root entity
type OrganizationRepository interface {
	Create(ctx context.Context, org *model.Organization) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Organization, error)
	GetByCode(ctx context.Context, code string) (*model.Organization, error)
	FindOrCreateByCode(ctx context.Context, code, name string) (*model.Organization, error)
	List(ctx context.Context) ([]model.Organization, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

type organizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &organizationRepository{db: db}
}

func (r *organizationRepository) Create(ctx context.Context, org *model.Organization) error {
	return GetDB(ctx, r.db).Create(org).Error
}

func (r *organizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
	var org model.Organization
	if err := GetDB(ctx, r.db).First(&org, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *organizationRepository) GetByCode(ctx context.Context, code string) (*model.Organization, error) {
	var org model.Organization
	if err := GetDB(ctx, r.db).First(&org, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// FindOrCreateByCode looks an organization up by its code and creates it only
// when absent. Code is the natural key; the name is not updated on a hit.
func (r *organizationRepository) FindOrCreateByCode(ctx context.Context, code, name string) (*model.Organization, error) {
	db := GetDB(ctx, r.db)
	var org model.Organization
	err := db.Where("code = ?", code).First(&org).Error
	if err == nil {
		return &org, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	org = model.Organization{Code: code, Name: name}
	if err := db.Create(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *organizationRepository) List(ctx context.Context) ([]model.Organization, error) {
	var orgs []model.Organization
	if err := GetDB(ctx, r.db).Order("name asc").Find(&orgs).Error; err != nil {
		return nil, err
	}
	return orgs, nil
}

// ListIDs returns every organization id. Always a live query: superuser
// visibility must reflect organizations created after roles were assigned.
func (r *organizationRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := GetDB(ctx, r.db).Model(&model.Organization{}).Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
