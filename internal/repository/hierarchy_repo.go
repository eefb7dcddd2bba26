package repository

import (
	"context"
	"errors"

	"standardops/internal/model"
	"standardops/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HierarchyRepository handles the Facility → Department → Area containment
// chain beneath an Organization. The find-or-create methods are the
// importer's building blocks: lookup by natural key, create only on a miss.
type HierarchyRepository interface {
	FindOrCreateFacility(ctx context.Context, fac *model.Facility) (*model.Facility, error)
	FindOrCreateDepartment(ctx context.Context, dep *model.Department) (*model.Department, error)
	FindOrCreateArea(ctx context.Context, area *model.Area) (*model.Area, error)
	ListFacilities(ctx context.Context, tc *tenant.TenantContext) ([]model.Facility, error)
	ListDepartments(ctx context.Context, tc *tenant.TenantContext, facilityID uuid.UUID) ([]model.Department, error)
	ListAreas(ctx context.Context, tc *tenant.TenantContext, departmentID uuid.UUID) ([]model.Area, error)
}

type hierarchyRepository struct {
	db *gorm.DB
}

func NewHierarchyRepository(db *gorm.DB) HierarchyRepository {
	return &hierarchyRepository{db: db}
}

func (r *hierarchyRepository) FindOrCreateFacility(ctx context.Context, fac *model.Facility) (*model.Facility, error) {
	db := GetDB(ctx, r.db)
	var existing model.Facility
	err := db.Where("name = ? AND organization_id = ?", fac.Name, fac.OrganizationID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err := db.Create(fac).Error; err != nil {
		return nil, err
	}
	return fac, nil
}

func (r *hierarchyRepository) FindOrCreateDepartment(ctx context.Context, dep *model.Department) (*model.Department, error) {
	db := GetDB(ctx, r.db)
	var existing model.Department
	err := db.Where("name = ? AND facility_id = ?", dep.Name, dep.FacilityID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err := db.Create(dep).Error; err != nil {
		return nil, err
	}
	return dep, nil
}

func (r *hierarchyRepository) FindOrCreateArea(ctx context.Context, area *model.Area) (*model.Area, error) {
	db := GetDB(ctx, r.db)
	var existing model.Area
	err := db.Where("name = ? AND department_id = ?", area.Name, area.DepartmentID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err := db.Create(area).Error; err != nil {
		return nil, err
	}
	return area, nil
}

func (r *hierarchyRepository) ListFacilities(ctx context.Context, tc *tenant.TenantContext) ([]model.Facility, error) {
	var facilities []model.Facility
	err := GetDB(ctx, r.db).
		Scopes(tenant.Scope(tc)).
		Order("name asc").
		Find(&facilities).Error
	if err != nil {
		return nil, err
	}
	return facilities, nil
}

func (r *hierarchyRepository) ListDepartments(ctx context.Context, tc *tenant.TenantContext, facilityID uuid.UUID) ([]model.Department, error) {
	var departments []model.Department
	err := GetDB(ctx, r.db).
		Scopes(tenant.FacilityScope(tc, "departments")).
		Where("departments.facility_id = ?", facilityID).
		Order("departments.name asc").
		Find(&departments).Error
	if err != nil {
		return nil, err
	}
	return departments, nil
}

func (r *hierarchyRepository) ListAreas(ctx context.Context, tc *tenant.TenantContext, departmentID uuid.UUID) ([]model.Area, error) {
	var areas []model.Area
	err := GetDB(ctx, r.db).
		Joins("JOIN departments ON departments.id = areas.department_id").
		Scopes(tenant.FacilityScope(tc, "departments")).
		Where("areas.department_id = ?", departmentID).
		Order("areas.name asc").
		Find(&areas).Error
	if err != nil {
		return nil, err
	}
	return areas, nil
}
