package service

import (
	"context"
	"errors"
	"fmt"

	"standardops/internal/model"
	"standardops/internal/repository"
	"standardops/internal/tenant"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateOrganizationRequest struct {
	Code string `json:"code" binding:"required,max=50"`
	Name string `json:"name" binding:"required"`
}

type OrganizationResponse struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`
	Name string    `json:"name"`
}

type RoleResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	IsSystemRole bool      `json:"is_system_role"`
	Permissions  []string  `json:"permissions"`
}

var ErrOrganizationExists = errors.New("organization code already exists")

// OrganizationService covers tenant onboarding, listing, and the read-only
// hierarchy views the admin UI navigates
type OrganizationService interface {
	CreateOrganization(ctx context.Context, req CreateOrganizationRequest) (*OrganizationResponse, error)
	GetOrganization(ctx context.Context, tc *tenant.TenantContext, id string) (*OrganizationResponse, error)
	ListOrganizations(ctx context.Context, tc *tenant.TenantContext) ([]OrganizationResponse, error)
	ListOrganizationRoles(ctx context.Context, tc *tenant.TenantContext, id string) ([]RoleResponse, error)
	ListFacilities(ctx context.Context, tc *tenant.TenantContext) ([]model.Facility, error)
	ListDepartments(ctx context.Context, tc *tenant.TenantContext, facilityID string) ([]model.Department, error)
	ListAreas(ctx context.Context, tc *tenant.TenantContext, departmentID string) ([]model.Area, error)
}

type organizationService struct {
	orgRepo       repository.OrganizationRepository
	hierarchyRepo repository.HierarchyRepository
	roleRepo      repository.RoleRepository
	provisionSvc  ProvisionService
}

func NewOrganizationService(
	orgRepo repository.OrganizationRepository,
	hierarchyRepo repository.HierarchyRepository,
	roleRepo repository.RoleRepository,
	provisionSvc ProvisionService,
) OrganizationService {
	return &organizationService{orgRepo: orgRepo, hierarchyRepo: hierarchyRepo, roleRepo: roleRepo, provisionSvc: provisionSvc}
}

// CreateOrganization onboards a tenant: the organization row plus its seeded
// role templates. Provisioning is idempotent, so a failure after the create
// can be repaired by re-running onboarding for the same code.
func (s *organizationService) CreateOrganization(ctx context.Context, req CreateOrganizationRequest) (*OrganizationResponse, error) {
	org := &model.Organization{Code: req.Code, Name: req.Name}
	if err := s.orgRepo.Create(ctx, org); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrOrganizationExists
		}
		return nil, err
	}

	if err := s.provisionSvc.ProvisionOrganizationRoles(ctx, org.ID); err != nil {
		return nil, fmt.Errorf("organization created but role provisioning failed: %w", err)
	}

	return toOrganizationResponse(org), nil
}

func (s *organizationService) GetOrganization(ctx context.Context, tc *tenant.TenantContext, id string) (*OrganizationResponse, error) {
	orgID, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.New("organization not found")
	}
	// Cross-tenant ids behave exactly like missing ones
	if !tc.CanAccess(orgID) {
		return nil, errors.New("organization not found")
	}

	org, err := s.orgRepo.GetByID(ctx, orgID)
	if err != nil {
		return nil, errors.New("organization not found")
	}
	return toOrganizationResponse(org), nil
}

func (s *organizationService) ListOrganizations(ctx context.Context, tc *tenant.TenantContext) ([]OrganizationResponse, error) {
	orgs, err := s.orgRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]OrganizationResponse, 0, len(orgs))
	for i := range orgs {
		if tc.CanAccess(orgs[i].ID) {
			res = append(res, *toOrganizationResponse(&orgs[i]))
		}
	}
	return res, nil
}

// ListOrganizationRoles enumerates an organization's seeded and custom roles,
// the list the role-assignment flow picks from. Cross-tenant ids behave like
// missing ones.
func (s *organizationService) ListOrganizationRoles(ctx context.Context, tc *tenant.TenantContext, id string) ([]RoleResponse, error) {
	orgID, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.New("organization not found")
	}
	if !tc.CanAccess(orgID) {
		return nil, errors.New("organization not found")
	}

	roles, err := s.roleRepo.ListByOrganization(ctx, &orgID)
	if err != nil {
		return nil, err
	}

	res := make([]RoleResponse, 0, len(roles))
	for i := range roles {
		res = append(res, toRoleResponse(&roles[i]))
	}
	return res, nil
}

func toRoleResponse(role *model.Role) RoleResponse {
	perms := make([]string, 0, len(role.Permissions))
	for _, p := range role.Permissions {
		perms = append(perms, p.Name)
	}
	return RoleResponse{
		ID:           role.ID,
		Name:         role.Name,
		Description:  role.Description,
		IsSystemRole: role.IsSystemRole,
		Permissions:  perms,
	}
}

func (s *organizationService) ListFacilities(ctx context.Context, tc *tenant.TenantContext) ([]model.Facility, error) {
	return s.hierarchyRepo.ListFacilities(ctx, tc)
}

func (s *organizationService) ListDepartments(ctx context.Context, tc *tenant.TenantContext, facilityID string) ([]model.Department, error) {
	id, err := uuid.Parse(facilityID)
	if err != nil {
		return nil, errors.New("facility not found")
	}
	return s.hierarchyRepo.ListDepartments(ctx, tc, id)
}

func (s *organizationService) ListAreas(ctx context.Context, tc *tenant.TenantContext, departmentID string) ([]model.Area, error) {
	id, err := uuid.Parse(departmentID)
	if err != nil {
		return nil, errors.New("department not found")
	}
	return s.hierarchyRepo.ListAreas(ctx, tc, id)
}

func toOrganizationResponse(org *model.Organization) *OrganizationResponse {
	return &OrganizationResponse{ID: org.ID, Code: org.Code, Name: org.Name}
}
