package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"standardops/internal/model"
	"standardops/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// defaultPermissions is the full capability catalog. Names are the tokens the
// permission middleware and the role templates match on.
var defaultPermissions = []model.Permission{
	{Name: "view_dashboard", Description: "View dashboards", Group: "dashboard"},
	{Name: "view_standards", Description: "View work standards", Group: "standards"},
	{Name: "manage_standards", Description: "Create, import and edit work standards", Group: "standards"},
	{Name: "view_observations", Description: "View performance observations", Group: "observations"},
	{Name: "create_observations", Description: "Record performance observations", Group: "observations"},
	{Name: "manage_observations", Description: "Edit and delete observations", Group: "observations"},
	{Name: "view_users", Description: "View users", Group: "users"},
	{Name: "manage_users", Description: "Create and edit users", Group: "users"},
	{Name: "manage_roles", Description: "Manage roles and permissions", Group: "roles"},
	{Name: "view_reports", Description: "View reports", Group: "reports"},
	{Name: "manage_organizations", Description: "Create and edit organizations", Group: "organizations"},
	{Name: "manage_system", Description: "System administration", Group: "system"},
}

// roleTemplate declares which catalog permissions a seeded role receives.
// Include/Exclude are substring predicates over permission names ("view_"
// matches anywhere in the name, deliberately not prefix-only); an empty
// Include list means every permission. Exclude wins over Include.
type roleTemplate struct {
	Name        string
	Description string
	Include     []string
	Exclude     []string
}

var orgRoleTemplates = []roleTemplate{
	{
		Name:        "Organization Admin",
		Description: "Full control within the organization",
		Exclude:     []string{"manage_system", "manage_organizations"},
	},
	{
		Name:        "Manager",
		Description: "Manages standards and observations",
		Include:     []string{"manage_standards", "manage_observations", "create_observations", "view_"},
	},
	{
		Name:        "Observer",
		Description: "Records and views observations",
		Include:     []string{"view_", "create_observations"},
	},
}

func (t roleTemplate) matches(permName string) bool {
	for _, sub := range t.Exclude {
		if strings.Contains(permName, sub) {
			return false
		}
	}
	if len(t.Include) == 0 {
		return true
	}
	for _, sub := range t.Include {
		if strings.Contains(permName, sub) {
			return true
		}
	}
	return false
}

// ProvisionService seeds the permission catalog, the global superuser role,
// and the per-organization role templates.
type ProvisionService interface {
	SeedPermissionCatalog(ctx context.Context) error
	SeedSystemRoles(ctx context.Context) error
	ProvisionOrganizationRoles(ctx context.Context, orgID uuid.UUID) error
}

type provisionService struct {
	roleRepo  repository.RoleRepository
	txManager repository.TransactionManager
}

func NewProvisionService(roleRepo repository.RoleRepository, txManager repository.TransactionManager) ProvisionService {
	return &provisionService{roleRepo: roleRepo, txManager: txManager}
}

// SeedPermissionCatalog upserts the default permission set by name
func (s *provisionService) SeedPermissionCatalog(ctx context.Context) error {
	for i := range defaultPermissions {
		p := defaultPermissions[i]
		if err := s.roleRepo.FindOrCreatePermission(ctx, &p); err != nil {
			return fmt.Errorf("failed to seed permission '%s': %w", p.Name, err)
		}
	}
	return nil
}

// SeedSystemRoles creates the global System Superuser role holding every
// permission. Idempotent: an existing role keeps its id, links are replaced.
func (s *provisionService) SeedSystemRoles(ctx context.Context) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		role, err := s.roleRepo.FindByNameAndOrg(txCtx, model.SystemSuperuserRole, nil)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			role = &model.Role{
				Name:         model.SystemSuperuserRole,
				Description:  "Unrestricted access across all organizations",
				IsSystemRole: true,
			}
			if err := s.roleRepo.Create(txCtx, role); err != nil {
				return fmt.Errorf("failed to create role '%s': %w", model.SystemSuperuserRole, err)
			}
		}

		perms, err := s.roleRepo.ListPermissions(txCtx)
		if err != nil {
			return err
		}
		return s.roleRepo.ReplacePermissions(txCtx, role.ID, perms)
	})
}

// ProvisionOrganizationRoles seeds the three-role template for one
// organization. Re-running never duplicates roles: an existing role has its
// permission links replaced atomically instead.
func (s *provisionService) ProvisionOrganizationRoles(ctx context.Context, orgID uuid.UUID) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		catalog, err := s.roleRepo.ListPermissions(txCtx)
		if err != nil {
			return err
		}

		for _, tpl := range orgRoleTemplates {
			role, err := s.roleRepo.FindByNameAndOrg(txCtx, tpl.Name, &orgID)
			if err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
				role = &model.Role{
					Name:           tpl.Name,
					Description:    tpl.Description,
					OrganizationID: &orgID,
				}
				if err := s.roleRepo.Create(txCtx, role); err != nil {
					return fmt.Errorf("failed to create role '%s': %w", tpl.Name, err)
				}
			}

			granted := make([]model.Permission, 0, len(catalog))
			for _, p := range catalog {
				if tpl.matches(p.Name) {
					granted = append(granted, p)
				}
			}
			if err := s.roleRepo.ReplacePermissions(txCtx, role.ID, granted); err != nil {
				return fmt.Errorf("failed to assign permissions to role '%s': %w", tpl.Name, err)
			}
		}
		return nil
	})
}
