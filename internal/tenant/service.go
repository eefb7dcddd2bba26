package tenant

import (
	"context"
	"errors"

	"standardops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserStore is the slice of the user repository the tenant layer needs
type UserStore interface {
	GetWithRoles(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// OrganizationStore lists organization ids for superuser visibility
type OrganizationStore interface {
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

// Service computes tenant visibility and permission decisions.
// It is read-only: nothing here writes to the store, and every failure path
// resolves to the most restrictive outcome rather than an error a caller
// could mishandle into an allow.
type Service struct {
	users UserStore
	orgs  OrganizationStore
}

func NewService(users UserStore, orgs OrganizationStore) *Service {
	return &Service{users: users, orgs: orgs}
}

// ComputePermissions loads the user, their role assignments, and the union of
// permission names those roles grant. A missing user yields (nil, nil): callers
// treat "no permissions" and "no such user" identically, so user existence
// cannot be probed through this path.
func (s *Service) ComputePermissions(ctx context.Context, userID uuid.UUID) (*UserPermissions, error) {
	user, err := s.users.GetWithRoles(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	perms := &UserPermissions{
		UserID:         user.ID,
		OrganizationID: user.OrganizationID,
	}

	seen := make(map[string]bool)
	for _, assignment := range user.Roles {
		role := assignment.Role
		perms.Roles = append(perms.Roles, role.Name)

		// Superuser requires both the system flag and the exact name; a
		// system role with any other name grants nothing special.
		if role.IsSystemRole && role.Name == model.SystemSuperuserRole {
			perms.IsSystemSuperuser = true
		}

		for _, p := range role.Permissions {
			if !seen[p.Name] {
				seen[p.Name] = true
				perms.Permissions = append(perms.Permissions, p.Name)
			}
		}
	}

	return perms, nil
}

// ComputeTenantContext derives the visibility set for a user. For superusers
// the organization list is a live query so organizations created after the
// role assignment are always included.
func (s *Service) ComputeTenantContext(ctx context.Context, userID uuid.UUID) (*TenantContext, error) {
	perms, err := s.ComputePermissions(ctx, userID)
	if err != nil {
		return nil, err
	}
	if perms == nil {
		return nil, nil
	}

	tc := &TenantContext{
		UserID:            perms.UserID,
		OrganizationID:    perms.OrganizationID,
		IsSystemSuperuser: perms.IsSystemSuperuser,
	}

	if perms.IsSystemSuperuser {
		tc.OrganizationID = nil
		ids, err := s.orgs.ListIDs(ctx)
		if err != nil {
			return nil, err
		}
		tc.AllowedOrganizations = ids
		return tc, nil
	}

	if perms.OrganizationID != nil {
		tc.AllowedOrganizations = []uuid.UUID{*perms.OrganizationID}
	} else {
		tc.AllowedOrganizations = []uuid.UUID{}
	}
	return tc, nil
}

// HasPermission reports whether the user holds the named permission,
// optionally scoped to an organization. Superusers pass unconditionally.
// Non-superusers must hold the permission name AND, when orgID is given, it
// must equal their own organization exactly, with no ancestor matching.
// Any lookup failure resolves to false.
func (s *Service) HasPermission(ctx context.Context, userID uuid.UUID, permission string, orgID *uuid.UUID) bool {
	perms, err := s.ComputePermissions(ctx, userID)
	if err != nil || perms == nil {
		return false
	}
	if perms.IsSystemSuperuser {
		return true
	}
	if !perms.Has(permission) {
		return false
	}
	if orgID != nil {
		if perms.OrganizationID == nil || *perms.OrganizationID != *orgID {
			return false
		}
	}
	return true
}

// CanAccessOrganization reports whether orgID is in the user's visibility set
func (s *Service) CanAccessOrganization(ctx context.Context, userID, orgID uuid.UUID) bool {
	tc, err := s.ComputeTenantContext(ctx, userID)
	if err != nil || tc == nil {
		return false
	}
	return tc.CanAccess(orgID)
}
