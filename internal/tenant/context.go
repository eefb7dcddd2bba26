package tenant

import (
	"context"

	"github.com/google/uuid"
)

// UserPermissions is the derived permission view for a single user:
// the union of permission names granted by every role assigned to them.
type UserPermissions struct {
	UserID            uuid.UUID  `json:"user_id"`
	OrganizationID    *uuid.UUID `json:"organization_id"`
	IsSystemSuperuser bool       `json:"is_system_superuser"`
	Roles             []string   `json:"roles"`
	Permissions       []string   `json:"permissions"`
}

// Has reports whether the permission name is present in the set.
// Superusers hold every permission implicitly.
func (p *UserPermissions) Has(name string) bool {
	if p == nil {
		return false
	}
	if p.IsSystemSuperuser {
		return true
	}
	for _, perm := range p.Permissions {
		if perm == name {
			return true
		}
	}
	return false
}

// TenantContext is the per-request visibility decision for a user.
// It is computed fresh from current user/role/permission state on every
// request and never cached or persisted.
//
// Invariant: when IsSystemSuperuser is true, AllowedOrganizations holds every
// organization id and OrganizationID is nil; otherwise AllowedOrganizations is
// the user's own organization (or empty when they have none).
type TenantContext struct {
	UserID               uuid.UUID   `json:"user_id"`
	OrganizationID       *uuid.UUID  `json:"organization_id"`
	IsSystemSuperuser    bool        `json:"is_system_superuser"`
	AllowedOrganizations []uuid.UUID `json:"allowed_organizations"`
}

// CanAccess reports whether the context allows reading data of the given organization
func (tc *TenantContext) CanAccess(orgID uuid.UUID) bool {
	if tc == nil {
		return false
	}
	for _, id := range tc.AllowedOrganizations {
		if id == orgID {
			return true
		}
	}
	return false
}

type ctxKey struct{}

// WithContext injects a computed TenantContext into ctx for downstream data access
func WithContext(ctx context.Context, tc *TenantContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, tc)
}

// FromContext reads the TenantContext placed by WithContext.
// Callers must treat a missing context as deny, never as full visibility.
func FromContext(ctx context.Context) (*TenantContext, bool) {
	tc, ok := ctx.Value(ctxKey{}).(*TenantContext)
	if !ok || tc == nil {
		return nil, false
	}
	return tc, true
}
