package tenant

import (
	"context"
	"errors"
	"testing"

	"standardops/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeUserStore struct {
	users map[uuid.UUID]*model.User
	err   error
}

func (f *fakeUserStore) GetWithRoles(_ context.Context, id uuid.UUID) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

type fakeOrgStore struct {
	ids []uuid.UUID
	err error
}

func (f *fakeOrgStore) ListIDs(_ context.Context) ([]uuid.UUID, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]uuid.UUID, len(f.ids))
	copy(out, f.ids)
	return out, nil
}

func userWithRole(orgID *uuid.UUID, role model.Role) *model.User {
	return &model.User{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Roles:          []model.UserRole{{Role: role}},
	}
}

func TestComputePermissions_UnionAcrossRoles(t *testing.T) {
	orgID := uuid.New()
	user := &model.User{
		ID:             uuid.New(),
		OrganizationID: &orgID,
		Roles: []model.UserRole{
			{Role: model.Role{Name: "Manager", Permissions: []model.Permission{
				{Name: "view_standards"}, {Name: "manage_standards"},
			}}},
			{Role: model.Role{Name: "Observer", Permissions: []model.Permission{
				{Name: "view_standards"}, {Name: "create_observations"},
			}}},
		},
	}
	svc := NewService(&fakeUserStore{users: map[uuid.UUID]*model.User{user.ID: user}}, &fakeOrgStore{})

	perms, err := svc.ComputePermissions(context.Background(), user.ID)

	require.NoError(t, err)
	require.NotNil(t, perms)
	assert.ElementsMatch(t, []string{"view_standards", "manage_standards", "create_observations"}, perms.Permissions)
	assert.ElementsMatch(t, []string{"Manager", "Observer"}, perms.Roles)
	assert.False(t, perms.IsSystemSuperuser)
}

func TestComputePermissions_UnknownUser(t *testing.T) {
	svc := NewService(&fakeUserStore{users: map[uuid.UUID]*model.User{}}, &fakeOrgStore{})

	perms, err := svc.ComputePermissions(context.Background(), uuid.New())

	// Missing users and permissionless users look identical to callers.
	assert.NoError(t, err)
	assert.Nil(t, perms)
}

func TestComputePermissions_SuperuserRequiresExactName(t *testing.T) {
	cases := []struct {
		name string
		role model.Role
		want bool
	}{
		{"system flag and exact name", model.Role{Name: model.SystemSuperuserRole, IsSystemRole: true}, true},
		{"exact name without system flag", model.Role{Name: model.SystemSuperuserRole, IsSystemRole: false}, false},
		{"system flag with other name", model.Role{Name: "System Auditor", IsSystemRole: true}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			user := userWithRole(nil, tc.role)
			svc := NewService(&fakeUserStore{users: map[uuid.UUID]*model.User{user.ID: user}}, &fakeOrgStore{})

			perms, err := svc.ComputePermissions(context.Background(), user.ID)

			require.NoError(t, err)
			require.NotNil(t, perms)
			assert.Equal(t, tc.want, perms.IsSystemSuperuser)
		})
	}
}

func TestComputeTenantContext_OrgUser(t *testing.T) {
	orgID := uuid.New()
	user := userWithRole(&orgID, model.Role{Name: "Observer"})
	svc := NewService(&fakeUserStore{users: map[uuid.UUID]*model.User{user.ID: user}}, &fakeOrgStore{})

	tc, err := svc.ComputeTenantContext(context.Background(), user.ID)

	require.NoError(t, err)
	require.NotNil(t, tc)
	assert.Equal(t, []uuid.UUID{orgID}, tc.AllowedOrganizations)
	require.NotNil(t, tc.OrganizationID)
	assert.Equal(t, orgID, *tc.OrganizationID)
}

func TestComputeTenantContext_NoOrganization(t *testing.T) {
	user := userWithRole(nil, model.Role{Name: "Observer"})
	svc := NewService(&fakeUserStore{users: map[uuid.UUID]*model.User{user.ID: user}}, &fakeOrgStore{})

	tc, err := svc.ComputeTenantContext(context.Background(), user.ID)

	require.NoError(t, err)
	require.NotNil(t, tc)
	assert.Empty(t, tc.AllowedOrganizations)
	assert.Nil(t, tc.OrganizationID)
}

func TestComputeTenantContext_SuperuserListIsLive(t *testing.T) {
	user := userWithRole(nil, model.Role{Name: model.SystemSuperuserRole, IsSystemRole: true})
	orgs := &fakeOrgStore{ids: []uuid.UUID{uuid.New()}}
	svc := NewService(&fakeUserStore{users: map[uuid.UUID]*model.User{user.ID: user}}, orgs)

	first, err := svc.ComputeTenantContext(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Len(t, first.AllowedOrganizations, 1)
	assert.Nil(t, first.OrganizationID)

	// An organization created after the first computation must be visible
	// on the next one without any role change.
	newOrg := uuid.New()
	orgs.ids = append(orgs.ids, newOrg)

	second, err := svc.ComputeTenantContext(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Len(t, second.AllowedOrganizations, 2)
	assert.True(t, second.CanAccess(newOrg))
}

func TestComputeTenantContext_CardinalityAtMostOneForNonSuperusers(t *testing.T) {
	orgID := uuid.New()
	for _, u := range []*model.User{
		userWithRole(&orgID, model.Role{Name: "Manager"}),
		userWithRole(nil, model.Role{Name: "Manager"}),
	} {
		svc := NewService(&fakeUserStore{users: map[uuid.UUID]*model.User{u.ID: u}}, &fakeOrgStore{})
		tc, err := svc.ComputeTenantContext(context.Background(), u.ID)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(tc.AllowedOrganizations), 1)
	}
}

func TestHasPermission(t *testing.T) {
	orgID := uuid.New()
	otherOrg := uuid.New()
	user := userWithRole(&orgID, model.Role{Name: "Manager", Permissions: []model.Permission{{Name: "manage_standards"}}})
	svc := NewService(&fakeUserStore{users: map[uuid.UUID]*model.User{user.ID: user}}, &fakeOrgStore{})
	ctx := context.Background()

	assert.True(t, svc.HasPermission(ctx, user.ID, "manage_standards", nil))
	assert.True(t, svc.HasPermission(ctx, user.ID, "manage_standards", &orgID))
	assert.False(t, svc.HasPermission(ctx, user.ID, "manage_standards", &otherOrg), "org scoping is exact equality")
	assert.False(t, svc.HasPermission(ctx, user.ID, "manage_users", nil))
	assert.False(t, svc.HasPermission(ctx, uuid.New(), "manage_standards", nil), "unknown user is denied")
}

func TestHasPermission_SuperuserBypassesOrgScope(t *testing.T) {
	user := userWithRole(nil, model.Role{Name: model.SystemSuperuserRole, IsSystemRole: true})
	svc := NewService(&fakeUserStore{users: map[uuid.UUID]*model.User{user.ID: user}}, &fakeOrgStore{})

	someOrg := uuid.New()
	assert.True(t, svc.HasPermission(context.Background(), user.ID, "manage_system", &someOrg))
}

func TestHasPermission_StoreErrorDenies(t *testing.T) {
	svc := NewService(&fakeUserStore{err: errors.New("connection refused")}, &fakeOrgStore{})

	assert.False(t, svc.HasPermission(context.Background(), uuid.New(), "view_dashboard", nil))
}

func TestCanAccessOrganization(t *testing.T) {
	orgID := uuid.New()
	user := userWithRole(&orgID, model.Role{Name: "Observer"})
	svc := NewService(&fakeUserStore{users: map[uuid.UUID]*model.User{user.ID: user}}, &fakeOrgStore{})

	assert.True(t, svc.CanAccessOrganization(context.Background(), user.ID, orgID))
	assert.False(t, svc.CanAccessOrganization(context.Background(), user.ID, uuid.New()))
}
