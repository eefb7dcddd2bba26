package tenant

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// denyAllOrgID is merged into filters when a user has no organization.
// Organization ids are server-generated (gen_random_uuid), so the zero UUID
// can never identify a persisted row: the clause matches nothing.
var denyAllOrgID = uuid.Nil

// ApplyTenantFilter merges the tenant restriction into base and returns the
// merged filter. The rules, from widest to narrowest:
//
//   - superuser: base returned unchanged (full visibility)
//   - user with an organization: organization_id pinned to that organization
//   - user without an organization (or nil context): organization_id pinned to
//     a value that matches zero rows: deny all, never deny nothing
//
// The merge is idempotent: applying the same context twice yields the same filter.
func ApplyTenantFilter(tc *TenantContext, base map[string]interface{}) map[string]interface{} {
	if tc != nil && tc.IsSystemSuperuser {
		return base
	}

	merged := make(map[string]interface{}, len(base)+1)
	for k, v := range base {
		merged[k] = v
	}

	if tc != nil && tc.OrganizationID != nil {
		merged["organization_id"] = *tc.OrganizationID
	} else {
		merged["organization_id"] = denyAllOrgID
	}
	return merged
}

// ApplyFacilityTenantFilter is ApplyTenantFilter for resources that hang off a
// Facility rather than directly off an Organization: the restriction lands on
// facilities.organization_id, one relation removed.
func ApplyFacilityTenantFilter(tc *TenantContext, base map[string]interface{}) map[string]interface{} {
	if tc != nil && tc.IsSystemSuperuser {
		return base
	}

	merged := make(map[string]interface{}, len(base)+1)
	for k, v := range base {
		merged[k] = v
	}

	if tc != nil && tc.OrganizationID != nil {
		merged["facilities.organization_id"] = *tc.OrganizationID
	} else {
		merged["facilities.organization_id"] = denyAllOrgID
	}
	return merged
}

// Scope wraps ApplyTenantFilter as a GORM scope for tables carrying a direct
// organization_id column. The policy (superuser passthrough, org pin,
// deny-all) is defined once in ApplyTenantFilter; the scope only translates
// the merged filter into WHERE clauses.
func Scope(tc *TenantContext) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for column, value := range ApplyTenantFilter(tc, nil) {
			db = db.Where(column+" = ?", value)
		}
		return db
	}
}

// FacilityScope restricts facility-hung tables by joining through facilities.
// table is the name of the table carrying the facility_id column. Policy comes
// from ApplyFacilityTenantFilter; an empty filter (superuser) skips the join.
func FacilityScope(tc *TenantContext, table string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		filter := ApplyFacilityTenantFilter(tc, nil)
		if len(filter) == 0 {
			return db
		}
		db = db.Joins(fmt.Sprintf("JOIN facilities ON facilities.id = %s.facility_id", table))
		for column, value := range filter {
			db = db.Where(column+" = ?", value)
		}
		return db
	}
}
