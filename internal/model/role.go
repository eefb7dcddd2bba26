package model

import (
	"time"

	"github.com/google/uuid"
)

// SystemSuperuserRole is the one role name that bypasses tenant isolation.
// A role only grants superuser when IsSystemRole is true AND the name matches
// exactly; other system roles (e.g. a future auditor) do not.
const SystemSuperuserRole = "System Superuser"

// Role represents a user role with associated permissions.
// OrganizationID is nullable: a null organization means the role is
// system-wide rather than scoped to a single tenant.
type Role struct {
	ID             uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name           string       `gorm:"type:varchar(100);not null;uniqueIndex:idx_roles_name_org" json:"name"`
	Description    string       `gorm:"type:text" json:"description"`
	OrganizationID *uuid.UUID   `gorm:"type:uuid;uniqueIndex:idx_roles_name_org" json:"organization_id"`
	IsSystemRole   bool         `gorm:"default:false" json:"is_system_role"` // Prevent deletion of built-in roles
	Permissions    []Permission `gorm:"many2many:role_permissions;" json:"permissions"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// Permission represents a single capability token that can be granted to roles
type Permission struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"` // e.g. "manage_standards"
	Description string    `gorm:"type:varchar(255);not null" json:"description"`
	Group       string    `gorm:"type:varchar(50);not null;index" json:"group"` // "standards", "users", "observations"...
}

// UserRole assigns a Role to a User, scoped to an organization
type UserRole struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_user_roles_user_role" json:"user_id"`
	RoleID         uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_user_roles_user_role" json:"role_id"`
	Role           Role       `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE;" json:"role"`
	OrganizationID *uuid.UUID `gorm:"type:uuid;index" json:"organization_id"`
	CreatedAt      time.Time  `json:"created_at"`
}
