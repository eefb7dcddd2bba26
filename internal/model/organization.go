package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Organization is the tenant: the unit of data isolation.
// Code is the natural key the CSV importer deduplicates on.
type Organization struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code      string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Facility is a physical site belonging to an Organization
type Facility struct {
	ID             uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name           string       `gorm:"type:varchar(255);not null;uniqueIndex:idx_facilities_name_org" json:"name"`
	Ref            string       `gorm:"type:varchar(100)" json:"ref"`
	City           string       `gorm:"type:varchar(100)" json:"city"`
	OrganizationID uuid.UUID    `gorm:"type:uuid;not null;index;uniqueIndex:idx_facilities_name_org" json:"organization_id"`
	Organization   Organization `gorm:"foreignKey:OrganizationID" json:"-"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// Department is a functional unit within a Facility
type Department struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_departments_name_facility" json:"name"`
	FacilityID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_departments_name_facility" json:"facility_id"`
	Facility   Facility  `gorm:"foreignKey:FacilityID" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Area is a work area within a Department
type Area struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_areas_name_department" json:"name"`
	DepartmentID uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_areas_name_department" json:"department_id"`
	Department   Department `gorm:"foreignKey:DepartmentID" json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Standard is a documented work procedure tied to an Area.
// FacilityID/DepartmentID/OrganizationID are denormalized for query convenience;
// the importer guarantees they are mutually consistent with AreaID.
type Standard struct {
	ID                   uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name                 string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_standards_name_area" json:"name"`
	AreaID               uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_standards_name_area" json:"area_id"`
	Area                 Area       `gorm:"foreignKey:AreaID" json:"-"`
	DepartmentID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"department_id"`
	FacilityID           uuid.UUID  `gorm:"type:uuid;not null;index" json:"facility_id"`
	OrganizationID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"organization_id"`
	BestPractices        []string   `gorm:"serializer:json;type:jsonb" json:"best_practices"`
	ProcessOpportunities []string   `gorm:"serializer:json;type:jsonb" json:"process_opportunities"`
	UomEntries           []UomEntry `gorm:"foreignKey:StandardID" json:"uom_entries"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// UomEntry is a unit-of-measure line item on a Standard.
// SamValue is the standard allowed minutes used for performance scoring.
type UomEntry struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	StandardID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"standard_id"`
	Code        string          `gorm:"type:varchar(100);not null" json:"code"`
	Description string          `gorm:"type:varchar(255)" json:"description"`
	SamValue    decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"sam_value"`
	Tags        []string        `gorm:"serializer:json;type:jsonb" json:"tags"`
	CreatedAt   time.Time       `json:"created_at"`
}
