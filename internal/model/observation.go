package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Observation records a single employee performance observation against a
// Standard. It hangs off a Facility, so tenant filtering goes through
// facility.organization_id rather than a direct organization column.
type Observation struct {
	ID           uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	StandardID   uuid.UUID          `gorm:"type:uuid;not null;index" json:"standard_id"`
	Standard     Standard           `gorm:"foreignKey:StandardID" json:"-"`
	FacilityID   uuid.UUID          `gorm:"type:uuid;not null;index" json:"facility_id"`
	Facility     Facility           `gorm:"foreignKey:FacilityID" json:"-"`
	ObserverID   uuid.UUID          `gorm:"type:uuid;not null;index" json:"observer_id"`
	Observer     User               `gorm:"foreignKey:ObserverID" json:"-"`
	EmployeeName string             `gorm:"type:varchar(255);not null" json:"employee_name"`
	ObservedAt   time.Time          `gorm:"not null" json:"observed_at"`
	Notes        string             `gorm:"type:text" json:"notes"`
	TotalSam     decimal.Decimal    `gorm:"type:decimal(12,4);not null" json:"total_sam"`
	TotalActual  decimal.Decimal    `gorm:"type:decimal(12,4);not null" json:"total_actual"`
	Performance  decimal.Decimal    `gorm:"type:decimal(7,4);not null" json:"performance"` // actual vs SAM, 1.0 = on standard
	Entries      []ObservationEntry `gorm:"foreignKey:ObservationID" json:"entries"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// ObservationEntry is one timed UOM line within an Observation
type ObservationEntry struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ObservationID uuid.UUID       `gorm:"type:uuid;not null;index" json:"observation_id"`
	UomEntryID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"uom_entry_id"`
	UomEntry      UomEntry        `gorm:"foreignKey:UomEntryID" json:"-"`
	Quantity      int             `gorm:"type:int;not null;default:1" json:"quantity"`
	ActualMinutes decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"actual_minutes"`
}
