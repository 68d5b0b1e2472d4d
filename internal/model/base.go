package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel handles ID (UUID) and the audit trail shared by every table.
// Rows are hard-deleted; there is no soft delete column.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Audit User Tracking
	CreatedBy string `gorm:"type:varchar(64)" json:"created_by,omitempty"`
	UpdatedBy string `gorm:"type:varchar(64)" json:"updated_by,omitempty"`
}

// BeforeCreate generates the UUID unless the caller already set one.
func (base *BaseModel) BeforeCreate(tx *gorm.DB) (err error) {
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	return
}

// Tables lists every entity for AutoMigrate.
func Tables() []interface{} {
	return []interface{}{
		&User{}, &Workspace{}, &WorkspaceMember{}, &Product{}, &Sale{}, &CashMovement{},
	}
}
