package model

import "github.com/google/uuid"

// DefaultWorkspaceName is used when a brand-new user gets a workspace provisioned.
const DefaultWorkspaceName = "Mi Negocio"

// Workspace is the tenancy boundary: one shop with its own catalog, ledger and members.
type Workspace struct {
	BaseModel
	Name    string    `gorm:"type:varchar(255);not null" json:"name"`
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
}
