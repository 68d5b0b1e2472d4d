package model

import "github.com/google/uuid"

// Role is the privilege level of a member inside a workspace.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleCashier Role = "cashier"
	RoleViewer  Role = "viewer"
)

// Roles lists every valid role, most privileged first.
var Roles = []Role{RoleAdmin, RoleManager, RoleCashier, RoleViewer}

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// WorkspaceMember grants a user a role within a workspace. Deactivation flips
// IsActive; rows are never deleted.
type WorkspaceMember struct {
	BaseModel
	WorkspaceID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_member_workspace_user" json:"workspace_id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_member_workspace_user;index" json:"user_id"`
	Role        Role       `gorm:"type:varchar(20);not null" json:"role"`
	FullName    *string    `gorm:"type:varchar(255)" json:"full_name"`
	Email       string     `gorm:"type:varchar(255)" json:"email"`
	IsActive    bool       `gorm:"not null" json:"is_active"`
	InvitedBy   *uuid.UUID `gorm:"type:uuid" json:"invited_by"`
}
