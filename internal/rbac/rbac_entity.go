package rbac

import (
	"time"

	"github.com/google/uuid"
)

// Role groups permissions inside one company, e.g. "hr-admin" or "finance".
type Role struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_role_name,priority:1"`
	Name      string    `gorm:"size:100;not null;uniqueIndex:uq_role_name,priority:2"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Permission is a resource/action pair from internal/domain.
type Permission struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Resource string    `gorm:"size:50;not null;uniqueIndex:uq_permission,priority:1"`
	Action   string    `gorm:"size:50;not null;uniqueIndex:uq_permission,priority:2"`
}

type RolePermission struct {
	RoleID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	PermissionID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

type EmployeeRole struct {
	EmployeeID uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoleID     uuid.UUID `gorm:"type:uuid;primaryKey;index"`
}
