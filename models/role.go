package models

// ReservedRoleName is the role that implicitly holds every permission.
// Its association set is never persisted and never editable.
const ReservedRoleName = "admin"

type Role struct {
	ID        uint64 `gorm:"primaryKey" json:"id"`
	CreatedAt int64  `json:"-"`
	UpdatedAt int64  `json:"-"`
	Name      string `gorm:"type:varchar(100);index:uniq_role_name,unique;not null" json:"name"`
	Reserved  bool   `gorm:"not null;default:0" json:"reserved"`
}

// RolePermission links a role to a permission it grants. Rows are replaced
// wholesale per role, never patched one by one.
type RolePermission struct {
	ID           uint64     `gorm:"primaryKey"`
	RoleID       uint64     `gorm:"index:uniq_role_permission,unique;not null"`
	Role         Role       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	PermissionID uint64     `gorm:"index:uniq_role_permission,unique;not null"`
	Permission   Permission `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
