package models

const (
	AuditActionReplacePermissions = "role.permissions.replace"
	AuditActionMediaDelete        = "media.delete"
)

// AuditEntry records who changed what. Written in the same transaction as
// the change it describes where one exists.
type AuditEntry struct {
	ID        uint64 `gorm:"primaryKey"`
	CreatedAt int64
	ActorID   uint64 `gorm:"not null"`
	Action    string `gorm:"type:varchar(100);not null"`
	RoleID    uint64
	Detail    string `gorm:"type:varchar(2000)"`
}
