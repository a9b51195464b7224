package models

// Permission is a single entry of the permission catalog. Rows are seeded
// from Catalog below and are only ever added to, never renamed or removed.
type Permission struct {
	ID     uint64 `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"type:varchar(100);index:uniq_permission_name,unique;not null" json:"name"`
	Label  string `gorm:"type:varchar(200)" json:"label"`
	Module string `gorm:"type:varchar(100);not null" json:"module"`
}

// Catalog is the compiled-in permission registry, grouped by admin module.
var Catalog = []Permission{
	{Name: "users.view", Label: "View users", Module: "Users"},
	{Name: "users.manage", Label: "Create and edit users", Module: "Users"},
	{Name: "users.invite", Label: "Invite new users", Module: "Users"},
	{Name: "roles.manage", Label: "Edit roles and permissions", Module: "Permissions"},
	{Name: "media.view", Label: "Browse the media library", Module: "Media"},
	{Name: "media.upload", Label: "Upload files", Module: "Media"},
	{Name: "media.delete", Label: "Delete files", Module: "Media"},
	{Name: "blog.view", Label: "View blog posts", Module: "Blog"},
	{Name: "blog.manage", Label: "Create and edit blog posts", Module: "Blog"},
	{Name: "portfolio.view", Label: "View portfolio items", Module: "Portfolio"},
	{Name: "portfolio.manage", Label: "Create and edit portfolio items", Module: "Portfolio"},
	{Name: "orders.view", Label: "View orders", Module: "Orders"},
	{Name: "orders.manage", Label: "Update orders", Module: "Orders"},
	{Name: "inbox.view", Label: "Read inbox messages", Module: "Inbox"},
	{Name: "settings.manage", Label: "Change site settings", Module: "Settings"},
}
