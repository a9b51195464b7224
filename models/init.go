package models

import (
	"log"

	"cms/config"
	"cms/db"
)

func Init() {
	db.Instance.AutoMigrate(&Permission{})
	db.Instance.AutoMigrate(&Role{})
	db.Instance.AutoMigrate(&RolePermission{})
	db.Instance.AutoMigrate(&User{})
	db.Instance.AutoMigrate(&MediaFile{})
	db.Instance.AutoMigrate(&AuditEntry{})

	Seed()
}

// Seed inserts the permission catalog and the built-in roles. Additive only:
// existing rows are left untouched so the catalog can grow between releases.
func Seed() {
	for i := range Catalog {
		p := Catalog[i]
		db.Instance.Where(Permission{Name: p.Name}).FirstOrCreate(&p)
	}
	for _, r := range []Role{
		{Name: ReservedRoleName, Reserved: true},
		{Name: "staff"},
		{Name: "client"},
	} {
		role := r
		db.Instance.Where(Role{Name: role.Name}).FirstOrCreate(&role)
	}

	// First run: create the bootstrap admin account if one is configured
	var userCount int64
	db.Instance.Model(&User{}).Count(&userCount)
	if userCount == 0 && config.INITIAL_ADMIN_EMAIL != "" && config.INITIAL_ADMIN_PASSWORD != "" {
		var adminRole Role
		db.Instance.Where(Role{Name: ReservedRoleName}).First(&adminRole)
		if _, err := UserCreate("Admin", config.INITIAL_ADMIN_EMAIL, config.INITIAL_ADMIN_PASSWORD, adminRole.ID); err != nil {
			log.Printf("could not create initial admin user: %v", err)
		}
	}
}
