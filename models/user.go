package models

import (
	"cms/db"
	"cms/utils"
)

type User struct {
	ID        uint64 `gorm:"primaryKey"`
	CreatedAt int64
	UpdatedAt int64
	Name      string `gorm:"type:varchar(100)"`
	Email     string `gorm:"type:varchar(150);index:uniq_email,unique"`
	Password  string `gorm:"type:varchar(128)"`
	PassSalt  string `gorm:"type:varchar(200)"`
	RoleID    uint64 `gorm:"not null"`
	Role      Role   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
}

const saltSize = 60

func UserCreate(name, email, plainTextPassword string, roleID uint64) (u User, err error) {
	u.Email = email
	u.Name = name
	u.RoleID = roleID
	u.SetPassword(plainTextPassword)
	return u, db.Instance.Create(&u).Error
}

func (u *User) SetPassword(plainTextPassword string) {
	u.PassSalt = utils.RandSalt(saltSize)
	u.Password = utils.Sha512String(plainTextPassword + u.PassSalt)
}

func UserLogin(email, plainTextPassword string) (u User, success bool) {
	result := db.Instance.Preload("Role").First(&u, "email = ?", email)
	if result.Error != nil {
		return User{}, false
	}
	if u.Password != utils.Sha512String(plainTextPassword+u.PassSalt) {
		return User{}, false
	}
	return u, true
}
