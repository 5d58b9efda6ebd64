package models

import "time"

// UserGroupModel is the lookup table of user roles (e.g. admin, vendor).
// Groups are seeded, never soft-deleted.
type UserGroupModel struct {
	ID   uint   `json:"id"   gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;not null"`
}

func (UserGroupModel) TableName() string { return "user_groups" }

// UserModel represents a registered user of any app client.
type UserModel struct {
	Base
	FirstName   string          `json:"first_name" gorm:"not null"`
	LastName    string          `json:"last_name"  gorm:"not null"`
	BirthDate   time.Time       `json:"birth_date"`
	Email       string          `json:"email"      gorm:"uniqueIndex;not null"`
	Cellphone   string          `json:"cellphone"`
	Password    string          `json:"-"          gorm:"not null"`
	UserGroupID uint            `json:"user_group_id" gorm:"index;not null"`
	UserGroup   *UserGroupModel `json:"-"          gorm:"foreignKey:UserGroupID"`
}

func (UserModel) TableName() string { return "users" }
