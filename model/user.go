package model

import (
	"time"
)

// Member roles within an organization.
const (
	RoleOwner    = "owner"
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

type User struct {
	UserID         uint      `gorm:"column:user_id;primaryKey;autoIncrement" json:"userId"`
	Name           string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Email          string    `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	OrganizationID string    `gorm:"column:organization_id;type:varchar(64);not null;index" json:"organizationId"`
	Role           string    `gorm:"column:role;type:varchar(16);default:'employee';not null" json:"role"`
	FCMToken       string    `gorm:"column:fcm_token;type:text" json:"-"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`

	// Relations
	Organization Organization `gorm:"foreignKey:OrganizationID;references:OrganizationID;constraint:OnUpdate:CASCADE" json:"-"`
}

func (User) TableName() string {
	return "user"
}

// Privileged reports whether the user may act on tasks beyond their own.
func (u User) Privileged() bool {
	return u.Role == RoleAdmin || u.Role == RoleOwner
}

type Organization struct {
	OrganizationID string    `gorm:"column:organization_id;type:varchar(64);primaryKey" json:"organizationId"`
	Name           string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (Organization) TableName() string {
	return "organization"
}
