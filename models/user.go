package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleClient   UserRole = "client"
	RoleProvider UserRole = "provider"
	RoleAdmin    UserRole = "admin"
)

type User struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	FullName        string    `json:"full_name" gorm:"size:255;not null"`
	Email           string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash    string    `json:"-" gorm:"size:255;not null"`
	Role            UserRole  `json:"role" gorm:"type:varchar(20);not null;default:'client';check:role IN ('client','provider','admin')"`
	Phone           string    `json:"phone" gorm:"size:20"`
	City            string    `json:"city" gorm:"size:100"`
	ProfileImageURL *string   `json:"profile_image_url" gorm:"size:500"`
	IsVerified      bool      `json:"is_verified" gorm:"default:false"`
	IsActive        bool      `json:"is_active" gorm:"default:true"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Projects      []Project      `json:"projects,omitempty" gorm:"foreignKey:ClientID"`
	Notifications []Notification `json:"notifications,omitempty" gorm:"foreignKey:UserID"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate is a GORM hook that runs before creating a user
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleClient
	}
	return nil
}

// IsValidRole checks if the user role is valid
func (u *User) IsValidRole() bool {
	switch u.Role {
	case RoleClient, RoleProvider, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsClient checks if the user is a client
func (u *User) IsClient() bool {
	return u.Role == RoleClient
}

// IsProvider checks if the user is a service provider
func (u *User) IsProvider() bool {
	return u.Role == RoleProvider
}

// IsAdmin checks if the user is an admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
