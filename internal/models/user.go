package models

import "time"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type AuthProvider string

const (
	AuthProviderGoogle AuthProvider = "google"
	AuthProviderGitHub AuthProvider = "github"
	AuthProviderLocal  AuthProvider = "local"
)

// User is an API consumer identified by its API key.
type User struct {
	Base         `bson:",inline"`
	Email        string       `json:"email"         bson:"email"         gorm:"size:191;uniqueIndex;not null"`
	Name         string       `json:"name"          bson:"name"`
	AuthProvider AuthProvider `json:"auth_provider" bson:"auth_provider" gorm:"size:32"`
	ProviderID   string       `json:"provider_id"   bson:"provider_id"   gorm:"size:191"`
	APIKey       string       `json:"-"             bson:"api_key"       gorm:"size:191;uniqueIndex;not null"`
	Role         Role         `json:"role"          bson:"role"          gorm:"size:16;not null;default:'user'"`
	LastLogin    *time.Time   `json:"last_login"    bson:"last_login"`
}

func (User) TableName() string { return "users" }

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }
