package models

import "time"

// User represents a registered account.
//
// Users authenticate per connection with LOGIN (or implicitly with REGISTER)
// and own the files they upload plus the history records their commands
// produce. The password is stored as a bcrypt hash only.
type User struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Username     string     `gorm:"uniqueIndex;not null;size:255" json:"username"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Role         string     `gorm:"default:user;size:50" json:"role"` // user, admin
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// TableName returns the table name for User.
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
