package entity

import (
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

const (
	MaxUsernameLength = 150
	MaxEmailLength    = 254
	MaxNameLength     = 150
	ForbiddenUsername = "me"
)

type User struct {
	ID                 uint       `gorm:"primaryKey" json:"-"`
	Username           string     `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email              string     `gorm:"size:254;uniqueIndex;not null" json:"email"`
	FirstName          string     `gorm:"size:150" json:"first_name"`
	LastName           string     `gorm:"size:150" json:"last_name"`
	Bio                string     `gorm:"type:text" json:"bio"`
	Role               Role       `gorm:"size:9;not null;default:user" json:"role"`
	PasswordHash       string     `gorm:"size:255" json:"-"`
	IsStaff            bool       `gorm:"not null;default:false" json:"-"`
	IsSuperuser        bool       `gorm:"not null;default:false" json:"-"`
	IsActive           bool       `gorm:"not null;default:true" json:"-"`
	ConfirmationCode   string     `gorm:"size:255" json:"-"`
	ConfirmationSentAt *time.Time `json:"-"`
	DateJoined         time.Time  `gorm:"autoCreateTime" json:"-"`
}

// IsAdmin is true for the admin role and for superusers regardless of role.
func (u *User) IsAdmin() bool {
	return u != nil && (u.Role == RoleAdmin || u.IsSuperuser)
}

func (u *User) IsModerator() bool {
	return u != nil && u.Role == RoleModerator
}
