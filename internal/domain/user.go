package domain

import "time"

type UserRole string

const (
	RoleUser   UserRole = "USER"
	RoleTenant UserRole = "TENANT"
)

type User struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"uniqueIndex" validate:"required,email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name,omitempty"`
	Role      UserRole  `json:"role" gorm:"type:varchar(16)"`
	IsDeleted bool      `json:"-" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName falls back to the email when no first name is on record.
func (u User) DisplayName() string {
	if u.FirstName == "" {
		return u.Email
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID   int64
	Role UserRole
}

func (a Actor) IsTenant() bool {
	return a.Role == RoleTenant
}
