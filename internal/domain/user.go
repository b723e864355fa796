package domain

import "time"

type UserRole string

const (
	RoleStudent       UserRole = "student"
	RoleInstructor    UserRole = "instructor"
	RoleAdministrator UserRole = "administrator"
)

// Valid reports whether the role is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdministrator:
		return true
	}
	return false
}

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
)

func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusInactive, UserStatusSuspended:
		return true
	}
	return false
}

// User is a library member. The lending core only consults its id and status.
type User struct {
	ID        string
	FullName  string
	Email     string
	Role      UserRole
	Status    UserStatus
	CreatedAt time.Time
}
