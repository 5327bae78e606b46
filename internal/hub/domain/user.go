package domain

import "time"

// UserStatus gates login. Anything but ACTIVE rejects authentication with
// an invalid-state error.
type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusInactive UserStatus = "INACTIVE"
	UserStatusLocked   UserStatus = "LOCKED"
	UserStatusDeleted  UserStatus = "DELETED"
)

// User is the minimal identity record this core consumes. Full user CRUD
// lives with an external collaborator; the hub only reads what claim
// composition and login need.
type User struct {
	ID             string
	TenantID       string
	OrganizationID string
	Email          string
	PasswordHash   string
	Status         UserStatus
	MFASecret      string // TOTP secret, "" when MFA is not enrolled
	LastLoginAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CanLogin reports whether the account is in a loginable state.
func (u User) CanLogin() bool { return u.Status == UserStatusActive }

// MFAEnrolled reports whether login must verify a TOTP code.
func (u User) MFAEnrolled() bool { return u.MFASecret != "" }
