package domain

import "time"

// Role enumerates helpdesk roles.
type Role string

const (
	RoleClient      Role = "Client"
	RoleServiceDesk Role = "Service Desk"
	RoleITSupport   Role = "IT Support"
	RoleReviewer    Role = "Reviewer"
	RoleManager     Role = "Manager"
)

// UserStatus represents account lifecycle states.
type UserStatus string

const (
	UserStatusPending  UserStatus = "Pending"
	UserStatusActive   UserStatus = "Active"
	UserStatusRejected UserStatus = "Rejected"
)

// User is the account model. Only role, username and id matter to the ticket
// core; the rest is profile data owned by the admin subsystem.
type User struct {
	ID           string
	Username     string
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         Role
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Ref returns the embeddable reference slice of the user.
func (u *User) Ref() *UserRef {
	if u == nil {
		return nil
	}
	return &UserRef{ID: u.ID, Username: u.Username, Name: u.Name, Role: u.Role}
}
