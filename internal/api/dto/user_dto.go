package dto

import "github.com/helpdesk-kit/helpdesk-service/internal/domain"

// LoginRequest payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse is the public profile shape.
type UserResponse struct {
	ID       string            `json:"_id"`
	Username string            `json:"username"`
	Name     string            `json:"name"`
	Email    string            `json:"email"`
	Phone    string            `json:"phone,omitempty"`
	Role     domain.Role       `json:"role"`
	Status   domain.UserStatus `json:"status"`
}

// UserListResponse wraps directory endpoint bodies.
type UserListResponse struct {
	Users []UserResponse `json:"users"`
}

// LoginResponse wraps the login endpoint body.
type LoginResponse struct {
	User UserResponse `json:"user"`
}

// FromUser maps a domain user onto the wire shape.
func FromUser(u *domain.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Email:    u.Email,
		Phone:    u.Phone,
		Role:     u.Role,
		Status:   u.Status,
	}
}
