package dto

import (
	"time"

	"github.com/SscSPs/voucher_approval_app/internal/core/domain"
)

// CreateUserRequest defines the data needed by the main admin to add a member.
type CreateUserRequest struct {
	Name     string      `json:"name" validate:"required,max=200"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=8,max=72"`
	Role     domain.Role `json:"role" validate:"required,oneof=staff accountant admin"`
}

// UpdateUserRequest defines the fields a user record may change. Role is immutable.
type UpdateUserRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// UserResponse defines the data returned for a user.
type UserResponse struct {
	UserID         string      `json:"userID"`
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	Role           domain.Role `json:"role"`
	OrganizationID string      `json:"organizationID"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// ListUsersResponse wraps the organization's users.
type ListUsersResponse struct {
	Users []UserResponse `json:"users"`
}

// ToUserResponse converts a domain.User to UserResponse DTO
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:         u.UserID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role,
		OrganizationID: u.OrganizationID,
		CreatedAt:      u.CreatedAt,
	}
}

// ToListUserResponse converts a slice of domain.User to ListUsersResponse
func ToListUserResponse(users []domain.User) ListUsersResponse {
	res := ListUsersResponse{Users: make([]UserResponse, len(users))}
	for i := range users {
		res.Users[i] = ToUserResponse(&users[i])
	}
	return res
}
