package dto

import (
	"time"

	"github.com/SscSPs/voucher_approval_app/internal/core/domain"
)

// RegisterRequest creates an organization together with its first (main) admin.
type RegisterRequest struct {
	OrganizationName string `json:"organizationName" validate:"required,max=200"`
	Name             string `json:"name" validate:"required,max=200"`
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=8,max=72"`
}

// RegisterResponse returns the created organization and admin.
type RegisterResponse struct {
	Organization OrganizationResponse `json:"organization"`
	User         UserResponse         `json:"user"`
}

// LoginRequest represents the credentials for password login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// GoogleLoginRequest carries either an authorization code or an ID token from Google.
type GoogleLoginRequest struct {
	Code    string `json:"code"`
	IDToken string `json:"idToken"`
}

// LoginResponse represents the response for a successful login.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// OrganizationResponse defines the data returned for an organization.
type OrganizationResponse struct {
	OrganizationID string    `json:"organizationID"`
	Name           string    `json:"name"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ToOrganizationResponse converts a domain.Organization to OrganizationResponse DTO
func ToOrganizationResponse(o *domain.Organization) OrganizationResponse {
	return OrganizationResponse{
		OrganizationID: o.OrganizationID,
		Name:           o.Name,
		CreatedAt:      o.CreatedAt,
	}
}
