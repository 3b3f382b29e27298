package domain

import (
	"sort"
	"time"
)

// Role is the fixed job function of a user inside its organization.
type Role string

const (
	RoleStaff      Role = "staff"
	RoleAccountant Role = "accountant"
	RoleAdmin      Role = "admin"
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleStaff, RoleAccountant, RoleAdmin:
		return true
	}
	return false
}

// User represents a member of an organization. Role and organization never change after creation.
type User struct {
	UserID         string    `json:"userID" db:"user_id"`
	Name           string    `json:"name" db:"name"`
	Email          string    `json:"email" db:"email"`
	PasswordHash   string    `json:"-" db:"password_hash"`
	Role           Role      `json:"role" db:"role"`
	OrganizationID string    `json:"organizationID" db:"organization_id"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	LastUpdatedAt  time.Time `json:"lastUpdatedAt" db:"last_updated_at"`
}

// Identity returns the identity the user acts under.
func (u User) Identity() Identity {
	return Identity{
		UserID:         u.UserID,
		Name:           u.Name,
		Role:           u.Role,
		OrganizationID: u.OrganizationID,
	}
}

// MainAdmin picks the earliest-created admin among users, ties broken by id.
// The second return value is false when there is no admin.
func MainAdmin(users []User) (User, bool) {
	admins := make([]User, 0, len(users))
	for _, u := range users {
		if u.Role == RoleAdmin {
			admins = append(admins, u)
		}
	}
	if len(admins) == 0 {
		return User{}, false
	}
	sort.Slice(admins, func(i, j int) bool {
		if admins[i].CreatedAt.Equal(admins[j].CreatedAt) {
			return admins[i].UserID < admins[j].UserID
		}
		return admins[i].CreatedAt.Before(admins[j].CreatedAt)
	})
	return admins[0], true
}
