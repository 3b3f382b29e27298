package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/voucher_approval_app/internal/core/domain"
	portsrepo "github.com/SscSPs/voucher_approval_app/internal/core/ports/repositories"
	"github.com/SscSPs/voucher_approval_app/internal/repositories/memory"
	"github.com/SscSPs/voucher_approval_app/internal/utils"
	"github.com/stretchr/testify/require"
)

const testPassword = "correct horse battery"

// tenants is the shared fixture: "Acme" with a full staff, "Beta" as the foreign organization.
type tenants struct {
	repos portsrepo.RepositoryProvider

	acme       domain.Organization
	grace      domain.User // Acme main admin
	alan       domain.User // Acme second admin
	ada        domain.User // Acme staff
	bob        domain.User // Acme staff
	carol      domain.User // Acme accountant
	beta       domain.Organization
	betaAdmin  domain.User
	betaStaff  domain.User
	betaAccant domain.User
}

var fixtureEpoch = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func seedTenants(t *testing.T) *tenants {
	t.Helper()
	ctx := context.Background()

	hash, err := utils.HashPassword(testPassword)
	require.NoError(t, err)

	ts := &tenants{repos: memory.NewRepositoryProvider(memory.NewStore())}
	created := fixtureEpoch.Add(-24 * time.Hour)
	newUser := func(id, name string, role domain.Role, orgID string) domain.User {
		created = created.Add(time.Minute)
		return domain.User{
			UserID:         id,
			Name:           name,
			Email:          id + "@example.com",
			PasswordHash:   hash,
			Role:           role,
			OrganizationID: orgID,
			CreatedAt:      created,
			LastUpdatedAt:  created,
		}
	}

	ts.acme = domain.Organization{OrganizationID: "org-acme", Name: "Acme", AuditFields: domain.AuditFields{CreatedAt: created}}
	ts.grace = newUser("grace", "Grace", domain.RoleAdmin, ts.acme.OrganizationID)
	require.NoError(t, ts.repos.OrganizationRepo.SaveOrganizationWithAdmin(ctx, ts.acme, ts.grace))

	ts.beta = domain.Organization{OrganizationID: "org-beta", Name: "Beta", AuditFields: domain.AuditFields{CreatedAt: created}}
	ts.betaAdmin = newUser("beta-admin", "Bea", domain.RoleAdmin, ts.beta.OrganizationID)
	require.NoError(t, ts.repos.OrganizationRepo.SaveOrganizationWithAdmin(ctx, ts.beta, ts.betaAdmin))

	ts.alan = newUser("alan", "Alan", domain.RoleAdmin, ts.acme.OrganizationID)
	ts.ada = newUser("ada", "Ada", domain.RoleStaff, ts.acme.OrganizationID)
	ts.bob = newUser("bob", "Bob", domain.RoleStaff, ts.acme.OrganizationID)
	ts.carol = newUser("carol", "Carol", domain.RoleAccountant, ts.acme.OrganizationID)
	ts.betaStaff = newUser("beta-staff", "Ben", domain.RoleStaff, ts.beta.OrganizationID)
	ts.betaAccant = newUser("beta-accountant", "Bianca", domain.RoleAccountant, ts.beta.OrganizationID)

	for _, u := range []domain.User{ts.alan, ts.ada, ts.bob, ts.carol, ts.betaStaff, ts.betaAccant} {
		require.NoError(t, ts.repos.UserRepo.SaveUser(ctx, u))
	}
	return ts
}

// inbox returns the notifications stored for a user, newest first.
func (ts *tenants) inbox(t *testing.T, u domain.User) []domain.Notification {
	t.Helper()
	feed, err := ts.repos.NotificationRepo.ListNotificationsForRecipient(context.Background(), u.OrganizationID, u.UserID, 100)
	require.NoError(t, err)
	return feed
}

func countOfType(feed []domain.Notification, typ domain.NotificationType) int {
	n := 0
	for _, f := range feed {
		if f.Type == typ {
			n++
		}
	}
	return n
}
