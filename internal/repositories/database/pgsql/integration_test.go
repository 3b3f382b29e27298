//go:build integration

package pgsql_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/voucher_approval_app/internal/apperrors"
	"github.com/SscSPs/voucher_approval_app/internal/core/domain"
	portsrepo "github.com/SscSPs/voucher_approval_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/voucher_approval_app/internal/core/ports/services"
	"github.com/SscSPs/voucher_approval_app/internal/core/services"
	"github.com/SscSPs/voucher_approval_app/internal/dto"
	"github.com/SscSPs/voucher_approval_app/internal/repositories/database/pgsql"
	"github.com/SscSPs/voucher_approval_app/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const migrationsPath = "file://../../../../migrations"

func setupPostgres(t *testing.T, ctx context.Context) portsrepo.RepositoryProvider {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:17-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "vouchers",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connString := fmt.Sprintf("postgres://test:test@%s:%s/vouchers?sslmode=disable", host, port.Port())
	require.NoError(t, database.RunMigrations(connString, migrationsPath, slog.Default()))

	pool, err := database.NewPgxPool(ctx, connString, database.PoolOptions{MaxConns: 8, Ping: true})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pgsql.NewRepositoryProvider(pool)
}

type stack struct {
	orgs          portssvc.OrganizationSvcFacade
	users         portssvc.UserSvcFacade
	vouchers      portssvc.VoucherSvcFacade
	notifications portssvc.NotificationSvcFacade
}

func newStack(repos portsrepo.RepositoryProvider) stack {
	authorizer := services.NewAuthorizer(repos.UserRepo)
	notifications := services.NewNotificationService(repos.NotificationRepo, repos.UserRepo, authorizer,
		services.WithNotificationRetry(2*time.Second))
	return stack{
		orgs:          services.NewOrganizationService(repos.OrganizationRepo, authorizer),
		users:         services.NewUserService(repos.UserRepo, authorizer),
		vouchers:      services.NewVoucherService(repos.VoucherRepo, authorizer, services.WithVoucherNotifier(notifications)),
		notifications: notifications,
	}
}

func TestIntegration_VoucherLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newStack(setupPostgres(t, ctx))

	org, admin, err := s.orgs.RegisterOrganization(ctx, dto.RegisterRequest{
		OrganizationName: "Acme", Name: "Grace", Email: "grace@acme.io", Password: "correct horse",
	})
	require.NoError(t, err)

	staff, err := s.users.CreateUser(ctx, admin.UserID, dto.CreateUserRequest{Name: "Ada", Email: "ada@acme.io", Password: "correct horse", Role: domain.RoleStaff})
	require.NoError(t, err)
	accountant, err := s.users.CreateUser(ctx, admin.UserID, dto.CreateUserRequest{Name: "Carol", Email: "carol@acme.io", Password: "correct horse", Role: domain.RoleAccountant})
	require.NoError(t, err)

	t.Run("duplicate email across tenants", func(t *testing.T) {
		_, _, err := s.orgs.RegisterOrganization(ctx, dto.RegisterRequest{
			OrganizationName: "Beta", Name: "Ada", Email: "ADA@acme.io", Password: "correct horse",
		})
		assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	})

	neededBy := time.Now().UTC().AddDate(0, 0, 2).Format(time.DateOnly)
	voucher, err := s.vouchers.CreateVoucher(ctx, staff.UserID, dto.CreateVoucherRequest{
		Purpose: "Conference ticket", Amount: json.RawMessage(`"199.99"`), Description: "GopherCon", NeededBy: neededBy,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.VoucherPending, voucher.Status)
	assert.Equal(t, org.OrganizationID, voucher.OrganizationID)

	inbox, err := s.notifications.ListNotifications(ctx, accountant.UserID)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, domain.NotificationVoucherCreated, inbox[0].Type)

	t.Run("one concurrent approval wins", func(t *testing.T) {
		second, err := s.users.CreateUser(ctx, admin.UserID, dto.CreateUserRequest{Name: "Alan", Email: "alan@acme.io", Password: "correct horse", Role: domain.RoleAdmin})
		require.NoError(t, err)

		var wg sync.WaitGroup
		results := make([]error, 2)
		for i, approver := range []string{admin.UserID, second.UserID} {
			wg.Add(1)
			go func(i int, approver string) {
				defer wg.Done()
				_, results[i] = s.vouchers.ApproveVoucher(ctx, approver, voucher.VoucherID)
			}(i, approver)
		}
		wg.Wait()

		wins := 0
		for _, err := range results {
			if err == nil {
				wins++
				continue
			}
			assert.True(t, isLostRace(err), "unexpected error: %v", err)
		}
		assert.Equal(t, 1, wins)
	})

	paid, err := s.vouchers.PayVoucher(ctx, accountant.UserID, voucher.VoucherID)
	require.NoError(t, err)
	assert.Equal(t, domain.VoucherPaid, paid.Status)
	require.NotNil(t, paid.ApprovedBy)
	require.NotNil(t, paid.PaidBy)
	assert.Equal(t, "Carol", *paid.PaidBy)

	_, err = s.vouchers.RejectVoucher(ctx, admin.UserID, voucher.VoucherID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	summary, err := s.vouchers.SummarizeVouchers(ctx, admin.UserID)
	require.NoError(t, err)
	require.Len(t, summary, 1)
	assert.Equal(t, domain.VoucherPaid, summary[0].Status)
	assert.Equal(t, "199.99", summary[0].Total.StringFixed(2))

	page, err := s.vouchers.ListVouchers(ctx, staff.UserID, dto.ListVouchersParams{Search: "gopher", Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page.Vouchers, 1)

	t.Run("organization delete cascades", func(t *testing.T) {
		require.NoError(t, s.orgs.DeleteOrganization(ctx, admin.UserID))
		_, err := s.users.GetUserByID(ctx, staff.UserID)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		_, err = s.users.AuthenticateUser(ctx, "carol@acme.io", "correct horse")
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})
}

// isLostRace matches both ways of losing: the guarded update failed, or the loser read the approved row.
func isLostRace(err error) bool {
	return errors.Is(err, apperrors.ErrConflict) || errors.Is(err, apperrors.ErrInvalidTransition)
}
