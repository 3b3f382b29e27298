package services

import (
	portsrepo "github.com/SscSPs/voucher_approval_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/voucher_approval_app/internal/core/ports/services"
	"github.com/SscSPs/voucher_approval_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Every service shares one authorizer so identity resolution behaves the same everywhere.
	container.Authorizer = NewAuthorizer(repos.UserRepo)

	container.Notification = NewNotificationService(
		repos.NotificationRepo,
		repos.UserRepo,
		container.Authorizer,
		WithNotificationFeedSize(cfg.NotificationFeedSize),
		WithNotificationRetry(cfg.NotificationRetryTimeout),
	)

	container.Voucher = NewVoucherService(
		repos.VoucherRepo,
		container.Authorizer,
		WithVoucherNotifier(container.Notification),
	)

	container.User = NewUserService(repos.UserRepo, container.Authorizer)
	container.Organization = NewOrganizationService(repos.OrganizationRepo, container.Authorizer)

	container.TokenService = NewTokenService(cfg)
	container.GoogleOAuthHandler = NewGoogleOAuthHandlerService(cfg)

	return container
}
