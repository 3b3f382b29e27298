package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/voucher_approval_app/internal/apperrors"
	"github.com/SscSPs/voucher_approval_app/internal/core/domain"
	portssvc "github.com/SscSPs/voucher_approval_app/internal/core/ports/services"
	"github.com/SscSPs/voucher_approval_app/internal/core/services"
	"github.com/SscSPs/voucher_approval_app/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// --- Mock UserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) ListUsersByOrganization(ctx context.Context, organizationID string) ([]domain.User, error) {
	args := m.Called(ctx, organizationID)
	var users []domain.User
	if args.Get(0) != nil {
		users = args.Get(0).([]domain.User)
	}
	return users, args.Error(1)
}

func (m *MockUserRepository) ListUsersByRoles(ctx context.Context, organizationID string, roles ...domain.Role) ([]domain.User, error) {
	args := m.Called(ctx, organizationID, roles)
	var users []domain.User
	if args.Get(0) != nil {
		users = args.Get(0).([]domain.User)
	}
	return users, args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUserName(ctx context.Context, organizationID, userID, name string, now time.Time) error {
	args := m.Called(ctx, organizationID, userID, name, now)
	return args.Error(0)
}

func (m *MockUserRepository) DeleteUser(ctx context.Context, organizationID, userID string) error {
	args := m.Called(ctx, organizationID, userID)
	return args.Error(0)
}

// --- Test Suite Setup ---
type UserServiceTestSuite struct {
	suite.Suite
	ctx         context.Context
	ts          *tenants
	userService portssvc.UserSvcFacade
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.ts = seedTenants(suite.T())
	suite.userService = services.NewUserService(suite.ts.repos.UserRepo, services.NewAuthorizer(suite.ts.repos.UserRepo))
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

func newMember(email string, role domain.Role) dto.CreateUserRequest {
	return dto.CreateUserRequest{Name: "New Member", Email: email, Password: testPassword, Role: role}
}

func (suite *UserServiceTestSuite) TestCreateUser_MainAdminOnly() {
	user, err := suite.userService.CreateUser(suite.ctx, suite.ts.grace.UserID, newMember(" Dan@Example.com ", domain.RoleStaff))
	suite.Require().NoError(err)
	suite.Equal("dan@example.com", user.Email)
	suite.Equal(suite.ts.acme.OrganizationID, user.OrganizationID)
	suite.NotEqual(testPassword, user.PasswordHash)

	for _, u := range []domain.User{suite.ts.alan, suite.ts.carol, suite.ts.ada, suite.ts.betaStaff} {
		_, err := suite.userService.CreateUser(suite.ctx, u.UserID, newMember("x-"+u.UserID+"@example.com", domain.RoleStaff))
		suite.ErrorIs(err, apperrors.ErrForbidden, "user %s", u.Name)
	}

	// Beta's own main admin manages Beta.
	betaUser, err := suite.userService.CreateUser(suite.ctx, suite.ts.betaAdmin.UserID, newMember("erin@example.com", domain.RoleAccountant))
	suite.Require().NoError(err)
	suite.Equal(suite.ts.beta.OrganizationID, betaUser.OrganizationID)
}

func (suite *UserServiceTestSuite) TestCreateUser_Validation() {
	_, err := suite.userService.CreateUser(suite.ctx, suite.ts.grace.UserID, dto.CreateUserRequest{Email: "not-an-email", Password: "short", Role: "owner"})
	var verr *apperrors.ValidationError
	suite.Require().True(errors.As(err, &verr))
	suite.ElementsMatch([]string{"name", "email", "password", "role"}, verr.FieldNames())

	_, err = suite.userService.CreateUser(suite.ctx, suite.ts.grace.UserID, newMember("ADA@example.com", domain.RoleStaff))
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *UserServiceTestSuite) TestMainAdminPassesOnWhenDeleted() {
	ctx := suite.ctx
	require.NoError(suite.T(), suite.ts.repos.UserRepo.DeleteUser(ctx, suite.ts.acme.OrganizationID, suite.ts.grace.UserID))

	_, err := suite.userService.CreateUser(ctx, suite.ts.alan.UserID, newMember("dan@example.com", domain.RoleStaff))
	suite.NoError(err)
}

func (suite *UserServiceTestSuite) TestRenameUser() {
	renamed, err := suite.userService.RenameUser(suite.ctx, suite.ts.grace.UserID, suite.ts.ada.UserID, dto.UpdateUserRequest{Name: " Ada Lovelace "})
	suite.Require().NoError(err)
	suite.Equal("Ada Lovelace", renamed.Name)
	suite.Equal(domain.RoleStaff, renamed.Role)

	_, err = suite.userService.RenameUser(suite.ctx, suite.ts.grace.UserID, suite.ts.betaStaff.UserID, dto.UpdateUserRequest{Name: "Hijacked"})
	suite.ErrorIs(err, apperrors.ErrNotFound)

	_, err = suite.userService.RenameUser(suite.ctx, suite.ts.alan.UserID, suite.ts.ada.UserID, dto.UpdateUserRequest{Name: "Nope"})
	suite.ErrorIs(err, apperrors.ErrForbidden)

	_, err = suite.userService.RenameUser(suite.ctx, suite.ts.grace.UserID, suite.ts.ada.UserID, dto.UpdateUserRequest{})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *UserServiceTestSuite) TestDeleteUser() {
	err := suite.userService.DeleteUser(suite.ctx, suite.ts.grace.UserID, suite.ts.grace.UserID)
	suite.ErrorIs(err, apperrors.ErrForbidden)

	err = suite.userService.DeleteUser(suite.ctx, suite.ts.grace.UserID, suite.ts.betaStaff.UserID)
	suite.ErrorIs(err, apperrors.ErrNotFound)

	suite.Require().NoError(suite.userService.DeleteUser(suite.ctx, suite.ts.grace.UserID, suite.ts.bob.UserID))
	_, err = suite.userService.GetUserByID(suite.ctx, suite.ts.bob.UserID)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *UserServiceTestSuite) TestListUsers() {
	users, err := suite.userService.ListUsers(suite.ctx, suite.ts.carol.UserID)
	suite.Require().NoError(err)
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Name)
	}
	suite.Equal([]string{"Grace", "Alan", "Ada", "Bob", "Carol"}, names)

	_, err = suite.userService.ListUsers(suite.ctx, suite.ts.ada.UserID)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *UserServiceTestSuite) TestAuthenticateUser() {
	user, err := suite.userService.AuthenticateUser(suite.ctx, "ADA@example.com", testPassword)
	suite.Require().NoError(err)
	suite.Equal(suite.ts.ada.UserID, user.UserID)

	_, err = suite.userService.AuthenticateUser(suite.ctx, "ada@example.com", "wrong password")
	suite.ErrorIs(err, apperrors.ErrUnauthorized)

	_, err = suite.userService.AuthenticateUser(suite.ctx, "nobody@example.com", testPassword)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func TestAuthenticateUser_StoreFailure(t *testing.T) {
	repo := new(MockUserRepository)
	storeErr := errors.New("pool closed")
	repo.On("FindUserByEmail", mock.Anything, "ada@example.com").Return(nil, storeErr)

	svc := services.NewUserService(repo, services.NewAuthorizer(repo))
	_, err := svc.AuthenticateUser(context.Background(), "Ada@example.com", testPassword)

	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, apperrors.ErrUnauthorized)
	repo.AssertExpectations(t)
}

func TestAuthorizer_MainAdminLookupFailure(t *testing.T) {
	repo := new(MockUserRepository)
	admin := &domain.User{UserID: "a1", Name: "Admin", Role: domain.RoleAdmin, OrganizationID: "org"}
	repo.On("FindUserByID", mock.Anything, "a1").Return(admin, nil)
	repo.On("ListUsersByRoles", mock.Anything, "org", []domain.Role{domain.RoleAdmin}).Return(nil, errors.New("timeout"))

	authorizer := services.NewAuthorizer(repo)
	identity, err := authorizer.ResolveIdentity(context.Background(), "a1")
	require.NoError(t, err)

	err = authorizer.Authorize(context.Background(), identity, domain.ActionManageUsers, nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrForbidden)
	repo.AssertExpectations(t)
}
