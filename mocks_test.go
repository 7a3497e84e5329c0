package accounts_test

import (
	"context"
	"time"

	accounts "github.com/parkhouse-labs/go-accounts"
	"github.com/stretchr/testify/mock"
)

// MockCredentialStore is a testify mock of the CredentialStore interface.
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) Create(ctx context.Context, username, email, password string) (*accounts.User, accounts.StoreResult) {
	args := m.Called(ctx, username, email, password)
	var user *accounts.User
	if u := args.Get(0); u != nil {
		user = u.(*accounts.User)
	}
	return user, args.Get(1).(accounts.StoreResult)
}

func (m *MockCredentialStore) FindByUsername(ctx context.Context, username string) (*accounts.User, error) {
	args := m.Called(ctx, username)
	var user *accounts.User
	if u := args.Get(0); u != nil {
		user = u.(*accounts.User)
	}
	return user, args.Error(1)
}

func (m *MockCredentialStore) FindByEmail(ctx context.Context, email string) (*accounts.User, error) {
	args := m.Called(ctx, email)
	var user *accounts.User
	if u := args.Get(0); u != nil {
		user = u.(*accounts.User)
	}
	return user, args.Error(1)
}

func (m *MockCredentialStore) GenerateEmailConfirmationToken(ctx context.Context, user *accounts.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *MockCredentialStore) GeneratePasswordResetToken(ctx context.Context, user *accounts.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *MockCredentialStore) ConfirmEmail(ctx context.Context, user *accounts.User, token string) accounts.StoreResult {
	args := m.Called(ctx, user, token)
	return args.Get(0).(accounts.StoreResult)
}

func (m *MockCredentialStore) ResetPassword(ctx context.Context, user *accounts.User, token, newPassword string) accounts.StoreResult {
	args := m.Called(ctx, user, token, newPassword)
	return args.Get(0).(accounts.StoreResult)
}

func (m *MockCredentialStore) IncrementFailedAccess(ctx context.Context, user *accounts.User) accounts.StoreResult {
	args := m.Called(ctx, user)
	return args.Get(0).(accounts.StoreResult)
}

func (m *MockCredentialStore) AttemptPasswordSignIn(ctx context.Context, user *accounts.User, password string, rememberMe bool) (accounts.SignInResult, error) {
	args := m.Called(ctx, user, password, rememberMe)
	return args.Get(0).(accounts.SignInResult), args.Error(1)
}

// MockTokenService is a testify mock of the TokenService interface.
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Issue(claims []accounts.Claim, expiresAt time.Time) (string, error) {
	args := m.Called(claims, expiresAt)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) Validate(tokenString string) (accounts.AuthClaims, error) {
	args := m.Called(tokenString)
	var claims accounts.AuthClaims
	if c := args.Get(0); c != nil {
		claims = c.(accounts.AuthClaims)
	}
	return claims, args.Error(1)
}
