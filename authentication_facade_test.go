package accounts_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	accounts "github.com/parkhouse-labs/go-accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewAuthenticationFacade(t *testing.T) {
	service := newAccountService(t, new(MockCredentialStore))
	tokens := accounts.NewTokenService(newTokenConfig(), nil)

	t.Run("requires an account service", func(t *testing.T) {
		facade, err := accounts.NewAuthenticationFacade(nil, tokens)
		assert.Error(t, err)
		assert.Nil(t, facade)
	})

	t.Run("requires a token service", func(t *testing.T) {
		facade, err := accounts.NewAuthenticationFacade(service, nil)
		assert.Error(t, err)
		assert.Nil(t, facade)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	form := &accounts.LoginForm{Username: "alice", Password: "Sup3r$ecret!"}

	user := &accounts.User{
		ID:       uuid.New(),
		Username: "alice",
		Email:    "a@x.com",
	}

	t.Run("non success outcomes pass through unchanged", func(t *testing.T) {
		store := new(MockCredentialStore)
		service := newAccountService(t, store)
		tokens := accounts.NewTokenService(newTokenConfig(), nil)

		facade, err := accounts.NewAuthenticationFacade(service, tokens)
		require.NoError(t, err)

		store.On("FindByUsername", ctx, "alice").
			Return(nil, accounts.ErrUserNotFound).Once()

		outcome := facade.Authenticate(ctx, form)

		assert.Equal(t, accounts.OutcomeNotFound, outcome.Status)
		require.Len(t, outcome.Errors, 1)
		assert.Equal(t, accounts.CodeNotFound, outcome.Errors[0].Code)

		store.AssertExpectations(t)
	})

	t.Run("nil form passes through as bad request", func(t *testing.T) {
		service := newAccountService(t, new(MockCredentialStore))
		tokens := accounts.NewTokenService(newTokenConfig(), nil)

		facade, err := accounts.NewAuthenticationFacade(service, tokens)
		require.NoError(t, err)

		outcome := facade.Authenticate(ctx, nil)

		assert.Equal(t, accounts.OutcomeBadRequest, outcome.Status)
	})

	t.Run("successful login yields a verifiable token", func(t *testing.T) {
		store := new(MockCredentialStore)
		service := newAccountService(t, store)
		tokens := accounts.NewTokenService(newTokenConfig(), nil)

		facade, err := accounts.NewAuthenticationFacade(service, tokens)
		require.NoError(t, err)

		store.On("FindByUsername", ctx, "alice").Return(user, nil).Once()
		store.On("AttemptPasswordSignIn", ctx, user, "Sup3r$ecret!", false).
			Return(accounts.SignInResult{Status: accounts.SignInSuccess}, nil).Once()

		outcome := facade.Authenticate(ctx, form)

		require.Equal(t, accounts.OutcomeOK, outcome.Status)
		payload, ok := outcome.Payload.(accounts.TokenModel)
		require.True(t, ok)
		require.NotEmpty(t, payload.Token)

		claims, err := tokens.Validate(payload.Token)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.Subject())

		store.AssertExpectations(t)
	})

	t.Run("token lifetime follows the configured ttl", func(t *testing.T) {
		store := new(MockCredentialStore)
		service := newAccountService(t, store)
		tokens := accounts.NewTokenService(newTokenConfig(), nil)

		now := time.Now()
		facade, err := accounts.NewAuthenticationFacade(service, tokens,
			accounts.WithTokenTTL(30*time.Minute),
			accounts.WithFacadeClock(func() time.Time { return now }),
		)
		require.NoError(t, err)

		store.On("FindByUsername", ctx, "alice").Return(user, nil).Once()
		store.On("AttemptPasswordSignIn", ctx, user, "Sup3r$ecret!", false).
			Return(accounts.SignInResult{Status: accounts.SignInSuccess}, nil).Once()

		outcome := facade.Authenticate(ctx, form)
		require.Equal(t, accounts.OutcomeOK, outcome.Status)

		payload := outcome.Payload.(accounts.TokenModel)
		claims, err := tokens.Validate(payload.Token)
		require.NoError(t, err)
		assert.WithinDuration(t, now.Add(30*time.Minute), claims.Expires(), time.Second)
	})

	t.Run("issuance failure names the username", func(t *testing.T) {
		store := new(MockCredentialStore)
		service := newAccountService(t, store)
		tokens := new(MockTokenService)

		facade, err := accounts.NewAuthenticationFacade(service, tokens)
		require.NoError(t, err)

		store.On("FindByUsername", ctx, "alice").Return(user, nil).Once()
		store.On("AttemptPasswordSignIn", ctx, user, "Sup3r$ecret!", false).
			Return(accounts.SignInResult{Status: accounts.SignInSuccess}, nil).Once()
		tokens.On("Issue", mock.Anything, mock.Anything).
			Return("", errors.New("signer unavailable")).Once()

		outcome := facade.Authenticate(ctx, form)

		assert.Equal(t, accounts.OutcomeInternalError, outcome.Status)
		require.Len(t, outcome.Errors, 1)
		assert.Equal(t, accounts.CodeSystem, outcome.Errors[0].Code)
		assert.Equal(t,
			"There was an error generating the jwt token for the user alice",
			outcome.Errors[0].Detail)

		tokens.AssertExpectations(t)
		store.AssertExpectations(t)
	})
}
