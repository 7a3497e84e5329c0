package accounts_test

import (
	"context"
	"testing"

	accounts "github.com/parkhouse-labs/go-accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFormValidator(t *testing.T) {
	t.Run("registers rule sets by kind", func(t *testing.T) {
		v, err := accounts.NewFormValidator(
			accounts.RegistrationRules(),
			accounts.LoginRules(),
		)
		require.NoError(t, err)
		require.NotNil(t, v)
	})

	t.Run("rejects a rule set without a kind", func(t *testing.T) {
		v, err := accounts.NewFormValidator(accounts.NewFormRules(""))
		assert.Error(t, err)
		assert.Nil(t, v)
		assert.Contains(t, err.Error(), "does not declare a form kind")
	})

	t.Run("rejects duplicate kinds", func(t *testing.T) {
		v, err := accounts.NewFormValidator(
			accounts.LoginRules(),
			accounts.LoginRules(),
		)
		assert.Error(t, err)
		assert.Nil(t, v)
		assert.Contains(t, err.Error(), "already registered")
	})
}

func TestFormValidatorDispatch(t *testing.T) {
	t.Run("unregistered kind fails with a lookup error", func(t *testing.T) {
		v := accounts.MustFormValidator(accounts.LoginRules())

		_, err := v.Validate(&accounts.RegistrationForm{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), string(accounts.FormKindRegistration))
	})

	t.Run("cancelled context stops validation", func(t *testing.T) {
		v := accounts.DefaultFormValidator()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := v.ValidateWithContext(ctx, &accounts.LoginForm{Username: "alice", Password: "pw"})
		assert.Error(t, err)
	})
}

func TestRegistrationRules(t *testing.T) {
	v := accounts.DefaultFormValidator()

	t.Run("valid form has no failures", func(t *testing.T) {
		result, err := v.Validate(&accounts.RegistrationForm{
			Username: "alice",
			Email:    "a@x.com",
			Password: "Sup3r$ecret!",
		})
		require.NoError(t, err)
		assert.True(t, result.Valid())
	})

	t.Run("failures preserve rule declaration order", func(t *testing.T) {
		result, err := v.Validate(&accounts.RegistrationForm{})
		require.NoError(t, err)
		require.Len(t, result.Failures, 3)

		assert.Equal(t, "username", result.Failures[0].Field)
		assert.Equal(t, "User name cannot be null or empty", result.Failures[0].Message)
		assert.Equal(t, "email", result.Failures[1].Field)
		assert.Equal(t, "Email cannot be null or empty", result.Failures[1].Message)
		assert.Equal(t, "password", result.Failures[2].Field)
		assert.Equal(t, "Password cannot be null or empty", result.Failures[2].Message)
	})

	t.Run("empty email cascades, format check never runs", func(t *testing.T) {
		result, err := v.Validate(&accounts.RegistrationForm{
			Username: "alice",
			Password: "Sup3r$ecret!",
		})
		require.NoError(t, err)
		require.Len(t, result.Failures, 1)
		assert.Equal(t, "required", result.Failures[0].Code)
		assert.Equal(t, "Email cannot be null or empty", result.Failures[0].Message)
	})

	t.Run("malformed email fails the format check", func(t *testing.T) {
		result, err := v.Validate(&accounts.RegistrationForm{
			Username: "alice",
			Email:    "not-an-email",
			Password: "Sup3r$ecret!",
		})
		require.NoError(t, err)
		require.Len(t, result.Failures, 1)
		assert.Equal(t, "email", result.Failures[0].Code)
		assert.Equal(t, "Email is not a valid email address", result.Failures[0].Message)
		assert.Equal(t, "not-an-email", result.Failures[0].AttemptedValue)
	})
}

func TestLoginRules(t *testing.T) {
	v := accounts.DefaultFormValidator()

	result, err := v.Validate(&accounts.LoginForm{})
	require.NoError(t, err)
	require.Len(t, result.Failures, 2)
	assert.Equal(t, "User name cannot be null or empty", result.Failures[0].Message)
	assert.Equal(t, "Password cannot be null or empty", result.Failures[1].Message)
}

func TestVerifyEmailRules(t *testing.T) {
	v := accounts.DefaultFormValidator()

	result, err := v.Validate(&accounts.VerifyEmailForm{Email: "a@x.com"})
	require.NoError(t, err)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "token", result.Failures[0].Field)
	assert.Equal(t, "The form token cannot be null or empty", result.Failures[0].Message)
}

func TestForgotPasswordRules(t *testing.T) {
	v := accounts.DefaultFormValidator()

	result, err := v.Validate(&accounts.ForgotPasswordForm{})
	require.NoError(t, err)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "Email cannot be null or empty", result.Failures[0].Message)
}

func TestResetPasswordRules(t *testing.T) {
	v := accounts.DefaultFormValidator()

	t.Run("valid form has no failures", func(t *testing.T) {
		result, err := v.Validate(&accounts.ResetPasswordForm{
			Email:           "a@x.com",
			Token:           "token-123",
			Password:        "Sup3r$ecret!",
			ConfirmPassword: "Sup3r$ecret!",
		})
		require.NoError(t, err)
		assert.True(t, result.Valid())
	})

	t.Run("mismatched confirmation yields exactly one failure", func(t *testing.T) {
		result, err := v.Validate(&accounts.ResetPasswordForm{
			Email:           "a@x.com",
			Token:           "token-123",
			Password:        "P1",
			ConfirmPassword: "P2",
		})
		require.NoError(t, err)
		require.Len(t, result.Failures, 1)
		assert.Equal(t, "confirm_password", result.Failures[0].Field)
		assert.Equal(t, "The confirmed password does not match the password provided", result.Failures[0].Message)
	})

	t.Run("empty confirmation reports required, not mismatch", func(t *testing.T) {
		result, err := v.Validate(&accounts.ResetPasswordForm{
			Email:    "a@x.com",
			Token:    "token-123",
			Password: "Sup3r$ecret!",
		})
		require.NoError(t, err)
		require.Len(t, result.Failures, 1)
		assert.Equal(t, "required", result.Failures[0].Code)
		assert.Equal(t, "Confirm password cannot be null or empty", result.Failures[0].Message)
	})

	t.Run("cross field rule runs after per field rules", func(t *testing.T) {
		result, err := v.Validate(&accounts.ResetPasswordForm{
			Password:        "P1",
			ConfirmPassword: "P2",
		})
		require.NoError(t, err)
		require.Len(t, result.Failures, 3)
		assert.Equal(t, "email", result.Failures[0].Field)
		assert.Equal(t, "token", result.Failures[1].Field)
		assert.Equal(t, "The confirmed password does not match the password provided", result.Failures[2].Message)
	})
}
