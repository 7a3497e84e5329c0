package accounts

import (
	"context"
	"time"
)

// SignInStatus is the outcome of one password sign-in attempt against an
// identity record.
type SignInStatus int

const (
	SignInFailed SignInStatus = iota
	SignInSuccess
	SignInRequiresTwoFactor
	SignInNotAllowed
	SignInLockedOut
)

func (s SignInStatus) String() string {
	switch s {
	case SignInSuccess:
		return "success"
	case SignInRequiresTwoFactor:
		return "requires_two_factor"
	case SignInNotAllowed:
		return "not_allowed"
	case SignInLockedOut:
		return "locked_out"
	default:
		return "failed"
	}
}

// SignInResult carries the sign-in status plus the lockout deadline when
// the record is locked out.
type SignInResult struct {
	Status       SignInStatus
	LockoutUntil *time.Time
}

// StoreError is one rejection reported by the credential store, with a
// stable store-level code and a description.
type StoreError struct {
	Code        string
	Description string
}

// StoreResult reports whether a store mutation succeeded and, when it did
// not, why.
type StoreResult struct {
	Succeeded bool
	Errors    []StoreError
}

func storeOk() StoreResult {
	return StoreResult{Succeeded: true}
}

func storeFailed(errs ...StoreError) StoreResult {
	return StoreResult{Errors: errs}
}

// Store-level error codes surfaced through StoreResult.
const (
	StoreCodeDuplicateUserName = "DuplicateUserName"
	StoreCodeDuplicateEmail    = "DuplicateEmail"
	StoreCodePasswordTooShort  = "PasswordTooShort"
	StoreCodeInvalidToken      = "InvalidToken"
	StoreCodeExpiredToken      = "ExpiredToken"
	StoreCodeStoreFailure      = "StoreFailure"
)

// CredentialStore owns identity records. The engine never mutates a record
// except through these operations; uniqueness and atomicity guarantees live
// here, not in the engine.
type CredentialStore interface {
	// Create registers a new identity record with a hashed password.
	// Rejections (duplicates, password policy) are reported through the
	// StoreResult, mirroring how the engine maps them to outcomes.
	Create(ctx context.Context, username, email, password string) (*User, StoreResult)

	// FindByUsername returns ErrUserNotFound when no record matches.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindByEmail returns ErrUserNotFound when no record matches.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// GenerateEmailConfirmationToken mints a single-use token for email
	// ownership verification. Delivery is the caller's concern.
	GenerateEmailConfirmationToken(ctx context.Context, user *User) (string, error)

	// GeneratePasswordResetToken mints a single-use token for password
	// recovery. Delivery is the caller's concern.
	GeneratePasswordResetToken(ctx context.Context, user *User) (string, error)

	// ConfirmEmail consumes a confirmation token and marks the record's
	// email as verified. A consumed or unknown token fails the same way
	// on every call.
	ConfirmEmail(ctx context.Context, user *User, token string) StoreResult

	// ResetPassword consumes a reset token and applies the new password.
	ResetPassword(ctx context.Context, user *User, token, newPassword string) StoreResult

	// IncrementFailedAccess bumps the record's failed access counter and
	// applies the lockout policy when the threshold is crossed.
	IncrementFailedAccess(ctx context.Context, user *User) StoreResult

	// AttemptPasswordSignIn checks the password against the record,
	// honoring the two factor flag, the email verification requirement
	// and any active lockout, in that order. The password is never
	// checked for a locked out record.
	AttemptPasswordSignIn(ctx context.Context, user *User, password string, rememberMe bool) (SignInResult, error)
}
