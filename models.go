package accounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the identity record: unique username and email, password hash,
// email verification flag, and lockout / two factor state. Mutated only
// through CredentialStore operations.
type User struct {
	bun.BaseModel     `bun:"table:users,alias:usr"`
	ID                uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username          string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email             string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash      string     `bun:"password_hash" json:"-"`
	EmailVerified     bool       `bun:"is_email_verified" json:"is_email_verified,omitempty"`
	RequiresTwoFactor bool       `bun:"requires_two_factor" json:"requires_two_factor,omitempty"`
	FailedAccessCount int        `bun:"failed_access_count" json:"failed_access_count,omitempty"`
	LockoutUntil      *time.Time `bun:"lockout_until,nullzero" json:"lockout_until,omitempty"`
	CreatedAt         *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt         *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt         *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// IsLockedOut reports whether the record is under an active lockout at the
// given instant.
func (u *User) IsLockedOut(now time.Time) bool {
	return u.LockoutUntil != nil && u.LockoutUntil.After(now)
}

// TokenPurpose identifies what a security token may be used for.
type TokenPurpose = string

const (
	TokenPurposeEmailConfirm  TokenPurpose = "email_confirm"
	TokenPurposePasswordReset TokenPurpose = "password_reset"
)

const (
	TokenStatusIssued   = "issued"
	TokenStatusConsumed = "consumed"
)

// SecurityToken is a single-use, time-boxed token backing email
// confirmation and password recovery. The record id doubles as the opaque
// token string handed to the user.
type SecurityToken struct {
	bun.BaseModel `bun:"table:security_tokens,alias:stk"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        *uuid.UUID `bun:"user_id,notnull" json:"user_id,omitempty"`
	User          *User      `bun:"rel:has-one,join:user_id=id" json:"user,omitempty"`
	Purpose       string     `bun:"purpose,notnull" json:"purpose,omitempty"`
	Status        string     `bun:"status,notnull" json:"status,omitempty"`
	ConsumedAt    *time.Time `bun:"consumed_at,nullzero" json:"consumed_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}
