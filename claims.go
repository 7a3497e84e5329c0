package accounts

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claim is one (type, value) pair handed to the token issuer. The "id"
// claim carries the subject id.
type Claim struct {
	Type  string
	Value string
}

// ClaimTypeID is the claim type holding the identity record id.
const ClaimTypeID = "id"

// AuthClaims is what a verified bearer token resolves to.
type AuthClaims interface {
	Subject() string
	UserID() string
	IssuedAt() time.Time
	Expires() time.Time
}

// JWTClaims is the concrete claim set encoded into bearer tokens.
type JWTClaims struct {
	jwt.RegisteredClaims
	UID   string            `json:"uid,omitempty"`
	Extra map[string]string `json:"extra,omitempty"`
}

var _ AuthClaims = (*JWTClaims)(nil)

func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the identity record id encoded in the token.
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// ClaimValue returns the value of a non registered claim carried in the
// token, or the empty string when absent.
func (c *JWTClaims) ClaimValue(claimType string) string {
	if claimType == ClaimTypeID {
		return c.UserID()
	}
	return c.Extra[claimType]
}
