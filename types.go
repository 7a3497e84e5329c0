package accounts

import (
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds the injected settings shared by the token issuer, the
// authentication facade, and the request token middleware. The same
// key/issuer/audience triple is used for issuance and verification.
type Config interface {
	GetSigningKey() string
	GetIssuer() string
	GetAudience() []string
	GetTokenTTL() time.Duration
	GetContextKey() string
	GetTokenLookup() string
	GetAuthScheme() string
}

// DefaultTokenTTL is the bearer token lifetime used when the injected
// config does not provide one.
var DefaultTokenTTL = 15 * time.Minute

// SimpleConfig is a value implementation of Config for hosts that do not
// carry their own configuration container.
type SimpleConfig struct {
	SigningKey  string
	Issuer      string
	Audience    []string
	TokenTTL    time.Duration
	ContextKey  string
	TokenLookup string
	AuthScheme  string
}

func (c SimpleConfig) GetSigningKey() string { return c.SigningKey }
func (c SimpleConfig) GetIssuer() string     { return c.Issuer }
func (c SimpleConfig) GetAudience() []string { return c.Audience }

func (c SimpleConfig) GetTokenTTL() time.Duration {
	if c.TokenTTL <= 0 {
		return DefaultTokenTTL
	}
	return c.TokenTTL
}

func (c SimpleConfig) GetContextKey() string {
	if c.ContextKey == "" {
		return "user"
	}
	return c.ContextKey
}

func (c SimpleConfig) GetTokenLookup() string {
	if c.TokenLookup == "" {
		return "header:Authorization"
	}
	return c.TokenLookup
}

func (c SimpleConfig) GetAuthScheme() string {
	if c.AuthScheme == "" {
		return "Bearer"
	}
	return c.AuthScheme
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ACCOUNTS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
