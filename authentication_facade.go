package accounts

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// AuthenticationFacade composes the lifecycle engine's login with the token
// service: a successful login becomes a short-lived bearer token carrying
// the subject id.
type AuthenticationFacade struct {
	logger   Logger
	accounts *AccountService
	tokens   TokenService
	tokenTTL time.Duration
	now      func() time.Time
}

type AuthenticationFacadeOption func(*AuthenticationFacade)

func WithFacadeLogger(logger Logger) AuthenticationFacadeOption {
	return func(f *AuthenticationFacade) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithTokenTTL overrides the session token lifetime.
func WithTokenTTL(ttl time.Duration) AuthenticationFacadeOption {
	return func(f *AuthenticationFacade) {
		if ttl > 0 {
			f.tokenTTL = ttl
		}
	}
}

// WithFacadeClock overrides the expiry clock, useful in tests.
func WithFacadeClock(clock func() time.Time) AuthenticationFacadeOption {
	return func(f *AuthenticationFacade) {
		if clock != nil {
			f.now = clock
		}
	}
}

// NewAuthenticationFacade wires the lifecycle engine and token service
// together. The token lifetime defaults to DefaultTokenTTL.
func NewAuthenticationFacade(accounts *AccountService, tokens TokenService, opts ...AuthenticationFacadeOption) (*AuthenticationFacade, error) {
	if accounts == nil {
		return nil, goerrors.New("account service is required", goerrors.CategoryValidation)
	}
	if tokens == nil {
		return nil, goerrors.New("token service is required", goerrors.CategoryValidation)
	}

	facade := &AuthenticationFacade{
		logger:   defLogger{},
		accounts: accounts,
		tokens:   tokens,
		tokenTTL: DefaultTokenTTL,
		now:      time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(facade)
		}
	}

	return facade, nil
}

// Authenticate delegates to Login and, on success, exchanges the identity
// record for a signed session token. Any non success login outcome passes
// through unchanged. Token issuance failure is the one place a successful
// login can still fail.
func (f *AuthenticationFacade) Authenticate(ctx context.Context, form *LoginForm) Outcome {
	outcome := f.accounts.Login(ctx, form)
	if outcome.Status != OutcomeOK {
		return outcome
	}

	user, ok := outcome.Payload.(*User)
	if !ok {
		f.logger.Error("login outcome payload is not an identity record")
		return InternalError(SystemError("The login payload could not be interpreted as a user."))
	}

	claims := []Claim{
		{Type: ClaimTypeID, Value: user.ID.String()},
	}

	token, err := f.tokens.Issue(claims, f.now().Add(f.tokenTTL))
	if err != nil || token == "" {
		f.logger.Error("token issuance failed for user '%s': %v", user.Username, err)
		return InternalError(SystemError(fmt.Sprintf(
			"There was an error generating the jwt token for the user %s", user.Username,
		)))
	}

	return Ok(TokenModel{Token: token})
}
