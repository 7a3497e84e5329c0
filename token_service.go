package accounts

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// TokenService issues and verifies signed bearer tokens. Issuance with a
// past or present expiry is a programming error, not a recoverable outcome.
type TokenService interface {
	Issue(claims []Claim, expiresAt time.Time) (string, error)
	TokenValidator
}

// TokenServiceImpl signs HS256 tokens with a shared symmetric secret. The
// same key/issuer/audience triple verifies inbound tokens with zero clock
// skew tolerance.
type TokenServiceImpl struct {
	signingKey []byte
	issuer     string
	audience   jwt.ClaimStrings
	logger     Logger
	now        func() time.Time
}

// NewTokenService creates a TokenService from the injected configuration.
func NewTokenService(cfg Config, logger Logger) *TokenServiceImpl {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenServiceImpl{
		signingKey: []byte(cfg.GetSigningKey()),
		issuer:     cfg.GetIssuer(),
		audience:   cfg.GetAudience(),
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock overrides the issuance clock, useful in tests.
func (ts *TokenServiceImpl) WithClock(clock func() time.Time) *TokenServiceImpl {
	if clock != nil {
		ts.now = clock
	}
	return ts
}

// Issue encodes the claim set into a signed token expiring at expiresAt.
func (ts *TokenServiceImpl) Issue(claims []Claim, expiresAt time.Time) (string, error) {
	if claims == nil {
		return "", goerrors.New("claims must not be nil", goerrors.CategoryValidation)
	}

	issuedAt := ts.now()
	if !expiresAt.After(issuedAt) {
		return "", goerrors.New(
			fmt.Sprintf("token expiry %s is not after issuance %s", expiresAt, issuedAt),
			goerrors.CategoryValidation,
		).WithTextCode(TextCodeInvalidExpiry)
	}

	jwtClaims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Audience:  ts.audience,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	for _, claim := range claims {
		if claim.Type == ClaimTypeID {
			jwtClaims.RegisteredClaims.Subject = claim.Value
			jwtClaims.UID = claim.Value
			continue
		}
		if jwtClaims.Extra == nil {
			jwtClaims.Extra = map[string]string{}
		}
		jwtClaims.Extra[claim.Type] = claim.Value
	}

	return ts.SignClaims(jwtClaims)
}

// SignClaims signs arbitrary claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", goerrors.New("claims must not be nil", goerrors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign JWT")
	}

	return signed, nil
}

// Validate parses and verifies a token string: signature, issuer, audience,
// and expiry with no leeway. Callers treat any error as "no identity
// resolved".
func (ts *TokenServiceImpl) Validate(tokenString string) (AuthClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token validate encountered unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if goerrors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, goerrors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("token validate could not decode claims")
	return nil, ErrTokenMalformed
}
