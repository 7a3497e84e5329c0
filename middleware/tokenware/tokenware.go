// Package tokenware resolves bearer tokens on inbound requests. Unlike a
// gatekeeping JWT middleware it never rejects a request: a missing,
// malformed, or expired token is logged and the request proceeds anonymous,
// leaving the rejection decision to downstream authorization.
package tokenware

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-router"
)

var (
	defaultTokenLookup    = "header:" + router.HeaderAuthorization
	ErrMissingOrMalformed = errors.New("missing or malformed bearer token")
)

// TokenValidator verifies a raw token string. Declared locally so the root
// package can depend on this one without an import cycle.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// AuthClaims is the verified claim set. Mirrors the claim surface of the
// issuing package.
type AuthClaims interface {
	Subject() string
	UserID() string
	IssuedAt() time.Time
	Expires() time.Time
}

// Logger is the printf style logging surface used by the middleware.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

type defLogger struct{}

func (defLogger) Debug(format string, args ...any) {}
func (defLogger) Info(format string, args ...any)  {}
func (defLogger) Warn(format string, args ...any) {
	log.Printf("[WRN] TOKENWARE "+format, args...)
}
func (defLogger) Error(format string, args ...any) {
	log.Printf("[ERR] TOKENWARE "+format, args...)
}

// Resolver exchanges the verified subject id for the full identity record.
// Returning an error means no identity could be attached; the request still
// proceeds.
type Resolver func(ctx context.Context, subjectID string) (any, error)

// ContextEnricher propagates the resolved identity and claims to the
// standard Go context carried by the request.
type ContextEnricher func(ctx context.Context, identity any, claims AuthClaims) context.Context

type Config struct {
	// Filter skips the middleware entirely when it returns true.
	Filter func(router.Context) bool

	// TokenValidator verifies extracted tokens. Required unless key
	// material is provided, in which case a keyfunc backed validator is
	// built from it.
	TokenValidator TokenValidator

	// Resolver loads the identity record for a verified subject id.
	// Optional; without it only the claims are attached.
	Resolver Resolver

	// ContextEnricher attaches identity and claims to the request's
	// standard context.
	ContextEnricher ContextEnricher

	// ContextKey is the router locals key the claims are stored under.
	// Defaults to "user". The resolved identity, when available, is stored
	// under ContextKey as well, with claims moving to ContextKey+"_claims".
	ContextKey string

	// TokenLookup is a comma separated list of extraction sources, for
	// example "header:Authorization,cookie:jwt,query:auth_token".
	TokenLookup string

	// AuthScheme is the expected header scheme prefix. Defaults to
	// "Bearer".
	AuthScheme string

	Logger Logger

	// Static or remote key material for the fallback keyfunc validator.
	SigningKey  SigningKey
	SigningKeys map[string]SigningKey
	JWKSetURLs  []string
	KeyFunc     jwt.Keyfunc
}

type SigningKey struct {
	JWTAlg string
	Key    any
}

// New builds the request token middleware.
func New(config ...Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := GetDefaultConfig(config...)
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			raw, err := ExtractRawToken(ctx, cfg.getExtractors())
			if err != nil {
				cfg.Logger.Debug("no bearer token on request: %v", err)
				return ctx.Next()
			}

			claims, err := cfg.TokenValidator.Validate(raw)
			if err != nil {
				cfg.Logger.Warn("bearer token rejected: %v", err)
				return ctx.Next()
			}

			var identity any
			if cfg.Resolver != nil {
				identity, err = cfg.Resolver(ctx.Context(), claims.UserID())
				if err != nil {
					cfg.Logger.Warn("identity resolution failed for subject '%s': %v", claims.UserID(), err)
					return ctx.Next()
				}
			}

			if identity != nil {
				ctx.Locals(cfg.ContextKey, identity)
				ctx.Locals(cfg.ContextKey+"_claims", claims)
			} else {
				ctx.Locals(cfg.ContextKey, claims)
			}

			if cfg.ContextEnricher != nil {
				ctx.SetContext(cfg.ContextEnricher(ctx.Context(), identity, claims))
			}

			return ctx.Next()
		}
	}
}

// ExtractRawToken runs the extractors in order and returns the first token
// found.
func ExtractRawToken(ctx router.Context, extractors []Extractor) (string, error) {
	var raw string
	var err error

	for _, extractor := range extractors {
		raw, err = extractor(ctx)
		if raw != "" && err == nil {
			break
		}
	}

	return raw, err
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Logger == nil {
		cfg.Logger = defLogger{}
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.TokenValidator == nil {
		if cfg.SigningKey.Key == nil && len(cfg.SigningKeys) == 0 && len(cfg.JWKSetURLs) == 0 && cfg.KeyFunc == nil {
			panic("tokenware: configuration requires a TokenValidator or key material to build one")
		}
		cfg.TokenValidator = NewKeyfuncValidator(cfg)
	}

	return cfg
}

// NewKeyfuncValidator builds a TokenValidator from the configured key
// material: a static signing key, a set of given keys, or remote JWK Set
// URLs.
func NewKeyfuncValidator(cfg Config) TokenValidator {
	kf := cfg.KeyFunc

	if kf == nil {
		if len(cfg.SigningKeys) > 0 || len(cfg.JWKSetURLs) > 0 {
			var givenKeys map[string]keyfunc.GivenKey
			if cfg.SigningKeys != nil {
				givenKeys = make(map[string]keyfunc.GivenKey, len(cfg.SigningKeys))
				for kid, key := range cfg.SigningKeys {
					givenKeys[kid] = keyfunc.NewGivenCustom(key.Key, keyfunc.GivenKeyOptions{
						Algorithm: key.JWTAlg,
					})
				}
			}
			if len(cfg.JWKSetURLs) > 0 {
				var err error
				kf, err = multiKeyfunc(givenKeys, cfg.JWKSetURLs)
				if err != nil {
					panic("tokenware: failed to create keyfunc from JWK Set URL: " + err.Error())
				}
			} else {
				kf = keyfunc.NewGiven(givenKeys).Keyfunc
			}
		} else {
			kf = signingKeyFunc(cfg.SigningKey)
		}
	}

	return keyfuncValidator{keyFunc: kf}
}

type keyfuncValidator struct {
	keyFunc jwt.Keyfunc
}

func (v keyfuncValidator) Validate(tokenString string) (AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &standardClaims{}, v.keyFunc)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*standardClaims)
	if !ok || !token.Valid {
		return nil, ErrMissingOrMalformed
	}

	return claims, nil
}

// standardClaims adapts registered JWT claims to the AuthClaims surface.
type standardClaims struct {
	jwt.RegisteredClaims
	UID string `json:"uid,omitempty"`
}

func (c *standardClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

func (c *standardClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

func (c *standardClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

func (c *standardClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

func multiKeyfunc(givenKeys map[string]keyfunc.GivenKey, jwkSetURLs []string) (jwt.Keyfunc, error) {
	opts := keyfuncOptions(givenKeys)
	m := make(map[string]keyfunc.Options, len(jwkSetURLs))
	for _, url := range jwkSetURLs {
		m[url] = opts
	}
	mopts := keyfunc.MultipleOptions{
		KeySelector: keyfunc.KeySelectorFirst,
	}
	multi, err := keyfunc.GetMultiple(m, mopts)
	if err != nil {
		return nil, fmt.Errorf("failed to get JWK Set URLs: %w", err)
	}
	return multi.Keyfunc, nil
}

func keyfuncOptions(givenKeys map[string]keyfunc.GivenKey) keyfunc.Options {
	return keyfunc.Options{
		GivenKeys: givenKeys,
		RefreshErrorHandler: func(err error) {
			log.Printf("failed to do a background refresh of JWK Set: %s", err)
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	}
}

func (cfg *Config) getExtractors() []Extractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

// GetExtractors parses a token lookup string into its extractor chain, for
// example "header:Authorization,cookie:jwt,query:auth_token,param:token".
func GetExtractors(tokenLookup string, authSchemes ...string) []Extractor {
	extractors := make([]Extractor, 0)

	authScheme := "Bearer"
	if len(authSchemes) > 0 {
		authScheme = authSchemes[0]
	}

	rootParts := strings.Split(tokenLookup, ",")
	for _, rootPart := range rootParts {
		parts := strings.Split(strings.TrimSpace(rootPart), ":")

		for i, el := range parts {
			parts[i] = strings.TrimSpace(el)
		}

		switch parts[0] {
		case "header":
			extractors = append(extractors, tokenFromHeader(parts[1], authScheme))
		case "query":
			extractors = append(extractors, tokenFromQuery(parts[1]))
		case "param":
			extractors = append(extractors, tokenFromParam(parts[1]))
		case "cookie":
			extractors = append(extractors, tokenFromCookie(parts[1]))
		}
	}

	return extractors
}

type Extractor func(c router.Context) (string, error)

// tokenFromHeader returns a function that extracts the token from the
// request header.
func tokenFromHeader(header string, authScheme string) Extractor {
	return func(c router.Context) (string, error) {
		a := c.GetString(header, "")
		l := len(authScheme)
		if l == 0 {
			return "", ErrMissingOrMalformed
		}
		authScheme = strings.TrimSpace(authScheme)
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) {
			return strings.TrimSpace(a[l:]), nil
		}
		return "", ErrMissingOrMalformed
	}
}

// tokenFromQuery returns a function that extracts the token from the query
// string.
func tokenFromQuery(param string) Extractor {
	return func(c router.Context) (string, error) {
		token := c.Query(param, "")
		if token == "" {
			return "", ErrMissingOrMalformed
		}
		return token, nil
	}
}

// tokenFromParam returns a function that extracts the token from the url
// param string.
func tokenFromParam(param string) Extractor {
	return func(c router.Context) (string, error) {
		token := c.Param(param)
		if token == "" {
			return "", ErrMissingOrMalformed
		}
		return token, nil
	}
}

// tokenFromCookie returns a function that extracts the token from the named
// cookie.
func tokenFromCookie(name string) Extractor {
	return func(c router.Context) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrMissingOrMalformed
		}
		return token, nil
	}
}

func signingKeyFunc(key SigningKey) jwt.Keyfunc {
	return func(token *jwt.Token) (any, error) {
		if key.JWTAlg != "" {
			alg, ok := token.Header["alg"].(string)
			if !ok {
				return nil, fmt.Errorf("unexpected JWT signing method: expected %q got: missing json type", key.JWTAlg)
			}
			if alg != key.JWTAlg {
				return nil, fmt.Errorf("unexpected jwt signing method: expected: %q: got: %q", key.JWTAlg, alg)
			}
		}
		return key.Key, nil
	}
}
