package accounts

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// StorePolicy holds the tunable rules the bun credential store enforces.
type StorePolicy struct {
	MaxFailedAccessAttempts int
	LockoutWindow           time.Duration
	TokenValidity           string
	MinPasswordLength       int
}

// DefaultStorePolicy mirrors the common identity-store defaults: five
// failed attempts lock the account for five minutes, recovery tokens live
// for a day.
func DefaultStorePolicy() StorePolicy {
	return StorePolicy{
		MaxFailedAccessAttempts: 5,
		LockoutWindow:           5 * time.Minute,
		TokenValidity:           "24h",
		MinPasswordLength:       8,
	}
}

var confirmUserEmailSQL = `UPDATE "users" AS "usr"
SET
	"is_email_verified" = TRUE
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

var applyPasswordHashSQL = `UPDATE "users" AS "usr"
SET
	"password_hash" = ?,
	"failed_access_count" = 0,
	"lockout_until" = NULL
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

// BunCredentialStore is the CredentialStore implementation backed by bun
// repositories. All atomicity and uniqueness guarantees live here.
type BunCredentialStore struct {
	db     *bun.DB
	repo   RepositoryManager
	policy StorePolicy
	logger Logger
	now    func() time.Time
}

var _ CredentialStore = (*BunCredentialStore)(nil)

type CredentialStoreOption func(*BunCredentialStore)

func WithStorePolicy(policy StorePolicy) CredentialStoreOption {
	return func(s *BunCredentialStore) {
		s.policy = policy
	}
}

func WithStoreLogger(logger Logger) CredentialStoreOption {
	return func(s *BunCredentialStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStoreClock injects a custom clock (useful for tests).
func WithStoreClock(clock func() time.Time) CredentialStoreOption {
	return func(s *BunCredentialStore) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewCredentialStore creates a credential store over the given bun DB.
func NewCredentialStore(db *bun.DB, opts ...CredentialStoreOption) *BunCredentialStore {
	store := &BunCredentialStore{
		db:     db,
		repo:   NewRepositoryManager(db),
		policy: DefaultStorePolicy(),
		logger: defLogger{},
		now:    time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}

	return store
}

// Repositories exposes the underlying repository manager for host wiring.
func (s *BunCredentialStore) Repositories() RepositoryManager {
	return s.repo
}

func (s *BunCredentialStore) Create(ctx context.Context, username, email, password string) (*User, StoreResult) {
	if len(password) < s.policy.MinPasswordLength {
		return nil, storeFailed(StoreError{
			Code:        StoreCodePasswordTooShort,
			Description: fmt.Sprintf("Passwords must be at least %d characters.", s.policy.MinPasswordLength),
		})
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, storeFailed(StoreError{Code: StoreCodeStoreFailure, Description: err.Error()})
	}

	user := &User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if id, err := hashid.NewUUID(email); err == nil {
		user.ID = id
	}

	var rejections []StoreError

	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		taken, err := tx.NewSelect().Model((*User)(nil)).
			Where("?TableAlias.username = ?", username).
			Exists(ctx)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check username uniqueness")
		}
		if taken {
			rejections = append(rejections, StoreError{
				Code:        StoreCodeDuplicateUserName,
				Description: fmt.Sprintf("User name '%s' is already taken.", username),
			})
		}

		taken, err = tx.NewSelect().Model((*User)(nil)).
			Where("?TableAlias.email = ?", email).
			Exists(ctx)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check email uniqueness")
		}
		if taken {
			rejections = append(rejections, StoreError{
				Code:        StoreCodeDuplicateEmail,
				Description: fmt.Sprintf("Email '%s' is already taken.", email),
			})
		}

		if len(rejections) > 0 {
			return nil
		}

		created, err := s.repo.Users().CreateTx(ctx, tx, user)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		user = created
		return nil
	})

	if err != nil {
		s.logger.Error("credential store create failed: %v", err)
		return nil, storeFailed(StoreError{Code: StoreCodeStoreFailure, Description: err.Error()})
	}

	if len(rejections) > 0 {
		return nil, storeFailed(rejections...)
	}

	return user, storeOk()
}

func (s *BunCredentialStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	return s.findBy(ctx, "username", username)
}

func (s *BunCredentialStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.findBy(ctx, "email", email)
}

func (s *BunCredentialStore) findBy(ctx context.Context, column, value string) (*User, error) {
	record := &User{}

	err := s.db.NewSelect().Model(record).
		Where(fmt.Sprintf("?TableAlias.%s = ?", column), value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user")
	}

	return record, nil
}

func (s *BunCredentialStore) GenerateEmailConfirmationToken(ctx context.Context, user *User) (string, error) {
	return s.generateToken(ctx, user, TokenPurposeEmailConfirm)
}

func (s *BunCredentialStore) GeneratePasswordResetToken(ctx context.Context, user *User) (string, error) {
	return s.generateToken(ctx, user, TokenPurposePasswordReset)
}

func (s *BunCredentialStore) generateToken(ctx context.Context, user *User, purpose TokenPurpose) (string, error) {
	if user == nil || user.ID == uuid.Nil {
		return "", goerrors.New("cannot mint a token without a persisted user", goerrors.CategoryBadInput)
	}

	record := &SecurityToken{
		UserID:  &user.ID,
		Purpose: purpose,
		Status:  TokenStatusIssued,
	}

	created, err := s.repo.SecurityTokens().Create(ctx, record)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create security token")
	}

	return created.ID.String(), nil
}

func (s *BunCredentialStore) ConfirmEmail(ctx context.Context, user *User, token string) StoreResult {
	record, storeErr := s.consumableToken(ctx, user, token, TokenPurposeEmailConfirm)
	if storeErr != nil {
		return storeFailed(*storeErr)
	}

	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := s.consumeTokenTx(ctx, tx, record); err != nil {
			return err
		}

		res, err := s.repo.Users().RawTx(ctx, tx, confirmUserEmailSQL, user.ID.String())
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mark email as verified")
		}
		if len(res) == 0 {
			return ErrUserNotFound
		}

		return nil
	})

	if err != nil {
		s.logger.Error("confirm email failed for user %s: %v", user.ID, err)
		return storeFailed(StoreError{Code: StoreCodeStoreFailure, Description: err.Error()})
	}

	user.EmailVerified = true
	return storeOk()
}

func (s *BunCredentialStore) ResetPassword(ctx context.Context, user *User, token, newPassword string) StoreResult {
	if len(newPassword) < s.policy.MinPasswordLength {
		return storeFailed(StoreError{
			Code:        StoreCodePasswordTooShort,
			Description: fmt.Sprintf("Passwords must be at least %d characters.", s.policy.MinPasswordLength),
		})
	}

	record, storeErr := s.consumableToken(ctx, user, token, TokenPurposePasswordReset)
	if storeErr != nil {
		return storeFailed(*storeErr)
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return storeFailed(StoreError{Code: StoreCodeStoreFailure, Description: err.Error()})
	}

	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := s.consumeTokenTx(ctx, tx, record); err != nil {
			return err
		}

		res, err := s.repo.Users().RawTx(ctx, tx, applyPasswordHashSQL, hash, user.ID.String())
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update user password")
		}
		if len(res) == 0 {
			return ErrUserNotFound
		}

		return nil
	})

	if err != nil {
		s.logger.Error("reset password failed for user %s: %v", user.ID, err)
		return storeFailed(StoreError{Code: StoreCodeStoreFailure, Description: err.Error()})
	}

	user.PasswordHash = hash
	user.FailedAccessCount = 0
	user.LockoutUntil = nil
	return storeOk()
}

// consumableToken loads a security token and checks it belongs to the user,
// serves the given purpose, has not been consumed, and is still within its
// validity window. A consumed or unknown token fails identically on every
// call.
func (s *BunCredentialStore) consumableToken(ctx context.Context, user *User, token string, purpose TokenPurpose) (*SecurityToken, *StoreError) {
	invalid := &StoreError{
		Code:        StoreCodeInvalidToken,
		Description: "The provided token is not valid for this operation.",
	}

	if user == nil {
		return nil, invalid
	}

	id, err := uuid.Parse(token)
	if err != nil {
		return nil, invalid
	}

	record, err := s.repo.SecurityTokens().GetByID(ctx, id.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, invalid
		}
		return nil, &StoreError{Code: StoreCodeStoreFailure, Description: err.Error()}
	}

	if record.Purpose != purpose || record.UserID == nil || *record.UserID != user.ID {
		return nil, invalid
	}

	if record.Status != TokenStatusIssued {
		return nil, invalid
	}

	if record.CreatedAt != nil {
		expired, err := IsOutsideThresholdPeriod(*record.CreatedAt, s.policy.TokenValidity)
		if err != nil {
			return nil, &StoreError{Code: StoreCodeStoreFailure, Description: err.Error()}
		}
		if expired {
			return nil, &StoreError{
				Code:        StoreCodeExpiredToken,
				Description: "The provided token has expired.",
			}
		}
	}

	return record, nil
}

func (s *BunCredentialStore) consumeTokenTx(ctx context.Context, tx bun.Tx, record *SecurityToken) error {
	consumedAt := s.now()
	_, err := tx.NewRaw(`
		UPDATE "security_tokens" AS "stk"
		SET
			"status" = ?,
			"consumed_at" = ?
		WHERE
			("stk".id = ?)
			AND "stk"."deleted_at" IS NULL;
	`, TokenStatusConsumed, consumedAt, record.ID.String()).Exec(ctx)

	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to consume security token")
	}

	return nil
}

func (s *BunCredentialStore) IncrementFailedAccess(ctx context.Context, user *User) StoreResult {
	if user == nil || user.ID == uuid.Nil {
		return storeFailed(StoreError{Code: StoreCodeStoreFailure, Description: "no persisted user to track"})
	}

	count := user.FailedAccessCount + 1
	var lockoutUntil *time.Time
	if count >= s.policy.MaxFailedAccessAttempts {
		until := s.now().Add(s.policy.LockoutWindow)
		lockoutUntil = &until
		count = 0
	}

	_, err := s.db.NewRaw(`
		UPDATE "users" AS "usr"
		SET
			"failed_access_count" = ?,
			"lockout_until" = ?
		WHERE
			("usr".id = ?)
			AND "usr"."deleted_at" IS NULL;
	`, count, lockoutUntil, user.ID.String()).Exec(ctx)

	if err != nil {
		s.logger.Error("failed access increment failed for user %s: %v", user.ID, err)
		return storeFailed(StoreError{Code: StoreCodeStoreFailure, Description: err.Error()})
	}

	user.FailedAccessCount = count
	user.LockoutUntil = lockoutUntil
	return storeOk()
}

func (s *BunCredentialStore) AttemptPasswordSignIn(ctx context.Context, user *User, password string, rememberMe bool) (SignInResult, error) {
	if user == nil {
		return SignInResult{Status: SignInFailed}, ErrUserNotFound
	}

	if user.RequiresTwoFactor {
		return SignInResult{Status: SignInRequiresTwoFactor}, nil
	}

	if !user.EmailVerified {
		return SignInResult{Status: SignInNotAllowed}, nil
	}

	if user.IsLockedOut(s.now()) {
		return SignInResult{Status: SignInLockedOut, LockoutUntil: user.LockoutUntil}, nil
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if goerrors.Is(err, ErrMismatchedHashAndPassword) {
			return SignInResult{Status: SignInFailed}, nil
		}
		return SignInResult{Status: SignInFailed}, goerrors.Wrap(err, goerrors.CategoryInternal, "password comparison failed")
	}

	_, err := s.db.NewRaw(`
		UPDATE "users" AS "usr"
		SET
			"failed_access_count" = 0,
			"lockout_until" = NULL
		WHERE
			("usr".id = ?)
			AND "usr"."deleted_at" IS NULL;
	`, user.ID.String()).Exec(ctx)

	if err != nil {
		return SignInResult{Status: SignInFailed}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to reset failed access count")
	}

	user.FailedAccessCount = 0
	user.LockoutUntil = nil
	return SignInResult{Status: SignInSuccess}, nil
}
