package accounts

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

// AccountService is the account lifecycle engine: registration, login, email
// verification, and password recovery, each a short-lived flow over one
// identity record. Every entry point returns exactly one Outcome; raw errors
// never cross this boundary.
type AccountService struct {
	logger    Logger
	store     CredentialStore
	validator *FormValidator
}

type AccountServiceOption func(*AccountService)

func WithAccountLogger(logger Logger) AccountServiceOption {
	return func(s *AccountService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFormValidator replaces the default rule sets.
func WithFormValidator(validator *FormValidator) AccountServiceOption {
	return func(s *AccountService) {
		if validator != nil {
			s.validator = validator
		}
	}
}

// NewAccountService creates the lifecycle engine over the given credential
// store. The default validator registers the rule sets for all five forms.
func NewAccountService(store CredentialStore, opts ...AccountServiceOption) (*AccountService, error) {
	if store == nil {
		return nil, goerrors.New("credential store is required", goerrors.CategoryValidation)
	}

	service := &AccountService{
		logger:    defLogger{},
		store:     store,
		validator: DefaultFormValidator(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(service)
		}
	}

	return service, nil
}

// RegisterUser creates a new identity record and mints its email
// confirmation token. Token delivery is an external concern.
func (s *AccountService) RegisterUser(ctx context.Context, form *RegistrationForm) Outcome {
	if form == nil {
		s.logger.Warn("the form provided was null")
		return BadRequest(NullFormError("The registration form provided was null."))
	}

	s.logger.Info("registering user '%s'", form.Username)

	result, err := s.validator.ValidateWithContext(ctx, form)
	if err != nil {
		return InternalError(SystemError(err.Error()))
	}
	if !result.Valid() {
		s.logger.Info("the registration form was not valid")
		return UnprocessableEntity(validationFailureErrors(result.Failures)...)
	}

	s.logger.Info("creating new user '%s'", form.Username)
	user, storeResult := s.store.Create(ctx, form.Username, form.Email, form.Password)
	if !storeResult.Succeeded {
		s.logger.Warn("there were errors while trying to process the new users details with username %s", form.Username)
		return UnprocessableEntity(storeErrors(storeResult.Errors)...)
	}

	s.logger.Info("getting email confirmation verification token")
	if _, err := s.store.GenerateEmailConfirmationToken(ctx, user); err != nil {
		s.logger.Error("failed to generate email confirmation token for '%s': %v", form.Email, err)
		return InternalError(SystemError(err.Error()))
	}

	return Created(
		ResultModel{Data: fmt.Sprintf("User with email '%s' has been created.", form.Email)},
		fmt.Sprintf("/v1/accounts/%s", user.ID),
	)
}

// Login authenticates a username and password. The sign-in branches are
// checked in a fixed order and only the first matching branch is reported:
// two factor, not allowed, locked out, then plain failure. A locked out
// record never has its password checked.
func (s *AccountService) Login(ctx context.Context, form *LoginForm) Outcome {
	if form == nil {
		s.logger.Warn("the login form provided was null")
		return BadRequest(NullFormError("The login form provided was null."))
	}

	s.logger.Info("logging in user '%s'", form.Username)

	result, err := s.validator.ValidateWithContext(ctx, form)
	if err != nil {
		return InternalError(SystemError(err.Error()))
	}
	if !result.Valid() {
		s.logger.Info("the login form was not valid")
		return UnprocessableEntity(validationFailureErrors(result.Failures)...)
	}

	s.logger.Info("looking for user with user name '%s'", form.Username)
	user, err := s.store.FindByUsername(ctx, form.Username)
	if err != nil {
		if goerrors.Is(err, ErrUserNotFound) {
			s.logger.Warn("the user with user name '%s' could not be found", form.Username)
			return NotFound(UserNotFoundError(fmt.Sprintf(
				"The user with user name '%s' could not be found.", form.Username,
			)))
		}
		return InternalError(SystemError(err.Error()))
	}

	s.logger.Debug("logging user '%s' in to the system...", user.Email)
	signIn, err := s.store.AttemptPasswordSignIn(ctx, user, form.Password, form.RememberMe)
	if err != nil {
		return InternalError(SystemError(err.Error()))
	}

	switch signIn.Status {
	case SignInSuccess:
		return Ok(user)
	case SignInRequiresTwoFactor:
		s.logger.Warn("current user '%s' must use 2FA to sign in", user.Email)
		return Unauthorized(AuthenticationError(fmt.Sprintf(
			"The user '%s' requires 2FA in order to procceed with logging in.", user.Email,
		)))
	case SignInNotAllowed:
		s.logger.Warn("current user '%s' is not allowed to sign in", user.Email)
		return Unauthorized(AuthenticationError(fmt.Sprintf(
			"The user '%s' is not allowed to sign in. Please check an make sure your email has been validated.", user.Email,
		)))
	case SignInLockedOut:
		s.logger.Warn("current user '%s' is locked out", user.Email)
		return Unauthorized(AuthenticationError(fmt.Sprintf(
			"User %s is locked out. Please try again after %v.", user.Username, signIn.LockoutUntil,
		)))
	default:
		increment := s.store.IncrementFailedAccess(ctx, user)
		if increment.Succeeded {
			s.logger.Warn("the password provided for the user %s was not valid", form.Username)
			return Unauthorized(AuthenticationError(fmt.Sprintf(
				"The password provided for the user %s was not valid.", form.Username,
			)))
		}

		s.logger.Error("an error occurred while trying to increment the failed attempts for user '%s'", user.Email)
		return InternalError(storeInternalErrors(increment.Errors)...)
	}
}

// VerifyEmail consumes a confirmation token and marks the record's email as
// verified.
func (s *AccountService) VerifyEmail(ctx context.Context, form *VerifyEmailForm) Outcome {
	if form == nil {
		s.logger.Warn("the verify email form provided was null")
		return BadRequest(NullFormError("The verify email form provided was null"))
	}

	result, err := s.validator.ValidateWithContext(ctx, form)
	if err != nil {
		return InternalError(SystemError(err.Error()))
	}
	if !result.Valid() {
		s.logger.Info("the verify email form was not valid")
		return UnprocessableEntity(validationFailureErrors(result.Failures)...)
	}

	user, outcome := s.findByEmail(ctx, form.Email)
	if user == nil {
		return outcome
	}

	s.logger.Info("confirming email verification token")
	storeResult := s.store.ConfirmEmail(ctx, user, form.Token)
	if !storeResult.Succeeded {
		s.logger.Warn("there was an error trying to confirm the email address '%s'", form.Email)
		return InternalError(storeInternalErrors(storeResult.Errors)...)
	}

	return NoContent()
}

// ForgotPassword mints a password reset token for the account matching the
// email. An unknown email surfaces as NotFound, which discloses account
// existence to the caller; the behavior is kept for contract compatibility.
func (s *AccountService) ForgotPassword(ctx context.Context, form *ForgotPasswordForm) Outcome {
	if form == nil {
		s.logger.Warn("the forgot password form provided was null")
		return BadRequest(NullFormError("The forgot password form provided was null"))
	}

	result, err := s.validator.ValidateWithContext(ctx, form)
	if err != nil {
		return InternalError(SystemError(err.Error()))
	}
	if !result.Valid() {
		s.logger.Info("the forgot password form was not valid")
		return UnprocessableEntity(validationFailureErrors(result.Failures)...)
	}

	user, outcome := s.findByEmail(ctx, form.Email)
	if user == nil {
		return outcome
	}

	s.logger.Info("generating password reset token")
	if _, err := s.store.GeneratePasswordResetToken(ctx, user); err != nil {
		s.logger.Error("failed to generate password reset token for '%s': %v", form.Email, err)
		return InternalError(SystemError(err.Error()))
	}

	return NoContent()
}

// ResetPassword consumes a reset token and applies the new password.
func (s *AccountService) ResetPassword(ctx context.Context, form *ResetPasswordForm) Outcome {
	if form == nil {
		s.logger.Warn("the reset password form provided was null")
		return BadRequest(NullFormError("The reset password form provided was null"))
	}

	result, err := s.validator.ValidateWithContext(ctx, form)
	if err != nil {
		return InternalError(SystemError(err.Error()))
	}
	if !result.Valid() {
		s.logger.Info("the reset password form was not valid")
		return UnprocessableEntity(validationFailureErrors(result.Failures)...)
	}

	user, outcome := s.findByEmail(ctx, form.Email)
	if user == nil {
		return outcome
	}

	s.logger.Info("reseting user '%s' password", form.Email)
	storeResult := s.store.ResetPassword(ctx, user, form.Token, form.Password)
	if !storeResult.Succeeded {
		s.logger.Warn("there was an issue trying to reset the password for the account with the email address '%s'", form.Email)
		return UnprocessableEntity(storeErrors(storeResult.Errors)...)
	}

	s.logger.Info("user '%s' password has been reset", form.Email)
	return Ok(ResultModel{Data: fmt.Sprintf("User '%s' password has been reset.", form.Email)})
}

func (s *AccountService) findByEmail(ctx context.Context, email string) (*User, Outcome) {
	s.logger.Info("looking for user with email '%s'", email)

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if goerrors.Is(err, ErrUserNotFound) {
			s.logger.Warn("user could not be found")
			return nil, NotFound(UserNotFoundError(fmt.Sprintf(
				"User not found with email '%s'", email,
			)))
		}
		return nil, InternalError(SystemError(err.Error()))
	}

	return user, Outcome{}
}
