package accounts

import (
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

// Stable error codes carried by every failure Outcome. The set is closed so
// external consumers can branch on codes without matching message strings.
const (
	CodeNullForm       = "MN-4000"
	CodeAuthentication = "MN-4001"
	CodeNotFound       = "MN-4004"
	CodeValidation     = "MN-4220"
	CodeSystem         = "MN-5000"
)

// ErrorDetail is one failure entry: a stable code, a fixed human message,
// and a free text detail with situational context.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

// ErrorModel is the wire shape for failure responses.
type ErrorModel struct {
	Errors []ErrorDetail `json:"errors"`
}

func NullFormError(detail string) ErrorDetail {
	return ErrorDetail{
		Code:    CodeNullForm,
		Message: "The form provided was null",
		Detail:  detail,
	}
}

func AuthenticationError(detail string) ErrorDetail {
	return ErrorDetail{
		Code:    CodeAuthentication,
		Message: "An authentication error has occurred",
		Detail:  detail,
	}
}

func UserNotFoundError(detail string) ErrorDetail {
	return ErrorDetail{
		Code:    CodeNotFound,
		Message: "User could not be found",
		Detail:  detail,
	}
}

func ValidationError(detail string) ErrorDetail {
	return ErrorDetail{
		Code:    CodeValidation,
		Message: "A validation error has occurred",
		Detail:  detail,
	}
}

func SystemError(detail string) ErrorDetail {
	return ErrorDetail{
		Code:    CodeSystem,
		Message: "A system level error has occurred while trying to fulfill the request",
		Detail:  detail,
	}
}

// validationFailureErrors converts registry failures into MN-4220 entries,
// one per failure, preserving rule declaration order.
func validationFailureErrors(failures []FieldFailure) []ErrorDetail {
	out := make([]ErrorDetail, 0, len(failures))
	for _, f := range failures {
		out = append(out, ValidationError(fmt.Sprintf(
			"Error Code: %s Attempted Value: %v Message: %s",
			f.Code, f.AttemptedValue, f.Message,
		)))
	}
	return out
}

// storeErrors converts credential store rejections into MN-4220 entries.
func storeErrors(errs []StoreError) []ErrorDetail {
	out := make([]ErrorDetail, 0, len(errs))
	for _, e := range errs {
		out = append(out, ValidationError(fmt.Sprintf(
			"Error Code: %s Message: %s", e.Code, e.Description,
		)))
	}
	return out
}

// storeInternalErrors converts store failures that are not client mistakes
// into MN-5000 entries.
func storeInternalErrors(errs []StoreError) []ErrorDetail {
	out := make([]ErrorDetail, 0, len(errs))
	for _, e := range errs {
		out = append(out, SystemError(fmt.Sprintf(
			"Error Code: %s Message: %s", e.Code, e.Description,
		)))
	}
	return out
}

// Text codes for structured infrastructure errors.
const (
	TextCodeValidatorNotRegistered = "VALIDATOR_NOT_REGISTERED"
	TextCodeValidatorKindMissing   = "VALIDATOR_KIND_MISSING"
	TextCodeValidatorKindDuplicate = "VALIDATOR_KIND_DUPLICATE"
	TextCodeInvalidExpiry          = "INVALID_TOKEN_EXPIRY"
	TextCodeTokenExpired           = "TOKEN_EXPIRED"
	TextCodeTokenMalformed         = "TOKEN_MALFORMED"
	TextCodeInvalidCreds           = "INVALID_CREDENTIALS"
)

// ErrUserNotFound is returned by credential store lookups when no identity
// record matches.
var ErrUserNotFound = goerrors.New("user not found", goerrors.CategoryNotFound).
	WithTextCode("USER_NOT_FOUND").
	WithCode(goerrors.CodeNotFound)

// ErrNoEmptyString rejects empty passwords before hashing.
var ErrNoEmptyString = goerrors.New("value must not be an empty string", goerrors.CategoryValidation)

// ErrMismatchedHashAndPassword is the bcrypt comparison failure.
var ErrMismatchedHashAndPassword = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds)

// ErrTokenExpired is returned when a bearer token is past its expiry.
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed covers bad signatures, wrong issuer or audience, and
// tokens that cannot be parsed at all.
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)
