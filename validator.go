package accounts

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

// FieldFailure is one validation failure: the field it belongs to, a short
// rule code, the fixed message, and the value that was rejected.
type FieldFailure struct {
	Field          string
	Code           string
	Message        string
	AttemptedValue any
}

// ValidationResult is the ordered list of failures produced by one rule set
// run. An empty list means the form is valid. Order follows rule declaration
// order.
type ValidationResult struct {
	Failures []FieldFailure
}

func (r ValidationResult) Valid() bool { return len(r.Failures) == 0 }

// Check is one predicate on a field value: the ozzo rules to run and the
// message recorded when they fail.
type Check struct {
	Code    string
	Message string
	Rules   []validation.Rule
}

func RequiredCheck(message string) Check {
	return Check{Code: "required", Message: message, Rules: []validation.Rule{validation.Required}}
}

func EmailCheck(message string) Check {
	return Check{Code: "email", Message: message, Rules: []validation.Rule{is.Email}}
}

// FieldRule runs an ordered list of checks against one field. The first
// failing check stops the remaining checks for that field but never affects
// other fields.
type FieldRule struct {
	Field  string
	Value  func(Form) any
	Checks []Check
}

// CrossFieldRule is evaluated after every per-field rule has completed. A
// nil return means the rule passed.
type CrossFieldRule func(Form) *FieldFailure

// FormRules is the rule set for one form kind.
type FormRules struct {
	kind   FormKind
	fields []FieldRule
	cross  []CrossFieldRule
}

func NewFormRules(kind FormKind, fields ...FieldRule) FormRules {
	return FormRules{kind: kind, fields: fields}
}

func (r FormRules) WithCrossField(rules ...CrossFieldRule) FormRules {
	r.cross = append(r.cross, rules...)
	return r
}

func (r FormRules) Kind() FormKind { return r.kind }

func (r FormRules) evaluate(form Form) ValidationResult {
	result := ValidationResult{}

	for _, field := range r.fields {
		value := field.Value(form)
		for _, check := range field.Checks {
			if err := validation.Validate(value, check.Rules...); err != nil {
				result.Failures = append(result.Failures, FieldFailure{
					Field:          field.Field,
					Code:           check.Code,
					Message:        check.Message,
					AttemptedValue: value,
				})
				break
			}
		}
	}

	for _, rule := range r.cross {
		if failure := rule(form); failure != nil {
			result.Failures = append(result.Failures, *failure)
		}
	}

	return result
}

// FormValidator routes a form to its rule set by the form's declared kind.
// The kind to rule set table is built once at construction and is read-only
// afterwards, safe for concurrent lookup.
type FormValidator struct {
	rules  map[FormKind]FormRules
	logger Logger
}

// NewFormValidator builds the dispatch table, failing fast when a rule set
// has no kind or when two rule sets claim the same kind.
func NewFormValidator(rulesets ...FormRules) (*FormValidator, error) {
	rules := make(map[FormKind]FormRules, len(rulesets))

	for i, rs := range rulesets {
		if rs.kind == "" {
			return nil, goerrors.New(
				fmt.Sprintf("rule set at position %d does not declare a form kind", i),
				goerrors.CategoryValidation,
			).WithTextCode(TextCodeValidatorKindMissing)
		}

		if _, ok := rules[rs.kind]; ok {
			return nil, goerrors.New(
				fmt.Sprintf("a rule set for form kind %q is already registered", rs.kind),
				goerrors.CategoryValidation,
			).WithTextCode(TextCodeValidatorKindDuplicate)
		}

		rules[rs.kind] = rs
	}

	return &FormValidator{rules: rules, logger: defLogger{}}, nil
}

// MustFormValidator wraps NewFormValidator for statically known rule sets.
func MustFormValidator(rulesets ...FormRules) *FormValidator {
	v, err := NewFormValidator(rulesets...)
	if err != nil {
		panic(err)
	}
	return v
}

// DefaultFormValidator registers the rule sets for all five credential
// forms.
func DefaultFormValidator() *FormValidator {
	return MustFormValidator(
		RegistrationRules(),
		LoginRules(),
		VerifyEmailRules(),
		ForgotPasswordRules(),
		ResetPasswordRules(),
	)
}

func (v *FormValidator) WithLogger(logger Logger) *FormValidator {
	if logger != nil {
		v.logger = logger
	}
	return v
}

// Validate looks up the rule set matching the form's kind and runs it. An
// unregistered kind is a wiring mistake and fails with a lookup error
// naming the kind.
func (v *FormValidator) Validate(form Form) (ValidationResult, error) {
	rules, ok := v.rules[form.Kind()]
	if !ok {
		v.logger.Error("no rule set registered for form kind %q", form.Kind())
		return ValidationResult{}, goerrors.New(
			fmt.Sprintf("a validator for the form kind %q does not exist", form.Kind()),
			goerrors.CategoryBadInput,
		).WithTextCode(TextCodeValidatorNotRegistered)
	}

	return rules.evaluate(form), nil
}

// ValidateWithContext is the awaited path used by the lifecycle engine.
func (v *FormValidator) ValidateWithContext(ctx context.Context, form Form) (ValidationResult, error) {
	select {
	case <-ctx.Done():
		return ValidationResult{}, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during form validation",
		)
	default:
		return v.Validate(form)
	}
}

// RegistrationRules validates new account forms.
func RegistrationRules() FormRules {
	return NewFormRules(FormKindRegistration,
		FieldRule{
			Field: "username",
			Value: func(f Form) any { return f.(*RegistrationForm).Username },
			Checks: []Check{
				RequiredCheck("User name cannot be null or empty"),
			},
		},
		FieldRule{
			Field: "email",
			Value: func(f Form) any { return f.(*RegistrationForm).Email },
			Checks: []Check{
				RequiredCheck("Email cannot be null or empty"),
				EmailCheck("Email is not a valid email address"),
			},
		},
		FieldRule{
			Field: "password",
			Value: func(f Form) any { return f.(*RegistrationForm).Password },
			Checks: []Check{
				RequiredCheck("Password cannot be null or empty"),
			},
		},
	)
}

func LoginRules() FormRules {
	return NewFormRules(FormKindLogin,
		FieldRule{
			Field: "username",
			Value: func(f Form) any { return f.(*LoginForm).Username },
			Checks: []Check{
				RequiredCheck("User name cannot be null or empty"),
			},
		},
		FieldRule{
			Field: "password",
			Value: func(f Form) any { return f.(*LoginForm).Password },
			Checks: []Check{
				RequiredCheck("Password cannot be null or empty"),
			},
		},
	)
}

func VerifyEmailRules() FormRules {
	return NewFormRules(FormKindVerifyEmail,
		FieldRule{
			Field: "email",
			Value: func(f Form) any { return f.(*VerifyEmailForm).Email },
			Checks: []Check{
				RequiredCheck("Email cannot be null or empty"),
			},
		},
		FieldRule{
			Field: "token",
			Value: func(f Form) any { return f.(*VerifyEmailForm).Token },
			Checks: []Check{
				RequiredCheck("The form token cannot be null or empty"),
			},
		},
	)
}

func ForgotPasswordRules() FormRules {
	return NewFormRules(FormKindForgotPassword,
		FieldRule{
			Field: "email",
			Value: func(f Form) any { return f.(*ForgotPasswordForm).Email },
			Checks: []Check{
				RequiredCheck("Email cannot be null or empty"),
			},
		},
	)
}

// ResetPasswordRules validates password reset forms, including the
// password/confirm-password match which runs after the per-field rules.
func ResetPasswordRules() FormRules {
	return NewFormRules(FormKindResetPassword,
		FieldRule{
			Field: "email",
			Value: func(f Form) any { return f.(*ResetPasswordForm).Email },
			Checks: []Check{
				RequiredCheck("Email cannot be null or empty"),
			},
		},
		FieldRule{
			Field: "token",
			Value: func(f Form) any { return f.(*ResetPasswordForm).Token },
			Checks: []Check{
				RequiredCheck("The form token cannot be null or empty"),
			},
		},
		FieldRule{
			Field: "password",
			Value: func(f Form) any { return f.(*ResetPasswordForm).Password },
			Checks: []Check{
				RequiredCheck("Password cannot be null or empty"),
			},
		},
		FieldRule{
			Field: "confirm_password",
			Value: func(f Form) any { return f.(*ResetPasswordForm).ConfirmPassword },
			Checks: []Check{
				RequiredCheck("Confirm password cannot be null or empty"),
			},
		},
	).WithCrossField(func(f Form) *FieldFailure {
		form := f.(*ResetPasswordForm)
		if form.ConfirmPassword == "" || form.ConfirmPassword == form.Password {
			return nil
		}
		return &FieldFailure{
			Field:          "confirm_password",
			Code:           "compare",
			Message:        "The confirmed password does not match the password provided",
			AttemptedValue: form.ConfirmPassword,
		}
	})
}
