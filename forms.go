package accounts

// FormKind discriminates credential forms so the validator registry can
// dispatch without reflection. Every form declares its kind at compile time;
// the registry refuses construction when a rule set lacks one.
type FormKind string

const (
	FormKindRegistration   FormKind = "registration"
	FormKindLogin          FormKind = "login"
	FormKindVerifyEmail    FormKind = "verify_email"
	FormKindForgotPassword FormKind = "forgot_password"
	FormKindResetPassword  FormKind = "reset_password"
)

// Form is a transient credential input payload for one lifecycle operation.
// Forms are immutable once received and never persisted.
type Form interface {
	Kind() FormKind
}

type RegistrationForm struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (RegistrationForm) Kind() FormKind { return FormKindRegistration }

type LoginForm struct {
	Username   string `json:"username" form:"username"`
	Password   string `json:"password" form:"password"`
	RememberMe bool   `json:"remember_me" form:"remember_me"`
}

func (LoginForm) Kind() FormKind { return FormKindLogin }

type VerifyEmailForm struct {
	Email string `json:"email" form:"email"`
	Token string `json:"token" form:"token"`
}

func (VerifyEmailForm) Kind() FormKind { return FormKindVerifyEmail }

type ForgotPasswordForm struct {
	Email string `json:"email" form:"email"`
}

func (ForgotPasswordForm) Kind() FormKind { return FormKindForgotPassword }

type ResetPasswordForm struct {
	Email           string `json:"email" form:"email"`
	Token           string `json:"token" form:"token"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

func (ResetPasswordForm) Kind() FormKind { return FormKindResetPassword }
