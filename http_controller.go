package accounts

import (
	"fmt"

	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// AccountControllerRoutes names the HTTP surface of the lifecycle engine.
type AccountControllerRoutes struct {
	Register       string
	VerifyEmail    string
	ForgotPassword string
	ResetPassword  string
	Login          string
}

// AccountController exposes the lifecycle engine and the authentication
// facade over HTTP. It is thin glue: binding, dispatch, and outcome
// rendering, nothing else.
type AccountController struct {
	Debug    bool
	Logger   Logger
	Accounts *AccountService
	Auther   *AuthenticationFacade
	Routes   *AccountControllerRoutes
}

type AccountControllerOption func(*AccountController) *AccountController

func WithControllerLogger(logger Logger) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerDebug(debug bool) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Debug = debug
		return c
	}
}

func WithAccountService(accounts *AccountService) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Accounts = accounts
		return c
	}
}

func WithAuthenticationFacade(auther *AuthenticationFacade) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Auther = auther
		return c
	}
}

func NewAccountController(opts ...AccountControllerOption) *AccountController {
	c := &AccountController{
		Logger: defLogger{},
		Routes: &AccountControllerRoutes{
			Register:       "/v1/accounts/actions/register",
			VerifyEmail:    "/v1/accounts/verify-email",
			ForgotPassword: "/v1/accounts/forgot-password",
			ResetPassword:  "/v1/accounts/reset-password",
			Login:          "/v1/auth/actions/login",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Accounts == nil {
		panic("Missing AccountService in account controller...")
	}

	if c.Auther == nil {
		panic("Missing AuthenticationFacade in account controller...")
	}

	return c
}

// RegisterAccountRoutes mounts the five lifecycle routes on the router.
func RegisterAccountRoutes[T any](app router.Router[T], opts ...AccountControllerOption) {
	controller := NewAccountController(opts...)

	app.Post(controller.Routes.Register, controller.RegisterPost).
		SetName("accounts.register")
	app.Post(controller.Routes.VerifyEmail, controller.VerifyEmailPost).
		SetName("accounts.verify-email")
	app.Post(controller.Routes.ForgotPassword, controller.ForgotPasswordPost).
		SetName("accounts.forgot-password")
	app.Post(controller.Routes.ResetPassword, controller.ResetPasswordPost).
		SetName("accounts.reset-password")
	app.Post(controller.Routes.Login, controller.LoginPost).
		SetName("auth.login")
}

func (a *AccountController) RegisterPost(ctx router.Context) error {
	payload := new(RegistrationForm)
	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("register bind payload: %v", err)
		payload = nil
	}

	a.debugDump("REGISTER", payload)

	return a.render(ctx, a.Accounts.RegisterUser(ctx.Context(), payload))
}

func (a *AccountController) VerifyEmailPost(ctx router.Context) error {
	payload := new(VerifyEmailForm)
	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("verify email bind payload: %v", err)
		payload = nil
	}

	return a.render(ctx, a.Accounts.VerifyEmail(ctx.Context(), payload))
}

func (a *AccountController) ForgotPasswordPost(ctx router.Context) error {
	payload := new(ForgotPasswordForm)
	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("forgot password bind payload: %v", err)
		payload = nil
	}

	return a.render(ctx, a.Accounts.ForgotPassword(ctx.Context(), payload))
}

func (a *AccountController) ResetPasswordPost(ctx router.Context) error {
	payload := new(ResetPasswordForm)
	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("reset password bind payload: %v", err)
		payload = nil
	}

	return a.render(ctx, a.Accounts.ResetPassword(ctx.Context(), payload))
}

func (a *AccountController) LoginPost(ctx router.Context) error {
	payload := new(LoginForm)
	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login bind payload: %v", err)
		payload = nil
	}

	a.debugDump("LOGIN", payload)

	return a.render(ctx, a.Auther.Authenticate(ctx.Context(), payload))
}

func (a *AccountController) render(ctx router.Context, outcome Outcome) error {
	if outcome.Failed() {
		return ctx.JSON(outcome.HTTPStatus(), outcome.ErrorModel())
	}

	switch outcome.Status {
	case OutcomeCreated:
		if outcome.Location != "" {
			ctx.SetHeader("Location", outcome.Location)
		}
		return ctx.JSON(outcome.HTTPStatus(), outcome.Payload)
	case OutcomeNoContent:
		return ctx.NoContent(outcome.HTTPStatus())
	default:
		return ctx.JSON(outcome.HTTPStatus(), outcome.Payload)
	}
}

func (a *AccountController) debugDump(label string, payload any) {
	if !a.Debug {
		return
	}
	fmt.Printf("======= %s ======\n", label)
	fmt.Println(print.MaybePrettyJSON(payload))
	fmt.Println("=========================")
}
