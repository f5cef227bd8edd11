package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/angeloszaimis/uptime-client/internal/api"
	"github.com/angeloszaimis/uptime-client/internal/notify"
	"github.com/angeloszaimis/uptime-client/internal/transport"
)

// MinPasswordLength mirrors the rule enforced by the backend.
const MinPasswordLength = 6

type Authenticator interface {
	Register(ctx context.Context, creds api.Credentials) (api.AuthResponse, error)
	Login(ctx context.Context, creds api.Credentials) (api.AuthResponse, error)
	Logout(ctx context.Context) error
}

// Session is the credential store written by the workflow.
type Session interface {
	Set(token, email string) error
	Clear() error
}

type ValidationError struct {
	Errors validation.Errors
}

func (e *ValidationError) Error() string {
	return e.Errors.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Errors
}

var ErrNoAccessToken = errors.New("backend returned no access token")

type Workflow struct {
	auth     Authenticator
	session  Session
	notifier notify.Notifier
	logger   *slog.Logger
}

func New(auth Authenticator, session Session, notifier notify.Notifier, logger *slog.Logger) *Workflow {
	return &Workflow{
		auth:     auth,
		session:  session,
		notifier: notifier,
		logger:   logger,
	}
}

func (w *Workflow) Register(ctx context.Context, email, password string) error {
	return w.authenticate(ctx, "register", w.auth.Register, email, password)
}

func (w *Workflow) Login(ctx context.Context, email, password string) error {
	return w.authenticate(ctx, "login", w.auth.Login, email, password)
}

// Logout invalidates the session on the backend. The local credential is
// cleared whether or not the backend call succeeds.
func (w *Workflow) Logout(ctx context.Context) error {
	err := w.auth.Logout(ctx)

	if clearErr := w.session.Clear(); clearErr != nil {
		w.logger.Error("Failed to clear session", slog.Any("err", clearErr))
	}

	if err != nil {
		if !canceled(err) {
			w.logger.Warn("Logout request failed", slog.Any("err", err))
			w.notifier.Show(err.Error(), notify.KindError)
		}
		return fmt.Errorf("logout: %w", err)
	}

	w.notifier.Show("Logged out", notify.KindInfo)
	return nil
}

func (w *Workflow) authenticate(
	ctx context.Context,
	action string,
	call func(context.Context, api.Credentials) (api.AuthResponse, error),
	email, password string,
) error {
	if err := Validate(email, password); err != nil {
		w.notifier.Show(err.Error(), notify.KindError)
		return err
	}

	res, err := call(ctx, api.Credentials{Email: email, Password: password})
	if err == nil && res.AccessToken == "" {
		err = ErrNoAccessToken
	}
	if err != nil {
		if !canceled(err) {
			w.logger.Warn("Authentication failed",
				slog.String("action", action),
				slog.String("email", email),
				slog.Any("err", err))
			w.notifier.Show(err.Error(), notify.KindError)
		}
		return fmt.Errorf("%s: %w", action, err)
	}

	if err := w.session.Set(res.AccessToken, email); err != nil {
		w.notifier.Show(err.Error(), notify.KindError)
		return err
	}

	w.logger.Info("Authenticated",
		slog.String("action", action),
		slog.String("email", email))
	w.notifier.Show("Signed in as "+email, notify.KindSuccess)
	return nil
}

// Validate applies the client-side credential rules.
func Validate(email, password string) error {
	errs := validation.Errors{
		"email": validation.Validate(email,
			validation.Required,
			is.EmailFormat,
		),
		"password": validation.Validate(password,
			validation.Required,
			validation.RuneLength(MinPasswordLength, 0),
		),
	}.Filter()

	if errs == nil {
		return nil
	}
	var ve validation.Errors
	if errors.As(errs, &ve) {
		return &ValidationError{Errors: ve}
	}
	return errs
}

func canceled(err error) bool {
	return transport.IsCanceled(err) || errors.Is(err, context.Canceled)
}
