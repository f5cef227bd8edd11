package creation

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/angeloszaimis/uptime-client/internal/api"
	"github.com/angeloszaimis/uptime-client/internal/checker"
	"github.com/angeloszaimis/uptime-client/internal/notify"
	"github.com/angeloszaimis/uptime-client/internal/transport"
)

// SuccessMessage is shown once a checker has been created.
const SuccessMessage = "Checker created!"

var siteRegex = regexp.MustCompile(`(?i)^(https?://)?([\w-]+\.)+[\w-]+(/[\w-./?%&=]*)?$`)

// Creator submits a checker to the backend.
type Creator interface {
	CreateChecker(ctx context.Context, req api.CreateCheckerRequest) (*checker.Checker, error)
}

// ValidationError is returned for input rejected before any request is made.
type ValidationError struct {
	Errors validation.Errors
}

func (e *ValidationError) Error() string {
	return e.Errors.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Errors
}

type Workflow struct {
	creator  Creator
	notifier notify.Notifier
	logger   *slog.Logger
}

func New(creator Creator, notifier notify.Notifier, logger *slog.Logger) *Workflow {
	return &Workflow{creator: creator, notifier: notifier, logger: logger}
}

// Create validates the input and submits it once. It does not refresh any
// synchronizer; callers converge through Refresh or the next poll.
func (w *Workflow) Create(ctx context.Context, site string, period float64) (*checker.Checker, error) {
	if err := Validate(site, period); err != nil {
		w.notifier.Show(err.Error(), notify.KindError)
		return nil, err
	}

	created, err := w.creator.CreateChecker(ctx, api.CreateCheckerRequest{Site: site, Period: period})
	if err != nil {
		if transport.IsCanceled(err) || errors.Is(err, context.Canceled) {
			return nil, err
		}
		w.logger.Warn("Failed to create checker",
			slog.String("site", site),
			slog.Any("err", err))
		w.notifier.Show(err.Error(), notify.KindError)
		return nil, err
	}

	w.logger.Info("Checker created",
		slog.Int("id", created.ID),
		slog.String("site", site))
	w.notifier.Show(SuccessMessage, notify.KindSuccess)
	return created, nil
}

// Validate checks a site and period without contacting the backend.
func Validate(site string, period float64) error {
	errs := validation.Errors{
		"site": validation.Validate(site,
			validation.Required.Error("site is required"),
			validation.Match(siteRegex).Error("must be a valid URL"),
		),
		"period": validation.Validate(period,
			validation.By(positiveFinite),
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

func positiveFinite(value any) error {
	p, _ := value.(float64)
	if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
		return errors.New("must be a positive number")
	}
	return nil
}
