package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"

	"github.com/angeloszaimis/uptime-client/internal/checker"
	"github.com/angeloszaimis/uptime-client/internal/synchronizer"
)

type globals struct {
	configPath string
	output     string
}

type invocation struct {
	globals globals
	flags   *pflag.FlagSet
	args    []string
}

type command struct {
	name    string
	summary string
	usage   string
	nargs   int
	setup   func(fs *pflag.FlagSet)
	run     func(ctx context.Context, a *app, inv *invocation) error
}

// reportedError has already been shown to the user as a toast.
type reportedError struct {
	error
}

func (e reportedError) Unwrap() error { return e.error }

var errNotLoggedIn = errors.New("not logged in")

var commandOrder = []string{"register", "login", "logout", "whoami", "list", "show", "create", "watch"}

var commands = map[string]*command{
	"register": {
		name:    "register",
		summary: "create an account and log in",
		usage:   "register --email EMAIL [--password PASSWORD]",
		setup:   credentialFlags,
		run:     runRegister,
	},
	"login": {
		name:    "login",
		summary: "log in and remember the session",
		usage:   "login --email EMAIL [--password PASSWORD]",
		setup:   credentialFlags,
		run:     runLogin,
	},
	"logout": {
		name:    "logout",
		summary: "end the session",
		usage:   "logout",
		run:     runLogout,
	},
	"whoami": {
		name:    "whoami",
		summary: "show the logged in account",
		usage:   "whoami",
		run:     runWhoami,
	},
	"list": {
		name:    "list",
		summary: "list checkers",
		usage:   "list",
		run:     runList,
	},
	"show": {
		name:    "show",
		summary: "show the status and history of a checker",
		usage:   "show ID",
		nargs:   1,
		run:     runShow,
	},
	"create": {
		name:    "create",
		summary: "create a checker",
		usage:   "create --site URL --period N",
		setup: func(fs *pflag.FlagSet) {
			fs.String("site", "", "site to monitor")
			fs.Float64("period", 0, "check period, in the configured unit")
		},
		run: runCreate,
	},
	"watch": {
		name:    "watch",
		summary: "follow checkers live",
		usage:   "watch [--id ID] [--metrics-addr HOST:PORT]",
		setup: func(fs *pflag.FlagSet) {
			fs.Int("id", 0, "also follow the history of this checker")
			fs.String("metrics-addr", "", "serve /metrics and /healthz on this address")
		},
		run: runWatch,
	},
}

func parse(cmd *command, args []string, stderr io.Writer) (*invocation, error) {
	fs := pflag.NewFlagSet(cmd.name, pflag.ContinueOnError)
	fs.SetOutput(stderr)

	var g globals
	fs.StringVar(&g.configPath, "config", "", "path to config.yaml")
	fs.StringVarP(&g.output, "output", "o", formatText, "output format: text, json or yaml")
	if cmd.setup != nil {
		cmd.setup(fs)
	}
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: uptime %s\n\n", cmd.usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, nil
		}
		return nil, err
	}
	if !validFormat(g.output) {
		return nil, fmt.Errorf("unknown output format %q", g.output)
	}
	if fs.NArg() != cmd.nargs {
		return nil, fmt.Errorf("usage: uptime %s", cmd.usage)
	}

	return &invocation{globals: g, flags: fs, args: fs.Args()}, nil
}

func credentialFlags(fs *pflag.FlagSet) {
	fs.String("email", "", "account email")
	fs.String("password", "", "account password (default $UPTIME_PASSWORD)")
}

func credentials(inv *invocation) (string, string) {
	email, _ := inv.flags.GetString("email")
	password, _ := inv.flags.GetString("password")
	if password == "" {
		password = os.Getenv("UPTIME_PASSWORD")
	}
	return email, password
}

func runRegister(ctx context.Context, a *app, inv *invocation) error {
	email, password := credentials(inv)
	if err := a.accounts.Register(ctx, email, password); err != nil {
		return reportedError{err}
	}
	return a.out.account(accountView{Email: email, LoggedIn: true})
}

func runLogin(ctx context.Context, a *app, inv *invocation) error {
	email, password := credentials(inv)
	if err := a.accounts.Login(ctx, email, password); err != nil {
		return reportedError{err}
	}
	return a.out.account(accountView{Email: email, LoggedIn: true})
}

func runLogout(ctx context.Context, a *app, _ *invocation) error {
	if err := a.accounts.Logout(ctx); err != nil {
		return reportedError{err}
	}
	return a.out.account(accountView{})
}

func runWhoami(_ context.Context, a *app, _ *invocation) error {
	if !a.session.LoggedIn() {
		if err := a.out.account(accountView{}); err != nil {
			return err
		}
		return errNotLoggedIn
	}

	view := accountView{Email: a.session.Email(), LoggedIn: true}
	claims, err := a.session.Claims()
	if err != nil {
		a.logger.Debug("Token is not a readable JWT", slog.Any("err", err))
	} else {
		view.Subject = claims.Subject
		if !claims.ExpiresAt.IsZero() {
			exp := claims.ExpiresAt
			view.ExpiresAt = &exp
		}
	}
	return a.out.account(view)
}

func runList(ctx context.Context, a *app, _ *invocation) error {
	list := synchronizer.NewCheckerList(ctx, a.api, a.syncOptions(false)...)
	defer list.Close()

	if err := settle(ctx, list.Updates(), func() bool { return list.State().Loading }); err != nil {
		return err
	}

	state := list.State()
	if state.Err != nil {
		return state.Err
	}

	views := make([]checkerView, len(state.Checkers))
	for i, c := range state.Checkers {
		views[i] = toView(c)
	}
	return a.out.checkers(views)
}

func runShow(ctx context.Context, a *app, inv *invocation) error {
	id, err := strconv.Atoi(inv.args[0])
	if err != nil || id < 0 {
		return fmt.Errorf("invalid checker id %q", inv.args[0])
	}

	list := synchronizer.NewCheckerList(ctx, a.api, a.syncOptions(false)...)
	defer list.Close()
	detail := synchronizer.NewCheckerDetail(ctx, a.api, &id, a.syncOptions(false)...)
	defer detail.Close()

	if err := settle(ctx, list.Updates(), func() bool { return list.State().Loading }); err != nil {
		return err
	}
	if err := settle(ctx, detail.Updates(), func() bool { return detail.State().Loading }); err != nil {
		return err
	}

	if err := detail.State().Err; err != nil {
		return err
	}
	return a.out.detail(buildDetail(id, list.State(), detail))
}

func runCreate(ctx context.Context, a *app, inv *invocation) error {
	site, _ := inv.flags.GetString("site")
	period, _ := inv.flags.GetFloat64("period")

	created, err := a.creator.Create(ctx, site, period)
	if err != nil {
		return reportedError{err}
	}
	return a.out.checkers([]checkerView{toView(*created)})
}

// settle waits until loading reports false.
func settle(ctx context.Context, updates <-chan struct{}, loading func() bool) error {
	for loading() {
		select {
		case _, ok := <-updates:
			if !ok {
				return context.Canceled
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func buildDetail(id int, list synchronizer.ListState, detail *synchronizer.CheckerDetail) detailView {
	view := detailView{checkerView: checkerView{ID: id}}

	var initial *checker.Status
	for _, c := range list.Checkers {
		if c.ID == id {
			view.URL = c.URL
			view.Period = c.Period
			initial = c.InitialStatus()
			break
		}
	}

	state := detail.State()
	view.Status = checker.DeriveStatus(state.Logs, initial)
	view.Logs = state.Logs
	if view.Logs == nil {
		view.Logs = []checker.LogEntry{}
	}
	return view
}

func timestamp() string {
	return time.Now().Format(time.TimeOnly)
}
