package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage(stderr)
		if len(args) == 0 {
			return exitUsage
		}
		return exitOK
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		usage(stderr)
		return exitUsage
	}

	inv, err := parse(cmd, args[1:], stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	if inv == nil {
		return exitOK
	}

	a, err := newApp(ctx, inv.globals, stdout, stderr)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitError
	}
	defer a.close()

	if err := cmd.run(ctx, a, inv); err != nil {
		a.logger.Debug("Command failed", slog.String("command", cmd.name), slog.Any("err", err))
		a.notifier.Close()

		var reported reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintln(stderr, "error:", err)
		}
		return exitError
	}
	return exitOK
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: uptime <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, name := range commandOrder {
		fmt.Fprintf(w, "  %-10s %s\n", name, commands[name].summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global flags:")
	fmt.Fprintln(w, "  --config string   path to config.yaml")
	fmt.Fprintln(w, "  --output string   text, json or yaml (default \"text\")")
}
