package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/angeloszaimis/uptime-client/config"
	"github.com/angeloszaimis/uptime-client/internal/checker"
	"github.com/angeloszaimis/uptime-client/internal/notify"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func validFormat(f string) bool {
	return f == formatText || f == formatJSON || f == formatYAML
}

type checkerView struct {
	ID     int            `json:"id" yaml:"id"`
	URL    string         `json:"url" yaml:"url"`
	Period float64        `json:"check_interval" yaml:"check_interval"`
	Status checker.Status `json:"status" yaml:"status"`
}

type detailView struct {
	checkerView `yaml:",inline"`
	Logs        []checker.LogEntry `json:"logs" yaml:"logs"`
}

type accountView struct {
	Email     string     `json:"email,omitempty" yaml:"email,omitempty"`
	LoggedIn  bool       `json:"logged_in" yaml:"logged_in"`
	Subject   string     `json:"subject,omitempty" yaml:"subject,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

type printer struct {
	w      io.Writer
	format string
	period config.CheckerConfig
}

func (p *printer) checkers(views []checkerView) error {
	if p.format != formatText {
		return p.encode(views)
	}

	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tURL\tEVERY\tSTATUS")
	for _, v := range views {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", v.ID, v.URL, p.period.Period(v.Period), v.Status)
	}
	return tw.Flush()
}

func (p *printer) detail(v detailView) error {
	if p.format != formatText {
		return p.encode(v)
	}

	if v.URL != "" {
		fmt.Fprintf(p.w, "%s (every %s)\n", v.URL, p.period.Period(v.Period))
	}
	fmt.Fprintf(p.w, "Checker %d is %s\n\n", v.ID, v.Status)

	if len(v.Logs) == 0 {
		fmt.Fprintln(p.w, "No checks yet.")
		return nil
	}

	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "REQUESTED\tLATENCY\tSTATUS")
	for _, e := range v.Logs {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.RequestTime, latency(e), e.Status)
	}
	return tw.Flush()
}

func (p *printer) account(v accountView) error {
	if p.format != formatText {
		return p.encode(v)
	}

	if !v.LoggedIn {
		fmt.Fprintln(p.w, "Not logged in.")
		return nil
	}
	fmt.Fprintf(p.w, "Logged in as %s\n", v.Email)
	if v.ExpiresAt != nil {
		fmt.Fprintf(p.w, "Token expires %s\n", v.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}

func (p *printer) encode(v any) error {
	switch p.format {
	case formatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(p.w)
		defer enc.Close()
		return enc.Encode(v)
	default:
		_, err := fmt.Fprintln(p.w, v)
		return err
	}
}

func latency(e checker.LogEntry) string {
	if e.TimedOut() {
		return "timeout"
	}
	return strconv.FormatInt(e.ResponseTime, 10) + "ms"
}

func toView(c checker.Checker) checkerView {
	return checkerView{
		ID:     c.ID,
		URL:    c.URL,
		Period: c.Period,
		Status: checker.DeriveStatus(nil, c.InitialStatus()),
	}
}

// consoleSink prints toasts on the diagnostic stream.
type consoleSink struct {
	w io.Writer
}

func (s consoleSink) Shown(n notify.Notification) {
	fmt.Fprintf(s.w, "[%s] %s\n", n.Kind, n.Message)
}

func (s consoleSink) Dismissed(notify.Notification) {}
