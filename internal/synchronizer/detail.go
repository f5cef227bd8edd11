package synchronizer

import (
	"context"
	"slices"

	"github.com/angeloszaimis/uptime-client/internal/checker"
)

// LogFetcher fetches the log history of one checker.
type LogFetcher interface {
	CheckerLogs(ctx context.Context, id int) ([]checker.LogEntry, error)
}

// DetailState is a snapshot of a CheckerDetail. Logs is nil until the
// first successful fetch for the current ID.
type DetailState struct {
	ID      *int
	Logs    []checker.LogEntry
	Loading bool
	Err     error
}

type CheckerDetail struct {
	api LogFetcher
	res *resource[[]checker.LogEntry]

	id       *int
	selected bool
}

// NewCheckerDetail subscribes to the log history of checker id. A nil id
// means there is nothing to show and nothing is fetched.
func NewCheckerDetail(ctx context.Context, api LogFetcher, id *int, opts ...Option) *CheckerDetail {
	d := &CheckerDetail{
		api: api,
		res: newResource[[]checker.LogEntry](ctx, "checker_logs", newOptions(opts)),
	}
	d.SetID(id)
	return d
}

// SetID switches to another checker. The fetch for the previous ID is
// canceled and its logs are dropped immediately.
func (d *CheckerDetail) SetID(id *int) {
	d.res.mutex.Lock()
	defer d.res.mutex.Unlock()

	if d.res.closed {
		return
	}
	if d.selected && sameID(d.id, id) {
		return
	}
	d.selected = true

	d.res.guard.Cancel()
	d.id = copyID(id)
	d.res.value = nil
	d.res.err = nil
	d.res.loading = false
	d.res.signal()

	if d.id != nil {
		d.res.start(d.fetcher(*d.id))
	}
}

// Refresh refetches the logs of the current checker. It does nothing while
// no checker is selected.
func (d *CheckerDetail) Refresh() {
	d.res.mutex.Lock()
	defer d.res.mutex.Unlock()

	if d.id == nil {
		return
	}
	d.res.start(d.fetcher(*d.id))
}

func (d *CheckerDetail) State() DetailState {
	d.res.mutex.RLock()
	defer d.res.mutex.RUnlock()

	return DetailState{
		ID:      copyID(d.id),
		Logs:    slices.Clone(d.res.value),
		Loading: d.res.loading,
		Err:     d.res.err,
	}
}

// Status derives the display status of the current checker from its logs,
// falling back to initial.
func (d *CheckerDetail) Status(initial *checker.Status) checker.Status {
	return checker.DeriveStatus(d.State().Logs, initial)
}

func (d *CheckerDetail) Updates() <-chan struct{} {
	return d.res.updates
}

func (d *CheckerDetail) Close() {
	d.res.close()
}

func (d *CheckerDetail) fetcher(id int) func(context.Context) ([]checker.LogEntry, error) {
	return func(ctx context.Context) ([]checker.LogEntry, error) {
		return d.api.CheckerLogs(ctx, id)
	}
}

func sameID(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func copyID(id *int) *int {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
