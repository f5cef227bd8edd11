package synchronizer

import (
	"context"
	"slices"

	"github.com/angeloszaimis/uptime-client/internal/checker"
)

// Lister fetches the full checker collection.
type Lister interface {
	ListCheckers(ctx context.Context) ([]checker.Checker, error)
}

// ListState is a snapshot of a CheckerList. Err is the last fetch failure
// and is cleared by the next success; Checkers keeps the last collection
// fetched successfully.
type ListState struct {
	Checkers []checker.Checker
	Loading  bool
	Err      error
}

type CheckerList struct {
	api Lister
	res *resource[[]checker.Checker]
}

// NewCheckerList subscribes to the checker collection and issues the first
// fetch. Fetches are bound to ctx; Close ends the subscription.
func NewCheckerList(ctx context.Context, api Lister, opts ...Option) *CheckerList {
	l := &CheckerList{
		api: api,
		res: newResource[[]checker.Checker](ctx, "checkers", newOptions(opts)),
	}
	l.Refresh()
	return l
}

// Refresh cancels the pending fetch, if any, and starts a new one.
func (l *CheckerList) Refresh() {
	l.res.mutex.Lock()
	defer l.res.mutex.Unlock()

	l.res.start(l.api.ListCheckers)
}

func (l *CheckerList) State() ListState {
	l.res.mutex.RLock()
	defer l.res.mutex.RUnlock()

	return ListState{
		Checkers: slices.Clone(l.res.value),
		Loading:  l.res.loading,
		Err:      l.res.err,
	}
}

// Updates receives a value whenever the state may have changed. It is
// closed by Close.
func (l *CheckerList) Updates() <-chan struct{} {
	return l.res.updates
}

// Close cancels the pending fetch. No update is applied afterwards.
func (l *CheckerList) Close() {
	l.res.close()
}
