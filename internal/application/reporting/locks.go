package reporting

import (
	"sync"

	"github.com/medmuse/medmuse-backend/pkg/types/common"
)

// reportLocks serialises render work per report ID so at most one render for a
// given report is in flight at a time, whatever path triggered it.  Entries
// are reference counted and removed when the last holder releases, so the map
// does not grow with the number of reports ever rendered.
type reportLocks struct {
	mu      sync.Mutex
	entries map[common.ReportID]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newReportLocks() *reportLocks {
	return &reportLocks{entries: make(map[common.ReportID]*lockEntry)}
}

// Lock acquires the per-report lock and returns its release function.
func (l *reportLocks) Lock(id common.ReportID) (release func()) {
	l.mu.Lock()
	e, ok := l.entries[id]
	if !ok {
		e = &lockEntry{}
		l.entries[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.entries, id)
		}
		l.mu.Unlock()
	}
}
