package grid

import (
	"context"
	"fmt"
	"sync"
)

// mutationRecorder — запись всех сетевых вызовов для проверок;
// отдельные ячейки можно заставлять падать.
type mutationRecorder struct {
	mu       sync.Mutex
	calls    []MutationVariables
	failKeys map[string]bool
}

func newMutationRecorder() *mutationRecorder {
	return &mutationRecorder{failKeys: make(map[string]bool)}
}

func (r *mutationRecorder) failCell(cellKey string, fail bool) {
	r.mu.Lock()
	r.failKeys[cellKey] = fail
	r.mu.Unlock()
}

func (r *mutationRecorder) fn(ctx context.Context, vars MutationVariables) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, vars)
	if r.failKeys[vars.CellKey] {
		return fmt.Errorf("simulated failure for %s", vars.CellKey)
	}
	return nil
}

func (r *mutationRecorder) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *mutationRecorder) callKeys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, len(r.calls))
	for i, c := range r.calls {
		keys[i] = c.CellKey
	}
	return keys
}

func (r *mutationRecorder) lastCall() (MutationVariables, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return MutationVariables{}, false
	}
	return r.calls[len(r.calls)-1], true
}

func testChange(resourceID, projectID uint, weekKey string, hours float64) PendingChange {
	return PendingChange{
		ResourceID: resourceID,
		ProjectID:  projectID,
		WeekKey:    weekKey,
		Hours:      hours,
	}
}
