package estimator

import (
	"context"
	"sync"

	"github.com/repcam/go-repcam/pkg/pose"
)

// Mock implements Estimator for testing. It returns queued snapshots
// in order, or delegates to EstimateFunc when set.
type Mock struct {
	// EstimateFunc overrides the queued behavior when set.
	EstimateFunc func(ctx context.Context, jpeg []byte) (*pose.Snapshot, error)

	mu    sync.Mutex
	queue []*pose.Snapshot
	calls int
}

// NewMock creates an empty mock. With no queued snapshots it reports
// "no person" for every frame.
func NewMock() *Mock {
	return &Mock{}
}

// Queue appends snapshots to be returned by successive Estimate calls.
// A nil entry means "no person detected" for that frame.
func (m *Mock) Queue(snaps ...*pose.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, snaps...)
}

// Estimate pops the next queued snapshot.
func (m *Mock) Estimate(ctx context.Context, jpeg []byte) (*pose.Snapshot, error) {
	if m.EstimateFunc != nil {
		return m.EstimateFunc(ctx, jpeg)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if len(m.queue) == 0 {
		return nil, nil
	}
	snap := m.queue[0]
	m.queue = m.queue[1:]
	return snap, nil
}

// Calls returns the number of Estimate invocations.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close is a no-op.
func (m *Mock) Close() error { return nil }

// Verify Mock implements Estimator at compile time.
var _ Estimator = (*Mock)(nil)
