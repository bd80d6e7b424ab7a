package checkpoint

import (
	"context"
	"sync"

	"github.com/tripplanner/orchestrator/internal/state"
)

// MemoryCheckpointer is an in-process Checkpointer, adapted from
// langgraph.MemoryStateManager in the teacher repo. It backs unit tests
// and the demo entrypoint where no Postgres instance is configured.
type MemoryCheckpointer struct {
	mu    sync.RWMutex
	rows  map[string][]byte
}

// NewMemoryCheckpointer builds an empty in-memory checkpoint store.
func NewMemoryCheckpointer() *MemoryCheckpointer {
	return &MemoryCheckpointer{rows: make(map[string][]byte)}
}

func (m *MemoryCheckpointer) Save(_ context.Context, threadID string, s *state.PlannerState) error {
	raw, err := s.ToJSON()
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[threadID] = raw
	return nil
}

func (m *MemoryCheckpointer) Load(_ context.Context, threadID string) (*state.PlannerState, error) {
	m.mu.RLock()
	raw, ok := m.rows[threadID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return state.FromJSON(raw)
}

func (m *MemoryCheckpointer) Delete(_ context.Context, threadID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, threadID)
	return nil
}
