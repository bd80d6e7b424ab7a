// Package checkpoint persists PlannerState snapshots under a thread_id
// (spec §3 lifecycle, §6 schema), generalized from
// internal/langgraph/state.go's StateManager/MemoryStateManager pair in
// the teacher repo.
package checkpoint

import (
	"context"

	"github.com/tripplanner/orchestrator/internal/state"
)

// Checkpointer serializes whole state by thread-id, reads the last
// snapshot, and supports resumable runs, per spec §2's Checkpoint Store
// responsibility. Generalized from langgraph.StateManager.
type Checkpointer interface {
	Save(ctx context.Context, threadID string, s *state.PlannerState) error
	Load(ctx context.Context, threadID string) (*state.PlannerState, error)
	Delete(ctx context.Context, threadID string) error
}

// ErrNotFound is returned by Load when no checkpoint exists for the
// given thread_id.
var ErrNotFound = &notFoundError{}

type notFoundError struct{}

func (e *notFoundError) Error() string { return "checkpoint: not found" }
