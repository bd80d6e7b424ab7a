package checkpoint

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/tripplanner/orchestrator/internal/state"
)

// PostgresCheckpointer persists trip_sessions rows per spec §6's schema.
type PostgresCheckpointer struct {
	db *sql.DB
}

// NewPostgresCheckpointer wraps an already-open *sql.DB (opened by the
// caller against DATABASE_URL, e.g. cmd/planner-server) as a Checkpointer.
func NewPostgresCheckpointer(db *sql.DB) *PostgresCheckpointer {
	return &PostgresCheckpointer{db: db}
}

func (p *PostgresCheckpointer) Save(ctx context.Context, threadID string, s *state.PlannerState) error {
	raw, err := s.ToJSON()
	if err != nil {
		return fmt.Errorf("checkpoint: marshal state: %w", err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO trip_sessions (id, user_id, state_json, status, current_stage)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET state_json = EXCLUDED.state_json,
		    status = EXCLUDED.status,
		    current_stage = EXCLUDED.current_stage,
		    updated_at = now()
	`, threadID, s.UserID, string(raw), sessionStatus(s), s.CurrentStage)
	if err != nil {
		// Per spec §7 taxonomy item 6, a checkpoint-write failure is
		// fatal for the run and must propagate to the caller.
		return fmt.Errorf("checkpoint: save %s: %w", threadID, err)
	}
	return nil
}

func sessionStatus(s *state.PlannerState) string {
	if s.RequiresApproval {
		return "suspended"
	}
	if s.CurrentStage == "end" {
		return "completed"
	}
	return "running"
}

func (p *PostgresCheckpointer) Load(ctx context.Context, threadID string) (*state.PlannerState, error) {
	var raw string
	err := p.db.QueryRowContext(ctx, `SELECT state_json FROM trip_sessions WHERE id = $1`, threadID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("checkpoint: load %s: %w", threadID, err)
	}
	return state.FromJSON([]byte(raw))
}

func (p *PostgresCheckpointer) Delete(ctx context.Context, threadID string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM trip_sessions WHERE id = $1`, threadID)
	if err != nil {
		return fmt.Errorf("checkpoint: delete %s: %w", threadID, err)
	}
	return nil
}

// SaveAgentDecisions inserts one agent_decisions row per decision passed
// in, splitting the audit stream out of state_json into its own
// queryable table per spec §6. It does not track which decisions were
// saved before; passing the same decisions again inserts them again.
func (p *PostgresCheckpointer) SaveAgentDecisions(ctx context.Context, threadID string, decisions []state.AgentDecision) error {
	for _, d := range decisions {
		_, err := p.db.ExecContext(ctx, `
			INSERT INTO agent_decisions (session_id, agent_name, action, reasoning, result_summary, tokens_used, latency_ms, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, threadID, d.AgentName, d.Action, d.Reasoning, d.ResultSummary, d.TokensUsed, d.LatencyMS, d.CreatedAt)
		if err != nil {
			return fmt.Errorf("checkpoint: save agent decision: %w", err)
		}
	}
	return nil
}
