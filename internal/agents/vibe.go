package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/tripplanner/orchestrator/internal/state"
)

// VibeScorerNode implements vibe_scorer per spec §4.5: LLM-only, produces
// a 0-100 overall score plus a category breakdown and a tagline of at
// most 8 words. With no LLM configured, the run still completes but is
// clearly labeled unavailable rather than guessed, per spec §7's
// user-visible behavior note.
type VibeScorerNode struct {
	Deps *Deps
}

func (n *VibeScorerNode) Name() string { return "vibe_scorer" }

func (n *VibeScorerNode) Execute(ctx context.Context, s *state.PlannerState) (state.PartialState, error) {
	start := time.Now()

	var itemLines []string
	for _, day := range s.Trip.Days {
		for _, item := range day.Items {
			itemLines = append(itemLines, fmt.Sprintf("%s (%s)", item.Name, item.Category))
		}
	}

	result, err := n.Deps.LLM.Complete(ctx,
		`Rate this trip's overall "vibe" from 0 to 100, with a category breakdown and a tagline of at most 8 words. Respond with JSON only:
{"overall": number, "breakdown": {"adventure": number, "relaxation": number, "culture": number, "value": number}, "tagline": string}`,
		fmt.Sprintf("Destination: %s, items: %v", s.Trip.Destination, itemLines), true)

	score := state.VibeScore{Tagline: "scoring unavailable"}
	summary := "vibe scoring unavailable: LLM response unusable"
	var errs []string
	if err != nil {
		errs = []string{fmt.Sprintf("vibe_scorer: %v", err)}
	}
	if err == nil && result.Parsed != nil {
		if m, ok := result.Parsed.(map[string]interface{}); ok {
			score.Overall = asFloat(m["overall"])
			score.Tagline, _ = m["tagline"].(string)
			if bm, ok := m["breakdown"].(map[string]interface{}); ok {
				breakdown := map[string]float64{}
				for k, v := range bm {
					breakdown[k] = asFloat(v)
				}
				score.Breakdown = breakdown
			}
			summary = fmt.Sprintf("overall=%.0f tagline=%q", score.Overall, score.Tagline)
		}
	}

	return state.PartialState{
		VibeScore: &score,
		Errors:    errs,
		AgentDecisions: []state.AgentDecision{{
			AgentName: n.Name(), Action: "score_vibe",
			Reasoning:     fmt.Sprintf("destination=%s items=%d", s.Trip.Destination, len(itemLines)),
			ResultSummary: summary, LatencyMS: time.Since(start).Milliseconds(), CreatedAt: time.Now(),
		}},
	}, nil
}
