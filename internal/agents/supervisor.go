package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tripplanner/orchestrator/internal/state"
)

// SupervisorNode implements the supervisor node per spec §4.5: classify
// intent into {plan, modify, conversation} using the LLM with a heuristic
// fallback keyed on whether a trip already exists plus question-word
// patterns. Adapted from SupervisorAgent.determineAgentPlan
// (internal/agents/specialist/supervisor_agent.go), whose keyword-scan
// pattern this reuses for intent classification instead of agent
// selection.
type SupervisorNode struct {
	Deps *Deps
}

func (n *SupervisorNode) Name() string { return "supervisor" }

var questionWords = []string{"what", "how", "why", "when", "where", "who", "which", "can you tell", "explain"}
var modifyWords = []string{"change", "modify", "update", "instead", "swap", "different hotel", "different flight", "reschedule"}

func (n *SupervisorNode) Execute(ctx context.Context, s *state.PlannerState) (state.PartialState, error) {
	start := time.Now()

	intent, reasoning := classifyIntent(ctx, n.Deps, s)
	stage := "intent_parser"
	if intent == state.IntentConversation {
		stage = "conversation"
	} else if intent == state.IntentModify {
		stage = "modify"
	}

	return state.PartialState{
		IntentType:   &intent,
		CurrentStage: &stage,
		AgentDecisions: []state.AgentDecision{
			{
				AgentName:     n.Name(),
				Action:        "classify_intent",
				Reasoning:     reasoning,
				ResultSummary: string(intent),
				LatencyMS:     time.Since(start).Milliseconds(),
				CreatedAt:     time.Now(),
			},
		},
	}, nil
}

func classifyIntent(ctx context.Context, deps *Deps, s *state.PlannerState) (state.IntentType, string) {
	hasTrip := s.Trip.Destination != ""
	lower := strings.ToLower(s.RawQuery)

	if deps.LLM != nil {
		result, err := deps.LLM.Complete(ctx,
			`Classify the user's travel-planning message intent as exactly one of: plan, modify, conversation.
"plan" requests a new trip. "modify" changes an existing trip (only valid if one exists). "conversation" asks a question about an existing trip without changing it.
Respond with JSON only: {"intent": "plan|modify|conversation"}`,
			fmt.Sprintf("Existing trip present: %v\nMessage: %s", hasTrip, s.RawQuery), true)
		if err == nil && result.Parsed != nil {
			if m, ok := result.Parsed.(map[string]interface{}); ok {
				if v, ok := m["intent"].(string); ok {
					switch v {
					case "plan":
						return state.IntentPlan, "llm classification: plan"
					case "modify":
						if hasTrip {
							return state.IntentModify, "llm classification: modify"
						}
					case "conversation":
						if hasTrip {
							return state.IntentConversation, "llm classification: conversation"
						}
					}
				}
			}
		}
	}

	if hasTrip {
		for _, w := range questionWords {
			if strings.Contains(lower, w) {
				return state.IntentConversation, "heuristic: question word with existing trip"
			}
		}
		for _, w := range modifyWords {
			if strings.Contains(lower, w) {
				return state.IntentModify, "heuristic: modify keyword with existing trip"
			}
		}
	}

	return state.IntentPlan, "heuristic: default to plan"
}
