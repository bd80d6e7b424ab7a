package agents

import (
	"context"
	"time"

	"github.com/tripplanner/orchestrator/internal/state"
)

// SearchDispatcherNode is the dispatch source for the parallel research
// fan-out (flight_search, hotel_search, activity_search, weather_check).
// Like EnrichmentDispatcherNode it does no work itself; the graph wiring
// attaches a FanOut router to its name, and it also doubles as the entry
// point a resumed run re-enters at per S6 ("the graph executes from
// search_dispatcher forward").
type SearchDispatcherNode struct{}

func (n *SearchDispatcherNode) Name() string { return "search_dispatcher" }

func (n *SearchDispatcherNode) Execute(ctx context.Context, s *state.PlannerState) (state.PartialState, error) {
	start := time.Now()
	stage := n.Name()
	return state.PartialState{
		CurrentStage: &stage,
		AgentDecisions: []state.AgentDecision{{
			AgentName: n.Name(), Action: "dispatch_search",
			Reasoning:     "fan out to flight_search/hotel_search/activity_search/weather_check",
			ResultSummary: "dispatched", LatencyMS: time.Since(start).Milliseconds(), CreatedAt: time.Now(),
		}},
	}, nil
}

// FinalApprovalNode is the closing HITL gate per spec §2's data-flow line
// ("... -> vibe_scorer -> approval_gate -> end"): it surfaces the built
// trip and vibe score for a last look before the run completes.
type FinalApprovalNode struct{}

func (n *FinalApprovalNode) Name() string { return "approval_gate" }

func (n *FinalApprovalNode) Execute(ctx context.Context, s *state.PlannerState) (state.PartialState, error) {
	start := time.Now()
	requiresApproval := true
	approvalType := state.ApprovalFinal
	response := "Your trip is ready for final review."
	if s.Trip.Destination != "" {
		response = "Your trip to " + s.Trip.Destination + " is ready for final review."
	}
	stage := n.Name()
	return state.PartialState{
		RequiresApproval:     &requiresApproval,
		ApprovalType:         &approvalType,
		ConversationResponse: &response,
		CurrentStage:         &stage,
		AgentDecisions: []state.AgentDecision{{
			AgentName: n.Name(), Action: "request_final_approval",
			Reasoning:     "trip built, awaiting final confirmation",
			ResultSummary: response, LatencyMS: time.Since(start).Milliseconds(), CreatedAt: time.Now(),
		}},
	}, nil
}
