package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/tripplanner/orchestrator/internal/state"
)

// SearchAggregatorNode is the barrier join for the parallel search fan-out
// (flight_search, hotel_search, activity_search, weather_check). The
// executor's barrier already merges each branch's PartialState through
// the per-field reducers before this node runs, so there is nothing left
// to combine here — its only job is to record that the join was reached
// and summarize what's now available downstream.
type SearchAggregatorNode struct{}

func (n *SearchAggregatorNode) Name() string { return "search_aggregator" }

func (n *SearchAggregatorNode) Execute(ctx context.Context, s *state.PlannerState) (state.PartialState, error) {
	start := time.Now()
	summary := fmt.Sprintf("flights=%d ground=%d hotels=%d activities=%d weather_days=%d",
		len(s.FlightOptions), len(s.GroundTransportOptions), len(s.HotelOptions), len(s.ActivityOptions), len(s.Weather.Days))
	return state.PartialState{
		AgentDecisions: []state.AgentDecision{{
			AgentName: n.Name(), Action: "join_search_branches",
			Reasoning:     "barrier join for flight_search/hotel_search/activity_search/weather_check",
			ResultSummary: summary, LatencyMS: time.Since(start).Milliseconds(), CreatedAt: time.Now(),
		}},
	}, nil
}

// EnrichmentDispatcherNode is the dispatch source for the parallel
// enrichment fan-out (local_intel, festival_check). It does no work of
// its own; the graph wiring attaches a FanOut router to this node's name
// so the executor dispatches both branches concurrently and joins at
// EnrichmentAggregatorNode.
type EnrichmentDispatcherNode struct{}

func (n *EnrichmentDispatcherNode) Name() string { return "enrichment_dispatcher" }

func (n *EnrichmentDispatcherNode) Execute(ctx context.Context, s *state.PlannerState) (state.PartialState, error) {
	start := time.Now()
	return state.PartialState{
		AgentDecisions: []state.AgentDecision{{
			AgentName: n.Name(), Action: "dispatch_enrichment",
			Reasoning:     "fan out to local_intel and festival_check",
			ResultSummary: "dispatched", LatencyMS: time.Since(start).Milliseconds(), CreatedAt: time.Now(),
		}},
	}, nil
}

// EnrichmentAggregatorNode is the barrier join for the enrichment
// fan-out, analogous to SearchAggregatorNode.
type EnrichmentAggregatorNode struct{}

func (n *EnrichmentAggregatorNode) Name() string { return "enrichment_aggregator" }

func (n *EnrichmentAggregatorNode) Execute(ctx context.Context, s *state.PlannerState) (state.PartialState, error) {
	start := time.Now()
	summary := fmt.Sprintf("local_tips=%d hidden_gems=%d events=%d", len(s.LocalTips), len(s.HiddenGems), len(s.Events))
	return state.PartialState{
		AgentDecisions: []state.AgentDecision{{
			AgentName: n.Name(), Action: "join_enrichment_branches",
			Reasoning:     "barrier join for local_intel/festival_check",
			ResultSummary: summary, LatencyMS: time.Since(start).Milliseconds(), CreatedAt: time.Now(),
		}},
	}, nil
}
