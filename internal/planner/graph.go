// Package planner wires the agent nodes in internal/agents into the
// concrete pipeline graph described by spec §2's data-flow line, using
// internal/graph's Builder.
package planner

import (
	"github.com/tripplanner/orchestrator/internal/agents"
	"github.com/tripplanner/orchestrator/internal/graph"
	"github.com/tripplanner/orchestrator/internal/state"
)

// Build assembles the full planning graph:
//
//	supervisor -> intent_parser -> (destination_recommender | search_dispatcher)
//	  -> [flight_search, hotel_search, activity_search, weather_check] -> search_aggregator
//	  -> enrichment_dispatcher -> [local_intel, festival_check] -> enrichment_aggregator
//	  -> negotiator -> feasibility_validator -> [bundle pick]
//	  -> budget_optimizer -> itinerary_builder -> response_validator -> vibe_scorer
//	  -> approval_gate -> end
//
// supervisor's "modify" intent re-enters at search_dispatcher directly
// (an existing trip's research pools and trip_request are already in
// state, so there's nothing to re-parse); "conversation" ends the run
// immediately after supervisor, since no planning nodes need to run.
// supervisor writes no conversation_response, so the state keeps
// whatever value an earlier node left there.
func Build(deps *agents.Deps) (*graph.Graph, error) {
	b := graph.NewBuilder().
		Node(&agents.SupervisorNode{Deps: deps}).
		Node(&agents.IntentParserNode{Deps: deps}).
		Node(&agents.DestinationRecommenderNode{}).
		Node(&agents.SearchDispatcherNode{}).
		Node(&agents.FlightSearchNode{Deps: deps}).
		Node(&agents.HotelSearchNode{Deps: deps}).
		Node(&agents.ActivitySearchNode{Deps: deps}).
		Node(&agents.WeatherCheckNode{Deps: deps}).
		Node(&agents.SearchAggregatorNode{}).
		Node(&agents.EnrichmentDispatcherNode{}).
		Node(&agents.LocalIntelNode{Deps: deps}).
		Node(&agents.FestivalCheckNode{Deps: deps}).
		Node(&agents.EnrichmentAggregatorNode{}).
		Node(&agents.NegotiatorNode{Deps: deps}).
		Node(&agents.FeasibilityValidatorNode{}).
		Node(&agents.BudgetOptimizerNode{Deps: deps}).
		Node(&agents.ItineraryBuilderNode{Deps: deps}).
		Node(&agents.ResponseValidatorNode{}).
		Node(&agents.VibeScorerNode{Deps: deps}).
		Node(&agents.FinalApprovalNode{}).
		Entry("supervisor").
		Exit("supervisor").
		Exit("approval_gate").
		Conditional("supervisor", routeAfterSupervisor).
		Conditional("intent_parser", routeAfterIntentParser).
		FanOut("search_dispatcher", "search_aggregator",
			"flight_search", "hotel_search", "activity_search", "weather_check").
		Edge("search_aggregator", "enrichment_dispatcher").
		FanOut("enrichment_dispatcher", "enrichment_aggregator", "local_intel", "festival_check").
		Edge("enrichment_aggregator", "negotiator").
		Edge("negotiator", "feasibility_validator").
		Edge("budget_optimizer", "itinerary_builder").
		Edge("itinerary_builder", "response_validator").
		Edge("response_validator", "vibe_scorer").
		Edge("vibe_scorer", "approval_gate")

	// The continuation after any of the three human-in-the-loop gates is
	// decided purely by approval_type, never by string-matching
	// current_stage (which used to contain substrings like "dest" and
	// was brittle against renamed or reworded stages). The same router
	// is registered under all three gate node names; resume always asks
	// "what kind of approval just cleared", not "which node's label
	// looks like which string".
	b.Conditional("destination_recommender", routeAfterApproval)
	b.Conditional("feasibility_validator", routeAfterApproval)
	b.Conditional("approval_gate", routeAfterApproval)

	return b.Build()
}

func routeAfterSupervisor(s *state.PlannerState) graph.RouteResult {
	switch s.IntentType {
	case state.IntentModify:
		return graph.RouteResult{Next: "search_dispatcher"}
	case state.IntentConversation:
		return graph.RouteResult{}
	default:
		return graph.RouteResult{Next: "intent_parser"}
	}
}

func routeAfterIntentParser(s *state.PlannerState) graph.RouteResult {
	if s.TripRequest.Destination == "" {
		return graph.RouteResult{Next: "destination_recommender"}
	}
	return graph.RouteResult{Next: "search_dispatcher"}
}

// routeAfterApproval implements the post-suspension continuation fix:
// key off approval_type, never off a substring match on current_stage.
func routeAfterApproval(s *state.PlannerState) graph.RouteResult {
	switch s.ApprovalType {
	case state.ApprovalDestination:
		return graph.RouteResult{Next: "search_dispatcher"}
	case state.ApprovalBundle:
		return graph.RouteResult{Next: "budget_optimizer"}
	case state.ApprovalFinal:
		return graph.RouteResult{}
	default:
		return graph.RouteResult{}
	}
}
