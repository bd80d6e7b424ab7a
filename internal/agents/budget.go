package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/tripplanner/orchestrator/internal/state"
)

// defaultAllocationSplit is the category-allocation fallback per spec
// §4.5: "on LLM unavailability, picks index 0 of each with default split".
var defaultAllocationSplit = map[string]float64{
	"transport":     0.30,
	"accommodation": 0.35,
	"activities":    0.20,
	"meals":         0.10,
	"misc":          0.05,
}

// BudgetOptimizerNode implements budget_optimizer per spec §4.5: pin down
// the selected transport/stay/activities from the user's chosen bundle
// (or index-0 fallback when no bundle was selected), ask the LLM for a
// category-allocation split, and populate the budget tracker.
type BudgetOptimizerNode struct {
	Deps *Deps
}

func (n *BudgetOptimizerNode) Name() string { return "budget_optimizer" }

func (n *BudgetOptimizerNode) Execute(ctx context.Context, s *state.PlannerState) (state.PartialState, error) {
	start := time.Now()
	req := s.TripRequest

	var flight *state.TransportCandidate
	var hotel *state.HotelCandidate
	var activities []state.ActivityCandidate

	for _, b := range s.Bundles {
		if b.ID == s.SelectedBundleID {
			t := b.Transport
			h := b.Stay
			flight = &t
			hotel = &h
			activities = b.Activities
			break
		}
	}
	if flight == nil && len(s.FlightOptions) > 0 {
		flight = &s.FlightOptions[0]
	}
	if flight == nil && len(s.GroundTransportOptions) > 0 {
		flight = &s.GroundTransportOptions[0]
	}
	if hotel == nil && len(s.HotelOptions) > 0 {
		hotel = &s.HotelOptions[0]
	}
	if activities == nil && len(s.ActivityOptions) > 0 {
		count := len(s.ActivityOptions)
		if count > 5 {
			count = 5
		}
		activities = s.ActivityOptions[:count]
	}

	split := n.allocationSplit(ctx, req)

	spend := map[string]float64{}
	if flight != nil {
		spend["transport"] = flight.Price
	}
	if hotel != nil {
		spend["accommodation"] = hotel.TotalPrice
	}
	activityTotal := 0.0
	for _, a := range activities {
		activityTotal += a.Price
	}
	spend["activities"] = activityTotal

	allocation := map[string]float64{}
	var warnings []string
	for category, fraction := range split {
		alloc := req.Budget * fraction
		allocation[category] = alloc
		if spent, ok := spend[category]; ok && alloc > 0 && spent > alloc {
			warnings = append(warnings, fmt.Sprintf("%s spend %.0f exceeds allocation %.0f", category, spent, alloc))
		}
	}

	tracker := state.BudgetTracker{Allocation: allocation, Spend: spend, Warnings: warnings}

	return state.PartialState{
		SelectedOutboundFlight: flight,
		SelectedHotel:          hotel,
		SelectedActivities:     activities,
		BudgetTracker:          &tracker,
		BudgetWarnings:         warnings,
		AgentDecisions: []state.AgentDecision{{
			AgentName: n.Name(), Action: "optimize_budget",
			Reasoning:     fmt.Sprintf("bundle=%s budget=%.0f", s.SelectedBundleID, req.Budget),
			ResultSummary: fmt.Sprintf("allocated across %d categories, %d warnings", len(allocation), len(warnings)),
			LatencyMS:     time.Since(start).Milliseconds(), CreatedAt: time.Now(),
		}},
	}, nil
}

func (n *BudgetOptimizerNode) allocationSplit(ctx context.Context, req state.TripRequest) map[string]float64 {
	if n.Deps.LLM == nil {
		return defaultAllocationSplit
	}
	result, err := n.Deps.LLM.Complete(ctx,
		`Propose a budget allocation split across categories summing to approximately 1.0. Respond with JSON only:
{"transport": number, "accommodation": number, "activities": number, "meals": number, "misc": number}`,
		fmt.Sprintf("Destination: %s, budget: %.0f, travel_style: %s", req.Destination, req.Budget, req.TravelStyle), true)
	if err != nil || result.Parsed == nil {
		return defaultAllocationSplit
	}
	m, ok := result.Parsed.(map[string]interface{})
	if !ok {
		return defaultAllocationSplit
	}
	split := map[string]float64{}
	total := 0.0
	for _, key := range []string{"transport", "accommodation", "activities", "meals", "misc"} {
		v, ok := m[key].(float64)
		if !ok || v <= 0 {
			return defaultAllocationSplit
		}
		split[key] = v
		total += v
	}
	if total < 0.5 || total > 1.5 {
		return defaultAllocationSplit
	}
	return split
}
