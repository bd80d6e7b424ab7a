package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tripplanner/orchestrator/internal/state"
)

const (
	itineraryCostOverBudgetFactor = 1.20
	itemCostOverCandidateFactor   = 3.0
)

// ResponseValidatorNode implements response_validator per spec §4.5:
// cross-references itinerary items against the candidate pool, flagging
// items not found, itinerary cost over 1.20x budget, and any single item
// priced above 3x its matched candidate, per universal property 10.
type ResponseValidatorNode struct{}

func (n *ResponseValidatorNode) Name() string { return "response_validator" }

func (n *ResponseValidatorNode) Execute(ctx context.Context, s *state.PlannerState) (state.PartialState, error) {
	start := time.Now()

	candidatePrice := map[string]float64{}
	for _, a := range s.ActivityOptions {
		candidatePrice[strings.ToLower(a.Name)] = a.Price
	}
	for _, h := range s.HotelOptions {
		candidatePrice[strings.ToLower(h.Name)] = h.TotalPrice
	}
	for _, t := range s.FlightOptions {
		candidatePrice[strings.ToLower(t.Operator)] = t.Price
	}
	for _, t := range s.GroundTransportOptions {
		candidatePrice[strings.ToLower(t.Operator)] = t.Price
	}

	var issues []string
	for _, day := range s.Trip.Days {
		for _, item := range day.Items {
			if !item.Verified {
				issues = append(issues, fmt.Sprintf("day %d item %q not found in any candidate pool", day.Day, item.Name))
				continue
			}
			if price, ok := candidatePrice[strings.ToLower(item.Name)]; ok && price > 0 && item.Cost > itemCostOverCandidateFactor*price {
				issues = append(issues, fmt.Sprintf("day %d item %q cost %.0f exceeds %gx its candidate price %.0f", day.Day, item.Name, item.Cost, itemCostOverCandidateFactor, price))
			}
		}
	}

	if s.TripRequest.Budget > 0 && s.Trip.TotalCost > itineraryCostOverBudgetFactor*s.TripRequest.Budget {
		issues = append(issues, fmt.Sprintf("itinerary total cost %.0f exceeds %gx budget %.0f", s.Trip.TotalCost, itineraryCostOverBudgetFactor, s.TripRequest.Budget))
	}

	summary := fmt.Sprintf("%d validation issues", len(issues))
	if len(issues) == 0 {
		summary = "no validation issues found"
	}

	return state.PartialState{
		ValidationIssues: issues,
		AgentDecisions: []state.AgentDecision{{
			AgentName: n.Name(), Action: "validate_response",
			Reasoning:     fmt.Sprintf("checked %d itinerary days against %d candidates", len(s.Trip.Days), len(candidatePrice)),
			ResultSummary: summary, LatencyMS: time.Since(start).Milliseconds(), CreatedAt: time.Now(),
		}},
	}, nil
}
