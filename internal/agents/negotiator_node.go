package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tripplanner/orchestrator/internal/negotiator"
	"github.com/tripplanner/orchestrator/internal/state"
)

// NegotiatorNode invokes the trade-off negotiator engine over the
// research pools gathered by the search/enrichment fan-outs, per spec
// §4.4's steps 1-7 (normalize, preselect, score, select, rationale,
// feasibility, cache) — all of which live in internal/negotiator; this
// node is only the glue that reads state in and writes bundles back out.
type NegotiatorNode struct {
	Deps *Deps
}

func (n *NegotiatorNode) Name() string { return "negotiator" }

func (n *NegotiatorNode) Execute(ctx context.Context, s *state.PlannerState) (state.PartialState, error) {
	start := time.Now()
	req := s.TripRequest

	durationDays := 1
	if !req.StartDate.IsZero() && !req.EndDate.IsZero() {
		d := int(req.EndDate.Sub(req.StartDate).Hours()/24) + 1
		if d > 0 {
			durationDays = d
		}
	}

	in := negotiator.Input{
		Transports:   append(append([]state.TransportCandidate{}, s.FlightOptions...), s.GroundTransportOptions...),
		Stays:        s.HotelOptions,
		Activities:   s.ActivityOptions,
		Budget:       req.Budget,
		DurationDays: durationDays,
		NumTravelers: req.NumTravelers,
		Interests:    req.Interests,
		Destination:  req.Destination,
		StartDate:    req.StartDate.Format("2006-01-02"),
		EndDate:      req.EndDate.Format("2006-01-02"),
		WhatIfDelta:  s.WhatIfDelta,
	}

	out := n.Deps.Negotiator.Negotiate(in)
	cacheKey := out.CacheKey

	return state.PartialState{
		Bundles:            out.Bundles,
		NegotiatorCacheKey: &cacheKey,
		NegotiationLog:     out.Log,
		FeasibilityIssues:  feasibilityLines(out.Log),
		AgentDecisions: []state.AgentDecision{{
			AgentName: n.Name(), Action: "negotiate_bundles",
			Reasoning:     fmt.Sprintf("budget=%.0f duration_days=%d travelers=%d", req.Budget, durationDays, req.NumTravelers),
			ResultSummary: fmt.Sprintf("produced %d bundles", len(out.Bundles)),
			LatencyMS:     time.Since(start).Milliseconds(), CreatedAt: time.Now(),
		}},
	}, nil
}

// feasibilityLines filters the negotiator's decision log down to the
// lines that describe a feasibility issue (step 6 of spec §4.4), since
// internal/negotiator interleaves trace lines and feasibility issues in
// one log slice rather than exposing them separately.
func feasibilityLines(log []string) []string {
	var out []string
	for _, l := range log {
		if strings.Contains(l, "flagged") || strings.Contains(l, "dropped") || strings.Contains(l, "exceeds") {
			out = append(out, l)
		}
	}
	return out
}

// FeasibilityValidatorNode is the thin gate between the negotiator's
// automatic bundle generation and the human bundle pick: it surfaces the
// three bundles plus any feasibility issues and suspends the run for
// approval, per spec §2's data-flow line
// ("negotiator -> feasibility_validator -> [user bundle pick]").
type FeasibilityValidatorNode struct{}

func (n *FeasibilityValidatorNode) Name() string { return "feasibility_validator" }

func (n *FeasibilityValidatorNode) Execute(ctx context.Context, s *state.PlannerState) (state.PartialState, error) {
	start := time.Now()

	ids := make([]string, len(s.Bundles))
	for i, b := range s.Bundles {
		ids[i] = fmt.Sprintf("%s (total=%.0f, experience=%.0f)", b.ID, b.Breakdown.Total, b.ExperienceScore)
	}

	requiresApproval := true
	approvalType := state.ApprovalBundle
	response := fmt.Sprintf("Choose a bundle: %v", ids)
	if len(s.FeasibilityIssues) > 0 {
		response = fmt.Sprintf("%s (feasibility notes: %v)", response, s.FeasibilityIssues)
	}
	stage := n.Name()

	return state.PartialState{
		RequiresApproval:     &requiresApproval,
		ApprovalType:         &approvalType,
		ConversationResponse: &response,
		CurrentStage:         &stage,
		AgentDecisions: []state.AgentDecision{{
			AgentName: n.Name(), Action: "request_bundle_selection",
			Reasoning:     fmt.Sprintf("%d bundles available", len(s.Bundles)),
			ResultSummary: response, LatencyMS: time.Since(start).Milliseconds(), CreatedAt: time.Now(),
		}},
	}, nil
}
