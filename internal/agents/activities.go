package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/tripplanner/orchestrator/internal/state"
)

// ActivitySearchNode implements activity_search per spec §4.5: geocode
// the destination, then primary places API -> web search -> LLM, each
// tagging source_origin honestly.
type ActivitySearchNode struct {
	Deps *Deps
}

func (n *ActivitySearchNode) Name() string { return "activity_search" }

func (n *ActivitySearchNode) Execute(ctx context.Context, s *state.PlannerState) (state.PartialState, error) {
	start := time.Now()
	req := s.TripRequest

	geo := geocodePlace(ctx, req.Destination, n.Deps.Geocoder, n.Deps.LLM)
	var errs []string
	if geo.Reason != "" {
		errs = append(errs, "activity_search: "+geo.Reason)
	}

	activities, reason := n.Deps.Places.Search(ctx, "things to do in "+req.Destination, geo.Lat, geo.Lng, 10000)
	summary := fmt.Sprintf("found %d activities via places API", len(activities))

	if len(activities) == 0 {
		if reason != "" {
			errs = append(errs, "activity_search: "+reason)
		}
		if n.Deps.Search != nil {
			answer, _, searchReason := n.Deps.Search.Search(ctx, fmt.Sprintf("top things to do in %s", req.Destination))
			if searchReason == "" && answer != "" {
				activities = append(activities, state.ActivityCandidate{
					CandidateBase: state.CandidateBase{
						ID:           "websearch-activity-" + req.Destination,
						Price:        300,
						Currency:     "INR",
						SourceOrigin: state.SourceTavilyWeb,
						Verified:     false,
					},
					Name:          "Explore " + req.Destination,
					Category:      "sightseeing",
					DurationHours: 3,
					Rating:        3.5,
				})
				summary = "places API empty; used web search fallback"
			}
		}
		if len(activities) == 0 && n.Deps.LLM != nil {
			activities, summary = n.llmFallback(ctx, req)
		}
	}

	return state.PartialState{
		ActivityOptions: activities,
		Errors:          errs,
		AgentDecisions: []state.AgentDecision{{
			AgentName: n.Name(), Action: "search_activities",
			Reasoning:     fmt.Sprintf("destination=%s interests=%v", req.Destination, req.Interests),
			ResultSummary: summary, LatencyMS: time.Since(start).Milliseconds(), CreatedAt: time.Now(),
		}},
	}, nil
}

func (n *ActivitySearchNode) llmFallback(ctx context.Context, req state.TripRequest) ([]state.ActivityCandidate, string) {
	result, err := n.Deps.LLM.Complete(ctx,
		`Suggest 6 plausible activities for the destination matching the traveler's interests. Respond with JSON only:
[{"name": string, "category": string, "duration_hours": number, "price_inr": number, "rating": number}]`,
		fmt.Sprintf("Destination: %s, interests: %v", req.Destination, req.Interests), true)
	if err != nil || result.Parsed == nil {
		return nil, "all activity sources unavailable"
	}
	items, ok := result.Parsed.([]interface{})
	if !ok {
		return nil, "LLM activity suggestion malformed"
	}
	var out []state.ActivityCandidate
	for i, raw := range items {
		m, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		name, _ := m["name"].(string)
		category, _ := m["category"].(string)
		duration, _ := m["duration_hours"].(float64)
		price, _ := m["price_inr"].(float64)
		rating, _ := m["rating"].(float64)
		if name == "" {
			continue
		}
		out = append(out, state.ActivityCandidate{
			CandidateBase: state.CandidateBase{
				ID:           fmt.Sprintf("llm-activity-%d", i),
				Price:        price,
				Currency:     "INR",
				SourceOrigin: state.SourceLLM,
				Verified:     false,
			},
			Name:          name,
			Category:      category,
			DurationHours: duration,
			Rating:        rating,
		})
	}
	if len(out) == 0 {
		return nil, "all activity sources unavailable"
	}
	return out, "places/web sources empty; used LLM suggestions"
}
