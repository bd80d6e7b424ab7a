package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/tripplanner/orchestrator/internal/state"
)

// FestivalCheckNode implements festival_check per spec §4.5: web search
// for festivals/events during the trip window, falling back to LLM
// generation, feeding the dedup-append events field.
type FestivalCheckNode struct {
	Deps *Deps
}

func (n *FestivalCheckNode) Name() string { return "festival_check" }

func (n *FestivalCheckNode) Execute(ctx context.Context, s *state.PlannerState) (state.PartialState, error) {
	start := time.Now()
	req := s.TripRequest

	var events []state.EnrichmentRecord
	var errs []string
	summary := ""

	window := "the trip dates"
	if !req.StartDate.IsZero() && !req.EndDate.IsZero() {
		window = fmt.Sprintf("%s to %s", req.StartDate.Format("2006-01-02"), req.EndDate.Format("2006-01-02"))
	}

	if n.Deps.Search != nil {
		answer, results, reason := n.Deps.Search.Search(ctx, fmt.Sprintf("festivals and events in %s during %s", req.Destination, window))
		if reason == "" {
			if answer != "" {
				events = append(events, state.EnrichmentRecord{
					CandidateBase: state.CandidateBase{ID: "festival-" + req.Destination, SourceOrigin: state.SourceTavilyWeb, Verified: false},
					Title:         "Events in " + req.Destination,
					Description:   answer,
					Category:      "festival",
				})
			}
			for i, r := range results {
				events = append(events, state.EnrichmentRecord{
					CandidateBase: state.CandidateBase{ID: fmt.Sprintf("festival-%d-%s", i, req.Destination), SourceOrigin: state.SourceTavilyWeb, Verified: false, BookingURL: r.URL},
					Title:         r.Title,
					Description:   r.Content,
					Category:      "festival",
				})
			}
			summary = fmt.Sprintf("web search returned %d events", len(events))
		} else {
			errs = append(errs, "festival_check: "+reason)
		}
	}

	if len(events) == 0 && n.Deps.LLM != nil {
		events = n.llmFallback(ctx, req, window)
		summary = "web search unavailable; used LLM-generated events"
	}

	return state.PartialState{
		Events: events,
		Errors: errs,
		AgentDecisions: []state.AgentDecision{{
			AgentName: n.Name(), Action: "check_festivals",
			Reasoning:     fmt.Sprintf("destination=%s window=%s", req.Destination, window),
			ResultSummary: summary, LatencyMS: time.Since(start).Milliseconds(), CreatedAt: time.Now(),
		}},
	}, nil
}

func (n *FestivalCheckNode) llmFallback(ctx context.Context, req state.TripRequest, window string) []state.EnrichmentRecord {
	result, err := n.Deps.LLM.Complete(ctx,
		`List up to 2 plausible festivals or local events for this destination and window. If none are likely, return an empty array. Respond with JSON only:
[{"title": string, "description": string}]`,
		fmt.Sprintf("Destination: %s, window: %s", req.Destination, window), true)
	if err != nil || result.Parsed == nil {
		return nil
	}
	items, ok := result.Parsed.([]interface{})
	if !ok {
		return nil
	}
	var out []state.EnrichmentRecord
	for i, raw := range items {
		m, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		title, _ := m["title"].(string)
		desc, _ := m["description"].(string)
		if title == "" {
			continue
		}
		out = append(out, state.EnrichmentRecord{
			CandidateBase: state.CandidateBase{ID: fmt.Sprintf("llm-festival-%d", i), SourceOrigin: state.SourceLLM, Verified: false},
			Title:         title, Description: desc, Category: "festival",
		})
	}
	return out
}
