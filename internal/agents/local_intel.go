package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/tripplanner/orchestrator/internal/state"
)

// LocalIntelNode implements local_intel per spec §4.5: web search for
// local tips and hidden gems, falling back to LLM generation, each
// appended to the dedup-append local_tips/hidden_gems fields.
type LocalIntelNode struct {
	Deps *Deps
}

func (n *LocalIntelNode) Name() string { return "local_intel" }

func (n *LocalIntelNode) Execute(ctx context.Context, s *state.PlannerState) (state.PartialState, error) {
	start := time.Now()
	req := s.TripRequest

	var tips, gems []state.EnrichmentRecord
	var errs []string
	summary := ""

	if n.Deps.Search != nil {
		answer, results, reason := n.Deps.Search.Search(ctx, fmt.Sprintf("local tips and hidden gems in %s", req.Destination))
		if reason == "" {
			if answer != "" {
				tips = append(tips, state.EnrichmentRecord{
					CandidateBase: state.CandidateBase{ID: "tip-" + req.Destination, SourceOrigin: state.SourceTavilyWeb, Verified: false},
					Title:         "Local tip for " + req.Destination,
					Description:   answer,
					Category:      "tip",
				})
			}
			for i, r := range results {
				gems = append(gems, state.EnrichmentRecord{
					CandidateBase: state.CandidateBase{ID: fmt.Sprintf("gem-%d-%s", i, req.Destination), SourceOrigin: state.SourceTavilyWeb, Verified: false, BookingURL: r.URL},
					Title:         r.Title,
					Description:   r.Content,
					Category:      "hidden_gem",
				})
			}
			summary = fmt.Sprintf("web search returned %d tips/gems", len(tips)+len(gems))
		} else {
			errs = append(errs, "local_intel: "+reason)
		}
	}

	if len(tips) == 0 && len(gems) == 0 && n.Deps.LLM != nil {
		tips, gems = n.llmFallback(ctx, req)
		summary = "web search unavailable; used LLM-generated local intel"
	}

	return state.PartialState{
		LocalTips:  tips,
		HiddenGems: gems,
		Errors:     errs,
		AgentDecisions: []state.AgentDecision{{
			AgentName: n.Name(), Action: "gather_local_intel",
			Reasoning:     fmt.Sprintf("destination=%s", req.Destination),
			ResultSummary: summary, LatencyMS: time.Since(start).Milliseconds(), CreatedAt: time.Now(),
		}},
	}, nil
}

func (n *LocalIntelNode) llmFallback(ctx context.Context, req state.TripRequest) (tips, gems []state.EnrichmentRecord) {
	result, err := n.Deps.LLM.Complete(ctx,
		`Suggest 2 local tips and 2 hidden gems for the destination. Respond with JSON only:
{"tips": [{"title": string, "description": string}], "hidden_gems": [{"title": string, "description": string}]}`,
		fmt.Sprintf("Destination: %s", req.Destination), true)
	if err != nil || result.Parsed == nil {
		return nil, nil
	}
	m, ok := result.Parsed.(map[string]interface{})
	if !ok {
		return nil, nil
	}
	extract := func(key, category string) []state.EnrichmentRecord {
		items, ok := m[key].([]interface{})
		if !ok {
			return nil
		}
		var out []state.EnrichmentRecord
		for i, raw := range items {
			im, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			title, _ := im["title"].(string)
			desc, _ := im["description"].(string)
			if title == "" {
				continue
			}
			out = append(out, state.EnrichmentRecord{
				CandidateBase: state.CandidateBase{ID: fmt.Sprintf("llm-%s-%d", category, i), SourceOrigin: state.SourceLLM, Verified: false},
				Title:         title, Description: desc, Category: category,
			})
		}
		return out
	}
	return extract("tips", "tip"), extract("hidden_gems", "hidden_gem")
}
