// Package agents adapts the teacher's request/response specialist agents
// (internal/agents/specialist) into the pure state -> partial-state nodes
// spec §4.5 requires: each node accepts a read-only PlannerState snapshot,
// returns only the fields it changed, always appends an AgentDecision, and
// never returns a Go error for an expected failure mode — an unreachable
// provider or a malformed LLM response becomes an entry in Errors, not a
// propagated error, per spec §4.5/§7 item 5.
package agents

import (
	"time"

	"github.com/tripplanner/orchestrator/internal/httpcache"
	"github.com/tripplanner/orchestrator/internal/llm/providers"
	"github.com/tripplanner/orchestrator/internal/llm/wrapper"
	"github.com/tripplanner/orchestrator/internal/negotiator"
	trvlproviders "github.com/tripplanner/orchestrator/internal/providers"
	"github.com/tripplanner/orchestrator/internal/state"
)

// Deps bundles every external collaborator a node family needs, built once
// at server/demo startup and threaded into each node constructor. This
// replaces the teacher's per-agent BaseAgent(llmProvider, toolRegistry,
// stateManager) construction with one shared dependency set, since nodes
// here are plain functions rather than long-lived agent objects.
type Deps struct {
	LLM   *wrapper.Wrapper
	Model string

	Flights  *trvlproviders.FlightProvider
	Hotels   *trvlproviders.HotelProvider
	Places   *trvlproviders.PlacesProvider
	Weather  *trvlproviders.WeatherProvider
	Geocoder *trvlproviders.GeocoderProvider
	Search   *trvlproviders.WebSearchProvider

	Negotiator *negotiator.Negotiator
}

// NewDeps wires every provider adapter and the LLM wrapper from one
// config + shared cache client, mirroring how cmd/langgraph-demo wires
// BaseAgent's in the teacher repo but collapsed into a single constructor.
func NewDeps(cfg trvlproviders.Config, cache *httpcache.Client, llmProvider providers.LLMProvider, model string) *Deps {
	return &Deps{
		LLM:        wrapper.New(llmProvider, model),
		Model:      model,
		Flights:    trvlproviders.NewFlightProvider(cfg, cache),
		Hotels:     trvlproviders.NewHotelProvider(cfg, cache),
		Places:     trvlproviders.NewPlacesProvider(cfg, cache),
		Weather:    trvlproviders.NewWeatherProvider(cfg, cache),
		Geocoder:   trvlproviders.NewGeocoderProvider(cfg, cache),
		Search:     trvlproviders.NewWebSearchProvider(cfg, cache),
		Negotiator: negotiator.New(),
	}
}

// decision builds one AgentDecision record, the audit entry every node
// must append per spec §4.5.
func decision(agentName, action, reasoning, resultSummary string, tokensUsed int, latency time.Duration) state.AgentDecision {
	return state.AgentDecision{
		AgentName:     agentName,
		Action:        action,
		Reasoning:     reasoning,
		ResultSummary: resultSummary,
		TokensUsed:    tokensUsed,
		LatencyMS:     latency.Milliseconds(),
		CreatedAt:     time.Now(),
	}
}
