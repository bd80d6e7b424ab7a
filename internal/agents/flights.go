package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/tripplanner/orchestrator/internal/state"
)

// shortHopThresholdKM is spec §8 property 9 / S2's cutoff: below this
// distance, flight_search returns only ground transport.
const shortHopThresholdKM = 200.0

// FlightSearchNode implements flight_search per spec §4.5, adapted from
// FlightAgent.searchFlights/processDirectly (internal/agents/specialist/
// flight_agent.go), generalized from a single flight-API call into the
// geocode -> haversine -> short-hop-or-flight-API -> always-append-ground
// pipeline.
type FlightSearchNode struct {
	Deps *Deps
}

func (n *FlightSearchNode) Name() string { return "flight_search" }

func (n *FlightSearchNode) Execute(ctx context.Context, s *state.PlannerState) (state.PartialState, error) {
	start := time.Now()
	req := s.TripRequest

	originGeo := geocodePlace(ctx, req.Origin, n.Deps.Geocoder, n.Deps.LLM)
	destGeo := geocodePlace(ctx, req.Destination, n.Deps.Geocoder, n.Deps.LLM)

	var errs []string
	if originGeo.Reason != "" {
		errs = append(errs, "flight_search: "+originGeo.Reason)
	}
	if destGeo.Reason != "" {
		errs = append(errs, "flight_search: "+destGeo.Reason)
	}

	distanceKM := haversineKM(originGeo.Lat, originGeo.Lng, destGeo.Lat, destGeo.Lng)
	ground := groundTransportOptions(req.Origin, req.Destination, distanceKM)

	var flights []state.TransportCandidate
	var summary string

	if distanceKM > 0 && distanceKM < shortHopThresholdKM {
		summary = fmt.Sprintf("short hop (%.0f km): ground transport only", distanceKM)
	} else {
		flights, summary = n.searchFlights(ctx, req, distanceKM)
	}

	partial := state.PartialState{
		FlightOptions:          flights,
		GroundTransportOptions: ground,
		Errors:                 errs,
		AgentDecisions: []state.AgentDecision{
			{
				AgentName:     n.Name(),
				Action:        "search_transport",
				Reasoning:     fmt.Sprintf("origin=%s(%s) destination=%s(%s) distance_km=%.0f", req.Origin, originGeo.Source, req.Destination, destGeo.Source, distanceKM),
				ResultSummary: summary,
				LatencyMS:     time.Since(start).Milliseconds(),
				CreatedAt:     time.Now(),
			},
		},
	}
	return partial, nil
}

func (n *FlightSearchNode) searchFlights(ctx context.Context, req state.TripRequest, distanceKM float64) ([]state.TransportCandidate, string) {
	originIATA, originOK := cityIATA[normalizeCityKey(req.Origin)]
	destIATA, destOK := cityIATA[normalizeCityKey(req.Destination)]

	if originOK && destOK {
		date := "2026-01-01"
		if !req.StartDate.IsZero() {
			date = req.StartDate.Format("2006-01-02")
		}
		adults := req.NumTravelers
		if adults <= 0 {
			adults = 1
		}
		candidates, reason := n.Deps.Flights.Search(ctx, originIATA, destIATA, date, "", adults)
		if reason == "" && len(candidates) > 0 {
			return candidates, fmt.Sprintf("found %d flight offers via flight API", len(candidates))
		}
	}

	if n.Deps.Search != nil {
		query := fmt.Sprintf("flight fares from %s to %s", req.Origin, req.Destination)
		answer, _, reason := n.Deps.Search.Search(ctx, query)
		if reason == "" && answer != "" {
			return nil, "flight API unavailable; web search fallback returned context, no structured candidates"
		}
	}

	return nil, fmt.Sprintf("no flight candidates (distance %.0f km, flight API and web search both unavailable)", distanceKM)
}

func normalizeCityKey(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		if r >= 'A' && r <= 'Z' {
			r = r + ('a' - 'A')
		}
		out = append(out, r)
	}
	return string(out)
}
