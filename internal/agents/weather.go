package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/tripplanner/orchestrator/internal/state"
)

// WeatherCheckNode implements weather_check per spec §4.5: geocode the
// destination, query the forecast provider, and fall back to an LLM
// best-guess when the provider is unreachable.
type WeatherCheckNode struct {
	Deps *Deps
}

func (n *WeatherCheckNode) Name() string { return "weather_check" }

func (n *WeatherCheckNode) Execute(ctx context.Context, s *state.PlannerState) (state.PartialState, error) {
	start := time.Now()
	req := s.TripRequest

	geo := geocodePlace(ctx, req.Destination, n.Deps.Geocoder, n.Deps.LLM)
	var errs []string
	if geo.Reason != "" {
		errs = append(errs, "weather_check: "+geo.Reason)
	}

	forecastDays := forecastDaysFor(req)
	var summary string
	forecast, reason := n.Deps.Weather.Forecast(ctx, req.Destination, geo.Lat, geo.Lng, forecastDays)
	if reason != "" {
		errs = append(errs, "weather_check: "+reason)
		forecast = n.llmFallback(ctx, req, forecastDays)
		summary = "weather API unavailable; used LLM estimate"
	} else {
		summary = fmt.Sprintf("fetched %d-day forecast via weather API", len(forecast.Days))
	}

	return state.PartialState{
		Weather: &forecast,
		Errors:  errs,
		AgentDecisions: []state.AgentDecision{{
			AgentName: n.Name(), Action: "check_weather",
			Reasoning:     fmt.Sprintf("destination=%s forecast_days=%d", req.Destination, forecastDays),
			ResultSummary: summary, LatencyMS: time.Since(start).Milliseconds(), CreatedAt: time.Now(),
		}},
	}, nil
}

func forecastDaysFor(req state.TripRequest) int {
	if !req.StartDate.IsZero() && !req.EndDate.IsZero() {
		days := int(req.EndDate.Sub(req.StartDate).Hours()/24) + 1
		if days > 0 {
			return days
		}
	}
	return 5
}

func (n *WeatherCheckNode) llmFallback(ctx context.Context, req state.TripRequest, days int) state.WeatherSummary {
	if n.Deps.LLM == nil {
		return state.WeatherSummary{Destination: req.Destination, SourceOrigin: string(state.SourceLLM)}
	}
	result, err := n.Deps.LLM.Complete(ctx,
		`Estimate a plausible weather forecast. Respond with JSON only:
[{"temp_min_c": number, "temp_max_c": number, "condition": string}]`,
		fmt.Sprintf("Destination: %s, %d days starting around now", req.Destination, days), true)
	summary := state.WeatherSummary{Destination: req.Destination, SourceOrigin: string(state.SourceLLM)}
	if err != nil || result.Parsed == nil {
		return summary
	}
	items, ok := result.Parsed.([]interface{})
	if !ok {
		return summary
	}
	for _, raw := range items {
		m, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		minC, _ := m["temp_min_c"].(float64)
		maxC, _ := m["temp_max_c"].(float64)
		condition, _ := m["condition"].(string)
		summary.Days = append(summary.Days, state.WeatherDay{TempMinC: minC, TempMaxC: maxC, Condition: condition})
	}
	return summary
}
