package agents

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tripplanner/orchestrator/internal/state"
)

// ItineraryBuilderNode implements itinerary_builder per spec §4.5: calls
// the LLM with a large context (activities, weather, events, tips,
// selected transport/stay), parses leniently against a strict schema,
// then verifies each item against the candidate pool by name (exact,
// then substring), rewriting cost from the matched candidate's real
// price and tagging verified accordingly.
type ItineraryBuilderNode struct {
	Deps *Deps
}

func (n *ItineraryBuilderNode) Name() string { return "itinerary_builder" }

func (n *ItineraryBuilderNode) Execute(ctx context.Context, s *state.PlannerState) (state.PartialState, error) {
	start := time.Now()
	req := s.TripRequest

	durationDays := 1
	if !req.StartDate.IsZero() && !req.EndDate.IsZero() {
		d := int(req.EndDate.Sub(req.StartDate).Hours()/24) + 1
		if d > 0 {
			durationDays = d
		}
	}

	raw := n.generate(ctx, s, durationDays)

	days, totalCost := n.verifyAgainstCandidates(raw, s)

	trip := state.Trip{
		Destination: req.Destination,
		Days:        days,
		TotalCost:   totalCost,
		ShareableID: fmt.Sprintf("trip-%d", time.Now().UnixNano()),
	}

	summary := fmt.Sprintf("built %d-day itinerary, total_cost=%.0f", len(days), totalCost)
	if len(days) == 0 {
		summary = "itinerary generation produced no days; trip left empty"
	}

	return state.PartialState{
		Trip: &trip,
		AgentDecisions: []state.AgentDecision{{
			AgentName: n.Name(), Action: "build_itinerary",
			Reasoning:     fmt.Sprintf("destination=%s days=%d", req.Destination, durationDays),
			ResultSummary: summary, LatencyMS: time.Since(start).Milliseconds(), CreatedAt: time.Now(),
		}},
	}, nil
}

// rawItineraryDay/rawItineraryItem mirror the LLM's strict output schema
// before candidate verification rewrites costs and verified flags.
type rawItineraryItem struct {
	Name      string
	Category  string
	StartTime string
	EndTime   string
	Cost      float64
	Notes     string
}

type rawItineraryDay struct {
	Day   int
	Items []rawItineraryItem
}

func (n *ItineraryBuilderNode) generate(ctx context.Context, s *state.PlannerState, durationDays int) []rawItineraryDay {
	if n.Deps.LLM == nil {
		return nil
	}
	req := s.TripRequest

	var activityLines []string
	for _, a := range s.ActivityOptions {
		activityLines = append(activityLines, fmt.Sprintf("%s (%s, %.1fh, ₹%.0f)", a.Name, a.Category, a.DurationHours, a.Price))
	}
	var tipLines []string
	for _, t := range s.LocalTips {
		tipLines = append(tipLines, t.Title+": "+t.Description)
	}
	var eventLines []string
	for _, e := range s.Events {
		eventLines = append(eventLines, e.Title+": "+e.Description)
	}

	transportName, hotelName := "unselected", "unselected"
	if s.SelectedOutboundFlight != nil {
		transportName = s.SelectedOutboundFlight.Operator
	}
	if s.SelectedHotel != nil {
		hotelName = s.SelectedHotel.Name
	}

	userPrompt := fmt.Sprintf(
		"Destination: %s\nDuration: %d days\nSelected transport: %s\nSelected hotel: %s\nActivities available: %s\nWeather: %d days forecast, source %s\nLocal tips: %s\nEvents: %s",
		req.Destination, durationDays, transportName, hotelName,
		strings.Join(activityLines, "; "), len(s.Weather.Days), s.Weather.SourceOrigin,
		strings.Join(tipLines, "; "), strings.Join(eventLines, "; "))

	result, err := n.Deps.LLM.Complete(ctx,
		`Build a day-by-day travel itinerary using only the supplied activities, transport, and hotel. Respond with JSON only:
[{"day": number, "items": [{"name": string, "category": string, "start_time": string, "end_time": string, "cost": number, "notes": string}]}]`,
		userPrompt, true)
	if err != nil || result.Parsed == nil {
		return nil
	}
	items, ok := result.Parsed.([]interface{})
	if !ok {
		return nil
	}

	var days []rawItineraryDay
	for _, raw := range items {
		dm, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		dayNum := int(asFloat(dm["day"]))
		var dayItems []rawItineraryItem
		itemList, _ := dm["items"].([]interface{})
		for _, ri := range itemList {
			im, ok := ri.(map[string]interface{})
			if !ok {
				continue
			}
			name, _ := im["name"].(string)
			if name == "" {
				continue
			}
			category, _ := im["category"].(string)
			startTime, _ := im["start_time"].(string)
			endTime, _ := im["end_time"].(string)
			notes, _ := im["notes"].(string)
			dayItems = append(dayItems, rawItineraryItem{
				Name: name, Category: category, StartTime: startTime, EndTime: endTime,
				Cost: asFloat(im["cost"]), Notes: notes,
			})
		}
		days = append(days, rawItineraryDay{Day: dayNum, Items: dayItems})
	}
	return days
}

func asFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	default:
		return 0
	}
}

// verifyAgainstCandidates implements the candidate-verification rewrite
// rule: each item is matched against every candidate pool by exact name,
// then by substring; a match rewrites cost from the candidate's real
// price and tags verified=true, otherwise the LLM's cost is kept as-is
// with verified=false.
func (n *ItineraryBuilderNode) verifyAgainstCandidates(raw []rawItineraryDay, s *state.PlannerState) ([]state.ItineraryDay, float64) {
	type named struct {
		name         string
		price        float64
		sourceOrigin state.SourceOrigin
	}
	var pool []named
	for _, a := range s.ActivityOptions {
		pool = append(pool, named{a.Name, a.Price, a.SourceOrigin})
	}
	for _, h := range s.HotelOptions {
		pool = append(pool, named{h.Name, h.TotalPrice, h.SourceOrigin})
	}
	for _, t := range s.FlightOptions {
		pool = append(pool, named{t.Operator, t.Price, t.SourceOrigin})
	}
	for _, t := range s.GroundTransportOptions {
		pool = append(pool, named{t.Operator, t.Price, t.SourceOrigin})
	}

	match := func(itemName string) (named, bool) {
		lower := strings.ToLower(strings.TrimSpace(itemName))
		for _, p := range pool {
			if strings.ToLower(p.name) == lower {
				return p, true
			}
		}
		for _, p := range pool {
			if p.name == "" {
				continue
			}
			pl := strings.ToLower(p.name)
			if strings.Contains(pl, lower) || strings.Contains(lower, pl) {
				return p, true
			}
		}
		return named{}, false
	}

	var totalCost float64
	var days []state.ItineraryDay
	for _, rd := range raw {
		var items []state.ItineraryItem
		for _, ri := range rd.Items {
			cost := ri.Cost
			verified := false
			sourceOrigin := ""
			if m, ok := match(ri.Name); ok {
				cost = m.price
				verified = true
				sourceOrigin = string(m.sourceOrigin)
			}
			items = append(items, state.ItineraryItem{
				Name: ri.Name, Category: ri.Category, StartTime: ri.StartTime, EndTime: ri.EndTime,
				Cost: cost, Verified: verified, SourceOrigin: sourceOrigin, Notes: ri.Notes,
			})
			totalCost += cost
		}
		days = append(days, state.ItineraryDay{Day: rd.Day, Items: items})
	}
	return days, totalCost
}
