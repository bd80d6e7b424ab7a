package agents

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tripplanner/orchestrator/internal/state"
)

// IntentParserNode implements intent_parser per spec §4.5: extract a
// structured TripRequest from raw_query, primarily via the LLM, falling
// back to the heuristics below (city dictionary, budget/duration regex,
// style/interest word lists) when the LLM is unavailable or returns
// something unusable. Grounded on BaseAgent.ExtractParameters/
// RequestParameters (internal/agents/specialist/base_agent.go), whose
// keyword-scan approach this heuristic path generalizes.
type IntentParserNode struct {
	Deps *Deps
}

func (n *IntentParserNode) Name() string { return "intent_parser" }

func (n *IntentParserNode) Execute(ctx context.Context, s *state.PlannerState) (state.PartialState, error) {
	start := time.Now()

	heuristic := parseHeuristically(s.RawQuery)
	req := heuristic
	summary := "parsed via heuristic fallback"
	tokens := 0

	if n.Deps.LLM != nil {
		result, err := n.Deps.LLM.Complete(ctx,
			`Extract a structured travel request from the user's message. Respond with JSON only:
{"origin": string, "destination": string, "start_date": "YYYY-MM-DD", "end_date": "YYYY-MM-DD", "budget": number, "num_travelers": number, "travel_style": "backpacker|balanced|luxury", "interests": [string]}
Use "" or 0 for fields you cannot determine.`,
			s.RawQuery, true)
		if err == nil && result.Parsed != nil {
			if m, ok := result.Parsed.(map[string]interface{}); ok {
				req = mergeLLMTripRequest(heuristic, m)
				summary = "parsed via LLM with heuristic fill-in"
				tokens = result.TokensUsed
			}
		}
	}

	if len(req.Destination) < 4 {
		req.Destination = ""
	}

	return state.PartialState{
		TripRequest: &req,
		AgentDecisions: []state.AgentDecision{
			{
				AgentName:     n.Name(),
				Action:        "extract_trip_request",
				Reasoning:     fmt.Sprintf("raw_query=%q", s.RawQuery),
				ResultSummary: summary,
				TokensUsed:    tokens,
				LatencyMS:     time.Since(start).Milliseconds(),
				CreatedAt:     time.Now(),
			},
		},
	}, nil
}

var (
	budgetKRe    = regexp.MustCompile(`(?i)₹?\s*(\d+(?:\.\d+)?)\s*k\b`)
	budgetPlainRe = regexp.MustCompile(`₹\s*(\d{3,})`)
	durationRe   = regexp.MustCompile(`(?i)(\d+)\s*[- ]?\s*day`)
	fromRe       = regexp.MustCompile(`(?i)\bfrom\s+([A-Za-z]+)`)
)

var styleWords = map[string]string{
	"solo":    "backpacker",
	"budget":  "backpacker",
	"backpacker": "backpacker",
	"family":  "balanced",
	"couple":  "balanced",
	"luxury":  "luxury",
	"premium": "luxury",
}

var interestWords = map[string]string{
	"adventure":  "adventure",
	"trek":       "adventure",
	"trekking":   "adventure",
	"rafting":    "adventure",
	"spiritual":  "spiritual",
	"temple":     "spiritual",
	"yoga":       "spiritual",
	"ashram":     "spiritual",
	"nature":     "nature",
	"wildlife":   "nature",
	"food":       "food",
	"cuisine":    "food",
	"shopping":   "shopping",
	"nightlife":  "nightlife",
	"history":    "history",
	"heritage":   "history",
	"relaxation": "relaxation",
	"beach":      "relaxation",
}

// destinationDefaultInterests covers destinations whose character implies
// an interest set even when the query names none explicitly (e.g.
// Rishikesh's rafting-and-ashrams identity), so S1-style queries without
// an explicit interest word still produce a sensible interests list.
var destinationDefaultInterests = map[string][]string{
	"rishikesh":  {"adventure", "spiritual"},
	"varanasi":   {"spiritual", "history"},
	"goa":        {"relaxation", "nightlife"},
	"manali":     {"adventure", "nature"},
	"leh":        {"adventure", "nature"},
	"jaipur":     {"history", "shopping"},
	"udaipur":    {"history", "relaxation"},
	"hampi":      {"history", "adventure"},
	"darjeeling": {"nature", "relaxation"},
}

// parseHeuristically implements the keyword-dictionary / regex fallback
// from spec §4.5, satisfying S1's literal parse expectations.
func parseHeuristically(raw string) state.TripRequest {
	var req state.TripRequest

	if m := fromRe.FindStringSubmatch(raw); m != nil {
		req.Origin = m[1]
	}
	originLower := strings.ToLower(req.Origin)

	for _, tok := range strings.FieldsFunc(raw, func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'))
	}) {
		lower := strings.ToLower(tok)
		if lower == originLower && originLower != "" {
			continue
		}
		if _, ok := cityCoords[lower]; ok && req.Destination == "" {
			req.Destination = tok
		}
	}

	if m := budgetKRe.FindStringSubmatch(raw); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			req.Budget = v * 1000
		}
	} else if m := budgetPlainRe.FindStringSubmatch(raw); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			req.Budget = v
		}
	}

	durationDays := 0
	if m := durationRe.FindStringSubmatch(raw); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			durationDays = v
		}
	} else if strings.Contains(strings.ToLower(raw), "weekend") {
		durationDays = 2
	}
	if durationDays > 0 {
		now := time.Now().Truncate(24 * time.Hour)
		req.StartDate = now.AddDate(0, 0, 14)
		req.EndDate = req.StartDate.AddDate(0, 0, durationDays-1)
	}

	req.NumTravelers = 1
	for word, style := range styleWords {
		if strings.Contains(strings.ToLower(raw), word) {
			req.TravelStyle = style
			break
		}
	}
	if req.TravelStyle == "" {
		req.TravelStyle = "balanced"
	}

	var interests []string
	seen := map[string]bool{}
	lowerRaw := strings.ToLower(raw)
	for word, interest := range interestWords {
		if strings.Contains(lowerRaw, word) && !seen[interest] {
			interests = append(interests, interest)
			seen[interest] = true
		}
	}
	if len(interests) == 0 {
		if defaults, ok := destinationDefaultInterests[strings.ToLower(req.Destination)]; ok {
			interests = append(interests, defaults...)
		}
	}
	req.Interests = interests

	return req
}

// mergeLLMTripRequest takes the LLM's parsed fields, falling back to the
// heuristic value for anything blank/zero, so a partially-useful LLM
// response never discards what the regex/dictionary pass already found.
func mergeLLMTripRequest(fallback state.TripRequest, m map[string]interface{}) state.TripRequest {
	req := fallback

	if v, ok := m["origin"].(string); ok && v != "" {
		req.Origin = v
	}
	if v, ok := m["destination"].(string); ok && v != "" {
		req.Destination = v
	}
	if v, ok := m["start_date"].(string); ok && v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			req.StartDate = t
		}
	}
	if v, ok := m["end_date"].(string); ok && v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			req.EndDate = t
		}
	}
	if v, ok := m["budget"].(float64); ok && v > 0 {
		req.Budget = v
	}
	if v, ok := m["num_travelers"].(float64); ok && v > 0 {
		req.NumTravelers = int(v)
	}
	if v, ok := m["travel_style"].(string); ok && v != "" {
		req.TravelStyle = v
	}
	if v, ok := m["interests"].([]interface{}); ok && len(v) > 0 {
		var interests []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				interests = append(interests, s)
			}
		}
		if len(interests) > 0 {
			req.Interests = interests
		}
	}
	return req
}
