// Package state defines PlannerState, the single typed record threaded
// through the graph runtime, and the per-field reducers used to merge a
// node's partial output back into the shared state.
package state

import (
	"encoding/json"
	"sync"
	"time"
)

// IntentType classifies what the supervisor believes the user wants.
type IntentType string

const (
	IntentPlan         IntentType = "plan"
	IntentModify       IntentType = "modify"
	IntentConversation IntentType = "conversation"
)

// ApprovalType names the reason a run suspended for human-in-the-loop input.
type ApprovalType string

const (
	ApprovalDestination ApprovalType = "destination"
	ApprovalBundle      ApprovalType = "bundle"
	ApprovalFinal       ApprovalType = "final"
)

// TripRequest is the structured intent extracted from the raw query.
type TripRequest struct {
	Origin       string    `json:"origin,omitempty"`
	Destination  string    `json:"destination,omitempty"`
	StartDate    time.Time `json:"start_date,omitempty"`
	EndDate      time.Time `json:"end_date,omitempty"`
	Budget       float64   `json:"budget,omitempty"`
	NumTravelers int       `json:"num_travelers,omitempty"`
	TravelStyle  string    `json:"travel_style,omitempty"`
	Interests    []string  `json:"interests,omitempty"`
}

// WeatherSummary is the overwrite-semantics forecast field.
type WeatherSummary struct {
	Destination string       `json:"destination,omitempty"`
	Days        []WeatherDay `json:"days,omitempty"`
	SourceOrigin string      `json:"source_origin,omitempty"`
}

// WeatherDay is a single day's forecast.
type WeatherDay struct {
	Date               time.Time `json:"date,omitempty"`
	TempMinC           float64   `json:"temp_min_c"`
	TempMaxC           float64   `json:"temp_max_c"`
	PrecipProbPercent  float64   `json:"precip_prob_percent"`
	PrecipMM           float64   `json:"precip_mm"`
	WindSpeedKPH       float64   `json:"wind_speed_kph"`
	Condition          string    `json:"condition"`
}

// BudgetTracker is the overwrite-semantics budget ledger.
type BudgetTracker struct {
	Allocation map[string]float64 `json:"allocation,omitempty"`
	Spend      map[string]float64 `json:"spend,omitempty"`
	Warnings   []string           `json:"warnings,omitempty"`
}

// ItineraryDay is one day of the built trip.
type ItineraryDay struct {
	Day        int            `json:"day"`
	Date       time.Time      `json:"date,omitempty"`
	Items      []ItineraryItem `json:"items"`
}

// ItineraryItem is a single scheduled activity/meal/transfer in the plan.
type ItineraryItem struct {
	Name         string  `json:"name"`
	Category     string  `json:"category,omitempty"`
	StartTime    string  `json:"start_time,omitempty"`
	EndTime      string  `json:"end_time,omitempty"`
	Cost         float64 `json:"cost"`
	Verified     bool    `json:"verified"`
	SourceOrigin string  `json:"source_origin,omitempty"`
	Notes        string  `json:"notes,omitempty"`
}

// Trip is the built day-by-day plan.
type Trip struct {
	Destination string         `json:"destination,omitempty"`
	Days        []ItineraryDay `json:"days,omitempty"`
	TotalCost   float64        `json:"total_cost"`
	ShareableID string         `json:"shareable_id,omitempty"`
}

// VibeScore is the 0-100 vibe rating plus a category breakdown.
type VibeScore struct {
	Overall   float64            `json:"overall"`
	Breakdown map[string]float64 `json:"breakdown,omitempty"`
	Tagline   string             `json:"tagline,omitempty"`
}

// AgentDecision is one audit entry appended by a node per spec §4.5.
type AgentDecision struct {
	AgentName     string    `json:"agent_name"`
	Action        string    `json:"action"`
	Reasoning     string    `json:"reasoning"`
	ResultSummary string    `json:"result_summary"`
	TokensUsed    int       `json:"tokens_used"`
	LatencyMS     int64     `json:"latency_ms"`
	CreatedAt     time.Time `json:"created_at"`
}

// PlannerState is the single record threaded through the graph. Field
// semantics follow SPEC_FULL.md §3; the per-field reducers are in Apply
// (reducers.go).
type PlannerState struct {
	mu sync.RWMutex

	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	RawQuery  string `json:"raw_query"`

	TripRequest TripRequest `json:"trip_request"`
	IntentType  IntentType  `json:"intent_type"`
	CurrentStage string     `json:"current_stage"`
	ActiveAgents []string   `json:"active_agents"`

	FlightOptions         []TransportCandidate `json:"flight_options"`
	GroundTransportOptions []TransportCandidate `json:"ground_transport_options"`
	HotelOptions          []HotelCandidate     `json:"hotel_options"`
	ActivityOptions       []ActivityCandidate  `json:"activity_options"`

	Weather WeatherSummary `json:"weather"`

	LocalTips []EnrichmentRecord `json:"local_tips"`
	HiddenGems []EnrichmentRecord `json:"hidden_gems"`
	Events    []EnrichmentRecord `json:"events"`

	SelectedOutboundFlight *TransportCandidate `json:"selected_outbound_flight,omitempty"`
	SelectedHotel          *HotelCandidate     `json:"selected_hotel,omitempty"`
	SelectedActivities     []ActivityCandidate `json:"selected_activities,omitempty"`

	Bundles         []BundleChoice `json:"bundles,omitempty"`
	SelectedBundleID string        `json:"selected_bundle_id,omitempty"`
	WhatIfDelta     float64        `json:"what_if_delta"`
	WhatIfHistory   []float64      `json:"what_if_history,omitempty"`
	NegotiatorCacheKey string      `json:"negotiator_cache_key,omitempty"`
	NegotiationLog  []string       `json:"negotiation_log,omitempty"`
	FeasibilityIssues []string     `json:"feasibility_issues,omitempty"`

	BudgetTracker BudgetTracker `json:"budget_tracker"`

	Trip Trip `json:"trip"`

	VibeScore VibeScore `json:"vibe_score"`

	RequiresApproval bool         `json:"requires_approval"`
	ApprovalType     ApprovalType `json:"approval_type,omitempty"`
	UserFeedback     string       `json:"user_feedback,omitempty"`

	AgentDecisions   []AgentDecision `json:"agent_decisions"`
	Errors           []string        `json:"errors"`
	BudgetWarnings   []string        `json:"budget_warnings"`
	ValidationIssues []string        `json:"validation_issues"`

	ConversationResponse string `json:"conversation_response,omitempty"`

	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates a freshly opened session state with identifiers and the raw
// query, per spec §3's lifecycle note: "State is created at session open
// with identifiers + raw query".
func New(sessionID, userID, rawQuery string) *PlannerState {
	now := time.Now()
	return &PlannerState{
		SessionID:    sessionID,
		UserID:       userID,
		RawQuery:     rawQuery,
		CurrentStage: "start",
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Clone returns a deep copy safe for concurrent fan-out branches to read
// from and mutate independently, mirroring langgraph.State.Clone's role
// in the teacher repo.
func (s *PlannerState) Clone() *PlannerState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, err := json.Marshal(s)
	if err != nil {
		// Struct is always JSON-marshalable; this would indicate a
		// programming error in a newly added field, not a runtime
		// condition to recover from gracefully.
		panic(err)
	}
	clone := &PlannerState{}
	if err := json.Unmarshal(raw, clone); err != nil {
		panic(err)
	}
	return clone
}

// ToJSON serializes the state for checkpoint persistence.
func (s *PlannerState) ToJSON() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.Marshal(s)
}

// FromJSON restores a state from a checkpoint row.
func FromJSON(data []byte) (*PlannerState, error) {
	s := &PlannerState{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Snapshot returns a read-only deep copy for a node to consume, per spec
// §4.3 step 2 ("call the node with a read-only view of the current
// state"). Nodes must never mutate the returned value.
func (s *PlannerState) Snapshot() *PlannerState {
	return s.Clone()
}
