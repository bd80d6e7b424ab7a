package state

import "time"

// PartialState is what an agent node returns: only the fields it wishes
// to update, per spec §4.5's "accept a read-only state; return only the
// fields it wishes to update" convention. A nil pointer/slice field means
// "unchanged"; a non-nil empty slice means "explicitly cleared" only for
// overwrite fields — dedup-append fields never clear, they only add.
type PartialState struct {
	TripRequest  *TripRequest
	IntentType   *IntentType
	CurrentStage *string
	ActiveAgents []string

	FlightOptions          []TransportCandidate
	GroundTransportOptions []TransportCandidate
	HotelOptions           []HotelCandidate
	ActivityOptions        []ActivityCandidate

	Weather *WeatherSummary

	LocalTips  []EnrichmentRecord
	HiddenGems []EnrichmentRecord
	Events     []EnrichmentRecord

	SelectedOutboundFlight *TransportCandidate
	SelectedHotel          *HotelCandidate
	SelectedActivities     []ActivityCandidate

	Bundles            []BundleChoice
	ClearBundles        bool
	SelectedBundleID    *string
	WhatIfDeltaAdd      *float64
	WhatIfHistoryAppend []float64
	NegotiatorCacheKey  *string
	ClearNegotiatorCacheKey bool
	NegotiationLog      []string
	FeasibilityIssues   []string

	BudgetTracker *BudgetTracker

	Trip *Trip

	VibeScore *VibeScore

	RequiresApproval *bool
	ApprovalType     *ApprovalType
	UserFeedback     *string

	AgentDecisions   []AgentDecision
	Errors           []string
	BudgetWarnings   []string
	ValidationIssues []string

	ConversationResponse *string
}

// candidateKey extracts the dedup key for an item implementing Candidate.
func candidateKey(c Candidate) string { return c.DedupKey() }

// dedupAppend merges new items into existing ones, keeping the first
// occurrence of each dedup key (by id, then name/title, or operator for
// transports, as the DedupKey implementations define it) — associative and
// commutative over the dedup key per spec §3's key invariant.
func dedupAppend[T Candidate](existing []T, incoming []T) []T {
	seen := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		seen[candidateKey(e)] = struct{}{}
	}
	out := existing
	for _, in := range incoming {
		k := candidateKey(in)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, in)
	}
	return out
}

func dedupAppendStrings(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		seen[e] = struct{}{}
	}
	out := existing
	for _, in := range incoming {
		if _, ok := seen[in]; ok {
			continue
		}
		seen[in] = struct{}{}
		out = append(out, in)
	}
	return out
}

func dedupAppendDecisions(existing, incoming []AgentDecision) []AgentDecision {
	seen := make(map[string]struct{}, len(existing))
	key := func(d AgentDecision) string {
		return d.AgentName + "|" + d.Action + "|" + d.CreatedAt.Format(time.RFC3339Nano)
	}
	for _, e := range existing {
		seen[key(e)] = struct{}{}
	}
	out := existing
	for _, in := range incoming {
		k := key(in)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, in)
	}
	return out
}

// Apply merges a node's partial output into the shared state using the
// per-field reducer table from spec §3. It is safe to call concurrently
// from multiple completing fan-out branches: Apply holds s.mu for its
// whole duration, so concurrent merges are serialized, and the
// dedup-append functions above make the merged result independent of
// the order in which branches complete.
func (s *PlannerState) Apply(p PartialState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.TripRequest != nil {
		s.TripRequest = *p.TripRequest
	}
	if p.IntentType != nil {
		s.IntentType = *p.IntentType
	}
	if p.CurrentStage != nil {
		s.CurrentStage = *p.CurrentStage
	}
	if p.ActiveAgents != nil {
		s.ActiveAgents = p.ActiveAgents
	}

	s.FlightOptions = dedupAppend(s.FlightOptions, p.FlightOptions)
	s.GroundTransportOptions = dedupAppend(s.GroundTransportOptions, p.GroundTransportOptions)
	s.HotelOptions = dedupAppend(s.HotelOptions, p.HotelOptions)
	s.ActivityOptions = dedupAppend(s.ActivityOptions, p.ActivityOptions)

	if p.Weather != nil {
		s.Weather = *p.Weather
	}

	s.LocalTips = dedupAppend(s.LocalTips, p.LocalTips)
	s.HiddenGems = dedupAppend(s.HiddenGems, p.HiddenGems)
	s.Events = dedupAppend(s.Events, p.Events)

	if p.SelectedOutboundFlight != nil {
		s.SelectedOutboundFlight = p.SelectedOutboundFlight
	}
	if p.SelectedHotel != nil {
		s.SelectedHotel = p.SelectedHotel
	}
	if p.SelectedActivities != nil {
		s.SelectedActivities = p.SelectedActivities
	}

	if p.ClearBundles {
		s.Bundles = nil
	}
	if p.Bundles != nil {
		s.Bundles = p.Bundles
	}
	if p.SelectedBundleID != nil {
		s.SelectedBundleID = *p.SelectedBundleID
	}
	if p.WhatIfDeltaAdd != nil {
		s.WhatIfDelta += *p.WhatIfDeltaAdd
	}
	if p.WhatIfHistoryAppend != nil {
		s.WhatIfHistory = append(s.WhatIfHistory, p.WhatIfHistoryAppend...)
	}
	if p.ClearNegotiatorCacheKey {
		s.NegotiatorCacheKey = ""
	}
	if p.NegotiatorCacheKey != nil {
		s.NegotiatorCacheKey = *p.NegotiatorCacheKey
	}
	s.NegotiationLog = dedupAppendStrings(s.NegotiationLog, p.NegotiationLog)
	s.FeasibilityIssues = dedupAppendStrings(s.FeasibilityIssues, p.FeasibilityIssues)

	if p.BudgetTracker != nil {
		s.BudgetTracker = *p.BudgetTracker
	}
	if p.Trip != nil {
		s.Trip = *p.Trip
	}
	if p.VibeScore != nil {
		s.VibeScore = *p.VibeScore
	}

	if p.RequiresApproval != nil {
		s.RequiresApproval = *p.RequiresApproval
	}
	if p.ApprovalType != nil {
		s.ApprovalType = *p.ApprovalType
	}
	if p.UserFeedback != nil {
		s.UserFeedback = *p.UserFeedback
	}

	s.AgentDecisions = dedupAppendDecisions(s.AgentDecisions, p.AgentDecisions)
	s.Errors = dedupAppendStrings(s.Errors, p.Errors)
	s.BudgetWarnings = dedupAppendStrings(s.BudgetWarnings, p.BudgetWarnings)
	s.ValidationIssues = dedupAppendStrings(s.ValidationIssues, p.ValidationIssues)

	if p.ConversationResponse != nil {
		s.ConversationResponse = *p.ConversationResponse
	}

	s.Version++
	s.UpdatedAt = time.Now()
}

// WithDecision returns a PartialState carrying a single agent_decision
// record, a convenience used by nearly every node in internal/agents.
func WithDecision(d AgentDecision) PartialState {
	return PartialState{AgentDecisions: []AgentDecision{d}}
}
