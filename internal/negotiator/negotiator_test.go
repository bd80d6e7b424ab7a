package negotiator

import (
	"testing"

	"github.com/tripplanner/orchestrator/internal/state"
)

func sampleTransports() []state.TransportCandidate {
	return []state.TransportCandidate{
		{CandidateBase: state.CandidateBase{ID: "t1", Price: 800, SourceOrigin: state.SourceAPI}, Mode: "train", Operator: "Express", DurationMinutes: 360, Rating: 4.0},
		{CandidateBase: state.CandidateBase{ID: "t2", Price: 1500, SourceOrigin: state.SourceAPI}, Mode: "flight", Operator: "IndiGo", DurationMinutes: 120, Transfers: 0, Rating: 4.3},
		{CandidateBase: state.CandidateBase{ID: "t3", Price: 500, SourceOrigin: state.SourceAPI}, Mode: "bus", Operator: "State Transport", DurationMinutes: 600, Rating: 3.1},
	}
}

func sampleStays() []state.HotelCandidate {
	return []state.HotelCandidate{
		{CandidateBase: state.CandidateBase{ID: "h1", Price: 1200, SourceOrigin: state.SourceAPI}, Name: "Budget Inn", Stars: 2.5, PricePerNight: 1200},
		{CandidateBase: state.CandidateBase{ID: "h2", Price: 3500, SourceOrigin: state.SourceAPI}, Name: "Comfort Stay", Stars: 3.8, PricePerNight: 3500},
		{CandidateBase: state.CandidateBase{ID: "h3", Price: 7000, SourceOrigin: state.SourceAPI}, Name: "Grand Resort", Stars: 4.7, PricePerNight: 7000},
	}
}

func sampleActivities() []state.ActivityCandidate {
	return []state.ActivityCandidate{
		{CandidateBase: state.CandidateBase{ID: "a1", Price: 0, SourceOrigin: state.SourceAPI}, Name: "City walk", Category: "culture", Rating: 4.0, DurationHours: 1.5},
		{CandidateBase: state.CandidateBase{ID: "a2", Price: 500, SourceOrigin: state.SourceAPI}, Name: "Museum", Category: "culture", Rating: 4.2, DurationHours: 2},
		{CandidateBase: state.CandidateBase{ID: "a3", Price: 1200, SourceOrigin: state.SourceAPI}, Name: "Rafting", Category: "adventure", Rating: 4.6, DurationHours: 3},
		{CandidateBase: state.CandidateBase{ID: "a4", Price: 0, SourceOrigin: state.SourceAPI}, Name: "Temple", Category: "spiritual", Rating: 4.1, DurationHours: 1},
		{CandidateBase: state.CandidateBase{ID: "a5", Price: 900, SourceOrigin: state.SourceAPI}, Name: "Cooking class", Category: "food", Rating: 4.0, DurationHours: 2.5},
		{CandidateBase: state.CandidateBase{ID: "a6", Price: 300, SourceOrigin: state.SourceAPI}, Name: "Viewpoint", Category: "nature", Rating: 4.4, DurationHours: 1},
		{CandidateBase: state.CandidateBase{ID: "a7", Price: 700, SourceOrigin: state.SourceAPI}, Name: "Market", Category: "culture", Rating: 3.9, DurationHours: 1.5},
		{CandidateBase: state.CandidateBase{ID: "a8", Price: 400, SourceOrigin: state.SourceAPI}, Name: "Park stroll", Category: "nature", Rating: 4.0, DurationHours: 1},
	}
}

func baseInput(budget float64) Input {
	return Input{
		Transports:   sampleTransports(),
		Stays:        sampleStays(),
		Activities:   sampleActivities(),
		Budget:       budget,
		DurationDays: 4,
		NumTravelers: 2,
		Interests:    []string{"culture", "nature"},
		Destination:  "Manali",
		StartDate:    "2026-09-01",
		EndDate:      "2026-09-05",
	}
}

// TestThreeBundles covers S4: three bundles with the expected ids and
// ordering invariants.
func TestThreeBundles(t *testing.T) {
	neg := New()
	out := neg.Negotiate(baseInput(15000))

	if len(out.Bundles) != 3 {
		t.Fatalf("expected 3 bundles, got %d", len(out.Bundles))
	}
	ids := map[string]state.BundleChoice{}
	for _, b := range out.Bundles {
		ids[b.ID] = b
	}
	for _, want := range []string{"budget_saver", "best_value", "experience_max"} {
		if _, ok := ids[want]; !ok {
			t.Fatalf("missing bundle id %q among %v", want, idList(out.Bundles))
		}
	}

	if ids["budget_saver"].Breakdown.Total > ids["best_value"].Breakdown.Total {
		t.Fatalf("budget_saver.total (%.2f) > best_value.total (%.2f)",
			ids["budget_saver"].Breakdown.Total, ids["best_value"].Breakdown.Total)
	}
	if ids["experience_max"].ExperienceScore < ids["best_value"].ExperienceScore {
		t.Fatalf("experience_max.experience_score (%.2f) < best_value.experience_score (%.2f)",
			ids["experience_max"].ExperienceScore, ids["best_value"].ExperienceScore)
	}
}

// TestWhatIf covers S5: a +5000 what-if delta against a B=10000 starting
// budget (so the effective budget becomes 15000).
func TestWhatIf(t *testing.T) {
	neg := New()
	in := baseInput(10000)

	before := neg.Negotiate(in)
	after := neg.WhatIf(in, 5000)

	if after.CacheKey == before.CacheKey {
		t.Fatalf("expected cache key to change after what-if delta")
	}
	if len(after.Bundles) != 3 {
		t.Fatalf("expected 3 bundles after what-if, got %d", len(after.Bundles))
	}

	var bestValue state.BundleChoice
	for _, b := range after.Bundles {
		if b.ID == "best_value" {
			bestValue = b
		}
	}
	if ratio := bestValue.Breakdown.Total / 15000.0; ratio > 1.10 {
		t.Fatalf("best_value.total/15000 = %.3f, want <= 1.10", ratio)
	}
}

// TestNegotiatorMonotonicity covers universal property 6: increasing the
// budget never decreases best_value's final_score and never increases
// budget_saver's total above the lower-budget run's total.
func TestNegotiatorMonotonicity(t *testing.T) {
	neg := New()
	low := neg.Negotiate(baseInput(10000))
	high := neg.Negotiate(baseInput(20000))

	var lowBest, highBest, lowSaver, highSaver state.BundleChoice
	for _, b := range low.Bundles {
		if b.ID == "best_value" {
			lowBest = b
		}
		if b.ID == "budget_saver" {
			lowSaver = b
		}
	}
	for _, b := range high.Bundles {
		if b.ID == "best_value" {
			highBest = b
		}
		if b.ID == "budget_saver" {
			highSaver = b
		}
	}

	if highBest.FinalScore < lowBest.FinalScore {
		t.Fatalf("higher budget decreased best_value.final_score: %.2f -> %.2f", lowBest.FinalScore, highBest.FinalScore)
	}
	if highSaver.Breakdown.Total > lowSaver.Breakdown.Total {
		t.Fatalf("higher budget increased budget_saver.total: %.2f -> %.2f", lowSaver.Breakdown.Total, highSaver.Breakdown.Total)
	}
}

// TestBundleDistinctness covers universal property 7.
func TestBundleDistinctness(t *testing.T) {
	neg := New()
	out := neg.Negotiate(baseInput(15000))

	seen := map[string]bool{}
	for _, b := range out.Bundles {
		key := b.Transport.ID + "|" + b.Stay.ID + "|" + itoa(len(b.Activities))
		if seen[key] {
			t.Fatalf("duplicate (transport,stay,activity-count) triple: %s", key)
		}
		seen[key] = true
	}
}

// TestFeasibilityRepairIdempotence covers universal property 8: running
// validateAndRepair twice on an already-repaired bundle changes nothing.
func TestFeasibilityRepairIdempotence(t *testing.T) {
	activities := []state.ActivityCandidate{
		{CandidateBase: state.CandidateBase{ID: "x1"}, Name: "Trek", DurationHours: 5, Rating: 4.0},
		{CandidateBase: state.CandidateBase{ID: "x2"}, Name: "Climb", DurationHours: 4, Rating: 4.0},
		{CandidateBase: state.CandidateBase{ID: "x3"}, Name: "Rafting", DurationHours: 3, Rating: 4.0},
		{CandidateBase: state.CandidateBase{ID: "x4"}, Name: "Walk", DurationHours: 2, Rating: 4.0},
		{CandidateBase: state.CandidateBase{ID: "x5"}, Name: "Museum", DurationHours: 1, Rating: 4.0},
	}
	bundle := &state.BundleChoice{
		ID:         "test",
		Transport:  state.TransportCandidate{CandidateBase: state.CandidateBase{ID: "t1"}, DurationMinutes: 120},
		Stay:       state.HotelCandidate{CandidateBase: state.CandidateBase{ID: "h1"}},
		Activities: activities,
		Breakdown:  state.CostBreakdown{Subtotal: 1000, Buffer: 50, Total: 1050},
	}

	first := validateAndRepair(bundle, 1)
	snapshot := append([]state.ActivityCandidate(nil), bundle.Activities...)

	second := validateAndRepair(bundle, 1)

	if len(bundle.Activities) != len(snapshot) {
		t.Fatalf("second repair pass changed activity count: %d -> %d", len(snapshot), len(bundle.Activities))
	}
	for i := range snapshot {
		if bundle.Activities[i].ID != snapshot[i].ID {
			t.Fatalf("second repair pass reordered/changed activities at %d", i)
		}
	}
	if len(second) != 0 {
		t.Fatalf("second repair pass reported new issues: %v (first pass: %v)", second, first)
	}
}

func idList(bundles []state.BundleChoice) []string {
	var out []string
	for _, b := range bundles {
		out = append(out, b.ID)
	}
	return out
}
