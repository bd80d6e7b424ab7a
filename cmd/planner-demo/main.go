// Command planner-demo exercises the trip-planning graph end to end
// without any external credentials configured, so every node falls back
// to its heuristic path: exactly the offline-friendly demo style of
// cmd/langgraph-demo, applied to the new graph.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/tripplanner/orchestrator/internal/agents"
	"github.com/tripplanner/orchestrator/internal/checkpoint"
	"github.com/tripplanner/orchestrator/internal/graph"
	"github.com/tripplanner/orchestrator/internal/httpcache"
	"github.com/tripplanner/orchestrator/internal/negotiator"
	"github.com/tripplanner/orchestrator/internal/planner"
	trvlproviders "github.com/tripplanner/orchestrator/internal/providers"
	"github.com/tripplanner/orchestrator/internal/state"
)

func main() {
	fmt.Println("🧭 Trip Planner Orchestrator Demo")
	fmt.Println("=================================")

	cache := httpcache.NewClient(256, httpcache.NewMemoryTier2())
	deps := agents.NewDeps(trvlproviders.Config{}, cache, nil, "")

	g, err := planner.Build(deps)
	if err != nil {
		log.Fatalf("graph build failed: %v", err)
	}
	cp := checkpoint.NewMemoryCheckpointer()
	executor := graph.NewExecutor(g, cp)
	ctx := context.Background()

	fmt.Println("\n1. Direct-destination query (S1-style short trip)")
	fmt.Println("---------------------------------------------------")
	if err := runDirectDestination(ctx, executor, cp); err != nil {
		log.Printf("❌ direct-destination demo failed: %v", err)
	}

	fmt.Println("\n2. No-destination query: destination_recommender suspends")
	fmt.Println("-----------------------------------------------------------")
	if err := runDestinationPick(ctx, executor, cp); err != nil {
		log.Printf("❌ destination-pick demo failed: %v", err)
	}

	fmt.Println("\n3. What-if: raise the budget without re-running research")
	fmt.Println("------------------------------------------------------------")
	if err := runWhatIf(deps); err != nil {
		log.Printf("❌ what-if demo failed: %v", err)
	}

	fmt.Println("\n🎉 Demo complete.")
}

func runDirectDestination(ctx context.Context, executor *graph.Executor, cp *checkpoint.MemoryCheckpointer) error {
	threadID := "demo-direct"
	st := state.New(threadID, "demo-user", "4 day solo trip to Rishikesh under 15k from Delhi, love adventure and rafting")

	result, err := executor.Run(ctx, threadID, st)
	if err != nil {
		return err
	}
	fmt.Printf("   status=%s destination=%q\n", result.Status, result.State.TripRequest.Destination)

	if result.Status != graph.StatusSuspended {
		return fmt.Errorf("expected suspension for bundle pick, got %s", result.Status)
	}
	fmt.Printf("   suspended for approval_type=%q: %s\n", result.State.ApprovalType, result.State.ConversationResponse)

	if len(result.State.Bundles) > 0 {
		selected := result.State.Bundles[0].ID
		st2, err := cp.Load(ctx, threadID)
		if err != nil {
			return err
		}
		selectedID := selected
		st2.Apply(state.PartialState{SelectedBundleID: &selectedID})
		if err := cp.Save(ctx, threadID, st2); err != nil {
			return err
		}
		fmt.Printf("   picking bundle %q\n", selected)
	}

	result, err = executor.Resume(ctx, threadID, "", true)
	if err != nil {
		return err
	}
	fmt.Printf("   status=%s\n", result.Status)

	if result.Status == graph.StatusSuspended && result.State.ApprovalType == state.ApprovalFinal {
		fmt.Printf("   final review: %s\n", result.State.ConversationResponse)
		result, err = executor.Resume(ctx, threadID, "", true)
		if err != nil {
			return err
		}
		fmt.Printf("   status=%s total_cost=%.0f vibe=%.0f %q\n",
			result.Status, result.State.Trip.TotalCost, result.State.VibeScore.Overall, result.State.VibeScore.Tagline)
	}
	return nil
}

func runDestinationPick(ctx context.Context, executor *graph.Executor, cp *checkpoint.MemoryCheckpointer) error {
	threadID := "demo-no-destination"
	st := state.New(threadID, "demo-user", "plan me a 5 day trip for 2 people under 20000, we love history and food")

	result, err := executor.Run(ctx, threadID, st)
	if err != nil {
		return err
	}
	fmt.Printf("   status=%s approval_type=%q\n", result.Status, result.State.ApprovalType)
	if result.Status != graph.StatusSuspended || result.State.ApprovalType != state.ApprovalDestination {
		return fmt.Errorf("expected a destination suspension, got status=%s approval_type=%s", result.Status, result.State.ApprovalType)
	}
	fmt.Printf("   %s\n", result.State.ConversationResponse)

	st2, err := cp.Load(ctx, threadID)
	if err != nil {
		return err
	}
	req := st2.TripRequest
	req.Destination = "Jaipur"
	st2.Apply(state.PartialState{TripRequest: &req})
	if err := cp.Save(ctx, threadID, st2); err != nil {
		return err
	}
	fmt.Println("   choosing Jaipur")

	result, err = executor.Resume(ctx, threadID, "", true)
	if err != nil {
		return err
	}
	fmt.Printf("   status=%s\n", result.Status)
	return nil
}

func runWhatIf(deps *agents.Deps) error {
	in := negotiator.Input{
		Transports: []state.TransportCandidate{
			{CandidateBase: state.CandidateBase{ID: "t1", Price: 800, SourceOrigin: state.SourceAPI}, Mode: "train", Operator: "Express", DurationMinutes: 360, Rating: 4.0},
			{CandidateBase: state.CandidateBase{ID: "t2", Price: 1500, SourceOrigin: state.SourceAPI}, Mode: "flight", Operator: "IndiGo", DurationMinutes: 120, Rating: 4.3},
		},
		Stays: []state.HotelCandidate{
			{CandidateBase: state.CandidateBase{ID: "h1", Price: 1200, SourceOrigin: state.SourceAPI}, Name: "Budget Inn", Stars: 2.5, PricePerNight: 1200},
			{CandidateBase: state.CandidateBase{ID: "h2", Price: 3500, SourceOrigin: state.SourceAPI}, Name: "Comfort Stay", Stars: 3.8, PricePerNight: 3500},
		},
		Activities: []state.ActivityCandidate{
			{CandidateBase: state.CandidateBase{ID: "a1", Price: 500, SourceOrigin: state.SourceAPI}, Name: "Museum", Category: "culture", Rating: 4.2, DurationHours: 2},
			{CandidateBase: state.CandidateBase{ID: "a2", Price: 1200, SourceOrigin: state.SourceAPI}, Name: "Rafting", Category: "adventure", Rating: 4.6, DurationHours: 3},
		},
		Budget:       15000,
		DurationDays: 4,
		NumTravelers: 2,
		Interests:    []string{"culture", "adventure"},
		Destination:  "Rishikesh",
		StartDate:    "2026-09-01",
		EndDate:      "2026-09-04",
	}

	base := deps.Negotiator.Negotiate(in)
	fmt.Printf("   base: %d bundles, cache_key=%s\n", len(base.Bundles), base.CacheKey)

	raised := deps.Negotiator.WhatIf(in, 5000)
	fmt.Printf("   +5000: %d bundles, cache_key=%s\n", len(raised.Bundles), raised.CacheKey)
	if raised.CacheKey == base.CacheKey {
		return fmt.Errorf("expected cache key to change after a what-if delta")
	}
	return nil
}
