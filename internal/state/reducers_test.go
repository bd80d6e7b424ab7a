package state

import "testing"

func TestReducerCommutativity(t *testing.T) {
	base := New("s1", "u1", "plan a trip")

	p1 := PartialState{FlightOptions: []TransportCandidate{
		{CandidateBase: CandidateBase{ID: "f1", Price: 100}, Mode: "flight"},
	}}
	p2 := PartialState{FlightOptions: []TransportCandidate{
		{CandidateBase: CandidateBase{ID: "f2", Price: 200}, Mode: "flight"},
	}}

	order1 := base.Clone()
	order1.Apply(p1)
	order1.Apply(p2)

	order2 := base.Clone()
	order2.Apply(p2)
	order2.Apply(p1)

	if len(order1.FlightOptions) != 2 || len(order2.FlightOptions) != 2 {
		t.Fatalf("expected 2 flight options in both orders, got %d and %d", len(order1.FlightOptions), len(order2.FlightOptions))
	}

	keys1 := map[string]bool{}
	for _, f := range order1.FlightOptions {
		keys1[f.DedupKey()] = true
	}
	for _, f := range order2.FlightOptions {
		if !keys1[f.DedupKey()] {
			t.Fatalf("dedup key set differs across merge order: %s missing", f.DedupKey())
		}
	}
}

func TestReducerDedup(t *testing.T) {
	s := New("s1", "u1", "q")
	dup := TransportCandidate{CandidateBase: CandidateBase{ID: "f1", Price: 100}, Mode: "flight"}
	s.Apply(PartialState{FlightOptions: []TransportCandidate{dup}})
	s.Apply(PartialState{FlightOptions: []TransportCandidate{dup}})

	if len(s.FlightOptions) != 1 {
		t.Fatalf("expected dedup to collapse identical ids, got %d entries", len(s.FlightOptions))
	}
}

func TestOverwriteFields(t *testing.T) {
	s := New("s1", "u1", "q")
	stage := "intent_parser"
	s.Apply(PartialState{CurrentStage: &stage})
	if s.CurrentStage != "intent_parser" {
		t.Fatalf("expected overwrite reducer to set current_stage, got %q", s.CurrentStage)
	}

	stage2 := "destination_recommender"
	s.Apply(PartialState{CurrentStage: &stage2})
	if s.CurrentStage != "destination_recommender" {
		t.Fatalf("expected overwrite to replace prior value, got %q", s.CurrentStage)
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	s := New("s1", "u1", "4-day trip to Rishikesh")
	s.Apply(PartialState{HotelOptions: []HotelCandidate{
		{CandidateBase: CandidateBase{ID: "h1", Price: 3000}, Name: "Ganga View"},
	}})

	raw, err := s.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	restored, err := FromJSON(raw)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if restored.SessionID != s.SessionID || len(restored.HotelOptions) != 1 {
		t.Fatalf("round trip did not preserve state: %+v", restored)
	}
}
