package negotiator

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/tripplanner/orchestrator/internal/state"
)

// normalize fills defaults for missing fields and assigns a stable id
// (MD5 prefix of name/price) when one is absent, per spec §4.4 step 1.

func stableID(parts ...string) string {
	sum := md5.Sum([]byte(fmt.Sprint(parts)))
	return hex.EncodeToString(sum[:])[:12]
}

func normalizeTransports(in []state.TransportCandidate) []state.TransportCandidate {
	if len(in) == 0 {
		return demoTransports()
	}
	out := make([]state.TransportCandidate, len(in))
	for i, t := range in {
		if t.ID == "" {
			t.ID = stableID("transport", t.Name, t.Operator, fmt.Sprint(t.Price))
		}
		if t.DurationMinutes == 0 {
			t.DurationMinutes = 120
		}
		if t.Rating == 0 {
			t.Rating = 3.5
		}
		out[i] = t
	}
	return out
}

func normalizeStays(in []state.HotelCandidate) []state.HotelCandidate {
	if len(in) == 0 {
		return demoStays()
	}
	out := make([]state.HotelCandidate, len(in))
	for i, s := range in {
		if s.ID == "" {
			s.ID = stableID("stay", s.Name, fmt.Sprint(s.Price))
		}
		if s.Stars == 0 {
			s.Stars = 3.5
		}
		out[i] = s
	}
	return out
}

func normalizeActivities(in []state.ActivityCandidate) []state.ActivityCandidate {
	if len(in) == 0 {
		return demoActivities()
	}
	out := make([]state.ActivityCandidate, len(in))
	for i, a := range in {
		if a.ID == "" {
			a.ID = stableID("activity", a.Name, fmt.Sprint(a.Price))
		}
		if a.Rating == 0 {
			a.Rating = 3.5
		}
		if a.DurationHours == 0 {
			a.DurationHours = 2
		}
		out[i] = a
	}
	return out
}

// demoTransports/demoStays/demoActivities are the built-in demo pool
// substituted when a category's candidate list is empty, per spec §4.4
// step 1.
func demoTransports() []state.TransportCandidate {
	return []state.TransportCandidate{
		{CandidateBase: state.CandidateBase{ID: "demo-train", Price: 850, SourceOrigin: state.SourceEstimated}, Mode: "train", Operator: "12345 Express", DurationMinutes: 420, Rating: 3.8},
		{CandidateBase: state.CandidateBase{ID: "demo-bus", Price: 600, SourceOrigin: state.SourceEstimated}, Mode: "bus", Operator: "State Transport", DurationMinutes: 540, Rating: 3.2},
		{CandidateBase: state.CandidateBase{ID: "demo-cab", Price: 4500, SourceOrigin: state.SourceEstimated}, Mode: "cab", Operator: "Ola Outstation", DurationMinutes: 300, Rating: 4.1},
	}
}

func demoStays() []state.HotelCandidate {
	return []state.HotelCandidate{
		{CandidateBase: state.CandidateBase{ID: "demo-hostel", Price: 800, SourceOrigin: state.SourceEstimated}, Name: "Riverside Hostel", Stars: 2.5, PricePerNight: 800},
		{CandidateBase: state.CandidateBase{ID: "demo-hotel", Price: 3000, SourceOrigin: state.SourceEstimated}, Name: "City Comfort Inn", Stars: 3.5, PricePerNight: 3000},
		{CandidateBase: state.CandidateBase{ID: "demo-resort", Price: 8000, SourceOrigin: state.SourceEstimated}, Name: "Valley View Resort", Stars: 4.5, PricePerNight: 8000},
	}
}

func demoActivities() []state.ActivityCandidate {
	return []state.ActivityCandidate{
		{CandidateBase: state.CandidateBase{ID: "demo-act-1", Price: 0, SourceOrigin: state.SourceEstimated}, Name: "Riverside walk", Category: "nature", Rating: 4.0, DurationHours: 1.5},
		{CandidateBase: state.CandidateBase{ID: "demo-act-2", Price: 500, SourceOrigin: state.SourceEstimated}, Name: "Local market tour", Category: "culture", Rating: 4.2, DurationHours: 2},
		{CandidateBase: state.CandidateBase{ID: "demo-act-3", Price: 1200, SourceOrigin: state.SourceEstimated}, Name: "Adventure rafting", Category: "adventure", Rating: 4.5, DurationHours: 3},
		{CandidateBase: state.CandidateBase{ID: "demo-act-4", Price: 0, SourceOrigin: state.SourceEstimated}, Name: "Temple visit", Category: "spiritual", Rating: 4.3, DurationHours: 1},
		{CandidateBase: state.CandidateBase{ID: "demo-act-5", Price: 900, SourceOrigin: state.SourceEstimated}, Name: "Cooking class", Category: "food", Rating: 4.1, DurationHours: 2.5},
		{CandidateBase: state.CandidateBase{ID: "demo-act-6", Price: 300, SourceOrigin: state.SourceEstimated}, Name: "Sunset viewpoint", Category: "nature", Rating: 4.4, DurationHours: 1},
		{CandidateBase: state.CandidateBase{ID: "demo-act-7", Price: 700, SourceOrigin: state.SourceEstimated}, Name: "Museum entry", Category: "culture", Rating: 3.9, DurationHours: 1.5},
	}
}
