package negotiator

import (
	"sort"
	"strings"

	"github.com/tripplanner/orchestrator/internal/state"
)

// topKByPriceAndRating implements spec §4.4 step 2 for transports: sort
// by price ascending and by rating descending, take the union of the
// top-K of each.
func topKByPriceAndRating(in []state.TransportCandidate, k int) []state.TransportCandidate {
	byPrice := append([]state.TransportCandidate(nil), in...)
	sort.Slice(byPrice, func(i, j int) bool { return byPrice[i].Price < byPrice[j].Price })

	byRating := append([]state.TransportCandidate(nil), in...)
	sort.Slice(byRating, func(i, j int) bool { return byRating[i].Rating > byRating[j].Rating })

	seen := make(map[string]bool)
	var out []state.TransportCandidate
	add := func(list []state.TransportCandidate) {
		for i := 0; i < k && i < len(list); i++ {
			if !seen[list[i].ID] {
				seen[list[i].ID] = true
				out = append(out, list[i])
			}
		}
	}
	add(byPrice)
	add(byRating)
	return out
}

// topKStaysByPriceAndRating is the stay-category equivalent of
// topKByPriceAndRating.
func topKStaysByPriceAndRating(in []state.HotelCandidate, k int) []state.HotelCandidate {
	byPrice := append([]state.HotelCandidate(nil), in...)
	sort.Slice(byPrice, func(i, j int) bool { return byPrice[i].Price < byPrice[j].Price })

	byRating := append([]state.HotelCandidate(nil), in...)
	sort.Slice(byRating, func(i, j int) bool { return byRating[i].Stars > byRating[j].Stars })

	seen := make(map[string]bool)
	var out []state.HotelCandidate
	add := func(list []state.HotelCandidate) {
		for i := 0; i < k && i < len(list); i++ {
			if !seen[list[i].ID] {
				seen[list[i].ID] = true
				out = append(out, list[i])
			}
		}
	}
	add(byPrice)
	add(byRating)
	return out
}

// topActivitiesByInterest implements spec §4.4 step 2 for activities:
// sort by (rating + interest-bonus, -price) descending, take top-12.
// interest-bonus = +2.0 iff category is in the interests set
// (case-insensitive).
func topActivitiesByInterest(in []state.ActivityCandidate, interests []string, k int) []state.ActivityCandidate {
	interestSet := make(map[string]bool, len(interests))
	for _, i := range interests {
		interestSet[strings.ToLower(i)] = true
	}

	out := append([]state.ActivityCandidate(nil), in...)
	score := func(a state.ActivityCandidate) float64 {
		bonus := 0.0
		if interestSet[strings.ToLower(a.Category)] {
			bonus = 2.0
		}
		return a.Rating + bonus
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := score(out[i]), score(out[j])
		if si != sj {
			return si > sj
		}
		return out[i].Price < out[j].Price
	})
	if len(out) > k {
		out = out[:k]
	}
	return out
}

// pickActivitySubset deterministically selects n activities from the
// already rating/interest-sorted pool, for one (transport, stay,
// subset-size) combo per spec §4.4 step 3.
func pickActivitySubset(in []state.ActivityCandidate, n int) []state.ActivityCandidate {
	if n > len(in) {
		n = len(in)
	}
	out := make([]state.ActivityCandidate, n)
	copy(out, in[:n])
	return out
}
