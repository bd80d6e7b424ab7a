// Package negotiator implements the Trade-off Negotiator from spec
// §4.4: a deterministic scoring and bundle-generation algorithm that
// turns candidate pools into exactly three ranked BundleChoices
// (Budget-Saver / Best-Value / Experience-Max), with feasibility
// validation, auto-repair, caching, and what-if delta re-runs. This is
// the system's one genuinely novel numeric algorithm — see DESIGN.md for
// why it is built on the standard library rather than a pack dependency.
package negotiator

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/tripplanner/orchestrator/internal/state"
)

const foodPerDayINR = 800.0

// Input bundles the negotiation request: the raw candidate pools plus
// the trip's budget/duration/party/interests.
type Input struct {
	Transports []state.TransportCandidate
	Stays      []state.HotelCandidate
	Activities []state.ActivityCandidate

	Budget       float64
	DurationDays int
	NumTravelers int
	Interests    []string
	Destination  string
	StartDate    string
	EndDate      string
	WhatIfDelta  float64
}

// Output is what Negotiate returns: the three bundles plus the cache key
// used to memoize this computation.
type Output struct {
	Bundles  []state.BundleChoice
	CacheKey string
	Log      []string
}

// combo is one scored (transport, stay, activity-subset) triple.
type combo struct {
	transport  state.TransportCandidate
	stay       state.HotelCandidate
	activities []state.ActivityCandidate
	bundle     state.BundleChoice
}

func (c combo) key() string {
	return c.transport.ID + "|" + c.stay.ID + "|" + fmt.Sprint(len(c.activities))
}

// Negotiator holds the per-instance bundle cache from spec §4.4 step 7.
// A fresh Negotiator is safe to share across concurrent negotiations.
type Negotiator struct {
	mu    sync.Mutex
	cache map[string]Output
}

// New builds an empty negotiator.
func New() *Negotiator {
	return &Negotiator{cache: make(map[string]Output)}
}

// CacheKey computes the memoization key from spec §4.4 step 7. Per
// spec §9's open question, this intentionally keys off budget,
// destination, dates, and pool sizes only — interests and num_travelers
// are left out of the key, matching the documented ambiguity (see
// DESIGN.md for the decision record); a deployment that finds this
// surprising can widen the key, since Negotiate recomputes cheaply.
func CacheKey(in Input) string {
	raw := fmt.Sprintf("%.2f|%s|%s|%s|%d|%d|%d|%.2f",
		in.Budget, in.Destination, in.StartDate, in.EndDate,
		len(in.Transports), len(in.Stays), len(in.Activities), in.WhatIfDelta)
	sum := md5.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Negotiate runs steps 1-7 of spec §4.4, reusing a cached result when the
// cache key matches a prior invocation.
func (neg *Negotiator) Negotiate(in Input) Output {
	key := CacheKey(in)

	neg.mu.Lock()
	if cached, ok := neg.cache[key]; ok {
		neg.mu.Unlock()
		return cached
	}
	neg.mu.Unlock()

	out := neg.compute(in, key)

	neg.mu.Lock()
	neg.cache[key] = out
	neg.mu.Unlock()

	return out
}

// WhatIf applies a budget delta and forces recomputation (the cache key
// changes because WhatIfDelta is part of it), per spec §4.4's What-If
// contract: research pools are held fixed, only steps 1-7 plus
// feasibility re-run.
func (neg *Negotiator) WhatIf(in Input, delta float64) Output {
	in.WhatIfDelta += delta
	return neg.Negotiate(in)
}

func (neg *Negotiator) compute(in Input, cacheKey string) Output {
	var log []string
	logf := func(format string, args ...interface{}) {
		log = append(log, fmt.Sprintf(format, args...))
	}

	if in.DurationDays <= 0 {
		in.DurationDays = 1
	}
	if in.NumTravelers <= 0 {
		in.NumTravelers = 1
	}

	transports := normalizeTransports(in.Transports)
	stays := normalizeStays(in.Stays)
	activities := normalizeActivities(in.Activities)
	logf("normalized pools: %d transports, %d stays, %d activities", len(transports), len(stays), len(activities))

	topTransports := topKByPriceAndRating(transports, 6)
	topStays := topKStaysByPriceAndRating(stays, 6)
	topActivities := topActivitiesByInterest(activities, in.Interests, 12)
	logf("preselected top-K: %d transports, %d stays, %d activities", len(topTransports), len(topStays), len(topActivities))

	var combos []combo
	for _, t := range topTransports {
		for _, s := range topStays {
			for _, n := range []int{3, 5, 7} {
				subset := pickActivitySubset(topActivities, n)
				b := scoreCombo(t, s, subset, in)
				combos = append(combos, combo{transport: t, stay: s, activities: subset, bundle: b})
			}
		}
	}
	logf("scored %d candidate combos", len(combos))

	if len(combos) == 0 {
		return Output{CacheKey: cacheKey, Log: log}
	}

	budgetAdj := in.Budget + in.WhatIfDelta
	used := make(map[string]bool)

	// Budget-Saver: minimum total, no other constraint.
	byTotal := append([]combo(nil), combos...)
	sort.Slice(byTotal, func(i, j int) bool {
		return byTotal[i].bundle.Breakdown.Total < byTotal[j].bundle.Breakdown.Total
	})
	budgetSaver := firstUnused(byTotal, used)
	used[budgetSaver.key()] = true

	// Best-Value: maximum final_score among unpicked combos with total <=
	// budgetAdj, else the global max among unpicked combos.
	unpicked := func(c combo) bool { return !used[c.key()] }
	withinBudget := filterCombos(combos, func(c combo) bool { return c.bundle.Breakdown.Total <= budgetAdj })
	pool := withinBudget
	if len(filterCombos(pool, unpicked)) == 0 {
		pool = combos
	}
	byFinal := append([]combo(nil), pool...)
	sort.Slice(byFinal, func(i, j int) bool {
		return byFinal[i].bundle.FinalScore > byFinal[j].bundle.FinalScore
	})
	bestValue := firstUnused(byFinal, used)
	used[bestValue.key()] = true

	// Experience-Max: maximum experience_score among unpicked combos with
	// total <= 1.10*budgetAdj, else the global max among unpicked combos.
	withinStretch := filterCombos(combos, func(c combo) bool { return c.bundle.Breakdown.Total <= 1.10*budgetAdj })
	pool2 := withinStretch
	if len(filterCombos(pool2, unpicked)) == 0 {
		pool2 = combos
	}
	byExperience := append([]combo(nil), pool2...)
	sort.Slice(byExperience, func(i, j int) bool {
		return byExperience[i].bundle.ExperienceScore > byExperience[j].bundle.ExperienceScore
	})
	experienceMax := firstUnused(byExperience, used)

	budgetSaver.bundle.ID = "budget_saver"
	bestValue.bundle.ID = "best_value"
	experienceMax.bundle.ID = "experience_max"

	bundles := []state.BundleChoice{budgetSaver.bundle, bestValue.bundle, experienceMax.bundle}
	for i := range bundles {
		addRationale(&bundles[i], combos)
	}
	logf("selected bundles: budget_saver_total=%.0f best_value_score=%.1f experience_max_score=%.1f",
		budgetSaver.bundle.Breakdown.Total, bestValue.bundle.FinalScore, experienceMax.bundle.ExperienceScore)

	var issues []string
	for i := range bundles {
		issues = append(issues, validateAndRepair(&bundles[i], in.DurationDays)...)
	}
	if len(issues) > 0 {
		logf("feasibility issues: %s", strings.Join(issues, "; "))
	}
	log = append(log, issues...)

	return Output{Bundles: bundles, CacheKey: cacheKey, Log: log}
}

// firstUnused returns the first combo in sorted order whose key is not
// already in used, implementing spec §4.4's tie-break/dedup rule:
// "if a winner collides with an earlier bucket's winner, advance to the
// next best in that bucket's sorted pool." Falls back to the first
// element if every combo collides (pool smaller than 3 distinct combos).
func firstUnused(sorted []combo, used map[string]bool) combo {
	for _, c := range sorted {
		if !used[c.key()] {
			return c
		}
	}
	return sorted[0]
}

func filterCombos(combos []combo, pred func(combo) bool) []combo {
	var out []combo
	for _, c := range combos {
		if pred(c) {
			out = append(out, c)
		}
	}
	return out
}
