package negotiator

import (
	"fmt"

	"github.com/tripplanner/orchestrator/internal/state"
)

const (
	sleepHoursPerDay = 8.0
	mealHoursPerDay  = 2.0
	minBufferMinutes = 60.0
	maxDailyHours    = 10.0
	maxTransportHours = 24.0
)

// validateAndRepair implements spec §4.4 step 6: feasibility checks with
// auto-repair for the two repairable violations (daily activity load,
// per-day buffer), and flag-only reporting for the one that cannot be
// repaired by dropping activities (transport duration). It is idempotent:
// running it again on an already-repaired bundle produces no further
// changes and no new issues, since each check's repair directly removes
// the condition that triggered it.
func validateAndRepair(bundle *state.BundleChoice, durationDays int) []string {
	if durationDays <= 0 {
		durationDays = 1
	}

	var issues []string

	for {
		daily := dailyActivityHours(bundle.Activities, durationDays)
		if daily <= maxDailyHours {
			break
		}
		if len(bundle.Activities) <= 3 {
			issues = append(issues, fmt.Sprintf("daily activity load %.1fh exceeds %.0fh cap but only %d activities remain; flagged without repair", daily, maxDailyHours, len(bundle.Activities)))
			break
		}
		dropped := dropLongestActivity(bundle)
		issues = append(issues, fmt.Sprintf("daily activity load %.1fh exceeded %.0fh cap; dropped %q", daily, maxDailyHours, dropped))
	}

	for {
		daily := dailyActivityHours(bundle.Activities, durationDays)
		buffer := bufferMinutesPerDay(daily)
		if buffer >= minBufferMinutes {
			break
		}
		if len(bundle.Activities) <= 1 {
			issues = append(issues, fmt.Sprintf("daily buffer %.0fmin below %.0fmin minimum; flagged without repair (too few activities to drop)", buffer, minBufferMinutes))
			break
		}
		dropped := dropLongestActivity(bundle)
		issues = append(issues, fmt.Sprintf("daily buffer %.0fmin below %.0fmin minimum; dropped %q", buffer, minBufferMinutes, dropped))
	}

	transportHours := float64(bundle.Transport.DurationMinutes) / 60.0
	if transportHours > maxTransportHours {
		issues = append(issues, fmt.Sprintf("transport duration %.1fh exceeds %.0fh; flagged only, no repair available", transportHours, maxTransportHours))
	}

	return issues
}

func dailyActivityHours(activities []state.ActivityCandidate, days int) float64 {
	total := 0.0
	for _, a := range activities {
		total += a.DurationHours
	}
	return total / float64(days)
}

// bufferMinutesPerDay is the leftover unscheduled time after sleep,
// meals, and activities, per spec §4.4 step 6.
func bufferMinutesPerDay(dailyActivityHours float64) float64 {
	freeHours := 24.0 - sleepHoursPerDay - mealHoursPerDay - dailyActivityHours
	return freeHours * 60.0
}

// dropLongestActivity removes the single longest-duration activity from
// the bundle and recomputes its cost breakdown, keeping the per-traveler
// activity multiplier costBreakdown applied. The cost, experience,
// convenience and final scores keep their pre-repair values.
func dropLongestActivity(bundle *state.BundleChoice) string {
	oldSum := 0.0
	for _, a := range bundle.Activities {
		oldSum += a.Price
	}

	idx := 0
	for i, a := range bundle.Activities {
		if a.DurationHours > bundle.Activities[idx].DurationHours {
			idx = i
		}
	}
	dropped := bundle.Activities[idx].Name
	if dropped == "" {
		dropped = bundle.Activities[idx].ID
	}

	remaining := make([]state.ActivityCandidate, 0, len(bundle.Activities)-1)
	remaining = append(remaining, bundle.Activities[:idx]...)
	remaining = append(remaining, bundle.Activities[idx+1:]...)
	bundle.Activities = remaining

	activityTotal := 0.0
	for _, a := range remaining {
		activityTotal += a.Price
	}
	if oldSum > 0 {
		activityTotal *= bundle.Breakdown.ActivityTotal / oldSum
	}
	delta := bundle.Breakdown.ActivityTotal - activityTotal
	bundle.Breakdown.ActivityTotal = activityTotal
	bundle.Breakdown.Subtotal -= delta
	bundle.Breakdown.Buffer = bundle.Breakdown.Subtotal * 0.05
	bundle.Breakdown.Total = bundle.Breakdown.Subtotal + bundle.Breakdown.Buffer

	return dropped
}
