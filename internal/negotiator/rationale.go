package negotiator

import (
	"fmt"
	"sort"

	"github.com/tripplanner/orchestrator/internal/state"
)

// addRationale implements spec §4.4 step 5: trade-off lines, rejected
// alternatives, booking URLs (already filled by scoreCombo), and a
// decision log. Trade-off lines come from the bundle's own scores; the
// rejected alternatives are the best combo with a different transport
// (by final score) and the best with a different stay (by experience
// score).
func addRationale(bundle *state.BundleChoice, allCombos []combo) {
	bundle.TradeOffs = tradeOffLines(bundle)
	bundle.RejectedAlternatives = rejectedAlternatives(bundle, allCombos)
	bundle.DecisionLog = decisionLog(bundle)
}

// tradeOffLines produces 3-5 gain/sacrifice lines describing the chosen
// bundle's position on cost/experience/convenience relative to what a
// traveler gives up by not maximizing each dimension independently.
func tradeOffLines(bundle *state.BundleChoice) []state.TradeOffLine {
	lines := []state.TradeOffLine{
		{
			Gain:      fmt.Sprintf("Total cost of ₹%.0f (cost score %.0f/100)", bundle.Breakdown.Total, bundle.CostScore),
			Sacrifice: fmt.Sprintf("Experience score capped at %.0f/100", bundle.ExperienceScore),
		},
		{
			Gain:      fmt.Sprintf("%d activities curated at %.1f★ average stay quality", len(bundle.Activities), bundle.Stay.Stars),
			Sacrifice: fmt.Sprintf("Convenience score %.0f/100 given transport and schedule density", bundle.ConvenienceScore),
		},
		{
			Gain:      fmt.Sprintf("%s transport (%d transfer(s), %.1f★)", bundle.Transport.Mode, bundle.Transport.Transfers, bundle.Transport.Rating),
			Sacrifice: fmt.Sprintf("Stay at %.1f★ rather than the top-rated option in its price band", bundle.Stay.Stars),
		},
	}
	if len(bundle.Activities) >= 5 {
		lines = append(lines, state.TradeOffLine{
			Gain:      fmt.Sprintf("Richer itinerary with %d planned activities", len(bundle.Activities)),
			Sacrifice: "Less free/unscheduled time per day",
		})
	}
	return lines
}

// rejectedAlternatives names 1-2 combos the negotiator considered and
// dropped for this bundle's category, with the reason they lost out.
func rejectedAlternatives(bundle *state.BundleChoice, allCombos []combo) []state.RejectedAlternative {
	var rejected []state.RejectedAlternative

	var transportAlts []combo
	for _, c := range allCombos {
		if c.transport.ID != bundle.Transport.ID {
			transportAlts = append(transportAlts, c)
		}
	}
	sort.Slice(transportAlts, func(i, j int) bool {
		return transportAlts[i].bundle.FinalScore > transportAlts[j].bundle.FinalScore
	})
	if len(transportAlts) > 0 {
		alt := transportAlts[0]
		reason := "lower overall score"
		if alt.bundle.Breakdown.Total > bundle.Breakdown.Total {
			reason = fmt.Sprintf("would have cost ₹%.0f more", alt.bundle.Breakdown.Total-bundle.Breakdown.Total)
		}
		rejected = append(rejected, state.RejectedAlternative{
			Name:   fmt.Sprintf("%s via %s", alt.transport.Mode, alt.transport.Operator),
			Reason: reason,
		})
	}

	var stayAlts []combo
	for _, c := range allCombos {
		if c.stay.ID != bundle.Stay.ID {
			stayAlts = append(stayAlts, c)
		}
	}
	sort.Slice(stayAlts, func(i, j int) bool {
		return stayAlts[i].bundle.ExperienceScore > stayAlts[j].bundle.ExperienceScore
	})
	if len(stayAlts) > 0 {
		alt := stayAlts[0]
		rejected = append(rejected, state.RejectedAlternative{
			Name:   alt.stay.Name,
			Reason: fmt.Sprintf("higher rated (%.1f★) but ₹%.0f over this bundle's total", alt.stay.Stars, alt.bundle.Breakdown.Total-bundle.Breakdown.Total),
		})
	}

	if len(rejected) > 2 {
		rejected = rejected[:2]
	}
	return rejected
}

// decisionLog is a short, human-readable trace of how this bundle was
// selected, independent of the pipeline-wide Negotiate log.
func decisionLog(bundle *state.BundleChoice) []string {
	return []string{
		fmt.Sprintf("category=%s", bundle.ID),
		fmt.Sprintf("transport=%s (%s, %d min, %d transfers)", bundle.Transport.ID, bundle.Transport.Mode, bundle.Transport.DurationMinutes, bundle.Transport.Transfers),
		fmt.Sprintf("stay=%s (%.1f stars, ₹%.0f/night)", bundle.Stay.ID, bundle.Stay.Stars, bundle.Stay.PricePerNight),
		fmt.Sprintf("activities=%d selected", len(bundle.Activities)),
		fmt.Sprintf("scores: cost=%.1f experience=%.1f convenience=%.1f final=%.1f", bundle.CostScore, bundle.ExperienceScore, bundle.ConvenienceScore, bundle.FinalScore),
		fmt.Sprintf("total=₹%.0f (subtotal ₹%.0f + buffer ₹%.0f)", bundle.Breakdown.Total, bundle.Breakdown.Subtotal, bundle.Breakdown.Buffer),
	}
}
