package negotiator

import (
	"strings"

	"github.com/tripplanner/orchestrator/internal/state"
)

// scoreCombo computes the full cost/experience/convenience/final score
// for one (transport, stay, activities) combo, per spec §4.4 step 3.
func scoreCombo(t state.TransportCandidate, s state.HotelCandidate, activities []state.ActivityCandidate, in Input) state.BundleChoice {
	breakdown := costBreakdown(t, s, activities, in.DurationDays, in.NumTravelers)

	costScore := costScoreFor(breakdown.Total, in.Budget+in.WhatIfDelta)
	experienceScore := experienceScoreFor(t, s, activities, in.Interests)
	convenienceScore := convenienceScoreFor(t, s, activities, in.DurationDays)

	final := 0.45*experienceScore + 0.35*costScore + 0.20*convenienceScore
	if final < 0 {
		final = 0
	}
	if final > 100 {
		final = 100
	}

	return state.BundleChoice{
		Transport:        t,
		Stay:             s,
		Activities:       activities,
		Breakdown:        breakdown,
		CostScore:        costScore,
		ExperienceScore:  experienceScore,
		ConvenienceScore: convenienceScore,
		FinalScore:       final,
		BookingURLs:      bookingURLs(t, s, activities),
	}
}

// costBreakdown implements the cost formula from spec §4.4 step 3:
// transport-total + stay-total (per-night x D) + sum(activity-price) x N
// + FOOD_PER_DAY x D x N, then a 5% buffer.
func costBreakdown(t state.TransportCandidate, s state.HotelCandidate, activities []state.ActivityCandidate, days, travelers int) state.CostBreakdown {
	transportTotal := t.Price * float64(travelers)

	stayPerNight := s.PricePerNight
	if stayPerNight == 0 {
		stayPerNight = s.Price
	}
	stayTotal := stayPerNight * float64(days)

	activityTotal := 0.0
	for _, a := range activities {
		activityTotal += a.Price
	}
	activityTotal *= float64(travelers)

	foodTotal := foodPerDayINR * float64(days) * float64(travelers)

	subtotal := transportTotal + stayTotal + activityTotal + foodTotal
	buffer := subtotal * 0.05
	total := subtotal + buffer

	return state.CostBreakdown{
		TransportTotal: transportTotal,
		StayTotal:      stayTotal,
		ActivityTotal:  activityTotal,
		FoodTotal:      foodTotal,
		Subtotal:       subtotal,
		Buffer:         buffer,
		Total:          total,
	}
}

// costScoreFor implements the piecewise cost_score curve from spec
// §4.4 step 3.
func costScoreFor(total, budget float64) float64 {
	if budget <= 0 {
		budget = total
		if budget <= 0 {
			return 100
		}
	}
	r := total / budget

	switch {
	case r <= 0.70:
		return 100
	case r <= 0.85:
		// linear 100 -> 80 over (0.70, 0.85]
		frac := (r - 0.70) / 0.15
		return 100 - frac*20
	case r <= 1.00:
		// linear 80 -> 40 over (0.85, 1.00]
		frac := (r - 0.85) / 0.15
		return 80 - frac*40
	default:
		over := (r - 1.0) * 2.5
		score := 40 - over*40
		if score < 0 {
			score = 0
		}
		return score
	}
}

// experienceScoreFor implements spec §4.4 step 3's experience_score
// breakdown: stay-quality + activity-richness + transport-comfort +
// variety, each individually capped as specified.
func experienceScoreFor(t state.TransportCandidate, s state.HotelCandidate, activities []state.ActivityCandidate, interests []string) float64 {
	stayQuality := (s.Stars / 5.0) * 30.0

	countPts := clamp(float64(len(activities))*2.5, 0, 15)

	avgRating := 0.0
	for _, a := range activities {
		avgRating += a.Rating
	}
	if len(activities) > 0 {
		avgRating /= float64(len(activities))
	}
	avgRatingPts := clamp((avgRating/5.0)*15.0, 0, 15)

	interestSet := make(map[string]bool, len(interests))
	for _, i := range interests {
		interestSet[strings.ToLower(i)] = true
	}
	matches := 0
	for _, a := range activities {
		if interestSet[strings.ToLower(a.Category)] {
			matches++
		}
	}
	interestPts := 0.0
	if len(activities) > 0 {
		interestPts = clamp((float64(matches)/float64(len(activities)))*10.0, 0, 10)
	}
	activityRichness := countPts + avgRatingPts + interestPts

	transportRatingPts := clamp((t.Rating/5.0)*12.0, 0, 12)
	penalty := float64(t.Transfers)*2.0 + float64(t.DurationMinutes)/180.0
	durationTransferPts := clamp(8-penalty, 0, 8)
	transportComfort := transportRatingPts + durationTransferPts

	categories := make(map[string]bool)
	for _, a := range activities {
		categories[strings.ToLower(a.Category)] = true
	}
	variety := clamp(float64(len(categories))*2.0, 0, 10)

	return stayQuality + activityRichness + transportComfort + variety
}

// convenienceScoreFor implements spec §4.4 step 3's convenience_score:
// 70 baseline - travel-time penalties - 8*transfers + schedule density
// + booking-link bonuses.
func convenienceScoreFor(t state.TransportCandidate, s state.HotelCandidate, activities []state.ActivityCandidate, days int) float64 {
	score := 70.0

	hours := float64(t.DurationMinutes) / 60.0
	switch {
	case hours > 8:
		score -= 20
	case hours > 4:
		score -= 10
	}

	score -= 8 * float64(t.Transfers)

	dailyHours := 0.0
	for _, a := range activities {
		dailyHours += a.DurationHours
	}
	if days > 0 {
		dailyHours /= float64(days)
	}
	switch {
	case dailyHours > 10:
		score -= 20
	case dailyHours > 7:
		score -= 10
	case dailyHours < 4:
		score += 10
	}

	if t.BookingURL != "" {
		score += 8
	}
	if s.BookingURL != "" {
		score += 7
	}

	return clamp(score, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func bookingURLs(t state.TransportCandidate, s state.HotelCandidate, activities []state.ActivityCandidate) map[string]string {
	urls := make(map[string]string)
	if t.BookingURL != "" {
		urls["transport"] = t.BookingURL
	}
	if s.BookingURL != "" {
		urls["stay"] = s.BookingURL
	}
	for i, a := range activities {
		if a.BookingURL != "" {
			urls[activityKey(i)] = a.BookingURL
		}
	}
	return urls
}

func activityKey(i int) string {
	return "activity_" + itoa(i)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := []byte{}
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	return string(digits)
}
