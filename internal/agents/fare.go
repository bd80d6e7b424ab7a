package agents

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/tripplanner/orchestrator/internal/state"
)

// trainClassRate is one Indian Railways fare-class tariff: per-km rate,
// flat reservation charge, superfast surcharge, and whether a 5% GST
// applies (AC classes only), per spec §4.5/§8 S3.
type trainClassRate struct {
	ratePerKM   float64
	reservation float64
	superfast   float64
	gst         bool
}

var trainClasses = map[string]trainClassRate{
	"SL": {ratePerKM: 0.45, reservation: 20, superfast: 0, gst: false},
	"3A": {ratePerKM: 0.85, reservation: 40, superfast: 45, gst: true},
	"2A": {ratePerKM: 1.35, reservation: 50, superfast: 45, gst: true},
	"1A": {ratePerKM: 2.30, reservation: 60, superfast: 75, gst: true},
}

// trainFare computes the deterministic fare and duration for one class,
// matching spec §8 S3 exactly: fare = ceil(distance*1.3*rate + reservation
// + superfast + 5%*(sum)) for AC classes; duration = ceil(distance*1.3/55*60).
func trainFare(distanceKM float64, class string) (fareINR float64, durationMinutes int) {
	rate, ok := trainClasses[class]
	if !ok {
		rate = trainClasses["3A"]
	}

	effectiveDistance := distanceKM * 1.3
	base := effectiveDistance*rate.ratePerKM + rate.reservation + rate.superfast
	total := base
	if rate.gst {
		total += base * 0.05
	}

	durationMinutes = int(math.Ceil(effectiveDistance / 55.0 * 60.0))
	return math.Ceil(total), durationMinutes
}

// busFare computes a state (non-AC, slower) or private (AC, faster)
// bus fare for the route.
func busFare(distanceKM float64, private bool) (fareINR float64, durationMinutes int) {
	base, ratePerKM, speedKMH := 20.0, 1.1, 45.0
	if private {
		base, ratePerKM, speedKMH = 50.0, 1.8, 55.0
	}
	return math.Ceil(base + ratePerKM*distanceKM), int(math.Ceil(distanceKM / speedKMH * 60.0))
}

// cabFare computes a ride-hailing fare: local tier under 80km, an
// outstation tier (lower per-km, higher base) beyond that, per spec
// §4.5's "base + per-km + per-minute, with outstation tier for >80 km".
func cabFare(distanceKM float64) (fareINR float64, durationMinutes int) {
	durationMinutes = int(math.Ceil(distanceKM / 40.0 * 60.0))
	if distanceKM > 80 {
		return math.Ceil(100 + 14*distanceKM + 1.0*float64(durationMinutes)), durationMinutes
	}
	return math.Ceil(50 + 12*distanceKM + 1.5*float64(durationMinutes)), durationMinutes
}

// trainNumber derives a deterministic 5-digit Indian Railways-style train
// number from the route name, so repeated calls for the same origin/
// destination pair are stable — matching spec §8 S2's requirement that
// the ground-transport train entry's operator string starts with a
// 5-digit number.
func trainNumber(origin, destination string) string {
	sum := md5.Sum([]byte(origin + "|" + destination))
	n := binary.BigEndian.Uint32(sum[:4])
	return fmt.Sprintf("%05d", 12000+(n%8000))
}

// groundTransportOptions builds the fare-calculator candidates for a
// route: one train (class "3A" by default), a state bus, a private bus,
// and two ride-hailing options (Ola, Uber), all source_origin =
// fare_calculator per spec §3's source-origin enum.
func groundTransportOptions(origin, destination string, distanceKM float64) []state.TransportCandidate {
	var out []state.TransportCandidate

	trainPrice, trainDuration := trainFare(distanceKM, "3A")
	out = append(out, state.TransportCandidate{
		CandidateBase: state.CandidateBase{
			ID:           "train-" + trainNumber(origin, destination),
			Price:        trainPrice,
			Currency:     "INR",
			SourceOrigin: state.SourceFareCalculator,
			Verified:     true,
		},
		Mode:            "train",
		Operator:        trainNumber(origin, destination) + " Express",
		Origin:          origin,
		Destination:     destination,
		DurationMinutes: trainDuration,
		Transfers:       0,
		Rating:          3.8,
		Name:            "Train (3A) " + origin + " to " + destination,
	})

	statePrice, stateDuration := busFare(distanceKM, false)
	out = append(out, state.TransportCandidate{
		CandidateBase: state.CandidateBase{
			ID:           "bus-state-" + origin + "-" + destination,
			Price:        statePrice,
			Currency:     "INR",
			SourceOrigin: state.SourceFareCalculator,
			Verified:     true,
		},
		Mode:            "bus",
		Operator:        "State Transport Corporation",
		Origin:          origin,
		Destination:     destination,
		DurationMinutes: stateDuration,
		Transfers:       0,
		Rating:          3.2,
		Name:            "State bus " + origin + " to " + destination,
	})

	privatePrice, privateDuration := busFare(distanceKM, true)
	out = append(out, state.TransportCandidate{
		CandidateBase: state.CandidateBase{
			ID:           "bus-private-" + origin + "-" + destination,
			Price:        privatePrice,
			Currency:     "INR",
			SourceOrigin: state.SourceFareCalculator,
			Verified:     true,
		},
		Mode:            "bus",
		Operator:        "Volvo AC Sleeper",
		Origin:          origin,
		Destination:     destination,
		DurationMinutes: privateDuration,
		Transfers:       0,
		Rating:          4.0,
		Name:            "Private bus " + origin + " to " + destination,
	})

	cabPrice, cabDuration := cabFare(distanceKM)
	for _, op := range []string{"Ola Outstation", "Uber Intercity"} {
		out = append(out, state.TransportCandidate{
			CandidateBase: state.CandidateBase{
				ID:           "cab-" + op + "-" + origin + "-" + destination,
				Price:        cabPrice,
				Currency:     "INR",
				SourceOrigin: state.SourceFareCalculator,
				Verified:     true,
			},
			Mode:            "cab",
			Operator:        op,
			Origin:          origin,
			Destination:     destination,
			DurationMinutes: cabDuration,
			Transfers:       0,
			Rating:          4.1,
			Name:            op + " cab " + origin + " to " + destination,
		})
	}

	return out
}
