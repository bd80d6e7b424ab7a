package agents

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/tripplanner/orchestrator/internal/llm/wrapper"
)

// cityCoords is the curated dictionary consulted before Nominatim, per
// spec §4.5's "curated dict -> Nominatim -> LLM coord fallback" chain for
// flight_search's geocoding step. Coordinates are city-centre
// approximations, adequate for the haversine short-hop rule (spec §8
// property 9) rather than routing precision.
var cityCoords = map[string][2]float64{
	"delhi":      {28.6139, 77.2090},
	"new delhi":  {28.6139, 77.2090},
	"mumbai":     {19.0760, 72.8777},
	"agra":       {27.1767, 78.0081},
	"rishikesh":  {30.0869, 78.2676},
	"jaipur":     {26.9124, 75.7873},
	"goa":        {15.2993, 74.1240},
	"panaji":     {15.4909, 73.8278},
	"bangalore":  {12.9716, 77.5946},
	"bengaluru":  {12.9716, 77.5946},
	"chennai":    {13.0827, 80.2707},
	"kolkata":    {22.5726, 88.3639},
	"varanasi":   {25.3176, 82.9739},
	"udaipur":    {24.5854, 73.7125},
	"manali":     {32.2432, 77.1892},
	"shimla":     {31.1048, 77.1734},
	"leh":        {34.1526, 77.5771},
	"amritsar":   {31.6340, 74.8723},
	"pondicherry": {11.9416, 79.8083},
	"hampi":      {15.3350, 76.4600},
	"mysore":     {12.2958, 76.6394},
	"kochi":      {9.9312, 76.2673},
	"cochin":     {9.9312, 76.2673},
	"darjeeling": {27.0410, 88.2663},
	"haridwar":   {29.9457, 78.1642},
	"dehradun":   {30.3165, 78.0322},
	"pushkar":    {26.4897, 74.5511},
	"jodhpur":    {26.2389, 73.0243},
	"mcleodganj": {32.2432, 76.3234},
	"dharamshala": {32.2190, 76.3234},
}

// cityIATA maps a handful of major Indian cities to their primary airport
// code, used by flight_search to query the flight provider. Cities absent
// from this table (typically the short-hop/no-airport destinations the
// short-distance rule is meant to catch) fall through to ground transport
// only.
var cityIATA = map[string]string{
	"delhi":     "DEL",
	"new delhi": "DEL",
	"mumbai":    "BOM",
	"bangalore": "BLR",
	"bengaluru": "BLR",
	"chennai":   "MAA",
	"kolkata":   "CCU",
	"goa":       "GOI",
	"jaipur":    "JAI",
	"udaipur":   "UDR",
	"varanasi":  "VNS",
	"kochi":     "COK",
	"cochin":    "COK",
	"amritsar":  "ATQ",
	"leh":       "IXL",
}

// geocodeResult carries the resolved coordinates plus how they were
// obtained, so callers can tag the ground-transport/flight candidates'
// source_origin honestly.
type geocodeResult struct {
	Lat, Lng float64
	Source   string // curated | api | llm
	Reason   string // set only when resolution failed entirely
}

// geocodePlace resolves a free-text place name following spec §4.5's
// chain: curated dictionary first (exact, case-insensitive), then
// Nominatim, then an LLM best-guess. It never returns an error; a total
// failure is signalled by a non-empty Reason and zero coordinates.
func geocodePlace(ctx context.Context, name string, geocoder geocoderClient, llm *wrapper.Wrapper) geocodeResult {
	key := strings.ToLower(strings.TrimSpace(name))
	if coords, ok := cityCoords[key]; ok {
		return geocodeResult{Lat: coords[0], Lng: coords[1], Source: "curated"}
	}

	if geocoder != nil {
		if lat, lng, reason := geocoder.Geocode(ctx, name); reason == "" {
			return geocodeResult{Lat: lat, Lng: lng, Source: "api"}
		}
	}

	if llm != nil {
		result, err := llm.Complete(ctx,
			"You are a geography lookup. Respond with JSON only: {\"lat\": <float>, \"lng\": <float>}.",
			fmt.Sprintf("Give the approximate latitude and longitude of %q, India (or elsewhere if not in India).", name),
			true)
		if err == nil && result.Parsed != nil {
			if m, ok := result.Parsed.(map[string]interface{}); ok {
				lat, latOK := m["lat"].(float64)
				lng, lngOK := m["lng"].(float64)
				if latOK && lngOK {
					return geocodeResult{Lat: lat, Lng: lng, Source: "llm"}
				}
			}
		}
	}

	return geocodeResult{Reason: fmt.Sprintf("could not geocode %q", name)}
}

// geocoderClient is the subset of trvlproviders.GeocoderProvider this
// package depends on, narrowed to ease testing with a fake.
type geocoderClient interface {
	Geocode(ctx context.Context, query string) (lat, lng float64, reason string)
}

// earthRadiusKM is the mean Earth radius used by the haversine formula.
const earthRadiusKM = 6371.0

// haversineKM computes the great-circle distance in kilometres between
// two (lat, lng) points, satisfying spec §8 property 5:
// haversine(p, p) == 0, and the Delhi-Mumbai distance check (~1154km).
func haversineKM(lat1, lng1, lat2, lng2 float64) float64 {
	if lat1 == lat2 && lng1 == lng2 {
		return 0
	}
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := rad(lat2 - lat1)
	dLng := rad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKM * c
}
