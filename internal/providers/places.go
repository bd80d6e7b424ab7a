package providers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tripplanner/orchestrator/internal/httpcache"
	"github.com/tripplanner/orchestrator/internal/state"
)

// priceLevelINR implements spec §6's priceLevel mapping.
var priceLevelINR = map[string]float64{
	"PRICE_LEVEL_INEXPENSIVE": 200,
	"PRICE_LEVEL_MODERATE":    500,
	"PRICE_LEVEL_EXPENSIVE":   1500,
	"INEXPENSIVE":             200,
	"MODERATE":                500,
	"EXPENSIVE":               1500,
}

// PlacesProvider adapts a Google-Places-shaped text search, per spec
// §6, grounded on internal/tools/location.go.
type PlacesProvider struct {
	cfg   Config
	cache *httpcache.Client
}

func NewPlacesProvider(cfg Config, cache *httpcache.Client) *PlacesProvider {
	return &PlacesProvider{cfg: cfg, cache: cache}
}

type placeClock struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

type placePeriod struct {
	Open  placeClock `json:"open"`
	Close placeClock `json:"close"`
}

type placeRecord struct {
	DisplayName struct {
		Text string `json:"text"`
	} `json:"displayName"`
	FormattedAddress    string  `json:"formattedAddress"`
	NationalPhoneNumber string  `json:"nationalPhoneNumber"`
	PriceLevel          string  `json:"priceLevel"`
	Rating              float64 `json:"rating"`
	RegularOpeningHours struct {
		Periods []placePeriod `json:"periods"`
	} `json:"regularOpeningHours"`
	Location struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
}

// Search returns activity/place candidates near (lat, lng) within
// radiusMeters matching the given category text query.
func (p *PlacesProvider) Search(ctx context.Context, query string, lat, lng, radiusMeters float64) ([]state.ActivityCandidate, string) {
	if p.cfg.PlacesAPIKey == "" {
		return nil, "places provider not configured"
	}

	endpoint := p.cfg.placesBaseURL() + "/v1/places:searchText"
	doc, err := p.cache.Get(ctx, "places", endpoint, map[string]string{
		"textQuery":    query,
		"locationBias": fmt.Sprintf("%f,%f,%f", lat, lng, radiusMeters),
	}, map[string]string{"X-Goog-Api-Key": p.cfg.PlacesAPIKey}, httpcache.TTLPlaces)
	if err != nil {
		return nil, fmt.Sprintf("places search request failed: %v", err)
	}

	var parsed struct {
		Places []placeRecord `json:"places"`
	}
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return nil, fmt.Sprintf("places search parse failed: %v", err)
	}
	if len(parsed.Places) == 0 {
		return nil, "no places returned"
	}

	out := make([]state.ActivityCandidate, 0, len(parsed.Places))
	for i, pl := range parsed.Places {
		price := priceLevelINR[pl.PriceLevel]
		rating := pl.Rating
		if rating == 0 {
			rating = 3.5
		}
		out = append(out, state.ActivityCandidate{
			CandidateBase: state.CandidateBase{
				ID:           fmt.Sprintf("places-%d", i),
				Price:        price,
				Currency:     "INR",
				SourceOrigin: state.SourceAPI,
				Verified:     true,
			},
			Name:          pl.DisplayName.Text,
			Category:      query,
			DurationHours: 2,
			Lat:           pl.Location.Latitude,
			Lng:           pl.Location.Longitude,
			OpeningHours:  formatOpeningHours(pl.RegularOpeningHours.Periods),
			Phone:         pl.NationalPhoneNumber,
			Rating:        rating,
		})
	}
	return out, ""
}

func formatOpeningHours(periods []placePeriod) string {
	if len(periods) == 0 {
		return ""
	}
	p := periods[0]
	return fmt.Sprintf("%02d:%02d-%02d:%02d", p.Open.Hour, p.Open.Minute, p.Close.Hour, p.Close.Minute)
}
