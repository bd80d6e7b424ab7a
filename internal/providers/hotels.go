package providers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tripplanner/orchestrator/internal/httpcache"
	"github.com/tripplanner/orchestrator/internal/state"
)

// starsPriceTable implements spec §6's fixed per-night estimate table
// (INR), used whenever the optional rates endpoint is unavailable.
var starsPriceTable = map[int]float64{
	1: 800,
	2: 1500,
	3: 3000,
	4: 6000,
	5: 15000,
}

// HotelProvider adapts a LiteAPI-shaped hotel search + optional rates
// endpoint, per spec §6, grounded on internal/tools/hotel_search.go.
type HotelProvider struct {
	cfg   Config
	cache *httpcache.Client
}

func NewHotelProvider(cfg Config, cache *httpcache.Client) *HotelProvider {
	return &HotelProvider{cfg: cfg, cache: cache}
}

type hotelRecord struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Stars     float64  `json:"stars"`
	Phone     string   `json:"phone"`
	Images    []string `json:"images"`
}

// Search returns normalized stay candidates for a city, filling prices
// from the rates endpoint when available and falling back to the
// stars-based estimate table otherwise.
func (p *HotelProvider) Search(ctx context.Context, countryCode, cityName, checkin, checkout string, adults int) ([]state.HotelCandidate, string) {
	if p.cfg.HotelAPIKey == "" {
		return nil, "hotel provider not configured"
	}

	endpoint := p.cfg.hotelBaseURL() + "/data/hotels"
	doc, err := p.cache.Get(ctx, "hotels", endpoint, map[string]string{
		"countryCode": countryCode,
		"cityName":    cityName,
	}, map[string]string{"X-API-Key": p.cfg.HotelAPIKey}, httpcache.TTLHotels)
	if err != nil {
		return nil, fmt.Sprintf("hotel search request failed: %v", err)
	}

	hotels, err := parseHotelList(doc)
	if err != nil {
		return nil, fmt.Sprintf("hotel search parse failed: %v", err)
	}
	if len(hotels) == 0 {
		return nil, "no hotels returned"
	}

	rates := p.fetchRates(ctx, hotels, checkin, checkout, adults)

	out := make([]state.HotelCandidate, 0, len(hotels))
	for _, h := range hotels {
		pricePerNight, verified := rates[h.ID]
		if !verified {
			pricePerNight = estimatePriceFromStars(h.Stars)
		}
		out = append(out, state.HotelCandidate{
			CandidateBase: state.CandidateBase{
				ID:           h.ID,
				Price:        pricePerNight,
				Currency:     "INR",
				SourceOrigin: state.SourceAPI,
				Verified:     verified,
			},
			Name:          h.Name,
			Lat:           h.Latitude,
			Lng:           h.Longitude,
			Stars:         h.Stars,
			PricePerNight: pricePerNight,
		})
	}
	return out, ""
}

func parseHotelList(doc []byte) ([]hotelRecord, error) {
	var shapeData struct {
		Data []hotelRecord `json:"data"`
	}
	if err := json.Unmarshal(doc, &shapeData); err == nil && len(shapeData.Data) > 0 {
		return shapeData.Data, nil
	}

	var shapeHotels struct {
		Hotels []hotelRecord `json:"hotels"`
	}
	if err := json.Unmarshal(doc, &shapeHotels); err != nil {
		return nil, err
	}
	return shapeHotels.Hotels, nil
}

// fetchRates calls the optional /data/rates endpoint; on any failure it
// returns an empty map and callers fall back to the stars-based
// estimate, per spec §6.
func (p *HotelProvider) fetchRates(ctx context.Context, hotels []hotelRecord, checkin, checkout string, adults int) map[string]float64 {
	rates := make(map[string]float64)
	if len(hotels) == 0 || checkin == "" || checkout == "" {
		return rates
	}

	ids := ""
	for i, h := range hotels {
		if i > 0 {
			ids += ","
		}
		ids += h.ID
	}

	endpoint := p.cfg.hotelBaseURL() + "/data/rates"
	doc, err := p.cache.Get(ctx, "hotels", endpoint, map[string]string{
		"hotelIds": ids,
		"checkin":  checkin,
		"checkout": checkout,
		"adults":   fmt.Sprint(adults),
	}, map[string]string{"X-API-Key": p.cfg.HotelAPIKey}, httpcache.TTLHotels)
	if err != nil {
		return rates
	}

	var parsed struct {
		Data []struct {
			HotelID       string  `json:"hotel_id"`
			PricePerNight float64 `json:"price_per_night"`
		} `json:"data"`
	}
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return rates
	}
	for _, r := range parsed.Data {
		if r.PricePerNight > 0 {
			rates[r.HotelID] = r.PricePerNight
		}
	}
	return rates
}

// estimatePriceFromStars implements spec §6's fixed table, rounding a
// fractional star rating down to its integer bucket.
func estimatePriceFromStars(stars float64) float64 {
	bucket := int(stars)
	if bucket < 1 {
		bucket = 1
	}
	if bucket > 5 {
		bucket = 5
	}
	return starsPriceTable[bucket]
}
