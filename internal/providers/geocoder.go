package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/tripplanner/orchestrator/internal/httpcache"
)

// nominatimMinInterval is the required minimum spacing between calls to
// a free Nominatim instance, per spec §6's "≥1s rate-limit between
// calls" and Nominatim's own usage policy.
const nominatimMinInterval = 1 * time.Second

// GeocoderProvider adapts a Nominatim-shaped free geocoding endpoint,
// per spec §6, grounded on internal/tools/location.go's LocationTool.
// It is the fallback used when a destination name needs (lat, lng) and
// no paid geocoder is configured.
type GeocoderProvider struct {
	cfg   Config
	cache *httpcache.Client

	mu       sync.Mutex
	lastCall time.Time
}

func NewGeocoderProvider(cfg Config, cache *httpcache.Client) *GeocoderProvider {
	return &GeocoderProvider{cfg: cfg, cache: cache}
}

// Geocode resolves a free-text query to (lat, lng). It blocks as needed
// to respect the 1s minimum call spacing before every lookup, cache hits
// included.
func (p *GeocoderProvider) Geocode(ctx context.Context, query string) (lat, lng float64, reason string) {
	if query == "" {
		return 0, 0, "empty query"
	}

	userAgent := p.cfg.GeocoderUserAgent
	if userAgent == "" {
		userAgent = "trip-planner-orchestrator/1.0"
	}

	endpoint := p.cfg.geocoderBaseURL() + "/search"
	params := map[string]string{"q": query, "format": "json", "limit": "1"}

	p.throttle()

	doc, err := p.cache.Get(ctx, "geocode", endpoint, params, map[string]string{
		"User-Agent": userAgent,
	}, 24*time.Hour)
	if err != nil {
		return 0, 0, fmt.Sprintf("geocode request failed: %v", err)
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.Unmarshal(doc, &results); err != nil {
		return 0, 0, fmt.Sprintf("geocode parse failed: %v", err)
	}
	if len(results) == 0 {
		return 0, 0, "no geocoding results"
	}

	lat, errLat := strconv.ParseFloat(results[0].Lat, 64)
	lng, errLng := strconv.ParseFloat(results[0].Lon, 64)
	if errLat != nil || errLng != nil {
		return 0, 0, "malformed coordinates in geocoding response"
	}
	return lat, lng, ""
}

// throttle blocks until at least nominatimMinInterval has elapsed since
// the previous call to Geocode. httpcache.Client does not expose a
// hit/miss signal, so this is conservative: it also delays calls that
// would have been served from cache. Given the 24h cache TTL for
// geocoding results, repeat lookups are rare enough that this is not a
// practical latency concern.
func (p *GeocoderProvider) throttle() {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := time.Since(p.lastCall)
	if elapsed < nominatimMinInterval {
		time.Sleep(nominatimMinInterval - elapsed)
	}
	p.lastCall = time.Now()
}
