// Package providers adapts the external flight/hotel/places/weather/
// geocoder/web-search vendors from spec §6 into the candidate sum types
// of internal/state, on top of internal/httpcache.Client. Every adapter
// method returns (candidates, reason) and never an error into the
// graph, per spec §4.2 and §9 ("Exceptions as control flow inside
// adapters. Rewrite as explicit result types"), generalizing the
// config-driven HTTP tool shape of internal/tools/flight_search.go,
// hotel_search.go, weather.go, and location.go.
package providers

// Config holds every adapter's credentials and base URLs. All fields are
// optional; an adapter whose required credential is empty short-circuits
// to an empty result with a "not configured" reason, per spec §7 item 1.
type Config struct {
	AmadeusClientID     string
	AmadeusClientSecret string
	AmadeusBaseURL      string // default https://api.amadeus.com

	HotelAPIKey  string
	HotelBaseURL string // default https://api.liteapi.travel

	PlacesAPIKey  string
	PlacesBaseURL string // default https://places.googleapis.com

	WeatherBaseURL string // default https://api.open-meteo.com, no key required

	GeocoderBaseURL  string // default https://nominatim.openstreetmap.org
	GeocoderUserAgent string // required by Nominatim's usage policy

	SearchAPIKey  string
	SearchBaseURL string // default https://api.tavily.com
}

func (c Config) amadeusBaseURL() string {
	if c.AmadeusBaseURL != "" {
		return c.AmadeusBaseURL
	}
	return "https://api.amadeus.com"
}

func (c Config) hotelBaseURL() string {
	if c.HotelBaseURL != "" {
		return c.HotelBaseURL
	}
	return "https://api.liteapi.travel"
}

func (c Config) placesBaseURL() string {
	if c.PlacesBaseURL != "" {
		return c.PlacesBaseURL
	}
	return "https://places.googleapis.com"
}

func (c Config) weatherBaseURL() string {
	if c.WeatherBaseURL != "" {
		return c.WeatherBaseURL
	}
	return "https://api.open-meteo.com"
}

func (c Config) geocoderBaseURL() string {
	if c.GeocoderBaseURL != "" {
		return c.GeocoderBaseURL
	}
	return "https://nominatim.openstreetmap.org"
}

func (c Config) searchBaseURL() string {
	if c.SearchBaseURL != "" {
		return c.SearchBaseURL
	}
	return "https://api.tavily.com"
}
