package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tripplanner/orchestrator/internal/httpcache"
	"github.com/tripplanner/orchestrator/internal/state"
)

// wmoConditions maps WMO weather codes to human-readable strings, per
// spec §6's "fixed table" requirement. Grounded on the code groupings
// internal/tools/weather.go's CurrentWeather.Condition field expects.
var wmoConditions = map[int]string{
	0: "clear sky", 1: "mainly clear", 2: "partly cloudy", 3: "overcast",
	45: "fog", 48: "depositing rime fog",
	51: "light drizzle", 53: "moderate drizzle", 55: "dense drizzle",
	56: "light freezing drizzle", 57: "dense freezing drizzle",
	61: "slight rain", 63: "moderate rain", 65: "heavy rain",
	66: "light freezing rain", 67: "heavy freezing rain",
	71: "slight snow", 73: "moderate snow", 75: "heavy snow", 77: "snow grains",
	80: "slight rain showers", 81: "moderate rain showers", 82: "violent rain showers",
	85: "slight snow showers", 86: "heavy snow showers",
	95: "thunderstorm", 96: "thunderstorm with slight hail", 99: "thunderstorm with heavy hail",
}

func wmoCondition(code int) string {
	if c, ok := wmoConditions[code]; ok {
		return c
	}
	return "unknown"
}

// WeatherProvider adapts an Open-Meteo-shaped free forecast endpoint,
// per spec §6, grounded on internal/tools/weather.go.
type WeatherProvider struct {
	cfg   Config
	cache *httpcache.Client
}

func NewWeatherProvider(cfg Config, cache *httpcache.Client) *WeatherProvider {
	return &WeatherProvider{cfg: cfg, cache: cache}
}

// Forecast returns a WeatherSummary for (lat, lon) over the next
// forecastDays (capped at 16 per spec §6).
func (p *WeatherProvider) Forecast(ctx context.Context, destination string, lat, lon float64, forecastDays int) (state.WeatherSummary, string) {
	if forecastDays <= 0 {
		forecastDays = 5
	}
	if forecastDays > 16 {
		forecastDays = 16
	}

	endpoint := p.cfg.weatherBaseURL() + "/v1/forecast"
	doc, err := p.cache.Get(ctx, "weather", endpoint, map[string]string{
		"latitude":      fmt.Sprintf("%f", lat),
		"longitude":     fmt.Sprintf("%f", lon),
		"daily":         "temperature_2m_min,temperature_2m_max,precipitation_probability_max,precipitation_sum,weathercode,windspeed_10m_max",
		"forecast_days": fmt.Sprint(forecastDays),
		"timezone":      "auto",
	}, nil, httpcache.TTLWeather)
	if err != nil {
		return state.WeatherSummary{}, fmt.Sprintf("weather request failed: %v", err)
	}

	summary, err := parseForecast(doc)
	if err != nil {
		return state.WeatherSummary{}, fmt.Sprintf("weather parse failed: %v", err)
	}
	summary.Destination = destination
	summary.SourceOrigin = string(state.SourceAPI)
	if len(summary.Days) == 0 {
		return state.WeatherSummary{}, "no forecast days returned"
	}
	return summary, ""
}

func parseForecast(doc []byte) (state.WeatherSummary, error) {
	var parsed struct {
		Daily struct {
			Time                      []string  `json:"time"`
			Temperature2mMin          []float64 `json:"temperature_2m_min"`
			Temperature2mMax          []float64 `json:"temperature_2m_max"`
			PrecipitationProbMax      []float64 `json:"precipitation_probability_max"`
			PrecipitationSum          []float64 `json:"precipitation_sum"`
			Weathercode               []int     `json:"weathercode"`
			Windspeed10mMax           []float64 `json:"windspeed_10m_max"`
		} `json:"daily"`
	}
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return state.WeatherSummary{}, err
	}

	var days []state.WeatherDay
	for i := range parsed.Daily.Time {
		date, _ := time.Parse("2006-01-02", parsed.Daily.Time[i])
		day := state.WeatherDay{Date: date}
		if i < len(parsed.Daily.Temperature2mMin) {
			day.TempMinC = parsed.Daily.Temperature2mMin[i]
		}
		if i < len(parsed.Daily.Temperature2mMax) {
			day.TempMaxC = parsed.Daily.Temperature2mMax[i]
		}
		if i < len(parsed.Daily.PrecipitationProbMax) {
			day.PrecipProbPercent = parsed.Daily.PrecipitationProbMax[i]
		}
		if i < len(parsed.Daily.PrecipitationSum) {
			day.PrecipMM = parsed.Daily.PrecipitationSum[i]
		}
		if i < len(parsed.Daily.Windspeed10mMax) {
			day.WindSpeedKPH = parsed.Daily.Windspeed10mMax[i]
		}
		if i < len(parsed.Daily.Weathercode) {
			day.Condition = wmoCondition(parsed.Daily.Weathercode[i])
		}
		days = append(days, day)
	}
	return state.WeatherSummary{Days: days}, nil
}
