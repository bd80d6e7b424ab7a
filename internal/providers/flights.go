package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tripplanner/orchestrator/internal/httpcache"
	"github.com/tripplanner/orchestrator/internal/state"
)

// currencyToINR implements spec §6's fixed conversion table.
var currencyToINR = map[string]float64{
	"EUR": 93,
	"USD": 83,
	"GBP": 105,
	"INR": 1,
}

// FlightProvider adapts an Amadeus-shaped flight-offers API, per spec
// §6: OAuth2 client-credentials token endpoint + flight offers endpoint,
// grounded on internal/tools/flight_search.go's callFlightAPI shape.
type FlightProvider struct {
	cfg    Config
	cache  *httpcache.Client
	client *http.Client

	tokenMu  sync.Mutex
	token    string
	tokenExp time.Time
}

// NewFlightProvider builds a flight adapter. cache is used for the GET
// flight-offers call; the OAuth2 token exchange is a POST and is cached
// in-process only, not through the two-tier cache.
func NewFlightProvider(cfg Config, cache *httpcache.Client) *FlightProvider {
	return &FlightProvider{cfg: cfg, cache: cache, client: &http.Client{Timeout: 10 * time.Second}}
}

// Search returns normalized transport candidates for one origin-
// destination-date combination, never propagating an error, per spec
// §4.2.
func (p *FlightProvider) Search(ctx context.Context, originIATA, destinationIATA, departureDate, class string, adults int) ([]state.TransportCandidate, string) {
	if p.cfg.AmadeusClientID == "" || p.cfg.AmadeusClientSecret == "" {
		return nil, "amadeus credentials not configured"
	}

	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, fmt.Sprintf("amadeus auth failed: %v", err)
	}

	endpoint := p.cfg.amadeusBaseURL() + "/v2/shopping/flight-offers"
	params := map[string]string{
		"originLocationCode":      originIATA,
		"destinationLocationCode": destinationIATA,
		"departureDate":           departureDate,
		"adults":                  strconv.Itoa(adults),
	}
	if class != "" {
		params["travelClass"] = class
	}

	doc, err := p.cache.Get(ctx, "flights", endpoint, params, map[string]string{
		"Authorization": "Bearer " + token,
	}, httpcache.TTLFlights)
	if err != nil {
		return nil, fmt.Sprintf("flight offers request failed: %v", err)
	}

	candidates, err := parseFlightOffers(doc)
	if err != nil {
		return nil, fmt.Sprintf("flight offers parse failed: %v", err)
	}
	if len(candidates) == 0 {
		return nil, "no flight offers returned"
	}
	return candidates, ""
}

func (p *FlightProvider) accessToken(ctx context.Context) (string, error) {
	p.tokenMu.Lock()
	defer p.tokenMu.Unlock()

	if p.token != "" && time.Now().Before(p.tokenExp) {
		return p.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", p.cfg.AmadeusClientID)
	form.Set("client_secret", p.cfg.AmadeusClientSecret)

	endpoint := p.cfg.amadeusBaseURL() + "/v1/security/oauth2/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	if parsed.AccessToken == "" {
		return "", fmt.Errorf("empty access_token in response")
	}

	p.token = parsed.AccessToken
	p.tokenExp = time.Now().Add(time.Duration(parsed.ExpiresIn-30) * time.Second)
	return p.token, nil
}

// amadeusOffer mirrors the slice of the vendor response shape the core
// actually consumes: data[].itineraries[].segments[] and data[].price.
type amadeusOffer struct {
	Itineraries []struct {
		Duration string `json:"duration"`
		Segments []struct {
			Departure struct {
				IataCode string `json:"iataCode"`
				At       string `json:"at"`
			} `json:"departure"`
			Arrival struct {
				IataCode string `json:"iataCode"`
				At       string `json:"at"`
			} `json:"arrival"`
			CarrierCode string `json:"carrierCode"`
			Number      string `json:"number"`
		} `json:"segments"`
	} `json:"itineraries"`
	Price struct {
		GrandTotal string `json:"grandTotal"`
		Currency   string `json:"currency"`
	} `json:"price"`
}

func parseFlightOffers(doc []byte) ([]state.TransportCandidate, error) {
	var parsed struct {
		Data []amadeusOffer `json:"data"`
	}
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return nil, err
	}

	var out []state.TransportCandidate
	for i, offer := range parsed.Data {
		if len(offer.Itineraries) == 0 {
			continue
		}
		itin := offer.Itineraries[0]
		if len(itin.Segments) == 0 {
			continue
		}
		first := itin.Segments[0]
		last := itin.Segments[len(itin.Segments)-1]

		priceINR, err := convertToINR(offer.Price.GrandTotal, offer.Price.Currency)
		if err != nil {
			continue
		}

		out = append(out, state.TransportCandidate{
			CandidateBase: state.CandidateBase{
				ID:           fmt.Sprintf("amadeus-%d", i),
				Price:        priceINR,
				Currency:     "INR",
				SourceOrigin: state.SourceAPI,
				Verified:     true,
			},
			Mode:            "flight",
			Operator:        first.CarrierCode + first.Number,
			Origin:          first.Departure.IataCode,
			Destination:     last.Arrival.IataCode,
			DurationMinutes: parseISODurationMinutes(itin.Duration),
			Transfers:       len(itin.Segments) - 1,
			Rating:          3.8,
			Name:            first.CarrierCode + " " + first.Number,
		})
	}
	return out, nil
}

// convertToINR implements spec §6's fixed currency table: EUR x93,
// USD x83, GBP x105, INR x1.
func convertToINR(amount, currency string) (float64, error) {
	v, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return 0, err
	}
	rate, ok := currencyToINR[strings.ToUpper(currency)]
	if !ok {
		rate = 83 // unknown currency: fall back to the USD rate rather than drop the offer
	}
	return v * rate, nil
}

// parseISODurationMinutes parses the subset of ISO-8601 durations
// Amadeus emits, e.g. "PT3H25M".
func parseISODurationMinutes(iso string) int {
	iso = strings.TrimPrefix(iso, "PT")
	var hours, minutes int
	var num strings.Builder
	for _, r := range iso {
		switch {
		case r >= '0' && r <= '9':
			num.WriteRune(r)
		case r == 'H':
			hours, _ = strconv.Atoi(num.String())
			num.Reset()
		case r == 'M':
			minutes, _ = strconv.Atoi(num.String())
			num.Reset()
		}
	}
	return hours*60 + minutes
}
