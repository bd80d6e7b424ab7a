package providers

import "testing"

func TestConvertToINR(t *testing.T) {
	cases := []struct {
		amount, currency string
		want             float64
	}{
		{"100", "EUR", 9300},
		{"100", "USD", 8300},
		{"100", "GBP", 10500},
		{"100", "INR", 100},
	}
	for _, c := range cases {
		got, err := convertToINR(c.amount, c.currency)
		if err != nil {
			t.Fatalf("convertToINR(%q, %q): %v", c.amount, c.currency, err)
		}
		if got != c.want {
			t.Fatalf("convertToINR(%q, %q) = %.2f, want %.2f", c.amount, c.currency, got, c.want)
		}
	}
}

func TestParseISODurationMinutes(t *testing.T) {
	cases := []struct {
		iso  string
		want int
	}{
		{"PT3H25M", 205},
		{"PT45M", 45},
		{"PT2H", 120},
	}
	for _, c := range cases {
		if got := parseISODurationMinutes(c.iso); got != c.want {
			t.Fatalf("parseISODurationMinutes(%q) = %d, want %d", c.iso, got, c.want)
		}
	}
}

func TestEstimatePriceFromStars(t *testing.T) {
	cases := []struct {
		stars float64
		want  float64
	}{
		{1, 800}, {2.9, 1500}, {3, 3000}, {4.5, 6000}, {5, 15000}, {0, 800}, {9, 15000},
	}
	for _, c := range cases {
		if got := estimatePriceFromStars(c.stars); got != c.want {
			t.Fatalf("estimatePriceFromStars(%.1f) = %.0f, want %.0f", c.stars, got, c.want)
		}
	}
}

func TestWMOCondition(t *testing.T) {
	if got := wmoCondition(0); got != "clear sky" {
		t.Fatalf("wmoCondition(0) = %q", got)
	}
	if got := wmoCondition(61); got != "slight rain" {
		t.Fatalf("wmoCondition(61) = %q", got)
	}
	if got := wmoCondition(9999); got != "unknown" {
		t.Fatalf("wmoCondition(unknown code) = %q, want \"unknown\"", got)
	}
}

func TestParseFlightOffers(t *testing.T) {
	doc := []byte(`{"data":[{"itineraries":[{"duration":"PT3H25M","segments":[{"departure":{"iataCode":"DEL","at":"2026-09-01T08:00:00"},"arrival":{"iataCode":"BOM","at":"2026-09-01T10:25:00"},"carrierCode":"AI","number":"101"}]}],"price":{"grandTotal":"120.00","currency":"USD"}}]}`)
	candidates, err := parseFlightOffers(doc)
	if err != nil {
		t.Fatalf("parseFlightOffers: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	c := candidates[0]
	if c.Origin != "DEL" || c.Destination != "BOM" {
		t.Fatalf("unexpected origin/destination: %s -> %s", c.Origin, c.Destination)
	}
	if c.DurationMinutes != 205 {
		t.Fatalf("expected duration 205 min, got %d", c.DurationMinutes)
	}
	if c.Price != 120*83 {
		t.Fatalf("expected price %.2f, got %.2f", 120*83.0, c.Price)
	}
	if c.Transfers != 0 {
		t.Fatalf("expected 0 transfers, got %d", c.Transfers)
	}
}

func TestParseHotelListBothShapes(t *testing.T) {
	dataShape := []byte(`{"data":[{"id":"h1","name":"Test Hotel","stars":4}]}`)
	hotels, err := parseHotelList(dataShape)
	if err != nil || len(hotels) != 1 || hotels[0].ID != "h1" {
		t.Fatalf("data-shape parse failed: %v %+v", err, hotels)
	}

	hotelsShape := []byte(`{"hotels":[{"id":"h2","name":"Other Hotel","stars":3}]}`)
	hotels2, err := parseHotelList(hotelsShape)
	if err != nil || len(hotels2) != 1 || hotels2[0].ID != "h2" {
		t.Fatalf("hotels-shape parse failed: %v %+v", err, hotels2)
	}
}

func TestParseForecast(t *testing.T) {
	doc := []byte(`{"daily":{"time":["2026-09-01"],"temperature_2m_min":[18.5],"temperature_2m_max":[27.2],"precipitation_probability_max":[30],"precipitation_sum":[1.2],"weathercode":[61],"windspeed_10m_max":[12.5]}}`)
	summary, err := parseForecast(doc)
	if err != nil {
		t.Fatalf("parseForecast: %v", err)
	}
	if len(summary.Days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(summary.Days))
	}
	d := summary.Days[0]
	if d.Condition != "slight rain" {
		t.Fatalf("expected condition 'slight rain', got %q", d.Condition)
	}
	if d.TempMinC != 18.5 || d.TempMaxC != 27.2 {
		t.Fatalf("unexpected temps: %+v", d)
	}
}
