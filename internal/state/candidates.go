package state

// SourceOrigin is the provenance tag on every candidate and enrichment
// record, per the glossary in spec.md.
type SourceOrigin string

const (
	SourceAPI           SourceOrigin = "api"
	SourceCurated       SourceOrigin = "curated"
	SourceLLM           SourceOrigin = "llm"
	SourceTavilyWeb      SourceOrigin = "tavily_web"
	SourceFareCalculator SourceOrigin = "fare_calculator"
	SourceEstimated      SourceOrigin = "estimated"
)

// Candidate is the common interface every category-specific candidate
// implements, per SPEC_FULL.md/spec.md §9's "heterogeneous candidate
// lists" note: a sum type with a common {id, price, source_origin,
// verified} shape plus category-specific payload.
type Candidate interface {
	CandidateID() string
	CandidatePrice() float64
	CandidateSourceOrigin() SourceOrigin
	CandidateVerified() bool
	DedupKey() string
}

// CandidateBase is embedded by every concrete candidate type.
type CandidateBase struct {
	ID           string       `json:"id"`
	Price        float64      `json:"price"`
	Currency     string       `json:"currency,omitempty"`
	SourceOrigin SourceOrigin `json:"source_origin"`
	Verified     bool         `json:"verified"`
	BookingURL   string       `json:"booking_url,omitempty"`
}

// TransportCandidate covers flights, trains, buses, and cabs.
type TransportCandidate struct {
	CandidateBase
	Mode           string  `json:"mode"` // flight, train, bus, cab
	Operator       string  `json:"operator,omitempty"`
	Origin         string  `json:"origin,omitempty"`
	Destination    string  `json:"destination,omitempty"`
	DurationMinutes int    `json:"duration_minutes"`
	Transfers      int     `json:"transfers"`
	Rating         float64 `json:"rating"`
	Name           string  `json:"name,omitempty"`
}

func (t TransportCandidate) CandidateID() string                { return t.ID }
func (t TransportCandidate) CandidatePrice() float64             { return t.Price }
func (t TransportCandidate) CandidateSourceOrigin() SourceOrigin { return t.SourceOrigin }
func (t TransportCandidate) CandidateVerified() bool             { return t.Verified }
func (t TransportCandidate) DedupKey() string {
	if t.ID != "" {
		return t.ID
	}
	if t.Name != "" {
		return t.Name
	}
	return t.Operator
}

// HotelCandidate covers stays.
type HotelCandidate struct {
	CandidateBase
	Name          string   `json:"name"`
	Lat           float64  `json:"lat"`
	Lng           float64  `json:"lng"`
	Stars         float64  `json:"stars"`
	PricePerNight float64  `json:"price_per_night"`
	TotalPrice    float64  `json:"total_price"`
	Amenities     []string `json:"amenities,omitempty"`
}

func (h HotelCandidate) CandidateID() string                { return h.ID }
func (h HotelCandidate) CandidatePrice() float64             { return h.Price }
func (h HotelCandidate) CandidateSourceOrigin() SourceOrigin { return h.SourceOrigin }
func (h HotelCandidate) CandidateVerified() bool             { return h.Verified }
func (h HotelCandidate) DedupKey() string {
	if h.ID != "" {
		return h.ID
	}
	return h.Name
}

// ActivityCandidate covers things to do.
type ActivityCandidate struct {
	CandidateBase
	Name          string  `json:"name"`
	Category      string  `json:"category,omitempty"`
	DurationHours float64 `json:"duration_hours"`
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
	OpeningHours  string  `json:"opening_hours,omitempty"`
	Phone         string  `json:"phone,omitempty"`
	Rating        float64 `json:"rating"`
}

func (a ActivityCandidate) CandidateID() string                { return a.ID }
func (a ActivityCandidate) CandidatePrice() float64             { return a.Price }
func (a ActivityCandidate) CandidateSourceOrigin() SourceOrigin { return a.SourceOrigin }
func (a ActivityCandidate) CandidateVerified() bool             { return a.Verified }
func (a ActivityCandidate) DedupKey() string {
	if a.ID != "" {
		return a.ID
	}
	return a.Name
}

// EnrichmentRecord covers local tips, hidden gems, and events.
type EnrichmentRecord struct {
	CandidateBase
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
}

func (e EnrichmentRecord) CandidateID() string                { return e.ID }
func (e EnrichmentRecord) CandidatePrice() float64             { return e.Price }
func (e EnrichmentRecord) CandidateSourceOrigin() SourceOrigin { return e.SourceOrigin }
func (e EnrichmentRecord) CandidateVerified() bool             { return e.Verified }
func (e EnrichmentRecord) DedupKey() string {
	if e.ID != "" {
		return e.ID
	}
	return e.Title
}

// BundleChoice is a complete, self-contained negotiated plan: it embeds
// copies of the selected records (not indices), per spec §3's invariant
// that downstream nodes have no ordering dependency on candidate lists.
type BundleChoice struct {
	ID         string                `json:"id"` // budget_saver | best_value | experience_max
	Transport  TransportCandidate    `json:"transport"`
	Stay       HotelCandidate        `json:"stay"`
	Activities []ActivityCandidate   `json:"activities"`

	Breakdown CostBreakdown `json:"breakdown"`

	CostScore        float64 `json:"cost_score"`
	ExperienceScore  float64 `json:"experience_score"`
	ConvenienceScore float64 `json:"convenience_score"`
	FinalScore       float64 `json:"final_score"`

	TradeOffs           []TradeOffLine `json:"trade_offs"`
	RejectedAlternatives []RejectedAlternative `json:"rejected_alternatives"`
	BookingURLs         map[string]string `json:"booking_urls"`
	DecisionLog         []string          `json:"decision_log"`
}

// CostBreakdown is the negotiator's per-bundle cost detail.
type CostBreakdown struct {
	TransportTotal float64 `json:"transport_total"`
	StayTotal      float64 `json:"stay_total"`
	ActivityTotal  float64 `json:"activity_total"`
	FoodTotal      float64 `json:"food_total"`
	Subtotal       float64 `json:"subtotal"`
	Buffer         float64 `json:"buffer"`
	Total          float64 `json:"total"`
}

// TradeOffLine names one gain/sacrifice pair in a bundle's rationale.
type TradeOffLine struct {
	Gain      string `json:"gain"`
	Sacrifice string `json:"sacrifice"`
}

// RejectedAlternative names an option the negotiator considered and
// dropped, with the reason it lost out.
type RejectedAlternative struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}
