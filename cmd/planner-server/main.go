// Command planner-server exposes the trip-planning graph over HTTP,
// implementing the four inbound contracts of spec §6: run, stream,
// resume, and apply_what_if.
package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/tripplanner/orchestrator/internal/agents"
	"github.com/tripplanner/orchestrator/internal/checkpoint"
	"github.com/tripplanner/orchestrator/internal/graph"
	"github.com/tripplanner/orchestrator/internal/httpcache"
	"github.com/tripplanner/orchestrator/internal/llm/providers"
	"github.com/tripplanner/orchestrator/internal/middleware"
	"github.com/tripplanner/orchestrator/internal/negotiator"
	"github.com/tripplanner/orchestrator/internal/planner"
	trvlproviders "github.com/tripplanner/orchestrator/internal/providers"
	"github.com/tripplanner/orchestrator/internal/state"
)

// server bundles the executor and the negotiator used directly by
// apply_what_if, per spec §6's note that what-if does not re-run any
// research nodes.
type server struct {
	executor   *graph.Executor
	checkpointer checkpoint.Checkpointer
	deps       *agents.Deps
}

type runRequest struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Query     string `json:"query"`
}

type resumeRequest struct {
	SessionID string `json:"session_id"`
	Feedback  string `json:"feedback"`
	Approval  bool   `json:"approval"`
	Selection string `json:"selection"` // selected_bundle_id or selected destination, folded into feedback semantics
}

type whatIfRequest struct {
	SessionID string  `json:"session_id"`
	Delta     float64 `json:"delta"`
}

func (s *server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		http.Error(w, "session_id required", http.StatusBadRequest)
		return
	}

	st := state.New(req.SessionID, req.UserID, req.Query)
	result, err := s.executor.Run(r.Context(), req.SessionID, st)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, result)
}

func (s *server) handleStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		http.Error(w, "session_id required", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/x-ndjson")

	st := state.New(req.SessionID, req.UserID, req.Query)
	for ev := range s.executor.Stream(r.Context(), req.SessionID, st) {
		enc := json.NewEncoder(w)
		if ev.Err != nil {
			enc.Encode(map[string]string{"node": ev.NodeName, "error": ev.Err.Error()})
		} else {
			enc.Encode(map[string]interface{}{"node": ev.NodeName, "partial": ev.Partial})
		}
		flusher.Flush()
	}
}

func (s *server) handleResume(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req resumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		http.Error(w, "session_id required", http.StatusBadRequest)
		return
	}

	// A destination pick or bundle pick rewrites state ahead of the
	// resume call, then resume clears requires_approval and continues.
	if req.Selection != "" {
		st, err := s.checkpointer.Load(r.Context(), req.SessionID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		switch st.ApprovalType {
		case state.ApprovalDestination:
			st.Apply(state.PartialState{TripRequest: &state.TripRequest{
				Origin: st.TripRequest.Origin, Destination: req.Selection,
				StartDate: st.TripRequest.StartDate, EndDate: st.TripRequest.EndDate,
				Budget: st.TripRequest.Budget, NumTravelers: st.TripRequest.NumTravelers,
				TravelStyle: st.TripRequest.TravelStyle, Interests: st.TripRequest.Interests,
			}})
		case state.ApprovalBundle:
			selected := req.Selection
			st.Apply(state.PartialState{SelectedBundleID: &selected})
		}
		if err := s.checkpointer.Save(r.Context(), req.SessionID, st); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	result, err := s.executor.Resume(r.Context(), req.SessionID, req.Feedback, req.Approval)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, result)
}

// handleWhatIf implements apply_what_if directly against the negotiator,
// bypassing the graph executor entirely since it re-scores the already
// fetched candidate pools rather than re-running any research node.
func (s *server) handleWhatIf(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req whatIfRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		http.Error(w, "session_id required", http.StatusBadRequest)
		return
	}

	st, err := s.checkpointer.Load(r.Context(), req.SessionID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	tr := st.TripRequest
	durationDays := 1
	if !tr.StartDate.IsZero() && !tr.EndDate.IsZero() {
		if d := int(tr.EndDate.Sub(tr.StartDate).Hours()/24) + 1; d > 0 {
			durationDays = d
		}
	}

	in := negotiator.Input{
		Transports:   append(append([]state.TransportCandidate{}, st.FlightOptions...), st.GroundTransportOptions...),
		Stays:        st.HotelOptions,
		Activities:   st.ActivityOptions,
		Budget:       tr.Budget,
		DurationDays: durationDays,
		NumTravelers: tr.NumTravelers,
		Interests:    tr.Interests,
		Destination:  tr.Destination,
		StartDate:    tr.StartDate.Format("2006-01-02"),
		EndDate:      tr.EndDate.Format("2006-01-02"),
	}

	out := s.deps.Negotiator.WhatIf(in, req.Delta)

	cacheKey := out.CacheKey
	delta := req.Delta
	st.Apply(state.PartialState{
		Bundles:             out.Bundles,
		NegotiatorCacheKey:  &cacheKey,
		NegotiationLog:      out.Log,
		WhatIfDeltaAdd:      &delta,
		WhatIfHistoryAppend: []float64{req.Delta},
	})
	if err := s.checkpointer.Save(r.Context(), req.SessionID, st); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, out)
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "healthy"})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func buildProvidersConfig() trvlproviders.Config {
	return trvlproviders.Config{
		AmadeusClientID:     os.Getenv("AMADEUS_CLIENT_ID"),
		AmadeusClientSecret: os.Getenv("AMADEUS_CLIENT_SECRET"),
		HotelAPIKey:         os.Getenv("LITEAPI_KEY"),
		PlacesAPIKey:        os.Getenv("GOOGLE_PLACES_KEY"),
		GeocoderUserAgent:   "trip-planner-orchestrator/1.0",
		SearchAPIKey:        os.Getenv("TAVILY_API_KEY"),
	}
}

// buildTier2 wires a Redis-backed Tier 2 cache when REDIS_ADDR is set,
// falling back to the in-process MemoryTier2 otherwise.
func buildTier2() httpcache.Tier2 {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return httpcache.NewMemoryTier2()
	}
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		log.Printf("invalid REDIS_ADDR %q, falling back to in-process cache: %v", addr, err)
		return httpcache.NewMemoryTier2()
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Printf("invalid REDIS_ADDR port %q, falling back to in-process cache: %v", portStr, err)
		return httpcache.NewMemoryTier2()
	}
	tier2, err := httpcache.NewRedisTier2(httpcache.RedisConfig{
		Host:     host,
		Port:     port,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	if err != nil {
		log.Printf("redis tier2 unavailable, falling back to in-process cache: %v", err)
		return httpcache.NewMemoryTier2()
	}
	return tier2
}

// buildCheckpointer wires a PostgresCheckpointer when DATABASE_URL is set,
// falling back to the in-process MemoryCheckpointer otherwise.
func buildCheckpointer() checkpoint.Checkpointer {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return checkpoint.NewMemoryCheckpointer()
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Printf("postgres checkpointer unavailable, falling back to in-memory: %v", err)
		return checkpoint.NewMemoryCheckpointer()
	}
	if err := db.Ping(); err != nil {
		log.Printf("postgres checkpointer unavailable, falling back to in-memory: %v", err)
		return checkpoint.NewMemoryCheckpointer()
	}
	return checkpoint.NewPostgresCheckpointer(db)
}

func buildLLMProvider() providers.LLMProvider {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil
	}
	factory := providers.NewProviderFactory()
	p, err := factory.CreateProvider(&providers.LLMConfig{
		Provider:    "openai",
		APIKey:      apiKey,
		Model:       "gpt-4o-mini",
		MaxTokens:   2048,
		Temperature: 0.2,
		Timeout:     20 * time.Second,
	})
	if err != nil {
		log.Printf("llm provider unavailable, continuing without one: %v", err)
		return nil
	}
	return p
}

func main() {
	port := flag.String("port", "8090", "Port to run the server on")
	host := flag.String("host", "0.0.0.0", "Host to bind the server to")
	flag.Parse()

	cfg := buildProvidersConfig()
	cache := httpcache.NewClient(1024, buildTier2())
	llmProvider := buildLLMProvider()
	deps := agents.NewDeps(cfg, cache, llmProvider, "gpt-4o-mini")

	g, err := planner.Build(deps)
	if err != nil {
		log.Fatalf("graph build failed: %v", err)
	}

	cp := buildCheckpointer()
	executor := graph.NewExecutor(g, cp)

	srv := &server{executor: executor, checkpointer: cp, deps: deps}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", srv.handleHealth)
	mux.HandleFunc("/api/v1/plan/run", srv.handleRun)
	mux.HandleFunc("/api/v1/plan/stream", srv.handleStream)
	mux.HandleFunc("/api/v1/plan/resume", srv.handleResume)
	mux.HandleFunc("/api/v1/plan/what_if", srv.handleWhatIf)

	rateLimiter := middleware.NewRateLimiter(5, 10)
	handler := middleware.Chain(mux,
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Tracing(),
		middleware.CORS(),
		middleware.Logging(),
		middleware.SecurityHeaders(),
		middleware.InputValidation(),
		rateLimiter.Middleware,
	)
	addr := fmt.Sprintf("%s:%s", *host, *port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("trip planner orchestrator starting on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil {
		log.Fatal("server failed to start:", err)
	}
}
