package providers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tripplanner/orchestrator/internal/httpcache"
)

// SearchResult is one hit from the web-search fallback.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// WebSearchProvider adapts a Tavily-shaped general text-search endpoint,
// per spec §6. Agent nodes fall back to this when a primary API is
// unconfigured or returns nothing, ahead of falling back further to the
// LLM wrapper's heuristic guess (spec §4.5's primary -> web search -> LLM
// chain).
type WebSearchProvider struct {
	cfg   Config
	cache *httpcache.Client
}

func NewWebSearchProvider(cfg Config, cache *httpcache.Client) *WebSearchProvider {
	return &WebSearchProvider{cfg: cfg, cache: cache}
}

// Search returns a short natural-language answer plus supporting
// results for a free-text query.
func (p *WebSearchProvider) Search(ctx context.Context, query string) (answer string, results []SearchResult, reason string) {
	if p.cfg.SearchAPIKey == "" {
		return "", nil, "web search not configured"
	}

	endpoint := p.cfg.searchBaseURL() + "/search"
	doc, err := p.cache.Get(ctx, "websearch", endpoint, map[string]string{
		"query":       query,
		"api_key":     p.cfg.SearchAPIKey,
		"max_results": "5",
	}, nil, httpcache.TTLPlaces)
	if err != nil {
		return "", nil, fmt.Sprintf("web search request failed: %v", err)
	}

	var parsed struct {
		Answer  string         `json:"answer"`
		Results []SearchResult `json:"results"`
	}
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return "", nil, fmt.Sprintf("web search parse failed: %v", err)
	}
	if parsed.Answer == "" && len(parsed.Results) == 0 {
		return "", nil, "no web search results"
	}
	return parsed.Answer, parsed.Results, ""
}
