// Package wrapper implements the single-shot, lenient-JSON LLM wrapper
// from spec §4.2, layered over the teacher's providers.LLMProvider
// interface (internal/llm/providers/provider.go) so any configured
// backend (OpenAI, Anthropic, Ollama) works unchanged.
package wrapper

import (
	"context"
	"fmt"
	"time"

	"github.com/tripplanner/orchestrator/internal/httpcache"
	"github.com/tripplanner/orchestrator/internal/llm/providers"
)

// Wrapper invokes the chat endpoint once per call with a system+user
// prompt and low temperature, per spec §4.2.
type Wrapper struct {
	provider providers.LLMProvider
	model    string
	retry    httpcache.RetryConfig
}

// New builds a Wrapper over an already-constructed provider (see
// internal/llm/providers/factory.go in the teacher repo for how a
// concrete provider is chosen from configuration).
func New(provider providers.LLMProvider, model string) *Wrapper {
	return &Wrapper{provider: provider, model: model, retry: httpcache.DefaultRetryConfig()}
}

// Result is what callers receive: the raw text, and — if parsing
// succeeded — the leniently extracted JSON payload. Callers must
// tolerate a nil Parsed and fall back to heuristics, per spec §4.2.
type Result struct {
	Text       string
	Parsed     interface{}
	TokensUsed int
	LatencyMS  int64
}

// Complete runs one chat-completion call with low temperature and,
// optionally, JSON-mode framing in the prompt (go-openai's response
// format enum is not uniformly supported across providers in this
// module's stack, so JSON-mode is requested via instruction text rather
// than a provider-specific field, matching the teacher's OllamaProvider
// which has no native json_object mode either).
func (w *Wrapper) Complete(ctx context.Context, systemPrompt, userPrompt string, wantJSON bool) (*Result, error) {
	if w.provider == nil {
		return nil, fmt.Errorf("llm wrapper: no provider configured")
	}

	prompt := userPrompt
	if wantJSON {
		prompt += "\n\nRespond with JSON only, no prose, no markdown fences unless necessary."
	}

	req := &providers.GenerateRequest{
		Model:       w.model,
		Temperature: 0.2,
		Messages: []providers.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	}

	start := time.Now()
	var resp *providers.GenerateResponse
	_, err := httpcacheDo(ctx, w.retry, func() error {
		var callErr error
		resp, callErr = w.provider.GenerateResponse(ctx, req)
		return callErr
	})
	latency := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("llm wrapper: generate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("llm wrapper: empty response")
	}

	text := resp.Choices[0].Message.Content
	result := &Result{
		Text:       text,
		TokensUsed: resp.Usage.TotalTokens,
		LatencyMS:  latency.Milliseconds(),
	}
	if wantJSON {
		result.Parsed = ExtractJSON(text)
	}
	return result, nil
}

// httpcacheDo retries the LLM call itself per spec §4.1's backoff policy
// (the provider's own HTTP transport already retries transport-level
// failures; this additionally covers a provider returning a retryable
// error type up the GenerateResponse call, consolidating with the
// retry.go helper rather than re-implementing backoff a third time).
func httpcacheDo(ctx context.Context, cfg httpcache.RetryConfig, op func() error) (int, error) {
	return httpcache.Do(ctx, cfg, func(attempt int) (int, error) {
		err := op()
		if err == nil {
			return 200, nil
		}
		return 0, err
	})
}
