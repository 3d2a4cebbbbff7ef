package gemini

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type fakeModels struct {
	mu      sync.Mutex
	calls   int
	model   string
	config  *genai.GenerateContentConfig
	prompts []string
	resp    *genai.GenerateContentResponse
	err     error
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.model = model
	f.config = config
	for _, content := range contents {
		for _, part := range content.Parts {
			f.prompts = append(f.prompts, part.Text)
		}
	}
	return f.resp, f.err
}

func textResponse(texts ...string) *genai.GenerateContentResponse {
	parts := make([]*genai.Part, 0, len(texts))
	for _, text := range texts {
		parts = append(parts, &genai.Part{Text: text})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}}}
}

func TestGeneratorGenerateContent(t *testing.T) {
	models := &fakeModels{resp: textResponse(`{"fit_level":`, ` "good"}`)}
	g := newGenerator(models, GeneratorOptions{Model: "gemini-test"}, zap.NewNop())

	out, err := g.GenerateContent(context.Background(), "  prompt  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "{\"fit_level\":\n\"good\"}" {
		t.Fatalf("unexpected output: %q", out)
	}
	if models.model != "gemini-test" || models.prompts[0] != "prompt" {
		t.Fatalf("unexpected request: model=%s prompts=%v", models.model, models.prompts)
	}

	cfg := models.config
	if cfg.ResponseMIMEType != "application/json" {
		t.Fatalf("expected json response type, got %q", cfg.ResponseMIMEType)
	}
	if cfg.Temperature == nil || *cfg.Temperature != defaultTemperature {
		t.Fatalf("expected default temperature, got %v", cfg.Temperature)
	}
	if cfg.MaxOutputTokens != defaultMaxOutputTokens {
		t.Fatalf("expected default max tokens, got %d", cfg.MaxOutputTokens)
	}
	if cfg.SystemInstruction == nil || !strings.Contains(cfg.SystemInstruction.Parts[0].Text, "JSON") {
		t.Fatalf("expected system instruction")
	}
}

func TestGeneratorRejectsEmpty(t *testing.T) {
	models := &fakeModels{resp: textResponse("  ")}
	g := newGenerator(models, GeneratorOptions{}, nil)

	if _, err := g.GenerateContent(context.Background(), " "); err == nil {
		t.Fatalf("expected empty prompt error")
	}
	if models.calls != 0 {
		t.Fatalf("empty prompt must not reach the api")
	}

	if _, err := g.GenerateContent(context.Background(), "prompt"); err == nil || !strings.Contains(err.Error(), "empty response") {
		t.Fatalf("expected empty response error, got %v", err)
	}
	if g.Model() != defaultModel {
		t.Fatalf("expected default model, got %s", g.Model())
	}
}

func TestGeneratorDoesNotRetry(t *testing.T) {
	models := &fakeModels{err: genai.APIError{Code: 500, Status: "INTERNAL"}}
	g := newGenerator(models, GeneratorOptions{BreakerFailures: 10}, zap.NewNop())

	if _, err := g.GenerateContent(context.Background(), "prompt"); err == nil {
		t.Fatalf("expected error")
	}
	if models.calls != 1 {
		t.Fatalf("expected a single attempt, got %d", models.calls)
	}
}

func TestGeneratorBreakerOpens(t *testing.T) {
	models := &fakeModels{err: errors.New("unavailable")}
	g := newGenerator(models, GeneratorOptions{BreakerFailures: 2, BreakerTimeout: time.Minute}, zap.NewNop())
	ctx := context.Background()

	for range 2 {
		if _, err := g.GenerateContent(ctx, "prompt"); err == nil {
			t.Fatalf("expected error")
		}
	}

	_, err := g.GenerateContent(ctx, "prompt")
	if err == nil || !strings.Contains(err.Error(), "gemini unavailable") {
		t.Fatalf("expected open breaker error, got %v", err)
	}
	if models.calls != 2 {
		t.Fatalf("open breaker must not call the api, got %d calls", models.calls)
	}
}

func TestGeneratorCancelledContextDoesNotTrip(t *testing.T) {
	models := &fakeModels{err: context.Canceled}
	g := newGenerator(models, GeneratorOptions{BreakerFailures: 1}, zap.NewNop())

	for range 3 {
		_, err := g.GenerateContent(context.Background(), "prompt")
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected cancellation, got %v", err)
		}
	}
	if models.calls != 3 {
		t.Fatalf("cancellations must not open the breaker, got %d calls", models.calls)
	}
}
