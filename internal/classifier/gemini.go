package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-flash-lite-latest"

const classifyPromptTemplate = `You are a strategic intelligence analyst for a large enterprise.
Analyze the following external event and respond with JSON only, no prose and no markdown.

Event source: %s
Event title: %s
Event published: %s
Event content:
%s

Respond with a JSON object using exactly these keys:
{
  "classification": one of "opportunity", "risk", "competitive_threat", "market_shift", "regulatory_change",
  "confidence": integer 0-100,
  "affectedAreas": array of short business-area labels,
  "urgency": one of "low", "medium", "high", "critical",
  "summary": one or two sentences,
  "keyInsights": array of strings,
  "recommendations": array of strings
}`

// GeminiOptions parameterise the language-model classifier.
type GeminiOptions struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Gemini classifies events through the Gemini API.
type Gemini struct {
	opts   GeminiOptions
	client *genai.Client
	logger zerolog.Logger
}

// NewGemini constructs the language-model classifier. The client is built
// from explicit options rather than ambient environment state so tests and
// callers can substitute configuration.
func NewGemini(ctx context.Context, opts GeminiOptions, logger zerolog.Logger) (*Gemini, error) {
	if opts.APIKey == "" {
		return nil, errors.New("llm api key not configured")
	}
	if opts.Model == "" {
		opts.Model = defaultGeminiModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Gemini{
		opts:   opts,
		client: client,
		logger: logger.With().Str("component", "gemini_classifier").Logger(),
	}, nil
}

// Classify requests a domain-constrained JSON analysis from the model.
func (g *Gemini) Classify(ctx context.Context, event RawEvent) (EventAnalysis, error) {
	ctx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	prompt := fmt.Sprintf(classifyPromptTemplate,
		event.Source,
		event.Title,
		event.Timestamp.UTC().Format(time.RFC3339),
		event.Content,
	)

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	resp, err := g.client.Models.GenerateContent(ctx, g.opts.Model, contents, nil)
	if err != nil {
		return EventAnalysis{}, fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return EventAnalysis{}, errors.New("empty response from model")
	}

	analysis, err := decodeAnalysis(text)
	if err != nil {
		return EventAnalysis{}, err
	}
	return analysis, nil
}

// rawAnalysis tolerates the loose shapes a model response may take; every
// field is optional and confidence may arrive as a float.
type rawAnalysis struct {
	Classification  string   `json:"classification"`
	Confidence      *float64 `json:"confidence"`
	AffectedAreas   []string `json:"affectedAreas"`
	Urgency         string   `json:"urgency"`
	Summary         string   `json:"summary"`
	KeyInsights     []string `json:"keyInsights"`
	Recommendations []string `json:"recommendations"`
}

// decodeAnalysis parses a model response into a sanitized analysis. The
// response is untrusted: fields may be missing, out of enum, or fenced in
// markdown.
func decodeAnalysis(text string) (EventAnalysis, error) {
	payload := stripCodeFences(text)

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return EventAnalysis{}, fmt.Errorf("parse model response: %w", err)
	}

	confidence := 0
	if raw.Confidence != nil {
		confidence = int(math.Round(*raw.Confidence))
	}

	return Sanitize(EventAnalysis{
		Classification:  strings.ToLower(strings.TrimSpace(raw.Classification)),
		Confidence:      confidence,
		AffectedAreas:   raw.AffectedAreas,
		Urgency:         strings.ToLower(strings.TrimSpace(raw.Urgency)),
		Summary:         raw.Summary,
		KeyInsights:     raw.KeyInsights,
		Recommendations: raw.Recommendations,
	}), nil
}

func stripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

var _ Classifier = (*Gemini)(nil)
