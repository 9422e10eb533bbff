package classifier

import (
	"context"
	"strings"
)

const (
	fallbackSummaryLimit = 200
	fallbackInsightLimit = 300
)

// fallbackRule maps keyword hits to a classification. Rules are evaluated in
// order and the first match wins; some texts match several rules.
type fallbackRule struct {
	keywords       []string
	classification string
	urgency        string
	confidence     int
}

var fallbackRules = []fallbackRule{
	{
		keywords:       []string{"competitor", "competition"},
		classification: ClassificationCompetitiveThreat,
		urgency:        UrgencyHigh,
		confidence:     60,
	},
	{
		keywords:       []string{"regulation", "compliance", "legal"},
		classification: ClassificationRegulatoryChange,
		urgency:        UrgencyHigh,
		confidence:     65,
	},
	{
		keywords:       []string{"opportunity", "growth", "expansion"},
		classification: ClassificationOpportunity,
		urgency:        UrgencyMedium,
		confidence:     55,
	},
	{
		keywords:       []string{"risk", "threat", "crisis"},
		classification: ClassificationRisk,
		urgency:        UrgencyHigh,
		confidence:     70,
	},
}

var fallbackRecommendations = []string{
	"Review the event against current strategic priorities",
	"Assess potential impact on the affected business areas",
}

// Fallback is a deterministic, dependency-free classifier used when the
// language-model backend is unavailable. Same input text always yields the
// same analysis.
type Fallback struct{}

// NewFallback constructs the deterministic keyword classifier.
func NewFallback() *Fallback {
	return &Fallback{}
}

// Classify matches lowercased title+content against the ordered rule set.
// It never returns an error.
func (f *Fallback) Classify(_ context.Context, event RawEvent) (EventAnalysis, error) {
	text := strings.ToLower(event.Title + " " + event.Content)

	classification := ClassificationMarketShift
	urgency := UrgencyMedium
	confidence := 40
	for _, rule := range fallbackRules {
		if containsAny(text, rule.keywords) {
			classification = rule.classification
			urgency = rule.urgency
			confidence = rule.confidence
			break
		}
	}

	return EventAnalysis{
		Classification:  classification,
		Confidence:      confidence,
		AffectedAreas:   []string{"operations"},
		Urgency:         urgency,
		Summary:         truncate(event.Title, fallbackSummaryLimit),
		KeyInsights:     []string{truncate(event.Content, fallbackInsightLimit)},
		Recommendations: append([]string(nil), fallbackRecommendations...),
	}, nil
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

var _ Classifier = (*Fallback)(nil)
