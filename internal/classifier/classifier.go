// Package classifier turns raw external events into structured analyses.
package classifier

import (
	"context"
	"time"
)

// Classification kinds assigned to an event.
const (
	ClassificationOpportunity       = "opportunity"
	ClassificationRisk              = "risk"
	ClassificationCompetitiveThreat = "competitive_threat"
	ClassificationMarketShift       = "market_shift"
	ClassificationRegulatoryChange  = "regulatory_change"
)

// Urgency levels, ordered low < medium < high < critical.
const (
	UrgencyLow      = "low"
	UrgencyMedium   = "medium"
	UrgencyHigh     = "high"
	UrgencyCritical = "critical"
)

// RawEvent is an incoming external event before classification.
type RawEvent struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// EventAnalysis is the classifier's structured output. Created fresh per
// event and never mutated afterwards.
type EventAnalysis struct {
	Classification  string   `json:"classification"`
	Confidence      int      `json:"confidence"`
	AffectedAreas   []string `json:"affectedAreas"`
	Urgency         string   `json:"urgency"`
	Summary         string   `json:"summary"`
	KeyInsights     []string `json:"keyInsights"`
	Recommendations []string `json:"recommendations"`
}

// Classifier produces an analysis for a raw event.
type Classifier interface {
	Classify(ctx context.Context, event RawEvent) (EventAnalysis, error)
}

var validClassifications = map[string]bool{
	ClassificationOpportunity:       true,
	ClassificationRisk:              true,
	ClassificationCompetitiveThreat: true,
	ClassificationMarketShift:       true,
	ClassificationRegulatoryChange:  true,
}

var validUrgencies = map[string]bool{
	UrgencyLow:      true,
	UrgencyMedium:   true,
	UrgencyHigh:     true,
	UrgencyCritical: true,
}

// Sanitize normalises an analysis built from an untrusted upstream response:
// out-of-enum values are replaced with defaults, confidence is clamped to
// [0,100], and nil slices become empty.
func Sanitize(a EventAnalysis) EventAnalysis {
	if !validClassifications[a.Classification] {
		a.Classification = ClassificationMarketShift
	}
	if !validUrgencies[a.Urgency] {
		a.Urgency = UrgencyMedium
	}
	a.Confidence = ClampConfidence(a.Confidence)
	if a.AffectedAreas == nil {
		a.AffectedAreas = []string{}
	}
	if a.KeyInsights == nil {
		a.KeyInsights = []string{}
	}
	if a.Recommendations == nil {
		a.Recommendations = []string{}
	}
	return a
}

// ClampConfidence bounds a confidence value into [0,100].
func ClampConfidence(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
