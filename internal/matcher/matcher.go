// Package matcher scores classified events against organization triggers.
package matcher

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"trigger-alerts/internal/classifier"
	"trigger-alerts/internal/storage"
)

const (
	classificationPoints = 40
	keywordPointsEach    = 10
	keywordPointsCap     = 30
	urgencyPoints        = 20
	areaPointsEach       = 5
	areaPointsCap        = 10

	aiWeight   = 0.6
	ruleWeight = 0.4

	// FireThreshold gates alert creation on the combined confidence.
	FireThreshold = 60
	// ConditionsMetThreshold gates the audit flag on the raw match score.
	// This is an independent gate from FireThreshold: the two booleans can
	// disagree for the same evaluation.
	ConditionsMetThreshold = 60
)

var urgencyRanks = map[string]int{
	classifier.UrgencyLow:      1,
	classifier.UrgencyMedium:   2,
	classifier.UrgencyHigh:     3,
	classifier.UrgencyCritical: 4,
}

// UrgencyRank maps an urgency level onto its ordinal; unknown levels rank 0.
func UrgencyRank(urgency string) int {
	return urgencyRanks[urgency]
}

// TriggerMatch is the ephemeral result of matching one trigger against one
// analysis. Confidence carries the combined (blended) confidence.
type TriggerMatch struct {
	TriggerID  int64
	Confidence int
	Analysis   classifier.EventAnalysis
}

// MatchScore computes the rule-based score in [0,100] from four weighted
// checks. Checks are not mutually exclusive; all that apply are summed,
// capped per component.
func MatchScore(cond storage.TriggerConditions, analysis classifier.EventAnalysis) int {
	score := 0

	// Classification match: full credit or nothing.
	if cond.AlertType != "" && cond.AlertType == analysis.Classification {
		score += classificationPoints
	}

	// Keyword overlap across summary and insights; each keyword counts once.
	hits := 0
	for _, keyword := range cond.Keywords {
		if keywordPresent(keyword, analysis) {
			hits++
		}
	}
	score += capped(hits*keywordPointsEach, keywordPointsCap)

	// Urgency gate: at least as urgent as the configured minimum.
	minimum := cond.MinimumUrgency
	if minimum == "" {
		minimum = classifier.UrgencyMedium
	}
	if UrgencyRank(analysis.Urgency) >= UrgencyRank(minimum) {
		score += urgencyPoints
	}

	// Affected-area overlap.
	overlap := 0
	for _, area := range analysis.AffectedAreas {
		if containsFold(cond.AffectedAreas, area) {
			overlap++
		}
	}
	score += capped(overlap*areaPointsEach, areaPointsCap)

	return score
}

// CombinedConfidence blends the classifier confidence with the rule score
// (60% AI, 40% rules), rounded and clamped to [0,100].
func CombinedConfidence(confidence, matchScore int) int {
	combined := int(math.Round(aiWeight*float64(confidence) + ruleWeight*float64(matchScore)))
	return classifier.ClampConfidence(combined)
}

func keywordPresent(keyword string, analysis classifier.EventAnalysis) bool {
	needle := strings.ToLower(keyword)
	if needle == "" {
		return false
	}
	if strings.Contains(strings.ToLower(analysis.Summary), needle) {
		return true
	}
	for _, insight := range analysis.KeyInsights {
		if strings.Contains(strings.ToLower(insight), needle) {
			return true
		}
	}
	return false
}

func containsFold(haystack []string, needle string) bool {
	for _, v := range haystack {
		if strings.EqualFold(v, needle) {
			return true
		}
	}
	return false
}

func capped(v, limit int) int {
	if v > limit {
		return limit
	}
	return v
}

// Matcher evaluates an organization's active triggers against classified
// events and records one monitoring-history row per evaluation.
type Matcher struct {
	triggers storage.TriggerStore
	history  storage.MonitoringStore
	logger   zerolog.Logger
}

// New constructs a Matcher. A nil history store disables audit writes
// (used by simulation).
func New(triggers storage.TriggerStore, history storage.MonitoringStore, logger zerolog.Logger) *Matcher {
	return &Matcher{
		triggers: triggers,
		history:  history,
		logger:   logger.With().Str("component", "matcher").Logger(),
	}
}

// MatchTriggers scores every active trigger of the organization against the
// analysis and returns the triggers that fire. A returned error means the
// trigger snapshot could not be read; it is distinct from an empty match
// list. History rows are written for every evaluated trigger regardless of
// whether it fires.
func (m *Matcher) MatchTriggers(ctx context.Context, organizationID int64, analysis classifier.EventAnalysis, event classifier.RawEvent) ([]TriggerMatch, error) {
	triggers, err := m.triggers.ListActiveTriggers(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("load trigger snapshot: %w", err)
	}

	matches := make([]TriggerMatch, 0)
	for _, trigger := range triggers {
		matchScore := MatchScore(trigger.Conditions, analysis)
		combined := CombinedConfidence(analysis.Confidence, matchScore)
		fires := combined >= FireThreshold

		m.recordEvaluation(ctx, trigger.ID, matchScore, combined, fires, event)

		if fires {
			matches = append(matches, TriggerMatch{
				TriggerID:  trigger.ID,
				Confidence: combined,
				Analysis:   analysis,
			})
		}
	}

	m.logger.Debug().
		Int64("organization_id", organizationID).
		Int("evaluated", len(triggers)).
		Int("matched", len(matches)).
		Str("classification", analysis.Classification).
		Msg("trigger evaluation complete")

	return matches, nil
}

func (m *Matcher) recordEvaluation(ctx context.Context, triggerID int64, matchScore, combined int, fires bool, event classifier.RawEvent) {
	if m.history == nil {
		return
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		m.logger.Error().Err(err).Int64("trigger_id", triggerID).Msg("failed to encode event data")
		eventData = []byte("{}")
	}

	record := storage.MonitoringRecord{
		TriggerID:      triggerID,
		CheckedAt:      time.Now().UTC(),
		ConditionsMet:  matchScore >= ConditionsMetThreshold,
		AIConfidence:   combined,
		EventData:      eventData,
		AlertGenerated: fires,
	}

	if _, err := m.history.InsertMonitoringRecord(ctx, record); err != nil {
		m.logger.Error().Err(err).Int64("trigger_id", triggerID).Msg("failed to persist monitoring record")
	}
}
