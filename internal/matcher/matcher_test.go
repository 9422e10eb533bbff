package matcher

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"trigger-alerts/internal/classifier"
	"trigger-alerts/internal/storage"
)

type fakeTriggerStore struct {
	triggers []storage.Trigger
	err      error
}

func (f *fakeTriggerStore) ListActiveTriggers(_ context.Context, _ int64) ([]storage.Trigger, error) {
	return f.triggers, f.err
}

func (f *fakeTriggerStore) ListOrganizationsWithActiveTriggers(_ context.Context) ([]int64, error) {
	return nil, nil
}

type fakeMonitoringStore struct {
	records []storage.MonitoringRecord
	err     error
}

func (f *fakeMonitoringStore) InsertMonitoringRecord(_ context.Context, record storage.MonitoringRecord) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.records = append(f.records, record)
	return int64(len(f.records)), nil
}

func competitorAnalysis() classifier.EventAnalysis {
	return classifier.EventAnalysis{
		Classification: classifier.ClassificationCompetitiveThreat,
		Confidence:     60,
		AffectedAreas:  []string{"sales"},
		Urgency:        classifier.UrgencyHigh,
		Summary:        "Competitor launches major price cut",
		KeyInsights:    []string{"Aggressive discounting across the product line"},
	}
}

func TestMatchScoreClassification(t *testing.T) {
	cond := storage.TriggerConditions{AlertType: classifier.ClassificationCompetitiveThreat}
	analysis := classifier.EventAnalysis{Classification: classifier.ClassificationCompetitiveThreat, Urgency: classifier.UrgencyLow}
	if got := MatchScore(cond, analysis); got != classificationPoints {
		t.Fatalf("classification-only match should score %d, got %d", classificationPoints, got)
	}

	analysis.Classification = classifier.ClassificationRisk
	if got := MatchScore(cond, analysis); got != 0 {
		t.Fatalf("mismatched classification should score 0, got %d", got)
	}
}

func TestMatchScoreKeywordsCapped(t *testing.T) {
	cond := storage.TriggerConditions{
		Keywords: []string{"price", "discount", "rival", "launch"},
	}
	analysis := classifier.EventAnalysis{
		Urgency:     classifier.UrgencyLow,
		Summary:     "rival launch with a price discount",
		KeyInsights: []string{},
	}
	if got := MatchScore(cond, analysis); got != keywordPointsCap {
		t.Fatalf("four keyword hits should cap at %d, got %d", keywordPointsCap, got)
	}
}

func TestMatchScoreKeywordCountsOnce(t *testing.T) {
	cond := storage.TriggerConditions{Keywords: []string{"price"}}
	analysis := classifier.EventAnalysis{
		Urgency:     classifier.UrgencyLow,
		Summary:     "price price price",
		KeyInsights: []string{"price again"},
	}
	if got := MatchScore(cond, analysis); got != keywordPointsEach {
		t.Fatalf("repeated keyword should count once, got %d", got)
	}
}

func TestMatchScoreKeywordInInsights(t *testing.T) {
	cond := storage.TriggerConditions{Keywords: []string{"churn"}}
	analysis := classifier.EventAnalysis{
		Urgency:     classifier.UrgencyLow,
		Summary:     "customer movement observed",
		KeyInsights: []string{"Churn is accelerating in the mid-market segment"},
	}
	if got := MatchScore(cond, analysis); got != keywordPointsEach {
		t.Fatalf("keyword in insights should score %d, got %d", keywordPointsEach, got)
	}
}

func TestMatchScoreUrgencyGate(t *testing.T) {
	cond := storage.TriggerConditions{MinimumUrgency: classifier.UrgencyCritical}
	analysis := classifier.EventAnalysis{Urgency: classifier.UrgencyHigh}
	if got := MatchScore(cond, analysis); got != 0 {
		t.Fatalf("high urgency should not pass a critical minimum, got %d", got)
	}

	analysis.Urgency = classifier.UrgencyCritical
	if got := MatchScore(cond, analysis); got != urgencyPoints {
		t.Fatalf("meeting the minimum should score %d, got %d", urgencyPoints, got)
	}
}

func TestMatchScoreDefaultMinimumUrgency(t *testing.T) {
	// An empty minimum behaves as medium.
	cond := storage.TriggerConditions{}
	if got := MatchScore(cond, classifier.EventAnalysis{Urgency: classifier.UrgencyLow}); got != 0 {
		t.Fatalf("low urgency should fail the implicit medium minimum, got %d", got)
	}
	if got := MatchScore(cond, classifier.EventAnalysis{Urgency: classifier.UrgencyMedium}); got != urgencyPoints {
		t.Fatalf("medium urgency should pass the implicit minimum, got %d", got)
	}
}

func TestMatchScoreAreaOverlapCapped(t *testing.T) {
	cond := storage.TriggerConditions{AffectedAreas: []string{"sales", "marketing", "finance"}}
	analysis := classifier.EventAnalysis{
		Urgency:       classifier.UrgencyLow,
		AffectedAreas: []string{"Sales", "MARKETING", "finance"},
	}
	if got := MatchScore(cond, analysis); got != areaPointsCap {
		t.Fatalf("three area overlaps should cap at %d, got %d", areaPointsCap, got)
	}
}

func TestMatchScoreFullHouse(t *testing.T) {
	cond := storage.TriggerConditions{
		AlertType:      classifier.ClassificationCompetitiveThreat,
		Keywords:       []string{"price", "discount", "rival"},
		MinimumUrgency: classifier.UrgencyMedium,
		AffectedAreas:  []string{"sales", "marketing"},
	}
	analysis := classifier.EventAnalysis{
		Classification: classifier.ClassificationCompetitiveThreat,
		Urgency:        classifier.UrgencyHigh,
		Summary:        "rival price discount announced",
		AffectedAreas:  []string{"sales", "marketing"},
	}
	if got := MatchScore(cond, analysis); got != 100 {
		t.Fatalf("maximal match should score 100, got %d", got)
	}
}

func TestCombinedConfidence(t *testing.T) {
	if got := CombinedConfidence(60, 60); got != 60 {
		t.Fatalf("60/60 should blend to 60, got %d", got)
	}
	if got := CombinedConfidence(100, 0); got != 60 {
		t.Fatalf("100/0 should blend to 60, got %d", got)
	}
	if got := CombinedConfidence(0, 100); got != 40 {
		t.Fatalf("0/100 should blend to 40, got %d", got)
	}
	// 0.6*55 + 0.4*70 = 61
	if got := CombinedConfidence(55, 70); got != 61 {
		t.Fatalf("55/70 should blend to 61, got %d", got)
	}
}

func TestMatchTriggersFires(t *testing.T) {
	triggers := &fakeTriggerStore{triggers: []storage.Trigger{{
		ID:             7,
		OrganizationID: 1,
		IsActive:       true,
		Conditions: storage.TriggerConditions{
			AlertType:      classifier.ClassificationCompetitiveThreat,
			MinimumUrgency: classifier.UrgencyMedium,
		},
	}}}
	history := &fakeMonitoringStore{}
	m := New(triggers, history, zerolog.Nop())

	matches, err := m.MatchTriggers(context.Background(), 1, competitorAnalysis(), classifier.RawEvent{ID: "evt-1"})
	if err != nil {
		t.Fatalf("match should succeed: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	// matchScore 60, combined 0.6*60 + 0.4*60 = 60, at the firing threshold.
	if matches[0].Confidence != 60 {
		t.Fatalf("expected combined confidence 60, got %d", matches[0].Confidence)
	}
	if matches[0].TriggerID != 7 {
		t.Fatalf("expected trigger 7, got %d", matches[0].TriggerID)
	}

	if len(history.records) != 1 {
		t.Fatalf("expected 1 history row, got %d", len(history.records))
	}
	record := history.records[0]
	if !record.ConditionsMet || !record.AlertGenerated {
		t.Fatalf("firing trigger should set both audit flags: %+v", record)
	}
	if record.AIConfidence != 60 {
		t.Fatalf("history should carry the combined confidence, got %d", record.AIConfidence)
	}
}

func TestMatchTriggersBelowThreshold(t *testing.T) {
	triggers := &fakeTriggerStore{triggers: []storage.Trigger{{
		ID: 3,
		Conditions: storage.TriggerConditions{
			AlertType: classifier.ClassificationRegulatoryChange,
		},
	}}}
	history := &fakeMonitoringStore{}
	m := New(triggers, history, zerolog.Nop())

	matches, err := m.MatchTriggers(context.Background(), 1, competitorAnalysis(), classifier.RawEvent{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("mismatched trigger should not fire, got %d matches", len(matches))
	}
	if len(history.records) != 1 {
		t.Fatal("non-firing evaluation must still write a history row")
	}
	if history.records[0].AlertGenerated {
		t.Fatal("alert_generated should be false for a non-firing trigger")
	}
}

func TestMatchTriggersThresholdAsymmetry(t *testing.T) {
	// Rules pass (matchScore 70) but a zero-confidence analysis drags the
	// blend below the firing threshold. The audit flags disagree on purpose:
	// conditions_met tracks the raw score, alert_generated the blend.
	triggers := &fakeTriggerStore{triggers: []storage.Trigger{{
		ID: 5,
		Conditions: storage.TriggerConditions{
			AlertType:      classifier.ClassificationCompetitiveThreat,
			Keywords:       []string{"price"},
			MinimumUrgency: classifier.UrgencyMedium,
		},
	}}}
	history := &fakeMonitoringStore{}
	m := New(triggers, history, zerolog.Nop())

	analysis := competitorAnalysis()
	analysis.Confidence = 0

	matches, err := m.MatchTriggers(context.Background(), 1, analysis, classifier.RawEvent{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("combined 28 should not fire, got %d matches", len(matches))
	}

	record := history.records[0]
	if !record.ConditionsMet {
		t.Fatal("conditions_met should reflect the raw match score")
	}
	if record.AlertGenerated {
		t.Fatal("alert_generated should reflect the firing decision")
	}
	if record.AIConfidence != 28 {
		t.Fatalf("expected combined confidence 28, got %d", record.AIConfidence)
	}
}

func TestMatchTriggersSnapshotError(t *testing.T) {
	triggers := &fakeTriggerStore{err: errors.New("connection refused")}
	m := New(triggers, &fakeMonitoringStore{}, zerolog.Nop())

	if _, err := m.MatchTriggers(context.Background(), 1, competitorAnalysis(), classifier.RawEvent{}); err == nil {
		t.Fatal("snapshot failure must surface as an error, not an empty match list")
	}
}

func TestMatchTriggersNilHistory(t *testing.T) {
	triggers := &fakeTriggerStore{triggers: []storage.Trigger{{
		ID:         1,
		Conditions: storage.TriggerConditions{AlertType: classifier.ClassificationCompetitiveThreat},
	}}}
	m := New(triggers, nil, zerolog.Nop())

	matches, err := m.MatchTriggers(context.Background(), 1, competitorAnalysis(), classifier.RawEvent{})
	if err != nil {
		t.Fatalf("nil history store should disable audit writes, not fail: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
}

func TestMatchTriggersHistoryFailureNonFatal(t *testing.T) {
	triggers := &fakeTriggerStore{triggers: []storage.Trigger{{
		ID:         1,
		Conditions: storage.TriggerConditions{AlertType: classifier.ClassificationCompetitiveThreat},
	}}}
	history := &fakeMonitoringStore{err: errors.New("insert failed")}
	m := New(triggers, history, zerolog.Nop())

	matches, err := m.MatchTriggers(context.Background(), 1, competitorAnalysis(), classifier.RawEvent{})
	if err != nil {
		t.Fatalf("history write failure should not abort matching: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match despite history failure, got %d", len(matches))
	}
}

func TestUrgencyRank(t *testing.T) {
	ranks := []string{classifier.UrgencyLow, classifier.UrgencyMedium, classifier.UrgencyHigh, classifier.UrgencyCritical}
	for i := 1; i < len(ranks); i++ {
		if UrgencyRank(ranks[i]) <= UrgencyRank(ranks[i-1]) {
			t.Fatalf("%s should rank above %s", ranks[i], ranks[i-1])
		}
	}
	if UrgencyRank("unknown") != 0 {
		t.Fatalf("unknown urgency should rank 0, got %d", UrgencyRank("unknown"))
	}
}
