package classifier

import (
	"strings"
	"testing"
)

func TestDecodeAnalysisPlainJSON(t *testing.T) {
	analysis, err := decodeAnalysis(`{
		"classification": "risk",
		"confidence": 82,
		"affectedAreas": ["finance", "operations"],
		"urgency": "critical",
		"summary": "Supply chain disruption",
		"keyInsights": ["shipments delayed"],
		"recommendations": ["activate contingency plan"]
	}`)
	if err != nil {
		t.Fatalf("valid JSON should decode: %v", err)
	}
	if analysis.Classification != ClassificationRisk {
		t.Fatalf("expected risk, got %s", analysis.Classification)
	}
	if analysis.Confidence != 82 {
		t.Fatalf("expected confidence 82, got %d", analysis.Confidence)
	}
	if analysis.Urgency != UrgencyCritical {
		t.Fatalf("expected critical, got %s", analysis.Urgency)
	}
}

func TestDecodeAnalysisCodeFences(t *testing.T) {
	fenced := "```json\n{\"classification\": \"opportunity\", \"confidence\": 70, \"urgency\": \"low\"}\n```"
	analysis, err := decodeAnalysis(fenced)
	if err != nil {
		t.Fatalf("fenced JSON should decode: %v", err)
	}
	if analysis.Classification != ClassificationOpportunity {
		t.Fatalf("expected opportunity, got %s", analysis.Classification)
	}
	if analysis.Urgency != UrgencyLow {
		t.Fatalf("expected low, got %s", analysis.Urgency)
	}
}

func TestDecodeAnalysisDefaults(t *testing.T) {
	analysis, err := decodeAnalysis(`{}`)
	if err != nil {
		t.Fatalf("empty object should decode with defaults: %v", err)
	}
	if analysis.Classification != ClassificationMarketShift {
		t.Fatalf("missing classification should default to market_shift, got %s", analysis.Classification)
	}
	if analysis.Urgency != UrgencyMedium {
		t.Fatalf("missing urgency should default to medium, got %s", analysis.Urgency)
	}
	if analysis.Confidence != 0 {
		t.Fatalf("missing confidence should default to 0, got %d", analysis.Confidence)
	}
	if analysis.AffectedAreas == nil || analysis.KeyInsights == nil || analysis.Recommendations == nil {
		t.Fatal("nil slices should be normalised to empty")
	}
}

func TestDecodeAnalysisFloatConfidence(t *testing.T) {
	analysis, err := decodeAnalysis(`{"classification": "risk", "confidence": 77.6, "urgency": "high"}`)
	if err != nil {
		t.Fatalf("float confidence should decode: %v", err)
	}
	if analysis.Confidence != 78 {
		t.Fatalf("expected rounded confidence 78, got %d", analysis.Confidence)
	}
}

func TestDecodeAnalysisClampsConfidence(t *testing.T) {
	analysis, err := decodeAnalysis(`{"confidence": 150}`)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if analysis.Confidence != 100 {
		t.Fatalf("confidence should clamp to 100, got %d", analysis.Confidence)
	}

	analysis, err = decodeAnalysis(`{"confidence": -10}`)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if analysis.Confidence != 0 {
		t.Fatalf("confidence should clamp to 0, got %d", analysis.Confidence)
	}
}

func TestDecodeAnalysisNormalisesCase(t *testing.T) {
	analysis, err := decodeAnalysis(`{"classification": " RISK ", "urgency": "High"}`)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if analysis.Classification != ClassificationRisk {
		t.Fatalf("classification should be lowercased, got %s", analysis.Classification)
	}
	if analysis.Urgency != UrgencyHigh {
		t.Fatalf("urgency should be lowercased, got %s", analysis.Urgency)
	}
}

func TestDecodeAnalysisRejectsProse(t *testing.T) {
	if _, err := decodeAnalysis("The event looks like a competitive threat."); err == nil {
		t.Fatal("non-JSON response should error")
	}
}

func TestStripCodeFences(t *testing.T) {
	cases := map[string]string{
		"{\"a\":1}":                    "{\"a\":1}",
		"```json\n{\"a\":1}\n```":      "{\"a\":1}",
		"```\n{\"a\":1}\n```":          "{\"a\":1}",
		"  \n```json\n{\"a\":1}\n``` ": "{\"a\":1}",
	}
	for input, want := range cases {
		if got := stripCodeFences(input); got != want {
			t.Fatalf("stripCodeFences(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSanitizeInvalidEnums(t *testing.T) {
	analysis := Sanitize(EventAnalysis{Classification: "unknown_kind", Urgency: "urgent"})
	if analysis.Classification != ClassificationMarketShift {
		t.Fatalf("invalid classification should default, got %s", analysis.Classification)
	}
	if analysis.Urgency != UrgencyMedium {
		t.Fatalf("invalid urgency should default, got %s", analysis.Urgency)
	}
}

func TestClassifyPromptMentionsAllEnums(t *testing.T) {
	for _, value := range []string{
		ClassificationOpportunity, ClassificationRisk, ClassificationCompetitiveThreat,
		ClassificationMarketShift, ClassificationRegulatoryChange,
		UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical,
	} {
		if !strings.Contains(classifyPromptTemplate, value) {
			t.Fatalf("prompt template should mention %q", value)
		}
	}
}
