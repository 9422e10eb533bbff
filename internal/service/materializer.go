package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"trigger-alerts/internal/classifier"
	"trigger-alerts/internal/matcher"
	"trigger-alerts/internal/storage"
)

// NewAlertRecord maps a trigger match 1:1 onto a strategic alert record.
func NewAlertRecord(organizationID int64, match matcher.TriggerMatch, sourceData json.RawMessage) storage.StrategicAlert {
	analysis := match.Analysis
	urgency := analysis.Urgency

	return storage.StrategicAlert{
		ExternalID:         uuid.NewString(),
		OrganizationID:     organizationID,
		TriggerID:          match.TriggerID,
		Classification:     analysis.Classification,
		Title:              analysis.Summary,
		Description:        strings.Join(analysis.KeyInsights, "\n"),
		Severity:           urgency,
		AIConfidence:       match.Confidence,
		SourceData:         sourceData,
		Status:             "new",
		ActionRequired:     urgency == classifier.UrgencyHigh || urgency == classifier.UrgencyCritical,
		RecommendedActions: analysis.Recommendations,
		ImpactAreas:        analysis.AffectedAreas,
	}
}

// CreateAlert persists the alert for a fired trigger. Persistence failure is
// logged and yields nil; other alerts in the same batch must still be
// attempted by the caller.
func (s *Service) CreateAlert(ctx context.Context, organizationID int64, match matcher.TriggerMatch, sourceData json.RawMessage) *storage.StrategicAlert {
	if s.alerts == nil {
		return nil
	}

	record := NewAlertRecord(organizationID, match, sourceData)
	stored, err := s.alerts.InsertAlert(ctx, record)
	if err != nil {
		s.logger.Error().Err(err).
			Int64("organization_id", organizationID).
			Int64("trigger_id", match.TriggerID).
			Msg("failed to persist strategic alert")
		return nil
	}

	s.logger.Info().
		Int64("organization_id", organizationID).
		Int64("trigger_id", match.TriggerID).
		Str("classification", stored.Classification).
		Str("severity", stored.Severity).
		Int("confidence", stored.AIConfidence).
		Msg("strategic alert created")

	return &stored
}
