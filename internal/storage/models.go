package storage

import (
	"encoding/json"
	"time"
)

// TriggerConditions is the typed shape of an organization's rule. Every
// field is optional; an absent field simply contributes nothing to the
// match score.
type TriggerConditions struct {
	AlertType      string   `json:"alertType,omitempty"`
	Keywords       []string `json:"keywords,omitempty"`
	MinimumUrgency string   `json:"minimumUrgency,omitempty"`
	AffectedAreas  []string `json:"affectedAreas,omitempty"`
}

// Trigger is an organization-scoped alerting rule. Triggers are managed by
// an external configuration surface and read-only here; they are
// deactivated rather than deleted.
type Trigger struct {
	ID             int64
	OrganizationID int64
	Name           string
	IsActive       bool
	Conditions     TriggerConditions
	CreatedAt      time.Time
}

// StrategicAlert is the persisted record of a fired trigger.
type StrategicAlert struct {
	ID                 int64
	ExternalID         string
	OrganizationID     int64
	TriggerID          int64
	Classification     string
	Title              string
	Description        string
	Severity           string
	AIConfidence       int
	SourceData         json.RawMessage
	Status             string
	ActionRequired     bool
	RecommendedActions []string
	ImpactAreas        []string
	CreatedAt          time.Time
}

// MonitoringRecord is an append-only audit row written once per
// (trigger, event) evaluation.
type MonitoringRecord struct {
	ID             int64
	TriggerID      int64
	CheckedAt      time.Time
	ConditionsMet  bool
	AIConfidence   int
	EventData      json.RawMessage
	AlertGenerated bool
}
