package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"trigger-alerts/internal/alerting"
	"trigger-alerts/internal/classifier"
	"trigger-alerts/internal/config"
	"trigger-alerts/internal/fetcher"
	"trigger-alerts/internal/matcher"
	"trigger-alerts/internal/scheduler"
	"trigger-alerts/internal/storage"
)

// Service orchestrates ingestion, classification, matching, and alerting.
type Service struct {
	scheduler  *scheduler.Scheduler
	events     fetcher.EventFetcher
	classifier classifier.Classifier
	matcher    *matcher.Matcher
	triggers   storage.TriggerStore
	alerts     storage.AlertStore
	notifier   alerting.Notifier
	logger     zerolog.Logger

	channels []string
	alertsOn bool
	locker   storage.AdvisoryLocker
	lockKey  int64
}

// New constructs the monitoring service.
func New(cfg *config.Config, sched *scheduler.Scheduler, events fetcher.EventFetcher, cls classifier.Classifier, m *matcher.Matcher, triggers storage.TriggerStore, alerts storage.AlertStore, notifier alerting.Notifier, logger zerolog.Logger) *Service {
	var locker storage.AdvisoryLocker
	if l, ok := alerts.(storage.AdvisoryLocker); ok {
		locker = l
	}

	return &Service{
		scheduler:  sched,
		events:     events,
		classifier: cls,
		matcher:    m,
		triggers:   triggers,
		alerts:     alerts,
		notifier:   notifier,
		logger:     logger.With().Str("component", "service").Logger(),
		channels:   cfg.Alerting.Channels,
		alertsOn:   cfg.Alerting.Enabled,
		locker:     locker,
		lockKey:    cfg.Scheduler.AdvisoryLockKey,
	}
}

// Run begins the aligned polling loop.
func (s *Service) Run(ctx context.Context) error {
	if s.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return s.scheduler.Run(ctx, s.ProcessPoll)
}

// ProcessPoll executes one poll cycle under the advisory lock.
func (s *Service) ProcessPoll(ctx context.Context, bucket time.Time) error {
	unlock, proceed, err := s.acquireLock(ctx)
	if err != nil {
		return err
	}
	if !proceed {
		s.logger.Debug().Time("bucket", bucket).Msg("skip poll because advisory lock held elsewhere")
		return nil
	}
	if unlock != nil {
		defer unlock()
	}

	return s.executePoll(ctx, bucket)
}

// executePoll runs the fetch → classify → match → materialize pipeline.
// A single event's or organization's failure is logged and does not abort
// the remaining batch.
func (s *Service) executePoll(ctx context.Context, bucket time.Time) error {
	events, err := s.events.FetchLatest(ctx)
	if err != nil {
		return fmt.Errorf("fetch events: %w", err)
	}
	if len(events) == 0 {
		s.logger.Info().Time("bucket", bucket).Msg("no new events this cycle")
		return nil
	}

	orgs, err := s.triggers.ListOrganizationsWithActiveTriggers(ctx)
	if err != nil {
		return fmt.Errorf("list organizations: %w", err)
	}
	if len(orgs) == 0 {
		s.logger.Debug().Time("bucket", bucket).Msg("no organizations with active triggers")
		return nil
	}

	created := 0
	for _, event := range events {
		analysis, err := s.classifier.Classify(ctx, event)
		if err != nil {
			// The resilient classifier degrades internally; an error here
			// means even the fallback path was unusable for this event.
			s.logger.Error().Err(err).Str("event_id", event.ID).Msg("classification failed; skipping event")
			continue
		}

		sourceData := encodeSourceData(event, analysis)

		for _, orgID := range orgs {
			matches, err := s.matcher.MatchTriggers(ctx, orgID, analysis, event)
			if err != nil {
				s.logger.Error().Err(err).Int64("organization_id", orgID).Str("event_id", event.ID).Msg("trigger matching failed")
				continue
			}

			for _, match := range matches {
				alert := s.CreateAlert(ctx, orgID, match, sourceData)
				if alert == nil {
					continue
				}
				created++
				s.dispatch(ctx, *alert)
			}
		}
	}

	s.logger.Info().
		Time("bucket", bucket).
		Int("events", len(events)).
		Int("organizations", len(orgs)).
		Int("alerts_created", created).
		Msg("poll cycle complete")

	return nil
}

func (s *Service) dispatch(ctx context.Context, alert storage.StrategicAlert) {
	if !s.alertsOn || s.notifier == nil {
		return
	}

	note := alerting.Notification{
		OrganizationID: alert.OrganizationID,
		TriggerID:      alert.TriggerID,
		Classification: alert.Classification,
		Severity:       alert.Severity,
		Confidence:     alert.AIConfidence,
		Title:          alert.Title,
		Summary:        alert.Description,
		ActionRequired: alert.ActionRequired,
		Channels:       s.channels,
		FiredAt:        alert.CreatedAt,
	}
	if err := s.notifier.Notify(ctx, note); err != nil {
		s.logger.Error().Err(err).Int64("trigger_id", alert.TriggerID).Msg("failed to dispatch alert notification")
	}
}

func (s *Service) acquireLock(ctx context.Context) (func(), bool, error) {
	if s.lockKey == 0 || s.locker == nil {
		return nil, true, nil
	}
	unlock, acquired, err := s.locker.TryAdvisoryLock(ctx, s.lockKey)
	if err != nil {
		return nil, false, fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}
	return unlock, true, nil
}

// encodeSourceData stores the raw event and its analysis verbatim for audit.
func encodeSourceData(event classifier.RawEvent, analysis classifier.EventAnalysis) json.RawMessage {
	payload := struct {
		Event    classifier.RawEvent      `json:"event"`
		Analysis classifier.EventAnalysis `json:"analysis"`
	}{Event: event, Analysis: analysis}

	data, err := json.Marshal(payload)
	if err != nil {
		return json.RawMessage("{}")
	}
	return json.RawMessage(data)
}
