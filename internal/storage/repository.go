package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	listActiveTriggersSQL = `SELECT
        id,
        organization_id,
        name,
        is_active,
        conditions,
        created_at
    FROM triggers
    WHERE organization_id = $1
      AND is_active
    ORDER BY id;`

	listActiveOrganizationsSQL = `SELECT DISTINCT organization_id
    FROM triggers
    WHERE is_active
    ORDER BY organization_id;`

	insertAlertSQL = `INSERT INTO strategic_alerts (
        external_id,
        organization_id,
        trigger_id,
        classification,
        title,
        description,
        severity,
        ai_confidence,
        source_data,
        status,
        action_required,
        recommended_actions,
        impact_areas
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13
    )
    RETURNING id, created_at;`

	listRecentAlertsSQL = `SELECT
        id,
        external_id,
        organization_id,
        trigger_id,
        classification,
        title,
        description,
        severity,
        ai_confidence,
        source_data,
        status,
        action_required,
        recommended_actions,
        impact_areas,
        created_at
    FROM strategic_alerts
    ORDER BY created_at DESC
    LIMIT $1;`

	listAlertsBetweenSQL = `SELECT
        id,
        external_id,
        organization_id,
        trigger_id,
        classification,
        title,
        description,
        severity,
        ai_confidence,
        source_data,
        status,
        action_required,
        recommended_actions,
        impact_areas,
        created_at
    FROM strategic_alerts
    WHERE created_at >= $1
      AND created_at < $2
    ORDER BY created_at;`

	deleteAlertsBeforeSQL = `DELETE FROM strategic_alerts WHERE created_at < $1;`

	insertMonitoringRecordSQL = `INSERT INTO trigger_monitoring_history (
        trigger_id,
        checked_at,
        conditions_met,
        ai_confidence,
        event_data,
        alert_generated
    ) VALUES (
        $1,$2,$3,$4,$5,$6
    )
    RETURNING id;`

	tryAdvisoryLockSQL = `SELECT pg_try_advisory_lock($1);`
	advisoryUnlockSQL  = `SELECT pg_advisory_unlock($1);`
)

// TriggerStore exposes the read-only trigger snapshot used for matching.
type TriggerStore interface {
	ListActiveTriggers(ctx context.Context, organizationID int64) ([]Trigger, error)
	ListOrganizationsWithActiveTriggers(ctx context.Context) ([]int64, error)
}

// AlertStore defines operations for strategic alert persistence.
type AlertStore interface {
	InsertAlert(ctx context.Context, alert StrategicAlert) (StrategicAlert, error)
	ListRecentAlerts(ctx context.Context, limit int) ([]StrategicAlert, error)
	ListAlertsBetween(ctx context.Context, from, to time.Time) ([]StrategicAlert, error)
	DeleteAlertsBefore(ctx context.Context, olderThan time.Time) (int64, error)
}

// MonitoringStore appends audit rows for trigger evaluations.
type MonitoringStore interface {
	InsertMonitoringRecord(ctx context.Context, record MonitoringRecord) (int64, error)
}

// AdvisoryLocker exposes advisory lock helpers.
type AdvisoryLocker interface {
	TryAdvisoryLock(ctx context.Context, key int64) (unlock func(), acquired bool, err error)
}

// Store aggregates access to triggers, alerts, and monitoring history.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// TryAdvisoryLock attempts to acquire a postgres advisory lock and returns a release func.
func (s *Store) TryAdvisoryLock(ctx context.Context, key int64) (func(), bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, false, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, tryAdvisoryLockSQL, key).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	unlock := func() {
		ctxUnlock, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if _, err := conn.Exec(ctxUnlock, advisoryUnlockSQL, key); err != nil {
			// unlock best effort; log omitted in storage package
		}
		conn.Release()
	}
	return unlock, true, nil
}

// ListActiveTriggers returns the active triggers of one organization.
func (s *Store) ListActiveTriggers(ctx context.Context, organizationID int64) ([]Trigger, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listActiveTriggersSQL, organizationID)
	if queryErr != nil {
		return nil, fmt.Errorf("list active triggers: %w", queryErr)
	}
	defer rows.Close()

	triggers := make([]Trigger, 0)
	for rows.Next() {
		var (
			trigger    Trigger
			conditions []byte
		)
		if err := rows.Scan(
			&trigger.ID,
			&trigger.OrganizationID,
			&trigger.Name,
			&trigger.IsActive,
			&conditions,
			&trigger.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(conditions) > 0 {
			if err := json.Unmarshal(conditions, &trigger.Conditions); err != nil {
				return nil, fmt.Errorf("decode trigger %d conditions: %w", trigger.ID, err)
			}
		}
		triggers = append(triggers, trigger)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return triggers, nil
}

// ListOrganizationsWithActiveTriggers returns every organization that has at
// least one active trigger.
func (s *Store) ListOrganizationsWithActiveTriggers(ctx context.Context) ([]int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listActiveOrganizationsSQL)
	if queryErr != nil {
		return nil, fmt.Errorf("list active organizations: %w", queryErr)
	}
	defer rows.Close()

	orgs := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		orgs = append(orgs, id)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return orgs, nil
}

// InsertAlert persists a strategic alert and returns the stored record.
func (s *Store) InsertAlert(ctx context.Context, alert StrategicAlert) (StrategicAlert, error) {
	pool, err := s.getPool()
	if err != nil {
		return StrategicAlert{}, err
	}

	row := pool.QueryRow(ctx, insertAlertSQL,
		alert.ExternalID,
		alert.OrganizationID,
		alert.TriggerID,
		alert.Classification,
		alert.Title,
		alert.Description,
		alert.Severity,
		alert.AIConfidence,
		[]byte(alert.SourceData),
		alert.Status,
		alert.ActionRequired,
		alert.RecommendedActions,
		alert.ImpactAreas,
	)

	if scanErr := row.Scan(&alert.ID, &alert.CreatedAt); scanErr != nil {
		return StrategicAlert{}, fmt.Errorf("insert alert: %w", scanErr)
	}
	return alert, nil
}

// ListRecentAlerts lists the most recent alerts.
func (s *Store) ListRecentAlerts(ctx context.Context, limit int) ([]StrategicAlert, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentAlertsSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent alerts: %w", queryErr)
	}
	defer rows.Close()

	return collectAlerts(rows, limit)
}

// ListAlertsBetween lists alerts within a time window.
func (s *Store) ListAlertsBetween(ctx context.Context, from, to time.Time) ([]StrategicAlert, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listAlertsBetweenSQL, from, to)
	if queryErr != nil {
		return nil, fmt.Errorf("list alerts between: %w", queryErr)
	}
	defer rows.Close()

	return collectAlerts(rows, 0)
}

// DeleteAlertsBefore deletes historical alerts and reports how many rows went away.
func (s *Store) DeleteAlertsBefore(ctx context.Context, olderThan time.Time) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	tag, execErr := pool.Exec(ctx, deleteAlertsBeforeSQL, olderThan)
	if execErr != nil {
		return 0, fmt.Errorf("delete alerts before: %w", execErr)
	}
	return tag.RowsAffected(), nil
}

// InsertMonitoringRecord appends one audit row for a trigger evaluation.
func (s *Store) InsertMonitoringRecord(ctx context.Context, record MonitoringRecord) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}

	var id int64
	scanErr := pool.QueryRow(ctx, insertMonitoringRecordSQL,
		record.TriggerID,
		record.CheckedAt,
		record.ConditionsMet,
		record.AIConfidence,
		[]byte(record.EventData),
		record.AlertGenerated,
	).Scan(&id)
	if scanErr != nil {
		return 0, fmt.Errorf("insert monitoring record: %w", scanErr)
	}
	return id, nil
}

func collectAlerts(rows pgx.Rows, sizeHint int) ([]StrategicAlert, error) {
	alerts := make([]StrategicAlert, 0, sizeHint)
	for rows.Next() {
		alert, scanErr := scanAlert(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		alerts = append(alerts, alert)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return alerts, nil
}

func scanAlert(rows pgx.Rows) (StrategicAlert, error) {
	var (
		alert      StrategicAlert
		sourceData []byte
	)

	if err := rows.Scan(
		&alert.ID,
		&alert.ExternalID,
		&alert.OrganizationID,
		&alert.TriggerID,
		&alert.Classification,
		&alert.Title,
		&alert.Description,
		&alert.Severity,
		&alert.AIConfidence,
		&sourceData,
		&alert.Status,
		&alert.ActionRequired,
		&alert.RecommendedActions,
		&alert.ImpactAreas,
		&alert.CreatedAt,
	); err != nil {
		return StrategicAlert{}, err
	}

	alert.SourceData = json.RawMessage(sourceData)
	return alert, nil
}
