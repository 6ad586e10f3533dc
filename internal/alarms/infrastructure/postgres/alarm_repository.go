package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	alarms "plantwatch/internal/alarms/domain"
)

const defaultListLimit = 200

// AlarmRepository is a Postgres repository for alarms.
type AlarmRepository struct {
	db *sql.DB
}

// NewAlarmRepository constructs a repository.
func NewAlarmRepository(db *sql.DB) *AlarmRepository {
	return &AlarmRepository{db: db}
}

// Create inserts a new open alarm.
func (r *AlarmRepository) Create(ctx context.Context, alarm *alarms.Alarm) error {
	if r == nil || r.db == nil {
		return errors.New("alarm repo: nil db")
	}
	if alarm == nil {
		return errors.New("alarm repo: nil alarm")
	}
	if alarm.ID == "" || alarm.SensorID == "" {
		return errors.New("alarm repo: missing fields")
	}
	if !alarm.Severity.Valid() {
		return errors.New("alarm repo: invalid severity")
	}
	if alarm.CreatedAt.IsZero() {
		alarm.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO alarms (id, sensor_id, severity, message, created_at, acknowledged, acked_by, acked_at)
VALUES ($1, $2, $3, $4, $5, FALSE, NULL, NULL)`,
		alarm.ID, alarm.SensorID, string(alarm.Severity), alarm.Message, alarm.CreatedAt)
	return err
}

// FindOpenBySensor returns the open alarm for a sensor, or nil when the
// sensor has none. At most one open alarm per sensor exists by construction.
func (r *AlarmRepository) FindOpenBySensor(ctx context.Context, sensorID string) (*alarms.Alarm, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("alarm repo: nil db")
	}
	if sensorID == "" {
		return nil, errors.New("alarm repo: empty sensor id")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, sensor_id, severity, message, created_at, acknowledged, acked_by, acked_at
FROM alarms
WHERE sensor_id = $1 AND NOT acknowledged
ORDER BY created_at DESC
LIMIT 1`, sensorID)
	return scanAlarm(row)
}

// Acknowledge flips one open alarm to acknowledged. The WHERE clause makes
// the check and the mutation a single statement, so two concurrent calls on
// the same alarm yield exactly one success.
func (r *AlarmRepository) Acknowledge(ctx context.Context, id, actor string, at time.Time) (bool, error) {
	if r == nil || r.db == nil {
		return false, errors.New("alarm repo: nil db")
	}
	if id == "" {
		return false, errors.New("alarm repo: empty id")
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE alarms
SET acknowledged = TRUE, acked_by = $1, acked_at = $2
WHERE id = $3 AND NOT acknowledged`, actor, at.UTC(), id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// List returns alarms newest first, joined with sensor name and unit.
func (r *AlarmRepository) List(ctx context.Context, filter alarms.ListFilter) ([]alarms.Alarm, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("alarm repo: nil db")
	}
	limit := filter.Limit
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}

	query := `
SELECT a.id, a.sensor_id, a.severity, a.message, a.created_at, a.acknowledged, a.acked_by, a.acked_at,
	s.name, s.unit
FROM alarms a
JOIN sensors s ON s.id = a.sensor_id`
	args := []any{}
	if filter.Acknowledged != nil {
		query += " WHERE a.acknowledged = $1"
		args = append(args, *filter.Acknowledged)
		query += " ORDER BY a.created_at DESC LIMIT $2"
	} else {
		query += " ORDER BY a.created_at DESC LIMIT $1"
	}
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []alarms.Alarm
	for rows.Next() {
		var alarm alarms.Alarm
		var severity string
		var ackedBy sql.NullString
		var ackedAt sql.NullTime
		if err := rows.Scan(
			&alarm.ID,
			&alarm.SensorID,
			&severity,
			&alarm.Message,
			&alarm.CreatedAt,
			&alarm.Acknowledged,
			&ackedBy,
			&ackedAt,
			&alarm.SensorName,
			&alarm.SensorUnit,
		); err != nil {
			return nil, err
		}
		alarm.Severity = alarms.Severity(severity)
		alarm.CreatedAt = alarm.CreatedAt.UTC()
		if ackedBy.Valid {
			alarm.AckedBy = ackedBy.String
		}
		if ackedAt.Valid {
			alarm.AckedAt = ackedAt.Time.UTC()
		}
		result = append(result, alarm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type alarmScanner interface {
	Scan(dest ...any) error
}

func scanAlarm(row alarmScanner) (*alarms.Alarm, error) {
	var alarm alarms.Alarm
	var severity string
	var ackedBy sql.NullString
	var ackedAt sql.NullTime
	if err := row.Scan(
		&alarm.ID,
		&alarm.SensorID,
		&severity,
		&alarm.Message,
		&alarm.CreatedAt,
		&alarm.Acknowledged,
		&ackedBy,
		&ackedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	alarm.Severity = alarms.Severity(severity)
	alarm.CreatedAt = alarm.CreatedAt.UTC()
	if ackedBy.Valid {
		alarm.AckedBy = ackedBy.String
	}
	if ackedAt.Valid {
		alarm.AckedAt = ackedAt.Time.UTC()
	}
	return &alarm, nil
}
