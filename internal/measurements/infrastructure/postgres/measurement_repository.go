package postgres

import (
	"context"
	"database/sql"
	"errors"

	measurements "plantwatch/internal/measurements/domain"
)

// MeasurementRepository is a Postgres repository for measurements.
type MeasurementRepository struct {
	db *sql.DB
}

// NewMeasurementRepository constructs a repository.
func NewMeasurementRepository(db *sql.DB) *MeasurementRepository {
	return &MeasurementRepository{db: db}
}

// Insert appends one measurement row.
func (r *MeasurementRepository) Insert(ctx context.Context, m *measurements.Measurement) error {
	if r == nil || r.db == nil {
		return errors.New("measurement repo: nil db")
	}
	if m == nil {
		return errors.New("measurement repo: nil measurement")
	}
	if err := m.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO measurements (id, sensor_id, value, measured_at)
VALUES ($1, $2, $3, $4)`,
		m.ID, m.SensorID, m.Value, m.MeasuredAt.UTC())
	return err
}

// ListLatest returns the most recent measurement per sensor. Sensors without
// measurements are kept with nil value and timestamp.
func (r *MeasurementRepository) ListLatest(ctx context.Context) ([]measurements.LatestReading, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("measurement repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT s.id, s.name, s.unit, s.min_threshold, s.max_threshold, m.value, m.measured_at
FROM sensors s
LEFT JOIN LATERAL (
	SELECT value, measured_at
	FROM measurements
	WHERE sensor_id = s.id
	ORDER BY measured_at DESC
	LIMIT 1
) m ON TRUE
ORDER BY s.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []measurements.LatestReading
	for rows.Next() {
		var reading measurements.LatestReading
		var value sql.NullFloat64
		var measuredAt sql.NullTime
		if err := rows.Scan(
			&reading.SensorID,
			&reading.Name,
			&reading.Unit,
			&reading.MinThreshold,
			&reading.MaxThreshold,
			&value,
			&measuredAt,
		); err != nil {
			return nil, err
		}
		if value.Valid {
			v := value.Float64
			reading.Value = &v
		}
		if measuredAt.Valid {
			at := measuredAt.Time.UTC()
			reading.MeasuredAt = &at
		}
		result = append(result, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
