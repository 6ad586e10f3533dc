package postgres

import (
	"context"
	"database/sql"
	"errors"

	sensors "plantwatch/internal/sensors/domain"
)

// SensorRepository is a Postgres repository for sensor descriptors.
type SensorRepository struct {
	db *sql.DB
}

// NewSensorRepository constructs a repository.
func NewSensorRepository(db *sql.DB) *SensorRepository {
	return &SensorRepository{db: db}
}

// List returns every sensor ordered by id. The stable order keeps tick
// processing and alarm deduplication deterministic.
func (r *SensorRepository) List(ctx context.Context) ([]sensors.Sensor, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("sensor repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, unit, min_threshold, max_threshold
FROM sensors
ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []sensors.Sensor
	for rows.Next() {
		var sensor sensors.Sensor
		if err := rows.Scan(&sensor.ID, &sensor.Name, &sensor.Unit, &sensor.MinThreshold, &sensor.MaxThreshold); err != nil {
			return nil, err
		}
		result = append(result, sensor)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID fetches one sensor.
func (r *SensorRepository) GetByID(ctx context.Context, id string) (*sensors.Sensor, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("sensor repo: nil db")
	}
	if id == "" {
		return nil, errors.New("sensor repo: empty id")
	}
	var sensor sensors.Sensor
	err := r.db.QueryRowContext(ctx, `
SELECT id, name, unit, min_threshold, max_threshold
FROM sensors
WHERE id = $1`, id).Scan(&sensor.ID, &sensor.Name, &sensor.Unit, &sensor.MinThreshold, &sensor.MaxThreshold)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &sensor, nil
}
