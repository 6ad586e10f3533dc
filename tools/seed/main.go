// Command seed creates the schema and inserts demo sensors and users for
// local development.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const schema = `
CREATE TABLE IF NOT EXISTS sensors (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	unit          TEXT NOT NULL,
	min_threshold DOUBLE PRECISION NOT NULL,
	max_threshold DOUBLE PRECISION NOT NULL,
	CHECK (min_threshold < max_threshold)
);

CREATE TABLE IF NOT EXISTS measurements (
	id          TEXT PRIMARY KEY,
	sensor_id   TEXT NOT NULL REFERENCES sensors(id),
	value       DOUBLE PRECISION NOT NULL,
	measured_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS measurements_sensor_time_idx
	ON measurements (sensor_id, measured_at DESC);

CREATE TABLE IF NOT EXISTS alarms (
	id           TEXT PRIMARY KEY,
	sensor_id    TEXT NOT NULL REFERENCES sensors(id),
	severity     TEXT NOT NULL,
	message      TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	acknowledged BOOLEAN NOT NULL DEFAULT FALSE,
	acked_by     TEXT,
	acked_at     TIMESTAMPTZ
);
CREATE UNIQUE INDEX IF NOT EXISTS alarms_one_open_per_sensor_idx
	ON alarms (sensor_id) WHERE NOT acknowledged;
CREATE INDEX IF NOT EXISTS alarms_created_idx ON alarms (created_at DESC);

CREATE TABLE IF NOT EXISTS commands (
	id         TEXT PRIMARY KEY,
	type       TEXT NOT NULL,
	target     TEXT NOT NULL,
	issued_by  TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_logs (
	id             TEXT PRIMARY KEY,
	actor          TEXT NOT NULL,
	role           TEXT NOT NULL,
	action         TEXT NOT NULL,
	resource_type  TEXT NOT NULL,
	resource_id    TEXT NOT NULL,
	metadata       JSONB,
	payload_digest TEXT,
	ip             TEXT,
	user_agent     TEXT,
	created_at     TIMESTAMPTZ NOT NULL
);
`

type seedSensor struct {
	id   string
	name string
	unit string
	min  float64
	max  float64
}

type seedUser struct {
	email    string
	password string
	role     string
}

func main() {
	dsn := flag.String("dsn", envDefault("DATABASE_URL", os.Getenv("PG_DSN")), "Postgres DSN")
	flag.Parse()

	if *dsn == "" {
		log.Fatal("DATABASE_URL, PG_DSN or -dsn is required")
	}

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		log.Fatalf("create schema: %v", err)
	}
	log.Print("schema ready")

	sensors := []seedSensor{
		{id: "sensor-temp-01", name: "Boiler temperature", unit: "°C", min: 10, max: 70},
		{id: "sensor-pres-01", name: "Line pressure", unit: "bar", min: 1.0, max: 2.2},
		{id: "sensor-fill-01", name: "Tank fill level", unit: "%", min: 20, max: 90},
		{id: "sensor-vibr-01", name: "Vibration", unit: "mm/s", min: 0.5, max: 4.5},
	}
	for _, sensor := range sensors {
		if err := upsertSensor(ctx, db, sensor); err != nil {
			log.Fatalf("seed sensor %q: %v", sensor.name, err)
		}
	}
	log.Printf("seeded %d sensors", len(sensors))

	users := []seedUser{
		{email: "admin@plantwatch.local", password: "admin123", role: "admin"},
		{email: "operator@plantwatch.local", password: "operator123", role: "operator"},
		{email: "viewer@plantwatch.local", password: "viewer123", role: "viewer"},
	}
	for _, user := range users {
		if err := upsertUser(ctx, db, user); err != nil {
			log.Fatalf("seed user %q: %v", user.email, err)
		}
	}
	log.Printf("seeded %d users", len(users))
}

func upsertSensor(ctx context.Context, db *sql.DB, sensor seedSensor) error {
	_, err := db.ExecContext(ctx, `
INSERT INTO sensors (id, name, unit, min_threshold, max_threshold)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO NOTHING`,
		sensor.id, sensor.name, sensor.unit, sensor.min, sensor.max)
	return err
}

func upsertUser(ctx context.Context, db *sql.DB, user seedUser) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(user.password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
INSERT INTO users (id, email, password_hash, role)
VALUES ($1, $2, $3, $4)
ON CONFLICT (email) DO NOTHING`,
		uuid.NewString(), user.email, string(hash), user.role)
	return err
}

func envDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
