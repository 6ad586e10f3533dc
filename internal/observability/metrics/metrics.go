package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "plantwatch_"

	resultSuccess = "success"
	resultError   = "error"
	resultSkipped = "skipped"
)

var (
	registerOnce sync.Once

	tickTotal    *prometheus.CounterVec
	tickLatency  *prometheus.HistogramVec
	tickSensors  prometheus.Counter
	measurements prometheus.Counter

	alarmsRaised *prometheus.CounterVec
	alarmAcks    *prometheus.CounterVec

	commandRequests prometheus.Counter
	loginAttempts   *prometheus.CounterVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		tickTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "tick_total",
				Help: "Simulation ticks by result",
			},
			[]string{"result"},
		)
		tickLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "tick_latency_seconds",
				Help:    "Simulation tick latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		tickSensors = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "tick_sensors_total",
				Help: "Sensors processed across all ticks",
			},
		)
		measurements = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "measurements_written_total",
				Help: "Measurement rows written",
			},
		)

		alarmsRaised = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alarms_raised_total",
				Help: "Alarms raised by severity",
			},
			[]string{"severity"},
		)
		alarmAcks = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alarm_ack_total",
				Help: "Alarm acknowledgment attempts by result",
			},
			[]string{"result"},
		)

		commandRequests = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "command_requests_total",
				Help: "Commands submitted",
			},
		)
		loginAttempts = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "login_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			tickTotal,
			tickLatency,
			tickSensors,
			measurements,
			alarmsRaised,
			alarmAcks,
			commandRequests,
			loginAttempts,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveTick records one scheduled tick outcome.
func ObserveTick(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if tickTotal != nil {
		tickTotal.WithLabelValues(result).Inc()
	}
	if tickLatency != nil && result != resultSkipped {
		tickLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncTickSensors counts sensors processed in a tick.
func IncTickSensors(n int) {
	if tickSensors != nil && n > 0 {
		tickSensors.Add(float64(n))
	}
}

// IncMeasurementWritten counts one persisted measurement.
func IncMeasurementWritten() {
	if measurements != nil {
		measurements.Inc()
	}
}

// IncAlarmRaised counts one raised alarm.
func IncAlarmRaised(severity string) {
	if alarmsRaised != nil {
		alarmsRaised.WithLabelValues(severity).Inc()
	}
}

// IncAlarmAck counts one acknowledgment attempt.
func IncAlarmAck(result string) {
	if alarmAcks != nil {
		alarmAcks.WithLabelValues(result).Inc()
	}
}

// IncCommandRequest counts one submitted command.
func IncCommandRequest() {
	if commandRequests != nil {
		commandRequests.Inc()
	}
}

// IncLogin counts one login attempt.
func IncLogin(result string) {
	if loginAttempts != nil {
		loginAttempts.WithLabelValues(result).Inc()
	}
}
