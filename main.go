package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	alarmapp "plantwatch/internal/alarms/application"
	alarmrepo "plantwatch/internal/alarms/infrastructure/postgres"
	alarmhttp "plantwatch/internal/alarms/interfaces/http"
	"plantwatch/internal/audit"
	"plantwatch/internal/auth"
	commandsrepo "plantwatch/internal/commands/infrastructure/postgres"
	commandshttp "plantwatch/internal/commands/interfaces/http"
	measurementapp "plantwatch/internal/measurements/application"
	measurementrepo "plantwatch/internal/measurements/infrastructure/postgres"
	measurementcache "plantwatch/internal/measurements/infrastructure/redis"
	measurementhttp "plantwatch/internal/measurements/interfaces/http"
	"plantwatch/internal/observability/metrics"
	sensorrepo "plantwatch/internal/sensors/infrastructure/postgres"
	sensorhttp "plantwatch/internal/sensors/interfaces/http"
	simulatorapp "plantwatch/internal/simulator/application"
	simulatorhttp "plantwatch/internal/simulator/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	_ = godotenv.Load()

	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	sensorRepo := sensorrepo.NewSensorRepository(db)
	measurementRepo := measurementrepo.NewMeasurementRepository(db)
	alarmRepo := alarmrepo.NewAlarmRepository(db)
	commandRepo := commandsrepo.NewCommandRepository(db)
	userRepo := auth.NewUserRepository(db)

	simCfg, err := simulatorapp.LoadConfig()
	if err != nil {
		logger.Fatalf("simulator config error: %v", err)
	}

	var latestCache measurementapp.LatestCache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		cache, err := measurementcache.NewLatestCache(client, simCfg.TickInterval)
		if err != nil {
			logger.Fatalf("latest cache error: %v", err)
		}
		latestCache = cache
		logger.Printf("latest-reading cache enabled: %s", cfg.RedisAddr)
	}

	alarmService, err := alarmapp.NewService(alarmRepo, alarmapp.WithLogger(logger))
	if err != nil {
		logger.Fatalf("alarm service error: %v", err)
	}
	latestService, err := measurementapp.NewLatestService(measurementRepo, latestCache, logger)
	if err != nil {
		logger.Fatalf("latest service error: %v", err)
	}

	generator := simulatorapp.NewGenerator(simCfg)
	scheduler, err := simulatorapp.NewScheduler(sensorRepo, measurementRepo, alarmService, generator, simCfg, logger)
	if err != nil {
		logger.Fatalf("scheduler error: %v", err)
	}

	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()
	go scheduler.Start(schedulerCtx)

	sensorHandler, err := sensorhttp.NewHandler(sensorRepo)
	if err != nil {
		logger.Fatalf("sensors handler error: %v", err)
	}
	measurementHandler, err := measurementhttp.NewHandler(latestService)
	if err != nil {
		logger.Fatalf("measurements handler error: %v", err)
	}
	alarmHandler, err := alarmhttp.NewHandler(alarmService, auditRepo)
	if err != nil {
		logger.Fatalf("alarms handler error: %v", err)
	}
	exportHandler, err := alarmhttp.NewExportHandler(alarmService)
	if err != nil {
		logger.Fatalf("alarms export handler error: %v", err)
	}
	commandHandler, err := commandshttp.NewHandler(commandRepo, auditRepo)
	if err != nil {
		logger.Fatalf("commands handler error: %v", err)
	}
	simulatorHandler, err := simulatorhttp.NewHandler(scheduler)
	if err != nil {
		logger.Fatalf("simulator handler error: %v", err)
	}
	loginHandler, err := auth.NewLoginHandler(userRepo, []byte(cfg.JWTSecret))
	if err != nil {
		logger.Fatalf("login handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics", "/api/v1/auth/login"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/auth/login", loginHandler)
	mux.Handle("/api/v1/sensors", sensorHandler)
	mux.Handle("/api/v1/measurements/latest", measurementHandler)
	mux.Handle("/api/v1/alarms", alarmHandler)
	mux.Handle("/api/v1/alarms/", alarmHandler)
	mux.Handle("/api/v1/exports/alarms.xlsx", exportHandler)
	mux.Handle("/api/v1/exports/alarms.pdf", exportHandler)
	mux.Handle("/api/v1/commands", commandHandler)
	mux.Handle("/api/v1/simulator/run", simulatorHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"ok":false,"api":"ok","db":"ko"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"api":"ok","db":"ok"}`))
	})

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: []string{cfg.CORSOrigin},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	handler := loggingMiddleware(corsMiddleware.Handler(authMiddleware.Wrap(mux)), logger)
	server := &http.Server{Addr: cfg.HTTPAddr, Handler: handler}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL   string
	HTTPAddr      string
	JWTSecret     string
	CORSOrigin    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:   getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:      getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:     getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		CORSOrigin:    getenvDefault("CORS_ORIGIN", "http://localhost:5173"),
		RedisAddr:     getenvDefault("REDIS_ADDR", ""),
		RedisPassword: getenvDefault("REDIS_PASSWORD", ""),
		RedisDB:       getenvIntDefault("REDIS_DB", 0),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
