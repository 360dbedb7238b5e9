// Command server runs the facegate attendance service. main wires the
// stores, the recognizer, and the HTTP surface from environment
// configuration; business logic lives in the internal packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	attendancehandler "facegate/internal/attendance/handler"
	attendancemetrics "facegate/internal/attendance/metrics"
	"facegate/internal/attendance/models"
	"facegate/internal/attendance/policy"
	"facegate/internal/attendance/service"
	"facegate/internal/attendance/store"
	"facegate/internal/capture"
	"facegate/internal/enrollment"
	enrollmenthandler "facegate/internal/enrollment/handler"
	"facegate/internal/jwttoken"
	"facegate/internal/platform/config"
	"facegate/internal/platform/httpserver"
	"facegate/internal/platform/logger"
	"facegate/internal/platform/postgres"
	"facegate/internal/platform/redis"
	"facegate/internal/presence"
	"facegate/internal/report"
	reporthandler "facegate/internal/report/handler"
	"facegate/internal/station"
	stationhandler "facegate/internal/station/handler"
	httptransport "facegate/internal/transport/http"
	"facegate/internal/verification"
	verificationmetrics "facegate/internal/verification/metrics"
	"facegate/internal/verification/ratelimit"
	"facegate/internal/verification/recognizer"
	"facegate/pkg/platform/audit/publisher"
	kafkasink "facegate/pkg/platform/audit/sink/kafka"
	auditmemory "facegate/pkg/platform/audit/store/memory"
	auditpostgres "facegate/pkg/platform/audit/store/postgres"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New(slog.LevelInfo)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	window, err := policy.WindowFromConfig(cfg.OfficeHours)
	if err != nil {
		return err
	}

	// Attendance records: postgres when configured, in-memory otherwise.
	pool, err := postgres.New(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	var attendanceStore store.Store
	if pool != nil {
		defer pool.Close()
		if err := store.Migrate(ctx, pool); err != nil {
			return err
		}
		attendanceStore = store.NewPostgres(pool)
	} else {
		log.Warn("postgres not configured, attendance records are in-memory")
		attendanceStore = store.NewInMemory()
	}

	// Audit trail, with an optional Kafka sink for downstream consumers.
	var auditStore publisher.Store
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		pgAudit := auditpostgres.New(db)
		if err := pgAudit.Migrate(ctx); err != nil {
			return err
		}
		auditStore = pgAudit
	} else {
		auditStore = auditmemory.NewInMemoryStore()
	}

	publisherOpts := []publisher.Option{
		publisher.WithAsyncBuffer(256),
		publisher.WithLogger(log),
	}
	if len(cfg.KafkaBrokers) > 0 {
		sink, err := kafkasink.New(ctx, cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			return err
		}
		defer sink.Close()
		publisherOpts = append(publisherOpts, publisher.WithSink(sink))
	}
	auditor := publisher.NewPublisher(auditStore, publisherOpts...)
	defer auditor.Close()

	// Rate limiting: redis makes the attempt-interval floor station-wide.
	var limiter ratelimit.Store
	redisClient, err := redis.New(cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		limiter = ratelimit.NewRedis(redisClient.Client)
	} else {
		limiter = ratelimit.NewInMemory()
	}

	recognizerClient := recognizer.New(recognizer.Config{
		BaseURL:            cfg.Verify.RecognizerURL,
		RecognitionAPIKey:  cfg.Verify.RecognitionAPIKey,
		DetectionAPIKey:    cfg.Verify.DetectionAPIKey,
		DetectionThreshold: cfg.Verify.DetectionThreshold,
		Timeout:            cfg.Verify.RequestTimeout,
	}, log)

	enrollmentService := enrollment.NewService(
		enrollment.NewInMemoryStore(),
		recognizerClient,
		auditor,
		enrollment.WithLogger(log),
	)

	gateway := verification.NewGateway(
		verification.Config{
			SimilarityThreshold: cfg.Verify.SimilarityThreshold,
			MinAttemptInterval:  cfg.Verify.MinAttemptInterval,
		},
		recognizerClient,
		enrollmentService,
		limiter,
		verification.WithLogger(log),
		verification.WithMetrics(verificationmetrics.New()),
	)

	attendanceService := service.NewService(
		window,
		loc,
		attendanceStore,
		capture.NewController(),
		gateway,
		buildAttestor(cfg.Presence, log),
		auditor,
		service.WithLogger(log),
		service.WithMetrics(attendancemetrics.New()),
	)

	reportService := report.NewService(
		attendanceStore,
		report.NewStaticLeave(nil),
		report.NewStaticHolidays(parseHolidays(cfg.Holidays, log)),
		report.WithLogger(log),
	)

	jwtService := jwttoken.NewService(cfg.JWTSigningKey, "facegate", "facegate-stations")
	stationRegistry := station.NewRegistry(cfg.StationKeys, jwtService, station.WithLogger(log))

	router := httptransport.NewRouter(
		stationhandler.New(stationRegistry, log),
		attendancehandler.New(attendanceService, log, jwtService),
		reporthandler.New(reportService, log, jwtService),
		enrollmenthandler.New(enrollmentService, log, jwtService),
	)

	srv := httpserver.New(cfg.Addr, router)
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	log.Info("facegate listening", "addr", cfg.Addr, "timezone", cfg.Timezone)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildAttestor picks the presence gate: network SSID when allowed networks
// are configured, geo-fence when a site radius is set, otherwise everything
// is admitted.
func buildAttestor(cfg config.Presence, log *slog.Logger) presence.Attestor {
	switch {
	case cfg.Bypass:
		log.Warn("presence attestation bypassed")
		return presence.StaticAttestor{Present: true}
	case len(cfg.AllowedSSIDs) > 0:
		return presence.NewWiFi(cfg.AllowedSSIDs)
	case cfg.SiteRadiusMeters > 0:
		return presence.NewGeo(cfg.SiteLatitude, cfg.SiteLongitude, cfg.SiteRadiusMeters)
	default:
		log.Warn("presence attestation not configured, admitting all attempts")
		return presence.StaticAttestor{Present: true}
	}
}

func parseHolidays(raw []string, log *slog.Logger) []models.Day {
	days := make([]models.Day, 0, len(raw))
	for _, s := range raw {
		day, err := models.ParseDay(s)
		if err != nil {
			log.Warn("skipping invalid holiday", "value", s)
			continue
		}
		days = append(days, day)
	}
	return days
}
