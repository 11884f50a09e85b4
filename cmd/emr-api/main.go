package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/emr-platform/emr-api/internal/authz"
	"github.com/emr-platform/emr-api/internal/config"
	v1 "github.com/emr-platform/emr-api/internal/handler/v1"
	"github.com/emr-platform/emr-api/internal/service"
	"github.com/emr-platform/emr-api/internal/session"
	"github.com/emr-platform/emr-api/pkg/auth"
	"github.com/emr-platform/emr-api/pkg/database"
	"github.com/emr-platform/emr-api/pkg/logger"
	"github.com/emr-platform/emr-api/pkg/metrics"
	"github.com/emr-platform/emr-api/pkg/tracer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("config: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("logger: " + err.Error())
	}
	defer log.Sync()

	log.Info("starting",
		zap.String("service", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	if cfg.Tracing.Enabled {
		tp, err := tracer.Init(cfg.Tracing)
		if err != nil {
			log.Fatal("tracer init failed", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				log.Warn("tracer shutdown", zap.Error(err))
			}
		}()
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal("database connect failed", zap.Error(err))
	}
	defer db.Close()
	log.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.String("name", cfg.Database.Name),
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
	)

	m := metrics.NewCollector("emr_api")

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	go database.Monitor(monitorCtx, db, func(open int) {
		m.PoolOpenConns.Set(float64(open))
	}, 15*time.Second)

	sessions := session.NewFactory(db, log, m)
	az := authz.NewResolver(log)
	jwtManager := auth.NewJWTManager(cfg.JWT)

	callTimeout := cfg.Database.CallTimeout
	auditSvc := service.NewAuditService(sessions, az, log, m, callTimeout)

	router := v1.NewRouter(v1.RouterDeps{
		Config:        cfg,
		Logger:        log,
		Metrics:       m,
		JWT:           jwtManager,
		Auth:          service.NewAuthService(sessions, az, jwtManager, log, callTimeout),
		Patients:      service.NewPatientService(sessions, log, callTimeout),
		Appointments:  service.NewAppointmentService(sessions, az, auditSvc, log, callTimeout),
		Prescriptions: service.NewPrescriptionService(sessions, az, log, callTimeout),
		Audit:         auditSvc,
		Catalog:       service.NewCatalogService(sessions, log, callTimeout),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	log.Info("stopped")
}
