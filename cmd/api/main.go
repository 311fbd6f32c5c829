package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Soham-droid-pixel/MedVault2.0/internal/config"
	"github.com/Soham-droid-pixel/MedVault2.0/internal/handler"
	adminHandler "github.com/Soham-droid-pixel/MedVault2.0/internal/handler/admin"
	appointmentHandler "github.com/Soham-droid-pixel/MedVault2.0/internal/handler/appointment"
	preferenceHandler "github.com/Soham-droid-pixel/MedVault2.0/internal/handler/preference"
	"github.com/Soham-droid-pixel/MedVault2.0/internal/notifier"
	"github.com/Soham-droid-pixel/MedVault2.0/internal/repository/postgres"
	"github.com/Soham-droid-pixel/MedVault2.0/internal/router"
	alertService "github.com/Soham-droid-pixel/MedVault2.0/internal/service/alert"
	appointmentService "github.com/Soham-droid-pixel/MedVault2.0/internal/service/appointment"
	preferenceService "github.com/Soham-droid-pixel/MedVault2.0/internal/service/preference"
	reminderService "github.com/Soham-droid-pixel/MedVault2.0/internal/service/reminder"
	"github.com/Soham-droid-pixel/MedVault2.0/internal/worker"
	"github.com/Soham-droid-pixel/MedVault2.0/pkg/logger"
	"github.com/Soham-droid-pixel/MedVault2.0/pkg/metrics"
	"github.com/Soham-droid-pixel/MedVault2.0/pkg/token"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(nil)
	log.Logger = appLogger

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	m := metrics.New("medvault")

	// Repositories
	appointmentRepo := postgres.NewAppointmentRepository(db)
	preferenceRepo := postgres.NewPreferenceRepository(db)
	deliveryLogRepo := postgres.NewDeliveryLogRepository(db)
	userRepo := postgres.NewUserRepository(db)

	// Channel adapters
	emailSender := notifier.NewEmailSender(cfg.Email, deliveryLogRepo, appLogger)
	smsSender := notifier.NewSMSSender(cfg.SMS, appLogger)
	if !cfg.Email.Configured() {
		log.Warn().Msg("email credentials not configured, reminder emails will fail")
	}

	// Alerting
	monitor := alertService.NewMonitor(emailSender, cfg.Token.AdminEmailList(), cfg.Alerts, m, appLogger)

	// Services
	prefSvc := preferenceService.NewService(preferenceRepo, userRepo, appLogger)
	engine := reminderService.NewEngine(appointmentRepo, appLogger)
	tokenIssuer := token.NewIssuer(cfg.Token.UnsubscribeSecret, 0)
	reminderSvc := reminderService.NewService(
		appointmentRepo, deliveryLogRepo, engine, prefSvc,
		emailSender, smsSender, monitor, tokenIssuer, m, appLogger,
	)
	appointmentSvc := appointmentService.NewService(appointmentRepo, reminderSvc, appLogger)

	// Scheduler with optional redis tick lease
	tickLock := worker.NewNoopTickLock()
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid redis url")
		}
		tickLock = worker.NewRedisTickLock(redis.NewClient(opts))
	}
	scheduler := worker.NewReminderScheduler(
		reminderSvc, appointmentRepo, deliveryLogRepo, monitor,
		tickLock, cfg.Scheduler, cfg.Retention, m, appLogger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go scheduler.Start(ctx)
	go monitor.StartLiveness(ctx)

	// HTTP surface
	r := router.NewRouter(
		handler.NewHealthHandler(db),
		preferenceHandler.NewHandler(prefSvc, tokenIssuer),
		appointmentHandler.NewHandler(appointmentSvc),
		adminHandler.NewHandler(deliveryLogRepo, smsSender, reminderSvc),
	)

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        r.Engine(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
