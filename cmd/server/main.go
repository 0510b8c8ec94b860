package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"chapterevents/config"
	"chapterevents/internal/adapters/auth"
	"chapterevents/internal/adapters/email"
	delivery "chapterevents/internal/delivery/http"
	"chapterevents/internal/delivery/http/controllers"
	"chapterevents/internal/delivery/http/middleware"
	"chapterevents/internal/repository/postgres"
	"chapterevents/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.FromAddress,
		FromName:    cfg.FromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKey,
			SecretAccessKey: cfg.SESSecretKey,
		},
	})
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}

	attendanceRepo := postgres.NewAttendanceRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	userRepo := postgres.NewUserRepository(db)
	chapterRepo := postgres.NewChapterMemberRepository(db)
	venueRepo := postgres.NewVenueRepository(db)
	reminderRepo := postgres.NewReminderRepository(db)

	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), cfg.ClientLocation)
	dispatcher := services.NewEffectDispatcher(emailService, reminderRepo, logger)
	rsvpService := services.NewRsvpService(
		attendanceRepo, attendanceRepo, eventRepo, userRepo, chapterRepo, venueRepo,
		dispatcher, logger,
	)

	tokens := auth.NewJWTTokens(cfg.JWTSecret)
	rsvpController := controllers.NewRsvpController(logger, rsvpService)
	eventController := controllers.NewEventController(logger, rsvpService)

	mux := delivery.NewRouter(rsvpController, eventController, tokens, logger)
	handler := middleware.CORS(cfg.AllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", "err", err)
			os.Exit(1)
		}
	}
}
