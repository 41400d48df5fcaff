// @title Campus Ticketing API
// @version 1.0
// @description Event registration, payments, tickets and venue check-in.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"campusticketing/config"
	_ "campusticketing/docs"
	"campusticketing/internal/adapters/auth"
	"campusticketing/internal/adapters/email"
	"campusticketing/internal/adapters/payment"
	"campusticketing/internal/adapters/queue"
	"campusticketing/internal/adapters/ticket"
	delivery "campusticketing/internal/delivery/http"
	"campusticketing/internal/delivery/http/controllers"
	"campusticketing/internal/delivery/http/middleware"
	"campusticketing/internal/domain"
	"campusticketing/internal/repository/postgres"
	"campusticketing/internal/services"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	err = db.PingContext(pingCtx)
	cancel()
	if err != nil {
		return err
	}
	logger.Info("database connected")

	if err := postgres.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath, logger); err != nil {
		return err
	}

	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	resetRepo := postgres.NewPasswordResetRepository(db)
	registrationRepo := postgres.NewRegistrationRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)

	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	tokenIssuer := auth.NewJWTIssuer(cfg.Auth.JWTSecret)
	tokenVerifier := auth.NewJWTVerifier(cfg.Auth.JWTSecret)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Mail.Provider,
		FromAddress: cfg.Mail.FromAddress,
		FromName:    cfg.Mail.FromName,
		SES: email.SESConfig{
			Region:             cfg.Mail.AWSRegion,
			AccessKeyID:        cfg.Mail.AWSAccessKeyID,
			SecretAccessKey:    cfg.Mail.AWSSecretKey,
			InsecureSkipVerify: cfg.Mail.InsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return err
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)
	emailSink := services.NewEmailNotificationSink(emailService)

	gateway := payment.NewRazorpayGateway(payment.RazorpayConfig{
		KeyID:     cfg.Payment.KeyID,
		KeySecret: cfg.Payment.KeySecret,
		BaseURL:   cfg.Payment.BaseURL,
	}, &http.Client{Timeout: 10 * time.Second})

	var workers sync.WaitGroup
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	var sink domain.NotificationSink = emailSink
	if cfg.Queue.URL != "" {
		publisher, err := queue.NewPublisher(cfg.Queue.URL, cfg.Queue.QueueName)
		if err != nil {
			return err
		}
		defer publisher.Close()
		sink = publisher

		consumer := queue.NewConsumer(cfg.Queue.URL, cfg.Queue.QueueName, emailSink, logger)
		workers.Add(1)
		go func() {
			defer workers.Done()
			if err := consumer.Run(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("notification consumer stopped", "err", err)
			}
		}()
		logger.Info("notifications routed through queue", "queue", cfg.Queue.QueueName)
	}
	notifier := services.NewAsyncNotifier(sink, 0, logger)

	timeout := cfg.Server.RequestTimeout
	userService := services.NewUserService(userRepo, resetRepo, hasher, tokenIssuer, cfg.Auth.JWTExpiry, emailService, cfg.Auth.IsAdminEmail, logger)
	eventService := services.NewEventService(eventRepo, registrationRepo, timeout)
	registrationService := services.NewRegistrationService(registrationRepo, eventRepo, userRepo, ticket.NewQRIssuer(ticket.DefaultSize), notifier, timeout, logger)
	paymentService := services.NewPaymentService(paymentRepo, eventRepo, registrationRepo, registrationService, gateway, cfg.Payment.Currency, timeout, logger)
	checkInService := services.NewCheckInService(registrationRepo, userRepo, eventRepo, timeout)

	var limiter middleware.Limiter
	if cfg.RateLimit.Enabled {
		rdb, err := config.NewRedisClient(ctx, cfg.Redis)
		switch {
		case err != nil:
			logger.Warn("redis unavailable, rate limiting disabled", "err", err)
		case rdb == nil:
			logger.Info("REDIS_ADDR not set, rate limiting disabled")
		default:
			defer rdb.Close()
			limiter = middleware.NewRedisLimiter(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window)
		}
	}

	router := delivery.NewRouter(delivery.RouterConfig{
		Users:         controllers.NewUserController(logger, userService),
		Events:        controllers.NewEventController(logger, eventService),
		Registrations: controllers.NewRegistrationController(logger, registrationService),
		Payments:      controllers.NewPaymentController(logger, paymentService),
		CheckIn:       controllers.NewCheckInController(logger, checkInService),
		Admin:         controllers.NewAdminController(logger, userService, registrationService, paymentService),
		Verifier:      tokenVerifier,
		Limiter:       limiter,
		Logger:        logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           middleware.CORS(cfg.Server.AllowedOrigins, middleware.LoggingMiddleware(logger, router)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "err", err)
	}
	if err := notifier.Close(shutdownCtx); err != nil {
		logger.Warn("notifier did not drain", "err", err)
	}
	stopWorkers()
	workers.Wait()
	logger.Info("shutdown complete")
	return nil
}
