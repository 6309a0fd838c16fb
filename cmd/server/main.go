package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "agrirent-backend/internal/api/grpc"
	httpapi "agrirent-backend/internal/api/http"
	"agrirent-backend/internal/config"
	"agrirent-backend/internal/jobs"
	"agrirent-backend/internal/logger"
	"agrirent-backend/internal/migrations"
	"agrirent-backend/internal/notify"
	"agrirent-backend/internal/repository"
	"agrirent-backend/internal/repository/memory"
	"agrirent-backend/internal/repository/postgres"
	"agrirent-backend/internal/scheduler"
	"agrirent-backend/internal/security"
	"agrirent-backend/internal/service"

	_ "github.com/lib/pq"
)

type repositories struct {
	equipment     repository.EquipmentRepository
	bookings      repository.BookingRepository
	users         repository.UserRepository
	notifications repository.NotificationRepository
	tx            repository.Transactor
}

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting AgriRent backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "http", cfg.GetHTTPAddress(), "grpc_port", cfg.Server.GRPCPort, "storage", cfg.Storage.Type)
	logger.Info("Reservation configuration", "strategy", cfg.Reservation.Strategy,
		"store_timeout", cfg.Reservation.StoreTimeout(), "stranded_grace", cfg.Reservation.StrandedGrace())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Repositories
	var repos repositories
	switch cfg.Storage.Type {
	case config.StorageTypeMemory:
		logger.Warn("Using in-memory storage; data is lost on restart")
		store := memory.NewStore()
		repos = repositories{store.Equipment, store.Bookings, store.Users, store.Notifications, store}
	default:
		db := openDatabase(ctx, cfg)
		defer db.Close()
		store := postgres.NewStore(db)
		repos = repositories{store.Equipment, store.Bookings, store.Users, store.Notifications, store}
	}

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer)

	// Initialize Notifications
	var mailer notify.Mailer = notify.LogMailer{}
	if cfg.Email.SendGridAPIKey != "" {
		logger.Info("Email delivery via SendGrid", "from", cfg.Email.FromEmail)
		mailer = notify.NewSendGridMailer(cfg.Email.SendGridAPIKey, cfg.Email.FromEmail, cfg.Email.FromName)
	}
	notifier := notify.NewNotifier(repos.notifications, repos.users, mailer)

	// Initialize Services
	reservationOpts := []service.ReservationOption{
		service.WithStoreTimeout(cfg.Reservation.StoreTimeout()),
		service.WithCompensationTimeout(cfg.Reservation.CompensationTimeout()),
		service.WithSelfBookingForbidden(cfg.Reservation.ForbidSelfBooking),
		service.WithReservationNotifier(notifier),
	}
	if cfg.Reservation.Strategy == config.StrategyTransaction {
		reservationOpts = append(reservationOpts, service.WithTransactions(repos.tx))
	}
	reservationSvc := service.NewReservationService(repos.equipment, repos.bookings, reservationOpts...)
	lifecycleSvc := service.NewLifecycleService(repos.equipment, repos.bookings,
		service.WithLifecycleStoreTimeout(cfg.Reservation.StoreTimeout()),
		service.WithLifecycleNotifier(notifier),
	)
	services := httpapi.Services{
		Reservations:  reservationSvc,
		Lifecycle:     lifecycleSvc,
		Equipment:     service.NewEquipmentService(repos.equipment),
		Bookings:      service.NewBookingQueryService(repos.bookings, repos.equipment),
		Notifications: service.NewNotificationService(repos.notifications),
	}

	// The cronjob binary cannot reach an in-process store, so run its jobs here.
	if cfg.Storage.Type == config.StorageTypeMemory {
		sched, err := scheduler.NewScheduler(jobs.NewJobRunner(lifecycleSvc, cfg))
		if err != nil {
			log.Fatalf("Failed to create scheduler: %v", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	// Set up HTTP server
	httpServer := &http.Server{
		Addr:              cfg.GetHTTPAddress(),
		Handler:           httpapi.NewRouter(services, tokenManager, cfg.Reservation.StrandedGrace()),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	// Set up gRPC server
	grpcServer := api.NewServer(api.NewReservationHandler(reservationSvc, lifecycleSvc), tokenManager)
	if cfg.Server.GRPCPort != 0 {
		lis, err := net.Listen("tcp", cfg.GetGRPCAddress())
		if err != nil {
			logger.Error("Failed to listen", "error", err, "address", cfg.GetGRPCAddress())
			log.Fatalf("Failed to listen: %v", err)
		}
		go func() {
			logger.Info("gRPC server listening", "address", cfg.GetGRPCAddress())
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("Failed to serve gRPC", "error", err)
				stop()
			}
		}()
	}

	<-ctx.Done()

	// Graceful shutdown
	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
	grpcServer.GracefulStop()
	logger.Info("Server stopped. Goodbye!")
}

func openDatabase(ctx context.Context, cfg *config.Config) *sql.DB {
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if cfg.Database.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}

	// Test database connection
	if err := db.PingContext(ctx); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	if cfg.Database.AutoMigrate {
		n, err := migrations.Up(ctx, db)
		if err != nil {
			logger.Error("Failed to migrate database", "error", err)
			log.Fatalf("Failed to migrate database: %v", err)
		}
		logger.Info("Database migrations applied", "count", n)
	}
	return db
}
