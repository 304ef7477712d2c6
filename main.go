package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-tripbooking/internal/access"
	access_api "ms-tripbooking/internal/access/api"
	"ms-tripbooking/internal/auth"
	"ms-tripbooking/internal/booking"
	booking_api "ms-tripbooking/internal/booking/api"
	booking_db "ms-tripbooking/internal/booking/db"
	booking_kafka "ms-tripbooking/internal/booking/kafka"
	"ms-tripbooking/internal/booking/voucher"
	"ms-tripbooking/internal/config"
	"ms-tripbooking/internal/database/migrations"
	"ms-tripbooking/internal/inventory"
	"ms-tripbooking/internal/kafka"
	"ms-tripbooking/internal/logger"
	"ms-tripbooking/internal/metrics"
	"ms-tripbooking/internal/trip"
	trip_api "ms-tripbooking/internal/trip/api"
	trip_db "ms-tripbooking/internal/trip/db"
	"ms-tripbooking/internal/vendors"
	vendor_api "ms-tripbooking/internal/vendors/api"
	vendor_db "ms-tripbooking/internal/vendors/db"
	vendor_kafka "ms-tripbooking/internal/vendors/kafka"
)

func verifyConnections(ctx context.Context, cfg *config.Config, log *logger.Logger) (*bun.DB, *redis.Client) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.Database.Username, cfg.Database.Password,
		cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)

	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", dsn)
		if err == nil {
			err = sqldb.Ping()
		}
		if err == nil {
			break
		}
		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)
	log.Info("DATABASE", "PostgreSQL connection successful")

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	log.Info("DATABASE", fmt.Sprintf("Redis connection successful to %s", cfg.Redis.Addr))

	return bunDB, redisClient
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting Trip Booking Service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	log.Info("APP", "Verifying database connections")
	bunDB, redisClient := verifyConnections(ctx, cfg, log)
	defer bunDB.Close()
	defer redisClient.Close()

	migrationRunner := migrations.NewRunner(bunDB, migrations.DefaultOptions())
	if err := migrationRunner.RunMigrations(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
	}
	defer migrationRunner.Close()

	metrics.Init()
	booking.InitStripe(cfg.Stripe.SecretKey)

	var eventPublisher booking.EventPublisher
	var vendorEvents vendor.EventPublisher
	if cfg.Kafka.Enabled {
		kafkaProducer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer kafkaProducer.Close()
		log.Info("KAFKA", "Kafka producer initialized successfully")

		requiredTopics := []string{
			cfg.Kafka.Topics.BookingCreated,
			cfg.Kafka.Topics.BookingCancelled,
			cfg.Kafka.Topics.PaymentEvents,
			cfg.Kafka.Topics.VendorApproved,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, requiredTopics); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			log.Info("KAFKA", "Required topics ensured successfully")
		}

		eventPublisher = booking_kafka.NewPublisher(kafkaProducer, booking_kafka.Topics{
			BookingCreated:   cfg.Kafka.Topics.BookingCreated,
			BookingCancelled: cfg.Kafka.Topics.BookingCancelled,
			PaymentEvents:    cfg.Kafka.Topics.PaymentEvents,
		})
		vendorEvents = vendor_kafka.NewPublisher(kafkaProducer, cfg.Kafka.Topics.VendorApproved)
	} else {
		log.Warn("KAFKA", "Kafka disabled, booking events will not be published")
	}

	// --- Services ---
	checker := access.NewChecker(
		access.NewDBStore(bunDB),
		access.NewRedisCache(redisClient, cfg.Auth.CapabilityCacheTTL),
		log,
	)
	seatStore := inventory.NewStore(bunDB)
	tripService := trip.NewService(&trip_db.DB{Bun: bunDB}, seatStore, checker, log)
	vendorService := vendor.NewService(&vendor_db.DB{Bun: bunDB}, checker, vendorEvents, log)

	bookingService := booking.NewService(
		&booking_db.DB{Bun: bunDB},
		seatStore,
		tripService,
		eventPublisher,
		voucher.NewGenerator(cfg.Booking.VoucherSecret),
		log,
	)
	bookingService.WebhookSecret = cfg.Stripe.WebhookSecret

	bookingHandler := booking_api.NewHandler(bookingService, checker)
	tripHandler := trip_api.NewHandler(tripService, seatStore)
	vendorHandler := vendor_api.NewHandler(vendorService)
	accessHandler := access_api.NewHandler(checker)

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(metrics.Instrument)

	// --- Public Routes ---
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/trips", tripHandler.ListTrips)
		r.Get("/trips/{tripId}", tripHandler.GetTrip)
		r.Get("/trips/{tripId}/schedules", tripHandler.ListSchedules)
		r.Get("/schedules/{scheduleId}/availability", tripHandler.GetAvailability)

		// Stripe authenticates the webhook with its signature header.
		r.Post("/payments/webhook", bookingHandler.StripeWebhook)

		// --- Protected Routes ---
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(cfg.Auth.OIDCIssuer))

			r.Route("/bookings", func(r chi.Router) {
				r.Post("/", bookingHandler.CreateBooking)
				r.Get("/me", bookingHandler.GetMyBookings)
				r.Get("/{bookingId}", bookingHandler.GetBooking)
				r.Delete("/{bookingId}", bookingHandler.CancelBooking)
				r.Get("/{bookingId}/voucher", bookingHandler.GetVoucher)
				r.Post("/{bookingId}/payment-intent", bookingHandler.CreatePaymentIntent)
			})
			log.Info("ROUTER", "Booking routes registered under /api/v1/bookings")

			r.Group(func(r chi.Router) {
				r.Use(checker.RequireCapability(access.CapabilityVendor))
				r.Post("/trips", tripHandler.CreateTrip)
				r.Put("/trips/{tripId}", tripHandler.UpdateTrip)
				r.Get("/vendor/trips", tripHandler.ListVendorTrips)
				r.Post("/trips/{tripId}/schedules", tripHandler.CreateSchedule)
			})
			r.Delete("/trips/{tripId}", tripHandler.DeactivateTrip)
			r.Delete("/trips/{tripId}/schedules/{scheduleId}", tripHandler.DeactivateSchedule)
			log.Info("ROUTER", "Trip routes registered under /api/v1/trips")

			r.Route("/vendor/applications", func(r chi.Router) {
				r.Post("/", vendorHandler.SubmitApplication)
				r.Get("/{applicationId}", vendorHandler.GetApplication)
			})

			r.Group(func(r chi.Router) {
				r.Use(checker.RequireCapability(access.CapabilityAdmin))
				r.Get("/admin/applications", vendorHandler.ListPendingApplications)
				r.Post("/admin/applications/{applicationId}/review", vendorHandler.ReviewApplication)
				r.Post("/admin/trips/{tripId}/approve", tripHandler.ApproveTrip)
				r.Put("/admin/bookings/{bookingId}/status", bookingHandler.SetBookingStatus)
			})
			log.Info("ROUTER", "Admin routes registered under /api/v1/admin")

			r.Get("/principals/{principalId}/capabilities", accessHandler.GetCapabilities)
			r.Put("/principals/{principalId}/capabilities", accessHandler.SetCapabilities)
		})
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Trip Booking Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "Trip Booking Service shutdown complete")
	}
}
