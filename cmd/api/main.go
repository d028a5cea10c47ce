package main

import (
	"maitre/internal/availability"
	bookinghandler "maitre/internal/bookings/handler"
	bookingrepo "maitre/internal/bookings/repository"
	bookingservice "maitre/internal/bookings/service"
	bookingvalidator "maitre/internal/bookings/validator"
	restauranthandler "maitre/internal/restaurants/handler"
	restaurantrepo "maitre/internal/restaurants/repository"
	restaurantservice "maitre/internal/restaurants/service"
	restaurantvalidator "maitre/internal/restaurants/validator"
	"maitre/pkg/app"
	"maitre/pkg/config"
	"maitre/pkg/contracts"
	"maitre/pkg/kafka"

	"github.com/joho/godotenv"
)

const ServiceName = "api"

func main() {
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()

	cfg.Log.Info("Starting Maitre API")
	cfg.SetMongo()
	cfg.SetRedis()

	health, handlers := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(health, handlers...)
	serverApp.Run()
}

func initServices(cfg *config.Config) (*restauranthandler.HealthHandler, []contracts.Handler) {
	restaurantRepo := restaurantrepo.NewMongoRestaurantRepository(cfg)
	sittingRepo := restaurantrepo.NewMongoSittingRepository(cfg)
	bookingRepo := bookingrepo.NewMongoBookingRepository(cfg)
	lockRepo := bookingrepo.NewMongoSlotLockRepository(cfg)
	auditRepo := bookingrepo.NewMongoAuditRepository(cfg)

	restaurantService := restaurantservice.NewRestaurantService(
		restaurantRepo,
		sittingRepo,
		restaurantvalidator.NewRestaurantValidator(cfg.Log),
		cfg,
	)

	availabilityService := availability.NewService(
		restaurantRepo,
		sittingRepo,
		bookingRepo,
		cfg.Client.Redis,
		cfg,
	)

	bookingService := bookingservice.NewBookingService(
		bookingRepo,
		lockRepo,
		auditRepo,
		restaurantRepo,
		bookingvalidator.NewBookingValidator(cfg.Log),
		initPublisher(cfg),
		availabilityService,
		cfg,
	)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	health := restauranthandler.NewHealthHandler(cfg.Client.Mongo, cfg.Log)
	return health, []contracts.Handler{
		restauranthandler.NewRestaurantHandler(restaurantService, cfg.Log),
		bookinghandler.NewBookingHandler(bookingService, cfg.Log),
		availability.NewHandler(availabilityService, cfg.Log),
	}
}

// Kafka is optional; without brokers configured booking events are skipped.
func initPublisher(cfg *config.Config) bookingservice.EventPublisher {
	if len(cfg.KafkaBrokers) == 0 {
		cfg.Log.Info("Kafka brokers not configured, booking events disabled")
		return nil
	}

	producer, err := kafka.NewProducer(cfg.Log, cfg.KafkaBrokers, cfg.KafkaBookingsTopic)
	if err != nil {
		cfg.Log.Warn("Failed to initialize Kafka producer, booking events disabled", "error", err)
		return nil
	}
	return producer
}
