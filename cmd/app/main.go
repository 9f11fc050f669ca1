package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/airtickets/api"
	"github.com/Domenick1991/airtickets/config"
	"github.com/Domenick1991/airtickets/internal/bootstrap"
	"github.com/Domenick1991/airtickets/internal/cache"
	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/kafka"
	"github.com/Domenick1991/airtickets/internal/logger"
	"github.com/Domenick1991/airtickets/internal/service/catalog"
	"github.com/Domenick1991/airtickets/internal/service/expiry"
	"github.com/Domenick1991/airtickets/internal/service/flights"
	"github.com/Domenick1991/airtickets/internal/service/inventory"
	"github.com/Domenick1991/airtickets/internal/service/orders"
	"github.com/Domenick1991/airtickets/internal/service/payment"
	"github.com/Domenick1991/airtickets/internal/temporal"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logg, err := logger.New(cfg.Log.Path, "airtickets-api", cfg.Log.Debug)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := bootstrap.OpenStore(ctx, cfg.Database, logg)
	if err != nil {
		logg.Fatal("open store", zap.Error(err))
	}
	defer closeStore()

	prices, err := domain.NewPriceTable(cfg.Booking.Prices)
	if err != nil {
		logg.Fatal("invalid booking.prices", zap.Error(err))
	}

	redisCache := cache.NewRedisCache(cache.NewRedisClient(cfg.Redis), cfg.Booking.FlightsCacheTTL)
	if err := redisCache.Ping(ctx); err != nil {
		logg.Warn("redis is unreachable, flights cache and webhook dedupe are degraded", zap.Error(err))
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, logg)
	defer producer.Close()

	opts := []orders.OrderServiceOption{
		orders.WithProducer(producer, cfg.Kafka.OrderEventsTopic),
		orders.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		orders.WithCache(redisCache),
		orders.WithSweepBatchSize(cfg.Worker.SweepBatchSize),
	}

	var timers *expiry.TimerScheduler
	switch cfg.Scheduler.Driver {
	case config.SchedulerTemporal:
		tc, err := bootstrap.DialTemporal(cfg.Scheduler)
		if err != nil {
			logg.Fatal("temporal", zap.Error(err))
		}
		defer tc.Close()
		opts = append(opts, orders.WithScheduler(temporal.NewScheduler(tc, cfg.Scheduler.TaskQueue)))
	default:
		timers = expiry.NewTimerScheduler(logg)
		defer timers.Stop()
		opts = append(opts, orders.WithScheduler(timers))
	}

	orderService := orders.NewOrderService(store, inventory.NewLedger(logg), prices, cfg.Booking.Expiry, logg, opts...)
	if timers != nil {
		timers.Attach(orderService)
	}
	if cfg.Database.Driver == config.DriverMemory {
		// no separate worker can see this store
		go expiry.NewSweeper(orderService, cfg.Worker.ExpirationSweep, logg).Run(ctx)
	}

	flightService := flights.NewFlightService(store.Flights(), store.Catalog(), redisCache, logg)
	catalogService := catalog.NewCatalogService(store.Catalog(), logg)
	gateway := payment.NewGateway(orderService, cfg.Payment.WebhookSecret, logg,
		payment.WithEventStore(redisCache, cfg.Payment.EventTTL),
		payment.WithTolerance(cfg.Payment.Tolerance),
	)

	restGateway, err := bootstrap.NewGateway(cfg.GRPC.Address)
	if err != nil {
		logg.Fatal("grpc gateway", zap.Error(err))
	}
	defer restGateway.Close()

	if !cfg.Log.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.RouterConfig{
		Flights:   api.NewFlightHandler(flightService, logg),
		Catalog:   api.NewCatalogHandler(catalogService, logg),
		Orders:    api.NewOrderHandler(orderService, logg),
		Webhook:   api.NewWebhookHandler(gateway, cfg.Payment.SignatureHeader, logg),
		JWTSecret: cfg.Auth.JWTSecret,
		DocsDir:   cfg.HTTP.SwaggerDir,
		Gateway:   restGateway,
		Log:       logg,
	})

	if err := bootstrap.NewServers(cfg, router, logg).Run(ctx, cfg.GRPC.Address); err != nil {
		logg.Fatal("server error", zap.Error(err))
	}
}
