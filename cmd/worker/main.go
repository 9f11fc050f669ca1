package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/airtickets/config"
	"github.com/Domenick1991/airtickets/internal/bootstrap"
	"github.com/Domenick1991/airtickets/internal/cache"
	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/email"
	"github.com/Domenick1991/airtickets/internal/kafka"
	"github.com/Domenick1991/airtickets/internal/logger"
	"github.com/Domenick1991/airtickets/internal/service/expiry"
	"github.com/Domenick1991/airtickets/internal/service/inventory"
	"github.com/Domenick1991/airtickets/internal/service/orders"
	"github.com/Domenick1991/airtickets/internal/temporal"
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

	logg, err := logger.New(cfg.Log.Path, "airtickets-worker", cfg.Log.Debug)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logg.Sync()

	if cfg.Database.Driver != config.DriverPostgres {
		logg.Fatal("the worker needs the postgres driver", zap.String("driver", cfg.Database.Driver))
	}

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

	producer := kafka.NewProducer(cfg.Kafka.Brokers, logg)
	defer producer.Close()
	redisCache := cache.NewRedisCache(cache.NewRedisClient(cfg.Redis), cfg.Booking.FlightsCacheTTL)

	orderService := orders.NewOrderService(store, inventory.NewLedger(logg), prices, cfg.Booking.Expiry, logg,
		orders.WithProducer(producer, cfg.Kafka.OrderEventsTopic),
		orders.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		orders.WithCache(redisCache),
		orders.WithSweepBatchSize(cfg.Worker.SweepBatchSize),
	)

	if cfg.Scheduler.Driver == config.SchedulerTemporal {
		tc, err := bootstrap.DialTemporal(cfg.Scheduler)
		if err != nil {
			logg.Fatal("temporal", zap.Error(err))
		}
		defer tc.Close()

		w := temporal.NewWorker(tc, cfg.Scheduler.TaskQueue, temporal.NewActivities(orderService))
		if err := w.Start(); err != nil {
			logg.Fatal("start temporal worker", zap.Error(err))
		}
		defer w.Stop()
		logg.Info("temporal worker started", zap.String("task_queue", cfg.Scheduler.TaskQueue))
	}

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, logg)
	defer consumer.Close()
	sender := email.NewSender(logg)

	go func() {
		if err := consumer.Consume(ctx, consumer.OrderEventHandler(sender.Send)); err != nil {
			logg.Error("notification consumer stopped", zap.Error(err))
		}
	}()

	logg.Info("worker started", zap.Duration("sweep_interval", cfg.Worker.ExpirationSweep))
	expiry.NewSweeper(orderService, cfg.Worker.ExpirationSweep, logg).Run(ctx)
	logg.Info("worker stopped")
}
