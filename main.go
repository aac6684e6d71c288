package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"tuwi/config"
	"tuwi/cron"
	"tuwi/database"
	reservationRepo "tuwi/database/repository/reservation"
	"tuwi/handlers"
	"tuwi/middleware"
	"tuwi/routes"
	"tuwi/services/booking"
	"tuwi/services/notification"
	"tuwi/services/ratelimit"
	"tuwi/utils"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer func() { _ = logger.Sync() }()

	utils.InitRedis()

	repo, closeStore, err := openStore(cfg)
	if err != nil {
		logger.Fatal("main: failed to open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer closeStore()

	schemaCtx, cancelSchema := context.WithTimeout(context.Background(), 30*time.Second)
	if err := repo.EnsureSchema(schemaCtx); err != nil {
		logger.Fatal("main: failed to prepare schema", zap.Error(err))
	}
	cancelSchema()

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	utils.StartHealthMonitor(monitorCtx, 30*time.Second,
		[]*redis.Client{utils.GetRateLimitClient(), utils.GetEventsClient()}, repo)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("main: unknown TIMEZONE, using UTC", zap.String("timezone", cfg.Timezone), zap.Error(err))
		loc = time.UTC
	}

	queueOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	}
	publisher := notification.NewRedisPublisher(utils.GetEventsClient(), cfg.RealtimeChannel)

	var notifier notification.Notifier
	switch cfg.Notifier {
	case "queue":
		queueClient := asynq.NewClient(queueOpt)
		defer queueClient.Close()
		notifier = notification.NewQueueNotifier(queueClient, time.Duration(cfg.ReminderLeadHours)*time.Hour, loc)
	case "pubsub":
		notifier = publisher
	case "none":
		notifier = notification.Noop{}
	default:
		logger.Fatal("main: unsupported NOTIFIER", zap.String("notifier", cfg.Notifier))
	}
	dispatcher := notification.NewDispatcher(notifier, time.Duration(cfg.NotifyTimeoutMS)*time.Millisecond, logger)

	var worker *cron.BookingWorker
	if cfg.Notifier == "queue" && cfg.RunWorker {
		worker = cron.NewBookingWorker(queueOpt, publisher, logger.Named("worker"))
		worker.Start()
	}

	limiter := ratelimit.NewRedisLimiter(utils.GetRateLimitClient(), map[string]ratelimit.Policy{
		ratelimit.ActionCreateBooking: {
			Max:    cfg.BookingRateLimitMax,
			Window: time.Duration(cfg.BookingRateLimitWindowMin) * time.Minute,
		},
	}, time.Duration(cfg.RateLimitTimeoutMS)*time.Millisecond)

	bookingHandler := &handlers.BookingHandler{
		Limiter:   limiter,
		Validator: booking.NewValidator(cfg.NotesMaxLength),
		Reservation: booking.NewReservationService(repo,
			booking.Pricer{DefaultHomeServiceFee: cfg.HomeServiceFee},
			time.Duration(cfg.ReservationTimeoutMS)*time.Millisecond,
			logger),
		Catalog:  booking.NewCatalogService(repo),
		Notifier: dispatcher,
	}
	handlerBundle := handlers.NewHandlerBundle(bookingHandler, []byte(cfg.JWTSecret),
		cfg.MaxRequestsPerMin, config.SplitList(cfg.CORSOrigins))

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	if err := router.SetTrustedProxies(config.SplitList(cfg.TrustedProxies)); err != nil {
		logger.Fatal("main: invalid TRUSTED_PROXIES", zap.Error(err))
	}
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))

	routes.RegisterRoutes(router, handlerBundle)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s (store=%s, notifier=%s)...", srv.Addr, cfg.StoreDriver, cfg.Notifier)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	if err := dispatcher.Close(ctx); err != nil {
		logger.Sugar().Warnf("main: pending notifications abandoned: %v", err)
	}
	if worker != nil {
		worker.Shutdown()
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

// openStore selects the reservation store from STORE_DRIVER.
func openStore(cfg config.Config) (reservationRepo.ReservationRepository, func(), error) {
	switch cfg.StoreDriver {
	case "mongo":
		client, err := database.InitMongo()
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(ctx)
		}
		return reservationRepo.NewMongoReservationRepo(client, cfg.MongoDatabase), closeFn, nil
	default:
		db, err := database.InitGorm(cfg.StoreDriver)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return reservationRepo.NewGormReservationRepo(db), closeFn, nil
	}
}
