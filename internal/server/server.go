// Package server assembles and runs the application.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kasirin/kasirin/app/controllers"
	"github.com/kasirin/kasirin/app/models"
	"github.com/kasirin/kasirin/app/repositories"
	"github.com/kasirin/kasirin/app/routes"
	"github.com/kasirin/kasirin/app/services"
	"github.com/kasirin/kasirin/config"
	_ "github.com/kasirin/kasirin/database/migrations"
	"github.com/kasirin/kasirin/pkg/cache"
	"github.com/kasirin/kasirin/pkg/database"
	"github.com/kasirin/kasirin/pkg/event"
	"github.com/kasirin/kasirin/pkg/grpcserver"
	"github.com/kasirin/kasirin/pkg/logger"
	"github.com/kasirin/kasirin/pkg/migration"
	"github.com/kasirin/kasirin/pkg/queue"
	"github.com/kasirin/kasirin/pkg/realtime"
	"github.com/kasirin/kasirin/pkg/router"
	"github.com/kasirin/kasirin/pkg/schedule"
	"github.com/kasirin/kasirin/pkg/storage"
)

const shutdownTimeout = 15 * time.Second

// Run boots every subsystem and serves until SIGINT/SIGTERM.
func Run() error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("server: load config: %w", err)
	}

	db, err := database.Open(config.DatabaseDriver(), config.DatabaseDSN())
	if err != nil {
		return fmt.Errorf("server: open database: %w", err)
	}

	if err := migration.New(db).Run(); err != nil {
		return fmt.Errorf("server: migrate: %w", err)
	}

	storage.Connect()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis backs the cache, the queue, and cross-instance change
	// notifications. Without it the app still runs: no list cache,
	// in-memory queue, single-instance realtime.
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
	})
	redisUp := true
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("server: redis unavailable, degrading", "addr", config.RedisAddr(), "error", err)
		redisUp = false
	}

	broker := realtime.NewBroker(16)
	defer broker.Shutdown()

	var publisher realtime.Publisher = broker
	var listCache *cache.Cache
	if redisUp {
		bridge := realtime.NewRedisBridge(rdb, broker)
		defer bridge.Close()
		publisher = bridge

		listCache = cache.New(rdb, "kasirin")
		queue.SetDriver(queue.NewRedisDriver(rdb))
	}

	if err := realtime.Instrument(db, publisher); err != nil {
		return fmt.Errorf("server: instrument store: %w", err)
	}

	productRepo := repositories.NewProductRepository(db)
	customerRepo := repositories.NewCustomerRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	userRepo := repositories.NewUserRepository(db)

	queue.UseDB(db)
	services.InitJobs(customerRepo)
	queue.StartWorkers(ctx, 4)

	if listCache != nil {
		go invalidateOnChange(broker, listCache)
	}

	orderService := services.NewOrderService(orderRepo, productRepo, config.OrderAtomic())
	paymentService := services.NewPaymentService(config.PaymentDelay())

	schedule.Every(1).Hours().
		Name("customers:refresh-stats").
		WithoutOverlapping().
		Run(func() { refreshCustomerStats(customerRepo) })
	schedule.Start(ctx)

	event.Listen("order.placed", func(ev event.Event) {
		order, ok := ev.Payload.(*models.Order)
		if !ok {
			return
		}
		logger.Info("order placed",
			"order", order.ID,
			"total", order.TotalAmount,
			"method", order.PaymentMethod,
			"lines", len(order.Items),
		)
	})

	graphqlHandler, err := controllers.NewGraphQLHandler(productRepo, customerRepo, orderRepo)
	if err != nil {
		return fmt.Errorf("server: graphql: %w", err)
	}

	r := router.New()
	routes.Register(r, routes.Deps{
		Products:  controllers.NewProductController(productRepo, listCache),
		Customers: controllers.NewCustomerController(customerRepo),
		Orders:    controllers.NewOrderController(orderRepo, orderService),
		Users:     controllers.NewUserController(userRepo),
		Payments:  controllers.NewPaymentController(paymentService),
		Realtime:  controllers.NewRealtimeController(broker),
		GraphQL:   graphqlHandler,
	})

	grpcSrv, _, err := grpcserver.Start(config.GRPCPort())
	if err != nil {
		return fmt.Errorf("server: grpc: %w", err)
	}
	defer grpcserver.Stop(grpcSrv)

	addr := ":" + config.AppPort()
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server: listening", "addr", addr, "env", config.AppEnv())
		errCh <- httpSrv.ListenAndServe()
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: serve: %w", err)
		}
	case s := <-sig:
		logger.Info("server: shutting down", "signal", s.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

// invalidateOnChange evicts the cached product list whenever the products
// table changes.
func invalidateOnChange(broker *realtime.Broker, c *cache.Cache) {
	sub := broker.Watch("products")
	defer sub.Cancel()
	for range sub.Events() {
		if err := c.Forget(context.Background(), "products:list"); err != nil {
			logger.Warn("server: cache invalidation failed", "error", err)
		}
	}
}

// refreshCustomerStats queues an aggregate recompute for every customer.
// Catches rows missed when a checkout's stats job was lost.
func refreshCustomerStats(customers *repositories.CustomerRepository) {
	list, err := customers.List(context.Background())
	if err != nil {
		logger.Warn("server: stats refresh list failed", "error", err)
		return
	}
	for _, c := range list {
		job := &services.RecalcCustomerStatsJob{CustomerID: c.ID}
		if err := queue.Dispatch(job); err != nil {
			logger.Warn("server: stats refresh dispatch failed", "customer", c.ID, "error", err)
		}
	}
}
