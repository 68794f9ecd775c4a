package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	appCart "github.com/Zhima-Mochi/minishop-cart/internal/application/cart"
	appCatalog "github.com/Zhima-Mochi/minishop-cart/internal/application/catalog"
	appOrder "github.com/Zhima-Mochi/minishop-cart/internal/application/order"
	"github.com/Zhima-Mochi/minishop-cart/internal/config"
	domainCatalog "github.com/Zhima-Mochi/minishop-cart/internal/domain/catalog"
	domainOrder "github.com/Zhima-Mochi/minishop-cart/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-cart/internal/infrastructure/gormstore"
	"github.com/Zhima-Mochi/minishop-cart/internal/infrastructure/id"
	"github.com/Zhima-Mochi/minishop-cart/internal/infrastructure/memory"
	infraobs "github.com/Zhima-Mochi/minishop-cart/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/minishop-cart/internal/infrastructure/observability/oteltrace"
	"github.com/Zhima-Mochi/minishop-cart/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/minishop-cart/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/minishop-cart/internal/infrastructure/outbox"
	"github.com/Zhima-Mochi/minishop-cart/internal/infrastructure/redisstore"
	"github.com/Zhima-Mochi/minishop-cart/internal/infrastructure/seed"
	"github.com/Zhima-Mochi/minishop-cart/internal/observability"
	"github.com/Zhima-Mochi/minishop-cart/internal/pkg/logging"
	httppresentation "github.com/Zhima-Mochi/minishop-cart/internal/presentation/http"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	baseLogger, err := logging.NewLogger(logging.Options{
		Service: cfg.App.Service,
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		File:    cfg.App.LogFile,
	})
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	systemLogger := logging.WithTrace(baseLogger, logging.SystemTraceID, logging.SystemSpanID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := oteltrace.Install(ctx, cfg.App.Service, cfg.App.Version, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	counters, histograms := prometrics.Standard(prometrics.New(reg, "", ""))
	tel := infraobs.New(infraobs.Options{
		Tracer:     oteltrace.New("minishop.usecase"),
		Logger:     zaplogger.Wrap(baseLogger),
		Counters:   counters,
		Histograms: histograms,
	})

	health := map[string]httppresentation.HealthCheck{}

	catalogRepo, orderRepo, err := openStore(ctx, cfg.Store, health)
	if err != nil {
		return err
	}
	if cfg.Catalog.Seed {
		if err := seedCatalog(ctx, catalogRepo, cfg.Catalog.SeedFile); err != nil {
			return err
		}
	}

	// In-memory event bus (acts as outbox/event publisher)
	bus := outbox.NewBus(tel.Logger().With(observability.F("component", "event_bus")), outbox.Options{
		QueueSize:      cfg.Events.QueueSize,
		Concurrency:    cfg.Events.Concurrency,
		HandlerTimeout: cfg.Events.HandlerTimeout,
	})
	bus.Start(context.Background())

	var guard appCart.IdempotencyGuard = memory.NewIdempotencyGuard()
	if cfg.Redis.Enabled() {
		client, err := redisstore.New(ctx, redisstore.Config{
			URL:          cfg.Redis.URL,
			Address:      cfg.Redis.Address,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		guard = client
		health["redis"] = client.Ping
	}

	adjustStock := appCatalog.NewAdjustStockUseCase(catalogRepo, bus, tel)
	placeOrder := appOrder.NewPlaceOrderUseCase(orderRepo, id.NewUUIDGenerator(), bus, tel)
	checkout := appCart.NewProcessCheckoutUseCase(adjustStock, placeOrder, guard, appCart.CheckoutOptions{
		Timeout:        cfg.Checkout.Timeout,
		FanOut:         cfg.Checkout.FanOut,
		IdempotencyTTL: cfg.Checkout.IdempotencyTTL,
	}, tel)

	carts := appCart.NewRegistry(checkout, tel)
	go carts.RunJanitor(ctx, cfg.Cart.SweepInterval, cfg.Cart.IdleTTL)

	workerTel := infraobs.New(infraobs.Options{
		Tracer:     oteltrace.NewConsumer("minishop.worker"),
		Logger:     tel.Logger(),
		Counters:   counters,
		Histograms: histograms,
	})
	appOrder.NewWorker(orderRepo, bus, bus,
		infraobs.Scoped(workerTel, observability.F("component", "order_worker")),
	).Start()

	handler := httppresentation.NewHandler(httppresentation.UseCases{
		GetProduct:      appCatalog.NewGetProductUseCase(catalogRepo, tel),
		ListProducts:    appCatalog.NewListProductsUseCase(catalogRepo, tel),
		ListCategories:  appCatalog.NewListCategoriesUseCase(catalogRepo, tel),
		ListOrders:      appOrder.NewListOrdersUseCase(orderRepo, tel),
		GetOrder:        appOrder.NewGetOrderUseCase(orderRepo, tel),
		CancelOrder:     appOrder.NewCancelOrderUseCase(orderRepo, bus, tel),
		ConfirmDelivery: appOrder.NewConfirmDeliveryUseCase(orderRepo, bus, tel),
	}, carts, health, tel)

	mux := chi.NewRouter()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.Mount("/", handler.Router())

	server := &http.Server{
		Addr:              cfg.App.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		systemLogger.Info("http_server_start",
			zap.String("addr", server.Addr),
			zap.String("store", cfg.Store.Driver),
			zap.Bool("redis", cfg.Redis.Enabled()),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			systemLogger.Error("http_server_error",
				zap.Error(err),
			)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		systemLogger.Error("http_server_shutdown_error",
			zap.Error(err),
		)
	} else {
		systemLogger.Info("http_server_stopped")
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		systemLogger.Error("event_bus_stop_error", zap.Error(err))
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		systemLogger.Error("tracer_shutdown_error", zap.Error(err))
	}
	return nil
}

func openStore(ctx context.Context, cfg config.StoreConfig, health map[string]httppresentation.HealthCheck) (domainCatalog.Repository, domainOrder.Repository, error) {
	if cfg.Driver == config.StoreMemory {
		return memory.NewCatalogRepository(), memory.NewOrderRepository(), nil
	}
	db, err := gormstore.Open(ctx, gormstore.Config{
		Driver:          cfg.Driver,
		DSN:             cfg.DSN,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		return nil, nil, err
	}
	health["db"] = func(ctx context.Context) error { return gormstore.Ping(ctx, db) }
	return gormstore.NewCatalogRepository(db), gormstore.NewOrderRepository(db), nil
}

// seedCatalog loads the catalog file into an empty store. A populated store
// keeps its stock levels.
func seedCatalog(ctx context.Context, repo domainCatalog.Repository, file string) error {
	existing, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("seed: list catalog: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	products, err := seed.LoadFile(file)
	if err != nil {
		return err
	}
	return seed.Apply(ctx, repo, products)
}
