package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/luyao-shop/storefront/internal/approvals"
	"github.com/luyao-shop/storefront/internal/bus"
	"github.com/luyao-shop/storefront/internal/catalog"
	"github.com/luyao-shop/storefront/internal/httpapi"
	"github.com/luyao-shop/storefront/internal/kv"
	"github.com/luyao-shop/storefront/internal/messaging"
	"github.com/luyao-shop/storefront/internal/orders"
	"github.com/luyao-shop/storefront/internal/seed"
	"github.com/luyao-shop/storefront/internal/settings"
	"github.com/luyao-shop/storefront/internal/telemetry"
	"github.com/luyao-shop/storefront/internal/users"
)

const eventsTopic = "storefront.events"

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "storefront", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider("storefront", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	if err := runtime.Start(); err != nil {
		logger.Error("failed to start runtime instrumentation", "error", err)
		os.Exit(1)
	}

	adapter, cleanup, err := openAdapter(logger)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := seed.Ensure(ctx, adapter, logger); err != nil {
		logger.Error("failed to seed default data", "error", err)
		os.Exit(1)
	}

	b := bus.New(logger)

	relayCtx, stopRelay := context.WithCancel(ctx)
	defer stopRelay()
	if kafkaBrokers := os.Getenv("KAFKA_BROKERS"); kafkaBrokers != "" {
		producer := messaging.NewProducer(strings.Split(kafkaBrokers, ","), eventsTopic)
		defer func() { _ = producer.Close() }()

		relay := messaging.NewRelay(producer, logger)
		relay.Attach(b)
		go relay.Run(relayCtx)
		logger.Info("event relay enabled", "topic", eventsTopic)
	}

	catalogManager, err := catalog.NewManager(ctx, adapter, b, logger)
	if err != nil {
		logger.Error("failed to load products", "error", err)
		os.Exit(1)
	}
	userManager, err := users.NewManager(ctx, adapter, b, logger)
	if err != nil {
		logger.Error("failed to load users", "error", err)
		os.Exit(1)
	}
	session, err := users.NewSession(ctx, adapter, logger)
	if err != nil {
		logger.Error("failed to restore session", "error", err)
		os.Exit(1)
	}
	orderManager, err := orders.NewManager(ctx, adapter, b, catalogManager, userManager, logger)
	if err != nil {
		logger.Error("failed to load orders", "error", err)
		os.Exit(1)
	}
	approvalManager, err := approvals.NewManager(ctx, adapter, b, userManager, logger)
	if err != nil {
		logger.Error("failed to load admin applications", "error", err)
		os.Exit(1)
	}
	settingsManager, err := settings.NewManager(ctx, adapter, seed.DefaultSettings(), logger)
	if err != nil {
		logger.Error("failed to load settings", "error", err)
		os.Exit(1)
	}

	mux := httpapi.NewMux(
		httpapi.NewProductHandler(catalogManager, logger),
		httpapi.NewUserHandler(userManager, session, logger),
		httpapi.NewOrderHandler(orderManager, logger),
		httpapi.NewApprovalHandler(approvalManager, logger),
		httpapi.NewSettingsHandler(settingsManager, logger),
		telemetry.WithHTTPRoute,
	)
	mux.Handle("GET /metrics", metricsHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr: ":" + port,
		Handler: otelhttp.NewHandler(mux, "storefront",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting storefront service", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

// openAdapter picks the persistence backend: Postgres when POSTGRES_URL is
// set, otherwise one JSON file per key under DATA_DIR.
func openAdapter(logger *slog.Logger) (kv.Adapter, func(), error) {
	if postgresURL := os.Getenv("POSTGRES_URL"); postgresURL != "" {
		db, err := telemetry.OpenDB("postgres", postgresURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Ping(); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		logger.Info("using postgres storage")
		return kv.NewPostgresStore(db), func() { _ = db.Close() }, nil
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	store, err := kv.NewFileStore(dataDir)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("using file storage", "dir", dataDir)
	return store, func() {}, nil
}
