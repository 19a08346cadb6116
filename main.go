package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"storefront-service/handlers"
	"storefront-service/internal/auth"
	"storefront-service/internal/catalog"
	"storefront-service/internal/consul"
	"storefront-service/internal/customers"
	"storefront-service/internal/inventory"
	"storefront-service/internal/orders"
	"storefront-service/internal/stores/kafka"
	"storefront-service/internal/stores/postgres"
	"storefront-service/pkg/metrics"
)

const serviceName = "orders"

func main() {
	if err := startApp(); err != nil {
		log.Fatalf("startup error: %v", err)
	}
}

func startApp() error {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, relying on environment")
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	// Database and schema.
	db, err := postgres.OpenDB()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Domain wiring: catalog reads, customer lookups, the stock ledger, and
	// the order store all share the one pool.
	catalogConf, err := catalog.NewConf(db)
	if err != nil {
		return err
	}
	customerConf, err := customers.NewConf(db)
	if err != nil {
		return err
	}
	ledger, err := inventory.NewLedger(db)
	if err != nil {
		return err
	}
	orderStore, err := orders.NewConf(db)
	if err != nil {
		return err
	}
	orderService, err := orders.NewService(catalogConf, customerConf, ledger, orderStore)
	if err != nil {
		return err
	}

	// Auth keys for the admin endpoints.
	keyPath := getenv("JWT_PUBLIC_KEY_PATH", "pubkey.pem")
	pem, err := os.ReadFile(keyPath)
	if err != nil {
		return fmt.Errorf("failed to read jwt public key %s: %w", keyPath, err)
	}
	keys, err := auth.NewKeys(pem)
	if err != nil {
		return err
	}

	// Kafka producer is optional: without brokers the service runs, it just
	// publishes nothing.
	var kafkaConf *kafka.Conf
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		kafkaConf, err = kafka.NewConf(brokers)
		if err != nil {
			return fmt.Errorf("failed to connect kafka producer: %w", err)
		}
		defer kafkaConf.Close()
	} else {
		slog.Warn("KAFKA_BROKERS not set, order events disabled")
	}

	orderMetrics := metrics.NewOrderMetrics()

	prefix := getenv("SERVICE_ENDPOINT_PREFIX", "/orders")
	port, err := strconv.Atoi(getenv("APP_PORT", "8085"))
	if err != nil {
		return fmt.Errorf("invalid APP_PORT: %w", err)
	}

	// Register with consul when an agent is reachable; the gateway discovers
	// us through it.
	if os.Getenv("CONSUL_HTTP_ADDR") != "" {
		client, err := consul.NewClient()
		if err != nil {
			return err
		}
		serviceID := serviceName + "-" + uuid.NewString()
		host := getenv("SERVICE_HOST", "localhost")
		if err := consul.RegisterService(client, serviceID, serviceName, host, port); err != nil {
			return err
		}
		defer func() {
			if err := consul.Deregister(client, serviceID); err != nil {
				slog.Error("failed to deregister from consul", slog.String("Error", err.Error()))
			}
		}()
	}

	api := handlers.API(prefix, keys, orderService, catalogConf, kafkaConf, orderMetrics)
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           api,
		ReadHeaderTimeout: 5 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("storefront order service listening", slog.Int("Port", port))
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		slog.Info("shutdown started", slog.String("Signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			srv.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
