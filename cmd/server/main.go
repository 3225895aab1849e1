// Package main runs the card gateway: HTTP API, WebSocket push and the
// bounded auto-refresh engine over the configured market data providers.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tokencard/internal/classify"
	"tokencard/internal/domain"
	"tokencard/internal/gateway"
	"tokencard/internal/observability"
	"tokencard/internal/provider"
	"tokencard/internal/refresh"
	"tokencard/internal/router"
	"tokencard/internal/storage"
	"tokencard/internal/storage/memory"
	"tokencard/internal/storage/migrations"
	pgstore "tokencard/internal/storage/postgres"
)

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	listenAddr := flag.String("listen-addr", envOr("LISTEN_ADDR", ":8080"), "HTTP listen address")
	metricsAddr := flag.String("metrics-addr", envOr("METRICS_ADDR", ":9090"), "Prometheus metrics HTTP address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")

	dexScreenerURL := flag.String("dexscreener-url", envOr("DEXSCREENER_URL", "https://api.dexscreener.com"), "Market aggregator base URL")
	pumpFunURL := flag.String("pumpfun-url", envOr("PUMPFUN_URL", "https://frontend-api.pump.fun"), "Coin name lookup base URL")
	walletURL := flag.String("wallet-analytics-url", os.Getenv("WALLET_ANALYTICS_URL"), "Wallet bundle analytics base URL")

	autoInterval := flag.Duration("auto-interval", 30*time.Second, "Automatic refresh tick interval")
	maxAutoTicks := flag.Int("max-auto-ticks", 10, "Automatic refreshes allowed per card before manual-only")
	fetchTimeout := flag.Duration("fetch-timeout", provider.DefaultTimeout, "Timeout for a single provider request")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}
	if *walletURL == "" {
		logger.Fatal("--wallet-analytics-url is required")
	}

	ctx, cancel := context.WithCancel(context.Background())

	// Create store
	cardStore, cleanup, err := createStore(ctx, *postgresDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create store: %v", err)
	}
	defer cleanup()

	// Wire providers and routing
	r := router.New(router.Options{
		Aggregator:      provider.NewDexScreener(*dexScreenerURL, provider.WithTimeout(*fetchTimeout)),
		NameLookup:      provider.NewPumpFun(*pumpFunURL, provider.WithTimeout(*fetchTimeout)),
		WalletAnalytics: provider.NewWalletAnalytics(*walletURL, provider.WithTimeout(*fetchTimeout)),
	})

	var hub *gateway.Hub
	engine := refresh.New(refresh.Options{
		Classifier:   classify.New(),
		Router:       r,
		CardStore:    cardStore,
		Logger:       log.New(os.Stdout, "[refresh] ", log.LstdFlags),
		AutoInterval: *autoInterval,
		MaxAutoTicks: *maxAutoTicks,
		FetchTimeout: *fetchTimeout,
		OnUpdate: func(c *domain.Card) {
			hub.BroadcastUpdate(c)
		},
	})
	defer engine.Close()

	hub = gateway.NewHub(engine, nil, log.New(os.Stdout, "[gateway] ", log.LstdFlags))
	defer hub.Close()

	// Re-register persisted cards so they accept refresh triggers again.
	if cards, err := engine.ListCards(ctx); err != nil {
		logger.Printf("Failed to load persisted cards: %v", err)
	} else if len(cards) > 0 {
		engine.Restore(cards)
		logger.Printf("Restored %d persisted cards", len(cards))
	}

	server := gateway.NewServer(engine, hub, log.New(os.Stdout, "[gateway] ", log.LstdFlags))
	httpServer := &http.Server{Addr: *listenAddr, Handler: server.Routes()}

	// Channel to signal completion
	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	// Start metrics server
	go startMetricsServer(*metricsAddr, logger)

	logger.Printf("Listening on %s", *listenAddr)
	err = httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		done <- err
		logger.Fatalf("HTTP server error: %v", err)
	}
	done <- nil

	logger.Println("Shutdown complete")
}

// createStore creates the card store and applies migrations for postgres.
func createStore(ctx context.Context, postgresDSN string, useMemory bool) (storage.CardStore, func(), error) {
	if useMemory {
		return memory.NewCardStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	return pgstore.NewCardStore(pool), pool.Close, nil
}

// startMetricsServer exposes Prometheus metrics.
func startMetricsServer(addr string, logger *log.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())

	logger.Printf("Metrics server listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Printf("Metrics server error: %v", err)
	}
}

// envOr returns the env var value or a fallback.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadEnvFile loads .env key=value pairs without overriding existing env vars.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
