// Package main runs the full pipeline in one process:
// - Inbound HTTP: webhook intake, health probe, websocket fan-out
// - Batch worker (continuous): intake queue → normalizer → events queue
// - Egress worker (continuous): events queue → downstream webhook
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go/rpc"

	"sol-dex-hub/internal/archive"
	"sol-dex-hub/internal/ingest"
	"sol-dex-hub/internal/kv"
	"sol-dex-hub/internal/normalize"
	"sol-dex-hub/internal/observability"
	"sol-dex-hub/internal/poolcache"
	"sol-dex-hub/internal/queue"
	"sol-dex-hub/internal/relay"
	"sol-dex-hub/internal/web"
)

// restartDelay is the pause before a crashed loop is restarted.
const restartDelay = 100 * time.Millisecond

// appConfig mirrors the optional JSON config file. File values fill in
// whatever the flags and environment left empty.
type appConfig struct {
	ListenOn         string `json:"listenOn"`
	WebhookEndpoint  string `json:"webhookEndpoint"`
	RedisURL         string `json:"redisUrl"`
	SolRPCURL        string `json:"solRpcUrl"`
	PostgresDSN      string `json:"postgresDSN"`
	WSTicket         string `json:"wsTicket"`
	MetricsAddr      string `json:"metricsAddr"`
	MetricsNamespace string `json:"metricsNamespace"`
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	configPath := flag.String("config", "", "Optional JSON config file")
	listenOn := flag.String("listen-on", os.Getenv("LISTEN_ON"), "HTTP listen address")
	webhookEndpoint := flag.String("webhook-endpoint", os.Getenv("WEBHOOK_ENDPOINT"), "Downstream webhook URL")
	redisURL := flag.String("redis-url", os.Getenv("REDIS_URL"), "Redis address (host:port)")
	solRPCURL := flag.String("sol-rpc-url", os.Getenv("SOL_RPC_URL"), "Solana RPC endpoint for the health probe")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "Optional Postgres DSN for event archival")
	wsTicket := flag.String("ws-ticket", os.Getenv("WS_TICKET"), "Websocket subscriber ticket")
	metricsAddr := flag.String("metrics-addr", os.Getenv("METRICS_ADDR"), "Prometheus metrics HTTP address")
	metricsNamespace := flag.String("metrics-namespace", os.Getenv("METRICS_NAMESPACE"), "Prometheus metrics namespace")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	cfg := appConfig{
		ListenOn:         *listenOn,
		WebhookEndpoint:  *webhookEndpoint,
		RedisURL:         *redisURL,
		SolRPCURL:        *solRPCURL,
		PostgresDSN:      *postgresDSN,
		WSTicket:         *wsTicket,
		MetricsAddr:      *metricsAddr,
		MetricsNamespace: *metricsNamespace,
	}
	if *configPath != "" {
		if err := fillFromFile(&cfg, *configPath); err != nil {
			logger.Fatalf("load config file: %v", err)
		}
	}
	if cfg.ListenOn == "" {
		cfg.ListenOn = ":8080"
	}
	if cfg.MetricsAddr == "" {
		cfg.MetricsAddr = ":9090"
	}

	// Validate required settings
	if cfg.WebhookEndpoint == "" {
		logger.Fatal("--webhook-endpoint is required")
	}
	if cfg.RedisURL == "" {
		logger.Fatal("--redis-url is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := kv.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatalf("connect to redis: %v", err)
	}
	defer store.Close()

	var db *archive.Pool
	var archiver relay.Archiver
	if cfg.PostgresDSN != "" {
		db, err = archive.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			logger.Fatalf("connect to postgres: %v", err)
		}
		defer db.Close()
		if err := archive.Migrate(ctx, db); err != nil {
			logger.Fatalf("migrate postgres: %v", err)
		}
		archiver = archive.NewStore(db)
		logger.Println("Event archival enabled")
	}

	var rpcClient *rpc.Client
	if cfg.SolRPCURL != "" {
		rpcClient = rpc.New(cfg.SolRPCURL)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)
	intake := queue.NewIntake(store)
	events := queue.NewEvents(store)

	server := web.NewServer(web.Options{
		Store:    store,
		Intake:   intake,
		Events:   events,
		RPC:      rpcClient,
		DB:       db,
		WSTicket: cfg.WSTicket,
		Metrics:  metrics,
		Logger:   log.New(os.Stdout, "[web] ", log.LstdFlags|log.Lshortfile),
	})

	streamLogger := log.New(os.Stdout, "[stream] ", log.LstdFlags|log.Lshortfile)
	worker := ingest.New(ingest.Options{
		Intake:     intake,
		Events:     events,
		Normalizer: normalize.New(poolcache.New(store), streamLogger),
		Metrics:    metrics,
		Logger:     streamLogger,
	})

	sender := relay.New(relay.Options{
		Events:   events,
		Endpoint: cfg.WebhookEndpoint,
		Archiver: archiver,
		Metrics:  metrics,
		Logger:   log.New(os.Stdout, "[relay] ", log.LstdFlags|log.Lshortfile),
	})

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()

		sig = <-sigCh
		logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
		os.Exit(1)
	}()

	go startMetricsServer(cfg.MetricsAddr, logger)

	go supervise(ctx, logger, "web", func(ctx context.Context) error {
		return serveHTTP(ctx, cfg.ListenOn, server.Handler(), logger)
	})
	go supervise(ctx, logger, "batch worker", worker.Run)
	go supervise(ctx, logger, "egress worker", sender.Run)

	<-ctx.Done()
	logger.Println("Shutdown complete")
}

// supervise runs fn until ctx is canceled, restarting it after a short
// pause whenever it fails.
func supervise(ctx context.Context, logger *log.Logger, name string, fn func(context.Context) error) {
	for {
		err := fn(ctx)
		if ctx.Err() != nil {
			return
		}
		logger.Printf("%s stopped: %v, restarting in %v", name, err, restartDelay)
		select {
		case <-ctx.Done():
			return
		case <-time.After(restartDelay):
		}
	}
}

// serveHTTP runs one http.Server tied to ctx.
func serveHTTP(ctx context.Context, addr string, handler http.Handler, logger *log.Logger) error {
	srv := &http.Server{Addr: addr, Handler: handler}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	logger.Printf("web server started, listen on: %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// startMetricsServer exposes Prometheus metrics and a trivial liveness
// route on its own listener.
func startMetricsServer(addr string, logger *log.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())

	logger.Printf("Starting metrics server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Printf("metrics server error: %v", err)
	}
}

// fillFromFile fills empty config fields from a JSON file. Flags and
// environment keep precedence.
func fillFromFile(cfg *appConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var file appConfig
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.ListenOn == "" {
		cfg.ListenOn = file.ListenOn
	}
	if cfg.WebhookEndpoint == "" {
		cfg.WebhookEndpoint = file.WebhookEndpoint
	}
	if cfg.RedisURL == "" {
		cfg.RedisURL = file.RedisURL
	}
	if cfg.SolRPCURL == "" {
		cfg.SolRPCURL = file.SolRPCURL
	}
	if cfg.PostgresDSN == "" {
		cfg.PostgresDSN = file.PostgresDSN
	}
	if cfg.WSTicket == "" {
		cfg.WSTicket = file.WSTicket
	}
	if cfg.MetricsAddr == "" {
		cfg.MetricsAddr = file.MetricsAddr
	}
	if cfg.MetricsNamespace == "" {
		cfg.MetricsNamespace = file.MetricsNamespace
	}
	return nil
}

// loadEnvFile loads environment variables from .env file if it exists.
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
