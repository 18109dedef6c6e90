package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"decentpay/client"
	"decentpay/config"
	"decentpay/lifecycle"
	"decentpay/observability/logging"
	"decentpay/observability/otel"
	"decentpay/rpc"
	"decentpay/services/gateway"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := os.Getenv("DECENTPAY_CONFIG")
	if configPath == "" {
		configPath = "config.toml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logging.Setup("decentpay-gateway", cfg.NetworkName, logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if cfg.ContractAddress == "" {
		log.Error("ContractAddress is not set", "config", configPath)
		os.Exit(1)
	}

	rpcOpts := []rpc.Option{
		rpc.WithTimeout(time.Duration(cfg.RequestTimeoutSeconds) * time.Second),
	}
	if cfg.RPCAuthToken != "" {
		rpcOpts = append(rpcOpts, rpc.WithAuthToken(cfg.RPCAuthToken))
	}
	if cfg.RateLimitPerSecond > 0 {
		rpcOpts = append(rpcOpts, rpc.WithRateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
	}

	// Tracing is opt-in via the standard OTLP environment variables.
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		shutdown, err := otel.Init(context.Background(), otel.Config{
			ServiceName: "decentpay-gateway",
			Network:     cfg.NetworkName,
			Endpoint:    endpoint,
			Insecure:    os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true",
			Headers:     otel.ParseHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS")),
		})
		if err != nil {
			log.Error("init telemetry", "error", err)
			os.Exit(1)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				log.Warn("telemetry shutdown", "error", err)
			}
		}()
		rpcOpts = append(rpcOpts, rpc.WithTracing())
	}

	ledger, err := rpc.NewClient(cfg.RPCEndpoint, rpcOpts...)
	if err != nil {
		log.Error("init rpc client", "error", err)
		os.Exit(1)
	}
	sdk, err := client.New(cfg.ContractAddress, ledger, lifecycle.ReadOnlySigner{}, client.WithLogger(log))
	if err != nil {
		log.Error("init sdk client", "error", err)
		os.Exit(1)
	}
	server, err := gateway.New(gateway.Config{
		Reader:              sdk,
		Logger:              log,
		DiscoveryUpperBound: cfg.DiscoveryUpperBound,
	})
	if err != nil {
		log.Error("init gateway", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         cfg.Gateway.ListenAddress,
		Handler:      server,
		ReadTimeout:  time.Duration(cfg.Gateway.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Gateway.WriteTimeoutSeconds) * time.Second,
	}

	go func() {
		log.Info("gateway listening", "addr", cfg.Gateway.ListenAddress)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("listen", "error", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info("shutting down gateway")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
