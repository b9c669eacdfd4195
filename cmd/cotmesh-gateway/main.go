// Command cotmesh-gateway intercepts CoT traffic on UDP, translates
// mesh-flagged events into the ATAK plugin wire format, and forwards them
// to the mesh transport.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/signalsfoundry/cotmesh/internal/gateway"
	"github.com/signalsfoundry/cotmesh/internal/logging"
	"github.com/signalsfoundry/cotmesh/internal/observability"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON gateway config (defaults apply when empty)")
	metricsAddr := flag.String("metrics-addr", ":9090", "HTTP address for Prometheus /metrics")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	cfg := gateway.DefaultConfig()
	if *configPath != "" {
		f, err := os.Open(*configPath)
		if err != nil {
			log.Error(ctx, "failed to open config", logging.String("path", *configPath), logging.Err(err))
			os.Exit(1)
		}
		cfg, err = gateway.LoadConfig(f)
		f.Close()
		if err != nil {
			log.Error(ctx, "failed to load config", logging.String("path", *configPath), logging.Err(err))
			os.Exit(1)
		}
	}

	collector, err := observability.NewCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.Err(err))
		os.Exit(1)
	}
	metricsSrv := serveMetrics(*metricsAddr, collector, log)

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.Err(err))
		os.Exit(1)
	}

	sender, err := cfg.BuildSender(os.Stdout)
	if err != nil {
		log.Error(ctx, "failed to build mesh transport", logging.Err(err))
		os.Exit(1)
	}

	svc := gateway.NewService(cfg, sender, log, collector)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := svc.Run(runCtx); err != nil && runCtx.Err() == nil {
		log.Error(ctx, "gateway exited", logging.Err(err))
	}

	log.Info(ctx, "shutting down gateway")
	observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
}

func serveMetrics(addr string, collector *observability.Collector, log logging.Logger) *http.Server {
	if collector == nil || addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
