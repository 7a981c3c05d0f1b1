// Command indexer runs the campaign program indexer: a WebSocket log
// subscription feeding a sequential pipeline that persists blocks,
// transactions and decoded campaign events to PostgreSQL, plus an HTTP API
// over the indexed data.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campaign-indexer/internal/api"
	"campaign-indexer/internal/config"
	"campaign-indexer/internal/ingestion"
	"campaign-indexer/internal/observability"
	"campaign-indexer/internal/solana"
	"campaign-indexer/internal/storage/migrations"
	"campaign-indexer/internal/storage/postgres"
)

func main() {
	logger := log.New(os.Stdout, "[indexer] ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer pool.Close()

	if err := migrations.RunPostgres(ctx, pool); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Println("Migrations applied")

	blocks := postgres.NewBlockStore(pool)
	txs := postgres.NewTransactionStore(pool)
	events := postgres.NewCampaignEventStore(pool)

	rpc := solana.NewHTTPClient(cfg.RPCURL)

	watermark, err := seedWatermark(ctx, cfg, txs)
	if err != nil {
		logger.Fatalf("Failed to seed watermark: %v", err)
	}
	logger.Printf("Watermark starting at slot %d", watermark.Load())

	runner := ingestion.NewRunner(ingestion.RunnerOptions{
		Dialer: func(ctx context.Context, endpoint string) (solana.WSClient, error) {
			return solana.NewWSClient(ctx, endpoint, nil)
		},
		WSEndpoint: cfg.WSURL,
		ProgramID:  cfg.ProgramID,
		RPC:        rpc,
		Blocks:     blocks,
		Txs:        txs,
		Events:     events,
		Watermark:  watermark,
		Logger:     logger,
	})

	apiServer := api.NewServer(api.ServerOptions{
		Txs:       txs,
		Events:    events,
		Watermark: watermark,
		RPC:       rpc,
		ProgramID: cfg.ProgramID,
		Logger:    logger,
	})

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr(),
		Handler: apiServer.Handler(),
	}
	go func() {
		logger.Printf("Query API listening on %s", cfg.ListenAddr())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("HTTP server error: %v", err)
		}
	}()

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Metrics listening on %s", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

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

	err = runner.Run(ctx)
	done <- err

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Pipeline error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// seedWatermark picks the starting slot: an explicit START_SLOT wins,
// otherwise the highest slot already stored, otherwise zero.
func seedWatermark(ctx context.Context, cfg *config.Config, txs *postgres.TransactionStore) (*ingestion.Watermark, error) {
	if cfg.StartSlot != nil {
		return ingestion.NewWatermark(*cfg.StartSlot), nil
	}

	maxSlot, err := txs.MaxSlot(ctx)
	if err != nil {
		return nil, err
	}
	return ingestion.NewWatermark(maxSlot), nil
}
