/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the sales reconciliation server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (optional) and process environment config
  2. Decode store credentials (fatal if missing)
  3. Open the document store
  4. Wire engine, reconciler, handler, router
  5. Start server with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the store
  4. Exit

ENVIRONMENT:
  See config package. RECON_STORE_CREDENTIALS_BASE64 is required; the
  process refuses to serve without it.

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Environment contract
*/
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/warp/reconciliation-engine/api"
	"github.com/warp/reconciliation-engine/config"
	"github.com/warp/reconciliation-engine/inventory"
	"github.com/warp/reconciliation-engine/logging"
	"github.com/warp/reconciliation-engine/sales"
	"github.com/warp/reconciliation-engine/store/sqlite"
)

func main() {
	log := logging.New(logging.Options{Service: "reconciliation-engine"})

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
		os.Exit(1)
	}

	log = logging.New(logging.Options{
		Service: "reconciliation-engine",
		Level:   cfg.App.LogLevel,
		Format:  cfg.App.LogFormat,
	})

	creds, err := cfg.Store.Credentials()
	if err != nil {
		log.Error().Err(err).Msg("failed to decode store credentials")
		os.Exit(1)
	}

	store, err := sqlite.New(creds.DSN)
	if err != nil {
		log.Error().Err(err).Msg("failed to open document store")
		os.Exit(1)
	}
	defer store.Close()

	engine := inventory.NewEngine(store, log)
	reconciler := sales.NewReconciler(store, engine, log)
	handler := api.NewHandler(store, engine, reconciler, log)
	router := api.NewRouter(handler, log)

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server failed")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
