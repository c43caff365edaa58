package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/api"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/cache"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/config"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/detector"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/logging"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/store"
)

func main() {
	cfgPath := flag.String("config", "", "Path to configuration file")
	addr := flag.String("addr", ":8080", "HTTP listen address")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}
		cfg = *loaded
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}

	d, err := detector.FromConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise engine: %v\n", err)
		os.Exit(1)
	}

	var s store.Store = store.NewMemoryStore()
	if cfg.DB.Driver != "" && cfg.DB.DSN != "" {
		sqlStore, err := store.NewSQLStore(cfg.DB)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open store: %v\n", err)
			os.Exit(1)
		}
		defer sqlStore.Close()
		s = sqlStore
	}

	resultCache := cache.New(cfg.Cache.TTL.Duration, cfg.Cache.MaxEntries)
	server := api.NewServer(d, s, resultCache, logger)

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("starting api server", "addr", *addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
