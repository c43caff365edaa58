package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/batch"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/config"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/detector"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/logging"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/store"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/pkg/types"
)

func main() {
	cfgPath := flag.String("config", "", "Path to configuration file (optional for single-site mode)")
	site := flag.String("url", "", "Check a single site and print the result as JSON")
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

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	d, err := detector.FromConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise engine: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *site != "":
		result := d.Detect(ctx, *site)
		printJSON(result)
		if result.Status == types.StatusError {
			os.Exit(1)
		}

	case len(cfg.Sites) > 0:
		var s store.Store
		if cfg.DB.Driver != "" && cfg.DB.DSN != "" {
			sqlStore, err := store.NewSQLStore(cfg.DB)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to open store: %v\n", err)
				os.Exit(1)
			}
			defer sqlStore.Close()
			s = sqlStore
		}

		sites := make([]string, 0, len(cfg.Sites))
		for _, sc := range cfg.Sites {
			sites = append(sites, sc.URL)
		}
		runner := batch.NewRunner(d, s, cfg.Batch)
		results, err := runner.Run(ctx, sites)
		printJSON(results)
		if err != nil {
			logger.Warn("batch run interrupted", "error", err, "completed", len(results))
			os.Exit(1)
		}

	default:
		fmt.Fprintln(os.Stderr, "nothing to do: pass -url or a -config with a site list")
		os.Exit(2)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
