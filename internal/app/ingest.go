package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dcomatch/dcomatch/internal/cli"
	"github.com/dcomatch/dcomatch/internal/config"
	"github.com/dcomatch/dcomatch/internal/db"
	"github.com/dcomatch/dcomatch/internal/ingest"
	"github.com/dcomatch/dcomatch/internal/logging"
	"github.com/dcomatch/dcomatch/internal/match"
	payloadschema "github.com/dcomatch/dcomatch/schema"
)

func runIngest(args []string) int {
	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 10*time.Minute, "Command timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "ingest requires exactly one path: an order document JSON file or a directory of them")
		return 2
	}

	paths, err := collectDocumentPaths(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid input path: %v\n", err)
		return 2
	}
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "No .json documents found")
		return 2
	}

	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return 1
	}
	defer pool.Close()

	svc := ingest.NewService(pool, cfg, logger)

	var totals match.Stats
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read %s: %v\n", path, err)
			return 1
		}

		doc, err := payloadschema.ValidateOrderDocument(raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid document %s: %v\n", path, err)
			return 2
		}

		result, err := svc.IngestDocument(ctx, doc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ingest failed for %s: %v\n", path, err)
			return 1
		}
		totals.Add(result.Stats)

		fmt.Printf("%s: order_id=%d articles=%d matches=%d novel=%d\n",
			filepath.Base(path), result.OrderID,
			result.Stats.ArticlesProcessed, result.Stats.MatchesWritten, result.Stats.NovelArticles)
		for _, number := range result.FailedArticles {
			fmt.Printf("  article %s skipped after matching failure\n", number)
		}
	}

	fmt.Printf("total: articles=%d orders_searched=%d candidates=%d comparisons=%d matches=%d novel=%d\n",
		totals.ArticlesProcessed, totals.OrdersSearched, totals.CandidatesScored,
		totals.ComparisonsPerformed, totals.MatchesWritten, totals.NovelArticles)
	return 0
}

// collectDocumentPaths resolves the argument to an ordered list of .json
// files. Directories are processed in file name order for reproducible
// runs.
func collectDocumentPaths(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			paths = append(paths, filepath.Join(path, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
