package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/lmittmann/tint"
	flag "github.com/spf13/pflag"

	"github.com/mesalabs/olist-warehouse/pkg/duck"
	"github.com/mesalabs/olist-warehouse/pkg/extract"
	"github.com/mesalabs/olist-warehouse/pkg/pipeline"
)

const (
	defaultDataDir   = "data"
	defaultCacheDir  = ".cache"
	defaultDBPath    = ".tmp/warehouse/olist.db"
	defaultStartYear = 2016
	defaultEndYear   = 2018

	dataDirEnvVar   = "DATA_DIR"
	cacheDirEnvVar  = "CACHE_DIR"
	dbPathEnvVar    = "DB_PATH"
	startYearEnvVar = "START_YEAR"
	endYearEnvVar   = "END_YEAR"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A .env file is optional; real environment variables win either way.
	_ = godotenv.Load()

	verboseFlag := flag.Bool("verbose", false, "enable verbose (debug) logging")
	dataDirFlag := flag.String("data-dir", defaultDataDir, "Directory holding the raw source CSV files (or set DATA_DIR env var)")
	cacheDirFlag := flag.String("cache-dir", defaultCacheDir, "Directory for memoized extracts (or set CACHE_DIR env var)")
	noCacheFlag := flag.Bool("no-cache", false, "disable the extract cache and always re-read source files")
	dbPathFlag := flag.String("db-path", defaultDBPath, "Path to the warehouse database file (or set DB_PATH env var)")
	startYearFlag := flag.Int("start-year", defaultStartYear, "First year of the time dimension, inclusive (or set START_YEAR env var)")
	endYearFlag := flag.Int("end-year", defaultEndYear, "Last year of the time dimension, inclusive (or set END_YEAR env var)")
	flag.Parse()

	// Override flags with environment variables if set
	if envDataDir := os.Getenv(dataDirEnvVar); envDataDir != "" {
		*dataDirFlag = envDataDir
	}
	if envCacheDir := os.Getenv(cacheDirEnvVar); envCacheDir != "" {
		*cacheDirFlag = envCacheDir
	}
	if envDBPath := os.Getenv(dbPathEnvVar); envDBPath != "" {
		*dbPathFlag = envDBPath
	}
	if envStartYear := os.Getenv(startYearEnvVar); envStartYear != "" {
		v, err := strconv.Atoi(envStartYear)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", startYearEnvVar, err)
		}
		*startYearFlag = v
	}
	if envEndYear := os.Getenv(endYearEnvVar); envEndYear != "" {
		v, err := strconv.Atoi(envEndYear)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", endYearEnvVar, err)
		}
		*endYearFlag = v
	}

	level := slog.LevelInfo
	if *verboseFlag {
		level = slog.LevelDebug
	}
	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sig := <-sigCh
		log.Info("etl: received signal", "signal", sig.String())
		cancel()
	}()

	log.Info("opening warehouse database", "path", *dbPathFlag)
	db, err := duck.Open(ctx, log, *dbPathFlag)
	if err != nil {
		return fmt.Errorf("failed to open warehouse database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close warehouse database", "error", err)
		}
	}()

	extractor, err := extract.New(extract.Config{
		Logger:   log,
		DataDir:  *dataDirFlag,
		CacheDir: *cacheDirFlag,
		Cache:    !*noCacheFlag,
	})
	if err != nil {
		return fmt.Errorf("failed to create extractor: %w", err)
	}

	p, err := pipeline.New(pipeline.Config{
		Logger:    log,
		Clock:     clockwork.NewRealClock(),
		DB:        db,
		Extractor: extractor,
		StartYear: *startYearFlag,
		EndYear:   *endYearFlag,
	})
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	return p.Run(ctx)
}
