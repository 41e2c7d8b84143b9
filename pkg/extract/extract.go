package extract

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

type Config struct {
	Logger *slog.Logger
	// DataDir is the directory holding the raw source files.
	DataDir string
	// CacheDir is where memoized extracts are written. Required when Cache
	// is enabled.
	CacheDir string
	// Cache enables serving a previously memoized copy instead of re-reading
	// the source file. It is a development-speed convenience, not part of the
	// pipeline's contract; there is no invalidation.
	Cache bool
}

func (cfg *Config) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.DataDir == "" {
		return errors.New("data dir is required")
	}
	if cfg.Cache && cfg.CacheDir == "" {
		return errors.New("cache dir is required when cache is enabled")
	}
	return nil
}

type Extractor struct {
	log *slog.Logger
	cfg Config
}

func New(cfg Config) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Extractor{
		log: cfg.Logger,
		cfg: cfg,
	}, nil
}

type options struct {
	delimiter rune
}

type Option func(*options)

// WithDelimiter overrides the field delimiter for non-comma-separated
// sources.
func WithDelimiter(r rune) Option {
	return func(o *options) {
		o.delimiter = r
	}
}

// Extract reads the named file from the data directory into a Table. When
// caching is enabled and a memoized copy exists, that copy is served without
// touching the source file. A malformed file (unreadable, ragged rows, no
// header) is a structural error.
func (e *Extractor) Extract(name string, opts ...Option) (*Table, error) {
	o := options{delimiter: ','}
	for _, opt := range opts {
		opt(&o)
	}

	stem := strings.TrimSuffix(name, filepath.Ext(name))

	if e.cfg.Cache {
		t, ok, err := e.readCache(stem)
		if err != nil {
			return nil, err
		}
		if ok {
			e.log.Debug("extract: serving memoized copy", "file", name)
			return t, nil
		}
	}

	path := filepath.Join(e.cfg.DataDir, name)
	e.log.Debug("extract: reading source file", "path", path)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file %s: %w", name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = o.delimiter

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("source file %s is empty", name)
		}
		return nil, fmt.Errorf("failed to read header of %s: %w", name, err)
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	t := NewTable(stem, header, rows)

	if e.cfg.Cache {
		if err := e.writeCache(stem, t); err != nil {
			return nil, err
		}
	}

	return t, nil
}
