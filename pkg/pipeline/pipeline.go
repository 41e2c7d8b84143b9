// Package pipeline orchestrates a single warehouse build: extract the raw
// source files, transform them into the star schema, and load every table in
// one transaction.
package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/jonboulle/clockwork"
	"github.com/olekukonko/tablewriter"

	"github.com/mesalabs/olist-warehouse/pkg/duck"
	"github.com/mesalabs/olist-warehouse/pkg/extract"
	"github.com/mesalabs/olist-warehouse/pkg/store"
	"github.com/mesalabs/olist-warehouse/pkg/transform"
)

// Source file names under the extractor's data directory. The cities
// reference file is semicolon-separated; everything else is plain CSV.
const (
	fileProducts     = "products.csv"
	fileTranslations = "product_category_name_translation.csv"
	fileCities       = "brazil_cities.csv"
	fileOrders       = "orders.csv"
	fileCustomers    = "customers.csv"
	fileReviews      = "reviews.csv"
	fileOrderItems   = "order_items.csv"
	fileSellers      = "sellers.csv"
)

type Config struct {
	Logger    *slog.Logger
	Clock     clockwork.Clock
	DB        duck.DB
	Extractor *extract.Extractor

	// StartYear and EndYear bound the hourly time dimension, inclusive.
	StartYear int
	EndYear   int

	// Summary is where the per-table row-count report is rendered after a
	// successful run. Defaults to stdout.
	Summary io.Writer
}

func (cfg *Config) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.Clock == nil {
		return errors.New("clock is required")
	}
	if cfg.DB == nil {
		return errors.New("db is required")
	}
	if cfg.Extractor == nil {
		return errors.New("extractor is required")
	}
	if cfg.StartYear <= 0 {
		return errors.New("start year is required")
	}
	if cfg.EndYear < cfg.StartYear {
		return errors.New("end year must not precede start year")
	}
	return nil
}

type Pipeline struct {
	log       *slog.Logger
	cfg       Config
	clock     clockwork.Clock
	db        duck.DB
	extractor *extract.Extractor
	store     *store.Store
}

func New(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Summary == nil {
		cfg.Summary = os.Stdout
	}

	st, err := store.New(store.Config{
		Logger: cfg.Logger,
		DB:     cfg.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build store: %w", err)
	}

	return &Pipeline{
		log:       cfg.Logger,
		cfg:       cfg,
		clock:     cfg.Clock,
		db:        cfg.DB,
		extractor: cfg.Extractor,
		store:     st,
	}, nil
}

// extracted holds the raw source tables for one run.
type extracted struct {
	products     *extract.Table
	translations *extract.Table
	cities       *extract.Table
	orders       *extract.Table
	customers    *extract.Table
	reviews      *extract.Table
	orderItems   *extract.Table
	sellers      *extract.Table
}

// transformed holds the warehouse-shaped tables for one run.
type transformed struct {
	cities     []transform.City
	products   []transform.Product
	timestamps []transform.TimeBucket
	orders     []transform.Order
	reviews    []transform.Review
	orderItems []transform.OrderItem
}

// Run builds the warehouse from scratch: it drops and recreates every table,
// then loads all of them inside a single transaction so a failed run leaves
// nothing behind.
func (p *Pipeline) Run(ctx context.Context) error {
	start := p.clock.Now()

	ext, err := p.extract()
	if err != nil {
		return err
	}
	p.log.Info("extracted source files", "duration", p.clock.Since(start))

	tstart := p.clock.Now()
	tf, err := p.transform(ext)
	if err != nil {
		return err
	}
	p.log.Info("transformed tables", "duration", p.clock.Since(tstart))

	lstart := p.clock.Now()
	if err := p.load(ctx, tf); err != nil {
		return err
	}
	p.log.Info("loaded warehouse", "duration", p.clock.Since(lstart))

	p.renderSummary(tf)
	p.log.Info("pipeline finished", "duration", p.clock.Since(start))
	return nil
}

func (p *Pipeline) extract() (*extracted, error) {
	var ext extracted
	var err error

	plain := []struct {
		name string
		dst  **extract.Table
	}{
		{fileProducts, &ext.products},
		{fileTranslations, &ext.translations},
		{fileOrders, &ext.orders},
		{fileCustomers, &ext.customers},
		{fileReviews, &ext.reviews},
		{fileOrderItems, &ext.orderItems},
		{fileSellers, &ext.sellers},
	}
	for _, src := range plain {
		if *src.dst, err = p.extractor.Extract(src.name); err != nil {
			return nil, err
		}
	}

	if ext.cities, err = p.extractor.Extract(fileCities, extract.WithDelimiter(';')); err != nil {
		return nil, err
	}

	return &ext, nil
}

func (p *Pipeline) transform(ext *extracted) (*transformed, error) {
	var tf transformed
	var err error

	if tf.cities, err = transform.Cities(ext.cities); err != nil {
		return nil, err
	}
	if tf.products, err = transform.Products(ext.products, ext.translations); err != nil {
		return nil, err
	}
	tf.timestamps = transform.TimeDimension(p.cfg.StartYear, p.cfg.EndYear)
	if tf.orders, err = transform.Orders(ext.orders, ext.customers, tf.cities); err != nil {
		return nil, err
	}
	if tf.reviews, err = transform.Reviews(ext.reviews); err != nil {
		return nil, err
	}
	if tf.orderItems, err = transform.OrderItems(ext.orderItems, ext.sellers, tf.cities); err != nil {
		return nil, err
	}

	return &tf, nil
}

func (p *Pipeline) load(ctx context.Context, tf *transformed) error {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	// The whole load is retried as a unit on transaction conflicts.
	return duck.RetryWithBackoff(ctx, p.log, "load warehouse", func() error {
		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		if err := p.loadTx(ctx, tx, tf); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				p.log.Error("rollback failed", "error", rbErr)
			}
			return err
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	})
}

func (p *Pipeline) loadTx(ctx context.Context, tx *sql.Tx, tf *transformed) error {
	if err := p.store.DropTables(ctx, tx); err != nil {
		return err
	}
	if err := p.store.CreateTables(ctx, tx); err != nil {
		return err
	}
	if err := p.store.LoadCities(ctx, tx, tf.cities); err != nil {
		return err
	}
	if err := p.store.LoadProducts(ctx, tx, tf.products); err != nil {
		return err
	}
	if err := p.store.LoadTimeDimension(ctx, tx, tf.timestamps); err != nil {
		return err
	}
	if err := p.store.LoadOrders(ctx, tx, tf.orders); err != nil {
		return err
	}
	if err := p.store.LoadReviews(ctx, tx, tf.reviews); err != nil {
		return err
	}
	if err := p.store.LoadOrderItems(ctx, tx, tf.orderItems); err != nil {
		return err
	}
	return nil
}

func (p *Pipeline) renderSummary(tf *transformed) {
	table := tablewriter.NewWriter(p.cfg.Summary)
	table.SetHeader([]string{"Table", "Rows"})
	table.Append([]string{"DIM_CITIES", strconv.Itoa(len(tf.cities))})
	table.Append([]string{"DIM_PRODUCTS", strconv.Itoa(len(tf.products))})
	table.Append([]string{"DIM_TIMESTAMP", strconv.Itoa(len(tf.timestamps))})
	table.Append([]string{"DIM_ORDERS", strconv.Itoa(len(tf.orders))})
	table.Append([]string{"DIM_REVIEWS", strconv.Itoa(len(tf.reviews))})
	table.Append([]string{"FACT_ORDER_ITEMS", strconv.Itoa(len(tf.orderItems))})
	table.Render()
}
