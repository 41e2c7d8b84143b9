package store

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/mesalabs/olist-warehouse/pkg/duck"
	"github.com/mesalabs/olist-warehouse/pkg/transform"
)

type Config struct {
	Logger *slog.Logger
	DB     duck.DB
}

func (cfg *Config) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.DB == nil {
		return errors.New("db is required")
	}
	return nil
}

// Store loads transformed tables into the warehouse. Every load method runs
// on the caller's transaction so that a whole pipeline run commits or rolls
// back as one batch.
type Store struct {
	log *slog.Logger
	cfg Config
	db  duck.DB
}

func New(cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Store{
		log: cfg.Logger,
		cfg: cfg,
		db:  cfg.DB,
	}, nil
}

// DropTables drops every warehouse table, children before the parents they
// reference.
func (s *Store) DropTables(ctx context.Context, tx *sql.Tx) error {
	tables := allTables()
	for i := len(tables) - 1; i >= 0; i-- {
		if err := duck.DropTable(ctx, tx, tables[i]); err != nil {
			return err
		}
	}
	return nil
}

// CreateTables creates every warehouse table, parents first.
func (s *Store) CreateTables(ctx context.Context, tx *sql.Tx) error {
	for _, cfg := range allTables() {
		if err := duck.CreateTable(ctx, tx, cfg); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) LoadCities(ctx context.Context, tx *sql.Tx, cities []transform.City) error {
	s.log.Debug("store: loading cities", "count", len(cities))
	return duck.InsertRowsViaCSV(ctx, s.log, tx, TableCities(), len(cities), func(w *csv.Writer, i int) error {
		c := cities[i]
		return w.Write([]string{
			c.CityID,
			c.CityName,
			c.StateCode,
			strconv.FormatBool(c.IsCapital),
			nullInt(c.IBGEResPop),
			nullInt(c.IBGEResPopBras),
			nullInt(c.IBGEResPopEstr),
			nullInt(c.IBGEDu),
			nullInt(c.IBGEDuUrban),
			nullInt(c.IBGEDuRural),
			nullInt(c.IBGEPop),
		})
	})
}

func (s *Store) LoadProducts(ctx context.Context, tx *sql.Tx, products []transform.Product) error {
	s.log.Debug("store: loading products", "count", len(products))
	return duck.InsertRowsViaCSV(ctx, s.log, tx, TableProducts(), len(products), func(w *csv.Writer, i int) error {
		p := products[i]
		return w.Write([]string{
			p.ProductID,
			nullStr(p.CategoryName),
			nullStr(p.CategoryNameEnglish),
			nullInt(p.NameLength),
			nullInt(p.DescriptionLength),
			nullInt(p.PhotosQty),
			nullInt(p.WeightG),
			nullInt(p.LengthCm),
			nullInt(p.HeightCm),
			nullInt(p.WidthCm),
		})
	})
}

func (s *Store) LoadTimeDimension(ctx context.Context, tx *sql.Tx, buckets []transform.TimeBucket) error {
	s.log.Debug("store: loading time dimension", "count", len(buckets))
	return duck.InsertRowsViaCSV(ctx, s.log, tx, TableTimeDimension(), len(buckets), func(w *csv.Writer, i int) error {
		b := buckets[i]
		return w.Write([]string{
			b.Timestamp,
			strconv.Itoa(b.Year),
			strconv.Itoa(b.Month),
			strconv.Itoa(b.Day),
			strconv.Itoa(b.Hour),
		})
	})
}

func (s *Store) LoadOrders(ctx context.Context, tx *sql.Tx, orders []transform.Order) error {
	s.log.Debug("store: loading orders", "count", len(orders))
	return duck.InsertRowsViaCSV(ctx, s.log, tx, TableOrders(), len(orders), func(w *csv.Writer, i int) error {
		o := orders[i]
		return w.Write([]string{
			o.OrderID,
			nullStr(o.CustomerUniqueID),
			nullStr(o.CustomerCityID),
			nullStr(o.OrderStatus),
			nullStr(o.PurchaseTimestamp),
			nullStr(o.ApprovedTimestamp),
			nullStr(o.DeliveredCarrierTimestamp),
			nullStr(o.DeliveredCustomerTimestamp),
			nullStr(o.EstimatedDeliveryTimestamp),
		})
	})
}

func (s *Store) LoadReviews(ctx context.Context, tx *sql.Tx, reviews []transform.Review) error {
	s.log.Debug("store: loading reviews", "count", len(reviews))
	return duck.InsertRowsViaCSV(ctx, s.log, tx, TableReviews(), len(reviews), func(w *csv.Writer, i int) error {
		r := reviews[i]
		return w.Write([]string{
			r.ReviewID,
			r.OrderID,
			nullInt(r.Score),
			nullStr(r.CreationTimestamp),
			nullStr(r.AnswerTimestamp),
		})
	})
}

func (s *Store) LoadOrderItems(ctx context.Context, tx *sql.Tx, items []transform.OrderItem) error {
	s.log.Debug("store: loading order items", "count", len(items))
	return duck.InsertRowsViaCSV(ctx, s.log, tx, TableOrderItems(), len(items), func(w *csv.Writer, i int) error {
		it := items[i]
		return w.Write([]string{
			it.OrderItemID,
			nullInt(it.Position),
			it.OrderID,
			it.ProductID,
			nullStr(it.SellerID),
			nullStr(it.SellerCityID),
			nullStr(it.ShippingLimitTimestamp),
			nullDec(it.Price),
			nullDec(it.FreightValue),
		})
	})
}

// Nullable values render as empty CSV fields, which the loader maps to NULL.

func nullStr(v sql.NullString) string {
	if !v.Valid {
		return ""
	}
	return v.String
}

func nullInt(v sql.NullInt64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatInt(v.Int64, 10)
}

func nullDec(v decimal.NullDecimal) string {
	if !v.Valid {
		return ""
	}
	return v.Decimal.StringFixed(2)
}
