package pipeline

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/mesalabs/olist-warehouse/pkg/duck"
	"github.com/mesalabs/olist-warehouse/pkg/extract"
	"github.com/mesalabs/olist-warehouse/pkg/transform"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

// writeSourceFiles lays down a small but referentially consistent dataset:
// two cities, two products, two orders for customers in those cities, a
// review, and three order items (one a duplicate of another).
func writeSourceFiles(t *testing.T, dir string) {
	t.Helper()

	writeFixture(t, dir, "brazil_cities.csv",
		"CITY;STATE;CAPITAL;IBGE_RES_POP;IBGE_RES_POP_BRAS;IBGE_RES_POP_ESTR;IBGE_DU;IBGE_DU_URBAN;IBGE_DU_RURAL;IBGE_POP\n"+
			"São Paulo;SP;1;12038175;11948362;89813;3574286;3548433;25853;12038175\n"+
			"Rio de Janeiro;RJ;1;6498837;6454174;44663;2239579;2235891;3688;6498837\n")

	writeFixture(t, dir, "products.csv",
		"product_id,product_category_name,product_name_lenght,product_description_lenght,product_photos_qty,product_weight_g,product_length_cm,product_height_cm,product_width_cm\n"+
			"prod-1,moveis_decoracao,40,250,1,900,30,10,20\n"+
			"prod-2,,,,,,,,\n")

	writeFixture(t, dir, "product_category_name_translation.csv",
		"product_category_name,product_category_name_english\n"+
			"moveis_decoracao,furniture_decor\n")

	writeFixture(t, dir, "customers.csv",
		"customer_id,customer_unique_id,customer_city\n"+
			"cust-1,unique-1,sao paulo\n"+
			"cust-2,unique-2,rio de janeiro\n")

	writeFixture(t, dir, "orders.csv",
		"order_id,customer_id,order_status,order_purchase_timestamp,order_approved_at,order_delivered_carrier_date,order_delivered_customer_date,order_estimated_delivery_date\n"+
			"order-1,cust-1,delivered,2017-10-02 10:56:33,2017-10-02 11:07:15,2017-10-04 19:55:00,2017-10-10 21:25:13,2017-10-18 00:00:00\n"+
			"order-2,cust-2,shipped,2017-11-18 19:28:06,2017-11-18 19:45:59,2017-11-22 13:39:59,,2017-12-02 00:00:00\n")

	writeFixture(t, dir, "reviews.csv",
		"review_id,order_id,review_score,review_creation_date,review_answer_timestamp\n"+
			"review-1,order-1,4,2017-10-11 00:00:00,2017-10-12 03:43:48\n")

	writeFixture(t, dir, "sellers.csv",
		"seller_id,seller_city\n"+
			"seller-1,sao paulo\n"+
			"seller-2,rio de janeiro\n")

	writeFixture(t, dir, "order_items.csv",
		"order_id,order_item_id,product_id,seller_id,shipping_limit_date,price,freight_value\n"+
			"order-1,1,prod-1,seller-1,2017-10-06 11:07:15,58.9,13.29\n"+
			"order-1,1,prod-1,seller-1,2017-10-06 11:07:15,58.9,13.29\n"+
			"order-2,1,prod-2,seller-2,2017-11-23 19:45:59,199.0,17.87\n")
}

func testPipeline(t *testing.T, dataDir string) (*Pipeline, duck.Connection, *bytes.Buffer) {
	t.Helper()
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	db, err := duck.Open(ctx, log, t.TempDir()+"/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	extractor, err := extract.New(extract.Config{
		Logger:  log,
		DataDir: dataDir,
	})
	require.NoError(t, err)

	var summary bytes.Buffer
	p, err := New(Config{
		Logger:    log,
		Clock:     clockwork.NewFakeClock(),
		DB:        db,
		Extractor: extractor,
		StartYear: 2017,
		EndYear:   2017,
		Summary:   &summary,
	})
	require.NoError(t, err)

	conn, err := db.Conn(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return p, conn, &summary
}

func TestPipelineRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dataDir := t.TempDir()
	writeSourceFiles(t, dataDir)

	p, conn, summary := testPipeline(t, dataDir)
	require.NoError(t, p.Run(ctx))

	for table, want := range map[string]int{
		"DIM_CITIES":       2,
		"DIM_PRODUCTS":     2,
		"DIM_TIMESTAMP":    365 * 24,
		"DIM_ORDERS":       2,
		"DIM_REVIEWS":      1,
		"FACT_ORDER_ITEMS": 2, // the duplicate item row collapses
	} {
		var count int
		require.NoError(t, conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count), table)
		require.Equal(t, want, count, table)
	}

	t.Run("customer_city_resolves_through_normalization", func(t *testing.T) {
		var cityID string
		err := conn.QueryRowContext(ctx,
			"SELECT customer_city_id FROM DIM_ORDERS WHERE order_id = 'order-1'",
		).Scan(&cityID)
		require.NoError(t, err)
		require.Equal(t, transform.GenerateID("SP", "São Paulo"), cityID)
	})

	t.Run("timestamps_bucket_to_hour_keys", func(t *testing.T) {
		var purchase, delivered sql.NullString
		err := conn.QueryRowContext(ctx,
			"SELECT order_purchase_timestamp, order_delivered_customer_timestamp FROM DIM_ORDERS WHERE order_id = 'order-2'",
		).Scan(&purchase, &delivered)
		require.NoError(t, err)
		require.Equal(t, "2017111819", purchase.String)
		require.False(t, delivered.Valid)
	})

	t.Run("fact_measures_load_as_decimals", func(t *testing.T) {
		var price string
		err := conn.QueryRowContext(ctx,
			"SELECT CAST(price AS VARCHAR) FROM FACT_ORDER_ITEMS WHERE order_id = 'order-2'",
		).Scan(&price)
		require.NoError(t, err)
		require.Equal(t, "199.00", price)
	})

	t.Run("summary_lists_every_table", func(t *testing.T) {
		out := summary.String()
		for _, table := range []string{
			"DIM_CITIES", "DIM_PRODUCTS", "DIM_TIMESTAMP",
			"DIM_ORDERS", "DIM_REVIEWS", "FACT_ORDER_ITEMS",
		} {
			require.Contains(t, out, table)
		}
	})
}

func TestPipelineRunIsRepeatable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dataDir := t.TempDir()
	writeSourceFiles(t, dataDir)

	p, conn, _ := testPipeline(t, dataDir)
	require.NoError(t, p.Run(ctx))
	require.NoError(t, p.Run(ctx))

	var count int
	require.NoError(t, conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM DIM_ORDERS").Scan(&count))
	require.Equal(t, 2, count)
}

func TestPipelineRunMissingSourceFile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dataDir := t.TempDir()
	writeSourceFiles(t, dataDir)
	require.NoError(t, os.Remove(filepath.Join(dataDir, "reviews.csv")))

	p, conn, _ := testPipeline(t, dataDir)
	require.Error(t, p.Run(ctx))

	// Extraction fails before the load stage, so no tables exist.
	var count int
	err := conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM DIM_ORDERS").Scan(&count)
	require.Error(t, err)
}

func TestPipelineConfigValidate(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	extractor, err := extract.New(extract.Config{Logger: log, DataDir: t.TempDir()})
	require.NoError(t, err)

	base := Config{
		Logger:    log,
		Clock:     clockwork.NewFakeClock(),
		DB:        &duck.Warehouse{},
		Extractor: extractor,
		StartYear: 2016,
		EndYear:   2018,
	}

	cfg := base
	cfg.Clock = nil
	_, err = New(cfg)
	require.ErrorContains(t, err, "clock is required")

	cfg = base
	cfg.StartYear = 0
	_, err = New(cfg)
	require.ErrorContains(t, err, "start year is required")

	cfg = base
	cfg.EndYear = 2015
	_, err = New(cfg)
	require.ErrorContains(t, err, "end year must not precede start year")
}
