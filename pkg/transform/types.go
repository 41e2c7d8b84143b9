// Package transform reshapes raw tabular extracts into warehouse-ready
// dimension and fact tables: deterministic surrogate keys, string
// normalization for cross-table join keys, hourly timestamp bucketing, and
// the star-schema transformers themselves.
//
// Null policy: absent or unparseable values become explicit nullable wrappers
// in the output, never sentinels, with the single exception of the
// zero-defaulted numeric group on products.
package transform

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// City is a row of the cities dimension. CityID is a pure function of the raw
// (state_code, city_name) spelling.
type City struct {
	CityID        string
	CityName      string
	StateCode     string
	IsCapital     bool
	IBGEResPop    sql.NullInt64
	IBGEResPopBras sql.NullInt64
	IBGEResPopEstr sql.NullInt64
	IBGEDu        sql.NullInt64
	IBGEDuUrban   sql.NullInt64
	IBGEDuRural   sql.NullInt64
	IBGEPop       sql.NullInt64
}

// Product is a row of the products dimension. The numeric size/weight fields
// default to 0 when absent in the source.
type Product struct {
	ProductID           string
	CategoryName        sql.NullString
	CategoryNameEnglish sql.NullString
	NameLength          sql.NullInt64
	DescriptionLength   sql.NullInt64
	PhotosQty           sql.NullInt64
	WeightG             sql.NullInt64
	LengthCm            sql.NullInt64
	HeightCm            sql.NullInt64
	WidthCm             sql.NullInt64
}

// TimeBucket is a row of the hourly time dimension. Timestamp is the
// YYYYMMDDHH key every bucketed foreign key points at.
type TimeBucket struct {
	Timestamp string
	Year      int
	Month     int
	Day       int
	Hour      int
}

// Order is a row of the orders dimension, one per order_id.
type Order struct {
	OrderID                      string
	CustomerUniqueID             sql.NullString
	CustomerCityID               sql.NullString
	OrderStatus                  sql.NullString
	PurchaseTimestamp            sql.NullString
	ApprovedTimestamp            sql.NullString
	DeliveredCarrierTimestamp    sql.NullString
	DeliveredCustomerTimestamp   sql.NullString
	EstimatedDeliveryTimestamp   sql.NullString
}

// Review is a row of the reviews dimension. The free-text comment fields are
// dropped in the transform.
type Review struct {
	ReviewID          string
	OrderID           string
	Score             sql.NullInt64
	CreationTimestamp sql.NullString
	AnswerTimestamp   sql.NullString
}

// OrderItem is a row of the order-items fact table. OrderItemID is derived
// from (order_id, position).
type OrderItem struct {
	OrderItemID            string
	Position               sql.NullInt64
	OrderID                string
	ProductID              string
	SellerID               sql.NullString
	SellerCityID           sql.NullString
	ShippingLimitTimestamp sql.NullString
	Price                  decimal.NullDecimal
	FreightValue           decimal.NullDecimal
}

// nullable wraps a raw cell: empty source cells are nulls.
func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
