package transform

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/mesalabs/olist-warehouse/pkg/extract"
)

// OrderItems reshapes the raw order-items extract into the order-items fact
// table: seller city resolved through the cities dimension by normalized
// name and joined in by seller_id, the source order_item_id cast to an
// ordinal position, the composite surrogate order_item_id derived from
// (order_id, position), price/freight converted to exact decimals (null
// source stays null), the shipping limit bucketed, and rows deduplicated by
// the generated id keeping the first occurrence.
//
// A position or money value that is present but unparseable is a structural
// error: the row's identity (or its only measures) cannot be derived, so the
// run aborts.
func OrderItems(items, sellers *extract.Table, cities []City) ([]OrderItem, error) {
	sellerID, err := sellers.Column("seller_id")
	if err != nil {
		return nil, err
	}
	sellerCity, err := sellers.Column("seller_city")
	if err != nil {
		return nil, err
	}

	cityIDs := cityIDsByNormalizedName(cities)

	// seller_id -> seller_city_id, resolved once; first occurrence wins.
	sellerCityIDs := make(map[string]sql.NullString, len(sellers.Rows))
	for _, row := range sellers.Rows {
		id := row[sellerID]
		if id == "" {
			continue
		}
		if _, ok := sellerCityIDs[id]; ok {
			continue
		}
		var cityID sql.NullString
		if city := Normalize(nullable(row[sellerCity])); city.Valid {
			if resolved, ok := cityIDs[city.String]; ok {
				cityID = sql.NullString{String: resolved, Valid: true}
			}
		}
		sellerCityIDs[id] = cityID
	}

	colOrderID, err := items.Column("order_id")
	if err != nil {
		return nil, err
	}
	colPosition, err := items.Column("order_item_id")
	if err != nil {
		return nil, err
	}
	colProductID, err := items.Column("product_id")
	if err != nil {
		return nil, err
	}
	colSellerID, err := items.Column("seller_id")
	if err != nil {
		return nil, err
	}
	colShipping, err := items.Column("shipping_limit_date")
	if err != nil {
		return nil, err
	}
	colPrice, err := items.Column("price")
	if err != nil {
		return nil, err
	}
	colFreight, err := items.Column("freight_value")
	if err != nil {
		return nil, err
	}

	out := make([]OrderItem, 0, len(items.Rows))
	seen := make(map[string]struct{}, len(items.Rows))
	for i, row := range items.Rows {
		position, err := parseInt(row[colPosition])
		if err != nil {
			return nil, fmt.Errorf("order_items row %d: order_item_id: %w", i, err)
		}

		item := OrderItem{
			Position:  sql.NullInt64{Int64: position, Valid: true},
			OrderID:   row[colOrderID],
			ProductID: row[colProductID],
			SellerID:  nullable(row[colSellerID]),
		}
		item.OrderItemID = GenerateID(item.OrderID, strconv.FormatInt(position, 10))

		if _, ok := seen[item.OrderItemID]; ok {
			continue
		}
		seen[item.OrderItemID] = struct{}{}

		if item.SellerID.Valid {
			item.SellerCityID = sellerCityIDs[item.SellerID.String]
		}

		item.ShippingLimitTimestamp = Bucket(nullable(row[colShipping]))

		item.Price, err = coerceDecimal(row[colPrice])
		if err != nil {
			return nil, fmt.Errorf("order_items row %d: price: %w", i, err)
		}
		item.FreightValue, err = coerceDecimal(row[colFreight])
		if err != nil {
			return nil, fmt.Errorf("order_items row %d: freight_value: %w", i, err)
		}

		out = append(out, item)
	}

	return out, nil
}

// coerceDecimal converts a money cell to an exact decimal. Null stays null;
// a non-numeric value is a structural error, not a silent float.
func coerceDecimal(s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("not a decimal: %q", s)
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}
