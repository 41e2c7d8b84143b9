package transform

import (
	"database/sql"

	"github.com/mesalabs/olist-warehouse/pkg/extract"
)

// customerInfo carries the two customer attributes the orders dimension
// needs.
type customerInfo struct {
	uniqueID sql.NullString
	city     sql.NullString
}

// Orders reshapes the raw orders extract into the orders dimension: left
// join to customers on customer_id, customer city resolved against the
// cities dimension by normalized name (unmatched cities yield a null foreign
// key, never an error), the five lifecycle timestamps bucketed to hourly
// keys, and rows deduplicated by order_id keeping the first occurrence.
func Orders(orders, customers *extract.Table, cities []City) ([]Order, error) {
	custID, err := customers.Column("customer_id")
	if err != nil {
		return nil, err
	}
	custUnique, err := customers.Column("customer_unique_id")
	if err != nil {
		return nil, err
	}
	custCity, err := customers.Column("customer_city")
	if err != nil {
		return nil, err
	}

	// customer_id is expected unique; first occurrence wins.
	byCustomer := make(map[string]customerInfo, len(customers.Rows))
	for _, row := range customers.Rows {
		id := row[custID]
		if id == "" {
			continue
		}
		if _, ok := byCustomer[id]; !ok {
			byCustomer[id] = customerInfo{
				uniqueID: nullable(row[custUnique]),
				city:     nullable(row[custCity]),
			}
		}
	}

	cityIDs := cityIDsByNormalizedName(cities)

	colOrderID, err := orders.Column("order_id")
	if err != nil {
		return nil, err
	}
	colCustomerID, err := orders.Column("customer_id")
	if err != nil {
		return nil, err
	}
	colStatus, err := orders.Column("order_status")
	if err != nil {
		return nil, err
	}

	lifecycle := []string{
		"order_purchase_timestamp",
		"order_approved_at",
		"order_delivered_carrier_date",
		"order_delivered_customer_date",
		"order_estimated_delivery_date",
	}
	tsCols := make([]int, len(lifecycle))
	for i, name := range lifecycle {
		c, err := orders.Column(name)
		if err != nil {
			return nil, err
		}
		tsCols[i] = c
	}

	out := make([]Order, 0, len(orders.Rows))
	seen := make(map[string]struct{}, len(orders.Rows))
	for _, row := range orders.Rows {
		orderID := row[colOrderID]
		if _, ok := seen[orderID]; ok {
			continue
		}
		seen[orderID] = struct{}{}

		o := Order{
			OrderID:     orderID,
			OrderStatus: nullable(row[colStatus]),
		}

		if info, ok := byCustomer[row[colCustomerID]]; ok {
			o.CustomerUniqueID = info.uniqueID
			if city := Normalize(info.city); city.Valid {
				if id, ok := cityIDs[city.String]; ok {
					o.CustomerCityID = sql.NullString{String: id, Valid: true}
				}
			}
		}

		o.PurchaseTimestamp = Bucket(nullable(row[tsCols[0]]))
		o.ApprovedTimestamp = Bucket(nullable(row[tsCols[1]]))
		o.DeliveredCarrierTimestamp = Bucket(nullable(row[tsCols[2]]))
		o.DeliveredCustomerTimestamp = Bucket(nullable(row[tsCols[3]]))
		o.EstimatedDeliveryTimestamp = Bucket(nullable(row[tsCols[4]]))

		out = append(out, o)
	}

	return out, nil
}
