package store

import "github.com/mesalabs/olist-warehouse/pkg/duck"

// Table configs define each warehouse table's columns in DDL order. Every
// load method emits values in exactly this order; the star schema's foreign
// keys are declared here and enforced by the warehouse.

func TableCities() duck.TableConfig {
	return duck.TableConfig{
		Name: "DIM_CITIES",
		Columns: []string{
			"city_id:VARCHAR",
			"city_name:VARCHAR",
			"state_code:VARCHAR",
			"is_capital:BOOLEAN",
			"ibge_res_pop:INTEGER",
			"ibge_res_pop_bras:INTEGER",
			"ibge_res_pop_estr:INTEGER",
			"ibge_du:INTEGER",
			"ibge_du_urban:INTEGER",
			"ibge_du_rural:INTEGER",
			"ibge_pop:INTEGER",
		},
		Constraints: []string{"PRIMARY KEY (city_id)"},
	}
}

func TableProducts() duck.TableConfig {
	return duck.TableConfig{
		Name: "DIM_PRODUCTS",
		Columns: []string{
			"product_id:VARCHAR",
			"product_category_name:VARCHAR",
			"product_category_name_english:VARCHAR",
			"product_name_length:INTEGER",
			"product_description_length:INTEGER",
			"product_photos_qty:INTEGER",
			"product_weight_g:INTEGER",
			"product_length_cm:INTEGER",
			"product_height_cm:INTEGER",
			"product_width_cm:INTEGER",
		},
		Constraints: []string{"PRIMARY KEY (product_id)"},
	}
}

func TableTimeDimension() duck.TableConfig {
	return duck.TableConfig{
		Name: "DIM_TIMESTAMP",
		Columns: []string{
			"timestamp:VARCHAR",
			"year:INTEGER",
			"month:INTEGER",
			"day:INTEGER",
			"hour:INTEGER",
		},
		Constraints: []string{"PRIMARY KEY (timestamp)"},
	}
}

func TableOrders() duck.TableConfig {
	return duck.TableConfig{
		Name: "DIM_ORDERS",
		Columns: []string{
			"order_id:VARCHAR",
			"customer_unique_id:VARCHAR",
			"customer_city_id:VARCHAR",
			"order_status:VARCHAR",
			"order_purchase_timestamp:VARCHAR",
			"order_approved_timestamp:VARCHAR",
			"order_delivered_carrier_timestamp:VARCHAR",
			"order_delivered_customer_timestamp:VARCHAR",
			"order_estimated_delivery_timestamp:VARCHAR",
		},
		Constraints: []string{
			"PRIMARY KEY (order_id)",
			"FOREIGN KEY (customer_city_id) REFERENCES DIM_CITIES (city_id)",
		},
	}
}

func TableReviews() duck.TableConfig {
	return duck.TableConfig{
		Name: "DIM_REVIEWS",
		Columns: []string{
			"review_id:VARCHAR",
			"order_id:VARCHAR",
			"review_score:INTEGER",
			"review_creation_timestamp:VARCHAR",
			"review_answer_timestamp:VARCHAR",
		},
		Constraints: []string{
			"PRIMARY KEY (review_id)",
			"FOREIGN KEY (order_id) REFERENCES DIM_ORDERS (order_id)",
		},
	}
}

func TableOrderItems() duck.TableConfig {
	return duck.TableConfig{
		Name: "FACT_ORDER_ITEMS",
		Columns: []string{
			"order_item_id:VARCHAR",
			"order_item_position:INTEGER",
			"order_id:VARCHAR",
			"product_id:VARCHAR",
			"seller_id:VARCHAR",
			"seller_city_id:VARCHAR",
			"shipping_limit_timestamp:VARCHAR",
			"price:DECIMAL(12,2)",
			"freight_value:DECIMAL(12,2)",
		},
		Constraints: []string{
			"PRIMARY KEY (order_item_id)",
			"FOREIGN KEY (order_id) REFERENCES DIM_ORDERS (order_id)",
			"FOREIGN KEY (product_id) REFERENCES DIM_PRODUCTS (product_id)",
			"FOREIGN KEY (seller_city_id) REFERENCES DIM_CITIES (city_id)",
		},
	}
}

// allTables lists every table in create order: parents before the children
// that reference them. Drops happen in reverse.
func allTables() []duck.TableConfig {
	return []duck.TableConfig{
		TableCities(),
		TableProducts(),
		TableTimeDimension(),
		TableOrders(),
		TableReviews(),
		TableOrderItems(),
	}
}
