package transform

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesalabs/olist-warehouse/pkg/extract"
)

var itemHeader = []string{
	"order_id", "order_item_id", "product_id", "seller_id",
	"shipping_limit_date", "price", "freight_value",
}

var sellerHeader = []string{"seller_id", "seller_city"}

func TestOrderItems(t *testing.T) {
	t.Parallel()

	t.Run("derives_composite_id_and_resolves_seller_city", func(t *testing.T) {
		t.Parallel()

		cities := testCities(t)
		items := extract.NewTable("order_items", itemHeader, [][]string{
			{"o1", "1", "p1", "s1", "2017-10-06 11:07:15", "58.90", "13.29"},
			{"o1", "2", "p2", "s2", "2017-10-06 11:07:15", "19.9", "8.72"},
		})
		sellers := extract.NewTable("sellers", sellerHeader, [][]string{
			{"s1", "São Paulo"},
			{"s2", "cidade desconhecida"},
		})

		out, err := OrderItems(items, sellers, cities)
		require.NoError(t, err)
		require.Len(t, out, 2)

		first := out[0]
		require.Equal(t, GenerateID("o1", "1"), first.OrderItemID)
		require.Equal(t, int64(1), first.Position.Int64)
		require.Equal(t, cities[0].CityID, first.SellerCityID.String)
		require.Equal(t, "2017100611", first.ShippingLimitTimestamp.String)

		second := out[1]
		require.Equal(t, GenerateID("o1", "2"), second.OrderItemID)
		require.False(t, second.SellerCityID.Valid)
	})

	t.Run("money_is_exact_decimal", func(t *testing.T) {
		t.Parallel()

		items := extract.NewTable("order_items", itemHeader, [][]string{
			{"o1", "1", "p1", "s1", "", "19.9", ""},
		})
		sellers := extract.NewTable("sellers", sellerHeader, nil)

		out, err := OrderItems(items, sellers, nil)
		require.NoError(t, err)

		price := out[0].Price
		require.True(t, price.Valid)
		// Never a binary-float approximation like 19.899999....
		require.Equal(t, "19.90", price.Decimal.StringFixed(2))
		require.False(t, out[0].FreightValue.Valid)
	})

	t.Run("dedup_by_generated_id_keeps_first", func(t *testing.T) {
		t.Parallel()

		items := extract.NewTable("order_items", itemHeader, [][]string{
			{"o1", "1", "p1", "s1", "", "10.00", "1.00"},
			{"o1", "1", "p9", "s9", "", "99.00", "9.00"},
		})
		sellers := extract.NewTable("sellers", sellerHeader, nil)

		out, err := OrderItems(items, sellers, nil)
		require.NoError(t, err)
		require.Len(t, out, 1)
		require.Equal(t, "p1", out[0].ProductID)
	})

	t.Run("unparseable_position_is_structural", func(t *testing.T) {
		t.Parallel()

		items := extract.NewTable("order_items", itemHeader, [][]string{
			{"o1", "first", "p1", "s1", "", "10.00", "1.00"},
		})
		sellers := extract.NewTable("sellers", sellerHeader, nil)

		_, err := OrderItems(items, sellers, nil)
		require.Error(t, err)
	})

	t.Run("unparseable_money_is_structural", func(t *testing.T) {
		t.Parallel()

		items := extract.NewTable("order_items", itemHeader, [][]string{
			{"o1", "1", "p1", "s1", "", "ten bucks", "1.00"},
		})
		sellers := extract.NewTable("sellers", sellerHeader, nil)

		_, err := OrderItems(items, sellers, nil)
		require.Error(t, err)
	})

	t.Run("missing_required_column_is_structural", func(t *testing.T) {
		t.Parallel()

		items := extract.NewTable("order_items", []string{"order_id"}, nil)
		sellers := extract.NewTable("sellers", sellerHeader, nil)

		_, err := OrderItems(items, sellers, nil)
		require.Error(t, err)
	})
}
