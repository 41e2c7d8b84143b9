package transform

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesalabs/olist-warehouse/pkg/extract"
)

var productHeader = []string{
	"product_id",
	"product_category_name",
	"product_name_lenght",
	"product_description_lenght",
	"product_photos_qty",
	"product_weight_g",
	"product_length_cm",
	"product_height_cm",
	"product_width_cm",
}

func translationTable(rows [][]string) *extract.Table {
	return extract.NewTable("product_category_name_translation",
		[]string{"product_category_name", "product_category_name_english"}, rows)
}

func TestProducts(t *testing.T) {
	t.Parallel()

	t.Run("left_join_keeps_untranslated_products", func(t *testing.T) {
		t.Parallel()

		products := extract.NewTable("products", productHeader, [][]string{
			{"p1", "beleza_saude", "40", "287", "1", "225", "16", "10", "14"},
			{"p2", "categoria_sem_traducao", "44", "276", "1", "1000", "30", "18", "20"},
			{"p3", "", "", "", "", "", "", "", ""},
		})
		translations := translationTable([][]string{
			{"beleza_saude", "health_beauty"},
		})

		out, err := Products(products, translations)
		require.NoError(t, err)
		require.Len(t, out, 3)

		require.Equal(t, "health_beauty", out[0].CategoryNameEnglish.String)
		require.True(t, out[0].CategoryNameEnglish.Valid)

		require.False(t, out[1].CategoryNameEnglish.Valid)
		require.True(t, out[1].CategoryName.Valid)

		require.False(t, out[2].CategoryName.Valid)
		require.False(t, out[2].CategoryNameEnglish.Valid)
	})

	t.Run("row_count_preserved_for_empty_translation_table", func(t *testing.T) {
		t.Parallel()

		products := extract.NewTable("products", productHeader, [][]string{
			{"p1", "cama_mesa_banho", "52", "300", "2", "600", "20", "10", "15"},
			{"p2", "esporte_lazer", "48", "250", "3", "700", "25", "12", "17"},
		})

		out, err := Products(products, translationTable(nil))
		require.NoError(t, err)
		require.Len(t, out, 2)
	})

	t.Run("missing_numeric_fields_default_to_zero", func(t *testing.T) {
		t.Parallel()

		products := extract.NewTable("products", productHeader, [][]string{
			{"p1", "beleza_saude", "", "", "", "", "", "", ""},
		})

		out, err := Products(products, translationTable(nil))
		require.NoError(t, err)

		p := out[0]
		for _, v := range []int64{
			p.NameLength.Int64, p.DescriptionLength.Int64, p.PhotosQty.Int64,
			p.WeightG.Int64, p.LengthCm.Int64, p.HeightCm.Int64, p.WidthCm.Int64,
		} {
			require.Equal(t, int64(0), v)
		}
		require.True(t, p.NameLength.Valid)
	})

	t.Run("integral_float_renderings_are_accepted", func(t *testing.T) {
		t.Parallel()

		products := extract.NewTable("products", productHeader, [][]string{
			{"p1", "beleza_saude", "40.0", "287.0", "1.0", "225.0", "16.0", "10.0", "14.0"},
		})

		out, err := Products(products, translationTable(nil))
		require.NoError(t, err)
		require.Equal(t, int64(40), out[0].NameLength.Int64)
		require.Equal(t, int64(225), out[0].WeightG.Int64)
	})

	t.Run("non_numeric_size_field_is_structural", func(t *testing.T) {
		t.Parallel()

		products := extract.NewTable("products", productHeader, [][]string{
			{"p1", "beleza_saude", "forty", "287", "1", "225", "16", "10", "14"},
		})

		_, err := Products(products, translationTable(nil))
		require.Error(t, err)
	})

	t.Run("missing_required_column_is_structural", func(t *testing.T) {
		t.Parallel()

		products := extract.NewTable("products", []string{"product_id"}, [][]string{{"p1"}})

		_, err := Products(products, translationTable(nil))
		require.Error(t, err)
	})
}
