package transform

import (
	"database/sql"
	"fmt"

	"github.com/mesalabs/olist-warehouse/pkg/extract"
)

// Products reshapes the raw products extract into the products dimension:
// left join to the category-name translation table (products without a
// translation keep a null translated name), the numeric size/weight fields
// defaulted to 0 when absent, and the two misspelled source length columns
// ("lenght") renamed. Output row count equals input row count; product_id is
// assumed unique in the source, so there is no dedup step.
func Products(products, translations *extract.Table) ([]Product, error) {
	transCat, err := translations.Column("product_category_name")
	if err != nil {
		return nil, err
	}
	transEng, err := translations.Column("product_category_name_english")
	if err != nil {
		return nil, err
	}

	// Translation is expected to be at most 1:1 on category name; first
	// occurrence wins so the join can never fan out.
	english := make(map[string]string, len(translations.Rows))
	for _, row := range translations.Rows {
		cat := row[transCat]
		if cat == "" {
			continue
		}
		if _, ok := english[cat]; !ok {
			english[cat] = row[transEng]
		}
	}

	colID, err := products.Column("product_id")
	if err != nil {
		return nil, err
	}
	colCat, err := products.Column("product_category_name")
	if err != nil {
		return nil, err
	}

	numeric := []string{
		"product_name_lenght",
		"product_description_lenght",
		"product_photos_qty",
		"product_weight_g",
		"product_length_cm",
		"product_height_cm",
		"product_width_cm",
	}
	numCols := make([]int, len(numeric))
	for i, name := range numeric {
		c, err := products.Column(name)
		if err != nil {
			return nil, err
		}
		numCols[i] = c
	}

	out := make([]Product, 0, len(products.Rows))
	for i, row := range products.Rows {
		p := Product{
			ProductID:    row[colID],
			CategoryName: nullable(row[colCat]),
		}
		if p.CategoryName.Valid {
			if eng, ok := english[p.CategoryName.String]; ok {
				p.CategoryNameEnglish = nullable(eng)
			}
		}

		vals := make([]sql.NullInt64, len(numCols))
		for j, c := range numCols {
			v, err := zeroDefaultInt(row[c])
			if err != nil {
				return nil, fmt.Errorf("products row %d, column %s: %w", i, numeric[j], err)
			}
			vals[j] = v
		}
		p.NameLength = vals[0]
		p.DescriptionLength = vals[1]
		p.PhotosQty = vals[2]
		p.WeightG = vals[3]
		p.LengthCm = vals[4]
		p.HeightCm = vals[5]
		p.WidthCm = vals[6]

		out = append(out, p)
	}

	return out, nil
}
