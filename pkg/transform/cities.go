package transform

import (
	"github.com/mesalabs/olist-warehouse/pkg/extract"
)

// Cities projects the 10-column subset of the Brazilian-cities reference
// table into the cities dimension: is_capital coerced to boolean, the seven
// demographic counters coerced to nullable integers (unparseable values
// become null), and city_id derived from the raw (state_code, city_name)
// spelling.
//
// The id is deliberately computed on the raw, non-normalized spelling, while
// downstream joins normalize city_name separately for matching; two raw
// spellings that normalize alike therefore keep distinct ids. Duplicate
// (state, city) reference rows are not deduplicated.
func Cities(cities *extract.Table) ([]City, error) {
	colCity, err := cities.Column("CITY")
	if err != nil {
		return nil, err
	}
	colState, err := cities.Column("STATE")
	if err != nil {
		return nil, err
	}
	colCapital, err := cities.Column("CAPITAL")
	if err != nil {
		return nil, err
	}

	demographic := []string{
		"IBGE_RES_POP",
		"IBGE_RES_POP_BRAS",
		"IBGE_RES_POP_ESTR",
		"IBGE_DU",
		"IBGE_DU_URBAN",
		"IBGE_DU_RURAL",
		"IBGE_POP",
	}
	demoCols := make([]int, len(demographic))
	for i, name := range demographic {
		c, err := cities.Column(name)
		if err != nil {
			return nil, err
		}
		demoCols[i] = c
	}

	out := make([]City, 0, len(cities.Rows))
	for _, row := range cities.Rows {
		c := City{
			CityName:  row[colCity],
			StateCode: row[colState],
			IsCapital: coerceBool(row[colCapital]),
		}
		c.CityID = GenerateID(c.StateCode, c.CityName)

		c.IBGEResPop = coerceInt(row[demoCols[0]])
		c.IBGEResPopBras = coerceInt(row[demoCols[1]])
		c.IBGEResPopEstr = coerceInt(row[demoCols[2]])
		c.IBGEDu = coerceInt(row[demoCols[3]])
		c.IBGEDuUrban = coerceInt(row[demoCols[4]])
		c.IBGEDuRural = coerceInt(row[demoCols[5]])
		c.IBGEPop = coerceInt(row[demoCols[6]])

		out = append(out, c)
	}

	return out, nil
}

// cityIDsByNormalizedName indexes the cities dimension for join matching:
// normalized city name to city_id, first match winning so lookups stay
// deterministic when the reference data carries duplicate spellings.
func cityIDsByNormalizedName(cities []City) map[string]string {
	ids := make(map[string]string, len(cities))
	for _, c := range cities {
		key := Normalize(nullable(c.CityName))
		if !key.Valid {
			continue
		}
		if _, ok := ids[key.String]; !ok {
			ids[key.String] = c.CityID
		}
	}
	return ids
}
