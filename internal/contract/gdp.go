package contract

import "github.com/JonMunkholm/gdpdash/internal/table"

// GDP returns the built-in contract for country-level GDP tables.
func GDP() *Contract {
	return &Contract{
		Name: "gdp",
		Columns: []ColumnSpec{
			{Name: "country", Type: table.Text, Required: true, Normalize: "title"},
			{Name: "gdp", Type: table.Float, Required: true},
			{
				Name:      "continent",
				Type:      table.Text,
				Normalize: "title",
				Default:   Default{Kind: DefaultLookup, KeyColumn: "country", Table: Continents},
			},
			{Name: "year", Type: table.Int},
			{Name: "country_code", Type: table.Text, Normalize: "upper"},
		},
		Predicates: []Predicate{
			{Name: "gdp_non_negative", Column: "gdp", Kind: NonNegative, Policy: Drop},
		},
		UniqueKey: []string{"country", "year"},
	}
}
