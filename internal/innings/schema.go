package innings

import (
	"slices"

	"cricstats/pkg/htmlutil"
	"cricstats/pkg/textutil"

	"github.com/PuerkitoBio/goquery"
)

// Schema is the ordered list of headers of one player's innings table. The
// column set differs between players so it is inferred fresh for each one.
type Schema []string

// Column is a persisted column of a player table.
type Column struct {
	// Header is the name on the page.
	Header string
	// Name is the storage name.
	Name string
	Type ColumnType
}

// InferSchema reads the header cells of the first row of a table.
func InferSchema(table *goquery.Selection) Schema {
	if table == nil || table.Length() == 0 {
		return nil
	}

	var schema Schema
	table.Find("tr").First().Find("th").Each(func(_ int, th *goquery.Selection) {
		schema = append(schema, htmlutil.CleanText(th.Text()))
	})
	return schema
}

func (s Schema) Empty() bool {
	for _, h := range s {
		if h != "" {
			return false
		}
	}
	return true
}

func (s Schema) Has(header string) bool {
	return slices.Contains(s, header)
}

// Columns lists what gets persisted for this schema in schema order: named
// headers only (unnamed link and icon columns are dropped), each once,
// followed by the derived not-out flag.
func (s Schema) Columns() []Column {
	seen := map[string]struct{}{}
	var columns []Column
	for _, header := range s {
		if header == "" || header == ColNotOut {
			continue
		}
		name := textutil.ColumnName(header)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		columns = append(columns, Column{
			Header: header,
			Name:   name,
			Type:   ColumnTypeOf(header),
		})
	}
	return append(columns, Column{
		Header: ColNotOut,
		Name:   ColNotOut,
		Type:   ColumnTypeOf(ColNotOut),
	})
}
