package innings

import (
	"github.com/PuerkitoBio/goquery"
)

// Locator finds the batting-innings table on a player's stats page.
type Locator interface {
	Locate(doc *goquery.Document) (*goquery.Selection, bool)
}

// SignatureLocator picks the first table whose header has every Required
// column and none of the Forbidden ones.
type SignatureLocator struct {
	Required  []string
	Forbidden []string
}

// DefaultLocator recognizes the innings list by its Runs, BF and SR columns.
// Career summary tables carry the same columns plus a matches count, so a
// "Mat" column rules a table out.
var DefaultLocator = SignatureLocator{
	Required:  []string{ColRuns, ColBallsFaced, ColStrikeRate},
	Forbidden: []string{"Mat"},
}

func (l SignatureLocator) matches(schema Schema) bool {
	for _, col := range l.Required {
		if !schema.Has(col) {
			return false
		}
	}
	for _, col := range l.Forbidden {
		if schema.Has(col) {
			return false
		}
	}
	return true
}

func (l SignatureLocator) Locate(doc *goquery.Document) (*goquery.Selection, bool) {
	var found *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		if l.matches(InferSchema(table)) {
			found = table
			return false
		}
		return true
	})
	return found, found != nil
}

// IndexLocator picks a table by its position among every table on the page.
// It depends on the incidental layout of the page, prefer SignatureLocator.
type IndexLocator struct {
	Index int
}

func (l IndexLocator) Locate(doc *goquery.Document) (*goquery.Selection, bool) {
	table := doc.Find("table").Eq(l.Index)
	if table.Length() == 0 {
		return nil, false
	}
	return table, true
}

// ReadTable locates the innings table and infers its schema, the schema is
// empty if there is no such table.
func ReadTable(doc *goquery.Document, locator Locator) (*goquery.Selection, Schema) {
	table, ok := locator.Locate(doc)
	if !ok {
		return nil, nil
	}
	schema := InferSchema(table)
	if schema.Empty() {
		return nil, nil
	}
	return table, schema
}
