package innings

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"cricstats/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// ErrMalformedCell matches every *CellError.
var ErrMalformedCell = errors.New("malformed numeric cell")

// CellError is returned when a cell that must be numeric is neither a number
// nor the "-" placeholder. It means the page no longer has the format the
// parser expects.
type CellError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("row %d: column %q: malformed numeric value %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *CellError) Unwrap() error {
	return e.Err
}

func (e *CellError) Is(target error) bool {
	return target == ErrMalformedCell
}

// RawRow is one data row of the innings table, header to cell text.
type RawRow struct {
	// Index is the position of the row among the data rows of the table.
	Index int
	Cells map[string]string
}

// ExtractRows maps every data row under the header to its cell texts.
// Headers without a cell in a short row default to "0". When a header
// repeats, the rightmost cell wins. Rows without data cells are skipped.
func ExtractRows(schema Schema, table *goquery.Selection) []RawRow {
	if table == nil {
		return nil
	}

	trs := table.Find("tr")
	if trs.Length() < 2 {
		return nil
	}

	var rows []RawRow
	index := 0
	trs.Slice(1, goquery.ToEnd).Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() == 0 {
			return
		}

		row := RawRow{
			Index: index,
			Cells: make(map[string]string, len(schema)),
		}
		index++

		for _, header := range schema {
			row.Cells[header] = "0"
		}
		cells.Each(func(i int, td *goquery.Selection) {
			if i >= len(schema) {
				return
			}
			row.Cells[schema[i]] = htmlutil.CleanText(td.Text())
		})
		rows = append(rows, row)
	})
	return rows
}

// IsExcluded reports whether a runs cell marks an innings without statistics.
func IsExcluded(runs string) bool {
	_, ok := excludedMarkers[strings.TrimSpace(runs)]
	return ok
}

// ParseRuns parses a runs cell, a trailing "*" marks a not out innings.
func ParseRuns(raw string) (runs float64, notOut bool, err error) {
	text := strings.TrimSpace(raw)
	if strings.HasSuffix(text, notOutMarker) {
		notOut = true
		text = strings.TrimSpace(strings.TrimSuffix(text, notOutMarker))
	}
	runs, err = parseNumber(text)
	if err != nil {
		return 0, false, err
	}
	return runs, notOut, nil
}

var errNotFinite = errors.New("not a finite number")
var errOutOfRange = errors.New("out of integer range")

// parseInt parses an integer column. Fractions are truncated.
func parseInt(raw string) (int64, error) {
	f, err := parseStat(raw)
	if err != nil {
		return 0, err
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, errOutOfRange
	}
	return int64(f), nil
}

func parseNumber(text string) (float64, error) {
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, errNotFinite
	}
	return value, nil
}

// parseStat parses a coerced column, mapping the "-" placeholder to Missing.
func parseStat(raw string) (float64, error) {
	text := strings.TrimSpace(raw)
	if text == placeholder {
		return Missing, nil
	}
	return parseNumber(text)
}
