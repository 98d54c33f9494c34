package innings

import (
	"strconv"
)

// Value is one typed cell of a coerced row.
type Value struct {
	Type  ColumnType
	Float float64
	Int   int64
	Text  string
}

func FloatValue(f float64) Value {
	return Value{Type: TypeFloat, Float: f}
}

func IntValue(i int64) Value {
	return Value{Type: TypeInt, Int: i}
}

func TextValue(s string) Value {
	return Value{Type: TypeText, Text: s}
}

// Any returns the value as what database/sql expects for its type.
func (v Value) Any() any {
	switch v.Type {
	case TypeFloat:
		return v.Float
	case TypeInt:
		return v.Int
	default:
		return v.Text
	}
}

// Number returns the value as a float64, text parses as Missing.
func (v Value) Number() float64 {
	switch v.Type {
	case TypeFloat:
		return v.Float
	case TypeInt:
		return float64(v.Int)
	default:
		f, err := parseStat(v.Text)
		if err != nil {
			return Missing
		}
		return f
	}
}

func (v Value) String() string {
	switch v.Type {
	case TypeFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case TypeInt:
		return strconv.FormatInt(v.Int, 10)
	default:
		return v.Text
	}
}

// Record is a fully coerced innings row, keyed by header.
type Record struct {
	Index  int
	NotOut bool
	Values map[string]Value
}

// Row lists the record's values in column order, ready for insertion.
func (r Record) Row(columns []Column) []any {
	row := make([]any, len(columns))
	for i, col := range columns {
		if col.Header == ColNotOut {
			row[i] = boolToInt(r.NotOut)
			continue
		}
		v, ok := r.Values[col.Header]
		if !ok {
			row[i] = nil
			continue
		}
		row[i] = v.Any()
	}
	return row
}

// Innings projects the record onto the typed innings struct.
func (r Record) Innings() Innings {
	in := NewInnings()
	for header, v := range r.Values {
		in.Set(header, v)
	}
	in.NotOut = r.NotOut
	return in
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// CoerceRow types a raw row that is not excluded. The runs cell must parse,
// the coerced columns must be numeric or "-", and every other cell is kept
// as text. Any failure rejects the whole row.
func CoerceRow(row RawRow) (Record, error) {
	record := Record{
		Index:  row.Index,
		Values: make(map[string]Value, len(row.Cells)+1),
	}

	rawRuns := row.Cells[ColRuns]
	runs, notOut, err := ParseRuns(rawRuns)
	if err != nil {
		return Record{}, &CellError{Row: row.Index, Column: ColRuns, Value: rawRuns, Err: err}
	}
	record.NotOut = notOut

	for header, raw := range row.Cells {
		if ColumnTypeOf(header) == TypeText {
			record.Values[header] = TextValue(raw)
		}
	}
	record.Values[ColRuns] = FloatValue(runs)

	for _, col := range coercedColumns {
		raw, ok := row.Cells[col]
		if !ok {
			continue
		}
		if ColumnTypeOf(col) == TypeInt {
			i, err := parseInt(raw)
			if err != nil {
				return Record{}, &CellError{Row: row.Index, Column: col, Value: raw, Err: err}
			}
			record.Values[col] = IntValue(i)
			continue
		}
		f, err := parseStat(raw)
		if err != nil {
			return Record{}, &CellError{Row: row.Index, Column: col, Value: raw, Err: err}
		}
		record.Values[col] = FloatValue(f)
	}

	return record, nil
}

// Coerce runs the whole row pipeline: rows with an excluded runs marker are
// dropped and every other row is coerced, in order. The first malformed
// cell aborts with a *CellError and no records.
func Coerce(rows []RawRow) ([]Record, error) {
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		if IsExcluded(row.Cells[ColRuns]) {
			continue
		}
		record, err := CoerceRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
