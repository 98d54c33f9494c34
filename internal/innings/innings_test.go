package innings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T, name string) *goquery.Document {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", name))
	require.NoError(t, err)
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	require.NoError(t, err)
	return doc
}

func readFixture(t *testing.T, name string) (Schema, []RawRow) {
	t.Helper()
	table, schema := ReadTable(loadFixture(t, name), DefaultLocator)
	require.NotNil(t, table)
	return schema, ExtractRows(schema, table)
}

func TestSignatureLocatorSkipsCareerSummary(t *testing.T) {
	doc := loadFixture(t, "woakes.html")

	table, schema := ReadTable(doc, DefaultLocator)
	require.NotNil(t, table)
	require.False(t, schema.Has("Mat"))

	expected := Schema{
		"Runs", "Mins", "BF", "4s", "6s", "SR", "Pos", "Dismissal", "Inns",
		"", "Opposition", "Ground", "Start Date", "",
	}
	if diff := cmp.Diff(expected, schema); diff != "" {
		t.Fatal(diff)
	}
}

func TestIndexLocatorMatchesPositionalLayout(t *testing.T) {
	doc := loadFixture(t, "woakes.html")

	_, bySignature := ReadTable(doc, DefaultLocator)
	_, byIndex := ReadTable(doc, IndexLocator{Index: 3})
	require.Equal(t, bySignature, byIndex)

	_, ok := IndexLocator{Index: 12}.Locate(doc)
	require.False(t, ok)
}

func TestNoInningsTable(t *testing.T) {
	doc := loadFixture(t, "no_innings.html")

	table, schema := ReadTable(doc, DefaultLocator)
	require.Nil(t, table)
	require.True(t, schema.Empty())

	_, schema = ReadTable(doc, IndexLocator{Index: 3})
	require.True(t, schema.Empty())
}

func TestSchemaFollowsEachPlayersHeader(t *testing.T) {
	woakes, _ := readFixture(t, "woakes.html")
	compton, _ := readFixture(t, "compton.html")

	require.NotEqual(t, woakes, compton)
	require.Equal(t, Schema{"Runs", "BF", "SR", "Pos", "Inns", "Opposition", "Start Date"}, compton)
	require.True(t, woakes.Has(ColMinutes))
	require.False(t, compton.Has(ColMinutes))
}

func TestCoerceKeepsOrderAndDropsMarkers(t *testing.T) {
	_, rows := readFixture(t, "woakes.html")
	require.Len(t, rows, 4)

	records, err := Coerce(rows)
	require.NoError(t, err)
	require.Len(t, records, 3)

	type runs struct {
		Runs   float64
		NotOut bool
	}
	var got []runs
	for _, r := range records {
		got = append(got, runs{Runs: r.Values[ColRuns].Float, NotOut: r.NotOut})
	}
	expected := []runs{
		{Runs: 45, NotOut: false},
		{Runs: 12, NotOut: true},
		{Runs: 3, NotOut: false},
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Fatal(diff)
	}

	require.Equal(t, []int{0, 1, 3}, []int{records[0].Index, records[1].Index, records[2].Index})
}

func TestCoerceExcludesEveryMarker(t *testing.T) {
	_, rows := readFixture(t, "compton.html")

	records, err := Coerce(rows)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for _, r := range records {
		require.NotContains(t, []string{"sub", "TDNB", "DNB"}, r.Values[ColRuns].String())
	}
	require.Equal(t, 102.0, records[0].Values[ColRuns].Float)
	require.True(t, records[1].NotOut)
}

func TestPlaceholderBecomesMissing(t *testing.T) {
	_, rows := readFixture(t, "woakes.html")
	records, err := Coerce(rows)
	require.NoError(t, err)

	notOut := records[1]
	require.Equal(t, -1.0, notOut.Values[ColBallsFaced].Float)
	require.Equal(t, -1.0, notOut.Values[ColMinutes].Float)
	require.Equal(t, -1.0, notOut.Values[ColStrikeRate].Float)
	require.Equal(t, IntValue(2), notOut.Values[ColInnings])

	in := notOut.Innings()
	require.True(t, IsMissing(in.BallsFaced))
	require.Equal(t, 12.0, in.Runs)
	require.True(t, in.NotOut)
	require.Equal(t, 9, in.Position)
	require.Equal(t, "v Ireland", in.Opposition)
	require.Equal(t, "3 Sep 2013", in.StartDate)
}

func TestShortRowDefaultsToZero(t *testing.T) {
	_, rows := readFixture(t, "compton.html")
	last := rows[len(rows)-1]
	require.Equal(t, "0", last.Cells[ColInnings])
	require.Equal(t, "0", last.Cells[ColOpposition])

	record, err := CoerceRow(last)
	require.NoError(t, err)
	require.Equal(t, IntValue(0), record.Values[ColInnings])
}

func TestMalformedCellAbortsCoercion(t *testing.T) {
	_, rows := readFixture(t, "malformed.html")

	records, err := Coerce(rows)
	require.Nil(t, records)
	require.ErrorIs(t, err, ErrMalformedCell)

	var cellErr *CellError
	require.True(t, errors.As(err, &cellErr))
	require.Equal(t, ColBallsFaced, cellErr.Column)
	require.Equal(t, "n/a", cellErr.Value)
	require.Equal(t, 1, cellErr.Row)
}

func TestIntegerColumnOutOfRange(t *testing.T) {
	row := func(inns string) RawRow {
		return RawRow{Index: 2, Cells: map[string]string{ColRuns: "10", ColInnings: inns}}
	}

	record, err := CoerceRow(row("2"))
	require.NoError(t, err)
	require.Equal(t, IntValue(2), record.Values[ColInnings])

	record, err = CoerceRow(row("-"))
	require.NoError(t, err)
	require.Equal(t, IntValue(-1), record.Values[ColInnings])

	for _, inns := range []string{"1e19", "-1e19", "9223372036854775808"} {
		_, err := CoerceRow(row(inns))
		require.ErrorIs(t, err, ErrMalformedCell, inns)

		var cellErr *CellError
		require.True(t, errors.As(err, &cellErr))
		require.Equal(t, ColInnings, cellErr.Column)
		require.Equal(t, 2, cellErr.Row)
	}
}

func TestParseRuns(t *testing.T) {
	table := []struct {
		raw    string
		runs   float64
		notOut bool
		err    bool
	}{
		{raw: "45", runs: 45},
		{raw: "12*", runs: 12, notOut: true},
		{raw: " 0* ", runs: 0, notOut: true},
		{raw: "*12", err: true},
		{raw: "1*2", err: true},
		{raw: "DNB", err: true},
		{raw: "", err: true},
		{raw: "NaN", err: true},
	}

	for _, row := range table {
		runs, notOut, err := ParseRuns(row.raw)
		if row.err {
			require.Error(t, err, row.raw)
			continue
		}
		require.NoError(t, err, row.raw)
		require.Equal(t, row.runs, runs, row.raw)
		require.Equal(t, row.notOut, notOut, row.raw)
	}
}

func TestRunsCellIsNeverOptional(t *testing.T) {
	row := RawRow{Index: 4, Cells: map[string]string{ColRuns: "absent", ColBallsFaced: "3"}}
	_, err := CoerceRow(row)

	var cellErr *CellError
	require.True(t, errors.As(err, &cellErr))
	require.Equal(t, ColRuns, cellErr.Column)
	require.Equal(t, 4, cellErr.Row)
}

func TestColumnsAreDeterministic(t *testing.T) {
	woakes, _ := readFixture(t, "woakes.html")

	got := woakes.Columns()
	expected := []Column{
		{Header: "Runs", Name: "Runs", Type: TypeFloat},
		{Header: "Mins", Name: "Mins", Type: TypeFloat},
		{Header: "BF", Name: "BF", Type: TypeFloat},
		{Header: "4s", Name: "4s", Type: TypeFloat},
		{Header: "6s", Name: "6s", Type: TypeFloat},
		{Header: "SR", Name: "SR", Type: TypeFloat},
		{Header: "Pos", Name: "Pos", Type: TypeFloat},
		{Header: "Dismissal", Name: "Dismissal", Type: TypeText},
		{Header: "Inns", Name: "Inns", Type: TypeInt},
		{Header: "Opposition", Name: "Opposition", Type: TypeText},
		{Header: "Ground", Name: "Ground", Type: TypeText},
		{Header: "Start Date", Name: "Start_Date", Type: TypeText},
		{Header: "Notout", Name: "Notout", Type: TypeInt},
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Fatal(diff)
	}

	require.Equal(t, "FLOAT", ColumnTypeOf("SR").SQL())
	require.Equal(t, "INT", ColumnTypeOf("Inns").SQL())
	require.Equal(t, "VARCHAR(255)", ColumnTypeOf("Opposition").SQL())
}

func TestRecordRow(t *testing.T) {
	schema := Schema{"Runs", "BF", "", "Opposition"}
	record := Record{
		NotOut: true,
		Values: map[string]Value{
			"Runs":       FloatValue(12),
			"BF":         FloatValue(Missing),
			"Opposition": TextValue("v Ireland"),
		},
	}
	require.Equal(t, []any{12.0, -1.0, "v Ireland", int64(1)}, record.Row(schema.Columns()))
}
