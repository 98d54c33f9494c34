package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTableName(t *testing.T) {
	table := []struct {
		input    string
		expected string
	}{
		{input: "Eoin Morgan", expected: "eoin_morgan"},
		{input: "Chris Woakes ", expected: "chris_woakes"},
		{input: "Keaton D'Oliveira", expected: "keaton_doliveira"},
		{input: "Basil D’Oliveira", expected: "basil_doliveira"},
		{input: "Jos  Buttler", expected: "jos_buttler"},
		{input: "Ben (B.A.) Stokes", expected: "ben_ba_stokes"},
		{input: "", expected: ""},
	}

	for _, row := range table {
		result := TableName(row.input)
		require.Equal(t, row.expected, result, row.input)
		require.Equal(t, result, TableName(result), "TableName is not idempotent for %q", row.input)
	}
}

func TestColumnName(t *testing.T) {
	require.Equal(t, "Start_Date", ColumnName("Start Date"))
	require.Equal(t, "BF", ColumnName(" BF "))
}

func TestClosest(t *testing.T) {
	candidates := []string{"chris_woakes", "eoin_morgan", "joe_root"}

	best, similarity, ok := Closest("eoin_morgan", candidates)
	require.True(t, ok)
	require.Equal(t, "eoin_morgan", best)
	require.Equal(t, float64(1), similarity)

	best, _, ok = Closest("Eoin Morgan", candidates)
	require.True(t, ok)
	require.Equal(t, "eoin_morgan", best)

	best, similarity, ok = Closest("joe roott", candidates)
	require.True(t, ok)
	require.Equal(t, "joe_root", best)
	require.Less(t, similarity, float64(1))

	_, _, ok = Closest("anyone", nil)
	require.False(t, ok)
}
