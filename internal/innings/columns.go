package innings

// Headers of the batting-innings table on a player's stats page.
const (
	ColRuns       = "Runs"
	ColMinutes    = "Mins"
	ColBallsFaced = "BF"
	ColFours      = "4s"
	ColSixes      = "6s"
	ColStrikeRate = "SR"
	ColPosition   = "Pos"
	ColDismissal  = "Dismissal"
	ColInnings    = "Inns"
	ColOpposition = "Opposition"
	ColGround     = "Ground"
	ColStartDate  = "Start Date"

	// ColNotOut is derived from the runs cell, it never appears on the page.
	ColNotOut = "Notout"
)

// Missing is the sentinel for a statistic the source did not record.
const Missing = -1.0

// placeholder is what the source prints for a statistic it did not record.
const placeholder = "-"

// notOutMarker trails the runs of an innings that ended undismissed.
const notOutMarker = "*"

// excludedMarkers are runs cells of innings without statistics: did not bat,
// team did not bat and substitute fielding appearance.
var excludedMarkers = map[string]struct{}{
	"DNB":  {},
	"TDNB": {},
	"sub":  {},
}

// coercedColumns are converted to numbers with "-" mapped to Missing.
var coercedColumns = []string{
	ColMinutes,
	ColBallsFaced,
	ColFours,
	ColSixes,
	ColStrikeRate,
	ColPosition,
	ColInnings,
}

type ColumnType int

const (
	TypeText ColumnType = iota
	TypeFloat
	TypeInt
)

func (t ColumnType) SQL() string {
	switch t {
	case TypeFloat:
		return "FLOAT"
	case TypeInt:
		return "INT"
	default:
		return "VARCHAR(255)"
	}
}

func (t ColumnType) String() string {
	switch t {
	case TypeFloat:
		return "float"
	case TypeInt:
		return "int"
	default:
		return "text"
	}
}

var columnTypes = map[string]ColumnType{
	ColRuns:       TypeFloat,
	ColMinutes:    TypeFloat,
	ColBallsFaced: TypeFloat,
	ColFours:      TypeFloat,
	ColSixes:      TypeFloat,
	ColStrikeRate: TypeFloat,
	ColPosition:   TypeFloat,
	ColInnings:    TypeInt,
	ColNotOut:     TypeInt,
}

// ColumnTypeOf gives the storage type of a header. The type follows from the
// coercion rules alone so every player's table agrees on it regardless of
// what their rows happen to contain.
func ColumnTypeOf(header string) ColumnType {
	t, ok := columnTypes[header]
	if !ok {
		return TypeText
	}
	return t
}
