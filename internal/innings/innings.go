package innings

import (
	"cricstats/pkg/textutil"
)

// Innings is one batting innings of one player. Minutes, BallsFaced, Fours,
// Sixes and StrikeRate hold Missing when the source did not record them,
// Position and InningsNumber hold -1 when the player's table lacks them.
type Innings struct {
	Position      int     `json:"position"`
	InningsNumber int     `json:"innings_number"`
	Runs          float64 `json:"runs"`
	NotOut        bool    `json:"not_out"`
	Minutes       float64 `json:"minutes"`
	BallsFaced    float64 `json:"balls_faced"`
	Fours         float64 `json:"fours"`
	Sixes         float64 `json:"sixes"`
	StrikeRate    float64 `json:"strike_rate"`
	Dismissal     string  `json:"dismissal"`
	Opposition    string  `json:"opposition"`
	Ground        string  `json:"ground"`
	StartDate     string  `json:"start_date"`
}

func NewInnings() Innings {
	return Innings{
		Position:      int(Missing),
		InningsNumber: int(Missing),
		Minutes:       Missing,
		BallsFaced:    Missing,
		Fours:         Missing,
		Sixes:         Missing,
		StrikeRate:    Missing,
	}
}

// IsMissing reports whether a statistic holds the not-recorded sentinel.
func IsMissing(stat float64) bool {
	return stat == Missing
}

// Set assigns a column, given by its header or storage name, to the field
// it belongs to. Unknown columns are ignored.
func (in *Innings) Set(column string, v Value) {
	switch textutil.ColumnName(column) {
	case ColRuns:
		in.Runs = v.Number()
	case ColNotOut:
		in.NotOut = v.Number() != 0
	case ColMinutes:
		in.Minutes = v.Number()
	case ColBallsFaced:
		in.BallsFaced = v.Number()
	case ColFours:
		in.Fours = v.Number()
	case ColSixes:
		in.Sixes = v.Number()
	case ColStrikeRate:
		in.StrikeRate = v.Number()
	case ColPosition:
		in.Position = int(v.Number())
	case ColInnings:
		in.InningsNumber = int(v.Number())
	case ColDismissal:
		in.Dismissal = v.String()
	case ColOpposition:
		in.Opposition = v.String()
	case ColGround:
		in.Ground = v.String()
	case textutil.ColumnName(ColStartDate):
		in.StartDate = v.String()
	}
}
