package dashboard

import (
	"fmt"
	"time"

	"cricstats/internal/innings"
)

// Filter returns the innings that reach every threshold, in their original
// order. An innings missing a statistic never reaches its threshold.
func Filter(rows []innings.Innings, t Thresholds) []innings.Innings {
	selected := make([]innings.Innings, 0, len(rows))
	for _, in := range rows {
		if in.BallsFaced >= t.MinBallsFaced &&
			in.StrikeRate >= t.MinStrikeRate &&
			in.Runs >= t.MinRuns {
			selected = append(selected, in)
		}
	}
	return selected
}

// DateLayout is how the site prints the start date of a match.
const DateLayout = "2 Jan 2006"

// Point is one innings on the plot, with what the hover card shows.
type Point struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Date       string  `json:"date"`
	BallsFaced float64 `json:"balls_faced"`
	Runs       float64 `json:"runs"`
	StrikeRate float64 `json:"strike_rate"`
	Opposition string  `json:"opposition"`
	Player     string  `json:"player"`
}

type Series struct {
	Player string  `json:"player"`
	Points []Point `json:"points"`
	// Unplotted counts selected innings that have no value on an axis.
	Unplotted int `json:"unplotted"`
}

// MetricValue reads a metric off an innings. Match dates are Unix
// milliseconds of the start date interpreted in `loc`.
func MetricValue(in innings.Innings, m Metric, loc *time.Location) (float64, bool) {
	switch m {
	case MetricStrikeRate:
		return in.StrikeRate, true
	case MetricRuns:
		return in.Runs, true
	case MetricBallsFaced:
		return in.BallsFaced, true
	case MetricMatchDate:
		date, err := time.ParseInLocation(DateLayout, in.StartDate, loc)
		if err != nil {
			return 0, false
		}
		return float64(date.UnixMilli()), true
	default:
		return 0, false
	}
}

// Project turns the selected innings of a player into plot points.
func Project(player string, selected []innings.Innings, x, y Metric, loc *time.Location) Series {
	series := Series{
		Player: player,
		Points: make([]Point, 0, len(selected)),
	}
	for _, in := range selected {
		xv, xok := MetricValue(in, x, loc)
		yv, yok := MetricValue(in, y, loc)
		if !xok || !yok {
			series.Unplotted++
			continue
		}
		series.Points = append(series.Points, Point{
			X:          xv,
			Y:          yv,
			Date:       in.StartDate,
			BallsFaced: in.BallsFaced,
			Runs:       in.Runs,
			StrikeRate: in.StrikeRate,
			Opposition: in.Opposition,
			Player:     player,
		})
	}
	return series
}

// Coverage is the percentage of a player's innings that were selected.
func Coverage(selected, total int) float64 {
	if total <= 0 {
		return 0
	}
	c := 100 * float64(selected) / float64(total)
	return min(max(c, 0), 100)
}

type Panel struct {
	Series   Series  `json:"series"`
	Total    int     `json:"total"`
	Selected int     `json:"selected"`
	Coverage float64 `json:"coverage"`
	// Caption reads like "eoin_morgan: 42.0 % of innings".
	Caption string `json:"caption"`
}

// View is everything needed to draw the comparison.
type View struct {
	State  State    `json:"state"`
	Title  string   `json:"title"`
	XLabel string   `json:"x_label"`
	YLabel string   `json:"y_label"`
	Panels [2]Panel `json:"panels"`
}

func panel(player string, table []innings.Innings, state State, loc *time.Location) Panel {
	selected := Filter(table, state.Thresholds)
	coverage := Coverage(len(selected), len(table))
	return Panel{
		Series:   Project(player, selected, state.X, state.Y, loc),
		Total:    len(table),
		Selected: len(selected),
		Coverage: coverage,
		Caption:  fmt.Sprintf("%s: %.1f %% of innings", player, coverage),
	}
}

// Recompute derives the whole view from a state and the innings of both
// players. Nothing is carried over from a previous view.
func Recompute(state State, table1, table2 []innings.Innings, loc *time.Location) View {
	if loc == nil {
		loc = time.UTC
	}
	return View{
		State:  state,
		Title:  "Player comparison",
		XLabel: state.X.Label(),
		YLabel: state.Y.Label(),
		Panels: [2]Panel{
			panel(state.Player1, table1, state, loc),
			panel(state.Player2, table2, state, loc),
		},
	}
}
