package dashboard

import (
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"cricstats/internal/innings"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func inn(runs, bf, sr float64, date, opposition string) innings.Innings {
	in := innings.NewInnings()
	in.Runs = runs
	in.BallsFaced = bf
	in.StrikeRate = sr
	in.StartDate = date
	in.Opposition = opposition
	return in
}

var woakes = []innings.Innings{
	inn(45, 40, 112.5, "16 Jan 2011", "v Australia"),
	inn(12, -1, -1, "3 Sep 2013", "v Ireland"),
	inn(3, 7, 42.85, "1 Dec 2014", "v Sri Lanka"),
	inn(95, 88, 107.95, "not a date", "v Pakistan"),
}

var morgan = []innings.Innings{
	inn(124, 71, 174.64, "18 Jun 2019", "v Afghanistan"),
	inn(0, 1, 0, "5 Jul 2019", "v New Zealand"),
}

func TestFilter(t *testing.T) {
	selected := Filter(woakes, Thresholds{MinBallsFaced: 10, MinRuns: 40})
	require.Equal(t, []innings.Innings{woakes[0], woakes[3]}, selected)

	require.Len(t, Filter(woakes, Thresholds{}), 3)
	require.Empty(t, Filter(nil, Thresholds{}))
}

func TestFilterIsPure(t *testing.T) {
	input := append([]innings.Innings(nil), woakes...)
	Filter(input, Thresholds{MinRuns: 50})
	require.Equal(t, woakes, input)
}

func TestFilterIsIdempotent(t *testing.T) {
	for _, th := range []Thresholds{{}, {MinBallsFaced: 10}, {MinStrikeRate: 100, MinRuns: 10}} {
		once := Filter(woakes, th)
		require.Equal(t, once, Filter(once, th))
	}
}

func TestFilterIsMonotonic(t *testing.T) {
	rows := append(append([]innings.Innings(nil), woakes...), morgan...)
	bump := []func(Thresholds, float64) Thresholds{
		func(th Thresholds, v float64) Thresholds { th.MinBallsFaced = v; return th },
		func(th Thresholds, v float64) Thresholds { th.MinStrikeRate = v; return th },
		func(th Thresholds, v float64) Thresholds { th.MinRuns = v; return th },
	}
	for _, set := range bump {
		previous := len(rows) + 1
		for v := 0.0; v <= 200; v += 5 {
			n := len(Filter(rows, set(Thresholds{}, v)))
			require.LessOrEqual(t, n, previous)
			previous = n
		}
	}
}

func TestMissingStatisticNeverSelected(t *testing.T) {
	for _, threshold := range []float64{0, 0.5, 10} {
		selected := Filter(woakes, Thresholds{MinBallsFaced: threshold})
		for _, in := range selected {
			require.False(t, innings.IsMissing(in.BallsFaced))
		}
	}
}

func TestCoverage(t *testing.T) {
	require.Equal(t, 0.0, Coverage(0, 0))
	require.Equal(t, 50.0, Coverage(2, 4))
	require.Equal(t, 100.0, Coverage(4, 4))
	require.InDelta(t, 33.333, Coverage(1, 3), 0.001)

	for total := 0; total < 20; total++ {
		for selected := 0; selected <= total; selected++ {
			c := Coverage(selected, total)
			require.GreaterOrEqual(t, c, 0.0)
			require.LessOrEqual(t, c, 100.0)
		}
	}
}

func TestProject(t *testing.T) {
	series := Project("chris_woakes", Filter(woakes, Thresholds{}), MetricMatchDate, MetricRuns, time.UTC)
	require.Equal(t, 1, series.Unplotted)
	require.Len(t, series.Points, 2)

	expected := Point{
		X:          float64(time.Date(2011, time.January, 16, 0, 0, 0, 0, time.UTC).UnixMilli()),
		Y:          45,
		Date:       "16 Jan 2011",
		BallsFaced: 40,
		Runs:       45,
		StrikeRate: 112.5,
		Opposition: "v Australia",
		Player:     "chris_woakes",
	}
	if diff := cmp.Diff(expected, series.Points[0]); diff != "" {
		t.Fatal(diff)
	}

	series = Project("chris_woakes", Filter(woakes, Thresholds{}), MetricBallsFaced, MetricStrikeRate, time.UTC)
	require.Zero(t, series.Unplotted)
	require.Equal(t, []float64{40, 7, 88}, []float64{series.Points[0].X, series.Points[1].X, series.Points[2].X})
}

func TestMatchDateFollowsLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*60*60+30*60)
	utc, ok := MetricValue(woakes[0], MetricMatchDate, time.UTC)
	require.True(t, ok)
	local, ok := MetricValue(woakes[0], MetricMatchDate, loc)
	require.True(t, ok)
	require.Equal(t, float64((5*60+30)*60*1000), utc-local)
}

func TestRecompute(t *testing.T) {
	state := DefaultState("chris_woakes", "eoin_morgan")
	state.Thresholds.MinRuns = 10

	view := Recompute(state, woakes, morgan, nil)
	require.Equal(t, "BF", view.XLabel)
	require.Equal(t, "Runs", view.YLabel)

	require.Equal(t, 2, view.Panels[0].Selected)
	require.Equal(t, 4, view.Panels[0].Total)
	require.Equal(t, 50.0, view.Panels[0].Coverage)
	require.Equal(t, "chris_woakes: 50.0 % of innings", view.Panels[0].Caption)

	require.Equal(t, 1, view.Panels[1].Selected)
	require.Equal(t, 50.0, view.Panels[1].Coverage)
	require.Equal(t, "eoin_morgan", view.Panels[1].Series.Points[0].Player)

	require.Equal(t, view, Recompute(state, woakes, morgan, time.UTC))

	empty := Recompute(state, nil, nil, nil)
	require.Zero(t, empty.Panels[0].Coverage)
	require.Empty(t, empty.Panels[1].Series.Points)
}

func TestApply(t *testing.T) {
	state := DefaultState("chris_woakes", "eoin_morgan")

	next, err := state.Apply(ControlEvent{Control: ControlMinBallsFaced, Value: "25"})
	require.NoError(t, err)
	require.Equal(t, 25.0, next.Thresholds.MinBallsFaced)
	require.Zero(t, state.Thresholds.MinBallsFaced)

	next, err = next.Apply(ControlEvent{Control: ControlX, Value: "Match"})
	require.NoError(t, err)
	require.Equal(t, MetricMatchDate, next.X)

	next, err = next.Apply(ControlEvent{Control: ControlPlayer2, Value: "joe_root"})
	require.NoError(t, err)
	require.Equal(t, "joe_root", next.Player2)

	rejected := []ControlEvent{
		{Control: ControlMinBallsFaced, Value: "301"},
		{Control: ControlMinStrikeRate, Value: "-1"},
		{Control: ControlMinRuns, Value: "NaN"},
		{Control: ControlMinRuns, Value: "many"},
		{Control: ControlY, Value: "Wickets"},
		{Control: "colour", Value: "red"},
	}
	for _, event := range rejected {
		unchanged, err := next.Apply(event)
		require.Error(t, err, event)
		require.Equal(t, next, unchanged)
	}
}

func TestStateJSON(t *testing.T) {
	state := DefaultState("a", "b")
	encoded, err := json.Marshal(state)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"thresholds": {"min_balls_faced": 0, "min_strike_rate": 0, "min_runs": 0},
		"x": "BallsFaced",
		"y": "Runs",
		"player_1": "a",
		"player_2": "b"
	}`, string(encoded))

	var decoded State
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	require.Equal(t, state, decoded)
}

func TestControls(t *testing.T) {
	controls := NewControls([]string{"chris_woakes"}, DefaultState("chris_woakes", "eoin_morgan"))
	require.Len(t, controls.Sliders, 3)
	require.Equal(t, 600.0, controls.Sliders[1].Max)
	require.Equal(t, Option{Value: "BallsFaced", Label: "BF"}, controls.Metrics[0])

	for _, slider := range controls.Sliders {
		state, err := DefaultState("a", "b").Apply(ControlEvent{
			Control: slider.Control,
			Value:   strconv.FormatFloat(slider.Max, 'f', -1, 64),
		})
		require.NoError(t, err)
		require.NoError(t, state.Validate())
	}
}
