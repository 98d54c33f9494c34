package dashboard

import (
	"fmt"
	"math"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Metric is a quantity that can be put on an axis of the comparison plot.
type Metric int

const (
	MetricStrikeRate Metric = iota
	MetricRuns
	MetricMatchDate
	MetricBallsFaced
)

var Metrics = []Metric{MetricBallsFaced, MetricMatchDate, MetricRuns, MetricStrikeRate}

func (m Metric) String() string {
	switch m {
	case MetricStrikeRate:
		return "StrikeRate"
	case MetricRuns:
		return "Runs"
	case MetricMatchDate:
		return "MatchDate"
	case MetricBallsFaced:
		return "BallsFaced"
	default:
		return fmt.Sprintf("Metric(%d)", int(m))
	}
}

// Label is the short name shown on an axis.
func (m Metric) Label() string {
	switch m {
	case MetricStrikeRate:
		return "SR"
	case MetricRuns:
		return "Runs"
	case MetricMatchDate:
		return "Match"
	case MetricBallsFaced:
		return "BF"
	default:
		return m.String()
	}
}

// ParseMetric accepts either the name or the label of a metric.
func ParseMetric(s string) (Metric, error) {
	for _, m := range Metrics {
		if s == m.String() || s == m.Label() {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown metric %q", s)
}

func (m Metric) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Metric) UnmarshalText(text []byte) error {
	parsed, err := ParseMetric(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Thresholds are the inclusive lower bounds an innings must reach on every
// statistic to be selected.
type Thresholds struct {
	MinBallsFaced float64 `json:"min_balls_faced" validate:"min=0,max=300"`
	MinStrikeRate float64 `json:"min_strike_rate" validate:"min=0,max=600"`
	MinRuns       float64 `json:"min_runs" validate:"min=0,max=320"`
}

// State is everything the comparison view is computed from. It is a value,
// Apply returns a modified copy.
type State struct {
	Thresholds Thresholds `json:"thresholds"`
	X          Metric     `json:"x" validate:"min=0,max=3"`
	Y          Metric     `json:"y" validate:"min=0,max=3"`
	Player1    string     `json:"player_1"`
	Player2    string     `json:"player_2"`
}

func DefaultState(player1, player2 string) State {
	return State{
		X:       MetricBallsFaced,
		Y:       MetricRuns,
		Player1: player1,
		Player2: player2,
	}
}

var validate = validator.New()

func (s State) Validate() error {
	return validate.Struct(s)
}

// Control names one of the inputs of the dashboard.
type Control string

const (
	ControlMinBallsFaced Control = "min_balls_faced"
	ControlMinStrikeRate Control = "min_strike_rate"
	ControlMinRuns       Control = "min_runs"
	ControlX             Control = "x"
	ControlY             Control = "y"
	ControlPlayer1       Control = "player_1"
	ControlPlayer2       Control = "player_2"
)

// ControlEvent is a change of one input.
type ControlEvent struct {
	Control Control `json:"control"`
	Value   string  `json:"value"`
}

// Apply returns the state with the event applied, the receiver is left
// unchanged. An event that would produce an invalid state is rejected.
func (s State) Apply(event ControlEvent) (State, error) {
	next := s

	parseThreshold := func() (float64, error) {
		value, err := strconv.ParseFloat(event.Value, 64)
		if err != nil {
			return 0, err
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return 0, fmt.Errorf("threshold %q is not finite", event.Value)
		}
		return value, nil
	}

	var err error
	switch event.Control {
	case ControlMinBallsFaced:
		next.Thresholds.MinBallsFaced, err = parseThreshold()
	case ControlMinStrikeRate:
		next.Thresholds.MinStrikeRate, err = parseThreshold()
	case ControlMinRuns:
		next.Thresholds.MinRuns, err = parseThreshold()
	case ControlX:
		next.X, err = ParseMetric(event.Value)
	case ControlY:
		next.Y, err = ParseMetric(event.Value)
	case ControlPlayer1:
		next.Player1 = event.Value
	case ControlPlayer2:
		next.Player2 = event.Value
	default:
		return s, fmt.Errorf("unknown control %q", event.Control)
	}
	if err != nil {
		return s, fmt.Errorf("%s: %w", event.Control, err)
	}

	err = next.Validate()
	if err != nil {
		return s, fmt.Errorf("%s: %w", event.Control, err)
	}
	return next, nil
}
