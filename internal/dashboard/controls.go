package dashboard

type Slider struct {
	Control Control `json:"control"`
	Label   string  `json:"label"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
}

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Controls describes the inputs of the dashboard and their starting state.
type Controls struct {
	Sliders []Slider `json:"sliders"`
	Metrics []Option `json:"metrics"`
	Players []string `json:"players"`
	Default State    `json:"default"`
}

// Sliders span the ranges accepted by Thresholds.
var Sliders = []Slider{
	{Control: ControlMinBallsFaced, Label: "Balls faced", Min: 0, Max: 300, Step: 1},
	{Control: ControlMinStrikeRate, Label: "Strike Rate", Min: 0, Max: 600, Step: 1},
	{Control: ControlMinRuns, Label: "Runs", Min: 0, Max: 320, Step: 1},
}

func NewControls(players []string, defaults State) Controls {
	metrics := make([]Option, len(Metrics))
	for i, m := range Metrics {
		metrics[i] = Option{Value: m.String(), Label: m.Label()}
	}
	return Controls{
		Sliders: Sliders,
		Metrics: metrics,
		Players: players,
		Default: defaults,
	}
}
