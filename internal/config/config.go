package config

import (
	"errors"
	"fmt"
	"os"

	"cricstats/internal/components/telemetry"
	"cricstats/pkg/configutil"

	"dario.cat/mergo"
	"github.com/go-playground/validator/v10"
)

// FileName is the config file searched for from the working directory up.
const FileName = "cricstats.json5"

type Database struct {
	// File is a path to a sqlite database, it may start with `<dev_state>`.
	File string `json:"file" validate:"required_without=Url"`
	// Url points at a remote libsql database, it takes precedence over File.
	Url       string `json:"url" validate:"omitempty,url"`
	AuthToken string `json:"auth_token"`
}

type Scraper struct {
	// StatsUrl and ProfileUrl are format strings taking the player's site id.
	StatsUrl   string `json:"stats_url" validate:"required,contains=%d"`
	ProfileUrl string `json:"profile_url" validate:"required,contains=%d"`
	RosterUrl  string `json:"roster_url" validate:"required,url"`
	// TableIndex selects the innings table by its position on the page
	// instead of by its header signature, 0 keeps the signature lookup.
	TableIndex       int    `json:"table_index" validate:"min=0"`
	UserAgent        string `json:"user_agent"`
	TimeoutSeconds   int    `json:"timeout_seconds" validate:"min=1"`
	BypassCloudflare bool   `json:"bypass_cloudflare"`
	// DumpDir, if set, receives a dump of every http exchange.
	DumpDir string `json:"dump_dir"`
}

type Dashboard struct {
	Port           int      `json:"port" validate:"min=1,max=65535"`
	AllowedOrigins []string `json:"allowed_origins"`
	DefaultPlayer1 string   `json:"default_player_1"`
	DefaultPlayer2 string   `json:"default_player_2"`
}

type Config struct {
	Debug bool `json:"debug"`
	// Timezone is the IANA zone match dates are interpreted in.
	Timezone  string               `json:"timezone"`
	Database  Database             `json:"database"`
	Scraper   Scraper              `json:"scraper"`
	Dashboard Dashboard            `json:"dashboard"`
	Telemetry telemetry.OtlpConfig `json:"telemetry"`
}

func Default() Config {
	return Config{
		Timezone: "UTC",
		Database: Database{
			File: "<dev_state>/cricstats.db",
		},
		Scraper: Scraper{
			StatsUrl:       "https://stats.espncricinfo.com/ci/engine/player/%d.html?class=2;template=results;type=batting;view=innings",
			ProfileUrl:     "https://www.espncricinfo.com/england/content/player/%d.html",
			RosterUrl:      "https://www.espncricinfo.com/england/content/player/caps.html?country=1;class=2",
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
			TimeoutSeconds: 30,
		},
		Dashboard: Dashboard{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:8080"},
			DefaultPlayer1: "chris_woakes",
			DefaultPlayer2: "eoin_morgan",
		},
	}
}

var validate = validator.New()

// Validate checks the ranges and required fields of a config.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Load reads the config at `path`, or searches for FileName from the working
// directory up when path is empty. A missing file is not an error, the
// defaults are used instead. Unset fields are always filled from Default.
func Load(path string) (Config, error) {
	var cfg Config
	var err error
	if path == "" {
		cfg, err = configutil.ReadRecursively[Config](".", FileName)
	} else {
		cfg, err = configutil.ReadConfig[Config](path)
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	err = mergo.Merge(&cfg, Default())
	if err != nil {
		return Config{}, err
	}

	err = cfg.Validate()
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}
