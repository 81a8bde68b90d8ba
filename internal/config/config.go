// Package config loads agent settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Settings struct {
	// Commander identity on the game server. Used for logging only.
	Commander string `env:"FLEETWARDEN_COMMANDER" envDefault:"commander"`

	// Postgres DSN for the expedition catalog and notification log.
	// Empty keeps everything in memory.
	DatabaseDSN string `env:"FLEETWARDEN_DB_DSN"`

	// Ops API listen address.
	HTTPAddr string `env:"FLEETWARDEN_HTTP_ADDR" envDefault:":8080"`

	LogFormat string `env:"FLEETWARDEN_LOG_FORMAT" envDefault:"text"`
	LogLevel  string `env:"FLEETWARDEN_LOG_LEVEL" envDefault:"info"`

	// Poll loop pacing.
	SleepMin time.Duration `env:"FLEETWARDEN_SLEEP_MIN" envDefault:"10m"`
	SleepMax time.Duration `env:"FLEETWARDEN_SLEEP_MAX" envDefault:"15m"`

	// Defense timing.
	SafetyMargin     time.Duration `env:"FLEETWARDEN_SAFETY_MARGIN" envDefault:"90s"`
	MinActLead       time.Duration `env:"FLEETWARDEN_MIN_ACT_LEAD" envDefault:"3m"`
	MaxActLead       time.Duration `env:"FLEETWARDEN_MAX_ACT_LEAD" envDefault:"10m"`
	TryRecall        bool          `env:"FLEETWARDEN_TRY_RECALL" envDefault:"true"`
	MaxReturnFlight  time.Duration `env:"FLEETWARDEN_MAX_RETURN_FLIGHT" envDefault:"12h"`
	DeepSpaceHolding time.Duration `env:"FLEETWARDEN_DEEP_SPACE_HOLDING" envDefault:"1h"`

	// Minimum spacing between commands sent to the game server.
	CommandMinDelay time.Duration `env:"FLEETWARDEN_COMMAND_MIN_DELAY" envDefault:"2s"`
	CommandTimeout  time.Duration `env:"FLEETWARDEN_COMMAND_TIMEOUT" envDefault:"30s"`

	// Debris harvesting along expedition routes.
	HarvestEnabled   bool  `env:"FLEETWARDEN_HARVEST" envDefault:"true"`
	HarvestSpeed     int   `env:"FLEETWARDEN_HARVEST_SPEED" envDefault:"100"`
	HarvestMinDebris int64 `env:"FLEETWARDEN_HARVEST_MIN_DEBRIS" envDefault:"50000"`

	// Server physics.
	Galaxies            int     `env:"FLEETWARDEN_GALAXIES" envDefault:"9"`
	Systems             int     `env:"FLEETWARDEN_SYSTEMS" envDefault:"499"`
	DonutGalaxy         bool    `env:"FLEETWARDEN_DONUT_GALAXY" envDefault:"true"`
	DonutSystem         bool    `env:"FLEETWARDEN_DONUT_SYSTEM" envDefault:"true"`
	FleetSpeed          int     `env:"FLEETWARDEN_FLEET_SPEED" envDefault:"1"`
	DeuteriumSaveFactor float64 `env:"FLEETWARDEN_DEUT_SAVE_FACTOR" envDefault:"1"`
}

func Load() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	if s.SleepMin > s.SleepMax {
		return Settings{}, fmt.Errorf("sleep window inverted: min %s > max %s", s.SleepMin, s.SleepMax)
	}
	if s.MinActLead > s.MaxActLead {
		return Settings{}, fmt.Errorf("act lead window inverted: min %s > max %s", s.MinActLead, s.MaxActLead)
	}
	return s, nil
}
