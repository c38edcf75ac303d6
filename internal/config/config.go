// Package config reads runtime settings from the environment. Command-line
// flags in cmd/ override anything set here.
package config

import "github.com/caarlos0/env/v10"

type Config struct {
	TraitsDir string `env:"ORDGEN_TRAITS_DIR" envDefault:"traits"`
	SheetPath string `env:"ORDGEN_SHEET" envDefault:"traits_info.xlsx"`
	OutputDir string `env:"ORDGEN_OUTPUT_DIR" envDefault:"."`

	// Seed pins the randomness source for reproducible collections; 0 means
	// derive from the clock.
	Seed int64 `env:"ORDGEN_SEED" envDefault:"0"`

	BacktrackBudget int `env:"ORDGEN_BACKTRACK_BUDGET" envDefault:"250"`
	RestartBudget   int `env:"ORDGEN_RESTART_BUDGET" envDefault:"10000"`

	// Balanced steers draws toward traits still under their target counts
	// instead of sampling by declared weights alone.
	Balanced bool `env:"ORDGEN_BALANCED" envDefault:"true"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
