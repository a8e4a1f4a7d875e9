package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/JeremyLoy/config"
)

// scenario shapes one benchmark run: how many entities to spawn, in what
// component mix, and how many churn iterations (insert/remove cycles) to
// run afterward. Loaded from a TOML file (SPEC_FULL.md domain stack item 4),
// then overridden by WHBENCH_-prefixed environment variables.
type scenario struct {
	Entities    int     `toml:"entities"`
	WithHealth  float64 `toml:"with_health_fraction"`
	ChurnRounds int     `toml:"churn_rounds"`
	LogLevel    string  `toml:"log_level" config:"WHBENCH_LOG_LEVEL"`
}

func defaultScenario() scenario {
	return scenario{
		Entities:    100_000,
		WithHealth:  0.5,
		ChurnRounds: 1000,
		LogLevel:    "info",
	}
}

// loadScenario reads path (if non-empty) over the defaults, then applies
// any WHBENCH_-prefixed environment overrides.
func loadScenario(path string) (scenario, error) {
	s := defaultScenario()
	if path != "" {
		if _, err := toml.DecodeFile(path, &s); err != nil {
			return s, fmt.Errorf("whbench: decoding scenario file %s: %w", path, err)
		}
	}
	if err := config.FromEnv().To(&s); err != nil {
		return s, fmt.Errorf("whbench: applying environment overrides: %w", err)
	}
	return s, nil
}

func scenarioFileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
