package main

import (
	"fmt"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/archetype-io/warehouse"
)

var (
	flagConfigFile  string
	flagProfileKind string
	flagLogLevel    string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "whbench",
		Short:         "Drive a warehouse.World through spawn/query/churn workloads",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&flagConfigFile, "config", "", "path to a scenario TOML file")
	root.PersistentFlags().StringVar(&flagProfileKind, "profile", "", "profiling mode: cpu, mem, or fgprof")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "overrides the scenario's log_level")

	root.AddCommand(newSpawnCmd())
	root.AddCommand(newQueryCmd())
	root.AddCommand(newChurnCmd())
	return root
}

// startProfiling installs whichever profiler --profile named, returning a
// stop function the caller defers. fgprof samples wall-clock time,
// on-CPU and off-CPU alike, which pprof's CPU profile does not cover
// (SPEC_FULL.md domain stack item 5).
func startProfiling() (func(), error) {
	switch flagProfileKind {
	case "":
		return func() {}, nil
	case "cpu":
		p := profile.Start(profile.CPUProfile, profile.ProfilePath("."))
		return p.Stop, nil
	case "mem":
		p := profile.Start(profile.MemProfile, profile.ProfilePath("."))
		return p.Stop, nil
	case "fgprof":
		return startFgprof()
	default:
		return nil, fmt.Errorf("whbench: unknown --profile mode %q", flagProfileKind)
	}
}

func resolveScenario() (scenario, error) {
	if flagConfigFile != "" && !scenarioFileExists(flagConfigFile) {
		return scenario{}, fmt.Errorf("whbench: scenario file %s does not exist", flagConfigFile)
	}
	s, err := loadScenario(flagConfigFile)
	if err != nil {
		return s, err
	}
	if flagLogLevel != "" {
		s.LogLevel = flagLogLevel
	}
	return s, nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("whbench: invalid log level %q: %w", level, err)
	}
	return cfg.Build()
}

func buildWorld(logger *zap.Logger) *warehouse.World {
	warehouse.Config.SetLogger(logger)
	return warehouse.NewWorld()
}
