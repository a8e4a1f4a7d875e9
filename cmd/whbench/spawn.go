package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/archetype-io/warehouse"
)

func newSpawnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "spawn",
		Short: "Spawn scenario.Entities entities and report throughput",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolveScenario()
			if err != nil {
				return err
			}
			logger, err := newLogger(s.LogLevel)
			if err != nil {
				return err
			}
			defer logger.Sync()
			stop, err := startProfiling()
			if err != nil {
				return err
			}
			defer stop()

			w := buildWorld(logger)
			start := time.Now()
			spawnPopulation(w, s)
			elapsed := time.Since(start)

			fmt.Printf("spawned %d entities in %s (%.0f entities/sec)\n",
				s.Entities, elapsed, float64(s.Entities)/elapsed.Seconds())
			return nil
		},
	}
}

// spawnPopulation spawns s.Entities entities, giving a fraction of them a
// Health component so later query/churn runs have more than one archetype
// to touch.
func spawnPopulation(w *warehouse.World, s scenario) {
	threshold := int(s.WithHealth * 1000)
	for i := 0; i < s.Entities; i++ {
		pos := Position{X: float64(i), Y: float64(-i)}
		vel := Velocity{X: 1, Y: 0}
		if i%1000 < threshold {
			w.Spawn(warehouse.NewBundle3(pos, vel, Health{HP: 100}))
		} else {
			w.Spawn(warehouse.NewBundle2(pos, vel))
		}
	}
}
