package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/archetype-io/warehouse"
)

func newChurnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "churn",
		Short: "Repeatedly insert/remove Health on a population to exercise archetype transitions",
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
			spawnPopulation(w, s)

			healthIDs, err := collectHealthless(w)
			if err != nil {
				return err
			}

			healthComp := warehouse.NewComponentType[Health]()
			start := time.Now()
			for round := 0; round < s.ChurnRounds; round++ {
				for _, ent := range healthIDs {
					if err := w.Insert(ent, warehouse.NewBundle1(Health{HP: 100})); err != nil {
						return fmt.Errorf("whbench: insert round %d: %w", round, err)
					}
					if err := w.Remove(ent, healthComp.ID()); err != nil {
						return fmt.Errorf("whbench: remove round %d: %w", round, err)
					}
				}
			}
			elapsed := time.Since(start)

			transitions := s.ChurnRounds * len(healthIDs) * 2
			fmt.Printf("ran %d churn rounds over %d entities (%d transitions) in %s (%.0f transitions/sec)\n",
				s.ChurnRounds, len(healthIDs), transitions, elapsed, float64(transitions)/elapsed.Seconds())
			return nil
		},
	}
}

// collectHealthless returns every entity not already carrying Health, the
// population churn will cycle Health onto and off of.
func collectHealthless(w *warehouse.World) ([]warehouse.Entity, error) {
	spec := warehouse.Without[Health](warehouse.Ref[Position]())
	it, err := warehouse.Query(w, spec)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var out []warehouse.Entity
	for it.Next() {
		out = append(out, it.Entity())
	}
	return out, nil
}
