package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/archetype-io/warehouse"
)

func newQueryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query",
		Short: "Spawn a population, then integrate Position by Velocity once and report throughput",
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

			spec := warehouse.And2(warehouse.Mut[Position](), warehouse.Ref[Velocity]())
			start := time.Now()
			it := warehouse.QueryMut(w, spec)
			touched := 0
			for it.Next() {
				pair := it.Item()
				pair.First.X += pair.Second.X
				pair.First.Y += pair.Second.Y
				touched++
			}
			it.Close()
			elapsed := time.Since(start)

			fmt.Printf("integrated %d entities in %s (%.0f entities/sec)\n",
				touched, elapsed, float64(touched)/elapsed.Seconds())
			return nil
		},
	}
}
