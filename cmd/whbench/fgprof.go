package main

import (
	"fmt"
	"os"

	"github.com/felixge/fgprof"
)

// startFgprof writes a wall-clock profile to fgprof.pprof, stopping and
// closing the file when the returned func runs.
func startFgprof() (func(), error) {
	f, err := os.Create("fgprof.pprof")
	if err != nil {
		return nil, fmt.Errorf("whbench: creating fgprof output: %w", err)
	}
	stop := fgprof.Start(f, fgprof.FormatPprof)
	return func() {
		if err := stop(); err != nil {
			fmt.Fprintln(os.Stderr, "whbench: stopping fgprof:", err)
		}
		f.Close()
	}, nil
}
