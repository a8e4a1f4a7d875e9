// Command whbench drives a warehouse.World through realistic spawn/query/
// churn workloads from a single goroutine, for manual benchmarking
// (SPEC_FULL.md domain stack item 4/5).
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
