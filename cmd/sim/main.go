package main

import (
	"fmt"
	"os"

	"github.com/zintix-labs/quantro/sdk/perf"
)

// makefile runner
func main() {
	bindVar()
	if err := perf.RunPProf(executeSimulator, cfg.pprofmode); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
