// main is the entry point for the decay CLI.
package main

import (
	"os"

	"github.com/decaylab/decay/cmd"
	"github.com/decaylab/decay/internal/contract"
	"github.com/decaylab/decay/internal/iocache"
)

func main() {
	defer iocache.CloseStores()

	cmd.SetCacheManager(iocache.Manager)

	err := cmd.Execute()

	if perr := cmd.StopProfiling(); perr != nil {
		contract.LogWarn("Failed to stop profiling", perr)
	}

	if err != nil {
		contract.LogError("Command failed", err)
		os.Exit(1)
	}
}
