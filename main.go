// main is the entry point for the covpost CLI.
package main

import (
	"os"

	"github.com/huangsam/covpost/cmd"
	"github.com/huangsam/covpost/internal/contract"
)

func main() {
	defer cmd.Shutdown()
	if err := cmd.Execute(); err != nil {
		contract.Logger.Error().Err(err).Msg("covpost failed")
		cmd.Shutdown()
		os.Exit(1)
	}
}
