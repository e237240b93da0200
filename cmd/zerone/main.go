// Command zerone is a thin CLI wrapper around package hmm: it reads a
// tab-separated count file with package ingest, loads an initial parameter
// set, runs Baum-Welch, and prints the fitted state path. It is an external
// collaborator that keeps none of the core's invariants itself — it exists
// to exercise hmm end to end.
package main

import (
	"os"

	"github.com/rs/zerolog"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		zerolog.New(os.Stderr).With().Timestamp().Logger().Error().Err(err).Msg("zerone failed")
		os.Exit(1)
	}
}
