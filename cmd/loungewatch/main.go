// Package main is the entry point for the loungewatch occupancy aggregator.
package main

import (
	"os"

	"github.com/loungewatch/loungewatch/cmd/loungewatch/app"
)

func main() {
	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
