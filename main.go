// Package main is the entry point for the metaissue action.
package main

import (
	"fmt"
	"os"

	"github.com/danielolaszy/metaissue/cmd"
	"github.com/danielolaszy/metaissue/internal/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	logging.Info("starting metaissue", "version", version)

	if err := cmd.Execute(); err != nil {
		logging.Error("command execution failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
