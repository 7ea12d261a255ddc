// main.go: salve CLI entry point
//
// Copyright (c) 2025 Francesco Pedrini
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"os"

	"github.com/fpedrini/salve/cmd/cli"
	"github.com/fpedrini/salve/internal/logging"
)

func main() {
	logging.Configure(logging.Config{Service: "salve"})

	manager := cli.NewManager()
	if err := manager.Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
