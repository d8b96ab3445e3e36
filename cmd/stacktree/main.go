// Copyright 2018 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"log"
	"os"

	"github.com/cockroachdb/stacktree/tool"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stacktree <log> | stacktree [command] (flags)",
	Short: "stack trace aggregation tool",
	Long: `
Aggregate the stack traces in a log file into a tree of shared call paths.

Invoked with a single log file, stacktree writes the HTML report to <log>.html
(equivalent to "stacktree report <log>").
`,
	SilenceUsage: true,
}

func main() {
	log.SetFlags(0)

	cobra.EnableCommandSorting = false
	t := tool.New()
	rootCmd.AddCommand(t.Commands...)
	t.RegisterDefault(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra has already printed the error message.
		os.Exit(1)
	}
}
