// Copyright 2019 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package tool implements the stacktree commands.
package tool

import (
	"github.com/cockroachdb/stacktree/internal/base"
	"github.com/spf13/cobra"
)

// Logger exports the base.Logger type.
type Logger = base.Logger

// T is the container for all of the stacktree commands.
type T struct {
	Commands []*cobra.Command
	report   *reportT
	summary  *summaryT
	logger   Logger
}

// Option configures the commands.
type Option func(*T)

// WithLogger sets the logger used for verbose output. The default logs to the
// Go stdlib logs.
func WithLogger(l Logger) Option {
	return func(t *T) {
		t.logger = l
	}
}

// New creates the stacktree commands.
func New(opts ...Option) *T {
	t := &T{logger: base.DefaultLogger{}}
	for _, opt := range opts {
		opt(t)
	}

	t.report = newReport(t.logger)
	t.summary = newSummary(t.logger)
	t.Commands = []*cobra.Command{
		t.report.Root,
		t.summary.Root,
	}
	return t
}

// RegisterDefault configures cmd to run the report command when it is invoked
// with a single log file argument and no subcommand.
func (t *T) RegisterDefault(cmd *cobra.Command) {
	cmd.Args = cobra.ExactArgs(1)
	cmd.RunE = t.report.run
	t.report.registerFlags(cmd)
}
