// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package logscan splits a log of stack traces into trace blocks.
//
// A log resembles:
//
//	at com.example.Worker.poll(Worker.java:88)
//	at com.example.Worker.run(Worker.java:42)
//	at java.lang.Thread.run(Thread.java:829)
//	*****
//	at com.example.Server.accept(Server.java:17)
//	at java.lang.Thread.run(Thread.java:829)
//	*****
//	WARNING: dump truncated
//
// Every line starting with the delimiter ends a block; a line starting with
// the terminal marker ends the current block and the input. All other lines
// are frames of the current block, trimmed of surrounding whitespace.
package logscan

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	// DefaultDelimiter is the prefix of the line separating two traces.
	DefaultDelimiter = "*****"
	// DefaultTerminal is the prefix of the line after which input is ignored.
	DefaultTerminal = "WARNING:"

	// maxLineSize bounds the length of a single log line.
	maxLineSize = 1 << 20
)

// Options configures the markers recognized by a Scanner.
type Options struct {
	// Delimiter is the prefix of lines that end a trace block. Defaults to
	// DefaultDelimiter.
	Delimiter string
	// Terminal is the prefix of the line that ends the input. Defaults to
	// DefaultTerminal.
	Terminal string
}

// EnsureDefaults fills in unset options with their default values.
func (o Options) EnsureDefaults() Options {
	if o.Delimiter == "" {
		o.Delimiter = DefaultDelimiter
	}
	if o.Terminal == "" {
		o.Terminal = DefaultTerminal
	}
	return o
}

// Scanner reads trace blocks from a log. Successive calls to Scan step through
// the blocks in file order; the frames of a block are in file order too,
// which for most stack trace formats means innermost frame first.
//
//	s := logscan.NewScanner(r, logscan.Options{})
//	for s.Scan() {
//		tree.InsertReversed(s.Block())
//	}
//	if err := s.Err(); err != nil {
//		...
//	}
type Scanner struct {
	opts  Options
	lines *bufio.Scanner
	block []string
	// done is set once the input is exhausted or the terminal marker was
	// seen.
	done bool
	err  error
}

// NewScanner returns a Scanner reading from r.
func NewScanner(r io.Reader, opts Options) *Scanner {
	lines := bufio.NewScanner(r)
	lines.Buffer(make([]byte, 0, 64<<10), maxLineSize)
	return &Scanner{
		opts:  opts.EnsureDefaults(),
		lines: lines,
	}
}

// Scan advances to the next trace block, which is available through Block.
// It returns false when the input is exhausted or an error occurred.
//
// A block ends at a delimiter line, at the terminal line or at the end of the
// input. Blocks may be empty, for example when two delimiter lines follow each
// other. If the input has no delimiter at all it is a single block.
func (s *Scanner) Scan() bool {
	s.block = nil
	if s.done {
		return false
	}
	for s.lines.Scan() {
		line := s.lines.Text()
		switch {
		case strings.HasPrefix(line, s.opts.Delimiter):
			return true
		case strings.HasPrefix(line, s.opts.Terminal):
			s.done = true
			return true
		default:
			s.block = append(s.block, strings.TrimSpace(line))
		}
	}
	s.done = true
	if err := s.lines.Err(); err != nil {
		s.err = errors.Wrap(err, "reading log")
		s.block = nil
		return false
	}
	return true
}

// Block returns the frames of the current block. The slice is owned by the
// caller.
func (s *Scanner) Block() []string {
	return s.block
}

// Err returns the first error encountered while reading the input.
func (s *Scanner) Err() error {
	return s.err
}

// ReadFile scans the log file at the given path, calling fn for every block in
// file order.
func ReadFile(path string, opts Options, fn func(block []string)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "opening log %s", errors.Safe(path))
	}
	defer f.Close()

	s := NewScanner(f, opts)
	for s.Scan() {
		fn(s.Block())
	}
	return s.Err()
}
