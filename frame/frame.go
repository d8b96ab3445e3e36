// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package frame derives grouping keys from raw stack frame lines.
//
// Two frame lines that produce the same key are considered the same call site
// when traces are merged. For a typical JVM style frame
//
//	at com.example.Server.handle(Server.java:120)
//
// the key is the fragment inside the trailing parentheses ("Server.java:120").
// Lines without such a fragment are their own key.
package frame

import (
	"regexp"

	"github.com/cockroachdb/errors"
)

// Identifier maps a raw frame line to the key used to group it with other
// frames. An Identifier must be a pure function and must accept any string.
type Identifier func(line string) string

// Matches a trailing call-site fragment, for example:
//
//	at java.lang.Thread.run(Thread.java:829)
var callSitePattern = regexp.MustCompile(`\s*at .*\((.*)\)$`)

// Identify is the default Identifier. It returns the fragment inside the
// trailing parentheses of an "at ...(...)" frame, or the line itself if the
// line does not have that shape.
func Identify(line string) string {
	m := callSitePattern.FindStringSubmatch(line)
	if m == nil {
		return line
	}
	return m[1]
}

// Raw is an Identifier that groups frames by their full text.
func Raw(line string) string {
	return line
}

// ByPattern returns an Identifier that groups frames by the first capture
// group of re, or by the whole match if re has no groups. Lines that re does
// not match are their own key.
func ByPattern(re *regexp.Regexp) Identifier {
	grouped := re.NumSubexp() > 0
	return func(line string) string {
		m := re.FindStringSubmatch(line)
		if m == nil {
			return line
		}
		if grouped {
			return m[1]
		}
		return m[0]
	}
}

// Names of the built-in identifiers, as accepted by Parse.
const (
	CallSite = "call-site"
	Line     = "line"
)

// Parse returns the built-in Identifier with the given name.
func Parse(name string) (Identifier, error) {
	switch name {
	case CallSite:
		return Identify, nil
	case Line:
		return Raw, nil
	default:
		return nil, errors.Newf("unknown frame grouping %q (expected %q or %q)", name, CallSite, Line)
	}
}
