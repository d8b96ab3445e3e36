// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package report renders an aggregated trace tree as a static HTML document.
//
// Every tree node becomes a collapsible <details> section nested inside the
// section of its parent. The summary line of a section shows the node's depth
// and frequency ("L2 (17)") and is flagged with LEAF for nodes without
// children; the body lists the node's frame lines. Children are rendered in
// descending frequency order so the hottest paths come first.
//
// The document embeds a small script: selecting text and pressing Delete
// removes all sections with a frame line containing the selection, followed
// by all sections that no longer contain a leaf.
package report

import (
	_ "embed"
	"html/template"
	"io"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/crlib/crhumanize"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/stacktree/tracetree"
)

const (
	// Extension is appended to the input path to name the report.
	Extension = "html"
	// LeafMarker flags the summary of sections without children. The clear
	// script relies on it.
	LeafMarker = "LEAF"
)

//go:embed assets/report.css
var reportCSS string

//go:embed assets/report.js
var reportJS string

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>{{.CSS}}</style>
<script>{{.JS}}</script>
</head>
<body>
<header>{{.Title}}: {{.Traces}} traces, {{.Nodes}} nodes, {{.Leaves}} leaves</header>
{{template "node" .Root}}</body>
</html>
{{define "node"}}<details>
<summary>L{{.Depth}} ({{.Frequency}}){{if .Leaf}} {{.Marker}}{{end}}</summary>
{{range .Labels}}<div>{{.}}</div>
{{end}}{{range .Children}}{{template "node" .}}{{end}}</details>
{{end}}`))

// Options configures the rendered document.
type Options struct {
	// Title of the document. Defaults to "Stack traces".
	Title string
}

// OutputPath returns the path of the report for the given input path: the
// input path with ext appended.
func OutputPath(input, ext string) string {
	return input + "." + strings.TrimPrefix(ext, ".")
}

// TitleFor returns a document title for the given input path.
func TitleFor(input string) string {
	return "Stack traces in " + filepath.Base(input)
}

type document struct {
	Title  string
	CSS    template.CSS
	JS     template.JS
	Traces string
	Nodes  string
	Leaves string
	Root   *section
}

type section struct {
	Depth     int
	Frequency int
	Leaf      bool
	Marker    string
	Labels    []string
	Children  []*section
}

func makeSection(n *tracetree.Node, depth int) *section {
	s := &section{
		Depth:     depth,
		Frequency: n.Frequency(),
		Leaf:      n.IsLeaf(),
		Marker:    LeafMarker,
		Labels:    n.Labels(),
	}
	for _, c := range n.Children() {
		s.Children = append(s.Children, makeSection(c, depth+1))
	}
	return s
}

// Render writes the HTML report for the tree to w. The tree is rendered as
// is; callers normally compress it first.
func Render(w io.Writer, t *tracetree.Tree, opts Options) error {
	if opts.Title == "" {
		opts.Title = "Stack traces"
	}
	stats := t.Stats()
	doc := document{
		Title:  opts.Title,
		CSS:    template.CSS(reportCSS),
		JS:     template.JS(reportJS),
		Traces: string(crhumanize.Count(int64(stats.Traces), crhumanize.Compact)),
		Nodes:  string(crhumanize.Count(int64(stats.Nodes), crhumanize.Compact)),
		Leaves: string(crhumanize.Count(int64(stats.Leaves), crhumanize.Compact)),
		Root:   makeSection(t.Root(), 0),
	}
	if err := reportTemplate.Execute(w, doc); err != nil {
		return errors.Wrap(err, "rendering report")
	}
	return nil
}
