// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package tracetree implements a prefix tree that aggregates stack traces.
//
// Traces are inserted one at a time, outermost frame first. Frames are keyed
// by a frame.Identifier, so two traces that pass through the same call sites
// share a path from the root and every node counts the traces that reached it.
// Once all traces are inserted the tree is compressed: chains of nodes with a
// single child are folded into one node holding all of their frame lines, so
// only branch points and leaves remain.
//
// A Tree is not safe for concurrent use.
package tracetree

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/cockroachdb/stacktree/frame"
	"github.com/cockroachdb/stacktree/internal/invariants"
	"github.com/cockroachdb/swiss"
)

// RootLabel is the label of the synthetic root node.
const RootLabel = "root"

// Node is a node in the aggregation tree. A node owns its children; there is
// no sharing between subtrees.
type Node struct {
	// labels are the raw frame lines of the node, outermost first. A node
	// starts with a single line and gains more when Compress folds its only
	// child into it.
	labels []string
	// frequency is the number of inserted traces whose path passes through the
	// node.
	frequency int
	// children in insertion order. index maps a frame identifier to the
	// child's position in children; it is nil for nodes that never had a
	// child.
	children []*Node
	index    *swiss.Map[string, int]
}

func newNode(label string) *Node {
	return &Node{labels: []string{label}}
}

// Labels returns the frame lines of the node, outermost first. The returned
// slice must not be modified.
func (n *Node) Labels() []string {
	return n.labels
}

// Frequency returns the number of traces that passed through the node.
func (n *Node) Frequency() int {
	return n.frequency
}

// IsLeaf returns true if the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.children) == 0
}

// NumChildren returns the number of children of the node.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// Children returns the children of the node in descending frequency order.
// Children with equal frequencies are returned in insertion order. The slice
// is computed on every call and may be retained by the caller.
func (n *Node) Children() []*Node {
	children := slices.Clone(n.children)
	slices.SortStableFunc(children, func(a, b *Node) int {
		return -cmp.Compare(a.frequency, b.frequency)
	})
	return children
}

// Child returns the child keyed by the given frame identifier, if any.
func (n *Node) Child(id string) (*Node, bool) {
	if n.index == nil {
		return nil, false
	}
	i, ok := n.index.Get(id)
	if !ok {
		return nil, false
	}
	return n.children[i], true
}

// childFor returns the child keyed by id, creating it with the given label if
// it does not exist.
func (n *Node) childFor(id, label string) *Node {
	if c, ok := n.Child(id); ok {
		return c
	}
	if n.index == nil {
		n.index = swiss.New[string, int](4)
	}
	c := newNode(label)
	n.index.Put(id, len(n.children))
	n.children = append(n.children, c)
	return c
}

// Walk calls fn for n and its descendants in depth-first pre-order, visiting
// children in the order returned by Children. depth is the depth of n
// relative to the node Walk was called on, which has depth 0. If fn returns
// false the descendants of that node are skipped.
func (n *Node) Walk(fn func(n *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(n *Node, depth int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children() {
		c.walk(fn, depth+1)
	}
}

// compress folds single-child chains in the subtree rooted at n, children
// first.
func (n *Node) compress() {
	for _, c := range n.children {
		c.compress()
	}
	if len(n.children) != 1 {
		return
	}
	// The only child is already compressed, so it has zero or at least two
	// children and a single absorption leaves n compressed as well.
	c := n.children[0]
	n.labels = append(n.labels, c.labels...)
	n.children, n.index = c.children, c.index
	n.frequency = c.frequency
}

// String implements fmt.Stringer.
func (n *Node) String() string {
	return redact.StringWithoutMarkers(n)
}

// SafeFormat implements redact.SafeFormatter. It prints the subtree rooted at
// n, one frame line per output line. The first line of each node is prefixed
// with the node's frequency and continuation lines are aligned below it.
// Frame lines are treated as unsafe.
func (n *Node) SafeFormat(w redact.SafePrinter, _ rune) {
	n.Walk(func(n *Node, depth int) bool {
		indent := strings.Repeat(" ", 2*depth)
		w.Printf("%s(%d) ", redact.SafeString(indent), n.frequency)
		pad := redact.SafeString(strings.Repeat(" ", len(indent)+len("() ")+len(strconv.Itoa(n.frequency))))
		for i, label := range n.labels {
			if i > 0 {
				w.SafeString(pad)
			}
			w.Print(label)
			w.SafeString("\n")
		}
		return true
	})
}

// Option configures a Tree.
type Option func(*Tree)

// WithIdentifier sets the function used to group frame lines. The default is
// frame.Identify.
func WithIdentifier(id frame.Identifier) Option {
	return func(t *Tree) {
		t.identify = id
	}
}

// Tree aggregates stack traces into a prefix tree keyed by frame identifier.
//
// A Tree has two phases: any number of calls to Insert, followed by Compress.
// Inserting into a compressed tree panics.
type Tree struct {
	root       *Node
	identify   frame.Identifier
	compressed bool
}

// New returns an empty tree.
func New(opts ...Option) *Tree {
	t := &Tree{
		root:     newNode(RootLabel),
		identify: frame.Identify,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Root returns the synthetic root node. The root's frequency is the number of
// traces inserted.
func (t *Tree) Root() *Node {
	return t.root
}

// Traces returns the number of non-empty traces inserted.
func (t *Tree) Traces() int {
	return t.root.frequency
}

// Compressed returns true if Compress has been called.
func (t *Tree) Compressed() bool {
	return t.compressed
}

// Insert adds a trace to the tree. The frames must be ordered outermost
// (entry point) first. Inserting an empty trace is a no-op.
func (t *Tree) Insert(frames []string) {
	if len(frames) == 0 {
		return
	}
	if t.compressed {
		panic(errors.AssertionFailedf("tracetree: insert into a compressed tree"))
	}
	n := t.root
	n.frequency++
	for _, line := range frames {
		n = n.childFor(t.identify(line), line)
		n.frequency++
	}
}

// InsertReversed adds a trace whose frames are ordered innermost first, as
// they appear in most printed stack traces. The frames slice is not modified.
func (t *Tree) InsertReversed(frames []string) {
	if len(frames) == 0 {
		return
	}
	reversed := slices.Clone(frames)
	slices.Reverse(reversed)
	t.Insert(reversed)
}

// Compress folds every non-root node that has exactly one child together
// with that child: the node's labels are extended with the child's labels and
// it takes over the child's children and frequency. Children are compressed
// before their parents. The root never absorbs its child, so a tree of
// identical traces compresses to a root with a single leaf.
//
// Compress is idempotent.
func (t *Tree) Compress() {
	for _, c := range t.root.children {
		c.compress()
	}
	t.compressed = true
	if invariants.Enabled {
		if err := t.check(); err != nil {
			panic(err)
		}
	}
}

// check verifies the structural invariants of the tree.
func (t *Tree) check() error {
	var err error
	var visit func(n *Node, isRoot bool)
	visit = func(n *Node, isRoot bool) {
		if err != nil {
			return
		}
		if len(n.labels) == 0 {
			err = errors.AssertionFailedf("tracetree: node without labels")
			return
		}
		if t.compressed && !isRoot && len(n.children) == 1 {
			err = errors.AssertionFailedf("tracetree: compressed node %q has a single child", n.labels[0])
			return
		}
		sum := 0
		for _, c := range n.children {
			if c.frequency > n.frequency {
				err = errors.AssertionFailedf("tracetree: child frequency %d exceeds parent frequency %d",
					c.frequency, n.frequency)
				return
			}
			if c.frequency <= 0 {
				err = errors.AssertionFailedf("tracetree: child with frequency %d", c.frequency)
				return
			}
			sum += c.frequency
			visit(c, false)
		}
		// Traces end at every depth, so children account for at most the
		// traces of their parent.
		if sum > n.frequency {
			err = errors.AssertionFailedf("tracetree: children frequencies %d exceed parent frequency %d",
				sum, n.frequency)
		}
	}
	visit(t.root, true)
	return err
}

// String implements fmt.Stringer.
func (t *Tree) String() string {
	return t.root.String()
}

// SafeFormat implements redact.SafeFormatter.
func (t *Tree) SafeFormat(w redact.SafePrinter, r rune) {
	t.root.SafeFormat(w, r)
}

// Stats describes the shape of a tree.
type Stats struct {
	// Traces is the number of traces inserted.
	Traces int
	// Nodes is the number of nodes, excluding the root.
	Nodes int
	// Leaves is the number of nodes without children, excluding the root.
	Leaves int
	// Lines is the number of frame lines held by the nodes, excluding the
	// root's label.
	Lines int
	// MaxDepth is the depth of the deepest node; the root has depth 0.
	MaxDepth int
}

// Stats returns statistics about the current shape of the tree.
func (t *Tree) Stats() Stats {
	s := Stats{Traces: t.Traces()}
	t.root.Walk(func(n *Node, depth int) bool {
		if depth == 0 {
			return true
		}
		s.Nodes++
		s.Lines += len(n.labels)
		if n.IsLeaf() {
			s.Leaves++
		}
		s.MaxDepth = max(s.MaxDepth, depth)
		return true
	})
	return s
}

// String implements fmt.Stringer.
func (s Stats) String() string {
	return redact.StringWithoutMarkers(s)
}

// SafeFormat implements redact.SafeFormatter.
func (s Stats) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("traces: %d, nodes: %d, leaves: %d, lines: %d, max depth: %d",
		s.Traces, s.Nodes, s.Leaves, s.Lines, s.MaxDepth)
}
