// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package tracetree

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/cockroachdb/crlib/crstrings"
	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/stacktree/frame"
	"github.com/stretchr/testify/require"
)

// parseTrace parses a test trace: frames separated by semicolons.
func parseTrace(line string) []string {
	frames := strings.Split(line, ";")
	for i := range frames {
		frames[i] = strings.TrimSpace(frames[i])
	}
	return frames
}

func TestTree(t *testing.T) {
	var tree *Tree
	datadriven.RunTest(t, "testdata/tree", func(t *testing.T, td *datadriven.TestData) string {
		switch td.Cmd {
		case "new":
			var opts []Option
			if td.HasArg("group-by") {
				var name string
				td.ScanArgs(t, "group-by", &name)
				id, err := frame.Parse(name)
				if err != nil {
					return err.Error()
				}
				opts = append(opts, WithIdentifier(id))
			}
			tree = New(opts...)
			return ""

		case "insert":
			for _, line := range crstrings.Lines(td.Input) {
				if td.HasArg("reversed") {
					tree.InsertReversed(parseTrace(line))
				} else {
					tree.Insert(parseTrace(line))
				}
			}
			return fmt.Sprintf("traces: %d", tree.Traces())

		case "print":
			return tree.String()

		case "compress":
			tree.Compress()
			require.NoError(t, tree.check())
			return tree.String()

		case "stats":
			return tree.Stats().String()

		default:
			return fmt.Sprintf("unknown command %q", td.Cmd)
		}
	})
}

func TestSingleTraceChain(t *testing.T) {
	tree := New()
	tree.Insert([]string{"o", "n", "m"})
	tree.Compress()

	children := tree.Root().Children()
	require.Len(t, children, 1)
	require.Equal(t, []string{"o", "n", "m"}, children[0].Labels())
	require.Equal(t, 1, children[0].Frequency())
	require.True(t, children[0].IsLeaf())
	require.Equal(t, []string{RootLabel}, tree.Root().Labels())
}

func TestBranchIsKept(t *testing.T) {
	tree := New()
	tree.Insert([]string{"x", "y"})
	tree.Insert([]string{"x", "z"})
	tree.Compress()

	x, ok := tree.Root().Child("x")
	require.True(t, ok)
	require.Equal(t, []string{"x"}, x.Labels())
	require.Equal(t, 2, x.Frequency())
	require.Equal(t, 2, x.NumChildren())
	for _, id := range []string{"y", "z"} {
		c, ok := x.Child(id)
		require.True(t, ok)
		require.Equal(t, 1, c.Frequency())
		require.True(t, c.IsLeaf())
	}
}

func TestRepeatedTrace(t *testing.T) {
	tree := New()
	for range 3 {
		tree.Insert([]string{"a", "b"})
	}
	a, ok := tree.Root().Child("a")
	require.True(t, ok)
	b, ok := a.Child("b")
	require.True(t, ok)
	require.Equal(t, 3, a.Frequency())
	require.Equal(t, 3, b.Frequency())

	tree.Compress()
	children := tree.Root().Children()
	require.Len(t, children, 1)
	require.Equal(t, []string{"a", "b"}, children[0].Labels())
	require.Equal(t, 3, children[0].Frequency())
	require.True(t, children[0].IsLeaf())
}

func TestEmptyTrace(t *testing.T) {
	tree := New()
	tree.Insert([]string{"a"})
	before := tree.String()

	tree.Insert(nil)
	tree.Insert([]string{})
	tree.InsertReversed(nil)
	require.Equal(t, before, tree.String())
	require.Equal(t, 1, tree.Traces())
}

func TestInsertReversedDoesNotModifyInput(t *testing.T) {
	tree := New()
	frames := []string{"inner", "middle", "outer"}
	tree.InsertReversed(frames)
	require.Equal(t, []string{"inner", "middle", "outer"}, frames)

	outer, ok := tree.Root().Child("outer")
	require.True(t, ok)
	_, ok = outer.Child("middle")
	require.True(t, ok)
}

func TestInsertAfterCompressPanics(t *testing.T) {
	tree := New()
	tree.Insert([]string{"a"})
	tree.Compress()
	require.Panics(t, func() { tree.Insert([]string{"b"}) })
	// Empty traces remain a no-op.
	require.NotPanics(t, func() { tree.Insert(nil) })
}

func TestWalkSkip(t *testing.T) {
	tree := New()
	tree.Insert([]string{"a", "b", "c"})
	tree.Insert([]string{"d", "e"})

	var visited []string
	tree.Root().Walk(func(n *Node, depth int) bool {
		visited = append(visited, fmt.Sprintf("%s@%d", n.Labels()[0], depth))
		return n.Labels()[0] != "a"
	})
	require.Equal(t, []string{"root@0", "a@1", "d@1", "e@2"}, visited)
}

func TestCustomIdentifier(t *testing.T) {
	// Group frames by their first word only.
	tree := New(WithIdentifier(func(line string) string {
		word, _, _ := strings.Cut(line, " ")
		return word
	}))
	tree.Insert([]string{"main one", "leaf"})
	tree.Insert([]string{"main two", "leaf"})
	require.Equal(t, 1, tree.Root().NumChildren())
	main, ok := tree.Root().Child("main")
	require.True(t, ok)
	require.Equal(t, []string{"main one"}, main.Labels())
	require.Equal(t, 2, main.Frequency())
}

// randomTraces generates traces over a small set of frames so that traces
// share prefixes.
func randomTraces(rng *rand.Rand, n int) [][]string {
	traces := make([][]string, n)
	for i := range traces {
		depth := rng.IntN(8)
		for j := 0; j < depth; j++ {
			f := rng.IntN(3)
			traces[i] = append(traces[i], fmt.Sprintf("at pkg.f%d(F%d.java:%d)", f, j, f))
		}
	}
	return traces
}

func identifierPath(path []string) string {
	return strings.Join(path, "\x00")
}

func allLabels(tree *Tree) []string {
	var labels []string
	tree.Root().Walk(func(n *Node, _ int) bool {
		labels = append(labels, n.Labels()...)
		return true
	})
	slices.Sort(labels)
	return labels
}

func TestRandomizedProperties(t *testing.T) {
	seed := rand.Uint64()
	t.Logf("seed: %d", seed)
	rng := rand.New(rand.NewPCG(seed, seed))

	for iter := 0; iter < 50; iter++ {
		traces := randomTraces(rng, 1+rng.IntN(40))
		tree := New()
		expected := make(map[string]int)
		nonEmpty := 0
		for _, trace := range traces {
			tree.Insert(trace)
			if len(trace) > 0 {
				nonEmpty++
			}
			var path []string
			for _, line := range trace {
				path = append(path, frame.Identify(line))
				expected[identifierPath(path)]++
			}
		}

		// Every node counts exactly the traces sharing its identifier path,
		// and the root counts all traces.
		require.Equal(t, nonEmpty, tree.Traces())
		var visit func(n *Node, path []string)
		visit = func(n *Node, path []string) {
			for _, c := range n.Children() {
				p := append(slices.Clone(path), frame.Identify(c.Labels()[0]))
				require.Equal(t, expected[identifierPath(p)], c.Frequency())
				require.LessOrEqual(t, c.Frequency(), n.Frequency())
				visit(c, p)
			}
		}
		visit(tree.Root(), nil)
		require.NoError(t, tree.check())

		before := allLabels(tree)
		tree.Compress()
		require.NoError(t, tree.check())

		// No frame line is lost or duplicated.
		require.Equal(t, before, allLabels(tree))

		// Only the root may have a single child, and children are ordered by
		// descending frequency.
		tree.Root().Walk(func(n *Node, depth int) bool {
			if depth > 0 {
				require.NotEqual(t, 1, n.NumChildren())
			}
			children := n.Children()
			for i := 1; i < len(children); i++ {
				require.GreaterOrEqual(t, children[i-1].Frequency(), children[i].Frequency())
			}
			return true
		})

		// Compressing again changes nothing.
		compressed := tree.String()
		tree.Compress()
		require.Equal(t, compressed, tree.String())
	}
}
