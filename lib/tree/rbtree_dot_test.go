package tree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRBTree2Dot(t *testing.T) {
	tree := NewRBTree[int, int]()
	for _, key := range []int{10, 20, 30} {
		tree.Insert(key, key)
	}
	builder := &strings.Builder{}
	require.NoError(t, RBTree2Dot[int, int](tree, builder))
	out := builder.String()

	require.True(t, strings.HasPrefix(out, "strict digraph {\n"))
	require.True(t, strings.HasSuffix(out, "}\n"))
	require.Contains(t, out, "\t\"1\" [label=\"20\",fillcolor=black];\n")
	require.Contains(t, out, "\t\"2\" [label=\"10\",fillcolor=red];\n")
	require.Contains(t, out, "\t\"3\" [label=\"30\",fillcolor=red];\n")
	require.Contains(t, out, "\t\"1\" -> \"2\";\n")
	require.Contains(t, out, "\t\"1\" -> \"3\";\n")
	require.Contains(t, out, "\t\"2\" -> \"nil1\";\n")
	require.Contains(t, out, "\t\"3\" -> \"nil4\";\n")
	require.Equal(t, 4, strings.Count(out, "shape=point"))
}

func TestRBTree2Dot_Empty(t *testing.T) {
	builder := &strings.Builder{}
	require.NoError(t, RBTree2Dot[int, int](NewRBTree[int, int](), builder))
	require.Equal(t, "strict digraph {\n"+
		"\tnode [fontname=Arial,fontsize=12,style=filled,fontcolor=white];\n"+
		"}\n", builder.String())
}

func TestRBTree2Dot_QuotedLabels(t *testing.T) {
	tree := NewRBTree[string, int]()
	tree.Insert(`a"b`, 1)
	builder := &strings.Builder{}
	require.NoError(t, RBTree2Dot[string, int](tree, builder))
	require.Contains(t, builder.String(), "\t\"1\" [label=\"a\\\"b\",fillcolor=black];\n")
	require.NotContains(t, builder.String(), `label="a"b"`)
}
