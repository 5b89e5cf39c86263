package tree

import (
	"fmt"
	"io"
	"strings"
)

// RBTree2Dot outputs the structure of a tree in Graphviz DOT format
// (for debugging purposes). NIL leaves are drawn as small black points.
func RBTree2Dot[K any, V any](tree RBTree[K, V], w io.Writer) error {
	nodelist, edgelist := strings.Builder{}, strings.Builder{}
	nodelist.WriteString("strict digraph {\n")
	nodelist.WriteString("\tnode [fontname=Arial,fontsize=12,style=filled,fontcolor=white];\n")

	id, nilID := 0, 0
	var walk func(node RBNode[K, V]) int
	walk = func(node RBNode[K, V]) int {
		id++
		nodeID := id
		color := "black"
		if isRed[K, V](node) {
			color = "red"
		}
		fmt.Fprintf(&nodelist, "\t\"%d\" [label=%q,fillcolor=%s];\n", nodeID, fmt.Sprint(node.Key()), color)
		for _, child := range []RBNode[K, V]{node.Left(), node.Right()} {
			if child == nil {
				nilID++
				fmt.Fprintf(&nodelist, "\t\"nil%d\" [label=\"\",shape=point,color=black];\n", nilID)
				fmt.Fprintf(&edgelist, "\t\"%d\" -> \"nil%d\";\n", nodeID, nilID)
				continue
			}
			childID := walk(child)
			fmt.Fprintf(&edgelist, "\t\"%d\" -> \"%d\";\n", nodeID, childID)
		}
		return nodeID
	}
	if root := tree.Root(); root != nil {
		walk(root)
	}

	if _, err := io.WriteString(w, nodelist.String()); err != nil {
		return err
	}
	if _, err := io.WriteString(w, edgelist.String()); err != nil {
		return err
	}
	_, err := io.WriteString(w, "}\n")
	return err
}
