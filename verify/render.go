package verify

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/benz9527/xtree/lib/tree"
)

var (
	redNode   = color.New(color.FgRed, color.Bold)
	blackNode = color.New(color.FgHiBlack, color.Bold)
)

// Render prints the tree sideways, the right subtree on top and one
// indent per level. Without colorize the colour is a (R)/(B) suffix.
func Render[K any, V any](w io.Writer, t tree.RBTree[K, V], colorize bool) error {
	builder := &strings.Builder{}
	var walk func(node tree.RBNode[K, V], depth int)
	walk = func(node tree.RBNode[K, V], depth int) {
		if node == nil {
			return
		}
		walk(node.Right(), depth+1)
		builder.WriteString(strings.Repeat("    ", depth))
		label := fmt.Sprintf("%v", node.Key())
		switch {
		case colorize && node.Color() == tree.Red:
			builder.WriteString(redNode.Sprint(label))
		case colorize:
			builder.WriteString(blackNode.Sprint(label))
		case node.Color() == tree.Red:
			builder.WriteString(label + "(R)")
		default:
			builder.WriteString(label + "(B)")
		}
		builder.WriteByte('\n')
		walk(node.Left(), depth+1)
	}
	if root := t.Root(); root != nil {
		walk(root, 0)
	}
	_, err := io.WriteString(w, builder.String())
	return err
}
