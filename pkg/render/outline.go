package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/dd0wney/cluso-attacktree/pkg/tree"
)

// WriteOutline writes one line per node, indented with one dash per level
func WriteOutline(w io.Writer, root *tree.Node) error {
	bw := bufio.NewWriter(w)
	root.Walk(func(n *tree.Node, depth int) bool {
		fmt.Fprintf(bw, "%s%s [%s]", strings.Repeat("-", depth), n.Name, n.Kind)
		if n.IsLeaf() {
			fmt.Fprintf(bw, " f=%s c=%d d=%d", formatFrequency(n.Frequency), n.Capability, n.Difficulty)
		}
		bw.WriteByte('\n')
		return true
	})
	return bw.Flush()
}
