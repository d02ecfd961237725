// Package render writes attack trees in human-readable forms: GraphViz DOT,
// an indented outline, and a directory hierarchy.
package render

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-attacktree/pkg/tree"
)

const dotHeader = `digraph G {
node [fontname = Verdana, fontsize = 12]
node [style = filled, shape = "box"]
node [fillcolor = "#EEEEEE"]
node [color = "#000000"]
edge [color = "#000000"]
edge [dir = "none"]
graph [rankdir = TB, size = "10, 13"]
`

// Color returns the DOT fill color for a node kind
func Color(k tree.Kind) string {
	switch k {
	case tree.KindThreat:
		return "red"
	case tree.KindMeasure:
		return "greenyellow"
	default:
		return "cornsilk1"
	}
}

// DOTID returns the DOT identifier of a node
func DOTID(n *tree.Node) string {
	return "NODE" + strconv.FormatUint(n.ID, 10)
}

// WriteDOT writes the tree rooted at root as a GraphViz digraph. Nodes are
// records showing name, rating and, if withProb is set, |p| from the last
// analytic evaluation. Nodes are written depth-first, each followed by the
// edges to its children.
func WriteDOT(w io.Writer, root *tree.Node, withProb bool) error {
	bw := bufio.NewWriter(w)

	bw.WriteString(dotHeader)
	writeDOTNode(bw, root, withProb)
	bw.WriteString("}\n")

	return bw.Flush()
}

func writeDOTNode(bw *bufio.Writer, n *tree.Node, withProb bool) {
	prob := ""
	if withProb {
		prob = fmt.Sprintf("|p = %.3f", n.LastProbability())
	}
	fmt.Fprintf(bw, "%s [shape = \"record\", fillcolor = \"%s\", label = \"{{%s%s}|{%s|%d|%d}}\"]\n",
		DOTID(n), Color(n.Kind), escapeLabel(n.Name), prob,
		formatFrequency(n.Frequency), n.Capability, n.Difficulty)

	for _, c := range n.Children {
		fmt.Fprintf(bw, "%s -> %s\n", DOTID(n), DOTID(c))
		writeDOTNode(bw, c, withProb)
	}
}

var labelEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`{`, `\{`,
	`}`, `\}`,
	`|`, `\|`,
	`<`, `\<`,
	`>`, `\>`,
)

// escapeLabel protects characters that have meaning inside record labels
func escapeLabel(s string) string {
	return labelEscaper.Replace(s)
}

// formatFrequency always shows a decimal point, so 1 prints as 1.0
func formatFrequency(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
