package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dd0wney/cluso-attacktree/pkg/tree"
)

// InfoFile is the name of the per-node description file written by ExportDir
const InfoFile = "info.txt"

var dirNameReplacer = strings.NewReplacer("/", "_", `\`, "_", "\x00", "_")

// ExportDir mirrors the tree as nested directories under base, one per node,
// each holding an info.txt with the node's attributes. Siblings with the same
// name get the node ID appended so none is lost. base is created if needed.
func ExportDir(base string, root *tree.Node) error {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return exportNode(base, root)
}

func exportNode(parent string, n *tree.Node) error {
	dir := filepath.Join(parent, dirName(n))
	if _, err := os.Stat(dir); err == nil {
		dir = fmt.Sprintf("%s-%d", dir, n.ID)
	}
	if err := os.Mkdir(dir, 0o755); err != nil {
		return fmt.Errorf("export node %d: %w", n.ID, err)
	}

	if err := os.WriteFile(filepath.Join(dir, InfoFile), []byte(Info(n)), 0o644); err != nil {
		return fmt.Errorf("export node %d: %w", n.ID, err)
	}

	for _, c := range n.Children {
		if err := exportNode(dir, c); err != nil {
			return err
		}
	}
	return nil
}

func dirName(n *tree.Node) string {
	name := strings.TrimSpace(dirNameReplacer.Replace(n.Name))
	switch name {
	case "", ".", "..":
		return fmt.Sprintf("node-%d", n.ID)
	}
	return name
}

// Info returns the contents of a node's info.txt
func Info(n *tree.Node) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name=%s\n", n.Name)
	fmt.Fprintf(&b, "Type=%s\n", n.Kind)
	fmt.Fprintf(&b, "Capability=%d\n", n.Capability)
	fmt.Fprintf(&b, "Frequency=%s\n", formatFrequency(n.Frequency))
	fmt.Fprintf(&b, "Difficulty=%d\n", n.Difficulty)
	return b.String()
}
