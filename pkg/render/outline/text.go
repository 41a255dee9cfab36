package outline

import (
	"fmt"
	"strings"

	"github.com/xlab/treeprint"

	"github.com/matzehuels/svglayers/pkg/svg"
)

// Text renders the element tree of doc with box-drawing characters:
//
//	svg
//	├── g#layer1 "Roads" (2)
//	│   ├── g "Group1" (14)
//	│   └── g "Group2" (3)
//	└── defs (1)
func Text(doc *svg.Document, opts Options) string {
	tree := treeprint.New()
	tree.SetValue(label(doc.Root, opts))
	addChildren(tree, doc.Root, 1, opts)
	return tree.String()
}

func addChildren(branch treeprint.Tree, n *svg.Node, depth int, opts Options) {
	for _, c := range n.Elements() {
		if !c.HasElements() {
			branch.AddNode(label(c, opts))
			continue
		}
		if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
			branch.AddNode(label(c, opts) + " …")
			continue
		}
		addChildren(branch.AddBranch(label(c, opts)), c, depth+1, opts)
	}
}

// label describes n with its element child count when it has any.
func label(n *svg.Node, opts Options) string {
	var b strings.Builder
	b.WriteString(n.Label())
	if k := len(n.Elements()); k > 0 {
		fmt.Fprintf(&b, " (%d)", k)
	}
	if opts.Detailed {
		if t, ok := n.Get("transform"); ok {
			fmt.Fprintf(&b, " transform=%q", t)
		}
		if s, ok := n.Get("style"); ok {
			fmt.Fprintf(&b, " style=%q", s)
		}
		if c, ok := n.Get("clip-path"); ok {
			fmt.Fprintf(&b, " clip-path=%q", c)
		}
	}
	return b.String()
}
