package transform

import "github.com/matzehuels/svglayers/pkg/svg"

// PruneEmpty removes every group without element children. When removing a
// group leaves its parent group empty, the parent is removed too, walking up
// until a non-empty container or a non-group is reached.
func PruneEmpty(doc *svg.Document) PruneResult {
	var res PruneResult
	for _, g := range doc.FindAll("g") {
		n := g
		for n.IsGroup() && n.Parent() != nil && !n.HasElements() {
			parent := n.Parent()
			parent.Remove(n)
			res.GroupsRemoved++
			n = parent
		}
	}
	return res
}
