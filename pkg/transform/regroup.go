package transform

import (
	"strconv"

	"github.com/matzehuels/svglayers/pkg/svg"
)

// DefaultGroupPrefix labels the sub-groups created by [Regroup].
const DefaultGroupPrefix = "Group"

// Regroup partitions the children of each group by resolved style.
//
// groups are the groups identified before the pipeline ran; those that were
// dissolved or sit inside an opaque container are skipped. For each remaining
// group, one sub-group per distinct style among its element children is
// appended in discovery order and labelled prefix1, prefix2, ... as an
// inkscape:label. Every non-group element child is then moved, in original
// order, into the sub-group of its style. Child groups stay in place.
func Regroup(doc *svg.Document, groups []*svg.Node, prefix string) RegroupResult {
	var res RegroupResult
	if prefix == "" {
		prefix = DefaultGroupPrefix
	}
	for _, g := range groups {
		if g.Root() != doc.Root || g == doc.Root {
			continue
		}
		if g.Within(OpaqueKinds...) {
			continue
		}
		regroupOne(doc, g, prefix, &res)
	}
	return res
}

func regroupOne(doc *svg.Document, g *svg.Node, prefix string, res *RegroupResult) {
	children := g.Elements()
	if len(children) == 0 {
		return
	}

	keys := make([]string, len(children))
	var order []string
	seen := make(map[string]bool)
	for i, c := range children {
		keys[i] = styleKey(c)
		if !seen[keys[i]] {
			seen[keys[i]] = true
			order = append(order, keys[i])
		}
	}

	doc.EnsureNamespace("inkscape", svg.NamespaceInkscape)
	sub := make(map[string]*svg.Node, len(order))
	for i, k := range order {
		sg := doc.NewElement("g")
		sg.Set("inkscape:label", prefix+strconv.Itoa(i+1))
		g.Append(sg)
		sub[k] = sg
	}
	res.SubgroupsCreated += len(order)
	res.GroupsVisited++

	for i, c := range children {
		if c.IsGroup() {
			continue
		}
		sub[keys[i]].Append(c)
		res.NodesMoved++
	}
}

// styleKey is the order-insensitive key of a node's resolved style. Nodes
// with a malformed style compare by their raw text.
func styleKey(n *svg.Node) string {
	st, err := ResolvedStyle(n)
	if err != nil {
		return "\x00" + n.GetOr("style", "")
	}
	return st.Key()
}

// Groups returns every group in doc in document order, for use with
// [Regroup].
func Groups(doc *svg.Document) []*svg.Node {
	return doc.FindAll("g")
}
