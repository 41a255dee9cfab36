package transform

import "github.com/matzehuels/svglayers/pkg/svg"

// DefaultRemoveKinds are the helper shapes deleted before regrouping.
var DefaultRemoveKinds = []string{"rect"}

// RemoveKinds detaches every element whose local name is in kinds, anywhere
// in the document.
func RemoveKinds(doc *svg.Document, kinds []string) RemoveResult {
	res := RemoveResult{ByKind: make(map[string]int)}
	want := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}

	var doomed []*svg.Node
	doc.Root.Walk(func(n *svg.Node) bool {
		if n != doc.Root && n.IsElement() && want[n.Name.Local] {
			doomed = append(doomed, n)
			return false
		}
		return true
	})
	for _, n := range doomed {
		n.Detach()
		res.Removed++
		res.ByKind[n.Name.Local]++
	}
	return res
}
