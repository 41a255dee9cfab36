package transform

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matzehuels/svglayers/pkg/affine"
	"github.com/matzehuels/svglayers/pkg/style"
	"github.com/matzehuels/svglayers/pkg/svg"
)

func parseDoc(t *testing.T, s string) *svg.Document {
	t.Helper()
	doc, err := svg.Parse([]byte(s))
	require.NoError(t, err)
	return doc
}

func node(t *testing.T, doc *svg.Document, id string) *svg.Node {
	t.Helper()
	n := doc.Lookup(id)
	require.NotNil(t, n, "node %q not found", id)
	return n
}

func transformOf(t *testing.T, n *svg.Node) affine.Transform {
	t.Helper()
	tr, err := affine.Parse(n.GetOr("transform", ""))
	require.NoError(t, err)
	return tr
}

func styleOf(t *testing.T, n *svg.Node) style.Style {
	t.Helper()
	st, err := style.Parse(n.GetOr("style", ""))
	require.NoError(t, err)
	return st
}

func ids(nodes []*svg.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID()
	}
	return out
}

func leafCount(doc *svg.Document) int {
	return doc.Count(func(n *svg.Node) bool { return !n.IsGroup() && n != doc.Root })
}

func parseClipID(v string) (string, bool) { return svg.ParseURL(v) }
