// Package outline renders the element structure of an SVG document.
//
// Three formats are supported:
//
//   - text: an indented tree drawn with box characters (treeprint)
//   - dot: a Graphviz digraph, one node per element
//   - svg: the dot graph laid out by Graphviz
//
// The outline is used by the tree command and the /v1/tree endpoint to show
// what the pipeline did to a document's layers.
//
//	out, err := outline.Render(ctx, doc, outline.FormatText, outline.Options{MaxDepth: 3})
package outline

import (
	"context"

	"github.com/matzehuels/svglayers/pkg/errors"
	"github.com/matzehuels/svglayers/pkg/svg"
	"github.com/matzehuels/svglayers/pkg/transform"
)

// Output formats.
const (
	FormatText = "text"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatText: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: text, dot, svg)", format)
	}
	return nil
}

// Options configures outline rendering.
type Options struct {
	// MaxDepth limits how many levels below the root are shown. Zero shows
	// everything.
	MaxDepth int

	// Detailed adds the style declaration and transform to each label.
	Detailed bool
}

// Render dispatches to the renderer for format.
func Render(ctx context.Context, doc *svg.Document, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatText:
		return []byte(Text(doc, opts)), nil
	case FormatDOT:
		return []byte(ToDOT(doc, opts)), nil
	case FormatSVG:
		return RenderSVG(ctx, ToDOT(doc, opts))
	}
	return nil, ValidateFormat(format)
}

// Layer summarizes one top-level element and the style groups inside it.
type Layer struct {
	Node      *svg.Node
	Label     string
	Elements  int
	Subgroups []Subgroup
}

// Subgroup is a child group of a layer with the style its members share.
type Subgroup struct {
	Node    *svg.Node
	Label   string
	Style   string
	Members int
}

// Layers lists the element children of the root, skipping defs and
// metadata, together with their direct child groups.
func Layers(doc *svg.Document) []Layer {
	var layers []Layer
	for _, top := range doc.Root.Elements() {
		if top.Is("defs") || top.Is("metadata") || top.Is("namedview") {
			continue
		}
		l := Layer{Node: top, Label: top.Label()}
		top.Walk(func(n *svg.Node) bool {
			if n != top && n.IsElement() {
				l.Elements++
			}
			return true
		})
		for _, c := range top.Elements() {
			if !c.IsGroup() {
				continue
			}
			sg := Subgroup{Node: c, Label: c.Label(), Members: len(c.Elements())}
			sg.Style = sharedStyle(c)
			l.Subgroups = append(l.Subgroups, sg)
		}
		layers = append(layers, l)
	}
	return layers
}

// sharedStyle returns the style of the first member of g, which after
// regrouping is the style of all members.
func sharedStyle(g *svg.Node) string {
	for _, m := range g.Elements() {
		s, err := transform.ResolvedStyle(m)
		if err != nil {
			return m.GetOr("style", "")
		}
		return s.String()
	}
	return ""
}
