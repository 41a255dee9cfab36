package svg

import (
	"encoding/xml"
	"strings"
)

// Kind identifies the type of a Node.
type Kind int

// Node kinds.
const (
	ElementNode Kind = iota
	CharDataNode
	CommentNode
	ProcInstNode
	DirectiveNode
)

// Node is one node of a document tree.
//
// Names keep the namespace prefix as written in the source (Name.Space is
// "inkscape" for inkscape:label, not the namespace URI), so documents are
// written back with the prefixes their authors chose. Children are owned;
// the parent pointer is a back reference maintained by Insert and Remove.
type Node struct {
	Kind  Kind
	Name  xml.Name
	Attrs []xml.Attr
	// Text holds character data, comment text, directive text or the
	// processing instruction body.
	Text string

	parent   *Node
	children []*Node

	// added holds nodes attached or given an id since the owning document
	// last indexed this tree. Only kept on tree roots.
	added []*Node
}

// NewElement creates a detached element. name may carry a prefix
// ("inkscape:label" style).
func NewElement(name string, attrs ...xml.Attr) *Node {
	return &Node{Kind: ElementNode, Name: ParseName(name), Attrs: attrs}
}

// NewText creates a detached character data node.
func NewText(text string) *Node {
	return &Node{Kind: CharDataNode, Text: text}
}

// ParseName splits "prefix:local" into an xml.Name with Space holding the
// prefix.
func ParseName(name string) xml.Name {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return xml.Name{Space: name[:i], Local: name[i+1:]}
	}
	return xml.Name{Local: name}
}

// QName returns the qualified name as written ("prefix:local" or "local").
func QName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// Attr returns the XML attribute with the given name.
func Attr(name, value string) xml.Attr {
	return xml.Attr{Name: ParseName(name), Value: value}
}

// IsElement reports whether n is an element.
func (n *Node) IsElement() bool { return n != nil && n.Kind == ElementNode }

// Is reports whether n is an element with the given local name.
func (n *Node) Is(local string) bool {
	return n.IsElement() && n.Name.Local == local
}

// IsGroup reports whether n is a <g> element.
func (n *Node) IsGroup() bool { return n.Is("g") }

// Parent returns the parent node, or nil for a detached node or the root.
func (n *Node) Parent() *Node { return n.parent }

// Root returns the topmost ancestor of n.
func (n *Node) Root() *Node {
	for n.parent != nil {
		n = n.parent
	}
	return n
}

// Children returns a snapshot of the children. Mutating the tree does not
// affect the returned slice.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Elements returns a snapshot of the element children.
func (n *Node) Elements() []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.Kind == ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// NumChildren returns the number of children of any kind.
func (n *Node) NumChildren() int { return len(n.children) }

// HasElements reports whether n has at least one element child.
func (n *Node) HasElements() bool {
	for _, c := range n.children {
		if c.Kind == ElementNode {
			return true
		}
	}
	return false
}

// Index returns the position of n among its parent's children, or -1.
func (n *Node) Index() int {
	if n.parent == nil {
		return -1
	}
	for i, c := range n.parent.children {
		if c == n {
			return i
		}
	}
	return -1
}

// Insert places c at position i among n's children, detaching it from its
// previous parent first. i is clamped to the valid range.
func (n *Node) Insert(i int, c *Node) {
	moved := c.parent != nil
	if moved {
		c.parent.Remove(c)
	}
	if i < 0 {
		i = 0
	}
	if i > len(n.children) {
		i = len(n.children)
	}
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = c
	c.parent = n
	if !moved {
		c.added = nil
		n.noteAdded(c)
	}
}

// adopt appends c without recording it for indexing. Used while parsing.
func (n *Node) adopt(c *Node) {
	n.children = append(n.children, c)
	c.parent = n
}

// noteAdded records that c may carry ids unknown to the document index.
// Moves within a tree are not recorded: they keep the set of ids.
func (n *Node) noteAdded(c *Node) {
	r := n.Root()
	r.added = append(r.added, c)
}

// Append adds c as the last child of n.
func (n *Node) Append(c *Node) { n.Insert(len(n.children), c) }

// Remove detaches child c from n. It reports false if c is not a child of n.
func (n *Node) Remove(c *Node) bool {
	for i, x := range n.children {
		if x == c {
			n.children = append(n.children[:i], n.children[i+1:]...)
			c.parent = nil
			return true
		}
	}
	return false
}

// Detach removes n from its parent, if any.
func (n *Node) Detach() {
	if n.parent != nil {
		n.parent.Remove(n)
	}
}

// Get returns the value of the attribute with the given qualified name.
func (n *Node) Get(name string) (string, bool) {
	want := ParseName(name)
	for _, a := range n.Attrs {
		if a.Name == want {
			return a.Value, true
		}
	}
	return "", false
}

// GetOr returns the attribute value, or def when it is missing.
func (n *Node) GetOr(name, def string) string {
	if v, ok := n.Get(name); ok {
		return v
	}
	return def
}

// Set assigns an attribute, replacing an existing value in place.
func (n *Node) Set(name, value string) {
	want := ParseName(name)
	if want == (xml.Name{Local: "id"}) {
		n.noteAdded(n)
	}
	for i, a := range n.Attrs {
		if a.Name == want {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, xml.Attr{Name: want, Value: value})
}

// Unset removes an attribute. It reports whether the attribute existed.
func (n *Node) Unset(name string) bool {
	want := ParseName(name)
	for i, a := range n.Attrs {
		if a.Name == want {
			n.Attrs = append(n.Attrs[:i], n.Attrs[i+1:]...)
			return true
		}
	}
	return false
}

// ID returns the id attribute.
func (n *Node) ID() string {
	if !n.IsElement() {
		return ""
	}
	id, _ := n.Get("id")
	return id
}

// Walk visits n and its descendants in document order. Returning false from
// fn skips the node's subtree.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children() {
		c.Walk(fn)
	}
}

// Within reports whether n has an ancestor element with one of the given
// local names.
func (n *Node) Within(locals ...string) bool {
	for p := n.parent; p != nil; p = p.parent {
		for _, l := range locals {
			if p.Is(l) {
				return true
			}
		}
	}
	return false
}

// textContent lists the elements whose character data is rendered.
var textContent = map[string]bool{"text": true, "tspan": true, "textPath": true}

// PreservesSpace reports whether whitespace in n's content is significant:
// n is or sits inside a text content element, or the nearest xml:space
// declaration on n or an ancestor is "preserve".
func (n *Node) PreservesSpace() bool {
	space := ""
	for p := n; p != nil; p = p.parent {
		if p.Kind != ElementNode {
			continue
		}
		if textContent[p.Name.Local] {
			return true
		}
		if v, ok := p.Get("xml:space"); ok && space == "" {
			space = v
		}
	}
	return space == "preserve"
}

// Label returns a short human readable description such as
// `g#layer1 "Roads"`.
func (n *Node) Label() string {
	switch n.Kind {
	case CharDataNode:
		return "#text"
	case CommentNode:
		return "#comment"
	case ProcInstNode, DirectiveNode:
		return "#" + n.Name.Local
	}
	s := QName(n.Name)
	if id := n.ID(); id != "" {
		s += "#" + id
	}
	if l, ok := n.Get("inkscape:label"); ok {
		s += " " + `"` + l + `"`
	}
	return s
}
