package svg

import (
	"strconv"
)

// Well-known namespaces.
const (
	NamespaceSVG      = "http://www.w3.org/2000/svg"
	NamespaceXLink    = "http://www.w3.org/1999/xlink"
	NamespaceInkscape = "http://www.inkscape.org/namespaces/inkscape"
	NamespaceSodipodi = "http://sodipodi.sourceforge.net/DTD/sodipodi-0.dtd"
)

// Document is a parsed SVG document.
//
// It is the explicit handle passed to every operation that needs id lookup
// or id generation. A Document is not safe for concurrent use. The id index
// follows mutations made through Node methods; a node moved directly from
// another document's tree must be detached first.
type Document struct {
	// Prolog holds the nodes before the root element (XML declaration,
	// doctype, comments). Epilog holds the nodes after it.
	Prolog []*Node
	Root   *Node
	Epilog []*Node

	ids         map[string]*Node
	indexedRoot *Node
	reserved    map[string]bool
	counters    map[string]int
}

// NewDocument wraps a root element.
func NewDocument(root *Node) *Document {
	return &Document{Root: root}
}

// Lookup returns the attached element with the given id, or nil.
func (d *Document) Lookup(id string) *Node {
	if id == "" || d.Root == nil {
		return nil
	}
	d.index()
	n, ok := d.ids[id]
	if !ok {
		return nil
	}
	if d.attached(n) && n.ID() == id {
		return n
	}
	// The indexed node was removed or renamed; another node may carry the id.
	d.reindex()
	return d.ids[id]
}

func (d *Document) attached(n *Node) bool {
	return n != nil && n.Root() == d.Root
}

// index brings the id index up to date. Nodes attached or given an id since
// the last call are walked; the rest of the tree is not.
func (d *Document) index() {
	if d.ids == nil || d.indexedRoot != d.Root {
		d.reindex()
		return
	}
	added := d.Root.added
	d.Root.added = nil
	for _, a := range added {
		if !d.attached(a) {
			continue
		}
		a.Walk(func(n *Node) bool {
			if id := n.ID(); id != "" {
				if cur, ok := d.ids[id]; !ok || !d.attached(cur) || cur.ID() != id {
					d.ids[id] = n
				}
			}
			return true
		})
	}
}

func (d *Document) reindex() {
	d.ids = make(map[string]*Node)
	d.indexedRoot = d.Root
	d.Root.added = nil
	d.Root.Walk(func(n *Node) bool {
		if id := n.ID(); id != "" {
			if _, dup := d.ids[id]; !dup {
				d.ids[id] = n
			}
		}
		return true
	})
}

// UniqueID returns prefix followed by the smallest counter value that does
// not collide with an id present in the document or handed out before.
func (d *Document) UniqueID(prefix string) string {
	if d.reserved == nil {
		d.reserved = make(map[string]bool)
		d.counters = make(map[string]int)
	}
	d.index()
	for i := d.counters[prefix] + 1; ; i++ {
		id := prefix + strconv.Itoa(i)
		if _, taken := d.ids[id]; taken || d.reserved[id] {
			continue
		}
		d.counters[prefix] = i
		d.reserved[id] = true
		return id
	}
}

// EnsureID returns n's id, assigning a fresh one with the given prefix when
// it has none.
func (d *Document) EnsureID(n *Node, prefix string) string {
	if id := n.ID(); id != "" {
		return id
	}
	id := d.UniqueID(prefix)
	n.Set("id", id)
	return id
}

// Defs returns the root's <defs> element, creating it as the root's first
// child when missing.
func (d *Document) Defs() *Node {
	for _, c := range d.Root.children {
		if c.Is("defs") {
			return c
		}
	}
	defs := NewElement(d.qualify("defs"))
	d.Root.Insert(0, defs)
	return defs
}

// NewElement creates a detached element using the same namespace prefix as
// the root element, so documents written as <svg:svg> stay consistent.
func (d *Document) NewElement(local string) *Node {
	return NewElement(d.qualify(local))
}

func (d *Document) qualify(local string) string {
	if d.Root != nil && d.Root.Name.Space != "" {
		return d.Root.Name.Space + ":" + local
	}
	return local
}

// EnsureNamespace declares xmlns:prefix on the root unless the prefix is
// already declared.
func (d *Document) EnsureNamespace(prefix, uri string) {
	if _, ok := d.Root.Get("xmlns:" + prefix); ok {
		return
	}
	d.Root.Set("xmlns:"+prefix, uri)
}

// FindAll returns every element with the given local name in document order.
func (d *Document) FindAll(local string) []*Node {
	var out []*Node
	d.Root.Walk(func(n *Node) bool {
		if n.Is(local) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Count returns the number of elements that satisfy pred.
func (d *Document) Count(pred func(*Node) bool) int {
	count := 0
	d.Root.Walk(func(n *Node) bool {
		if n.IsElement() && pred(n) {
			count++
		}
		return true
	})
	return count
}
