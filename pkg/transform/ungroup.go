package transform

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/svglayers/pkg/affine"
	"github.com/matzehuels/svglayers/pkg/errors"
	"github.com/matzehuels/svglayers/pkg/style"
	"github.com/matzehuels/svglayers/pkg/svg"
)

// Default ungroup thresholds.
const (
	DefaultStartDepth = 1
	DefaultMaxDepth   = 65535
	DefaultKeepDepth  = 0
)

// OpaqueKinds are element local names whose subtrees the ungroup pass never
// enters.
var OpaqueKinds = []string{"namedview", "defs", "metadata", "foreignObject"}

// UngroupOptions configures [Ungroup].
type UngroupOptions struct {
	// StartDepth and MaxDepth bound the depth (edges from the top-level
	// layer) at which groups are flattened.
	StartDepth int
	MaxDepth   int

	// KeepDepth is the minimum container height a group must have to be
	// flattened.
	KeepDepth int

	// BakeViewBox folds the root viewBox into the top-level transforms and
	// removes it.
	BakeViewBox bool

	Logger *log.Logger
}

// DefaultUngroupOptions flattens every group below the top-level layers.
func DefaultUngroupOptions() UngroupOptions {
	return UngroupOptions{
		StartDepth:  DefaultStartDepth,
		MaxDepth:    DefaultMaxDepth,
		KeepDepth:   DefaultKeepDepth,
		BakeViewBox: true,
	}
}

type frameState int

const (
	pending frameState = iota
	childrenScheduled
	resolved
)

type frame struct {
	node     *svg.Node
	depth    int
	state    frameState
	children []*svg.Node
}

// Ungroup flattens nested groups into the top-level layers of doc.
//
// Each element child of the root is walked as its own traversal root at
// depth 0. The walk uses an explicit stack so nesting depth is bounded only
// by memory. A group is flattened once all of its children are resolved, so
// content is always in final form before its container dissolves.
func Ungroup(doc *svg.Document, opts UngroupOptions) UngroupResult {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	u := &ungrouper{doc: doc, opts: opts, heights: make(map[*svg.Node]int)}

	if opts.BakeViewBox {
		u.bakeViewBox()
	}
	for _, top := range doc.Root.Elements() {
		u.walk(top)
	}
	return u.res
}

type ungrouper struct {
	doc     *svg.Document
	opts    UngroupOptions
	heights map[*svg.Node]int
	res     UngroupResult
}

func (u *ungrouper) walk(top *svg.Node) {
	stack := []frame{{node: top, depth: 0}}
	for len(stack) > 0 {
		i := len(stack) - 1
		f := &stack[i]

		switch f.state {
		case pending:
			if isOpaque(f.node) || !f.node.IsGroup() || !f.node.HasElements() {
				u.resolve(f, 0)
				stack = stack[:i]
				continue
			}
			f.children = f.node.Elements()
			f.state = childrenScheduled
			depth := f.depth + 1
			for j := len(f.children) - 1; j >= 0; j-- {
				stack = append(stack, frame{node: f.children[j], depth: depth})
			}

		case childrenScheduled:
			height := 0
			for _, c := range f.children {
				height = max(height, u.heights[c])
			}
			u.resolve(f, height+1)
			stack = stack[:i]
		}
	}
}

// resolve records the node height and flattens it if the policy says so.
func (u *ungrouper) resolve(f *frame, height int) {
	f.state = resolved
	u.heights[f.node] = height
	u.res.MaxHeight = max(u.res.MaxHeight, height)
	if u.shouldFlatten(f.node, f.depth, height) {
		u.flatten(f.node)
	}
}

func (u *ungrouper) shouldFlatten(n *svg.Node, depth, height int) bool {
	return n.IsGroup() &&
		n.Parent() != nil &&
		height >= u.opts.KeepDepth &&
		depth >= u.opts.StartDepth &&
		depth <= u.opts.MaxDepth
}

// flatten moves g's children into g's parent at g's position, merging g's
// transform, style and clip into each, then removes g.
func (u *ungrouper) flatten(g *svg.Node) {
	parent := g.Parent()
	if parent == nil {
		err := errors.New(errors.ErrCodeOrphanNode, "group %s has no parent", describe(g))
		u.opts.Logger.Warn("cannot ungroup", "group", describe(g), "err", err)
		u.res.fail(g, "flatten", err)
		return
	}

	gt, err := affine.Parse(g.GetOr("transform", ""))
	if err != nil {
		u.recordMerge(g, "transform", err)
	}
	gs, err := ResolvedStyle(g)
	if err != nil {
		u.recordMerge(g, "style", err)
	}
	inherited := gs.Propagating()
	clipURL := clipRef(g)

	index := g.Index()
	children := g.Children()
	for j := len(children) - 1; j >= 0; j-- {
		c := children[j]
		if c.IsElement() {
			u.mergeChild(c, gt, inherited, clipURL)
		}
		parent.Insert(index, c)
		u.res.NodesPromoted++
	}
	parent.Remove(g)
	u.res.GroupsFlattened++
	u.opts.Logger.Debug("ungrouped", "group", describe(g), "children", len(children))
}

func (u *ungrouper) mergeChild(c *svg.Node, gt affine.Transform, inherited style.Style, clipURL string) {
	local, err := MergeTransform(c, gt)
	if err != nil {
		u.recordMerge(c, "transform", err)
	}
	if err := MergeStyle(c, inherited); err != nil {
		u.recordMerge(c, "style", err)
	}
	if clipURL == "" {
		return
	}
	cr, err := MergeClip(u.doc, c, local, clipURL)
	if err != nil {
		u.recordMerge(c, "clip", err)
	}
	if cr.Created {
		u.res.ClipPathsCreated++
	}
	if cr.Chained {
		u.res.ClipsChained++
	}
}

func (u *ungrouper) recordMerge(n *svg.Node, op string, err error) {
	u.opts.Logger.Debug("merge fallback", "node", describe(n), "op", op, "code", errors.GetCode(err), "err", err)
	u.res.fail(n, op, err)
}

// bakeViewBox folds the root viewBox into each top-level element that is
// rendered in user space, then drops the viewBox.
func (u *ungrouper) bakeViewBox() {
	root := u.doc.Root
	vb, ok := root.Get("viewBox")
	if !ok {
		return
	}
	t, err := affine.ViewBox(vb, root.GetOr("width", ""), root.GetOr("height", ""))
	if err != nil {
		u.recordMerge(root, "transform", err)
		return
	}
	for _, c := range root.Elements() {
		if isOpaque(c) {
			continue
		}
		if _, err := MergeTransform(c, t); err != nil {
			u.recordMerge(c, "transform", err)
		}
	}
	root.Unset("viewBox")
	u.res.ViewBoxBaked = true
}

func isOpaque(n *svg.Node) bool {
	for _, k := range OpaqueKinds {
		if n.Is(k) {
			return true
		}
	}
	return false
}
