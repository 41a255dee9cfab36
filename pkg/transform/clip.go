package transform

import (
	"github.com/matzehuels/svglayers/pkg/affine"
	"github.com/matzehuels/svglayers/pkg/errors"
	"github.com/matzehuels/svglayers/pkg/style"
	"github.com/matzehuels/svglayers/pkg/svg"
)

// ClipResult reports what [MergeClip] did.
type ClipResult struct {
	// Created is set when a retargeted clipPath was synthesized.
	Created bool
	// Chained is set when the clip was attached to the end of an existing
	// chain rather than to the node itself.
	Chained bool
	// ClipID is the id of the clipPath that was attached.
	ClipID string
}

// MergeClip pushes an inherited clip-path reference into n.
//
// local is n's own transform before composition with the flattened group.
// When it is not the identity, the inherited clip geometry is re-expressed
// in n's coordinate space: a new userSpaceOnUse clipPath is added to <defs>
// whose members are <use> references to the original members carrying the
// inverse of local.
//
// If n already has a clip-path, the clip is appended to the end of its
// chain so the regions intersect. Otherwise it is set on n directly.
//
// An unresolvable original (UNRESOLVED_CLIP) or a singular local transform
// (SINGULAR_TRANSFORM) skips retargeting; the inherited reference is still
// attached as is and the error is returned. A broken or cyclic chain on n
// gets the clip at its last resolvable link and also reports
// UNRESOLVED_CLIP.
func MergeClip(doc *svg.Document, n *svg.Node, local affine.Transform, inheritedURL string) (ClipResult, error) {
	var res ClipResult
	id, ok := svg.ParseURL(inheritedURL)
	if !ok {
		if inheritedURL != "" && inheritedURL != "none" {
			return res, errors.New(errors.ErrCodeUnresolvedClip, "clip reference %q is not a local url", inheritedURL)
		}
		return res, nil
	}

	var firstErr error
	target := id
	orig := doc.Lookup(id)
	switch {
	case orig == nil || !orig.Is("clipPath"):
		firstErr = errors.New(errors.ErrCodeUnresolvedClip, "clipPath %q not found", id)
	case local.IsIdentity():
	case orig.GetOr("clipPathUnits", "") == "objectBoundingBox":
		// Bounding box units already follow the element.
	default:
		inv, err := affine.Invert(local)
		if err != nil {
			firstErr = err
			break
		}
		target = retarget(doc, orig, inv, map[string]bool{})
		res.Created = true
	}

	chained, err := attachClip(doc, n, target)
	res.Chained = chained
	res.ClipID = target
	if firstErr == nil {
		firstErr = err
	}
	return res, firstErr
}

// retarget creates a userSpaceOnUse clipPath referencing orig's members
// through inv. A chained clip on orig is retargeted the same way.
func retarget(doc *svg.Document, orig *svg.Node, inv affine.Transform, seen map[string]bool) string {
	seen[orig.ID()] = true
	doc.EnsureNamespace("xlink", svg.NamespaceXLink)

	cp := doc.NewElement("clipPath")
	id := doc.UniqueID("clipPath")
	cp.Set("id", id)
	cp.Set("clipPathUnits", "userSpaceOnUse")
	for _, m := range orig.Elements() {
		mid := doc.EnsureID(m, m.Name.Local)
		use := doc.NewElement("use")
		use.Set("id", doc.UniqueID("use"))
		use.Set("xlink:href", "#"+mid)
		setTransform(use, inv)
		cp.Append(use)
	}
	if next, ok := svg.ParseURL(clipRef(orig)); ok && !seen[next] {
		if nextNode := doc.Lookup(next); nextNode != nil && nextNode.Is("clipPath") {
			setClip(cp, retarget(doc, nextNode, inv, seen))
		}
	}
	doc.Defs().Append(cp)
	return id
}

// attachClip sets target on n, or on the terminal link of n's clip chain.
func attachClip(doc *svg.Document, n *svg.Node, target string) (bool, error) {
	link := clipRef(n)
	if link == "" {
		setClip(n, target)
		return false, nil
	}

	targetChain := chainIDs(doc, target)
	visited := map[string]bool{}
	var last *svg.Node
	for {
		id, ok := svg.ParseURL(link)
		if !ok || doc.Lookup(id) == nil || !doc.Lookup(id).Is("clipPath") {
			if last == nil {
				setClip(n, target)
			} else {
				setClip(last, target)
			}
			return last != nil, errors.New(errors.ErrCodeUnresolvedClip, "clip chain link %q not found", link)
		}
		switch {
		case id == target:
			return false, nil
		case visited[id]:
			// Cyclic chain: break it at the last link.
			setClip(last, target)
			return true, errors.New(errors.ErrCodeUnresolvedClip, "clip chain through %q is cyclic", id)
		case targetChain[id]:
			// The rest of the chain is already part of target's chain.
			if last == nil {
				setClip(n, target)
			} else {
				setClip(last, target)
			}
			return last != nil, nil
		}
		visited[id] = true
		last = doc.Lookup(id)
		link = clipRef(last)
		if link == "" {
			setClip(last, target)
			return true, nil
		}
	}
}

// chainIDs returns the ids reachable from id through clip-path links.
func chainIDs(doc *svg.Document, id string) map[string]bool {
	ids := map[string]bool{}
	for id != "" && !ids[id] {
		ids[id] = true
		n := doc.Lookup(id)
		if n == nil {
			break
		}
		id, _ = svg.ParseURL(clipRef(n))
	}
	return ids
}

// clipRef returns n's clip-path reference. The style property takes
// precedence over the attribute, as in CSS.
func clipRef(n *svg.Node) string {
	if st, err := style.Parse(n.GetOr("style", "")); err == nil {
		if v, ok := st.Get("clip-path"); ok && v != "none" {
			return v
		}
	}
	if v, ok := n.Get("clip-path"); ok && v != "none" {
		return v
	}
	return ""
}

func setClip(n *svg.Node, id string) {
	v := svg.URL(id)
	if st, err := style.Parse(n.GetOr("style", "")); err == nil && st.Has("clip-path") {
		st.Set("clip-path", v)
		n.Set("style", st.String())
		return
	}
	n.Set("clip-path", v)
}
