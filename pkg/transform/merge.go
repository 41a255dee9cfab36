package transform

import (
	"github.com/matzehuels/svglayers/pkg/affine"
	"github.com/matzehuels/svglayers/pkg/style"
	"github.com/matzehuels/svglayers/pkg/svg"
)

// MergeTransform composes inherited in front of n's own transform and writes
// the result back, omitting the attribute when it is the identity.
//
// It returns n's own transform as declared before the merge. A malformed
// own transform is treated as the identity and reported as a
// TRANSFORM_PARSE error; the inherited transform is still applied. With an
// identity inherited transform the malformed attribute is left as is.
func MergeTransform(n *svg.Node, inherited affine.Transform) (affine.Transform, error) {
	own, err := affine.Parse(n.GetOr("transform", ""))
	if err != nil && inherited.IsIdentity() {
		return own, err
	}
	setTransform(n, affine.Compose(inherited, own))
	return own, err
}

func setTransform(n *svg.Node, t affine.Transform) {
	if s := t.String(); s != "" {
		n.Set("transform", s)
	} else {
		n.Unset("transform")
	}
}

// MergeStyle resolves n's style against an inherited style.
//
// Inheritable presentation attributes on n are absorbed into its style
// (attribute wins) and removed. The result is inherited overridden by n's
// propagating declarations, with n's local-only declarations re-added. An
// empty result removes the style attribute.
//
// If n's style attribute is malformed, n is left untouched and a
// STYLE_PARSE error is returned.
func MergeStyle(n *svg.Node, inherited style.Style) error {
	own, err := style.Parse(n.GetOr("style", ""))
	if err != nil {
		return err
	}
	for _, p := range style.Inheritable {
		if v, ok := n.Get(string(p)); ok {
			own.Set(string(p), v)
			n.Unset(string(p))
		}
	}
	resolved := style.Cascade(inherited, own)
	if resolved.Len() == 0 {
		n.Unset("style")
	} else {
		n.Set("style", resolved.String())
	}
	return nil
}

// ResolvedStyle returns n's own effective style: its style declarations with
// inheritable presentation attributes folded in (attribute wins). n is not
// modified. On a malformed style attribute the declarations are treated as
// empty and the STYLE_PARSE error is returned alongside the attributes.
func ResolvedStyle(n *svg.Node) (style.Style, error) {
	st, err := style.Parse(n.GetOr("style", ""))
	for _, p := range style.Inheritable {
		if v, ok := n.Get(string(p)); ok {
			st.Set(string(p), v)
		}
	}
	return st, err
}
