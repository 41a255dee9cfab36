// Package style models SVG presentation styles as ordered property maps.
//
// A [Style] is parsed from a style attribute with the douceur CSS
// declaration parser and serialized back in insertion order. Equality is
// order-insensitive so that "fill:red;stroke:blue" and
// "stroke:blue;fill:red" describe the same visual style.
//
// Properties fall into three classes:
//
//   - inheritable presentation properties ([Inheritable]), which may also
//     appear as raw XML attributes and cascade to descendants
//   - local-only properties (filter, mask, clip-path), which apply to the
//     element that declares them and never cascade
//   - everything else, which is carried along as ordinary propagating style
package style

import (
	"sort"
	"strings"

	"github.com/aymerick/douceur/parser"

	"github.com/matzehuels/svglayers/pkg/errors"
)

// Property is an inheritable presentation property name.
type Property string

// Inheritable presentation properties.
const (
	Fill            Property = "fill"
	Stroke          Property = "stroke"
	Opacity         Property = "opacity"
	StrokeWidth     Property = "stroke-width"
	StrokeDasharray Property = "stroke-dasharray"
	StrokeLinecap   Property = "stroke-linecap"
	StrokeLinejoin  Property = "stroke-linejoin"
	FillOpacity     Property = "fill-opacity"
	StrokeOpacity   Property = "stroke-opacity"
	FontFamily      Property = "font-family"
	FontSize        Property = "font-size"
	FontWeight      Property = "font-weight"
	FontStyle       Property = "font-style"
)

// Inheritable lists the presentation properties that may be given as raw
// attributes and cascade to descendants.
var Inheritable = []Property{
	Fill, Stroke, Opacity, StrokeWidth, StrokeDasharray, StrokeLinecap,
	StrokeLinejoin, FillOpacity, StrokeOpacity, FontFamily, FontSize,
	FontWeight, FontStyle,
}

// Local lists the properties that never cascade.
var Local = []string{"filter", "mask", "clip-path"}

// IsInheritable reports whether name is an inheritable presentation property.
func IsInheritable(name string) bool {
	for _, p := range Inheritable {
		if string(p) == name {
			return true
		}
	}
	return false
}

// IsLocal reports whether name is a local-only property.
func IsLocal(name string) bool {
	for _, l := range Local {
		if l == name {
			return true
		}
	}
	return false
}

// Decl is one property declaration.
type Decl struct {
	Name  string
	Value string
}

// Style is an ordered property map. The zero value is an empty style.
type Style struct {
	decls []Decl
}

// Parse parses the contents of a style attribute.
//
// Later declarations of the same property override earlier ones but keep the
// earlier position. Malformed input returns a STYLE_PARSE error and an empty
// style.
func Parse(s string) (Style, error) {
	var st Style
	text := normalize(s)
	if text == "" {
		return st, nil
	}
	decls, err := parser.ParseDeclarations(text)
	if err != nil {
		return Style{}, errors.Wrap(errors.ErrCodeStyleParse, err, "style %q", s)
	}
	for _, d := range decls {
		if d.Property == "" {
			return Style{}, errors.New(errors.ErrCodeStyleParse, "style %q: declaration without property", s)
		}
		v := d.Value
		if d.Important {
			v += " !important"
		}
		st.Set(d.Property, v)
	}
	return st, nil
}

// normalize drops empty declarations and terminates the last one, which the
// declaration parser otherwise discards.
func normalize(s string) string {
	parts := strings.Split(s, ";")
	kept := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return strings.Join(kept, ";") + ";"
}

// FromMap builds a style from a map, sorted by property name.
func FromMap(m map[string]string) Style {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	var st Style
	for _, k := range names {
		st.Set(k, m[k])
	}
	return st
}

// Len returns the number of declarations.
func (s Style) Len() int { return len(s.decls) }

// Decls returns a copy of the declarations in order.
func (s Style) Decls() []Decl {
	out := make([]Decl, len(s.decls))
	copy(out, s.decls)
	return out
}

// Get returns the value of a property.
func (s Style) Get(name string) (string, bool) {
	for _, d := range s.decls {
		if d.Name == name {
			return d.Value, true
		}
	}
	return "", false
}

// Has reports whether the property is declared.
func (s Style) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Set assigns a property, keeping its position if already declared.
func (s *Style) Set(name, value string) {
	for i, d := range s.decls {
		if d.Name == name {
			s.decls[i].Value = value
			return
		}
	}
	s.decls = append(s.decls, Decl{Name: name, Value: value})
}

// Delete removes a property.
func (s *Style) Delete(name string) {
	for i, d := range s.decls {
		if d.Name == name {
			s.decls = append(s.decls[:i], s.decls[i+1:]...)
			return
		}
	}
}

// Clone returns an independent copy.
func (s Style) Clone() Style {
	return Style{decls: s.Decls()}
}

// Update overrides s with every declaration of o, in o's order.
func (s *Style) Update(o Style) {
	for _, d := range o.decls {
		s.Set(d.Name, d.Value)
	}
}

// Split partitions s into propagating and local-only declarations.
func (s Style) Split() (propagating, local Style) {
	for _, d := range s.decls {
		if IsLocal(d.Name) {
			local.decls = append(local.decls, d)
		} else {
			propagating.decls = append(propagating.decls, d)
		}
	}
	return propagating, local
}

// Propagating returns the declarations that cascade to descendants.
func (s Style) Propagating() Style {
	p, _ := s.Split()
	return p
}

// Cascade computes a resolved style: inherited overridden by own's
// propagating declarations, with own's local declarations re-added.
// inherited must not contain local declarations; any it has are dropped.
func Cascade(inherited, own Style) Style {
	prop, local := own.Split()
	out := inherited.Propagating()
	out.Update(prop)
	out.Update(local)
	return out
}

// String serializes s as "name:value;name:value".
func (s Style) String() string {
	var b strings.Builder
	for i, d := range s.decls {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(d.Name)
		b.WriteByte(':')
		b.WriteString(d.Value)
	}
	return b.String()
}

// Key returns an order-insensitive canonical form usable as a map key.
func (s Style) Key() string {
	decls := s.Decls()
	sort.Slice(decls, func(i, j int) bool { return decls[i].Name < decls[j].Name })
	return Style{decls: decls}.String()
}

// Equal reports whether s and o declare the same properties with the same
// values, regardless of order.
func (s Style) Equal(o Style) bool {
	return len(s.decls) == len(o.decls) && s.Key() == o.Key()
}
