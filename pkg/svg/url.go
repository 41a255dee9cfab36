package svg

import "strings"

// URL returns the functional IRI reference url(#id).
func URL(id string) string { return "url(#" + id + ")" }

// ParseURL extracts the fragment id from url(#id). Quotes and whitespace
// inside the parentheses are accepted. It reports false for anything that
// is not a local fragment reference.
func ParseURL(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "url(") || !strings.HasSuffix(v, ")") {
		return "", false
	}
	inner := strings.TrimSpace(v[4 : len(v)-1])
	inner = strings.Trim(inner, `"'`)
	if !strings.HasPrefix(inner, "#") || len(inner) == 1 {
		return "", false
	}
	return inner[1:], true
}

// Href returns the fragment id referenced by n's href or xlink:href.
func Href(n *Node) (string, bool) {
	for _, name := range []string{"href", "xlink:href"} {
		if v, ok := n.Get(name); ok && strings.HasPrefix(v, "#") && len(v) > 1 {
			return v[1:], true
		}
	}
	return "", false
}
