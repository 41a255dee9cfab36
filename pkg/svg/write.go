package svg

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/matzehuels/svglayers/pkg/errors"
)

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer(
		"&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;",
		"\t", "&#x9;", "\n", "&#xA;", "\r", "&#xD;",
	)
	encodingDecl = regexp.MustCompile(`encoding\s*=\s*["'][^"']*["']`)
)

// Indent is the indentation unit used by WriteTo.
const Indent = "  "

// WriteTo serializes the document as UTF-8.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: bufio.NewWriter(w)}
	for _, n := range d.Prolog {
		writeNode(cw, n, 0)
		cw.WriteString("\n")
	}
	if d.Root != nil {
		writeNode(cw, d.Root, 0)
		cw.WriteString("\n")
	}
	for _, n := range d.Epilog {
		writeNode(cw, n, 0)
		cw.WriteString("\n")
	}
	if cw.err == nil {
		cw.err = cw.w.Flush()
	}
	return cw.n, cw.err
}

// Bytes serializes the document into a byte slice.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "serialize svg")
	}
	return buf.Bytes(), nil
}

// Save writes the document to path.
func (d *Document) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	if _, err := d.WriteTo(f); err != nil {
		f.Close()
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return f.Close()
}

func writeNode(w *countingWriter, n *Node, depth int) {
	switch n.Kind {
	case CharDataNode:
		w.WriteString(textEscaper.Replace(n.Text))
	case CommentNode:
		w.WriteString("<!--" + n.Text + "-->")
	case DirectiveNode:
		w.WriteString("<!" + n.Text + ">")
	case ProcInstNode:
		inst := n.Text
		if n.Name.Local == "xml" {
			// Output is always UTF-8.
			inst = encodingDecl.ReplaceAllString(inst, `encoding="UTF-8"`)
		}
		w.WriteString("<?" + n.Name.Local)
		if inst != "" {
			w.WriteString(" " + inst)
		}
		w.WriteString("?>")
	case ElementNode:
		writeElement(w, n, depth)
	}
}

func writeElement(w *countingWriter, n *Node, depth int) {
	name := QName(n.Name)
	w.WriteString("<" + name)
	for _, a := range n.Attrs {
		w.WriteString(" " + QName(a.Name) + `="` + attrEscaper.Replace(a.Value) + `"`)
	}
	if len(n.children) == 0 {
		w.WriteString("/>")
		return
	}
	w.WriteString(">")

	// Mixed content and text content are written inline so text layout is
	// not disturbed.
	indent := !n.PreservesSpace()
	for _, c := range n.children {
		if c.Kind == CharDataNode {
			indent = false
			break
		}
	}
	for _, c := range n.children {
		if indent {
			w.WriteString("\n" + strings.Repeat(Indent, depth+1))
		}
		writeNode(w, c, depth+1)
	}
	if indent {
		w.WriteString("\n" + strings.Repeat(Indent, depth))
	}
	w.WriteString("</" + name + ">")
}

type countingWriter struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (c *countingWriter) WriteString(s string) {
	if c.err != nil {
		return
	}
	n, err := c.w.WriteString(s)
	c.n += int64(n)
	c.err = err
}
