package svg

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/matzehuels/svglayers/pkg/errors"
)

// Open reads an SVG document from a file.
func Open(path string) (*Document, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return Read(bufio.NewReader(f))
}

// Parse reads an SVG document from a byte slice.
func Parse(data []byte) (*Document, error) {
	return Read(bytes.NewReader(data))
}

// Read decodes an SVG document.
//
// The decoder is lenient in the same way browsers are: HTML entities are
// accepted and non-UTF-8 encodings declared in the prolog are converted.
// Namespace prefixes are kept verbatim. Whitespace-only character data is
// dropped unless its parent preserves space (see [Node.PreservesSpace]);
// the writer re-indents element-only content.
func Read(r io.Reader) (*Document, error) {
	decoder := xml.NewDecoder(r)
	decoder.Strict = false
	decoder.Entity = xml.HTMLEntity
	decoder.CharsetReader = charset.NewReaderLabel

	doc := &Document{}
	var stack []*Node

	for {
		tok, err := decoder.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode svg")
		}

		var n *Node
		switch t := tok.(type) {
		case xml.StartElement:
			n = &Node{Kind: ElementNode, Name: t.Name, Attrs: copyAttrs(t.Attr)}
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, errors.New(errors.ErrCodeInvalidDocument, "unexpected </%s>", QName(t.Name))
			}
			top := stack[len(stack)-1]
			if top.Name != t.Name {
				return nil, errors.New(errors.ErrCodeInvalidDocument, "element <%s> closed by </%s>", QName(top.Name), QName(t.Name))
			}
			stack = stack[:len(stack)-1]
			continue
		case xml.CharData:
			if len(bytes.TrimSpace(t)) == 0 && (len(stack) == 0 || !stack[len(stack)-1].PreservesSpace()) {
				continue
			}
			n = &Node{Kind: CharDataNode, Text: string(t)}
		case xml.Comment:
			n = &Node{Kind: CommentNode, Text: string(t)}
		case xml.ProcInst:
			n = &Node{Kind: ProcInstNode, Name: xml.Name{Local: t.Target}, Text: string(t.Inst)}
		case xml.Directive:
			n = &Node{Kind: DirectiveNode, Name: xml.Name{Local: "directive"}, Text: string(t)}
		default:
			continue
		}

		switch {
		case len(stack) > 0:
			stack[len(stack)-1].adopt(n)
		case n.Kind == ElementNode && doc.Root == nil:
			doc.Root = n
		case n.Kind == ElementNode:
			return nil, errors.New(errors.ErrCodeInvalidDocument, "multiple root elements")
		case n.Kind == CharDataNode:
			return nil, errors.New(errors.ErrCodeInvalidDocument, "text outside the root element")
		case doc.Root == nil:
			doc.Prolog = append(doc.Prolog, n)
		default:
			doc.Epilog = append(doc.Epilog, n)
		}
		if n.Kind == ElementNode {
			stack = append(stack, n)
		}
	}

	if len(stack) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "unclosed element <%s>", QName(stack[len(stack)-1].Name))
	}
	if doc.Root == nil {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "no root element")
	}
	if doc.Root.Name.Local != "svg" {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "root element is <%s>, want <svg>", QName(doc.Root.Name))
	}
	return doc, nil
}

func copyAttrs(in []xml.Attr) []xml.Attr {
	out := make([]xml.Attr, len(in))
	for i, a := range in {
		out[i] = xml.Attr{Name: a.Name, Value: strings.Clone(a.Value)}
	}
	return out
}
