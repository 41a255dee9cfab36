package affine

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/svglayers/pkg/errors"
)

// Parse parses an SVG transform list such as
// "translate(10,20) rotate(45 5 5) scale(2)".
//
// The empty string and "none" yield the identity. Malformed input returns a
// TRANSFORM_PARSE error together with the identity, so callers that choose
// to ignore the error still get a usable value.
func Parse(s string) (Transform, error) {
	p := &parser{src: s}
	p.skipSep()
	if p.eof() || strings.TrimSpace(s) == "none" {
		return Identity, nil
	}

	t := Identity
	for !p.eof() {
		name := p.ident()
		if name == "" {
			return Identity, p.errorf("expected transform function")
		}
		args, err := p.args()
		if err != nil {
			return Identity, err
		}
		step, err := build(name, args)
		if err != nil {
			return Identity, errors.Wrap(errors.ErrCodeTransformParse, err, "transform %q", s)
		}
		// Later items in the list apply first.
		t = Compose(t, step)
		p.skipSep()
	}
	return t, nil
}

func build(name string, a []float64) (Transform, error) {
	switch name {
	case "matrix":
		if len(a) != 6 {
			return Identity, arity(name, len(a))
		}
		return Transform{a[0], a[1], a[2], a[3], a[4], a[5]}, nil
	case "translate":
		switch len(a) {
		case 1:
			return Translate(a[0], 0), nil
		case 2:
			return Translate(a[0], a[1]), nil
		}
		return Identity, arity(name, len(a))
	case "scale":
		switch len(a) {
		case 1:
			return Scale(a[0], a[0]), nil
		case 2:
			return Scale(a[0], a[1]), nil
		}
		return Identity, arity(name, len(a))
	case "rotate":
		switch len(a) {
		case 1:
			return Rotate(a[0]), nil
		case 3:
			cx, cy := a[1], a[2]
			return Compose(Translate(cx, cy), Compose(Rotate(a[0]), Translate(-cx, -cy))), nil
		}
		return Identity, arity(name, len(a))
	case "skewX":
		if len(a) != 1 {
			return Identity, arity(name, len(a))
		}
		return Transform{1, 0, math.Tan(a[0] * math.Pi / 180), 1, 0, 0}, nil
	case "skewY":
		if len(a) != 1 {
			return Identity, arity(name, len(a))
		}
		return Transform{1, math.Tan(a[0] * math.Pi / 180), 0, 1, 0, 0}, nil
	}
	return Identity, errors.New(errors.ErrCodeTransformParse, "unknown transform function %q", name)
}

func arity(name string, n int) error {
	return errors.New(errors.ErrCodeTransformParse, "%s: unexpected argument count %d", name, n)
}

// ViewBox returns the transform that folds a root viewBox into its content:
// translate(-minx,-miny) scale(w/vw, h/vh).
//
// width and height are the root's width/height attributes; unit suffixes are
// ignored and missing, relative or unparsable values fall back to the
// viewBox size.
func ViewBox(viewBox, width, height string) (Transform, error) {
	nums, err := Numbers(viewBox)
	if err != nil || len(nums) != 4 {
		return Identity, errors.New(errors.ErrCodeTransformParse, "invalid viewBox %q", viewBox)
	}
	minX, minY, vw, vh := nums[0], nums[1], nums[2], nums[3]
	if vw <= 0 || vh <= 0 {
		return Identity, errors.New(errors.ErrCodeTransformParse, "viewBox %q has non-positive size", viewBox)
	}
	w, ok := Length(width)
	if !ok {
		w = vw
	}
	h, ok := Length(height)
	if !ok {
		h = vh
	}
	return Compose(Translate(-minX, -minY), Scale(w/vw, h/vh)), nil
}

// Length parses an absolute SVG length and drops its unit.
// Percentages and empty values report false.
func Length(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasSuffix(s, "%") {
		return 0, false
	}
	s = strings.TrimRightFunc(s, func(r rune) bool { return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' })
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// Numbers parses a comma and/or whitespace separated list of numbers.
func Numbers(s string) ([]float64, error) {
	p := &parser{src: s}
	var out []float64
	for p.skipSep(); !p.eof(); p.skipSep() {
		v, err := p.number()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for !p.eof() && isSpace(p.peek()) {
		p.pos++
	}
}

func (p *parser) skipSep() {
	for !p.eof() && (isSpace(p.peek()) || p.peek() == ',') {
		p.pos++
	}
}

func (p *parser) ident() string {
	start := p.pos
	for !p.eof() {
		c := p.peek()
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

func (p *parser) args() ([]float64, error) {
	p.skipSpace()
	if p.peek() != '(' {
		return nil, p.errorf("expected '('")
	}
	p.pos++
	var out []float64
	for {
		p.skipSep()
		if p.eof() {
			return nil, p.errorf("unterminated argument list")
		}
		if p.peek() == ')' {
			p.pos++
			return out, nil
		}
		v, err := p.number()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}

// number scans one SVG number. A sign or a second decimal point terminates
// the previous number, so "10-5" and "0.5.5" are two numbers each.
func (p *parser) number() (float64, error) {
	start := p.pos
	if c := p.peek(); c == '+' || c == '-' {
		p.pos++
	}
	digits, dot := 0, false
scan:
	for !p.eof() {
		switch c := p.peek(); {
		case c >= '0' && c <= '9':
			digits++
		case c == '.' && !dot:
			dot = true
		default:
			break scan
		}
		p.pos++
	}
	if digits == 0 {
		p.pos = start
		return 0, p.errorf("expected number")
	}
	if c := p.peek(); c == 'e' || c == 'E' {
		save := p.pos
		p.pos++
		if c := p.peek(); c == '+' || c == '-' {
			p.pos++
		}
		expDigits := 0
		for !p.eof() && p.peek() >= '0' && p.peek() <= '9' {
			p.pos++
			expDigits++
		}
		if expDigits == 0 {
			p.pos = save
		}
	}
	v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeTransformParse, err, "bad number %q", p.src[start:p.pos])
	}
	return v, nil
}

func (p *parser) errorf(msg string) error {
	return errors.New(errors.ErrCodeTransformParse, "%s at offset %d in %q", msg, p.pos, p.src)
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
