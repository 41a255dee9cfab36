package affine

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/svglayers/pkg/errors"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Transform
	}{
		{"", Identity},
		{"none", Identity},
		{"  ", Identity},
		{"translate(10,20)", Transform{1, 0, 0, 1, 10, 20}},
		{"translate(10)", Transform{1, 0, 0, 1, 10, 0}},
		{"scale(2)", Transform{2, 0, 0, 2, 0, 0}},
		{"scale(2 3)", Transform{2, 0, 0, 3, 0, 0}},
		{"matrix(1,2,3,4,5,6)", Transform{1, 2, 3, 4, 5, 6}},
		{"matrix(1 2 3 4 5 6)", Transform{1, 2, 3, 4, 5, 6}},
		{"rotate(90)", Transform{0, 1, -1, 0, 0, 0}},
		{"translate(10,0) scale(2)", Transform{2, 0, 0, 2, 10, 0}},
		{"scale(2) translate(10,0)", Transform{2, 0, 0, 2, 20, 0}},
		{"translate(1e1,-5e-1)", Transform{1, 0, 0, 1, 10, -0.5}},
		{"translate(10-5)", Transform{1, 0, 0, 1, 10, -5}},
		{"skewX(45)", Transform{1, 0, 1, 1, 0, 0}},
		{"skewY(45)", Transform{1, 1, 0, 1, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.in, err)
			}
			if d := cmp.Diff(tt.want, got, approx); d != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.in, d)
			}
		})
	}
}

func TestParseRotateAboutCentre(t *testing.T) {
	tr, err := Parse("rotate(90, 5, 5)")
	if err != nil {
		t.Fatal(err)
	}
	x, y := tr.Apply(5, 5)
	if d := cmp.Diff([]float64{5, 5}, []float64{x, y}, approx); d != "" {
		t.Errorf("centre moved (-want +got):\n%s", d)
	}
	x, y = tr.Apply(10, 5)
	if d := cmp.Diff([]float64{5, 10}, []float64{x, y}, approx); d != "" {
		t.Errorf("rotated point (-want +got):\n%s", d)
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{
		"translate(10",
		"translate 10",
		"scale()",
		"matrix(1,2,3)",
		"rotate(1,2)",
		"wobble(1)",
		"translate(a,b)",
		"(1,2)",
	} {
		t.Run(in, func(t *testing.T) {
			got, err := Parse(in)
			if !errors.Is(err, errors.ErrCodeTransformParse) {
				t.Fatalf("Parse(%q) error = %v, want TRANSFORM_PARSE", in, err)
			}
			if got != Identity {
				t.Errorf("Parse(%q) = %v, want identity fallback", in, got)
			}
		})
	}
}

func TestComposeOrder(t *testing.T) {
	outer := Translate(10, 0)
	inner := Scale(2, 2)

	got := Compose(outer, inner)
	x, y := got.Apply(1, 1)
	if x != 12 || y != 2 {
		t.Errorf("Compose(translate, scale).Apply(1,1) = (%v,%v), want (12,2)", x, y)
	}

	got = Compose(inner, outer)
	x, y = got.Apply(1, 1)
	if x != 22 || y != 2 {
		t.Errorf("Compose(scale, translate).Apply(1,1) = (%v,%v), want (22,2)", x, y)
	}
}

func TestComposeAssociative(t *testing.T) {
	a, _ := Parse("rotate(30)")
	b, _ := Parse("translate(4,-2)")
	c, _ := Parse("scale(3,0.5) skewX(10)")

	left := Compose(Compose(a, b), c)
	right := Compose(a, Compose(b, c))
	if d := cmp.Diff(left, right, approx); d != "" {
		t.Errorf("composition not associative (-left +right):\n%s", d)
	}
}

func TestInvert(t *testing.T) {
	tr, _ := Parse("translate(3,4) rotate(33) scale(2,5)")
	inv, err := Invert(tr)
	if err != nil {
		t.Fatal(err)
	}
	if !Compose(tr, inv).IsIdentity() {
		t.Errorf("t∘t⁻¹ = %v, want identity", Compose(tr, inv))
	}
	if !Compose(inv, tr).IsIdentity() {
		t.Errorf("t⁻¹∘t = %v, want identity", Compose(inv, tr))
	}
}

func TestInvertSingular(t *testing.T) {
	_, err := Invert(Scale(0, 1))
	if !errors.Is(err, errors.ErrCodeSingularTransform) {
		t.Errorf("Invert(scale(0,1)) error = %v, want SINGULAR_TRANSFORM", err)
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		name string
		in   Transform
		want string
	}{
		{"identity", Identity, ""},
		{"near identity", Transform{1 + 1e-12, 0, 0, 1, 1e-11, 0}, ""},
		{"translate", Translate(10, -2.5), "translate(10,-2.5)"},
		{"uniform scale", Scale(2, 2), "scale(2)"},
		{"scale", Scale(2, 3), "scale(2,3)"},
		{"matrix", Transform{0, 1, -1, 0, 5, 6}, "matrix(0,1,-1,0,5,6)"},
		{"float noise", Translate(0.1+0.2, 0), "translate(0.3,0)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, in := range []string{"translate(3,4)", "scale(2,3)", "rotate(17) translate(1,2)"} {
		tr, _ := Parse(in)
		back, err := Parse(tr.String())
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", tr.String(), err)
		}
		if d := cmp.Diff(tr, back, approx); d != "" {
			t.Errorf("%q did not round-trip (-want +got):\n%s", in, d)
		}
	}
}

func TestViewBox(t *testing.T) {
	tests := []struct {
		name          string
		viewBox, w, h string
		inX, inY      float64
		wantX, wantY  float64
	}{
		{"same size offset origin", "10 20 100 50", "", "", 10, 20, 0, 0},
		{"scaled", "0 0 100 50", "200", "100", 10, 10, 20, 20},
		{"units stripped", "0,0,100,50", "200px", "25mm", 10, 10, 20, 5},
		{"percent falls back", "0 0 100 50", "100%", "100%", 7, 3, 7, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := ViewBox(tt.viewBox, tt.w, tt.h)
			if err != nil {
				t.Fatal(err)
			}
			x, y := tr.Apply(tt.inX, tt.inY)
			if math.Abs(x-tt.wantX) > 1e-9 || math.Abs(y-tt.wantY) > 1e-9 {
				t.Errorf("Apply(%v,%v) = (%v,%v), want (%v,%v)", tt.inX, tt.inY, x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestViewBoxInvalid(t *testing.T) {
	for _, vb := range []string{"", "0 0 100", "0 0 0 10", "a b c d"} {
		if _, err := ViewBox(vb, "", ""); !errors.Is(err, errors.ErrCodeTransformParse) {
			t.Errorf("ViewBox(%q) error = %v, want TRANSFORM_PARSE", vb, err)
		}
	}
}
