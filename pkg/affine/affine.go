// Package affine implements the 2D affine algebra used when pushing group
// transforms down into their children.
//
// A [Transform] stores the six coefficients a b c d e f in SVG matrix()
// order, which is also the storage order of [matrix.Matrix]:
//
//	x' = a*x + c*y + e
//	y' = b*x + d*y + f
//
// Composition follows function notation: Compose(outer, inner) maps a point
// through inner first and outer second. Transforms within [Tolerance] of the
// identity are treated as the identity and serialize to the empty string, so
// callers can drop the attribute instead of writing a no-op.
package affine

import (
	"math"
	"strconv"
	"strings"

	"seehuhn.de/go/geom/matrix"

	"github.com/matzehuels/svglayers/pkg/errors"
)

// Tolerance is the per-coefficient slack used for identity and singularity
// checks.
const Tolerance = 1e-9

// Transform is a 2D affine map.
type Transform matrix.Matrix

// Identity is the identity transform.
var Identity = Transform(matrix.Identity)

// Translate returns a translation by (tx, ty).
func Translate(tx, ty float64) Transform { return Transform(matrix.Translate(tx, ty)) }

// Scale returns an axis-aligned scale.
func Scale(sx, sy float64) Transform { return Transform(matrix.Scale(sx, sy)) }

// Rotate returns a rotation by deg degrees about the origin.
func Rotate(deg float64) Transform { return Transform(matrix.RotateDeg(deg)) }

// Matrix returns the underlying matrix.
func (t Transform) Matrix() matrix.Matrix { return matrix.Matrix(t) }

// Apply maps the point (x, y) through t.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return matrix.Matrix(t).Apply(x, y)
}

// Det returns the determinant of the linear part.
func (t Transform) Det() float64 { return t[0]*t[3] - t[1]*t[2] }

// IsIdentity reports whether t is the identity within Tolerance.
func (t Transform) IsIdentity() bool {
	for i, v := range Identity {
		if math.Abs(t[i]-v) > Tolerance {
			return false
		}
	}
	return true
}

// Compose returns outer ∘ inner: inner is applied first.
func Compose(outer, inner Transform) Transform {
	return Transform(matrix.Matrix(inner).Mul(matrix.Matrix(outer)))
}

// Invert returns the inverse of t.
// It fails with SINGULAR_TRANSFORM when the determinant vanishes.
func Invert(t Transform) (Transform, error) {
	if math.Abs(t.Det()) < Tolerance {
		return Identity, errors.New(errors.ErrCodeSingularTransform, "transform %s is not invertible", t.debugString())
	}
	return Transform(matrix.Matrix(t).Inv()), nil
}

// String returns the canonical SVG form of t, or "" for the identity.
func (t Transform) String() string {
	if t.IsIdentity() {
		return ""
	}
	linearIdentity := near(t[0], 1) && near(t[1], 0) && near(t[2], 0) && near(t[3], 1)
	if linearIdentity {
		return "translate(" + formatNum(t[4]) + "," + formatNum(t[5]) + ")"
	}
	if near(t[1], 0) && near(t[2], 0) && near(t[4], 0) && near(t[5], 0) {
		if near(t[0], t[3]) {
			return "scale(" + formatNum(t[0]) + ")"
		}
		return "scale(" + formatNum(t[0]) + "," + formatNum(t[3]) + ")"
	}
	return t.debugString()
}

func (t Transform) debugString() string {
	parts := make([]string, len(t))
	for i, v := range t {
		parts[i] = formatNum(v)
	}
	return "matrix(" + strings.Join(parts, ",") + ")"
}

func near(a, b float64) bool { return math.Abs(a-b) <= Tolerance }

// formatNum prints v rounded to nine decimals without trailing zeros.
func formatNum(v float64) string {
	v = math.Round(v*1e9) / 1e9
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
