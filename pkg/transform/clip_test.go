package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/svglayers/pkg/affine"
	"github.com/matzehuels/svglayers/pkg/errors"
)

const clipDefs = `<defs>
	<clipPath id="c"><path id="cm" d="M0 0H10V10Z"/><circle r="3"/></clipPath>
	<clipPath id="c2"><path/></clipPath>
	<clipPath id="c3" clip-path="url(#c4)"><path/></clipPath>
	<clipPath id="c4"><path/></clipPath>
	<clipPath id="bbox" clipPathUnits="objectBoundingBox"><path id="bm"/></clipPath>
</defs>`

func TestMergeClipDirect(t *testing.T) {
	doc := parseDoc(t, `<svg>`+clipDefs+`<path id="p"/></svg>`)

	res, err := MergeClip(doc, node(t, doc, "p"), affine.Identity, "url(#c)")
	require.NoError(t, err)

	assert.False(t, res.Created)
	assert.False(t, res.Chained)
	assert.Equal(t, "url(#c)", node(t, doc, "p").GetOr("clip-path", ""))
}

func TestMergeClipNoop(t *testing.T) {
	doc := parseDoc(t, `<svg><path id="p"/></svg>`)
	for _, v := range []string{"", "none"} {
		_, err := MergeClip(doc, node(t, doc, "p"), affine.Identity, v)
		require.NoError(t, err)
		_, ok := node(t, doc, "p").Get("clip-path")
		assert.False(t, ok)
	}
}

func TestMergeClipRetarget(t *testing.T) {
	doc := parseDoc(t, `<svg>`+clipDefs+`<path id="p" transform="translate(5,0)"/></svg>`)

	res, err := MergeClip(doc, node(t, doc, "p"), affine.Translate(5, 0), "url(#c)")
	require.NoError(t, err)
	require.True(t, res.Created)

	p := node(t, doc, "p")
	assert.Equal(t, "url(#"+res.ClipID+")", p.GetOr("clip-path", ""))

	proxy := node(t, doc, res.ClipID)
	assert.True(t, proxy.Is("clipPath"))
	assert.Equal(t, "userSpaceOnUse", proxy.GetOr("clipPathUnits", ""))
	assert.True(t, proxy.Within("defs"))

	uses := proxy.Elements()
	require.Len(t, uses, 2)
	assert.Equal(t, "#cm", uses[0].GetOr("xlink:href", ""))
	assert.Equal(t, "translate(-5,0)", uses[0].GetOr("transform", ""))

	// The id-less circle member was given an id so it can be referenced.
	circleID := node(t, doc, "c").Elements()[1].ID()
	require.NotEmpty(t, circleID)
	assert.Equal(t, "#"+circleID, uses[1].GetOr("xlink:href", ""))

	v, ok := doc.Root.Get("xmlns:xlink")
	assert.True(t, ok)
	assert.Equal(t, "http://www.w3.org/1999/xlink", v)
}

func TestMergeClipObjectBoundingBoxNotRetargeted(t *testing.T) {
	doc := parseDoc(t, `<svg>`+clipDefs+`<path id="p"/></svg>`)

	res, err := MergeClip(doc, node(t, doc, "p"), affine.Scale(2, 2), "url(#bbox)")
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, "url(#bbox)", node(t, doc, "p").GetOr("clip-path", ""))
}

func TestMergeClipChain(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		terminal string
	}{
		{"single link", "c2", "c2"},
		{"two links", "c3", "c4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseDoc(t, `<svg>`+clipDefs+`<path id="p" clip-path="url(#`+tt.existing+`)"/></svg>`)

			res, err := MergeClip(doc, node(t, doc, "p"), affine.Identity, "url(#c)")
			require.NoError(t, err)
			assert.True(t, res.Chained)

			assert.Equal(t, "url(#"+tt.existing+")", node(t, doc, "p").GetOr("clip-path", ""), "existing clip kept")
			assert.Equal(t, "url(#c)", node(t, doc, tt.terminal).GetOr("clip-path", ""))
		})
	}
}

func TestMergeClipChainInStyle(t *testing.T) {
	doc := parseDoc(t, `<svg>`+clipDefs+`<path id="p" style="clip-path:url(#c2);fill:red"/></svg>`)

	_, err := MergeClip(doc, node(t, doc, "p"), affine.Identity, "url(#c)")
	require.NoError(t, err)

	_, ok := node(t, doc, "p").Get("clip-path")
	assert.False(t, ok)
	assert.Equal(t, "url(#c)", node(t, doc, "c2").GetOr("clip-path", ""))
}

func TestMergeClipSharedChainNoCycle(t *testing.T) {
	doc := parseDoc(t, `<svg>`+clipDefs+`<path id="p" clip-path="url(#c2)"/><path id="q" clip-path="url(#c2)"/></svg>`)

	for _, id := range []string{"p", "q"} {
		_, err := MergeClip(doc, node(t, doc, id), affine.Identity, "url(#c)")
		require.NoError(t, err)
	}

	assert.Equal(t, "url(#c)", node(t, doc, "c2").GetOr("clip-path", ""))
	_, ok := node(t, doc, "c").Get("clip-path")
	assert.False(t, ok, "c must not point back into its own chain")
}

func TestMergeClipUnresolved(t *testing.T) {
	doc := parseDoc(t, `<svg>`+clipDefs+`<path id="p" transform="scale(2)"/></svg>`)

	res, err := MergeClip(doc, node(t, doc, "p"), affine.Scale(2, 2), "url(#missing)")
	assert.True(t, errors.Is(err, errors.ErrCodeUnresolvedClip), "got %v", err)
	assert.False(t, res.Created)
	assert.Equal(t, "url(#missing)", node(t, doc, "p").GetOr("clip-path", ""))
}

func TestMergeClipDanglingChain(t *testing.T) {
	doc := parseDoc(t, `<svg>`+clipDefs+`<path id="p" clip-path="url(#gone)"/></svg>`)

	_, err := MergeClip(doc, node(t, doc, "p"), affine.Identity, "url(#c)")
	assert.True(t, errors.Is(err, errors.ErrCodeUnresolvedClip), "got %v", err)
	assert.Equal(t, "url(#c)", node(t, doc, "p").GetOr("clip-path", ""))
}

func TestMergeClipSingular(t *testing.T) {
	doc := parseDoc(t, `<svg>`+clipDefs+`<path id="p"/></svg>`)

	res, err := MergeClip(doc, node(t, doc, "p"), affine.Scale(0, 1), "url(#c)")
	assert.True(t, errors.Is(err, errors.ErrCodeSingularTransform), "got %v", err)
	assert.False(t, res.Created)
	assert.Equal(t, "url(#c)", node(t, doc, "p").GetOr("clip-path", ""))
}

func TestUngroupPushesClip(t *testing.T) {
	doc := parseDoc(t, `<svg>`+clipDefs+`
		<g id="layer">
			<g clip-path="url(#c)">
				<path id="p"/>
				<path id="q" transform="rotate(90)"/>
				<path id="r" clip-path="url(#c2)"/>
			</g>
		</g>
	</svg>`)

	res := Ungroup(doc, DefaultUngroupOptions())
	assert.Empty(t, res.Failures)
	assert.Equal(t, 1, res.ClipPathsCreated)
	assert.Equal(t, 1, res.ClipsChained)

	assert.Equal(t, "url(#c)", node(t, doc, "p").GetOr("clip-path", ""))
	assert.NotEqual(t, "url(#c)", node(t, doc, "q").GetOr("clip-path", ""))
	assert.Equal(t, "url(#c2)", node(t, doc, "r").GetOr("clip-path", ""))
	assert.Equal(t, "url(#c)", node(t, doc, "c2").GetOr("clip-path", ""))

	id, ok := parseClipID(node(t, doc, "q").GetOr("clip-path", ""))
	require.True(t, ok)
	uses := node(t, doc, id).Elements()
	require.NotEmpty(t, uses)
	inv := transformOf(t, uses[0])
	x, y := inv.Apply(0, 1)
	assert.InDelta(t, 1, x, 1e-9)
	assert.InDelta(t, 0, y, 1e-9)
}

func TestMergeClipCyclicChain(t *testing.T) {
	doc := parseDoc(t, `<svg><defs>
		<clipPath id="x" clip-path="url(#w)"><path/></clipPath>
		<clipPath id="w" clip-path="url(#x)"><path/></clipPath>
		<clipPath id="y"><path/></clipPath>
	</defs><path id="p" clip-path="url(#x)"/></svg>`)

	res, err := MergeClip(doc, node(t, doc, "p"), affine.Identity, "url(#y)")
	assert.True(t, errors.Is(err, errors.ErrCodeUnresolvedClip), "got %v", err)
	assert.True(t, res.Chained)

	assert.Equal(t, "url(#x)", node(t, doc, "p").GetOr("clip-path", ""))
	assert.Equal(t, "url(#w)", node(t, doc, "x").GetOr("clip-path", ""))
	assert.Equal(t, "url(#y)", node(t, doc, "w").GetOr("clip-path", ""))
	_, ok := node(t, doc, "y").Get("clip-path")
	assert.False(t, ok)
}

func TestMergeClipChainJoinsTarget(t *testing.T) {
	tests := []struct {
		name   string
		own    string
		holder string
	}{
		// p's first link is already in y's chain: p points at y directly.
		{"first link shared", "z", "p"},
		// p's second link is shared: the first link is redirected to y.
		{"later link shared", "v", "v"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseDoc(t, `<svg><defs>
				<clipPath id="y" clip-path="url(#z)"><path/></clipPath>
				<clipPath id="z"><path/></clipPath>
				<clipPath id="v" clip-path="url(#z)"><path/></clipPath>
			</defs><path id="p" clip-path="url(#`+tt.own+`)"/></svg>`)

			_, err := MergeClip(doc, node(t, doc, "p"), affine.Identity, "url(#y)")
			require.NoError(t, err)

			assert.Equal(t, "url(#y)", node(t, doc, tt.holder).GetOr("clip-path", ""))
			assert.Equal(t, "url(#z)", node(t, doc, "y").GetOr("clip-path", ""))
			_, ok := node(t, doc, "z").Get("clip-path")
			assert.False(t, ok, "z must stay the end of the chain")
		})
	}
}
