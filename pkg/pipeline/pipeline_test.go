package pipeline

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/svglayers/pkg/cache"
	"github.com/matzehuels/svglayers/pkg/config"
	"github.com/matzehuels/svglayers/pkg/errors"
	"github.com/matzehuels/svglayers/pkg/observability"
	"github.com/matzehuels/svglayers/pkg/render/outline"
	"github.com/matzehuels/svglayers/pkg/svg"
)

const input = `<svg xmlns="http://www.w3.org/2000/svg" width="200" height="100" viewBox="0 0 100 50">
  <g id="layer1">
    <g transform="translate(10,0)" style="stroke:red">
      <path id="a" d="M0 0L1 1"/>
      <rect id="frame" width="5" height="5"/>
      <g><path id="b" d="M0 0" style="stroke:blue"/></g>
    </g>
    <g id="empty"><g/></g>
    <path id="c" d="M0 0" style="stroke:red"/>
  </g>
</svg>`

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{"defaults", func(*Options) {}, false},
		{"negative depth", func(o *Options) { o.MaxDepth = -1 }, true},
		{"start after max", func(o *Options) { o.StartDepth = 5; o.MaxDepth = 2 }, true},
		{"empty kind", func(o *Options) { o.RemoveKinds = []string{"rect", ""} }, true},
		{"bad prefix", func(o *Options) { o.GroupPrefix = "1abc" }, true},
		{"empty prefix gets default", func(o *Options) { o.GroupPrefix = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			err := opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.IsInvalid(err) {
				t.Errorf("Validate() error %v should be an invalid-input error", err)
			}
		})
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Steps.Remove = false
	cfg.Ungroup.MaxDepth = 4
	cfg.Cache.TTL = config.Duration{Duration: time.Minute}

	opts := FromConfig(cfg)
	assert.True(t, opts.SkipRemove)
	assert.False(t, opts.SkipUngroup)
	assert.Equal(t, 4, opts.MaxDepth)
	assert.Equal(t, time.Minute, opts.TTL)
	assert.Equal(t, []string{"rect"}, opts.RemoveKinds)
}

func TestExecute(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), []byte(input), DefaultOptions())
	require.NoError(t, err)

	assert.False(t, res.CacheHit)
	assert.Len(t, res.RunID, 36)
	require.NotNil(t, res.Document)

	doc := res.Document
	assert.Nil(t, doc.Lookup("empty"), "empty group pruned")
	assert.Nil(t, doc.Lookup("frame"), "rect removed")

	a := doc.Lookup("a")
	require.NotNil(t, a)
	assert.Equal(t, "layer1", a.Parent().Parent().ID(), "a lives in a style subgroup of layer1")
	assert.Equal(t, a.Parent(), doc.Lookup("c").Parent(), "same style shares a subgroup")
	assert.NotEqual(t, a.Parent(), doc.Lookup("b").Parent())

	label, _ := a.Parent().Get("inkscape:label")
	assert.Equal(t, "Group1", label)

	var names []string
	for _, s := range res.Stages {
		names = append(names, s.Name)
	}
	assert.Equal(t, Stages, names)
	assert.Equal(t, 2, res.Stats.Prune.GroupsRemoved)
	assert.Equal(t, 2, res.Stats.Ungroup.GroupsFlattened)
	assert.Equal(t, 1, res.Stats.Remove.Removed)
	assert.Equal(t, 2, res.Stats.Regroup.SubgroupsCreated)
	assert.Equal(t, 2, res.Changes(StageUngroup))
	assert.Equal(t, 10, res.Stats.ElementsBefore)
	assert.Equal(t, 7, res.Stats.ElementsAfter)

	assert.True(t, strings.HasPrefix(string(res.Output), "<svg"))
	assert.NotContains(t, string(res.Output), "viewBox")
}

func TestExecuteSkipStages(t *testing.T) {
	opts := DefaultOptions()
	opts.SkipPrune = true
	opts.SkipRemove = true
	opts.SkipRegroup = true

	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), []byte(input), opts)
	require.NoError(t, err)

	require.Len(t, res.Stages, 1)
	assert.Equal(t, StageUngroup, res.Stages[0].Name)
	assert.NotNil(t, res.Document.Lookup("frame"))
	assert.Zero(t, res.Stats.Prune.GroupsRemoved)
	assert.Zero(t, res.Stats.Regroup.SubgroupsCreated)
}

func TestExecuteInvalidDocument(t *testing.T) {
	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), []byte("<svg><g></svg>"), DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidDocument))
}

func TestExecuteInvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.KeepDepth = -2
	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), []byte(input), opts)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRunner(nil, nil, nil).Execute(ctx, []byte(input), DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecuteCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)

	hooks := &countingCacheHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	r := NewRunner(fc, nil, nil)
	ctx := context.Background()

	first, err := r.Execute(ctx, []byte(input), DefaultOptions())
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	second, err := r.Execute(ctx, []byte(input), DefaultOptions())
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Nil(t, second.Document)
	assert.Equal(t, first.Output, second.Output)
	assert.Equal(t, first.Changes(StageUngroup), second.Changes(StageUngroup))
	assert.NotEqual(t, first.RunID, second.RunID)

	// Different options miss.
	opts := DefaultOptions()
	opts.SkipRegroup = true
	third, err := r.Execute(ctx, []byte(input), opts)
	require.NoError(t, err)
	assert.False(t, third.CacheHit)

	// Refresh bypasses the lookup.
	opts = DefaultOptions()
	opts.Refresh = true
	fourth, err := r.Execute(ctx, []byte(input), opts)
	require.NoError(t, err)
	assert.False(t, fourth.CacheHit)

	assert.Equal(t, 1, hooks.hits)
	assert.Equal(t, 2, hooks.misses)
	assert.Equal(t, 3, hooks.sets)
}

func TestProcessHooks(t *testing.T) {
	hooks := &recordingPipelineHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	doc, err := svg.Parse([]byte(`<svg><g id="l"><g transform="rotate(" clip-path="url(#missing)"><path/></g></g></svg>`))
	require.NoError(t, err)

	var res Result
	require.NoError(t, NewRunner(nil, nil, nil).Process(context.Background(), doc, DefaultOptions(), &res))

	assert.Equal(t, Stages, hooks.started)
	assert.Equal(t, Stages, hooks.completed)
	assert.Contains(t, hooks.failures, "TRANSFORM_PARSE")
}

func TestOutline(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	r := NewRunner(fc, nil, nil)
	ctx := context.Background()

	out, hit, err := r.Outline(ctx, []byte(input), outline.FormatText, outline.Options{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Contains(t, string(out), "g#layer1")

	again, hit, err := r.Outline(ctx, []byte(input), outline.FormatText, outline.Options{})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, out, again)

	_, _, err = r.Outline(ctx, []byte(input), "png", outline.Options{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

type countingCacheHooks struct {
	observability.NoopCacheHooks
	hits, misses, sets int
}

func (h *countingCacheHooks) OnCacheHit(context.Context, string) {
	h.hits++
}

func (h *countingCacheHooks) OnCacheMiss(context.Context, string) {
	h.misses++
}

func (h *countingCacheHooks) OnCacheSet(context.Context, string, int) {
	h.sets++
}

type recordingPipelineHooks struct {
	observability.NoopPipelineHooks
	started, completed, failures []string
}

func (h *recordingPipelineHooks) OnStageStart(_ context.Context, stage string) {
	h.started = append(h.started, stage)
}

func (h *recordingPipelineHooks) OnStageComplete(_ context.Context, stage string, _ int, _ time.Duration, _ error) {
	h.completed = append(h.completed, stage)
}

func (h *recordingPipelineHooks) OnNodeFailure(_ context.Context, _, _, code string) {
	h.failures = append(h.failures, code)
}
