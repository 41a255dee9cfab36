package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/svglayers/pkg/cache"
	"github.com/matzehuels/svglayers/pkg/errors"
	"github.com/matzehuels/svglayers/pkg/observability"
	"github.com/matzehuels/svglayers/pkg/render/outline"
	"github.com/matzehuels/svglayers/pkg/svg"
	"github.com/matzehuels/svglayers/pkg/transform"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner; each run owns its own document.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// cachedResult is the value stored under a result key.
type cachedResult struct {
	Output []byte      `json:"output"`
	Stages []StageStat `json:"stages"`
}

// Execute parses input, runs the enabled stages and serializes the result.
// Results are cached by input hash and options.
func (r *Runner) Execute(ctx context.Context, input []byte, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		RunID:     uuid.NewString(),
		InputHash: cache.Hash(input),
	}
	logger := opts.Logger.With("run", result.RunID[:8])
	opts.Logger = logger

	key := r.Keyer.ResultKey(result.InputHash, opts.KeyOpts())
	if !opts.Refresh {
		if cached, ok := r.lookup(ctx, key); ok {
			result.Output = cached.Output
			result.Stages = cached.Stages
			result.CacheHit = true
			logger.Debug("cache hit", "key", key)
			return result, nil
		}
	}

	doc, err := svg.Parse(input)
	if err != nil {
		return nil, err
	}
	result.Document = doc

	if err := r.Process(ctx, doc, opts, result); err != nil {
		return nil, err
	}

	out, err := doc.Bytes()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "serialize document")
	}
	result.Output = out

	r.store(ctx, key, cachedResult{Output: out, Stages: result.Stages}, opts.TTL)
	return result, nil
}

// Process runs the enabled stages on doc in place and records statistics
// in result. Cancellation is checked between stages.
func (r *Runner) Process(ctx context.Context, doc *svg.Document, opts Options, result *Result) error {
	r.applyLogger(&opts)
	hooks := observability.Pipeline()

	// Regroup only touches groups that existed before the run.
	groups := transform.Groups(doc)
	result.Stats.ElementsBefore = doc.Count((*svg.Node).IsElement)

	for _, stage := range Stages {
		if opts.skip(stage) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		hooks.OnStageStart(ctx, stage)
		start := time.Now()
		changes := r.runStage(stage, doc, groups, opts, &result.Stats)
		elapsed := time.Since(start)
		hooks.OnStageComplete(ctx, stage, changes, elapsed, nil)

		result.Stages = append(result.Stages, StageStat{Name: stage, Changes: changes, Duration: elapsed})
		opts.Logger.Debug("stage complete", "stage", stage, "changes", changes, "duration", elapsed)
	}

	for _, f := range result.Stats.Ungroup.Failures {
		hooks.OnNodeFailure(ctx, StageUngroup, f.Op, string(f.Code()))
	}
	result.Stats.ElementsAfter = doc.Count((*svg.Node).IsElement)

	opts.Logger.Info("processed document",
		"flattened", result.Stats.Ungroup.GroupsFlattened,
		"removed", result.Stats.Remove.Removed,
		"subgroups", result.Stats.Regroup.SubgroupsCreated,
		"failures", len(result.Stats.Ungroup.Failures))
	return nil
}

func (r *Runner) runStage(stage string, doc *svg.Document, groups []*svg.Node, opts Options, stats *Stats) int {
	switch stage {
	case StagePrune:
		stats.Prune = transform.PruneEmpty(doc)
		return stats.Prune.GroupsRemoved
	case StageUngroup:
		stats.Ungroup = transform.Ungroup(doc, opts.UngroupOptions())
		return stats.Ungroup.GroupsFlattened
	case StageRemove:
		stats.Remove = transform.RemoveKinds(doc, opts.RemoveKinds)
		return stats.Remove.Removed
	case StageRegroup:
		stats.Regroup = transform.Regroup(doc, groups, opts.GroupPrefix)
		return stats.Regroup.SubgroupsCreated
	}
	return 0
}

// Outline renders the structure of input in the given format, with caching.
func (r *Runner) Outline(ctx context.Context, input []byte, format string, opts outline.Options) ([]byte, bool, error) {
	if err := outline.ValidateFormat(format); err != nil {
		return nil, false, err
	}
	key := r.Keyer.OutlineKey(cache.Hash(input), fmt.Sprintf("%s:%d:%t", format, opts.MaxDepth, opts.Detailed))
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "outline")
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "outline")

	doc, err := svg.Parse(input)
	if err != nil {
		return nil, false, err
	}
	data, err := outline.Render(ctx, doc, format, opts)
	if err != nil {
		return nil, false, err
	}
	if err := r.Cache.Set(ctx, key, data, DefaultTTL); err == nil {
		observability.Cache().OnCacheSet(ctx, "outline", len(data))
	}
	return data, false, nil
}

// Changes returns the change count recorded for stage, or 0 when the stage
// did not run.
func (res *Result) Changes(stage string) int {
	for _, s := range res.Stages {
		if s.Name == stage {
			return s.Changes
		}
	}
	return 0
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) lookup(ctx context.Context, key string) (cachedResult, bool) {
	var cached cachedResult
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "result")
		return cached, false
	}
	if err := json.Unmarshal(data, &cached); err != nil {
		observability.Cache().OnCacheMiss(ctx, "result")
		return cached, false
	}
	observability.Cache().OnCacheHit(ctx, "result")
	return cached, true
}

func (r *Runner) store(ctx context.Context, key string, v cachedResult, ttl time.Duration) {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "result", len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
