// Package pipeline runs the svglayers document rewrite for the CLI and the
// HTTP API.
//
// # Architecture
//
// The pipeline consists of four stages, always in this order:
//
//  1. Prune: remove groups without element children
//  2. Ungroup: push transform, style and clip-path down and flatten groups
//     below the top-level layers
//  3. Remove: delete helper shapes (rect by default)
//  4. Regroup: partition each surviving group's children by style
//
// Each stage can be switched off; the order never changes.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, input, pipeline.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("out.svg", result.Output, 0o644)
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/svglayers/pkg/cache"
	"github.com/matzehuels/svglayers/pkg/config"
	"github.com/matzehuels/svglayers/pkg/errors"
	"github.com/matzehuels/svglayers/pkg/svg"
	"github.com/matzehuels/svglayers/pkg/transform"
)

// Stage names, used in logs, hooks and [StageStat].
const (
	StagePrune   = "prune"
	StageUngroup = "ungroup"
	StageRemove  = "remove"
	StageRegroup = "regroup"
)

// Stages lists the stage names in execution order.
var Stages = []string{StagePrune, StageUngroup, StageRemove, StageRegroup}

// DefaultTTL is how long results stay cached when Options.TTL is zero.
const DefaultTTL = config.DefaultTTL

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Stage toggles. The zero value runs every stage.
	SkipPrune   bool `json:"skip_prune,omitempty"`
	SkipUngroup bool `json:"skip_ungroup,omitempty"`
	SkipRemove  bool `json:"skip_remove,omitempty"`
	SkipRegroup bool `json:"skip_regroup,omitempty"`

	// Ungroup thresholds.
	StartDepth  int  `json:"start_depth"`
	MaxDepth    int  `json:"max_depth"`
	KeepDepth   int  `json:"keep_depth"`
	BakeViewBox bool `json:"bake_viewbox"`

	// RemoveKinds lists the element local names deleted by the remove stage.
	RemoveKinds []string `json:"remove_kinds"`

	// GroupPrefix labels regrouped sub-groups.
	GroupPrefix string `json:"group_prefix"`

	// Refresh bypasses the cache lookup; the fresh result is still stored.
	Refresh bool `json:"refresh,omitempty"`

	// TTL for the cached result. Zero means DefaultTTL.
	TTL time.Duration `json:"-"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// DefaultOptions runs all four stages with the default thresholds.
func DefaultOptions() Options {
	return Options{
		StartDepth:  transform.DefaultStartDepth,
		MaxDepth:    transform.DefaultMaxDepth,
		KeepDepth:   transform.DefaultKeepDepth,
		BakeViewBox: true,
		RemoveKinds: append([]string(nil), transform.DefaultRemoveKinds...),
		GroupPrefix: transform.DefaultGroupPrefix,
	}
}

// FromConfig builds options from a loaded configuration file.
func FromConfig(cfg config.Config) Options {
	return Options{
		SkipPrune:   !cfg.Steps.Prune,
		SkipUngroup: !cfg.Steps.Ungroup,
		SkipRemove:  !cfg.Steps.Remove,
		SkipRegroup: !cfg.Steps.Regroup,
		StartDepth:  cfg.Ungroup.StartDepth,
		MaxDepth:    cfg.Ungroup.MaxDepth,
		KeepDepth:   cfg.Ungroup.KeepDepth,
		BakeViewBox: cfg.Ungroup.BakeViewBox,
		RemoveKinds: append([]string(nil), cfg.Remove.Kinds...),
		GroupPrefix: cfg.Regroup.Prefix,
		TTL:         cfg.Cache.TTL.Duration,
	}
}

// Validate checks thresholds, kinds and prefix.
func (o *Options) Validate() error {
	if err := errors.ValidateDepths(o.StartDepth, o.MaxDepth, o.KeepDepth); err != nil {
		return err
	}
	if err := errors.ValidateKinds(o.RemoveKinds); err != nil {
		return err
	}
	if o.GroupPrefix == "" {
		o.GroupPrefix = transform.DefaultGroupPrefix
	}
	return errors.ValidateIDPrefix(o.GroupPrefix)
}

// UngroupOptions returns the options for [transform.Ungroup].
func (o *Options) UngroupOptions() transform.UngroupOptions {
	return transform.UngroupOptions{
		StartDepth:  o.StartDepth,
		MaxDepth:    o.MaxDepth,
		KeepDepth:   o.KeepDepth,
		BakeViewBox: o.BakeViewBox,
		Logger:      o.Logger,
	}
}

// KeyOpts returns cache key options. Only fields that change the output
// are included.
func (o *Options) KeyOpts() cache.ResultKeyOpts {
	return cache.ResultKeyOpts{
		StartDepth:  o.StartDepth,
		MaxDepth:    o.MaxDepth,
		KeepDepth:   o.KeepDepth,
		BakeViewBox: o.BakeViewBox,
		Prune:       !o.SkipPrune,
		Ungroup:     !o.SkipUngroup,
		Remove:      !o.SkipRemove,
		Regroup:     !o.SkipRegroup,
		RemoveKinds: o.RemoveKinds,
		GroupPrefix: o.GroupPrefix,
	}
}

func (o *Options) skip(stage string) bool {
	switch stage {
	case StagePrune:
		return o.SkipPrune
	case StageUngroup:
		return o.SkipUngroup
	case StageRemove:
		return o.SkipRemove
	case StageRegroup:
		return o.SkipRegroup
	}
	return true
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// Output is the serialized rewritten document.
	Output []byte

	// Document is the rewritten tree. It is nil when the result came from
	// the cache.
	Document *svg.Document

	// RunID identifies this run in logs and API responses.
	RunID string

	// InputHash is the SHA-256 of the input bytes.
	InputHash string

	// Stats summarizes the work done by each stage.
	Stats Stats

	// Stages lists per-stage timing in execution order. Skipped stages are
	// omitted.
	Stages []StageStat

	// CacheHit reports whether Output came from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Prune   transform.PruneResult   `json:"prune"`
	Ungroup transform.UngroupResult `json:"ungroup"`
	Remove  transform.RemoveResult  `json:"remove"`
	Regroup transform.RegroupResult `json:"regroup"`

	// ElementsBefore and ElementsAfter count element nodes in the input and
	// output documents.
	ElementsBefore int `json:"elements_before"`
	ElementsAfter  int `json:"elements_after"`
}

// StageStat records one executed stage.
type StageStat struct {
	Name     string        `json:"name"`
	Changes  int           `json:"changes"`
	Duration time.Duration `json:"duration"`
}
