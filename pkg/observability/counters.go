package observability

import (
	"context"
	"sync"
	"time"
)

// Counters aggregates hook events in memory. It implements
// [PipelineHooks], [CacheHooks] and [HTTPHooks].
type Counters struct {
	mu      sync.Mutex
	started time.Time
	stages  map[string]*StageTotals
	fails   map[string]int
	cache   map[string]*CacheTotals
	status  map[int]int
	reqs    int
}

// StageTotals accumulates runs of one pipeline stage.
type StageTotals struct {
	Runs     int           `json:"runs"`
	Changes  int           `json:"changes"`
	Errors   int           `json:"errors"`
	Duration time.Duration `json:"duration_ns"`
}

// CacheTotals accumulates lookups for one key type.
type CacheTotals struct {
	Hits   int `json:"hits"`
	Misses int `json:"misses"`
	Sets   int `json:"sets"`
	Bytes  int `json:"bytes"`
}

// Snapshot is a point-in-time copy of [Counters].
type Snapshot struct {
	Uptime   time.Duration          `json:"uptime_ns"`
	Stages   map[string]StageTotals `json:"stages"`
	Failures map[string]int         `json:"failures"`
	Cache    map[string]CacheTotals `json:"cache"`
	Requests int                    `json:"requests"`
	ByStatus map[int]int            `json:"by_status"`
}

// NewCounters creates empty counters.
func NewCounters() *Counters {
	return &Counters{
		started: time.Now(),
		stages:  make(map[string]*StageTotals),
		fails:   make(map[string]int),
		cache:   make(map[string]*CacheTotals),
		status:  make(map[int]int),
	}
}

func (c *Counters) OnStageStart(context.Context, string) {}

func (c *Counters) OnStageComplete(_ context.Context, stage string, changes int, d time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.stages[stage]
	if t == nil {
		t = &StageTotals{}
		c.stages[stage] = t
	}
	t.Runs++
	t.Changes += changes
	t.Duration += d
	if err != nil {
		t.Errors++
	}
}

func (c *Counters) OnNodeFailure(_ context.Context, stage, op, code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fails[stage+"/"+op+"/"+code]++
}

func (c *Counters) OnCacheHit(_ context.Context, keyType string) {
	c.withCache(keyType, func(t *CacheTotals) { t.Hits++ })
}

func (c *Counters) OnCacheMiss(_ context.Context, keyType string) {
	c.withCache(keyType, func(t *CacheTotals) { t.Misses++ })
}

func (c *Counters) OnCacheSet(_ context.Context, keyType string, size int) {
	c.withCache(keyType, func(t *CacheTotals) {
		t.Sets++
		t.Bytes += size
	})
}

func (c *Counters) withCache(keyType string, fn func(*CacheTotals)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.cache[keyType]
	if t == nil {
		t = &CacheTotals{}
		c.cache[keyType] = t
	}
	fn(t)
}

func (c *Counters) OnRequest(context.Context, string, string) {}

func (c *Counters) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reqs++
	c.status[status]++
}

// Snapshot copies the current totals.
func (c *Counters) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		Uptime:   time.Since(c.started),
		Stages:   make(map[string]StageTotals, len(c.stages)),
		Failures: make(map[string]int, len(c.fails)),
		Cache:    make(map[string]CacheTotals, len(c.cache)),
		Requests: c.reqs,
		ByStatus: make(map[int]int, len(c.status)),
	}
	for k, v := range c.stages {
		s.Stages[k] = *v
	}
	for k, v := range c.fails {
		s.Failures[k] = v
	}
	for k, v := range c.cache {
		s.Cache[k] = *v
	}
	for k, v := range c.status {
		s.ByStatus[k] = v
	}
	return s
}
