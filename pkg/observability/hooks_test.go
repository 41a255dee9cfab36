package observability

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultsAreNoop(t *testing.T) {
	Reset()

	assert.IsType(t, NoopPipelineHooks{}, Pipeline())
	assert.IsType(t, NoopCacheHooks{}, Cache())
	assert.IsType(t, NoopHTTPHooks{}, HTTP())

	ctx := context.Background()
	Pipeline().OnStageComplete(ctx, "ungroup", 12, time.Second, nil)
	Cache().OnCacheSet(ctx, "result", 1024)
	HTTP().OnResponse(ctx, "POST", "/v1/process", 200, time.Second)
}

func TestSetters(t *testing.T) {
	Reset()
	defer Reset()

	p := &testPipelineHooks{}
	SetPipelineHooks(p)
	SetPipelineHooks(nil)
	assert.Same(t, p, Pipeline())
	assert.IsType(t, NoopCacheHooks{}, Cache(), "setting one hook leaves the others alone")

	c := &testCacheHooks{}
	SetCacheHooks(c)
	assert.Same(t, c, Cache())

	Reset()
	assert.IsType(t, NoopPipelineHooks{}, Pipeline())
}

func TestRegister(t *testing.T) {
	Reset()
	defer Reset()

	c := NewCounters()
	Register(c)
	assert.Same(t, c, Pipeline())
	assert.Same(t, c, Cache())
	assert.Same(t, c, HTTP())

	// Only implemented interfaces are replaced.
	h := &testHTTPHooks{}
	Register(h)
	assert.Same(t, h, HTTP())
	assert.Same(t, c, Pipeline())
}

func TestCounters(t *testing.T) {
	ctx := context.Background()
	c := NewCounters()

	c.OnStageComplete(ctx, "ungroup", 3, time.Millisecond, nil)
	c.OnStageComplete(ctx, "ungroup", 2, time.Millisecond, errors.New("boom"))
	c.OnNodeFailure(ctx, "ungroup", "clip", "UNRESOLVED_CLIP")
	c.OnCacheMiss(ctx, "result")
	c.OnCacheSet(ctx, "result", 100)
	c.OnCacheHit(ctx, "result")
	c.OnResponse(ctx, "POST", "/v1/process", 200, time.Millisecond)
	c.OnResponse(ctx, "POST", "/v1/process", 400, time.Millisecond)

	s := c.Snapshot()
	assert.Equal(t, StageTotals{Runs: 2, Changes: 5, Errors: 1, Duration: 2 * time.Millisecond}, s.Stages["ungroup"])
	assert.Equal(t, 1, s.Failures["ungroup/clip/UNRESOLVED_CLIP"])
	assert.Equal(t, CacheTotals{Hits: 1, Misses: 1, Sets: 1, Bytes: 100}, s.Cache["result"])
	assert.Equal(t, 2, s.Requests)
	assert.Equal(t, map[int]int{200: 1, 400: 1}, s.ByStatus)

	// Snapshots are copies.
	s.Stages["ungroup"] = StageTotals{}
	assert.Equal(t, 2, c.Snapshot().Stages["ungroup"].Runs)
}

func TestCountersConcurrent(t *testing.T) {
	ctx := context.Background()
	c := NewCounters()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				c.OnCacheHit(ctx, "outline")
				c.OnStageComplete(ctx, "prune", 1, 0, nil)
			}
		}()
	}
	wg.Wait()

	s := c.Snapshot()
	assert.Equal(t, 800, s.Cache["outline"].Hits)
	assert.Equal(t, 800, s.Stages["prune"].Changes)
}

type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
