package quality

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/saulo-duarte/chronos-goals/internal/metrics"
)

// CachedAdvisor remembers answers per candidate, collapses identical
// in-flight requests into one model call and bounds each call by timeout.
type CachedAdvisor struct {
	next    Advisor
	cache   *lru.Cache[string, []string]
	group   singleflight.Group
	timeout time.Duration
	metrics *metrics.Metrics
}

func NewCachedAdvisor(next Advisor, size int, timeout time.Duration, m *metrics.Metrics) (*CachedAdvisor, error) {
	cache, err := lru.New[string, []string](size)
	if err != nil {
		return nil, fmt.Errorf("advice cache: %w", err)
	}
	return &CachedAdvisor{next: next, cache: cache, timeout: timeout, metrics: m}, nil
}

func cacheKey(c Candidate) string {
	b, _ := json.Marshal(c)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func (a *CachedAdvisor) Suggest(ctx context.Context, c Candidate) ([]string, error) {
	key := cacheKey(c)
	if hit, ok := a.cache.Get(key); ok {
		a.metrics.Advice(metrics.OutcomeCached)
		return hit, nil
	}

	ch := a.group.DoChan(key, func() (any, error) {
		// The shared call outlives any single waiter's cancellation.
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
		defer cancel()
		out, err := a.next.Suggest(callCtx, c)
		if err != nil {
			return nil, err
		}
		a.cache.Add(key, out)
		return out, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			a.metrics.Advice(metrics.OutcomeError)
			return nil, res.Err
		}
		a.metrics.Advice(metrics.OutcomeOK)
		return res.Val.([]string), nil
	case <-ctx.Done():
		a.metrics.Advice(metrics.OutcomeError)
		return nil, ctx.Err()
	}
}
