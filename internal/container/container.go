package container

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/saulo-duarte/chronos-goals/internal/action"
	"github.com/saulo-duarte/chronos-goals/internal/ambition"
	"github.com/saulo-duarte/chronos-goals/internal/auth"
	"github.com/saulo-duarte/chronos-goals/internal/config"
	"github.com/saulo-duarte/chronos-goals/internal/lock"
	"github.com/saulo-duarte/chronos-goals/internal/metrics"
	"github.com/saulo-duarte/chronos-goals/internal/objective"
	"github.com/saulo-duarte/chronos-goals/internal/progress"
	"github.com/saulo-duarte/chronos-goals/internal/quality"
	"github.com/saulo-duarte/chronos-goals/internal/store"
	"github.com/saulo-duarte/chronos-goals/internal/trend"
	util "github.com/saulo-duarte/chronos-goals/internal/utils"
)

type Container struct {
	Settings *config.Settings
	Store    store.Store
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	AmbitionContainer  *ambition.AmbitionContainer
	ObjectiveContainer *objective.ObjectiveContainer
	ProgressContainer  *progress.ProgressContainer
	QualityContainer   *quality.QualityContainer
	TrendContainer     *trend.TrendContainer
	ActionContainer    *action.ActionContainer

	redis *redis.Client
}

// New initializes the process-wide logger, clock and JWT secret from s and
// builds every feature container on one store.
func New(ctx context.Context, s *config.Settings) (*Container, error) {
	config.Init(s.LogLevel)
	util.SetLocation(s.Location())
	auth.Init(s.JWTSecret)

	st, err := store.Open(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	c := &Container{Settings: s, Store: st}

	var locker lock.Locker = lock.NewLocal()
	if s.RedisAddr != "" {
		c.redis = redis.NewClient(&redis.Options{Addr: s.RedisAddr})
		if err := c.redis.Ping(ctx).Err(); err != nil {
			c.Close()
			return nil, fmt.Errorf("connect redis %s: %w", s.RedisAddr, err)
		}
		locker = lock.NewRedis(c.redis, s.LockTTL)
		config.WithContext(ctx).WithField("addr", s.RedisAddr).Info("Using Redis column locks")
	}

	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	c.Metrics = metrics.MustNewMetrics(c.Registry)

	c.AmbitionContainer = ambition.NewAmbitionContainer(st)
	c.ObjectiveContainer = objective.NewObjectiveContainer(st)
	c.ProgressContainer = progress.NewProgressContainer(st, c.Metrics)
	c.QualityContainer = quality.NewQualityContainer(ctx, s, c.Metrics)
	c.TrendContainer = trend.NewTrendContainer(st)
	c.ActionContainer = action.NewActionContainer(st, locker, c.Metrics, s.MoveRetries)

	return c, nil
}

func (c *Container) Close() {
	if c.redis != nil {
		c.redis.Close()
	}
	if c.Store != nil {
		c.Store.Close()
	}
}
