package server

import (
	"context"
	"fmt"
	"time"

	"feed/internal/biz"
	"feed/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/robfig/cron/v3"
)

const (
	defaultSweepSchedule = "@every 10m"
	sweepTimeout         = time.Minute
)

// CacheSweeper deletes long expired recommendation cache entries.
type CacheSweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// SweeperServer runs the recommendation cache sweep on a cron schedule. It
// implements transport.Server so the app starts and stops it with the HTTP server.
type SweeperServer struct {
	cron    *cron.Cron
	sweeper CacheSweeper
	enabled bool
	log     *log.Helper
}

// NewSweeperServer schedules the sweep described by c.
func NewSweeperServer(c *conf.Housekeeping, cache *biz.RecommendationCache, logger log.Logger) (*SweeperServer, error) {
	return newSweeperServer(c, cache, logger)
}

func newSweeperServer(c *conf.Housekeeping, sweeper CacheSweeper, logger log.Logger) (*SweeperServer, error) {
	s := &SweeperServer{
		cron:    cron.New(),
		sweeper: sweeper,
		log:     log.NewHelper(logger),
	}
	if c == nil || !c.Enabled {
		return s, nil
	}
	schedule := c.SweepSchedule
	if schedule == "" {
		schedule = defaultSweepSchedule
	}
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("add sweep schedule %q: %w", schedule, err)
	}
	s.enabled = true
	return s, nil
}

// Start implements transport.Server.
func (s *SweeperServer) Start(context.Context) error {
	if !s.enabled {
		s.log.Info("[Sweeper] disabled")
		return nil
	}
	s.log.Info("[Sweeper] starting")
	s.cron.Start()
	return nil
}

// Stop implements transport.Server. It waits for a running sweep to finish.
func (s *SweeperServer) Stop(ctx context.Context) error {
	s.log.Info("[Sweeper] stopping")
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SweeperServer) run() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	n, err := s.sweeper.Sweep(ctx)
	if err != nil {
		s.log.Errorf("[Sweeper] recommendation cache sweep failed: %v", err)
		return
	}
	s.log.Infof("[Sweeper] removed %d expired recommendation cache entries", n)
}
