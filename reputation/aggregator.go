package reputation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/solanahub/solblaze-detox/config"
	"github.com/solanahub/solblaze-detox/metrics"
	"github.com/solanahub/solblaze-detox/notify"
	"golang.org/x/sync/errgroup"
)

var ErrMasterFeed = errors.New("master validator feed is unavailable")

const (
	SourceStakeWiz = "stakewiz"
)

type Aggregator struct {
	source         Source
	policies       []*config.Policy
	highCommission float64
	logger         *log.Logger
	metrics        *metrics.Metrics
	notify         *notify.Notify
}

func NewAggregator(source Source, cfg *config.Config, logger *log.Logger, m *metrics.Metrics, n *notify.Notify) *Aggregator {
	return &Aggregator{
		source:         source,
		policies:       cfg.Policies,
		highCommission: cfg.HighCommission,
		logger:         logger,
		metrics:        m,
		notify:         n,
	}
}

// Fetch downloads the master feed and every policy list concurrently, then
// aggregates them. A failing policy list contributes nothing; a failing
// master feed fails the whole call with ErrMasterFeed.
func (a *Aggregator) Fetch(ctx context.Context) (*Registry, error) {
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	var master []*FeedValidator
	g.Go(func() error {
		validators, err := a.source.Validators(gctx)
		a.metrics.FeedFetch(SourceStakeWiz, err == nil)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrMasterFeed, err)
		}
		master = validators
		return nil
	})
	lists := make([]*PolicyList, len(a.policies))
	for i, policy := range a.policies {
		i, policy := i, policy
		g.Go(func() error {
			list, err := a.source.PolicyList(gctx, policy)
			a.metrics.FeedFetch(policy.Name, err == nil)
			if err != nil {
				a.logger.Printf("fetch policy %s (%s) err: %v", policy.Name, policy.Pubkey, err)
				return nil
			}
			lists[i] = list
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		a.logger.Printf("aggregate validators err: %v", err)
		a.notify.Commit(fmt.Sprintf("validator aggregation failed;\nerr: %v", err))
		return nil, err
	}
	registry := Aggregate(master, lists, a.highCommission)
	a.metrics.RegistrySize(len(registry.Bad), len(registry.Good))
	a.metrics.ObserveAggregation(time.Since(start).Seconds())
	a.logger.Printf("aggregated validators, master: %d, bad: %d, good: %d", len(master), len(registry.Bad), len(registry.Good))
	return registry, nil
}
