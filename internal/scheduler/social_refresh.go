package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"machinavi/internal/social"
	"machinavi/internal/store"

	"go.uber.org/zap"
)

// PlaceLister is the read-only slice of the place store the refresher needs.
type PlaceLister interface {
	List(filter store.PlaceFilter) ([]store.Place, error)
}

// SocialRefresher sweeps the catalog on a fixed interval and pulls fresh
// posts for every place with a linked social account. It only reads the
// store and only logs; fetched posts are not persisted here.
type SocialRefresher struct {
	places   PlaceLister
	fetcher  social.Fetcher
	logger   *zap.SugaredLogger
	interval time.Duration
	running  atomic.Bool
}

func NewSocialRefresher(places PlaceLister, fetcher social.Fetcher, interval time.Duration, logger *zap.SugaredLogger) *SocialRefresher {
	return &SocialRefresher{
		places:   places,
		fetcher:  fetcher,
		logger:   logger,
		interval: interval,
	}
}

// Run sweeps once immediately, then on every tick until ctx is canceled.
func (s *SocialRefresher) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("social refresh scheduler stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep walks every place once. If a previous sweep is still in flight the
// call is skipped, so a slow external API cannot pile up concurrent sweeps.
func (s *SocialRefresher) Sweep(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("previous social sweep still running, skipping tick")
		return
	}
	defer s.running.Store(false)

	places, err := s.places.List(store.PlaceFilter{})
	if err != nil {
		s.logger.Errorw("social sweep could not load places", "error", err)
		return
	}

	refreshed := 0
	for _, place := range places {
		if ctx.Err() != nil {
			return
		}

		// The fetcher contract converts every failure into an empty
		// list, so one broken account never aborts the sweep.
		if place.TwitterAccount != "" {
			tweets := s.fetcher.FetchTweets(ctx, place.TwitterAccount)
			s.logger.Infow("fetched tweets", "store", place.Name, "count", len(tweets))
			refreshed++
		}
		if place.InstagramAccount != "" {
			posts := s.fetcher.FetchInstagramPosts(ctx, place.InstagramAccount)
			s.logger.Infow("fetched instagram posts", "store", place.Name, "count", len(posts))
			refreshed++
		}
	}

	s.logger.Infow("social sweep finished", "refreshed", refreshed)
}
