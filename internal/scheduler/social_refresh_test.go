package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"machinavi/internal/social"
	"machinavi/internal/store"

	"go.uber.org/zap"
)

type fakeLister struct {
	places []store.Place
}

func (f *fakeLister) List(filter store.PlaceFilter) ([]store.Place, error) {
	return f.places, nil
}

type fakeFetcher struct {
	mu        sync.Mutex
	tweets    int
	instagram int
	block     chan struct{} // when set, FetchTweets blocks until closed
	started   chan struct{}
}

func (f *fakeFetcher) FetchTweets(ctx context.Context, account string) []social.Post {
	f.mu.Lock()
	f.tweets++
	f.mu.Unlock()
	if f.block != nil {
		f.started <- struct{}{}
		<-f.block
	}
	return []social.Post{}
}

func (f *fakeFetcher) FetchInstagramPosts(ctx context.Context, account string) []social.Post {
	f.mu.Lock()
	f.instagram++
	f.mu.Unlock()
	return []social.Post{}
}

func (f *fakeFetcher) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tweets, f.instagram
}

func testPlaces() []store.Place {
	return []store.Place{
		{ID: "p1", Name: "Gyoza", TwitterAccount: "@gyoza"},
		{ID: "p2", Name: "Jazz", InstagramAccount: "jazz_bar"},
		{ID: "p3", Name: "Quiet"},
	}
}

func TestSweepFetchesOnlyLinkedAccounts(t *testing.T) {
	fetcher := &fakeFetcher{}
	s := NewSocialRefresher(&fakeLister{places: testPlaces()}, fetcher, time.Minute, zap.NewNop().Sugar())

	s.Sweep(context.Background())

	tweets, instagram := fetcher.counts()
	if tweets != 1 {
		t.Errorf("expected 1 tweet fetch, got %d", tweets)
	}
	if instagram != 1 {
		t.Errorf("expected 1 instagram fetch, got %d", instagram)
	}
}

func TestSweepSkipsWhileRunning(t *testing.T) {
	fetcher := &fakeFetcher{
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	s := NewSocialRefresher(&fakeLister{places: testPlaces()}, fetcher, time.Minute, zap.NewNop().Sugar())

	done := make(chan struct{})
	go func() {
		s.Sweep(context.Background())
		close(done)
	}()

	<-fetcher.started

	// A tick firing mid-sweep must be a no-op.
	s.Sweep(context.Background())

	tweets, _ := fetcher.counts()
	if tweets != 1 {
		t.Fatalf("overlapping sweep ran: %d tweet fetches", tweets)
	}

	close(fetcher.block)
	<-done
}

func TestSweepStopsOnCanceledContext(t *testing.T) {
	fetcher := &fakeFetcher{}
	s := NewSocialRefresher(&fakeLister{places: testPlaces()}, fetcher, time.Minute, zap.NewNop().Sugar())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Sweep(ctx)

	tweets, instagram := fetcher.counts()
	if tweets != 0 || instagram != 0 {
		t.Fatalf("canceled sweep still fetched: %d/%d", tweets, instagram)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	fetcher := &fakeFetcher{}
	s := NewSocialRefresher(&fakeLister{}, fetcher, time.Hour, zap.NewNop().Sugar())

	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(stopped)
	}()

	cancel()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
