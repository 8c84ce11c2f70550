package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
)

func newTestPlaceStore(t *testing.T) *PlaceStore {
	t.Helper()

	s, err := NewPlaceStore(filepath.Join(t.TempDir(), "places.json"))
	if err != nil {
		t.Fatalf("creating place store: %v", err)
	}
	return s
}

func testPlace(id string) *Place {
	return &Place{
		ID:       id,
		Name:     "Test",
		Category: "gyoza",
		Lat:      36.55,
		Lng:      139.90,
	}
}

func TestPlaceCreateAndGet(t *testing.T) {
	s := newTestPlaceStore(t)

	if err := s.Create(testPlace("p1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.Get("p1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Test" || got.Category != "gyoza" {
		t.Errorf("unexpected place: %+v", got)
	}
	if got.Status != "available" {
		t.Errorf("status should default to available, got %q", got.Status)
	}
	if got.Rating != 0 || got.ReviewCount != 0 {
		t.Errorf("aggregates should default to zero, got %f/%d", got.Rating, got.ReviewCount)
	}
	if got.GoogleMapsURL == "" {
		t.Error("google_maps_url should be derived on create")
	}
	if got.PopularMenus == nil {
		t.Error("popular_menus should default to an empty slice")
	}
}

func TestPlaceCreateDuplicateID(t *testing.T) {
	s := newTestPlaceStore(t)

	if err := s.Create(testPlace("p1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Create(testPlace("p1")); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestPlaceCreateMissingFields(t *testing.T) {
	s := newTestPlaceStore(t)

	p := testPlace("p1")
	p.Category = ""
	if err := s.Create(p); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestPlaceUpdatePinsID(t *testing.T) {
	s := newTestPlaceStore(t)

	if err := s.Create(testPlace("p1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.Update("p1", map[string]any{
		"id":     "hijacked",
		"status": "closed",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.ID != "p1" {
		t.Errorf("id must stay pinned to the path id, got %q", got.ID)
	}
	if got.Status != "closed" {
		t.Errorf("status not merged, got %q", got.Status)
	}

	// Untouched fields survive the merge.
	if got.Name != "Test" || got.Lat != 36.55 {
		t.Errorf("merge clobbered untouched fields: %+v", got)
	}
}

func TestPlaceUpdateNotFound(t *testing.T) {
	s := newTestPlaceStore(t)

	if _, err := s.Update("nope", map[string]any{"status": "closed"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPlaceDelete(t *testing.T) {
	s := newTestPlaceStore(t)

	if err := s.Create(testPlace("p1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.Delete("p1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get("p1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete("p1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for absent id, got %v", err)
	}
}

func TestPlaceListFilterAndAnnotation(t *testing.T) {
	s := newTestPlaceStore(t)

	gyoza := testPlace("p1")
	jazz := testPlace("p2")
	jazz.Category = "jazz"
	for _, p := range []*Place{gyoza, jazz} {
		if err := s.Create(p); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	all, err := s.List(PlaceFilter{Category: "all"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 places, got %d", len(all))
	}

	onlyJazz, err := s.List(PlaceFilter{Category: "jazz"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(onlyJazz) != 1 || onlyJazz[0].ID != "p2" {
		t.Fatalf("category filter failed: %+v", onlyJazz)
	}

	lat, lng := 36.56, 139.91
	annotated, err := s.List(PlaceFilter{Lat: &lat, Lng: &lng})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, p := range annotated {
		if p.Distance == "" || p.WalkTime == "" {
			t.Errorf("place %s missing distance annotation", p.ID)
		}
	}

	// Annotations are read-path only, never written back.
	stored, err := s.Get("p1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Distance != "" || stored.WalkTime != "" {
		t.Errorf("annotation leaked into storage: %+v", stored)
	}
}

func TestPlaceConcurrentCreates(t *testing.T) {
	s := newTestPlaceStore(t)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := s.Create(testPlace(fmt.Sprintf("p%d", i))); err != nil {
				t.Errorf("create p%d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	all, err := s.List(PlaceFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != n {
		t.Fatalf("lost updates under concurrency: want %d places, got %d", n, len(all))
	}
}
