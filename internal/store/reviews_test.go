package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"machinavi/internal/db"
)

func newTestReviewStore(t *testing.T) *ReviewStore {
	t.Helper()

	conn, err := db.New(filepath.Join(t.TempDir(), "reviews.db"))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return &ReviewStore{conn}
}

func testReview(placeID string) *Review {
	return &Review{
		PlaceID:    placeID,
		AuthorName: "Alice",
		Content:    "Great",
		Rating:     5,
	}
}

func TestReviewCreate(t *testing.T) {
	s := newTestReviewStore(t)
	ctx := context.Background()

	review := testReview("p1")
	if err := s.Create(ctx, review); err != nil {
		t.Fatalf("create: %v", err)
	}
	if review.ID == 0 {
		t.Error("expected an assigned id")
	}
	if review.CreatedAt == "" {
		t.Error("expected a creation timestamp")
	}

	second := testReview("p1")
	if err := s.Create(ctx, second); err != nil {
		t.Fatalf("create: %v", err)
	}
	if second.ID <= review.ID {
		t.Errorf("ids must increase monotonically: %d then %d", review.ID, second.ID)
	}
}

func TestReviewCreateValidation(t *testing.T) {
	s := newTestReviewStore(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*Review)
	}{
		{"rating zero", func(r *Review) { r.Rating = 0 }},
		{"rating six", func(r *Review) { r.Rating = 6 }},
		{"missing author", func(r *Review) { r.AuthorName = "" }},
		{"missing content", func(r *Review) { r.Content = "" }},
		{"missing place", func(r *Review) { r.PlaceID = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			review := testReview("p1")
			tt.mutate(review)
			if err := s.Create(ctx, review); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestReviewListByPlace(t *testing.T) {
	s := newTestReviewStore(t)
	ctx := context.Background()

	for _, placeID := range []string{"p1", "p1", "p2"} {
		if err := s.Create(ctx, testReview(placeID)); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	all, err := s.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 reviews, got %d", len(all))
	}

	// Newest first.
	for i := 1; i < len(all); i++ {
		if all[i-1].ID < all[i].ID {
			t.Fatalf("reviews not ordered newest first: %d before %d", all[i-1].ID, all[i].ID)
		}
	}

	p1Only, err := s.List(ctx, "p1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(p1Only) != 2 {
		t.Fatalf("expected 2 reviews for p1, got %d", len(p1Only))
	}

	limited, err := s.List(ctx, "", 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("limit ignored, got %d reviews", len(limited))
	}
	if limited[0].HelpfulCount != 0 {
		t.Errorf("helpful_count should start at 0, got %d", limited[0].HelpfulCount)
	}
}

func TestCastHelpfulVoteIdempotence(t *testing.T) {
	s := newTestReviewStore(t)
	ctx := context.Background()

	review := testReview("p1")
	if err := s.Create(ctx, review); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.CastHelpfulVote(ctx, review.ID, "1.2.3.4"); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	if got := helpfulCount(t, s, review.ID); got != 1 {
		t.Fatalf("expected count 1, got %d", got)
	}

	if err := s.CastHelpfulVote(ctx, review.ID, "1.2.3.4"); !errors.Is(err, ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}
	if got := helpfulCount(t, s, review.ID); got != 1 {
		t.Fatalf("repeat vote changed the count to %d", got)
	}

	if err := s.CastHelpfulVote(ctx, review.ID, "5.6.7.8"); err != nil {
		t.Fatalf("second voter: %v", err)
	}
	if got := helpfulCount(t, s, review.ID); got != 2 {
		t.Fatalf("expected count 2, got %d", got)
	}
}

func TestCastHelpfulVoteUnknownReview(t *testing.T) {
	s := newTestReviewStore(t)

	if err := s.CastHelpfulVote(context.Background(), 999, "1.2.3.4"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReviewDeleteAuthorization(t *testing.T) {
	s := newTestReviewStore(t)
	ctx := context.Background()

	review := testReview("p1")
	if err := s.Create(ctx, review); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := s.Delete(ctx, review.ID, "Mallory", false); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	if _, err := s.Delete(ctx, review.ID, "Alice", false); err != nil {
		t.Fatalf("author delete: %v", err)
	}

	if _, err := s.Delete(ctx, review.ID, "", true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestReviewDeleteByAdmin(t *testing.T) {
	s := newTestReviewStore(t)
	ctx := context.Background()

	imagePath := "/uploads/abc.png"
	review := testReview("p1")
	review.ImagePath = &imagePath
	if err := s.Create(ctx, review); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.Delete(ctx, review.ID, "", true)
	if err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if got != imagePath {
		t.Errorf("expected stored image path %q back, got %q", imagePath, got)
	}
}

func TestReviewDeleteCascadesVotes(t *testing.T) {
	s := newTestReviewStore(t)
	ctx := context.Background()

	review := testReview("p1")
	if err := s.Create(ctx, review); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.CastHelpfulVote(ctx, review.ID, "1.2.3.4"); err != nil {
		t.Fatalf("vote: %v", err)
	}

	if _, err := s.Delete(ctx, review.ID, "Alice", false); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// The vote rows are gone with the review: the same voter re-voting on
	// the dead id sees NotFound, never AlreadyVoted.
	if err := s.CastHelpfulVote(ctx, review.ID, "1.2.3.4"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	var orphans int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM helpful_votes WHERE review_id = ?`, review.ID).Scan(&orphans)
	if err != nil {
		t.Fatalf("counting votes: %v", err)
	}
	if orphans != 0 {
		t.Fatalf("%d orphan vote rows survived review deletion", orphans)
	}
}

func helpfulCount(t *testing.T, s *ReviewStore, reviewID int64) int {
	t.Helper()

	var count int
	err := s.db.QueryRow(`SELECT helpful_count FROM reviews WHERE id = ?`, reviewID).Scan(&count)
	if err != nil {
		t.Fatalf("reading helpful_count: %v", err)
	}
	return count
}
