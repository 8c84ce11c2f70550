package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// Review is one user submission tied to a place.
type Review struct {
	ID           int64   `json:"id"`
	PlaceID      string  `json:"place_id"`
	AuthorName   string  `json:"author_name"`
	Content      string  `json:"content"`
	Rating       int     `json:"rating"` // 1-5
	ImagePath    *string `json:"image_path"`
	CreatedAt    string  `json:"created_at"` // rendered in local time
	HelpfulCount int     `json:"helpful_count"`
}

type ReviewStore struct {
	db *sql.DB
}

func (s *ReviewStore) Create(ctx context.Context, review *Review) error {
	if review.AuthorName == "" || review.Content == "" || review.PlaceID == "" {
		return fmt.Errorf("%w: author_name, content and place_id are required", ErrValidation)
	}
	if review.Rating < 1 || review.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		INSERT INTO reviews (place_id, author_name, content, rating, image_path)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, datetime(created_at, 'localtime')
	`
	return s.db.QueryRowContext(ctx, query,
		review.PlaceID,
		review.AuthorName,
		review.Content,
		review.Rating,
		review.ImagePath,
	).Scan(&review.ID, &review.CreatedAt)
}

// List returns reviews newest first, optionally restricted to one place and
// capped at limit (0 means no cap).
func (s *ReviewStore) List(ctx context.Context, placeID string, limit int) ([]Review, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		SELECT id, place_id, author_name, content, rating, image_path,
		       datetime(created_at, 'localtime') as created_at,
		       helpful_count
		FROM reviews
	`
	args := []any{}

	if placeID != "" {
		query += ` WHERE place_id = ?`
		args = append(args, placeID)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []Review{}
	for rows.Next() {
		var review Review
		err := rows.Scan(
			&review.ID,
			&review.PlaceID,
			&review.AuthorName,
			&review.Content,
			&review.Rating,
			&review.ImagePath,
			&review.CreatedAt,
			&review.HelpfulCount,
		)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

// Delete removes a review and all of its helpful votes in one transaction.
// Allowed for the admin or for a requester whose name matches the stored
// author name exactly. Returns the stored image path, if any, so the caller
// can remove the uploaded file.
func (s *ReviewStore) Delete(ctx context.Context, reviewID int64, authorName string, isAdmin bool) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var storedAuthor string
	var imagePath sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT author_name, image_path FROM reviews WHERE id = ?`, reviewID,
	).Scan(&storedAuthor, &imagePath)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}

	if !isAdmin && authorName != storedAuthor {
		return "", ErrForbidden
	}

	// Votes first so no orphan vote row can survive the review.
	if _, err := tx.ExecContext(ctx, `DELETE FROM helpful_votes WHERE review_id = ?`, reviewID); err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, reviewID); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return imagePath.String, nil
}

// CastHelpfulVote records one vote per (review, voter) for all time. The
// vote insert and the counter increment commit together, so helpful_count
// always equals the number of vote rows for the review.
func (s *ReviewStore) CastHelpfulVote(ctx context.Context, reviewID int64, voterIP string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM reviews WHERE id = ?`, reviewID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM helpful_votes WHERE review_id = ? AND voter_ip = ?`,
		reviewID, voterIP,
	).Scan(&exists)
	if err == nil {
		return ErrAlreadyVoted
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO helpful_votes (review_id, voter_ip) VALUES (?, ?)`,
		reviewID, voterIP,
	)
	if err != nil {
		// The UNIQUE(review_id, voter_ip) constraint backs the check above
		// against a concurrent vote from the same address.
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return ErrAlreadyVoted
		}
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE reviews SET helpful_count = helpful_count + 1 WHERE id = ?`,
		reviewID,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}
