package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicateID  = errors.New("resource already exists")
	ErrAlreadyVoted = errors.New("already voted")
	ErrForbidden    = errors.New("not allowed")
	ErrValidation   = errors.New("invalid input")

	QueryTimeoutDuration = time.Second * 5
)

type Storage struct {
	Places interface {
		List(filter PlaceFilter) ([]Place, error)
		Get(id string) (*Place, error)
		Create(place *Place) error
		Update(id string, updates map[string]any) (*Place, error)
		Delete(id string) error
	}
	Reviews interface {
		Create(ctx context.Context, review *Review) error
		List(ctx context.Context, placeID string, limit int) ([]Review, error)
		Delete(ctx context.Context, reviewID int64, authorName string, isAdmin bool) (imagePath string, err error)
		CastHelpfulVote(ctx context.Context, reviewID int64, voterIP string) error
	}
	SiteConfig interface {
		Load() (*SiteConfig, error)
		Save(cfg *SiteConfig) error
	}
}

func NewStorage(db *sql.DB, placesPath, configPath string) (Storage, error) {
	places, err := NewPlaceStore(placesPath)
	if err != nil {
		return Storage{}, err
	}

	siteConfig, err := NewSiteConfigStore(configPath)
	if err != nil {
		return Storage{}, err
	}

	return Storage{
		Places:     places,
		Reviews:    &ReviewStore{db},
		SiteConfig: siteConfig,
	}, nil
}
