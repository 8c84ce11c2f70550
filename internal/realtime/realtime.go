package realtime

import (
	"fmt"
	"time"

	"machinavi/internal/store"

	"go.uber.org/zap"
)

// PlaceUpdater is the slice of the place store this service needs.
type PlaceUpdater interface {
	Update(id string, updates map[string]any) (*store.Place, error)
}

// Update carries one realtime status report for a store.
type Update struct {
	StoreID          string `json:"store_id" validate:"required"`
	Status           string `json:"status"`
	WaitTime         int    `json:"wait_time"`
	CrowdLevel       int    `json:"crowd_level"`
	SpecialInfo      string `json:"special_info"`
	OpenTime         string `json:"open_time"`
	CloseTime        string `json:"close_time"`
	TwitterAccount   string `json:"twitter_account,omitempty"`
	InstagramAccount string `json:"instagram_account,omitempty"`
}

// Service applies realtime status reports to place records through the
// place store's merge path.
type Service struct {
	places PlaceUpdater
	logger *zap.SugaredLogger
}

func NewService(places PlaceUpdater, logger *zap.SugaredLogger) *Service {
	return &Service{places: places, logger: logger}
}

// Apply merges the report into the place record. Blank social handles are
// omitted from the merge so they never clear a previously stored handle.
func (s *Service) Apply(u Update) (*store.Place, error) {
	if u.StoreID == "" {
		return nil, fmt.Errorf("%w: store_id is required", store.ErrValidation)
	}

	updates := map[string]any{
		"status":        u.Status,
		"realtime_info": fmt.Sprintf("現在の混雑度: %d%% | 待ち時間: %d分 | %s", u.CrowdLevel, u.WaitTime, u.SpecialInfo),
		"today_hours":   fmt.Sprintf("%s〜%s", u.OpenTime, u.CloseTime),
		"last_updated":  time.Now().UTC().Format(time.RFC3339),
	}
	if u.TwitterAccount != "" {
		updates["twitter_account"] = u.TwitterAccount
	}
	if u.InstagramAccount != "" {
		updates["instagram_account"] = u.InstagramAccount
	}

	place, err := s.places.Update(u.StoreID, updates)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("realtime info updated", "store", place.Name)
	if u.TwitterAccount != "" || u.InstagramAccount != "" {
		s.logger.Infow("social accounts linked", "store", place.Name,
			"twitter", u.TwitterAccount, "instagram", u.InstagramAccount)
	}

	return place, nil
}
