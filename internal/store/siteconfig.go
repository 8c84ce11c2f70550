package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// SiteConfig is the mutable site-wide configuration served to the frontend.
type SiteConfig struct {
	AppTitle   string           `json:"appTitle" validate:"required"`
	Subtitle1  string           `json:"subtitle1,omitempty"`
	Subtitle2  string           `json:"subtitle2,omitempty"`
	Map        MapConfig        `json:"map" validate:"required"`
	Categories []CategoryConfig `json:"categories" validate:"required,min=1,dive"`
	AI         AIConfig         `json:"ai" validate:"required"`
}

type MapConfig struct {
	Center LatLng `json:"center"`
	Zoom   int    `json:"zoom"`
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type CategoryConfig struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

type AIConfig struct {
	Greeting       string `json:"greeting"`
	Description    string `json:"description"`
	CategoryPrompt string `json:"categoryPrompt"`
}

// SiteConfigStore persists the site configuration as a single JSON file,
// with the same atomic-replace discipline as the place store.
type SiteConfigStore struct {
	mu   sync.RWMutex
	path string
}

func NewSiteConfigStore(path string) (*SiteConfigStore, error) {
	s := &SiteConfigStore{path: path}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		if err := s.Save(defaultSiteConfig()); err != nil {
			return nil, fmt.Errorf("init config file: %w", err)
		}
	} else if err != nil {
		return nil, err
	}

	return s, nil
}

func defaultSiteConfig() *SiteConfig {
	return &SiteConfig{
		AppTitle:  "うつのみYEAH!",
		Subtitle1: "帰り道は宇都宮で。",
		Subtitle2: "寄り道が、特別な旅になる。",
		Map: MapConfig{
			Center: LatLng{Lat: 36.5579, Lng: 139.8984},
			Zoom:   14,
		},
		Categories: []CategoryConfig{
			{ID: "gyoza", Name: "餃子", Emoji: "🥟"},
			{ID: "cocktail", Name: "カクテル", Emoji: "🍸"},
			{ID: "jazz", Name: "ジャズ", Emoji: "🎷"},
		},
		AI: AIConfig{
			Greeting:       "こんにちは!宇都宮観光AI案内です 🎉",
			Description:    "短時間で宇都宮を楽しむ最適なルートをご提案します!",
			CategoryPrompt: "何を体験したいですか?",
		},
	}
}

func (s *SiteConfigStore) Load() (*SiteConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg SiteConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}
	return &cfg, nil
}

func (s *SiteConfigStore) Save(cfg *SiteConfig) error {
	if cfg.AppTitle == "" || len(cfg.Categories) == 0 {
		return fmt.Errorf("%w: appTitle, map, categories and ai are required", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".config-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close config file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace config file: %w", err)
	}
	return nil
}
