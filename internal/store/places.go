package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"machinavi/internal/geo"
)

// Place represents a shop or venue in the guide catalog.
type Place struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Status      string  `json:"status"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`

	PriceRange    string   `json:"price_range"`
	Specialty     string   `json:"specialty"`
	StayTime      string   `json:"stay_time"`
	MenuPhoto     string   `json:"menu_photo"`
	RealtimeInfo  string   `json:"realtime_info"`
	Description   string   `json:"description"`
	GoogleMapsURL string   `json:"google_maps_url"`
	PopularMenus  []string `json:"popular_menus"`

	TodayHours       string `json:"today_hours,omitempty"`
	LastUpdated      string `json:"last_updated,omitempty"`
	TwitterAccount   string `json:"twitter_account,omitempty"`
	InstagramAccount string `json:"instagram_account,omitempty"`

	// Annotated on the read path when the caller supplies a location;
	// never persisted.
	Distance string `json:"distance,omitempty"`
	WalkTime string `json:"walk_time,omitempty"`
}

// PlaceFilter narrows List results. Lat/Lng, when both set, annotate every
// returned place with distance and walking time from that point.
type PlaceFilter struct {
	Category string
	Lat      *float64
	Lng      *float64
}

// PlaceStore keeps the whole place collection in a single JSON array file.
// Every operation loads the full collection; mutators rewrite the full file
// under the write lock so load-mutate-persist is atomic with respect to
// other writers.
type PlaceStore struct {
	mu   sync.RWMutex
	path string
}

func NewPlaceStore(path string) (*PlaceStore, error) {
	s := &PlaceStore{path: path}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		if err := s.persist([]Place{}); err != nil {
			return nil, fmt.Errorf("init places file: %w", err)
		}
	} else if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *PlaceStore) load() ([]Place, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read places file: %w", err)
	}

	var places []Place
	if err := json.Unmarshal(data, &places); err != nil {
		return nil, fmt.Errorf("decode places file: %w", err)
	}
	return places, nil
}

// persist writes the collection to a temp file and renames it into place, so
// a failed write never clobbers the previous collection.
func (s *PlaceStore) persist(places []Place) error {
	data, err := json.MarshalIndent(places, "", "  ")
	if err != nil {
		return fmt.Errorf("encode places: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".places-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write places: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close places file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace places file: %w", err)
	}
	return nil
}

func (s *PlaceStore) List(filter PlaceFilter) ([]Place, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	places, err := s.load()
	if err != nil {
		return nil, err
	}

	if filter.Category != "" && filter.Category != "all" {
		filtered := places[:0]
		for _, p := range places {
			if p.Category == filter.Category {
				filtered = append(filtered, p)
			}
		}
		places = filtered
	}

	if filter.Lat != nil && filter.Lng != nil {
		for i := range places {
			km := geo.Distance(*filter.Lat, *filter.Lng, places[i].Lat, places[i].Lng)
			places[i].Distance = geo.FormatDistance(km)
			places[i].WalkTime = geo.WalkTime(km)
		}
	}

	return places, nil
}

func (s *PlaceStore) Get(id string) (*Place, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	places, err := s.load()
	if err != nil {
		return nil, err
	}

	for i := range places {
		if places[i].ID == id {
			return &places[i], nil
		}
	}
	return nil, ErrNotFound
}

// Create appends a new place. Required fields are checked here as the last
// line of defense; handlers validate the payload shape first.
func (s *PlaceStore) Create(place *Place) error {
	if place.ID == "" || place.Name == "" || place.Category == "" || place.Lat == 0 || place.Lng == 0 {
		return fmt.Errorf("%w: id, name, category, lat and lng are required", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	places, err := s.load()
	if err != nil {
		return err
	}

	for _, p := range places {
		if p.ID == place.ID {
			return fmt.Errorf("%w: place %q", ErrDuplicateID, place.ID)
		}
	}

	applyPlaceDefaults(place)
	places = append(places, *place)

	return s.persist(places)
}

func applyPlaceDefaults(p *Place) {
	if p.Status == "" {
		p.Status = "available"
	}
	if p.GoogleMapsURL == "" {
		p.GoogleMapsURL = fmt.Sprintf("https://maps.google.com/?q=%v,%v", p.Lat, p.Lng)
	}
	if p.PopularMenus == nil {
		p.PopularMenus = []string{}
	}
}

// Update performs a shallow field merge: keys present in updates overwrite
// the stored value, absent keys are untouched. The id always stays the path
// id, whatever the payload says.
func (s *PlaceStore) Update(id string, updates map[string]any) (*Place, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	places, err := s.load()
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range places {
		if places[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrNotFound
	}

	merged, err := mergePlace(places[idx], updates, id)
	if err != nil {
		return nil, err
	}
	places[idx] = *merged

	if err := s.persist(places); err != nil {
		return nil, err
	}
	return merged, nil
}

// mergePlace round-trips the stored record through a generic map so the
// partial payload can overwrite any subset of fields.
func mergePlace(current Place, updates map[string]any, id string) (*Place, error) {
	raw, err := json.Marshal(current)
	if err != nil {
		return nil, err
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	for k, v := range updates {
		fields[k] = v
	}
	fields["id"] = id

	raw, err = json.Marshal(fields)
	if err != nil {
		return nil, err
	}

	var merged Place
	if err := json.Unmarshal(raw, &merged); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	merged.ID = id
	return &merged, nil
}

func (s *PlaceStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	places, err := s.load()
	if err != nil {
		return err
	}

	remaining := places[:0]
	for _, p := range places {
		if p.ID != id {
			remaining = append(remaining, p)
		}
	}
	if len(remaining) == len(places) {
		return ErrNotFound
	}

	return s.persist(remaining)
}
