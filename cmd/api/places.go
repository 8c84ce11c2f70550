package main

import (
	"errors"
	"net/http"
	"strconv"

	"machinavi/internal/store"

	"github.com/go-chi/chi/v5"
)

func (app *application) getPlacesHandler(w http.ResponseWriter, r *http.Request) {
	filter := store.PlaceFilter{
		Category: r.URL.Query().Get("category"),
	}

	latStr := r.URL.Query().Get("lat")
	lngStr := r.URL.Query().Get("lng")
	if latStr != "" && lngStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lng, lngErr := strconv.ParseFloat(lngStr, 64)
		if latErr != nil || lngErr != nil {
			app.badRequestResponse(w, r, errors.New("lat and lng must be numbers"))
			return
		}
		filter.Lat = &lat
		filter.Lng = &lng
	}

	places, err := app.store.Places.List(filter)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, places)
}

// getPlaceHandler returns one place together with its most recent reviews.
func (app *application) getPlaceHandler(w http.ResponseWriter, r *http.Request) {
	placeID := chi.URLParam(r, "placeID")

	place, err := app.store.Places.Get(placeID)
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	recent, err := app.store.Reviews.List(r.Context(), placeID, 3)
	if err != nil {
		app.logger.Errorw("loading recent reviews failed", "place", placeID, "error", err)
		recent = []store.Review{}
	}

	response := struct {
		store.Place
		RecentReviews []store.Review `json:"recent_reviews"`
	}{
		Place:         *place,
		RecentReviews: recent,
	}

	app.jsonResponse(w, http.StatusOK, response)
}

type createPlacePayload struct {
	ID       string  `json:"id" validate:"required"`
	Name     string  `json:"name" validate:"required"`
	Category string  `json:"category" validate:"required"`
	Lat      float64 `json:"lat" validate:"required"`
	Lng      float64 `json:"lng" validate:"required"`

	Status      string  `json:"status"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
	PriceRange  string  `json:"price_range"`
	Specialty   string  `json:"specialty"`
	StayTime    string  `json:"stay_time"`
	Description string  `json:"description"`
}

func (app *application) createPlaceHandler(w http.ResponseWriter, r *http.Request) {
	var payload createPlacePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	place := &store.Place{
		ID:          payload.ID,
		Name:        payload.Name,
		Category:    payload.Category,
		Lat:         payload.Lat,
		Lng:         payload.Lng,
		Status:      payload.Status,
		Rating:      payload.Rating,
		ReviewCount: payload.ReviewCount,
		PriceRange:  payload.PriceRange,
		Specialty:   payload.Specialty,
		StayTime:    payload.StayTime,
		Description: payload.Description,
	}

	if err := app.store.Places.Create(place); err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, place)
}

func (app *application) updatePlaceHandler(w http.ResponseWriter, r *http.Request) {
	placeID := chi.URLParam(r, "placeID")

	var updates map[string]any
	if err := readJSON(w, r, &updates); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if len(updates) == 0 {
		app.badRequestResponse(w, r, errors.New("empty update payload"))
		return
	}

	place, err := app.store.Places.Update(placeID, updates)
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, place)
}

func (app *application) deletePlaceHandler(w http.ResponseWriter, r *http.Request) {
	placeID := chi.URLParam(r, "placeID")

	if err := app.store.Places.Delete(placeID); err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "place deleted"})
}
