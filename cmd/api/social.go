package main

import (
	"net/http"

	"machinavi/internal/social"

	"github.com/go-chi/chi/v5"
)

// getSocialPostsHandler returns the latest social posts for one store. The
// fetchers never fail, so a broken account simply yields empty lists.
func (app *application) getSocialPostsHandler(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "storeID")

	place, err := app.store.Places.Get(storeID)
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	twitter := []social.Post{}
	instagram := []social.Post{}

	if place.TwitterAccount != "" {
		twitter = app.social.FetchTweets(r.Context(), place.TwitterAccount)
	}
	if place.InstagramAccount != "" {
		instagram = app.social.FetchInstagramPosts(r.Context(), place.InstagramAccount)
	}

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"store_id":      place.ID,
		"store_name":    place.Name,
		"has_twitter":   place.TwitterAccount != "",
		"has_instagram": place.InstagramAccount != "",
		"posts": map[string][]social.Post{
			"twitter":   twitter,
			"instagram": instagram,
		},
	})
}
