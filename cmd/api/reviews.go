package main

import (
	"errors"
	"net/http"
	"strconv"

	"machinavi/internal/store"
	"machinavi/internal/uploads"

	"github.com/go-chi/chi/v5"
)

func (app *application) getReviewsHandler(w http.ResponseWriter, r *http.Request) {
	placeID := r.URL.Query().Get("place_id")

	reviews, err := app.store.Reviews.List(r.Context(), placeID, 0)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, reviews)
}

type createReviewPayload struct {
	PlaceID    string `validate:"required"`
	AuthorName string `validate:"required"`
	Content    string `validate:"required"`
	Rating     int    `validate:"required,min=1,max=5"`
}

// createReviewHandler accepts a multipart form so a review can carry an
// optional image in the same request.
func (app *application) createReviewHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, uploads.MaxImageSize+1<<20)
	if err := r.ParseMultipartForm(uploads.MaxImageSize); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	rating, err := strconv.Atoi(r.FormValue("rating"))
	if err != nil {
		app.badRequestResponse(w, r, errors.New("rating must be a number between 1 and 5"))
		return
	}

	payload := createReviewPayload{
		PlaceID:    r.FormValue("place_id"),
		AuthorName: r.FormValue("author_name"),
		Content:    r.FormValue("content"),
		Rating:     rating,
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var imagePath *string
	if files := r.MultipartForm.File["image"]; len(files) > 0 {
		path, err := app.uploader.SaveImage(files[0])
		if err != nil {
			app.badRequestResponse(w, r, err)
			return
		}
		imagePath = &path
	}

	review := &store.Review{
		PlaceID:    payload.PlaceID,
		AuthorName: payload.AuthorName,
		Content:    payload.Content,
		Rating:     payload.Rating,
		ImagePath:  imagePath,
	}

	if err := app.store.Reviews.Create(r.Context(), review); err != nil {
		// The image never belonged to a stored review; clean it up.
		if imagePath != nil {
			if rmErr := app.uploader.Remove(*imagePath); rmErr != nil {
				app.logger.Warnw("orphan image cleanup failed", "path", *imagePath, "error", rmErr)
			}
		}
		app.storeErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, map[string]any{
		"message": "review posted",
		"id":      review.ID,
	})
}

type deleteReviewPayload struct {
	AuthorName    string `json:"author_name"`
	AdminPassword string `json:"admin_password"`
}

func (app *application) deleteReviewHandler(w http.ResponseWriter, r *http.Request) {
	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid review ID"))
		return
	}

	var payload deleteReviewPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	isAdmin := app.isAdminPassword(payload.AdminPassword)

	imagePath, err := app.store.Reviews.Delete(r.Context(), reviewID, payload.AuthorName, isAdmin)
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	// Image removal is best-effort; the review is already gone.
	if imagePath != "" {
		if err := app.uploader.Remove(imagePath); err != nil {
			app.logger.Warnw("review image removal failed", "path", imagePath, "error", err)
		}
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "review deleted"})
}

func (app *application) castHelpfulVoteHandler(w http.ResponseWriter, r *http.Request) {
	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid review ID"))
		return
	}

	if err := app.store.Reviews.CastHelpfulVote(r.Context(), reviewID, clientIP(r)); err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "vote recorded"})
}
