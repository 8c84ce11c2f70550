package main

import (
	"net/http"

	"machinavi/internal/realtime"
)

// realtimeUpdateHandler lets a store report its current status, wait time,
// crowd level, today's hours and (optionally) its social accounts.
func (app *application) realtimeUpdateHandler(w http.ResponseWriter, r *http.Request) {
	var payload realtime.Update
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	place, err := app.realtime.Apply(payload)
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"message": "update accepted",
		"store":   place,
	})
}
