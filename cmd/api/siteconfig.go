package main

import (
	"net/http"

	"machinavi/internal/store"
)

func (app *application) getSiteConfigHandler(w http.ResponseWriter, r *http.Request) {
	cfg, err := app.store.SiteConfig.Load()
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, cfg)
}

func (app *application) updateSiteConfigHandler(w http.ResponseWriter, r *http.Request) {
	var cfg store.SiteConfig
	if err := readJSON(w, r, &cfg); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(cfg); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.SiteConfig.Save(&cfg); err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"message": "config saved",
		"config":  cfg,
	})
}
