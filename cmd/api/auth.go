package main

import (
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type createTokenPayload struct {
	Password string `json:"password" validate:"required"`
}

// createTokenHandler exchanges the admin password for a JWT pair used on
// the catalog and config mutation routes.
func (app *application) createTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload createTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if !app.isAdminPassword(payload.Password) {
		app.unauthorizedErrorResponse(w, r, fmt.Errorf("invalid admin credentials"))
		return
	}

	access, refresh, err := app.authenticator.GenerateTokens("admin")
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{
		"access_token":  access,
		"refresh_token": refresh,
	})
}

type refreshTokenPayload struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (app *application) refreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload refreshTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	token, err := app.authenticator.ValidateRefreshToken(payload.RefreshToken)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["sub"] != "admin" {
		app.unauthorizedErrorResponse(w, r, fmt.Errorf("invalid refresh token subject"))
		return
	}

	access, refresh, err := app.authenticator.GenerateTokens("admin")
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{
		"access_token":  access,
		"refresh_token": refresh,
	})
}

// isAdminPassword compares a supplied password against the configured
// bcrypt hash. An empty hash disables admin access entirely.
func (app *application) isAdminPassword(password string) bool {
	hash := app.config.auth.adminPasswordHash
	if hash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
