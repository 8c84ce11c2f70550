package main

import (
	"context"
	"errors"
	"expvar"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"machinavi/internal/auth"
	"machinavi/internal/ratelimiter"
	"machinavi/internal/realtime"
	"machinavi/internal/social"
	"machinavi/internal/store"
	"machinavi/internal/uploads"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type application struct {
	config        config
	store         store.Storage
	logger        *zap.SugaredLogger
	uploader      *uploads.Uploader
	social        social.Fetcher
	realtime      *realtime.Service
	authenticator auth.Authenticator
	rateLimiter   *ratelimiter.FixedWindowLimiter
}

type config struct {
	addr        string
	env         string
	dataDir     string
	uploadDir   string
	reviewsDB   string
	auth        authConfig
	social      socialConfig
	rateLimiter ratelimiter.Config
}

type authConfig struct {
	basic             basicConfig
	token             tokenConfig
	adminPasswordHash string
}

type tokenConfig struct {
	secret          string
	refreshSecret   string
	accessTokenExp  time.Duration
	refreshTokenExp time.Duration
	iss             string
}

type basicConfig struct {
	user string
	pass string
}

type socialConfig struct {
	twitterBearerToken string
	fetchTimeout       time.Duration
	refreshInterval    time.Duration
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		r.Route("/authentication", func(r chi.Router) {
			r.Post("/token", app.createTokenHandler)
			r.Post("/refresh", app.refreshTokenHandler)
		})

		r.Route("/places", func(r chi.Router) {
			r.Get("/", app.getPlacesHandler)
			r.Get("/{placeID}", app.getPlaceHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.AdminTokenMiddleware)
				r.Post("/", app.createPlaceHandler)
				r.Patch("/{placeID}", app.updatePlaceHandler)
				r.Delete("/{placeID}", app.deletePlaceHandler)
			})
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", app.getReviewsHandler)
			r.Post("/", app.createReviewHandler)
			r.Delete("/{reviewID}", app.deleteReviewHandler)
			r.With(app.RateLimiterMiddleware).Post("/{reviewID}/helpful", app.castHelpfulVoteHandler)
		})

		r.Route("/stores", func(r chi.Router) {
			r.Post("/realtime-update", app.realtimeUpdateHandler)
			r.Get("/{storeID}/social-posts", app.getSocialPostsHandler)
		})

		r.Get("/config", app.getSiteConfigHandler)
		r.With(app.AdminTokenMiddleware).Post("/config", app.updateSiteConfigHandler)
	})

	// Uploaded review images are public static assets.
	r.Handle("/uploads/*", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(app.config.uploadDir))))

	return r
}

func (app *application) run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
