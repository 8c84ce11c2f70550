package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"machinavi/internal/auth"
	"machinavi/internal/db"
	"machinavi/internal/ratelimiter"
	"machinavi/internal/realtime"
	"machinavi/internal/scheduler"
	"machinavi/internal/social"
	"machinavi/internal/store"
	"machinavi/internal/uploads"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "1.0.0"

// NewLogger creates a new zap logger with color.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)
	core := zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), zapcore.InfoLevel)

	return zap.New(core).Sugar(), nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
		fmt.Println("Invalid", key, "- defaulting to", fallback)
	}
	return fallback
}

// LoadRateLimiterConfig retrieves rate limiter settings from environment variables.
func LoadRateLimiterConfig() ratelimiter.Config {
	defaultRequests := 20
	defaultEnabled := true

	requestsPerTimeFrame := defaultRequests
	if val, exists := os.LookupEnv("RATELIMITER_REQUESTS_COUNT"); exists {
		if parsedVal, err := strconv.Atoi(val); err == nil {
			requestsPerTimeFrame = parsedVal
		} else {
			fmt.Println("Invalid RATELIMITER_REQUESTS_COUNT, defaulting to", defaultRequests)
		}
	}

	enabled := defaultEnabled
	if val, exists := os.LookupEnv("RATE_LIMITER_ENABLED"); exists {
		if parsedVal, err := strconv.ParseBool(val); err == nil {
			enabled = parsedVal
		} else {
			fmt.Println("Invalid RATE_LIMITER_ENABLED, defaulting to", defaultEnabled)
		}
	}

	return ratelimiter.Config{
		RequestsPerTimeFrame: requestsPerTimeFrame,
		TimeFrame:            5 * time.Second,
		Enabled:              enabled,
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on the environment")
	}

	dataDir := envOrDefault("DATA_DIR", "data")

	cfg := config{
		addr:      envOrDefault("ADDR", ":8000"),
		env:       envOrDefault("ENV", "development"),
		dataDir:   dataDir,
		uploadDir: envOrDefault("UPLOAD_DIR", "uploads"),
		reviewsDB: envOrDefault("REVIEWS_DB_PATH", "reviews.db"),
		auth: authConfig{
			basic: basicConfig{
				user: os.Getenv("AUTH_BASIC_USER"),
				pass: os.Getenv("AUTH_BASIC_PASS"),
			},
			token: tokenConfig{
				secret:          os.Getenv("AUTH_TOKEN_SECRET"),
				refreshSecret:   os.Getenv("AUTH_TOKEN_REFRESH_SECRET"),
				accessTokenExp:  envDuration("AUTH_ACCESS_TOKEN_EXP", time.Hour*24),
				refreshTokenExp: envDuration("AUTH_REFRESH_TOKEN_EXP", time.Hour*24*7),
				iss:             "machinavi",
			},
			adminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		},
		social: socialConfig{
			twitterBearerToken: os.Getenv("TWITTER_BEARER_TOKEN"),
			fetchTimeout:       envDuration("SOCIAL_FETCH_TIMEOUT", 10*time.Second),
			refreshInterval:    envDuration("SOCIAL_REFRESH_INTERVAL", 30*time.Minute),
		},
		rateLimiter: LoadRateLimiterConfig(),
	}

	logger, err := NewLogger()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		return
	}
	defer logger.Sync()

	// Reviews database
	reviewsDB, err := db.New(cfg.reviewsDB)
	if err != nil {
		logger.Fatal(err)
	}
	defer reviewsDB.Close()
	logger.Infow("reviews database ready", "path", cfg.reviewsDB)

	// Storage (file-backed places + site config, relational reviews)
	storage, err := store.NewStorage(
		reviewsDB,
		filepath.Join(dataDir, "places.json"),
		filepath.Join(dataDir, "config.json"),
	)
	if err != nil {
		logger.Fatal(err)
	}

	uploader, err := uploads.New(cfg.uploadDir)
	if err != nil {
		logger.Fatal(err)
	}

	socialClient := social.NewClient(cfg.social.twitterBearerToken, cfg.social.fetchTimeout, logger)

	rateLimiter := ratelimiter.NewFixedWindowLimiter(
		cfg.rateLimiter.RequestsPerTimeFrame,
		cfg.rateLimiter.TimeFrame,
	)

	jwtAuthenticator := auth.NewJWTAuthenticator(
		cfg.auth.token.secret,
		cfg.auth.token.refreshSecret,
		cfg.auth.token.iss,
		cfg.auth.token.iss,
		cfg.auth.token.accessTokenExp,
		cfg.auth.token.refreshTokenExp,
	)

	app := &application{
		config:        cfg,
		logger:        logger,
		store:         storage,
		uploader:      uploader,
		social:        socialClient,
		realtime:      realtime.NewService(storage.Places, logger),
		authenticator: jwtAuthenticator,
		rateLimiter:   rateLimiter,
	}

	// Background social refresh, stopped when the server shuts down.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	refresher := scheduler.NewSocialRefresher(
		storage.Places,
		socialClient,
		cfg.social.refreshInterval,
		logger,
	)
	go refresher.Run(ctx)

	// Metrics collected under /v1/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("database", expvar.Func(func() any {
		return reviewsDB.Stats()
	}))
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
