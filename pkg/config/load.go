package config

import (
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads the first environment file found among envFilePath (searching
// parent directories), falls back to ./.env, then resolves the App config
// from the process environment.
func Load(envFilePath ...string) (*App, error) {
	logger := slog.Default()

	for _, path := range envFilePath {
		foundPath, err := FindEnvFile(path)
		if err != nil {
			logger.Debug("Environment file not found", "path", path, "error", err)
			continue
		}
		if err := godotenv.Load(foundPath); err != nil {
			logger.Error("Failed to load environment file", "path", foundPath, "error", err)
			continue
		}
		logger.Info("Loaded environment file", "path", foundPath)
		return loadFromEnv(logger)
	}

	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found, using system environment variables")
	}
	return loadFromEnv(logger)
}

func loadFromEnv(logger *slog.Logger) (*App, error) {
	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	// Upstream variables carry no common prefix.
	var upstream Upstream
	if err := envconfig.Process("", &upstream); err != nil {
		return nil, fmt.Errorf("failed to process upstream environment: %w", err)
	}
	cfg.Upstream = &upstream

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	logger.Info("App config loaded",
		"env", cfg.Env,
		"cache_backend", cfg.Cache.Backend,
		"cache_ttl", cfg.Upstream.CacheTTL(),
		"upstream_timeout", cfg.Upstream.Timeout(),
		"upstream_retries", cfg.Upstream.Retries,
		"upstream_url", cfg.Upstream.APIURL,
		"upstream_api_key", maskValue(cfg.Upstream.APIKey),
		"redis_url", maskValue(cfg.Redis.URL),
	)
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks value ranges on a resolved config.
func Validate(cfg *App) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func maskValue(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 6 {
		return "****"
	}
	return key[:2] + "****" + key[len(key)-4:]
}
