package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Bootstrap prepares a command: it loads a .env file when present, reads
// configPath (or the default search paths), merges config.<APP_ENV>.yaml,
// and sets up logging. Flags then override the returned config.
func Bootstrap(configPath string) (*Config, zerolog.Logger, error) {
	envErr := godotenv.Load()

	if err := Init(configPath); err != nil {
		return nil, log.Logger, fmt.Errorf("failed to initialize config: %w", err)
	}
	if err := LoadEnvironmentConfig(os.Getenv("APP_ENV")); err != nil {
		return nil, log.Logger, err
	}
	c := Get()
	if err := Validate(c); err != nil {
		return nil, log.Logger, fmt.Errorf("config validation failed: %w", err)
	}

	logger := SetupLogging(c.Logging)
	if envErr != nil {
		logger.Debug().Err(envErr).Msg(".env file not loaded")
	}
	if used := ConfigFilePath(); used != "" {
		logger.Debug().Str("path", used).Msg("Loaded config file")
	}
	return c, logger, nil
}
