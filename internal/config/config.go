package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/Bublikus/groshify-sub000/internal/logging"

	"github.com/joho/godotenv"
)

var once sync.Once

// LoadEnv loads environment variables from a .env file in the working
// directory or its parent, once per process. Existing variables win.
func LoadEnv() {
	once.Do(func() {
		envFile := findEnvFile()
		if envFile == "" {
			return
		}
		_ = godotenv.Load(envFile)
	})
}

func findEnvFile() string {
	for _, candidate := range []string{".env", filepath.Join("..", ".env")} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// GetEnv retrieves an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return value
}

// NewLogger builds the application logger from the log section.
func NewLogger(config *Config) logging.Logger {
	return logging.NewLogrusAdapterFromLogger(ConfigureLoggingFromConfig(config))
}
