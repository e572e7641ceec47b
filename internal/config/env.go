package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/livedoc/internal/logfields"
)

// envFiles are loaded in order before the config file is expanded.
var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads every present env file. Existing process environment
// variables are not overwritten, so .env wins over .env.local.
func loadEnvFiles() {
	for _, path := range envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			slog.Warn("Failed to load env file", logfields.File(path), logfields.Error(err))
			continue
		}
		slog.Debug("Loaded environment variables", logfields.File(path))
	}
}
