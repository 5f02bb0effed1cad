package config

import (
	"errors"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/workflow-telemetry/internal/logfields"
)

// DefaultEnvFiles are tried in order by LoadEnvFiles.
var DefaultEnvFiles = []string{".env", ".env.local"}

// LoadEnvFiles loads the first readable file of paths into the process environment.
// Variables already set are never overridden. A missing file is not an error.
func LoadEnvFiles(logger *slog.Logger, paths ...string) error {
	if logger == nil {
		logger = slog.Default()
	}
	for _, p := range paths {
		err := godotenv.Load(p)
		if err == nil {
			logger.Debug("Loaded environment file", logfields.Path(p))
			return nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}
