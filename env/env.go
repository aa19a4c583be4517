// Package env loads runner configuration from the process environment,
// optionally seeded from a .env file. Command-line flags override these
// values.
package env

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config carries the runner defaults.
type Config struct {
	// DataDir is the folder holding Resource*.txt/.json and recipe.json.
	DataDir string
	// ExportDir is the root folder for generated graphs and controllers.
	ExportDir string
	// MaxDepth bounds the synthesis search; zero derives a default per
	// recipe transition.
	MaxDepth int
	// Debug switches the logger to development mode.
	Debug bool
}

// Load reads PCS_DATA_DIR, PCS_EXPORT_DIR, PCS_MAX_DEPTH and PCS_DEBUG,
// falling back to defaults. A missing .env file is not an error.
func Load(logger *zap.Logger) *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("could not load .env file", zap.Error(err))
	}
	cfg := &Config{
		DataDir:   "data",
		ExportDir: "exports",
	}
	if v, ok := os.LookupEnv("PCS_DATA_DIR"); ok {
		cfg.DataDir = v
	}
	if v, ok := os.LookupEnv("PCS_EXPORT_DIR"); ok {
		cfg.ExportDir = v
	}
	if v, ok := os.LookupEnv("PCS_MAX_DEPTH"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			logger.Fatal("PCS_MAX_DEPTH is not an integer", zap.String("value", v), zap.Error(err))
		}
		cfg.MaxDepth = n
	}
	if v, ok := os.LookupEnv("PCS_DEBUG"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			logger.Fatal("PCS_DEBUG is not a boolean", zap.String("value", v), zap.Error(err))
		}
		cfg.Debug = b
	}
	logger.Debug("configuration loaded",
		zap.String("dataDir", cfg.DataDir),
		zap.String("exportDir", cfg.ExportDir),
		zap.Int("maxDepth", cfg.MaxDepth))
	return cfg
}
