package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/q939055502/jy-syzn/internal/config"
)

// Environment variable names.
const (
	envConfigPath = "PARAMTABLE_CONFIG"
	envOutputDir  = "PARAMTABLE_OUTPUT_DIR"
	envFontPath   = "PARAMTABLE_FONT_PATH"
	envTimeout    = "PARAMTABLE_TIMEOUT"
	envWorkers    = "PARAMTABLE_WORKERS"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // PARAMTABLE_CONFIG: config name or path
	OutputDir  string        // PARAMTABLE_OUTPUT_DIR: default output directory
	FontPaths  []string      // PARAMTABLE_FONT_PATH: font files, path-list separated
	Timeout    time.Duration // PARAMTABLE_TIMEOUT: snapshot timeout
	Workers    int           // PARAMTABLE_WORKERS: parallel workers
}

// knownEnvVars lists valid PARAMTABLE_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	envConfigPath: true,
	envOutputDir:  true,
	envFontPath:   true,
	envTimeout:    true,
	envWorkers:    true,
}

// loadEnvConfig reads configuration from environment variables.
// Invalid durations and counts are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv(envConfigPath),
		OutputDir:  os.Getenv(envOutputDir),
	}

	if fonts := os.Getenv(envFontPath); fonts != "" {
		for _, p := range filepath.SplitList(fonts) {
			if p = strings.TrimSpace(p); p != "" {
				cfg.FontPaths = append(cfg.FontPaths, p)
			}
		}
	}

	if timeout := os.Getenv(envTimeout); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := os.Getenv(envWorkers); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized PARAMTABLE_* variables.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "PARAMTABLE_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Scalars are only set when the config value is empty, font paths are tried
// before the configured ones. This ensures: CLI flags > env vars > config
// file > defaults (CLI flags are applied later via mergeFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.OutputDir != "" && cfg.Output.DefaultDir == "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if len(env.FontPaths) > 0 {
		cfg.Fonts.Paths = append(append([]string(nil), env.FontPaths...), cfg.Fonts.Paths...)
	}
	if env.Timeout > 0 && cfg.Snapshot.Timeout == "" {
		cfg.Snapshot.Timeout = env.Timeout.String()
	}
}
