package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/soyeahso/quizsmith/internal/logging"
)

// ConfigFileName is the agent config file looked up next to the binary.
const ConfigFileName = "agent_config.json"

// DefaultPath returns the config file path next to the running executable.
// Falls back to the working directory if the executable path is unknown.
func DefaultPath() string {
	exe, err := os.Executable()
	if err != nil {
		return ConfigFileName
	}
	return filepath.Join(filepath.Dir(exe), ConfigFileName)
}

// Load reads the agent config file and returns a merged Config.
// A missing or unparseable file is tolerated: a warning is logged and
// defaults apply. Storage and scheduler are always forced to memory,
// whatever the file contains.
func Load(path string, log *logging.Logger) Config {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("cannot read config file, using defaults")
		}
		return cfg
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("cannot parse config file, using defaults")
		return Defaults()
	}

	applyDefaults(&cfg)
	forceMemoryBackends(&cfg)
	return cfg
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}
	if cfg.Author == "" {
		cfg.Author = DefaultAuthor
	}
	if cfg.Deployment.URL == "" {
		cfg.Deployment = Deployment{URL: DefaultDeployURL, Expose: true}
	}
}

// ResolveModel resolves the model identifier once at startup:
// CLI flag > MODEL_NAME environment variable > hardcoded default.
func ResolveModel(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv("MODEL_NAME"); v != "" {
		return v
	}
	return DefaultModel
}
