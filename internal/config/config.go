// Package config loads the agent configuration file and resolves the
// model identifier from the layered CLI > environment > default chain.
package config

// Storage backend types. Only memory is supported; the loader forces it
// so a stray config file can never point the agent at a database.
const (
	StorageMemory = "memory"
)

// Defaults applied when the config file is missing or leaves fields unset.
const (
	DefaultName      = "quiz-generator-agent"
	DefaultAuthor    = "developer@example.com"
	DefaultDeployURL = "http://127.0.0.1:3773"

	// DefaultModel is used when neither --model nor MODEL_NAME is set.
	DefaultModel = "google/gemini-2.0-flash-lite-preview-02-05:free"
)

// Config is the agent configuration, read from agent_config.json.
type Config struct {
	Name       string     `json:"name"`
	Author     string     `json:"author"`
	Deployment Deployment `json:"deployment"`
	Storage    Backend    `json:"storage"`
	Scheduler  Backend    `json:"scheduler"`
}

// Deployment describes where the task server listens.
type Deployment struct {
	URL    string `json:"url"`
	Expose bool   `json:"expose"`
}

// Backend selects a storage or scheduler implementation by type name.
type Backend struct {
	Type string `json:"type"`
}

// Defaults returns a Config with every field set to its default value.
func Defaults() Config {
	cfg := Config{
		Name:   DefaultName,
		Author: DefaultAuthor,
		Deployment: Deployment{
			URL:    DefaultDeployURL,
			Expose: true,
		},
	}
	forceMemoryBackends(&cfg)
	return cfg
}

// forceMemoryBackends overwrites storage and scheduler regardless of what
// the file said. The agent must never persist anything.
func forceMemoryBackends(cfg *Config) {
	cfg.Storage = Backend{Type: StorageMemory}
	cfg.Scheduler = Backend{Type: StorageMemory}
}
