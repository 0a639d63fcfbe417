// Package config loads fleet configuration from an optional yaml file with
// environment overrides (prefix BB_). Flags in cmd/fleet override both.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Simulation backend.
	BackendURL string `yaml:"backend_url"`
	Module     string `yaml:"module"`

	// Completion service.
	LLMEndpoint string `yaml:"llm_endpoint"`
	LLMAPIKey   string `yaml:"llm_api_key"`
	LLMModel    string `yaml:"llm_model"`

	// Fleet shape and cadence.
	FleetSize         int `yaml:"fleet_size"`
	PlannerIntervalMs int `yaml:"planner_interval_ms"`
	ReactiveHz        int `yaml:"reactive_hz"`
	MaxPlannerRetries int `yaml:"max_planner_retries"`

	// Filesystem.
	DataDir    string `yaml:"data_dir"`
	RosterPath string `yaml:"roster"`
}

func defaults() Config {
	return Config{
		BackendURL:        "ws://localhost:3000/v1/ws",
		Module:            "broth-bullets",
		LLMEndpoint:       "https://api.openai.com/v1/chat/completions",
		LLMModel:          "gpt-4o",
		FleetSize:         6,
		PlannerIntervalMs: 30000,
		ReactiveHz:        4,
		MaxPlannerRetries: 2,
		DataDir:           "./data",
		RosterPath:        "./configs/roster.yaml",
	}
}

// Load reads path (missing file is fine: defaults apply), then applies
// BB_* environment overrides, then validates.
func Load(path string) (Config, error) {
	cfg := defaults()
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return cfg, err
		}
		if err == nil {
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("fleet.yaml: %w", err)
			}
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setStr := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setStr(&c.BackendURL, "BB_BACKEND_URL")
	setStr(&c.Module, "BB_MODULE")
	setStr(&c.LLMEndpoint, "BB_LLM_ENDPOINT")
	setStr(&c.LLMAPIKey, "BB_LLM_API_KEY")
	setStr(&c.LLMModel, "BB_LLM_MODEL")
	setInt(&c.FleetSize, "BB_FLEET_SIZE")
	setInt(&c.PlannerIntervalMs, "BB_PLANNER_INTERVAL_MS")
	setInt(&c.ReactiveHz, "BB_REACTIVE_HZ")
	setInt(&c.MaxPlannerRetries, "BB_MAX_PLANNER_RETRIES")
	setStr(&c.DataDir, "BB_DATA_DIR")
	setStr(&c.RosterPath, "BB_ROSTER")
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.BackendURL) == "" {
		return fmt.Errorf("backend_url is required")
	}
	if strings.TrimSpace(c.Module) == "" {
		return fmt.Errorf("module is required")
	}
	if c.FleetSize <= 0 {
		return fmt.Errorf("fleet_size must be positive, got %d", c.FleetSize)
	}
	if c.PlannerIntervalMs <= 0 {
		return fmt.Errorf("planner_interval_ms must be positive, got %d", c.PlannerIntervalMs)
	}
	if c.ReactiveHz <= 0 {
		return fmt.Errorf("reactive_hz must be positive, got %d", c.ReactiveHz)
	}
	if c.MaxPlannerRetries < 0 {
		return fmt.Errorf("max_planner_retries must not be negative, got %d", c.MaxPlannerRetries)
	}
	return nil
}

// PlanningEnabled reports whether the completion service is usable. A
// missing key disables planning instead of failing boot.
func (c Config) PlanningEnabled() bool {
	return strings.TrimSpace(c.LLMAPIKey) != ""
}
