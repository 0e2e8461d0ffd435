// Package config loads snapsolve's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/0xcro3dile/snapsolve/internal/domain/entities"
)

// DefaultPath is read when no --config flag is given and the file exists.
const DefaultPath = "snapsolve.yaml"

// Config holds all snapsolve configuration.
type Config struct {
	Interval   time.Duration `yaml:"interval"`
	Mode       entities.Mode `yaml:"mode"`
	ImagesPath string        `yaml:"images_path"`
	Listen     string        `yaml:"listen"`
	Storage    StorageConfig `yaml:"storage"`
	Ollama     OllamaConfig  `yaml:"ollama"`
	Capture    CaptureConfig `yaml:"capture"`
	Prompts    PromptsConfig `yaml:"prompts"`
}

// StorageConfig selects the entry store.
// Driver is "jsonfile" (default), "sqlite" or "memory".
type StorageConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// OllamaConfig points at the local inference endpoint.
type OllamaConfig struct {
	EndpointURL string        `yaml:"endpoint_url"`
	VisionModel string        `yaml:"vision_model"`
	CodingModel string        `yaml:"coding_model"`
	Timeout     time.Duration `yaml:"timeout"`
}

// CaptureConfig chooses how screenshots are taken. A non-empty Command
// replaces the built-in display grabber.
type CaptureConfig struct {
	Display int      `yaml:"display"`
	Command []string `yaml:"command"`
}

// PromptsConfig overrides the built-in prompts. Empty keeps the default.
type PromptsConfig struct {
	Single string `yaml:"single"`
	Vision string `yaml:"vision"`
	Solve  string `yaml:"solve"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Interval:   30 * time.Second,
		Mode:       entities.ModeSingle,
		ImagesPath: "./images",
		Listen:     ":4000",
		Storage: StorageConfig{
			Driver: "jsonfile",
			Path:   "./storage.json",
		},
		Ollama: OllamaConfig{
			EndpointURL: "http://localhost:11434",
			VisionModel: "gemma3:27b-it-qat",
			CodingModel: "qwen2.5-coder:14b",
			Timeout:     5 * time.Minute,
		},
	}
}

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// Resolve loads path, or DefaultPath when path is empty and that file
// exists, or falls back to Default.
func Resolve(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	if _, err := os.Stat(DefaultPath); err == nil {
		return Load(DefaultPath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Default(), nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", c.Interval)
	}
	if !c.Mode.Valid() {
		return fmt.Errorf("mode must be %q or %q, got %q", entities.ModeSingle, entities.ModeTwoStage, c.Mode)
	}
	switch c.Storage.Driver {
	case "jsonfile", "sqlite", "memory":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver != "memory" && c.Storage.Path == "" {
		return errors.New("storage.path is required")
	}
	if c.Ollama.EndpointURL == "" {
		return errors.New("ollama.endpoint_url is required")
	}
	if c.Ollama.Timeout < 0 {
		return fmt.Errorf("ollama.timeout must not be negative, got %v", c.Ollama.Timeout)
	}
	if c.Capture.Display < 0 {
		return fmt.Errorf("capture.display must not be negative, got %d", c.Capture.Display)
	}
	return nil
}
