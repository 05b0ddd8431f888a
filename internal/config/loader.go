package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr         string `json:"addr" yaml:"addr" toml:"addr"`
	Model        string `json:"model" yaml:"model" toml:"model"`
	WeightsURL   string `json:"weights_url" yaml:"weights_url" toml:"weights_url"`
	TokenizerURL string `json:"tokenizer_url" yaml:"tokenizer_url" toml:"tokenizer_url"`
	ConfigURL    string `json:"config_url" yaml:"config_url" toml:"config_url"`
	CacheDir     string `json:"cache_dir" yaml:"cache_dir" toml:"cache_dir"`
	MaxTokens    int    `json:"max_tokens" yaml:"max_tokens" toml:"max_tokens"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil { return cfg, err }
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil { return cfg, err }
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil { return cfg, err }
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
