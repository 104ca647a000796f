// File path: internal/index/config.go
package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config locates the corpus and the persisted index artifact.
type Config struct {
	DataDir  string `json:"data_dir"`
	IndexDir string `json:"index_dir"`
	TopK     int    `json:"top_k"`
}

// Merge overlays non-empty fields from the override onto the base config.
func (c Config) Merge(override Config) Config {
	result := c
	if strings.TrimSpace(override.DataDir) != "" {
		result.DataDir = strings.TrimSpace(override.DataDir)
	}
	if strings.TrimSpace(override.IndexDir) != "" {
		result.IndexDir = strings.TrimSpace(override.IndexDir)
	}
	if override.TopK > 0 {
		result.TopK = override.TopK
	}
	return result
}

// LoadConfig builds the configuration from an optional JSON file named by
// SUPPORTKB_CONFIG_FILE, overlaid with environment variables, with defaults
// filled last.
func LoadConfig() (Config, error) {
	cfg := Config{}
	if path := strings.TrimSpace(os.Getenv("SUPPORTKB_CONFIG_FILE")); path != "" {
		fileCfg, err := loadConfigFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = cfg.Merge(fileCfg)
	}
	envCfg, err := loadConfigEnv()
	if err != nil {
		return Config{}, err
	}
	cfg = cfg.Merge(envCfg)
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = "data"
	}
	if strings.TrimSpace(c.IndexDir) == "" {
		c.IndexDir = filepath.Join(c.DataDir, "index_store")
	}
	if c.TopK <= 0 {
		c.TopK = 6
	}
}

func loadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("read index config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse index config: %w", err)
	}
	return cfg, nil
}

func loadConfigEnv() (Config, error) {
	cfg := Config{}
	if dir := strings.TrimSpace(os.Getenv("SUPPORTKB_DATA_DIR")); dir != "" {
		cfg.DataDir = dir
	}
	if dir := strings.TrimSpace(os.Getenv("SUPPORTKB_INDEX_DIR")); dir != "" {
		cfg.IndexDir = dir
	}
	if topK := strings.TrimSpace(os.Getenv("SUPPORTKB_TOPK")); topK != "" {
		value, err := strconv.Atoi(topK)
		if err != nil {
			return Config{}, fmt.Errorf("parse SUPPORTKB_TOPK: %w", err)
		}
		if value > 0 {
			cfg.TopK = value
		}
	}
	return cfg, nil
}
