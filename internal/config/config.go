package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// AppConfig is the server's runtime configuration.
type AppConfig struct {
	HTTPAddr string `yaml:"http_addr"`
	WSAddr   string `yaml:"ws_addr"`

	RedisURL    string `yaml:"redis_url"`
	DatabaseURL string `yaml:"database_url"`

	// ResultsDriver selects the finished-game store: postgres, sqlite or memory.
	ResultsDriver string `yaml:"results_driver"`

	StockfishPath     string `yaml:"stockfish_path"`
	AdvisorMoveTimeMS int    `yaml:"advisor_movetime_ms"`
	AdvisorPoolSize   int    `yaml:"advisor_pool_size"`
	AdvisorThreads    int    `yaml:"advisor_threads"`
	AdvisorHashMB     int    `yaml:"advisor_hash_mb"`
	AdvisorSkillLevel int    `yaml:"advisor_skill_level"`

	// AdvisorBookPath names an optional Polyglot opening book.
	AdvisorBookPath string `yaml:"advisor_book_path"`

	// AdvisorLevel picks a strength preset (level1..level8); empty plays at
	// full strength with AdvisorMoveTimeMS.
	AdvisorLevel string `yaml:"advisor_level"`

	GameTTLSec  int    `yaml:"game_ttl_sec"`
	LobbyLimit  int    `yaml:"lobby_limit"`
	MessagesDir string `yaml:"messages_dir"`
}

// GameTTL is how long an idle game is kept in Redis.
func (c *AppConfig) GameTTL() time.Duration { return time.Duration(c.GameTTLSec) * time.Second }

// AdvisorMoveTime is the per-suggestion search budget.
func (c *AppConfig) AdvisorMoveTime() time.Duration {
	return time.Duration(c.AdvisorMoveTimeMS) * time.Millisecond
}

func defaults() *AppConfig {
	return &AppConfig{
		HTTPAddr:          ":8080",
		WSAddr:            ":8081",
		RedisURL:          "redis://localhost:6379/0",
		ResultsDriver:     "memory",
		AdvisorMoveTimeMS: 300,
		AdvisorPoolSize:   1,
		AdvisorThreads:    1,
		AdvisorHashMB:     16,
		AdvisorSkillLevel: 20,
		GameTTLSec:        86400,
		LobbyLimit:        50,
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// CONFIG_FILE if set, then environment variables. Env wins over the file.
func Load() (*AppConfig, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	setString(&cfg.HTTPAddr, "HTTP_ADDR")
	setString(&cfg.WSAddr, "WS_ADDR")
	setString(&cfg.RedisURL, "REDIS_URL")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.ResultsDriver, "RESULTS_DRIVER")
	setString(&cfg.StockfishPath, "STOCKFISH_PATH")
	setString(&cfg.AdvisorBookPath, "ADVISOR_BOOK_PATH")
	setString(&cfg.AdvisorLevel, "ADVISOR_LEVEL")
	setString(&cfg.MessagesDir, "MESSAGES_DIR")
	setPositiveInt(&cfg.AdvisorMoveTimeMS, "ADVISOR_MOVETIME_MS")
	setPositiveInt(&cfg.AdvisorPoolSize, "ADVISOR_POOL_SIZE")
	setPositiveInt(&cfg.AdvisorThreads, "ADVISOR_THREADS")
	setPositiveInt(&cfg.AdvisorHashMB, "ADVISOR_HASH_MB")
	setPositiveInt(&cfg.AdvisorSkillLevel, "ADVISOR_SKILL_LEVEL")
	setPositiveInt(&cfg.GameTTLSec, "GAME_TTL_SEC")
	setPositiveInt(&cfg.LobbyLimit, "LOBBY_LIMIT")

	cfg.ResultsDriver = strings.ToLower(strings.TrimSpace(cfg.ResultsDriver))
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) validate() error {
	switch c.ResultsDriver {
	case "memory":
	case "postgres", "sqlite":
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required for results driver %q", c.ResultsDriver)
		}
	default:
		return fmt.Errorf("unknown RESULTS_DRIVER %q", c.ResultsDriver)
	}
	if strings.TrimSpace(c.RedisURL) == "" {
		return errors.New("REDIS_URL is required")
	}
	if c.AdvisorSkillLevel > 20 {
		return errors.New("ADVISOR_SKILL_LEVEL must be between 1 and 20")
	}
	if c.GameTTLSec <= 0 {
		return errors.New("GAME_TTL_SEC must be positive")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setPositiveInt(dst *int, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*dst = n
		}
	}
}
