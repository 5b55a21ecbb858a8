package main

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/xiphoidxray/fruitbox-fsg/shared/protocol"
)

type Config struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
	DataDir   string `yaml:"data_dir"`

	RoundSecs       int `yaml:"round_secs"`
	MaxPlayers      int `yaml:"max_players"`
	LeaderboardSize int `yaml:"leaderboard_size"`

	Board struct {
		Rows int `yaml:"rows"`
		Cols int `yaml:"cols"`
	} `yaml:"board"`
}

func defaultConfig() *Config {
	cfg := &Config{
		Addr:            ":3123",
		StaticDir:       "frontend/dist",
		DataDir:         "data",
		RoundSecs:       protocol.DefaultRoundSecs,
		MaxPlayers:      protocol.DefaultMaxPlayers,
		LeaderboardSize: 10,
	}
	cfg.Board.Rows = protocol.Rows
	cfg.Board.Cols = protocol.Cols
	return cfg
}

// loadConfig reads the YAML config if the file exists, then applies env
// overrides on top. A missing file just means defaults.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.Addr = getEnv("FRUITBOX_ADDR", cfg.Addr)
	cfg.StaticDir = getEnv("FRUITBOX_STATIC_DIR", cfg.StaticDir)
	cfg.DataDir = getEnv("FRUITBOX_DATA_DIR", cfg.DataDir)
	cfg.RoundSecs = getEnvAsInt("FRUITBOX_ROUND_SECS", cfg.RoundSecs)
	cfg.MaxPlayers = getEnvAsInt("FRUITBOX_MAX_PLAYERS", cfg.MaxPlayers)
	cfg.LeaderboardSize = getEnvAsInt("FRUITBOX_LEADERBOARD_SIZE", cfg.LeaderboardSize)
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
