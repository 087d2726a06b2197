package model

import (
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host           string `yaml:"host" env:"HOST"`
		Port           int    `yaml:"port" env:"PORT"`
		PublicURL      string `yaml:"public_url" env:"PUBLIC_URL"`
		Authentication struct {
			Secret   string        `yaml:"secret" env:"SECRET_KEY"`
			TokenTTL time.Duration `yaml:"token_ttl" env:"TOKEN_TTL"`
		} `yaml:"authentication"`
	} `yaml:"server" envPrefix:"STORYTELLER_"`
	Game struct {
		DefaultSeatCount int    `yaml:"default_seat_count"`
		DefaultScript    string `yaml:"default_script"`
		CatalogPath      string `yaml:"catalog_path" env:"STORYTELLER_CATALOG_PATH"`
		MinSeats         int    `yaml:"min_seats"`
		MaxSeats         int    `yaml:"max_seats"`
	} `yaml:"game"`
	Storage struct {
		Path string `yaml:"path" env:"STORYTELLER_DB_PATH"`
	} `yaml:"storage"`
	JSONLogger struct {
		Enable    bool   `yaml:"enable"`
		OutputDir string `yaml:"output_dir"`
		Filename  string `yaml:"filename"`
	} `yaml:"json_logger"`
	GameLogger struct {
		Enable    bool   `yaml:"enable"`
		OutputDir string `yaml:"output_dir"`
		Filename  string `yaml:"filename"`
	} `yaml:"game_logger"`
	RealtimeBroadcaster RealtimeBroadcasterConfig `yaml:"realtime_broadcaster"`
}

type RealtimeBroadcasterConfig struct {
	Enable     bool `yaml:"enable"`
	BufferSize int  `yaml:"buffer_size"`
}

func DefaultConfig() Config {
	var config Config
	config.Server.Host = "127.0.0.1"
	config.Server.Port = 8080
	config.Server.Authentication.TokenTTL = 24 * time.Hour
	config.Game.DefaultSeatCount = 7
	config.Game.DefaultScript = "tb"
	config.Game.MinSeats = 5
	config.Game.MaxSeats = 20
	config.Storage.Path = "./storyteller.db"
	config.GameLogger.OutputDir = "./log/game"
	config.GameLogger.Filename = "{game_id}_{timestamp}"
	config.JSONLogger.OutputDir = "./log/json"
	config.JSONLogger.Filename = "{game_id}_{timestamp}"
	config.RealtimeBroadcaster.Enable = true
	config.RealtimeBroadcaster.BufferSize = 16
	return config
}

func LoadFromPath(path string) (*Config, error) {
	config := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Error("設定ファイルの読み込みに失敗しました", "error", err)
		return nil, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		slog.Error("設定ファイルのパースに失敗しました", "error", err)
		return nil, err
	}
	if err := ApplyEnv(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// ApplyEnv は環境変数で設定を上書きする
func ApplyEnv(config *Config) error {
	if err := env.Parse(config); err != nil {
		slog.Error("環境変数の読み込みに失敗しました", "error", err)
		return err
	}
	return nil
}
