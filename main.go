package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/aiwolfdial/storyteller-server/core"
	"github.com/aiwolfdial/storyteller-server/model"
	"github.com/joho/godotenv"
)

var (
	version  string
	revision string
	build    string
)

func main() {
	var (
		configPath  = flag.String("c", "./config/default.yml", "設定ファイルのパス")
		envPath     = flag.String("e", "./config/.env", ".env ファイルのパス")
		showVersion = flag.Bool("v", false, "バージョンを表示")
		debug       = flag.Bool("d", false, "デバッグログを出力")
	)
	flag.Parse()

	core.SetVersion(version, revision, build)
	if *showVersion {
		fmt.Println("storyteller-server", core.Version)
		return
	}
	if *debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	if err := godotenv.Load(*envPath); err != nil {
		slog.Warn("環境変数の読み込みに失敗しました", "path", *envPath, "error", err)
	}

	config, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("設定の読み込みに失敗しました", "error", err)
		os.Exit(1)
	}

	server, err := core.NewServer(*config)
	if err != nil {
		slog.Error("サーバの作成に失敗しました", "error", err)
		os.Exit(1)
	}
	server.Run()
}

func loadConfig(path string) (*model.Config, error) {
	if _, err := os.Stat(path); err == nil {
		return model.LoadFromPath(path)
	}
	slog.Warn("設定ファイルが見つからないため、既定の設定を使用します", "path", path)
	config := model.DefaultConfig()
	if err := model.ApplyEnv(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
