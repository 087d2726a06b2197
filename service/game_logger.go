package service

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aiwolfdial/storyteller-server/model"
)

// GameLogger は部屋ごとの出来事を CSV 形式の行でファイルに残す
type GameLogger struct {
	mu               sync.Mutex
	logsData         map[string]*GameLog
	outputDir        string
	templateFilename string
}

type GameLog struct {
	id       string
	filename string
	logs     []string
}

func NewGameLogger(config model.Config) *GameLogger {
	return &GameLogger{
		logsData:         make(map[string]*GameLog),
		outputDir:        config.GameLogger.OutputDir,
		templateFilename: config.GameLogger.Filename,
	}
}

func (g *GameLogger) TrackStartGame(id string, seats []model.Seat) {
	g.mu.Lock()
	defer g.mu.Unlock()
	logData := &GameLog{
		id:   id,
		logs: make([]string, 0, len(seats)),
	}
	for _, seat := range seats {
		logData.logs = append(logData.logs, fmt.Sprintf("0,0,seat,%d,%s,%s,%s", seat.ID, seat.RealRoleID, seat.SeenRoleID, seat.UserName))
	}
	filename := strings.ReplaceAll(g.templateFilename, "{game_id}", id)
	filename = strings.ReplaceAll(filename, "{timestamp}", fmt.Sprintf("%d", time.Now().Unix()))
	logData.filename = filename
	g.logsData[id] = logData
	g.saveLog(id)
}

func (g *GameLogger) TrackEndGame(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.logsData[id]; exists {
		g.saveLog(id)
		delete(g.logsData, id)
	}
}

func (g *GameLogger) AppendLog(id string, log string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if logData, exists := g.logsData[id]; exists {
		logData.logs = append(logData.logs, log)
		g.saveLog(id)
	}
}

func (g *GameLogger) Logs(id string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if logData, exists := g.logsData[id]; exists {
		return append([]string(nil), logData.logs...)
	}
	return nil
}

func (g *GameLogger) saveLog(id string) {
	logData, exists := g.logsData[id]
	if !exists {
		return
	}
	if err := os.MkdirAll(g.outputDir, 0755); err != nil {
		slog.Error("出力ディレクトリの作成に失敗しました", "error", err)
		return
	}
	filePath := filepath.Join(g.outputDir, fmt.Sprintf("%s.log", logData.filename))
	if err := os.WriteFile(filePath, []byte(strings.Join(logData.logs, "\n")), 0644); err != nil {
		slog.Error("ゲームログの書き込みに失敗しました", "path", filePath, "error", err)
	}
}
