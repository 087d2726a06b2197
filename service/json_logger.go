package service

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aiwolfdial/storyteller-server/model"
)

type JSONLogger struct {
	mu               sync.Mutex
	data             map[string]*JSONLog
	outputDir        string
	templateFilename string
}

type JSONLog struct {
	id       string
	filename string
	script   string
	seats    []any
	winner   model.Alignment
	entries  []any
	final    *model.Session
}

func NewJSONLogger(config model.Config) *JSONLogger {
	return &JSONLogger{
		data:             make(map[string]*JSONLog),
		outputDir:        config.JSONLogger.OutputDir,
		templateFilename: config.JSONLogger.Filename,
	}
}

func (j *JSONLogger) TrackStartGame(id string, session *model.Session) {
	j.mu.Lock()
	defer j.mu.Unlock()
	data := &JSONLog{
		id:      id,
		script:  session.CurrentScriptID,
		seats:   make([]any, 0, len(session.Seats)),
		entries: make([]any, 0),
		winner:  model.A_NONE,
	}
	for _, seat := range session.Seats {
		data.seats = append(data.seats, map[string]any{
			"id":   seat.ID,
			"user": seat.UserName,
			"real": seat.RealRoleID,
			"seen": seat.SeenRoleID,
		})
	}
	filename := strings.ReplaceAll(j.templateFilename, "{game_id}", id)
	filename = strings.ReplaceAll(filename, "{timestamp}", fmt.Sprintf("%d", time.Now().Unix()))
	filename = strings.ReplaceAll(filename, "{script}", session.CurrentScriptID)
	data.filename = filename
	j.data[id] = data
}

func (j *JSONLogger) TrackEvent(id string, event string, payload map[string]any) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if data, exists := j.data[id]; exists {
		entry := map[string]any{
			"event":     event,
			"timestamp": time.Now().UnixMilli(),
		}
		for k, v := range payload {
			entry[k] = v
		}
		data.entries = append(data.entries, entry)
		j.saveGameData(id)
	}
}

func (j *JSONLogger) TrackEndGame(id string, session *model.Session, winner model.Alignment) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if data, exists := j.data[id]; exists {
		data.winner = winner
		data.final = session.Clone()
		j.saveGameData(id)
		delete(j.data, id)
	}
}

func (j *JSONLogger) saveGameData(id string) {
	data, exists := j.data[id]
	if !exists {
		return
	}
	game := map[string]any{
		"game_id": id,
		"script":  data.script,
		"winner":  data.winner,
		"seats":   data.seats,
		"entries": data.entries,
	}
	if data.final != nil {
		game["final_state"] = data.final
	}
	jsonData, err := json.Marshal(game)
	if err != nil {
		slog.Error("ゲームログのJSON化に失敗しました", "id", id, "error", err)
		return
	}
	if err := os.MkdirAll(j.outputDir, 0755); err != nil {
		slog.Error("出力ディレクトリの作成に失敗しました", "error", err)
		return
	}
	filePath := filepath.Join(j.outputDir, fmt.Sprintf("%s.json", data.filename))
	if err := os.WriteFile(filePath, jsonData, 0644); err != nil {
		slog.Error("ゲームログの書き込みに失敗しました", "path", filePath, "error", err)
	}
}
