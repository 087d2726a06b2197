package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aiwolfdial/storyteller-server/logic"
	"github.com/aiwolfdial/storyteller-server/model"
	"github.com/aiwolfdial/storyteller-server/service"
	"github.com/aiwolfdial/storyteller-server/util"
)

const maxRoomCodeAttempts = 8

// Rooms は部屋コードごとのセッションハンドルを管理する
type Rooms struct {
	mu         sync.Mutex
	handles    map[string]*SessionHandle
	transport  RoomTransport
	catalog    *model.Catalog
	config     model.Config
	jsonLogger *service.JSONLogger
	gameLogger *service.GameLogger
}

func NewRooms(config model.Config, transport RoomTransport, catalog *model.Catalog) *Rooms {
	return &Rooms{
		handles:   make(map[string]*SessionHandle),
		transport: transport,
		catalog:   catalog,
		config:    config,
	}
}

func (r *Rooms) SetJSONLogger(jsonLogger *service.JSONLogger) {
	r.jsonLogger = jsonLogger
}

func (r *Rooms) SetGameLogger(gameLogger *service.GameLogger) {
	r.gameLogger = gameLogger
}

func (r *Rooms) clampSeatCount(seatCount int) int {
	if seatCount <= 0 {
		seatCount = r.config.Game.DefaultSeatCount
	}
	minSeats := max(r.config.Game.MinSeats, logic.MinSeats)
	maxSeats := logic.MaxSeats
	if r.config.Game.MaxSeats > 0 {
		maxSeats = min(r.config.Game.MaxSeats, logic.MaxSeats)
	}
	return min(max(seatCount, minSeats), maxSeats)
}

// Create は新しい部屋を作成し、そのハンドルを開く
func (r *Rooms) Create(ctx context.Context, seatCount int, scriptID string) (*SessionHandle, error) {
	if scriptID == "" {
		scriptID = r.config.Game.DefaultScript
	}
	seatCount = r.clampSeatCount(seatCount)
	for range maxRoomCodeAttempts {
		code, err := util.GenerateRoomCode()
		if err != nil {
			return nil, fmt.Errorf("generate room code: %w", err)
		}
		exists, err := r.transport.RoomExists(ctx, code)
		if err != nil {
			return nil, err
		}
		if exists {
			slog.Debug("部屋コードが重複しました", "code", code)
			continue
		}
		public, secret := logic.SplitGameState(model.NewSession(code, seatCount, scriptID))
		if err := r.transport.CreateRoom(ctx, code, public, secret); err != nil {
			if errors.Is(err, service.ErrRoomExists) {
				continue
			}
			return nil, err
		}
		slog.Info("部屋を作成しました", "code", code, "seats", seatCount, "script", scriptID)
		return r.Get(ctx, code)
	}
	return nil, errors.New("部屋コードの生成に失敗しました")
}

// Get は開いているハンドルを返す。なければ保存先から読み込んで開く。
func (r *Rooms) Get(ctx context.Context, code string) (*SessionHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, exists := r.handles[code]; exists {
		return h, nil
	}
	h, err := OpenSessionHandle(ctx, code, r.transport, r.catalog)
	if err != nil {
		return nil, err
	}
	if r.jsonLogger != nil {
		h.Game().SetJSONLogger(r.jsonLogger)
	}
	if r.gameLogger != nil {
		h.Game().SetGameLogger(r.gameLogger)
	}
	r.handles[code] = h
	return h, nil
}

// Delete は部屋のハンドルを閉じ、保存先から部屋を削除する
func (r *Rooms) Delete(ctx context.Context, code string) error {
	r.mu.Lock()
	h, exists := r.handles[code]
	delete(r.handles, code)
	r.mu.Unlock()
	if exists {
		h.Close()
	}
	if err := r.transport.DeleteRoom(ctx, code); err != nil {
		return fmt.Errorf("delete room %s: %w", code, err)
	}
	slog.Info("部屋を削除しました", "code", code)
	return nil
}

func (r *Rooms) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

func (r *Rooms) CloseAll() {
	r.mu.Lock()
	handles := r.handles
	r.handles = make(map[string]*SessionHandle)
	r.mu.Unlock()
	for _, h := range handles {
		h.Close()
	}
	slog.Info("全ての部屋を閉じました", "count", len(handles))
}
