package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aiwolfdial/storyteller-server/logic"
	"github.com/aiwolfdial/storyteller-server/model"
	"github.com/aiwolfdial/storyteller-server/util"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var ErrHandleClosed = errors.New("セッションハンドルは閉じられています")

// SyncState は同期の状態。ApplyingRemote の間はローカルの変更を送信しない。
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncApplyingRemote
)

func (s SyncState) String() string {
	switch s {
	case SyncIdle:
		return "idle"
	case SyncApplyingRemote:
		return "applying_remote"
	}
	return "unknown"
}

const publishTimeout = 10 * time.Second

type publishJob struct {
	public *model.Session
	secret *model.SecretState
}

// SessionHandle は一つの部屋のセッションと転送層を束ね、開いてから閉じるまでの寿命を持つ。
// ゲーム操作は Do の中で直列に実行される。
type SessionHandle struct {
	origin    string
	roomID    string
	transport Transport
	game      *logic.Game

	mu     sync.Mutex
	state  SyncState
	closed bool

	unsubscribe func()

	pendingMu sync.Mutex
	pending   *publishJob
	wake      chan struct{}
	stop      chan struct{}
	loopDone  chan struct{}
	offline   bool

	listenersMu sync.RWMutex
	listeners   map[string]func(*model.Session)
}

func OpenSessionHandle(ctx context.Context, roomID string, transport Transport, catalog *model.Catalog) (*SessionHandle, error) {
	public, secret, err := transport.FetchSession(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("fetch session %s: %w", roomID, err)
	}
	session := logic.MergeGameState(public, secret)
	h := &SessionHandle{
		origin:    uuid.NewString(),
		roomID:    roomID,
		transport: transport,
		game:      logic.NewGame(session, catalog),
		wake:      make(chan struct{}, 1),
		stop:      make(chan struct{}),
		loopDone:  make(chan struct{}),
		listeners: make(map[string]func(*model.Session)),
	}
	h.game.SetSyncer(h.sync)
	h.unsubscribe = transport.Subscribe(roomID, h.onRemoteUpdate)
	go h.publishLoop()
	slog.Info("セッションハンドルを開きました", "room", roomID, "origin", h.origin)
	return h, nil
}

func (h *SessionHandle) RoomID() string {
	return h.roomID
}

func (h *SessionHandle) Game() *logic.Game {
	return h.game
}

func (h *SessionHandle) State() SyncState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Offline は直近の送信が失敗したかどうか
func (h *SessionHandle) Offline() bool {
	h.pendingMu.Lock()
	defer h.pendingMu.Unlock()
	return h.offline
}

// Do はゲーム操作を排他的に実行する
func (h *SessionHandle) Do(fn func(g *logic.Game)) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHandleClosed
	}
	fn(h.game)
	return nil
}

// View はセッションを読み取り専用で参照する
func (h *SessionHandle) View(fn func(s *model.Session)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(h.game.Session)
}

func (h *SessionHandle) AddListener(fn func(*model.Session)) func() {
	id := uuid.NewString()
	h.listenersMu.Lock()
	h.listeners[id] = fn
	h.listenersMu.Unlock()
	return func() {
		h.listenersMu.Lock()
		delete(h.listeners, id)
		h.listenersMu.Unlock()
	}
}

func (h *SessionHandle) notify(snapshot *model.Session) {
	h.listenersMu.RLock()
	defer h.listenersMu.RUnlock()
	for _, fn := range h.listeners {
		fn(snapshot)
	}
}

// sync はゲーム操作の後に呼ばれる。h.mu を保持した状態で実行される。
func (h *SessionHandle) sync() {
	snapshot := h.game.Session.Clone()
	h.notify(snapshot)
	if h.state == SyncApplyingRemote {
		slog.Debug("リモート更新の適用中のため送信を抑止しました", "room", h.roomID)
		return
	}
	if h.closed {
		return
	}
	public, secret := logic.SplitGameState(snapshot)
	h.pendingMu.Lock()
	h.pending = &publishJob{public: public, secret: secret}
	h.pendingMu.Unlock()
	select {
	case h.wake <- struct{}{}:
	default:
	}
}

func (h *SessionHandle) publishLoop() {
	defer close(h.loopDone)
	for {
		select {
		case <-h.wake:
			h.flush()
		case <-h.stop:
			h.flush()
			return
		}
	}
}

// flush は保留中の最新の状態だけを送信する
func (h *SessionHandle) flush() {
	h.pendingMu.Lock()
	job := h.pending
	h.pending = nil
	h.pendingMu.Unlock()
	if job == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	err := h.transport.PublishPublicPatch(ctx, h.roomID, h.origin, job.public)
	if err == nil {
		err = h.transport.PublishSecretPatch(ctx, h.roomID, h.origin, job.secret)
	}
	h.pendingMu.Lock()
	h.offline = err != nil
	h.pendingMu.Unlock()
	if err != nil {
		slog.Error("セッションの送信に失敗しました", "room", h.roomID, "error", err)
	}
}

func (h *SessionHandle) onRemoteUpdate(packet model.BroadcastPacket) {
	if packet.Origin == h.origin {
		return
	}
	if err := h.ApplyRemote(packet); err != nil {
		slog.Warn("リモート更新の適用に失敗しました", "room", h.roomID, "kind", packet.Kind, "error", err)
	}
}

// ApplyRemote は他の参加者からの公開/秘密の更新をローカルのセッションに重ねる。
// 公開の更新は含まれているトップレベルのフィールドだけを置き換える。
func (h *SessionHandle) ApplyRemote(packet model.BroadcastPacket) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHandleClosed
	}
	h.state = SyncApplyingRemote
	defer func() { h.state = SyncIdle }()

	public, secret := logic.SplitGameState(h.game.Session)
	switch packet.Kind {
	case model.BK_PUBLIC:
		patched, err := patchDocument(public, packet.Data)
		if err != nil {
			return err
		}
		public = patched
	case model.BK_SECRET:
		var incoming model.SecretState
		if err := json.Unmarshal(packet.Data, &incoming); err != nil {
			return fmt.Errorf("unmarshal secret patch: %w", err)
		}
		secret = &incoming
	default:
		return fmt.Errorf("unknown broadcast kind %q", packet.Kind)
	}
	*h.game.Session = *logic.MergeGameState(public, secret)
	slog.Info("リモート更新を適用しました", "room", h.roomID, "kind", packet.Kind, "alive", util.CountAlive(h.game.Session.Seats))
	h.sync()
	return nil
}

func patchDocument(public *model.Session, patch []byte) (*model.Session, error) {
	if !gjson.ValidBytes(patch) {
		return nil, errors.New("invalid patch json")
	}
	doc, err := json.Marshal(public)
	if err != nil {
		return nil, fmt.Errorf("marshal public state: %w", err)
	}
	var patchErr error
	gjson.ParseBytes(patch).ForEach(func(key, value gjson.Result) bool {
		doc, patchErr = sjson.SetRawBytes(doc, key.String(), []byte(value.Raw))
		return patchErr == nil
	})
	if patchErr != nil {
		return nil, fmt.Errorf("apply patch: %w", patchErr)
	}
	var patched model.Session
	if err := json.Unmarshal(doc, &patched); err != nil {
		return nil, fmt.Errorf("unmarshal patched state: %w", err)
	}
	return &patched, nil
}

// Close は購読を解除し、保留中の送信を済ませてから閉じる
func (h *SessionHandle) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	h.mu.Unlock()
	if h.unsubscribe != nil {
		h.unsubscribe()
	}
	close(h.stop)
	<-h.loopDone
	slog.Info("セッションハンドルを閉じました", "room", h.roomID)
}
