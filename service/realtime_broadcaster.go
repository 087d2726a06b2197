package service

import (
	"log/slog"
	"sync"

	"github.com/aiwolfdial/storyteller-server/model"
	"github.com/google/uuid"
)

// RealtimeBroadcaster は部屋ごとの購読者に更新を配る。
// 購読者ごとにバッファ付きチャネルとゴルーチンを持ち、配信が呼び出し元を塞がない。
type RealtimeBroadcaster struct {
	bufferSize  int
	mu          sync.RWMutex
	subscribers map[string]map[string]*subscriber
}

type subscriber struct {
	ch   chan model.BroadcastPacket
	done chan struct{}
	once sync.Once
}

func NewRealtimeBroadcaster(config model.Config) *RealtimeBroadcaster {
	bufferSize := config.RealtimeBroadcaster.BufferSize
	if bufferSize <= 0 {
		bufferSize = 16
	}
	slog.Info("リアルタイムブロードキャスターを初期化しました", "buffer_size", bufferSize)
	return &RealtimeBroadcaster{
		bufferSize:  bufferSize,
		subscribers: make(map[string]map[string]*subscriber),
	}
}

// Subscribe は購読を開始し、解除用の関数を返す
func (rb *RealtimeBroadcaster) Subscribe(roomID string, handler func(model.BroadcastPacket)) func() {
	id := uuid.NewString()
	sub := &subscriber{
		ch:   make(chan model.BroadcastPacket, rb.bufferSize),
		done: make(chan struct{}),
	}
	rb.mu.Lock()
	if rb.subscribers[roomID] == nil {
		rb.subscribers[roomID] = make(map[string]*subscriber)
	}
	rb.subscribers[roomID][id] = sub
	rb.mu.Unlock()

	go func() {
		for {
			select {
			case packet := <-sub.ch:
				handler(packet)
			case <-sub.done:
				return
			}
		}
	}()

	return func() {
		rb.mu.Lock()
		if subs, ok := rb.subscribers[roomID]; ok {
			delete(subs, id)
			if len(subs) == 0 {
				delete(rb.subscribers, roomID)
			}
		}
		rb.mu.Unlock()
		sub.once.Do(func() { close(sub.done) })
	}
}

func (rb *RealtimeBroadcaster) Broadcast(packet model.BroadcastPacket) {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	for id, sub := range rb.subscribers[packet.RoomID] {
		select {
		case sub.ch <- packet:
		default:
			slog.Warn("購読者のバッファが溢れたため更新を破棄しました", "room", packet.RoomID, "subscriber", id, "kind", packet.Kind)
		}
	}
}

func (rb *RealtimeBroadcaster) SubscriberCount(roomID string) int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return len(rb.subscribers[roomID])
}
