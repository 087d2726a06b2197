package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aiwolfdial/storyteller-server/model"
)

// Relay は SQLite の文書保存と部屋ごとの配信を組み合わせた転送層
type Relay struct {
	store       *SessionStore
	broadcaster *RealtimeBroadcaster
}

func NewRelay(store *SessionStore, broadcaster *RealtimeBroadcaster) *Relay {
	return &Relay{store: store, broadcaster: broadcaster}
}

func (r *Relay) CreateRoom(ctx context.Context, roomID string, public *model.Session, secret *model.SecretState) error {
	return r.store.CreateRoom(ctx, roomID, public, secret)
}

func (r *Relay) RoomExists(ctx context.Context, roomID string) (bool, error) {
	return r.store.RoomExists(ctx, roomID)
}

// FetchSession は保存されている公開状態と秘密状態を返す
func (r *Relay) FetchSession(ctx context.Context, roomID string) (*model.Session, *model.SecretState, error) {
	public, err := r.store.LoadPublic(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}
	secret, err := r.store.LoadSecret(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}
	return public, secret, nil
}

func (r *Relay) PublishPublicPatch(ctx context.Context, roomID string, origin string, public *model.Session) error {
	if err := r.store.SavePublic(ctx, roomID, public); err != nil {
		slog.Error("公開状態の保存に失敗しました", "room", roomID, "error", err)
		return err
	}
	return r.broadcast(roomID, origin, model.BK_PUBLIC, public)
}

func (r *Relay) PublishSecretPatch(ctx context.Context, roomID string, origin string, secret *model.SecretState) error {
	if err := r.store.SaveSecret(ctx, roomID, secret); err != nil {
		slog.Error("秘密状態の保存に失敗しました", "room", roomID, "error", err)
		return err
	}
	return r.broadcast(roomID, origin, model.BK_SECRET, secret)
}

func (r *Relay) broadcast(roomID string, origin string, kind model.BroadcastKind, v any) error {
	if r.broadcaster == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s patch: %w", kind, err)
	}
	r.broadcaster.Broadcast(model.BroadcastPacket{
		RoomID: roomID,
		Kind:   kind,
		Origin: origin,
		Data:   data,
	})
	return nil
}

func (r *Relay) Subscribe(roomID string, onRemoteUpdate func(model.BroadcastPacket)) func() {
	if r.broadcaster == nil {
		return func() {}
	}
	return r.broadcaster.Subscribe(roomID, onRemoteUpdate)
}

func (r *Relay) DeleteRoom(ctx context.Context, roomID string) error {
	return r.store.DeleteRoom(ctx, roomID)
}
