package core

import (
	"context"

	"github.com/aiwolfdial/storyteller-server/model"
)

// Transport は部屋の状態の取得、公開/秘密の更新の送信、他の参加者からの更新の購読を行う
type Transport interface {
	FetchSession(ctx context.Context, roomID string) (*model.Session, *model.SecretState, error)
	PublishPublicPatch(ctx context.Context, roomID string, origin string, public *model.Session) error
	PublishSecretPatch(ctx context.Context, roomID string, origin string, secret *model.SecretState) error
	Subscribe(roomID string, onRemoteUpdate func(model.BroadcastPacket)) func()
}

// RoomTransport は部屋の作成もできる Transport
type RoomTransport interface {
	Transport
	CreateRoom(ctx context.Context, roomID string, public *model.Session, secret *model.SecretState) error
	RoomExists(ctx context.Context, roomID string) (bool, error)
	DeleteRoom(ctx context.Context, roomID string) error
}
