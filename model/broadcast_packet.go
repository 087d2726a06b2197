package model

import "encoding/json"

type BroadcastKind string

const (
	BK_PUBLIC BroadcastKind = "public"
	BK_SECRET BroadcastKind = "secret"
)

// BroadcastPacket は部屋ごとのチャネルに流れる公開/秘密の更新
type BroadcastPacket struct {
	RoomID string          `json:"roomId"`
	Kind   BroadcastKind   `json:"kind"`
	Origin string          `json:"origin"`
	Data   json.RawMessage `json:"data"`
}
