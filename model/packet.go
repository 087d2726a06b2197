package model

type PacketType string

const (
	PT_SNAPSHOT PacketType = "snapshot"
)

// Packet は閲覧者の WebSocket に送る単位
type Packet struct {
	Type          PacketType `json:"type"`
	Session       *Session   `json:"session,omitempty"`
	IsStoryteller bool       `json:"isStoryteller"`
}
