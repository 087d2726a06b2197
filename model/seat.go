package model

import (
	"fmt"
	"slices"
)

type SeatStatus string

const (
	SS_POISONED  SeatStatus = "POISONED"
	SS_DRUNK     SeatStatus = "DRUNK"
	SS_PROTECTED SeatStatus = "PROTECTED"
	SS_MADNESS   SeatStatus = "MADNESS"
)

func SeatStatusFromString(s string) (SeatStatus, bool) {
	switch s {
	case "POISONED":
		return SS_POISONED, true
	case "DRUNK":
		return SS_DRUNK, true
	case "PROTECTED":
		return SS_PROTECTED, true
	case "MADNESS":
		return SS_MADNESS, true
	}
	return "", false
}

// PublicReminderSource は全員に見えるリマインダーの発生元
const PublicReminderSource = "public"

type Reminder struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	SourceRoleID string `json:"sourceRoleId"`
	OwnerSeatID  int    `json:"ownerSeatId"`
}

func (r Reminder) IsPublic() bool {
	return r.SourceRoleID == PublicReminderSource
}

// Seat の RoleID は表示用の役職で、通常は SeenRoleID と同じ値を持つ。
// 空文字列は未割り当てを表す。
type Seat struct {
	ID             int          `json:"id"`
	UserID         string       `json:"userId"`
	UserName       string       `json:"userName"`
	IsVirtual      bool         `json:"isVirtual"`
	IsDead         bool         `json:"isDead"`
	HasGhostVote   bool         `json:"hasGhostVote"`
	RoleID         string       `json:"roleId"`
	RealRoleID     string       `json:"realRoleId"`
	SeenRoleID     string       `json:"seenRoleId"`
	HasUsedAbility bool         `json:"hasUsedAbility"`
	Statuses       []SeatStatus `json:"statuses"`
	Reminders      []Reminder   `json:"reminders"`
	IsHandRaised   bool         `json:"isHandRaised"`
	IsNominated    bool         `json:"isNominated"`
	VoteLocked     bool         `json:"voteLocked"`
	IsReady        bool         `json:"isReady"`
}

func NewSeat(id int) Seat {
	return Seat{
		ID:           id,
		UserName:     fmt.Sprintf("座席 %d", id+1),
		HasGhostVote: true,
	}
}

func (s Seat) IsOccupied() bool {
	return s.UserID != ""
}

func (s Seat) Clone() Seat {
	c := s
	c.Statuses = slices.Clone(s.Statuses)
	c.Reminders = slices.Clone(s.Reminders)
	return c
}

func (s Seat) String() string {
	return fmt.Sprintf("Seat[%02d]", s.ID)
}
