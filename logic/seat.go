package logic

import (
	"log/slog"
	"slices"

	"github.com/aiwolfdial/storyteller-server/model"
	"github.com/aiwolfdial/storyteller-server/util"
)

const (
	MinSeats = 5
	MaxSeats = 20
)

func (g *Game) ClaimSeat(userID string, userName string, seatID int) model.RPCResult {
	if userID == "" {
		return model.RPCFail("利用者が不明です")
	}
	seat := g.findSeat(seatID)
	if seat == nil {
		return model.RPCFail("座席が存在しません")
	}
	if seat.UserID == userID {
		return model.RPCOk()
	}
	if seat.IsOccupied() {
		return model.RPCFail("この座席は既に使われています")
	}
	if current := g.Session.FindSeatByUser(userID); current != nil {
		vacate(current)
	}
	seat.UserID = userID
	if userName != "" {
		seat.UserName = userName
	}
	seat.IsVirtual = false
	slog.Info("座席に着きました", "id", g.ID, "seat", seatID, "user", userID)
	g.sync()
	return model.RPCOk()
}

func vacate(seat *model.Seat) {
	seat.UserID = ""
	seat.UserName = model.NewSeat(seat.ID).UserName
	seat.IsReady = false
	seat.IsHandRaised = false
}

func (g *Game) LeaveSeat(userID string, seatID int) model.RPCResult {
	seat := g.findSeat(seatID)
	if seat == nil {
		return model.RPCFail("座席が存在しません")
	}
	if seat.UserID == "" || seat.UserID != userID {
		return model.RPCFail("自分の座席ではありません")
	}
	vacate(seat)
	slog.Info("座席を離れました", "id", g.ID, "seat", seatID, "user", userID)
	g.sync()
	return model.RPCOk()
}

func (g *Game) ToggleReady(userID string, seatID int) model.RPCResult {
	seat := g.findSeat(seatID)
	if seat == nil {
		return model.RPCFail("座席が存在しません")
	}
	if seat.UserID == "" || seat.UserID != userID {
		return model.RPCFail("自分の座席ではありません")
	}
	seat.IsReady = !seat.IsReady
	g.sync()
	return model.RPCOk()
}

// ToggleHandRPC は参加者自身による挙手の切り替え
func (g *Game) ToggleHandRPC(userID string, seatID int) model.RPCResult {
	seat := g.findSeat(seatID)
	if seat == nil {
		return model.RPCFail("座席が存在しません")
	}
	if seat.UserID == "" || seat.UserID != userID {
		return model.RPCFail("自分の座席ではありません")
	}
	if seat.VoteLocked {
		return model.RPCFail("投票が確定しています")
	}
	if reason := g.toggleHand(seatID); reason != "" {
		return model.RPCFail(reason)
	}
	g.sync()
	return model.RPCOk()
}

func (g *Game) ToggleStatus(seatID int, status model.SeatStatus) {
	if _, ok := model.SeatStatusFromString(string(status)); !ok {
		slog.Warn("不明な状態です", "id", g.ID, "status", status)
		return
	}
	seat := g.findSeat(seatID)
	if seat == nil {
		return
	}
	if idx := slices.Index(seat.Statuses, status); idx >= 0 {
		seat.Statuses = slices.Delete(seat.Statuses, idx, idx+1)
	} else {
		seat.Statuses = append(seat.Statuses, status)
	}
	g.sync()
}

func (g *Game) ToggleAbilityUsed(seatID int) {
	seat := g.findSeat(seatID)
	if seat == nil {
		return
	}
	seat.HasUsedAbility = !seat.HasUsedAbility
	g.sync()
}

func (g *Game) AddReminder(seatID int, text string, public bool) {
	seat := g.findSeat(seatID)
	if seat == nil || text == "" {
		return
	}
	source := "manual"
	if public {
		source = model.PublicReminderSource
	}
	seat.Reminders = append(seat.Reminders, model.Reminder{
		ID:           util.NewID(),
		Text:         text,
		SourceRoleID: source,
		OwnerSeatID:  seatID,
	})
	g.sync()
}

func (g *Game) RemoveReminder(id string) {
	for i := range g.Session.Seats {
		seat := &g.Session.Seats[i]
		if idx := slices.IndexFunc(seat.Reminders, func(r model.Reminder) bool { return r.ID == id }); idx >= 0 {
			seat.Reminders = slices.Delete(seat.Reminders, idx, idx+1)
			g.sync()
			return
		}
	}
}

func (g *Game) AddSeat() {
	if g.Session.Phase != model.P_SETUP {
		slog.Warn("セットアップ中以外は座席を追加できません", "id", g.ID, "phase", g.Session.Phase)
		return
	}
	if len(g.Session.Seats) >= MaxSeats {
		slog.Warn("座席数が上限に達しています", "id", g.ID, "seats", len(g.Session.Seats))
		return
	}
	g.Session.Seats = append(g.Session.Seats, model.NewSeat(len(g.Session.Seats)))
	g.sync()
}

// RemoveSeat は最後の座席を取り除く
func (g *Game) RemoveSeat() {
	if g.Session.Phase != model.P_SETUP {
		slog.Warn("セットアップ中以外は座席を削除できません", "id", g.ID, "phase", g.Session.Phase)
		return
	}
	if len(g.Session.Seats) <= MinSeats {
		slog.Warn("座席数が下限に達しています", "id", g.ID, "seats", len(g.Session.Seats))
		return
	}
	g.Session.Seats = g.Session.Seats[:len(g.Session.Seats)-1]
	g.sync()
}
