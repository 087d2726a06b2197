package logic

import (
	"fmt"
	"log/slog"

	"github.com/aiwolfdial/storyteller-server/model"
	"github.com/aiwolfdial/storyteller-server/util"
)

// MinAliveForSuccession は死亡前の生存者数がこれ以上のときだけデーモンが継承される
const MinAliveForSuccession = 5

func (g *Game) ToggleDeath(seatID int) {
	seat := g.findSeat(seatID)
	if seat == nil {
		slog.Warn("座席が見つかりません", "id", g.ID, "seat", seatID)
		return
	}
	if seat.IsDead {
		seat.IsDead = false
		slog.Info("座席を蘇生しました", "id", g.ID, "seat", seatID)
		g.appendLog("revive", seatID)
	} else {
		g.kill(seat, false)
	}
	g.sync()
}

// kill は死亡処理を行う。デーモンが死んだ場合の継承と勝敗判定を含む。
func (g *Game) kill(seat *model.Seat, executed bool) {
	aliveBefore := util.CountAlive(g.Session.Seats)
	seat.IsDead = true
	g.addSystemMessage(fmt.Sprintf("%s が死亡しました", seat.UserName))
	slog.Info("座席が死亡しました", "id", g.ID, "seat", seat.ID, "role", seat.RealRoleID, "executed", executed)
	g.appendLog("dead", seat.ID, seat.RealRoleID, executed)

	if g.catalog.TeamOf(seat.RealRoleID) == model.T_DEMON {
		g.succeedDemon(seat.RealRoleID, aliveBefore)
	}

	var executedSeat *model.Seat
	if executed {
		executedSeat = seat
	}
	if winner, reason := util.CalcWinner(g.Session.Seats, g.catalog, executedSeat); winner != model.A_NONE {
		g.finish(winner, reason)
	}
}

func (g *Game) succeedDemon(demonRoleID string, aliveBefore int) {
	successorRole := g.catalog.SuccessorRole
	if successorRole == "" {
		return
	}
	for i := range g.Session.Seats {
		successor := &g.Session.Seats[i]
		if successor.IsDead || successor.RealRoleID != successorRole {
			continue
		}
		if aliveBefore < MinAliveForSuccession {
			slog.Info("生存者が少ないため継承は発生しません", "id", g.ID, "alive", aliveBefore)
			return
		}
		successor.RealRoleID = demonRoleID
		successor.SeenRoleID = demonRoleID
		successor.RoleID = demonRoleID
		successor.HasUsedAbility = false
		g.addPrivateSystemMessage(fmt.Sprintf("%s がデーモン (%s) を継承しました", successor.UserName, demonRoleID), successor.UserID)
		slog.Info("デーモンを継承しました", "id", g.ID, "seat", successor.ID, "role", demonRoleID)
		g.appendLog("succession", successor.ID, demonRoleID)
		return
	}
}
