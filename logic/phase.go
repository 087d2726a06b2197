package logic

import (
	"fmt"
	"log/slog"

	"github.com/aiwolfdial/storyteller-server/model"
	"github.com/aiwolfdial/storyteller-server/util"
)

// CalculateNightQueue は夜の順番表を生存している座席の役職だけに絞る。
// 順番は座席順ではなく順番表の順。
func CalculateNightQueue(session *model.Session, catalog *model.Catalog, firstNight bool) []string {
	order := catalog.NightOrder.Other
	if firstNight {
		order = catalog.NightOrder.First
	}
	active := make(map[string]struct{})
	for _, seat := range util.AliveSeats(session.Seats) {
		if seat.RealRoleID != "" {
			active[seat.RealRoleID] = struct{}{}
		}
		if seat.SeenRoleID != "" {
			active[seat.SeenRoleID] = struct{}{}
		}
	}
	queue := make([]string, 0)
	for _, id := range order {
		if _, ok := active[id]; ok {
			queue = append(queue, id)
		}
	}
	return queue
}

// changePhase は同期を伴わずにフェーズを遷移させる。
// 昼以外から昼に入るたびに日数を進め、当日の指名を消す。
// 投票の締め切りはこの関数を通らないため日数は変わらない。
func (g *Game) changePhase(phase model.Phase) {
	session := g.Session
	oldPhase := session.Phase
	if oldPhase == phase {
		return
	}
	session.Phase = phase
	if oldPhase == model.P_VOTING {
		session.Voting = nil
		for i := range session.Seats {
			session.Seats[i].IsHandRaised = false
			session.Seats[i].IsNominated = false
		}
	}
	switch phase {
	case model.P_NIGHT:
		session.RoundInfo.NightCount++
		session.RoundInfo.TotalRounds++
		session.NightQueue = CalculateNightQueue(session, g.catalog, session.RoundInfo.NightCount == 1)
		session.NightCurrentIndex = -1
		slog.Info("夜を開始します", "id", g.ID, "night", session.RoundInfo.NightCount, "queue", session.NightQueue)
	case model.P_DAY:
		session.RoundInfo.DayCount++
		session.DailyNominations = []model.Nomination{}
		slog.Info("昼を開始します", "id", g.ID, "day", session.RoundInfo.DayCount)
	}
	g.addSystemMessage(fmt.Sprintf("フェーズが %s に変わりました", phase))
	g.appendLog("phase", oldPhase, phase)
}

func (g *Game) SetPhase(phase model.Phase) {
	if _, ok := model.PhaseFromString(string(phase)); !ok {
		slog.Warn("不明なフェーズです", "id", g.ID, "phase", phase)
		return
	}
	g.changePhase(phase)
	g.sync()
}

// StartGame はカウンタを初期化し、最初の夜を開始する
func (g *Game) StartGame() {
	session := g.Session
	session.RoundInfo = model.RoundInfo{}
	session.DailyNominations = []model.Nomination{}
	session.GameOver = model.GameOver{}
	if session.Phase == model.P_NIGHT {
		session.Phase = model.P_SETUP
	}
	g.changePhase(model.P_NIGHT)
	slog.Info("ゲームを開始します", "id", g.ID, "seats", len(session.Seats))
	if g.gameLogger != nil {
		g.gameLogger.TrackStartGame(g.ID, session.Seats)
	}
	if g.jsonLogger != nil {
		g.jsonLogger.TrackStartGame(g.ID, session)
	}
	g.sync()
}

func (g *Game) EndGame(winner model.Alignment, reason string) {
	if winner != model.A_GOOD && winner != model.A_EVIL {
		slog.Warn("不明な勝利陣営です", "id", g.ID, "winner", winner)
		return
	}
	g.finish(winner, reason)
	g.sync()
}

func (g *Game) finish(winner model.Alignment, reason string) {
	g.Session.GameOver = model.GameOver{IsOver: true, Winner: winner, Reason: reason}
	g.addSystemMessage(fmt.Sprintf("ゲーム終了！%s の勝利 - %s", winner, reason))
	slog.Info("ゲームが終了しました", "id", g.ID, "winner", winner, "reason", reason)
	if g.gameLogger != nil {
		for _, seat := range g.Session.Seats {
			g.appendLog("status", seat.ID, seat.RealRoleID, seat.SeenRoleID, seat.IsDead)
		}
		good, evil := util.CountAliveTeams(g.Session.Seats, g.catalog)
		g.appendLog("result", good, evil, winner)
		g.gameLogger.TrackEndGame(g.ID)
	}
	if g.jsonLogger != nil {
		g.jsonLogger.TrackEndGame(g.ID, g.Session, winner)
	}
}
