package logic

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/aiwolfdial/storyteller-server/model"
	"github.com/aiwolfdial/storyteller-server/util"
)

// VoteThreshold は処刑に必要な最小票数
func VoteThreshold(aliveCount int) int {
	return max(1, (aliveCount+1)/2)
}

func IsExecuted(voteCount int, aliveCount int) bool {
	return voteCount > 0 && voteCount*2 >= aliveCount
}

// checkNomination は指名ルールの違反を返す。違反がなければ空文字列。
func (g *Game) checkNomination(nominee *model.Seat, nominatorSeatID *int) string {
	session := g.Session
	if session.Phase != model.P_DAY {
		return "昼以外は指名できません"
	}
	if session.Voting != nil {
		return "既に投票が進行中です"
	}
	if !nominee.IsOccupied() {
		return "空席は指名できません"
	}
	if nominee.IsDead {
		return "死亡した座席は指名できません"
	}
	for _, n := range session.DailyNominations {
		if n.Round == session.RoundInfo.DayCount && n.NomineeSeatID == nominee.ID {
			return "この座席は本日既に指名されています"
		}
	}
	if nominatorSeatID != nil {
		nominator := g.findSeat(*nominatorSeatID)
		if nominator == nil {
			return "指名者の座席が存在しません"
		}
		if !nominator.IsOccupied() {
			return "空席からは指名できません"
		}
		if nominator.IsDead {
			return "死亡した座席からは指名できません"
		}
		for _, n := range session.DailyNominations {
			if n.Round == session.RoundInfo.DayCount && n.NominatorSeatID == nominator.ID {
				return "この座席は本日既に指名しています"
			}
		}
	}
	return ""
}

func (g *Game) StartVote(nomineeSeatID int, nominatorSeatID *int) {
	session := g.Session
	nominee := g.findSeat(nomineeSeatID)
	if nominee == nil {
		slog.Warn("被指名者の座席が見つかりません", "id", g.ID, "seat", nomineeSeatID)
		return
	}
	if session.RuleAutomation != model.RA_MANUAL {
		if violation := g.checkNomination(nominee, nominatorSeatID); violation != "" {
			g.addSystemMessage(violation)
			if session.RuleAutomation == model.RA_FULL_AUTO {
				slog.Warn("指名を拒否しました", "id", g.ID, "seat", nomineeSeatID, "reason", violation)
				g.sync()
				return
			}
		}
	}
	var nominator *int
	nominatorID := model.NoSeat
	if nominatorSeatID != nil {
		id := *nominatorSeatID
		nominator = &id
		nominatorID = id
	}
	session.Voting = &model.VotingSession{
		NominatorSeatID: nominator,
		NomineeSeatID:   nomineeSeatID,
		ClockHandSeatID: nomineeSeatID,
		Votes:           []int{},
		IsOpen:          true,
	}
	for i := range session.Seats {
		session.Seats[i].IsHandRaised = false
	}
	nominee.IsNominated = true
	session.Phase = model.P_VOTING
	session.DailyNominations = append(session.DailyNominations, model.Nomination{
		NominatorSeatID: nominatorID,
		NomineeSeatID:   nomineeSeatID,
		Round:           session.RoundInfo.DayCount,
		Timestamp:       g.timestamp(),
	})
	session.RoundInfo.NominationCount++
	slog.Info("投票を開始しました", "id", g.ID, "nominee", nomineeSeatID, "nominator", nominatorID)
	g.appendLog("nominate", nominatorID, nomineeSeatID)
	g.sync()
}

func (g *Game) NextClockHand() {
	voting := g.Session.Voting
	if voting == nil || len(g.Session.Seats) == 0 {
		return
	}
	voting.ClockHandSeatID = (voting.ClockHandSeatID + 1) % len(g.Session.Seats)
	g.sync()
}

// ToggleHand は時計の針が指している座席の挙手を切り替える。
// 死亡した座席は幽霊票が残っている間だけ手を挙げられ、挙げると幽霊票を消費する。
func (g *Game) ToggleHand(actingSeatID int) {
	if err := g.toggleHand(actingSeatID); err != "" {
		slog.Warn("挙手を切り替えられません", "id", g.ID, "seat", actingSeatID, "reason", err)
		return
	}
	g.sync()
}

func (g *Game) toggleHand(actingSeatID int) string {
	voting := g.Session.Voting
	if voting == nil || !voting.IsOpen {
		return "投票が開いていません"
	}
	if actingSeatID != voting.ClockHandSeatID {
		return "時計の針が指している座席ではありません"
	}
	seat := g.findSeat(actingSeatID)
	if seat == nil {
		return "座席が存在しません"
	}
	if idx := slices.Index(voting.Votes, actingSeatID); idx >= 0 {
		voting.Votes = slices.Delete(voting.Votes, idx, idx+1)
		seat.IsHandRaised = false
		if seat.IsDead {
			seat.HasGhostVote = true
		}
		return ""
	}
	if seat.IsDead {
		if !seat.HasGhostVote {
			return "幽霊票を使い切っています"
		}
		seat.HasGhostVote = false
	}
	voting.Votes = append(voting.Votes, actingSeatID)
	seat.IsHandRaised = true
	return ""
}

func (g *Game) CloseVote() {
	session := g.Session
	voting := session.Voting
	if voting == nil {
		return
	}
	aliveCount := util.CountAlive(session.Seats)
	voteCount := len(voting.Votes)
	result := model.VR_SURVIVED
	nominee := g.findSeat(voting.NomineeSeatID)
	if IsExecuted(voteCount, aliveCount) {
		result = model.VR_EXECUTED
	}
	nominatorID := model.NoSeat
	if voting.NominatorSeatID != nil {
		nominatorID = *voting.NominatorSeatID
	}
	session.VoteHistory = append(session.VoteHistory, model.VoteHistoryEntry{
		Round:           session.RoundInfo.DayCount,
		NominatorSeatID: nominatorID,
		NomineeSeatID:   voting.NomineeSeatID,
		Votes:           slices.Clone(voting.Votes),
		VoteCount:       voteCount,
		Timestamp:       g.timestamp(),
		Result:          result,
	})
	session.Voting = nil
	session.Phase = model.P_DAY
	for i := range session.Seats {
		session.Seats[i].IsHandRaised = false
		session.Seats[i].IsNominated = false
	}
	slog.Info("投票を締め切りました", "id", g.ID, "nominee", voting.NomineeSeatID, "votes", voteCount, "alive", aliveCount, "result", result)
	g.appendLog("vote", voting.NomineeSeatID, voteCount, aliveCount, result)
	if result == model.VR_EXECUTED {
		if nominee != nil {
			g.addSystemMessage(fmt.Sprintf("%s が %d 票で処刑されました", nominee.UserName, voteCount))
			if !nominee.IsDead {
				g.kill(nominee, true)
			}
		}
	} else {
		g.addSystemMessage(fmt.Sprintf("票数不足 (%d/%d) のため処刑はありません", voteCount, VoteThreshold(aliveCount)))
	}
	g.sync()
}
