package logic

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/aiwolfdial/storyteller-server/model"
	"github.com/aiwolfdial/storyteller-server/service"
	"github.com/aiwolfdial/storyteller-server/util"
)

// Game は一つの部屋のセッションに対する操作を提供する。
// 操作は同期的にセッションを書き換え、最後に syncer を呼び出す。
type Game struct {
	ID         string
	Session    *model.Session
	catalog    *model.Catalog
	rand       *rand.Rand
	now        func() time.Time
	syncer     func()
	jsonLogger *service.JSONLogger
	gameLogger *service.GameLogger
}

func NewGame(session *model.Session, catalog *model.Catalog) *Game {
	slog.Info("ゲームを作成しました", "id", session.RoomID, "seats", len(session.Seats), "script", session.CurrentScriptID)
	return &Game{
		ID:      session.RoomID,
		Session: session,
		catalog: catalog,
		rand:    rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		now:     time.Now,
	}
}

func (g *Game) SetJSONLogger(jsonLogger *service.JSONLogger) {
	g.jsonLogger = jsonLogger
}

func (g *Game) SetGameLogger(gameLogger *service.GameLogger) {
	g.gameLogger = gameLogger
}

func (g *Game) SetSyncer(syncer func()) {
	g.syncer = syncer
}

func (g *Game) SetRand(r *rand.Rand) {
	g.rand = r
}

func (g *Game) SetClock(now func() time.Time) {
	g.now = now
}

func (g *Game) Catalog() *model.Catalog {
	return g.catalog
}

func (g *Game) sync() {
	if g.syncer != nil {
		g.syncer()
	}
}

func (g *Game) timestamp() int64 {
	return g.now().UnixMilli()
}

func (g *Game) findSeat(id int) *model.Seat {
	return g.Session.FindSeat(id)
}

func (g *Game) addSystemMessage(content string) {
	g.Session.Messages = append(g.Session.Messages, model.ChatMessage{
		ID:         util.NewID(),
		SenderID:   "system",
		SenderName: "システム",
		Content:    content,
		Type:       model.MT_SYSTEM,
		Timestamp:  g.timestamp(),
	})
}

// addPrivateSystemMessage は recipientID の利用者と語り部にだけ見えるシステムメッセージを追加する
func (g *Game) addPrivateSystemMessage(content string, recipientID string) {
	g.Session.Messages = append(g.Session.Messages, model.ChatMessage{
		ID:          util.NewID(),
		SenderID:    "system",
		SenderName:  "システム",
		RecipientID: recipientID,
		Content:     content,
		Type:        model.MT_SYSTEM,
		IsPrivate:   true,
		Timestamp:   g.timestamp(),
	})
}

func (g *Game) appendLog(event string, args ...any) {
	if g.gameLogger == nil {
		return
	}
	line := fmt.Sprintf("%d,%d,%s", g.Session.RoundInfo.DayCount, g.Session.RoundInfo.NightCount, event)
	for _, arg := range args {
		line += fmt.Sprintf(",%v", arg)
	}
	g.gameLogger.AppendLog(g.ID, line)
}

func (g *Game) trackEvent(event string, data map[string]any) {
	if g.jsonLogger == nil {
		return
	}
	g.jsonLogger.TrackEvent(g.ID, event, data)
}

// SetScript はセットアップ中のみスクリプトを切り替える
func (g *Game) SetScript(scriptID string) {
	if g.Session.Phase != model.P_SETUP {
		slog.Warn("セットアップ中以外はスクリプトを変更できません", "id", g.ID, "phase", g.Session.Phase)
		return
	}
	if _, ok := g.catalog.Script(scriptID); !ok {
		slog.Warn("不明なスクリプトです", "id", g.ID, "script", scriptID)
		return
	}
	g.Session.CurrentScriptID = scriptID
	g.addSystemMessage(fmt.Sprintf("スクリプトを %s に変更しました", scriptID))
	g.sync()
}

func (g *Game) SetRuleAutomation(level model.RuleAutomationLevel) {
	switch level {
	case model.RA_MANUAL, model.RA_GUIDED, model.RA_FULL_AUTO:
	default:
		slog.Warn("不明なルール自動化レベルです", "id", g.ID, "level", level)
		return
	}
	if g.Session.RuleAutomation == level {
		return
	}
	g.Session.RuleAutomation = level
	slog.Info("ルール自動化レベルを変更しました", "id", g.ID, "level", level)
	g.sync()
}

func (g *Game) SendMessage(senderUserID string, recipientUserID string, content string, private bool) model.RPCResult {
	sender := g.Session.FindSeatByUser(senderUserID)
	if sender == nil {
		return model.RPCFail("座席に着いていません")
	}
	if content == "" {
		return model.RPCFail("メッセージが空です")
	}
	if private && recipientUserID == "" {
		return model.RPCFail("宛先がありません")
	}
	g.Session.Messages = append(g.Session.Messages, model.ChatMessage{
		ID:          util.NewID(),
		SenderID:    senderUserID,
		SenderName:  sender.UserName,
		RecipientID: recipientUserID,
		Content:     content,
		Type:        model.MT_CHAT,
		IsPrivate:   private,
		Timestamp:   g.timestamp(),
	})
	g.sync()
	return model.RPCOk()
}

func (g *Game) AddNote(text string) {
	if text == "" {
		return
	}
	g.Session.StorytellerNotes = append(g.Session.StorytellerNotes, model.Note{
		ID:        util.NewID(),
		Text:      text,
		Timestamp: g.timestamp(),
	})
	g.sync()
}

func (g *Game) RemoveNote(id string) {
	for i, note := range g.Session.StorytellerNotes {
		if note.ID == id {
			g.Session.StorytellerNotes = slices.Delete(g.Session.StorytellerNotes, i, i+1)
			g.sync()
			return
		}
	}
}
