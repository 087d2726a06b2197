package logic

import (
	"log/slog"

	"github.com/aiwolfdial/storyteller-server/model"
)

// CurrentNightRole は夜の順番で現在起こしている役職を返す
func (g *Game) CurrentNightRole() (string, bool) {
	idx := g.Session.NightCurrentIndex
	if idx < 0 || idx >= len(g.Session.NightQueue) {
		return "", false
	}
	return g.Session.NightQueue[idx], true
}

func (g *Game) NightNext() {
	session := g.Session
	if session.NightCurrentIndex < len(session.NightQueue)-1 {
		session.NightCurrentIndex++
		role, _ := g.CurrentNightRole()
		slog.Info("夜の順番を進めました", "id", g.ID, "index", session.NightCurrentIndex, "role", role)
	} else {
		g.changePhase(model.P_DAY)
		session.NightCurrentIndex = -1
	}
	g.sync()
}

func (g *Game) NightPrev() {
	if g.Session.NightCurrentIndex <= 0 {
		return
	}
	g.Session.NightCurrentIndex--
	g.sync()
}
