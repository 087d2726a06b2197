package logic

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"

	"github.com/aiwolfdial/storyteller-server/model"
	"github.com/aiwolfdial/storyteller-server/util"
)

const (
	roleDrunk      = "drunk"
	roleMarionette = "marionette"
	roleLunatic    = "lunatic"
	// roleLastResortTownsfolk は偽装用の町人がカタログに一つもないときに使う
	roleLastResortTownsfolk = "washerwoman"
)

var teamOrder = []model.Team{model.T_TOWNSFOLK, model.T_OUTSIDER, model.T_MINION, model.T_DEMON}

// GenerateRoleAssignment はスクリプトと座席数から標準構成を満たす役職の並びを作る。
// 対応外の座席数や不明なスクリプトでは nil を返す。
func GenerateRoleAssignment(catalog *model.Catalog, r *rand.Rand, scriptID string, seatCount int) []string {
	composition, ok := util.GetStandardComposition(catalog, seatCount)
	if !ok {
		slog.Warn("対応していない座席数です", "seats", seatCount)
		return nil
	}
	if _, ok := catalog.Script(scriptID); !ok {
		slog.Warn("スクリプトが見つかりません", "script", scriptID)
		return nil
	}
	roles := make([]string, 0, seatCount)
	for _, team := range teamOrder {
		pool := catalog.ScriptRolesByTeam(scriptID, team)
		util.Shuffle(r, pool)
		count := composition.CountOf(team)
		if len(pool) < count {
			slog.Warn("スクリプトの役職が不足しています", "script", scriptID, "team", team, "required", count, "available", len(pool))
			count = len(pool)
		}
		roles = append(roles, pool[:count]...)
	}
	util.Shuffle(r, roles)
	return roles
}

// ApplyRoleAssignment は座席に役職を割り当て、酔っ払いなどの偽装役職を解決する。
// 同期は呼び出し側の責務。
func ApplyRoleAssignment(session *model.Session, catalog *model.Catalog, r *rand.Rand, seat *model.Seat, roleID string) {
	setSeatRole(seat, roleID)
	resolveDecoy(session, catalog, r, seat)
}

func setSeatRole(seat *model.Seat, roleID string) {
	seat.RealRoleID = roleID
	seat.SeenRoleID = roleID
	seat.RoleID = roleID
	seat.HasUsedAbility = false
	seat.Statuses = nil
}

// resolveDecoy は本当の役職が偽装を持つ座席の見かけの役職を決める
func resolveDecoy(session *model.Session, catalog *model.Catalog, r *rand.Rand, seat *model.Seat) {
	switch seat.RealRoleID {
	case roleDrunk, roleMarionette:
		seat.SeenRoleID = pickDecoyTownsfolk(session, catalog, r, seat.ID)
	case roleLunatic:
		seat.SeenRoleID = pickDecoyDemon(session, catalog)
	default:
		return
	}
	seat.RoleID = seat.SeenRoleID
}

// pickDecoyTownsfolk は他の座席で使われていない町人を選ぶ。
// 座席ごとに全座席を走査するため、全体の割り当てでは O(n²) になる。
func pickDecoyTownsfolk(session *model.Session, catalog *model.Catalog, r *rand.Rand, seatID int) string {
	used := util.UsedRoleIDs(session.Seats, seatID)
	pool := util.ExcludeRoles(catalog.ScriptRolesByTeam(session.CurrentScriptID, model.T_TOWNSFOLK), used)
	if len(pool) == 0 {
		pool = util.ExcludeRoles(catalog.FallbackTownsfolk, used)
	}
	if len(pool) == 0 {
		if len(catalog.FallbackTownsfolk) == 0 {
			slog.Warn("偽装用の町人が定義されていません", "seat", seatID, "role", roleLastResortTownsfolk)
			return roleLastResortTownsfolk
		}
		slog.Warn("偽装用の町人が枯渇したため重複を許可します", "seat", seatID, "role", catalog.FallbackTownsfolk[0])
		return catalog.FallbackTownsfolk[0]
	}
	return util.SelectRandom(r, pool)
}

func pickDecoyDemon(session *model.Session, catalog *model.Catalog) string {
	if demons := catalog.ScriptRolesByTeam(session.CurrentScriptID, model.T_DEMON); len(demons) > 0 {
		return demons[0]
	}
	if catalog.DefaultDemon == "" {
		slog.Warn("既定のデーモンが定義されていません", "script", session.CurrentScriptID)
		return roleLunatic
	}
	return catalog.DefaultDemon
}

func (g *Game) newRoleReminders(seatID int, roleID string) []model.Reminder {
	role, ok := g.catalog.Role(roleID)
	if !ok || len(role.Reminders) == 0 {
		return nil
	}
	reminders := make([]model.Reminder, 0, len(role.Reminders))
	for _, text := range role.Reminders {
		reminders = append(reminders, model.Reminder{
			ID:           util.NewID(),
			Text:         text,
			SourceRoleID: roleID,
			OwnerSeatID:  seatID,
		})
	}
	return reminders
}

func (g *Game) ApplyRoleAssignment(seatID int, roleID string) {
	seat := g.findSeat(seatID)
	if seat == nil {
		slog.Warn("座席が見つかりません", "id", g.ID, "seat", seatID)
		return
	}
	if roleID != "" {
		if _, ok := g.catalog.Role(roleID); !ok {
			slog.Warn("不明な役職です", "id", g.ID, "role", roleID)
			return
		}
	}
	ApplyRoleAssignment(g.Session, g.catalog, g.rand, seat, roleID)
	if reminders := g.newRoleReminders(seatID, roleID); reminders != nil {
		seat.Reminders = reminders
	}
	slog.Info("役職を割り当てました", "id", g.ID, "seat", seatID, "real", seat.RealRoleID, "seen", seat.SeenRoleID)
	g.appendLog("assign", seatID, seat.RealRoleID, seat.SeenRoleID)
	g.sync()
}

func (g *Game) clearRoles() {
	for i := range g.Session.Seats {
		seat := &g.Session.Seats[i]
		seat.RealRoleID = ""
		seat.SeenRoleID = ""
		seat.RoleID = ""
		seat.Reminders = nil
		seat.Statuses = nil
	}
}

// assignAll は全座席の役職を先に確定させてから偽装を解決する。
// 偽装は他の全座席の本当の役職と見かけの役職を避ける。
func (g *Game) assignAll(roles []string) {
	count := min(len(roles), len(g.Session.Seats))
	for i := range count {
		setSeatRole(&g.Session.Seats[i], roles[i])
	}
	for i := range count {
		seat := &g.Session.Seats[i]
		resolveDecoy(g.Session, g.catalog, g.rand, seat)
		seat.Reminders = g.newRoleReminders(seat.ID, roles[i])
	}
}

// AssignRoles は現在の座席数で役職を生成し、全座席に割り当てる
func (g *Game) AssignRoles() {
	seatCount := len(g.Session.Seats)
	if seatCount < util.MinCompositionSeats {
		g.addSystemMessage(fmt.Sprintf("座席数が%d未満のため自動割り当てできません", util.MinCompositionSeats))
		g.sync()
		return
	}
	roles := GenerateRoleAssignment(g.catalog, g.rand, g.Session.CurrentScriptID, seatCount)
	if len(roles) == 0 {
		g.addSystemMessage("役職を生成できませんでした")
		g.sync()
		return
	}
	g.clearRoles()
	g.assignAll(roles)
	g.addSystemMessage(fmt.Sprintf("役職を自動割り当てしました (%d 座席)", seatCount))
	slog.Info("役職を自動割り当てしました", "id", g.ID, "seats", seatCount, "script", g.Session.CurrentScriptID)
	g.sync()
}

func (g *Game) ResetRoles() {
	g.clearRoles()
	g.Session.RolesRevealed = false
	g.Session.Phase = model.P_SETUP
	slog.Info("役職をリセットしました", "id", g.ID)
	g.sync()
}

func (g *Game) DistributeRoles() {
	g.Session.RolesRevealed = true
	g.addSystemMessage("語り部が役職を配布しました")
	g.sync()
}

func (g *Game) HideRoles() {
	g.Session.RolesRevealed = false
	g.sync()
}

// ApplyStrategy は指定された役職の組をシャッフルして割り当てる
func (g *Game) ApplyStrategy(name string, roleIDs []string) {
	for _, id := range roleIDs {
		if _, ok := g.catalog.Role(id); !ok {
			slog.Warn("不明な役職です", "id", g.ID, "strategy", name, "role", id)
			return
		}
	}
	roles := slices.Clone(roleIDs)
	util.Shuffle(g.rand, roles)
	g.clearRoles()
	g.assignAll(roles)
	g.addSystemMessage(fmt.Sprintf("戦略「%s」を適用しました", name))
	slog.Info("戦略を適用しました", "id", g.ID, "strategy", name, "roles", len(roles))
	g.sync()
}
