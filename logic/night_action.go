package logic

import (
	"log/slog"

	"github.com/aiwolfdial/storyteller-server/model"
	"github.com/aiwolfdial/storyteller-server/util"
)

// ExpectedPayloadKind は座席が見かけ上持つ役職の夜の行動の種類を返す
func (g *Game) ExpectedPayloadKind(roleID string) model.NightActionKind {
	if role, ok := g.catalog.Role(roleID); ok && role.NightAction != nil {
		return role.NightAction.Kind
	}
	return model.NA_CUSTOM
}

func (g *Game) validatePayload(payload model.NightActionPayload, expected model.NightActionKind) string {
	if payload == nil {
		return "行動内容がありません"
	}
	if payload.Kind() != expected {
		return "この役職の行動の種類と一致しません"
	}
	switch p := payload.(type) {
	case model.ChoosePlayerPayload:
		if g.findSeat(p.SeatID) == nil {
			return "対象の座席が存在しません"
		}
	case model.ChooseTwoPlayersPayload:
		if p.SeatIDs[0] == p.SeatIDs[1] {
			return "異なる二つの座席を選んでください"
		}
		for _, id := range p.SeatIDs {
			if g.findSeat(id) == nil {
				return "対象の座席が存在しません"
			}
		}
	}
	return ""
}

func (g *Game) SubmitNightAction(userID string, seatID int, payload model.NightActionPayload) model.RPCResult {
	if g.Session.Phase != model.P_NIGHT {
		return model.RPCFail("夜以外は行動を提出できません")
	}
	seat := g.findSeat(seatID)
	if seat == nil {
		return model.RPCFail("座席が存在しません")
	}
	if seat.UserID == "" || seat.UserID != userID {
		return model.RPCFail("自分の座席ではありません")
	}
	if seat.SeenRoleID == "" {
		return model.RPCFail("役職が割り当てられていません")
	}
	if reason := g.validatePayload(payload, g.ExpectedPayloadKind(seat.SeenRoleID)); reason != "" {
		slog.Warn("夜の行動を拒否しました", "id", g.ID, "seat", seatID, "reason", reason)
		return model.RPCFail(reason)
	}
	request := model.NightActionRequest{
		ID:        util.NewID(),
		SeatID:    seatID,
		RoleID:    seat.SeenRoleID,
		Payload:   payload,
		Status:    model.RS_PENDING,
		Timestamp: g.timestamp(),
	}
	g.Session.NightActionRequests = append(g.Session.NightActionRequests, request)
	slog.Info("夜の行動を受け付けました", "id", g.ID, "seat", seatID, "role", request.RoleID, "kind", payload.Kind(), "request", request.ID)
	g.appendLog("night_action", seatID, request.RoleID, payload.Kind())
	g.trackEvent("night_action", map[string]any{"request": request})
	g.sync()
	return model.RPCOk()
}

// ResolveNightAction は要求を解決済みにする。存在しない ID と解決済みの ID は無視する。
func (g *Game) ResolveNightAction(requestID string, result string) {
	for i := range g.Session.NightActionRequests {
		request := &g.Session.NightActionRequests[i]
		if request.ID != requestID {
			continue
		}
		if request.Status == model.RS_RESOLVED {
			return
		}
		request.Status = model.RS_RESOLVED
		request.Result = result
		slog.Info("夜の行動を解決しました", "id", g.ID, "request", requestID, "seat", request.SeatID)
		g.sync()
		return
	}
}

func (g *Game) PendingNightActions() []model.NightActionRequest {
	pending := make([]model.NightActionRequest, 0)
	for _, request := range g.Session.NightActionRequests {
		if request.Status == model.RS_PENDING {
			pending = append(pending, request)
		}
	}
	return pending
}
