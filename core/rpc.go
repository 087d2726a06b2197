package core

import (
	"log/slog"

	"github.com/aiwolfdial/storyteller-server/logic"
	"github.com/aiwolfdial/storyteller-server/model"
	"github.com/aiwolfdial/storyteller-server/util"
)

// HandleRPC は参加者の座席操作を実行する。結果は常に RPCResult で返す。
func HandleRPC(g *logic.Game, claims util.ViewerClaims, op model.RPCOperation, req model.RPCRequest) model.RPCResult {
	switch op {
	case model.RPC_CLAIM_SEAT:
		return g.ClaimSeat(claims.UserID, req.UserName, req.SeatID)
	case model.RPC_LEAVE_SEAT:
		return g.LeaveSeat(claims.UserID, req.SeatID)
	case model.RPC_TOGGLE_READY:
		return g.ToggleReady(claims.UserID, req.SeatID)
	case model.RPC_TOGGLE_HAND:
		return g.ToggleHandRPC(claims.UserID, req.SeatID)
	case model.RPC_SUBMIT_NIGHT_ACTION:
		payload, err := model.UnmarshalNightActionPayload(req.Payload)
		if err != nil {
			slog.Warn("夜の行動の内容を解釈できません", "id", g.ID, "user", claims.UserID, "error", err)
			return model.RPCFail("夜の行動の内容が不正です")
		}
		return g.SubmitNightAction(claims.UserID, req.SeatID, payload)
	case model.RPC_SEND_MESSAGE:
		return g.SendMessage(claims.UserID, req.RecipientID, req.Content, req.IsPrivate)
	}
	slog.Warn("不明な操作です", "id", g.ID, "op", op)
	return model.RPCFail("不明な操作です")
}
