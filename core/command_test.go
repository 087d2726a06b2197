package core

import (
	"encoding/json"
	"testing"

	"github.com/aiwolfdial/storyteller-server/logic"
	"github.com/aiwolfdial/storyteller-server/model"
	"github.com/aiwolfdial/storyteller-server/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int {
	return &v
}

func TestApplyCommand(t *testing.T) {
	g := logic.NewGame(model.NewSession("ROOM01", 5, "tb"), model.DefaultCatalog())

	require.NoError(t, ApplyCommand(g, model.Command{Type: model.C_ASSIGN_ROLE, SeatID: intPtr(0), RoleID: "imp"}))
	assert.Equal(t, "imp", g.Session.Seats[0].RealRoleID)

	require.NoError(t, ApplyCommand(g, model.Command{Type: model.C_ADD_NOTE, Text: "メモ"}))
	require.Len(t, g.Session.StorytellerNotes, 1)
	require.NoError(t, ApplyCommand(g, model.Command{Type: model.C_REMOVE_NOTE, TargetID: g.Session.StorytellerNotes[0].ID}))
	assert.Empty(t, g.Session.StorytellerNotes)

	require.NoError(t, ApplyCommand(g, model.Command{Type: model.C_SET_PHASE, Phase: model.P_DAY}))
	require.NoError(t, ApplyCommand(g, model.Command{Type: model.C_START_VOTE, SeatID: intPtr(2), NominatorSeatID: intPtr(1)}))
	require.NotNil(t, g.Session.Voting)
	assert.Equal(t, 1, *g.Session.Voting.NominatorSeatID)
	require.NoError(t, ApplyCommand(g, model.Command{Type: model.C_TOGGLE_HAND, SeatID: intPtr(2)}))
	require.NoError(t, ApplyCommand(g, model.Command{Type: model.C_CLOSE_VOTE}))
	require.Len(t, g.Session.VoteHistory, 1)

	require.NoError(t, ApplyCommand(g, model.Command{Type: model.C_END_GAME, Winner: model.A_GOOD, Reason: "手動"}))
	assert.True(t, g.Session.GameOver.IsOver)

	require.NoError(t, ApplyCommand(g, model.Command{Type: model.C_SET_RULE_AUTOMATION, Level: model.RA_MANUAL}))
	assert.Equal(t, model.RA_MANUAL, g.Session.RuleAutomation)
}

func TestApplyCommandErrors(t *testing.T) {
	g := logic.NewGame(model.NewSession("ROOM01", 5, "tb"), model.DefaultCatalog())

	assert.ErrorIs(t, ApplyCommand(g, model.Command{Type: "fly"}), ErrUnknownCommand)
	for _, typ := range []model.CommandType{model.C_START_VOTE, model.C_TOGGLE_DEATH, model.C_ASSIGN_ROLE, model.C_TOGGLE_STATUS, model.C_ADD_REMINDER} {
		assert.ErrorIs(t, ApplyCommand(g, model.Command{Type: typ}), ErrInvalidCommand, typ)
	}
}

func TestCommandJSON(t *testing.T) {
	var cmd model.Command
	require.NoError(t, json.Unmarshal([]byte(`{"type":"toggle-death","seatId":0}`), &cmd))
	require.NotNil(t, cmd.SeatID)
	assert.Equal(t, 0, *cmd.SeatID)
}

func TestHandleRPC(t *testing.T) {
	g := logic.NewGame(model.NewSession("ROOM01", 5, "tb"), model.DefaultCatalog())
	claims := util.ViewerClaims{Room: "ROOM01", UserID: "user-1", Role: util.TokenRolePlayer}

	result := HandleRPC(g, claims, model.RPC_CLAIM_SEAT, model.RPCRequest{SeatID: 0, UserName: "アリス"})
	require.True(t, result.Success, result.Error)
	assert.Equal(t, "user-1", g.Session.Seats[0].UserID)

	assert.True(t, HandleRPC(g, claims, model.RPC_TOGGLE_READY, model.RPCRequest{SeatID: 0}).Success)
	assert.True(t, HandleRPC(g, claims, model.RPC_SEND_MESSAGE, model.RPCRequest{Content: "やあ"}).Success)
	assert.False(t, HandleRPC(g, claims, "dance", model.RPCRequest{}).Success)

	g.ApplyRoleAssignment(0, "imp")
	g.StartGame()
	bad := HandleRPC(g, claims, model.RPC_SUBMIT_NIGHT_ACTION, model.RPCRequest{SeatID: 0, Payload: json.RawMessage(`{"kind":"warp"}`)})
	assert.False(t, bad.Success)
	ok := HandleRPC(g, claims, model.RPC_SUBMIT_NIGHT_ACTION, model.RPCRequest{SeatID: 0, Payload: json.RawMessage(`{"kind":"choose_player","seatId":3}`)})
	require.True(t, ok.Success, ok.Error)
	assert.Len(t, g.PendingNightActions(), 1)

	assert.True(t, HandleRPC(g, claims, model.RPC_LEAVE_SEAT, model.RPCRequest{SeatID: 0}).Success)
}
