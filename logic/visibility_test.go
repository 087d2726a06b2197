package logic

import (
	"testing"

	"github.com/aiwolfdial/storyteller-server/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVisibilityGame(t *testing.T) *Game {
	t.Helper()
	game, _ := newTestGame(t, 5, "tb")
	setRoles(game, "drunk", "empath", "spy", "monk", "imp")
	game.Session.Seats[0].SeenRoleID = "chef"
	game.Session.Seats[0].RoleID = "chef"
	seatUsers(game)
	game.ToggleStatus(4, model.SS_POISONED)
	game.AddReminder(4, "非公開", false)
	game.AddReminder(4, "公開", true)
	game.AddNote("秘密のメモ")
	game.Session.Seats[4].HasUsedAbility = true
	return game
}

func TestSplitMergeRoundTrip(t *testing.T) {
	game := newVisibilityGame(t)
	game.StartGame()
	require.True(t, game.SubmitNightAction("user-e", 4, model.ChoosePlayerPayload{SeatID: 1}).Success)

	public, secret := SplitGameState(game.Session)
	for _, seat := range public.Seats {
		assert.Empty(t, seat.RealRoleID)
	}
	assert.Nil(t, public.StorytellerNotes)
	require.Len(t, secret.Seats, 5)
	assert.Equal(t, "drunk", secret.Seats[0].RealRoleID)
	require.Len(t, secret.StorytellerNotes, 1)

	assert.Equal(t, game.Session, MergeGameState(public, secret))

	fresh := model.NewSession("EMPTY1", 5, "tb")
	assert.Equal(t, fresh, MergeGameState(SplitGameState(fresh)))
}

func TestSplitDoesNotAliasSession(t *testing.T) {
	game := newVisibilityGame(t)
	public, secret := SplitGameState(game.Session)
	public.Seats[0].SeenRoleID = "changed"
	secret.StorytellerNotes[0].Text = "changed"

	assert.Equal(t, "chef", game.Session.Seats[0].SeenRoleID)
	assert.Equal(t, "秘密のメモ", game.Session.StorytellerNotes[0].Text)
	assert.Equal(t, "drunk", game.Session.Seats[0].RealRoleID)
}

func TestFilterSeatPrivileged(t *testing.T) {
	game := newVisibilityGame(t)
	seat := game.Session.Seats[4]
	assert.Equal(t, seat, FilterSeatForUser(seat, "", true, "", game.Catalog()))
}

func TestFilterSeatOwnSeat(t *testing.T) {
	game := newVisibilityGame(t)
	own := FilterSeatForUser(game.Session.Seats[0], "user-a", false, "drunk", game.Catalog())

	assert.Equal(t, "chef", own.RoleID)
	assert.Equal(t, "chef", own.SeenRoleID)
	assert.Empty(t, own.RealRoleID)
}

func TestFilterSeatOtherSeat(t *testing.T) {
	game := newVisibilityGame(t)
	other := FilterSeatForUser(game.Session.Seats[4], "user-b", false, "empath", game.Catalog())

	assert.Empty(t, other.RoleID)
	assert.Empty(t, other.RealRoleID)
	assert.Empty(t, other.SeenRoleID)
	assert.Empty(t, other.Statuses)
	assert.False(t, other.HasUsedAbility)
	require.Len(t, other.Reminders, 1)
	assert.Equal(t, "公開", other.Reminders[0].Text)
	assert.Equal(t, "user-e", other.UserID)
}

func TestFilterSeatRevealAll(t *testing.T) {
	game := newVisibilityGame(t)
	seen := FilterSeatForUser(game.Session.Seats[0], "user-c", false, "spy", game.Catalog())

	assert.Equal(t, "drunk", seen.RealRoleID)
	assert.Equal(t, "chef", seen.SeenRoleID)
	assert.Equal(t, "chef", seen.RoleID)
}

func TestFilterGameStateForUser(t *testing.T) {
	game := newVisibilityGame(t)
	game.StartGame()
	require.True(t, game.SubmitNightAction("user-e", 4, model.ChoosePlayerPayload{SeatID: 1}).Success)
	require.True(t, game.SubmitNightAction("user-b", 1, model.CustomPayload{Data: "x"}).Success)
	require.True(t, game.SendMessage("user-a", "user-b", "内緒", true).Success)
	require.True(t, game.SendMessage("user-a", "", "全体", false).Success)

	view := FilterGameStateForUser(game.Session, "user-b", false, game.Catalog())
	assert.Nil(t, view.StorytellerNotes)
	require.Len(t, view.NightActionRequests, 1)
	assert.Equal(t, 1, view.NightActionRequests[0].SeatID)
	assert.Equal(t, "empath", view.Seats[1].RoleID)
	assert.Empty(t, view.Seats[0].RoleID)
	for _, seat := range view.Seats {
		assert.Empty(t, seat.RealRoleID)
	}
	assert.True(t, containsMessage(view.Messages, "内緒"))

	outsider := FilterGameStateForUser(game.Session, "user-d", false, game.Catalog())
	assert.False(t, containsMessage(outsider.Messages, "内緒"))
	assert.True(t, containsMessage(outsider.Messages, "全体"))
	assert.Empty(t, outsider.NightActionRequests)

	spectator := FilterGameStateForUser(game.Session, "", false, game.Catalog())
	assert.Empty(t, spectator.NightActionRequests)
	for _, seat := range spectator.Seats {
		assert.Empty(t, seat.RoleID)
	}

	spy := FilterGameStateForUser(game.Session, "user-c", false, game.Catalog())
	assert.Equal(t, "drunk", spy.Seats[0].RealRoleID)
	assert.Nil(t, spy.StorytellerNotes)

	storyteller := FilterGameStateForUser(game.Session, "", true, game.Catalog())
	assert.Equal(t, game.Session, storyteller)
}

func TestViewerRoleID(t *testing.T) {
	game := newVisibilityGame(t)
	assert.Equal(t, "drunk", ViewerRoleID(game.Session, "user-a"))
	assert.Equal(t, "", ViewerRoleID(game.Session, "nobody"))
}

func containsMessage(messages []model.ChatMessage, content string) bool {
	for _, m := range messages {
		if m.Content == content {
			return true
		}
	}
	return false
}
