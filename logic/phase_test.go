package logic

import (
	"testing"

	"github.com/aiwolfdial/storyteller-server/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateNightQueueUsesCanonicalOrder(t *testing.T) {
	game, _ := newTestGame(t, 3, "tb")
	setRoles(game, "imp", "empath", "washerwoman")

	queue := CalculateNightQueue(game.Session, game.Catalog(), true)
	assert.Equal(t, []string{"washerwoman", "empath", "imp"}, queue)
}

func TestCalculateNightQueueSkipsDeadAndIncludesSeenRoles(t *testing.T) {
	game, _ := newTestGame(t, 5, "tb")
	setRoles(game, "drunk", "imp", "poisoner", "monk", "empath")
	game.Session.Seats[0].SeenRoleID = "monk"
	game.Session.Seats[3].IsDead = true

	queue := CalculateNightQueue(game.Session, game.Catalog(), false)
	assert.Equal(t, []string{"poisoner", "monk", "imp", "empath"}, queue)

	for _, id := range queue {
		assert.NotEqual(t, "drunk", id)
	}
}

func TestStartGame(t *testing.T) {
	game, counter := newTestGame(t, 5, "tb")
	setRoles(game, "chef", "imp", "poisoner", "monk", "empath")
	game.Session.GameOver = model.GameOver{IsOver: true, Winner: model.A_GOOD}
	game.Session.RoundInfo.DayCount = 4

	game.StartGame()
	assert.Equal(t, model.P_NIGHT, game.Session.Phase)
	assert.Equal(t, model.RoundInfo{NightCount: 1, TotalRounds: 1}, game.Session.RoundInfo)
	assert.False(t, game.Session.GameOver.IsOver)
	assert.Equal(t, []string{"poisoner", "chef", "empath", "imp"}, game.Session.NightQueue)
	assert.Equal(t, -1, game.Session.NightCurrentIndex)
	assert.Equal(t, 1, counter.count)
}

func TestSetPhaseCounters(t *testing.T) {
	game, _ := newTestGame(t, 5, "tb")

	game.SetPhase(model.P_NIGHT)
	game.SetPhase(model.P_DAY)
	assert.Equal(t, 1, game.Session.RoundInfo.NightCount)
	assert.Equal(t, 1, game.Session.RoundInfo.DayCount)

	game.SetPhase(model.P_DAY)
	assert.Equal(t, 1, game.Session.RoundInfo.DayCount)

	game.SetPhase(model.P_VOTING)
	game.SetPhase(model.P_DAY)
	assert.Equal(t, 2, game.Session.RoundInfo.DayCount)

	game.SetPhase("DUSK")
	assert.Equal(t, model.P_DAY, game.Session.Phase)

	game.SetPhase(model.P_NIGHT)
	assert.Equal(t, 2, game.Session.RoundInfo.NightCount)
	assert.Equal(t, 2, game.Session.RoundInfo.TotalRounds)
}

func TestDayEntryFromVotingClearsNominations(t *testing.T) {
	game, _ := newTestGame(t, 5, "tb")
	game.SetPhase(model.P_DAY)
	game.StartVote(1, nil)
	require.Len(t, game.Session.DailyNominations, 1)

	game.SetPhase(model.P_DAY)
	assert.Equal(t, 2, game.Session.RoundInfo.DayCount)
	assert.Empty(t, game.Session.DailyNominations)
}

func TestCloseVoteKeepsDayCount(t *testing.T) {
	game, _ := newTestGame(t, 5, "tb")
	game.SetPhase(model.P_DAY)
	game.StartVote(1, nil)
	game.CloseVote()

	assert.Equal(t, model.P_DAY, game.Session.Phase)
	assert.Equal(t, 1, game.Session.RoundInfo.DayCount)
	assert.Len(t, game.Session.DailyNominations, 1)
}

func TestLeavingVotingClearsVote(t *testing.T) {
	game, _ := newTestGame(t, 5, "tb")
	game.SetPhase(model.P_DAY)
	game.StartVote(1, nil)
	require.NotNil(t, game.Session.Voting)
	game.ToggleHand(1)

	game.SetPhase(model.P_NIGHT)
	assert.Nil(t, game.Session.Voting)
	for _, seat := range game.Session.Seats {
		assert.False(t, seat.IsHandRaised)
		assert.False(t, seat.IsNominated)
	}
}

func TestEndGame(t *testing.T) {
	game, _ := newTestGame(t, 5, "tb")

	game.EndGame(model.A_NONE, "無効")
	assert.False(t, game.Session.GameOver.IsOver)

	game.EndGame(model.A_EVIL, "語り部の判断")
	assert.Equal(t, model.GameOver{IsOver: true, Winner: model.A_EVIL, Reason: "語り部の判断"}, game.Session.GameOver)
}

func TestNightNavigation(t *testing.T) {
	game, counter := newTestGame(t, 3, "tb")
	setRoles(game, "imp", "empath", "washerwoman")
	game.StartGame()

	game.NightPrev()
	assert.Equal(t, -1, game.Session.NightCurrentIndex)

	game.NightNext()
	role, ok := game.CurrentNightRole()
	require.True(t, ok)
	assert.Equal(t, "washerwoman", role)

	game.NightNext()
	game.NightNext()
	role, _ = game.CurrentNightRole()
	assert.Equal(t, "imp", role)

	game.NightPrev()
	role, _ = game.CurrentNightRole()
	assert.Equal(t, "empath", role)
	game.NightNext()

	before := counter.count
	game.NightNext()
	assert.Equal(t, model.P_DAY, game.Session.Phase)
	assert.Equal(t, -1, game.Session.NightCurrentIndex)
	assert.Equal(t, 1, game.Session.RoundInfo.DayCount)
	assert.Equal(t, before+1, counter.count)
	_, ok = game.CurrentNightRole()
	assert.False(t, ok)
}
