package logic

import (
	"testing"

	"github.com/aiwolfdial/storyteller-server/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoteThreshold(t *testing.T) {
	tests := []struct {
		alive int
		want  int
	}{
		{0, 1}, {1, 1}, {2, 1}, {3, 2}, {4, 2}, {5, 3}, {6, 3}, {7, 4}, {15, 8},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, VoteThreshold(tt.alive), "生存者 %d", tt.alive)
		assert.True(t, IsExecuted(VoteThreshold(tt.alive), tt.alive), "生存者 %d", tt.alive)
		if tt.want > 1 {
			assert.False(t, IsExecuted(VoteThreshold(tt.alive)-1, tt.alive), "生存者 %d", tt.alive)
		}
	}
	assert.False(t, IsExecuted(0, 0))
}

// voteWith は指名から締め切りまでを行い、voters の座席が手を挙げる
func voteWith(game *Game, nominee int, voters ...int) {
	game.StartVote(nominee, nil)
	raised := make(map[int]bool)
	for _, id := range voters {
		raised[id] = true
	}
	for range game.Session.Seats {
		if raised[game.Session.Voting.ClockHandSeatID] {
			game.ToggleHand(game.Session.Voting.ClockHandSeatID)
		}
		game.NextClockHand()
	}
	game.CloseVote()
}

func TestCloseVoteExecutes(t *testing.T) {
	game, _ := newTestGame(t, 5, "tb")
	setRoles(game, "chef", "empath", "monk", "poisoner", "imp")
	game.SetPhase(model.P_DAY)

	voteWith(game, 0, 1, 2, 3)

	assert.True(t, game.Session.Seats[0].IsDead)
	require.Len(t, game.Session.VoteHistory, 1)
	entry := game.Session.VoteHistory[0]
	assert.Equal(t, model.VR_EXECUTED, entry.Result)
	assert.Equal(t, 3, entry.VoteCount)
	assert.ElementsMatch(t, []int{1, 2, 3}, entry.Votes)
	assert.Equal(t, model.NoSeat, entry.NominatorSeatID)
	assert.Equal(t, model.P_DAY, game.Session.Phase)
	assert.Nil(t, game.Session.Voting)
}

func TestCloseVoteSurvives(t *testing.T) {
	game, _ := newTestGame(t, 5, "tb")
	setRoles(game, "chef", "empath", "monk", "poisoner", "imp")
	game.SetPhase(model.P_DAY)

	voteWith(game, 0, 1, 2)

	assert.False(t, game.Session.Seats[0].IsDead)
	require.Len(t, game.Session.VoteHistory, 1)
	assert.Equal(t, model.VR_SURVIVED, game.Session.VoteHistory[0].Result)
	assert.Equal(t, 2, game.Session.VoteHistory[0].VoteCount)
	for _, seat := range game.Session.Seats {
		assert.False(t, seat.IsHandRaised)
	}
}

func TestExecutingDemonEndsGame(t *testing.T) {
	game, _ := newTestGame(t, 5, "tb")
	setRoles(game, "chef", "empath", "monk", "poisoner", "imp")
	game.SetPhase(model.P_DAY)

	voteWith(game, 4, 0, 1, 2)
	assert.True(t, game.Session.GameOver.IsOver)
	assert.Equal(t, model.A_GOOD, game.Session.GameOver.Winner)
}

func TestExecutingSaintEndsGame(t *testing.T) {
	game, _ := newTestGame(t, 5, "tb")
	setRoles(game, "saint", "empath", "monk", "poisoner", "imp")
	game.SetPhase(model.P_DAY)

	voteWith(game, 0, 1, 2, 3)
	assert.True(t, game.Session.GameOver.IsOver)
	assert.Equal(t, model.A_EVIL, game.Session.GameOver.Winner)
}

func TestClockHandWraps(t *testing.T) {
	game, _ := newTestGame(t, 5, "tb")
	game.SetPhase(model.P_DAY)
	game.StartVote(3, nil)

	game.NextClockHand()
	assert.Equal(t, 4, game.Session.Voting.ClockHandSeatID)
	game.NextClockHand()
	assert.Equal(t, 0, game.Session.Voting.ClockHandSeatID)
}

func TestToggleHandOnlyAtClockHand(t *testing.T) {
	game, _ := newTestGame(t, 5, "tb")
	game.SetPhase(model.P_DAY)
	game.StartVote(2, nil)

	game.ToggleHand(4)
	assert.Empty(t, game.Session.Voting.Votes)

	game.ToggleHand(2)
	assert.Equal(t, []int{2}, game.Session.Voting.Votes)
	assert.True(t, game.Session.Seats[2].IsHandRaised)

	game.ToggleHand(2)
	assert.Empty(t, game.Session.Voting.Votes)
	assert.False(t, game.Session.Seats[2].IsHandRaised)
}

func TestGhostVote(t *testing.T) {
	game, _ := newTestGame(t, 6, "tb")
	setRoles(game, "chef", "empath", "monk", "poisoner", "imp", "soldier")
	game.Session.Seats[1].IsDead = true
	game.SetPhase(model.P_DAY)
	game.StartVote(0, nil)
	game.NextClockHand()

	game.ToggleHand(1)
	assert.False(t, game.Session.Seats[1].HasGhostVote)
	assert.Equal(t, []int{1}, game.Session.Voting.Votes)

	game.ToggleHand(1)
	assert.True(t, game.Session.Seats[1].HasGhostVote)
	assert.Empty(t, game.Session.Voting.Votes)

	game.ToggleHand(1)
	game.CloseVote()
	assert.False(t, game.Session.Seats[1].HasGhostVote)

	game.StartVote(2, nil)
	for game.Session.Voting.ClockHandSeatID != 1 {
		game.NextClockHand()
	}
	game.ToggleHand(1)
	assert.Empty(t, game.Session.Voting.Votes)
}

func TestNominationRules(t *testing.T) {
	nominator := 1

	t.Run("GUIDED は警告して許可する", func(t *testing.T) {
		game, _ := newTestGame(t, 5, "tb")
		game.SetPhase(model.P_DAY)
		game.StartVote(0, &nominator)
		game.CloseVote()

		messages := len(game.Session.Messages)
		game.StartVote(0, &nominator)
		require.NotNil(t, game.Session.Voting)
		assert.Greater(t, len(game.Session.Messages), messages)
		assert.Equal(t, 2, game.Session.RoundInfo.NominationCount)
	})

	t.Run("FULL_AUTO は拒否する", func(t *testing.T) {
		game, _ := newTestGame(t, 5, "tb")
		seatUsers(game)
		game.SetRuleAutomation(model.RA_FULL_AUTO)
		game.SetPhase(model.P_DAY)
		game.StartVote(0, &nominator)
		game.CloseVote()

		game.StartVote(0, &nominator)
		assert.Nil(t, game.Session.Voting)
		game.StartVote(2, &nominator)
		assert.Nil(t, game.Session.Voting)

		other := 3
		game.StartVote(2, &other)
		require.NotNil(t, game.Session.Voting)
		assert.Equal(t, &other, game.Session.Voting.NominatorSeatID)
	})

	t.Run("FULL_AUTO は夜の指名を拒否する", func(t *testing.T) {
		game, _ := newTestGame(t, 5, "tb")
		game.SetRuleAutomation(model.RA_FULL_AUTO)
		game.SetPhase(model.P_NIGHT)
		game.StartVote(0, nil)
		assert.Nil(t, game.Session.Voting)
	})

	t.Run("FULL_AUTO は空席を拒否する", func(t *testing.T) {
		game, _ := newTestGame(t, 5, "tb")
		seatUsers(game)
		game.SetRuleAutomation(model.RA_FULL_AUTO)
		game.SetPhase(model.P_DAY)

		game.Session.Seats[2].UserID = ""
		game.StartVote(2, &nominator)
		assert.Nil(t, game.Session.Voting)
		assert.Equal(t, "空席は指名できません", game.Session.Messages[len(game.Session.Messages)-1].Content)

		empty := 2
		game.StartVote(3, &empty)
		assert.Nil(t, game.Session.Voting)
		assert.Equal(t, "空席からは指名できません", game.Session.Messages[len(game.Session.Messages)-1].Content)
	})

	t.Run("FULL_AUTO は死亡者を区別して拒否する", func(t *testing.T) {
		game, _ := newTestGame(t, 5, "tb")
		seatUsers(game)
		game.SetRuleAutomation(model.RA_FULL_AUTO)
		game.SetPhase(model.P_DAY)
		game.Session.Seats[2].IsDead = true

		game.StartVote(2, &nominator)
		assert.Nil(t, game.Session.Voting)
		assert.Equal(t, "死亡した座席は指名できません", game.Session.Messages[len(game.Session.Messages)-1].Content)

		dead := 2
		game.StartVote(3, &dead)
		assert.Nil(t, game.Session.Voting)
		assert.Equal(t, "死亡した座席からは指名できません", game.Session.Messages[len(game.Session.Messages)-1].Content)
	})

	t.Run("GUIDED は空席でも警告して許可する", func(t *testing.T) {
		game, _ := newTestGame(t, 5, "tb")
		game.SetPhase(model.P_DAY)
		game.StartVote(2, nil)
		require.NotNil(t, game.Session.Voting)
		assert.Equal(t, "空席は指名できません", game.Session.Messages[len(game.Session.Messages)-1].Content)
	})

	t.Run("MANUAL は検査しない", func(t *testing.T) {
		game, _ := newTestGame(t, 5, "tb")
		game.SetRuleAutomation(model.RA_MANUAL)
		messages := len(game.Session.Messages)
		game.StartVote(0, nil)
		require.NotNil(t, game.Session.Voting)
		assert.Equal(t, model.P_VOTING, game.Session.Phase)
		assert.Equal(t, messages, len(game.Session.Messages))
	})

	t.Run("存在しない座席は常に拒否する", func(t *testing.T) {
		game, _ := newTestGame(t, 5, "tb")
		game.SetRuleAutomation(model.RA_MANUAL)
		game.StartVote(9, nil)
		assert.Nil(t, game.Session.Voting)
	})
}
