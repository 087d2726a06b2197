package model

import "slices"

type Phase string

const (
	P_SETUP  Phase = "SETUP"
	P_NIGHT  Phase = "NIGHT"
	P_DAY    Phase = "DAY"
	P_VOTING Phase = "VOTING"
)

func PhaseFromString(s string) (Phase, bool) {
	switch s {
	case "SETUP":
		return P_SETUP, true
	case "NIGHT":
		return P_NIGHT, true
	case "DAY":
		return P_DAY, true
	case "VOTING":
		return P_VOTING, true
	}
	return "", false
}

type RoundInfo struct {
	DayCount        int `json:"dayCount"`
	NightCount      int `json:"nightCount"`
	NominationCount int `json:"nominationCount"`
	TotalRounds     int `json:"totalRounds"`
}

type GameOver struct {
	IsOver bool      `json:"isOver"`
	Winner Alignment `json:"winner,omitempty"`
	Reason string    `json:"reason,omitempty"`
}

type VoteResult string

const (
	VR_EXECUTED VoteResult = "executed"
	VR_SURVIVED VoteResult = "survived"
)

// NoSeat は指名者のいない指名を表す
const NoSeat = -1

type VotingSession struct {
	NominatorSeatID *int  `json:"nominatorSeatId"`
	NomineeSeatID   int   `json:"nomineeSeatId"`
	ClockHandSeatID int   `json:"clockHandSeatId"`
	Votes           []int `json:"votes"`
	IsOpen          bool  `json:"isOpen"`
}

func (v *VotingSession) Clone() *VotingSession {
	if v == nil {
		return nil
	}
	c := *v
	if v.NominatorSeatID != nil {
		id := *v.NominatorSeatID
		c.NominatorSeatID = &id
	}
	c.Votes = slices.Clone(v.Votes)
	return &c
}

type VoteHistoryEntry struct {
	Round           int        `json:"round"`
	NominatorSeatID int        `json:"nominatorSeatId"`
	NomineeSeatID   int        `json:"nomineeSeatId"`
	Votes           []int      `json:"votes"`
	VoteCount       int        `json:"voteCount"`
	Timestamp       int64      `json:"timestamp"`
	Result          VoteResult `json:"result"`
}

type Nomination struct {
	NominatorSeatID int   `json:"nominatorSeatId"`
	NomineeSeatID   int   `json:"nomineeSeatId"`
	Round           int   `json:"round"`
	Timestamp       int64 `json:"timestamp"`
}
