package model

import "slices"

type MessageType string

const (
	MT_CHAT   MessageType = "chat"
	MT_SYSTEM MessageType = "system"
)

type ChatMessage struct {
	ID          string      `json:"id"`
	SenderID    string      `json:"senderId"`
	SenderName  string      `json:"senderName"`
	RecipientID string      `json:"recipientId,omitempty"`
	Content     string      `json:"content"`
	Type        MessageType `json:"type"`
	IsPrivate   bool        `json:"isPrivate"`
	Timestamp   int64       `json:"timestamp"`
}

// RuleAutomationLevel は指名ルール違反の扱いを決める
type RuleAutomationLevel string

const (
	RA_MANUAL    RuleAutomationLevel = "MANUAL"
	RA_GUIDED    RuleAutomationLevel = "GUIDED"
	RA_FULL_AUTO RuleAutomationLevel = "FULL_AUTO"
)

type Note struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// Session は一つの部屋の権威あるゲーム状態
type Session struct {
	RoomID              string               `json:"roomId"`
	CurrentScriptID     string               `json:"currentScriptId"`
	Phase               Phase                `json:"phase"`
	RolesRevealed       bool                 `json:"rolesRevealed"`
	RuleAutomation      RuleAutomationLevel  `json:"ruleAutomationLevel"`
	RoundInfo           RoundInfo            `json:"roundInfo"`
	Seats               []Seat               `json:"seats"`
	NightQueue          []string             `json:"nightQueue"`
	NightCurrentIndex   int                  `json:"nightCurrentIndex"`
	Voting              *VotingSession       `json:"voting"`
	VoteHistory         []VoteHistoryEntry   `json:"voteHistory"`
	NightActionRequests []NightActionRequest `json:"nightActionRequests"`
	Messages            []ChatMessage        `json:"messages"`
	StorytellerNotes    []Note               `json:"storytellerNotes"`
	GameOver            GameOver             `json:"gameOver"`
	DailyNominations    []Nomination         `json:"dailyNominations"`
}

func NewSession(roomID string, seatCount int, scriptID string) *Session {
	seats := make([]Seat, 0, seatCount)
	for i := range seatCount {
		seats = append(seats, NewSeat(i))
	}
	return &Session{
		RoomID:              roomID,
		CurrentScriptID:     scriptID,
		Phase:               P_SETUP,
		RuleAutomation:      RA_GUIDED,
		Seats:               seats,
		NightQueue:          []string{},
		NightCurrentIndex:   -1,
		VoteHistory:         []VoteHistoryEntry{},
		NightActionRequests: []NightActionRequest{},
		Messages:            []ChatMessage{},
		StorytellerNotes:    []Note{},
		DailyNominations:    []Nomination{},
	}
}

func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.Seats != nil {
		c.Seats = make([]Seat, len(s.Seats))
		for i, seat := range s.Seats {
			c.Seats[i] = seat.Clone()
		}
	}
	c.NightQueue = slices.Clone(s.NightQueue)
	c.Voting = s.Voting.Clone()
	if s.VoteHistory != nil {
		c.VoteHistory = make([]VoteHistoryEntry, len(s.VoteHistory))
		for i, entry := range s.VoteHistory {
			entry.Votes = slices.Clone(entry.Votes)
			c.VoteHistory[i] = entry
		}
	}
	c.NightActionRequests = slices.Clone(s.NightActionRequests)
	c.Messages = slices.Clone(s.Messages)
	c.StorytellerNotes = slices.Clone(s.StorytellerNotes)
	c.DailyNominations = slices.Clone(s.DailyNominations)
	return &c
}

func (s *Session) FindSeat(id int) *Seat {
	for i := range s.Seats {
		if s.Seats[i].ID == id {
			return &s.Seats[i]
		}
	}
	return nil
}

func (s *Session) FindSeatByUser(userID string) *Seat {
	if userID == "" {
		return nil
	}
	for i := range s.Seats {
		if s.Seats[i].UserID == userID {
			return &s.Seats[i]
		}
	}
	return nil
}

type SecretSeat struct {
	ID         int    `json:"id"`
	RealRoleID string `json:"realRoleId"`
}

// SecretState は語り部だけに届ける秘密情報
type SecretState struct {
	RoomID           string       `json:"roomId"`
	Seats            []SecretSeat `json:"seats"`
	StorytellerNotes []Note       `json:"storytellerNotes"`
}
