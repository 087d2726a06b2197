package model

type Role struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Team        Team            `json:"team" yaml:"team"`
	NightAction *NightActionDef `json:"nightAction,omitempty" yaml:"night_action,omitempty"`
	Reminders   []string        `json:"reminders,omitempty" yaml:"reminders,omitempty"`
}

type Team string

const (
	T_TOWNSFOLK Team = "TOWNSFOLK"
	T_OUTSIDER  Team = "OUTSIDER"
	T_MINION    Team = "MINION"
	T_DEMON     Team = "DEMON"
	T_NONE      Team = "NONE"
)

func TeamFromString(s string) Team {
	switch s {
	case "TOWNSFOLK":
		return T_TOWNSFOLK
	case "OUTSIDER":
		return T_OUTSIDER
	case "MINION":
		return T_MINION
	case "DEMON":
		return T_DEMON
	}
	return T_NONE
}

func (t Team) Alignment() Alignment {
	switch t {
	case T_TOWNSFOLK, T_OUTSIDER:
		return A_GOOD
	case T_MINION, T_DEMON:
		return A_EVIL
	}
	return A_NONE
}

// Alignment は勝敗判定に使う陣営
type Alignment string

const (
	A_GOOD Alignment = "GOOD"
	A_EVIL Alignment = "EVIL"
	A_NONE Alignment = "NONE"
)

func (r Role) String() string {
	return r.ID
}
