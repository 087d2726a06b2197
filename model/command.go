package model

type CommandType string

const (
	C_SET_PHASE            CommandType = "set-phase"
	C_START_GAME           CommandType = "start-game"
	C_END_GAME             CommandType = "end-game"
	C_NIGHT_NEXT           CommandType = "night-next"
	C_NIGHT_PREV           CommandType = "night-prev"
	C_START_VOTE           CommandType = "start-vote"
	C_NEXT_CLOCK_HAND      CommandType = "next-clock-hand"
	C_TOGGLE_HAND          CommandType = "toggle-hand"
	C_CLOSE_VOTE           CommandType = "close-vote"
	C_TOGGLE_DEATH         CommandType = "toggle-death"
	C_SET_SCRIPT           CommandType = "set-script"
	C_ASSIGN_ROLE          CommandType = "assign-role"
	C_ASSIGN_ROLES         CommandType = "assign-roles"
	C_RESET_ROLES          CommandType = "reset-roles"
	C_DISTRIBUTE_ROLES     CommandType = "distribute-roles"
	C_HIDE_ROLES           CommandType = "hide-roles"
	C_APPLY_STRATEGY       CommandType = "apply-strategy"
	C_TOGGLE_STATUS        CommandType = "toggle-status"
	C_TOGGLE_ABILITY       CommandType = "toggle-ability"
	C_ADD_REMINDER         CommandType = "add-reminder"
	C_REMOVE_REMINDER      CommandType = "remove-reminder"
	C_ADD_SEAT             CommandType = "add-seat"
	C_REMOVE_SEAT          CommandType = "remove-seat"
	C_RESOLVE_NIGHT_ACTION CommandType = "resolve-night-action"
	C_ADD_NOTE             CommandType = "add-note"
	C_REMOVE_NOTE          CommandType = "remove-note"
	C_SET_RULE_AUTOMATION  CommandType = "set-rule-automation"
)

// Command は語り部の操作要求。使うフィールドは Type ごとに異なる。
type Command struct {
	Type            CommandType `json:"type"`
	SeatID          *int        `json:"seatId,omitempty"`
	NominatorSeatID *int        `json:"nominatorSeatId,omitempty"`
	Phase           Phase       `json:"phase,omitempty"`
	RoleID          string      `json:"roleId,omitempty"`
	RoleIDs         []string    `json:"roleIds,omitempty"`
	ScriptID        string      `json:"scriptId,omitempty"`
	Name            string      `json:"name,omitempty"`
	Status          SeatStatus  `json:"status,omitempty"`
	Text            string      `json:"text,omitempty"`
	Public          bool        `json:"public,omitempty"`
	TargetID        string      `json:"targetId,omitempty"`
	Result          string      `json:"result,omitempty"`
	Winner          Alignment   `json:"winner,omitempty"`
	Reason          string      `json:"reason,omitempty"`

	Level RuleAutomationLevel `json:"level,omitempty"`
}
