package core

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aiwolfdial/storyteller-server/logic"
	"github.com/aiwolfdial/storyteller-server/model"
)

var (
	ErrUnknownCommand = errors.New("不明なコマンドです")
	ErrInvalidCommand = errors.New("コマンドの引数が不正です")
)

// ApplyCommand は語り部のコマンドをゲームに適用する
func ApplyCommand(g *logic.Game, cmd model.Command) error {
	seatID := func() (int, error) {
		if cmd.SeatID == nil {
			return 0, fmt.Errorf("%w: seatId is required for %s", ErrInvalidCommand, cmd.Type)
		}
		return *cmd.SeatID, nil
	}

	switch cmd.Type {
	case model.C_SET_PHASE:
		g.SetPhase(cmd.Phase)
	case model.C_START_GAME:
		g.StartGame()
	case model.C_END_GAME:
		g.EndGame(cmd.Winner, cmd.Reason)
	case model.C_NIGHT_NEXT:
		g.NightNext()
	case model.C_NIGHT_PREV:
		g.NightPrev()
	case model.C_START_VOTE:
		id, err := seatID()
		if err != nil {
			return err
		}
		g.StartVote(id, cmd.NominatorSeatID)
	case model.C_NEXT_CLOCK_HAND:
		g.NextClockHand()
	case model.C_TOGGLE_HAND:
		id, err := seatID()
		if err != nil {
			return err
		}
		g.ToggleHand(id)
	case model.C_CLOSE_VOTE:
		g.CloseVote()
	case model.C_TOGGLE_DEATH:
		id, err := seatID()
		if err != nil {
			return err
		}
		g.ToggleDeath(id)
	case model.C_SET_SCRIPT:
		g.SetScript(cmd.ScriptID)
	case model.C_ASSIGN_ROLE:
		id, err := seatID()
		if err != nil {
			return err
		}
		g.ApplyRoleAssignment(id, cmd.RoleID)
	case model.C_ASSIGN_ROLES:
		g.AssignRoles()
	case model.C_RESET_ROLES:
		g.ResetRoles()
	case model.C_DISTRIBUTE_ROLES:
		g.DistributeRoles()
	case model.C_HIDE_ROLES:
		g.HideRoles()
	case model.C_APPLY_STRATEGY:
		g.ApplyStrategy(cmd.Name, cmd.RoleIDs)
	case model.C_TOGGLE_STATUS:
		id, err := seatID()
		if err != nil {
			return err
		}
		g.ToggleStatus(id, cmd.Status)
	case model.C_TOGGLE_ABILITY:
		id, err := seatID()
		if err != nil {
			return err
		}
		g.ToggleAbilityUsed(id)
	case model.C_ADD_REMINDER:
		id, err := seatID()
		if err != nil {
			return err
		}
		g.AddReminder(id, cmd.Text, cmd.Public)
	case model.C_REMOVE_REMINDER:
		g.RemoveReminder(cmd.TargetID)
	case model.C_ADD_SEAT:
		g.AddSeat()
	case model.C_REMOVE_SEAT:
		g.RemoveSeat()
	case model.C_RESOLVE_NIGHT_ACTION:
		g.ResolveNightAction(cmd.TargetID, cmd.Result)
	case model.C_ADD_NOTE:
		g.AddNote(cmd.Text)
	case model.C_REMOVE_NOTE:
		g.RemoveNote(cmd.TargetID)
	case model.C_SET_RULE_AUTOMATION:
		g.SetRuleAutomation(cmd.Level)
	default:
		slog.Warn("不明なコマンドを受信しました", "id", g.ID, "type", cmd.Type)
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Type)
	}
	slog.Info("コマンドを適用しました", "id", g.ID, "type", cmd.Type)
	return nil
}
