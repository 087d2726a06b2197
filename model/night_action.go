package model

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

type NightActionKind string

const (
	NA_CHOOSE_PLAYER      NightActionKind = "choose_player"
	NA_CHOOSE_TWO_PLAYERS NightActionKind = "choose_two_players"
	NA_CONFIRM            NightActionKind = "confirm"
	NA_CUSTOM             NightActionKind = "custom"
)

type NightActionDef struct {
	Kind   NightActionKind `json:"kind" yaml:"kind"`
	Prompt string          `json:"prompt,omitempty" yaml:"prompt,omitempty"`
}

// NightActionPayload is one of ChoosePlayerPayload, ChooseTwoPlayersPayload,
// ConfirmPayload or CustomPayload.
type NightActionPayload interface {
	Kind() NightActionKind
}

type ChoosePlayerPayload struct {
	SeatID int `json:"seatId"`
}

type ChooseTwoPlayersPayload struct {
	SeatIDs [2]int `json:"seatIds"`
}

type ConfirmPayload struct {
	Confirmed bool `json:"confirmed"`
}

type CustomPayload struct {
	Data string `json:"customData"`
}

func (ChoosePlayerPayload) Kind() NightActionKind     { return NA_CHOOSE_PLAYER }
func (ChooseTwoPlayersPayload) Kind() NightActionKind { return NA_CHOOSE_TWO_PLAYERS }
func (ConfirmPayload) Kind() NightActionKind          { return NA_CONFIRM }
func (CustomPayload) Kind() NightActionKind           { return NA_CUSTOM }

var ErrUnknownPayloadKind = errors.New("不明な夜の行動の種類です")

func MarshalNightActionPayload(p NightActionPayload) ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(data, "kind", string(p.Kind()))
}

func UnmarshalNightActionPayload(data []byte) (NightActionPayload, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	kind := NightActionKind(gjson.GetBytes(data, "kind").String())
	var (
		p   NightActionPayload
		err error
	)
	switch kind {
	case NA_CHOOSE_PLAYER:
		var v ChoosePlayerPayload
		err = json.Unmarshal(data, &v)
		p = v
	case NA_CHOOSE_TWO_PLAYERS:
		var v ChooseTwoPlayersPayload
		err = json.Unmarshal(data, &v)
		p = v
	case NA_CONFIRM:
		var v ConfirmPayload
		err = json.Unmarshal(data, &v)
		p = v
	case NA_CUSTOM:
		var v CustomPayload
		err = json.Unmarshal(data, &v)
		p = v
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPayloadKind, kind)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

type RequestStatus string

const (
	RS_PENDING  RequestStatus = "pending"
	RS_RESOLVED RequestStatus = "resolved"
)

type NightActionRequest struct {
	ID        string             `json:"id"`
	SeatID    int                `json:"seatId"`
	RoleID    string             `json:"roleId"`
	Payload   NightActionPayload `json:"-"`
	Status    RequestStatus      `json:"status"`
	Result    string             `json:"result,omitempty"`
	Timestamp int64              `json:"timestamp"`
}

type nightActionRequestJSON struct {
	ID        string          `json:"id"`
	SeatID    int             `json:"seatId"`
	RoleID    string          `json:"roleId"`
	Payload   json.RawMessage `json:"payload"`
	Status    RequestStatus   `json:"status"`
	Result    string          `json:"result,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

func (r NightActionRequest) MarshalJSON() ([]byte, error) {
	payload, err := MarshalNightActionPayload(r.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(nightActionRequestJSON{
		ID:        r.ID,
		SeatID:    r.SeatID,
		RoleID:    r.RoleID,
		Payload:   payload,
		Status:    r.Status,
		Result:    r.Result,
		Timestamp: r.Timestamp,
	})
}

func (r *NightActionRequest) UnmarshalJSON(data []byte) error {
	var raw nightActionRequestJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	payload, err := UnmarshalNightActionPayload(raw.Payload)
	if err != nil {
		return err
	}
	*r = NightActionRequest{
		ID:        raw.ID,
		SeatID:    raw.SeatID,
		RoleID:    raw.RoleID,
		Payload:   payload,
		Status:    raw.Status,
		Result:    raw.Result,
		Timestamp: raw.Timestamp,
	}
	return nil
}
